package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Mode selects which capability set the orchestrator exposes to the reasoner.
type Mode string

const (
	ModeObserve   Mode = "observe"
	ModeRemediate Mode = "remediate"
)

// Config captures the settings required to boot nightwatch.
type Config struct {
	Mode        Mode              `yaml:"mode"`
	Constraints ConstraintsConfig `yaml:"constraints"`
	Topology    string            `yaml:"topology"`
	Logging     LoggingConfig     `yaml:"logging"`
	Reasoner    ReasonerConfig    `yaml:"reasoner"`
	Runtime     RuntimeConfig     `yaml:"runtime"`
	Knowledge   KnowledgeConfig   `yaml:"knowledge"`
	Audit       AuditConfig       `yaml:"audit"`
	Parameters  ParametersConfig  `yaml:"parameters"`
}

// ConstraintsConfig bounds the orchestrator's replan circuit breaker.
type ConstraintsConfig struct {
	MaxActionsPerIncident int `yaml:"maxActionsPerIncident"`
}

// LoggingConfig controls structured logging.
type LoggingConfig struct {
	Level string `yaml:"level"`
	JSON  bool   `yaml:"json"`
}

// ReasonerConfig configures the hosted structured-generation backend.
type ReasonerConfig struct {
	APIKey  string        `yaml:"apiKey"`
	Model   string        `yaml:"model"`
	Timeout time.Duration `yaml:"timeout"`
}

// RuntimeConfig configures the container runtime driver.
type RuntimeConfig struct {
	DockerBinary string        `yaml:"dockerBinary"`
	Timeout      time.Duration `yaml:"timeout"`
}

// KnowledgeConfig configures the append-only fact store.
type KnowledgeConfig struct {
	Path string `yaml:"path"`
}

// AuditConfig configures the structured audit log.
type AuditConfig struct {
	Path string `yaml:"path"`
}

// ParametersConfig declares infrastructure parameters known in advance, consulted
// by assessFeasibility before asking the user. Absence from this map and from the
// knowledge store both mean "not known" -- neither is a stand-in for a zero value.
type ParametersConfig struct {
	Declared map[string]string `yaml:"declared"`
}

// Load initialises Config from a YAML file and optional environment overrides.
// Returns a startup error if the file is missing, unreadable, or schema-invalid.
func Load(path string) (*Config, error) {
	if path == "" {
		path = os.Getenv("NIGHTWATCH_CONFIG")
	}
	if path == "" {
		return nil, fmt.Errorf("config path is required (set --config or NIGHTWATCH_CONFIG)")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("config file %s not found: %w", path, err)
		}
		return nil, fmt.Errorf("read config: %w", err)
	}

	cfg := defaultConfig()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	applyEnvOverrides(&cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate enforces the config schema: mode must be observe/remediate and
// maxActionsPerIncident must be positive.
func (c *Config) Validate() error {
	switch c.Mode {
	case ModeObserve, ModeRemediate:
	default:
		return fmt.Errorf("mode must be %q or %q, got %q", ModeObserve, ModeRemediate, c.Mode)
	}
	if c.Constraints.MaxActionsPerIncident <= 0 {
		return fmt.Errorf("constraints.maxActionsPerIncident must be a positive integer, got %d", c.Constraints.MaxActionsPerIncident)
	}
	return nil
}

func defaultConfig() Config {
	return Config{
		Mode: ModeObserve,
		Constraints: ConstraintsConfig{
			MaxActionsPerIncident: 3,
		},
		Logging: LoggingConfig{Level: "info", JSON: false},
		Reasoner: ReasonerConfig{
			Model:   "gemini-2.5-pro",
			Timeout: 30 * time.Second,
		},
		Runtime: RuntimeConfig{
			DockerBinary: "docker",
			Timeout:      10 * time.Second,
		},
		Knowledge: KnowledgeConfig{Path: "nightwatch-knowledge.md"},
		Audit:     AuditConfig{Path: "nightwatch-audit.jsonl"},
	}
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("NIGHTWATCH_MODE"); v != "" {
		cfg.Mode = Mode(v)
	}
	if v := os.Getenv("NIGHTWATCH_TOPOLOGY"); v != "" {
		cfg.Topology = v
	}
	if v := os.Getenv("NIGHTWATCH_MAX_ACTIONS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Constraints.MaxActionsPerIncident = n
		}
	}
	if v := os.Getenv("NIGHTWATCH_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
	if v := os.Getenv("NIGHTWATCH_LOG_FORMAT"); strings.EqualFold(v, "json") {
		cfg.Logging.JSON = true
	}
	if v := os.Getenv("NIGHTWATCH_REASONER_API_KEY"); v != "" {
		cfg.Reasoner.APIKey = v
	}
	if v := os.Getenv("NIGHTWATCH_REASONER_MODEL"); v != "" {
		cfg.Reasoner.Model = v
	}
	if v := os.Getenv("NIGHTWATCH_DOCKER_BINARY"); v != "" {
		cfg.Runtime.DockerBinary = v
	}
	if v := os.Getenv("NIGHTWATCH_KNOWLEDGE_PATH"); v != "" {
		cfg.Knowledge.Path = v
	}
	if v := os.Getenv("NIGHTWATCH_AUDIT_PATH"); v != "" {
		cfg.Audit.Path = v
	}
}

// KnownParameter reports whether name is positively declared in configuration.
// Absence is not a value: callers must not treat a missing key as empty/zero.
func (c *Config) KnownParameter(name string) (string, bool) {
	if c.Parameters.Declared == nil {
		return "", false
	}
	v, ok := c.Parameters.Declared[name]
	return v, ok
}
