package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Topology is the known-container set derived from a compose-style YAML file.
// The command validator treats this set as the universe of safe targets.
type Topology struct {
	Containers map[string]struct{}
}

type composeFile struct {
	Services map[string]composeService `yaml:"services"`
}

type composeService struct {
	ContainerName string `yaml:"container_name"`
}

// LoadTopology reads a compose-style YAML file and returns the set of known
// container identifiers: container_name when present, else the service key.
func LoadTopology(path string) (*Topology, error) {
	if path == "" {
		return nil, fmt.Errorf("topology path is required")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read topology %s: %w", path, err)
	}

	var file composeFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse topology %s: %w", path, err)
	}

	containers := make(map[string]struct{}, len(file.Services))
	for serviceKey, svc := range file.Services {
		name := svc.ContainerName
		if name == "" {
			name = serviceKey
		}
		containers[name] = struct{}{}
	}

	return &Topology{Containers: containers}, nil
}

// Known reports whether name is a recognised container identifier.
func (t *Topology) Known(name string) bool {
	if t == nil {
		return false
	}
	_, ok := t.Containers[name]
	return ok
}

// Names returns the known container identifiers.
func (t *Topology) Names() []string {
	if t == nil {
		return nil
	}
	names := make([]string, 0, len(t.Containers))
	for name := range t.Containers {
		names = append(names, name)
	}
	return names
}
