package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/nightwatch-sre/nightwatch/internal/audit"
	"github.com/nightwatch-sre/nightwatch/internal/capabilities"
	"github.com/nightwatch-sre/nightwatch/internal/config"
	"github.com/nightwatch-sre/nightwatch/internal/human"
	"github.com/nightwatch-sre/nightwatch/internal/knowledge"
	"github.com/nightwatch-sre/nightwatch/internal/models"
	"github.com/nightwatch-sre/nightwatch/internal/observer"
	"github.com/nightwatch-sre/nightwatch/internal/orchestrator"
	"github.com/nightwatch-sre/nightwatch/internal/reasoner"
	"github.com/nightwatch-sre/nightwatch/internal/runtime"
)

const batchDebounce = 3 * time.Second

func newRunCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Start the incident-resolution loop, watching every known container's logs",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDaemon(context.Background(), configPath)
		},
	}
	cmd.Flags().StringVar(&configPath, "config", "", "path to nightwatch config (or NIGHTWATCH_CONFIG)")
	return cmd
}

func runDaemon(ctx context.Context, configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	logger := config.NewLogger(cfg.Logging.Level, cfg.Logging.JSON)
	logger.Info("starting nightwatch", slog.String("mode", string(cfg.Mode)))

	topology, err := config.LoadTopology(cfg.Topology)
	if err != nil {
		return fmt.Errorf("loading topology: %w", err)
	}

	knowledgeStore, err := knowledge.NewStore(cfg.Knowledge.Path)
	if err != nil {
		return fmt.Errorf("opening knowledge store: %w", err)
	}

	auditLog, err := audit.Open(cfg.Audit.Path)
	if err != nil {
		return fmt.Errorf("opening audit log: %w", err)
	}
	defer auditLog.Close()

	backend, err := reasoner.NewGenAIReasoner(ctx, cfg.Reasoner.APIKey, cfg.Reasoner.Model)
	if err != nil {
		return fmt.Errorf("configuring reasoner backend: %w", err)
	}

	dockerRuntime := runtime.NewDockerRuntime(cfg.Runtime.DockerBinary)

	deps := &capabilities.Deps{
		Gateway:   reasoner.NewGateway(backend),
		Topology:  topology,
		Knowledge: knowledgeStore,
		Human:     human.NewSurface(os.Stdout, os.Stdin),
		Runtime:   dockerRuntime,
		Params:    cfg.Parameters,
	}

	o := &orchestrator.Orchestrator{
		Deps:       deps,
		Mode:       cfg.Mode,
		MaxActions: cfg.Constraints.MaxActionsPerIncident,
		Audit:      auditLog,
		Logger:     logger,
	}

	runCtx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	incidents := make(chan models.State)
	var wg sync.WaitGroup

	for _, container := range topology.Names() {
		wg.Add(1)
		go func(container string) {
			defer wg.Done()
			watchContainer(runCtx, logger, dockerRuntime, container, incidents)
		}(container)
	}

	go func() {
		for state := range incidents {
			logger.Info("dispatching incident", slog.String("incidentId", state.IncidentID))
			final, err := o.Run(runCtx, state)
			if err != nil {
				logger.Error("incident loop exited with error", slog.String("incidentId", state.IncidentID), slog.Any("error", err))
				continue
			}
			logger.Info("incident loop finished", slog.String("incidentId", state.IncidentID), slog.String("resolution", string(final.Resolution)))
		}
	}()

	<-runCtx.Done()
	logger.Info("shutdown signal received")
	close(incidents)
	wg.Wait()
	logCapabilityLatency(logger, o)
	return nil
}

func logCapabilityLatency(logger *slog.Logger, o *orchestrator.Orchestrator) {
	for name := range capabilities.Registry {
		p50, p99, count := o.CapabilityLatency(name)
		if count == 0 {
			continue
		}
		logger.Info("capability latency",
			slog.String("capability", name),
			slog.Duration("p50", p50),
			slog.Duration("p99", p99),
			slog.Int("samples", count),
		)
	}
}

func watchContainer(ctx context.Context, logger *slog.Logger, rt runtime.ContainerRuntime, container string, incidents chan<- models.State) {
	batcher := observer.NewBatcher(batchDebounce, func(batch []observer.LogEvent) {
		lines := make([]string, len(batch))
		for i, e := range batch {
			lines[i] = e.Line
		}
		incidents <- models.State{IncidentID: uuid.NewString(), Logs: lines}
	})
	defer batcher.Stop()

	coordinator := observer.NewCoordinator(container, rt, batcher)
	if err := coordinator.Run(ctx); err != nil && ctx.Err() == nil {
		logger.Warn("log observer stopped", slog.String("container", container), slog.Any("error", err))
	}
}
