package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/nightwatch-sre/nightwatch/internal/config"
)

func newValidateCmd() *cobra.Command {
	var configPath, topologyPath string

	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Validate a config file and topology file without starting the loop",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(configPath, topologyPath)
		},
	}
	cmd.Flags().StringVar(&configPath, "config", "", "path to nightwatch config (or NIGHTWATCH_CONFIG)")
	cmd.Flags().StringVar(&topologyPath, "topology", "", "path to a compose-style topology file, overriding the config's topology field")
	return cmd
}

func runValidate(configPath, topologyPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}

	if topologyPath == "" {
		topologyPath = cfg.Topology
	}
	topology, err := config.LoadTopology(topologyPath)
	if err != nil {
		return fmt.Errorf("topology: %w", err)
	}

	fmt.Printf("config OK: mode=%s maxActionsPerIncident=%d\n", cfg.Mode, cfg.Constraints.MaxActionsPerIncident)
	fmt.Printf("topology OK: %d known containers: %v\n", len(topology.Names()), topology.Names())
	return nil
}
