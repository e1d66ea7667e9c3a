package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "nightwatch",
		Short: "Autonomous incident-resolution agent for Docker Compose environments",
	}

	root.AddCommand(newRunCmd())
	root.AddCommand(newValidateCmd())
	return root
}
