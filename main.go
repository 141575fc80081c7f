package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/mattsolo1/grove-docnav/cmd"
	"github.com/mattsolo1/grove-docnav/cmd/config"
	"github.com/mattsolo1/grove-docnav/pkg/service"
)

var (
	svc *service.Service
	rt  *config.Runtime
)

func main() {
	rootCmd := &cobra.Command{
		Use:          "docnav",
		Short:        "Navigate a document collection as a searchable tree",
		SilenceUsage: true,
	}
	config.AddGlobalFlags(rootCmd)

	rootCmd.PersistentPreRunE = func(c *cobra.Command, args []string) error {
		// This runs once before any subcommand
		if err := config.InitConfig(); err != nil {
			return err
		}
		if !needsService(c) {
			return nil
		}

		settings, err := config.Load()
		if err != nil {
			return err
		}
		logger := config.NewLogger(settings)

		rt, err = config.InitService(settings, logger)
		if err != nil {
			return err
		}
		svc = rt.Service
		return nil
	}
	rootCmd.PersistentPostRunE = func(c *cobra.Command, args []string) error {
		return rt.Close()
	}

	// Add subcommands
	rootCmd.AddCommand(cmd.NewTreeCmd(&svc))
	rootCmd.AddCommand(cmd.NewFindCmd(&svc))
	rootCmd.AddCommand(cmd.NewFilesCmd(&svc))
	rootCmd.AddCommand(cmd.NewSyncCmd(&svc))
	rootCmd.AddCommand(cmd.NewLeavesCmd(&svc))
	rootCmd.AddCommand(cmd.NewSearchCmd(&svc))
	rootCmd.AddCommand(cmd.NewShowCmd(&svc))
	rootCmd.AddCommand(cmd.NewVersionCmd())

	if err := rootCmd.Execute(); err != nil {
		_ = rt.Close()
		os.Exit(1)
	}
}

func needsService(c *cobra.Command) bool {
	switch c.Name() {
	case "version", "help", "completion":
		return false
	}
	return true
}
