package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var Version = "dev"

var configName string

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "resalectl",
		Short:         "Administration tool for the resale operations backend",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().StringVar(&configName, "config", "resalectl", "config file base name, read as <name>.env from ./configs or .")

	rootCmd.AddCommand(migrateCmd())
	rootCmd.AddCommand(importCmd())
	return rootCmd
}
