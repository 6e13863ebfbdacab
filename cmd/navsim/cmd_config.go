package main

import (
	"fmt"

	"github.com/navsim/go-navsim/config"
	"github.com/spf13/cobra"
)

var outPath string

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Write the default configuration to a file",
	Args:  cobra.NoArgs,
	RunE:  writeConfig,
}

func writeConfig(cmd *cobra.Command, args []string) error {
	if err := config.DefaultConfig().Save(outPath); err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "configuration written to %s\n", outPath)

	return nil
}
