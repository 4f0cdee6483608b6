// Package cmd implements the pals command line interface.
package cmd

import "github.com/spf13/cobra"

// Execute runs the root command.
func Execute() error {
	return newRootCmd().Execute()
}

type rootFlags struct {
	configPath string
}

func newRootCmd() *cobra.Command {
	flags := &rootFlags{}

	rootCmd := &cobra.Command{
		Use:           "pals",
		Short:         "Ai PALS: a primary agent backed by deliberating copilots",
		Long:          "pals answers prompts through a primary agent. In planning mode a roster of copilots deliberates in rounds, weighted by an interaction ledger, until consensus or the step ceiling.",
		SilenceUsage:  true,
		SilenceErrors: false,
	}

	rootCmd.PersistentFlags().StringVar(&flags.configPath, "config", "", "config file (yaml, toml or json); defaults to ./config.* or the user config directory")

	rootCmd.AddCommand(
		newVersionCmd(),
		newChatCmd(flags),
		newAskCmd(flags),
		newPlanCmd(flags),
		newConfigCmd(flags),
	)

	return rootCmd
}
