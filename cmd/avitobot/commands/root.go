// Package commands implements the avitobot CLI commands using cobra.
package commands

import (
	"github.com/spf13/cobra"
)

// NewRootCmd creates the root CLI command with all subcommands registered.
func NewRootCmd(version string) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "avitobot",
		Short: "Avitobot - automated Avito messenger responder",
		Long: `Avitobot polls the Avito messenger inbox, decides which conversations
need an automated reply, classifies the customer's intent and answers with a
scripted template.

Examples:
  avitobot serve
  avitobot serve --config ./config.yaml
  avitobot classify "Сколько стоит этот фикус?"
  avitobot config init`,
		Version: version,
	}

	rootCmd.AddCommand(
		newServeCmd(),
		newClassifyCmd(),
		newConfigCmd(),
	)

	// Global flags.
	rootCmd.PersistentFlags().StringP("config", "c", "", "path to the configuration file")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "enable debug logging")

	return rootCmd
}
