package cmd

import (
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "carscope",
		Short: "Vehicle photo analysis tool with LLM-powered identification and damage assessment",
		Long: `Carscope identifies vehicles and assesses visible damage from photos using vision-capable LLMs.

It supports one-shot batch analysis from the command line, a web API for
inspection sessions, and tooling for preparing damage-detection training data.`,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			// Load .env file if present (ignore errors)
			_ = godotenv.Load()
		},
	}

	// Add subcommands
	cmd.AddCommand(newServeCmd())
	cmd.AddCommand(newAnalyzeCmd())
	cmd.AddCommand(newDatasetCmd())

	return cmd
}
