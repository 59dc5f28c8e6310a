package cmd

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "docside",
	Short: "Docside - documentation Q&A service",
	Long: `Docside answers questions about Genkit, Gemini API, and Vertex AI
documentation using retrieval-augmented generation over a locally
persisted index.

Running docside without a subcommand starts the HTTP API server.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe(cmd.Context())
	},
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
