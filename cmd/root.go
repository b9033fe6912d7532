package cmd

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "searchai",
	Short: "SearchAI - web search gateway with optional AI answers",
	Long: `SearchAI is a small gateway in front of the Tavily search API.
It deduplicates and normalizes search results and can optionally ask a
Groq-hosted chat model for a summarized answer grounded in those results.`,
	SilenceUsage: true,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(searchCmd)
	rootCmd.AddCommand(validateCmd)
}
