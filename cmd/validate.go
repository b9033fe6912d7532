package cmd

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/spf13/cobra"

	appconfig "github.com/ben-bakker/searchai/internal/config"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check that the configured provider API keys are accepted",
	Long: `
Loads the configuration and sends one minimal request to each configured
provider concurrently: a one-result Tavily search and, when GROQ_API_KEY is
set, a one-message Groq chat completion.

Example:
  searchai validate
`,
	RunE: runValidate,
}

func runValidate(cmd *cobra.Command, args []string) error {
	logger := log.New(os.Stdout, "[validate] ", log.LstdFlags)

	cfg, err := appconfig.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	comps, err := newComponents(cfg, logger)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, cancel := context.WithTimeout(ctx, cfg.UpstreamTimeout)
	defer cancel()

	if err := validateKeys(ctx, comps.validators(), logger); err != nil {
		return err
	}

	logger.Println("All API keys are valid")
	return nil
}
