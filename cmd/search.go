package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/spf13/cobra"

	appconfig "github.com/ben-bakker/searchai/internal/config"
	"github.com/ben-bakker/searchai/internal/observability"
	"github.com/ben-bakker/searchai/internal/types"
)

var (
	searchQuery          string
	searchAnswer         bool
	searchMaxResults     int
	searchDepth          string
	searchIncludeDomains []string
	searchExcludeDomains []string
	searchOutputJSON     bool
)

var searchCmd = &cobra.Command{
	Use:   "search",
	Short: "Run one search from the command line",
	Long: `
Search the web through Tavily, deduplicate the results and optionally
generate an AI answer with Groq. Uses the same pipeline as the HTTP gateway.

Examples:
  searchai search -q "golang generics"
  searchai search -q "что такое Go" --answer
  searchai search -q "kubernetes operators" --max-results 10 --depth basic --include-domain kubernetes.io
  searchai search -q "otel collector" --json
`,
	RunE: runSearch,
}

func init() {
	searchCmd.Flags().StringVarP(&searchQuery, "query", "q", "", "Text query to search for (required)")
	searchCmd.Flags().BoolVarP(&searchAnswer, "answer", "a", false, "Generate an AI answer from the results")
	searchCmd.Flags().IntVarP(&searchMaxResults, "max-results", "k", types.DefaultMaxResults, "Maximum number of provider results")
	searchCmd.Flags().StringVar(&searchDepth, "depth", types.DefaultSearchDepth, "Search depth: basic|advanced")
	searchCmd.Flags().StringSliceVar(&searchIncludeDomains, "include-domain", nil, "Only include results from these domains (repeatable)")
	searchCmd.Flags().StringSliceVar(&searchExcludeDomains, "exclude-domain", nil, "Exclude results from these domains (repeatable)")
	searchCmd.Flags().BoolVarP(&searchOutputJSON, "json", "j", false, "Output results in JSON format")

	_ = searchCmd.MarkFlagRequired("query")
}

func runSearch(cmd *cobra.Command, args []string) error {
	logger := log.New(os.Stderr, "[search] ", log.LstdFlags)

	cfg, err := appconfig.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	shutdownTelemetry, err := observability.Init(ctx, cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize telemetry: %w", err)
	}
	defer func() {
		if err := shutdownTelemetry(context.Background()); err != nil {
			logger.Printf("Telemetry shutdown error: %v", err)
		}
	}()

	comps, err := newComponents(cfg, logger)
	if err != nil {
		return err
	}

	resp, err := comps.service.Search(ctx, searchQuery, searchOverride())
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	return outputSearchResponse(os.Stdout, searchQuery, resp, searchOutputJSON)
}

// searchOverride builds options from the flags. Unchanged flags fall back to defaults.
func searchOverride() *types.SearchOptionsOverride {
	override := &types.SearchOptionsOverride{
		GenerateAnswer: &searchAnswer,
		IncludeDomains: searchIncludeDomains,
		ExcludeDomains: searchExcludeDomains,
	}
	if searchMaxResults > 0 {
		override.MaxResults = &searchMaxResults
	}
	if searchDepth != "" {
		override.SearchDepth = &searchDepth
	}
	return override
}

func outputSearchResponse(w io.Writer, query string, resp *types.SearchResponse, asJSON bool) error {
	if asJSON {
		jsonOutput, err := json.MarshalIndent(resp, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal JSON output: %w", err)
		}
		fmt.Fprintln(w, string(jsonOutput))
		return nil
	}

	printSearchResponse(w, query, resp)
	return nil
}

func printSearchResponse(w io.Writer, query string, resp *types.SearchResponse) {
	fmt.Fprintf(w, "\nQuery: %s\n", query)

	if resp.AIAnswer != nil {
		fmt.Fprintf(w, "\n=== AI Answer (%s) ===\n", resp.AIAnswer.Model)
		fmt.Fprintln(w, resp.AIAnswer.Answer)
	} else if resp.AIAnswerError != "" {
		fmt.Fprintf(w, "\nAI Answer unavailable: %s\n", resp.AIAnswerError)
	}

	fmt.Fprintf(w, "\nFound %d results\n", len(resp.Results))
	if len(resp.Results) == 0 {
		fmt.Fprintln(w, "  (no results found)")
		return
	}

	for i, r := range resp.Results {
		fmt.Fprintf(w, "\n  %d. %s\n", i+1, r.Title)
		fmt.Fprintf(w, "     URL: %s\n", r.URL)
		fmt.Fprintf(w, "     Score: %.4f\n", r.Score)
		if r.PublishedDate != nil {
			fmt.Fprintf(w, "     Published: %s\n", *r.PublishedDate)
		}
		fmt.Fprintf(w, "     %s\n", truncate(r.Content, 300))
	}
}

func truncate(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit]) + "..."
}
