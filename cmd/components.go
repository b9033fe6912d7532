package cmd

import (
	"context"
	"fmt"
	"log"
	"net/http"

	"golang.org/x/sync/errgroup"

	"github.com/ben-bakker/searchai/internal/groq"
	"github.com/ben-bakker/searchai/internal/search"
	"github.com/ben-bakker/searchai/internal/tavily"
	"github.com/ben-bakker/searchai/internal/types"
)

// components bundles the clients and the orchestrator built from one Config
type components struct {
	tavily  *tavily.Client
	groq    *groq.Client // nil when GROQ_API_KEY is unset
	service *search.Service
}

func newComponents(cfg *types.Config, logger *log.Logger) (*components, error) {
	httpClient := &http.Client{Timeout: cfg.UpstreamTimeout}

	tavilyClient, err := tavily.NewClient(cfg.TavilyAPIKey, cfg.TavilyBaseURL, httpClient, cfg.UpstreamTimeout)
	if err != nil {
		return nil, fmt.Errorf("failed to create Tavily client: %w", err)
	}

	c := &components{tavily: tavilyClient}

	serviceCfg := search.ServiceConfig{
		Provider:               tavilyClient,
		UpstreamTimeout:        cfg.UpstreamTimeout,
		PartialAnswerOnFailure: cfg.PartialAnswerOnFailure,
		Logger:                 logger,
	}

	if cfg.AnswersEnabled() {
		c.groq, err = groq.NewClient(groq.Config{
			APIKey:      cfg.GroqAPIKey,
			BaseURL:     cfg.GroqBaseURL,
			Model:       cfg.GroqModel,
			Language:    cfg.AnswerLanguage,
			Temperature: cfg.AnswerTemperature,
			MaxTokens:   cfg.AnswerMaxTokens,
			HTTPClient:  httpClient,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create Groq client: %w", err)
		}
		serviceCfg.Answerer = c.groq
	} else {
		logger.Println("GROQ_API_KEY not set, AI answers are disabled")
	}

	c.service, err = search.NewService(serviceCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create search service: %w", err)
	}

	return c, nil
}

// keyValidator is implemented by provider clients that can check their credentials
type keyValidator interface {
	ValidateAPIKey(ctx context.Context) error
}

func (c *components) validators() map[string]keyValidator {
	validators := map[string]keyValidator{"Tavily": c.tavily}
	if c.groq != nil {
		validators["Groq"] = c.groq
	}
	return validators
}

// validateKeys checks all provider credentials concurrently and returns the first failure
func validateKeys(ctx context.Context, validators map[string]keyValidator, logger *log.Logger) error {
	g, gctx := errgroup.WithContext(ctx)
	for name, validator := range validators {
		g.Go(func() error {
			if err := validator.ValidateAPIKey(gctx); err != nil {
				return fmt.Errorf("%s API key is invalid: %w", name, err)
			}
			logger.Printf("%s API key is valid", name)
			return nil
		})
	}
	return g.Wait()
}
