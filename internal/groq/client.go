package groq

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"golang.org/x/text/language"
	"golang.org/x/text/language/display"

	"github.com/ben-bakker/searchai/internal/types"
)

// Defaults for the Groq OpenAI-compatible endpoint
const (
	DefaultBaseURL     = "https://api.groq.com/openai/v1"
	DefaultModel       = "mixtral-8x7b-32768"
	DefaultTemperature = 0.7
	DefaultMaxTokens   = 1000
)

// Config holds answer generation settings
type Config struct {
	APIKey      string
	BaseURL     string
	Model       string
	Language    string // BCP 47 tag of the answer language
	Temperature float64
	MaxTokens   int
	HTTPClient  *http.Client
}

// Client generates answers from search results with a Groq chat model.
// It is safe for concurrent use.
type Client struct {
	api          openai.Client
	model        string
	languageName string
	temperature  float64
	maxTokens    int
}

// NewClient creates a new Groq client
func NewClient(cfg Config) (*Client, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, fmt.Errorf("Groq API key is required")
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = DefaultMaxTokens
	}

	name, err := LanguageName(cfg.Language)
	if err != nil {
		return nil, err
	}

	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithBaseURL(cfg.BaseURL),
		option.WithMaxRetries(0),
	}
	if cfg.HTTPClient != nil {
		opts = append(opts, option.WithHTTPClient(cfg.HTTPClient))
	}

	return &Client{
		api:          openai.NewClient(opts...),
		model:        cfg.Model,
		languageName: name,
		temperature:  cfg.Temperature,
		maxTokens:    cfg.MaxTokens,
	}, nil
}

// LanguageName returns the English name of a BCP 47 tag, e.g. "ru" -> "Russian".
// An empty tag means Russian.
func LanguageName(tag string) (string, error) {
	if strings.TrimSpace(tag) == "" {
		tag = "ru"
	}
	parsed, err := language.Parse(tag)
	if err != nil {
		return "", fmt.Errorf("invalid answer language %q: %w", tag, err)
	}
	if name := display.English.Languages().Name(parsed); name != "" {
		return name, nil
	}
	return parsed.String(), nil
}

// GenerateAnswer asks the model for an answer to query grounded in results
func (c *Client) GenerateAnswer(ctx context.Context, query string, results []types.SearchResult) (*types.AIAnswer, error) {
	params := openai.ChatCompletionNewParams{
		Model: c.model,
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(systemPrompt(c.languageName)),
			openai.UserMessage(userPrompt(query, results, c.languageName)),
		},
		Temperature: openai.Float(c.temperature),
		MaxTokens:   openai.Int(int64(c.maxTokens)),
	}

	resp, err := c.api.Chat.Completions.New(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("failed to generate answer: %w", describeError(err))
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("failed to generate answer: no choices in response")
	}

	sources := make([]types.Source, len(results))
	for i, r := range results {
		sources[i] = types.Source{Title: r.Title, URL: r.URL}
	}

	return &types.AIAnswer{
		Answer:  resp.Choices[0].Message.Content,
		Model:   resp.Model,
		Sources: sources,
	}, nil
}

// ValidateAPIKey sends a one-message completion to confirm the key is accepted
func (c *Client) ValidateAPIKey(ctx context.Context) error {
	_, err := c.api.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model:    c.model,
		Messages: []openai.ChatCompletionMessageParamUnion{openai.UserMessage("Hello")},
	})
	if err != nil {
		return fmt.Errorf("Groq API key validation failed: %w", describeError(err))
	}
	return nil
}

func describeError(err error) error {
	var apiErr *openai.Error
	if errors.As(err, &apiErr) {
		return fmt.Errorf("Groq API error (%d): %w", apiErr.StatusCode, err)
	}
	return err
}
