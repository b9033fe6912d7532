package tavily

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/ben-bakker/searchai/internal/types"
)

// DefaultBaseURL is the public Tavily API endpoint
const DefaultBaseURL = "https://api.tavily.com"

// maxResponseBytes caps how much of a provider response is read.
const maxResponseBytes = 8 << 20

// ErrMissingResults is returned when a response has no results field
var ErrMissingResults = errors.New("invalid response format from Tavily API: missing results")

// Client calls the Tavily search API. It is safe for concurrent use.
type Client struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
}

// SearchRequest represents the request body of POST /search
type SearchRequest struct {
	APIKey         string   `json:"api_key"`
	Query          string   `json:"query"`
	MaxResults     int      `json:"max_results"`
	SearchDepth    string   `json:"search_depth,omitempty"`
	IncludeDomains []string `json:"include_domains"`
	ExcludeDomains []string `json:"exclude_domains"`
}

// SearchResponse represents the parts of the Tavily response the gateway uses.
// Results stays a pointer so that a missing field can be told apart from an
// empty list.
type SearchResponse struct {
	Query        string             `json:"query"`
	ResponseTime float64            `json:"response_time"`
	Results      *[]types.RawResult `json:"results"`
}

// ErrorResponse represents an error body from the Tavily API
type ErrorResponse struct {
	Detail struct {
		Error string `json:"error"`
	} `json:"detail"`
	Error string `json:"error"`
}

// StatusError is returned for non-2xx responses
type StatusError struct {
	StatusCode int
	Message    string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("Tavily API error (%d): %s", e.StatusCode, e.Message)
}

// NewClient creates a new Tavily client. A nil httpClient gets a client with
// the given timeout.
func NewClient(apiKey, baseURL string, httpClient *http.Client, timeout time.Duration) (*Client, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, fmt.Errorf("Tavily API key is required")
	}
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if httpClient == nil {
		if timeout <= 0 {
			timeout = 30 * time.Second
		}
		httpClient = &http.Client{Timeout: timeout}
	}

	return &Client{
		apiKey:     apiKey,
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		httpClient: httpClient,
	}, nil
}

// Search performs one search and returns the raw result records in provider order
func (c *Client) Search(ctx context.Context, query string, opts types.SearchOptions) ([]types.RawResult, error) {
	request := SearchRequest{
		APIKey:         c.apiKey,
		Query:          query,
		MaxResults:     opts.MaxResults,
		SearchDepth:    opts.SearchDepth,
		IncludeDomains: nonNil(opts.IncludeDomains),
		ExcludeDomains: nonNil(opts.ExcludeDomains),
	}

	resp, err := c.post(ctx, request)
	if err != nil {
		return nil, err
	}
	if resp.Results == nil {
		return nil, ErrMissingResults
	}

	return *resp.Results, nil
}

// ValidateAPIKey issues a minimal search to confirm the key is accepted
func (c *Client) ValidateAPIKey(ctx context.Context) error {
	_, err := c.post(ctx, SearchRequest{
		APIKey:         c.apiKey,
		Query:          "test",
		MaxResults:     1,
		IncludeDomains: []string{},
		ExcludeDomains: []string{},
	})
	if err != nil {
		return fmt.Errorf("Tavily API key validation failed: %w", err)
	}
	return nil
}

func (c *Client) post(ctx context.Context, request SearchRequest) (*SearchResponse, error) {
	requestBody, err := json.Marshal(request)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/search", bytes.NewReader(requestBody))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to call Tavily API: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &StatusError{StatusCode: resp.StatusCode, Message: errorMessage(body)}
	}

	var searchResp SearchResponse
	if err := json.Unmarshal(body, &searchResp); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}

	return &searchResp, nil
}

func errorMessage(body []byte) string {
	var errorResp ErrorResponse
	if err := json.Unmarshal(body, &errorResp); err == nil {
		if errorResp.Detail.Error != "" {
			return errorResp.Detail.Error
		}
		if errorResp.Error != "" {
			return errorResp.Error
		}
	}
	msg := strings.TrimSpace(string(body))
	if len(msg) > 512 {
		msg = msg[:512]
	}
	return msg
}

func nonNil(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}
