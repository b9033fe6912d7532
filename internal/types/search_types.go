package types

// Default search options applied when a request leaves a field unset.
const (
	DefaultMaxResults  = 5
	DefaultSearchDepth = "advanced"
)

// RawResult is a provider result record as decoded from JSON. Fields may be
// missing or carry unexpected types.
type RawResult map[string]any

// SearchResult is a normalized result with every field populated
type SearchResult struct {
	Title         string  `json:"title"`
	Content       string  `json:"content"`
	URL           string  `json:"url"`
	Score         float64 `json:"score"`
	PublishedDate *string `json:"published_date"`
}

// Raw converts the result back into provider shape.
func (r SearchResult) Raw() RawResult {
	raw := RawResult{
		"title":   r.Title,
		"content": r.Content,
		"url":     r.URL,
		"score":   r.Score,
	}
	if r.PublishedDate != nil {
		raw["published_date"] = *r.PublishedDate
	}
	return raw
}

// Source is the {title, url} projection of a result cited by an answer
type Source struct {
	Title string `json:"title"`
	URL   string `json:"url"`
}

// AIAnswer is a generated answer together with the results it was built from
type AIAnswer struct {
	Answer  string   `json:"answer"`
	Model   string   `json:"model"`
	Sources []Source `json:"sources"`
}

// SearchResponse is the payload returned for one search request
type SearchResponse struct {
	Results       []SearchResult `json:"results"`
	AIAnswer      *AIAnswer      `json:"aiAnswer,omitempty"`
	AIAnswerError string         `json:"aiAnswerError,omitempty"`
}

// SearchOptions holds fully resolved options for one search
type SearchOptions struct {
	MaxResults     int      `json:"max_results"`
	SearchDepth    string   `json:"search_depth"`
	IncludeDomains []string `json:"include_domains"`
	ExcludeDomains []string `json:"exclude_domains"`
	GenerateAnswer bool     `json:"-"`
}

// DefaultSearchOptions returns the options used when a request overrides nothing
func DefaultSearchOptions() SearchOptions {
	return SearchOptions{
		MaxResults:     DefaultMaxResults,
		SearchDepth:    DefaultSearchDepth,
		IncludeDomains: []string{},
		ExcludeDomains: []string{},
	}
}

// SearchOptionsOverride carries caller supplied options. A nil field keeps
// the default.
type SearchOptionsOverride struct {
	GenerateAnswer *bool    `json:"generateAnswer,omitempty"`
	MaxResults     *int     `json:"maxResults,omitempty"`
	SearchDepth    *string  `json:"searchDepth,omitempty"`
	IncludeDomains []string `json:"includeDomains,omitempty"`
	ExcludeDomains []string `json:"excludeDomains,omitempty"`
}

// Merge applies the override on top of the defaults
func (o *SearchOptionsOverride) Merge() SearchOptions {
	opts := DefaultSearchOptions()
	if o == nil {
		return opts
	}
	if o.GenerateAnswer != nil {
		opts.GenerateAnswer = *o.GenerateAnswer
	}
	if o.MaxResults != nil {
		opts.MaxResults = *o.MaxResults
	}
	if o.SearchDepth != nil {
		opts.SearchDepth = *o.SearchDepth
	}
	if o.IncludeDomains != nil {
		opts.IncludeDomains = append([]string(nil), o.IncludeDomains...)
	}
	if o.ExcludeDomains != nil {
		opts.ExcludeDomains = append([]string(nil), o.ExcludeDomains...)
	}
	return opts
}
