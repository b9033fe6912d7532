package search

import (
	"math"
	"strings"

	"github.com/ben-bakker/searchai/internal/types"
)

// Defaults applied to provider records with missing fields.
const (
	DefaultTitle   = "No title"
	DefaultContent = "No content available"
)

// dedupPrefixLen is the number of content characters that take part in the
// de-duplication key.
const dedupPrefixLen = 100

// NormalizeStats reports what the normalizer removed
type NormalizeStats struct {
	Input      int
	Kept       int
	Duplicates int
	MissingURL int
}

// Normalize turns raw provider records into uniformly shaped results. Records
// without a url are dropped, and of several records sharing a url and the
// first 100 characters of content only the first is kept. The input is not
// modified.
func Normalize(raw []types.RawResult) []types.SearchResult {
	results, _ := NormalizeWithStats(raw)
	return results
}

// NormalizeWithStats is Normalize plus a count of dropped records.
func NormalizeWithStats(raw []types.RawResult) ([]types.SearchResult, NormalizeStats) {
	stats := NormalizeStats{Input: len(raw)}
	results := make([]types.SearchResult, 0, len(raw))
	seen := make(map[string]struct{}, len(raw))

	for _, record := range raw {
		result, ok := normalizeRecord(record)
		if !ok {
			stats.MissingURL++
			continue
		}

		key := dedupKey(result)
		if _, dup := seen[key]; dup {
			stats.Duplicates++
			continue
		}
		seen[key] = struct{}{}
		results = append(results, result)
	}

	stats.Kept = len(results)
	return results, stats
}

func normalizeRecord(record types.RawResult) (types.SearchResult, bool) {
	url, _ := stringField(record, "url")
	if url == "" {
		return types.SearchResult{}, false
	}

	result := types.SearchResult{
		Title:   DefaultTitle,
		Content: DefaultContent,
		URL:     url,
		Score:   numberField(record, "score"),
	}
	if title, ok := stringField(record, "title"); ok {
		result.Title = title
	}
	if content, ok := stringField(record, "content"); ok {
		result.Content = content
	}
	if published, ok := stringField(record, "published_date", "publishedDate"); ok {
		result.PublishedDate = &published
	}
	return result, true
}

// dedupKey is computed on normalized content so that running the normalizer
// over its own output is a no-op.
func dedupKey(result types.SearchResult) string {
	prefix := contentPrefix(result.Content)

	var b strings.Builder
	b.Grow(len(result.URL) + 1 + len(prefix))
	b.WriteString(result.URL)
	b.WriteByte(0)
	b.WriteString(prefix)
	return b.String()
}

// contentPrefix returns the first dedupPrefixLen code points of s.
func contentPrefix(s string) string {
	n := 0
	for i := range s {
		if n == dedupPrefixLen {
			return s[:i]
		}
		n++
	}
	return s
}

// stringField returns the first non-empty string value among keys.
func stringField(record types.RawResult, keys ...string) (string, bool) {
	for _, key := range keys {
		if s, ok := record[key].(string); ok && s != "" {
			return s, true
		}
	}
	return "", false
}

func numberField(record types.RawResult, key string) float64 {
	var f float64
	switch v := record[key].(type) {
	case float64:
		f = v
	case float32:
		f = float64(v)
	case int:
		f = float64(v)
	case int64:
		f = float64(v)
	default:
		return 0
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return f
}
