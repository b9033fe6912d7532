package search

import (
	"fmt"
	"math/rand"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ben-bakker/searchai/internal/types"
)

func TestNormalizeDropsSharedPrefixDuplicates(t *testing.T) {
	prefix := strings.Repeat("hello world ", 10) // 120 characters
	raw := []types.RawResult{
		{"url": "a", "content": prefix + "first"},
		{"url": "a", "content": prefix + "again"},
	}

	got := Normalize(raw)

	require.Len(t, got, 1)
	assert.Equal(t, prefix+"first", got[0].Content)
}

func TestNormalizeKeepsDifferentPrefixes(t *testing.T) {
	raw := []types.RawResult{
		{"url": "a", "content": "hello world"},
		{"url": "a", "content": "hello world, again"},
		{"url": "b", "content": "hello world"},
	}

	got := Normalize(raw)

	require.Len(t, got, 3, "short contents differ within the first 100 characters")
}

func TestNormalizeAppliesDefaults(t *testing.T) {
	raw := []types.RawResult{
		{"url": "https://example.com/1"},
		{"url": "https://example.com/2", "title": "", "content": 42, "score": "high"},
		{"url": "https://example.com/3", "title": "T", "content": "C", "score": 0.87, "published_date": "2024-05-01"},
		{"url": "https://example.com/4", "publishedDate": "2024-06-01"},
	}

	got := Normalize(raw)
	require.Len(t, got, 4)

	assert.Equal(t, DefaultTitle, got[0].Title)
	assert.Equal(t, DefaultContent, got[0].Content)
	assert.Zero(t, got[0].Score)
	assert.Nil(t, got[0].PublishedDate)

	assert.Equal(t, DefaultTitle, got[1].Title)
	assert.Equal(t, DefaultContent, got[1].Content)
	assert.Zero(t, got[1].Score)

	assert.Equal(t, "T", got[2].Title)
	assert.Equal(t, "C", got[2].Content)
	assert.InDelta(t, 0.87, got[2].Score, 1e-9)
	require.NotNil(t, got[2].PublishedDate)
	assert.Equal(t, "2024-05-01", *got[2].PublishedDate)

	require.NotNil(t, got[3].PublishedDate)
	assert.Equal(t, "2024-06-01", *got[3].PublishedDate)
}

func TestNormalizeDropsRecordsWithoutURL(t *testing.T) {
	raw := []types.RawResult{
		{"content": "no url"},
		{"url": "", "content": "empty url"},
		{"url": 7, "content": "numeric url"},
		{"url": "https://example.com", "content": "ok"},
	}

	got, stats := NormalizeWithStats(raw)

	require.Len(t, got, 1)
	assert.Equal(t, "https://example.com", got[0].URL)
	assert.Equal(t, NormalizeStats{Input: 4, Kept: 1, MissingURL: 3}, stats)
}

func TestNormalizePrefixCountsCharacters(t *testing.T) {
	// 100 multi-byte characters followed by different tails.
	prefix := strings.Repeat("ж", 100)
	raw := []types.RawResult{
		{"url": "u", "content": prefix + "один"},
		{"url": "u", "content": prefix + "два"},
	}

	got, stats := NormalizeWithStats(raw)

	require.Len(t, got, 1)
	assert.Equal(t, 1, stats.Duplicates)
}

func TestNormalizeMissingContentDuplicatesDefault(t *testing.T) {
	raw := []types.RawResult{
		{"url": "u"},
		{"url": "u", "content": DefaultContent},
	}

	got := Normalize(raw)

	require.Len(t, got, 1)
}

func TestNormalizeDoesNotMutateInput(t *testing.T) {
	raw := []types.RawResult{
		{"url": "a", "content": "x"},
		{"url": "a", "content": "x"},
	}
	before := fmt.Sprintf("%v", raw)

	_ = Normalize(raw)

	assert.Equal(t, before, fmt.Sprintf("%v", raw))
	assert.Len(t, raw, 2)
	_, hasTitle := raw[0]["title"]
	assert.False(t, hasTitle)
}

func TestNormalizeEmpty(t *testing.T) {
	got := Normalize(nil)
	require.NotNil(t, got)
	assert.Empty(t, got)
}

// randomRaw builds provider-like records from a small alphabet so collisions
// are frequent.
func randomRaw(rng *rand.Rand) []types.RawResult {
	urls := []string{"a", "b", "https://c.example", ""}
	contents := []string{
		"",
		"short",
		strings.Repeat("p", 100) + "x",
		strings.Repeat("p", 100) + "y",
		strings.Repeat("q", 99),
	}

	n := rng.Intn(12)
	raw := make([]types.RawResult, 0, n)
	for i := 0; i < n; i++ {
		record := types.RawResult{}
		if u := urls[rng.Intn(len(urls))]; u != "" || rng.Intn(2) == 0 {
			record["url"] = u
		}
		if c := contents[rng.Intn(len(contents))]; c != "" {
			record["content"] = c
		}
		if rng.Intn(2) == 0 {
			record["title"] = fmt.Sprintf("title-%d", rng.Intn(3))
		}
		if rng.Intn(2) == 0 {
			record["score"] = rng.Float64()
		}
		if rng.Intn(3) == 0 {
			record["published_date"] = "2024-01-02"
		}
		raw = append(raw, record)
	}
	return raw
}

func TestNormalizeProperties(t *testing.T) {
	rng := rand.New(rand.NewSource(42))

	for iter := 0; iter < 500; iter++ {
		raw := randomRaw(rng)
		got := Normalize(raw)

		require.LessOrEqual(t, len(got), len(raw))

		seen := make(map[string]bool)
		for _, r := range got {
			key := dedupKey(r)
			require.False(t, seen[key], "duplicate key in output")
			seen[key] = true

			require.NotEmpty(t, r.Title)
			require.NotEmpty(t, r.Content)
			require.NotEmpty(t, r.URL)
		}

		// Output is a subsequence of the input in first-seen order.
		j := 0
		for _, record := range raw {
			if j < len(got) && record["url"] == got[j].URL {
				if c, ok := record["content"].(string); (ok && c == got[j].Content) || (!ok && got[j].Content == DefaultContent) {
					j++
				}
			}
		}
		require.Equal(t, len(got), j, "output order must follow input order")

		// Idempotent over its own output.
		again := make([]types.RawResult, len(got))
		for i, r := range got {
			again[i] = r.Raw()
		}
		require.Equal(t, got, Normalize(again))
	}
}
