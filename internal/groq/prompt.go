package groq

import (
	"fmt"
	"strings"

	"github.com/ben-bakker/searchai/internal/types"
)

func systemPrompt(languageName string) string {
	return fmt.Sprintf(`You are a helpful AI assistant that generates comprehensive answers based on search results.
ALWAYS respond in %[1]s language.
Follow these rules:
1. Analyze all search results carefully
2. Provide a detailed but concise answer in %[1]s
3. Focus on accuracy and relevance
4. If the information is not sufficient, state this clearly
5. Cite sources when appropriate
6. Keep a neutral and professional tone`, languageName)
}

// userPrompt lists every result as a Title/Content/URL block followed by the query.
func userPrompt(query string, results []types.SearchResult, languageName string) string {
	blocks := make([]string, len(results))
	for i, r := range results {
		blocks[i] = fmt.Sprintf("Title: %s\nContent: %s\nURL: %s\n---\n", r.Title, r.Content, r.URL)
	}

	var b strings.Builder
	b.WriteString("Search results:\n")
	b.WriteString(strings.Join(blocks, "\n"))
	fmt.Fprintf(&b, "\n\nBased on these search results, please provide a comprehensive answer in %s to the query: \"%s\"", languageName, query)
	return b.String()
}
