package query

import (
	"fmt"
	"io"

	"docsrag/internal/vectorstore"
)

// previewRunes is how much of each result's content is printed.
const previewRunes = 200

// Print writes results as a numbered list with score, source and a content preview.
func Print(w io.Writer, query string, results []vectorstore.SearchResult) {
	fmt.Fprintf(w, "\nQuery: %s\n", query)
	fmt.Fprintf(w, "Found %d results:\n", len(results))
	for i, r := range results {
		fmt.Fprintf(w, "\n%d. Score: %.4f\n", i+1, r.Score)
		fmt.Fprintf(w, "   Source: %s\n", r.Source)
		fmt.Fprintf(w, "   Content: %s...\n", Preview(r.Content))
	}
}

// PrintAnswer writes a generative answer followed by the sources it used.
func PrintAnswer(w io.Writer, query string, gen *vectorstore.Generation) {
	fmt.Fprintf(w, "\nQuestion: %s\n\n%s\n", query, gen.Answer)
	if len(gen.Sources) == 0 {
		return
	}
	fmt.Fprintln(w, "\nSources:")
	for i, r := range gen.Sources {
		fmt.Fprintf(w, "%d. %s (%.4f)\n", i+1, r.Source, r.Score)
	}
}

// Preview returns the first 200 runes of content.
func Preview(content string) string {
	runes := []rune(content)
	if len(runes) <= previewRunes {
		return content
	}
	return string(runes[:previewRunes])
}
