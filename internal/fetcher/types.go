package fetcher

// Document is one fetched page.
type Document struct {
	Source  string // URL the content was fetched from
	Content string // Extracted plain text
	Title   string // Page title; empty when the source has none
}
