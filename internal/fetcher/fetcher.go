package fetcher

import (
	"context"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"os"
	"path"
	"strings"
	"time"

	"github.com/yuin/goldmark"

	"docsrag/internal/contextutil"
)

// maxBodyBytes is the largest response body accepted. Larger pages are an error.
const maxBodyBytes = 20 << 20

const userAgent = "docsrag/1.0 (+https://github.com/langchain-ai/langgraph)"

// Fetcher retrieves pages and turns them into plain-text Documents.
type Fetcher struct {
	client   *http.Client
	markdown goldmark.Markdown
	maxBody  int64
}

// New creates a Fetcher whose HTTP requests time out after timeout.
func New(timeout time.Duration) *Fetcher {
	return NewWithClient(&http.Client{Timeout: timeout})
}

// NewWithClient creates a Fetcher using the given HTTP client.
func NewWithClient(client *http.Client) *Fetcher {
	return &Fetcher{
		client:   client,
		markdown: goldmark.New(),
		maxBody:  maxBodyBytes,
	}
}

// FetchAll fetches every URL in order and returns one Document per URL.
// The first failure aborts the whole batch; there is no retry and no partial result.
func (f *Fetcher) FetchAll(ctx context.Context, urls []string) ([]Document, error) {
	logger := contextutil.LoggerFromContext(ctx)

	docs := make([]Document, 0, len(urls))
	for _, u := range urls {
		doc, err := f.Fetch(ctx, u)
		if err != nil {
			return nil, err
		}
		logger.DebugContext(ctx, "fetched document", "source", u, "title", doc.Title, "chars", len(doc.Content))
		docs = append(docs, doc)
	}

	logger.InfoContext(ctx, "loaded documents", "count", len(docs))
	return docs, nil
}

// Fetch retrieves a single http(s) or file URL.
func (f *Fetcher) Fetch(ctx context.Context, rawURL string) (Document, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return Document{}, fmt.Errorf("invalid url %q: %w", rawURL, err)
	}

	var (
		body        []byte
		contentType string
	)
	switch u.Scheme {
	case "http", "https":
		body, contentType, err = f.get(ctx, rawURL)
	case "file":
		body, err = os.ReadFile(u.Path)
		contentType = mime.TypeByExtension(path.Ext(u.Path))
	default:
		err = fmt.Errorf("unsupported scheme %q", u.Scheme)
	}
	if err != nil {
		return Document{}, fmt.Errorf("failed to fetch %s: %w", rawURL, err)
	}

	doc := Document{Source: rawURL}
	switch detectFormat(contentType, u.Path) {
	case formatHTML:
		doc.Title, doc.Content, err = extractHTML(body)
		if err != nil {
			return Document{}, fmt.Errorf("failed to parse html from %s: %w", rawURL, err)
		}
	case formatMarkdown:
		doc.Title, doc.Content = extractMarkdown(f.markdown, body)
	default:
		doc.Content = string(body)
	}
	return doc, nil
}

func (f *Fetcher) get(ctx context.Context, rawURL string) ([]byte, string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "text/html,text/markdown;q=0.9,text/plain;q=0.8,*/*;q=0.5")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, "", fmt.Errorf("failed to send request: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, "", fmt.Errorf("bad status %d: %s", resp.StatusCode, strings.TrimSpace(string(raw)))
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, f.maxBody+1))
	if err != nil {
		return nil, "", fmt.Errorf("failed to read body: %w", err)
	}
	if int64(len(body)) > f.maxBody {
		return nil, "", fmt.Errorf("response body exceeds %d bytes", f.maxBody)
	}
	return body, resp.Header.Get("Content-Type"), nil
}

type format int

const (
	formatText format = iota
	formatHTML
	formatMarkdown
)

// detectFormat picks an extractor from the media type, falling back to the path extension.
func detectFormat(contentType, urlPath string) format {
	mediaType, _, _ := mime.ParseMediaType(contentType)
	switch mediaType {
	case "text/html", "application/xhtml+xml":
		return formatHTML
	case "text/markdown", "text/x-markdown":
		return formatMarkdown
	}

	switch strings.ToLower(path.Ext(urlPath)) {
	case ".md", ".markdown":
		return formatMarkdown
	case ".html", ".htm":
		return formatHTML
	case "":
		// Directory-style URLs without a content type are almost always HTML pages.
		if mediaType == "" {
			return formatHTML
		}
	}
	return formatText
}
