package fetcher

import (
	"bytes"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
	"golang.org/x/net/html"
)

// blockElements start and end on their own line in extracted text.
var blockElements = map[string]bool{
	"address": true, "article": true, "aside": true, "blockquote": true, "br": true,
	"dd": true, "div": true, "dl": true, "dt": true, "figcaption": true, "figure": true,
	"footer": true, "h1": true, "h2": true, "h3": true, "h4": true, "h5": true, "h6": true,
	"header": true, "hr": true, "li": true, "main": true, "nav": true, "ol": true,
	"p": true, "pre": true, "section": true, "table": true, "tr": true, "ul": true,
}

var layoutSpace = strings.NewReplacer("\r\n", " ", "\n", " ", "\r", " ", "\t", " ")

// extractHTML returns the <title> text and the readable body text of an HTML page.
func extractHTML(body []byte) (string, string, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return "", "", err
	}

	title := collapseSpaces(doc.Find("title").First().Text())

	doc.Find("script, style, noscript, svg, template, head").Remove()

	root := doc.Find("body")
	if root.Length() == 0 {
		root = doc.Selection
	}

	var b strings.Builder
	for _, n := range root.Nodes {
		writeText(n, &b, false)
	}
	return title, normalizeLines(b.String()), nil
}

// writeText appends the text below n. Outside <pre>, source line breaks are
// layout only and become spaces.
func writeText(n *html.Node, b *strings.Builder, pre bool) {
	block := n.Type == html.ElementNode && blockElements[n.Data]
	if n.Type == html.ElementNode && n.Data == "pre" {
		pre = true
	}
	if n.Type == html.TextNode {
		if pre {
			b.WriteString(n.Data)
		} else {
			b.WriteString(layoutSpace.Replace(n.Data))
		}
	}
	if block {
		b.WriteString("\n\n")
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		writeText(c, b, pre)
	}
	if block {
		b.WriteString("\n\n")
	}
}

// normalizeLines collapses runs of spaces, trims every line, and squeezes
// consecutive blank lines into one so paragraphs are separated by "\n\n".
func normalizeLines(s string) string {
	lines := strings.Split(s, "\n")
	out := make([]string, 0, len(lines))
	blank := true
	for _, line := range lines {
		line = collapseSpaces(line)
		if line == "" {
			if !blank {
				out = append(out, "")
			}
			blank = true
			continue
		}
		out = append(out, line)
		blank = false
	}
	for len(out) > 0 && out[len(out)-1] == "" {
		out = out[:len(out)-1]
	}
	return strings.Join(out, "\n")
}

func collapseSpaces(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// extractMarkdown returns the first H1 (or H2) as title and the block contents
// of the document separated by blank lines.
func extractMarkdown(md goldmark.Markdown, content []byte) (string, string) {
	doc := md.Parser().Parse(text.NewReader(content))

	var blocks []string
	collectBlocks(doc, content, &blocks)
	return markdownTitle(doc, content), strings.Join(blocks, "\n\n")
}

func markdownTitle(doc ast.Node, content []byte) string {
	var firstH1, firstH2 string
	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		heading, ok := n.(*ast.Heading)
		if !ok {
			return ast.WalkContinue, nil
		}
		switch {
		case heading.Level == 1 && firstH1 == "":
			firstH1 = headingText(heading, content)
			return ast.WalkStop, nil
		case heading.Level == 2 && firstH2 == "":
			firstH2 = headingText(heading, content)
		}
		return ast.WalkSkipChildren, nil
	})
	if firstH1 != "" {
		return firstH1
	}
	return firstH2
}

func headingText(h *ast.Heading, content []byte) string {
	var b strings.Builder
	lines := h.Lines()
	for i := 0; i < lines.Len(); i++ {
		seg := lines.At(i)
		b.Write(seg.Value(content))
	}
	return strings.TrimSpace(b.String())
}

// collectBlocks appends the raw source of every leaf block, descending into lists and quotes.
func collectBlocks(n ast.Node, content []byte, out *[]string) {
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		switch c.Kind() {
		case ast.KindList, ast.KindListItem, ast.KindBlockquote:
			collectBlocks(c, content, out)
			continue
		}
		if c.Type() != ast.TypeBlock {
			continue
		}

		var b strings.Builder
		lines := c.Lines()
		for i := 0; i < lines.Len(); i++ {
			seg := lines.At(i)
			b.Write(seg.Value(content))
		}
		if s := strings.TrimSpace(b.String()); s != "" {
			*out = append(*out, s)
		}
	}
}
