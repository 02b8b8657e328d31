package search

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

const (
	DefaultSearchURL = "https://www.google.com/search"
	DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36"

	// DefaultMaxBlocks is how many result blocks are inspected per page.
	DefaultMaxBlocks = 5

	maxPageBytes = 2 << 20
)

// snippetClasses mark description elements in result pages.
var snippetClasses = []string{"st", "s", "aCOpRe", "VwiC3b"}

// HTMLLookup scrapes a search results page. A result block is the widest
// div around a single h3 that also contains a link.
type HTMLLookup struct {
	client    *http.Client
	searchURL string
	userAgent string
	maxBlocks int
}

// HTMLOption configures an HTMLLookup.
type HTMLOption func(*HTMLLookup)

// WithSearchURL overrides the results page endpoint.
func WithSearchURL(u string) HTMLOption {
	return func(h *HTMLLookup) { h.searchURL = u }
}

// WithHTTPClient sets the HTTP client.
func WithHTTPClient(c *http.Client) HTMLOption {
	return func(h *HTMLLookup) { h.client = c }
}

// WithMaxBlocks sets how many result blocks are inspected.
func WithMaxBlocks(n int) HTMLOption {
	return func(h *HTMLLookup) { h.maxBlocks = n }
}

// NewHTMLLookup creates an HTMLLookup with a 10s client timeout.
func NewHTMLLookup(opts ...HTMLOption) *HTMLLookup {
	h := &HTMLLookup{
		client:    &http.Client{Timeout: 10 * time.Second},
		searchURL: DefaultSearchURL,
		userAgent: DefaultUserAgent,
		maxBlocks: DefaultMaxBlocks,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

func (h *HTMLLookup) Search(ctx context.Context, query string) ([]Candidate, error) {
	u, err := url.Parse(h.searchURL)
	if err != nil {
		return nil, fmt.Errorf("parse search url: %w", err)
	}
	q := u.Query()
	q.Set("q", query)
	q.Set("hl", "en")
	q.Set("gl", "us")
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", h.userAgent)

	resp, err := h.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("search request: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("search request: unexpected status %s", resp.Status)
	}

	doc, err := html.Parse(io.LimitReader(resp.Body, maxPageBytes))
	if err != nil {
		return nil, fmt.Errorf("parse results page: %w", err)
	}
	return extractCandidates(doc, h.maxBlocks), nil
}

// extractCandidates walks the page for result blocks and reads the first
// max of them. max <= 0 reads all. Candidates repeating an earlier URL are
// dropped.
func extractCandidates(doc *html.Node, max int) []Candidate {
	var blocks []*html.Node
	seen := make(map[*html.Node]bool)
	for _, h3 := range findAll(doc, isHeading) {
		if b := blockOf(h3); b != nil && !seen[b] {
			seen[b] = true
			blocks = append(blocks, b)
		}
	}
	if max > 0 && len(blocks) > max {
		blocks = blocks[:max]
	}

	out := make([]Candidate, 0, len(blocks))
	urls := make(map[string]bool, len(blocks))
	for _, b := range blocks {
		title := findFirst(b, isHeading)
		link := findFirst(b, isLink)
		if title == nil || link == nil {
			continue
		}
		c := Candidate{
			Title: strings.TrimSpace(textOf(title)),
			URL:   unwrapRedirect(attr(link, "href")),
		}
		if urls[c.URL] {
			continue
		}
		urls[c.URL] = true
		if s := findFirst(b, isSnippet); s != nil {
			c.Snippet = strings.TrimSpace(textOf(s))
		}
		out = append(out, c)
	}
	return out
}

// blockOf returns the outermost div above h3 that still holds h3 as its
// only heading and contains a link, or nil.
func blockOf(h3 *html.Node) *html.Node {
	var block *html.Node
	for p := parentDiv(h3); p != nil; p = parentDiv(p) {
		if len(findAll(p, isHeading)) > 1 {
			break
		}
		if findFirst(p, isLink) != nil {
			block = p
		}
	}
	return block
}

func isHeading(n *html.Node) bool {
	return n.DataAtom == atom.H3
}

func isLink(n *html.Node) bool {
	return n.DataAtom == atom.A && attr(n, "href") != ""
}

func isSnippet(n *html.Node) bool {
	if n.Type != html.ElementNode {
		return false
	}
	switch n.DataAtom {
	case atom.Span, atom.Div, atom.P:
	default:
		return false
	}
	if strings.Contains(attr(n, "style"), "-webkit-box") {
		return true
	}
	for _, cls := range strings.Fields(attr(n, "class")) {
		for _, want := range snippetClasses {
			if cls == want {
				return true
			}
		}
	}
	return false
}

// unwrapRedirect turns "/url?q=https://x&sa=U" into "https://x".
func unwrapRedirect(href string) string {
	if !strings.HasPrefix(href, "/url?") {
		return href
	}
	u, err := url.Parse(href)
	if err != nil {
		return href
	}
	if target := u.Query().Get("q"); target != "" {
		return target
	}
	return href
}

func parentDiv(n *html.Node) *html.Node {
	for p := n.Parent; p != nil; p = p.Parent {
		if p.DataAtom == atom.Div {
			return p
		}
	}
	return nil
}

func findFirst(n *html.Node, match func(*html.Node) bool) *html.Node {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode && match(c) {
			return c
		}
		if found := findFirst(c, match); found != nil {
			return found
		}
	}
	return nil
}

func findAll(n *html.Node, match func(*html.Node) bool) []*html.Node {
	var out []*html.Node
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && match(n) {
			out = append(out, n)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return out
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func textOf(n *html.Node) string {
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return b.String()
}
