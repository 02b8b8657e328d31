// Package search retrieves candidate web content for a query. It backs
// course recommendations and the events feed.
package search

import "context"

// Candidate is one search hit. Fields are taken as found; callers filter.
type Candidate struct {
	Title   string `json:"title"`
	URL     string `json:"url"`
	Snippet string `json:"snippet"`
}

// ContentLookup returns zero or more candidates for a query.
type ContentLookup interface {
	Search(ctx context.Context, query string) ([]Candidate, error)
}

// LookupFunc adapts a function to ContentLookup.
type LookupFunc func(ctx context.Context, query string) ([]Candidate, error)

func (f LookupFunc) Search(ctx context.Context, query string) ([]Candidate, error) {
	return f(ctx, query)
}
