// Package resolver turns search queries and URLs into playable stream
// URLs and ranked track metadata.
package resolver

import (
	"context"
	"errors"
	"net/url"
	"strings"
	"time"
)

var (
	// ErrNotFound reports a query that produced no playable result.
	ErrNotFound = errors.New("no playable result found")
	// ErrTimeout reports a resolver call that hit its deadline.
	ErrTimeout = errors.New("resolver timed out")
)

// Track is one search result.
type Track struct {
	Title    string
	URL      string
	Duration time.Duration
	Source   string
}

// Resolver resolves queries to stream URLs and searches for tracks.
// All calls are bounded by the passed context.
type Resolver interface {
	// ResolveStream returns a directly playable stream URL for a search
	// query or a media page URL. Empty or non-URL output is ErrNotFound.
	ResolveStream(ctx context.Context, query string) (string, error)

	// Search returns ranked track metadata for a query.
	Search(ctx context.Context, query string) ([]Track, error)
}

// IsURL reports whether input looks like an absolute http(s) URL.
func IsURL(input string) bool {
	u, err := url.Parse(input)
	return err == nil && (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

// IsYouTubeURL reports whether input points at a YouTube watch page.
func IsYouTubeURL(input string) bool {
	return strings.Contains(input, "youtube.com/") || strings.Contains(input, "youtu.be/")
}
