// Package linkmeta fetches page metadata (title, preview image) for URL
// imports. Every fetch carries a hard timeout and degrades to zero
// values on failure; a slow or broken remote page must never block the
// import itself.
package linkmeta

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strings"
	"time"
)

// FetchTimeout bounds the whole metadata fetch.
const FetchTimeout = 5 * time.Second

// maxBodyBytes caps how much of the page is read looking for metadata.
const maxBodyBytes = 512 * 1024

// Meta is the extracted page metadata. Either field may be empty.
type Meta struct {
	Title    string
	ImageURL string
}

var (
	titleRe   = regexp.MustCompile(`(?is)<title[^>]*>(.*?)</title>`)
	ogTitleRe = regexp.MustCompile(`(?is)<meta[^>]+property=["']og:title["'][^>]+content=["']([^"']*)["']`)
	ogImageRe = regexp.MustCompile(`(?is)<meta[^>]+property=["']og:image["'][^>]+content=["']([^"']*)["']`)
)

// Fetcher pulls metadata over HTTP.
type Fetcher struct {
	client *http.Client
}

// NewFetcher creates a fetcher with the default timeout.
func NewFetcher() *Fetcher {
	return &Fetcher{client: &http.Client{Timeout: FetchTimeout}}
}

// Fetch retrieves the page at url and extracts its title and preview
// image. Any failure returns zero-value Meta and the error; callers are
// expected to log it and proceed with placeholders.
func (f *Fetcher) Fetch(ctx context.Context, url string) (Meta, error) {
	ctx, cancel := context.WithTimeout(ctx, FetchTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return Meta{}, fmt.Errorf("building metadata request: %w", err)
	}
	req.Header.Set("Accept", "text/html")

	resp, err := f.client.Do(req)
	if err != nil {
		return Meta{}, fmt.Errorf("fetching %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Meta{}, fmt.Errorf("fetching %s: status %d", url, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return Meta{}, fmt.Errorf("reading %s: %w", url, err)
	}

	return Extract(string(body)), nil
}

// Extract pulls metadata out of raw HTML, preferring OpenGraph tags over
// the document title.
func Extract(html string) Meta {
	var m Meta
	if match := ogTitleRe.FindStringSubmatch(html); match != nil {
		m.Title = cleanText(match[1])
	}
	if m.Title == "" {
		if match := titleRe.FindStringSubmatch(html); match != nil {
			m.Title = cleanText(match[1])
		}
	}
	if match := ogImageRe.FindStringSubmatch(html); match != nil {
		m.ImageURL = strings.TrimSpace(match[1])
	}
	return m
}

func cleanText(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
