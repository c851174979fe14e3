// Package fetch retrieves web pages for the site extractor.
// Bodies are converted to UTF-8 before they are parsed, so selectors always
// see decoded text regardless of the page's declared charset.
package fetch

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/rs/zerolog"
	"golang.org/x/net/html/charset"
)

const (
	// DefaultTimeout bounds a whole request including the body read
	DefaultTimeout = 10 * time.Second
	// DefaultUserAgent identifies as a desktop browser; many novel sites block anything else
	DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36"
	// MaxBodySize caps how much of a response is read
	MaxBodySize = 16 << 20
)

// Fetcher retrieves documents by URL
type Fetcher interface {
	// Fetch downloads and parses an HTML page
	Fetch(ctx context.Context, rawURL string) (*goquery.Document, error)
	// FetchBytes downloads a resource without interpreting it
	FetchBytes(ctx context.Context, rawURL string) ([]byte, error)
}

// Options configures an HTTPFetcher. Zero values select the defaults.
type Options struct {
	Timeout    time.Duration
	UserAgent  string
	HTTPClient *http.Client
	Logger     zerolog.Logger
}

// HTTPFetcher fetches pages over HTTP(S)
type HTTPFetcher struct {
	client    *http.Client
	userAgent string
	logger    zerolog.Logger
}

// New creates an HTTPFetcher
func New(opts Options) *HTTPFetcher {
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	client := opts.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: timeout}
	}
	userAgent := opts.UserAgent
	if userAgent == "" {
		userAgent = DefaultUserAgent
	}
	return &HTTPFetcher{
		client:    client,
		userAgent: userAgent,
		logger:    opts.Logger.With().Str("component", "fetch").Logger(),
	}
}

// Fetch downloads rawURL and parses it. The document's Url is the final URL
// after redirects.
func (f *HTTPFetcher) Fetch(ctx context.Context, rawURL string) (*goquery.Document, error) {
	body, contentType, finalURL, err := f.get(ctx, rawURL)
	if err != nil {
		return nil, err
	}

	utf8Body, err := charset.NewReader(bytes.NewReader(body), contentType)
	if err != nil {
		return nil, fmt.Errorf("decoding %s: %w", rawURL, err)
	}
	doc, err := goquery.NewDocumentFromReader(utf8Body)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", rawURL, err)
	}
	doc.Url = finalURL
	return doc, nil
}

// FetchBytes downloads rawURL and returns the raw body
func (f *HTTPFetcher) FetchBytes(ctx context.Context, rawURL string) ([]byte, error) {
	body, _, _, err := f.get(ctx, rawURL)
	return body, err
}

func (f *HTTPFetcher) get(ctx context.Context, rawURL string) ([]byte, string, *url.URL, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, "", nil, fmt.Errorf("creating request: %w", err)
	}
	if req.URL.Scheme != "http" && req.URL.Scheme != "https" {
		return nil, "", nil, fmt.Errorf("unsupported URL scheme %q", req.URL.Scheme)
	}
	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,*/*;q=0.8")

	start := time.Now()
	resp, err := f.client.Do(req)
	if err != nil {
		return nil, "", nil, fmt.Errorf("fetching %s: %w", rawURL, err)
	}
	defer resp.Body.Close()

	f.logger.Debug().
		Str("url", rawURL).
		Int("status", resp.StatusCode).
		Dur("elapsed", time.Since(start)).
		Msg("fetched")

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, "", nil, fmt.Errorf("unexpected status %d for %s", resp.StatusCode, rawURL)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, MaxBodySize))
	if err != nil {
		return nil, "", nil, fmt.Errorf("reading response body: %w", err)
	}
	return body, resp.Header.Get("Content-Type"), resp.Request.URL, nil
}
