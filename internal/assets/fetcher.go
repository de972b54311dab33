package assets

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const (
	// DefaultMaxRedirects bounds how many redirects one download may follow.
	DefaultMaxRedirects = 5
	// DefaultTimeout is the per-attempt download timeout.
	DefaultTimeout = 30 * time.Second
)

var (
	// ErrTooManyRedirects indicates the redirect budget ran out before a final response.
	ErrTooManyRedirects = errors.New("too many redirects")
	// ErrTimeout indicates one download attempt exceeded its timeout.
	ErrTimeout = errors.New("download timed out")
)

// HTTPStatusError reports a non-success, non-redirect response.
type HTTPStatusError struct {
	StatusCode int
}

func (e *HTTPStatusError) Error() string {
	return fmt.Sprintf("unexpected http status %d", e.StatusCode)
}

// Downloader fetches the raw bytes behind a URL.
type Downloader interface {
	Download(ctx context.Context, rawURL, credential string) ([]byte, error)
}

// Fetcher downloads assets following redirects manually so credentials are decided per hop.
type Fetcher struct {
	client       *http.Client
	maxRedirects int
	timeout      time.Duration
}

// Option customizes a Fetcher.
type Option func(*Fetcher)

// WithHTTPClient replaces the transport client. Its redirect policy is overridden.
func WithHTTPClient(client *http.Client) Option {
	return func(f *Fetcher) {
		if client != nil {
			f.client = client
		}
	}
}

// WithTimeout overrides the per-attempt timeout.
func WithTimeout(d time.Duration) Option {
	return func(f *Fetcher) {
		if d > 0 {
			f.timeout = d
		}
	}
}

// WithMaxRedirects overrides the redirect budget.
func WithMaxRedirects(n int) Option {
	return func(f *Fetcher) {
		if n >= 0 {
			f.maxRedirects = n
		}
	}
}

// NewFetcher creates an asset Fetcher.
func NewFetcher(opts ...Option) *Fetcher {
	f := &Fetcher{
		client:       &http.Client{},
		maxRedirects: DefaultMaxRedirects,
		timeout:      DefaultTimeout,
	}
	for _, opt := range opts {
		opt(f)
	}

	client := *f.client
	client.CheckRedirect = func(*http.Request, []*http.Request) error {
		return http.ErrUseLastResponse
	}
	f.client = &client
	return f
}

// Download returns the full body behind rawURL. The credential is sent only to hosts
// containing "github".
func (f *Fetcher) Download(ctx context.Context, rawURL, credential string) ([]byte, error) {
	return f.fetch(ctx, rawURL, credential, f.maxRedirects)
}

func (f *Fetcher) fetch(ctx context.Context, rawURL, credential string, redirectsRemaining int) ([]byte, error) {
	target, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("parse asset URL %q: %w", rawURL, err)
	}
	if target.Scheme != "http" && target.Scheme != "https" {
		return nil, fmt.Errorf("unsupported asset URL scheme %q", target.Scheme)
	}

	attemptCtx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(attemptCtx, http.MethodGet, target.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("build asset request: %w", err)
	}
	if credential != "" && strings.Contains(target.Hostname(), "github") {
		req.Header.Set("Authorization", "Bearer "+credential)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, f.requestError(ctx, attemptCtx, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode >= 300 && resp.StatusCode < 400 {
		location := resp.Header.Get("Location")
		if location != "" {
			if redirectsRemaining <= 0 {
				return nil, fmt.Errorf("fetch %s: %w", rawURL, ErrTooManyRedirects)
			}
			next, err := target.Parse(location)
			if err != nil {
				return nil, fmt.Errorf("parse redirect location %q: %w", location, err)
			}
			return f.fetch(ctx, next.String(), credential, redirectsRemaining-1)
		}
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("fetch %s: %w", rawURL, &HTTPStatusError{StatusCode: resp.StatusCode})
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, f.requestError(ctx, attemptCtx, err)
	}
	return body, nil
}

func (f *Fetcher) requestError(parent, attempt context.Context, err error) error {
	if parent.Err() == nil && errors.Is(attempt.Err(), context.DeadlineExceeded) {
		return fmt.Errorf("after %s: %w", f.timeout, ErrTimeout)
	}
	return fmt.Errorf("download asset: %w", err)
}
