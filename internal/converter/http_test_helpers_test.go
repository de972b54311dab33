package converter

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strings"
	"sync"

	"github.com/johnqtcg/pr2md/internal/assets"
)

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(r *http.Request) (*http.Response, error) {
	return f(r)
}

const pngBytes = "\x89PNG\r\n\x1a\nfake-png"

// countingDownloader serves canned bodies by URL and counts requests.
type countingDownloader struct {
	mu     sync.Mutex
	bodies map[string]string
	calls  []string
}

func (d *countingDownloader) Download(_ context.Context, rawURL, _ string) ([]byte, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.calls = append(d.calls, rawURL)
	body, ok := d.bodies[rawURL]
	if !ok {
		return nil, &assets.HTTPStatusError{StatusCode: http.StatusNotFound}
	}
	return []byte(body), nil
}

var _ assets.Downloader = (*countingDownloader)(nil)

// httpDownloader drives the real asset fetcher over an in-memory transport.
func httpDownloader(bodies map[string]string) assets.Downloader {
	client := &http.Client{Transport: roundTripFunc(func(r *http.Request) (*http.Response, error) {
		body, ok := bodies[r.URL.String()]
		if !ok {
			return nil, errors.New("connection refused")
		}
		return &http.Response{
			StatusCode: http.StatusOK,
			Header:     make(http.Header),
			Body:       io.NopCloser(strings.NewReader(body)),
		}, nil
	})}
	return assets.NewFetcher(assets.WithHTTPClient(client))
}
