package github

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/johnqtcg/pr2md/internal/logging"
)

const (
	// DefaultMaxRetries is the default retry count for GitHub API requests.
	DefaultMaxRetries = 3
	// DefaultInitialBackoff is the first retry delay.
	DefaultInitialBackoff = 2 * time.Second
	// DefaultGHViewTimeout bounds the primary `gh pr view` call.
	DefaultGHViewTimeout = 60 * time.Second
	// DefaultGHAPITimeout bounds supplementary `gh api` calls and probes.
	DefaultGHAPITimeout = 30 * time.Second
)

// Backend names one of the interchangeable data sources.
type Backend string

const (
	// BackendAPI loads through the GitHub REST API.
	BackendAPI Backend = "api"
	// BackendGH loads through the local gh CLI.
	BackendGH Backend = "gh"
)

// FetchOptions controls fetch-time behavior.
type FetchOptions struct {
	// IncludeReviews enables review retrieval. When false reviews are never requested.
	IncludeReviews bool
	// ForceAPI and ForceGH pin the backend. Callers reject setting both.
	ForceAPI bool
	ForceGH  bool
}

// Fetcher loads one pull request into the canonical dataset.
type Fetcher interface {
	Fetch(ctx context.Context, ref PRRef, opts FetchOptions) (*PRData, error)
}

// Config configures the GitHub backends.
type Config struct {
	Token          string
	HTTPClient     *http.Client
	MaxRetries     int
	InitialBackoff time.Duration
	RESTBaseURL    string

	// Runner executes gh; nil uses the real binary.
	Runner        CommandRunner
	GHViewTimeout time.Duration
	GHAPITimeout  time.Duration

	Logger *slog.Logger
}

// WithDefaults fills missing optional values with package defaults.
func (c Config) WithDefaults() Config {
	if c.MaxRetries == 0 {
		c.MaxRetries = DefaultMaxRetries
	}
	if c.InitialBackoff == 0 {
		c.InitialBackoff = DefaultInitialBackoff
	}
	if c.Runner == nil {
		c.Runner = NewExecRunner()
	}
	if c.GHViewTimeout == 0 {
		c.GHViewTimeout = DefaultGHViewTimeout
	}
	if c.GHAPITimeout == 0 {
		c.GHAPITimeout = DefaultGHAPITimeout
	}
	c.Logger = logging.OrDiscard(c.Logger)
	return c
}

// NewFetcher constructs the backend selector over both backends.
func NewFetcher(cfg Config) (Fetcher, error) {
	cfg = cfg.WithDefaults()

	api, err := newAPIFetcher(cfg)
	if err != nil {
		return nil, err
	}
	return newSelector(cfg, api, newGHFetcher(cfg)), nil
}

// NewAPIFetcher constructs the REST-backed fetcher alone.
func NewAPIFetcher(cfg Config) (Fetcher, error) {
	return newAPIFetcher(cfg.WithDefaults())
}

// NewGHFetcher constructs the gh-backed fetcher alone.
func NewGHFetcher(cfg Config) Fetcher {
	return newGHFetcher(cfg.WithDefaults())
}

func newAPIFetcher(cfg Config) (*apiFetcher, error) {
	if cfg.MaxRetries < 0 {
		return nil, fmt.Errorf("invalid MaxRetries %d", cfg.MaxRetries)
	}
	if cfg.InitialBackoff < 0 {
		return nil, fmt.Errorf("invalid InitialBackoff %s", cfg.InitialBackoff)
	}

	restClient, err := newRESTClient(cfg)
	if err != nil {
		return nil, fmt.Errorf("create REST client: %w", err)
	}
	return &apiFetcher{cfg: cfg, rest: restClient, logger: cfg.Logger}, nil
}
