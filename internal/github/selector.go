package github

import (
	"context"
	"errors"
	"log/slog"
)

var errGHNotInstalled = errors.New("gh required but not installed")

// selector picks a backend per call. No decision outlives the call.
type selector struct {
	cfg    Config
	api    Fetcher
	gh     Fetcher
	runner CommandRunner
	logger *slog.Logger
}

func newSelector(cfg Config, api, gh Fetcher) *selector {
	return &selector{cfg: cfg, api: api, gh: gh, runner: cfg.Runner, logger: cfg.Logger}
}

// Fetch assumes callers already rejected ForceAPI together with ForceGH.
func (s *selector) Fetch(ctx context.Context, ref PRRef, opts FetchOptions) (*PRData, error) {
	if opts.ForceAPI {
		s.logger.Debug("using API backend", "reason", "forced")
		return s.api.Fetch(ctx, ref, opts)
	}

	if !s.ghInstalled(ctx) {
		if opts.ForceGH {
			return nil, &BackendError{Backend: BackendGH, Kind: KindUnavailable, Err: errGHNotInstalled}
		}
		s.logger.Debug("gh not installed, using API backend")
		return s.api.Fetch(ctx, ref, opts)
	}

	if authErr := s.ghAuthenticated(ctx); authErr != nil {
		if opts.ForceGH {
			return nil, &BackendError{Backend: BackendGH, Kind: KindAuth, Err: authErr}
		}
		s.logger.Debug("gh not authenticated, using API backend", "error", authErr)
		return s.api.Fetch(ctx, ref, opts)
	}

	data, err := s.gh.Fetch(ctx, ref, opts)
	if err == nil {
		return data, nil
	}
	if opts.ForceGH {
		return nil, err
	}
	s.logger.Debug("gh backend failed, falling back to API backend", "pr", ref.String(), "error", err)
	return s.api.Fetch(ctx, ref, opts)
}

func (s *selector) ghInstalled(ctx context.Context) bool {
	ctx, cancel := context.WithTimeout(ctx, s.cfg.GHAPITimeout)
	defer cancel()

	_, err := s.runner.Run(ctx, ghBinary, "--version")
	return err == nil
}

func (s *selector) ghAuthenticated(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, s.cfg.GHAPITimeout)
	defer cancel()

	_, err := s.runner.Run(ctx, ghBinary, "auth", "status")
	return err
}
