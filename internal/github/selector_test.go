package github

import (
	"context"
	"errors"
	"testing"
)

func TestSelectorFetch(t *testing.T) {
	t.Parallel()

	apiData := &PRData{PullRequest: PullRequest{Title: "from api"}}
	ghData := &PRData{PullRequest: PullRequest{Title: "from gh"}}
	ghFailure := &BackendError{Backend: BackendGH, Kind: KindBackend, Err: errors.New("boom")}

	installed := fakeResult{out: "gh version 2.60.0"}
	authed := fakeResult{out: "Logged in to github.com"}
	notAuthed := fakeResult{err: errors.New("You are not logged into any GitHub hosts")}

	tcs := []struct {
		name      string
		probes    map[string]fakeResult
		ghErr     error
		opts      FetchOptions
		wantTitle string
		wantErr   error
		wantAPI   int
		wantGH    int
	}{
		{
			name:      "force api skips probes",
			probes:    map[string]fakeResult{"gh --version": installed, "gh auth status": authed},
			opts:      FetchOptions{ForceAPI: true},
			wantTitle: "from api",
			wantAPI:   1,
		},
		{
			name:      "gh missing falls back to api",
			probes:    map[string]fakeResult{},
			wantTitle: "from api",
			wantAPI:   1,
		},
		{
			name:    "gh missing with force gh fails",
			probes:  map[string]fakeResult{},
			opts:    FetchOptions{ForceGH: true},
			wantErr: ErrBackendUnavailable,
		},
		{
			name:      "unauthenticated falls back to api",
			probes:    map[string]fakeResult{"gh --version": installed, "gh auth status": notAuthed},
			wantTitle: "from api",
			wantAPI:   1,
		},
		{
			name:    "unauthenticated with force gh fails",
			probes:  map[string]fakeResult{"gh --version": installed, "gh auth status": notAuthed},
			opts:    FetchOptions{ForceGH: true},
			wantErr: ErrAuthentication,
		},
		{
			name:      "authenticated uses gh",
			probes:    map[string]fakeResult{"gh --version": installed, "gh auth status": authed},
			wantTitle: "from gh",
			wantGH:    1,
		},
		{
			name:      "gh failure falls back to api",
			probes:    map[string]fakeResult{"gh --version": installed, "gh auth status": authed},
			ghErr:     ghFailure,
			wantTitle: "from api",
			wantAPI:   1,
			wantGH:    1,
		},
		{
			name:    "gh failure with force gh propagates",
			probes:  map[string]fakeResult{"gh --version": installed, "gh auth status": authed},
			ghErr:   ghFailure,
			opts:    FetchOptions{ForceGH: true},
			wantErr: ghFailure,
			wantGH:  1,
		},
	}

	for _, tc := range tcs {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			runner := newFakeRunner(tc.probes)
			api := &stubFetcher{data: apiData}
			gh := &stubFetcher{data: ghData, err: tc.ghErr}
			if tc.ghErr != nil {
				gh.data = nil
			}
			sel := newSelector(Config{Runner: runner}.WithDefaults(), api, gh)

			got, err := sel.Fetch(context.Background(), PRRef{Owner: "octo", Repo: "repo", Number: 1}, tc.opts)
			if tc.wantErr != nil {
				if !errors.Is(err, tc.wantErr) {
					t.Fatalf("Fetch error = %v, want %v", err, tc.wantErr)
				}
			} else {
				if err != nil {
					t.Fatalf("Fetch error = %v, want nil", err)
				}
				if got.PullRequest.Title != tc.wantTitle {
					t.Fatalf("title = %q, want %q", got.PullRequest.Title, tc.wantTitle)
				}
			}
			if api.calls != tc.wantAPI {
				t.Fatalf("api calls = %d, want %d", api.calls, tc.wantAPI)
			}
			if gh.calls != tc.wantGH {
				t.Fatalf("gh calls = %d, want %d", gh.calls, tc.wantGH)
			}
			if tc.opts.ForceAPI && len(runner.calls) != 0 {
				t.Fatalf("probes run under force api: %v", runner.calls)
			}
		})
	}
}
