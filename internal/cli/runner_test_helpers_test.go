package cli

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/johnqtcg/pr2md/internal/config"
	"github.com/johnqtcg/pr2md/internal/converter"
	gh "github.com/johnqtcg/pr2md/internal/github"
)

type fakeLoader struct {
	cfg     config.Config
	err     error
	gotArgs []string
}

func (f *fakeLoader) Load(args []string) (config.Config, error) {
	f.gotArgs = append([]string(nil), args...)
	if f.err != nil {
		return config.Config{}, f.err
	}
	return f.cfg, nil
}

type fakeParser struct {
	refByInput map[string]gh.PRRef
	errByInput map[string]error
	gotInputs  []string
}

func (f *fakeParser) Parse(reference string) (gh.PRRef, error) {
	f.gotInputs = append(f.gotInputs, reference)
	if err := f.errByInput[reference]; err != nil {
		return gh.PRRef{}, err
	}
	ref, ok := f.refByInput[reference]
	if !ok {
		return gh.PRRef{}, errors.New("unexpected reference")
	}
	return ref, nil
}

type fakeFetcherFactory struct {
	fetcher  *fakeFetcher
	err      error
	gotToken string
}

func (f *fakeFetcherFactory) New(_ config.Config, token string, _ *slog.Logger) (gh.Fetcher, error) {
	f.gotToken = token
	if f.err != nil {
		return nil, f.err
	}
	return f.fetcher, nil
}

type fakeFetcher struct {
	dataByRef map[string]*gh.PRData
	errByRef  map[string]error
	gotRefs   []gh.PRRef
	gotOpts   []gh.FetchOptions
}

func (f *fakeFetcher) Fetch(_ context.Context, ref gh.PRRef, opts gh.FetchOptions) (*gh.PRData, error) {
	f.gotRefs = append(f.gotRefs, ref)
	f.gotOpts = append(f.gotOpts, opts)
	if err := f.errByRef[ref.String()]; err != nil {
		return nil, err
	}
	data, ok := f.dataByRef[ref.String()]
	if !ok {
		return nil, errors.New("unexpected ref")
	}
	return data, nil
}

type fakeRendererFactory struct {
	renderer converter.Renderer
}

func (f *fakeRendererFactory) New(config.Config, *slog.Logger) converter.Renderer {
	return f.renderer
}

type fakeOutputWriter struct {
	path    string
	errByPR map[int]error
	gotReqs []OutputRequest
}

func (f *fakeOutputWriter) Write(_ context.Context, req OutputRequest) (string, error) {
	f.gotReqs = append(f.gotReqs, req)
	if err := f.errByPR[req.Data.PullRequest.Number]; err != nil {
		return "", err
	}
	if f.path == "" {
		return outputPathStdout, nil
	}
	return f.path, nil
}

type fakeInputReader struct {
	lines   []string
	err     error
	gotPath string
}

func (f *fakeInputReader) Read(path string, handle func(line string) error) error {
	f.gotPath = path
	if f.err != nil {
		return f.err
	}
	for _, line := range f.lines {
		if err := handle(line); err != nil {
			return err
		}
	}
	return nil
}

type fakeCommandRunner struct {
	out   []byte
	err   error
	calls [][]string
}

func (f *fakeCommandRunner) Run(_ context.Context, name string, args ...string) ([]byte, error) {
	f.calls = append(f.calls, append([]string{name}, args...))
	if f.err != nil {
		return nil, f.err
	}
	return f.out, nil
}

// failingDownloader reports any download attempt as a test error.
type failingDownloader struct {
	t *testing.T
}

func (d failingDownloader) Download(_ context.Context, rawURL, _ string) ([]byte, error) {
	d.t.Errorf("unexpected image download %q", rawURL)
	return nil, errors.New("download not allowed")
}

func samplePRData(number int) *gh.PRData {
	created := time.Date(2026, 2, 1, 10, 0, 0, 0, time.UTC)
	return &gh.PRData{
		PullRequest: gh.PullRequest{
			Number:    number,
			Title:     "Add widgets",
			State:     gh.StateOpen,
			URL:       gh.PRRef{Owner: "octo", Repo: "repo", Number: number}.HTMLURL(),
			Author:    gh.NewUser("alice"),
			CreatedAt: created,
			UpdatedAt: created,
			Body:      "Adds widgets.\n\n![diagram](https://github.com/user-attachments/assets/diagram.png)",
		},
		Commits:        []gh.Commit{},
		Files:          []gh.File{},
		Comments:       []gh.Comment{},
		Reviews:        []gh.Review{},
		ReviewComments: []gh.ReviewComment{},
	}
}

func prRef(number int) gh.PRRef {
	return gh.PRRef{Owner: "octo", Repo: "repo", Number: number}
}
