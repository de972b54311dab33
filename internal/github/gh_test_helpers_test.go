package github

import (
	"context"
	"errors"
	"strings"
	"sync"
)

type fakeResult struct {
	out string
	err error
}

// fakeRunner answers gh invocations by the first matching argument prefix.
type fakeRunner struct {
	mu      sync.Mutex
	results map[string]fakeResult
	calls   []string
}

func newFakeRunner(results map[string]fakeResult) *fakeRunner {
	return &fakeRunner{results: results}
}

func (r *fakeRunner) Run(_ context.Context, name string, args ...string) ([]byte, error) {
	cmd := strings.Join(append([]string{name}, args...), " ")

	r.mu.Lock()
	r.calls = append(r.calls, cmd)
	r.mu.Unlock()

	for prefix, result := range r.results {
		if strings.HasPrefix(cmd, prefix) {
			return []byte(result.out), result.err
		}
	}
	return nil, errors.New("exec: \"" + name + "\": executable file not found in $PATH")
}

func (r *fakeRunner) called(prefix string) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	n := 0
	for _, call := range r.calls {
		if strings.HasPrefix(call, prefix) {
			n++
		}
	}
	return n
}

func (r *fakeRunner) lastCall(prefix string) string {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i := len(r.calls) - 1; i >= 0; i-- {
		if strings.HasPrefix(r.calls[i], prefix) {
			return r.calls[i]
		}
	}
	return ""
}

type stubFetcher struct {
	data  *PRData
	err   error
	calls int
}

func (s *stubFetcher) Fetch(context.Context, PRRef, FetchOptions) (*PRData, error) {
	s.calls++
	return s.data, s.err
}
