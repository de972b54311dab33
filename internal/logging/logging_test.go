package logging

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"
)

func TestNewVerboseControlsDebugLines(t *testing.T) {
	t.Parallel()

	tcs := []struct {
		name      string
		opts      Options
		wantDebug bool
		wantInfo  bool
	}{
		{name: "normal", opts: Options{NoColor: true}, wantDebug: false, wantInfo: true},
		{name: "verbose", opts: Options{Verbose: true, NoColor: true}, wantDebug: true, wantInfo: true},
		{name: "quiet", opts: Options{Quiet: true, Verbose: true, NoColor: true}, wantDebug: false, wantInfo: false},
	}

	for _, tc := range tcs {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			var buf bytes.Buffer
			logger := New(&buf, tc.opts)
			logger.Debug("debug line")
			logger.Info("info line")

			out := buf.String()
			if got := strings.Contains(out, "debug line"); got != tc.wantDebug {
				t.Fatalf("debug line present = %v, want %v\n%s", got, tc.wantDebug, out)
			}
			if got := strings.Contains(out, "info line"); got != tc.wantInfo {
				t.Fatalf("info line present = %v, want %v\n%s", got, tc.wantInfo, out)
			}
		})
	}
}

func TestOrDiscard(t *testing.T) {
	t.Parallel()

	if OrDiscard(nil) == nil {
		t.Fatal("OrDiscard(nil) = nil, want discarding logger")
	}
	if OrDiscard(nil).Enabled(context.Background(), slog.LevelError) {
		t.Fatal("discarding logger should not enable any level")
	}

	custom := slog.Default()
	if OrDiscard(custom) != custom {
		t.Fatal("OrDiscard should return the given logger")
	}
}
