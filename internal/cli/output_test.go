package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/johnqtcg/pr2md/internal/config"
	"github.com/johnqtcg/pr2md/internal/converter"
)

func TestOutputWriterStdout(t *testing.T) {
	t.Parallel()

	tcs := []struct {
		name   string
		format string
		check  func(t *testing.T, out []byte)
	}{
		{
			name:   "markdown",
			format: config.FormatMarkdown,
			check: func(t *testing.T, out []byte) {
				t.Helper()
				if !strings.HasPrefix(string(out), "# Add widgets\n") {
					t.Fatalf("stdout = %q, want markdown title", out)
				}
			},
		},
		{
			name:   "json",
			format: config.FormatJSON,
			check: func(t *testing.T, out []byte) {
				t.Helper()
				var doc map[string]any
				if err := json.Unmarshal(out, &doc); err != nil {
					t.Fatalf("stdout is not json: %v", err)
				}
				if _, ok := doc["pullRequest"]; !ok {
					t.Fatalf("json keys = %v, want pullRequest", doc)
				}
			},
		},
	}

	for _, tc := range tcs {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			buf := new(bytes.Buffer)
			got, err := NewOutputWriter(buf).Write(context.Background(), OutputRequest{
				Config:   config.Config{Format: tc.format, DownloadImages: true},
				Data:     samplePRData(1),
				Renderer: converter.NewRenderer(failingDownloader{t: t}, nil),
			})
			if err != nil {
				t.Fatalf("Write error = %v, want nil", err)
			}
			if got != outputPathStdout {
				t.Fatalf("Write path = %q, want %q", got, outputPathStdout)
			}
			tc.check(t, buf.Bytes())
		})
	}
}

func TestOutputWriterPackage(t *testing.T) {
	t.Parallel()

	tcs := []struct {
		name     string
		format   string
		wantFile string
	}{
		{name: "markdown path", format: config.FormatMarkdown, wantFile: "pr-3.md"},
		{name: "json path", format: config.FormatJSON, wantFile: "pr-3.json"},
	}

	for _, tc := range tcs {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			root := t.TempDir()
			buf := new(bytes.Buffer)
			got, err := NewOutputWriter(buf).Write(context.Background(), OutputRequest{
				Config:   config.Config{Format: tc.format, OutputDir: root},
				Data:     samplePRData(3),
				Renderer: converter.NewRenderer(failingDownloader{t: t}, nil),
			})
			if err != nil {
				t.Fatalf("Write error = %v, want nil", err)
			}
			want := filepath.Join(root, "pr-3", tc.wantFile)
			if got != want {
				t.Fatalf("Write path = %q, want %q", got, want)
			}
			for _, name := range []string{"pr-3.md", "pr-3.json"} {
				if _, err := os.Stat(filepath.Join(root, "pr-3", name)); err != nil {
					t.Fatalf("%s missing: %v", name, err)
				}
			}
			if buf.Len() != 0 {
				t.Fatalf("stdout = %q, want empty", buf.String())
			}
		})
	}
}

func TestOutputWriterRejectsNilData(t *testing.T) {
	t.Parallel()

	_, err := NewOutputWriter(new(bytes.Buffer)).Write(context.Background(), OutputRequest{
		Config: config.Config{Format: config.FormatMarkdown},
	})
	if err == nil {
		t.Fatal("Write error = nil, want error")
	}
}
