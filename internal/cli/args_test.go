package cli

import (
	"errors"
	"testing"

	"github.com/johnqtcg/pr2md/internal/config"
)

func TestValidateArgs(t *testing.T) {
	t.Parallel()

	ref := "https://github.com/octo/repo/pull/1"
	tcs := []struct {
		name         string
		cfg          config.Config
		wantMode     Mode
		wantRef      string
		wantConflict bool
		wantField    string
	}{
		{
			name:     "single reference",
			cfg:      config.Config{Format: config.FormatMarkdown, Positional: []string{ref}},
			wantMode: ModeSingle,
			wantRef:  ref,
		},
		{
			name:     "batch with output",
			cfg:      config.Config{Format: config.FormatJSON, InputFile: "refs.txt", OutputDir: "out"},
			wantMode: ModeBatch,
		},
		{
			name:      "batch without output",
			cfg:       config.Config{Format: config.FormatMarkdown, InputFile: "refs.txt"},
			wantField: "output",
		},
		{
			name:      "batch with positional",
			cfg:       config.Config{Format: config.FormatMarkdown, InputFile: "refs.txt", OutputDir: "out", Positional: []string{ref}},
			wantField: "reference",
		},
		{
			name:      "missing reference",
			cfg:       config.Config{Format: config.FormatMarkdown},
			wantField: "reference",
		},
		{
			name:      "too many references",
			cfg:       config.Config{Format: config.FormatMarkdown, Positional: []string{ref, ref}},
			wantField: "reference",
		},
		{
			name:      "unknown format",
			cfg:       config.Config{Format: "html", Positional: []string{ref}},
			wantField: "format",
		},
		{
			name:         "both backends forced",
			cfg:          config.Config{Format: config.FormatMarkdown, Positional: []string{ref}, ForceAPI: true, ForceGH: true},
			wantConflict: true,
		},
	}

	for _, tc := range tcs {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			got, err := ValidateArgs(tc.cfg)
			switch {
			case tc.wantConflict:
				var cErr *config.ConflictError
				if !errors.As(err, &cErr) {
					t.Fatalf("ValidateArgs error = %v, want *config.ConflictError", err)
				}
				return
			case tc.wantField != "":
				var vErr *config.ValidationError
				if !errors.As(err, &vErr) {
					t.Fatalf("ValidateArgs error = %v, want *config.ValidationError", err)
				}
				if vErr.Field != tc.wantField {
					t.Fatalf("ValidationError.Field = %q, want %q", vErr.Field, tc.wantField)
				}
				return
			}

			if err != nil {
				t.Fatalf("ValidateArgs error = %v, want nil", err)
			}
			if got.Mode != tc.wantMode || got.Reference != tc.wantRef {
				t.Fatalf("ValidateArgs = %+v, want mode %q reference %q", got, tc.wantMode, tc.wantRef)
			}
		})
	}
}
