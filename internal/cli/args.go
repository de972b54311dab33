package cli

import "github.com/johnqtcg/pr2md/internal/config"

// Mode identifies the command execution mode.
type Mode string

const (
	// ModeSingle processes one reference from positional args.
	ModeSingle Mode = "single"
	// ModeBatch processes many references from --input-file.
	ModeBatch Mode = "batch"
)

// Args contains validated and normalized command mode inputs.
type Args struct {
	Mode      Mode
	Reference string
}

// ValidateArgs validates single-vs-batch mode constraints from config.
func ValidateArgs(cfg config.Config) (Args, error) {
	if cfg.ForceAPI && cfg.ForceGH {
		return Args{}, config.NewConflictError("--force-api", "--force-gh")
	}
	if cfg.Format != config.FormatMarkdown && cfg.Format != config.FormatJSON {
		return Args{}, config.NewValidationError("format", "must be markdown or json")
	}

	if cfg.InputFile != "" {
		if cfg.OutputDir == "" {
			return Args{}, config.NewValidationError("output", "--output is required when --input-file is set")
		}
		if len(cfg.Positional) > 0 {
			return Args{}, config.NewValidationError("reference", "positional reference is not allowed when --input-file is set")
		}
		return Args{Mode: ModeBatch}, nil
	}

	if len(cfg.Positional) != 1 {
		return Args{}, config.NewValidationError("reference", "exactly one pull request reference is required")
	}

	return Args{
		Mode:      ModeSingle,
		Reference: cfg.Positional[0],
	}, nil
}
