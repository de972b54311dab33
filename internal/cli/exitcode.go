package cli

import (
	"errors"

	"github.com/johnqtcg/pr2md/internal/config"
)

const (
	// ExitOK indicates all items completed successfully.
	ExitOK = 0
	// ExitRuntime indicates an unrecoverable failure, including any failed batch item.
	ExitRuntime = 1
	// ExitInvalidArguments indicates invalid or conflicting CLI options.
	ExitInvalidArguments = 2
)

// ResolveExitCode maps run error state to CLI exit codes.
func ResolveExitCode(err error, isBatch bool, failed int) int {
	if isBatch && failed > 0 {
		return ExitRuntime
	}
	if err == nil || errors.Is(err, config.ErrHelp) {
		return ExitOK
	}

	var vErr *config.ValidationError
	if errors.As(err, &vErr) {
		return ExitInvalidArguments
	}

	var cErr *config.ConflictError
	if errors.As(err, &cErr) {
		return ExitInvalidArguments
	}

	return ExitRuntime
}
