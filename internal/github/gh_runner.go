package github

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
)

const ghBinary = "gh"

// CommandRunner runs an external command and returns its standard output.
type CommandRunner interface {
	Run(ctx context.Context, name string, args ...string) ([]byte, error)
}

type execRunner struct{}

// NewExecRunner returns a CommandRunner backed by os/exec.
func NewExecRunner() CommandRunner {
	return execRunner{}
}

func (execRunner) Run(ctx context.Context, name string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return nil, fmt.Errorf("%s %s: %w", name, firstArg(args), ctx.Err())
		}
		msg := strings.TrimSpace(stderr.String())
		if msg == "" {
			return nil, fmt.Errorf("%s %s: %w", name, firstArg(args), err)
		}
		return nil, fmt.Errorf("%s %s: %w: %s", name, firstArg(args), err, msg)
	}
	return stdout.Bytes(), nil
}

func firstArg(args []string) string {
	if len(args) == 0 {
		return ""
	}
	return args[0]
}

// TokenFromGH returns the token stored by `gh auth login`, or an empty string when gh is
// missing or not logged in.
func TokenFromGH(ctx context.Context, runner CommandRunner) string {
	if runner == nil {
		runner = NewExecRunner()
	}
	ctx, cancel := context.WithTimeout(ctx, DefaultGHAPITimeout)
	defer cancel()

	out, err := runner.Run(ctx, ghBinary, "auth", "token")
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(out))
}
