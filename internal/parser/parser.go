package parser

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"

	gh "github.com/johnqtcg/pr2md/internal/github"
)

// ErrInvalidReference indicates the input is neither a pull request URL nor a supported shorthand.
var ErrInvalidReference = errors.New("invalid pull request reference")

// URLParser resolves a user-supplied pull request reference.
type URLParser interface {
	Parse(reference string) (gh.PRRef, error)
}

// New creates the default reference parser.
func New() URLParser {
	return &defaultParser{}
}

// Reference forms, in precedence order. The URL form matches anywhere in the input;
// shorthands must match the whole input.
var referencePatterns = []*regexp.Regexp{
	regexp.MustCompile(`github\.com/([^/]+)/([^/]+)/pull/(\d+)`),
	regexp.MustCompile(`^([^/]+)/([^/#]+)#(\d+)$`),
	regexp.MustCompile(`^([^/]+)/([^/]+)/(\d+)$`),
}

type defaultParser struct{}

func (p *defaultParser) Parse(reference string) (gh.PRRef, error) {
	_ = p

	if reference == "" {
		return gh.PRRef{}, invalid("reference is empty")
	}

	for _, pattern := range referencePatterns {
		m := pattern.FindStringSubmatch(reference)
		if m == nil {
			continue
		}
		number, err := strconv.Atoi(m[3])
		if err != nil {
			return gh.PRRef{}, fmt.Errorf("parse pull request number %q: %w", m[3], invalid("number out of range"))
		}
		return gh.PRRef{Owner: m[1], Repo: m[2], Number: number}, nil
	}

	return gh.PRRef{}, fmt.Errorf("resolve %q: %w", reference,
		invalid("expected https://github.com/OWNER/REPO/pull/N, OWNER/REPO#N or OWNER/REPO/N"))
}

func invalid(reason string) error {
	return fmt.Errorf("%w: %s", ErrInvalidReference, reason)
}
