package github

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

var (
	// ErrNotFound indicates the requested pull request (or its repository) does not exist.
	ErrNotFound = errors.New("pull request not found")
	// ErrAuthentication indicates missing or rejected credentials.
	ErrAuthentication = errors.New("github authentication failed")
	// ErrBackendUnavailable indicates a forced backend cannot run on this machine.
	ErrBackendUnavailable = errors.New("backend unavailable")
)

// ErrorKind classifies a backend failure.
type ErrorKind string

const (
	KindNotFound    ErrorKind = "not_found"
	KindAuth        ErrorKind = "auth"
	KindUnavailable ErrorKind = "unavailable"
	KindBackend     ErrorKind = "backend"
)

// BackendError is a classified failure of one backend. Generic failures keep the
// transport's raw error text in Err.
type BackendError struct {
	Backend Backend
	Kind    ErrorKind
	Err     error
}

func (e *BackendError) Error() string {
	if e == nil {
		return ""
	}
	switch e.Kind {
	case KindNotFound:
		return fmt.Sprintf("%s backend: %v: %v", e.Backend, ErrNotFound, e.Err)
	case KindAuth:
		return fmt.Sprintf("%s backend: %v: %v", e.Backend, ErrAuthentication, e.Err)
	case KindUnavailable:
		return fmt.Sprintf("%s backend: %v: %v", e.Backend, ErrBackendUnavailable, e.Err)
	default:
		return fmt.Sprintf("%s backend failed: %v", e.Backend, e.Err)
	}
}

func (e *BackendError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// Is matches the package sentinels by kind.
func (e *BackendError) Is(target error) bool {
	if e == nil {
		return false
	}
	switch target {
	case ErrNotFound:
		return e.Kind == KindNotFound
	case ErrAuthentication:
		return e.Kind == KindAuth
	case ErrBackendUnavailable:
		return e.Kind == KindUnavailable
	default:
		return false
	}
}

// StatusCode extracts the wrapped HTTP status code when available.
func StatusCode(err error) (int, bool) {
	var stErr *statusError
	if errors.As(err, &stErr) {
		return stErr.StatusCode, true
	}
	return 0, false
}

// IsRateLimitError reports whether an error is a GitHub rate limit failure.
func IsRateLimitError(err error) bool {
	if err == nil {
		return false
	}

	var stErr *statusError
	if errors.As(err, &stErr) {
		if stErr.StatusCode == http.StatusTooManyRequests {
			return true
		}
		if stErr.StatusCode == http.StatusForbidden && looksLikeRateLimitError(stErr.Err) {
			return true
		}
	}

	return looksLikeRateLimitError(err)
}

// classifyAPIError maps REST failures by status: 404 is not-found, 401 is an
// authentication failure, anything else is a generic backend failure.
func classifyAPIError(err error) error {
	if err == nil {
		return nil
	}
	var bErr *BackendError
	if errors.As(err, &bErr) {
		return err
	}

	kind := KindBackend
	if status, ok := StatusCode(err); ok {
		switch status {
		case http.StatusNotFound:
			kind = KindNotFound
		case http.StatusUnauthorized:
			kind = KindAuth
		}
	}
	return &BackendError{Backend: BackendAPI, Kind: kind, Err: err}
}

// classifyGHError maps gh CLI failures by the text gh prints on stderr.
func classifyGHError(err error) error {
	if err == nil {
		return nil
	}
	var bErr *BackendError
	if errors.As(err, &bErr) {
		return err
	}

	text := strings.ToLower(err.Error())
	kind := KindBackend
	switch {
	case strings.Contains(text, "not found"), strings.Contains(text, "could not resolve"):
		kind = KindNotFound
	case strings.Contains(text, "auth"), strings.Contains(text, "401"):
		kind = KindAuth
	}
	return &BackendError{Backend: BackendGH, Kind: kind, Err: err}
}
