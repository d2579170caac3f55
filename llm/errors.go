// Generation error taxonomy.
//
// Every failure that escapes the Client is a *GenerationError. Transient
// failures (rate limits, timeouts, connection drops, 5xx) are retried inside
// the Client; what callers see is either a permanent failure or a transient
// one whose retry budget is exhausted, reported as permanent.

package llm

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"

	openai "github.com/sashabaranov/go-openai"
)

// ErrEmptyResponse reports a completion that returned no content.
var ErrEmptyResponse = errors.New("empty response from provider")

// GenerationError wraps a provider failure with its retry classification.
type GenerationError struct {
	Provider  string
	Transient bool
	Err       error
}

// Error implements the error interface.
func (e *GenerationError) Error() string {
	kind := "permanent"
	if e.Transient {
		kind = "transient"
	}
	return fmt.Sprintf("%s: %s generation failure: %v", e.Provider, kind, e.Err)
}

// Unwrap returns the underlying provider error.
func (e *GenerationError) Unwrap() error {
	return e.Err
}

// IsTransient reports whether err is a retryable generation failure.
func IsTransient(err error) bool {
	var genErr *GenerationError
	if errors.As(err, &genErr) {
		return genErr.Transient
	}
	return false
}

// classify wraps a raw provider error with a transient/permanent verdict.
func classify(provider string, err error) *GenerationError {
	return &GenerationError{
		Provider:  provider,
		Transient: transient(err),
		Err:       err,
	}
}

// transient decides whether an error is worth retrying.
// OpenAI-compatible providers surface structured status codes; everything
// else falls back to message sniffing, the same heuristic the rest of the
// codebase uses for tool failures.
func transient(err error) bool {
	// Caller gave up or ran out of time - retrying would be wrong.
	if errors.Is(err, context.Canceled) {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}

	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		switch {
		case apiErr.HTTPStatusCode == 429:
			return true
		case apiErr.HTTPStatusCode >= 500:
			return true
		default:
			return false
		}
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}

	errLower := strings.ToLower(err.Error())

	nonRetryable := []string{"invalid", "unauthorized", "forbidden", "not found", "policy", "unsupported"}
	for _, s := range nonRetryable {
		if strings.Contains(errLower, s) {
			return false
		}
	}

	retryable := []string{"rate limit", "timeout", "timed out", "connection", "overloaded", "too many requests", "429", "500", "502", "503", "529"}
	for _, s := range retryable {
		if strings.Contains(errLower, s) {
			return true
		}
	}

	return false
}
