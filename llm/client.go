// Generator client - the single funnel for all text generation.
//
// Every component that needs model output (synthesis strategies, the agent
// loop, the confidence scorer) goes through Client, so retry and backoff
// policy lives in exactly one place and can be tested by substituting a
// fake Provider.

package llm

import (
	"context"
	"time"
)

// RetryPolicy controls how transient generation failures are retried.
type RetryPolicy struct {
	MaxAttempts int
	BaseDelay   time.Duration
	MaxDelay    time.Duration
}

// DefaultRetryPolicy returns the standard retry policy: three attempts with
// exponential backoff starting at 500ms, capped at 8s.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxAttempts: 3,
		BaseDelay:   500 * time.Millisecond,
		MaxDelay:    8 * time.Second,
	}
}

// backoff returns the delay before the given retry attempt (attempt >= 1).
func (p RetryPolicy) backoff(attempt int) time.Duration {
	delay := p.BaseDelay * time.Duration(1<<(attempt-1))
	if delay > p.MaxDelay {
		delay = p.MaxDelay
	}
	return delay
}

// Client wraps a Provider with retry and failure classification.
type Client struct {
	provider Provider
	retry    RetryPolicy
}

// NewClient creates a new generator client with the default retry policy.
func NewClient(provider Provider) *Client {
	return &Client{
		provider: provider,
		retry:    DefaultRetryPolicy(),
	}
}

// WithRetryPolicy overrides the retry policy.
func (c *Client) WithRetryPolicy(policy RetryPolicy) *Client {
	if policy.MaxAttempts < 1 {
		policy.MaxAttempts = 1
	}
	c.retry = policy
	return c
}

// Provider returns the underlying provider.
func (c *Client) Provider() Provider {
	return c.provider
}

// Complete generates text for a single prompt.
func (c *Client) Complete(ctx context.Context, prompt string) (string, error) {
	content, _, err := c.Chat(ctx, []ChatMessage{UserMessage(prompt)})
	return content, err
}

// CompleteWithUsage generates text for a single prompt, returning token usage.
func (c *Client) CompleteWithUsage(ctx context.Context, prompt string) (string, *TokenUsage, error) {
	return c.Chat(ctx, []ChatMessage{UserMessage(prompt)})
}

// Chat sends a chat completion request with retry on transient failures.
// Returns a *GenerationError on failure; after the retry budget is exhausted
// the error is reported as permanent.
func (c *Client) Chat(ctx context.Context, messages []ChatMessage) (string, *TokenUsage, error) {
	var lastErr *GenerationError

	for attempt := 1; attempt <= c.retry.MaxAttempts; attempt++ {
		if attempt > 1 {
			select {
			case <-ctx.Done():
				return "", nil, classify(c.provider.Name(), ctx.Err())
			case <-time.After(c.retry.backoff(attempt - 1)):
			}
		}

		response, err := c.provider.Chat(ctx, messages)
		if err != nil {
			genErr := classify(c.provider.Name(), err)
			if !genErr.Transient {
				return "", nil, genErr
			}
			lastErr = genErr
			continue
		}

		if response.Content == "" {
			// An empty completion is not retryable: the request was accepted,
			// the model just produced nothing useful.
			return "", response.Usage, &GenerationError{
				Provider:  c.provider.Name(),
				Transient: false,
				Err:       ErrEmptyResponse,
			}
		}

		return response.Content, response.Usage, nil
	}

	// Retries exhausted: the transient failure is now permanent as far as
	// the caller is concerned.
	lastErr.Transient = false
	return "", nil, lastErr
}

// StreamChat streams a chat completion. Streaming is not retried: a partial
// stream already delivered chunks, so the caller must restart explicitly.
func (c *Client) StreamChat(ctx context.Context, messages []ChatMessage, chunks chan<- string) (*TokenUsage, error) {
	usage, err := c.provider.StreamChat(ctx, messages, chunks)
	if err != nil {
		return usage, classify(c.provider.Name(), err)
	}
	return usage, nil
}
