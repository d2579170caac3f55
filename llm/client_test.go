package llm

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	openai "github.com/sashabaranov/go-openai"
)

// fakeProvider returns scripted responses in order, then repeats the last one.
type fakeProvider struct {
	responses []fakeResponse
	calls     int
}

type fakeResponse struct {
	content string
	err     error
}

func (f *fakeProvider) Name() string  { return "fake" }
func (f *fakeProvider) Model() string { return "fake-model" }

func (f *fakeProvider) Chat(ctx context.Context, messages []ChatMessage) (LLMResponse, error) {
	idx := f.calls
	if idx >= len(f.responses) {
		idx = len(f.responses) - 1
	}
	f.calls++
	r := f.responses[idx]
	if r.err != nil {
		return LLMResponse{}, r.err
	}
	return LLMResponse{Content: r.content, Usage: &TokenUsage{TotalTokens: 10}}, nil
}

func (f *fakeProvider) StreamChat(ctx context.Context, messages []ChatMessage, chunks chan<- string) (*TokenUsage, error) {
	resp, err := f.Chat(ctx, messages)
	if err != nil {
		return nil, err
	}
	chunks <- resp.Content
	return resp.Usage, nil
}

// fastRetry keeps test backoff delays negligible.
func fastRetry(attempts int) RetryPolicy {
	return RetryPolicy{MaxAttempts: attempts, BaseDelay: time.Millisecond, MaxDelay: 5 * time.Millisecond}
}

func TestCompleteSuccess(t *testing.T) {
	provider := &fakeProvider{responses: []fakeResponse{{content: "hello"}}}
	client := NewClient(provider)

	got, err := client.Complete(context.Background(), "say hello")
	if err != nil {
		t.Fatalf("Complete failed: %v", err)
	}
	if got != "hello" {
		t.Errorf("expected %q, got %q", "hello", got)
	}
	if provider.calls != 1 {
		t.Errorf("expected 1 provider call, got %d", provider.calls)
	}
}

func TestTransientFailureRetried(t *testing.T) {
	provider := &fakeProvider{responses: []fakeResponse{
		{err: errors.New("rate limit exceeded")},
		{err: errors.New("rate limit exceeded")},
		{content: "eventually"},
	}}
	client := NewClient(provider).WithRetryPolicy(fastRetry(3))

	got, err := client.Complete(context.Background(), "prompt")
	if err != nil {
		t.Fatalf("expected recovery after transient failures, got %v", err)
	}
	if got != "eventually" {
		t.Errorf("expected %q, got %q", "eventually", got)
	}
	if provider.calls != 3 {
		t.Errorf("expected 3 provider calls, got %d", provider.calls)
	}
}

func TestTransientExhaustionReportedPermanent(t *testing.T) {
	provider := &fakeProvider{responses: []fakeResponse{
		{err: errors.New("connection reset")},
	}}
	client := NewClient(provider).WithRetryPolicy(fastRetry(3))

	_, err := client.Complete(context.Background(), "prompt")
	if err == nil {
		t.Fatal("expected error after retry exhaustion")
	}
	if provider.calls != 3 {
		t.Errorf("expected 3 provider calls, got %d", provider.calls)
	}
	// Exhausted retries surface as permanent to the caller.
	if IsTransient(err) {
		t.Errorf("exhausted retries should be reported permanent, got transient: %v", err)
	}
}

func TestPermanentFailureNotRetried(t *testing.T) {
	provider := &fakeProvider{responses: []fakeResponse{
		{err: errors.New("invalid request: prompt too long")},
	}}
	client := NewClient(provider).WithRetryPolicy(fastRetry(3))

	_, err := client.Complete(context.Background(), "prompt")
	if err == nil {
		t.Fatal("expected error")
	}
	if provider.calls != 1 {
		t.Errorf("permanent failure should not be retried, got %d calls", provider.calls)
	}
	var genErr *GenerationError
	if !errors.As(err, &genErr) {
		t.Fatalf("expected *GenerationError, got %T", err)
	}
	if genErr.Transient {
		t.Error("expected permanent classification")
	}
}

func TestEmptyResponseIsPermanentError(t *testing.T) {
	provider := &fakeProvider{responses: []fakeResponse{{content: ""}}}
	client := NewClient(provider).WithRetryPolicy(fastRetry(3))

	_, err := client.Complete(context.Background(), "prompt")
	if !errors.Is(err, ErrEmptyResponse) {
		t.Fatalf("expected ErrEmptyResponse, got %v", err)
	}
	if provider.calls != 1 {
		t.Errorf("empty response should not be retried, got %d calls", provider.calls)
	}
}

func TestClassifyAPIErrors(t *testing.T) {
	tests := []struct {
		name      string
		err       error
		transient bool
	}{
		{"rate limited status", &openai.APIError{HTTPStatusCode: 429}, true},
		{"server error status", &openai.APIError{HTTPStatusCode: 503}, true},
		{"bad request status", &openai.APIError{HTTPStatusCode: 400}, false},
		{"auth failure status", &openai.APIError{HTTPStatusCode: 401}, false},
		{"deadline exceeded", context.DeadlineExceeded, true},
		{"cancelled", context.Canceled, false},
		{"overloaded message", errors.New("anthropic: overloaded_error"), true},
		{"policy rejection", errors.New("request rejected by content policy"), false},
		{"unknown message", errors.New("something odd happened"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			wrapped := fmt.Errorf("chat completion failed: %w", tt.err)
			if got := transient(wrapped); got != tt.transient {
				t.Errorf("transient(%v) = %v, want %v", tt.err, got, tt.transient)
			}
		})
	}
}

func TestRetryBackoffGrowsAndCaps(t *testing.T) {
	policy := RetryPolicy{MaxAttempts: 5, BaseDelay: 100 * time.Millisecond, MaxDelay: 300 * time.Millisecond}

	if got := policy.backoff(1); got != 100*time.Millisecond {
		t.Errorf("attempt 1: got %v", got)
	}
	if got := policy.backoff(2); got != 200*time.Millisecond {
		t.Errorf("attempt 2: got %v", got)
	}
	if got := policy.backoff(4); got != 300*time.Millisecond {
		t.Errorf("attempt 4 should cap at MaxDelay, got %v", got)
	}
}
