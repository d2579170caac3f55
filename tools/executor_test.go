package tools

import (
	"context"
	"errors"
	"strings"
	"testing"
)

// flakyTool fails a fixed number of times before succeeding.
type flakyTool struct {
	BaseTool
	failures int
	calls    int
	failWith error
}

func (f *flakyTool) Metadata() ToolMetadata {
	return ToolMetadata{Name: "flaky", Description: "fails then succeeds"}
}

func (f *flakyTool) Execute(ctx context.Context, input string) (ToolResult, error) {
	f.calls++
	if f.calls <= f.failures {
		return FailureResult(f.failWith), nil
	}
	return SuccessResult("done"), nil
}

func TestExecutorRetriesRetryableFailures(t *testing.T) {
	tool := &flakyTool{failures: 2, failWith: errors.New("connection refused")}
	executor := NewExecutor(ToolConfig{MaxRetries: 3, TimeoutSecs: 1})

	result, err := executor.Execute(context.Background(), tool, "input")
	if err != nil {
		t.Fatalf("Execute failed: %v", err)
	}
	if !result.Success() {
		t.Fatalf("expected success after retries, got %v", result.Error)
	}
	if tool.calls != 3 {
		t.Errorf("expected 3 calls, got %d", tool.calls)
	}
}

func TestExecutorStopsOnNonRetryable(t *testing.T) {
	tool := &flakyTool{failures: 5, failWith: errors.New("validation failed: bad input")}
	executor := NewExecutor(ToolConfig{MaxRetries: 3, TimeoutSecs: 1})

	result, err := executor.Execute(context.Background(), tool, "input")
	if err != nil {
		t.Fatalf("Execute failed: %v", err)
	}
	if result.Success() {
		t.Fatal("expected failure")
	}
	if tool.calls != 1 {
		t.Errorf("non-retryable failure should stop after 1 call, got %d", tool.calls)
	}
}

func TestExecutorExhaustsRetries(t *testing.T) {
	tool := &flakyTool{failures: 10, failWith: errors.New("network unreachable")}
	executor := NewExecutor(ToolConfig{MaxRetries: 2, TimeoutSecs: 1})

	result, err := executor.Execute(context.Background(), tool, "input")
	if err != nil {
		t.Fatalf("Execute failed: %v", err)
	}
	if result.Success() {
		t.Fatal("expected failure after exhausting retries")
	}
	if !strings.Contains(result.Error.Error(), "after 2 attempts") {
		t.Errorf("error should mention attempt count: %v", result.Error)
	}
	if tool.calls != 2 {
		t.Errorf("expected 2 calls, got %d", tool.calls)
	}
}

func TestExecuteOnceValidates(t *testing.T) {
	result, err := ExecuteOnce(context.Background(), NewCalcTool(), "")
	if err != nil {
		t.Fatalf("ExecuteOnce failed: %v", err)
	}
	if result.Success() {
		t.Fatal("expected validation failure for empty expression")
	}
}
