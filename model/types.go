// Package model provides domain types shared across packages.
package model

// Step is one iteration record in an agent trace. Steps are append-only:
// once recorded they are never mutated, so the ordered sequence is a full
// audit trail of the run.
type Step struct {
	Index       int    `json:"index"`
	Thought     string `json:"thought"`
	Action      string `json:"action"`       // tool name, or "finish"
	ActionInput string `json:"action_input"` // raw input passed to the tool
	Observation string `json:"observation"`  // tool output or error description
}

// ToolCall contains metrics about a tool invocation.
// Used for tracking and analytics in agent traces.
type ToolCall struct {
	Name       string `json:"name"`
	InputSize  int    `json:"input_size"`
	OutputSize int    `json:"output_size"`
	DurationMs uint64 `json:"duration_ms"`
	Success    bool   `json:"success"`
}
