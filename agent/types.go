// Package agent provides a bounded think/act/observe reasoning loop.
//
// Contains the types used for parsed directives, configuration, and results.
package agent

import (
	"encoding/json"

	"github.com/richinex/loom/llm"
	"github.com/richinex/loom/model"
)

// Directive is the parsed form of one reasoning response: either a tool
// request or a finish instruction.
type Directive struct {
	Thought     string  `json:"thought"`
	Action      *Action `json:"action,omitempty"`
	IsFinal     bool    `json:"is_final"`
	FinalAnswer *string `json:"final_answer,omitempty"`
}

// UnmarshalJSON accepts either a string or any JSON value for FinalAnswer.
func (d *Directive) UnmarshalJSON(data []byte) error {
	// Use an alias to avoid infinite recursion
	type DirectiveAlias Directive
	aux := &struct {
		FinalAnswer json.RawMessage `json:"final_answer,omitempty"`
		*DirectiveAlias
	}{
		DirectiveAlias: (*DirectiveAlias)(d),
	}

	if err := json.Unmarshal(data, aux); err != nil {
		return err
	}

	if len(aux.FinalAnswer) > 0 {
		var s string
		if err := json.Unmarshal(aux.FinalAnswer, &s); err == nil {
			d.FinalAnswer = &s
			return nil
		}

		// Not a string: pretty-print the JSON value
		var v interface{}
		if err := json.Unmarshal(aux.FinalAnswer, &v); err == nil {
			pretty, err := json.MarshalIndent(v, "", "  ")
			if err == nil {
				s := string(pretty)
				d.FinalAnswer = &s
			}
		}
	}

	return nil
}

// Action names a tool and carries its textual input.
type Action struct {
	Tool  string `json:"tool"`
	Input string `json:"input"`
}

// UnmarshalJSON accepts either a string or any JSON value for Input.
func (a *Action) UnmarshalJSON(data []byte) error {
	aux := struct {
		Tool  string          `json:"tool"`
		Input json.RawMessage `json:"input"`
	}{}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	a.Tool = aux.Tool

	if len(aux.Input) > 0 {
		var s string
		if err := json.Unmarshal(aux.Input, &s); err == nil {
			a.Input = s
		} else {
			a.Input = string(aux.Input)
		}
	}
	return nil
}

// Step is an alias for model.Step for agent reasoning steps.
type Step = model.Step

// TerminationReason describes how a run ended.
type TerminationReason int

const (
	// Finished means the loop ended via an explicit finish directive.
	Finished TerminationReason = iota
	// MaxStepsExceeded means the step budget ran out.
	MaxStepsExceeded
	// UnrecoverableError means consecutive parse failures (or a reasoning
	// call failure) exhausted the loop's recovery bounds.
	UnrecoverableError
	// Cancelled means the caller's context was cancelled or timed out.
	Cancelled
)

// String returns the string representation of the termination reason.
func (r TerminationReason) String() string {
	switch r {
	case Finished:
		return "FINISHED"
	case MaxStepsExceeded:
		return "MAX_STEPS_EXCEEDED"
	case UnrecoverableError:
		return "UNRECOVERABLE_ERROR"
	case Cancelled:
		return "CANCELLED"
	default:
		return "UNKNOWN"
	}
}

// Result is the terminal outcome of a run. FinalAnswer is set only when the
// loop finished via an explicit finish directive; Steps always carries the
// full trace for diagnosis.
type Result struct {
	FinalAnswer       string
	Steps             []Step
	TerminationReason TerminationReason
	Err               error // set for UnrecoverableError when reasoning itself failed

	ExecutionTimeMs uint64
	TokenUsage      llm.TokenUsage
	LLMCalls        int
}

// Finished reports whether the run produced a final answer.
func (r Result) Finished() bool {
	return r.TerminationReason == Finished
}

// Default loop bounds.
const (
	DefaultMaxSteps         = 12
	DefaultMaxParseFailures = 3
)

// Config holds agent configuration. Zero values fall back to the defaults
// above.
type Config struct {
	Name             string
	SystemPrompt     string
	MaxSteps         int
	MaxParseFailures int
}

func (c Config) maxSteps() int {
	if c.MaxSteps > 0 {
		return c.MaxSteps
	}
	return DefaultMaxSteps
}

func (c Config) maxParseFailures() int {
	if c.MaxParseFailures > 0 {
		return c.MaxParseFailures
	}
	return DefaultMaxParseFailures
}
