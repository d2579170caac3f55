// Bounded think/act/observe loop.
//
// All agent execution goes through this module.
//
// Information Hiding:
// - Loop state transitions hidden
// - LLM communication hidden
// - Tool execution coordination hidden

package agent

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/richinex/loom/llm"
	"github.com/richinex/loom/tools"
)

// Synthetic observations for recoverable loop events.
const (
	observationUnknownTool = "unknown tool"
	observationParseError  = "parse error, retry"
)

// Agent runs the bounded reasoning loop over a tool registry.
type Agent struct {
	config   Config
	client   *llm.Client
	registry *tools.Registry
	executor *tools.Executor
	verbose  bool
}

// New creates an agent with the given configuration and provider.
func New(config Config, provider llm.Provider) *Agent {
	return NewWithClient(config, llm.NewClient(provider))
}

// NewWithClient creates an agent over a pre-configured generation client.
func NewWithClient(config Config, client *llm.Client) *Agent {
	return &Agent{
		config:   config,
		client:   client,
		registry: tools.NewRegistry(),
		executor: tools.NewDefaultExecutor(),
	}
}

// WithTools sets the tool registry. The registry is read-only during a run.
func (a *Agent) WithTools(registry *tools.Registry) *Agent {
	a.registry = registry
	return a
}

// WithToolConfig overrides the tool execution configuration.
func (a *Agent) WithToolConfig(config tools.ToolConfig) *Agent {
	a.executor = tools.NewExecutor(config)
	return a
}

// Verbose enables streaming of reasoning tokens to stdout.
func (a *Agent) Verbose(enabled bool) *Agent {
	a.verbose = enabled
	return a
}

// Name returns the agent's name.
func (a *Agent) Name() string {
	return a.config.Name
}

// Run executes the loop for one question. It always returns a Result with
// the full step trace; tool failures never abort the loop, only the parse
// and step bounds (and cancellation) do.
func (a *Agent) Run(ctx context.Context, question string) Result {
	start := time.Now()
	var steps []Step
	var usage llm.TokenUsage
	llmCalls := 0
	parseFailures := 0
	maxSteps := a.config.maxSteps()

	done := func(reason TerminationReason, answer string, err error) Result {
		return Result{
			FinalAnswer:       answer,
			Steps:             steps,
			TerminationReason: reason,
			Err:               err,
			ExecutionTimeMs:   uint64(time.Since(start).Milliseconds()),
			TokenUsage:        usage,
			LLMCalls:          llmCalls,
		}
	}

	conversation := []llm.ChatMessage{
		llm.SystemMessage(a.systemPrompt()),
		llm.UserMessage(fmt.Sprintf("Question: %s", question)),
	}

	for len(steps) < maxSteps {
		if ctx.Err() != nil {
			return done(Cancelled, "", ctx.Err())
		}

		// THINKING
		response, callUsage, err := a.think(ctx, conversation)
		llmCalls++
		usage.Add(callUsage)
		if err != nil {
			if ctx.Err() != nil {
				return done(Cancelled, "", ctx.Err())
			}
			return done(UnrecoverableError, "", fmt.Errorf("reasoning failed: %w", err))
		}

		directive, kind := parseDirective(response)

		if kind == directiveParseError {
			parseFailures++
			steps = append(steps, Step{
				Index:       len(steps),
				Thought:     response,
				Observation: observationParseError,
			})
			if parseFailures >= a.config.maxParseFailures() {
				return done(UnrecoverableError, "",
					fmt.Errorf("%d consecutive unparseable responses", parseFailures))
			}
			conversation = append(conversation,
				llm.AssistantMessage(response),
				llm.UserMessage("Your last response could not be parsed. Respond with exactly one JSON object in the required format."),
			)
			continue
		}
		parseFailures = 0

		if kind == directiveFinish {
			answer := directive.Thought
			if directive.FinalAnswer != nil {
				answer = *directive.FinalAnswer
			}
			steps = append(steps, Step{
				Index:       len(steps),
				Thought:     directive.Thought,
				Action:      "finish",
				Observation: answer,
			})
			return done(Finished, answer, nil)
		}

		// ACTING
		if ctx.Err() != nil {
			return done(Cancelled, "", ctx.Err())
		}
		observation := a.act(ctx, directive.Action)

		// OBSERVING
		steps = append(steps, Step{
			Index:       len(steps),
			Thought:     directive.Thought,
			Action:      directive.Action.Tool,
			ActionInput: directive.Action.Input,
			Observation: observation,
		})
		conversation = append(conversation,
			llm.AssistantMessage(response),
			llm.UserMessage(fmt.Sprintf(
				"Observation: %s\n\nIf you now know the answer, set is_final=true and provide final_answer.",
				observation,
			)),
		)
	}

	return done(MaxStepsExceeded, "", nil)
}

// act resolves and invokes the chosen tool. Every failure mode comes back
// as observation text so the next reasoning step can adjust.
func (a *Agent) act(ctx context.Context, action *Action) string {
	tool, ok := a.registry.Get(action.Tool)
	if !ok {
		return observationUnknownTool
	}

	result, err := a.executor.Execute(ctx, tool, action.Input)
	if err != nil {
		return fmt.Sprintf("tool %s failed: %v", action.Tool, err)
	}
	if result.Success() {
		return result.Output
	}
	return fmt.Sprintf("tool %s failed: %v", action.Tool, result.Error)
}

// think asks the LLM for the next directive. Uses streaming in verbose mode
// to show tokens in real time.
func (a *Agent) think(ctx context.Context, conversation []llm.ChatMessage) (string, *llm.TokenUsage, error) {
	if a.verbose {
		return a.thinkWithStreaming(ctx, conversation)
	}
	return a.client.Chat(ctx, conversation)
}

// streamResult holds the result of a streaming call.
type streamResult struct {
	usage *llm.TokenUsage
	err   error
}

func (a *Agent) thinkWithStreaming(ctx context.Context, conversation []llm.ChatMessage) (string, *llm.TokenUsage, error) {
	chunks := make(chan string, 100)

	resultCh := make(chan streamResult, 1)
	go func() {
		defer close(chunks)
		usage, err := a.client.StreamChat(ctx, conversation, chunks)
		resultCh <- streamResult{usage: usage, err: err}
	}()

	var response strings.Builder
	printedHeader := false
	for chunk := range chunks {
		if !printedHeader {
			fmt.Printf("\n[%s] ", a.config.Name)
			printedHeader = true
		}
		fmt.Print(chunk)
		os.Stdout.Sync()
		response.WriteString(chunk)
	}
	if printedHeader {
		fmt.Print("\n\n")
	}

	result := <-resultCh
	if result.err != nil {
		return "", nil, result.err
	}
	return response.String(), result.usage, nil
}

func (a *Agent) systemPrompt() string {
	base := a.config.SystemPrompt
	if base == "" {
		base = "You are a careful assistant that solves tasks step by step using the available tools."
	}

	return fmt.Sprintf(`%s

Available Tools:
%s

You have a maximum of %d steps.
Respond with a single JSON object in this format:
{
  "thought": "your reasoning",
  "action": {"tool": "name", "input": "tool input as text"},
  "is_final": false,
  "final_answer": null
}

When you know the answer: set is_final=true, action=null, and put the answer in final_answer.`,
		base,
		a.registry.Description(),
		a.config.maxSteps(),
	)
}
