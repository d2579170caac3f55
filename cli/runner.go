// Command execution for CLI commands.
//
// Information Hiding:
// - Provider and store setup hidden
// - Output formatting hidden

package cli

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/richinex/loom/agent"
	"github.com/richinex/loom/config"
	"github.com/richinex/loom/llm"
	"github.com/richinex/loom/retrieval"
	"github.com/richinex/loom/storage"
	"github.com/richinex/loom/synthesis"
	"github.com/richinex/loom/tools"
)

// Options holds CLI execution options shared across commands.
type Options struct {
	Provider    string
	Verbose     bool
	DBPath      string
	ToolRetries uint32
}

// AskOptions holds options for the ask command.
type AskOptions struct {
	Options
	Strategy    string
	Docs        []string
	ChunkBudget int
	Concurrency int
	TopK        int
}

// AgentOptions holds options for the agent command.
type AgentOptions struct {
	Options
	MaxSteps int
	Docs     []string
}

const defaultEmbeddingModel = "text-embedding-3-small"

// Ask retrieves passages for the question and synthesizes one answer with
// the selected strategy.
func Ask(ctx context.Context, question string, opts AskOptions) error {
	settings, err := config.New(orDefault(opts.Provider, "anthropic"))
	if err != nil {
		return err
	}

	strategy, err := synthesis.ParseStrategy(orDefault(opts.Strategy, "stuff"))
	if err != nil {
		return err
	}

	provider, err := createProvider(settings)
	if err != nil {
		return err
	}
	client := llm.NewClient(provider)

	index, err := buildIndex(ctx, opts.Docs)
	if err != nil {
		return err
	}

	topK := opts.TopK
	if topK <= 0 {
		topK = settings.Synthesis.TopK
	}
	passages, err := index.Search(ctx, question, topK)
	if err != nil {
		return err
	}

	chunkBudget := opts.ChunkBudget
	if chunkBudget <= 0 {
		chunkBudget = settings.Synthesis.ChunkBudget
	}
	concurrency := opts.Concurrency
	if concurrency <= 0 {
		concurrency = settings.Synthesis.Concurrency
	}

	combiner := synthesis.NewCombiner(client,
		synthesis.WithChunkBudget(chunkBudget),
		synthesis.WithConcurrency(concurrency),
	)

	answer, err := combiner.Combine(ctx, question, passages, strategy)
	if err != nil {
		return fmt.Errorf("synthesis failed: %w", err)
	}

	fmt.Printf("%s\n\n", answer.Text)
	fmt.Printf("(strategy=%s calls=%d passages=%s)\n",
		answer.Strategy, answer.CallCount, strings.Join(answer.UsedPassageIDs, ","))

	return persistAnswer(ctx, opts.Options, settings, question, answer)
}

// RunAgent executes one task with the bounded reasoning loop.
func RunAgent(ctx context.Context, task string, opts AgentOptions) error {
	settings, err := config.New(orDefault(opts.Provider, "anthropic"))
	if err != nil {
		return err
	}

	provider, err := createProvider(settings)
	if err != nil {
		return err
	}

	registry, err := tools.WithDefaults()
	if err != nil {
		return err
	}
	if len(opts.Docs) > 0 {
		index, err := buildIndex(ctx, opts.Docs)
		if err != nil {
			return err
		}
		if err := registry.Register(tools.NewSearchTool(index, settings.Synthesis.TopK)); err != nil {
			return err
		}
	}

	maxSteps := opts.MaxSteps
	if maxSteps <= 0 {
		maxSteps = settings.Agent.MaxSteps
	}

	a := agent.New(agent.Config{
		Name:             "loom",
		MaxSteps:         maxSteps,
		MaxParseFailures: settings.Agent.MaxParseFailures,
	}, provider).
		WithTools(registry).
		WithToolConfig(tools.ToolConfig{MaxRetries: opts.ToolRetries}).
		Verbose(opts.Verbose)

	result := a.Run(ctx, task)

	if opts.Verbose {
		printSteps(result.Steps)
	}

	switch result.TerminationReason {
	case agent.Finished:
		fmt.Printf("%s\n\n", result.FinalAnswer)
		fmt.Printf("(%d steps, %d LLM calls, %d tokens)\n",
			len(result.Steps), result.LLMCalls, result.TokenUsage.TotalTokens)
	case agent.MaxStepsExceeded:
		fmt.Fprintf(os.Stderr, "Step budget exhausted after %d steps.\n", len(result.Steps))
	case agent.UnrecoverableError:
		fmt.Fprintf(os.Stderr, "Run failed: %v\n", result.Err)
	case agent.Cancelled:
		fmt.Fprintf(os.Stderr, "Run cancelled: %v\n", result.Err)
	}

	if err := persistRun(ctx, opts.Options, settings, task, result); err != nil {
		return err
	}

	if result.TerminationReason != agent.Finished {
		return fmt.Errorf("run ended with %s", result.TerminationReason)
	}
	return nil
}

// ListTools prints the default tool catalogue.
func ListTools() error {
	registry, err := tools.WithDefaults()
	if err != nil {
		return err
	}
	fmt.Println(registry.Description())
	return nil
}

// ListRuns prints recent persisted runs.
func ListRuns(ctx context.Context, opts Options, limit int) error {
	store, err := openStore(opts, config.Settings{Storage: config.StorageConfig{Path: opts.DBPath}})
	if err != nil {
		return err
	}
	if store == nil {
		return fmt.Errorf("no database configured (set --db or LOOM_DB_PATH)")
	}
	defer store.Close()

	runs, err := store.ListRuns(ctx, limit)
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Println("no runs recorded")
		return nil
	}
	for _, run := range runs {
		fmt.Printf("%s  %-20s  %s  %q\n",
			run.CreatedAt.Format("2006-01-02 15:04:05"), run.Outcome, run.ID, run.Question)
	}
	return nil
}

// Helpers

func orDefault(value, fallback string) string {
	if value != "" {
		return value
	}
	return fallback
}

func createProvider(settings config.Settings) (llm.Provider, error) {
	providerType, err := llm.ParseProviderType(settings.LLM.Provider)
	if err != nil {
		return nil, err
	}
	return llm.NewProviderBuilder(providerType).
		Model(settings.LLM.Model).
		MaxTokens(settings.LLM.MaxTokens).
		Temperature(float32(settings.LLM.Temperature)).
		FromEnv()
}

func buildIndex(ctx context.Context, docs []string) (*retrieval.VectorIndex, error) {
	if len(docs) == 0 {
		return nil, fmt.Errorf("no documents given (use --docs)")
	}

	passages, err := LoadPassages(docs)
	if err != nil {
		return nil, err
	}

	embedder, err := retrieval.NewOpenAIEmbedder(defaultEmbeddingModel)
	if err != nil {
		return nil, err
	}

	index := retrieval.NewVectorIndex(embedder)
	if err := index.AddAll(ctx, passages); err != nil {
		return nil, fmt.Errorf("failed to index documents: %w", err)
	}
	return index, nil
}

func openStore(opts Options, settings config.Settings) (storage.TraceStore, error) {
	path := opts.DBPath
	if path == "" {
		path = settings.Storage.Path
	}
	if path == "" {
		return nil, nil
	}
	return storage.OpenSqlite(path)
}

func persistRun(ctx context.Context, opts Options, settings config.Settings, task string, result agent.Result) error {
	store, err := openStore(opts, settings)
	if err != nil || store == nil {
		return err
	}
	defer store.Close()

	run := storage.NewRun(task, result.FinalAnswer, result.TerminationReason.String())
	run.LLMCalls = result.LLMCalls
	run.TotalTokens = result.TokenUsage.TotalTokens
	run.DurationMs = result.ExecutionTimeMs
	return store.SaveRun(ctx, run, result.Steps)
}

func persistAnswer(ctx context.Context, opts Options, settings config.Settings, question string, answer *synthesis.CombinedAnswer) error {
	store, err := openStore(opts, settings)
	if err != nil || store == nil {
		return err
	}
	defer store.Close()

	return store.SaveAnswer(ctx, storage.NewAnswer(
		question, answer.Strategy.String(), answer.Text, answer.CallCount, answer.UsedPassageIDs))
}

func printSteps(steps []agent.Step) {
	for _, step := range steps {
		fmt.Printf("--- step %d ---\n", step.Index)
		if step.Thought != "" {
			fmt.Printf("thought: %s\n", step.Thought)
		}
		if step.Action != "" {
			fmt.Printf("action: %s(%s)\n", step.Action, step.ActionInput)
		}
		fmt.Printf("observation: %s\n", step.Observation)
	}
	fmt.Println()
}
