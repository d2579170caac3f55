// Package main provides the loom CLI entry point.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/richinex/loom/cli"
)

var (
	// Global flags
	provider    string
	verbose     bool
	dbPath      string
	toolRetries uint32
)

func main() {
	// Load .env file if present (ignore "file not found" errors)
	if err := godotenv.Load(); err != nil {
		if !os.IsNotExist(err) {
			fmt.Fprintf(os.Stderr, "Warning: failed to load .env file: %v\n", err)
		}
	}

	rootCmd := &cobra.Command{
		Use:   "loom",
		Short: "Retrieval-augmented answer synthesis and tool-using agents",
		Long: `Answer questions over your documents with one of four synthesis
strategies (stuff, map_reduce, refine, map_rerank), or run a bounded
tool-using agent loop.`,
	}

	rootCmd.PersistentFlags().StringVarP(&provider, "provider", "p", "", "LLM provider (openai, anthropic, deepseek, gemini)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Show verbose output")
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "", "SQLite path for persisting runs and answers")
	rootCmd.PersistentFlags().Uint32Var(&toolRetries, "tool-retries", 3, "Maximum retries for tool execution")

	rootCmd.AddCommand(askCmd())
	rootCmd.AddCommand(agentCmd())
	rootCmd.AddCommand(toolsCmd())
	rootCmd.AddCommand(runsCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func globalOptions() cli.Options {
	return cli.Options{
		Provider:    provider,
		Verbose:     verbose,
		DBPath:      dbPath,
		ToolRetries: toolRetries,
	}
}

func askCmd() *cobra.Command {
	var strategy string
	var docs []string
	var chunkBudget int
	var concurrency int
	var topK int

	cmd := &cobra.Command{
		Use:   "ask [question]",
		Short: "Answer a question over indexed documents",
		Long: `Retrieve the most relevant passages from the given documents and
synthesize one answer.

Strategies:
- stuff:      everything in one prompt (fails if it does not fit)
- map_reduce: answer each chunk in parallel, then combine
- refine:     walk chunks sequentially, refining a running answer
- map_rerank: answer each chunk in parallel, keep the most confident`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return cli.Ask(context.Background(), args[0], cli.AskOptions{
				Options:     globalOptions(),
				Strategy:    strategy,
				Docs:        docs,
				ChunkBudget: chunkBudget,
				Concurrency: concurrency,
				TopK:        topK,
			})
		},
	}

	cmd.Flags().StringVarP(&strategy, "strategy", "s", "stuff", "Synthesis strategy (stuff, map_reduce, refine, map_rerank)")
	cmd.Flags().StringSliceVar(&docs, "docs", nil, "Files or directories to index (repeatable)")
	cmd.Flags().IntVar(&chunkBudget, "chunk-budget", 0, "Per-call passage budget in bytes (0 = default)")
	cmd.Flags().IntVar(&concurrency, "concurrency", 0, "Parallel per-chunk calls (0 = default)")
	cmd.Flags().IntVarP(&topK, "top-k", "k", 0, "Passages to retrieve (0 = default)")

	return cmd
}

func agentCmd() *cobra.Command {
	var maxSteps int
	var docs []string

	cmd := &cobra.Command{
		Use:   "agent [task]",
		Short: "Run a bounded tool-using agent loop on a task",
		Long: `Run the think/act/observe loop: the model picks a tool, observes its
output, and repeats until it finishes or the step budget runs out.

With --docs, a search tool over the indexed documents is added to the
default toolset.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return cli.RunAgent(context.Background(), args[0], cli.AgentOptions{
				Options:  globalOptions(),
				MaxSteps: maxSteps,
				Docs:     docs,
			})
		},
	}

	cmd.Flags().IntVarP(&maxSteps, "max-steps", "m", 0, "Maximum loop steps (0 = default)")
	cmd.Flags().StringSliceVar(&docs, "docs", nil, "Files or directories to make searchable (repeatable)")

	return cmd
}

func toolsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "tools",
		Short: "List available tools",
		RunE: func(cmd *cobra.Command, args []string) error {
			return cli.ListTools()
		},
	}
}

func runsCmd() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "runs",
		Short: "List persisted agent runs",
		RunE: func(cmd *cobra.Command, args []string) error {
			return cli.ListRuns(context.Background(), globalOptions(), limit)
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Maximum runs to list")

	return cmd
}
