// Command cramdiag is a diagnostics CLI for the cramdeck pipeline. It runs
// the same components the MCP server wires together, but from the terminal,
// so a failing deployment can be narrowed down stage by stage.
package main

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/cramdeck/cramdeck/internal/chunker"
	"github.com/cramdeck/cramdeck/internal/config"
	"github.com/cramdeck/cramdeck/internal/embedder"
	"github.com/cramdeck/cramdeck/internal/llm"
	"github.com/cramdeck/cramdeck/internal/pipeline"
	"github.com/cramdeck/cramdeck/internal/retry"
)

var (
	boldGreen = color.New(color.FgGreen, color.Bold).SprintFunc()
	boldRed   = color.New(color.FgRed, color.Bold).SprintFunc()
	yellow    = color.New(color.FgYellow).SprintFunc()
	cyan      = color.New(color.FgCyan).SprintFunc()
)

var rootCmd = &cobra.Command{
	Use:           "cramdiag",
	Short:         "Diagnostics for the cramdeck RAG pipeline",
	SilenceUsage:  true,
	SilenceErrors: true,
}

// loadConfig reads the environment the same way the server does
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	return cfg, nil
}

// buildLLMClient creates the generation client from configuration
func buildLLMClient(cfg *config.Config) *llm.Client {
	retryCfg := retry.Default()
	if cfg.MaxRetries > 0 {
		retryCfg.MaxAttempts = cfg.MaxRetries
	}
	return llm.NewClient(cfg.GenerationBaseURL, cfg.OpenRouterAPIKey,
		llm.WithModel(cfg.GenerationModel),
		llm.WithMaxTokens(cfg.MaxTokens),
		llm.WithTimeout(cfg.GenTimeout()),
		llm.WithRetry(retryCfg),
	)
}

// buildPipeline assembles the stage chain from configuration
func buildPipeline(cfg *config.Config) *pipeline.Pipeline {
	emb := embedder.New(embedder.Config{
		LocalEnabled: cfg.UseLocalEmbeddings,
		APIKey:       cfg.OpenAIAPIKey,
	})
	return pipeline.New(chunker.New(cfg.ChunkSize, cfg.ChunkOverlap), emb, buildLLMClient(cfg))
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, boldRed("Error:"), err)
		os.Exit(1)
	}
}
