package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

var (
	pipelineFile  string
	pipelineQuery string
	pipelineTopK  int
)

var pipelineCmd = &cobra.Command{
	Use:   "pipeline",
	Short: "Run the pipeline over ad-hoc text",
	Long: `Exercises every pipeline stage against text from a file or stdin,
without touching the record store. Useful for isolating whether a
failure is in chunking, embedding, retrieval, or generation.`,
	RunE: runPipeline,
}

func init() {
	pipelineCmd.Flags().StringVarP(&pipelineFile, "file", "f", "", "read document text from this file (default stdin)")
	pipelineCmd.Flags().StringVarP(&pipelineQuery, "query", "q", "Summarize this text", "query to run against the document")
	pipelineCmd.Flags().IntVarP(&pipelineTopK, "top-k", "k", 0, "number of chunks to retrieve")
	rootCmd.AddCommand(pipelineCmd)
}

func runPipeline(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	var text []byte
	if pipelineFile != "" {
		text, err = os.ReadFile(pipelineFile)
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", pipelineFile, err)
		}
	} else {
		text, err = io.ReadAll(os.Stdin)
		if err != nil {
			return fmt.Errorf("failed to read stdin: %w", err)
		}
	}
	if strings.TrimSpace(string(text)) == "" {
		return fmt.Errorf("no document text provided")
	}

	fmt.Printf("%s %d bytes, query %q\n", cyan("input:"), len(text), pipelineQuery)

	result := buildPipeline(cfg).Process(context.Background(), string(text), pipelineQuery, pipelineTopK)
	printResult(result)

	if !result.Success {
		return fmt.Errorf("pipeline failed at %s stage", result.FailedStage)
	}
	return nil
}
