package main

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/cramdeck/cramdeck/internal/mcp"
	"github.com/cramdeck/cramdeck/internal/pipeline"
	"github.com/cramdeck/cramdeck/internal/store"
)

var (
	queryIDs  []string
	queryTopK int
	queryJSON bool
)

var queryCmd = &cobra.Command{
	Use:   "query [question]",
	Short: "Answer a question from stored records",
	Long: `Runs the full retrieval pipeline against records in the local store,
exactly as the MCP query_documents tool would.`,
	Args: cobra.ExactArgs(1),
	RunE: runQuery,
}

func init() {
	queryCmd.Flags().StringSliceVar(&queryIDs, "ids", nil, "record IDs to search (required)")
	queryCmd.Flags().IntVarP(&queryTopK, "top-k", "k", 0, "number of chunks to retrieve")
	queryCmd.Flags().BoolVar(&queryJSON, "json", false, "output the raw result as JSON")
	_ = queryCmd.MarkFlagRequired("ids")
	rootCmd.AddCommand(queryCmd)
}

func runQuery(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	dbPath, err := mcp.ExpandHome(cfg.DBPath)
	if err != nil {
		return err
	}
	recordStore, err := store.NewSQLiteStore(dbPath)
	if err != nil {
		return fmt.Errorf("failed to open record store: %w", err)
	}
	defer func() { _ = recordStore.Close() }()

	ctx := context.Background()
	content, err := recordStore.AssembleContent(ctx, queryIDs)
	if err != nil {
		return fmt.Errorf("failed to load records: %w", err)
	}
	if content == "" {
		return fmt.Errorf("no valid documents found for ids %v", queryIDs)
	}

	result := buildPipeline(cfg).Process(ctx, content, args[0], queryTopK)

	if queryJSON {
		data, err := json.MarshalIndent(result, "", "  ")
		if err != nil {
			return err
		}
		cmd.Println(string(data))
		return nil
	}

	printResult(result)
	if !result.Success {
		return fmt.Errorf("pipeline failed at %s stage", result.FailedStage)
	}
	return nil
}

func printResult(result *pipeline.Result) {
	if result.Success {
		fmt.Println(boldGreen("Success"))
		fmt.Println()
		fmt.Println(result.Response)
	} else {
		fmt.Printf("%s at stage %s: %s\n", boldRed("Failed"), result.FailedStage, result.Err)
	}

	fmt.Println()
	fmt.Printf("%s %s", cyan("embedding tier:"), result.EmbeddingTier)
	if result.Partial {
		fmt.Printf(" %s", yellow("(partial retrieval)"))
	}
	fmt.Println()
	fmt.Printf("%s %d\n", cyan("retrieved chunks:"), len(result.RetrievedChunks))
	fmt.Printf("%s chunk=%dms embed=%dms retrieve=%dms generate=%dms total=%dms\n",
		cyan("timings:"),
		result.Timings.Chunking.Milliseconds(),
		result.Timings.Embedding.Milliseconds(),
		result.Timings.Retrieval.Milliseconds(),
		result.Timings.Generation.Milliseconds(),
		result.Timings.Total.Milliseconds())
}
