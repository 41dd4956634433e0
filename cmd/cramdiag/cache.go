package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/cramdeck/cramdeck/internal/rescache"
)

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Show the result cache configuration",
	Long: `Prints the TTL, capacity, and eviction settings the server's study
result cache runs with. The cache itself lives inside the server
process; use the clear_cache MCP tool to empty a running server.`,
	RunE: runCache,
}

func init() {
	rootCmd.AddCommand(cacheCmd)
}

func runCache(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	fmt.Println(cyan("Result cache configuration:"))
	fmt.Printf("  ttl:            %s\n", cfg.CacheTTL())
	fmt.Printf("  max entries:    %d\n", cfg.CacheMaxEntries)
	fmt.Printf("  eviction batch: %d oldest entries\n", rescache.EvictBatch)

	if cfg.CacheTTL() != rescache.DefaultTTL {
		fmt.Println(yellow("  ttl differs from the default"))
	}
	return nil
}
