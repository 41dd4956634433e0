package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/cramdeck/cramdeck/internal/embedder"
)

var probeCmd = &cobra.Command{
	Use:   "probe",
	Short: "Check which pipeline backends are reachable",
	RunE:  runProbe,
}

func init() {
	rootCmd.AddCommand(probeCmd)
}

func runProbe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// Embedding tiers
	emb := embedder.New(embedder.Config{
		LocalEnabled: cfg.UseLocalEmbeddings,
		APIKey:       cfg.OpenAIAPIKey,
	})
	fmt.Println(cyan("Embedding tiers:"))
	for _, tier := range emb.Tiers() {
		switch tier {
		case embedder.TierRandom:
			fmt.Printf("  %s %s\n", yellow("!"), tier)
		default:
			fmt.Printf("  %s %s\n", boldGreen("+"), tier)
		}
	}
	if len(emb.Tiers()) == 1 {
		fmt.Println(yellow("  only the random fallback is configured; results will be near-random"))
	}

	// Generation backend
	fmt.Println(cyan("Generation:"))
	fmt.Printf("  model: %s\n", cfg.GenerationModel)
	fmt.Printf("  url:   %s\n", cfg.GenerationBaseURL)

	gen := buildLLMClient(cfg)
	if err := gen.Probe(ctx); err != nil {
		fmt.Printf("  %s unreachable: %v\n", boldRed("x"), err)
		return fmt.Errorf("generation backend is down")
	}
	fmt.Printf("  %s reachable\n", boldGreen("+"))

	if cfg.OpenRouterAPIKey == "" {
		fmt.Println(yellow("  no generation API key set; requests will fail"))
	}
	return nil
}
