package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"trendpulse/internal/config"
	"trendpulse/internal/llm"
	"trendpulse/internal/persistence"
	"trendpulse/internal/pipeline"
	"trendpulse/internal/search"
)

// NewRunCmd creates the run command that executes one pipeline snapshot.
func NewRunCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Run one snapshot of the keyword pipeline",
		Long: `Run the full pipeline once: collect sources, extract and rank
keywords, enrich the top keywords and persist the snapshot.

The run summary is printed as JSON on success.

Example:
  trendpulse run`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPipeline(cmd.Context())
		},
	}
}

func runPipeline(ctx context.Context) error {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	db, err := persistence.NewPostgresDB(cfg.Database.URL)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

	pipe, err := buildPipeline(cfg, db)
	if err != nil {
		return err
	}

	summary, err := pipe.Run(ctx)
	if err != nil {
		return fmt.Errorf("pipeline run failed: %w", err)
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(summary)
}

// buildPipeline wires the model client and search provider from config.
func buildPipeline(cfg *config.Config, db persistence.Database) (*pipeline.Pipeline, error) {
	if cfg.OpenAI.APIKey == "" {
		return nil, fmt.Errorf("OPENAI_API_KEY is required")
	}
	model := llm.NewOpenAIClient(cfg.OpenAI.APIKey, cfg.OpenAI.Model)

	providerType := search.ProviderTypeTavily
	if cfg.Search.APIKey == "" {
		providerType = search.ProviderTypeMock
	}
	provider, err := search.NewProvider(providerType, cfg.Search.APIKey)
	if err != nil {
		return nil, fmt.Errorf("failed to create search provider: %w", err)
	}

	return pipeline.New(cfg, db, model, provider), nil
}
