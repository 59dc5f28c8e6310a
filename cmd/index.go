package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/docside/docside/internal/app"
	"github.com/docside/docside/internal/config"
	"github.com/docside/docside/internal/log"
)

var (
	indexForce  bool
	indexTopics []string
)

var indexCmd = &cobra.Command{
	Use:   "index",
	Short: "Fetch and index documentation, then exit",
	Long: `Index runs one ingestion pass and exits. Without flags it refreshes
every configured topic. --topic limits the run to specific topics,
--force discards the persisted index and rebuilds from scratch.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runIndex(cmd.Context())
	},
}

func init() {
	indexCmd.Flags().BoolVar(&indexForce, "force", false, "discard the persisted index and rebuild")
	indexCmd.Flags().StringSliceVar(&indexTopics, "topic", nil, "topic IDs to refresh (repeatable)")
	rootCmd.AddCommand(indexCmd)
}

func runIndex(parent context.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	if err = cfg.ValidateServe(); err != nil {
		return fmt.Errorf("validating config: %w", err)
	}
	if indexForce && len(indexTopics) > 0 {
		return fmt.Errorf("--force rebuilds everything and cannot be combined with --topic")
	}

	logger := log.New(log.Config{Level: logLevelFromEnv()})

	ctx, cancel := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	a, err := app.Setup(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("initializing application: %w", err)
	}

	var count int
	if indexForce {
		count, err = a.Assistant.Initialize(ctx, true)
	} else if len(indexTopics) > 0 {
		count, _, err = a.Assistant.Reindex(ctx, indexTopics)
	} else {
		count, _, err = a.Assistant.Reindex(ctx, nil)
	}
	if err != nil {
		return fmt.Errorf("indexing: %w", err)
	}

	fmt.Fprintf(os.Stdout, "Indexed %d document chunks (store total: %d)\n", count, a.Store.Count())
	return nil
}
