package cli

import (
	"context"
	"fmt"
	"io"
	"time"

	"strategystore/internal/repository"

	"github.com/spf13/cobra"
)

func NewStatsCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Print the persisted strategy count and the latest stat sample",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := opts.db()
			if err != nil {
				return err
			}
			ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
			defer cancel()
			return printStats(ctx, cmd.OutOrStdout(),
				repository.NewStrategyRepository(db),
				repository.NewCatalogStatRepository(db))
		},
	}
}

func printStats(ctx context.Context, w io.Writer, strategies repository.StrategyRepository, stats repository.CatalogStatRepository) error {
	n, err := strategies.Count(ctx)
	if err != nil {
		return fmt.Errorf("failed to count strategies: %w", err)
	}
	fmt.Fprintf(w, "Strategy Storage - Total strategies: %d\n", n)

	latest, err := stats.Latest(ctx)
	if err != nil {
		return fmt.Errorf("failed to read stat samples: %w", err)
	}
	if latest == nil {
		fmt.Fprintln(w, "No reconcile sample recorded yet")
		return nil
	}
	fmt.Fprintf(w, "Last reconcile: %d strategies at %s\n", latest.Count, latest.CreatedAt.UTC().Format(time.RFC3339))
	return nil
}
