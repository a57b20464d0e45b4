package cli

import (
	"context"
	"fmt"
	"io"
	"time"

	"strategystore/internal/repository"

	"github.com/spf13/cobra"
)

// NewHistoryCommand prints the recorded events of one strategy.
func NewHistoryCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "history <strategy-id>",
		Short: "Print the audit trail of a strategy",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := opts.db()
			if err != nil {
				return err
			}
			ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
			defer cancel()
			return printHistory(ctx, cmd.OutOrStdout(), repository.NewStrategyEventRepository(db), args[0])
		},
	}
}

func printHistory(ctx context.Context, w io.Writer, events repository.StrategyEventRepository, id string) error {
	evs, err := events.ListByStrategy(ctx, id)
	if err != nil {
		return err
	}
	if len(evs) == 0 {
		fmt.Fprintf(w, "No events recorded for strategy '%s'\n", id)
		return nil
	}
	for _, ev := range evs {
		fmt.Fprintf(w, "%s  %-17s  by %s  (total %d)\n",
			ev.OccurredAt.UTC().Format(time.RFC3339), ev.Type, ev.Caller, ev.Total)
	}
	return nil
}
