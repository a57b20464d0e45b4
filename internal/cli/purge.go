package cli

import (
	"fmt"

	"strategystore/pkg/config"

	"github.com/spf13/cobra"
)

// NewPurgeEventsCommand drops every pending message on the events queue.
func NewPurgeEventsCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "purge-events",
		Short: "Remove all pending messages from the strategy events queue",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !opts.settings.RabbitMQ.Enabled() {
				return fmt.Errorf("rabbitmq.host is not configured")
			}
			conn, err := config.InitRabbitMQ(opts.settings.RabbitMQ)
			if err != nil {
				return err
			}
			defer conn.Close()

			n, err := config.PurgeQueue(conn, opts.settings.RabbitMQ.EventsQueue)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "purged %d messages from %s\n", n, opts.settings.RabbitMQ.EventsQueue)
			return nil
		},
	}
}
