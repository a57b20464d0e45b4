package cli

import (
	"strategystore/pkg/config"

	"github.com/spf13/cobra"
)

// NewMigrateCommand creates the migrate command with up and down.
func NewMigrateCommand(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply or roll back schema migrations",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "up",
		Short: "Apply all pending migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := opts.db()
			if err != nil {
				return err
			}
			return config.ExecuteMigrations(db, opts.settings.DB.MigrationsPath)
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "down",
		Short: "Roll back the last migration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := opts.db()
			if err != nil {
				return err
			}
			return config.RollbackMigration(db, opts.settings.DB.MigrationsPath)
		},
	})

	return cmd
}
