// Package cli implements dbtool, the operator command line for the strategy
// store's database and queue.
package cli

import (
	"fmt"

	"strategystore/pkg/config"

	"github.com/spf13/cobra"
	"gorm.io/gorm"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	ConfigFile string

	settings config.Settings
	openDB   func(config.DBSettings) (*gorm.DB, error)
}

// NewRootCommand creates the root command for dbtool.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{openDB: config.InitDB}

	cmd := &cobra.Command{
		Use:   "dbtool",
		Short: "Strategy store maintenance",
		Long:  "Run schema migrations, inspect the strategy journal and issue development tokens.",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			settings, err := config.Load(opts.ConfigFile)
			if err != nil {
				return err
			}
			config.InitLogger(settings.Log)
			opts.settings = settings
			return nil
		},
		SilenceUsage: true,
	}

	cmd.PersistentFlags().StringVarP(&opts.ConfigFile, "config", "c", "", "YAML config file (env STRATEGY_* always applies)")

	cmd.AddCommand(NewMigrateCommand(opts))
	cmd.AddCommand(NewStatsCommand(opts))
	cmd.AddCommand(NewHistoryCommand(opts))
	cmd.AddCommand(NewTokenCommand(opts))
	cmd.AddCommand(NewPurgeEventsCommand(opts))

	return cmd
}

func (o *RootOptions) db() (*gorm.DB, error) {
	if !o.settings.DB.Enabled() {
		return nil, fmt.Errorf("db.host is not configured")
	}
	return o.openDB(o.settings.DB)
}
