package cli

import (
	"fmt"
	"time"

	"strategystore/internal/middleware"

	"github.com/spf13/cobra"
)

// NewTokenCommand issues a bearer token for a caller identity, signed with
// auth.jwt_secret.
func NewTokenCommand(opts *RootOptions) *cobra.Command {
	var ttl time.Duration

	cmd := &cobra.Command{
		Use:   "token <caller>",
		Short: "Issue a bearer token for a caller identity",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			secret := opts.settings.Auth.JWTSecret
			if secret == "" {
				return fmt.Errorf("auth.jwt_secret is not configured")
			}
			tok, err := middleware.SignIdentity([]byte(secret), args[0], ttl)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), tok)
			return nil
		},
	}

	cmd.Flags().DurationVar(&ttl, "ttl", 24*time.Hour, "token lifetime")
	return cmd
}
