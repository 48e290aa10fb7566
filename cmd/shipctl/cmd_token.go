package main

import (
	"fmt"
	"time"

	"github.com/BearBump/ShipTrack/internal/auth"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

func newTokenCmd(c *cli) *cobra.Command {
	tokenCmd := &cobra.Command{
		Use:   "token",
		Short: "Manage admin bearer tokens",
	}

	var (
		subject string
		ttl     time.Duration
	)
	issueCmd := &cobra.Command{
		Use:   "issue",
		Short: "Sign an admin token with the configured secret",
		Long: `Sign an admin JWT locally using shiptrack.auth_secret
(SHIPTRACK_AUTH_SECRET). The token is printed to stdout.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			if ttl <= 0 {
				ttl = time.Duration(cfg.ShipTrack.AuthTokenTTLMinutes) * time.Minute
			}
			token, err := auth.New(cfg.ShipTrack.AuthSecret, ttl).Issue(subject)
			if err != nil {
				return errors.Wrap(err, "issue token")
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), token)
			return err
		},
	}
	issueCmd.Flags().StringVar(&subject, "subject", "", "operator name stored in the token (required)")
	issueCmd.Flags().DurationVar(&ttl, "ttl", 0, "token lifetime (default from config, then 12h)")
	_ = issueCmd.MarkFlagRequired("subject")

	tokenCmd.AddCommand(issueCmd)
	return tokenCmd
}
