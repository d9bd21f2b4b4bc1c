package main

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/corpfin/backend/internal/infrastructure/auth"
	"github.com/corpfin/backend/internal/infrastructure/config"
)

var (
	tokenClient string
	tokenScopes []string
	tokenTTL    time.Duration
)

// NewTokenCmd builds the token subcommand.
func NewTokenCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Mint a service token for the HTTP API",
		Long: `Token signs a bearer token with the shared auth secret from the
configuration. The token is printed to stdout so it can be captured directly:

  export TOKEN=$(fincli token --client ci-pipeline --scope model:run)`,
		RunE: mintToken,
	}
	AddTokenFlags(cmd)
	return cmd
}

// AddTokenFlags binds the token command flags.
func AddTokenFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&tokenClient, "client", "", "client identifier recorded in the token subject (required)")
	cmd.Flags().StringSliceVar(&tokenScopes, "scope", []string{auth.ScopeModelRun, auth.ScopeModelValidate}, "granted scopes")
	cmd.Flags().DurationVar(&tokenTTL, "ttl", 0, "token lifetime, 0 uses auth.token_expiration")
	_ = cmd.MarkFlagRequired("client")
}

func mintToken(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if cfg.Auth.Secret == "" {
		return errors.New("auth.secret is not configured, set CORPFIN_AUTH_SECRET or auth.secret in config.toml")
	}

	tokens := auth.NewTokenService(cfg.Auth)

	var issued *auth.IssuedToken
	if tokenTTL > 0 {
		issued, err = tokens.IssueWithTTL(tokenClient, tokenScopes, tokenTTL)
	} else {
		issued, err = tokens.Issue(tokenClient, tokenScopes)
	}
	if err != nil {
		return err
	}

	// Token on stdout, metadata on stderr, so the output stays pipeable.
	fmt.Fprintln(cmd.OutOrStdout(), issued.Token)
	fmt.Fprintf(cmd.ErrOrStderr(), "client=%s scopes=%s expires=%s\n",
		tokenClient, strings.Join(tokenScopes, ","), issued.ExpiresAt.Format(time.RFC3339))
	return nil
}
