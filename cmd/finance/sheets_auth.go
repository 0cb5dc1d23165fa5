package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"os/signal"
	"time"

	"github.com/spf13/cobra"

	"finance/internal/cli"
	gsheet "finance/internal/sheets/google"
)

func newSheetsAuthCmd(a *app) *cobra.Command {
	var (
		clientFile string
		tokenFile  string
		port       string
		timeout    time.Duration
	)

	cmd := &cobra.Command{
		Use:   "sheets-auth",
		Short: "Authorize Google Sheets export with a user account and save the token",
		Args:  cobra.NoArgs,
		// The consent flow needs no store.
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if a.envFile {
				cli.LoadEnvFile()
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			clientJSON, err := oauthClientJSON(clientFile)
			if err != nil {
				return err
			}
			cfg, err := gsheet.OAuthConfig(clientJSON)
			if err != nil {
				return err
			}

			ln, err := net.Listen("tcp", "localhost:"+firstNonEmpty(port, os.Getenv("OAUTH_REDIRECT_PORT"), "8085"))
			if err != nil {
				return fmt.Errorf("listen for oauth redirect: %w", err)
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer stop()
			ctx, cancel := context.WithTimeout(ctx, timeout)
			defer cancel()

			tok, err := gsheet.Authorize(ctx, cfg, ln, cmd.OutOrStdout())
			if err != nil {
				return err
			}

			path := firstNonEmpty(tokenFile, os.Getenv("GOOGLE_OAUTH_TOKEN_FILE"), "token.json")
			if err := gsheet.SaveToken(path, tok); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Saved token to %s\n", path)
			return nil
		},
	}
	cmd.Flags().StringVar(&clientFile, "client-file", "", "OAuth client JSON (default GOOGLE_OAUTH_CLIENT_FILE or GOOGLE_OAUTH_CLIENT_JSON)")
	cmd.Flags().StringVar(&tokenFile, "token-file", "", "where to write the token (default GOOGLE_OAUTH_TOKEN_FILE or token.json)")
	cmd.Flags().StringVar(&port, "port", "", "local redirect port (default OAUTH_REDIRECT_PORT or 8085)")
	cmd.Flags().DurationVar(&timeout, "timeout", 5*time.Minute, "how long to wait for consent")
	return cmd
}

func oauthClientJSON(flagFile string) ([]byte, error) {
	if path := firstNonEmpty(flagFile, os.Getenv("GOOGLE_OAUTH_CLIENT_FILE")); path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read oauth client file: %w", err)
		}
		return b, nil
	}
	if inline := os.Getenv("GOOGLE_OAUTH_CLIENT_JSON"); inline != "" {
		return []byte(inline), nil
	}
	return nil, errors.New("set GOOGLE_OAUTH_CLIENT_JSON or GOOGLE_OAUTH_CLIENT_FILE, or pass --client-file")
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
