package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/kbukum/armkit/credential"
	"github.com/kbukum/armkit/util"
)

// tokenPrefix is how much of a token the table shows without --show.
const tokenPrefix = 8

type tokenStatus struct {
	Scopes    []string  `json:"scopes"`
	ExpiresOn time.Time `json:"expires_on"`
	ExpiresIn string    `json:"expires_in"`
	Token     string    `json:"token,omitempty"`
}

func newTokenCommand(a *app) *cobra.Command {
	var (
		scopes  []string
		storage bool
		show    bool
	)
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Acquire a token and print its expiry",
		Long: `Acquire a bearer token with the configured credential. The token itself is
only printed with --show.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cred, err := a.credential()
			if err != nil {
				return err
			}
			if len(scopes) == 0 {
				scopes = a.cfg.Scopes
				if storage {
					scopes = a.cfg.Storage.Scopes
				}
			}
			tok, err := cred.GetToken(cmd.Context(), credential.TokenRequestOptions{Scopes: scopes})
			if err != nil {
				return fmt.Errorf("failed to acquire token: %w", err)
			}

			status := tokenStatus{Scopes: scopes, ExpiresOn: tok.ExpiresOn}
			if !tok.ExpiresOn.IsZero() {
				status.ExpiresIn = time.Until(tok.ExpiresOn).Round(time.Second).String()
			}
			if show {
				status.Token = tok.Token
			}

			t := &table{header: []string{"Property", "Value"}}
			t.add("Scopes", strings.Join(status.Scopes, " "))
			t.add("Expires On", formatTime(status.ExpiresOn))
			t.add("Expires In", status.ExpiresIn)
			if show {
				t.add("Token", status.Token)
			} else {
				t.add("Token", util.MaskSecret(tok.Token, tokenPrefix))
			}
			return a.printer(cmd.OutOrStdout()).print(status, t)
		},
	}
	cmd.Flags().StringSliceVar(&scopes, "scope", nil, "scopes to request (default is the configured management scopes)")
	cmd.Flags().BoolVar(&storage, "storage", false, "request the storage scopes")
	cmd.Flags().BoolVar(&show, "show", false, "print the token")
	return cmd
}
