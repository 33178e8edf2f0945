package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"todosync/internal/format"
)

func newLoginCmd(app *App) *cobra.Command {
	var password string

	cmd := &cobra.Command{
		Use:   "login <username>",
		Short: "Sign in and store the session token",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			username := strings.TrimSpace(args[0])
			if username == "" {
				return errors.New("missing username")
			}
			pw := password
			if pw == "" {
				fmt.Fprint(cmd.ErrOrStderr(), "Password: ")
				raw, err := term.ReadPassword(int(os.Stdin.Fd()))
				fmt.Fprintln(cmd.ErrOrStderr())
				if err != nil {
					return fmt.Errorf("read password: %w", err)
				}
				pw = string(raw)
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), app.cfg.RequestTimeout)
			defer cancel()

			c := app.backendClient()
			if err := c.SignIn(ctx, username, pw); err != nil {
				return err
			}
			return format.WriteJSON(cmd.OutOrStdout(), map[string]string{
				"status": "signed-in",
				"user":   c.CurrentUser(),
			}, app.PrettyJSON)
		},
	}

	cmd.Flags().StringVar(&password, "password", "", "Password (omit to be prompted; mainly for scripts)")
	return cmd
}

func newLogoutCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Sign out and discard the session token",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), app.cfg.RequestTimeout)
			defer cancel()
			if err := app.backendClient().SignOut(ctx); err != nil {
				return err
			}
			return format.WriteJSON(cmd.OutOrStdout(), map[string]string{"status": "signed-out"}, app.PrettyJSON)
		},
	}
}

func newWhoamiCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the signed-in identity",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			user := app.backendClient().CurrentUser()
			if user == "" {
				fmt.Fprintln(cmd.ErrOrStderr(), "not signed in")
				return format.WriteJSON(cmd.OutOrStdout(), map[string]any{"user": nil}, app.PrettyJSON)
			}
			return format.WriteJSON(cmd.OutOrStdout(), map[string]string{"user": user}, app.PrettyJSON)
		},
	}
}
