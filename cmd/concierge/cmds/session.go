package cmds

import (
	"fmt"

	"github.com/go-go-golems/concierge/pkg/session"
	"github.com/spf13/cobra"
)

func NewSessionCommand(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "session",
		Short: "Inspect or rotate the anonymous session token",
	}

	withIdentity := func(cmd *cobra.Command, f func(*session.Identity) (string, error)) error {
		store, err := session.OpenStore(cmd.Context(), app.Config.Store)
		if err != nil {
			return err
		}
		defer func() { _ = store.Close() }()
		tok, err := f(session.NewIdentity(store))
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(cmd.OutOrStdout(), tok)
		return err
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "show",
			Short: "Print the session token, creating one if none exists",
			RunE: func(cmd *cobra.Command, args []string) error {
				return withIdentity(cmd, func(i *session.Identity) (string, error) {
					return i.GetOrCreate(cmd.Context())
				})
			},
		},
		&cobra.Command{
			Use:   "reset",
			Short: "Replace the session token with a fresh one",
			RunE: func(cmd *cobra.Command, args []string) error {
				return withIdentity(cmd, func(i *session.Identity) (string, error) {
					return i.Reset(cmd.Context())
				})
			},
		},
	)
	return cmd
}
