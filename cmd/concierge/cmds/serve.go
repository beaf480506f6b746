package cmds

import (
	"context"
	"net/http"
	"time"

	"github.com/go-go-golems/concierge/pkg/devserver"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

func NewServeStubCommand(app *App) *cobra.Command {
	var (
		addr  string
		delay time.Duration
	)
	cmd := &cobra.Command{
		Use:   "serve-stub",
		Short: "Serve a canned streaming chat endpoint for local development",
		RunE: func(cmd *cobra.Command, args []string) error {
			srv := &http.Server{
				Addr:              addr,
				Handler:           devserver.New(devserver.WithDelay(delay)).Handler(),
				ReadHeaderTimeout: 5 * time.Second,
			}

			eg, ctx := errgroup.WithContext(cmd.Context())
			eg.Go(func() error {
				log.Info().Str("addr", addr).
					Str("sse", devserver.SSEPath).
					Str("websocket", devserver.WSPath).
					Msg("serving stub chat endpoint")
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					return errors.Wrap(err, "listen")
				}
				return nil
			})
			eg.Go(func() error {
				<-ctx.Done()
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				return srv.Shutdown(shutdownCtx)
			})
			return eg.Wait()
		},
	}
	cmd.Flags().StringVar(&addr, "addr", ":8787", "listen address")
	cmd.Flags().DurationVar(&delay, "delay", 40*time.Millisecond, "pause between streamed words")
	return cmd
}
