package cmds

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/go-go-golems/concierge/pkg/chat"
	"github.com/go-go-golems/concierge/pkg/events"
	"github.com/go-go-golems/concierge/pkg/locale"
	"github.com/go-go-golems/concierge/pkg/logging"
	"github.com/go-go-golems/concierge/pkg/render"
	"github.com/go-go-golems/concierge/pkg/session"
	"github.com/go-go-golems/concierge/pkg/transport"
	"github.com/go-go-golems/concierge/pkg/ui"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

const (
	handlerUIForwarder = "ui-forwarder"
	handlerAudit       = "audit"
)

func NewChatCommand(app *App) *cobra.Command {
	var startOpen bool
	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Open the chat widget in the terminal",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runChat(cmd.Context(), app, startOpen)
		},
	}
	cmd.Flags().BoolVar(&startOpen, "open", true, "open the chat window right away")
	return cmd
}

func runChat(ctx context.Context, app *App, startOpen bool) error {
	cfg := app.Config
	lang := cfg.ResolvedLanguage()

	// a broken store leaves the identity without one; the widget then
	// fails closed instead of the command erroring out
	store, err := session.OpenStore(ctx, cfg.Store)
	if err != nil {
		log.Error().Err(err).Str("backend", cfg.Store.Backend).Msg("session store unavailable")
		store = nil
	} else {
		defer func() { _ = store.Close() }()
	}
	identity := session.NewIdentity(store)

	tr, err := transport.Open(cfg.TransportSettings())
	if err != nil {
		return err
	}

	bus, err := events.BuildBus(cfg.Events, logging.NewWatermill(log.Logger))
	if err != nil {
		return errors.Wrap(err, "build event bus")
	}
	defer func() { _ = bus.Close() }()

	ctrl, err := chat.NewController(identity, tr,
		chat.WithLanguage(lang),
		chat.WithPageURL(cfg.PageURL),
		chat.WithObserver(events.NewPublishingObserver(bus.Publisher, events.Topic)),
	)
	if err != nil {
		return err
	}
	defer func() { _ = ctrl.Close() }()

	cache, err := render.NewCache(cfg.RenderCacheSize)
	if err != nil {
		return err
	}
	widget := ui.NewWidget(ctx, ctrl, ui.WidgetOptions{
		StartOpen: startOpen,
		Window: ui.WindowOptions{
			Catalog:    locale.CatalogFor(lang),
			Cache:      cache,
			InputLimit: cfg.InputLimit,
		},
	})
	p := tea.NewProgram(widget, tea.WithAltScreen(), tea.WithMouseCellMotion(), tea.WithContext(ctx))

	if cfg.Events.RedisEnabled {
		for _, h := range []string{handlerUIForwarder, handlerAudit} {
			if err := events.EnsureGroupAtTail(ctx, cfg.Events.RedisAddr, events.Topic, cfg.Events.GroupFor(h)); err != nil {
				return err
			}
		}
	}
	if err := bus.AddHandler(handlerUIForwarder, ui.ForwardFunc(p)); err != nil {
		return err
	}
	if err := bus.AddHandler(handlerAudit, events.AuditHandler(log.Logger)); err != nil {
		return err
	}

	eg, egCtx := errgroup.WithContext(ctx)
	routerCtx, cancelRouter := context.WithCancel(egCtx)
	defer cancelRouter()

	eg.Go(func() error {
		return bus.Run(routerCtx)
	})
	eg.Go(func() error {
		defer cancelRouter()
		// events published before the router subscribes would be lost
		select {
		case <-bus.Running():
		case <-routerCtx.Done():
			return nil
		}
		log.Info().Str("component", "chat").Str("language", lang).Msg("starting chat ui")
		_, err := p.Run()
		if errors.Is(err, tea.ErrProgramKilled) {
			return nil
		}
		return err
	})
	return eg.Wait()
}
