// Package events publishes conversation events on a watermill bus and routes
// them to handlers (the terminal view, the audit log).
package events

import (
	"context"
	"strings"

	"github.com/ThreeDotsLabs/watermill"
	rstream "github.com/ThreeDotsLabs/watermill-redisstream/pkg/redisstream"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// Topic carries every chat.Event as JSON.
const Topic = "concierge.conversation"

type Settings struct {
	RedisEnabled bool   `yaml:"redis-enabled"`
	RedisAddr    string `yaml:"redis-addr"`
	Group        string `yaml:"redis-group"`
	Consumer     string `yaml:"redis-consumer"`
}

func DefaultSettings() Settings {
	return Settings{
		RedisAddr: "localhost:6379",
		Group:     "concierge-ui",
		Consumer:  "ui-1",
	}
}

// GroupFor is the redis consumer group used by the named handler.
func (s Settings) GroupFor(handler string) string {
	group := s.Group
	if group == "" {
		group = DefaultSettings().Group
	}
	return group + "-" + handler
}

// Bus bundles a publisher, the router and a way to build per-handler
// subscribers.
type Bus struct {
	Publisher message.Publisher
	Router    *message.Router

	settings Settings
	logger   watermill.LoggerAdapter
	shared   message.Subscriber
	client   redis.UniversalClient
	closers  []func() error
}

// BuildBus returns an in-process go channel bus, or a redis streams bus when
// s.RedisEnabled is set.
func BuildBus(s Settings, logger watermill.LoggerAdapter) (*Bus, error) {
	if logger == nil {
		logger = watermill.NopLogger{}
	}
	router, err := message.NewRouter(message.RouterConfig{}, logger)
	if err != nil {
		return nil, errors.Wrap(err, "create router")
	}
	b := &Bus{Router: router, settings: s, logger: logger}

	if !s.RedisEnabled {
		ch := gochannel.NewGoChannel(gochannel.Config{OutputChannelBuffer: 256}, logger)
		b.Publisher = ch
		b.shared = ch
		b.closers = append(b.closers, ch.Close)
		return b, nil
	}

	if s.RedisAddr == "" {
		return nil, errors.New("redis event bus: empty addr")
	}
	b.client = redis.NewClient(&redis.Options{Addr: s.RedisAddr})
	pub, err := rstream.NewPublisher(rstream.PublisherConfig{
		Client:     b.client,
		Marshaller: rstream.DefaultMarshallerUnmarshaller{},
	}, logger)
	if err != nil {
		_ = b.client.Close()
		return nil, errors.Wrap(err, "create redis publisher")
	}
	b.Publisher = pub
	b.closers = append(b.closers, pub.Close, b.client.Close)
	return b, nil
}

// subscriber returns the subscriber a handler should consume from. With redis
// every handler gets its own consumer group so each one sees every event.
func (b *Bus) subscriber(handler string) (message.Subscriber, error) {
	if b.shared != nil {
		return b.shared, nil
	}
	consumer := b.settings.Consumer
	if consumer == "" {
		consumer = DefaultSettings().Consumer
	}
	sub, err := rstream.NewSubscriber(rstream.SubscriberConfig{
		Client:        b.client,
		Unmarshaller:  rstream.DefaultMarshallerUnmarshaller{},
		ConsumerGroup: b.settings.GroupFor(handler),
		Consumer:      consumer,
	}, b.logger)
	if err != nil {
		return nil, errors.Wrapf(err, "create redis subscriber for %s", handler)
	}
	b.closers = append(b.closers, sub.Close)
	return sub, nil
}

// AddHandler consumes Topic with f under the given handler name.
func (b *Bus) AddHandler(name string, f message.NoPublishHandlerFunc) error {
	if b == nil || b.Router == nil {
		return errors.New("event bus not initialized")
	}
	sub, err := b.subscriber(name)
	if err != nil {
		return err
	}
	b.Router.AddNoPublisherHandler(name, Topic, sub, f)
	return nil
}

// Run blocks until ctx is done or the router fails.
func (b *Bus) Run(ctx context.Context) error {
	log.Info().Str("component", "events").Bool("redis", b.settings.RedisEnabled).Msg("starting event router")
	return b.Router.Run(ctx)
}

// Running is closed once every handler is subscribed.
func (b *Bus) Running() chan struct{} {
	return b.Router.Running()
}

func (b *Bus) Close() error {
	if b == nil {
		return nil
	}
	var errs []string
	if b.Router != nil {
		if err := b.Router.Close(); err != nil {
			errs = append(errs, err.Error())
		}
	}
	for i := len(b.closers) - 1; i >= 0; i-- {
		if err := b.closers[i](); err != nil {
			errs = append(errs, err.Error())
		}
	}
	if len(errs) > 0 {
		return errors.Errorf("closing event bus: %s", strings.Join(errs, "; "))
	}
	return nil
}

// EnsureGroupAtTail creates a consumer group at the stream tail so a fresh
// UI does not replay old conversations.
func EnsureGroupAtTail(ctx context.Context, addr, stream, group string) error {
	client := redis.NewClient(&redis.Options{Addr: addr})
	defer func() { _ = client.Close() }()
	err := client.XGroupCreateMkStream(ctx, stream, group, "$").Err()
	if err != nil {
		if strings.Contains(err.Error(), "BUSYGROUP") {
			return nil
		}
		return errors.Wrapf(err, "create group %s on %s", group, stream)
	}
	log.Info().Str("stream", stream).Str("group", group).Msg("created redis consumer group at $ (tail)")
	return nil
}
