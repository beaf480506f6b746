// Package session owns the anonymous session token that correlates a visitor's
// messages server-side.
//
// The token lives in a durable Store under a single key. Identity is the only
// code that reads or writes that key.
package session

import (
	"context"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

// StorageKey is the durable store key holding the session token.
const StorageKey = "concierge.session_id"

// ErrStorageUnavailable is returned when the durable store cannot be read or
// written. The widget must not become interactive after seeing it.
var ErrStorageUnavailable = errors.New("session storage unavailable")

// Identity wraps a Store with get-or-create and reset semantics.
type Identity struct {
	store Store
	key   string
	newID func() string

	mu      sync.Mutex
	current string
}

type IdentityOption func(*Identity)

// WithKey overrides the storage key, e.g. to keep separate profiles in one store.
func WithKey(key string) IdentityOption {
	return func(i *Identity) {
		if strings.TrimSpace(key) != "" {
			i.key = key
		}
	}
}

// WithTokenGenerator replaces the UUID generator. Used by tests.
func WithTokenGenerator(f func() string) IdentityOption {
	return func(i *Identity) {
		if f != nil {
			i.newID = f
		}
	}
}

func NewIdentity(store Store, opts ...IdentityOption) *Identity {
	i := &Identity{
		store: store,
		key:   StorageKey,
		newID: uuid.NewString,
	}
	for _, opt := range opts {
		opt(i)
	}
	return i
}

// GetOrCreate returns the persisted token, creating and persisting a fresh one
// if none exists. Repeated calls return the same token until Reset.
func (i *Identity) GetOrCreate(ctx context.Context) (string, error) {
	if i == nil || i.store == nil {
		return "", errors.Wrap(ErrStorageUnavailable, "no store configured")
	}
	i.mu.Lock()
	defer i.mu.Unlock()
	if i.current != "" {
		return i.current, nil
	}

	token, ok, err := i.store.Get(ctx, i.key)
	if err != nil {
		log.Error().Err(err).Str("component", "session").Msg("reading session token failed")
		return "", errors.Wrapf(ErrStorageUnavailable, "read %s: %v", i.key, err)
	}
	if ok && strings.TrimSpace(token) != "" {
		i.current = token
		return token, nil
	}

	token = i.newID()
	if err := i.store.Set(ctx, i.key, token); err != nil {
		log.Error().Err(err).Str("component", "session").Msg("persisting session token failed")
		return "", errors.Wrapf(ErrStorageUnavailable, "write %s: %v", i.key, err)
	}
	log.Info().Str("component", "session").Str("session_id", token).Msg("created session")
	i.current = token
	return token, nil
}

// Reset generates, persists and returns a new token that differs from the
// previous one. On a storage error the previous token stays current.
func (i *Identity) Reset(ctx context.Context) (string, error) {
	if i == nil || i.store == nil {
		return "", errors.Wrap(ErrStorageUnavailable, "no store configured")
	}
	i.mu.Lock()
	defer i.mu.Unlock()

	prev := i.current
	if prev == "" {
		if token, ok, err := i.store.Get(ctx, i.key); err == nil && ok {
			prev = token
		}
	}
	token := i.newID()
	for token == prev || token == "" {
		token = i.newID()
	}
	if err := i.store.Set(ctx, i.key, token); err != nil {
		log.Error().Err(err).Str("component", "session").Msg("persisting reset session token failed")
		return "", errors.Wrapf(ErrStorageUnavailable, "write %s: %v", i.key, err)
	}
	log.Info().Str("component", "session").Str("previous", prev).Str("session_id", token).Msg("reset session")
	i.current = token
	return token, nil
}

// Current returns the cached token, or "" before the first successful
// GetOrCreate.
func (i *Identity) Current() string {
	if i == nil {
		return ""
	}
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.current
}
