package session

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
)

const (
	BackendFile   = "file"
	BackendSQLite = "sqlite"
	BackendRedis  = "redis"
	BackendMemory = "memory"
)

// StoreSettings selects and configures the durable store backend.
type StoreSettings struct {
	Backend     string `yaml:"backend"`
	Path        string `yaml:"path"`
	RedisAddr   string `yaml:"redis-addr"`
	RedisPrefix string `yaml:"redis-prefix"`
}

// OpenStore opens the configured backend. Every failure wraps
// ErrStorageUnavailable so callers can fail closed on a single check.
func OpenStore(ctx context.Context, s StoreSettings) (Store, error) {
	backend := strings.ToLower(strings.TrimSpace(s.Backend))
	if backend == "" {
		backend = BackendFile
	}
	switch backend {
	case BackendMemory:
		return NewMemoryStore(), nil
	case BackendFile:
		path := s.Path
		if path == "" {
			p, err := DefaultFilePath()
			if err != nil {
				return nil, errors.Wrap(ErrStorageUnavailable, err.Error())
			}
			path = p
		}
		st, err := NewFileStore(path)
		if err != nil {
			return nil, errors.Wrap(ErrStorageUnavailable, err.Error())
		}
		return st, nil
	case BackendSQLite:
		path := s.Path
		if path == "" {
			p, err := DefaultFilePath()
			if err != nil {
				return nil, errors.Wrap(ErrStorageUnavailable, err.Error())
			}
			path = filepath.Join(filepath.Dir(p), "state.db")
		}
		if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
			return nil, errors.Wrap(ErrStorageUnavailable, err.Error())
		}
		dsn, err := SQLiteDSNForFile(path)
		if err != nil {
			return nil, errors.Wrap(ErrStorageUnavailable, err.Error())
		}
		st, err := NewSQLiteStore(dsn)
		if err != nil {
			return nil, errors.Wrap(ErrStorageUnavailable, err.Error())
		}
		return st, nil
	case BackendRedis:
		st, err := NewRedisStore(ctx, s.RedisAddr, s.RedisPrefix)
		if err != nil {
			return nil, errors.Wrap(ErrStorageUnavailable, err.Error())
		}
		return st, nil
	default:
		return nil, errors.Errorf("unknown session store backend %q", s.Backend)
	}
}
