// Package storage holds the durable key-value backends the cart is mirrored to.
package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
)

const (
	pingTimeout  = 1 * time.Second
	queryTimeout = 3 * time.Second
)

const (
	DriverMemory   = "memory"
	DriverBadger   = "badger"
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

var (
	ErrUnknownDriver = errors.New("unknown storage driver")
	ErrEmptyKey      = errors.New("empty key")
	ErrClosed        = errors.New("storage closed")
)

// Store is a flat key-value store. Values are opaque bytes; Set always replaces
// the whole value.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte) error
	Ping(ctx context.Context) error
	Close() error
}

// Open builds the backend named by driver. dsn is a directory for badger, a
// file path for sqlite and a connection string for postgres.
func Open(ctx context.Context, driver, dsn string) (Store, error) {
	switch strings.ToLower(strings.TrimSpace(driver)) {
	case "", DriverMemory:
		return NewMemStore(), nil
	case DriverBadger:
		return NewBadgerStore(dsn)
	case DriverSQLite:
		return NewSQLiteStore(ctx, dsn)
	case DriverPostgres:
		return NewPostgresStore(ctx, dsn)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownDriver, driver)
	}
}

func withTimeout(parent context.Context, d time.Duration, fn func(ctx context.Context) error) error {
	ctx, cancel := context.WithTimeout(parent, d)
	defer cancel()
	return fn(ctx)
}

func checkKey(key string) error {
	if key == "" {
		return ErrEmptyKey
	}
	return nil
}
