package storage

import (
	"context"
	"strings"
)

// Scoped prefixes every key with a namespace so several carts can share one
// backend while each still sees its own "cart" key.
type Scoped struct {
	base   Store
	prefix string
}

func NewScoped(base Store, namespace ...string) *Scoped {
	parts := make([]string, 0, len(namespace))
	for _, p := range namespace {
		if p = strings.Trim(p, "/"); p != "" {
			parts = append(parts, p)
		}
	}

	prefix := ""
	if len(parts) > 0 {
		prefix = strings.Join(parts, "/") + "/"
	}
	return &Scoped{base: base, prefix: prefix}
}

func (s *Scoped) Key(key string) string { return s.prefix + key }

func (s *Scoped) Get(ctx context.Context, key string) ([]byte, bool, error) {
	if err := checkKey(key); err != nil {
		return nil, false, err
	}
	return s.base.Get(ctx, s.Key(key))
}

func (s *Scoped) Set(ctx context.Context, key string, value []byte) error {
	if err := checkKey(key); err != nil {
		return err
	}
	return s.base.Set(ctx, s.Key(key), value)
}

func (s *Scoped) Ping(ctx context.Context) error { return s.base.Ping(ctx) }

// Close is a no-op; the base store is owned by whoever opened it.
func (s *Scoped) Close() error { return nil }
