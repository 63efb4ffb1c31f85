package cart

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"Storefront/internal/storage"
)

const sessionNamespace = "session"

type entry struct {
	store    *Store
	lastSeen time.Time
}

// Registry hands out one Store per cart session, loading it from the shared
// backend on first use. Stores idle for longer than the session TTL are
// dropped; their carts stay in the backend.
type Registry struct {
	mu        sync.Mutex
	base      storage.Store
	opts      Options
	ttl       time.Duration
	now       func() time.Time
	lastSweep time.Time
	stores    map[string]*entry
}

// NewRegistry builds a registry. A ttl of zero or less keeps stores forever.
func NewRegistry(base storage.Store, opts Options, ttl time.Duration) *Registry {
	return &Registry{
		base:   base,
		opts:   opts,
		ttl:    ttl,
		now:    time.Now,
		stores: make(map[string]*entry),
	}
}

func (r *Registry) Cart(ctx context.Context, sessionID string) *Store {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	if r.ttl > 0 && now.Sub(r.lastSweep) >= r.ttl/4 {
		r.sweepLocked(now)
	}

	if e, ok := r.stores[sessionID]; ok {
		e.lastSeen = now
		return e.store
	}

	opts := r.opts
	if opts.Log != nil {
		opts.Log = opts.Log.With(zap.String("session_id", sessionID))
	}

	s := Load(ctx, storage.NewScoped(r.base, sessionNamespace, sessionID), opts)
	r.stores[sessionID] = &entry{store: s, lastSeen: now}
	return s
}

// Sweep drops stores not used within the TTL before now and returns how many
// were dropped.
func (r *Registry) Sweep(now time.Time) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.sweepLocked(now)
}

func (r *Registry) sweepLocked(now time.Time) int {
	r.lastSweep = now
	if r.ttl <= 0 {
		return 0
	}

	n := 0
	for id, e := range r.stores {
		if now.Sub(e.lastSeen) > r.ttl {
			delete(r.stores, id)
			n++
		}
	}
	if n > 0 && r.opts.Log != nil {
		r.opts.Log.Debug("evicted idle carts", zap.Int("evicted", n), zap.Int("active", len(r.stores)))
	}
	return n
}

// Len reports how many session stores are held in memory.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.stores)
}

func (r *Registry) Ping(ctx context.Context) error {
	return r.base.Ping(ctx)
}
