package cart

import (
	"context"
	"encoding/json"
	"errors"
	"html"
	"strings"
	"sync"

	"github.com/microcosm-cc/bluemonday"
	"go.uber.org/zap"

	"Storefront/internal/storage"
)

var ErrNotConfirmed = errors.New("not confirmed")

const (
	RemovePrompt   = "Are you sure you want to remove this item from cart?"
	DegradedNotice = "Cart could not be saved; changes will be lost when you leave."
)

// Confirmer answers a yes/no prompt on behalf of the user.
type Confirmer interface {
	Confirm(prompt string) bool
}

type ConfirmFunc func(prompt string) bool

func (f ConfirmFunc) Confirm(prompt string) bool { return f(prompt) }

// Snapshot is a copy of the cart state handed to listeners and the renderer.
type Snapshot struct {
	Items    []Item
	Degraded bool
}

func (s Snapshot) Count() int {
	n := 0
	for _, it := range s.Items {
		n += it.Qty()
	}
	return n
}

func (s Snapshot) Total() float64 {
	var t float64
	for _, it := range s.Items {
		t += it.LineTotal()
	}
	return t
}

// Listener runs after every mutation, once the new state has been written.
type Listener func(op string, snap Snapshot)

type Options struct {
	Log       *zap.Logger
	Metrics   *Metrics
	NewID     func() string
	Policy    *bluemonday.Policy
	Listeners []Listener
}

// Store is the canonical cart of one session. Every mutation rewrites the full
// list to storage before listeners are told about it.
type Store struct {
	mu       sync.Mutex
	st       storage.Store
	items    []Item
	degraded bool

	log       *zap.Logger
	metrics   *Metrics
	policy    *bluemonday.Policy
	listeners []Listener
}

// Load reads the stored cart, sanitizes it and writes the sanitized list back.
// Nothing is written for a session that has never stored a cart. A read
// failure leaves the store empty and in memory-only mode.
func Load(ctx context.Context, st storage.Store, opts Options) *Store {
	s := &Store{
		st:        st,
		log:       opts.Log,
		metrics:   opts.Metrics,
		policy:    opts.Policy,
		listeners: opts.Listeners,
	}
	if s.log == nil {
		s.log = zap.NewNop()
	}
	if s.policy == nil {
		s.policy = bluemonday.StrictPolicy()
	}

	raw, found, err := st.Get(ctx, StorageKey)
	if err != nil {
		s.log.Warn("cart load failed, continuing in memory", zap.Error(err))
		s.items = []Item{}
		s.degraded = true
		s.metrics.persistFailed()
		return s
	}

	items, dropped := Sanitize(raw, opts.NewID)
	if dropped > 0 {
		s.log.Debug("dropped invalid cart entries", zap.Int("dropped", dropped))
	}
	s.items = items
	if !found && len(items) == 0 {
		return s
	}

	s.mu.Lock()
	s.persistLocked(ctx)
	s.mu.Unlock()
	return s
}

// Add puts one unit of the named product into the cart, merging with an
// existing line of the same slug. The returned notice confirms the addition.
func (s *Store) Add(ctx context.Context, name string, price float64, image, description string) (string, error) {
	name = s.clean(name)
	if strings.TrimSpace(name) == "" {
		return "", ErrInvalidName
	}
	if _, err := priceFrom(price); err != nil {
		return "", err
	}
	description = s.clean(description)

	id := Slug(name)

	s.mutate(ctx, "add", func() bool {
		if i := s.indexLocked(id); i >= 0 {
			s.items[i].Quantity = s.items[i].Qty() + 1
			return true
		}
		s.items = append(s.items, Item{
			ID:          id,
			Name:        name,
			Price:       price,
			Quantity:    1,
			Image:       strings.TrimSpace(image),
			Description: description,
		})
		return true
	})

	return name + " added to cart!", nil
}

// Increase adds one to the line's quantity. Unknown ids are ignored.
func (s *Store) Increase(ctx context.Context, id string) bool {
	return s.mutate(ctx, "increase", func() bool {
		i := s.indexLocked(id)
		if i < 0 {
			return false
		}
		s.items[i].Quantity = s.items[i].Qty() + 1
		return true
	})
}

// Decrease takes one off the line's quantity and drops the line when it would
// reach zero. Unknown ids are ignored.
func (s *Store) Decrease(ctx context.Context, id string) bool {
	return s.mutate(ctx, "decrease", func() bool {
		i := s.indexLocked(id)
		if i < 0 {
			return false
		}
		if q := s.items[i].Qty(); q > 1 {
			s.items[i].Quantity = q - 1
		} else {
			s.removeLocked(i)
		}
		return true
	})
}

// Remove drops the line after the user confirms. A declined prompt returns
// ErrNotConfirmed; an unknown id is a silent no-op.
func (s *Store) Remove(ctx context.Context, id string, c Confirmer) (bool, error) {
	if c == nil || !c.Confirm(RemovePrompt) {
		return false, ErrNotConfirmed
	}
	return s.mutate(ctx, "remove", func() bool {
		i := s.indexLocked(id)
		if i < 0 {
			return false
		}
		s.removeLocked(i)
		return true
	}), nil
}

func (s *Store) Clear(ctx context.Context) {
	s.mutate(ctx, "clear", func() bool {
		s.items = []Item{}
		return true
	})
}

func (s *Store) Total() float64 { return s.Snapshot().Total() }

func (s *Store) Count() int { return s.Snapshot().Count() }

func (s *Store) Items() []Item { return s.Snapshot().Items }

// Degraded reports whether the last write to storage failed.
func (s *Store) Degraded() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.degraded
}

func (s *Store) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

func (s *Store) snapshotLocked() Snapshot {
	items := make([]Item, len(s.items))
	copy(items, s.items)
	return Snapshot{Items: items, Degraded: s.degraded}
}

// mutate applies fn under the lock, persists when fn changed something and
// notifies listeners afterwards.
func (s *Store) mutate(ctx context.Context, op string, fn func() bool) bool {
	s.mu.Lock()
	changed := fn()
	if !changed {
		s.mu.Unlock()
		return false
	}
	s.persistLocked(ctx)
	snap := s.snapshotLocked()
	s.mu.Unlock()

	s.metrics.mutation(op)
	for _, l := range s.listeners {
		l(op, snap)
	}
	return true
}

func (s *Store) persistLocked(ctx context.Context) {
	b, err := json.Marshal(s.items)
	if err == nil {
		err = s.st.Set(ctx, StorageKey, b)
	}
	if err != nil {
		if !s.degraded {
			s.log.Warn("cart persist failed, continuing in memory", zap.Error(err))
		}
		s.degraded = true
		s.metrics.persistFailed()
		return
	}
	if s.degraded {
		s.log.Info("cart persist recovered")
	}
	s.degraded = false
}

func (s *Store) indexLocked(id string) int {
	for i := range s.items {
		if s.items[i].ID == id {
			return i
		}
	}
	return -1
}

func (s *Store) removeLocked(i int) {
	s.items = append(s.items[:i:i], s.items[i+1:]...)
}

const maxCleanPasses = 4

// clean strips markup from display strings coming from product listings.
// Entity-encoded markup is decoded and stripped again until the text is stable.
func (s *Store) clean(v string) string {
	for range maxCleanPasses {
		out := html.UnescapeString(s.policy.Sanitize(v))
		if out == v {
			return out
		}
		v = out
	}
	return s.policy.Sanitize(v)
}
