// Package cart owns the shopping cart: line items, load-time sanitization,
// mutations mirrored to storage, and the display view derived from them.
package cart

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"unicode"
)

// StorageKey is where the serialized cart lives inside a session namespace.
const StorageKey = "cart"

var (
	ErrInvalidName  = errors.New("item name required")
	ErrInvalidPrice = errors.New("invalid price")
)

type Item struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Price       float64 `json:"price"`
	Quantity    int     `json:"quantity"`
	Image       string  `json:"image,omitempty"`
	Description string  `json:"description,omitempty"`
}

// Qty is the effective quantity; a missing quantity counts as one.
func (it Item) Qty() int {
	if it.Quantity < 1 {
		return 1
	}
	return it.Quantity
}

func (it Item) LineTotal() float64 {
	return it.Price * float64(it.Qty())
}

// Slug lowercases name and replaces every run of whitespace with a single
// hyphen. Leading and trailing whitespace are kept as hyphens.
func Slug(name string) string {
	var b strings.Builder
	b.Grow(len(name))

	inSpace := false
	for _, r := range strings.ToLower(name) {
		if unicode.IsSpace(r) {
			if !inSpace {
				b.WriteByte('-')
			}
			inSpace = true
			continue
		}
		inSpace = false
		b.WriteRune(r)
	}
	return b.String()
}

// ParsePrice accepts a JSON number or a numeric string, the two shapes prices
// arrive in from product listings and older stored carts.
func ParsePrice(raw json.RawMessage) (float64, error) {
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return 0, fmt.Errorf("%w: %v", ErrInvalidPrice, err)
	}
	return priceFrom(v)
}

func priceFrom(v any) (float64, error) {
	var p float64
	switch t := v.(type) {
	case float64:
		p = t
	case string:
		s := strings.TrimSpace(t)
		if s == "" {
			return 0, fmt.Errorf("%w: empty", ErrInvalidPrice)
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0, fmt.Errorf("%w: %q", ErrInvalidPrice, t)
		}
		p = f
	default:
		return 0, fmt.Errorf("%w: %v", ErrInvalidPrice, v)
	}

	if math.IsNaN(p) || math.IsInf(p, 0) || p < 0 {
		return 0, fmt.Errorf("%w: %v", ErrInvalidPrice, p)
	}
	return p, nil
}
