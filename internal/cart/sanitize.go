package cart

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"

	"github.com/google/uuid"
)

// storedItem mirrors whatever was written under StorageKey. Fields stay raw so
// a bad value in one field never hides the others.
type storedItem struct {
	ID          json.RawMessage `json:"id"`
	Name        json.RawMessage `json:"name"`
	Price       json.RawMessage `json:"price"`
	Quantity    json.RawMessage `json:"quantity"`
	Image       json.RawMessage `json:"image"`
	Description json.RawMessage `json:"description"`
}

func newItemID() string {
	return "cart-" + uuid.NewString()
}

// Sanitize decodes a stored cart and repairs it. Entries without a name or a
// usable price are dropped; missing or duplicate ids get a fresh one; a missing
// quantity becomes 1; string prices become numbers. Absent or corrupt input
// yields an empty cart. dropped counts the discarded entries.
func Sanitize(raw []byte, newID func() string) (items []Item, dropped int) {
	if newID == nil {
		newID = newItemID
	}

	items = []Item{}
	if len(raw) == 0 {
		return items, 0
	}

	var entries []json.RawMessage
	if err := json.Unmarshal(raw, &entries); err != nil {
		return items, 0
	}

	seen := make(map[string]struct{}, len(entries))
	for _, e := range entries {
		it, ok := sanitizeEntry(e)
		if !ok {
			dropped++
			continue
		}

		if _, dup := seen[it.ID]; it.ID == "" || dup {
			it.ID = uniqueID(seen, newID)
		}
		seen[it.ID] = struct{}{}
		items = append(items, it)
	}
	return items, dropped
}

func sanitizeEntry(e json.RawMessage) (Item, bool) {
	var s storedItem
	if err := json.Unmarshal(e, &s); err != nil {
		return Item{}, false
	}

	name := text(s.Name)
	if name == "" {
		return Item{}, false
	}

	var pv any
	if len(s.Price) == 0 || json.Unmarshal(s.Price, &pv) != nil || pv == nil {
		return Item{}, false
	}
	price, err := priceFrom(pv)
	if err != nil {
		return Item{}, false
	}

	return Item{
		ID:          text(s.ID),
		Name:        name,
		Price:       price,
		Quantity:    quantity(s.Quantity),
		Image:       text(s.Image),
		Description: text(s.Description),
	}, true
}

func uniqueID(seen map[string]struct{}, newID func() string) string {
	for {
		id := newID()
		if _, taken := seen[id]; !taken && id != "" {
			return id
		}
	}
}

// text reads a string field; numbers are kept in their JSON spelling.
func text(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return ""
	}
	switch t := v.(type) {
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	default:
		return ""
	}
}

func quantity(raw json.RawMessage) int {
	if len(raw) == 0 {
		return 1
	}
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return 1
	}

	var q float64
	switch t := v.(type) {
	case float64:
		q = t
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
		if err != nil {
			return 1
		}
		q = f
	default:
		return 1
	}

	if math.IsNaN(q) || q < 1 || q > math.MaxInt32 {
		return 1
	}
	return int(q)
}
