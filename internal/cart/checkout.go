package cart

import (
	"context"
	"errors"
)

var ErrEmptyCart = errors.New("cart is empty")

const (
	EmptyCartNotice = "Cart is empty"
	CheckoutPrompt  = "Are you sure you want to checkout?"
	CheckoutNotice  = "Thank you! Order will be completed soon."
)

// Checkout simulates placing the order: an empty cart is rejected, otherwise
// the user is asked to confirm and the cart is cleared. The returned string is
// the notice to show. The check, the prompt and the clear happen under the
// cart lock, so c must not call back into the Store.
func (s *Store) Checkout(ctx context.Context, c Confirmer) (string, error) {
	var err error
	s.mutate(ctx, "clear", func() bool {
		if len(s.items) == 0 {
			err = ErrEmptyCart
			return false
		}
		if c == nil || !c.Confirm(CheckoutPrompt) {
			err = ErrNotConfirmed
			return false
		}
		s.items = []Item{}
		return true
	})

	switch {
	case errors.Is(err, ErrEmptyCart):
		return EmptyCartNotice, err
	case err != nil:
		return "", err
	}

	s.metrics.checkout()
	s.log.Info("checkout completed")
	return CheckoutNotice, nil
}
