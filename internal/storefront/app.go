// Package storefront exposes the cart and search over HTTP for the static
// storefront page.
package storefront

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"Storefront/internal/cart"
	"Storefront/internal/search"
	"Storefront/internal/session"
	"Storefront/pkg/kit"
)

type Server struct {
	Carts  *cart.Registry
	Search *search.Index
	Log    *zap.Logger
}

type addReq struct {
	Name        string          `json:"name"`
	Price       json.RawMessage `json:"price"`
	Image       string          `json:"image"`
	Description string          `json:"description"`
}

type cartResp struct {
	Notice string    `json:"notice,omitempty"`
	Cart   cart.View `json:"cart"`
}

type promptDetails struct {
	Prompt string `json:"prompt"`
}

func (s *Server) logger() *zap.Logger {
	if s.Log == nil {
		return zap.NewNop()
	}
	return s.Log
}

func (s *Server) ready(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 1*time.Second)
	defer cancel()

	if err := s.Carts.Ping(ctx); err != nil {
		s.logger().Warn("readyz failed", zap.Error(err))
		kit.WriteError(w, r, http.StatusServiceUnavailable, "not ready", nil)
		return
	}
	w.WriteHeader(http.StatusOK)
}

func (s *Server) cartFor(r *http.Request) (*cart.Store, bool) {
	sid, ok := session.FromContext(r.Context())
	if !ok {
		return nil, false
	}
	return s.Carts.Cart(r.Context(), sid), true
}

func (s *Server) withCart(fn func(w http.ResponseWriter, r *http.Request, c *cart.Store)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c, ok := s.cartFor(r)
		if !ok {
			kit.WriteError(w, r, http.StatusUnauthorized, "no session", nil)
			return
		}
		fn(w, r, c)
	}
}

func (s *Server) getCart(w http.ResponseWriter, _ *http.Request, c *cart.Store) {
	kit.WriteJSON(w, http.StatusOK, cartResp{Cart: render(c)})
}

func (s *Server) getBadge(w http.ResponseWriter, _ *http.Request, c *cart.Store) {
	kit.WriteJSON(w, http.StatusOK, cart.BadgeFor(c.Snapshot()))
}

func (s *Server) addItem(w http.ResponseWriter, r *http.Request, c *cart.Store) {
	var req addReq
	if err := kit.DecodeJSON(w, r, &req); err != nil {
		kit.WriteError(w, r, http.StatusBadRequest, "bad json", nil)
		return
	}

	price, err := cart.ParsePrice(req.Price)
	if err != nil {
		kit.WriteError(w, r, http.StatusBadRequest, "invalid price", nil)
		return
	}

	notice, err := c.Add(r.Context(), req.Name, price, req.Image, req.Description)
	if err != nil {
		if errors.Is(err, cart.ErrInvalidName) {
			kit.WriteError(w, r, http.StatusBadRequest, "name required", nil)
			return
		}
		kit.WriteError(w, r, http.StatusBadRequest, "invalid price", nil)
		return
	}

	kit.WriteJSON(w, http.StatusCreated, cartResp{Notice: notice, Cart: render(c)})
}

func (s *Server) increase(w http.ResponseWriter, r *http.Request, c *cart.Store) {
	id, ok := itemID(w, r)
	if !ok {
		return
	}
	c.Increase(r.Context(), id)
	kit.WriteJSON(w, http.StatusOK, cartResp{Cart: render(c)})
}

func (s *Server) decrease(w http.ResponseWriter, r *http.Request, c *cart.Store) {
	id, ok := itemID(w, r)
	if !ok {
		return
	}
	c.Decrease(r.Context(), id)
	kit.WriteJSON(w, http.StatusOK, cartResp{Cart: render(c)})
}

func (s *Server) remove(w http.ResponseWriter, r *http.Request, c *cart.Store) {
	id, ok := itemID(w, r)
	if !ok {
		return
	}

	if _, err := c.Remove(r.Context(), id, confirmer(r)); err != nil {
		kit.WriteError(w, r, http.StatusConflict, "confirmation required", promptDetails{Prompt: cart.RemovePrompt})
		return
	}
	kit.WriteJSON(w, http.StatusOK, cartResp{Cart: render(c)})
}

func (s *Server) checkout(w http.ResponseWriter, r *http.Request, c *cart.Store) {
	notice, err := c.Checkout(r.Context(), confirmer(r))
	switch {
	case errors.Is(err, cart.ErrEmptyCart):
		kit.WriteError(w, r, http.StatusConflict, notice, nil)
		return
	case errors.Is(err, cart.ErrNotConfirmed):
		kit.WriteError(w, r, http.StatusConflict, "confirmation required", promptDetails{Prompt: cart.CheckoutPrompt})
		return
	case err != nil:
		s.logger().Error("checkout failed", zap.Error(err))
		kit.WriteError(w, r, http.StatusInternalServerError, "server error", nil)
		return
	}

	kit.WriteJSON(w, http.StatusOK, cartResp{Notice: notice, Cart: render(c)})
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")
	kit.WriteJSON(w, http.StatusOK, search.RenderResults(q, s.Search.Query(r.Context(), q)))
}

func (s *Server) handleReindex(w http.ResponseWriter, r *http.Request) {
	s.Search.Invalidate()
	entries := s.Search.Build(r.Context())
	kit.WriteJSON(w, http.StatusOK, map[string]any{"entries": len(entries)})
}

func render(c *cart.Store) cart.View {
	return cart.Render(c.Snapshot(), intentPath)
}

func intentPath(in cart.Intent, id string) string {
	p := "/cart/items/" + url.PathEscape(id)
	if in == cart.IntentRemove {
		return p
	}
	return p + "/" + string(in)
}

func itemID(w http.ResponseWriter, r *http.Request) (string, bool) {
	id, err := url.PathUnescape(chi.URLParam(r, "id"))
	if err != nil || id == "" {
		kit.WriteError(w, r, http.StatusBadRequest, "bad id", nil)
		return "", false
	}
	return id, true
}

// confirmer answers prompts from the confirm query parameter; the page asks
// the user first and retries with confirm=true.
func confirmer(r *http.Request) cart.Confirmer {
	ok, _ := strconv.ParseBool(r.URL.Query().Get("confirm"))
	return cart.ConfirmFunc(func(string) bool { return ok })
}
