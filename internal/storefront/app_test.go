package storefront_test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"Storefront/internal/cart"
	"Storefront/internal/search"
	"Storefront/internal/session"
	"Storefront/internal/storage"
	"Storefront/internal/storefront"
)

const secret = "test-secret-test-secret-test-secret"

type cartResp struct {
	Notice string    `json:"notice"`
	Cart   cart.View `json:"cart"`
}

type errResp struct {
	Error   string `json:"error"`
	Details struct {
		Prompt string `json:"prompt"`
	} `json:"details"`
}

func newTS(t *testing.T, base storage.Store) *httptest.Server {
	t.Helper()

	reg := prometheus.NewRegistry()
	s := &storefront.Server{
		Carts:  cart.NewRegistry(base, cart.Options{Log: zap.NewNop(), Metrics: cart.NewMetrics(reg)}, time.Hour),
		Search: search.NewIndex(nil, search.DefaultFallback(), zap.NewNop()),
	}

	h := storefront.NewHandler(s, storefront.HTTPDeps{
		Log:            zap.NewNop(),
		Service:        "storefront",
		Registry:       reg,
		MetricsEnabled: true,
		MetricsToken:   "metrics-token",
		Sessions:       session.NewTokenMaker(secret),
		SessionTTL:     time.Hour,
	})

	ts := httptest.NewServer(h)
	t.Cleanup(ts.Close)
	return ts
}

func newClient(t *testing.T) *http.Client {
	t.Helper()
	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	return &http.Client{Jar: jar}
}

func do(t *testing.T, c *http.Client, method, url string, body any, out any) int {
	t.Helper()

	var r io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		r = bytes.NewReader(b)
	}

	req, err := http.NewRequest(method, url, r)
	require.NoError(t, err)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	if out != nil && len(raw) > 0 {
		require.NoError(t, json.Unmarshal(raw, out), string(raw))
	}
	return resp.StatusCode
}

func TestCart_HappyPath(t *testing.T) {
	base := storage.NewMemStore()
	ts := newTS(t, base)
	c := newClient(t)

	var got cartResp
	require.Equal(t, http.StatusOK, do(t, c, http.MethodGet, ts.URL+"/cart", nil, &got))
	assert.True(t, got.Cart.Empty)
	assert.Equal(t, "$0.00", got.Cart.Total)

	for _, item := range []map[string]any{
		{"name": "Red Shoe", "price": "10"},
		{"name": "Red Shoe", "price": 10},
		{"name": "Blue Hat", "price": 5, "description": "wool"},
	} {
		require.Equal(t, http.StatusCreated, do(t, c, http.MethodPost, ts.URL+"/cart/items", item, &got))
	}
	assert.Equal(t, "Blue Hat added to cart!", got.Notice)
	assert.Equal(t, "$25.00", got.Cart.Total)
	assert.Equal(t, cart.Badge{Count: 3, Visible: true}, got.Cart.Badge)
	require.Len(t, got.Cart.Lines, 2)
	assert.Equal(t, 2, got.Cart.Lines[0].Quantity)
	assert.Equal(t, "/cart/items/red-shoe/increase", got.Cart.Lines[0].Increase)

	require.Equal(t, http.StatusOK, do(t, c, http.MethodPost, ts.URL+got.Cart.Lines[1].Increase, nil, &got))
	assert.Equal(t, 2, got.Cart.Lines[1].Quantity)

	require.Equal(t, http.StatusOK, do(t, c, http.MethodPost, ts.URL+"/cart/items/red-shoe/decrease", nil, &got))
	assert.Equal(t, 1, got.Cart.Lines[0].Quantity)

	require.Equal(t, http.StatusOK, do(t, c, http.MethodPost, ts.URL+"/cart/items/missing/increase", nil, &got))
	assert.Equal(t, 3, got.Cart.Badge.Count)

	var badge cart.Badge
	require.Equal(t, http.StatusOK, do(t, c, http.MethodGet, ts.URL+"/cart/badge", nil, &badge))
	assert.Equal(t, 3, badge.Count)
}

func TestCart_AnonymousReadsLeaveNoState(t *testing.T) {
	base := storage.NewMemStore()
	ts := newTS(t, base)

	for range 200 {
		res, err := http.Get(ts.URL + "/cart")
		require.NoError(t, err)
		_, _ = io.Copy(io.Discard, res.Body)
		res.Body.Close()
		require.Equal(t, http.StatusOK, res.StatusCode)
	}
	assert.Zero(t, base.Len(), "empty carts are not persisted")

	c := newClient(t)
	var got cartResp
	require.Equal(t, http.StatusCreated, do(t, c, http.MethodPost, ts.URL+"/cart/items", map[string]any{"name": "Red Shoe", "price": 10}, &got))
	assert.Equal(t, 1, base.Len())
}

func TestCart_RemoveNeedsConfirmation(t *testing.T) {
	ts := newTS(t, storage.NewMemStore())
	c := newClient(t)

	var got cartResp
	require.Equal(t, http.StatusCreated, do(t, c, http.MethodPost, ts.URL+"/cart/items", map[string]any{"name": "Red Shoe", "price": 10}, &got))

	var e errResp
	require.Equal(t, http.StatusConflict, do(t, c, http.MethodDelete, ts.URL+"/cart/items/red-shoe", nil, &e))
	assert.Equal(t, cart.RemovePrompt, e.Details.Prompt)

	require.Equal(t, http.StatusOK, do(t, c, http.MethodDelete, ts.URL+"/cart/items/red-shoe?confirm=true", nil, &got))
	assert.True(t, got.Cart.Empty)
}

func TestCheckout(t *testing.T) {
	base := storage.NewMemStore()
	ts := newTS(t, base)
	c := newClient(t)

	var e errResp
	require.Equal(t, http.StatusConflict, do(t, c, http.MethodPost, ts.URL+"/checkout?confirm=true", nil, &e))
	assert.Equal(t, cart.EmptyCartNotice, e.Error)

	var got cartResp
	require.Equal(t, http.StatusCreated, do(t, c, http.MethodPost, ts.URL+"/cart/items", map[string]any{"name": "Red Shoe", "price": 10}, &got))

	require.Equal(t, http.StatusConflict, do(t, c, http.MethodPost, ts.URL+"/checkout", nil, &e))
	assert.Equal(t, cart.CheckoutPrompt, e.Details.Prompt)

	require.Equal(t, http.StatusOK, do(t, c, http.MethodPost, ts.URL+"/checkout?confirm=1", nil, &got))
	assert.Equal(t, cart.CheckoutNotice, got.Notice)
	assert.True(t, got.Cart.Empty)
}

func TestCart_BadRequests(t *testing.T) {
	ts := newTS(t, storage.NewMemStore())
	c := newClient(t)

	for _, body := range []map[string]any{
		{"name": "Hat"},
		{"name": "Hat", "price": "cheap"},
		{"name": "", "price": 3},
		{"name": "Hat", "price": 3, "color": "red"},
	} {
		var e errResp
		assert.Equal(t, http.StatusBadRequest, do(t, c, http.MethodPost, ts.URL+"/cart/items", body, &e), body)
	}
}

func TestCart_SessionsAreSeparate(t *testing.T) {
	ts := newTS(t, storage.NewMemStore())
	alice, bob := newClient(t), newClient(t)

	var got cartResp
	require.Equal(t, http.StatusCreated, do(t, alice, http.MethodPost, ts.URL+"/cart/items", map[string]any{"name": "Red Shoe", "price": 10}, &got))

	require.Equal(t, http.StatusOK, do(t, bob, http.MethodGet, ts.URL+"/cart", nil, &got))
	assert.True(t, got.Cart.Empty)

	require.Equal(t, http.StatusOK, do(t, alice, http.MethodGet, ts.URL+"/cart", nil, &got))
	assert.Equal(t, 1, got.Cart.Badge.Count)
}

func TestSearch(t *testing.T) {
	ts := newTS(t, storage.NewMemStore())
	c := newClient(t)

	var r search.Results
	require.Equal(t, http.StatusOK, do(t, c, http.MethodGet, ts.URL+"/search", nil, &r))
	assert.Equal(t, search.StateResults, r.State)
	assert.Len(t, r.Entries, 10)

	require.Equal(t, http.StatusOK, do(t, c, http.MethodGet, ts.URL+"/search?q=WATCH", nil, &r))
	require.Len(t, r.Entries, 2)
	for _, e := range r.Entries {
		assert.Contains(t, strings.ToLower(e.Name+e.Description), "watch")
	}

	require.Equal(t, http.StatusOK, do(t, c, http.MethodGet, ts.URL+"/search?q=kayak", nil, &r))
	assert.Equal(t, search.StateNoResults, r.State)
	assert.Equal(t, `No results found for "kayak"`, r.Message)

	var n map[string]int
	require.Equal(t, http.StatusOK, do(t, c, http.MethodPost, ts.URL+"/search/reindex", nil, &n))
	assert.Equal(t, 10, n["entries"])
}

func TestProbesAndMetrics(t *testing.T) {
	base := storage.NewMemStore()
	ts := newTS(t, base)
	c := newClient(t)

	assert.Equal(t, http.StatusOK, do(t, c, http.MethodGet, ts.URL+"/healthz", nil, nil))
	assert.Equal(t, http.StatusOK, do(t, c, http.MethodGet, ts.URL+"/readyz", nil, nil))
	assert.Equal(t, http.StatusForbidden, do(t, c, http.MethodGet, ts.URL+"/metrics", nil, nil))

	req, err := http.NewRequest(http.MethodGet, ts.URL+"/metrics", nil)
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer metrics-token")
	resp, err := c.Do(req)
	require.NoError(t, err)
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	_ = resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(raw), "http_requests_total")

	require.NoError(t, base.Close())
	assert.Equal(t, http.StatusServiceUnavailable, do(t, c, http.MethodGet, ts.URL+"/readyz", nil, nil))
}

func TestCart_StorageDownStillServes(t *testing.T) {
	base := storage.NewMemStore()
	ts := newTS(t, base)
	c := newClient(t)

	var got cartResp
	require.Equal(t, http.StatusOK, do(t, c, http.MethodGet, ts.URL+"/cart", nil, &got))
	require.NoError(t, base.Close())

	require.Equal(t, http.StatusCreated, do(t, c, http.MethodPost, ts.URL+"/cart/items", map[string]any{"name": "Red Shoe", "price": 10}, &got))
	assert.Equal(t, 1, got.Cart.Badge.Count)
	assert.Equal(t, cart.DegradedNotice, got.Cart.Warning)
}
