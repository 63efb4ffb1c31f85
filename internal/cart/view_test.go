package cart_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"Storefront/internal/cart"
)

func TestRender_Empty(t *testing.T) {
	v := cart.Render(cart.Snapshot{}, nil)

	assert.True(t, v.Empty)
	assert.False(t, v.ShowSummary)
	assert.Equal(t, cart.EmptyMessage, v.Message)
	assert.Empty(t, v.Lines)
	assert.NotNil(t, v.Lines)
	assert.Equal(t, "$0.00", v.Total)
	assert.Equal(t, cart.Badge{Count: 0, Visible: false}, v.Badge)
	assert.Empty(t, v.Warning)
}

func TestRender_Lines(t *testing.T) {
	snap := cart.Snapshot{Items: []cart.Item{
		{ID: "red-shoe", Name: "Red Shoe", Price: 10, Quantity: 2, Image: "shoe.jpg", Description: "red"},
		{ID: "blue-hat", Name: "Blue Hat", Price: 5},
	}}

	v := cart.Render(snap, func(in cart.Intent, id string) string {
		return "/cart/items/" + id + "/" + string(in)
	})

	assert.False(t, v.Empty)
	assert.True(t, v.ShowSummary)
	require.Len(t, v.Lines, 2)

	assert.Equal(t, cart.Line{
		ID:          "red-shoe",
		Name:        "Red Shoe",
		Description: "red",
		Image:       "shoe.jpg",
		UnitPrice:   "$10.00",
		Quantity:    2,
		LineTotal:   "$20.00",
		Increase:    "/cart/items/red-shoe/increase",
		Decrease:    "/cart/items/red-shoe/decrease",
		Remove:      "/cart/items/red-shoe/remove",
	}, v.Lines[0])

	hat := v.Lines[1]
	assert.Equal(t, cart.NoDescription, hat.Description)
	assert.Equal(t, cart.PlaceholderImage, hat.Image)
	assert.Equal(t, 1, hat.Quantity)
	assert.Equal(t, "$5.00", hat.LineTotal)

	assert.Equal(t, "$25.00", v.Total)
	assert.InDelta(t, 25.0, v.TotalValue, 1e-9)
	assert.Equal(t, cart.Badge{Count: 3, Visible: true}, v.Badge)
}

func TestRender_RoundsToCents(t *testing.T) {
	v := cart.Render(cart.Snapshot{Items: []cart.Item{{ID: "x", Name: "X", Price: 0.1, Quantity: 3}}}, nil)
	assert.Equal(t, "$0.30", v.Total)
	assert.Equal(t, "$0.10", v.Lines[0].UnitPrice)
	assert.Empty(t, v.Lines[0].Increase)
}
