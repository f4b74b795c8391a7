package entity

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRankedSelectorHints_PriorityOrder(t *testing.T) {
	el := InteractableElement{
		Tag:       "button",
		TestID:    "checkout-btn",
		ID:        "checkout",
		Role:      "button",
		AriaLabel: "Checkout",
		Name:      "checkout",
		Type:      "submit",
		Text:      "Go to checkout",
	}

	hints := el.RankedSelectorHints()
	require.Len(t, hints, 7)
	assert.Equal(t, `[data-testid="checkout-btn"]`, hints[0])
	assert.Equal(t, "#checkout", hints[1])
	assert.Equal(t, `button[role="button"]`, hints[2])
	assert.Equal(t, `button[aria-label="Checkout"]`, hints[3])
	assert.Equal(t, `button[name="checkout"]`, hints[4])
	assert.Equal(t, `button[type="submit"]`, hints[5])
	assert.Equal(t, `button:has-text("Go to checkout")`, hints[6])
}

func TestRankedSelectorHints_LinkFallsBackToHref(t *testing.T) {
	el := InteractableElement{Tag: "a", Href: "/cart", Text: "Cart"}

	hints := el.RankedSelectorHints()
	require.Len(t, hints, 2)
	assert.Equal(t, `a[href="/cart"]`, hints[0])
	assert.Equal(t, `a:has-text("Cart")`, hints[1])
}

func TestBestSelector_PrefersPrecomputedHints(t *testing.T) {
	el := InteractableElement{
		Tag:           "button",
		ID:            "other",
		SelectorHints: []string{"#precomputed"},
	}
	assert.Equal(t, "#precomputed", el.BestSelector())
}

func TestBestSelector_EmptyWhenNothingUsable(t *testing.T) {
	assert.Empty(t, InteractableElement{Tag: "div"}.BestSelector())
}

func TestTruncateText_BoundsLongSnippets(t *testing.T) {
	long := strings.Repeat("x", 200)
	assert.Len(t, TruncateText(long), 80)
	assert.Equal(t, "short", TruncateText("  short  "))
}
