package lists

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestMergedItemKeepsUserRowOnCollision(t *testing.T) {
	user := ListItem{Name: "milk", Quantity: 2}
	anon := ListItem{Name: "milk", Quantity: 1}

	merged := mergedItem(user, anon)

	assert.Equal(t, 2, merged.Quantity)
	assert.False(t, merged.Purchased)
}

func TestMergedItemFillsEmptyCategory(t *testing.T) {
	user := ListItem{Name: "milk", Quantity: 1}
	anon := ListItem{Name: "milk", Quantity: 1, Category: "dairy"}

	merged := mergedItem(user, anon)
	assert.Equal(t, "dairy", merged.Category)

	user.Category = "drinks"
	merged = mergedItem(user, anon)
	assert.Equal(t, "drinks", merged.Category, "the user's own category survives")
}

func TestMergedItemTakesLargerQuantity(t *testing.T) {
	user := ListItem{Name: "eggs", Quantity: 1}
	anon := ListItem{Name: "eggs", Quantity: 6}

	merged := mergedItem(user, anon)

	assert.Equal(t, 6, merged.Quantity)
}

func TestMergedItemPurchaseSticks(t *testing.T) {
	purchasedAt := time.Now().UTC().Add(-time.Hour)
	user := ListItem{Name: "bread", Quantity: 1}
	anon := ListItem{Name: "bread", Quantity: 1, Purchased: true, PurchasedAt: &purchasedAt}

	merged := mergedItem(user, anon)

	assert.True(t, merged.Purchased)
	assert.Equal(t, &purchasedAt, merged.PurchasedAt)
}

func TestMergedItemUserPurchaseNotOverwritten(t *testing.T) {
	userPurchased := time.Now().UTC().Add(-2 * time.Hour)
	anonPurchased := time.Now().UTC().Add(-time.Hour)
	user := ListItem{Name: "butter", Quantity: 1, Purchased: true, PurchasedAt: &userPurchased}
	anon := ListItem{Name: "butter", Quantity: 1, Purchased: true, PurchasedAt: &anonPurchased}

	merged := mergedItem(user, anon)

	assert.True(t, merged.Purchased)
	assert.Equal(t, &userPurchased, merged.PurchasedAt, "the user's own purchase history survives")
}
