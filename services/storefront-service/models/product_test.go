package models_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/rayhanbeg/Sajbela-sub000/services/storefront-service/models"
)

func TestStockFor(t *testing.T) {
	bangle := &models.Product{Category: "Bangles", Sizes: []models.Size{
		{Size: "M", Stock: 3, Available: true},
		{Size: "L", Stock: 4, Available: false},
	}}
	necklace := &models.Product{Category: "necklaces", Colors: []models.Color{{Name: "Red", Stock: 5, Available: true}}}
	ring := &models.Product{Category: "rings", InStock: true, Stock: 10}
	soldOut := &models.Product{Category: "rings", InStock: false, Stock: 4}
	// Sizes outside bangles carry no stock; the product count applies.
	sizedRing := &models.Product{Category: "rings", Sizes: []models.Size{{Size: "7"}}, InStock: true, Stock: 2}

	tests := []struct {
		name    string
		p       *models.Product
		size    string
		color   string
		stock   int
		offered bool
	}{
		{"bangle size", bangle, "M", "", 3, true},
		{"bangle unknown size", bangle, "XL", "", 0, false},
		{"bangle size switched off", bangle, "L", "", 0, true},
		{"necklace color", necklace, "", "Red", 5, true},
		{"necklace color other case", necklace, "", " rED ", 5, true},
		{"necklace missing color", necklace, "", "", 0, false},
		{"plain product", ring, "", "", 10, true},
		{"out of stock flag", soldOut, "", "", 0, true},
		{"sizes ignored outside bangles", sizedRing, "7", "", 2, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stock, ok := tt.p.StockFor(tt.size, tt.color)
			assert.Equal(t, tt.stock, stock)
			assert.Equal(t, tt.offered, ok)
		})
	}
}

func TestVariant_UsesProductSpelling(t *testing.T) {
	bangle := &models.Product{Category: "bangles", Sizes: []models.Size{{Size: "2.6", Stock: 1, Available: true}}}
	necklace := &models.Product{Category: "necklaces", Colors: []models.Color{{Name: "Rose Gold", Stock: 1, Available: true}}}
	ring := &models.Product{Category: "rings", InStock: true, Stock: 1}

	size, color := bangle.Variant(" 2.6 ", "Red")
	assert.Equal(t, "2.6", size)
	assert.Empty(t, color)

	size, color = necklace.Variant("M", "rose gold")
	assert.Empty(t, size)
	assert.Equal(t, "Rose Gold", color)

	_, color = necklace.Variant("", "Teal")
	assert.Equal(t, "Teal", color)

	size, color = ring.Variant("7", "Red")
	assert.Empty(t, size)
	assert.Empty(t, color)
}

func TestCartView_Totals(t *testing.T) {
	c := models.Cart{Items: []models.CartItem{
		{UnitPrice: 450, Quantity: 2},
		{UnitPrice: 1200, Quantity: 1},
	}}
	v := c.View()
	assert.Equal(t, 2100.0, v.TotalAmount)
	assert.Equal(t, 3, v.TotalItems)

	empty := models.Cart{}
	assert.NotNil(t, empty.View().Items)
}
