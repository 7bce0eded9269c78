package models

import "strings"

// CategoryBangles is the only category whose size options carry stock.
const CategoryBangles = "bangles"

// Size is a size option of a product with its own stock count.
type Size struct {
	Size        string `json:"size"`
	Measurement string `json:"measurement,omitempty"`
	Stock       int    `json:"stock"`
	Available   bool   `json:"available"`
}

// Color is a color option of a product with its own stock count.
type Color struct {
	Name      string `json:"name"`
	HexCode   string `json:"hexCode,omitempty"`
	Stock     int    `json:"stock"`
	Available bool   `json:"available"`
}

// Product is the catalog view this service reads; it is never written here.
type Product struct {
	ID            string   `json:"_id"`
	Name          string   `json:"name"`
	Price         float64  `json:"price"`
	OriginalPrice *float64 `json:"originalPrice,omitempty"`
	Category      string   `json:"category"`
	Image         string   `json:"image,omitempty"`
	Sizes         []Size   `json:"sizes,omitempty"`
	Colors        []Color  `json:"colors,omitempty"`
	InStock       bool     `json:"inStock"`
	Stock         int      `json:"stock"`
}

// IsBangles reports whether the product belongs to the bangles category.
func (p *Product) IsBangles() bool {
	return strings.EqualFold(strings.TrimSpace(p.Category), CategoryBangles)
}

// ColorChoice is a selected color as the product page records it.
type ColorChoice struct {
	Name    string `json:"name"`
	HexCode string `json:"hexCode,omitempty"`
}
