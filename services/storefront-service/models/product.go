package models

import (
	"strings"
	"time"
)

// CategoryBangles is the only category whose sizes carry their own stock.
const CategoryBangles = "bangles"

type Size struct {
	Size        string `json:"size"`
	Measurement string `json:"measurement,omitempty"`
	Stock       int    `json:"stock"`
	Available   bool   `json:"available"`
}

type Color struct {
	Name      string `json:"name"`
	HexCode   string `json:"hexCode,omitempty"`
	Stock     int    `json:"stock"`
	Available bool   `json:"available"`
}

type Product struct {
	ID            string    `gorm:"primaryKey" json:"_id"`
	Name          string    `gorm:"not null" json:"name"`
	Price         float64   `gorm:"not null" json:"price"`
	OriginalPrice *float64  `json:"originalPrice,omitempty"`
	Category      string    `gorm:"index" json:"category"`
	Image         string    `json:"image,omitempty"`
	Sizes         []Size    `gorm:"type:jsonb;serializer:json" json:"sizes,omitempty"`
	Colors        []Color   `gorm:"type:jsonb;serializer:json" json:"colors,omitempty"`
	InStock       bool      `json:"inStock"`
	Stock         int       `json:"stock"`
	CreatedAt     time.Time `gorm:"autoCreateTime" json:"-"`
	UpdatedAt     time.Time `gorm:"autoUpdateTime" json:"-"`
}

func (p *Product) stockedBySize() bool {
	return strings.EqualFold(p.Category, CategoryBangles) && len(p.Sizes) > 0
}

// VariantField names the request field that selects a variant of p.
func (p *Product) VariantField() string {
	if p.stockedBySize() {
		return "selectedSize"
	}
	return "selectedColor"
}

// Variant returns size and color spelled the way p spells its options,
// keeping only the axis p is stocked by. A name p does not offer is returned
// trimmed.
func (p *Product) Variant(size, color string) (string, string) {
	size, color = strings.TrimSpace(size), strings.TrimSpace(color)
	switch {
	case p.stockedBySize():
		for _, s := range p.Sizes {
			if strings.EqualFold(s.Size, size) {
				return s.Size, ""
			}
		}
		return size, ""
	case len(p.Colors) > 0:
		for _, c := range p.Colors {
			if strings.EqualFold(c.Name, color) {
				return "", c.Name
			}
		}
		return "", color
	default:
		return "", ""
	}
}

// StockFor returns the stock of the variant named by size or color, and
// whether the selection names an offered variant at all. Bangles are stocked
// per size, other products with colors per color, the rest per product.
// Names match regardless of case.
func (p *Product) StockFor(size, color string) (int, bool) {
	size, color = strings.TrimSpace(size), strings.TrimSpace(color)
	switch {
	case p.stockedBySize():
		for _, s := range p.Sizes {
			if size != "" && strings.EqualFold(s.Size, size) {
				return optionStock(s.Available, s.Stock), true
			}
		}
		return 0, false
	case len(p.Colors) > 0:
		for _, c := range p.Colors {
			if color != "" && strings.EqualFold(c.Name, color) {
				return optionStock(c.Available, c.Stock), true
			}
		}
		return 0, false
	default:
		if !p.InStock {
			return 0, true
		}
		return p.Stock, true
	}
}

func optionStock(available bool, stock int) int {
	if !available {
		return 0
	}
	return stock
}
