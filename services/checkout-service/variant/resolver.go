// Package variant resolves a product's size/color variant shape and decides
// whether a selection can be bought, and how many.
package variant

import (
	"fmt"
	"strings"

	"github.com/rayhanbeg/Sajbela-sub000/services/checkout-service/models"
	apperrors "github.com/rayhanbeg/Sajbela-sub000/services/common/errors"
)

// Kind is the variant axis a product uses for stock.
type Kind int

const (
	NoVariant Kind = iota
	SizeVariant
	ColorVariant
)

func (k Kind) String() string {
	switch k {
	case SizeVariant:
		return "size"
	case ColorVariant:
		return "color"
	default:
		return "none"
	}
}

// Option is one size or color with its own stock.
type Option struct {
	Name      string
	Stock     int
	Available bool
}

// Axis is the resolved variant shape of a product. A product never combines
// size and color for stock purposes: size only counts for bangles.
type Axis struct {
	Kind    Kind
	Options []Option
}

// AxisOf resolves the variant shape of p once so callers can treat every
// product uniformly.
func AxisOf(p *models.Product) Axis {
	if p.IsBangles() && len(p.Sizes) > 0 {
		opts := make([]Option, 0, len(p.Sizes))
		for _, s := range p.Sizes {
			opts = append(opts, Option{Name: s.Size, Stock: s.Stock, Available: s.Available})
		}
		return Axis{Kind: SizeVariant, Options: opts}
	}
	if len(p.Colors) > 0 {
		opts := make([]Option, 0, len(p.Colors))
		for _, c := range p.Colors {
			opts = append(opts, Option{Name: c.Name, Stock: c.Stock, Available: c.Available})
		}
		return Axis{Kind: ColorVariant, Options: opts}
	}
	return Axis{Kind: NoVariant}
}

// Selection is the shopper's current choice on the product page.
type Selection struct {
	Size  string `json:"selectedSize,omitempty"`
	Color string `json:"selectedColor,omitempty"`
}

// Normalize keeps only the value for the axis that matters, spelled the way
// the product spells the option. A value naming no option is kept trimmed.
func (a Axis) Normalize(sel Selection) Selection {
	switch a.Kind {
	case SizeVariant:
		return Selection{Size: a.canonical(sel.Size)}
	case ColorVariant:
		return Selection{Color: a.canonical(sel.Color)}
	default:
		return Selection{}
	}
}

func (a Axis) canonical(name string) string {
	name = strings.TrimSpace(name)
	if opt, ok := a.option(name); ok {
		return opt.Name
	}
	return name
}

func (a Axis) option(name string) (Option, bool) {
	if name == "" {
		return Option{}, false
	}
	for _, opt := range a.Options {
		if strings.EqualFold(opt.Name, name) {
			return opt, true
		}
	}
	return Option{}, false
}

// Disclosure is what the product page may say about stock. Nothing is said
// until a required selection has been made.
type Disclosure string

const (
	Undetermined Disclosure = "undetermined"
	Available    Disclosure = "in_stock"
	Unavailable  Disclosure = "out_of_stock"
)

// Availability is the result of resolving a selection against stock.
type Availability struct {
	Kind        Kind       `json:"-"`
	Resolvable  bool       `json:"resolvable"`
	InStock     bool       `json:"inStock"`
	MaxQuantity int        `json:"maxQuantity"`
	Disclosure  Disclosure `json:"status"`
}

// Resolve determines availability of sel for p. It is pure.
func Resolve(p *models.Product, sel Selection) Availability {
	axis := AxisOf(p)
	sel = axis.Normalize(sel)

	var chosen string
	switch axis.Kind {
	case SizeVariant:
		chosen = sel.Size
	case ColorVariant:
		chosen = sel.Color
	default:
		inStock := p.InStock && p.Stock > 0
		return availability(axis.Kind, inStock, p.Stock)
	}

	if chosen == "" {
		return Availability{Kind: axis.Kind, Disclosure: Undetermined}
	}
	if opt, ok := axis.option(chosen); ok {
		return availability(axis.Kind, opt.Available && opt.Stock > 0, opt.Stock)
	}
	// An option the product does not offer can never be bought.
	return Availability{Kind: axis.Kind, Resolvable: true, Disclosure: Unavailable}
}

// availability reports stock as MaxQuantity even when the option is switched
// off; InStock alone decides whether anything can be bought.
func availability(kind Kind, inStock bool, stock int) Availability {
	a := Availability{Kind: kind, Resolvable: true, InStock: inStock, MaxQuantity: max(stock, 0), Disclosure: Unavailable}
	if inStock {
		a.Disclosure = Available
	}
	return a
}

// Admit checks that quantity units can be bought. The returned errors match
// apperrors.ErrSelectionRequired and apperrors.ErrOutOfStock.
func (a Availability) Admit(quantity int) error {
	if !a.Resolvable {
		return apperrors.OnField(apperrors.ErrSelectionRequired, "selected"+titleCase(a.Kind.String()),
			fmt.Sprintf("Please select a %s", a.Kind))
	}
	if !a.InStock {
		return apperrors.OnField(apperrors.ErrOutOfStock, "quantity", "Out of stock")
	}
	if quantity > a.MaxQuantity {
		return apperrors.OnField(apperrors.ErrOutOfStock, "quantity",
			fmt.Sprintf("Only %d available", a.MaxQuantity))
	}
	return nil
}

func titleCase(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
