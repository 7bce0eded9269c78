package variant_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rayhanbeg/Sajbela-sub000/services/checkout-service/models"
	"github.com/rayhanbeg/Sajbela-sub000/services/checkout-service/variant"
	apperrors "github.com/rayhanbeg/Sajbela-sub000/services/common/errors"
)

func bangle() *models.Product {
	return &models.Product{
		ID:       "b1",
		Category: "bangles",
		Sizes: []models.Size{
			{Size: "M", Stock: 3, Available: true},
			{Size: "L", Stock: 0, Available: true},
			{Size: "S", Stock: 5, Available: false},
		},
	}
}

func TestAxisOf(t *testing.T) {
	assert.Equal(t, variant.SizeVariant, variant.AxisOf(bangle()).Kind)

	// sizes on a non-bangles product do not count
	earring := &models.Product{Category: "earrings", Sizes: []models.Size{{Size: "M", Stock: 1}}}
	assert.Equal(t, variant.NoVariant, variant.AxisOf(earring).Kind)

	necklace := &models.Product{Category: "necklaces", Colors: []models.Color{{Name: "Red", Stock: 1, Available: true}}}
	assert.Equal(t, variant.ColorVariant, variant.AxisOf(necklace).Kind)
}

func TestResolve_BanglesGating(t *testing.T) {
	p := bangle()

	a := variant.Resolve(p, variant.Selection{})
	assert.False(t, a.Resolvable)
	assert.Equal(t, 0, a.MaxQuantity)
	assert.Equal(t, variant.Undetermined, a.Disclosure)
	assert.True(t, errors.Is(a.Admit(1), apperrors.ErrSelectionRequired))

	a = variant.Resolve(p, variant.Selection{Size: "M"})
	require.True(t, a.Resolvable)
	assert.True(t, a.InStock)
	assert.Equal(t, 3, a.MaxQuantity)
	assert.NoError(t, a.Admit(3))
	assert.True(t, errors.Is(a.Admit(4), apperrors.ErrOutOfStock))
}

func TestResolve_SizeOptionStates(t *testing.T) {
	p := bangle()

	zero := variant.Resolve(p, variant.Selection{Size: "L"})
	assert.True(t, zero.Resolvable)
	assert.False(t, zero.InStock)
	assert.Equal(t, variant.Unavailable, zero.Disclosure)

	disabled := variant.Resolve(p, variant.Selection{Size: "S"})
	assert.False(t, disabled.InStock)
	assert.Equal(t, 5, disabled.MaxQuantity)
	assert.Equal(t, variant.Unavailable, disabled.Disclosure)
	assert.True(t, errors.Is(disabled.Admit(1), apperrors.ErrOutOfStock))

	unknown := variant.Resolve(p, variant.Selection{Size: "XXL"})
	assert.True(t, unknown.Resolvable)
	assert.False(t, unknown.InStock)
	assert.True(t, errors.Is(unknown.Admit(1), apperrors.ErrOutOfStock))
}

func TestResolve_ColorRequired(t *testing.T) {
	p := &models.Product{
		Category: "necklaces",
		Colors:   []models.Color{{Name: "Red", HexCode: "#f00", Stock: 2, Available: true}},
	}

	// a size on a color product is not a color selection
	a := variant.Resolve(p, variant.Selection{Size: "M"})
	assert.False(t, a.Resolvable)
	assert.Equal(t, variant.Undetermined, a.Disclosure)

	a = variant.Resolve(p, variant.Selection{Color: "red"})
	assert.True(t, a.InStock)
	assert.Equal(t, 2, a.MaxQuantity)
}

func TestResolve_NoVariant(t *testing.T) {
	p := &models.Product{Category: "rings", InStock: true, Stock: 4}
	a := variant.Resolve(p, variant.Selection{Color: "Red"})
	assert.True(t, a.Resolvable)
	assert.Equal(t, 4, a.MaxQuantity)
	assert.Equal(t, variant.Available, a.Disclosure)

	p.InStock = false
	a = variant.Resolve(p, variant.Selection{})
	assert.False(t, a.InStock)
	assert.Equal(t, variant.Unavailable, a.Disclosure)
}

func TestAdmit_ErrorCarriesField(t *testing.T) {
	err := variant.Resolve(bangle(), variant.Selection{}).Admit(1)
	var appErr *apperrors.Error
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, "selectedSize", appErr.Field)
}

func TestNormalize_DropsInactiveAxis(t *testing.T) {
	axis := variant.AxisOf(bangle())
	assert.Equal(t, variant.Selection{Size: "M"}, axis.Normalize(variant.Selection{Size: " M ", Color: "Red"}))
}

func TestNormalize_UsesProductSpelling(t *testing.T) {
	axis := variant.AxisOf(&models.Product{
		Category: "necklaces",
		Colors:   []models.Color{{Name: "Rose Gold", Stock: 2, Available: true}},
	})

	for _, in := range []string{"Rose Gold", "rose gold", " ROSE GOLD "} {
		assert.Equal(t, variant.Selection{Color: "Rose Gold"}, axis.Normalize(variant.Selection{Color: in}), in)
	}
	assert.Equal(t, variant.Selection{Color: "Teal"}, axis.Normalize(variant.Selection{Color: " Teal "}))
}
