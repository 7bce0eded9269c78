package address

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rayhanbeg/Sajbela-sub000/services/checkout-service/models"
	apperrors "github.com/rayhanbeg/Sajbela-sub000/services/common/errors"
)

func validAddress() models.Address {
	return models.Address{
		FullName: "Nusrat Jahan",
		Phone:    "01712345678",
		Address:  "House 12, Road 4",
		District: "Dhaka",
		Thana:    "Dhanmondi",
	}
}

func TestEffective(t *testing.T) {
	assert.Nil(t, Effective(nil))

	list := []models.Address{{ID: "a"}, {ID: "b", IsDefault: true}, {ID: "c"}}
	assert.Equal(t, "b", Effective(list).ID)

	list = []models.Address{{ID: "a"}, {ID: "c"}}
	assert.Equal(t, "a", Effective(list).ID)
}

func TestFind(t *testing.T) {
	list := []models.Address{{ID: "a"}, {ID: "b"}}
	assert.Equal(t, "b", Find(list, "b").ID)
	assert.Nil(t, Find(list, "z"))
}

func TestValidPhone(t *testing.T) {
	for _, p := range []string{"01712345678", "01312345678", "01912345678"} {
		assert.True(t, ValidPhone(p), p)
	}
	for _, p := range []string{"01212345678", "0171234567", "017123456789", "+8801712345678", "abc"} {
		assert.False(t, ValidPhone(p), p)
	}
}

func TestValidate(t *testing.T) {
	require.NoError(t, Validate(validAddress()))

	a := validAddress()
	a.Phone = "12345"
	err := Validate(a)
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrValidation))

	var appErr *apperrors.Error
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, "phone", appErr.Field)

	a = validAddress()
	a.Thana = "   "
	err = Validate(a)
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, "thana", appErr.Field)
}

func TestNormalize_DefaultsCountry(t *testing.T) {
	a := Normalize(validAddress())
	assert.Equal(t, DefaultCountry, a.Country)

	b := validAddress()
	b.Country = "India"
	assert.Equal(t, "India", Normalize(b).Country)
}
