package address

import (
	"errors"
	"reflect"
	"regexp"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"

	"github.com/rayhanbeg/Sajbela-sub000/services/checkout-service/models"
	apperrors "github.com/rayhanbeg/Sajbela-sub000/services/common/errors"
)

var phonePattern = regexp.MustCompile(`^01[3-9]\d{8}$`)

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

// Validator returns the shared validator with the bdphone tag registered.
// Field errors are reported by their JSON names.
func Validator() *validator.Validate {
	validateOnce.Do(func() {
		v := validator.New()
		v.RegisterTagNameFunc(func(f reflect.StructField) string {
			name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			return name
		})
		_ = v.RegisterValidation("bdphone", func(fl validator.FieldLevel) bool {
			return ValidPhone(fl.Field().String())
		})
		validate = v
	})
	return validate
}

// ValidPhone reports whether phone is an 11-digit Bangladeshi mobile number.
func ValidPhone(phone string) bool {
	return phonePattern.MatchString(strings.TrimSpace(phone))
}

// Normalize trims every field and fills in the default country.
func Normalize(a models.Address) models.Address {
	a.FullName = strings.TrimSpace(a.FullName)
	a.Phone = strings.TrimSpace(a.Phone)
	a.Address = strings.TrimSpace(a.Address)
	a.District = strings.TrimSpace(a.District)
	a.Thana = strings.TrimSpace(a.Thana)
	a.Country = strings.TrimSpace(a.Country)
	if a.Country == "" {
		a.Country = DefaultCountry
	}
	return a
}

// Validate checks a normalized address. The first failing field is returned
// as a validation error carrying that field's name.
func Validate(a models.Address) error {
	a = Normalize(a)
	err := Validator().Struct(a)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return apperrors.Wrap(apperrors.ErrValidation, "invalid address", err)
	}
	fe := verrs[0]
	return apperrors.OnField(apperrors.ErrValidation, fe.Field(), message(fe))
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "bdphone":
		return "Please enter a valid 11-digit phone number"
	case "required":
		return fe.Field() + " is required"
	default:
		return fe.Field() + " is invalid"
	}
}
