package controllers

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	apperrors "github.com/rayhanbeg/Sajbela-sub000/services/common/errors"
)

var (
	registerOnce sync.Once
	phonePattern = regexp.MustCompile(`^01[3-9]\d{8}$`)
)

// RegisterValidators teaches gin's validator the bdphone tag and makes it
// report JSON field names.
func RegisterValidators() {
	registerOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		v.RegisterTagNameFunc(func(f reflect.StructField) string {
			name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
			switch name {
			case "-":
				return ""
			case "":
				return f.Name
			}
			return name
		})
		_ = v.RegisterValidation("bdphone", func(fl validator.FieldLevel) bool {
			return phonePattern.MatchString(strings.TrimSpace(fl.Field().String()))
		})
	})
}

// bindJSON binds the body into out, reporting the first invalid field.
func bindJSON(c *gin.Context, out any) error {
	err := c.ShouldBindJSON(out)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		return apperrors.OnField(apperrors.ErrValidation, fe.Field(), fieldMessage(fe))
	}
	return apperrors.Wrap(apperrors.ErrValidation, "Invalid request body", err)
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", fe.Field())
	case "bdphone":
		return "Enter a valid 11-digit mobile number"
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", fe.Field(), fe.Param())
	case "min":
		return fmt.Sprintf("%s must be at least %s", fe.Field(), fe.Param())
	}
	return fmt.Sprintf("%s is invalid", fe.Field())
}

// respondError writes err in the {"error", "field", "kind"} shape.
func respondError(c *gin.Context, err error) {
	appErr := apperrors.As(err)
	body := gin.H{"error": appErr.Message, "kind": appErr.Kind}
	if appErr.Field != "" {
		body["field"] = appErr.Field
	}
	c.AbortWithStatusJSON(appErr.Code, body)
}
