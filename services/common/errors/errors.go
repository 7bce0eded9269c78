package errors

import (
	"encoding/json"
	stderrors "errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
)

// Kind classifies an application error. Two errors with the same kind match
// under errors.Is regardless of message or wrapped cause.
type Kind string

const (
	KindSelectionRequired Kind = "selection_required"
	KindOutOfStock        Kind = "out_of_stock"
	KindValidation        Kind = "validation_error"
	KindNetwork           Kind = "network_error"
	KindAuthRequired      Kind = "auth_required"
	KindNotFound          Kind = "not_found"
	KindInternal          Kind = "internal_error"
)

// Error represents an application error
type Error struct {
	Code    int    `json:"code"`
	Kind    Kind   `json:"kind"`
	Message string `json:"message"`
	// Field names the offending input for inline display, when there is one.
	Field string `json:"field,omitempty"`
	// Redirect is where the client should go next, for auth_required.
	Redirect string `json:"redirect,omitempty"`
	Err      error  `json:"-"`
}

// Error implements the error interface
func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns the wrapped error
func (e *Error) Unwrap() error {
	return e.Err
}

// Is reports kind equality so callers can match against the sentinels below.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok || t.Kind == "" {
		return false
	}
	return t.Kind == e.Kind
}

// JSON returns the error as a JSON string
func (e *Error) JSON() string {
	b, _ := json.Marshal(e)
	return string(b)
}

// New creates a new Error
func New(code int, kind Kind, message string, err error) *Error {
	return &Error{
		Code:    code,
		Kind:    kind,
		Message: message,
		Err:     err,
	}
}

// Wrap returns a copy of base carrying its own message and cause. The
// sentinels are shared, so they must never be mutated in place.
func Wrap(base *Error, message string, err error) *Error {
	out := *base
	if message != "" {
		out.Message = message
	}
	out.Err = err
	return &out
}

// OnField returns a copy of base bound to an input field.
func OnField(base *Error, field, message string) *Error {
	out := Wrap(base, message, nil)
	out.Field = field
	return out
}

// RedirectTo returns a copy of base telling the client where to go.
func RedirectTo(base *Error, redirect string) *Error {
	out := Wrap(base, "", nil)
	out.Redirect = redirect
	return out
}

// Checkout error taxonomy
var (
	ErrSelectionRequired = New(http.StatusConflict, KindSelectionRequired, "Variant selection required", nil)
	ErrOutOfStock        = New(http.StatusConflict, KindOutOfStock, "Requested quantity exceeds available stock", nil)
	ErrValidation        = New(http.StatusBadRequest, KindValidation, "Validation error", nil)
	ErrNetwork           = New(http.StatusBadGateway, KindNetwork, "Storefront service unavailable", nil)
	ErrAuthRequired      = New(http.StatusUnauthorized, KindAuthRequired, "Authentication required", nil)
	ErrNotFound          = New(http.StatusNotFound, KindNotFound, "Not found", nil)
	ErrInternalServer    = New(http.StatusInternalServerError, KindInternal, "Internal server error", nil)
)

// As extracts an *Error from err, falling back to an internal error.
func As(err error) *Error {
	var appErr *Error
	if stderrors.As(err, &appErr) {
		return appErr
	}
	return Wrap(ErrInternalServer, "", err)
}

// Error handlers
func HandleError(w http.ResponseWriter, err error) {
	appErr := As(err)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(appErr.Code)
	w.Write([]byte(appErr.JSON()))
}

// Error middleware for Gin
func ErrorMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		// Check if there are any errors
		if len(c.Errors) > 0 {
			appErr := As(c.Errors.Last().Err)
			c.JSON(appErr.Code, appErr)
			c.Abort()
		}
	}
}
