// Package request decodes and validates inbound HTTP payloads.
package request

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

// ErrInvalidBody is returned when the body cannot be decoded.
var ErrInvalidBody = errors.New("invalid request body")

var validate = newValidator()

// newValidator reports fields by their JSON names.
func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// DecodeJSON decodes the body into dst and validates its `validate` tags.
// The returned error message is safe to show to API clients.
func DecodeJSON(r *http.Request, dst interface{}) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return ErrInvalidBody
	}
	return Validate(dst)
}

// Validate checks v's `validate` tags and reports the first failing field.
func Validate(v interface{}) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return ErrInvalidBody
	}
	fe := verrs[0]
	field := fe.Field()
	switch fe.Tag() {
	case "required":
		return fmt.Errorf("%s is required", field)
	case "uuid", "uuid4":
		return fmt.Errorf("%s must be a valid id", field)
	case "max":
		return fmt.Errorf("%s must be at most %s characters", field, fe.Param())
	case "email":
		return fmt.Errorf("%s must be a valid email", field)
	default:
		return fmt.Errorf("%s is invalid", field)
	}
}

// ID returns the URL parameter name when it holds a valid UUID.
func ID(r *http.Request, name string) (string, bool) {
	raw := chi.URLParam(r, name)
	if _, err := uuid.Parse(raw); err != nil {
		return "", false
	}
	return raw, true
}

// IsID reports whether s is a valid UUID.
func IsID(s string) bool {
	_, err := uuid.Parse(s)
	return err == nil
}

// Trimmed returns a pointer to the trimmed value, or nil when it is blank.
func Trimmed(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}
