package handler

import (
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/iliyamo/cinema-receipt-service/internal/model"
)

// RequestValidator adapts go-playground/validator to echo.Validator and
// reports the first failing field as *model.ValidationError using its
// JSON name.
type RequestValidator struct {
	v *validator.Validate
}

// NewRequestValidator registers JSON tag names for error reporting.
func NewRequestValidator() *RequestValidator {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return &RequestValidator{v: v}
}

// Validate implements echo.Validator.
func (rv *RequestValidator) Validate(i interface{}) error {
	err := rv.v.Struct(i)
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return err
	}
	fe := verrs[0]
	switch fe.Tag() {
	case "required":
		return model.Invalid(fe.Field(), "is required")
	case "email":
		return model.Invalid(fe.Field(), "must be a valid email address")
	case "max":
		return model.Invalid(fe.Field(), "must have at most %s entries", fe.Param())
	default:
		return model.Invalid(fe.Field(), "failed %s validation", fe.Tag())
	}
}
