package middleware

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// FieldErrors maps a form field name to its message.
type FieldErrors map[string]string

func (f FieldErrors) Error() string {
	parts := make([]string, 0, len(f))
	for k, v := range f {
		parts = append(parts, k+": "+v)
	}
	return strings.Join(parts, "; ")
}

// Validator is a struct that holds the validator instance
type Validator struct {
	validate *validator.Validate
}

// NewValidator creates a validator that reports fields by their form name.
func NewValidator() *Validator {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("form"), ",", 2)[0]
		if name == "" || name == "-" {
			return fld.Name
		}
		return name
	})
	return &Validator{validate: v}
}

// Validate checks s and converts failures into FieldErrors. Messages come
// from the "msg" struct tag when present.
func (v *Validator) Validate(s interface{}) error {
	err := v.validate.Struct(s)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}

	t := reflect.TypeOf(s)
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}

	out := make(FieldErrors, len(verrs))
	for _, fe := range verrs {
		if _, seen := out[fe.Field()]; seen {
			continue
		}
		msg := ""
		if sf, ok := t.FieldByName(fe.StructField()); ok {
			msg = sf.Tag.Get("msg")
		}
		if msg == "" {
			msg = defaultMessage(fe)
		}
		out[fe.Field()] = msg
	}
	return out
}

func defaultMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "This field is required"
	case "email":
		return "Enter a valid email address"
	case "min":
		return fmt.Sprintf("Must be at least %s characters", fe.Param())
	case "max":
		return fmt.Sprintf("Must be at most %s characters", fe.Param())
	case "url":
		return "Enter a valid URL"
	default:
		return "Invalid value"
	}
}

// Normalizer is implemented by forms that clean their input (trimming,
// case folding) before validation.
type Normalizer interface {
	Normalize()
}

// ParseForm binds the request form into dst, normalizes it and validates it.
// A malformed body is a 400 *fiber.Error; invalid fields are FieldErrors.
func (v *Validator) ParseForm(c *fiber.Ctx, dst interface{}) error {
	if err := c.BodyParser(dst); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid form")
	}
	if n, ok := dst.(Normalizer); ok {
		n.Normalize()
	}
	return v.Validate(dst)
}

// ValidateQuery is a middleware that binds and validates query parameters
// into a fresh value from newDst, stored under the "query" local.
func ValidateQuery(newDst func() interface{}) fiber.Handler {
	v := NewValidator()

	return func(c *fiber.Ctx) error {
		dst := newDst()
		if err := c.QueryParser(dst); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid query parameters")
		}
		if err := v.Validate(dst); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		c.Locals("query", dst)
		return c.Next()
	}
}
