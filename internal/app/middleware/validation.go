package middleware

import (
	"context"
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	domainbooking "rentops/internal/domain/booking"
)

type Validator interface {
	Validate(ctx context.Context, message any) error
}

func Validation(v Validator) CommandMiddleware {
	if v == nil {
		panic("middleware: validator required")
	}
	cmd, _ := Before(v.Validate)
	return cmd
}

func QueryValidation(v Validator) QueryMiddleware {
	if v == nil {
		panic("middleware: validator required")
	}
	_, query := Before(v.Validate)
	return query
}

// StructValidator checks `validate` struct tags and reports the first
// violation as a booking validation error.
type StructValidator struct {
	v *validator.Validate
}

func NewStructValidator() *StructValidator {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "" || name == "-" {
			return f.Name
		}
		return name
	})
	return &StructValidator{v: v}
}

func (s *StructValidator) Validate(_ context.Context, message any) error {
	if message == nil {
		return domainbooking.Invalid("", "empty request")
	}
	rv := reflect.ValueOf(message)
	if rv.Kind() == reflect.Pointer {
		rv = rv.Elem()
	}
	if rv.Kind() != reflect.Struct {
		return nil
	}
	err := s.v.Struct(message)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
		fe := fieldErrs[0]
		return domainbooking.Invalid(fieldPath(fe.Namespace()), describe(fe))
	}
	return domainbooking.InvalidCause("", err)
}

func fieldPath(namespace string) string {
	// drop the struct name
	if idx := strings.IndexByte(namespace, '.'); idx >= 0 {
		return namespace[idx+1:]
	}
	return namespace
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "required"
	case "gt":
		return "must be greater than " + fe.Param()
	case "gte", "min":
		return "must be at least " + fe.Param()
	case "lte", "max":
		return "must be at most " + fe.Param()
	case "datetime":
		return "must be a date in " + fe.Param() + " format"
	case "oneof":
		return "must be one of: " + fe.Param()
	case "email":
		return "must be a valid email"
	default:
		return "failed " + fe.Tag() + " check"
	}
}
