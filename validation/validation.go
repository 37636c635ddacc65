package validation

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/aatuh/ulid-toolkit/ports"
	"github.com/go-playground/validator/v10"
)

// ValidationError represents a validation error with field-specific details.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Value   string `json:"value,omitempty"`
}

func (e ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("%s: %s", e.Field, e.Message)
	}
	return e.Message
}

// ValidationErrors represents multiple validation errors.
type ValidationErrors struct {
	Errors []ValidationError `json:"errors"`
}

func (e ValidationErrors) Error() string {
	if len(e.Errors) == 0 {
		return "validation failed"
	}
	msgs := make([]string, 0, len(e.Errors))
	for _, err := range e.Errors {
		msgs = append(msgs, err.Error())
	}
	return strings.Join(msgs, "; ")
}

type playgroundValidator struct {
	validator *validator.Validate
}

// New returns a validator backed by github.com/go-playground/validator/v10.
// Field names in errors come from the `flag` tag, falling back to `json`,
// so messages point at what the user actually typed.
func New() ports.Validator {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		for _, key := range []string{"flag", "json"} {
			name, _, _ := strings.Cut(fld.Tag.Get(key), ",")
			if name != "" && name != "-" {
				return name
			}
		}
		return fld.Name
	})
	return &playgroundValidator{validator: v}
}

func (p *playgroundValidator) Validate(ctx context.Context, value any) error {
	if value == nil {
		return ValidationError{Message: "value is required"}
	}
	if !isStruct(value) {
		return nil
	}
	return convertError(p.validator.StructCtx(ctx, value))
}

func (p *playgroundValidator) ValidateStruct(ctx context.Context, obj any) error {
	if obj == nil {
		return ValidationError{Message: "object is required"}
	}
	return convertError(p.validator.StructCtx(ctx, obj))
}

func isStruct(v any) bool {
	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Ptr {
		rv = rv.Elem()
	}
	return rv.IsValid() && rv.Kind() == reflect.Struct
}

func convertError(err error) error {
	if err == nil {
		return nil
	}
	var ve validator.ValidationErrors
	if !errors.As(err, &ve) {
		return err
	}
	errs := ValidationErrors{}
	for _, fe := range ve {
		errs.Errors = append(errs.Errors, ValidationError{
			Field:   fe.Field(),
			Message: buildMessage(fe),
			Value:   fmt.Sprintf("%v", fe.Value()),
		})
	}
	if len(errs.Errors) == 1 {
		return errs.Errors[0]
	}
	return errs
}

func buildMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "min", "gte":
		return fmt.Sprintf("must be at least %s", fe.Param())
	case "max", "lte":
		return fmt.Sprintf("must be at most %s", fe.Param())
	case "oneof":
		return fmt.Sprintf("must be one of [%s]", fe.Param())
	default:
		if fe.Param() != "" {
			return fmt.Sprintf("failed '%s'=%s validation", fe.Tag(), fe.Param())
		}
		return fmt.Sprintf("failed '%s' validation", fe.Tag())
	}
}
