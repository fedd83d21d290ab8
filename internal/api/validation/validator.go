// Package validation checks request bodies and reports failures as
// problem+json field errors keyed by JSON name.
package validation

import (
	"errors"
	"reflect"
	"strings"
	"time"

	"github.com/blaisecz/cognitive-sync/internal/domain"
	"github.com/blaisecz/cognitive-sync/pkg/problem"
	"github.com/go-playground/validator/v10"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()

	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name == "" {
			return toSnakeCase(f.Name)
		}
		return name
	})

	v.RegisterValidation("timezone", func(fl validator.FieldLevel) bool {
		tz := fl.Field().String()
		if tz == "" {
			return false
		}
		_, err := time.LoadLocation(tz)
		return err == nil
	})
	v.RegisterValidation("cognitive_domain", func(fl validator.FieldLevel) bool {
		return domain.IsCognitiveDomain(domain.CognitiveDomain(fl.Field().String()))
	})
	return v
}

// Validate validates a struct (or pointer to one) and returns field errors,
// or nil when it is valid.
func Validate(s any) []problem.FieldError {
	return fieldErrors(validate.Struct(s))
}

// Var validates a single value, e.g. a path parameter, under field.
func Var(field string, value any, tag string) []problem.FieldError {
	errs := fieldErrors(validate.Var(value, tag))
	for i := range errs {
		errs[i].Field = field
	}
	return errs
}

func fieldErrors(err error) []problem.FieldError {
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return []problem.FieldError{{Field: "body", Message: "is invalid"}}
	}

	out := make([]problem.FieldError, 0, len(verrs))
	for _, fe := range verrs {
		out = append(out, problem.FieldError{
			Field:   fe.Field(),
			Message: message(fe),
		})
	}
	return out
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "min":
		return "must be at least " + fe.Param()
	case "max":
		return "must be at most " + fe.Param()
	case "oneof":
		return "must be one of: " + fe.Param()
	case "gtfield":
		return "must be after " + toSnakeCase(fe.Param())
	case "timezone":
		return "must be a valid IANA timezone"
	case "cognitive_domain":
		return "must be one of: " + strings.Join(domainNames(), ", ")
	default:
		return "is invalid"
	}
}

func domainNames() []string {
	names := make([]string, len(domain.CognitiveDomains))
	for i, d := range domain.CognitiveDomains {
		names[i] = string(d)
	}
	return names
}

func toSnakeCase(s string) string {
	var b strings.Builder
	for i, c := range s {
		if c >= 'A' && c <= 'Z' {
			if i > 0 {
				b.WriteByte('_')
			}
			c += 'a' - 'A'
		}
		b.WriteRune(c)
	}
	return b.String()
}
