// api/schemas/validate.go
package schemas

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

var (
	validateOnce sync.Once
	validate     *validator.Validate
)

func validatorInstance() *validator.Validate {
	validateOnce.Do(func() {
		v, err := newValidator()
		if err != nil {
			panic(fmt.Sprintf("failed to build request validator: %v", err))
		}
		validate = v
	})
	return validate
}

func newValidator() (*validator.Validate, error) {
	v := validator.New(validator.WithRequiredStructEnabled())
	// Report fields by their wire name so callers can map errors back to
	// the payload they sent.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		if name == "" {
			return fld.Name
		}
		return name
	})
	if err := v.RegisterValidation("notblank", func(fl validator.FieldLevel) bool {
		return strings.TrimSpace(fl.Field().String()) != ""
	}); err != nil {
		return nil, fmt.Errorf("registering notblank: %w", err)
	}
	return v, nil
}

// Validate checks v against its `validate` struct tags and returns a
// ValidationError naming the first offending field.
func Validate(v any) error {
	err := validatorInstance().Struct(v)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return NewValidationError("", err.Error())
	}
	fe := verrs[0]
	return NewValidationError(fe.Field(), describe(fe))
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "notblank", "required":
		return "must not be empty"
	case "required_without":
		return fmt.Sprintf("is required when %s is not set", strings.ToLower(fe.Param()))
	case "gte":
		return fmt.Sprintf("must be >= %s", fe.Param())
	case "lte":
		return fmt.Sprintf("must be <= %s", fe.Param())
	case "http_url", "url":
		return "must be an absolute http(s) URL"
	default:
		return fmt.Sprintf("failed %q check", fe.Tag())
	}
}
