package handler

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/motogear/resource-api/internal/core/domain"
)

// requestValidator plugs go-playground/validator into echo. Failures come
// back as *domain.ValidationError named after the query or json key, so
// the error handler renders them like any other invalid input.
type requestValidator struct {
	v *validator.Validate
}

func NewValidator() *requestValidator {
	v := validator.New()
	v.RegisterTagNameFunc(fieldName)
	return &requestValidator{v: v}
}

func (rv *requestValidator) Validate(i any) error {
	err := rv.v.Struct(i)
	if err == nil {
		return nil
	}
	var ve validator.ValidationErrors
	if !errors.As(err, &ve) {
		return err
	}

	verr := &domain.ValidationError{}
	for _, fe := range ve {
		if fe.Tag() == "required" {
			verr.AddMissing(fe.Field())
			continue
		}
		verr.AddInvalid(fe.Field(), "%s", ruleText(fe))
	}
	return verr
}

// fieldName reports a struct field by the key the client used.
func fieldName(f reflect.StructField) string {
	for _, tag := range []string{"query", "json"} {
		name, _, _ := strings.Cut(f.Tag.Get(tag), ",")
		if name != "" && name != "-" {
			return name
		}
	}
	return strings.ToLower(f.Name)
}

func ruleText(fe validator.FieldError) string {
	switch fe.Tag() {
	case "gt":
		return "must be greater than " + fe.Param()
	case "min", "gte":
		return "must be at least " + fe.Param()
	case "max", "lte":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("must be at most %s characters", fe.Param())
		}
		return "must be at most " + fe.Param()
	case "oneof":
		return "must be one of: " + fe.Param()
	default:
		return fmt.Sprintf("failed validation (%s)", fe.Tag())
	}
}
