package services

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"storefront/internal/apperrors"
)

const (
	msgMissingFields = "Missing required fields"
	msgInvalidFields = "Invalid product fields"
)

func newValidator() *validator.Validate {
	v := validator.New()
	// Report fields by their JSON names.
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// validateStruct runs the validator on s and converts failures into an
// apperrors.ValidationError. Any missing required field wins over range errors.
func validateStruct(v *validator.Validate, s any) error {
	err := v.Struct(s)
	if err == nil {
		return nil
	}
	validationErrors, ok := err.(validator.ValidationErrors)
	if !ok {
		return err
	}

	missing := make(map[string]string)
	invalid := make(map[string]string)
	for _, e := range validationErrors {
		if e.Tag() == "required" {
			missing[e.Field()] = fmt.Sprintf("%s is required", e.Field())
			continue
		}
		invalid[e.Field()] = fieldMessage(e)
	}
	if len(missing) > 0 {
		return apperrors.NewValidationError(msgMissingFields, missing)
	}
	return apperrors.NewValidationError(msgInvalidFields, invalid)
}

func fieldMessage(e validator.FieldError) string {
	switch e.Tag() {
	case "gte":
		return fmt.Sprintf("%s must be at least %s", e.Field(), e.Param())
	case "lte":
		return fmt.Sprintf("%s must be at most %s", e.Field(), e.Param())
	case "min":
		return fmt.Sprintf("%s must not be empty", e.Field())
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", e.Field(), strings.ReplaceAll(e.Param(), " ", ", "))
	default:
		return fmt.Sprintf("%s failed on the '%s' rule", e.Field(), e.Tag())
	}
}
