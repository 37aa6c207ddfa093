package handlers

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"afrizone/internal/apperr"
)

var registerOnce sync.Once

// RegisterValidators adds the custom binding tags used by the request
// schemas. It is safe to call more than once.
func RegisterValidators() {
	registerOnce.Do(func() {
		engine, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		_ = engine.RegisterValidation("objectid", func(fl validator.FieldLevel) bool {
			return primitive.IsValidObjectID(fl.Field().String())
		})
	})
}

// validationError turns a binding failure into a Validation error listing
// one detail per offending field.
func validationError(err error) error {
	var validationErrors validator.ValidationErrors
	if errors.As(err, &validationErrors) {
		details := make([]string, 0, len(validationErrors))
		for _, fieldError := range validationErrors {
			field := fieldPath(fieldError.Namespace())
			switch fieldError.Tag() {
			case "required":
				details = append(details, fmt.Sprintf("%s is required", field))
			case "email":
				details = append(details, fmt.Sprintf("%s must be a valid email", field))
			case "oneof":
				details = append(details, fmt.Sprintf("%s must be one of %s", field, fieldError.Param()))
			case "min", "max":
				details = append(details, fmt.Sprintf("%s must be %s %s", field, boundWord(fieldError.Tag()), fieldError.Param()))
			case "objectid":
				details = append(details, fmt.Sprintf("%s must be a valid id", field))
			default:
				details = append(details, fmt.Sprintf("%s is invalid", field))
			}
		}
		return apperr.Validation("Données invalides", details...)
	}

	return apperr.Validation("Corps de requête invalide")
}

func boundWord(tag string) string {
	if tag == "min" {
		return "at least"
	}
	return "at most"
}

// fieldPath drops the struct name from a validator namespace and lower-cases
// the first letter of each segment, e.g. orderRequest.Items[0].Price -> items[0].price.
func fieldPath(namespace string) string {
	parts := strings.Split(namespace, ".")
	if len(parts) > 1 {
		parts = parts[1:]
	}
	for i, part := range parts {
		parts[i] = lowerCamel(part)
	}
	return strings.Join(parts, ".")
}

func lowerCamel(field string) string {
	if field == "" {
		return field
	}
	return strings.ToLower(field[:1]) + field[1:]
}
