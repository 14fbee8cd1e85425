package apperrors

import (
	"errors"
	"fmt"
	"unicode"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"
)

// FromValidation convierte los errores de validator en un VALIDATION_ERROR con un detalle por campo.
// Si err no viene de validator se devuelve como único detalle.
func FromValidation(err error) *AppError {
	appErr := Validation("validation failed")

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return appErr.WithDetails(err.Error())
	}
	for _, fe := range verrs {
		appErr.WithDetails(fieldMessage(fe))
	}
	return appErr
}

func fieldMessage(fe validator.FieldError) string {
	field := lowerFirst(fe.Field())
	switch fe.Tag() {
	case "required":
		return field + " is required"
	case "gte":
		return fmt.Sprintf("%s must be greater than or equal to %s", field, fe.Param())
	default:
		return fmt.Sprintf("%s failed on %s", field, fe.Tag())
	}
}

func lowerFirst(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToLower(r)) + s[size:]
}
