package web

import (
	"errors"

	"github.com/go-playground/validator/v10"
)

// GetErrorMsg returns a user readable message for the failed binding tag.
func GetErrorMsg(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return " is required"
	case "min":
		return " must be at least " + fe.Param()
	case "max":
		return " must be at most " + fe.Param()
	case "email":
		return " must be a valid email"
	case "taxid":
		return " must be a valid CPF or CNPJ"
	}

	return " is invalid"
}

// BindingErrorMsg extracts the first field error message from a gin binding err.
func BindingErrorMsg(err error) string {
	var ve validator.ValidationErrors
	if errors.As(err, &ve) {
		field := ve[0]
		return field.Field() + GetErrorMsg(field)
	}

	return err.Error()
}
