package accountdelivery

import (
	"github.com/go-playground/validator/v10"
)

// cpfLength and cnpjLength are the digit counts of the two tax id kinds.
const (
	cpfLength  = 11
	cnpjLength = 14
)

// ValidTaxID reports whether the field is a plausible CPF or CNPJ: digits
// only, 11 or 14 of them.
var ValidTaxID validator.Func = func(fl validator.FieldLevel) bool {
	taxID, ok := fl.Field().Interface().(string)
	if !ok {
		return false
	}

	if len(taxID) != cpfLength && len(taxID) != cnpjLength {
		return false
	}

	for _, c := range taxID {
		if c < '0' || c > '9' {
			return false
		}
	}

	return true
}
