// Package randompkg provides functionality for generating random application data.
package randompkg

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"strings"

	"github.com/shopspring/decimal"
)

const alphabet = "abcdefghijklmnopqrstuvwxyz"
const digits = "0123456789"

// Intn is a shortcut for generating a random integer between 0 and max using crypto/rand.
func Intn(max int) int64 {
	nBig, err := rand.Int(rand.Reader, big.NewInt(int64(max)))
	if err != nil {
		panic(err)
	}

	return nBig.Int64()
}

// IntBetween generates a random integer between min and max.
func IntBetween(min, max int) int64 {
	return Intn(max-min) + int64(min)
}

// String generates a random string of length n.
func String(n int) string {
	var sb strings.Builder

	k := len(alphabet)

	for i := 0; i < n; i++ {
		c := alphabet[Intn(k)]
		sb.WriteByte(c)
	}

	return sb.String()
}

// Digits generates a random numeric string of length n.
func Digits(n int) string {
	var sb strings.Builder

	k := len(digits)

	for i := 0; i < n; i++ {
		c := digits[Intn(k)]
		sb.WriteByte(c)
	}

	return sb.String()
}

// Name generates a random client name.
func Name() string {
	return String(10)
}

// Email generates a random email.
func Email() string {
	return fmt.Sprintf("%s@email.com", String(8))
}

// TaxID generates a random 11 digit tax id.
func TaxID() string {
	return Digits(11)
}

// MoneyAmountBetween generates a random decimal money string between min and max.
func MoneyAmountBetween(min, max int) string {
	cents := IntBetween(min*100, max*100)
	return decimal.New(cents, -2).StringFixed(2)
}
