// Package domain provides definitions of all entities.
package domain

import (
	"errors"
	"time"
)

var (
	// ErrAccountNotFound indicates that the account is not found.
	ErrAccountNotFound = errors.New("account not found")
	// ErrSenderNotFound indicates that the authenticated caller has no stored account.
	ErrSenderNotFound = errors.New("sender account not found")
	// ErrRecipientNotFound indicates that no account matches the given id or tax id.
	ErrRecipientNotFound = errors.New("recipient account not found")
	// ErrTaxIDAlreadyExists indicates that an account with the given tax id already exists.
	ErrTaxIDAlreadyExists = errors.New("account with this tax id already exists")
	// ErrEmailAlreadyExists indicates that an account with the given email already exists.
	ErrEmailAlreadyExists = errors.New("account with this email already exists")
	// ErrWrongPassword indicates that the given password does not match the stored hash.
	ErrWrongPassword = errors.New("wrong password")
	// ErrSearchTermTooShort indicates that the recipient search term has fewer
	// than MinSearchTermLength characters after trimming.
	ErrSearchTermTooShort = errors.New("search term must have at least 3 characters")
)

// MinSearchTermLength is the minimum recipient search term length after trimming.
const MinSearchTermLength = 3

// MaxSearchResults caps the number of accounts a recipient search returns.
const MaxSearchResults = 10

// Account holds a client identity and its monetary balance.
//
// Balance is a decimal string backed by a numeric column; it is mutated only
// through the transfer transaction, never by direct assignment.
type Account struct {
	ID             int64     `json:"id"`
	Name           string    `json:"name"`
	TaxID          string    `json:"tax_id"`
	Email          string    `json:"email"`
	HashedPassword string    `json:"-"`
	Balance        string    `json:"balance"`
	CreatedAt      time.Time `json:"created_at"`
}

// CreateAccountParams is the input data for account registration.
type CreateAccountParams struct {
	Name           string
	TaxID          string
	Email          string
	HashedPassword string
	Balance        string
}

// UpdateAccountParams is the input data for profile updates.
// ID, tax id and balance are immutable through this path.
type UpdateAccountParams struct {
	ID    int64
	Name  string
	Email string
}

// RecipientMatch is a candidate recipient returned by search.
type RecipientMatch struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	TaxID string `json:"tax_id"`
}
