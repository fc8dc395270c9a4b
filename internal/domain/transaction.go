package domain

import (
	"errors"
	"fmt"
	"time"
)

var (
	// ErrInvalidAmount indicates a missing, zero, negative or unparsable amount.
	ErrInvalidAmount = errors.New("amount must be greater than zero")
	// ErrMissingRecipient indicates that neither a recipient id nor a tax id was supplied.
	ErrMissingRecipient = errors.New("recipient id or tax id is required")
	// ErrAmbiguousRecipient indicates that both a recipient id and a tax id were supplied.
	ErrAmbiguousRecipient = errors.New("supply either recipient id or tax id, not both")
	// ErrSelfTransfer indicates that the resolved recipient equals the caller.
	ErrSelfTransfer = errors.New("cannot transfer to your own account")
	// ErrTransactionNotFound indicates that the transaction is not found.
	ErrTransactionNotFound = errors.New("transaction not found")
)

// InsufficientFundsError indicates that the sender balance is below the
// requested amount. It carries the current balance for user display.
type InsufficientFundsError struct {
	Balance string
}

func (e *InsufficientFundsError) Error() string {
	return fmt.Sprintf("insufficient funds: current balance %s", e.Balance)
}

// Transaction is an immutable record of one committed transfer.
type Transaction struct {
	ID          int64     `json:"id"`
	SenderID    int64     `json:"sender_id"`
	RecipientID int64     `json:"recipient_id"`
	Amount      string    `json:"amount"` // always positive
	CreatedAt   time.Time `json:"created_at"`
}

// TransferParams is the input data for the transfer transaction.
type TransferParams struct {
	SenderID    int64
	RecipientID int64
	Amount      string
}

// TransferRequest is the caller facing transfer input. Exactly one of
// RecipientID and TaxID must be set.
type TransferRequest struct {
	RecipientID int64
	TaxID       string
	Amount      string
}

// TransferRecipient identifies the resolved recipient for user display.
type TransferRecipient struct {
	Name  string `json:"name"`
	TaxID string `json:"tax_id"`
}

// TransferResult is the caller facing outcome of a committed transfer. All
// fields come from the same atomic unit that moved the money.
type TransferResult struct {
	Recipient        TransferRecipient `json:"recipient"`
	Amount           string            `json:"amount"`
	NewSenderBalance string            `json:"new_sender_balance"`
}

// TransferTxResult is the result of the transfer transaction. Both accounts
// carry the balances committed by the same atomic unit.
type TransferTxResult struct {
	Transaction Transaction `json:"transaction"`
	Sender      Account     `json:"sender"`
	Recipient   Account     `json:"recipient"`
}

// Transfer directions as seen from the queried account.
const (
	DirectionIncoming = "incoming"
	DirectionOutgoing = "outgoing"
)

// HistoryEntry is one transaction projected for the account that queries it.
type HistoryEntry struct {
	ID               int64     `json:"id"`
	CounterpartyName string    `json:"counterparty_name"`
	Amount           string    `json:"amount"`
	Direction        string    `json:"direction"`
	CreatedAt        time.Time `json:"created_at"`
}

// ListHistoryParams is the input data to page through an account's history.
type ListHistoryParams struct {
	AccountID int64
	Limit     int32
	Offset    int32
}
