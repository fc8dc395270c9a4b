// Package test provides shared test helpers.
package test

import (
	"context"
	"testing"
	"time"

	"github.com/quickpix/quickpix/internal/accountrepo"
	"github.com/quickpix/quickpix/internal/domain"
	"github.com/quickpix/quickpix/pkg/dbpkg"
	"github.com/quickpix/quickpix/pkg/passpkg"
	"github.com/quickpix/quickpix/pkg/randompkg"
)

// RandomAccount returns a random account with the given id and balance.
func RandomAccount(id int64, balance string) domain.Account {
	return domain.Account{
		ID:        id,
		Name:      randompkg.Name(),
		TaxID:     randompkg.TaxID(),
		Email:     randompkg.Email(),
		Balance:   balance,
		CreatedAt: time.Now().Truncate(time.Second).UTC(),
	}
}

// SeedAccount creates a random account with the given balance inside a test transaction.
func SeedAccount(t *testing.T, tx dbpkg.SQLInterface, balance string) domain.Account {
	t.Helper()

	hashedPassword, err := passpkg.Hash(randompkg.String(16))
	if err != nil {
		t.Fatalf("passpkg.Hash(randompkg.String(16)) returned error: %v", err)
	}

	arg := domain.CreateAccountParams{
		Name:           randompkg.Name(),
		TaxID:          randompkg.TaxID(),
		Email:          randompkg.Email(),
		HashedPassword: hashedPassword,
		Balance:        balance,
	}

	accountRepo := accountrepo.NewTxRepoPGS(tx)

	account, err := accountRepo.Create(context.Background(), arg)
	if err != nil {
		t.Fatalf("accountRepo.Create(context.Background(), %+v) returned error: %v", arg, err)
	}

	return account
}

// SeedTransfer moves amount between two seeded accounts inside a test transaction.
func SeedTransfer(t *testing.T, tx dbpkg.SQLInterface, senderID, recipientID int64, amount string) domain.Transaction {
	t.Helper()

	const insertQuery = `
INSERT INTO transactions (sender_id, recipient_id, amount)
VALUES ($1, $2, $3)
RETURNING id, sender_id, recipient_id, amount, created_at
`

	row := tx.QueryRowContext(context.Background(), insertQuery, senderID, recipientID, amount)

	var tr domain.Transaction
	if err := row.Scan(&tr.ID, &tr.SenderID, &tr.RecipientID, &tr.Amount, &tr.CreatedAt); err != nil {
		t.Fatalf("seeding transaction returned error: %v", err)
	}

	return tr
}
