// Package transactionrepo manages repository layer of the transaction log.
package transactionrepo

import (
	"context"
	"database/sql"

	"github.com/lib/pq"
	"github.com/rs/zerolog"

	"github.com/quickpix/quickpix/internal/accountrepo"
	"github.com/quickpix/quickpix/internal/domain"
	"github.com/quickpix/quickpix/pkg/dbpkg"
	"github.com/quickpix/quickpix/pkg/errorspkg"
)

// RepoPGS facilitates transaction repository layer logic.
type RepoPGS struct {
	db   dbpkg.SQLInterface
	conn *sql.DB
}

// NewRepoPGS returns transaction RepoPGS with a connection to start transactions.
func NewRepoPGS(db *sql.DB) *RepoPGS {
	return &RepoPGS{
		db:   db,
		conn: db,
	}
}

// NewTxRepoPGS returns transaction RepoPGS scoped to an enclosing transaction.
func NewTxRepoPGS(db dbpkg.SQLInterface) *RepoPGS {
	return &RepoPGS{
		db: db,
	}
}

const createQuery = `
INSERT INTO
    transactions (sender_id, recipient_id, amount)
VALUES
    ($1, $2, $3)
RETURNING id, sender_id, recipient_id, amount, created_at
`

// Create appends the transaction record and then returns it.
func (r *RepoPGS) Create(ctx context.Context, arg domain.TransferParams) (domain.Transaction, error) {
	l := zerolog.Ctx(ctx)

	row := r.db.QueryRowContext(ctx, createQuery, arg.SenderID, arg.RecipientID, arg.Amount)

	var t domain.Transaction
	err := row.Scan(
		&t.ID,
		&t.SenderID,
		&t.RecipientID,
		&t.Amount,
		&t.CreatedAt,
	)

	if err != nil {
		l.Error().Err(err).Msgf("Create(ctx, %+v)", arg)

		if pqErr, ok := err.(*pq.Error); ok {
			switch pqErr.Constraint {
			case "transactions_sender_id_fkey":
				return t, domain.ErrSenderNotFound
			case "transactions_recipient_id_fkey":
				return t, domain.ErrRecipientNotFound
			case "transactions_amount_check":
				return t, domain.ErrInvalidAmount
			}
		}

		return t, errorspkg.ErrInternal
	}

	return t, nil
}

const getQuery = `
SELECT
	id, sender_id, recipient_id, amount, created_at
FROM transactions
WHERE id = $1
`

// Get returns the transaction with the given id.
func (r *RepoPGS) Get(ctx context.Context, id int64) (domain.Transaction, error) {
	l := zerolog.Ctx(ctx)

	row := r.db.QueryRowContext(ctx, getQuery, id)

	var t domain.Transaction

	err := row.Scan(
		&t.ID,
		&t.SenderID,
		&t.RecipientID,
		&t.Amount,
		&t.CreatedAt,
	)

	if err != nil {
		l.Error().Err(err).Send()

		if err == sql.ErrNoRows {
			return t, domain.ErrTransactionNotFound
		}

		return t, errorspkg.ErrInternal
	}

	return t, nil
}

const listHistoryQuery = `
SELECT
    t.id,
    CASE WHEN t.sender_id = $1 THEN r.name ELSE s.name END AS counterparty_name,
    t.amount,
    CASE WHEN t.sender_id = $1 THEN 'outgoing' ELSE 'incoming' END AS direction,
    t.created_at
FROM transactions t
JOIN accounts s ON s.id = t.sender_id
JOIN accounts r ON r.id = t.recipient_id
WHERE t.sender_id = $1 OR t.recipient_id = $1
ORDER BY t.created_at DESC, t.id DESC
LIMIT $2 OFFSET $3
`

// ListHistory returns the account's transactions newest first, each labeled
// with direction and counterparty name as seen from the given account.
func (r *RepoPGS) ListHistory(ctx context.Context, arg domain.ListHistoryParams) ([]domain.HistoryEntry, error) {
	l := zerolog.Ctx(ctx)

	rows, err := r.db.QueryContext(ctx, listHistoryQuery, arg.AccountID, arg.Limit, arg.Offset)
	if err != nil {
		l.Error().Err(err).Send()
		return nil, errorspkg.ErrInternal
	}
	defer rows.Close()

	items := []domain.HistoryEntry{}

	for rows.Next() {
		var e domain.HistoryEntry
		if err := rows.Scan(
			&e.ID,
			&e.CounterpartyName,
			&e.Amount,
			&e.Direction,
			&e.CreatedAt,
		); err != nil {
			l.Error().Err(err).Send()
			return nil, errorspkg.ErrInternal
		}

		items = append(items, e)
	}

	if err := rows.Err(); err != nil {
		l.Error().Err(err).Send()
		return nil, errorspkg.ErrInternal
	}

	return items, nil
}

// Transfer moves money between two accounts.
//
// It appends the transaction record and updates both balances within a single
// database transaction. Any failure rolls the whole unit back, so no partial
// balance change or orphan record can persist.
func (r *RepoPGS) Transfer(ctx context.Context, arg domain.TransferParams) (domain.TransferTxResult, error) {
	l := zerolog.Ctx(ctx)

	var result domain.TransferTxResult

	tx, err := r.conn.BeginTx(ctx, nil)
	if err != nil {
		l.Error().Err(err).Send()
		return result, errorspkg.ErrInternal
	}

	defer func() {
		if err := tx.Rollback(); err != nil && err != sql.ErrTxDone {
			l.Error().Err(err).Send()
		}
	}()

	txRepo := NewTxRepoPGS(tx)
	accountRepo := accountrepo.NewTxRepoPGS(tx)

	result.Transaction, err = txRepo.Create(ctx, arg)
	if err != nil {
		l.Error().Err(err).Send()
		return result, err
	}

	var sender, recipient domain.Account
	// To avoid deadlocks execute balance updates in consistent id order.
	if arg.SenderID < arg.RecipientID {
		argAddBalance := addBalanceParams{
			account1ID: arg.SenderID,
			delta1:     "-" + arg.Amount,
			account2ID: arg.RecipientID,
			delta2:     arg.Amount,
		}

		sender, recipient, err = addBalances(ctx, accountRepo, argAddBalance)
	} else {
		argAddBalance := addBalanceParams{
			account1ID: arg.RecipientID,
			delta1:     arg.Amount,
			account2ID: arg.SenderID,
			delta2:     "-" + arg.Amount,
		}

		recipient, sender, err = addBalances(ctx, accountRepo, argAddBalance)
	}

	if err != nil {
		l.Error().Err(err).Send()
		return domain.TransferTxResult{}, err
	}

	result.Sender, result.Recipient = sender, recipient

	if err := tx.Commit(); err != nil {
		l.Error().Err(err).Send()
		return domain.TransferTxResult{}, errorspkg.ErrInternal
	}

	return result, nil
}

type addBalanceParams struct {
	account1ID int64
	delta1     string
	account2ID int64
	delta2     string
}

func addBalances(ctx context.Context, r *accountrepo.RepoPGS, arg addBalanceParams) (domain.Account, domain.Account, error) {
	account1, err := r.AddBalance(ctx, arg.delta1, arg.account1ID)
	if err != nil {
		return domain.Account{}, domain.Account{}, err
	}

	account2, err := r.AddBalance(ctx, arg.delta2, arg.account2ID)
	if err != nil {
		return domain.Account{}, domain.Account{}, err
	}

	return account1, account2, nil
}
