// Package transferservice manages business logic layer of transfers.
//
// It is the only component allowed to mutate balances, and it does so solely
// through the repository's atomic transfer unit.
package transferservice

import (
	"context"
	"errors"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/quickpix/quickpix/internal/accountdelivery"
	"github.com/quickpix/quickpix/internal/domain"
)

// Repo provides data access layer interface needed by transfer service layer.
//
//go:generate mockgen -source service.go -destination service_mock.go -package transferservice
type Repo interface {
	Transfer(ctx context.Context, arg domain.TransferParams) (domain.TransferTxResult, error)
	ListHistory(ctx context.Context, arg domain.ListHistoryParams) ([]domain.HistoryEntry, error)
}

// Service facilitates transfer service layer logic.
type Service struct {
	repo           Repo
	accountService accountdelivery.Service
}

// New returns transfer service struct to manage transfer business logic.
func New(tr Repo, as accountdelivery.Service) *Service {
	return &Service{
		repo:           tr,
		accountService: as,
	}
}

// parseAmount returns the amount as a decimal or ErrInvalidAmount if it is
// missing, unparsable, zero or negative.
func parseAmount(amount string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(amount)
	if err != nil {
		return decimal.Decimal{}, domain.ErrInvalidAmount
	}

	if d.LessThanOrEqual(decimal.Zero) {
		return decimal.Decimal{}, domain.ErrInvalidAmount
	}

	return d, nil
}

// validateRequest runs the fail-fast checks that need no storage access.
func validateRequest(senderID int64, req domain.TransferRequest) error {
	if req.RecipientID == 0 && req.TaxID == "" {
		return domain.ErrMissingRecipient
	}

	if req.RecipientID != 0 && req.TaxID != "" {
		return domain.ErrAmbiguousRecipient
	}

	if req.RecipientID == senderID {
		return domain.ErrSelfTransfer
	}

	return nil
}

// resolveRecipient loads the recipient account by id or tax id.
func (s *Service) resolveRecipient(ctx context.Context, req domain.TransferRequest) (domain.Account, error) {
	var (
		recipient domain.Account
		err       error
	)

	if req.RecipientID != 0 {
		recipient, err = s.accountService.Get(ctx, req.RecipientID)
	} else {
		recipient, err = s.accountService.GetByTaxID(ctx, req.TaxID)
	}

	if err != nil {
		if errors.Is(err, domain.ErrAccountNotFound) {
			return recipient, domain.ErrRecipientNotFound
		}

		return recipient, err
	}

	return recipient, nil
}

// Transfer validates the request and moves the amount from the sender to the
// resolved recipient as one atomic unit. The returned result is computed from
// that unit, never from a re-read that could race a concurrent transfer.
func (s *Service) Transfer(ctx context.Context, senderID int64, req domain.TransferRequest) (domain.TransferResult, error) {
	l := zerolog.Ctx(ctx)

	var result domain.TransferResult

	amount, err := parseAmount(req.Amount)
	if err != nil {
		l.Info().Str("amount", req.Amount).Msg("invalid transfer amount")
		return result, err
	}

	if err := validateRequest(senderID, req); err != nil {
		l.Info().Err(err).Send()
		return result, err
	}

	// Should not fail under valid auth, but the auth collaborator is
	// upstream and the engine must not trust it blindly.
	sender, err := s.accountService.Get(ctx, senderID)
	if err != nil {
		if errors.Is(err, domain.ErrAccountNotFound) {
			l.Error().Int64("sender_id", senderID).Msg("authenticated caller has no account")
			return result, domain.ErrSenderNotFound
		}

		return result, err
	}

	balance, err := decimal.NewFromString(sender.Balance)
	if err != nil {
		l.Error().Err(err).Send()
		return result, err
	}

	if balance.LessThan(amount) {
		return result, &domain.InsufficientFundsError{Balance: sender.Balance}
	}

	recipient, err := s.resolveRecipient(ctx, req)
	if err != nil {
		l.Info().Err(err).Send()
		return result, err
	}

	// A tax id reference can still resolve to the caller's own account.
	if recipient.ID == sender.ID {
		return result, domain.ErrSelfTransfer
	}

	arg := domain.TransferParams{
		SenderID:    sender.ID,
		RecipientID: recipient.ID,
		Amount:      amount.String(),
	}

	txResult, err := s.repo.Transfer(ctx, arg)
	if err != nil {
		var insufficient *domain.InsufficientFundsError
		if errors.As(err, &insufficient) {
			// Lost a concurrent debit race: the pre-check passed but the
			// committed balance no longer covers the amount. Report the
			// post-commit balance.
			return result, s.insufficientAfterRace(ctx, senderID, sender.Balance)
		}

		return result, err
	}

	result = domain.TransferResult{
		Recipient: domain.TransferRecipient{
			Name:  txResult.Recipient.Name,
			TaxID: txResult.Recipient.TaxID,
		},
		Amount:           txResult.Transaction.Amount,
		NewSenderBalance: txResult.Sender.Balance,
	}

	return result, nil
}

// insufficientAfterRace re-reads the sender balance after a rolled back
// transfer so the error carries the balance the losing request was actually
// judged against. Falls back to the last observed balance if the read fails.
func (s *Service) insufficientAfterRace(ctx context.Context, senderID int64, lastSeen string) error {
	l := zerolog.Ctx(ctx)

	sender, err := s.accountService.Get(ctx, senderID)
	if err != nil {
		l.Warn().Err(err).Msg("could not re-read sender balance after lost race")
		return &domain.InsufficientFundsError{Balance: lastSeen}
	}

	return &domain.InsufficientFundsError{Balance: sender.Balance}
}

// GetBalance returns the current balance of the given account.
func (s *Service) GetBalance(ctx context.Context, accountID int64) (string, error) {
	account, err := s.accountService.Get(ctx, accountID)
	if err != nil {
		return "", err
	}

	return account.Balance, nil
}

// GetHistory returns the account's transactions newest first, paginated.
func (s *Service) GetHistory(ctx context.Context, accountID int64, pageSize, pageID int32) ([]domain.HistoryEntry, error) {
	arg := domain.ListHistoryParams{
		AccountID: accountID,
		Limit:     pageSize,
		Offset:    (pageID - 1) * pageSize,
	}

	return s.repo.ListHistory(ctx, arg)
}
