// Package accountservice manages business logic layer of accounts.
package accountservice

import (
	"context"
	"strings"

	"github.com/rs/zerolog"

	"github.com/quickpix/quickpix/internal/domain"
	"github.com/quickpix/quickpix/pkg/errorspkg"
	"github.com/quickpix/quickpix/pkg/passpkg"
)

// Repo provides data access layer interface needed by account service layer.
//
//go:generate mockgen -source service.go -destination service_mock.go -package accountservice
type Repo interface {
	Create(ctx context.Context, arg domain.CreateAccountParams) (domain.Account, error)
	Get(ctx context.Context, id int64) (domain.Account, error)
	GetByTaxID(ctx context.Context, taxID string) (domain.Account, error)
	GetByEmail(ctx context.Context, email string) (domain.Account, error)
	Update(ctx context.Context, arg domain.UpdateAccountParams) (domain.Account, error)
	Delete(ctx context.Context, id int64) error
	List(ctx context.Context, filter string, limit, offset int32) ([]domain.Account, error)
	Search(ctx context.Context, term string, excludeID int64, limit int32) ([]domain.RecipientMatch, error)
}

// Service facilitates account service layer logic.
type Service struct {
	repo           Repo
	openingBalance string
}

// New returns account service struct to manage account business logic.
// Newly registered accounts are seeded with openingBalance.
func New(ar Repo, openingBalance string) *Service {
	return &Service{
		repo:           ar,
		openingBalance: openingBalance,
	}
}

// Create registers an account with a hashed password and the opening balance.
func (s *Service) Create(ctx context.Context, name, taxID, email, password string) (domain.Account, error) {
	l := zerolog.Ctx(ctx)

	hashedPassword, err := passpkg.Hash(password)
	if err != nil {
		l.Error().Err(err).Send()
		return domain.Account{}, errorspkg.ErrInternal
	}

	arg := domain.CreateAccountParams{
		Name:           name,
		TaxID:          taxID,
		Email:          email,
		HashedPassword: hashedPassword,
		Balance:        s.openingBalance,
	}

	account, err := s.repo.Create(ctx, arg)
	if err != nil {
		return account, err
	}

	return account, nil
}

// CheckPassword checks if the password is valid for the account with the given email.
func (s *Service) CheckPassword(ctx context.Context, email, password string) (domain.Account, error) {
	l := zerolog.Ctx(ctx)

	account, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		return domain.Account{}, err
	}

	if err := passpkg.Check(password, account.HashedPassword); err != nil {
		l.Warn().Err(err).Send()
		return domain.Account{}, domain.ErrWrongPassword
	}

	return account, nil
}

// Get returns the account with the given id.
func (s *Service) Get(ctx context.Context, id int64) (domain.Account, error) {
	return s.repo.Get(ctx, id)
}

// GetByTaxID returns the account with the given tax id.
func (s *Service) GetByTaxID(ctx context.Context, taxID string) (domain.Account, error) {
	return s.repo.GetByTaxID(ctx, taxID)
}

// Update changes the account's name and email.
func (s *Service) Update(ctx context.Context, arg domain.UpdateAccountParams) (domain.Account, error) {
	return s.repo.Update(ctx, arg)
}

// Delete removes the account and its transaction history.
func (s *Service) Delete(ctx context.Context, id int64) error {
	return s.repo.Delete(ctx, id)
}

// List returns accounts, newest first, optionally filtered by name, tax id or email.
func (s *Service) List(ctx context.Context, filter string, pageSize, pageID int32) ([]domain.Account, error) {
	limit := pageSize
	offset := (pageID - 1) * pageSize

	return s.repo.List(ctx, filter, limit, offset)
}

// SearchRecipients resolves a human entered term to candidate recipients for
// the given caller. The term must have at least three characters after
// trimming; the caller's own account is never returned.
func (s *Service) SearchRecipients(ctx context.Context, callerID int64, term string) ([]domain.RecipientMatch, error) {
	l := zerolog.Ctx(ctx)

	term = strings.TrimSpace(term)
	if len(term) < domain.MinSearchTermLength {
		l.Info().Str("term", term).Msg("search term too short")
		return nil, domain.ErrSearchTermTooShort
	}

	return s.repo.Search(ctx, term, callerID, domain.MaxSearchResults)
}
