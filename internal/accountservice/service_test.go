package accountservice

import (
	"context"
	"testing"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/require"

	"github.com/quickpix/quickpix/internal/domain"
	"github.com/quickpix/quickpix/pkg/passpkg"
	"github.com/quickpix/quickpix/pkg/randompkg"
)

const testOpeningBalance = "1000.00"

func TestCreate(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := NewMockRepo(ctrl)
	service := New(repo, testOpeningBalance)

	name := randompkg.Name()
	taxID := randompkg.TaxID()
	email := randompkg.Email()
	password := randompkg.String(16)

	repo.EXPECT().
		Create(gomock.Any(), gomock.Any()).
		Times(1).
		DoAndReturn(func(_ context.Context, arg domain.CreateAccountParams) (domain.Account, error) {
			require.Equal(t, name, arg.Name)
			require.Equal(t, taxID, arg.TaxID)
			require.Equal(t, email, arg.Email)
			require.Equal(t, testOpeningBalance, arg.Balance)

			// The stored credential must be a verifiable hash, never the plain password.
			require.NotEqual(t, password, arg.HashedPassword)
			require.NoError(t, passpkg.Check(password, arg.HashedPassword))

			return domain.Account{
				ID:             1,
				Name:           arg.Name,
				TaxID:          arg.TaxID,
				Email:          arg.Email,
				HashedPassword: arg.HashedPassword,
				Balance:        arg.Balance,
			}, nil
		})

	account, err := service.Create(context.Background(), name, taxID, email, password)
	require.NoError(t, err)
	require.Equal(t, testOpeningBalance, account.Balance)
}

func TestCheckPassword(t *testing.T) {
	t.Parallel()

	password := randompkg.String(16)

	hashedPassword, err := passpkg.Hash(password)
	require.NoError(t, err)

	stored := domain.Account{
		ID:             1,
		Email:          randompkg.Email(),
		HashedPassword: hashedPassword,
	}

	testCases := []struct {
		name          string
		password      string
		buildStubs    func(repo *MockRepo)
		checkResponse func(t *testing.T, account domain.Account, err error)
	}{
		{
			name:     "OK",
			password: password,
			buildStubs: func(repo *MockRepo) {
				repo.EXPECT().GetByEmail(gomock.Any(), gomock.Eq(stored.Email)).
					Times(1).
					Return(stored, nil)
			},
			checkResponse: func(t *testing.T, account domain.Account, err error) {
				require.NoError(t, err)
				require.Equal(t, stored.ID, account.ID)
			},
		},
		{
			name:     "WrongPassword",
			password: "not-the-password",
			buildStubs: func(repo *MockRepo) {
				repo.EXPECT().GetByEmail(gomock.Any(), gomock.Eq(stored.Email)).
					Times(1).
					Return(stored, nil)
			},
			checkResponse: func(t *testing.T, account domain.Account, err error) {
				require.Empty(t, account)
				require.ErrorIs(t, err, domain.ErrWrongPassword)
			},
		},
		{
			name:     "AccountNotFound",
			password: password,
			buildStubs: func(repo *MockRepo) {
				repo.EXPECT().GetByEmail(gomock.Any(), gomock.Eq(stored.Email)).
					Times(1).
					Return(domain.Account{}, domain.ErrAccountNotFound)
			},
			checkResponse: func(t *testing.T, account domain.Account, err error) {
				require.Empty(t, account)
				require.ErrorIs(t, err, domain.ErrAccountNotFound)
			},
		},
	}

	for i := range testCases {
		tc := testCases[i]

		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			repo := NewMockRepo(ctrl)
			service := New(repo, testOpeningBalance)

			tc.buildStubs(repo)

			account, err := service.CheckPassword(context.Background(), stored.Email, tc.password)
			tc.checkResponse(t, account, err)
		})
	}
}

func TestSearchRecipients(t *testing.T) {
	const callerID = int64(7)

	matches := []domain.RecipientMatch{
		{ID: 8, Name: "abcde", TaxID: "12345678901"},
	}

	testCases := []struct {
		name          string
		term          string
		buildStubs    func(repo *MockRepo)
		checkResponse func(t *testing.T, got []domain.RecipientMatch, err error)
	}{
		{
			name: "TooShort",
			term: "ab",
			buildStubs: func(repo *MockRepo) {
				repo.EXPECT().Search(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Times(0)
			},
			checkResponse: func(t *testing.T, got []domain.RecipientMatch, err error) {
				require.Nil(t, got)
				require.ErrorIs(t, err, domain.ErrSearchTermTooShort)
			},
		},
		{
			name: "TooShortAfterTrim",
			term: "  ab  ",
			buildStubs: func(repo *MockRepo) {
				repo.EXPECT().Search(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Times(0)
			},
			checkResponse: func(t *testing.T, got []domain.RecipientMatch, err error) {
				require.Nil(t, got)
				require.ErrorIs(t, err, domain.ErrSearchTermTooShort)
			},
		},
		{
			name: "TrimsBeforeSearching",
			term: " abc ",
			buildStubs: func(repo *MockRepo) {
				repo.EXPECT().Search(gomock.Any(), gomock.Eq("abc"), gomock.Eq(callerID), gomock.Eq(int32(domain.MaxSearchResults))).
					Times(1).
					Return(matches, nil)
			},
			checkResponse: func(t *testing.T, got []domain.RecipientMatch, err error) {
				require.NoError(t, err)
				require.Equal(t, matches, got)
			},
		},
	}

	for i := range testCases {
		tc := testCases[i]

		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			repo := NewMockRepo(ctrl)
			service := New(repo, testOpeningBalance)

			tc.buildStubs(repo)

			got, err := service.SearchRecipients(context.Background(), callerID, tc.term)
			tc.checkResponse(t, got, err)
		})
	}
}
