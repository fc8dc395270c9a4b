package transferdelivery

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/require"

	"github.com/quickpix/quickpix/internal/accountdelivery"
	"github.com/quickpix/quickpix/internal/domain"
	"github.com/quickpix/quickpix/internal/middleware"
	"github.com/quickpix/quickpix/pkg/errorspkg"
	"github.com/quickpix/quickpix/pkg/randompkg"
	"github.com/quickpix/quickpix/pkg/tokenpkg"
)

const testSenderID = int64(1)

func newTestServer(t *testing.T, service Service) (*gin.Engine, tokenpkg.Maker) {
	t.Helper()

	tokenMaker, err := tokenpkg.NewPasetoMaker(randompkg.String(32))
	require.NoError(t, err)

	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		// Registering twice is harmless; tests share the binding engine.
		require.NoError(t, v.RegisterValidation("taxid", accountdelivery.ValidTaxID))
	}

	handler := NewHandler(service)

	gin.SetMode(gin.ReleaseMode)
	server := gin.New()

	authRoutes := server.Group("/").Use(middleware.AuthMiddleware(tokenMaker))
	authRoutes.POST("/transfers", handler.Create)
	authRoutes.GET("/balance", handler.GetBalance)
	authRoutes.GET("/transactions", handler.GetHistory)

	return server, tokenMaker
}

func TestCreate(t *testing.T) {
	result := domain.TransferResult{
		Recipient: domain.TransferRecipient{
			Name:  "maria",
			TaxID: "12345678901",
		},
		Amount:           "60.00",
		NewSenderBalance: "40.00",
	}

	testCases := []struct {
		name          string
		body          gin.H
		setupAuth     func(t *testing.T, r *http.Request, tokenMaker tokenpkg.Maker)
		buildStubs    func(service *MockService)
		checkResponse func(t *testing.T, recorder *httptest.ResponseRecorder)
	}{
		{
			name: "NoAuthorization",
			body: gin.H{"recipient_id": 2, "amount": "60.00"},
			setupAuth: func(t *testing.T, r *http.Request, tokenMaker tokenpkg.Maker) {
			},
			buildStubs: func(service *MockService) {
				service.EXPECT().Transfer(gomock.Any(), gomock.Any(), gomock.Any()).Times(0)
			},
			checkResponse: func(t *testing.T, recorder *httptest.ResponseRecorder) {
				require.Equal(t, http.StatusUnauthorized, recorder.Code)
			},
		},
		{
			name: "MissingAmount",
			body: gin.H{"recipient_id": 2},
			setupAuth: func(t *testing.T, r *http.Request, tokenMaker tokenpkg.Maker) {
				err := middleware.AddAuthorization(r, tokenMaker, middleware.AuthTypeBearer, testSenderID, time.Minute)
				require.NoError(t, err)
			},
			buildStubs: func(service *MockService) {
				service.EXPECT().Transfer(gomock.Any(), gomock.Any(), gomock.Any()).Times(0)
			},
			checkResponse: func(t *testing.T, recorder *httptest.ResponseRecorder) {
				require.Equal(t, http.StatusBadRequest, recorder.Code)
			},
		},
		{
			name: "MalformedTaxID",
			body: gin.H{"tax_id": "12ab", "amount": "60.00"},
			setupAuth: func(t *testing.T, r *http.Request, tokenMaker tokenpkg.Maker) {
				err := middleware.AddAuthorization(r, tokenMaker, middleware.AuthTypeBearer, testSenderID, time.Minute)
				require.NoError(t, err)
			},
			buildStubs: func(service *MockService) {
				service.EXPECT().Transfer(gomock.Any(), gomock.Any(), gomock.Any()).Times(0)
			},
			checkResponse: func(t *testing.T, recorder *httptest.ResponseRecorder) {
				require.Equal(t, http.StatusBadRequest, recorder.Code)
			},
		},
		{
			name: "SelfTransfer",
			body: gin.H{"recipient_id": 1, "amount": "60.00"},
			setupAuth: func(t *testing.T, r *http.Request, tokenMaker tokenpkg.Maker) {
				err := middleware.AddAuthorization(r, tokenMaker, middleware.AuthTypeBearer, testSenderID, time.Minute)
				require.NoError(t, err)
			},
			buildStubs: func(service *MockService) {
				service.EXPECT().Transfer(gomock.Any(), gomock.Eq(testSenderID), gomock.Any()).
					Times(1).
					Return(domain.TransferResult{}, domain.ErrSelfTransfer)
			},
			checkResponse: func(t *testing.T, recorder *httptest.ResponseRecorder) {
				require.Equal(t, http.StatusBadRequest, recorder.Code)
			},
		},
		{
			name: "RecipientNotFound",
			body: gin.H{"recipient_id": 404, "amount": "60.00"},
			setupAuth: func(t *testing.T, r *http.Request, tokenMaker tokenpkg.Maker) {
				err := middleware.AddAuthorization(r, tokenMaker, middleware.AuthTypeBearer, testSenderID, time.Minute)
				require.NoError(t, err)
			},
			buildStubs: func(service *MockService) {
				service.EXPECT().Transfer(gomock.Any(), gomock.Eq(testSenderID), gomock.Any()).
					Times(1).
					Return(domain.TransferResult{}, domain.ErrRecipientNotFound)
			},
			checkResponse: func(t *testing.T, recorder *httptest.ResponseRecorder) {
				require.Equal(t, http.StatusNotFound, recorder.Code)
			},
		},
		{
			name: "InsufficientFunds",
			body: gin.H{"recipient_id": 2, "amount": "100.01"},
			setupAuth: func(t *testing.T, r *http.Request, tokenMaker tokenpkg.Maker) {
				err := middleware.AddAuthorization(r, tokenMaker, middleware.AuthTypeBearer, testSenderID, time.Minute)
				require.NoError(t, err)
			},
			buildStubs: func(service *MockService) {
				service.EXPECT().Transfer(gomock.Any(), gomock.Eq(testSenderID), gomock.Any()).
					Times(1).
					Return(domain.TransferResult{}, &domain.InsufficientFundsError{Balance: "100.00"})
			},
			checkResponse: func(t *testing.T, recorder *httptest.ResponseRecorder) {
				require.Equal(t, http.StatusBadRequest, recorder.Code)

				var got insufficientFundsResponse
				require.NoError(t, json.NewDecoder(recorder.Body).Decode(&got))
				require.Equal(t, "100.00", got.CurrentBalance)
				require.NotEmpty(t, got.Error)
			},
		},
		{
			name: "StorageFailure",
			body: gin.H{"recipient_id": 2, "amount": "60.00"},
			setupAuth: func(t *testing.T, r *http.Request, tokenMaker tokenpkg.Maker) {
				err := middleware.AddAuthorization(r, tokenMaker, middleware.AuthTypeBearer, testSenderID, time.Minute)
				require.NoError(t, err)
			},
			buildStubs: func(service *MockService) {
				service.EXPECT().Transfer(gomock.Any(), gomock.Eq(testSenderID), gomock.Any()).
					Times(1).
					Return(domain.TransferResult{}, errorspkg.ErrInternal)
			},
			checkResponse: func(t *testing.T, recorder *httptest.ResponseRecorder) {
				require.Equal(t, http.StatusInternalServerError, recorder.Code)
			},
		},
		{
			name: "OK",
			body: gin.H{"recipient_id": 2, "amount": "60.00"},
			setupAuth: func(t *testing.T, r *http.Request, tokenMaker tokenpkg.Maker) {
				err := middleware.AddAuthorization(r, tokenMaker, middleware.AuthTypeBearer, testSenderID, time.Minute)
				require.NoError(t, err)
			},
			buildStubs: func(service *MockService) {
				service.EXPECT().Transfer(gomock.Any(), gomock.Eq(testSenderID), gomock.Eq(domain.TransferRequest{
					RecipientID: 2,
					Amount:      "60.00",
				})).
					Times(1).
					Return(result, nil)
			},
			checkResponse: func(t *testing.T, recorder *httptest.ResponseRecorder) {
				require.Equal(t, http.StatusOK, recorder.Code)

				var got struct {
					Data struct {
						Transfer domain.TransferResult `json:"transfer"`
					} `json:"data"`
				}
				require.NoError(t, json.NewDecoder(recorder.Body).Decode(&got))
				require.Equal(t, result, got.Data.Transfer)
			},
		},
	}

	for i := range testCases {
		tc := testCases[i]

		t.Run(tc.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			service := NewMockService(ctrl)
			tc.buildStubs(service)

			server, tokenMaker := newTestServer(t, service)

			body, err := json.Marshal(tc.body)
			require.NoError(t, err)

			request, err := http.NewRequest(http.MethodPost, "/transfers", bytes.NewReader(body))
			require.NoError(t, err)

			tc.setupAuth(t, request, tokenMaker)

			recorder := httptest.NewRecorder()
			server.ServeHTTP(recorder, request)

			tc.checkResponse(t, recorder)
		})
	}
}

func TestGetBalance(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	service := NewMockService(ctrl)
	service.EXPECT().GetBalance(gomock.Any(), gomock.Eq(testSenderID)).
		Times(1).
		Return("40.00", nil)

	server, tokenMaker := newTestServer(t, service)

	request, err := http.NewRequest(http.MethodGet, "/balance", nil)
	require.NoError(t, err)
	require.NoError(t, middleware.AddAuthorization(request, tokenMaker, middleware.AuthTypeBearer, testSenderID, time.Minute))

	recorder := httptest.NewRecorder()
	server.ServeHTTP(recorder, request)

	require.Equal(t, http.StatusOK, recorder.Code)

	var got struct {
		Data struct {
			Balance string `json:"balance"`
		} `json:"data"`
	}
	require.NoError(t, json.NewDecoder(recorder.Body).Decode(&got))
	require.Equal(t, "40.00", got.Data.Balance)
}

func TestGetHistory(t *testing.T) {
	history := []domain.HistoryEntry{
		{ID: 2, CounterpartyName: "maria", Amount: "10.00", Direction: domain.DirectionIncoming},
		{ID: 1, CounterpartyName: "joao", Amount: "25.00", Direction: domain.DirectionOutgoing},
	}

	testCases := []struct {
		name          string
		query         string
		buildStubs    func(service *MockService)
		checkResponse func(t *testing.T, recorder *httptest.ResponseRecorder)
	}{
		{
			name:  "MissingPagination",
			query: "",
			buildStubs: func(service *MockService) {
				service.EXPECT().GetHistory(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Times(0)
			},
			checkResponse: func(t *testing.T, recorder *httptest.ResponseRecorder) {
				require.Equal(t, http.StatusBadRequest, recorder.Code)
			},
		},
		{
			name:  "OK",
			query: "?page_id=1&page_size=20",
			buildStubs: func(service *MockService) {
				service.EXPECT().GetHistory(gomock.Any(), gomock.Eq(testSenderID), gomock.Eq(int32(20)), gomock.Eq(int32(1))).
					Times(1).
					Return(history, nil)
			},
			checkResponse: func(t *testing.T, recorder *httptest.ResponseRecorder) {
				require.Equal(t, http.StatusOK, recorder.Code)

				var got struct {
					Data struct {
						Transactions []domain.HistoryEntry `json:"transactions"`
					} `json:"data"`
				}
				require.NoError(t, json.NewDecoder(recorder.Body).Decode(&got))
				require.Equal(t, history, got.Data.Transactions)
			},
		},
	}

	for i := range testCases {
		tc := testCases[i]

		t.Run(tc.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			service := NewMockService(ctrl)
			tc.buildStubs(service)

			server, tokenMaker := newTestServer(t, service)

			request, err := http.NewRequest(http.MethodGet, "/transactions"+tc.query, nil)
			require.NoError(t, err)
			require.NoError(t, middleware.AddAuthorization(request, tokenMaker, middleware.AuthTypeBearer, testSenderID, time.Minute))

			recorder := httptest.NewRecorder()
			server.ServeHTTP(recorder, request)

			tc.checkResponse(t, recorder)
		})
	}
}
