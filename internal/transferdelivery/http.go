// Package transferdelivery manages delivery layer of transfers.
package transferdelivery

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/quickpix/quickpix/internal/domain"
	"github.com/quickpix/quickpix/internal/middleware"
	"github.com/quickpix/quickpix/pkg/errorspkg"
	"github.com/quickpix/quickpix/pkg/web"
)

// Service provides service layer interface needed by transfer delivery layer.
//
//go:generate mockgen -source http.go -destination http_mock.go -package transferdelivery
type Service interface {
	Transfer(ctx context.Context, senderID int64, req domain.TransferRequest) (domain.TransferResult, error)
	GetBalance(ctx context.Context, accountID int64) (string, error)
	GetHistory(ctx context.Context, accountID int64, pageSize, pageID int32) ([]domain.HistoryEntry, error)
}

// Handler facilitates transfer delivery layer logic.
type Handler struct {
	service Service
}

// NewHandler returns transfer handler.
func NewHandler(ts Service) *Handler {
	return &Handler{
		service: ts,
	}
}

type transferRequest struct {
	RecipientID int64  `json:"recipient_id" binding:"omitempty,min=1"`
	TaxID       string `json:"tax_id" binding:"omitempty,taxid"`
	Amount      string `json:"amount" binding:"required"`
}

type transferData struct {
	Transfer domain.TransferResult `json:"transfer"`
}

// insufficientFundsResponse carries the current balance for user display.
type insufficientFundsResponse struct {
	Error          string `json:"error"`
	CurrentBalance string `json:"current_balance"`
}

// Create handles http request to transfer money to another account.
func (h *Handler) Create(gctx *gin.Context) {
	ctx := gctx.Request.Context()
	l := zerolog.Ctx(ctx)

	var req transferRequest
	if err := gctx.ShouldBindJSON(&req); err != nil {
		l.Info().Err(err).Send()
		gctx.JSON(http.StatusBadRequest, web.Response{Error: web.BindingErrorMsg(err)})

		return
	}

	arg := domain.TransferRequest{
		RecipientID: req.RecipientID,
		TaxID:       req.TaxID,
		Amount:      req.Amount,
	}

	result, err := h.service.Transfer(ctx, middleware.AuthorizedAccount(gctx), arg)
	if err != nil {
		l.Info().Err(err).Send()

		var insufficient *domain.InsufficientFundsError
		if errors.As(err, &insufficient) {
			gctx.JSON(http.StatusBadRequest, insufficientFundsResponse{
				Error:          insufficient.Error(),
				CurrentBalance: insufficient.Balance,
			})

			return
		}

		switch err {
		case
			domain.ErrInvalidAmount,
			domain.ErrMissingRecipient,
			domain.ErrAmbiguousRecipient,
			domain.ErrSelfTransfer:
			gctx.JSON(http.StatusBadRequest, web.Error(err))

			return
		case
			domain.ErrSenderNotFound,
			domain.ErrRecipientNotFound:
			gctx.JSON(http.StatusNotFound, web.Error(err))

			return
		}

		gctx.JSON(http.StatusInternalServerError, web.Error(errorspkg.ErrInternal))

		return
	}

	gctx.JSON(http.StatusOK, web.Response{Data: transferData{result}})
}

type balanceData struct {
	Balance string `json:"balance"`
}

// GetBalance handles http request to read the caller's balance.
func (h *Handler) GetBalance(gctx *gin.Context) {
	ctx := gctx.Request.Context()

	balance, err := h.service.GetBalance(ctx, middleware.AuthorizedAccount(gctx))
	if err != nil {
		if err == domain.ErrAccountNotFound {
			gctx.JSON(http.StatusNotFound, web.Error(err))
			return
		}

		gctx.JSON(http.StatusInternalServerError, web.Error(errorspkg.ErrInternal))

		return
	}

	gctx.JSON(http.StatusOK, web.Response{Data: balanceData{balance}})
}

type historyRequest struct {
	PageID   int32 `form:"page_id" binding:"required,min=1"`
	PageSize int32 `form:"page_size" binding:"required,min=1,max=100"`
}

type historyData struct {
	Transactions []domain.HistoryEntry `json:"transactions"`
}

// GetHistory handles http request to list the caller's transactions.
func (h *Handler) GetHistory(gctx *gin.Context) {
	ctx := gctx.Request.Context()
	l := zerolog.Ctx(ctx)

	var req historyRequest
	if err := gctx.ShouldBindQuery(&req); err != nil {
		l.Info().Err(err).Send()
		gctx.JSON(http.StatusBadRequest, web.Response{Error: web.BindingErrorMsg(err)})

		return
	}

	history, err := h.service.GetHistory(ctx, middleware.AuthorizedAccount(gctx), req.PageSize, req.PageID)
	if err != nil {
		gctx.JSON(http.StatusInternalServerError, web.Error(errorspkg.ErrInternal))
		return
	}

	gctx.JSON(http.StatusOK, web.Response{Data: historyData{history}})
}
