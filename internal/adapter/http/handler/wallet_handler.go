package handler

import (
	"context"

	"runnerhub/internal/adapter/http/dto"
	"runnerhub/internal/core/domain"
	"runnerhub/internal/core/ports"
	"runnerhub/pkg/response"

	"github.com/gin-gonic/gin"
)

// HeaderIdempotencyKey makes a topup or payout safe to retry.
const HeaderIdempotencyKey = "Idempotency-Key"

// WalletHandler handles wallet endpoints.
type WalletHandler struct {
	ledger ports.LedgerService
}

// NewWalletHandler creates a new WalletHandler.
func NewWalletHandler(ledger ports.LedgerService) *WalletHandler {
	return &WalletHandler{ledger: ledger}
}

// Me handles GET /api/v1/wallet/me.
func (h *WalletHandler) Me(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}
	view, err := h.ledger.GetWallet(c.Request.Context(), a.UserID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, view)
}

// ForUser handles GET /api/v1/wallet/admin/:userId.
func (h *WalletHandler) ForUser(c *gin.Context) {
	userID, ok := uuidParam(c, "userId")
	if !ok {
		return
	}
	view, err := h.ledger.GetWallet(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, view)
}

// Topup handles POST /api/v1/wallet/topup.
func (h *WalletHandler) Topup(c *gin.Context) {
	h.mutate(c, domain.EntryTypeTopup, h.ledger.Credit)
}

// Payout handles POST /api/v1/wallet/payout.
func (h *WalletHandler) Payout(c *gin.Context) {
	h.mutate(c, domain.EntryTypePayout, h.ledger.Debit)
}

func (h *WalletHandler) mutate(c *gin.Context, typ domain.EntryType, op func(ctx context.Context, req ports.LedgerRequest) (*ports.LedgerResult, error)) {
	a, ok := actor(c)
	if !ok {
		return
	}
	var req dto.MoneyRequest
	if !bindJSON(c, &req) {
		return
	}

	result, err := op(c.Request.Context(), ports.LedgerRequest{
		UserID:         a.UserID,
		Amount:         req.Amount,
		Type:           typ,
		Reference:      req.Reference,
		IdempotencyKey: c.GetHeader(HeaderIdempotencyKey),
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, result)
}
