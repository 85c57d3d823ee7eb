package handler

import (
	"runnerhub/internal/adapter/http/dto"
	"runnerhub/internal/core/ports"
	"runnerhub/pkg/apperror"
	"runnerhub/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// PaymentHandler handles hosted gateway payments.
type PaymentHandler struct {
	paymentSvc ports.PaymentService
}

// NewPaymentHandler creates a new PaymentHandler.
func NewPaymentHandler(paymentSvc ports.PaymentService) *PaymentHandler {
	return &PaymentHandler{paymentSvc: paymentSvc}
}

// Initiate handles POST /api/v1/payments/initiate.
func (h *PaymentHandler) Initiate(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}
	var req dto.InitiatePaymentRequest
	if !bindJSON(c, &req) {
		return
	}

	result, err := h.paymentSvc.Initiate(c.Request.Context(), ports.InitiatePaymentRequest{
		ClientID: a.UserID,
		TaskID:   uuid.MustParse(req.TaskID),
		Amount:   req.Amount,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, result)
}

// Verify handles POST /api/v1/payments/verify, the gateway's return post.
// It accepts form or JSON bodies and is not authenticated; the checksum is
// the proof of origin.
func (h *PaymentHandler) Verify(c *gin.Context) {
	var req dto.VerifyPaymentRequest
	if err := c.ShouldBind(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}

	status, err := h.paymentSvc.Verify(c.Request.Context(), ports.GatewayCallback{
		PayRequestID:      req.PayRequestID,
		Reference:         req.Reference,
		TransactionStatus: req.TransactionStatus,
		Checksum:          req.Checksum,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, gin.H{"status": status})
}
