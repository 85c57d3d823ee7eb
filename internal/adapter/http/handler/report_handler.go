package handler

import (
	"runnerhub/internal/adapter/http/dto"
	"runnerhub/internal/core/domain"
	"runnerhub/internal/core/ports"
	"runnerhub/pkg/apperror"
	"runnerhub/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// ReportHandler serves transaction listings and admin analytics.
type ReportHandler struct {
	reportingSvc ports.ReportingService
}

// NewReportHandler creates a new ReportHandler.
func NewReportHandler(reportingSvc ports.ReportingService) *ReportHandler {
	return &ReportHandler{reportingSvc: reportingSvc}
}

// ListTransactions handles GET /api/v1/transactions.
func (h *ReportHandler) ListTransactions(c *gin.Context) {
	var q dto.TransactionListQuery
	if !bindQuery(c, &q) {
		return
	}
	h.list(c, q, optionalUUID(q.UserID))
}

// MyTransactions handles GET /api/v1/transactions/my. The user_id filter is
// always the caller.
func (h *ReportHandler) MyTransactions(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}
	var q dto.TransactionListQuery
	if !bindQuery(c, &q) {
		return
	}
	h.list(c, q, &a.UserID)
}

func (h *ReportHandler) list(c *gin.Context, q dto.TransactionListQuery, userID *uuid.UUID) {
	q.Normalize()
	from, to := dayBounds(q.From, q.To)
	if from != nil && to != nil && to.Before(*from) {
		response.Error(c, apperror.Validation("from must not be after to"))
		return
	}

	params := ports.TransactionListParams{
		UserID:   userID,
		From:     from,
		To:       to,
		Page:     q.Page,
		PageSize: q.PageSize,
	}
	if q.Type != "" {
		typ := domain.TransactionType(q.Type)
		params.Type = &typ
	}

	txns, total, err := h.reportingSvc.ListTransactions(c.Request.Context(), params)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Page(c, txns, q.Page, q.PageSize, total)
}

// GetTransaction handles GET /api/v1/transactions/:id.
func (h *ReportHandler) GetTransaction(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	txn, err := h.reportingSvc.GetTransaction(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, txn)
}

// KPIs handles GET /api/v1/analytics/kpis.
func (h *ReportHandler) KPIs(c *gin.Context) {
	kpis, err := h.reportingSvc.GetKPIs(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, kpis)
}

// Revenue handles GET /api/v1/analytics/revenue?period=day|week|month|year.
func (h *ReportHandler) Revenue(c *gin.Context) {
	stats, err := h.reportingSvc.GetRevenue(c.Request.Context(), domain.Period(c.Query("period")))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, stats)
}
