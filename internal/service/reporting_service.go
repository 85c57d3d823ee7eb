package service

import (
	"context"
	"fmt"
	"time"

	"runnerhub/internal/core/domain"
	"runnerhub/internal/core/ports"
	"runnerhub/pkg/apperror"

	"github.com/google/uuid"
)

// reportingService implements ports.ReportingService.
type reportingService struct {
	taskRepo    ports.TaskRepository
	userRepo    ports.UserRepository
	txRepo      ports.TransactionRepository
	paymentRepo ports.PaymentRepository
	now         func() time.Time
}

// NewReportingService creates a new reporting service.
func NewReportingService(
	taskRepo ports.TaskRepository,
	userRepo ports.UserRepository,
	txRepo ports.TransactionRepository,
	paymentRepo ports.PaymentRepository,
) ports.ReportingService {
	return &reportingService{
		taskRepo:    taskRepo,
		userRepo:    userRepo,
		txRepo:      txRepo,
		paymentRepo: paymentRepo,
		now:         func() time.Time { return time.Now().UTC() },
	}
}

// GetKPIs returns the platform-wide dashboard numbers.
func (s *reportingService) GetKPIs(ctx context.Context) (*ports.PlatformKPIs, error) {
	byStatus, err := s.taskRepo.CountByStatus(ctx)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("count tasks: %w", err))
	}
	byRole, err := s.userRepo.CountByRole(ctx)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("count users: %w", err))
	}
	revenue, err := s.paymentRepo.SumSuccessfulSince(ctx, nil)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("sum revenue: %w", err))
	}

	var total int64
	for _, n := range byStatus {
		total += n
	}

	return &ports.PlatformKPIs{
		TasksByStatus: byStatus,
		TotalTasks:    total,
		UsersByRole:   byRole,
		TotalRevenue:  revenue,
	}, nil
}

// GetRevenue reports successful payments and ledger totals since the start
// of the current period.
func (s *reportingService) GetRevenue(ctx context.Context, period domain.Period) (*ports.RevenueStats, error) {
	if period == "" {
		period = domain.PeriodMonth
	}
	if !period.Valid() {
		return nil, apperror.Validation("invalid period: must be day, week, month, or year")
	}

	since := period.Start(s.now())
	revenue, err := s.paymentRepo.SumSuccessfulSince(ctx, &since)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("sum revenue: %w", err))
	}
	byType, err := s.txRepo.TotalsByType(ctx, &since)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("totals by type: %w", err))
	}

	return &ports.RevenueStats{
		Period:  period,
		Since:   since,
		Revenue: revenue,
		ByType:  byType,
	}, nil
}

// ListTransactions returns a paginated list of transactions.
func (s *reportingService) ListTransactions(ctx context.Context, params ports.TransactionListParams) ([]domain.Transaction, int64, error) {
	txns, total, err := s.txRepo.List(ctx, params)
	if err != nil {
		return nil, 0, apperror.InternalError(err)
	}
	return txns, total, nil
}

func (s *reportingService) GetTransaction(ctx context.Context, id uuid.UUID) (*domain.Transaction, error) {
	txn, err := s.txRepo.GetByID(ctx, id)
	if err != nil {
		return nil, apperror.InternalError(err)
	}
	if txn == nil {
		return nil, apperror.ErrNotFound("transaction")
	}
	return txn, nil
}
