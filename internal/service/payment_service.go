package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"runnerhub/internal/core/domain"
	"runnerhub/internal/core/ports"
	"runnerhub/pkg/apperror"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// PaymentServiceImpl implements ports.PaymentService.
type PaymentServiceImpl struct {
	paymentRepo ports.PaymentRepository
	taskRepo    ports.TaskRepository
	userRepo    ports.UserRepository
	gateway     ports.PaymentGateway
	returnURL   string
	log         zerolog.Logger
	now         func() time.Time
}

// NewPaymentService creates a new PaymentServiceImpl.
func NewPaymentService(
	paymentRepo ports.PaymentRepository,
	taskRepo ports.TaskRepository,
	userRepo ports.UserRepository,
	gateway ports.PaymentGateway,
	returnURL string,
	log zerolog.Logger,
) *PaymentServiceImpl {
	return &PaymentServiceImpl{
		paymentRepo: paymentRepo,
		taskRepo:    taskRepo,
		userRepo:    userRepo,
		gateway:     gateway,
		returnURL:   returnURL,
		log:         log,
		now:         func() time.Time { return time.Now().UTC() },
	}
}

// Initiate records a pending payment for the client's task and returns the
// signed form for the hosted payment page.
func (s *PaymentServiceImpl) Initiate(ctx context.Context, req ports.InitiatePaymentRequest) (*ports.InitiatePaymentResult, error) {
	if err := checkMoney("amount", req.Amount); err != nil {
		return nil, err
	}

	task, err := s.taskRepo.GetByID(ctx, req.TaskID)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("get task: %w", err))
	}
	if task == nil {
		return nil, apperror.ErrNotFound("task")
	}
	if task.ClientID != req.ClientID {
		return nil, apperror.ErrForbidden()
	}

	var email string
	client, err := s.userRepo.GetByID(ctx, req.ClientID)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("get client: %w", err))
	}
	if client != nil {
		email = client.Email
	}

	now := s.now()
	reference := fmt.Sprintf("%s-%d", domain.TaskReference(task.ID), now.UnixMilli())

	payload, err := s.gateway.Initiate(ctx, ports.GatewayInitiateRequest{
		Reference: reference,
		Amount:    req.Amount,
		Email:     email,
		ReturnURL: s.returnURL,
	})
	if err != nil {
		return nil, apperror.ErrGatewayFailure(fmt.Errorf("initiate: %w", err))
	}

	payment := &domain.Payment{
		ID:        uuid.New(),
		TaskID:    task.ID,
		ClientID:  req.ClientID,
		Amount:    req.Amount,
		Status:    domain.PaymentStatusPending,
		Reference: reference,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.paymentRepo.Create(ctx, payment); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("create payment: %w", err))
	}

	s.log.Info().
		Str("payment_id", payment.ID.String()).
		Str("reference", reference).
		Str("amount", req.Amount.String()).
		Msg("payment initiated")

	return &ports.InitiatePaymentResult{Payment: payment, Payload: payload}, nil
}

// Verify settles a pending payment from a signed gateway callback. A callback
// for an already settled payment returns the stored status unchanged, and a
// callback with a bad checksum is reported as failed without touching the row.
func (s *PaymentServiceImpl) Verify(ctx context.Context, cb ports.GatewayCallback) (domain.PaymentStatus, error) {
	if cb.Reference == "" || cb.PayRequestID == "" {
		return "", apperror.Validation("reference and pay request id are required")
	}

	payment, err := s.paymentRepo.GetByReference(ctx, cb.Reference)
	if err != nil {
		return "", apperror.InternalError(fmt.Errorf("get payment: %w", err))
	}
	if payment == nil {
		return "", apperror.ErrNotFound("payment")
	}
	if payment.IsFinal() {
		return payment.Status, nil
	}

	status, err := s.gateway.Verify(ctx, cb)
	if errors.Is(err, ports.ErrChecksumMismatch) {
		// Unsigned callbacks are answered as failed but never stored.
		s.log.Warn().
			Str("payment_id", payment.ID.String()).
			Str("reference", cb.Reference).
			Msg("payment callback checksum mismatch")
		return domain.PaymentStatusFailed, nil
	}
	if err != nil {
		return "", apperror.ErrGatewayFailure(fmt.Errorf("verify: %w", err))
	}

	updated, err := s.paymentRepo.UpdateStatus(ctx, payment.ID, status, cb.PayRequestID)
	if err != nil {
		return "", apperror.InternalError(fmt.Errorf("update payment: %w", err))
	}
	if !updated {
		current, err := s.paymentRepo.GetByReference(ctx, cb.Reference)
		if err != nil || current == nil {
			return "", apperror.InternalError(fmt.Errorf("reload payment %s: %w", cb.Reference, err))
		}
		return current.Status, nil
	}

	s.log.Info().
		Str("payment_id", payment.ID.String()).
		Str("reference", cb.Reference).
		Str("status", string(status)).
		Msg("payment verified")

	return status, nil
}
