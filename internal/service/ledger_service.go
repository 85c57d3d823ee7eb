package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"runnerhub/internal/core/domain"
	"runnerhub/internal/core/ports"
	"runnerhub/pkg/apperror"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

const defaultIdempotencyTTL = 24 * time.Hour

// LedgerServiceImpl implements ports.LedgerService.
type LedgerServiceImpl struct {
	walletRepo ports.WalletRepository
	txRepo     ports.TransactionRepository
	idempCache ports.IdempotencyCache
	transactor ports.DBTransactor
	idempTTL   time.Duration
	log        zerolog.Logger
	now        func() time.Time
}

// NewLedgerService creates a new LedgerServiceImpl. idempCache may be nil.
func NewLedgerService(
	walletRepo ports.WalletRepository,
	txRepo ports.TransactionRepository,
	idempCache ports.IdempotencyCache,
	transactor ports.DBTransactor,
	idempTTL time.Duration,
	log zerolog.Logger,
) *LedgerServiceImpl {
	if idempTTL <= 0 {
		idempTTL = defaultIdempotencyTTL
	}
	return &LedgerServiceImpl{
		walletRepo: walletRepo,
		txRepo:     txRepo,
		idempCache: idempCache,
		transactor: transactor,
		idempTTL:   idempTTL,
		log:        log,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

// Credit adds funds in its own database transaction.
func (s *LedgerServiceImpl) Credit(ctx context.Context, req ports.LedgerRequest) (*ports.LedgerResult, error) {
	return s.run(ctx, req, s.CreditTx)
}

// Debit removes funds in its own database transaction.
func (s *LedgerServiceImpl) Debit(ctx context.Context, req ports.LedgerRequest) (*ports.LedgerResult, error) {
	return s.run(ctx, req, s.DebitTx)
}

type ledgerOp func(ctx context.Context, tx pgx.Tx, req ports.LedgerRequest) (*ports.LedgerResult, error)

func (s *LedgerServiceImpl) run(ctx context.Context, req ports.LedgerRequest, op ledgerOp) (*ports.LedgerResult, error) {
	var idempKey string
	if req.IdempotencyKey != "" && s.idempCache != nil {
		idempKey = domain.BuildIdempotencyKey(req.UserID, req.Type, req.IdempotencyKey)
		cached, err := s.idempCache.Get(ctx, idempKey)
		if err != nil {
			s.log.Warn().Err(err).Str("key", idempKey).Msg("redis idempotency check failed, processing request")
		}
		if cached != nil {
			var replay ports.LedgerResult
			if err := json.Unmarshal(cached, &replay); err == nil {
				return &replay, nil
			}
			s.log.Warn().Str("key", idempKey).Msg("discarding unreadable idempotency entry")
		}
	}

	dbTx, err := s.transactor.Begin(ctx)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("begin tx: %w", err))
	}
	defer dbTx.Rollback(ctx) //nolint:errcheck

	result, err := op(ctx, dbTx, req)
	if err != nil {
		return nil, err
	}

	if err := dbTx.Commit(ctx); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("commit tx: %w", err))
	}

	if idempKey != "" {
		if body, err := json.Marshal(result); err == nil {
			if err := s.idempCache.Set(ctx, idempKey, body, s.idempTTL); err != nil {
				s.log.Warn().Err(err).Str("key", idempKey).Msg("failed to cache idempotency in redis")
			}
		}
	}

	s.log.Info().
		Str("user_id", req.UserID.String()).
		Str("type", string(req.Type)).
		Str("amount", req.Amount.String()).
		Str("balance", result.Balance.String()).
		Msg("ledger entry recorded")

	return result, nil
}

// CreditTx creates the wallet on first use and credits it inside tx.
func (s *LedgerServiceImpl) CreditTx(ctx context.Context, tx pgx.Tx, req ports.LedgerRequest) (*ports.LedgerResult, error) {
	if err := checkMoney("amount", req.Amount); err != nil {
		return nil, err
	}
	if !req.Type.Valid() || !req.Type.IsCredit() {
		return nil, apperror.Validation(fmt.Sprintf("%q is not a credit entry type", req.Type))
	}

	now := s.now()
	if err := s.walletRepo.Create(ctx, tx, domain.NewWallet(req.UserID, now)); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("ensure wallet: %w", err))
	}

	wallet, err := s.walletRepo.GetByUserIDForUpdate(ctx, tx, req.UserID)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("lock wallet: %w", err))
	}
	if wallet == nil {
		return nil, apperror.InternalError(fmt.Errorf("wallet for user %s missing after create", req.UserID))
	}
	if wallet.Balance.Add(req.Amount).GreaterThanOrEqual(domain.MaxAmount) {
		return nil, apperror.Validation("credit would exceed the maximum wallet balance")
	}

	return s.apply(ctx, tx, wallet, req, now)
}

// DebitTx removes funds inside tx. The balance is never allowed below zero.
func (s *LedgerServiceImpl) DebitTx(ctx context.Context, tx pgx.Tx, req ports.LedgerRequest) (*ports.LedgerResult, error) {
	if err := checkMoney("amount", req.Amount); err != nil {
		return nil, err
	}
	if !req.Type.Valid() || req.Type.IsCredit() {
		return nil, apperror.Validation(fmt.Sprintf("%q is not a debit entry type", req.Type))
	}

	wallet, err := s.walletRepo.GetByUserIDForUpdate(ctx, tx, req.UserID)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("lock wallet: %w", err))
	}
	if wallet == nil {
		return nil, apperror.ErrWalletNotFound()
	}

	if wallet.Balance.LessThan(req.Amount) {
		return nil, apperror.ErrInsufficientFunds()
	}

	return s.apply(ctx, tx, wallet, req, s.now())
}

// checkMoney maps domain.CheckAmount failures to validation errors.
func checkMoney(field string, amount decimal.Decimal) error {
	err := domain.CheckAmount(amount)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, domain.ErrAmountNotPositive) && field == "amount":
		return apperror.ErrInvalidAmount()
	default:
		return apperror.Validation(fmt.Sprintf("%s: %v", field, err))
	}
}

func (s *LedgerServiceImpl) apply(ctx context.Context, tx pgx.Tx, wallet *domain.Wallet, req ports.LedgerRequest, now time.Time) (*ports.LedgerResult, error) {
	newBalance := wallet.Balance.Add(req.Type.Signed(req.Amount))

	if err := s.walletRepo.UpdateBalance(ctx, tx, wallet.ID, newBalance); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("update balance: %w", err))
	}

	entry := domain.WalletEntry{
		ID:        uuid.New(),
		WalletID:  wallet.ID,
		Type:      req.Type,
		Amount:    req.Amount,
		Reference: req.Reference,
		CreatedAt: now,
	}
	if err := s.walletRepo.AppendEntry(ctx, tx, &entry); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("append entry: %w", err))
	}

	audit := &domain.Transaction{
		ID:        uuid.New(),
		UserID:    req.UserID,
		Type:      req.Type.AuditType(),
		Amount:    req.Amount,
		Reference: req.Reference,
		CreatedAt: now,
	}
	if err := s.txRepo.Create(ctx, tx, audit); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("create transaction: %w", err))
	}

	return &ports.LedgerResult{Balance: newBalance, Transaction: entry}, nil
}

// GetWallet returns the user's wallet and history. A user who was never
// credited gets an empty zero-balance view.
func (s *LedgerServiceImpl) GetWallet(ctx context.Context, userID uuid.UUID) (*ports.WalletView, error) {
	wallet, err := s.walletRepo.GetByUserID(ctx, userID)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("get wallet: %w", err))
	}
	if wallet == nil {
		return &ports.WalletView{
			Wallet:  domain.Wallet{UserID: userID},
			Entries: []domain.WalletEntry{},
		}, nil
	}

	entries, err := s.walletRepo.ListEntries(ctx, wallet.ID)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("list entries: %w", err))
	}
	if entries == nil {
		entries = []domain.WalletEntry{}
	}

	return &ports.WalletView{Wallet: *wallet, Entries: entries}, nil
}
