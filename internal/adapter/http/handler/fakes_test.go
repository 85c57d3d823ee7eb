package handler

import (
	"context"
	"sort"
	"sync"
	"time"

	"runnerhub/internal/core/domain"
	"runnerhub/internal/core/ports"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

// In-memory stores for end-to-end handler scenarios. Writes apply
// immediately and rollback is a no-op, so scenarios only cover paths that
// commit or fail before writing.

type fakeTx struct {
	pgx.Tx
}

func (fakeTx) Commit(context.Context) error   { return nil }
func (fakeTx) Rollback(context.Context) error { return nil }

type fakeTransactor struct{}

func (fakeTransactor) Begin(context.Context) (pgx.Tx, error) { return fakeTx{}, nil }

type fakeTaskRepo struct {
	mu    sync.Mutex
	tasks map[uuid.UUID]domain.Task
}

func newFakeTaskRepo() *fakeTaskRepo {
	return &fakeTaskRepo{tasks: map[uuid.UUID]domain.Task{}}
}

func (r *fakeTaskRepo) Create(_ context.Context, task *domain.Task) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.tasks[task.ID] = *task
	return nil
}

func (r *fakeTaskRepo) GetByID(_ context.Context, id uuid.UUID) (*domain.Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.tasks[id]
	if !ok {
		return nil, nil
	}
	return &t, nil
}

func (r *fakeTaskRepo) Transition(_ context.Context, _ pgx.Tx, task *domain.Task, from domain.TaskStatus) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.tasks[task.ID]
	if !ok || stored.Status != from {
		return false, nil
	}
	r.tasks[task.ID] = *task
	return true, nil
}

func (r *fakeTaskRepo) List(_ context.Context, params ports.TaskListParams) ([]domain.Task, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []domain.Task{}
	for _, t := range r.tasks {
		if params.Status != nil && t.Status != *params.Status {
			continue
		}
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, int64(len(out)), nil
}

func (r *fakeTaskRepo) CountActiveByRunner(_ context.Context, runnerID uuid.UUID) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for _, t := range r.tasks {
		if t.Status == domain.TaskStatusAccepted && t.IsAssignedTo(runnerID) {
			n++
		}
	}
	return n, nil
}

func (r *fakeTaskRepo) CountByStatus(context.Context) (map[domain.TaskStatus]int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := map[domain.TaskStatus]int64{}
	for _, t := range r.tasks {
		out[t.Status]++
	}
	return out, nil
}

func (r *fakeTaskRepo) CountCreatedSince(_ context.Context, since time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for _, t := range r.tasks {
		if !t.CreatedAt.Before(since) {
			n++
		}
	}
	return n, nil
}

type fakeWalletRepo struct {
	mu      sync.Mutex
	wallets map[uuid.UUID]domain.Wallet // by user
	entries map[uuid.UUID][]domain.WalletEntry
}

func newFakeWalletRepo() *fakeWalletRepo {
	return &fakeWalletRepo{wallets: map[uuid.UUID]domain.Wallet{}, entries: map[uuid.UUID][]domain.WalletEntry{}}
}

func (r *fakeWalletRepo) Create(_ context.Context, _ pgx.Tx, wallet *domain.Wallet) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.wallets[wallet.UserID]; !ok {
		r.wallets[wallet.UserID] = *wallet
	}
	return nil
}

func (r *fakeWalletRepo) GetByUserID(_ context.Context, userID uuid.UUID) (*domain.Wallet, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	w, ok := r.wallets[userID]
	if !ok {
		return nil, nil
	}
	return &w, nil
}

func (r *fakeWalletRepo) GetByUserIDForUpdate(ctx context.Context, _ pgx.Tx, userID uuid.UUID) (*domain.Wallet, error) {
	return r.GetByUserID(ctx, userID)
}

func (r *fakeWalletRepo) UpdateBalance(_ context.Context, _ pgx.Tx, walletID uuid.UUID, balance decimal.Decimal) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for user, w := range r.wallets {
		if w.ID == walletID {
			w.Balance = balance
			r.wallets[user] = w
		}
	}
	return nil
}

func (r *fakeWalletRepo) AppendEntry(_ context.Context, _ pgx.Tx, entry *domain.WalletEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries[entry.WalletID] = append(r.entries[entry.WalletID], *entry)
	return nil
}

func (r *fakeWalletRepo) ListEntries(_ context.Context, walletID uuid.UUID) ([]domain.WalletEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]domain.WalletEntry(nil), r.entries[walletID]...), nil
}

type fakeTxRepo struct {
	mu   sync.Mutex
	txns []domain.Transaction
}

func (r *fakeTxRepo) Create(_ context.Context, _ pgx.Tx, txn *domain.Transaction) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.txns = append(r.txns, *txn)
	return nil
}

func (r *fakeTxRepo) GetByID(_ context.Context, id uuid.UUID) (*domain.Transaction, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, t := range r.txns {
		if t.ID == id {
			return &t, nil
		}
	}
	return nil, nil
}

func (r *fakeTxRepo) List(_ context.Context, params ports.TransactionListParams) ([]domain.Transaction, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []domain.Transaction{}
	for _, t := range r.txns {
		if params.UserID != nil && t.UserID != *params.UserID {
			continue
		}
		if params.Type != nil && t.Type != *params.Type {
			continue
		}
		out = append(out, t)
	}
	return out, int64(len(out)), nil
}

func (r *fakeTxRepo) TotalsByType(context.Context, *time.Time) (map[domain.TransactionType]decimal.Decimal, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := map[domain.TransactionType]decimal.Decimal{}
	for _, t := range r.txns {
		out[t.Type] = out[t.Type].Add(t.Amount)
	}
	return out, nil
}

type fakeNotifier struct {
	mu     sync.Mutex
	events []string
}

func (n *fakeNotifier) Emit(_ context.Context, target, event string, _ any) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, target+":"+event)
	return nil
}

func (n *fakeNotifier) Close() error { return nil }
