// Package service provides the orchestration layer over the per-entity
// repositories: the composite operations that must look atomic to callers
// (record expense = insert expense + debit wallet + write ledger entry),
// the cascade policies, and the read-through queries the UI pulls from.
package service

import (
	"context"
	"errors"
	"time"

	"github.com/rmamani/finanzas-go/internal/domain"
	"github.com/rmamani/finanzas-go/internal/infra/observability"
	"github.com/rmamani/finanzas-go/internal/port"

	"go.opentelemetry.io/otel"
	"go.uber.org/zap"
)

var storageTracer = otel.Tracer("service/storage")

// Storage coordinates multi-repository operations. Every mutation runs
// inside one store transaction and, on success, broadcasts the data-changed
// signal so view collaborators reload.
type Storage struct {
	store    port.Store
	notifier port.Notifier
	metrics  *observability.Metrics
	logger   *zap.Logger
}

// NewStorage creates the orchestration facade.
func NewStorage(store port.Store, notifier port.Notifier, metrics *observability.Metrics, logger *zap.Logger) *Storage {
	return &Storage{store: store, notifier: notifier, metrics: metrics, logger: logger}
}

// mutate wraps a composite mutation: one transaction, one span, metrics,
// and the data-changed broadcast on success.
func (s *Storage) mutate(ctx context.Context, op string, fn func(port.Store) error) error {
	ctx, span := storageTracer.Start(ctx, "Storage."+op)
	defer span.End()

	start := time.Now()
	err := s.store.InTx(ctx, fn)
	s.metrics.RecordOperationDuration(op, time.Since(start))

	if err != nil {
		s.metrics.IncrMutation(op, "error")
		var storageErr *domain.ErrStorage
		if errors.As(err, &storageErr) {
			s.metrics.IncrStorageError(op)
			s.logger.Error("storage failure",
				zap.String("operation", op),
				zap.Bool("quota_exceeded", domain.IsQuotaExceeded(err)),
				zap.Error(err),
			)
		}
		return err
	}

	s.metrics.IncrMutation(op, "success")
	s.metrics.IncrDataChanged()
	s.notifier.DataChanged()
	return nil
}

// ============================================================
// Read-through queries (no shared mutable snapshot: each caller
// asks for exactly the slice it needs)
// ============================================================

func (s *Storage) ListWallets(ctx context.Context) ([]domain.Wallet, error) {
	ctx, span := storageTracer.Start(ctx, "Storage.ListWallets")
	defer span.End()
	return s.store.Wallets().GetAll(ctx)
}

func (s *Storage) GetWallet(ctx context.Context, id string) (*domain.Wallet, error) {
	return s.store.Wallets().GetByID(ctx, id)
}

// TotalBalance sums wallet balances. The total is a raw cross-currency sum;
// the per-currency breakdown is the number that means something when wallets
// hold different currencies.
func (s *Storage) TotalBalance(ctx context.Context) (*domain.BalanceSummary, error) {
	ctx, span := storageTracer.Start(ctx, "Storage.TotalBalance")
	defer span.End()
	return s.store.Wallets().TotalBalance(ctx)
}

func (s *Storage) ListCategories(ctx context.Context) ([]domain.Category, error) {
	ctx, span := storageTracer.Start(ctx, "Storage.ListCategories")
	defer span.End()
	return s.store.Categories().GetAll(ctx)
}

func (s *Storage) GetCategory(ctx context.Context, id string) (*domain.Category, error) {
	return s.store.Categories().GetByID(ctx, id)
}

func (s *Storage) ListExpenses(ctx context.Context, filter domain.ExpenseFilter) ([]domain.Expense, error) {
	ctx, span := storageTracer.Start(ctx, "Storage.ListExpenses")
	defer span.End()
	return s.store.Expenses().GetFiltered(ctx, filter)
}

// ListArchivedExpenses reads the historical collection, narrowed by
// category or an inclusive date range when given. Category wins when both
// are set.
func (s *Storage) ListArchivedExpenses(ctx context.Context, categoryID, from, to string) ([]domain.ArchivedExpense, error) {
	switch {
	case categoryID != "":
		return s.store.Expenses().GetArchivedByCategory(ctx, categoryID)
	case from != "" || to != "":
		if from == "" {
			from = "0000-00-00"
		}
		if to == "" {
			to = "9999-12-31"
		}
		return s.store.Expenses().GetArchivedByDateRange(ctx, from, to)
	default:
		return s.store.Expenses().GetArchived(ctx)
	}
}

func (s *Storage) RecentTransactions(ctx context.Context, walletID string, limit int) ([]domain.Transaction, error) {
	ctx, span := storageTracer.Start(ctx, "Storage.RecentTransactions")
	defer span.End()
	return s.store.Transactions().GetRecent(ctx, walletID, limit)
}

func (s *Storage) ListIncomeSources(ctx context.Context) ([]domain.IncomeSource, error) {
	return s.store.IncomeSources().GetAll(ctx)
}

// SelectedWallet returns the selected wallet id, empty when none is set.
func (s *Storage) SelectedWallet(ctx context.Context) (string, error) {
	id, err := s.store.Settings().Get(ctx, domain.SettingSelectedWallet)
	if err != nil {
		var notFound *domain.ErrNotFound
		if errors.As(err, &notFound) {
			return "", nil
		}
		return "", err
	}
	return id, nil
}

// SelectWallet persists the wallet selection after checking it exists.
func (s *Storage) SelectWallet(ctx context.Context, walletID string) error {
	return s.mutate(ctx, "SelectWallet", func(st port.Store) error {
		if _, err := st.Wallets().GetByID(ctx, walletID); err != nil {
			return err
		}
		return st.Settings().Set(ctx, domain.SettingSelectedWallet, walletID)
	})
}

// AddIncomeSource registers a named income source.
func (s *Storage) AddIncomeSource(ctx context.Context, name string) error {
	if name == "" {
		return &domain.ErrValidation{Field: "name", Message: "required"}
	}
	return s.mutate(ctx, "AddIncomeSource", func(st port.Store) error {
		return st.IncomeSources().Add(ctx, &domain.IncomeSource{Name: name})
	})
}

// DeleteIncomeSource removes a named income source.
func (s *Storage) DeleteIncomeSource(ctx context.Context, name string) error {
	return s.mutate(ctx, "DeleteIncomeSource", func(st port.Store) error {
		return st.IncomeSources().Delete(ctx, name)
	})
}
