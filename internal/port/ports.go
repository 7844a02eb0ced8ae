// Package port defines the interfaces between the orchestration layer and
// its collaborators: the persistence store (and its per-entity repositories)
// and the data-changed notifier. Services depend on these, never on the
// SQLite implementation directly, so tests can swap in a throwaway store.
package port

import (
	"context"

	"github.com/rmamani/finanzas-go/internal/domain"
)

// Store aggregates the per-entity repositories over one connection.
//
// InTx runs fn against a view of the store whose repositories share a single
// underlying transaction: every composite operation in the orchestration
// layer executes inside one InTx call, so a failure at any step rolls back
// all of them. Nested InTx calls join the enclosing transaction.
type Store interface {
	Wallets() WalletRepository
	Categories() CategoryRepository
	Expenses() ExpenseRepository
	Transactions() TransactionRepository
	ScheduledPayments() ScheduledPaymentRepository
	IncomeSources() IncomeSourceRepository
	Settings() SettingsRepository

	InTx(ctx context.Context, fn func(Store) error) error

	// Snapshot reads full collection contents for backup export.
	Snapshot(ctx context.Context) (*domain.BackupData, error)
	// Restore replaces each collection wholesale (clear then bulk insert)
	// in one transaction. Legacy field aliases must be normalized by the
	// caller before the data reaches Restore.
	Restore(ctx context.Context, data *domain.BackupData) error
}

// WalletRepository persists wallets and adjusts balances.
// Balance adjustments are raw read-modify-writes; callers that need them
// consistent with other writes must run inside Store.InTx.
type WalletRepository interface {
	Add(ctx context.Context, w *domain.Wallet) error
	GetAll(ctx context.Context) ([]domain.Wallet, error)
	GetByID(ctx context.Context, id string) (*domain.Wallet, error)
	Update(ctx context.Context, w *domain.Wallet) error
	Delete(ctx context.Context, id string) error
	IncrementBalance(ctx context.Context, id string, amount float64) error
	DecrementBalance(ctx context.Context, id string, amount float64) error
	HasSufficientBalance(ctx context.Context, id string, amount float64) (bool, error)
	TotalBalance(ctx context.Context) (*domain.BalanceSummary, error)
}

// CategoryRepository persists categories with their embedded subcategories.
type CategoryRepository interface {
	Add(ctx context.Context, c *domain.Category) error
	GetAll(ctx context.Context) ([]domain.Category, error)
	GetByID(ctx context.Context, id string) (*domain.Category, error)
	Update(ctx context.Context, c *domain.Category) error
	Delete(ctx context.Context, id string) error
	AddSubcategory(ctx context.Context, categoryID string, sub *domain.Subcategory) error
	UpdateSubcategory(ctx context.Context, categoryID, subID string, update domain.SubcategoryUpdate) (*domain.Subcategory, error)
	DeleteSubcategory(ctx context.Context, categoryID, subID string) error
}

// ExpenseRepository persists active and archived expenses.
type ExpenseRepository interface {
	Add(ctx context.Context, e *domain.Expense) error
	GetAll(ctx context.Context) ([]domain.Expense, error)
	GetByID(ctx context.Context, id string) (*domain.Expense, error)
	Update(ctx context.Context, e *domain.Expense) error
	Delete(ctx context.Context, id string) error
	GetFiltered(ctx context.Context, filter domain.ExpenseFilter) ([]domain.Expense, error)
	GetByCategoryID(ctx context.Context, categoryID string) ([]domain.Expense, error)
	GetBySubcategoryID(ctx context.Context, subcategoryID string) ([]domain.Expense, error)
	GetByWalletID(ctx context.Context, walletID string) ([]domain.Expense, error)
	DeleteByCategoryID(ctx context.Context, categoryID string) (int, error)
	DeleteBySubcategoryID(ctx context.Context, subcategoryID string) (int, error)
	MoveToSubcategory(ctx context.Context, fromSubID, toSubID, toCategoryID string) (int, error)
	Archive(ctx context.Context, ids []string) (int, error)
	GetArchived(ctx context.Context) ([]domain.ArchivedExpense, error)
	GetArchivedByCategory(ctx context.Context, categoryID string) ([]domain.ArchivedExpense, error)
	GetArchivedByDateRange(ctx context.Context, from, to string) ([]domain.ArchivedExpense, error)
}

// TransactionRepository persists the ledger.
type TransactionRepository interface {
	AddIncome(ctx context.Context, walletID string, amount float64, source string) (*domain.Transaction, error)
	AddExpense(ctx context.Context, expenseID, walletID string, amount float64, description string) (*domain.Transaction, error)
	AddTransfer(ctx context.Context, fromWalletID, toWalletID string, amount float64) (*domain.Transaction, *domain.Transaction, error)
	GetAll(ctx context.Context) ([]domain.Transaction, error)
	GetByWallet(ctx context.Context, walletID string) ([]domain.Transaction, error)
	GetRecent(ctx context.Context, walletID string, limit int) ([]domain.Transaction, error)
	// Import upserts a fully formed record verbatim, for migration and
	// restore paths that must preserve ids and timestamps.
	Import(ctx context.Context, t *domain.Transaction) error
	Delete(ctx context.Context, id string) error
	DeleteByWallet(ctx context.Context, walletID string) (int, error)
}

// ScheduledPaymentRepository persists scheduled payments and drives their
// recurrence cycle.
type ScheduledPaymentRepository interface {
	Add(ctx context.Context, p *domain.ScheduledPayment) error
	GetAll(ctx context.Context) ([]domain.ScheduledPayment, error)
	GetByID(ctx context.Context, id string) (*domain.ScheduledPayment, error)
	Update(ctx context.Context, p *domain.ScheduledPayment) error
	Delete(ctx context.Context, id string) error
	MarkAsPaid(ctx context.Context, id, actualDate string) (*domain.ScheduledPayment, error)
	SkipPayment(ctx context.Context, id, reason string) (*domain.ScheduledPayment, error)
	CancelPayment(ctx context.Context, id string) (*domain.ScheduledPayment, error)
	PostponePayment(ctx context.Context, id string, days int) (*domain.ScheduledPayment, error)
	GetPending(ctx context.Context) ([]domain.ScheduledPayment, error)
	GetOverdue(ctx context.Context) ([]domain.ScheduledPayment, error)
	GetUpcoming(ctx context.Context, days int) ([]domain.ScheduledPayment, error)
	GetThisMonth(ctx context.Context) ([]domain.ScheduledPayment, error)
	GetFuture(ctx context.Context) ([]domain.ScheduledPayment, error)
	GetStats(ctx context.Context) (*domain.PaymentStats, error)
}

// IncomeSourceRepository persists named income sources.
type IncomeSourceRepository interface {
	Add(ctx context.Context, s *domain.IncomeSource) error
	GetAll(ctx context.Context) ([]domain.IncomeSource, error)
	Delete(ctx context.Context, name string) error
}

// SettingsRepository persists app-level key/value settings.
type SettingsRepository interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
}

// Notifier broadcasts the untyped data-changed signal after successful
// mutations. Listeners reload their working set; there is no delta payload.
type Notifier interface {
	DataChanged()
}
