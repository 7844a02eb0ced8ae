// Package sqlite implements the persistence layer over an embedded SQLite
// database: a lifecycle-managed connection, one JSON-document collection per
// entity with the secondary indexes the repositories query, and per-entity
// repositories layered on a generic collection.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/rmamani/finanzas-go/internal/domain"
	"github.com/rmamani/finanzas-go/internal/port"

	"go.uber.org/zap"
	_ "modernc.org/sqlite"
)

const (
	pragmaJournalModeWAL = `PRAGMA journal_mode=WAL`
	pragmaForeignKeysOn  = `PRAGMA foreign_keys=ON`
	pragmaBusyTimeout    = `PRAGMA busy_timeout=5000`
)

// Manager owns the database handle lifecycle. Open is idempotent: concurrent
// callers receive the same handle once initialized. Reset deletes the whole
// database, which requires closing the handle first or the engine keeps
// serving the old file.
type Manager struct {
	mu     sync.Mutex
	path   string
	logger *zap.Logger
	store  *Store
}

// NewManager creates a manager for the database at path. Nothing is opened
// until the first Open call.
func NewManager(path string, logger *zap.Logger) *Manager {
	return &Manager{path: path, logger: logger}
}

// Open returns the shared store, establishing the connection and running
// schema migrations on first use.
func (m *Manager) Open(ctx context.Context) (*Store, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.store != nil {
		return m.store, nil
	}

	if err := os.MkdirAll(filepath.Dir(m.path), 0o700); err != nil {
		return nil, fmt.Errorf("open store: create parent dir: %w", err)
	}

	db, err := sql.Open("sqlite", m.path)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}
	// modernc sqlite serializes writes; a single connection avoids
	// SQLITE_BUSY between the pool's handles.
	db.SetMaxOpenConns(1)

	if err := configureSQLite(db); err != nil {
		_ = db.Close()
		return nil, err
	}

	if err := RunMigrations(db, DefaultMigrations()); err != nil {
		_ = db.Close()
		return nil, err
	}

	m.store = newStore(db)
	m.logger.Info("database opened",
		zap.String("path", m.path),
		zap.Int("schema_version", CurrentSchemaVersion()),
	)
	return m.store, nil
}

// Close releases the handle. A subsequent Open re-establishes it.
func (m *Manager) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.store == nil {
		return nil
	}
	err := m.store.db.Close()
	m.store = nil
	return err
}

// Reset deletes the entire persisted database and reopens it fresh at the
// current schema version. Used for full app reset and schema recovery.
func (m *Manager) Reset(ctx context.Context) (*Store, error) {
	if err := m.Close(); err != nil {
		return nil, fmt.Errorf("reset store: close: %w", err)
	}

	for _, suffix := range []string{"", "-wal", "-shm"} {
		if err := os.Remove(m.path + suffix); err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("reset store: remove %s: %w", m.path+suffix, err)
		}
	}
	m.logger.Warn("database deleted", zap.String("path", m.path))

	return m.Open(ctx)
}

func configureSQLite(db *sql.DB) error {
	for _, stmt := range []string{pragmaJournalModeWAL, pragmaForeignKeysOn, pragmaBusyTimeout} {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("configure sqlite %q: %w", stmt, err)
		}
	}
	return nil
}

// Store aggregates the per-entity repositories over one connection and
// implements port.Store. The zero field db marks a transaction-bound view
// produced by InTx.
type Store struct {
	db *sql.DB

	wallets       *WalletStore
	categories    *CategoryStore
	expenses      *ExpenseStore
	transactions  *TransactionStore
	payments      *PaymentStore
	incomeSources *IncomeSourceStore
	settings      *SettingsStore
}

func newStore(db *sql.DB) *Store {
	return &Store{
		db:            db,
		wallets:       newWalletStore(db),
		categories:    newCategoryStore(db),
		expenses:      newExpenseStore(db),
		transactions:  newTransactionStore(db),
		payments:      newPaymentStore(db),
		incomeSources: newIncomeSourceStore(db),
		settings:      newSettingsStore(db),
	}
}

func (s *Store) Wallets() port.WalletRepository                     { return s.wallets }
func (s *Store) Categories() port.CategoryRepository                { return s.categories }
func (s *Store) Expenses() port.ExpenseRepository                   { return s.expenses }
func (s *Store) Transactions() port.TransactionRepository           { return s.transactions }
func (s *Store) ScheduledPayments() port.ScheduledPaymentRepository { return s.payments }
func (s *Store) IncomeSources() port.IncomeSourceRepository         { return s.incomeSources }
func (s *Store) Settings() port.SettingsRepository                  { return s.settings }

// InTx runs fn against a view of the store bound to a single transaction.
// Every repository call inside fn shares it, so multi-collection operations
// commit or roll back as one. Nested calls join the enclosing transaction.
func (s *Store) InTx(ctx context.Context, fn func(port.Store) error) error {
	if s.db == nil {
		return fn(s)
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return &domain.ErrStorage{Op: "begin tx", Err: err}
	}

	view := &Store{
		wallets:       s.wallets.bind(tx),
		categories:    s.categories.bind(tx),
		expenses:      s.expenses.bind(tx),
		transactions:  s.transactions.bind(tx),
		payments:      s.payments.bind(tx),
		incomeSources: s.incomeSources.bind(tx),
		settings:      s.settings.bind(tx),
	}

	if err := fn(view); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return &domain.ErrStorage{Op: "commit tx", Err: err}
	}
	return nil
}

// DB exposes the raw handle for the migration/recovery utilities.
func (s *Store) DB() *sql.DB {
	return s.db
}
