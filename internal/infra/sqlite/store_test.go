package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"testing"

	"github.com/rmamani/finanzas-go/internal/domain"
	"github.com/rmamani/finanzas-go/internal/port"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	_ "modernc.org/sqlite"
)

func newTestManager(t *testing.T) *Manager {
	t.Helper()
	return NewManager(filepath.Join(t.TempDir(), "test.db"), zap.NewNop())
}

func newTestStore(t *testing.T) *Store {
	t.Helper()
	mgr := newTestManager(t)
	store, err := mgr.Open(context.Background())
	require.NoError(t, err)
	t.Cleanup(func() { _ = mgr.Close() })
	return store
}

func openRawTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", filepath.Join(t.TempDir(), "raw.db"))
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func mustSchemaVersion(t *testing.T, db *sql.DB) int {
	t.Helper()
	version, err := readSchemaVersion(db)
	require.NoError(t, err)
	return version
}

// --- Migrations ---

func TestRunMigrationsAppliesAllSequentially(t *testing.T) {
	t.Parallel()

	db := openRawTestDB(t)

	require.NoError(t, RunMigrations(db, DefaultMigrations()))
	require.Equal(t, CurrentSchemaVersion(), mustSchemaVersion(t, db))

	for _, table := range ExpectedTables() {
		exists, err := TableExists(db, table)
		require.NoError(t, err)
		require.Truef(t, exists, "expected table %s to exist", table)
	}
}

func TestRunMigrationsIsAtomic(t *testing.T) {
	t.Parallel()

	db := openRawTestDB(t)

	migrations := []Migration{
		{
			Version:     1,
			Description: "create a",
			Up: func(tx *sql.Tx) error {
				_, err := tx.Exec(`CREATE TABLE test_a (id TEXT PRIMARY KEY)`)
				return err
			},
		},
		{
			Version:     2,
			Description: "create b then fail",
			Up: func(tx *sql.Tx) error {
				if _, err := tx.Exec(`CREATE TABLE test_b (id TEXT PRIMARY KEY)`); err != nil {
					return err
				}
				return errors.New("boom")
			},
		},
	}

	require.Error(t, RunMigrations(db, migrations))
	require.Equal(t, 1, mustSchemaVersion(t, db))

	existsA, err := TableExists(db, "test_a")
	require.NoError(t, err)
	require.True(t, existsA)

	existsB, err := TableExists(db, "test_b")
	require.NoError(t, err)
	require.False(t, existsB, "failed migration must roll back its own DDL")
}

func TestRunMigrationsIsIdempotent(t *testing.T) {
	t.Parallel()

	db := openRawTestDB(t)

	require.NoError(t, RunMigrations(db, DefaultMigrations()))
	require.NoError(t, RunMigrations(db, DefaultMigrations()))
	require.Equal(t, CurrentSchemaVersion(), mustSchemaVersion(t, db))
}

// --- Manager lifecycle ---

func TestManagerOpenIsIdempotent(t *testing.T) {
	t.Parallel()

	mgr := newTestManager(t)
	ctx := context.Background()

	first, err := mgr.Open(ctx)
	require.NoError(t, err)
	second, err := mgr.Open(ctx)
	require.NoError(t, err)
	require.Same(t, first, second)

	require.NoError(t, mgr.Close())
}

func TestManagerResetWipesData(t *testing.T) {
	t.Parallel()

	mgr := newTestManager(t)
	ctx := context.Background()

	store, err := mgr.Open(ctx)
	require.NoError(t, err)

	require.NoError(t, store.Wallets().Add(ctx, &domain.Wallet{Name: "Main", Currency: domain.CurrencyBOB}))

	store, err = mgr.Reset(ctx)
	require.NoError(t, err)

	wallets, err := store.Wallets().GetAll(ctx)
	require.NoError(t, err)
	require.Empty(t, wallets)
	require.NoError(t, mgr.Close())
}

// --- Collection semantics (through the wallet store) ---

func TestAddDuplicateKeyFails(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)
	ctx := context.Background()

	w := &domain.Wallet{ID: "w1", Name: "Main", Currency: domain.CurrencyBOB}
	require.NoError(t, store.Wallets().Add(ctx, w))

	err := store.Wallets().Add(ctx, &domain.Wallet{ID: "w1", Name: "Clone", Currency: domain.CurrencyUSD})
	var dup *domain.ErrDuplicateKey
	require.ErrorAs(t, err, &dup)
	require.Equal(t, "wallets", dup.Collection)
	require.Equal(t, "w1", dup.Key)
}

func TestGetByIDNotFound(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)

	_, err := store.Wallets().GetByID(context.Background(), "missing")
	var notFound *domain.ErrNotFound
	require.ErrorAs(t, err, &notFound)
	require.Equal(t, "missing", notFound.ID)
}

func TestDeleteAbsentIDIsNoError(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)
	require.NoError(t, store.Wallets().Delete(context.Background(), "missing"))
}

func TestNullSubcategoryIndexLookup(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)
	ctx := context.Background()

	subID := "sub-1"
	require.NoError(t, store.Expenses().Add(ctx, &domain.Expense{
		ID: "e1", Name: "groceries", Amount: 10, Date: "2024-03-01",
		WalletID: "w1", CategoryID: "c1", SubcategoryID: &subID,
	}))
	require.NoError(t, store.Expenses().Add(ctx, &domain.Expense{
		ID: "e2", Name: "quick", Amount: 5, Date: "2024-03-02",
		WalletID: "w1", CategoryID: domain.CategoryUnclassified,
	}))

	classified, err := store.Expenses().GetBySubcategoryID(ctx, subID)
	require.NoError(t, err)
	require.Len(t, classified, 1)
	require.Equal(t, "e1", classified[0].ID)

	unclassified, err := store.Expenses().GetFiltered(ctx, domain.ExpenseFilter{OnlyUnclassified: true})
	require.NoError(t, err)
	require.Len(t, unclassified, 1)
	require.Equal(t, "e2", unclassified[0].ID)
}

func TestInTxRollsBackOnError(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)
	ctx := context.Background()

	err := store.InTx(ctx, func(st port.Store) error {
		if err := st.Wallets().Add(ctx, &domain.Wallet{ID: "w1", Name: "Main", Currency: domain.CurrencyBOB}); err != nil {
			return err
		}
		return errors.New("boom")
	})
	require.Error(t, err)

	wallets, err := store.Wallets().GetAll(ctx)
	require.NoError(t, err)
	require.Empty(t, wallets, "rolled-back insert must not persist")
}

func TestInTxCommitsMultiCollectionWrites(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)
	ctx := context.Background()

	err := store.InTx(ctx, func(st port.Store) error {
		if err := st.Wallets().Add(ctx, &domain.Wallet{ID: "w1", Name: "Main", Currency: domain.CurrencyBOB, Balance: 100}); err != nil {
			return err
		}
		if err := st.Expenses().Add(ctx, &domain.Expense{ID: "e1", Name: "bus", Amount: 3, Date: "2024-03-01", WalletID: "w1", CategoryID: "c1"}); err != nil {
			return err
		}
		_, err := st.Transactions().AddExpense(ctx, "e1", "w1", 3, "bus")
		return err
	})
	require.NoError(t, err)

	wallet, err := store.Wallets().GetByID(ctx, "w1")
	require.NoError(t, err)
	require.Equal(t, 100.0, wallet.Balance)

	txn, err := store.Transactions().GetByWallet(ctx, "w1")
	require.NoError(t, err)
	require.Len(t, txn, 1)
	require.Equal(t, domain.ExpenseTransactionID("e1"), txn[0].ID)
	require.Equal(t, -3.0, txn[0].Amount, "expense ledger entries are stored negative")
}

// --- Wallet store ---

func TestWalletBalanceAdjustments(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)
	ctx := context.Background()

	w := &domain.Wallet{Name: "Main", Currency: domain.CurrencyBOB, Balance: 100}
	require.NoError(t, store.Wallets().Add(ctx, w))
	require.NotEmpty(t, w.ID)
	require.NotEmpty(t, w.CreatedAt)

	require.NoError(t, store.Wallets().IncrementBalance(ctx, w.ID, 50))
	require.NoError(t, store.Wallets().DecrementBalance(ctx, w.ID, 30))

	got, err := store.Wallets().GetByID(ctx, w.ID)
	require.NoError(t, err)
	require.Equal(t, 120.0, got.Balance)

	ok, err := store.Wallets().HasSufficientBalance(ctx, w.ID, 120)
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = store.Wallets().HasSufficientBalance(ctx, w.ID, 121)
	require.NoError(t, err)
	require.False(t, ok)

	ok, err = store.Wallets().HasSufficientBalance(ctx, "missing", 1)
	require.NoError(t, err)
	require.False(t, ok, "an absent wallet has insufficient balance, not an error")
}

func TestTotalBalancePerCurrency(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Wallets().Add(ctx, &domain.Wallet{ID: "w1", Name: "Cash", Currency: domain.CurrencyBOB, Balance: 100}))
	require.NoError(t, store.Wallets().Add(ctx, &domain.Wallet{ID: "w2", Name: "Bank", Currency: domain.CurrencyBOB, Balance: 250}))
	require.NoError(t, store.Wallets().Add(ctx, &domain.Wallet{ID: "w3", Name: "Savings", Currency: domain.CurrencyUSD, Balance: 40}))

	summary, err := store.Wallets().TotalBalance(ctx)
	require.NoError(t, err)

	// The grand total adds raw figures across currencies; the map is the
	// honest per-currency view.
	require.Equal(t, 390.0, summary.Total)
	require.Equal(t, 350.0, summary.ByCurrency[domain.CurrencyBOB])
	require.Equal(t, 40.0, summary.ByCurrency[domain.CurrencyUSD])
}

// --- Backup snapshot / restore ---

func TestSnapshotRestoreRoundTrip(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Wallets().Add(ctx, &domain.Wallet{ID: "w1", Name: "Main", Currency: domain.CurrencyBOB, Balance: 100}))
	require.NoError(t, store.Categories().Add(ctx, &domain.Category{ID: "c1", Name: "Food"}))
	require.NoError(t, store.Expenses().Add(ctx, &domain.Expense{ID: "e1", Name: "bus", Amount: 3, Date: "2024-03-01", WalletID: "w1", CategoryID: "c1"}))
	require.NoError(t, store.Settings().Set(ctx, domain.SettingSelectedWallet, "w1"))

	data, err := store.Snapshot(ctx)
	require.NoError(t, err)
	require.Len(t, data.Wallets, 1)
	require.Equal(t, "w1", data.SelectedWallet)

	// Restore into a fresh database and snapshot again.
	other := newTestStore(t)
	require.NoError(t, other.Restore(ctx, data))

	restored, err := other.Snapshot(ctx)
	require.NoError(t, err)
	require.Equal(t, data, restored)
}

func TestRestoreReplacesExistingData(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Wallets().Add(ctx, &domain.Wallet{ID: "old", Name: "Old", Currency: domain.CurrencyBOB}))
	require.NoError(t, store.Settings().Set(ctx, domain.SettingSelectedWallet, "old"))

	require.NoError(t, store.Restore(ctx, &domain.BackupData{
		Wallets: []domain.Wallet{{ID: "new", Name: "New", Currency: domain.CurrencyUSD}},
	}))

	wallets, err := store.Wallets().GetAll(ctx)
	require.NoError(t, err)
	require.Len(t, wallets, 1)
	require.Equal(t, "new", wallets[0].ID)

	// A backup without a selection clears the stored one.
	_, err = store.Settings().Get(ctx, domain.SettingSelectedWallet)
	var notFound *domain.ErrNotFound
	require.ErrorAs(t, err, &notFound)
}

func TestColSpecCreateSQLEmitsTableAndIndexes(t *testing.T) {
	t.Parallel()

	stmts := walletSpec().createSQL()
	require.NotEmpty(t, stmts)
	require.Contains(t, stmts[0], "CREATE TABLE IF NOT EXISTS wallets")
	require.Contains(t, stmts[0], "id TEXT PRIMARY KEY")
	require.Contains(t, stmts[0], "doc TEXT NOT NULL")

	// One CREATE INDEX per declared index column.
	require.Len(t, stmts, 1+len(walletSpec().indexes))
	for i, ix := range walletSpec().indexes {
		require.Contains(t, stmts[1+i], "CREATE INDEX IF NOT EXISTS idx_wallets_"+ix.column)
	}

	// The emitted DDL is executable as-is.
	db := openRawTestDB(t)
	for _, stmt := range walletSpec().createSQL() {
		_, err := db.Exec(stmt)
		require.NoError(t, err)
	}
	ok, err := TableExists(db, "wallets")
	require.NoError(t, err)
	require.True(t, ok)
}

func TestCollectionCount(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)
	ctx := context.Background()

	col := store.wallets.col
	n, err := col.Count(ctx)
	require.NoError(t, err)
	require.Equal(t, 0, n)

	require.NoError(t, store.Wallets().Add(ctx, &domain.Wallet{ID: "w1", Name: "Cash", Currency: domain.CurrencyBOB}))
	require.NoError(t, store.Wallets().Add(ctx, &domain.Wallet{ID: "w2", Name: "Bank", Currency: domain.CurrencyUSD}))

	n, err = col.Count(ctx)
	require.NoError(t, err)
	require.Equal(t, 2, n)

	require.NoError(t, store.Wallets().Delete(ctx, "w1"))
	n, err = col.Count(ctx)
	require.NoError(t, err)
	require.Equal(t, 1, n)
}
