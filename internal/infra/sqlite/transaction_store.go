package sqlite

import (
	"context"
	"database/sql"
	"sort"

	"github.com/rmamani/finanzas-go/internal/domain"
)

func transactionSpec() colSpec[domain.Transaction] {
	return colSpec[domain.Transaction]{
		table: "transactions",
		key:   func(t *domain.Transaction) string { return t.ID },
		indexes: []index[domain.Transaction]{
			{column: "wallet_id", value: func(t *domain.Transaction) any { return t.WalletID }},
			{column: "type", value: func(t *domain.Transaction) any { return string(t.Type) }},
			{column: "date", value: func(t *domain.Transaction) any { return t.Date }},
		},
	}
}

// TransactionStore persists the immutable ledger. The convenience
// constructors produce correctly shaped entries: expense amounts stored
// negative, transfer pairs sharing one timestamp with reciprocal signs.
type TransactionStore struct {
	col *collection[domain.Transaction]
}

func newTransactionStore(db *sql.DB) *TransactionStore {
	return &TransactionStore{col: newCollection(db, transactionSpec())}
}

func (s *TransactionStore) bind(tx *sql.Tx) *TransactionStore {
	return &TransactionStore{col: s.col.bind(tx)}
}

// AddIncome records a credit.
func (s *TransactionStore) AddIncome(ctx context.Context, walletID string, amount float64, source string) (*domain.Transaction, error) {
	t := &domain.Transaction{
		ID:          domain.NewID(),
		WalletID:    walletID,
		Type:        domain.TransactionIncome,
		Amount:      amount,
		Description: source,
		Date:        domain.NowISO(),
	}
	if err := s.col.Add(ctx, t); err != nil {
		return nil, err
	}
	return t, nil
}

// AddExpense records a debit linked to its expense via the derived id, with
// the amount stored negative.
func (s *TransactionStore) AddExpense(ctx context.Context, expenseID, walletID string, amount float64, description string) (*domain.Transaction, error) {
	t := &domain.Transaction{
		ID:          domain.ExpenseTransactionID(expenseID),
		WalletID:    walletID,
		Type:        domain.TransactionExpense,
		Amount:      -amount,
		Description: description,
		Date:        domain.NowISO(),
	}
	if err := s.col.Add(ctx, t); err != nil {
		return nil, err
	}
	return t, nil
}

// AddTransfer records the out/in pair for a wallet-to-wallet transfer.
// Both entries share one timestamp.
func (s *TransactionStore) AddTransfer(ctx context.Context, fromWalletID, toWalletID string, amount float64) (*domain.Transaction, *domain.Transaction, error) {
	now := domain.NowISO()
	out := &domain.Transaction{
		ID:          domain.NewID(),
		WalletID:    fromWalletID,
		Type:        domain.TransactionTransferOut,
		Amount:      -amount,
		Description: "transfer to " + toWalletID,
		Date:        now,
	}
	in := &domain.Transaction{
		ID:          domain.NewID(),
		WalletID:    toWalletID,
		Type:        domain.TransactionTransferIn,
		Amount:      amount,
		Description: "transfer from " + fromWalletID,
		Date:        now,
	}
	if err := s.col.Add(ctx, out); err != nil {
		return nil, nil, err
	}
	if err := s.col.Add(ctx, in); err != nil {
		return nil, nil, err
	}
	return out, in, nil
}

func (s *TransactionStore) GetAll(ctx context.Context) ([]domain.Transaction, error) {
	return s.col.GetAll(ctx)
}

func (s *TransactionStore) GetByWallet(ctx context.Context, walletID string) ([]domain.Transaction, error) {
	return s.col.GetByIndex(ctx, "wallet_id", walletID)
}

// GetRecent returns the wallet's newest transactions, date descending. The
// index supports the equality lookup; the sort happens in memory.
func (s *TransactionStore) GetRecent(ctx context.Context, walletID string, limit int) ([]domain.Transaction, error) {
	all, err := s.col.GetByIndex(ctx, "wallet_id", walletID)
	if err != nil {
		return nil, err
	}
	sort.Slice(all, func(i, j int) bool { return all[i].Date > all[j].Date })
	if limit > 0 && len(all) > limit {
		all = all[:limit]
	}
	return all, nil
}

// Import upserts a fully formed ledger record verbatim, preserving its id
// and timestamp. Used by the legacy migration.
func (s *TransactionStore) Import(ctx context.Context, t *domain.Transaction) error {
	return s.col.Update(ctx, t)
}

func (s *TransactionStore) Delete(ctx context.Context, id string) error {
	return s.col.Delete(ctx, id)
}

// DeleteByWallet removes every ledger entry referencing the wallet and
// returns the count removed.
func (s *TransactionStore) DeleteByWallet(ctx context.Context, walletID string) (int, error) {
	matches, err := s.col.GetByIndex(ctx, "wallet_id", walletID)
	if err != nil {
		return 0, err
	}
	ids := make([]string, 0, len(matches))
	for _, t := range matches {
		ids = append(ids, t.ID)
	}
	if err := s.col.DeleteMany(ctx, ids); err != nil {
		return 0, err
	}
	return len(ids), nil
}
