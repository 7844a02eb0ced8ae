package sqlite

import (
	"context"
	"database/sql"
	"errors"

	"github.com/rmamani/finanzas-go/internal/domain"
)

func walletSpec() colSpec[domain.Wallet] {
	return colSpec[domain.Wallet]{
		table: "wallets",
		key:   func(w *domain.Wallet) string { return w.ID },
		indexes: []index[domain.Wallet]{
			{column: "created_at", value: func(w *domain.Wallet) any { return w.CreatedAt }},
		},
	}
}

// WalletStore persists wallets. Balance adjustments are read-modify-write on
// the whole record; run them inside Store.InTx when they must stay consistent
// with expense/transaction writes.
type WalletStore struct {
	col *collection[domain.Wallet]
}

func newWalletStore(db *sql.DB) *WalletStore {
	return &WalletStore{col: newCollection(db, walletSpec())}
}

func (s *WalletStore) bind(tx *sql.Tx) *WalletStore {
	return &WalletStore{col: s.col.bind(tx)}
}

// Add assigns id and createdAt, then inserts.
func (s *WalletStore) Add(ctx context.Context, w *domain.Wallet) error {
	if w.ID == "" {
		w.ID = domain.NewID()
	}
	if w.CreatedAt == "" {
		w.CreatedAt = domain.NowISO()
	}
	return s.col.Add(ctx, w)
}

func (s *WalletStore) GetAll(ctx context.Context) ([]domain.Wallet, error) {
	return s.col.GetAll(ctx)
}

func (s *WalletStore) GetByID(ctx context.Context, id string) (*domain.Wallet, error) {
	return s.col.GetByID(ctx, id)
}

func (s *WalletStore) Update(ctx context.Context, w *domain.Wallet) error {
	return s.col.Update(ctx, w)
}

func (s *WalletStore) Delete(ctx context.Context, id string) error {
	return s.col.Delete(ctx, id)
}

// IncrementBalance credits the wallet by amount.
func (s *WalletStore) IncrementBalance(ctx context.Context, id string, amount float64) error {
	w, err := s.col.GetByID(ctx, id)
	if err != nil {
		return err
	}
	w.Balance += amount
	return s.col.Update(ctx, w)
}

// DecrementBalance debits the wallet by amount. Balances may go negative
// here; sufficiency checks happen in the orchestration layer before any
// mutation.
func (s *WalletStore) DecrementBalance(ctx context.Context, id string, amount float64) error {
	return s.IncrementBalance(ctx, id, -amount)
}

// HasSufficientBalance reports whether the wallet holds at least amount.
// An absent wallet simply has insufficient balance.
func (s *WalletStore) HasSufficientBalance(ctx context.Context, id string, amount float64) (bool, error) {
	w, err := s.col.GetByID(ctx, id)
	if err != nil {
		var notFound *domain.ErrNotFound
		if errors.As(err, &notFound) {
			return false, nil
		}
		return false, err
	}
	return w.Balance >= amount, nil
}

// TotalBalance sums all wallet balances. The total adds raw figures across
// currencies without conversion; the per-currency map is the honest view.
func (s *WalletStore) TotalBalance(ctx context.Context) (*domain.BalanceSummary, error) {
	wallets, err := s.col.GetAll(ctx)
	if err != nil {
		return nil, err
	}
	summary := &domain.BalanceSummary{ByCurrency: map[domain.Currency]float64{}}
	for _, w := range wallets {
		summary.Total += w.Balance
		summary.ByCurrency[w.Currency] += w.Balance
	}
	return summary, nil
}
