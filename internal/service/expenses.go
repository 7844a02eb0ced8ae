package service

import (
	"context"

	"github.com/rmamani/finanzas-go/internal/domain"
	"github.com/rmamani/finanzas-go/internal/port"

	"go.uber.org/zap"
)

// RecordExpense persists the expense, debits the wallet, and writes the
// linked ledger entry, all in one transaction. The wallet must exist and
// hold at least the amount; otherwise nothing mutates.
func (s *Storage) RecordExpense(ctx context.Context, e *domain.Expense) error {
	if e.Amount <= 0 {
		return &domain.ErrValidation{Field: "amount", Message: "must be positive"}
	}
	if e.WalletID == "" {
		return &domain.ErrValidation{Field: "walletId", Message: "required"}
	}
	if e.Date == "" {
		e.Date = domain.Today()
	}

	err := s.mutate(ctx, "RecordExpense", func(st port.Store) error {
		wallet, err := st.Wallets().GetByID(ctx, e.WalletID)
		if err != nil {
			return err
		}
		if wallet.Balance < e.Amount {
			return &domain.ErrInsufficientFunds{WalletID: wallet.ID, Available: wallet.Balance, Required: e.Amount}
		}

		if err := st.Expenses().Add(ctx, e); err != nil {
			return err
		}
		if err := st.Wallets().DecrementBalance(ctx, e.WalletID, e.Amount); err != nil {
			return err
		}
		_, err = st.Transactions().AddExpense(ctx, e.ID, e.WalletID, e.Amount, e.Name)
		return err
	})
	if err != nil {
		return err
	}

	s.logger.Info("expense recorded",
		zap.String("expense_id", e.ID),
		zap.String("wallet_id", e.WalletID),
		zap.Float64("amount", e.Amount),
	)
	return nil
}

// UpdateExpense replaces an expense, rebalancing wallets: the old wallet is
// credited back, the new wallet is checked for sufficiency (no mutation on
// reject) and debited, and the linked ledger entry is swapped.
func (s *Storage) UpdateExpense(ctx context.Context, e *domain.Expense) error {
	if e.Amount <= 0 {
		return &domain.ErrValidation{Field: "amount", Message: "must be positive"}
	}

	return s.mutate(ctx, "UpdateExpense", func(st port.Store) error {
		old, err := st.Expenses().GetByID(ctx, e.ID)
		if err != nil {
			return err
		}

		// Credit the old wallet first so a same-wallet update checks
		// sufficiency against the post-refund balance.
		if err := st.Wallets().IncrementBalance(ctx, old.WalletID, old.Amount); err != nil {
			return err
		}

		newWallet, err := st.Wallets().GetByID(ctx, e.WalletID)
		if err != nil {
			return err
		}
		if newWallet.Balance < e.Amount {
			return &domain.ErrInsufficientFunds{WalletID: newWallet.ID, Available: newWallet.Balance, Required: e.Amount}
		}
		if err := st.Wallets().DecrementBalance(ctx, e.WalletID, e.Amount); err != nil {
			return err
		}

		e.CreatedAt = old.CreatedAt
		if err := st.Expenses().Update(ctx, e); err != nil {
			return err
		}

		if err := st.Transactions().Delete(ctx, domain.ExpenseTransactionID(old.ID)); err != nil {
			return err
		}
		_, err = st.Transactions().AddExpense(ctx, e.ID, e.WalletID, e.Amount, e.Name)
		return err
	})
}

// DeleteExpense re-credits the wallet, deletes the expense, and removes the
// linked ledger entry.
func (s *Storage) DeleteExpense(ctx context.Context, expenseID string) error {
	return s.mutate(ctx, "DeleteExpense", func(st port.Store) error {
		e, err := st.Expenses().GetByID(ctx, expenseID)
		if err != nil {
			return err
		}
		if err := st.Wallets().IncrementBalance(ctx, e.WalletID, e.Amount); err != nil {
			return err
		}
		if err := st.Expenses().Delete(ctx, expenseID); err != nil {
			return err
		}
		return st.Transactions().Delete(ctx, domain.ExpenseTransactionID(expenseID))
	})
}

// ArchiveExpenses moves settled expenses into the historical collection.
func (s *Storage) ArchiveExpenses(ctx context.Context, ids []string) (int, error) {
	var archived int
	err := s.mutate(ctx, "ArchiveExpenses", func(st port.Store) error {
		var err error
		archived, err = st.Expenses().Archive(ctx, ids)
		return err
	})
	if err != nil {
		return 0, err
	}
	s.logger.Info("expenses archived", zap.Int("count", archived))
	return archived, nil
}
