package service

import (
	"context"

	"github.com/rmamani/finanzas-go/internal/domain"
	"github.com/rmamani/finanzas-go/internal/port"

	"go.uber.org/zap"
)

// RecordIncome credits the wallet and writes the income ledger entry.
func (s *Storage) RecordIncome(ctx context.Context, walletID string, amount float64, source string) error {
	if amount <= 0 {
		return &domain.ErrValidation{Field: "amount", Message: "must be positive"}
	}
	if walletID == "" {
		return &domain.ErrValidation{Field: "walletId", Message: "required"}
	}

	err := s.mutate(ctx, "RecordIncome", func(st port.Store) error {
		if _, err := st.Wallets().GetByID(ctx, walletID); err != nil {
			return err
		}
		if err := st.Wallets().IncrementBalance(ctx, walletID, amount); err != nil {
			return err
		}
		_, err := st.Transactions().AddIncome(ctx, walletID, amount, source)
		return err
	})
	if err != nil {
		return err
	}

	s.logger.Info("income recorded",
		zap.String("wallet_id", walletID),
		zap.Float64("amount", amount),
		zap.String("source", source),
	)
	return nil
}

// Transfer moves amount between wallets: both must exist and the source must
// cover the amount, or nothing mutates. On success the source is debited,
// the destination credited, and a paired out/in ledger entry written with a
// shared timestamp.
func (s *Storage) Transfer(ctx context.Context, fromWalletID, toWalletID string, amount float64) error {
	if amount <= 0 {
		return &domain.ErrValidation{Field: "amount", Message: "must be positive"}
	}
	if fromWalletID == "" || toWalletID == "" {
		return &domain.ErrValidation{Field: "walletId", Message: "source and destination required"}
	}
	if fromWalletID == toWalletID {
		return &domain.ErrValidation{Field: "walletId", Message: "source and destination must differ"}
	}

	err := s.mutate(ctx, "Transfer", func(st port.Store) error {
		source, err := st.Wallets().GetByID(ctx, fromWalletID)
		if err != nil {
			return err
		}
		if _, err := st.Wallets().GetByID(ctx, toWalletID); err != nil {
			return err
		}
		if source.Balance < amount {
			return &domain.ErrInsufficientFunds{WalletID: source.ID, Available: source.Balance, Required: amount}
		}

		if err := st.Wallets().DecrementBalance(ctx, fromWalletID, amount); err != nil {
			return err
		}
		if err := st.Wallets().IncrementBalance(ctx, toWalletID, amount); err != nil {
			return err
		}
		_, _, err = st.Transactions().AddTransfer(ctx, fromWalletID, toWalletID, amount)
		return err
	})
	if err != nil {
		return err
	}

	s.logger.Info("transfer completed",
		zap.String("from", fromWalletID),
		zap.String("to", toWalletID),
		zap.Float64("amount", amount),
	)
	return nil
}
