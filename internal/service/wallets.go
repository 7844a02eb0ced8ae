package service

import (
	"context"
	"errors"

	"github.com/rmamani/finanzas-go/internal/domain"
	"github.com/rmamani/finanzas-go/internal/port"

	"go.uber.org/zap"
)

// CreateWallet validates and persists a new wallet.
func (s *Storage) CreateWallet(ctx context.Context, w *domain.Wallet) error {
	if w.Name == "" {
		return &domain.ErrValidation{Field: "name", Message: "required"}
	}
	if w.Currency == "" {
		return &domain.ErrValidation{Field: "currency", Message: "required"}
	}

	err := s.mutate(ctx, "CreateWallet", func(st port.Store) error {
		return st.Wallets().Add(ctx, w)
	})
	if err != nil {
		return err
	}

	s.logger.Info("wallet created",
		zap.String("wallet_id", w.ID),
		zap.String("currency", string(w.Currency)),
		zap.Float64("balance", w.Balance),
	)
	return nil
}

// UpdateWallet replaces a wallet's descriptive fields. The balance is taken
// from the stored record, never from the caller: balances move only through
// income/expense/transfer operations.
func (s *Storage) UpdateWallet(ctx context.Context, w *domain.Wallet) error {
	return s.mutate(ctx, "UpdateWallet", func(st port.Store) error {
		existing, err := st.Wallets().GetByID(ctx, w.ID)
		if err != nil {
			return err
		}
		w.Balance = existing.Balance
		w.CreatedAt = existing.CreatedAt
		return st.Wallets().Update(ctx, w)
	})
}

// DeleteWallet removes the wallet with its transactions and expenses, then
// repairs the selection: if the deleted wallet was selected, another
// remaining wallet takes its place, or the selection is cleared.
func (s *Storage) DeleteWallet(ctx context.Context, walletID string) error {
	err := s.mutate(ctx, "DeleteWallet", func(st port.Store) error {
		if _, err := st.Wallets().GetByID(ctx, walletID); err != nil {
			return err
		}

		if _, err := st.Transactions().DeleteByWallet(ctx, walletID); err != nil {
			return err
		}

		expenses, err := st.Expenses().GetByWalletID(ctx, walletID)
		if err != nil {
			return err
		}
		for _, e := range expenses {
			if err := st.Expenses().Delete(ctx, e.ID); err != nil {
				return err
			}
		}

		if err := st.Wallets().Delete(ctx, walletID); err != nil {
			return err
		}

		return s.repairSelection(ctx, st, walletID)
	})
	if err != nil {
		return err
	}

	s.logger.Info("wallet deleted", zap.String("wallet_id", walletID))
	return nil
}

// repairSelection re-points the selected-wallet setting after a deletion.
func (s *Storage) repairSelection(ctx context.Context, st port.Store, deletedID string) error {
	selected, err := st.Settings().Get(ctx, domain.SettingSelectedWallet)
	if err != nil {
		var notFound *domain.ErrNotFound
		if errors.As(err, &notFound) {
			return nil
		}
		return err
	}
	if selected != deletedID {
		return nil
	}

	remaining, err := st.Wallets().GetAll(ctx)
	if err != nil {
		return err
	}
	if len(remaining) == 0 {
		return st.Settings().Delete(ctx, domain.SettingSelectedWallet)
	}
	return st.Settings().Set(ctx, domain.SettingSelectedWallet, remaining[0].ID)
}
