package sqlite

import (
	"context"
	"errors"

	"github.com/rmamani/finanzas-go/internal/domain"
	"github.com/rmamani/finanzas-go/internal/port"
)

// Snapshot reads the full contents of every collection for backup export.
func (s *Store) Snapshot(ctx context.Context) (*domain.BackupData, error) {
	data := &domain.BackupData{}
	var err error

	if data.Wallets, err = s.wallets.GetAll(ctx); err != nil {
		return nil, err
	}
	if data.Categories, err = s.categories.GetAll(ctx); err != nil {
		return nil, err
	}
	if data.Expenses, err = s.expenses.GetAll(ctx); err != nil {
		return nil, err
	}
	if data.Transactions, err = s.transactions.GetAll(ctx); err != nil {
		return nil, err
	}
	if data.HistoricalExpenses, err = s.expenses.GetArchived(ctx); err != nil {
		return nil, err
	}
	if data.IncomeSources, err = s.incomeSources.GetAll(ctx); err != nil {
		return nil, err
	}
	if data.ScheduledPayments, err = s.payments.GetAll(ctx); err != nil {
		return nil, err
	}

	selected, err := s.settings.Get(ctx, domain.SettingSelectedWallet)
	if err != nil {
		var notFound *domain.ErrNotFound
		if !errors.As(err, &notFound) {
			return nil, err
		}
	}
	data.SelectedWallet = selected
	return data, nil
}

// Restore replaces each collection's contents wholesale, clear then bulk
// insert, inside one transaction so a failed import leaves prior data
// intact.
func (s *Store) Restore(ctx context.Context, data *domain.BackupData) error {
	return s.InTx(ctx, func(view port.Store) error {
		v := view.(*Store)

		if err := v.wallets.col.Clear(ctx); err != nil {
			return err
		}
		if err := v.wallets.col.UpdateMany(ctx, data.Wallets); err != nil {
			return err
		}

		if err := v.categories.col.Clear(ctx); err != nil {
			return err
		}
		if err := v.categories.col.UpdateMany(ctx, data.Categories); err != nil {
			return err
		}

		if err := v.expenses.col.Clear(ctx); err != nil {
			return err
		}
		if err := v.expenses.col.UpdateMany(ctx, data.Expenses); err != nil {
			return err
		}

		if err := v.expenses.hist.Clear(ctx); err != nil {
			return err
		}
		if err := v.expenses.hist.UpdateMany(ctx, data.HistoricalExpenses); err != nil {
			return err
		}

		if err := v.transactions.col.Clear(ctx); err != nil {
			return err
		}
		if err := v.transactions.col.UpdateMany(ctx, data.Transactions); err != nil {
			return err
		}

		if err := v.incomeSources.col.Clear(ctx); err != nil {
			return err
		}
		if err := v.incomeSources.col.UpdateMany(ctx, data.IncomeSources); err != nil {
			return err
		}

		if err := v.payments.col.Clear(ctx); err != nil {
			return err
		}
		if err := v.payments.col.UpdateMany(ctx, data.ScheduledPayments); err != nil {
			return err
		}

		if data.SelectedWallet != "" {
			return v.settings.Set(ctx, domain.SettingSelectedWallet, data.SelectedWallet)
		}
		return v.settings.Delete(ctx, domain.SettingSelectedWallet)
	})
}
