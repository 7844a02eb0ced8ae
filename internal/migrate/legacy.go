// Package migrate carries the one-shot migration from the legacy flat
// key-value persistence file into the structured store, and the blunt
// schema-recovery path for databases missing expected collections.
package migrate

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/rmamani/finanzas-go/internal/domain"
	"github.com/rmamani/finanzas-go/internal/infra/sqlite"
	"github.com/rmamani/finanzas-go/internal/port"

	"go.uber.org/zap"
)

// legacyFile mirrors the old flat persistence format: one JSON document with
// one key per collection. Old wallets carried the description as "purpose".
type legacyFile struct {
	Wallets []struct {
		domain.Wallet
		Purpose string `json:"purpose"`
	} `json:"wallets"`
	Categories     []domain.Category     `json:"categories"`
	Expenses       []domain.Expense      `json:"expenses"`
	Transactions   []domain.Transaction  `json:"transactions"`
	IncomeSources  []domain.IncomeSource `json:"incomeSources"`
	SelectedWallet string                `json:"selectedWallet"`
}

// ImportLegacy copies the legacy file's records into the store, at most once
// per installation: a settings flag marks completion, and the flag is only
// written inside the same transaction as the data. The legacy file is left
// in place as a fallback source of truth until the user clears it.
//
// Returns true when a migration actually ran.
func ImportLegacy(ctx context.Context, store port.Store, path string, logger *zap.Logger) (bool, error) {
	if path == "" {
		return false, nil
	}

	done, err := migrationDone(ctx, store)
	if err != nil {
		return false, err
	}
	if done {
		return false, nil
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return false, nil
		}
		return false, fmt.Errorf("read legacy data: %w", err)
	}

	var legacy legacyFile
	if err := json.Unmarshal(raw, &legacy); err != nil {
		return false, fmt.Errorf("parse legacy data: %w", err)
	}

	err = store.InTx(ctx, func(st port.Store) error {
		for _, lw := range legacy.Wallets {
			w := lw.Wallet
			if w.Description == "" {
				w.Description = lw.Purpose
			}
			if err := st.Wallets().Update(ctx, &w); err != nil {
				return err
			}
		}
		for i := range legacy.Categories {
			if err := st.Categories().Update(ctx, &legacy.Categories[i]); err != nil {
				return err
			}
		}
		for i := range legacy.Expenses {
			if err := st.Expenses().Update(ctx, &legacy.Expenses[i]); err != nil {
				return err
			}
		}
		for i := range legacy.Transactions {
			if err := st.Transactions().Import(ctx, &legacy.Transactions[i]); err != nil {
				return err
			}
		}
		for i := range legacy.IncomeSources {
			if err := upsertIncomeSource(ctx, st, &legacy.IncomeSources[i]); err != nil {
				return err
			}
		}
		if legacy.SelectedWallet != "" {
			if err := st.Settings().Set(ctx, domain.SettingSelectedWallet, legacy.SelectedWallet); err != nil {
				return err
			}
		}
		return st.Settings().Set(ctx, domain.SettingLegacyMigrated, "true")
	})
	if err != nil {
		return false, err
	}

	logger.Info("legacy data migrated",
		zap.String("path", path),
		zap.Int("wallets", len(legacy.Wallets)),
		zap.Int("categories", len(legacy.Categories)),
		zap.Int("expenses", len(legacy.Expenses)),
	)
	return true, nil
}

func migrationDone(ctx context.Context, store port.Store) (bool, error) {
	v, err := store.Settings().Get(ctx, domain.SettingLegacyMigrated)
	if err != nil {
		var notFound *domain.ErrNotFound
		if errors.As(err, &notFound) {
			return false, nil
		}
		return false, err
	}
	return v == "true", nil
}

func upsertIncomeSource(ctx context.Context, st port.Store, src *domain.IncomeSource) error {
	if err := st.IncomeSources().Delete(ctx, src.Name); err != nil {
		return err
	}
	return st.IncomeSources().Add(ctx, src)
}

// EnsureSchema opens the database and verifies every collection expected at
// the current schema version exists. A stale schema is recovered
// destructively: close, delete the whole database, reinitialize at the
// current version, then re-run the legacy import if the legacy file is still
// around. Acceptable only because the legacy file remains the fallback
// source of truth.
func EnsureSchema(ctx context.Context, mgr *sqlite.Manager, legacyPath string, logger *zap.Logger) (*sqlite.Store, error) {
	store, err := mgr.Open(ctx)
	if err != nil {
		return nil, err
	}

	stale := false
	for _, table := range sqlite.ExpectedTables() {
		ok, err := sqlite.TableExists(store.DB(), table)
		if err != nil {
			return nil, err
		}
		if !ok {
			logger.Warn("stale schema detected", zap.String("missing_table", table))
			stale = true
			break
		}
	}

	if stale {
		store, err = mgr.Reset(ctx)
		if err != nil {
			return nil, err
		}
		logger.Warn("database reinitialized at current schema version",
			zap.Int("schema_version", sqlite.CurrentSchemaVersion()),
		)
	}

	if _, err := ImportLegacy(ctx, store, legacyPath, logger); err != nil {
		return nil, err
	}
	return store, nil
}
