package service

import (
	"context"
	"encoding/json"

	"github.com/rmamani/finanzas-go/internal/domain"
	"github.com/rmamani/finanzas-go/internal/port"

	"go.uber.org/zap"
)

// backupVersion is the current backup file format version.
const backupVersion = 2

// ExportBackup snapshots every collection into the backup file shape.
func (s *Storage) ExportBackup(ctx context.Context) (*domain.Backup, error) {
	ctx, span := storageTracer.Start(ctx, "Storage.ExportBackup")
	defer span.End()

	data, err := s.store.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	return &domain.Backup{
		Version:   backupVersion,
		Timestamp: domain.NowISO(),
		Data:      *data,
	}, nil
}

// ImportBackup replaces all collections with the backup's contents. Legacy
// field names are normalized before anything is written; the whole restore
// is one transaction, so a malformed backup leaves existing data intact.
func (s *Storage) ImportBackup(ctx context.Context, raw []byte) error {
	var backup domain.Backup
	if err := json.Unmarshal(raw, &backup); err != nil {
		return &domain.ErrValidation{Field: "backup", Message: "not a valid backup file"}
	}
	if backup.Version <= 0 {
		return &domain.ErrValidation{Field: "version", Message: "missing backup version"}
	}

	NormalizeLegacyFields(raw, &backup.Data)

	err := s.mutate(ctx, "ImportBackup", func(st port.Store) error {
		return st.Restore(ctx, &backup.Data)
	})
	if err != nil {
		return err
	}

	s.logger.Info("backup imported",
		zap.Int("version", backup.Version),
		zap.Int("wallets", len(backup.Data.Wallets)),
		zap.Int("expenses", len(backup.Data.Expenses)),
	)
	return nil
}

// NormalizeLegacyFields maps renamed fields from older backup files onto the
// current shape. Old wallets carried the description under "purpose"; the
// alias wins only when the current field is empty.
func NormalizeLegacyFields(raw []byte, data *domain.BackupData) {
	var legacy struct {
		Data struct {
			Wallets []struct {
				ID      string `json:"id"`
				Purpose string `json:"purpose"`
			} `json:"wallets"`
		} `json:"data"`
	}
	if err := json.Unmarshal(raw, &legacy); err != nil {
		return
	}

	purposes := map[string]string{}
	for _, w := range legacy.Data.Wallets {
		if w.Purpose != "" {
			purposes[w.ID] = w.Purpose
		}
	}
	for i := range data.Wallets {
		if data.Wallets[i].Description == "" {
			if p, ok := purposes[data.Wallets[i].ID]; ok {
				data.Wallets[i].Description = p
			}
		}
	}
}

// ResetAll wipes every collection. The caller (the full app reset flow)
// decides whether to also delete the database file via the manager.
func (s *Storage) ResetAll(ctx context.Context) error {
	return s.mutate(ctx, "ResetAll", func(st port.Store) error {
		return st.Restore(ctx, &domain.BackupData{})
	})
}
