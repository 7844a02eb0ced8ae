package sqlite

import (
	"context"
	"database/sql"

	"github.com/rmamani/finanzas-go/internal/domain"
)

func incomeSourceSpec() colSpec[domain.IncomeSource] {
	return colSpec[domain.IncomeSource]{
		table: "income_sources",
		key:   func(s *domain.IncomeSource) string { return s.Name },
	}
}

func settingsSpec() colSpec[domain.Setting] {
	return colSpec[domain.Setting]{
		table: "settings",
		key:   func(s *domain.Setting) string { return s.Key },
	}
}

// IncomeSourceStore persists named income sources, keyed by name.
type IncomeSourceStore struct {
	col *collection[domain.IncomeSource]
}

func newIncomeSourceStore(db *sql.DB) *IncomeSourceStore {
	return &IncomeSourceStore{col: newCollection(db, incomeSourceSpec())}
}

func (s *IncomeSourceStore) bind(tx *sql.Tx) *IncomeSourceStore {
	return &IncomeSourceStore{col: s.col.bind(tx)}
}

func (s *IncomeSourceStore) Add(ctx context.Context, src *domain.IncomeSource) error {
	if src.CreatedAt == "" {
		src.CreatedAt = domain.NowISO()
	}
	return s.col.Add(ctx, src)
}

func (s *IncomeSourceStore) GetAll(ctx context.Context) ([]domain.IncomeSource, error) {
	return s.col.GetAll(ctx)
}

func (s *IncomeSourceStore) Delete(ctx context.Context, name string) error {
	return s.col.Delete(ctx, name)
}

// SettingsStore persists app-level key/value pairs.
type SettingsStore struct {
	col *collection[domain.Setting]
}

func newSettingsStore(db *sql.DB) *SettingsStore {
	return &SettingsStore{col: newCollection(db, settingsSpec())}
}

func (s *SettingsStore) bind(tx *sql.Tx) *SettingsStore {
	return &SettingsStore{col: s.col.bind(tx)}
}

// Get returns the value for key; domain.ErrNotFound when unset.
func (s *SettingsStore) Get(ctx context.Context, key string) (string, error) {
	setting, err := s.col.GetByID(ctx, key)
	if err != nil {
		return "", err
	}
	return setting.Value, nil
}

func (s *SettingsStore) Set(ctx context.Context, key, value string) error {
	return s.col.Update(ctx, &domain.Setting{Key: key, Value: value})
}

func (s *SettingsStore) Delete(ctx context.Context, key string) error {
	return s.col.Delete(ctx, key)
}
