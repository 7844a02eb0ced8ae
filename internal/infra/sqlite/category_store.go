package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/rmamani/finanzas-go/internal/domain"
)

func categorySpec() colSpec[domain.Category] {
	return colSpec[domain.Category]{
		table: "categories",
		key:   func(c *domain.Category) string { return c.ID },
		indexes: []index[domain.Category]{
			{column: "created_at", value: func(c *domain.Category) any { return c.CreatedAt }},
		},
	}
}

// CategoryStore persists categories with their embedded subcategories.
// Subcategories have no storage identity of their own: every subcategory
// change reads the parent, edits the array, and rewrites the whole record,
// so readers always observe one category, one record.
type CategoryStore struct {
	col *collection[domain.Category]
	now func() time.Time
}

func newCategoryStore(db *sql.DB) *CategoryStore {
	return &CategoryStore{col: newCollection(db, categorySpec()), now: time.Now}
}

func (s *CategoryStore) bind(tx *sql.Tx) *CategoryStore {
	return &CategoryStore{col: s.col.bind(tx), now: s.now}
}

// Add assigns id, createdAt and an empty subcategory list, then inserts.
func (s *CategoryStore) Add(ctx context.Context, c *domain.Category) error {
	if c.ID == "" {
		c.ID = domain.NewID()
	}
	if c.CreatedAt == "" {
		c.CreatedAt = domain.NowISO()
	}
	if c.Subcategories == nil {
		c.Subcategories = []domain.Subcategory{}
	}
	return s.col.Add(ctx, c)
}

func (s *CategoryStore) GetAll(ctx context.Context) ([]domain.Category, error) {
	return s.col.GetAll(ctx)
}

func (s *CategoryStore) GetByID(ctx context.Context, id string) (*domain.Category, error) {
	return s.col.GetByID(ctx, id)
}

// Update rewrites the category. When the caller leaves Subcategories nil the
// stored array is preserved; categories never lose their children by
// accident.
func (s *CategoryStore) Update(ctx context.Context, c *domain.Category) error {
	if c.Subcategories == nil {
		existing, err := s.col.GetByID(ctx, c.ID)
		if err != nil {
			return err
		}
		c.Subcategories = existing.Subcategories
	}
	return s.col.Update(ctx, c)
}

func (s *CategoryStore) Delete(ctx context.Context, id string) error {
	return s.col.Delete(ctx, id)
}

// AddSubcategory assigns id/createdAt/categoryId, derives the budget cycle
// bounds, and rewrites the parent. A missing start date defaults to the
// frequency-aligned start of the current period; the end date is always
// start plus one period minus one day.
func (s *CategoryStore) AddSubcategory(ctx context.Context, categoryID string, sub *domain.Subcategory) error {
	cat, err := s.col.GetByID(ctx, categoryID)
	if err != nil {
		return err
	}

	if sub.ID == "" {
		sub.ID = domain.NewID()
	}
	sub.CategoryID = categoryID
	if sub.CreatedAt == "" {
		sub.CreatedAt = domain.NowISO()
	}

	start, err := s.resolveStart(sub.StartDate, sub.Frequency)
	if err != nil {
		return err
	}
	sub.StartDate = start.Format(domain.DateLayout)
	sub.EndDate = domain.PeriodEnd(sub.Frequency, start).Format(domain.DateLayout)

	cat.Subcategories = append(cat.Subcategories, *sub)
	return s.col.Update(ctx, cat)
}

func (s *CategoryStore) resolveStart(startDate string, freq domain.Frequency) (time.Time, error) {
	if startDate == "" {
		return domain.PeriodStart(freq, s.now()), nil
	}
	start, err := domain.ParseDate(startDate)
	if err != nil {
		return time.Time{}, &domain.ErrValidation{Field: "startDate", Message: "invalid format, use YYYY-MM-DD"}
	}
	return start, nil
}

// UpdateSubcategory applies a partial update and recomputes the end date
// whenever the start date or frequency changed.
func (s *CategoryStore) UpdateSubcategory(ctx context.Context, categoryID, subID string, update domain.SubcategoryUpdate) (*domain.Subcategory, error) {
	cat, err := s.col.GetByID(ctx, categoryID)
	if err != nil {
		return nil, err
	}

	for i := range cat.Subcategories {
		sub := &cat.Subcategories[i]
		if sub.ID != subID {
			continue
		}

		if update.Name != nil {
			sub.Name = *update.Name
		}
		if update.Budget != nil {
			sub.Budget = *update.Budget
		}
		if update.Expanded != nil {
			sub.Expanded = *update.Expanded
		}

		cycleChanged := update.Frequency != nil || update.StartDate != nil
		if update.Frequency != nil {
			sub.Frequency = *update.Frequency
		}
		if update.StartDate != nil {
			sub.StartDate = *update.StartDate
		}
		if cycleChanged {
			start, err := domain.ParseDate(sub.StartDate)
			if err != nil {
				return nil, &domain.ErrValidation{Field: "startDate", Message: "invalid format, use YYYY-MM-DD"}
			}
			sub.EndDate = domain.PeriodEnd(sub.Frequency, start).Format(domain.DateLayout)
		}

		if err := s.col.Update(ctx, cat); err != nil {
			return nil, err
		}
		return sub, nil
	}

	return nil, &domain.ErrNotFound{Resource: "subcategory", ID: subID}
}

// DeleteSubcategory removes one subcategory from its parent, leaving the
// rest of the array intact.
func (s *CategoryStore) DeleteSubcategory(ctx context.Context, categoryID, subID string) error {
	cat, err := s.col.GetByID(ctx, categoryID)
	if err != nil {
		return err
	}

	kept := cat.Subcategories[:0]
	found := false
	for _, sub := range cat.Subcategories {
		if sub.ID == subID {
			found = true
			continue
		}
		kept = append(kept, sub)
	}
	if !found {
		return &domain.ErrNotFound{Resource: "subcategory", ID: subID}
	}
	cat.Subcategories = kept
	return s.col.Update(ctx, cat)
}
