package sqlite

import (
	"context"
	"database/sql"
	"errors"

	"github.com/rmamani/finanzas-go/internal/domain"
)

func expenseSpec() colSpec[domain.Expense] {
	return colSpec[domain.Expense]{
		table: "expenses",
		key:   func(e *domain.Expense) string { return e.ID },
		indexes: []index[domain.Expense]{
			{column: "wallet_id", value: func(e *domain.Expense) any { return e.WalletID }},
			{column: "category_id", value: func(e *domain.Expense) any { return e.CategoryID }},
			{column: "subcategory_id", value: func(e *domain.Expense) any { return nullable(e.SubcategoryID) }},
			{column: "date", value: func(e *domain.Expense) any { return e.Date }},
			{column: "created_at", value: func(e *domain.Expense) any { return e.CreatedAt }},
		},
	}
}

func historicalSpec() colSpec[domain.ArchivedExpense] {
	return colSpec[domain.ArchivedExpense]{
		table: "historical_expenses",
		key:   func(e *domain.ArchivedExpense) string { return e.ID },
		indexes: []index[domain.ArchivedExpense]{
			{column: "category_id", value: func(e *domain.ArchivedExpense) any { return e.CategoryID }},
			{column: "subcategory_id", value: func(e *domain.ArchivedExpense) any { return nullable(e.SubcategoryID) }},
			{column: "date", value: func(e *domain.ArchivedExpense) any { return e.Date }},
			{column: "archived_at", value: func(e *domain.ArchivedExpense) any { return e.ArchivedAt }},
		},
	}
}

func nullable(s *string) any {
	if s == nil {
		return nil
	}
	return *s
}

// ExpenseStore persists active expenses and their archived history. Bulk
// delete/move operations refuse to touch the unclassified sentinel: quick
// expenses are protected state that category cleanup must not destroy.
type ExpenseStore struct {
	col  *collection[domain.Expense]
	hist *collection[domain.ArchivedExpense]
}

func newExpenseStore(db *sql.DB) *ExpenseStore {
	return &ExpenseStore{
		col:  newCollection(db, expenseSpec()),
		hist: newCollection(db, historicalSpec()),
	}
}

func (s *ExpenseStore) bind(tx *sql.Tx) *ExpenseStore {
	return &ExpenseStore{col: s.col.bind(tx), hist: s.hist.bind(tx)}
}

// Add assigns id and createdAt, then inserts.
func (s *ExpenseStore) Add(ctx context.Context, e *domain.Expense) error {
	if e.ID == "" {
		e.ID = domain.NewID()
	}
	if e.CreatedAt == "" {
		e.CreatedAt = domain.NowISO()
	}
	if e.CategoryID == "" {
		e.CategoryID = domain.CategoryUnclassified
	}
	return s.col.Add(ctx, e)
}

func (s *ExpenseStore) GetAll(ctx context.Context) ([]domain.Expense, error) {
	return s.col.GetAll(ctx)
}

func (s *ExpenseStore) GetByID(ctx context.Context, id string) (*domain.Expense, error) {
	return s.col.GetByID(ctx, id)
}

func (s *ExpenseStore) Update(ctx context.Context, e *domain.Expense) error {
	if e.CategoryID == "" {
		e.CategoryID = domain.CategoryUnclassified
	}
	return s.col.Update(ctx, e)
}

func (s *ExpenseStore) Delete(ctx context.Context, id string) error {
	return s.col.Delete(ctx, id)
}

func (s *ExpenseStore) GetByCategoryID(ctx context.Context, categoryID string) ([]domain.Expense, error) {
	return s.col.GetByIndex(ctx, "category_id", categoryID)
}

func (s *ExpenseStore) GetBySubcategoryID(ctx context.Context, subcategoryID string) ([]domain.Expense, error) {
	return s.col.GetByIndex(ctx, "subcategory_id", subcategoryID)
}

func (s *ExpenseStore) GetByWalletID(ctx context.Context, walletID string) ([]domain.Expense, error) {
	return s.col.GetByIndex(ctx, "wallet_id", walletID)
}

// GetFiltered AND-combines equality filters and the inclusive date range.
// Full scan plus in-memory filtering; there is no compound index and the
// working set is one person's expenses.
func (s *ExpenseStore) GetFiltered(ctx context.Context, filter domain.ExpenseFilter) ([]domain.Expense, error) {
	all, err := s.col.GetAll(ctx)
	if err != nil {
		return nil, err
	}

	out := []domain.Expense{}
	for _, e := range all {
		if filter.WalletID != "" && e.WalletID != filter.WalletID {
			continue
		}
		if filter.CategoryID != "" && e.CategoryID != filter.CategoryID {
			continue
		}
		if filter.SubcategoryID != "" && (e.SubcategoryID == nil || *e.SubcategoryID != filter.SubcategoryID) {
			continue
		}
		if filter.OnlyUnclassified && e.SubcategoryID != nil {
			continue
		}
		if filter.DateFrom != "" && e.Date < filter.DateFrom {
			continue
		}
		if filter.DateTo != "" && e.Date > filter.DateTo {
			continue
		}
		out = append(out, e)
	}
	return out, nil
}

// DeleteByCategoryID removes all expenses of a category and returns the
// count. The unclassified sentinel is refused outright.
func (s *ExpenseStore) DeleteByCategoryID(ctx context.Context, categoryID string) (int, error) {
	if categoryID == "" || categoryID == domain.CategoryUnclassified {
		return 0, &domain.ErrGuardedDeletion{Operation: "delete expenses by category"}
	}
	matches, err := s.col.GetByIndex(ctx, "category_id", categoryID)
	if err != nil {
		return 0, err
	}
	if err := s.col.DeleteMany(ctx, expenseIDs(matches)); err != nil {
		return 0, err
	}
	return len(matches), nil
}

// DeleteBySubcategoryID removes all expenses of a subcategory. A null/empty
// subcategory is the quick-expense sentinel and is refused.
func (s *ExpenseStore) DeleteBySubcategoryID(ctx context.Context, subcategoryID string) (int, error) {
	if subcategoryID == "" {
		return 0, &domain.ErrGuardedDeletion{Operation: "delete expenses by subcategory"}
	}
	matches, err := s.col.GetByIndex(ctx, "subcategory_id", subcategoryID)
	if err != nil {
		return 0, err
	}
	if err := s.col.DeleteMany(ctx, expenseIDs(matches)); err != nil {
		return 0, err
	}
	return len(matches), nil
}

// MoveToSubcategory re-points every expense of one subcategory at another,
// updating the category back-reference to the target's parent. Null
// endpoints are refused: quick expenses stay quick expenses.
func (s *ExpenseStore) MoveToSubcategory(ctx context.Context, fromSubID, toSubID, toCategoryID string) (int, error) {
	if fromSubID == "" || toSubID == "" {
		return 0, &domain.ErrGuardedDeletion{Operation: "move expenses between subcategories"}
	}
	matches, err := s.col.GetByIndex(ctx, "subcategory_id", fromSubID)
	if err != nil {
		return 0, err
	}
	for i := range matches {
		to := toSubID
		matches[i].SubcategoryID = &to
		matches[i].CategoryID = toCategoryID
	}
	if err := s.col.UpdateMany(ctx, matches); err != nil {
		return 0, err
	}
	return len(matches), nil
}

// Archive copies each matching expense into the historical collection with
// an archivedAt stamp, then deletes the originals. Copy-then-delete: a
// failure mid-way duplicates data instead of losing it. Ids with no active
// record are skipped.
func (s *ExpenseStore) Archive(ctx context.Context, ids []string) (int, error) {
	archivedAt := domain.NowISO()

	archived := []domain.ArchivedExpense{}
	for _, id := range ids {
		e, err := s.col.GetByID(ctx, id)
		if err != nil {
			var notFound *domain.ErrNotFound
			if errors.As(err, &notFound) {
				continue
			}
			return 0, err
		}
		archived = append(archived, domain.ArchivedExpense{Expense: *e, ArchivedAt: archivedAt})
	}

	if err := s.hist.UpdateMany(ctx, archived); err != nil {
		return 0, err
	}

	deleteIDs := make([]string, 0, len(archived))
	for _, a := range archived {
		deleteIDs = append(deleteIDs, a.ID)
	}
	if err := s.col.DeleteMany(ctx, deleteIDs); err != nil {
		return 0, err
	}
	return len(archived), nil
}

func (s *ExpenseStore) GetArchived(ctx context.Context) ([]domain.ArchivedExpense, error) {
	return s.hist.GetAll(ctx)
}

func (s *ExpenseStore) GetArchivedByCategory(ctx context.Context, categoryID string) ([]domain.ArchivedExpense, error) {
	return s.hist.GetByIndex(ctx, "category_id", categoryID)
}

func (s *ExpenseStore) GetArchivedByDateRange(ctx context.Context, from, to string) ([]domain.ArchivedExpense, error) {
	return s.hist.GetByIndexRange(ctx, "date", from, to)
}

func expenseIDs(expenses []domain.Expense) []string {
	ids := make([]string, 0, len(expenses))
	for _, e := range expenses {
		ids = append(ids, e.ID)
	}
	return ids
}
