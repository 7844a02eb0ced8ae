package sqlite

import (
	"context"
	"testing"
	"time"

	"github.com/rmamani/finanzas-go/internal/domain"

	"github.com/stretchr/testify/require"
)

func fixedNow(s string) func() time.Time {
	return func() time.Time {
		t, _ := time.Parse(domain.DateLayout, s)
		return t
	}
}

func addTestCategory(t *testing.T, store *Store, id, name string) *domain.Category {
	t.Helper()
	c := &domain.Category{ID: id, Name: name}
	require.NoError(t, store.Categories().Add(context.Background(), c))
	return c
}

func TestAddSubcategoryDerivesCycleBounds(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)
	store.categories.now = fixedNow("2024-03-14") // a Thursday
	ctx := context.Background()

	addTestCategory(t, store, "c1", "Food")

	tests := []struct {
		name      string
		freq      domain.Frequency
		startDate string
		wantStart string
		wantEnd   string
	}{
		{"weekly defaults to this monday", domain.FrequencyWeekly, "", "2024-03-11", "2024-03-17"},
		{"monthly defaults to the first", domain.FrequencyMonthly, "", "2024-03-01", "2024-03-31"},
		{"quarterly defaults to quarter start", domain.FrequencyQuarterly, "", "2024-01-01", "2024-03-31"},
		{"yearly defaults to january first", domain.FrequencyYearly, "", "2024-01-01", "2024-12-31"},
		{"explicit start is honored", domain.FrequencyMonthly, "2024-01-31", "2024-01-31", "2024-02-29"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sub := &domain.Subcategory{Name: tt.name, Budget: 100, Frequency: tt.freq, StartDate: tt.startDate}
			require.NoError(t, store.Categories().AddSubcategory(ctx, "c1", sub))
			require.Equal(t, tt.wantStart, sub.StartDate)
			require.Equal(t, tt.wantEnd, sub.EndDate)
			require.Equal(t, "c1", sub.CategoryID)
			require.NotEmpty(t, sub.ID)
		})
	}

	cat, err := store.Categories().GetByID(ctx, "c1")
	require.NoError(t, err)
	require.Len(t, cat.Subcategories, len(tests), "every subcategory lands in the parent record")
}

func TestAddSubcategoryRejectsBadStartDate(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)
	ctx := context.Background()
	addTestCategory(t, store, "c1", "Food")

	err := store.Categories().AddSubcategory(ctx, "c1", &domain.Subcategory{
		Name: "bad", Frequency: domain.FrequencyMonthly, StartDate: "14/03/2024",
	})
	var validation *domain.ErrValidation
	require.ErrorAs(t, err, &validation)
	require.Equal(t, "startDate", validation.Field)
}

func TestUpdateSubcategoryRecomputesEndDate(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)
	ctx := context.Background()
	addTestCategory(t, store, "c1", "Food")

	sub := &domain.Subcategory{Name: "groceries", Budget: 100, Frequency: domain.FrequencyMonthly, StartDate: "2024-03-01"}
	require.NoError(t, store.Categories().AddSubcategory(ctx, "c1", sub))

	// Budget-only updates leave the cycle alone.
	budget := 200.0
	updated, err := store.Categories().UpdateSubcategory(ctx, "c1", sub.ID, domain.SubcategoryUpdate{Budget: &budget})
	require.NoError(t, err)
	require.Equal(t, 200.0, updated.Budget)
	require.Equal(t, "2024-03-31", updated.EndDate)

	// A frequency change recomputes the end date from the current start.
	weekly := domain.FrequencyWeekly
	updated, err = store.Categories().UpdateSubcategory(ctx, "c1", sub.ID, domain.SubcategoryUpdate{Frequency: &weekly})
	require.NoError(t, err)
	require.Equal(t, "2024-03-07", updated.EndDate)

	// So does a start date change.
	start := "2024-01-31"
	monthly := domain.FrequencyMonthly
	updated, err = store.Categories().UpdateSubcategory(ctx, "c1", sub.ID, domain.SubcategoryUpdate{Frequency: &monthly, StartDate: &start})
	require.NoError(t, err)
	require.Equal(t, "2024-02-29", updated.EndDate)
}

func TestUpdateSubcategoryNotFound(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)
	ctx := context.Background()
	addTestCategory(t, store, "c1", "Food")

	name := "x"
	_, err := store.Categories().UpdateSubcategory(ctx, "c1", "missing", domain.SubcategoryUpdate{Name: &name})
	var notFound *domain.ErrNotFound
	require.ErrorAs(t, err, &notFound)
}

func TestDeleteSubcategoryKeepsSiblings(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)
	ctx := context.Background()
	addTestCategory(t, store, "c1", "Food")

	a := &domain.Subcategory{Name: "a", Frequency: domain.FrequencyMonthly, StartDate: "2024-03-01"}
	b := &domain.Subcategory{Name: "b", Frequency: domain.FrequencyMonthly, StartDate: "2024-03-01"}
	require.NoError(t, store.Categories().AddSubcategory(ctx, "c1", a))
	require.NoError(t, store.Categories().AddSubcategory(ctx, "c1", b))

	require.NoError(t, store.Categories().DeleteSubcategory(ctx, "c1", a.ID))

	cat, err := store.Categories().GetByID(ctx, "c1")
	require.NoError(t, err)
	require.Len(t, cat.Subcategories, 1)
	require.Equal(t, b.ID, cat.Subcategories[0].ID)

	var notFound *domain.ErrNotFound
	require.ErrorAs(t, store.Categories().DeleteSubcategory(ctx, "c1", a.ID), &notFound)
}

func TestCategoryUpdatePreservesSubcategoriesWhenNil(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)
	ctx := context.Background()
	addTestCategory(t, store, "c1", "Food")

	sub := &domain.Subcategory{Name: "groceries", Frequency: domain.FrequencyMonthly, StartDate: "2024-03-01"}
	require.NoError(t, store.Categories().AddSubcategory(ctx, "c1", sub))

	require.NoError(t, store.Categories().Update(ctx, &domain.Category{ID: "c1", Name: "Renamed"}))

	cat, err := store.Categories().GetByID(ctx, "c1")
	require.NoError(t, err)
	require.Equal(t, "Renamed", cat.Name)
	require.Len(t, cat.Subcategories, 1, "a rename must not drop the children")
}
