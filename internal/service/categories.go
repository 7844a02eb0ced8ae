package service

import (
	"context"
	"fmt"

	"github.com/rmamani/finanzas-go/internal/domain"
	"github.com/rmamani/finanzas-go/internal/port"

	"go.uber.org/zap"
)

// DeletePolicy decides what happens to expenses referencing a category or
// subcategory being removed.
type DeletePolicy string

const (
	// PolicyDelete removes the referencing expenses outright.
	PolicyDelete DeletePolicy = "delete"
	// PolicyMove reassigns them to a target category/subcategory.
	PolicyMove DeletePolicy = "move"
)

// CreateCategory validates and persists a new category.
func (s *Storage) CreateCategory(ctx context.Context, c *domain.Category) error {
	if c.Name == "" {
		return &domain.ErrValidation{Field: "name", Message: "required"}
	}
	return s.mutate(ctx, "CreateCategory", func(st port.Store) error {
		return st.Categories().Add(ctx, c)
	})
}

// UpdateCategory rewrites a category's own fields, preserving its
// subcategories unless the caller explicitly replaces them.
func (s *Storage) UpdateCategory(ctx context.Context, c *domain.Category) error {
	return s.mutate(ctx, "UpdateCategory", func(st port.Store) error {
		return st.Categories().Update(ctx, c)
	})
}

// AddSubcategory appends a subcategory to its parent, deriving the budget
// cycle bounds.
func (s *Storage) AddSubcategory(ctx context.Context, categoryID string, sub *domain.Subcategory) error {
	if sub.Name == "" {
		return &domain.ErrValidation{Field: "name", Message: "required"}
	}
	if sub.Budget < 0 {
		return &domain.ErrValidation{Field: "budget", Message: "must not be negative"}
	}
	switch sub.Frequency {
	case domain.FrequencyWeekly, domain.FrequencyMonthly, domain.FrequencyQuarterly, domain.FrequencyYearly:
	default:
		return &domain.ErrValidation{Field: "frequency", Message: fmt.Sprintf("unknown frequency '%s'", sub.Frequency)}
	}

	return s.mutate(ctx, "AddSubcategory", func(st port.Store) error {
		return st.Categories().AddSubcategory(ctx, categoryID, sub)
	})
}

// UpdateSubcategory applies a partial update; the budget cycle end date is
// recomputed by the repository when the start date or frequency changes.
func (s *Storage) UpdateSubcategory(ctx context.Context, categoryID, subID string, update domain.SubcategoryUpdate) (*domain.Subcategory, error) {
	if update.Budget != nil && *update.Budget < 0 {
		return nil, &domain.ErrValidation{Field: "budget", Message: "must not be negative"}
	}

	var updated *domain.Subcategory
	err := s.mutate(ctx, "UpdateSubcategory", func(st port.Store) error {
		var err error
		updated, err = st.Categories().UpdateSubcategory(ctx, categoryID, subID, update)
		return err
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// DeleteSubcategory removes a subcategory, first disposing of its expenses
// per the policy: delete them, or move them to the target subcategory.
func (s *Storage) DeleteSubcategory(ctx context.Context, categoryID, subID string, policy DeletePolicy, targetSubID string) error {
	err := s.mutate(ctx, "DeleteSubcategory", func(st port.Store) error {
		switch policy {
		case PolicyDelete:
			if _, err := st.Expenses().DeleteBySubcategoryID(ctx, subID); err != nil {
				return err
			}
		case PolicyMove:
			targetCategoryID, err := s.categoryOfSubcategory(ctx, st, targetSubID)
			if err != nil {
				return err
			}
			if _, err := st.Expenses().MoveToSubcategory(ctx, subID, targetSubID, targetCategoryID); err != nil {
				return err
			}
		default:
			return &domain.ErrValidation{Field: "policy", Message: fmt.Sprintf("unknown policy '%s'", policy)}
		}
		return st.Categories().DeleteSubcategory(ctx, categoryID, subID)
	})
	if err != nil {
		return err
	}

	s.logger.Info("subcategory deleted",
		zap.String("category_id", categoryID),
		zap.String("subcategory_id", subID),
		zap.String("policy", string(policy)),
	)
	return nil
}

// DeleteCategory removes a category. With PolicyDelete its expenses go too;
// with PolicyMove every subcategory is re-homed onto the target category and
// the expenses re-pointed before the record is deleted.
func (s *Storage) DeleteCategory(ctx context.Context, categoryID string, policy DeletePolicy, targetCategoryID string) error {
	err := s.mutate(ctx, "DeleteCategory", func(st port.Store) error {
		switch policy {
		case PolicyDelete:
			if _, err := st.Expenses().DeleteByCategoryID(ctx, categoryID); err != nil {
				return err
			}
		case PolicyMove:
			if err := s.moveCategoryContents(ctx, st, categoryID, targetCategoryID); err != nil {
				return err
			}
		default:
			return &domain.ErrValidation{Field: "policy", Message: fmt.Sprintf("unknown policy '%s'", policy)}
		}
		return st.Categories().Delete(ctx, categoryID)
	})
	if err != nil {
		return err
	}

	s.logger.Info("category deleted",
		zap.String("category_id", categoryID),
		zap.String("policy", string(policy)),
	)
	return nil
}

// moveCategoryContents re-homes every subcategory of source onto target and
// re-points the source's expenses at the target category.
func (s *Storage) moveCategoryContents(ctx context.Context, st port.Store, sourceID, targetID string) error {
	if targetID == "" || targetID == sourceID {
		return &domain.ErrValidation{Field: "target", Message: "a different target category is required"}
	}

	source, err := st.Categories().GetByID(ctx, sourceID)
	if err != nil {
		return err
	}
	target, err := st.Categories().GetByID(ctx, targetID)
	if err != nil {
		return err
	}

	for _, sub := range source.Subcategories {
		sub.CategoryID = target.ID
		target.Subcategories = append(target.Subcategories, sub)
	}
	if err := st.Categories().Update(ctx, target); err != nil {
		return err
	}

	expenses, err := st.Expenses().GetByCategoryID(ctx, sourceID)
	if err != nil {
		return err
	}
	for _, e := range expenses {
		e.CategoryID = target.ID
		if err := st.Expenses().Update(ctx, &e); err != nil {
			return err
		}
	}
	return nil
}

// categoryOfSubcategory finds the parent category id of a subcategory.
func (s *Storage) categoryOfSubcategory(ctx context.Context, st port.Store, subID string) (string, error) {
	if subID == "" {
		return "", &domain.ErrValidation{Field: "target", Message: "target subcategory required"}
	}
	categories, err := st.Categories().GetAll(ctx)
	if err != nil {
		return "", err
	}
	for _, cat := range categories {
		for _, sub := range cat.Subcategories {
			if sub.ID == subID {
				return cat.ID, nil
			}
		}
	}
	return "", &domain.ErrNotFound{Resource: "subcategory", ID: subID}
}
