package handler

import (
	"net/http"

	"github.com/rmamani/finanzas-go/internal/domain"
	"github.com/rmamani/finanzas-go/internal/service"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// ============================================================
// Categories
// ============================================================

func listCategoriesHandler(svc *service.Storage, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /api/v1/categories")
		defer span.End()

		categories, err := svc.ListCategories(ctx)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"categories": categories})
	}
}

func createCategoryHandler(svc *service.Storage, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /api/v1/categories")
		defer span.End()

		var req struct {
			Name        string `json:"name"`
			Description string `json:"description"`
		}
		if err := decodeJSON(r, &req); err != nil {
			handleServiceError(w, err, logger)
			return
		}

		category := &domain.Category{Name: req.Name, Description: req.Description}
		if err := svc.CreateCategory(ctx, category); err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusCreated, category)
	}
}

func getCategoryHandler(svc *service.Storage, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /api/v1/categories/{categoryId}")
		defer span.End()

		category, err := svc.GetCategory(ctx, chi.URLParam(r, "categoryId"))
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, category)
	}
}

func updateCategoryHandler(svc *service.Storage, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "PUT /api/v1/categories/{categoryId}")
		defer span.End()

		var req struct {
			Name        string `json:"name"`
			Description string `json:"description"`
		}
		if err := decodeJSON(r, &req); err != nil {
			handleServiceError(w, err, logger)
			return
		}

		category := &domain.Category{
			ID:          chi.URLParam(r, "categoryId"),
			Name:        req.Name,
			Description: req.Description,
		}
		if err := svc.UpdateCategory(ctx, category); err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, category)
	}
}

// deletePolicyFromQuery reads ?policy=delete|move&target=<id>. Policy
// defaults to delete when absent.
func deletePolicyFromQuery(r *http.Request) (service.DeletePolicy, string, error) {
	policy := service.DeletePolicy(r.URL.Query().Get("policy"))
	target := r.URL.Query().Get("target")
	switch policy {
	case "":
		policy = service.PolicyDelete
	case service.PolicyDelete, service.PolicyMove:
	default:
		return "", "", &domain.ErrValidation{Field: "policy", Message: "must be delete or move"}
	}
	if policy == service.PolicyMove && target == "" {
		return "", "", &domain.ErrValidation{Field: "target", Message: "required for move policy"}
	}
	return policy, target, nil
}

func deleteCategoryHandler(svc *service.Storage, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "DELETE /api/v1/categories/{categoryId}")
		defer span.End()

		policy, target, err := deletePolicyFromQuery(r)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		if err := svc.DeleteCategory(ctx, chi.URLParam(r, "categoryId"), policy, target); err != nil {
			handleServiceError(w, err, logger)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// ============================================================
// Subcategories
// ============================================================

func addSubcategoryHandler(svc *service.Storage, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /api/v1/categories/{categoryId}/subcategories")
		defer span.End()

		var req struct {
			Name      string  `json:"name"`
			Budget    float64 `json:"budget"`
			Frequency string  `json:"frequency"`
			StartDate string  `json:"startDate"`
		}
		if err := decodeJSON(r, &req); err != nil {
			handleServiceError(w, err, logger)
			return
		}

		sub := &domain.Subcategory{
			Name:      req.Name,
			Budget:    req.Budget,
			Frequency: domain.Frequency(req.Frequency),
			StartDate: req.StartDate,
		}
		if err := svc.AddSubcategory(ctx, chi.URLParam(r, "categoryId"), sub); err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusCreated, sub)
	}
}

func updateSubcategoryHandler(svc *service.Storage, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "PUT /api/v1/categories/{categoryId}/subcategories/{subId}")
		defer span.End()

		var update domain.SubcategoryUpdate
		if err := decodeJSON(r, &update); err != nil {
			handleServiceError(w, err, logger)
			return
		}

		sub, err := svc.UpdateSubcategory(ctx, chi.URLParam(r, "categoryId"), chi.URLParam(r, "subId"), update)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, sub)
	}
}

func deleteSubcategoryHandler(svc *service.Storage, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "DELETE /api/v1/categories/{categoryId}/subcategories/{subId}")
		defer span.End()

		policy, target, err := deletePolicyFromQuery(r)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		if err := svc.DeleteSubcategory(ctx, chi.URLParam(r, "categoryId"), chi.URLParam(r, "subId"), policy, target); err != nil {
			handleServiceError(w, err, logger)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}
