package handler

import (
	"net/http"

	"github.com/rmamani/finanzas-go/internal/domain"
	"github.com/rmamani/finanzas-go/internal/service"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// ============================================================
// Expenses
// ============================================================

type expenseRequest struct {
	Name          string  `json:"name"`
	Amount        float64 `json:"amount"`
	Date          string  `json:"date"`
	WalletID      string  `json:"walletId"`
	CategoryID    string  `json:"categoryId"`
	SubcategoryID *string `json:"subcategoryId"`
}

func listExpensesHandler(svc *service.Storage, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /api/v1/expenses")
		defer span.End()

		q := r.URL.Query()
		filter := domain.ExpenseFilter{
			WalletID:         q.Get("walletId"),
			CategoryID:       q.Get("categoryId"),
			SubcategoryID:    q.Get("subcategoryId"),
			OnlyUnclassified: q.Get("unclassified") == "true",
			DateFrom:         q.Get("from"),
			DateTo:           q.Get("to"),
		}

		expenses, err := svc.ListExpenses(ctx, filter)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"expenses": expenses})
	}
}

func recordExpenseHandler(svc *service.Storage, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /api/v1/expenses")
		defer span.End()

		var req expenseRequest
		if err := decodeJSON(r, &req); err != nil {
			handleServiceError(w, err, logger)
			return
		}

		expense := &domain.Expense{
			Name:          req.Name,
			Amount:        req.Amount,
			Date:          req.Date,
			WalletID:      req.WalletID,
			CategoryID:    req.CategoryID,
			SubcategoryID: req.SubcategoryID,
		}
		if err := svc.RecordExpense(ctx, expense); err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusCreated, expense)
	}
}

func updateExpenseHandler(svc *service.Storage, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "PUT /api/v1/expenses/{expenseId}")
		defer span.End()

		var req expenseRequest
		if err := decodeJSON(r, &req); err != nil {
			handleServiceError(w, err, logger)
			return
		}

		expense := &domain.Expense{
			ID:            chi.URLParam(r, "expenseId"),
			Name:          req.Name,
			Amount:        req.Amount,
			Date:          req.Date,
			WalletID:      req.WalletID,
			CategoryID:    req.CategoryID,
			SubcategoryID: req.SubcategoryID,
		}
		if err := svc.UpdateExpense(ctx, expense); err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, expense)
	}
}

func deleteExpenseHandler(svc *service.Storage, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "DELETE /api/v1/expenses/{expenseId}")
		defer span.End()

		if err := svc.DeleteExpense(ctx, chi.URLParam(r, "expenseId")); err != nil {
			handleServiceError(w, err, logger)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func archiveExpensesHandler(svc *service.Storage, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /api/v1/expenses/archive")
		defer span.End()

		var req struct {
			IDs []string `json:"ids"`
		}
		if err := decodeJSON(r, &req); err != nil {
			handleServiceError(w, err, logger)
			return
		}

		archived, err := svc.ArchiveExpenses(ctx, req.IDs)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, map[string]int{"archived": archived})
	}
}

func listArchivedExpensesHandler(svc *service.Storage, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /api/v1/expenses/archived")
		defer span.End()

		q := r.URL.Query()
		expenses, err := svc.ListArchivedExpenses(ctx, q.Get("categoryId"), q.Get("from"), q.Get("to"))
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"expenses": expenses})
	}
}
