package handler

import (
	"net/http"
	"strconv"

	"github.com/rmamani/finanzas-go/internal/domain"
	"github.com/rmamani/finanzas-go/internal/service"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// ============================================================
// Scheduled payments
// ============================================================

func listPaymentsHandler(svc *service.Storage, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /api/v1/payments")
		defer span.End()

		payments, err := svc.ListScheduledPayments(ctx)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"payments": payments})
	}
}

func createPaymentHandler(svc *service.Storage, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /api/v1/payments")
		defer span.End()

		var req struct {
			Name          string  `json:"name"`
			Amount        float64 `json:"amount"`
			WalletID      string  `json:"walletId"`
			CategoryID    string  `json:"categoryId"`
			SubcategoryID *string `json:"subcategoryId"`
			DueDate       string  `json:"dueDate"`
			IsRecurring   bool    `json:"isRecurring"`
			Recurrence    string  `json:"recurrence"`
			CustomDays    int     `json:"customDays"`
		}
		if err := decodeJSON(r, &req); err != nil {
			handleServiceError(w, err, logger)
			return
		}

		payment := &domain.ScheduledPayment{
			Name:          req.Name,
			Amount:        req.Amount,
			WalletID:      req.WalletID,
			CategoryID:    req.CategoryID,
			SubcategoryID: req.SubcategoryID,
			DueDate:       req.DueDate,
			IsRecurring:   req.IsRecurring,
			Recurrence:    domain.Recurrence(req.Recurrence),
			CustomDays:    req.CustomDays,
		}
		if err := svc.CreateScheduledPayment(ctx, payment); err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusCreated, payment)
	}
}

func getPaymentHandler(svc *service.Storage, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /api/v1/payments/{paymentId}")
		defer span.End()

		payment, err := svc.GetScheduledPayment(ctx, chi.URLParam(r, "paymentId"))
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, payment)
	}
}

func overduePaymentsHandler(svc *service.Storage, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /api/v1/payments/overdue")
		defer span.End()

		payments, err := svc.OverduePayments(ctx)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"payments": payments})
	}
}

func upcomingPaymentsHandler(svc *service.Storage, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /api/v1/payments/upcoming")
		defer span.End()

		days := 7
		if daysStr := r.URL.Query().Get("days"); daysStr != "" {
			if n, err := strconv.Atoi(daysStr); err == nil && n > 0 {
				days = n
			}
		}

		payments, err := svc.UpcomingPayments(ctx, days)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"payments": payments})
	}
}

func paymentsThisMonthHandler(svc *service.Storage, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /api/v1/payments/this-month")
		defer span.End()

		payments, err := svc.PaymentsThisMonth(ctx)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"payments": payments})
	}
}

func paymentStatsHandler(svc *service.Storage, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /api/v1/payments/stats")
		defer span.End()

		stats, err := svc.PaymentStats(ctx)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, stats)
	}
}

func markPaymentPaidHandler(svc *service.Storage, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /api/v1/payments/{paymentId}/pay")
		defer span.End()

		var req struct {
			Date string `json:"date"`
		}
		// Body is optional; an empty date means today.
		_ = decodeJSON(r, &req)

		payment, err := svc.MarkPaymentPaid(ctx, chi.URLParam(r, "paymentId"), req.Date)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, payment)
	}
}

func skipPaymentHandler(svc *service.Storage, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /api/v1/payments/{paymentId}/skip")
		defer span.End()

		var req struct {
			Reason string `json:"reason"`
		}
		_ = decodeJSON(r, &req)

		payment, err := svc.SkipPayment(ctx, chi.URLParam(r, "paymentId"), req.Reason)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, payment)
	}
}

func cancelPaymentHandler(svc *service.Storage, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /api/v1/payments/{paymentId}/cancel")
		defer span.End()

		payment, err := svc.CancelPayment(ctx, chi.URLParam(r, "paymentId"))
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, payment)
	}
}

func postponePaymentHandler(svc *service.Storage, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /api/v1/payments/{paymentId}/postpone")
		defer span.End()

		var req struct {
			Days int `json:"days"`
		}
		if err := decodeJSON(r, &req); err != nil {
			handleServiceError(w, err, logger)
			return
		}

		payment, err := svc.PostponePayment(ctx, chi.URLParam(r, "paymentId"), req.Days)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, payment)
	}
}

func executePaymentHandler(svc *service.Storage, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /api/v1/payments/{paymentId}/execute")
		defer span.End()

		payment, err := svc.ExecuteScheduledPayment(ctx, chi.URLParam(r, "paymentId"))
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, payment)
	}
}

func deletePaymentHandler(svc *service.Storage, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "DELETE /api/v1/payments/{paymentId}")
		defer span.End()

		if err := svc.DeleteScheduledPayment(ctx, chi.URLParam(r, "paymentId")); err != nil {
			handleServiceError(w, err, logger)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}
