package handler

import (
	"net/http"

	"github.com/rmamani/finanzas-go/internal/infra/observability"
	"github.com/rmamani/finanzas-go/internal/notify"
	"github.com/rmamani/finanzas-go/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.uber.org/zap"
)

var tracer = otel.Tracer("handler")

// NewRouter creates the HTTP router with all routes and middleware.
// Handlers are thin: decode, call the storage service, map errors, encode.
func NewRouter(svc *service.Storage, notifier *notify.Notifier, metrics *observability.Metrics, logger *zap.Logger) http.Handler {
	r := chi.NewRouter()

	// --- Middleware ---
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(observability.ZapLoggerMiddleware(logger))
	r.Use(observability.TracingMiddleware)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Heartbeat("/ping"))

	// --- Operational endpoints ---
	r.Get("/healthz", healthzHandler(svc))
	r.Get("/readyz", readyzHandler())
	r.Handle("/metrics", promhttp.HandlerFor(metrics.Registry, promhttp.HandlerOpts{}))

	// --- API v1 ---
	r.Route("/api/v1", func(r chi.Router) {

		// Wallets
		r.Get("/wallets", listWalletsHandler(svc, logger))
		r.Post("/wallets", createWalletHandler(svc, logger))
		r.Get("/wallets/balance", totalBalanceHandler(svc, logger))
		r.Get("/wallets/selected", selectedWalletHandler(svc, logger))
		r.Put("/wallets/selected", selectWalletHandler(svc, logger))
		r.Get("/wallets/{walletId}", getWalletHandler(svc, logger))
		r.Put("/wallets/{walletId}", updateWalletHandler(svc, logger))
		r.Delete("/wallets/{walletId}", deleteWalletHandler(svc, logger))
		r.Post("/wallets/{walletId}/income", recordIncomeHandler(svc, logger))
		r.Get("/wallets/{walletId}/transactions", recentTransactionsHandler(svc, logger))

		// Transfers
		r.Post("/transfers", transferHandler(svc, logger))

		// Categories & subcategories
		r.Get("/categories", listCategoriesHandler(svc, logger))
		r.Post("/categories", createCategoryHandler(svc, logger))
		r.Get("/categories/{categoryId}", getCategoryHandler(svc, logger))
		r.Put("/categories/{categoryId}", updateCategoryHandler(svc, logger))
		r.Delete("/categories/{categoryId}", deleteCategoryHandler(svc, logger))
		r.Post("/categories/{categoryId}/subcategories", addSubcategoryHandler(svc, logger))
		r.Put("/categories/{categoryId}/subcategories/{subId}", updateSubcategoryHandler(svc, logger))
		r.Delete("/categories/{categoryId}/subcategories/{subId}", deleteSubcategoryHandler(svc, logger))

		// Expenses
		r.Get("/expenses", listExpensesHandler(svc, logger))
		r.Post("/expenses", recordExpenseHandler(svc, logger))
		r.Put("/expenses/{expenseId}", updateExpenseHandler(svc, logger))
		r.Delete("/expenses/{expenseId}", deleteExpenseHandler(svc, logger))
		r.Post("/expenses/archive", archiveExpensesHandler(svc, logger))
		r.Get("/expenses/archived", listArchivedExpensesHandler(svc, logger))

		// Scheduled payments
		r.Get("/payments", listPaymentsHandler(svc, logger))
		r.Post("/payments", createPaymentHandler(svc, logger))
		r.Get("/payments/overdue", overduePaymentsHandler(svc, logger))
		r.Get("/payments/upcoming", upcomingPaymentsHandler(svc, logger))
		r.Get("/payments/this-month", paymentsThisMonthHandler(svc, logger))
		r.Get("/payments/stats", paymentStatsHandler(svc, logger))
		r.Get("/payments/{paymentId}", getPaymentHandler(svc, logger))
		r.Delete("/payments/{paymentId}", deletePaymentHandler(svc, logger))
		r.Post("/payments/{paymentId}/pay", markPaymentPaidHandler(svc, logger))
		r.Post("/payments/{paymentId}/skip", skipPaymentHandler(svc, logger))
		r.Post("/payments/{paymentId}/cancel", cancelPaymentHandler(svc, logger))
		r.Post("/payments/{paymentId}/postpone", postponePaymentHandler(svc, logger))
		r.Post("/payments/{paymentId}/execute", executePaymentHandler(svc, logger))

		// Income sources
		r.Get("/income-sources", listIncomeSourcesHandler(svc, logger))
		r.Post("/income-sources", addIncomeSourceHandler(svc, logger))
		r.Delete("/income-sources/{name}", deleteIncomeSourceHandler(svc, logger))

		// Backup & reset
		r.Get("/backup", exportBackupHandler(svc, logger))
		r.Post("/backup", importBackupHandler(svc, logger))
		r.Post("/reset", resetHandler(svc, logger))

		// Change notifications (SSE)
		r.Get("/events", eventsHandler(notifier, logger))
	})

	return r
}

// ============================================================
// Health
// ============================================================

func healthzHandler(svc *service.Storage) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		// A cheap read proves the database file is reachable and migrated.
		if _, err := svc.ListWallets(r.Context()); err != nil {
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unhealthy"})
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
	}
}

func readyzHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
	}
}
