package handler

import (
	"net/http"
	"strconv"

	"github.com/rmamani/finanzas-go/internal/domain"
	"github.com/rmamani/finanzas-go/internal/service"

	"github.com/go-chi/chi/v5"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// ============================================================
// Wallets
// ============================================================

func listWalletsHandler(svc *service.Storage, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /api/v1/wallets")
		defer span.End()

		wallets, err := svc.ListWallets(ctx)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"wallets": wallets})
	}
}

func createWalletHandler(svc *service.Storage, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /api/v1/wallets")
		defer span.End()

		var req struct {
			Name        string  `json:"name"`
			Currency    string  `json:"currency"`
			Balance     float64 `json:"balance"`
			Description string  `json:"description"`
		}
		if err := decodeJSON(r, &req); err != nil {
			handleServiceError(w, err, logger)
			return
		}

		wallet := &domain.Wallet{
			Name:        req.Name,
			Currency:    domain.Currency(req.Currency),
			Balance:     req.Balance,
			Description: req.Description,
		}
		if err := svc.CreateWallet(ctx, wallet); err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusCreated, wallet)
	}
}

func getWalletHandler(svc *service.Storage, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /api/v1/wallets/{walletId}")
		defer span.End()

		walletID := chi.URLParam(r, "walletId")
		span.SetAttributes(attribute.String("wallet.id", walletID))

		wallet, err := svc.GetWallet(ctx, walletID)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, wallet)
	}
}

func updateWalletHandler(svc *service.Storage, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "PUT /api/v1/wallets/{walletId}")
		defer span.End()

		var req struct {
			Name        string `json:"name"`
			Currency    string `json:"currency"`
			Description string `json:"description"`
		}
		if err := decodeJSON(r, &req); err != nil {
			handleServiceError(w, err, logger)
			return
		}

		wallet := &domain.Wallet{
			ID:          chi.URLParam(r, "walletId"),
			Name:        req.Name,
			Currency:    domain.Currency(req.Currency),
			Description: req.Description,
		}
		if err := svc.UpdateWallet(ctx, wallet); err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, wallet)
	}
}

func deleteWalletHandler(svc *service.Storage, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "DELETE /api/v1/wallets/{walletId}")
		defer span.End()

		if err := svc.DeleteWallet(ctx, chi.URLParam(r, "walletId")); err != nil {
			handleServiceError(w, err, logger)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func totalBalanceHandler(svc *service.Storage, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /api/v1/wallets/balance")
		defer span.End()

		summary, err := svc.TotalBalance(ctx)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, summary)
	}
}

func selectedWalletHandler(svc *service.Storage, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /api/v1/wallets/selected")
		defer span.End()

		walletID, err := svc.SelectedWallet(ctx)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"walletId": walletID})
	}
}

func selectWalletHandler(svc *service.Storage, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "PUT /api/v1/wallets/selected")
		defer span.End()

		var req struct {
			WalletID string `json:"walletId"`
		}
		if err := decodeJSON(r, &req); err != nil {
			handleServiceError(w, err, logger)
			return
		}
		if err := svc.SelectWallet(ctx, req.WalletID); err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"walletId": req.WalletID})
	}
}

func recordIncomeHandler(svc *service.Storage, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /api/v1/wallets/{walletId}/income")
		defer span.End()

		var req struct {
			Amount float64 `json:"amount"`
			Source string  `json:"source"`
		}
		if err := decodeJSON(r, &req); err != nil {
			handleServiceError(w, err, logger)
			return
		}
		if err := svc.RecordIncome(ctx, chi.URLParam(r, "walletId"), req.Amount, req.Source); err != nil {
			handleServiceError(w, err, logger)
			return
		}
		w.WriteHeader(http.StatusCreated)
	}
}

func recentTransactionsHandler(svc *service.Storage, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /api/v1/wallets/{walletId}/transactions")
		defer span.End()

		limit := 20
		if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
			if n, err := strconv.Atoi(limitStr); err == nil && n > 0 {
				limit = n
			}
		}

		transactions, err := svc.RecentTransactions(ctx, chi.URLParam(r, "walletId"), limit)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"transactions": transactions})
	}
}

// ============================================================
// Transfers
// ============================================================

func transferHandler(svc *service.Storage, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /api/v1/transfers")
		defer span.End()

		var req struct {
			FromWalletID string  `json:"fromWalletId"`
			ToWalletID   string  `json:"toWalletId"`
			Amount       float64 `json:"amount"`
		}
		if err := decodeJSON(r, &req); err != nil {
			handleServiceError(w, err, logger)
			return
		}
		if err := svc.Transfer(ctx, req.FromWalletID, req.ToWalletID, req.Amount); err != nil {
			handleServiceError(w, err, logger)
			return
		}
		w.WriteHeader(http.StatusCreated)
	}
}

// ============================================================
// Income sources
// ============================================================

func listIncomeSourcesHandler(svc *service.Storage, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /api/v1/income-sources")
		defer span.End()

		sources, err := svc.ListIncomeSources(ctx)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"incomeSources": sources})
	}
}

func addIncomeSourceHandler(svc *service.Storage, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /api/v1/income-sources")
		defer span.End()

		var req struct {
			Name string `json:"name"`
		}
		if err := decodeJSON(r, &req); err != nil {
			handleServiceError(w, err, logger)
			return
		}
		if err := svc.AddIncomeSource(ctx, req.Name); err != nil {
			handleServiceError(w, err, logger)
			return
		}
		w.WriteHeader(http.StatusCreated)
	}
}

func deleteIncomeSourceHandler(svc *service.Storage, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "DELETE /api/v1/income-sources/{name}")
		defer span.End()

		if err := svc.DeleteIncomeSource(ctx, chi.URLParam(r, "name")); err != nil {
			handleServiceError(w, err, logger)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}
