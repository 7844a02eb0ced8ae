package integration_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/rmamani/finanzas-go/internal/domain"
	"github.com/rmamani/finanzas-go/internal/handler"
	"github.com/rmamani/finanzas-go/internal/infra/observability"
	"github.com/rmamani/finanzas-go/internal/infra/sqlite"
	"github.com/rmamani/finanzas-go/internal/migrate"
	"github.com/rmamani/finanzas-go/internal/notify"
	"github.com/rmamani/finanzas-go/internal/service"

	"go.uber.org/zap"
)

// TestIntegration_FullFlow boots the real stack — legacy import, SQLite
// store, service, router — and drives a complete user story over HTTP.
func TestIntegration_FullFlow(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	// --- Legacy data left behind by the previous app version ---
	legacyPath := filepath.Join(dir, "finanzas-data.json")
	legacy := `{
		"wallets": [
			{"id": "w-legacy", "name": "Efectivo", "currency": "BOB", "balance": 500, "purpose": "gastos diarios", "createdAt": "2023-01-01T00:00:00Z"}
		],
		"selectedWallet": "w-legacy"
	}`
	if err := os.WriteFile(legacyPath, []byte(legacy), 0o600); err != nil {
		t.Fatalf("write legacy file: %v", err)
	}

	// --- Boot ---
	mgr := sqlite.NewManager(filepath.Join(dir, "finanzas.db"), zap.NewNop())
	store, err := migrate.EnsureSchema(ctx, mgr, legacyPath, zap.NewNop())
	if err != nil {
		t.Fatalf("ensure schema: %v", err)
	}
	defer mgr.Close()

	notifier := notify.New(zap.NewNop())
	svc := service.NewStorage(store, notifier, observability.NewMetrics(), zap.NewNop())
	router := handler.NewRouter(svc, notifier, observability.NewMetrics(), zap.NewNop())
	server := httptest.NewServer(router)
	defer server.Close()

	get := func(path string, out any) {
		t.Helper()
		resp, err := http.Get(server.URL + path)
		if err != nil {
			t.Fatalf("GET %s: %v", path, err)
		}
		defer resp.Body.Close()
		if resp.StatusCode >= 400 {
			t.Fatalf("GET %s: status %d", path, resp.StatusCode)
		}
		if out != nil {
			if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
				t.Fatalf("decode GET %s: %v", path, err)
			}
		}
	}
	post := func(path string, body, out any) int {
		t.Helper()
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal: %v", err)
		}
		resp, err := http.Post(server.URL+path, "application/json", bytes.NewReader(raw))
		if err != nil {
			t.Fatalf("POST %s: %v", path, err)
		}
		defer resp.Body.Close()
		if out != nil && resp.StatusCode < 400 {
			if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
				t.Fatalf("decode POST %s: %v", path, err)
			}
		}
		return resp.StatusCode
	}

	// --- The legacy wallet arrived, selected and description-aliased ---
	var legacyWallet domain.Wallet
	get("/api/v1/wallets/w-legacy", &legacyWallet)
	if legacyWallet.Description != "gastos diarios" {
		t.Errorf("expected aliased description, got %q", legacyWallet.Description)
	}
	var selection map[string]string
	get("/api/v1/wallets/selected", &selection)
	if selection["walletId"] != "w-legacy" {
		t.Errorf("expected legacy selection, got %q", selection["walletId"])
	}

	// --- A category with a budgeted subcategory ---
	var cat domain.Category
	if code := post("/api/v1/categories", map[string]any{"name": "Comida"}, &cat); code != http.StatusCreated {
		t.Fatalf("create category: status %d", code)
	}
	var sub domain.Subcategory
	code := post("/api/v1/categories/"+cat.ID+"/subcategories", map[string]any{
		"name": "mercado", "budget": 300.0, "frequency": "mensual", "startDate": "2024-03-01",
	}, &sub)
	if code != http.StatusCreated {
		t.Fatalf("add subcategory: status %d", code)
	}
	if sub.EndDate != "2024-03-31" {
		t.Errorf("expected cycle end 2024-03-31, got %s", sub.EndDate)
	}

	// --- Spend against it ---
	var expense domain.Expense
	code = post("/api/v1/expenses", map[string]any{
		"name": "mercado semanal", "amount": 120.0, "walletId": "w-legacy",
		"categoryId": cat.ID, "subcategoryId": sub.ID,
	}, &expense)
	if code != http.StatusCreated {
		t.Fatalf("record expense: status %d", code)
	}
	get("/api/v1/wallets/w-legacy", &legacyWallet)
	if legacyWallet.Balance != 380 {
		t.Errorf("expected balance 380, got %v", legacyWallet.Balance)
	}

	// --- A second wallet and a transfer between them ---
	var bank domain.Wallet
	post("/api/v1/wallets", map[string]any{"name": "Banco", "currency": "BOB", "balance": 0.0}, &bank)
	if code := post("/api/v1/transfers", map[string]any{
		"fromWalletId": "w-legacy", "toWalletId": bank.ID, "amount": 80.0,
	}, nil); code != http.StatusCreated {
		t.Fatalf("transfer: status %d", code)
	}

	var summary domain.BalanceSummary
	get("/api/v1/wallets/balance", &summary)
	if summary.Total != 380 {
		t.Errorf("expected conserved total 380, got %v", summary.Total)
	}

	// --- A recurring obligation, executed ---
	var payment domain.ScheduledPayment
	code = post("/api/v1/payments", map[string]any{
		"name": "Internet", "amount": 50.0, "walletId": bank.ID, "categoryId": cat.ID,
		"dueDate": "2024-03-05", "isRecurring": true, "recurrence": "monthly",
	}, &payment)
	if code != http.StatusCreated {
		t.Fatalf("create payment: status %d", code)
	}
	var executed domain.ScheduledPayment
	if code := post("/api/v1/payments/"+payment.ID+"/execute", nil, &executed); code != http.StatusOK {
		t.Fatalf("execute payment: status %d", code)
	}
	if executed.DueDate != "2024-04-05" || executed.Status != domain.PaymentPending {
		t.Errorf("expected recurring payment advanced and pending, got %s/%s", executed.DueDate, executed.Status)
	}

	// --- Backup survives a full reset ---
	var backup domain.Backup
	get("/api/v1/backup", &backup)
	if len(backup.Data.Wallets) != 2 || len(backup.Data.Expenses) != 2 {
		t.Fatalf("unexpected backup contents: wallets=%d expenses=%d",
			len(backup.Data.Wallets), len(backup.Data.Expenses))
	}

	if code := post("/api/v1/reset", nil, nil); code != http.StatusOK {
		t.Fatalf("reset: status %d", code)
	}
	var emptied struct {
		Wallets []domain.Wallet `json:"wallets"`
	}
	get("/api/v1/wallets", &emptied)
	if len(emptied.Wallets) != 0 {
		t.Fatalf("expected empty store after reset, got %d wallets", len(emptied.Wallets))
	}

	raw, err := json.Marshal(backup)
	if err != nil {
		t.Fatalf("marshal backup: %v", err)
	}
	resp, err := http.Post(server.URL+"/api/v1/backup", "application/json", bytes.NewReader(raw))
	if err != nil {
		t.Fatalf("import backup: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("import backup: status %d", resp.StatusCode)
	}

	get("/api/v1/wallets/balance", &summary)
	if summary.Total != 330 {
		t.Errorf("expected restored total 330, got %v", summary.Total)
	}
}
