// Package domain defines the persisted entities of the personal-finance
// tracker and the consistency rules that tie them together: wallets hold
// balances that only move through transactions, categories own their
// subcategories, expenses link back to the wallet they debited, and
// scheduled payments advance through a recurrence cycle.
package domain

// Currency is the ISO-ish currency code of a wallet. Arbitrary codes are
// accepted; these are the ones the app surfaces by default.
type Currency string

const (
	CurrencyBOB Currency = "BOB"
	CurrencyUSD Currency = "USD"
	CurrencyEUR Currency = "EUR"
	CurrencyBCH Currency = "BCH"
)

// Frequency is a subcategory budget cycle.
type Frequency string

const (
	FrequencyWeekly    Frequency = "semanal"
	FrequencyMonthly   Frequency = "mensual"
	FrequencyQuarterly Frequency = "trimestral"
	FrequencyYearly    Frequency = "anual"
)

// TransactionType classifies a ledger entry.
type TransactionType string

const (
	TransactionIncome      TransactionType = "income"
	TransactionExpense     TransactionType = "expense"
	TransactionTransferIn  TransactionType = "transfer_in"
	TransactionTransferOut TransactionType = "transfer_out"
)

// PaymentStatus is the lifecycle state of a scheduled payment.
type PaymentStatus string

const (
	PaymentPending   PaymentStatus = "pending"
	PaymentPaid      PaymentStatus = "paid"
	PaymentSkipped   PaymentStatus = "skipped"
	PaymentCancelled PaymentStatus = "cancelled"
)

// Recurrence is how a recurring scheduled payment advances its due date.
type Recurrence string

const (
	RecurWeekly    Recurrence = "weekly"
	RecurBiweekly  Recurrence = "biweekly"
	RecurMonthly   Recurrence = "monthly"
	RecurQuarterly Recurrence = "quarterly"
	RecurYearly    Recurrence = "yearly"
	RecurCustom    Recurrence = "custom"
)

// CategoryUnclassified is the sentinel category id for quick expenses that
// were recorded without picking a category. Bulk delete/move operations
// refuse to touch it.
const CategoryUnclassified = "unclassified"

// Wallet is a named balance-holding account in a single currency.
// Balance moves only through income/expense/transfer operations, each of
// which writes a matching Transaction.
type Wallet struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Currency    Currency `json:"currency"`
	Balance     float64  `json:"balance"`
	Description string   `json:"description,omitempty"`
	CreatedAt   string   `json:"createdAt"`
}

// Category is a user-defined budget grouping. Subcategories are embedded and
// owned: they have no lifecycle outside their parent record, and every
// subcategory change rewrites the whole category document so reads always see
// one category, one record.
type Category struct {
	ID            string        `json:"id"`
	Name          string        `json:"name"`
	Description   string        `json:"description,omitempty"`
	Subcategories []Subcategory `json:"subcategories"`
	CreatedAt     string        `json:"createdAt"`
}

// Subcategory carries the actual budget figure and its cycle. EndDate is
// always StartDate shifted by exactly one frequency period minus one day and
// is recomputed whenever StartDate or Frequency changes.
// Dates are zero-padded YYYY-MM-DD strings.
type Subcategory struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	Budget     float64   `json:"budget"`
	Frequency  Frequency `json:"frequency"`
	StartDate  string    `json:"startDate"`
	EndDate    string    `json:"endDate"`
	CategoryID string    `json:"categoryId"`
	CreatedAt  string    `json:"createdAt"`
	// Expanded is UI state that happens to ride along in the document.
	// It carries no durable meaning.
	Expanded bool `json:"expanded,omitempty"`
}

// SubcategoryUpdate is a partial update; nil fields are left untouched.
type SubcategoryUpdate struct {
	Name      *string    `json:"name,omitempty"`
	Budget    *float64   `json:"budget,omitempty"`
	Frequency *Frequency `json:"frequency,omitempty"`
	StartDate *string    `json:"startDate,omitempty"`
	Expanded  *bool      `json:"expanded,omitempty"`
}

// Expense is a recorded spend against a wallet. SubcategoryID == nil marks an
// intentionally unclassified "quick expense"; bulk operations must not
// silently destroy that state.
type Expense struct {
	ID            string  `json:"id"`
	Name          string  `json:"name"`
	Amount        float64 `json:"amount"`
	Date          string  `json:"date"`
	WalletID      string  `json:"walletId"`
	CategoryID    string  `json:"categoryId"`
	SubcategoryID *string `json:"subcategoryId"`
	CreatedAt     string  `json:"createdAt"`
}

// ArchivedExpense is an expense moved into the historical collection.
type ArchivedExpense struct {
	Expense
	ArchivedAt string `json:"archivedAt"`
}

// ExpenseFilter narrows GetFiltered. Zero-valued fields do not filter;
// all set fields are AND-combined. OnlyUnclassified matches quick expenses
// (nil subcategory) explicitly.
type ExpenseFilter struct {
	WalletID         string
	CategoryID       string
	SubcategoryID    string
	OnlyUnclassified bool
	DateFrom         string // inclusive, YYYY-MM-DD
	DateTo           string // inclusive, YYYY-MM-DD
}

// Transaction is an immutable ledger entry for a balance-affecting event.
// Expense-type entries use the derived id "exp-<expenseId>" so the link
// survives without a join table. Transfer pairs share one timestamp and
// carry reciprocal signed amounts.
type Transaction struct {
	ID          string          `json:"id"`
	WalletID    string          `json:"walletId"`
	Type        TransactionType `json:"type"`
	Amount      float64         `json:"amount"` // signed; expenses negative
	Description string          `json:"description,omitempty"`
	Date        string          `json:"date"`
}

// ExpenseTransactionID derives the ledger id linked to an expense.
func ExpenseTransactionID(expenseID string) string {
	return "exp-" + expenseID
}

// ExecutionEntry is one append-only record in a scheduled payment's history.
type ExecutionEntry struct {
	Date       string        `json:"date"`
	Status     PaymentStatus `json:"status"`
	Reason     string        `json:"reason,omitempty"`
	ExecutedAt string        `json:"executedAt"`
}

// ScheduledPayment is a future or recurring obligation. A recurring payment
// that is paid or skipped advances its due date and returns to pending; a
// one-time payment lands in a terminal status instead.
type ScheduledPayment struct {
	ID               string           `json:"id"`
	Name             string           `json:"name"`
	Amount           float64          `json:"amount"`
	WalletID         string           `json:"walletId"`
	CategoryID       string           `json:"categoryId"`
	SubcategoryID    *string          `json:"subcategoryId"`
	DueDate          string           `json:"dueDate"` // YYYY-MM-DD
	Status           PaymentStatus    `json:"status"`
	IsRecurring      bool             `json:"isRecurring"`
	Recurrence       Recurrence       `json:"recurrence,omitempty"`
	CustomDays       int              `json:"customDays,omitempty"`
	ExecutionHistory []ExecutionEntry `json:"executionHistory"`
	CreatedAt        string           `json:"createdAt"`
}

// PaymentStats aggregates the pending book for the overview screen.
type PaymentStats struct {
	PendingCount   int     `json:"pendingCount"`
	PendingTotal   float64 `json:"pendingTotal"`
	OverdueCount   int     `json:"overdueCount"`
	OverdueTotal   float64 `json:"overdueTotal"`
	UpcomingCount  int     `json:"upcomingCount"` // due within 7 days
	UpcomingTotal  float64 `json:"upcomingTotal"`
	RecurringCount int     `json:"recurringCount"`
}

// IncomeSource is a simple named record, keyed by name.
type IncomeSource struct {
	Name      string `json:"name"`
	CreatedAt string `json:"createdAt"`
}

// Setting is an app-level key/value pair (selected wallet, migration flags).
type Setting struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// Well-known setting keys.
const (
	SettingSelectedWallet = "selectedWallet"
	SettingLegacyMigrated = "legacy_migration_complete"
)

// BalanceSummary is the raw sum of wallet balances plus a per-currency
// breakdown. The total adds figures across currencies without conversion;
// callers that care about mixed currencies must use ByCurrency.
type BalanceSummary struct {
	Total      float64              `json:"total"`
	ByCurrency map[Currency]float64 `json:"byCurrency"`
}

// Backup is the export/import file shape.
type Backup struct {
	Version   int        `json:"version"`
	Timestamp string     `json:"timestamp"`
	Data      BackupData `json:"data"`
}

// BackupData carries full collection contents. Restore replaces each
// collection wholesale (clear then bulk insert).
type BackupData struct {
	Wallets            []Wallet           `json:"wallets"`
	Categories         []Category         `json:"categories"`
	Expenses           []Expense          `json:"expenses"`
	Transactions       []Transaction      `json:"transactions"`
	HistoricalExpenses []ArchivedExpense  `json:"historicalExpenses"`
	IncomeSources      []IncomeSource     `json:"incomeSources"`
	ScheduledPayments  []ScheduledPayment `json:"scheduledPayments"`
	SelectedWallet     string             `json:"selectedWallet,omitempty"`
}
