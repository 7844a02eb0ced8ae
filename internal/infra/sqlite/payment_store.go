package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/rmamani/finanzas-go/internal/domain"
)

func paymentSpec() colSpec[domain.ScheduledPayment] {
	return colSpec[domain.ScheduledPayment]{
		table: "scheduled_payments",
		key:   func(p *domain.ScheduledPayment) string { return p.ID },
		indexes: []index[domain.ScheduledPayment]{
			{column: "wallet_id", value: func(p *domain.ScheduledPayment) any { return p.WalletID }},
			{column: "category_id", value: func(p *domain.ScheduledPayment) any { return p.CategoryID }},
			{column: "subcategory_id", value: func(p *domain.ScheduledPayment) any { return nullable(p.SubcategoryID) }},
			{column: "due_date", value: func(p *domain.ScheduledPayment) any { return p.DueDate }},
			{column: "status", value: func(p *domain.ScheduledPayment) any { return string(p.Status) }},
			{column: "is_recurring", value: func(p *domain.ScheduledPayment) any { return boolStr(p.IsRecurring) }},
			{column: "created_at", value: func(p *domain.ScheduledPayment) any { return p.CreatedAt }},
		},
	}
}

func boolStr(b bool) string {
	if b {
		return "1"
	}
	return "0"
}

// PaymentStore persists scheduled payments and drives their recurrence
// cycle. All date filters compare zero-padded YYYY-MM-DD strings, which
// order lexicographically the same as chronologically.
type PaymentStore struct {
	col *collection[domain.ScheduledPayment]
	now func() time.Time
}

func newPaymentStore(db *sql.DB) *PaymentStore {
	return &PaymentStore{col: newCollection(db, paymentSpec()), now: time.Now}
}

func (s *PaymentStore) bind(tx *sql.Tx) *PaymentStore {
	return &PaymentStore{col: s.col.bind(tx), now: s.now}
}

// Add assigns id/createdAt and defaults status to pending. A recurring
// payment without an explicit due date gets the next occurrence computed
// from today.
func (s *PaymentStore) Add(ctx context.Context, p *domain.ScheduledPayment) error {
	if p.ID == "" {
		p.ID = domain.NewID()
	}
	if p.CreatedAt == "" {
		p.CreatedAt = domain.NowISO()
	}
	if p.Status == "" {
		p.Status = domain.PaymentPending
	}
	if p.ExecutionHistory == nil {
		p.ExecutionHistory = []domain.ExecutionEntry{}
	}
	if p.DueDate == "" && p.IsRecurring {
		p.DueDate = domain.NextDueDate(s.now(), p.Recurrence, p.CustomDays).Format(domain.DateLayout)
	}
	return s.col.Add(ctx, p)
}

func (s *PaymentStore) GetAll(ctx context.Context) ([]domain.ScheduledPayment, error) {
	return s.col.GetAll(ctx)
}

func (s *PaymentStore) GetByID(ctx context.Context, id string) (*domain.ScheduledPayment, error) {
	return s.col.GetByID(ctx, id)
}

func (s *PaymentStore) Update(ctx context.Context, p *domain.ScheduledPayment) error {
	return s.col.Update(ctx, p)
}

func (s *PaymentStore) Delete(ctx context.Context, id string) error {
	return s.col.Delete(ctx, id)
}

// MarkAsPaid appends an execution entry. A recurring payment advances its
// due date and stays pending; a one-time payment lands in terminal paid.
func (s *PaymentStore) MarkAsPaid(ctx context.Context, id, actualDate string) (*domain.ScheduledPayment, error) {
	p, err := s.col.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if actualDate == "" {
		actualDate = s.now().Format(domain.DateLayout)
	}
	p.ExecutionHistory = append(p.ExecutionHistory, domain.ExecutionEntry{
		Date:       actualDate,
		Status:     domain.PaymentPaid,
		ExecutedAt: domain.NowISO(),
	})

	if p.IsRecurring {
		if err := s.advanceDueDate(p); err != nil {
			return nil, err
		}
		p.Status = domain.PaymentPending
	} else {
		p.Status = domain.PaymentPaid
	}

	if err := s.col.Update(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

// SkipPayment is the skip mirror of MarkAsPaid: history entry with the
// reason, recurring payments advance and stay pending, one-time payments
// land in terminal skipped.
func (s *PaymentStore) SkipPayment(ctx context.Context, id, reason string) (*domain.ScheduledPayment, error) {
	p, err := s.col.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	p.ExecutionHistory = append(p.ExecutionHistory, domain.ExecutionEntry{
		Date:       s.now().Format(domain.DateLayout),
		Status:     domain.PaymentSkipped,
		Reason:     reason,
		ExecutedAt: domain.NowISO(),
	})

	if p.IsRecurring {
		if err := s.advanceDueDate(p); err != nil {
			return nil, err
		}
		p.Status = domain.PaymentPending
	} else {
		p.Status = domain.PaymentSkipped
	}

	if err := s.col.Update(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

// CancelPayment puts the payment in terminal cancelled, recurring or not.
func (s *PaymentStore) CancelPayment(ctx context.Context, id string) (*domain.ScheduledPayment, error) {
	p, err := s.col.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	p.Status = domain.PaymentCancelled
	p.ExecutionHistory = append(p.ExecutionHistory, domain.ExecutionEntry{
		Date:       s.now().Format(domain.DateLayout),
		Status:     domain.PaymentCancelled,
		ExecutedAt: domain.NowISO(),
	})
	if err := s.col.Update(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

// PostponePayment shifts the due date by the given number of days and logs
// an audit entry. Status is untouched.
func (s *PaymentStore) PostponePayment(ctx context.Context, id string, days int) (*domain.ScheduledPayment, error) {
	p, err := s.col.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	due, err := domain.ParseDate(p.DueDate)
	if err != nil {
		return nil, &domain.ErrValidation{Field: "dueDate", Message: "stored due date is not YYYY-MM-DD"}
	}
	p.DueDate = due.AddDate(0, 0, days).Format(domain.DateLayout)
	p.ExecutionHistory = append(p.ExecutionHistory, domain.ExecutionEntry{
		Date:       s.now().Format(domain.DateLayout),
		Status:     p.Status,
		Reason:     "postponed",
		ExecutedAt: domain.NowISO(),
	})

	if err := s.col.Update(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *PaymentStore) advanceDueDate(p *domain.ScheduledPayment) error {
	due, err := domain.ParseDate(p.DueDate)
	if err != nil {
		return &domain.ErrValidation{Field: "dueDate", Message: "stored due date is not YYYY-MM-DD"}
	}
	p.DueDate = domain.NextDueDate(due, p.Recurrence, p.CustomDays).Format(domain.DateLayout)
	return nil
}

// GetPending returns payments still awaiting action.
func (s *PaymentStore) GetPending(ctx context.Context) ([]domain.ScheduledPayment, error) {
	return s.col.GetByIndex(ctx, "status", string(domain.PaymentPending))
}

// GetOverdue returns pending payments due strictly before today.
func (s *PaymentStore) GetOverdue(ctx context.Context) ([]domain.ScheduledPayment, error) {
	today := s.now().Format(domain.DateLayout)
	return s.filterPending(ctx, func(p *domain.ScheduledPayment) bool {
		return p.DueDate < today
	})
}

// GetUpcoming returns pending payments due from today through today+days.
func (s *PaymentStore) GetUpcoming(ctx context.Context, days int) ([]domain.ScheduledPayment, error) {
	today := s.now().Format(domain.DateLayout)
	horizon := s.now().AddDate(0, 0, days).Format(domain.DateLayout)
	return s.filterPending(ctx, func(p *domain.ScheduledPayment) bool {
		return p.DueDate >= today && p.DueDate <= horizon
	})
}

// GetThisMonth returns pending payments due in the current calendar month.
func (s *PaymentStore) GetThisMonth(ctx context.Context) ([]domain.ScheduledPayment, error) {
	first := domain.PeriodStart(domain.FrequencyMonthly, s.now())
	last := first.AddDate(0, 1, -1)
	lo, hi := first.Format(domain.DateLayout), last.Format(domain.DateLayout)
	return s.filterPending(ctx, func(p *domain.ScheduledPayment) bool {
		return p.DueDate >= lo && p.DueDate <= hi
	})
}

// GetFuture returns pending payments due after today.
func (s *PaymentStore) GetFuture(ctx context.Context) ([]domain.ScheduledPayment, error) {
	today := s.now().Format(domain.DateLayout)
	return s.filterPending(ctx, func(p *domain.ScheduledPayment) bool {
		return p.DueDate > today
	})
}

func (s *PaymentStore) filterPending(ctx context.Context, keep func(*domain.ScheduledPayment) bool) ([]domain.ScheduledPayment, error) {
	pending, err := s.GetPending(ctx)
	if err != nil {
		return nil, err
	}
	out := []domain.ScheduledPayment{}
	for i := range pending {
		if keep(&pending[i]) {
			out = append(out, pending[i])
		}
	}
	return out, nil
}

// GetStats aggregates counts and totals over the pending book.
func (s *PaymentStore) GetStats(ctx context.Context) (*domain.PaymentStats, error) {
	pending, err := s.GetPending(ctx)
	if err != nil {
		return nil, err
	}

	today := s.now().Format(domain.DateLayout)
	horizon := s.now().AddDate(0, 0, 7).Format(domain.DateLayout)

	stats := &domain.PaymentStats{}
	for _, p := range pending {
		stats.PendingCount++
		stats.PendingTotal += p.Amount
		if p.DueDate < today {
			stats.OverdueCount++
			stats.OverdueTotal += p.Amount
		}
		if p.DueDate >= today && p.DueDate <= horizon {
			stats.UpcomingCount++
			stats.UpcomingTotal += p.Amount
		}
		if p.IsRecurring {
			stats.RecurringCount++
		}
	}
	return stats, nil
}
