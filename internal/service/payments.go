package service

import (
	"context"

	"github.com/rmamani/finanzas-go/internal/domain"
	"github.com/rmamani/finanzas-go/internal/port"

	"go.uber.org/zap"
)

// CreateScheduledPayment validates and persists a scheduled payment.
func (s *Storage) CreateScheduledPayment(ctx context.Context, p *domain.ScheduledPayment) error {
	if p.Name == "" {
		return &domain.ErrValidation{Field: "name", Message: "required"}
	}
	if p.Amount <= 0 {
		return &domain.ErrValidation{Field: "amount", Message: "must be positive"}
	}
	if p.WalletID == "" {
		return &domain.ErrValidation{Field: "walletId", Message: "required"}
	}
	if p.DueDate != "" {
		if _, err := domain.ParseDate(p.DueDate); err != nil {
			return &domain.ErrValidation{Field: "dueDate", Message: "invalid format, use YYYY-MM-DD"}
		}
	}
	if p.IsRecurring && p.Recurrence == domain.RecurCustom && p.CustomDays <= 0 {
		return &domain.ErrValidation{Field: "customDays", Message: "must be positive for custom recurrence"}
	}

	return s.mutate(ctx, "CreateScheduledPayment", func(st port.Store) error {
		if _, err := st.Wallets().GetByID(ctx, p.WalletID); err != nil {
			return err
		}
		return st.ScheduledPayments().Add(ctx, p)
	})
}

func (s *Storage) ListScheduledPayments(ctx context.Context) ([]domain.ScheduledPayment, error) {
	return s.store.ScheduledPayments().GetAll(ctx)
}

func (s *Storage) GetScheduledPayment(ctx context.Context, id string) (*domain.ScheduledPayment, error) {
	return s.store.ScheduledPayments().GetByID(ctx, id)
}

func (s *Storage) OverduePayments(ctx context.Context) ([]domain.ScheduledPayment, error) {
	return s.store.ScheduledPayments().GetOverdue(ctx)
}

func (s *Storage) UpcomingPayments(ctx context.Context, days int) ([]domain.ScheduledPayment, error) {
	if days <= 0 {
		days = 7
	}
	return s.store.ScheduledPayments().GetUpcoming(ctx, days)
}

func (s *Storage) PaymentsThisMonth(ctx context.Context) ([]domain.ScheduledPayment, error) {
	return s.store.ScheduledPayments().GetThisMonth(ctx)
}

func (s *Storage) PaymentStats(ctx context.Context) (*domain.PaymentStats, error) {
	ctx, span := storageTracer.Start(ctx, "Storage.PaymentStats")
	defer span.End()
	return s.store.ScheduledPayments().GetStats(ctx)
}

// MarkPaymentPaid records a payment execution without touching wallets
// (for obligations settled outside the app). Use ExecuteScheduledPayment to
// also record the expense.
func (s *Storage) MarkPaymentPaid(ctx context.Context, id, actualDate string) (*domain.ScheduledPayment, error) {
	var p *domain.ScheduledPayment
	err := s.mutate(ctx, "MarkPaymentPaid", func(st port.Store) error {
		var err error
		p, err = st.ScheduledPayments().MarkAsPaid(ctx, id, actualDate)
		return err
	})
	if err != nil {
		return nil, err
	}
	return p, nil
}

// SkipPayment records a skipped occurrence with the reason.
func (s *Storage) SkipPayment(ctx context.Context, id, reason string) (*domain.ScheduledPayment, error) {
	var p *domain.ScheduledPayment
	err := s.mutate(ctx, "SkipPayment", func(st port.Store) error {
		var err error
		p, err = st.ScheduledPayments().SkipPayment(ctx, id, reason)
		return err
	})
	if err != nil {
		return nil, err
	}
	return p, nil
}

// CancelPayment puts a payment into terminal cancelled.
func (s *Storage) CancelPayment(ctx context.Context, id string) (*domain.ScheduledPayment, error) {
	var p *domain.ScheduledPayment
	err := s.mutate(ctx, "CancelPayment", func(st port.Store) error {
		var err error
		p, err = st.ScheduledPayments().CancelPayment(ctx, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return p, nil
}

// PostponePayment shifts the due date by days without touching status.
func (s *Storage) PostponePayment(ctx context.Context, id string, days int) (*domain.ScheduledPayment, error) {
	if days <= 0 {
		return nil, &domain.ErrValidation{Field: "days", Message: "must be positive"}
	}
	var p *domain.ScheduledPayment
	err := s.mutate(ctx, "PostponePayment", func(st port.Store) error {
		var err error
		p, err = st.ScheduledPayments().PostponePayment(ctx, id, days)
		return err
	})
	if err != nil {
		return nil, err
	}
	return p, nil
}

// DeleteScheduledPayment removes a payment record entirely.
func (s *Storage) DeleteScheduledPayment(ctx context.Context, id string) error {
	return s.mutate(ctx, "DeleteScheduledPayment", func(st port.Store) error {
		return st.ScheduledPayments().Delete(ctx, id)
	})
}

// ExecuteScheduledPayment turns a due payment into a real expense — expense
// record, wallet debit, ledger entry — and then advances or terminates the
// payment via its paid transition. One transaction end to end: a failed
// expense leaves the payment untouched.
func (s *Storage) ExecuteScheduledPayment(ctx context.Context, id string) (*domain.ScheduledPayment, error) {
	var updated *domain.ScheduledPayment
	err := s.mutate(ctx, "ExecuteScheduledPayment", func(st port.Store) error {
		p, err := st.ScheduledPayments().GetByID(ctx, id)
		if err != nil {
			return err
		}
		if p.Status != domain.PaymentPending {
			return &domain.ErrValidation{Field: "status", Message: "only pending payments can be executed"}
		}

		wallet, err := st.Wallets().GetByID(ctx, p.WalletID)
		if err != nil {
			return err
		}
		if wallet.Balance < p.Amount {
			return &domain.ErrInsufficientFunds{WalletID: wallet.ID, Available: wallet.Balance, Required: p.Amount}
		}

		expense := &domain.Expense{
			Name:          p.Name,
			Amount:        p.Amount,
			Date:          domain.Today(),
			WalletID:      p.WalletID,
			CategoryID:    p.CategoryID,
			SubcategoryID: p.SubcategoryID,
		}
		if err := st.Expenses().Add(ctx, expense); err != nil {
			return err
		}
		if err := st.Wallets().DecrementBalance(ctx, p.WalletID, p.Amount); err != nil {
			return err
		}
		if _, err := st.Transactions().AddExpense(ctx, expense.ID, p.WalletID, p.Amount, p.Name); err != nil {
			return err
		}

		updated, err = st.ScheduledPayments().MarkAsPaid(ctx, id, "")
		return err
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("scheduled payment executed",
		zap.String("payment_id", id),
		zap.Float64("amount", updated.Amount),
		zap.Bool("recurring", updated.IsRecurring),
	)
	return updated, nil
}
