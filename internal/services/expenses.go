package services

import (
	"context"
	"log/slog"

	"expansive/internal/amqp"
	"expansive/internal/core"
	"expansive/internal/storage"
)

// EventPublisher publishes expense lifecycle events. Implemented by
// *amqp.Client; nil disables publishing.
type EventPublisher interface {
	PublishExpenseEvent(ctx context.Context, ev *amqp.ExpenseEvent) error
}

// ExpenseService implements the per-user expense operations and the summary
// aggregation.
type ExpenseService struct {
	repo      *storage.Repository
	publisher EventPublisher
}

func NewExpenseService(repo *storage.Repository, publisher EventPublisher) *ExpenseService {
	return &ExpenseService{repo: repo, publisher: publisher}
}

// Add inserts a validated expense for the owner and publishes a best-effort
// created event. The event never fails the request; the row is already
// durable.
func (s *ExpenseService) Add(ctx context.Context, owner int64, ne core.NewExpense) (core.Expense, error) {
	expense, err := s.repo.CreateExpense(ctx, owner, ne)
	if err != nil {
		return core.Expense{}, err
	}

	slog.InfoContext(ctx, "Expense created",
		"expense_id", expense.ID,
		"user_id", owner,
		"title", expense.Title,
		"amount_cents", expense.Amount.Cents,
		"category", expense.Category)

	s.publish(ctx, amqp.NewExpenseEvent(
		amqp.EventExpenseCreated, expense.ID, owner, expense.Amount.Cents, expense.Category))

	return expense, nil
}

// List returns the owner's expenses, newest first.
func (s *ExpenseService) List(ctx context.Context, owner int64) ([]core.Expense, error) {
	return s.repo.ListExpenses(ctx, &owner)
}

// Delete removes an expense after the repository verifies ownership, then
// publishes a best-effort deleted event.
func (s *ExpenseService) Delete(ctx context.Context, owner, id int64) error {
	if err := s.repo.DeleteExpense(ctx, owner, id); err != nil {
		return err
	}

	slog.InfoContext(ctx, "Expense deleted",
		"expense_id", id,
		"user_id", owner)

	s.publish(ctx, amqp.NewExpenseEvent(amqp.EventExpenseDeleted, id, owner, 0, ""))
	return nil
}

// Summarize aggregates the owner's expenses: per-category sums, income vs.
// expense split, and the balance. Zero rows yield all-zero totals and an
// empty category map.
func (s *ExpenseService) Summarize(ctx context.Context, owner int64) (core.Summary, error) {
	totals, err := s.repo.CategoryTotals(ctx, &owner)
	if err != nil {
		return core.Summary{}, err
	}
	return core.Summarize(totals), nil
}

func (s *ExpenseService) publish(ctx context.Context, ev *amqp.ExpenseEvent) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.PublishExpenseEvent(ctx, ev); err != nil {
		slog.ErrorContext(ctx, "Failed to publish expense event",
			"error", err,
			"kind", ev.Kind,
			"expense_id", ev.ExpenseID)
	}
}
