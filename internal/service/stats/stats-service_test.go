package stats

import (
	"io"
	"log/slog"
	"testing"
	"time"

	"autopier/entity"
)

type fakeRepo struct {
	orders       []entity.Order
	negotiations []entity.Negotiation
}

func (f *fakeRepo) GetOrders() ([]entity.Order, error)             { return f.orders, nil }
func (f *fakeRepo) GetNegotiations() ([]entity.Negotiation, error) { return f.negotiations, nil }

func order(status string, price float64, createdAt time.Time) entity.Order {
	return entity.Order{Status: status, TotalPrice: price, CreatedAt: createdAt}
}

func TestOverviewTotals(t *testing.T) {
	// Wednesday June 18, 2025. Week starts Sunday June 15.
	now := time.Date(2025, 6, 18, 15, 0, 0, 0, time.UTC)

	repo := &fakeRepo{
		orders: []entity.Order{
			order(entity.OrderCompleted, 100000, time.Date(2025, 6, 16, 10, 0, 0, 0, time.UTC)),
			order(entity.OrderCompleted, 50000, time.Date(2025, 6, 2, 10, 0, 0, 0, time.UTC)),
			order(entity.OrderCompleted, 80000, time.Date(2025, 5, 20, 10, 0, 0, 0, time.UTC)),
			order(entity.OrderPending, 90000, now),
			order(entity.OrderProcessing, 90000, now),
			order(entity.OrderCancelled, 90000, now),
		},
		negotiations: []entity.Negotiation{
			{Status: entity.NegotiationPending},
			{Status: entity.NegotiationInProgress},
			{Status: entity.NegotiationCompleted},
			{Status: entity.NegotiationCancelled},
		},
	}

	svc := NewStatsService(slog.New(slog.NewTextHandler(io.Discard, nil)))
	svc.SetRepository(repo)
	svc.now = func() time.Time { return now }

	got := svc.Overview()

	if got.Totals.SalesMonth != 2 {
		t.Errorf("salesMonth = %d, want 2", got.Totals.SalesMonth)
	}
	if got.Totals.SalesWeek != 1 {
		t.Errorf("salesWeek = %d, want 1", got.Totals.SalesWeek)
	}
	if got.Totals.RevenueMonth != 150000 {
		t.Errorf("revenueMonth = %v, want 150000", got.Totals.RevenueMonth)
	}
	if got.Totals.AverageTicket != 75000 {
		t.Errorf("averageTicket = %v, want 75000", got.Totals.AverageTicket)
	}
	if got.Totals.PendingOrders != 2 {
		t.Errorf("pendingOrders = %d, want 2", got.Totals.PendingOrders)
	}
	if got.Totals.CompletedOrders != 3 {
		t.Errorf("completedOrders = %d, want 3", got.Totals.CompletedOrders)
	}
	if got.Totals.ActiveNegotiations != 2 {
		t.Errorf("activeNegotiations = %d, want 2", got.Totals.ActiveNegotiations)
	}

	if len(got.SalesByMonth) != 6 {
		t.Fatalf("salesByMonth = %d points, want 6", len(got.SalesByMonth))
	}
	current := got.SalesByMonth[5]
	if current.Month != "Jun" || current.Sales != 2 || current.Revenue != 150000 {
		t.Errorf("current month = %+v", current)
	}
	previous := got.SalesByMonth[4]
	if previous.Month != "Mai" || previous.Sales != 1 || previous.Revenue != 80000 {
		t.Errorf("previous month = %+v", previous)
	}

	if got.StatusCounts[entity.OrderCancelled] != 1 {
		t.Errorf("cancelled count = %d, want 1", got.StatusCounts[entity.OrderCancelled])
	}
}

func TestOverviewEmptyStore(t *testing.T) {
	svc := NewStatsService(slog.New(slog.NewTextHandler(io.Discard, nil)))
	svc.SetRepository(&fakeRepo{})

	got := svc.Overview()
	if got.Totals.AverageTicket != 0 {
		t.Errorf("averageTicket = %v, want 0 without sales", got.Totals.AverageTicket)
	}
	if len(got.SalesByMonth) != 6 {
		t.Errorf("salesByMonth = %d points, want 6", len(got.SalesByMonth))
	}
}
