// Package stats aggregates orders and negotiations into the dashboard
// overview numbers. Everything is computed on read from the store.
package stats

import (
	"log/slog"
	"time"

	"autopier/entity"
	"autopier/internal/lib/sl"
)

type Repository interface {
	GetOrders() ([]entity.Order, error)
	GetNegotiations() ([]entity.Negotiation, error)
}

type Service struct {
	repo Repository
	now  func() time.Time
	log  *slog.Logger
}

func NewStatsService(logger *slog.Logger) *Service {
	return &Service{
		now: time.Now,
		log: logger.With(sl.Module("stats-service")),
	}
}

func (s *Service) SetRepository(repo Repository) { s.repo = repo }

// Totals is the dashboard headline block. Sales count only COMPLETED
// orders; active negotiations are the non-final ones.
type Totals struct {
	SalesMonth         int     `json:"vendasMes"`
	SalesWeek          int     `json:"vendasSemana"`
	RevenueMonth       float64 `json:"faturamentoMes"`
	AverageTicket      float64 `json:"ticketMedio"`
	PendingOrders      int     `json:"pedidosPendentes"`
	CompletedOrders    int     `json:"pedidosConcluidos"`
	ActiveNegotiations int     `json:"negociacoesAtivas"`
}

// MonthSales is one point of the six-month sales series.
type MonthSales struct {
	Month   string  `json:"mes"`
	Sales   int     `json:"vendas"`
	Revenue float64 `json:"valor"`
}

// Overview is the full stats payload.
type Overview struct {
	Totals       Totals         `json:"stats"`
	SalesByMonth []MonthSales   `json:"salesByMonth"`
	StatusCounts map[string]int `json:"statusCounts"`
}

var monthNames = []string{"Jan", "Fev", "Mar", "Abr", "Mai", "Jun", "Jul", "Ago", "Set", "Out", "Nov", "Dez"}

// Overview computes the dashboard payload. Read failures degrade to a
// zeroed overview.
func (s *Service) Overview() Overview {
	orders, err := s.repo.GetOrders()
	if err != nil {
		s.log.Error("list orders", sl.Err(err))
	}
	negotiations, err := s.repo.GetNegotiations()
	if err != nil {
		s.log.Error("list negotiations", sl.Err(err))
	}

	now := s.now()
	startOfMonth := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	startOfWeek := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location()).
		AddDate(0, 0, -int(now.Weekday()))

	var totals Totals
	statusCounts := map[string]int{
		entity.OrderPending:    0,
		entity.OrderProcessing: 0,
		entity.OrderCompleted:  0,
		entity.OrderCancelled:  0,
	}

	for _, o := range orders {
		statusCounts[o.Status]++
		switch o.Status {
		case entity.OrderPending, entity.OrderProcessing:
			totals.PendingOrders++
		case entity.OrderCompleted:
			totals.CompletedOrders++
			if !o.CreatedAt.Before(startOfMonth) {
				totals.SalesMonth++
				totals.RevenueMonth += o.TotalPrice
			}
			if !o.CreatedAt.Before(startOfWeek) {
				totals.SalesWeek++
			}
		}
	}
	if totals.SalesMonth > 0 {
		totals.AverageTicket = totals.RevenueMonth / float64(totals.SalesMonth)
	}

	for _, n := range negotiations {
		if !entity.TerminalNegotiationStatus(n.Status) {
			totals.ActiveNegotiations++
		}
	}

	return Overview{
		Totals:       totals,
		SalesByMonth: s.salesSeries(orders, now),
		StatusCounts: statusCounts,
	}
}

// salesSeries buckets completed orders into the last six calendar months.
func (s *Service) salesSeries(orders []entity.Order, now time.Time) []MonthSales {
	series := make([]MonthSales, 0, 6)
	for i := 5; i >= 0; i-- {
		monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location()).AddDate(0, -i, 0)
		monthEnd := monthStart.AddDate(0, 1, 0)

		point := MonthSales{Month: monthNames[monthStart.Month()-1]}
		for _, o := range orders {
			if o.Status != entity.OrderCompleted {
				continue
			}
			if !o.CreatedAt.Before(monthStart) && o.CreatedAt.Before(monthEnd) {
				point.Sales++
				point.Revenue += o.TotalPrice
			}
		}
		series = append(series, point)
	}
	return series
}
