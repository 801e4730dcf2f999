// Package report aggregates the invoice ledger into revenue reports.
package report

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/buildium/backend/internal/domain/invoice"
	"github.com/buildium/backend/internal/domain/shared"
)

const monthKeyFormat = "2006-01"

// Granularity selects the bucket size for revenue aggregation.
type Granularity string

const (
	GranularityMonth Granularity = "month"
	GranularityWeek  Granularity = "week"
)

// PeriodRevenue aggregates one calendar period of issued invoices.
// Settled revenue only counts invoices whose status is resolved.
type PeriodRevenue struct {
	Period        string          `json:"period"` // YYYY-MM or YYYY-Www
	Count         int64           `json:"count"`
	TotalExcl     decimal.Decimal `json:"total_excl"`
	TotalTax      decimal.Decimal `json:"total_tax"`
	TotalIncl     decimal.Decimal `json:"total_incl"`
	SettledAmount decimal.Decimal `json:"settled_amount"`
}

// RevenueReport covers a date range, one entry per period that has at
// least one invoice, in ascending period order.
type RevenueReport struct {
	From          time.Time       `json:"from"`
	To            time.Time       `json:"to"`
	Granularity   Granularity     `json:"granularity"`
	Periods       []PeriodRevenue `json:"periods"`
	Count         int64           `json:"count"`
	TotalExcl     decimal.Decimal `json:"total_excl"`
	TotalTax      decimal.Decimal `json:"total_tax"`
	TotalIncl     decimal.Decimal `json:"total_incl"`
	SettledAmount decimal.Decimal `json:"settled_amount"`
}

// CounterpartyRevenue ranks one client by billed revenue.
type CounterpartyRevenue struct {
	Name      string          `json:"name"`
	Count     int64           `json:"count"`
	TotalIncl decimal.Decimal `json:"total_incl"`
}

// Analytics summarizes the ledger over a date range.
type Analytics struct {
	From               time.Time             `json:"from"`
	To                 time.Time             `json:"to"`
	Count              int64                 `json:"count"`
	AverageAmount      decimal.Decimal       `json:"average_amount"`
	StatusDistribution map[string]int64      `json:"status_distribution"`
	TopCounterparties  []CounterpartyRevenue `json:"top_counterparties"`
}

// topCounterpartyLimit bounds the client ranking in Analytics.
const topCounterpartyLimit = 5

// Service computes revenue reports over the invoice ledger.
type Service struct {
	repo   invoice.Repository
	logger *zap.Logger
}

// NewService creates a new report Service
func NewService(repo invoice.Repository, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{repo: repo, logger: logger}
}

func periodKey(t time.Time, granularity Granularity) string {
	if granularity == GranularityWeek {
		year, week := t.ISOWeek()
		return fmt.Sprintf("%04d-W%02d", year, week)
	}
	return t.Format(monthKeyFormat)
}

func (s *Service) fetchRange(ctx context.Context, from, to time.Time) ([]invoice.Invoice, time.Time, error) {
	if to.IsZero() {
		to = time.Now()
	}
	if !from.IsZero() && to.Before(from) {
		return nil, to, shared.NewDomainError("INVALID_RANGE", "Report range end precedes its start")
	}

	filter := invoice.Filter{}
	if !from.IsZero() {
		filter.DateFrom = &from
	}
	filter.DateTo = &to

	invoices, _, err := s.repo.FindAll(ctx, filter)
	return invoices, to, err
}

// Revenue aggregates all invoices issued in [from, to] by calendar
// month or ISO week. The range is inclusive, To defaults to now when
// zero, and an empty granularity means monthly.
func (s *Service) Revenue(ctx context.Context, from, to time.Time, granularity Granularity) (*RevenueReport, error) {
	if granularity == "" {
		granularity = GranularityMonth
	}

	invoices, to, err := s.fetchRange(ctx, from, to)
	if err != nil {
		return nil, err
	}

	report := &RevenueReport{
		From:          from,
		To:            to,
		Granularity:   granularity,
		TotalExcl:     decimal.Zero,
		TotalTax:      decimal.Zero,
		TotalIncl:     decimal.Zero,
		SettledAmount: decimal.Zero,
	}

	byPeriod := make(map[string]*PeriodRevenue)
	for i := range invoices {
		inv := &invoices[i]
		key := periodKey(inv.IssueDate, granularity)
		period, ok := byPeriod[key]
		if !ok {
			period = &PeriodRevenue{
				Period:        key,
				TotalExcl:     decimal.Zero,
				TotalTax:      decimal.Zero,
				TotalIncl:     decimal.Zero,
				SettledAmount: decimal.Zero,
			}
			byPeriod[key] = period
		}

		period.Count++
		period.TotalExcl = period.TotalExcl.Add(inv.Totals.TotalExcl)
		period.TotalTax = period.TotalTax.Add(inv.Totals.TotalTax)
		period.TotalIncl = period.TotalIncl.Add(inv.Totals.TotalIncl)

		report.Count++
		report.TotalExcl = report.TotalExcl.Add(inv.Totals.TotalExcl)
		report.TotalTax = report.TotalTax.Add(inv.Totals.TotalTax)
		report.TotalIncl = report.TotalIncl.Add(inv.Totals.TotalIncl)

		if inv.Status == invoice.StatusResolved {
			period.SettledAmount = period.SettledAmount.Add(inv.Totals.TotalIncl)
			report.SettledAmount = report.SettledAmount.Add(inv.Totals.TotalIncl)
		}
	}

	report.Periods = make([]PeriodRevenue, 0, len(byPeriod))
	for _, period := range byPeriod {
		report.Periods = append(report.Periods, *period)
	}
	sort.Slice(report.Periods, func(i, j int) bool {
		return report.Periods[i].Period < report.Periods[j].Period
	})

	s.logger.Debug("revenue report computed",
		zap.Int64("invoices", report.Count),
		zap.String("granularity", string(report.Granularity)),
		zap.Int("periods", len(report.Periods)))
	return report, nil
}

// Statistics computes status distribution, average billed amount and
// the top counterparties for invoices issued in [from, to].
func (s *Service) Statistics(ctx context.Context, from, to time.Time) (*Analytics, error) {
	invoices, to, err := s.fetchRange(ctx, from, to)
	if err != nil {
		return nil, err
	}

	analytics := &Analytics{
		From:               from,
		To:                 to,
		AverageAmount:      decimal.Zero,
		StatusDistribution: make(map[string]int64),
	}

	total := decimal.Zero
	byClient := make(map[string]*CounterpartyRevenue)
	for i := range invoices {
		inv := &invoices[i]
		analytics.Count++
		analytics.StatusDistribution[string(inv.Status)]++
		total = total.Add(inv.Totals.TotalIncl)

		client, ok := byClient[inv.Counterparty.Name]
		if !ok {
			client = &CounterpartyRevenue{Name: inv.Counterparty.Name, TotalIncl: decimal.Zero}
			byClient[inv.Counterparty.Name] = client
		}
		client.Count++
		client.TotalIncl = client.TotalIncl.Add(inv.Totals.TotalIncl)
	}

	if analytics.Count > 0 {
		analytics.AverageAmount = total.Div(decimal.NewFromInt(analytics.Count)).Round(2)
	}

	ranked := make([]CounterpartyRevenue, 0, len(byClient))
	for _, client := range byClient {
		ranked = append(ranked, *client)
	}
	sort.Slice(ranked, func(i, j int) bool {
		if !ranked[i].TotalIncl.Equal(ranked[j].TotalIncl) {
			return ranked[i].TotalIncl.GreaterThan(ranked[j].TotalIncl)
		}
		return ranked[i].Name < ranked[j].Name
	})
	if len(ranked) > topCounterpartyLimit {
		ranked = ranked[:topCounterpartyLimit]
	}
	analytics.TopCounterparties = ranked

	return analytics, nil
}
