package service

import (
	"context"
	"math"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"repairdesk-service/internal/model"
	"repairdesk-service/internal/repository"
)

// DailySummary is the snapshot-based report: aggregated from the tickets whose
// payment was collected in the window plus the returns of the same window.
type DailySummary struct {
	TotalRevenue  float64 `json:"total_revenue"`
	CashRevenue   float64 `json:"cash_revenue"`
	OnlineRevenue float64 `json:"online_revenue"`
	CardRevenue   float64 `json:"card_revenue"`

	ServiceRevenue float64 `json:"service_revenue"`
	PartsRevenue   float64 `json:"parts_revenue"`
	TotalPartsCost float64 `json:"total_parts_cost"`

	TotalHandovers          int `json:"total_handovers"`
	NormalPriorityHandovers int `json:"normal_priority_handovers"`
	UrgentPriorityHandovers int `json:"urgent_priority_handovers"`

	TotalReturns         int `json:"total_returns"`
	NonRepairableReturns int `json:"non_repairable_returns"`
	OtherReturns         int `json:"other_returns"`

	GrossProfit        float64 `json:"gross_profit"`
	ProfitMargin       float64 `json:"profit_margin"`
	AverageTicketValue float64 `json:"average_ticket_value"`
	SuccessRate        float64 `json:"success_rate"`
}

// Summarize reduces paid tickets and returns into the daily summary. Split
// payments contribute per leg to the per-method subtotals; a leg or single
// payment with an unrecognized method counts as cash and is logged.
func Summarize(paid, returned []model.Ticket, log zerolog.Logger) DailySummary {
	var s DailySummary

	s.TotalHandovers = len(paid)
	for i := range paid {
		t := &paid[i]
		amount := t.FinalAmount
		if amount == 0 {
			amount = t.EstimatedCost
		}
		s.TotalRevenue += amount

		if t.PaymentMethod == model.PaymentMethodSplit {
			for _, leg := range splitLegs(t) {
				addMethodRevenue(&s, leg.Method, leg.Amount, t.TicketID, log)
			}
		} else {
			addMethodRevenue(&s, t.PaymentMethod, amount, t.TicketID, log)
		}

		s.ServiceRevenue += t.ServiceCost
		s.PartsRevenue += t.PartsCost
		s.TotalPartsCost += t.PartsCost

		if t.Priority.IsUrgent() {
			s.UrgentPriorityHandovers++
		} else if t.Priority == model.PriorityNormal {
			s.NormalPriorityHandovers++
		}
	}

	s.TotalReturns = len(returned)
	for i := range returned {
		reason := strings.ToLower(returned[i].ReturnReason)
		if returned[i].Unrepairable ||
			strings.Contains(reason, "cannot be repaired") ||
			strings.Contains(reason, "not repairable") {
			s.NonRepairableReturns++
		} else {
			s.OtherReturns++
		}
	}

	s.GrossProfit = s.TotalRevenue - s.TotalPartsCost
	if s.TotalRevenue > 0 {
		s.ProfitMargin = s.GrossProfit / s.TotalRevenue * 100
	}
	if s.TotalHandovers > 0 {
		s.AverageTicketValue = s.TotalRevenue / float64(s.TotalHandovers)
	}
	if total := s.TotalHandovers + s.TotalReturns; total > 0 {
		s.SuccessRate = float64(s.TotalHandovers) / float64(total) * 100
	}

	return s
}

func addMethodRevenue(s *DailySummary, method model.PaymentMethod, amount float64, ticketID string, log zerolog.Logger) {
	switch method {
	case model.PaymentMethodCash:
		s.CashRevenue += amount
	case model.PaymentMethodUPI:
		s.OnlineRevenue += amount
	case model.PaymentMethodCard:
		s.CardRevenue += amount
	default:
		log.Warn().
			Str("ticket_id", ticketID).
			Str("method", string(method)).
			Msg("unknown payment method, counting as cash")
		s.CashRevenue += amount
	}
}

func splitLegs(t *model.Ticket) []model.SplitLeg {
	legs, err := DecodeSplitLegs(t.SplitPayments)
	if err != nil {
		return nil
	}
	return legs
}

// LedgerSummary is the second, independent revenue computation, derived from
// the append-only payment log. It is the authoritative ledger; the ticket
// snapshot summary is a projection that can drift (see Reconcile).
type LedgerSummary struct {
	TotalAmount      float64            `json:"total_amount"`
	MethodAmounts    map[string]float64 `json:"method_amounts"`
	TransactionCount int                `json:"transaction_count"`
	LegCount         int                `json:"leg_count"`
}

// SummarizeLedger sums amounts per leg unconditionally and counts
// transactions deduplicated by (ticket, method).
func SummarizeLedger(entries []model.PaymentLog) LedgerSummary {
	summary := LedgerSummary{MethodAmounts: make(map[string]float64)}
	seen := make(map[string]struct{})

	for i := range entries {
		e := &entries[i]
		summary.TotalAmount += e.Amount
		summary.MethodAmounts[string(e.Method)] += e.Amount
		summary.LegCount++

		key := e.TicketID + "|" + string(e.Method)
		if _, ok := seen[key]; !ok {
			seen[key] = struct{}{}
			summary.TransactionCount++
		}
	}

	return summary
}

// Reconciliation compares the snapshot and ledger totals for a window.
type Reconciliation struct {
	SnapshotTotal float64 `json:"snapshot_total"`
	LedgerTotal   float64 `json:"ledger_total"`
	Difference    float64 `json:"difference"`
	Balanced      bool    `json:"balanced"`
}

func Reconcile(snapshot DailySummary, ledger LedgerSummary) Reconciliation {
	diff := ledger.TotalAmount - snapshot.TotalRevenue
	return Reconciliation{
		SnapshotTotal: snapshot.TotalRevenue,
		LedgerTotal:   ledger.TotalAmount,
		Difference:    diff,
		Balanced:      math.Abs(diff) <= 0.01,
	}
}

type ReportService struct {
	ticketRepo     *repository.TicketRepository
	paymentLogRepo *repository.PaymentLogRepository
	log            zerolog.Logger
}

func NewReportService(
	ticketRepo *repository.TicketRepository,
	paymentLogRepo *repository.PaymentLogRepository,
	log zerolog.Logger,
) *ReportService {
	return &ReportService{
		ticketRepo:     ticketRepo,
		paymentLogRepo: paymentLogRepo,
		log:            log,
	}
}

// DailyReport bundles the tables and summaries for one report day.
type DailyReport struct {
	Date           string             `json:"date"`
	Summary        DailySummary       `json:"summary"`
	Ledger         LedgerSummary      `json:"ledger"`
	Reconciliation Reconciliation     `json:"reconciliation"`
	Handovered     []model.Ticket     `json:"handovered"`
	Returned       []model.Ticket     `json:"returned"`
	Payments       []model.PaymentLog `json:"payments"`
}

// Daily builds the report for the local day containing `day`. Future dates
// are rejected.
func (s *ReportService) Daily(ctx context.Context, day time.Time, now time.Time) (*DailyReport, error) {
	start := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, day.Location())
	if start.After(now) {
		return nil, ErrInvalidInput
	}
	end := start.AddDate(0, 0, 1)

	paid, err := s.ticketRepo.ListPaymentCollected(ctx, start, end)
	if err != nil {
		return nil, err
	}
	returned, err := s.ticketRepo.ListReturned(ctx, start, end)
	if err != nil {
		return nil, err
	}
	entries, err := s.paymentLogRepo.ListByWindow(ctx, start, end)
	if err != nil {
		return nil, err
	}

	summary := Summarize(paid, returned, s.log)
	ledger := SummarizeLedger(entries)
	recon := Reconcile(summary, ledger)
	if !recon.Balanced {
		s.log.Warn().
			Float64("snapshot_total", recon.SnapshotTotal).
			Float64("ledger_total", recon.LedgerTotal).
			Str("date", start.Format("2006-01-02")).
			Msg("snapshot and ledger revenue diverge")
	}

	return &DailyReport{
		Date:           start.Format("2006-01-02"),
		Summary:        summary,
		Ledger:         ledger,
		Reconciliation: recon,
		Handovered:     paid,
		Returned:       returned,
		Payments:       entries,
	}, nil
}

// TodayRevenue returns the running revenue figure for the dashboard header.
func (s *ReportService) TodayRevenue(ctx context.Context, now time.Time) (float64, error) {
	start := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	end := start.AddDate(0, 0, 1)

	paid, err := s.ticketRepo.ListPaymentCollected(ctx, start, end)
	if err != nil {
		return 0, err
	}

	var total float64
	for i := range paid {
		amount := paid[i].FinalAmount
		if amount == 0 {
			amount = paid[i].EstimatedCost
		}
		total += amount
	}
	return total, nil
}
