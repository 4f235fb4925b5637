package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/Alisjj/farmPilot-sub001/internal/model"
	"github.com/Alisjj/farmPilot-sub001/internal/repository"

	"github.com/shopspring/decimal"
)

// dashboardWindowDays bounds how far back trends and alerts are read
const dashboardWindowDays = 30

// DashboardService composes read-optimized views over persisted KPIs, trends
// and alerts. Pure composition; all computation happens upstream.
type DashboardService interface {
	GetDashboardData(ctx context.Context, userID string, section *string) (*DashboardData, error)
	GetExecutiveSummary(ctx context.Context) (*ExecutiveSummary, error)
}

// DashboardData is the composed payload the dashboard UI renders
type DashboardData struct {
	Summary     DashboardSummary `json:"summary"`
	Kpis        []KpiEntry       `json:"kpis"`
	Alerts      []AlertEntry     `json:"alerts"`
	GeneratedAt time.Time        `json:"generated_at"`
}

// DashboardSummary is the headline card of the dashboard
type DashboardSummary struct {
	SummaryDate         string          `json:"summary_date"`
	Section             *string         `json:"section,omitempty"`
	Revenue             decimal.Decimal `json:"revenue"`
	Expenses            decimal.Decimal `json:"expenses"`
	NetProfit           decimal.Decimal `json:"net_profit"`
	ProfitMargin        float64         `json:"profit_margin"`
	TotalEggs           int             `json:"total_eggs"`
	MortalityRate       float64         `json:"mortality_rate"`
	FeedConversionRatio float64         `json:"feed_conversion_ratio"`
	CriticalAlerts      int             `json:"critical_alerts"`
	UnreadAlerts        int             `json:"unread_alerts"`
}

// KpiEntry is one formatted KPI line
type KpiEntry struct {
	Name      string               `json:"name"`
	Category  string               `json:"category"`
	Value     float64              `json:"value"`
	Unit      string               `json:"unit"`
	Direction model.TrendDirection `json:"direction"`
}

// AlertEntry is one formatted alert line
type AlertEntry struct {
	ID        uint                `json:"id"`
	AlertType model.AlertType     `json:"alert_type"`
	Severity  model.AlertSeverity `json:"severity"`
	Title     string              `json:"title"`
	Message   string              `json:"message"`
	Section   *string             `json:"section,omitempty"`
	Read      bool                `json:"read"`
	CreatedAt time.Time           `json:"created_at"`
}

// ExecutiveSummary is the compact numbers-only variant for the executive view
type ExecutiveSummary struct {
	SummaryDate         string          `json:"summary_date"`
	Revenue             decimal.Decimal `json:"revenue"`
	Expenses            decimal.Decimal `json:"expenses"`
	NetProfit           decimal.Decimal `json:"net_profit"`
	ProfitMargin        float64         `json:"profit_margin"`
	TotalEggs           int             `json:"total_eggs"`
	ProductionRate      float64         `json:"production_rate"`
	MortalityRate       float64         `json:"mortality_rate"`
	FeedConversionRatio float64         `json:"feed_conversion_ratio"`
	CriticalAlerts      int             `json:"critical_alerts"`
	UnreadAlerts        int             `json:"unread_alerts"`
}

// dashboardService implements DashboardService
type dashboardService struct {
	store  repository.Store
	kpis   KpiService
	logger *slog.Logger
	now    func() time.Time
}

// NewDashboardService creates a new dashboard composition service
func NewDashboardService(store repository.Store, kpis KpiService, logger *slog.Logger) DashboardService {
	return &dashboardService{
		store:  store,
		kpis:   kpis,
		logger: logger,
		now:    time.Now,
	}
}

// GetDashboardData reads the latest summary plus 30 days of trends and alerts.
// When no summary exists at all it triggers one calculation for yesterday and
// re-reads exactly once; a deployment with no data still gets a zeroed payload
// rather than an error.
func (d *dashboardService) GetDashboardData(ctx context.Context, userID string, section *string) (*DashboardData, error) {
	latest, err := d.latestWithSelfHeal(ctx, section)
	if err != nil {
		return nil, err
	}

	since := d.now().UTC().AddDate(0, 0, -dashboardWindowDays)

	trends, err := d.store.QueryKpiTrends(ctx, since, 100)
	if err != nil {
		return nil, fmt.Errorf("query kpi trends: %w", err)
	}

	alerts, err := d.store.QueryAlerts(ctx, repository.AlertFilter{CreatedAfter: since})
	if err != nil {
		return nil, fmt.Errorf("query alerts: %w", err)
	}

	data := &DashboardData{
		Summary:     composeSummaryCard(latest, alerts),
		Kpis:        composeKpiList(latest, trends),
		Alerts:      composeAlertList(alerts),
		GeneratedAt: d.now().UTC(),
	}

	d.logger.Info("dashboard composed",
		"user_id", userID,
		"section", sectionLabel(section),
		"kpis", len(data.Kpis),
		"alerts", len(data.Alerts),
	)

	return data, nil
}

// GetExecutiveSummary returns the compact farm-wide figures
func (d *dashboardService) GetExecutiveSummary(ctx context.Context) (*ExecutiveSummary, error) {
	latest, err := d.latestWithSelfHeal(ctx, nil)
	if err != nil {
		return nil, err
	}

	summary := &ExecutiveSummary{
		Revenue:   decimal.Zero,
		Expenses:  decimal.Zero,
		NetProfit: decimal.Zero,
	}
	if latest != nil {
		summary.SummaryDate = latest.SummaryDate
		summary.Revenue = latest.Revenue
		summary.Expenses = latest.Expenses
		summary.NetProfit = latest.NetProfit
		summary.ProfitMargin = latest.ProfitMargin
		summary.TotalEggs = latest.TotalEggs
		summary.ProductionRate = latest.ProductionRate
		summary.MortalityRate = latest.MortalityRate
		summary.FeedConversionRatio = latest.FeedConversionRatio
		summary.CriticalAlerts = latest.CriticalAlerts
		summary.UnreadAlerts = latest.CriticalAlerts + latest.OtherAlerts
	}

	return summary, nil
}

// latestWithSelfHeal reads the latest summary, triggering one KPI calculation
// for yesterday when the scope has never been calculated. The retry is capped
// at exactly one attempt.
func (d *dashboardService) latestWithSelfHeal(ctx context.Context, section *string) (*model.DailyKpiSummary, error) {
	latest, err := d.store.LatestDailyKpiSummary(ctx, section)
	if err != nil {
		return nil, fmt.Errorf("query latest summary: %w", err)
	}
	if latest != nil {
		return latest, nil
	}

	yesterday := d.now().UTC().AddDate(0, 0, -1)
	d.logger.Info("no kpi summary found, calculating yesterday",
		"date", dateKey(yesterday),
		"section", sectionLabel(section),
	)
	if err := d.kpis.CalculateDailyKpis(ctx, yesterday, section); err != nil {
		return nil, fmt.Errorf("self-heal kpi calculation: %w", err)
	}

	latest, err = d.store.LatestDailyKpiSummary(ctx, section)
	if err != nil {
		return nil, fmt.Errorf("query latest summary after self-heal: %w", err)
	}
	return latest, nil
}

// composeSummaryCard builds the headline card from the latest summary row and
// the recent alert window
func composeSummaryCard(latest *model.DailyKpiSummary, alerts []model.Alert) DashboardSummary {
	card := DashboardSummary{
		Revenue:   decimal.Zero,
		Expenses:  decimal.Zero,
		NetProfit: decimal.Zero,
	}
	if latest != nil {
		card.SummaryDate = latest.SummaryDate
		card.Section = latest.Section
		card.Revenue = latest.Revenue
		card.Expenses = latest.Expenses
		card.NetProfit = latest.NetProfit
		card.ProfitMargin = latest.ProfitMargin
		card.TotalEggs = latest.TotalEggs
		card.MortalityRate = latest.MortalityRate
		card.FeedConversionRatio = latest.FeedConversionRatio
	}

	for _, a := range alerts {
		if a.Read {
			continue
		}
		card.UnreadAlerts++
		if a.Severity == model.SeverityCritical {
			card.CriticalAlerts++
		}
	}

	return card
}

// composeKpiList builds the formatted KPI list, attaching the most recent
// trend direction per KPI name
func composeKpiList(latest *model.DailyKpiSummary, trends []model.KpiTrend) []KpiEntry {
	directions := make(map[string]model.TrendDirection)
	for _, t := range trends {
		// trends are newest first; keep the first direction per name
		if _, seen := directions[t.KpiName]; !seen {
			directions[t.KpiName] = t.Direction
		}
	}

	direction := func(name string) model.TrendDirection {
		if d, ok := directions[name]; ok {
			return d
		}
		return model.TrendStable
	}

	if latest == nil {
		return []KpiEntry{}
	}

	revenue, _ := latest.Revenue.Float64()
	profit, _ := latest.NetProfit.Float64()

	return []KpiEntry{
		{Name: "total_eggs", Category: "production", Value: float64(latest.TotalEggs), Unit: "eggs", Direction: direction("total_eggs")},
		{Name: "production_rate", Category: "production", Value: latest.ProductionRate, Unit: "%", Direction: direction("production_rate")},
		{Name: "feed_conversion_ratio", Category: "production", Value: latest.FeedConversionRatio, Unit: "kg/egg", Direction: direction("feed_conversion_ratio")},
		{Name: "grade_a_percent", Category: "production", Value: latest.GradeAPercent, Unit: "%", Direction: direction("grade_a_percent")},
		{Name: "revenue", Category: "financial", Value: revenue, Unit: "currency", Direction: direction("revenue")},
		{Name: "net_profit", Category: "financial", Value: profit, Unit: "currency", Direction: direction("net_profit")},
		{Name: "profit_margin", Category: "financial", Value: latest.ProfitMargin, Unit: "%", Direction: direction("profit_margin")},
		{Name: "mortality_rate", Category: "operational", Value: latest.MortalityRate, Unit: "%", Direction: direction("mortality_rate")},
	}
}

// composeAlertList maps alert rows into display entries
func composeAlertList(alerts []model.Alert) []AlertEntry {
	entries := make([]AlertEntry, 0, len(alerts))
	for _, a := range alerts {
		entries = append(entries, AlertEntry{
			ID:        a.ID,
			AlertType: a.AlertType,
			Severity:  a.Severity,
			Title:     a.Title,
			Message:   a.Message,
			Section:   a.Section,
			Read:      a.Read,
			CreatedAt: a.CreatedAt,
		})
	}
	return entries
}
