package service

import (
	"context"
	"fmt"
	"time"

	"github.com/Alisjj/farmPilot-sub001/internal/model"
)

// trendStableBand is the percentage band inside which a change counts as stable
const trendStableBand = 2.0

// periodDays maps a trend period name to its lookback in days
func periodDays(period string) int {
	switch period {
	case "week":
		return 7
	case "month":
		return 30
	default: // "day"
		return 1
	}
}

// CalculateKpiTrends compares the farm-wide value of one KPI today against the
// value one period back and appends the classified trend row. A missing or
// zero previous value yields a nil change percent and a stable direction;
// dividing by a zero previous value is never attempted.
func (s *kpiService) CalculateKpiTrends(ctx context.Context, kpiName, category, period string) error {
	periodEnd := s.now().UTC()
	periodStart := periodEnd.AddDate(0, 0, -periodDays(period))

	current, err := s.kpiValueOn(ctx, kpiName, periodEnd)
	if err != nil {
		return fmt.Errorf("resolve current %s: %w", kpiName, err)
	}
	currentValue := 0.0
	if current != nil {
		currentValue = *current
	}

	previous, err := s.kpiValueOn(ctx, kpiName, periodStart)
	if err != nil {
		return fmt.Errorf("resolve previous %s: %w", kpiName, err)
	}

	change := changePercent(currentValue, previous)

	trend := &model.KpiTrend{
		KpiName:       kpiName,
		Category:      category,
		CurrentValue:  currentValue,
		PreviousValue: previous,
		ChangePercent: change,
		Direction:     classifyTrend(change),
		PeriodStart:   periodStart,
		PeriodEnd:     periodEnd,
	}

	if err := s.store.AppendKpiTrend(ctx, trend); err != nil {
		return fmt.Errorf("append kpi trend %s: %w", kpiName, err)
	}

	s.logger.Info("kpi trend calculated",
		"kpi", kpiName,
		"period", period,
		"direction", string(trend.Direction),
	)

	return nil
}

// kpiValueOn looks up one KPI value from the farm-wide summary row of a single
// day. Returns nil when no summary exists for that day, and an error for an
// unknown KPI name.
func (s *kpiService) kpiValueOn(ctx context.Context, kpiName string, day time.Time) (*float64, error) {
	summary, err := s.store.DailyKpiSummaryByKey(ctx, dateKey(day), nil)
	if err != nil {
		return nil, err
	}
	if summary == nil {
		return nil, nil
	}

	var v float64
	switch kpiName {
	case "total_eggs":
		v = float64(summary.TotalEggs)
	case "production_rate":
		v = summary.ProductionRate
	case "feed_conversion_ratio":
		v = summary.FeedConversionRatio
	case "grade_a_percent":
		v = summary.GradeAPercent
	case "mortality_rate":
		v = summary.MortalityRate
	case "mortality_count":
		v = float64(summary.MortalityCount)
	case "revenue":
		v, _ = summary.Revenue.Float64()
	case "expenses":
		v, _ = summary.Expenses.Float64()
	case "net_profit":
		v, _ = summary.NetProfit.Float64()
	case "profit_margin":
		v = summary.ProfitMargin
	default:
		return nil, fmt.Errorf("unknown kpi name %q", kpiName)
	}

	return &v, nil
}

// changePercent computes the percentage change from previous to current. A nil
// or exactly-zero previous value yields nil rather than a division by zero.
func changePercent(current float64, previous *float64) *float64 {
	if previous == nil || *previous == 0 {
		return nil
	}
	c := round2((current - *previous) / *previous * 100)
	return &c
}

// classifyTrend maps a change percent onto a direction. Changes of exactly
// ±2% are stable; only strictly larger movements count as up or down.
func classifyTrend(change *float64) model.TrendDirection {
	switch {
	case change == nil:
		return model.TrendStable
	case *change > trendStableBand:
		return model.TrendUp
	case *change < -trendStableBand:
		return model.TrendDown
	default:
		return model.TrendStable
	}
}
