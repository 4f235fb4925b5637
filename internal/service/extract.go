package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/Alisjj/farmPilot-sub001/internal/model"
	"github.com/Alisjj/farmPilot-sub001/internal/repository"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

// avgEggMassKg is the assumed mass of one egg used for feed utilization
const avgEggMassKg = 0.06

// feedExpenseCategory is the transaction category feed purchases are booked under
const feedExpenseCategory = "feed"

// FlockSizes resolves the bird count for a farm section. Rate KPIs divide by
// these numbers, so they come from configuration rather than a constant.
type FlockSizes struct {
	Default  int
	Sections map[string]int
}

// SizeFor returns the flock size for a section, falling back to the farm-wide
// default when the section has no explicit entry or no section is given.
func (f FlockSizes) SizeFor(section *string) int {
	if section != nil {
		if size, ok := f.Sections[*section]; ok {
			return size
		}
	}
	return f.Default
}

// ProductionMetrics is the output of the production extractor
type ProductionMetrics struct {
	TotalEggs            int
	TotalFeedKg          float64
	ProductionRate       float64
	FeedConversionRatio  float64
	AvgEggWeightG        float64
	GradeAPercent        float64
	CollectionEfficiency float64
	FeedUtilizationRate  float64
}

// FinancialMetrics is the output of the financial extractor
type FinancialMetrics struct {
	Revenue        decimal.Decimal
	Expenses       decimal.Decimal
	NetProfit      decimal.Decimal
	FeedCostPerEgg decimal.Decimal
	ProfitMargin   float64
}

// OperationalMetrics is the output of the operational extractor
type OperationalMetrics struct {
	MortalityCount int
	MortalityRate  float64
	MortalityLevel string
	CriticalAlerts int
	OtherAlerts    int
}

// extractProduction reduces the day's egg_collection and feed_distribution
// records into production metrics. Every ratio defaults to 0 when its
// denominator is 0: a day with no data produces zeros, not errors.
func (s *kpiService) extractProduction(ctx context.Context, date time.Time, section *string) (ProductionMetrics, error) {
	start, end := dayWindow(date)

	eggs, err := s.store.QueryActivities(ctx, repository.ActivityFilter{
		Start:        start,
		End:          end,
		Section:      section,
		ActivityType: model.ActivityEggCollection,
	})
	if err != nil {
		return ProductionMetrics{}, fmt.Errorf("query egg collections: %w", err)
	}

	feeds, err := s.store.QueryActivities(ctx, repository.ActivityFilter{
		Start:        start,
		End:          end,
		Section:      section,
		ActivityType: model.ActivityFeedDistribution,
	})
	if err != nil {
		return ProductionMetrics{}, fmt.Errorf("query feed distributions: %w", err)
	}

	var totalEggs, gradeAEggs, totalCollectors int
	var totalWeightG float64
	for _, rec := range eggs {
		totalEggs += int(payloadNumber(rec.Payload, "quantity"))
		gradeAEggs += int(payloadNumber(rec.Payload, "grade_a"))
		totalCollectors += int(payloadNumber(rec.Payload, "collectors"))
		totalWeightG += payloadNumber(rec.Payload, "total_weight_g")
	}

	var totalFeedKg float64
	for _, rec := range feeds {
		totalFeedKg += payloadNumber(rec.Payload, "quantity_kg")
	}

	flockSize := s.flocks.SizeFor(section)

	m := ProductionMetrics{
		TotalEggs:   totalEggs,
		TotalFeedKg: round2(totalFeedKg),
	}

	if flockSize > 0 {
		m.ProductionRate = round2(float64(totalEggs) / float64(flockSize) * 100)
	}
	if totalEggs > 0 {
		m.FeedConversionRatio = round4(totalFeedKg / float64(totalEggs))
		m.AvgEggWeightG = round2(totalWeightG / float64(totalEggs))
		m.GradeAPercent = round2(float64(gradeAEggs) / float64(totalEggs) * 100)
	}
	if totalCollectors > 0 && len(eggs) > 0 {
		m.CollectionEfficiency = round4(float64(totalEggs) / float64(totalCollectors*len(eggs)))
	}
	if totalFeedKg > 0 {
		m.FeedUtilizationRate = round2(float64(totalEggs) * avgEggMassKg / totalFeedKg * 100)
	}

	return m, nil
}

// extractFinancial sums the day's revenue and expense transactions. It needs
// the production extractor's egg total for feed cost per egg, which is why it
// takes the totals as an argument instead of re-deriving them.
func (s *kpiService) extractFinancial(ctx context.Context, date string, totalEggs int) (FinancialMetrics, error) {
	revenues, err := s.store.QueryTransactions(ctx, date, model.TransactionRevenue, "")
	if err != nil {
		return FinancialMetrics{}, fmt.Errorf("query revenue transactions: %w", err)
	}

	expenses, err := s.store.QueryTransactions(ctx, date, model.TransactionExpense, "")
	if err != nil {
		return FinancialMetrics{}, fmt.Errorf("query expense transactions: %w", err)
	}

	revenue := decimal.Zero
	for _, txn := range revenues {
		revenue = revenue.Add(txn.Amount)
	}

	expense := decimal.Zero
	feedExpense := decimal.Zero
	for _, txn := range expenses {
		expense = expense.Add(txn.Amount)
		if txn.Category == feedExpenseCategory {
			feedExpense = feedExpense.Add(txn.Amount)
		}
	}

	m := FinancialMetrics{
		Revenue:        revenue,
		Expenses:       expense,
		NetProfit:      revenue.Sub(expense),
		FeedCostPerEgg: decimal.Zero,
	}

	if revenue.IsPositive() {
		margin, _ := m.NetProfit.Div(revenue).Mul(decimal.NewFromInt(100)).Float64()
		m.ProfitMargin = round2(margin)
	}
	if totalEggs > 0 {
		m.FeedCostPerEgg = feedExpense.Div(decimal.NewFromInt(int64(totalEggs))).Round(4)
	}

	return m, nil
}

// extractOperational sums the day's mortality records and counts the unread
// alerts raised inside the same window, split critical vs other.
func (s *kpiService) extractOperational(ctx context.Context, date time.Time, section *string) (OperationalMetrics, error) {
	start, end := dayWindow(date)

	deaths, err := s.store.QueryActivities(ctx, repository.ActivityFilter{
		Start:        start,
		End:          end,
		Section:      section,
		ActivityType: model.ActivityMortality,
	})
	if err != nil {
		return OperationalMetrics{}, fmt.Errorf("query mortality records: %w", err)
	}

	var count int
	for _, rec := range deaths {
		count += int(payloadNumber(rec.Payload, "count"))
	}

	assessment := EvaluateMortality(count, s.flocks.SizeFor(section), s.mortality)

	alerts, err := s.store.QueryAlerts(ctx, repository.AlertFilter{
		UnreadOnly:    true,
		CreatedAfter:  start,
		CreatedBefore: end,
	})
	if err != nil {
		return OperationalMetrics{}, fmt.Errorf("query alerts: %w", err)
	}

	m := OperationalMetrics{
		MortalityCount: count,
		MortalityRate:  assessment.Rate,
		MortalityLevel: assessment.Level,
	}
	for _, a := range alerts {
		if a.Severity == model.SeverityCritical {
			m.CriticalAlerts++
		} else {
			m.OtherAlerts++
		}
	}

	return m, nil
}

// dayWindow returns the UTC calendar-day window [00:00, next day 00:00) of t
func dayWindow(t time.Time) (time.Time, time.Time) {
	u := t.UTC()
	start := time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
	return start, start.AddDate(0, 0, 1)
}

// dateKey formats t as the YYYY-MM-DD key summaries and transactions use
func dateKey(t time.Time) string {
	return t.UTC().Format("2006-01-02")
}

// payloadNumber reads a numeric payload field. JSON decoding hands back
// float64, but records built in-process may carry ints.
func payloadNumber(p datatypes.JSONMap, key string) float64 {
	switch v := p[key].(type) {
	case float64:
		return v
	case int:
		return float64(v)
	case int64:
		return float64(v)
	case json.Number:
		f, _ := v.Float64()
		return f
	default:
		return 0
	}
}
