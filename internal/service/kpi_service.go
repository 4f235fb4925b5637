package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/Alisjj/farmPilot-sub001/internal/model"
	"github.com/Alisjj/farmPilot-sub001/internal/repository"

	"golang.org/x/sync/errgroup"
)

// KpiService defines the KPI calculation operations
type KpiService interface {
	// CalculateDailyKpis recomputes and replaces the summary row for one
	// (date, section) key. Running it twice in sequence is idempotent; running
	// it concurrently for the same key is not safe — callers serialize
	// recomputation per key.
	CalculateDailyKpis(ctx context.Context, date time.Time, section *string) error

	// CalculateKpiTrends compares the named KPI against the previous period
	// and appends a trend row.
	CalculateKpiTrends(ctx context.Context, kpiName, category, period string) error
}

// kpiService implements KpiService
type kpiService struct {
	store     repository.Store
	flocks    FlockSizes
	mortality MortalityThresholds
	logger    *slog.Logger
	now       func() time.Time
}

// NewKpiService creates a new KPI calculation service
func NewKpiService(store repository.Store, flocks FlockSizes, logger *slog.Logger) KpiService {
	return &kpiService{
		store:     store,
		flocks:    flocks,
		mortality: DefaultMortalityThresholds(),
		logger:    logger,
		now:       time.Now,
	}
}

// CalculateDailyKpis runs the extractors and replaces the day's summary row.
// Production and operational extraction have no ordering dependency and run in
// parallel; financial extraction needs the production egg total and runs after.
func (s *kpiService) CalculateDailyKpis(ctx context.Context, date time.Time, section *string) error {
	var prod ProductionMetrics
	var ops OperationalMetrics

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		m, err := s.extractProduction(gctx, date, section)
		prod = m
		return err
	})
	g.Go(func() error {
		m, err := s.extractOperational(gctx, date, section)
		ops = m
		return err
	})
	if err := g.Wait(); err != nil {
		return fmt.Errorf("extract metrics for %s: %w", dateKey(date), err)
	}

	fin, err := s.extractFinancial(ctx, dateKey(date), prod.TotalEggs)
	if err != nil {
		return fmt.Errorf("extract financial metrics for %s: %w", dateKey(date), err)
	}

	summary := &model.DailyKpiSummary{
		SummaryDate: dateKey(date),
		Section:     section,

		TotalEggs:            prod.TotalEggs,
		TotalFeedKg:          prod.TotalFeedKg,
		ProductionRate:       prod.ProductionRate,
		FeedConversionRatio:  prod.FeedConversionRatio,
		AvgEggWeightG:        prod.AvgEggWeightG,
		GradeAPercent:        prod.GradeAPercent,
		CollectionEfficiency: prod.CollectionEfficiency,
		FeedUtilizationRate:  prod.FeedUtilizationRate,

		Revenue:        fin.Revenue,
		Expenses:       fin.Expenses,
		NetProfit:      fin.NetProfit,
		FeedCostPerEgg: fin.FeedCostPerEgg,
		ProfitMargin:   fin.ProfitMargin,

		MortalityCount: ops.MortalityCount,
		MortalityRate:  ops.MortalityRate,
		MortalityLevel: ops.MortalityLevel,
		CriticalAlerts: ops.CriticalAlerts,
		OtherAlerts:    ops.OtherAlerts,

		CalculatedAt: s.now().UTC(),
	}

	if err := s.store.ReplaceDailyKpiSummary(ctx, summary); err != nil {
		return fmt.Errorf("replace daily kpi summary for %s: %w", summary.SummaryDate, err)
	}

	s.logger.Info("daily kpis calculated",
		"date", summary.SummaryDate,
		"section", sectionLabel(section),
		"total_eggs", summary.TotalEggs,
		"revenue", summary.Revenue.String(),
		"mortality_level", summary.MortalityLevel,
	)

	return nil
}

// sectionLabel renders an optional section for log fields
func sectionLabel(section *string) string {
	if section == nil {
		return "farm-wide"
	}
	return *section
}
