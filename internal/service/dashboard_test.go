package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Alisjj/farmPilot-sub001/internal/model"
)

// recordingKpiService records CalculateDailyKpis invocations and optionally
// writes a summary row, standing in for the real calculation
type recordingKpiService struct {
	store        *fakeStore
	calculations int
	writeRow     bool
	err          error
}

func (r *recordingKpiService) CalculateDailyKpis(ctx context.Context, date time.Time, section *string) error {
	r.calculations++
	if r.err != nil {
		return r.err
	}
	if r.writeRow {
		return r.store.ReplaceDailyKpiSummary(ctx, &model.DailyKpiSummary{
			SummaryDate: dateKey(date),
			Section:     section,
			TotalEggs:   750,
		})
	}
	return nil
}

func (r *recordingKpiService) CalculateKpiTrends(context.Context, string, string, string) error {
	return nil
}

func newTestDashboardService(fs *fakeStore, kpis KpiService) *dashboardService {
	return &dashboardService{
		store:  fs,
		kpis:   kpis,
		logger: testLogger(),
		now:    time.Now,
	}
}

// TestGetDashboardData_SelfHealsOnce checks the bounded self-heal: an empty
// store triggers exactly one calculation for yesterday
func TestGetDashboardData_SelfHealsOnce(t *testing.T) {
	fs := newFakeStore()
	kpis := &recordingKpiService{store: fs, writeRow: true}
	svc := newTestDashboardService(fs, kpis)

	data, err := svc.GetDashboardData(context.Background(), "user-1", nil)
	if err != nil {
		t.Fatalf("GetDashboardData returned error: %v", err)
	}

	if kpis.calculations != 1 {
		t.Errorf("expected exactly 1 self-heal calculation, got %d", kpis.calculations)
	}
	if data.Summary.TotalEggs != 750 {
		t.Errorf("Summary.TotalEggs = %d, expected the self-healed row's 750", data.Summary.TotalEggs)
	}
}

// TestGetDashboardData_NoRetryLoop checks a calculation that produces no row
// still does not loop
func TestGetDashboardData_NoRetryLoop(t *testing.T) {
	fs := newFakeStore()
	kpis := &recordingKpiService{store: fs, writeRow: false}
	svc := newTestDashboardService(fs, kpis)

	data, err := svc.GetDashboardData(context.Background(), "user-1", nil)
	if err != nil {
		t.Fatalf("GetDashboardData returned error: %v", err)
	}

	if kpis.calculations != 1 {
		t.Errorf("expected 1 calculation attempt, got %d", kpis.calculations)
	}
	if len(data.Kpis) != 0 {
		t.Errorf("expected empty kpi list without data, got %d entries", len(data.Kpis))
	}
}

// TestGetDashboardData_SelfHealFailurePropagates checks store-level failures
// surface instead of being swallowed
func TestGetDashboardData_SelfHealFailurePropagates(t *testing.T) {
	fs := newFakeStore()
	kpis := &recordingKpiService{store: fs, err: errors.New("store down")}
	svc := newTestDashboardService(fs, kpis)

	if _, err := svc.GetDashboardData(context.Background(), "user-1", nil); err == nil {
		t.Error("expected error when self-heal calculation fails, got nil")
	}
}

// TestGetDashboardData_Composition checks the composed payload reflects the
// latest summary, recent trends and alert counts
func TestGetDashboardData_Composition(t *testing.T) {
	now := time.Now().UTC()

	fs := newFakeStore()
	fs.summaries = []model.DailyKpiSummary{
		{SummaryDate: dateKey(now.AddDate(0, 0, -1)), TotalEggs: 980, ProfitMargin: 42, MortalityRate: 0.2},
		{SummaryDate: dateKey(now.AddDate(0, 0, -2)), TotalEggs: 900},
	}
	fs.trends = []model.KpiTrend{
		{KpiName: "total_eggs", Direction: model.TrendUp, CreatedAt: now.Add(-time.Hour)},
		{KpiName: "total_eggs", Direction: model.TrendDown, CreatedAt: now.Add(-48 * time.Hour)},
	}
	fs.alerts = []model.Alert{
		{ID: 1, AlertType: model.AlertThresholdExceeded, Severity: model.SeverityCritical, Title: "a", CreatedAt: now.Add(-time.Hour)},
		{ID: 2, AlertType: model.AlertInventoryLow, Severity: model.SeverityMedium, Title: "b", CreatedAt: now.Add(-2 * time.Hour)},
		{ID: 3, AlertType: model.AlertInventoryLow, Severity: model.SeverityCritical, Title: "c", Read: true, CreatedAt: now.Add(-3 * time.Hour)},
	}

	kpis := &recordingKpiService{store: fs}
	svc := newTestDashboardService(fs, kpis)

	data, err := svc.GetDashboardData(context.Background(), "user-1", nil)
	if err != nil {
		t.Fatalf("GetDashboardData returned error: %v", err)
	}

	if kpis.calculations != 0 {
		t.Errorf("no self-heal expected with existing rows, got %d calculations", kpis.calculations)
	}
	if data.Summary.TotalEggs != 980 {
		t.Errorf("Summary.TotalEggs = %d, expected latest row's 980", data.Summary.TotalEggs)
	}
	if data.Summary.UnreadAlerts != 2 {
		t.Errorf("UnreadAlerts = %d, expected 2", data.Summary.UnreadAlerts)
	}
	if data.Summary.CriticalAlerts != 1 {
		t.Errorf("CriticalAlerts = %d, expected 1 unread critical", data.Summary.CriticalAlerts)
	}
	if len(data.Alerts) != 3 {
		t.Errorf("alert list length = %d, expected 3", len(data.Alerts))
	}

	var eggEntry *KpiEntry
	for i := range data.Kpis {
		if data.Kpis[i].Name == "total_eggs" {
			eggEntry = &data.Kpis[i]
		}
	}
	if eggEntry == nil {
		t.Fatal("expected a total_eggs kpi entry")
	}
	if eggEntry.Value != 980 {
		t.Errorf("total_eggs value = %f, expected 980", eggEntry.Value)
	}
	if eggEntry.Direction != model.TrendUp {
		t.Errorf("total_eggs direction = %q, expected the most recent trend's up", eggEntry.Direction)
	}
}

// TestGetExecutiveSummary checks the compact variant
func TestGetExecutiveSummary(t *testing.T) {
	now := time.Now().UTC()

	fs := newFakeStore()
	fs.summaries = []model.DailyKpiSummary{
		{
			SummaryDate:    dateKey(now.AddDate(0, 0, -1)),
			TotalEggs:      1200,
			ProfitMargin:   35,
			CriticalAlerts: 1,
			OtherAlerts:    2,
		},
	}

	svc := newTestDashboardService(fs, &recordingKpiService{store: fs})

	summary, err := svc.GetExecutiveSummary(context.Background())
	if err != nil {
		t.Fatalf("GetExecutiveSummary returned error: %v", err)
	}

	if summary.TotalEggs != 1200 {
		t.Errorf("TotalEggs = %d, expected 1200", summary.TotalEggs)
	}
	if summary.UnreadAlerts != 3 {
		t.Errorf("UnreadAlerts = %d, expected 3", summary.UnreadAlerts)
	}
}
