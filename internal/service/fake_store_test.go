package service

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/Alisjj/farmPilot-sub001/internal/model"
	"github.com/Alisjj/farmPilot-sub001/internal/repository"

	"gorm.io/gorm"
)

// fakeStore is an in-memory Store implementation for service tests
type fakeStore struct {
	mu           sync.Mutex
	activities   []model.ActivityRecord
	transactions []model.FinancialTransaction
	summaries    []model.DailyKpiSummary
	trends       []model.KpiTrend
	alerts       []model.Alert
	thresholds   []model.ThresholdConfig
	inventory    []model.InventoryItem
	nextAlertID  uint
	err          error
}

func newFakeStore() *fakeStore {
	return &fakeStore{}
}

func sectionEqual(a, b *string) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

func (f *fakeStore) QueryActivities(_ context.Context, filter repository.ActivityFilter) ([]model.ActivityRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}

	var out []model.ActivityRecord
	for _, rec := range f.activities {
		if rec.CreatedAt.Before(filter.Start) || !rec.CreatedAt.Before(filter.End) {
			continue
		}
		if filter.ActivityType != "" && rec.ActivityType != filter.ActivityType {
			continue
		}
		if filter.Section != nil && (rec.Section == nil || *rec.Section != *filter.Section) {
			continue
		}
		out = append(out, rec)
	}
	return out, nil
}

func (f *fakeStore) QueryTransactions(_ context.Context, date string, txnType model.TransactionType, category string) ([]model.FinancialTransaction, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}

	var out []model.FinancialTransaction
	for _, txn := range f.transactions {
		if txn.TransactionDate != date {
			continue
		}
		if txnType != "" && txn.Type != txnType {
			continue
		}
		if category != "" && txn.Category != category {
			continue
		}
		out = append(out, txn)
	}
	return out, nil
}

func (f *fakeStore) ReplaceDailyKpiSummary(_ context.Context, summary *model.DailyKpiSummary) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}

	kept := f.summaries[:0]
	for _, s := range f.summaries {
		if s.SummaryDate == summary.SummaryDate && sectionEqual(s.Section, summary.Section) {
			continue
		}
		kept = append(kept, s)
	}
	f.summaries = append(kept, *summary)
	return nil
}

func (f *fakeStore) DailyKpiSummaryByKey(_ context.Context, date string, section *string) (*model.DailyKpiSummary, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}

	for i := range f.summaries {
		if f.summaries[i].SummaryDate == date && sectionEqual(f.summaries[i].Section, section) {
			s := f.summaries[i]
			return &s, nil
		}
	}
	return nil, nil
}

func (f *fakeStore) LatestDailyKpiSummary(_ context.Context, section *string) (*model.DailyKpiSummary, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}

	var latest *model.DailyKpiSummary
	for i := range f.summaries {
		if !sectionEqual(f.summaries[i].Section, section) {
			continue
		}
		if latest == nil || f.summaries[i].SummaryDate > latest.SummaryDate {
			latest = &f.summaries[i]
		}
	}
	if latest == nil {
		return nil, nil
	}
	s := *latest
	return &s, nil
}

func (f *fakeStore) AppendKpiTrend(_ context.Context, trend *model.KpiTrend) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.trends = append(f.trends, *trend)
	return nil
}

func (f *fakeStore) QueryKpiTrends(_ context.Context, since time.Time, limit int) ([]model.KpiTrend, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}

	var out []model.KpiTrend
	for _, t := range f.trends {
		if t.CreatedAt.Before(since) {
			continue
		}
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (f *fakeStore) QueryAlerts(_ context.Context, filter repository.AlertFilter) ([]model.Alert, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}

	var out []model.Alert
	for _, a := range f.alerts {
		if filter.UnreadOnly && a.Read {
			continue
		}
		if filter.AlertType != "" && a.AlertType != filter.AlertType {
			continue
		}
		if filter.Title != "" && a.Title != filter.Title {
			continue
		}
		if filter.SectionSet && !sectionEqual(a.Section, filter.Section) {
			continue
		}
		if !filter.CreatedAfter.IsZero() && a.CreatedAt.Before(filter.CreatedAfter) {
			continue
		}
		if !filter.CreatedBefore.IsZero() && !a.CreatedAt.Before(filter.CreatedBefore) {
			continue
		}
		out = append(out, a)
	}
	if filter.Limit > 0 && len(out) > filter.Limit {
		out = out[:filter.Limit]
	}
	return out, nil
}

func (f *fakeStore) CreateAlert(_ context.Context, alert *model.Alert) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}

	f.nextAlertID++
	alert.ID = f.nextAlertID
	if alert.CreatedAt.IsZero() {
		alert.CreatedAt = time.Now().UTC()
	}
	f.alerts = append(f.alerts, *alert)
	return nil
}

func (f *fakeStore) MarkAlertRead(_ context.Context, id uint) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}

	for i := range f.alerts {
		if f.alerts[i].ID == id {
			f.alerts[i].Read = true
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

func (f *fakeStore) DeleteAlert(_ context.Context, id uint) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}

	for i := range f.alerts {
		if f.alerts[i].ID == id {
			f.alerts = append(f.alerts[:i], f.alerts[i+1:]...)
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

func (f *fakeStore) QueryThresholds(_ context.Context, activeOnly bool) ([]model.ThresholdConfig, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}

	var out []model.ThresholdConfig
	for _, t := range f.thresholds {
		if activeOnly && !t.Active {
			continue
		}
		out = append(out, t)
	}
	return out, nil
}

func (f *fakeStore) ListInventory(_ context.Context) ([]model.InventoryItem, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	return append([]model.InventoryItem(nil), f.inventory...), nil
}
