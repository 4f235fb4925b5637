package repository

import (
	"context"
	"errors"
	"time"

	"github.com/Alisjj/farmPilot-sub001/internal/model"

	"gorm.io/gorm"
)

// ActivityFilter scopes an activity query to a time window, an optional farm
// section and an optional activity type. A nil Section means farm-wide: the
// section clause is omitted entirely, it is not a wildcard match.
type ActivityFilter struct {
	Start        time.Time
	End          time.Time
	Section      *string
	ActivityType model.ActivityType
}

// AlertFilter scopes an alert query. Zero-valued fields are not applied.
type AlertFilter struct {
	UnreadOnly    bool
	AlertType     model.AlertType
	Title         string
	Section       *string
	SectionSet    bool
	CreatedAfter  time.Time
	CreatedBefore time.Time
	Limit         int
}

// Store defines the data access surface the KPI and alerting services depend on
type Store interface {
	QueryActivities(ctx context.Context, f ActivityFilter) ([]model.ActivityRecord, error)
	QueryTransactions(ctx context.Context, date string, txnType model.TransactionType, category string) ([]model.FinancialTransaction, error)

	ReplaceDailyKpiSummary(ctx context.Context, summary *model.DailyKpiSummary) error
	DailyKpiSummaryByKey(ctx context.Context, date string, section *string) (*model.DailyKpiSummary, error)
	LatestDailyKpiSummary(ctx context.Context, section *string) (*model.DailyKpiSummary, error)

	AppendKpiTrend(ctx context.Context, trend *model.KpiTrend) error
	QueryKpiTrends(ctx context.Context, since time.Time, limit int) ([]model.KpiTrend, error)

	QueryAlerts(ctx context.Context, f AlertFilter) ([]model.Alert, error)
	CreateAlert(ctx context.Context, alert *model.Alert) error
	MarkAlertRead(ctx context.Context, id uint) error
	DeleteAlert(ctx context.Context, id uint) error

	QueryThresholds(ctx context.Context, activeOnly bool) ([]model.ThresholdConfig, error)
	ListInventory(ctx context.Context) ([]model.InventoryItem, error)
}

// farmStore implements Store on top of gorm/postgres
type farmStore struct {
	db *gorm.DB
}

// NewStore creates a new gorm-backed store
func NewStore(db *gorm.DB) Store {
	return &farmStore{db: db}
}

// QueryActivities fetches activity records within [f.Start, f.End)
func (s *farmStore) QueryActivities(ctx context.Context, f ActivityFilter) ([]model.ActivityRecord, error) {
	q := s.db.WithContext(ctx).
		Where("created_at >= ? AND created_at < ?", f.Start, f.End)

	if f.ActivityType != "" {
		q = q.Where("activity_type = ?", f.ActivityType)
	}
	if f.Section != nil {
		q = q.Where("section = ?", *f.Section)
	}

	var records []model.ActivityRecord
	if err := q.Order("created_at ASC").Find(&records).Error; err != nil {
		return nil, err
	}
	return records, nil
}

// QueryTransactions fetches transactions for the exact calendar date.
// Transaction dates are dates, not timestamps, so this is an equality match.
func (s *farmStore) QueryTransactions(ctx context.Context, date string, txnType model.TransactionType, category string) ([]model.FinancialTransaction, error) {
	q := s.db.WithContext(ctx).Where("transaction_date = ?", date)

	if txnType != "" {
		q = q.Where("type = ?", txnType)
	}
	if category != "" {
		q = q.Where("category = ?", category)
	}

	var txns []model.FinancialTransaction
	if err := q.Find(&txns).Error; err != nil {
		return nil, err
	}
	return txns, nil
}

// ReplaceDailyKpiSummary deletes any existing row for the (date, section) key
// and inserts the new one, inside a single transaction so readers never observe
// the key without a row. Concurrent replacement of the same key is not
// serialized here; callers own that.
func (s *farmStore) ReplaceDailyKpiSummary(ctx context.Context, summary *model.DailyKpiSummary) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		del := tx.Where("summary_date = ?", summary.SummaryDate)
		del = scopeSection(del, summary.Section)
		if err := del.Delete(&model.DailyKpiSummary{}).Error; err != nil {
			return err
		}
		return tx.Create(summary).Error
	})
}

// DailyKpiSummaryByKey fetches the summary row for one (date, section) key.
// Returns (nil, nil) when no row exists.
func (s *farmStore) DailyKpiSummaryByKey(ctx context.Context, date string, section *string) (*model.DailyKpiSummary, error) {
	q := s.db.WithContext(ctx).Where("summary_date = ?", date)
	q = scopeSection(q, section)

	var summary model.DailyKpiSummary
	if err := q.First(&summary).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &summary, nil
}

// LatestDailyKpiSummary fetches the most recent summary row for the section
// scope. Returns (nil, nil) when none exists yet.
func (s *farmStore) LatestDailyKpiSummary(ctx context.Context, section *string) (*model.DailyKpiSummary, error) {
	q := scopeSection(s.db.WithContext(ctx), section)

	var summary model.DailyKpiSummary
	if err := q.Order("summary_date DESC").First(&summary).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &summary, nil
}

// AppendKpiTrend inserts a trend row; trends accumulate and are never replaced
func (s *farmStore) AppendKpiTrend(ctx context.Context, trend *model.KpiTrend) error {
	return s.db.WithContext(ctx).Create(trend).Error
}

// QueryKpiTrends fetches trend rows created since the given time, newest first
func (s *farmStore) QueryKpiTrends(ctx context.Context, since time.Time, limit int) ([]model.KpiTrend, error) {
	q := s.db.WithContext(ctx).Where("created_at >= ?", since).Order("created_at DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}

	var trends []model.KpiTrend
	if err := q.Find(&trends).Error; err != nil {
		return nil, err
	}
	return trends, nil
}

// QueryAlerts fetches alerts matching the filter, newest first
func (s *farmStore) QueryAlerts(ctx context.Context, f AlertFilter) ([]model.Alert, error) {
	q := s.db.WithContext(ctx).Model(&model.Alert{})

	if f.UnreadOnly {
		q = q.Where("read = ?", false)
	}
	if f.AlertType != "" {
		q = q.Where("alert_type = ?", f.AlertType)
	}
	if f.Title != "" {
		q = q.Where("title = ?", f.Title)
	}
	if f.SectionSet {
		q = scopeSection(q, f.Section)
	}
	if !f.CreatedAfter.IsZero() {
		q = q.Where("created_at >= ?", f.CreatedAfter)
	}
	if !f.CreatedBefore.IsZero() {
		q = q.Where("created_at < ?", f.CreatedBefore)
	}
	if f.Limit > 0 {
		q = q.Limit(f.Limit)
	}

	var alerts []model.Alert
	if err := q.Order("created_at DESC").Find(&alerts).Error; err != nil {
		return nil, err
	}
	return alerts, nil
}

// CreateAlert inserts a new alert row
func (s *farmStore) CreateAlert(ctx context.Context, alert *model.Alert) error {
	return s.db.WithContext(ctx).Create(alert).Error
}

// MarkAlertRead flips the read flag on one alert
func (s *farmStore) MarkAlertRead(ctx context.Context, id uint) error {
	res := s.db.WithContext(ctx).Model(&model.Alert{}).Where("id = ?", id).Update("read", true)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// DeleteAlert dismisses an alert permanently
func (s *farmStore) DeleteAlert(ctx context.Context, id uint) error {
	res := s.db.WithContext(ctx).Where("id = ?", id).Delete(&model.Alert{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// QueryThresholds fetches threshold rows, optionally only active ones
func (s *farmStore) QueryThresholds(ctx context.Context, activeOnly bool) ([]model.ThresholdConfig, error) {
	q := s.db.WithContext(ctx)
	if activeOnly {
		q = q.Where("active = ?", true)
	}

	var thresholds []model.ThresholdConfig
	if err := q.Find(&thresholds).Error; err != nil {
		return nil, err
	}
	return thresholds, nil
}

// ListInventory fetches all inventory items
func (s *farmStore) ListInventory(ctx context.Context) ([]model.InventoryItem, error) {
	var items []model.InventoryItem
	if err := s.db.WithContext(ctx).Order("name ASC").Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

// scopeSection adds the section clause: equality when set, IS NULL for
// farm-wide rows.
func scopeSection(q *gorm.DB, section *string) *gorm.DB {
	if section != nil {
		return q.Where("section = ?", *section)
	}
	return q.Where("section IS NULL")
}
