package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/Alisjj/farmPilot-sub001/internal/model"
	"github.com/Alisjj/farmPilot-sub001/internal/repository"

	"gorm.io/datatypes"
)

// AlertService evaluates alerting rules and manages the alert lifecycle.
// Evaluation is an explicit step callers invoke after writes or reads; fetching
// data never mutates anything by itself.
type AlertService interface {
	// EvaluateThresholds checks every active threshold against the summary row
	// for (date, section) and creates alerts for breaches. Returns the number
	// of alerts created; duplicates of open unread alerts are suppressed.
	EvaluateThresholds(ctx context.Context, date time.Time, section *string) (int, error)

	// EvaluateInventoryAlerts raises low-stock alerts for items at or below
	// their reorder level, with the same dedup contract.
	EvaluateInventoryAlerts(ctx context.Context) (int, error)

	ListAlerts(ctx context.Context, unreadOnly bool, section *string) ([]model.Alert, error)
	MarkAlertRead(ctx context.Context, id uint) error
	DismissAlert(ctx context.Context, id uint) error
	ListInventory(ctx context.Context) ([]model.InventoryItem, error)
}

// alertService implements AlertService
type alertService struct {
	store  repository.Store
	logger *slog.Logger
}

// NewAlertService creates a new alert evaluation service
func NewAlertService(store repository.Store, logger *slog.Logger) AlertService {
	return &alertService{store: store, logger: logger}
}

// EvaluateThresholds loads active thresholds and the day's summary and creates
// one alert per breached rule that has no equivalent unread alert open.
func (a *alertService) EvaluateThresholds(ctx context.Context, date time.Time, section *string) (int, error) {
	thresholds, err := a.store.QueryThresholds(ctx, true)
	if err != nil {
		return 0, fmt.Errorf("query thresholds: %w", err)
	}
	if len(thresholds) == 0 {
		return 0, nil
	}

	summary, err := a.store.DailyKpiSummaryByKey(ctx, dateKey(date), section)
	if err != nil {
		return 0, fmt.Errorf("query summary for %s: %w", dateKey(date), err)
	}
	if summary == nil {
		// No KPIs calculated for this key yet; nothing to evaluate.
		return 0, nil
	}

	previous, err := a.store.DailyKpiSummaryByKey(ctx, dateKey(date.AddDate(0, 0, -1)), section)
	if err != nil {
		return 0, fmt.Errorf("query previous summary: %w", err)
	}

	created := 0
	for _, t := range thresholds {
		value, ok := metricForThreshold(t.ThresholdType, summary, previous)
		if !ok {
			continue
		}

		hit, err := compare(value, t)
		if err != nil {
			a.logger.Warn("skipping malformed threshold",
				"threshold_id", t.ID,
				"threshold_type", string(t.ThresholdType),
				"error", err.Error(),
			)
			continue
		}
		if !hit {
			continue
		}

		alert := &model.Alert{
			AlertType: model.AlertThresholdExceeded,
			Severity:  t.Severity,
			Title:     thresholdTitle(t.ThresholdType),
			Message: fmt.Sprintf("%s: value %.2f breached configured threshold %.2f on %s",
				thresholdTitle(t.ThresholdType), value, t.Value, summary.SummaryDate),
			Section: section,
			Metadata: datatypes.JSONMap{
				"threshold_id":   t.ID,
				"threshold_type": string(t.ThresholdType),
				"operator":       string(t.Operator),
				"metric_value":   value,
			},
		}

		ok, err = a.createIfAbsent(ctx, alert)
		if err != nil {
			return created, err
		}
		if ok {
			created++
		}
	}

	return created, nil
}

// EvaluateInventoryAlerts scans inventory and raises a low-stock alert per
// qualifying item. Severity escalates to high when the item is fully depleted.
func (a *alertService) EvaluateInventoryAlerts(ctx context.Context) (int, error) {
	items, err := a.store.ListInventory(ctx)
	if err != nil {
		return 0, fmt.Errorf("list inventory: %w", err)
	}

	created := 0
	for _, item := range items {
		if item.Quantity > item.ReorderLevel {
			continue
		}

		severity := model.SeverityMedium
		if item.Quantity <= 0 {
			severity = model.SeverityHigh
		}

		alert := &model.Alert{
			AlertType: model.AlertInventoryLow,
			Severity:  severity,
			Title:     fmt.Sprintf("Low stock: %s", item.Name),
			Message: fmt.Sprintf("%s is at %.2f %s, at or below the reorder level of %.2f %s",
				item.Name, item.Quantity, item.Unit, item.ReorderLevel, item.Unit),
			Metadata: datatypes.JSONMap{
				"item_id":       item.ID,
				"quantity":      item.Quantity,
				"reorder_level": item.ReorderLevel,
			},
		}

		ok, err := a.createIfAbsent(ctx, alert)
		if err != nil {
			return created, err
		}
		if ok {
			created++
		}
	}

	return created, nil
}

// createIfAbsent creates the alert unless an unread alert with the same
// (type, title, section) is already open. Reports whether a row was created.
func (a *alertService) createIfAbsent(ctx context.Context, alert *model.Alert) (bool, error) {
	existing, err := a.store.QueryAlerts(ctx, repository.AlertFilter{
		UnreadOnly: true,
		AlertType:  alert.AlertType,
		Title:      alert.Title,
		Section:    alert.Section,
		SectionSet: true,
		Limit:      1,
	})
	if err != nil {
		return false, fmt.Errorf("check open alerts: %w", err)
	}
	if len(existing) > 0 {
		return false, nil
	}

	if err := a.store.CreateAlert(ctx, alert); err != nil {
		return false, fmt.Errorf("create alert: %w", err)
	}

	a.logger.Info("alert created",
		"alert_type", string(alert.AlertType),
		"severity", string(alert.Severity),
		"title", alert.Title,
		"section", sectionLabel(alert.Section),
	)
	return true, nil
}

// ListAlerts fetches alerts for display
func (a *alertService) ListAlerts(ctx context.Context, unreadOnly bool, section *string) ([]model.Alert, error) {
	f := repository.AlertFilter{UnreadOnly: unreadOnly}
	if section != nil {
		f.Section = section
		f.SectionSet = true
	}
	return a.store.QueryAlerts(ctx, f)
}

// MarkAlertRead marks one alert as read
func (a *alertService) MarkAlertRead(ctx context.Context, id uint) error {
	return a.store.MarkAlertRead(ctx, id)
}

// DismissAlert deletes one alert
func (a *alertService) DismissAlert(ctx context.Context, id uint) error {
	return a.store.DeleteAlert(ctx, id)
}

// ListInventory fetches the current inventory
func (a *alertService) ListInventory(ctx context.Context) ([]model.InventoryItem, error) {
	return a.store.ListInventory(ctx)
}

// metricForThreshold resolves the metric a threshold watches from the current
// and previous summary rows. Drop/increase thresholds need a prior period; they
// report not-ok when it is missing or empty, per the data-absence policy.
func metricForThreshold(t model.ThresholdType, current, previous *model.DailyKpiSummary) (float64, bool) {
	switch t {
	case model.ThresholdMortalityCount:
		return float64(current.MortalityCount), true
	case model.ThresholdMortalityRate:
		return current.MortalityRate, true
	case model.ThresholdProfitMarginLow:
		return current.ProfitMargin, true
	case model.ThresholdProductionDrop:
		if previous == nil || previous.TotalEggs == 0 {
			return 0, false
		}
		drop := (float64(previous.TotalEggs) - float64(current.TotalEggs)) / float64(previous.TotalEggs) * 100
		return round2(drop), true
	case model.ThresholdFeedConsumptionIncrease:
		if previous == nil || previous.TotalFeedKg == 0 {
			return 0, false
		}
		increase := (current.TotalFeedKg - previous.TotalFeedKg) / previous.TotalFeedKg * 100
		return round2(increase), true
	default:
		return 0, false
	}
}

// compare evaluates a threshold's comparison against a metric value. A between
// operator without an upper bound is a configuration defect and errors instead
// of guessing a range.
func compare(value float64, t model.ThresholdConfig) (bool, error) {
	switch t.Operator {
	case model.CompareGreaterThan:
		return value > t.Value, nil
	case model.CompareLessThan:
		return value < t.Value, nil
	case model.CompareEquals:
		return value == t.Value, nil
	case model.CompareNotEquals:
		return value != t.Value, nil
	case model.CompareBetween:
		if t.UpperValue == nil {
			return false, fmt.Errorf("between threshold %d has no upper value", t.ID)
		}
		return value >= t.Value && value <= *t.UpperValue, nil
	default:
		return false, fmt.Errorf("unknown comparison operator %q", t.Operator)
	}
}

// thresholdTitle derives the deterministic alert title dedup keys on
func thresholdTitle(t model.ThresholdType) string {
	switch t {
	case model.ThresholdMortalityCount:
		return "Mortality count threshold exceeded"
	case model.ThresholdMortalityRate:
		return "Mortality rate threshold exceeded"
	case model.ThresholdProductionDrop:
		return "Production drop threshold exceeded"
	case model.ThresholdFeedConsumptionIncrease:
		return "Feed consumption increase threshold exceeded"
	case model.ThresholdProfitMarginLow:
		return "Profit margin below threshold"
	default:
		return fmt.Sprintf("Threshold exceeded: %s", t)
	}
}
