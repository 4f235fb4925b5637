package model

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

// ActivityType tags an operational event recorded on the farm
type ActivityType string

const (
	ActivityEggCollection    ActivityType = "egg_collection"
	ActivityFeedDistribution ActivityType = "feed_distribution"
	ActivityMortality        ActivityType = "mortality"
	ActivityMedication       ActivityType = "medication"
	ActivitySale             ActivityType = "sales"
)

// ActivityRecord is an immutable operational event. The payload shape depends on
// the activity type and is validated by the recording API before it gets here.
type ActivityRecord struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `gorm:"not null;index:idx_activity_type_time,priority:2;index:idx_activity_section_time,priority:2" json:"created_at"`

	ActivityType ActivityType      `gorm:"not null;size:50;index:idx_activity_type_time,priority:1" json:"activity_type"`
	Section      *string           `gorm:"size:100;index:idx_activity_section_time,priority:1" json:"section,omitempty"`
	Payload      datatypes.JSONMap `gorm:"type:jsonb" json:"payload"`
	RecordedBy   string            `gorm:"size:100" json:"recorded_by"`
}

// TableName specifies the table name for ActivityRecord
func (ActivityRecord) TableName() string {
	return "activity_records"
}

// TransactionType carries the direction of a financial transaction; the amount
// itself is always non-negative.
type TransactionType string

const (
	TransactionRevenue     TransactionType = "revenue"
	TransactionExpense     TransactionType = "expense"
	TransactionSalary      TransactionType = "salary"
	TransactionProcurement TransactionType = "procurement"
)

// FinancialTransaction is a single dated money movement. Transaction dates are
// calendar dates (YYYY-MM-DD), not timestamps.
type FinancialTransaction struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`

	Type            TransactionType `gorm:"not null;size:20;index:idx_txn_date_type,priority:2" json:"type"`
	Category        string          `gorm:"size:100" json:"category"`
	Amount          decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"amount"`
	TransactionDate string          `gorm:"not null;size:10;index:idx_txn_date_type,priority:1" json:"transaction_date"`
	Description     string          `gorm:"type:text" json:"description"`
}

// TableName specifies the table name for FinancialTransaction
func (FinancialTransaction) TableName() string {
	return "financial_transactions"
}

// DailyKpiSummary holds the derived metrics for one (date, section) key.
// Section NULL means farm-wide. The row is always replaced whole, never patched.
type DailyKpiSummary struct {
	ID uint `gorm:"primaryKey" json:"id"`

	SummaryDate string  `gorm:"not null;size:10;index:idx_summary_date_section,priority:1" json:"summary_date"`
	Section     *string `gorm:"size:100;index:idx_summary_date_section,priority:2" json:"section,omitempty"`

	// Production
	TotalEggs            int     `json:"total_eggs"`
	TotalFeedKg          float64 `gorm:"type:decimal(10,2)" json:"total_feed_kg"`
	ProductionRate       float64 `gorm:"type:decimal(10,2)" json:"production_rate"`
	FeedConversionRatio  float64 `gorm:"type:decimal(10,4)" json:"feed_conversion_ratio"`
	AvgEggWeightG        float64 `gorm:"type:decimal(10,2)" json:"avg_egg_weight_g"`
	GradeAPercent        float64 `gorm:"type:decimal(10,2)" json:"grade_a_percent"`
	CollectionEfficiency float64 `gorm:"type:decimal(10,4)" json:"collection_efficiency"`
	FeedUtilizationRate  float64 `gorm:"type:decimal(10,2)" json:"feed_utilization_rate"`

	// Financial
	Revenue        decimal.Decimal `gorm:"type:decimal(12,2);default:0" json:"revenue"`
	Expenses       decimal.Decimal `gorm:"type:decimal(12,2);default:0" json:"expenses"`
	NetProfit      decimal.Decimal `gorm:"type:decimal(12,2);default:0" json:"net_profit"`
	FeedCostPerEgg decimal.Decimal `gorm:"type:decimal(12,4);default:0" json:"feed_cost_per_egg"`
	ProfitMargin   float64         `gorm:"type:decimal(10,2)" json:"profit_margin"`

	// Operational
	MortalityCount int     `json:"mortality_count"`
	MortalityRate  float64 `gorm:"type:decimal(10,2)" json:"mortality_rate"`
	MortalityLevel string  `gorm:"size:20" json:"mortality_level"`
	CriticalAlerts int     `json:"critical_alerts"`
	OtherAlerts    int     `json:"other_alerts"`

	CalculatedAt time.Time `json:"calculated_at"`
}

// TableName specifies the table name for DailyKpiSummary
func (DailyKpiSummary) TableName() string {
	return "daily_kpi_summaries"
}

// TrendDirection classifies a KPI movement between two periods
type TrendDirection string

const (
	TrendUp     TrendDirection = "up"
	TrendDown   TrendDirection = "down"
	TrendStable TrendDirection = "stable"
)

// KpiTrend is a point-in-time comparison of one KPI against the previous
// period. Rows accumulate; they are never replaced.
type KpiTrend struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `gorm:"index" json:"created_at"`

	KpiName       string         `gorm:"not null;size:100;index" json:"kpi_name"`
	Category      string         `gorm:"size:50" json:"category"`
	CurrentValue  float64        `gorm:"type:decimal(14,4)" json:"current_value"`
	PreviousValue *float64       `gorm:"type:decimal(14,4)" json:"previous_value,omitempty"`
	ChangePercent *float64       `gorm:"type:decimal(10,2)" json:"change_percent,omitempty"`
	Direction     TrendDirection `gorm:"not null;size:10" json:"direction"`
	PeriodStart   time.Time      `json:"period_start"`
	PeriodEnd     time.Time      `json:"period_end"`
}

// TableName specifies the table name for KpiTrend
func (KpiTrend) TableName() string {
	return "kpi_trends"
}

// AlertType tags the detector that raised an alert
type AlertType string

const (
	AlertThresholdExceeded AlertType = "threshold_exceeded"
	AlertInventoryLow      AlertType = "inventory_low"
	AlertMortalitySpike    AlertType = "mortality_spike"
)

// AlertSeverity ranks alerts for the dashboard
type AlertSeverity string

const (
	SeverityLow      AlertSeverity = "low"
	SeverityMedium   AlertSeverity = "medium"
	SeverityHigh     AlertSeverity = "high"
	SeverityCritical AlertSeverity = "critical"
)

// Alert is a persisted operator notification. An unread alert with the same
// (type, title, section) suppresses creation of an equivalent one.
type Alert struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `gorm:"index" json:"created_at"`

	AlertType AlertType         `gorm:"not null;size:50;index:idx_alert_dedup,priority:1" json:"alert_type"`
	Severity  AlertSeverity     `gorm:"not null;size:20" json:"severity"`
	Title     string            `gorm:"not null;size:255;index:idx_alert_dedup,priority:2" json:"title"`
	Message   string            `gorm:"type:text" json:"message"`
	Section   *string           `gorm:"size:100;index:idx_alert_dedup,priority:3" json:"section,omitempty"`
	Read      bool              `gorm:"not null;default:false;index" json:"read"`
	ExpiresAt *time.Time        `json:"expires_at,omitempty"`
	Metadata  datatypes.JSONMap `gorm:"type:jsonb" json:"metadata,omitempty"`
}

// TableName specifies the table name for Alert
func (Alert) TableName() string {
	return "alerts"
}

// ThresholdType names the metric a threshold row watches
type ThresholdType string

const (
	ThresholdMortalityCount          ThresholdType = "mortality_count"
	ThresholdMortalityRate           ThresholdType = "mortality_rate"
	ThresholdProductionDrop          ThresholdType = "production_drop"
	ThresholdFeedConsumptionIncrease ThresholdType = "feed_consumption_increase"
	ThresholdProfitMarginLow         ThresholdType = "profit_margin_low"
)

// ComparisonOperator selects the comparison semantics of a threshold row
type ComparisonOperator string

const (
	CompareGreaterThan ComparisonOperator = "greater_than"
	CompareLessThan    ComparisonOperator = "less_than"
	CompareEquals      ComparisonOperator = "equals"
	CompareNotEquals   ComparisonOperator = "not_equals"
	CompareBetween     ComparisonOperator = "between"
)

// ThresholdConfig is an admin-managed alerting rule. UpperValue is only
// meaningful for the between operator, which needs an explicit two-value range.
type ThresholdConfig struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	ThresholdType  ThresholdType               `gorm:"not null;size:50" json:"threshold_type"`
	Value          float64                     `gorm:"not null;type:decimal(14,4)" json:"value"`
	UpperValue     *float64                    `gorm:"type:decimal(14,4)" json:"upper_value,omitempty"`
	Operator       ComparisonOperator          `gorm:"not null;size:20" json:"operator"`
	Severity       AlertSeverity               `gorm:"not null;size:20" json:"severity"`
	NotifyChannels datatypes.JSONSlice[string] `json:"notify_channels"`
	Active         bool                        `gorm:"not null;default:true;index" json:"active"`
}

// TableName specifies the table name for ThresholdConfig
func (ThresholdConfig) TableName() string {
	return "threshold_configs"
}

// InventoryItem tracks stock levels for feed, medication and supplies.
// Quantity at or below ReorderLevel qualifies for a low-stock alert.
type InventoryItem struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Name         string  `gorm:"not null;size:255;uniqueIndex" json:"name"`
	Category     string  `gorm:"size:100" json:"category"`
	Quantity     float64 `gorm:"not null;type:decimal(12,2)" json:"quantity"`
	Unit         string  `gorm:"size:20" json:"unit"`
	ReorderLevel float64 `gorm:"not null;type:decimal(12,2)" json:"reorder_level"`
}

// TableName specifies the table name for InventoryItem
func (InventoryItem) TableName() string {
	return "inventory_items"
}
