package repository

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/Alisjj/farmPilot-sub001/internal/model"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// SeedRepository handles database seeding operations
type SeedRepository struct {
	db *gorm.DB
}

// NewSeedRepository creates a new seed repository
func NewSeedRepository(db *gorm.DB) *SeedRepository {
	return &SeedRepository{db: db}
}

var seedSections = []string{"Section A", "Section B"}

// SeedDatabase seeds the database with a month of activity records and
// transactions, default thresholds and inventory items
func (s *SeedRepository) SeedDatabase() error {
	if err := s.clearExistingData(); err != nil {
		return fmt.Errorf("failed to clear existing data: %w", err)
	}

	activities, err := s.createActivities()
	if err != nil {
		return fmt.Errorf("failed to create activity records: %w", err)
	}

	txns, err := s.createTransactions()
	if err != nil {
		return fmt.Errorf("failed to create transactions: %w", err)
	}

	if err := s.createThresholds(); err != nil {
		return fmt.Errorf("failed to create thresholds: %w", err)
	}

	if err := s.createInventory(); err != nil {
		return fmt.Errorf("failed to create inventory: %w", err)
	}

	fmt.Printf("✓ Seeded database successfully:\n")
	fmt.Printf("  - Activity records: %d\n", activities)
	fmt.Printf("  - Transactions: %d\n", txns)

	return nil
}

// clearExistingData removes existing data
func (s *SeedRepository) clearExistingData() error {
	tables := []string{
		"activity_records",
		"financial_transactions",
		"daily_kpi_summaries",
		"kpi_trends",
		"alerts",
		"threshold_configs",
		"inventory_items",
	}
	for _, table := range tables {
		if err := s.db.Exec("TRUNCATE TABLE " + table + " CASCADE").Error; err != nil {
			return err
		}
	}
	return nil
}

// createActivities generates 30 days of egg collection, feed distribution and
// mortality records per section
func (s *SeedRepository) createActivities() (int, error) {
	var records []model.ActivityRecord
	now := time.Now().UTC()

	for day := 30; day >= 1; day-- {
		date := now.AddDate(0, 0, -day)
		for _, section := range seedSections {
			sec := section
			eggs := 800 + rand.Intn(300)
			records = append(records, model.ActivityRecord{
				CreatedAt:    time.Date(date.Year(), date.Month(), date.Day(), 8, 0, 0, 0, time.UTC),
				ActivityType: model.ActivityEggCollection,
				Section:      &sec,
				Payload: datatypes.JSONMap{
					"quantity":       eggs,
					"grade_a":        eggs * (70 + rand.Intn(20)) / 100,
					"total_weight_g": float64(eggs) * (58 + rand.Float64()*6),
					"collectors":     2 + rand.Intn(2),
				},
				RecordedBy: "seed",
			})

			records = append(records, model.ActivityRecord{
				CreatedAt:    time.Date(date.Year(), date.Month(), date.Day(), 7, 0, 0, 0, time.UTC),
				ActivityType: model.ActivityFeedDistribution,
				Section:      &sec,
				Payload: datatypes.JSONMap{
					"quantity_kg": 110 + rand.Float64()*30,
					"feed_type":   "layer mash",
				},
				RecordedBy: "seed",
			})

			if rand.Intn(3) == 0 {
				records = append(records, model.ActivityRecord{
					CreatedAt:    time.Date(date.Year(), date.Month(), date.Day(), 17, 0, 0, 0, time.UTC),
					ActivityType: model.ActivityMortality,
					Section:      &sec,
					Payload: datatypes.JSONMap{
						"count": 1 + rand.Intn(3),
						"cause": "unknown",
					},
					RecordedBy: "seed",
				})
			}
		}
	}

	if err := s.db.CreateInBatches(records, 200).Error; err != nil {
		return 0, err
	}
	return len(records), nil
}

// createTransactions generates matching daily revenue and expense entries
func (s *SeedRepository) createTransactions() (int, error) {
	var txns []model.FinancialTransaction
	now := time.Now().UTC()

	for day := 30; day >= 1; day-- {
		date := now.AddDate(0, 0, -day).Format("2006-01-02")

		txns = append(txns, model.FinancialTransaction{
			Type:            model.TransactionRevenue,
			Category:        "egg sales",
			Amount:          decimal.NewFromInt(int64(1200 + rand.Intn(600))),
			TransactionDate: date,
			Description:     "daily egg sales",
		})
		txns = append(txns, model.FinancialTransaction{
			Type:            model.TransactionExpense,
			Category:        "feed",
			Amount:          decimal.NewFromInt(int64(400 + rand.Intn(200))),
			TransactionDate: date,
			Description:     "feed purchase",
		})
		if rand.Intn(4) == 0 {
			txns = append(txns, model.FinancialTransaction{
				Type:            model.TransactionExpense,
				Category:        "medication",
				Amount:          decimal.NewFromInt(int64(50 + rand.Intn(100))),
				TransactionDate: date,
				Description:     "vaccines and supplements",
			})
		}
	}

	if err := s.db.CreateInBatches(txns, 200).Error; err != nil {
		return 0, err
	}
	return len(txns), nil
}

// createThresholds installs the default alerting rules
func (s *SeedRepository) createThresholds() error {
	marginFloor := 10.0
	thresholds := []model.ThresholdConfig{
		{
			ThresholdType:  model.ThresholdMortalityCount,
			Value:          5,
			Operator:       model.CompareGreaterThan,
			Severity:       model.SeverityCritical,
			NotifyChannels: datatypes.NewJSONSlice([]string{"dashboard", "email"}),
			Active:         true,
		},
		{
			ThresholdType:  model.ThresholdMortalityRate,
			Value:          2.0,
			Operator:       model.CompareGreaterThan,
			Severity:       model.SeverityHigh,
			NotifyChannels: datatypes.NewJSONSlice([]string{"dashboard"}),
			Active:         true,
		},
		{
			ThresholdType:  model.ThresholdProductionDrop,
			Value:          15.0,
			Operator:       model.CompareGreaterThan,
			Severity:       model.SeverityMedium,
			NotifyChannels: datatypes.NewJSONSlice([]string{"dashboard"}),
			Active:         true,
		},
		{
			ThresholdType:  model.ThresholdProfitMarginLow,
			Value:          0,
			UpperValue:     &marginFloor,
			Operator:       model.CompareBetween,
			Severity:       model.SeverityLow,
			NotifyChannels: datatypes.NewJSONSlice([]string{"dashboard"}),
			Active:         true,
		},
	}
	return s.db.Create(&thresholds).Error
}

// createInventory installs a small starting inventory
func (s *SeedRepository) createInventory() error {
	items := []model.InventoryItem{
		{Name: "Layer mash", Category: "feed", Quantity: 1200, Unit: "kg", ReorderLevel: 300},
		{Name: "Maize", Category: "feed", Quantity: 800, Unit: "kg", ReorderLevel: 200},
		{Name: "Newcastle vaccine", Category: "medication", Quantity: 40, Unit: "doses", ReorderLevel: 50},
		{Name: "Egg trays", Category: "supplies", Quantity: 500, Unit: "pcs", ReorderLevel: 100},
	}
	return s.db.Create(&items).Error
}
