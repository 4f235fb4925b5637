package scheduler

import (
	"context"
	"log/slog"
	"time"

	"github.com/Alisjj/farmPilot-sub001/internal/config"
	"github.com/Alisjj/farmPilot-sub001/internal/service"

	"github.com/robfig/cron/v3"
)

// jobTimeout bounds one full nightly KPI run
const jobTimeout = 5 * time.Minute

// Scheduler runs the nightly KPI calculation and alert evaluation
type Scheduler struct {
	cron     *cron.Cron
	kpis     service.KpiService
	alerts   service.AlertService
	sections []string
	schedule string
	logger   *slog.Logger
}

// New creates a scheduler that recomputes yesterday's KPIs farm-wide and per
// configured section, then evaluates thresholds and inventory levels. The cron
// job is the single writer per (date, section) key: recomputation of a key is
// never triggered concurrently from here.
func New(cfg config.SchedulerConfig, flock config.FlockConfig, kpis service.KpiService, alerts service.AlertService, logger *slog.Logger) *Scheduler {
	sections := make([]string, 0, len(flock.SectionSizes))
	for name := range flock.SectionSizes {
		sections = append(sections, name)
	}

	return &Scheduler{
		cron:     cron.New(),
		kpis:     kpis,
		alerts:   alerts,
		sections: sections,
		schedule: cfg.CronSchedule,
		logger:   logger,
	}
}

// Start registers the nightly job and starts the cron loop
func (s *Scheduler) Start() error {
	if _, err := s.cron.AddFunc(s.schedule, s.runDaily); err != nil {
		return err
	}
	s.cron.Start()
	s.logger.Info("scheduler started", "schedule", s.schedule)
	return nil
}

// Stop stops the cron loop
func (s *Scheduler) Stop() {
	s.cron.Stop()
	s.logger.Info("scheduler stopped")
}

func (s *Scheduler) runDaily() {
	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()

	yesterday := time.Now().UTC().AddDate(0, 0, -1)
	s.logger.Info("nightly kpi run started", "date", yesterday.Format("2006-01-02"))

	scopes := []*string{nil}
	for i := range s.sections {
		scopes = append(scopes, &s.sections[i])
	}

	for _, section := range scopes {
		if err := s.kpis.CalculateDailyKpis(ctx, yesterday, section); err != nil {
			s.logger.Error("nightly kpi calculation failed",
				"section", section,
				"error", err.Error(),
			)
			continue
		}
		if _, err := s.alerts.EvaluateThresholds(ctx, yesterday, section); err != nil {
			s.logger.Error("nightly threshold evaluation failed",
				"section", section,
				"error", err.Error(),
			)
		}
	}

	if _, err := s.alerts.EvaluateInventoryAlerts(ctx); err != nil {
		s.logger.Error("nightly inventory evaluation failed", "error", err.Error())
	}

	s.logger.Info("nightly kpi run finished", "date", yesterday.Format("2006-01-02"))
}
