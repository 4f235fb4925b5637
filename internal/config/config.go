package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Config represents the full application configuration surface.
type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	Flock     FlockConfig
	Scheduler SchedulerConfig
	Seed      bool
}

// ServerConfig holds HTTP server related options.
type ServerConfig struct {
	Port string
}

// DatabaseConfig holds the postgres connection settings.
type DatabaseConfig struct {
	DSN string
}

// FlockConfig carries the bird counts rate KPIs are computed against. There is
// deliberately no hard-coded fallback: production and mortality rates are
// meaningless without a real flock size, so deployments must provide one.
type FlockConfig struct {
	DefaultSize  int
	SectionSizes map[string]int
}

// SchedulerConfig holds the cron expression for the nightly KPI run.
type SchedulerConfig struct {
	CronSchedule string
}

// Load reads environment variables (optionally from the provided file) and
// materializes a Config instance.
func Load(envFile string) (*Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil {
			if !errors.Is(err, os.ErrNotExist) {
				return nil, fmt.Errorf("failed loading env file %s: %w", envFile, err)
			}
		}
	} else {
		// Missing .env files are acceptable when configuration comes from the
		// environment directly.
		_ = godotenv.Load()
	}

	flockSize, err := parseFlockSize(os.Getenv("FLOCK_SIZE"))
	if err != nil {
		return nil, err
	}

	sectionSizes, err := ParseSectionSizes(os.Getenv("FLOCK_SECTION_SIZES"))
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		Server: ServerConfig{
			Port: getenvWithDefault("APP_PORT", "8080"),
		},
		Database: DatabaseConfig{
			DSN: os.Getenv("DATABASE_DSN"),
		},
		Flock: FlockConfig{
			DefaultSize:  flockSize,
			SectionSizes: sectionSizes,
		},
		Scheduler: SchedulerConfig{
			CronSchedule: getenvWithDefault("KPI_CRON_SCHEDULE", "0 1 * * *"),
		},
		Seed: strings.EqualFold(os.Getenv("SEED_DATABASE"), "true"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate ensures that required configuration fields are populated.
func (c *Config) Validate() error {
	if c == nil {
		return errors.New("config is nil")
	}

	if c.Server.Port == "" {
		return errors.New("APP_PORT must be provided")
	}

	if c.Database.DSN == "" {
		return errors.New("DATABASE_DSN must be provided")
	}

	if c.Flock.DefaultSize <= 0 {
		return errors.New("FLOCK_SIZE must be a positive integer")
	}

	if c.Scheduler.CronSchedule == "" {
		return errors.New("KPI_CRON_SCHEDULE must be provided")
	}

	return nil
}

func parseFlockSize(raw string) (int, error) {
	if raw == "" {
		return 0, errors.New("FLOCK_SIZE must be provided")
	}
	size, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("FLOCK_SIZE must be an integer: %w", err)
	}
	return size, nil
}

// ParseSectionSizes parses a "Section A=1200,Section B=800" style mapping of
// per-section flock sizes. An empty input yields an empty map.
func ParseSectionSizes(raw string) (map[string]int, error) {
	sizes := make(map[string]int)
	if strings.TrimSpace(raw) == "" {
		return sizes, nil
	}

	for _, pair := range strings.Split(raw, ",") {
		name, value, found := strings.Cut(pair, "=")
		name = strings.TrimSpace(name)
		if !found || name == "" {
			return nil, fmt.Errorf("FLOCK_SECTION_SIZES entry %q must be section=count", pair)
		}
		count, err := strconv.Atoi(strings.TrimSpace(value))
		if err != nil || count <= 0 {
			return nil, fmt.Errorf("FLOCK_SECTION_SIZES entry %q must have a positive count", pair)
		}
		sizes[name] = count
	}

	return sizes, nil
}

func getenvWithDefault(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
