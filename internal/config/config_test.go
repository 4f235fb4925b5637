package config

import (
	"testing"
)

func TestParseSectionSizes(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		want    map[string]int
		wantErr bool
	}{
		{
			name: "empty input yields empty map",
			raw:  "",
			want: map[string]int{},
		},
		{
			name: "single section",
			raw:  "Section A=1200",
			want: map[string]int{"Section A": 1200},
		},
		{
			name: "multiple sections with spaces",
			raw:  "Section A=1200, Section B = 800",
			want: map[string]int{"Section A": 1200, "Section B": 800},
		},
		{
			name:    "missing separator",
			raw:     "Section A",
			wantErr: true,
		},
		{
			name:    "non-numeric count",
			raw:     "Section A=lots",
			wantErr: true,
		},
		{
			name:    "zero count rejected",
			raw:     "Section A=0",
			wantErr: true,
		},
		{
			name:    "empty section name",
			raw:     "=1200",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseSectionSizes(tt.raw)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("Expected error for input %q, got none", tt.raw)
				}
				return
			}
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			if len(got) != len(tt.want) {
				t.Fatalf("Expected %d entries, got %d", len(tt.want), len(got))
			}
			for section, count := range tt.want {
				if got[section] != count {
					t.Errorf("Expected %s=%d, got %d", section, count, got[section])
				}
			}
		})
	}
}

func TestConfigValidate(t *testing.T) {
	valid := &Config{
		Server:    ServerConfig{Port: "8080"},
		Database:  DatabaseConfig{DSN: "host=localhost"},
		Flock:     FlockConfig{DefaultSize: 2500},
		Scheduler: SchedulerConfig{CronSchedule: "0 1 * * *"},
	}
	if err := valid.Validate(); err != nil {
		t.Errorf("Expected valid config, got error: %v", err)
	}

	missingDSN := *valid
	missingDSN.Database.DSN = ""
	if err := missingDSN.Validate(); err == nil {
		t.Error("Expected error for missing DATABASE_DSN")
	}

	badFlock := *valid
	badFlock.Flock.DefaultSize = 0
	if err := badFlock.Validate(); err == nil {
		t.Error("Expected error for non-positive FLOCK_SIZE")
	}
}
