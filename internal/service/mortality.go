package service

import "math"

// Mortality levels returned by EvaluateMortality
const (
	MortalityNormal   = "normal"
	MortalityWarning  = "warning"
	MortalityCritical = "critical"
)

// MortalityThresholds configures the count and rate triggers for mortality
// escalation. Count and rate triggers are independent; either can escalate.
type MortalityThresholds struct {
	WarningCount  int
	CriticalCount int
	WarningRate   float64 // percent
	CriticalRate  float64 // percent
}

// DefaultMortalityThresholds returns the standard escalation thresholds
func DefaultMortalityThresholds() MortalityThresholds {
	return MortalityThresholds{
		WarningCount:  3,
		CriticalCount: 5,
		WarningRate:   1.0,
		CriticalRate:  2.0,
	}
}

// MortalityAssessment is the outcome of evaluating a mortality count against a
// flock size.
type MortalityAssessment struct {
	Level string  `json:"level"`
	Rate  float64 `json:"rate"`
}

// EvaluateMortality computes the mortality rate and escalation level for a
// daily death count. The rate is zero whenever either the count or the flock
// size is zero; a non-zero count against a zero flock size still escalates
// through the count thresholds.
func EvaluateMortality(count, flockSize int, cfg MortalityThresholds) MortalityAssessment {
	rate := 0.0
	if count > 0 && flockSize > 0 {
		rate = round2(float64(count) / float64(flockSize) * 100)
	}

	level := MortalityNormal
	switch {
	case count >= cfg.CriticalCount || rate >= cfg.CriticalRate:
		level = MortalityCritical
	case count >= cfg.WarningCount || rate >= cfg.WarningRate:
		level = MortalityWarning
	}

	return MortalityAssessment{Level: level, Rate: rate}
}

// round2 rounds to 2 decimal places
func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// round4 rounds to 4 decimal places
func round4(v float64) float64 {
	return math.Round(v*10000) / 10000
}
