package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLevelForScore_Boundaries(t *testing.T) {
	tests := []struct {
		score float64
		want  RiskLevel
	}{
		{0, RiskLow},
		{24.99, RiskLow},
		{25, RiskModerate},
		{49.99, RiskModerate},
		{50, RiskHigh},
		{74.99, RiskHigh},
		{75, RiskSevere},
		{100, RiskSevere},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, LevelForScore(tt.score), "score %v", tt.score)
	}
}

func TestComputeTrend(t *testing.T) {
	tests := []struct {
		name     string
		latest   int
		previous int
		want     Trend
	}{
		{"halved", 50, 100, Trend{Direction: TrendDown, Percentage: -50}},
		{"doubled", 200, 100, Trend{Direction: TrendUp, Percentage: 100}},
		{"zero previous with new crimes", 20, 0, Trend{Direction: TrendUp, Percentage: 100}},
		{"zero to zero", 0, 0, Trend{Direction: TrendStable, Percentage: 0}},
		{"dropped to zero", 0, 40, Trend{Direction: TrendDown, Percentage: -100}},
		{"within epsilon", 100, 100, Trend{Direction: TrendStable, Percentage: 0}},
		{"just inside epsilon", 101, 100, Trend{Direction: TrendStable, Percentage: 1}},
		{"just above epsilon", 102, 100, Trend{Direction: TrendUp, Percentage: 2}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ComputeTrend(tt.latest, tt.previous))
		})
	}
}

func TestCrimeRecordID_Deterministic(t *testing.T) {
	a := CrimeRecord{City: "Kozhikode", CrimeType: "Theft", Year: 2022, Count: 15}
	b := CrimeRecord{City: "Kozhikode", CrimeType: "Theft", Year: 2022, Count: 99}
	assert.Equal(t, a.ID(), b.ID(), "identity must not depend on count")
}
