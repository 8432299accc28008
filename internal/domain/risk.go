package domain

// RiskLevel is the categorical bucket derived from a city's normalized risk
// score.
type RiskLevel string

const (
	RiskLow      RiskLevel = "LOW"
	RiskModerate RiskLevel = "MODERATE"
	RiskHigh     RiskLevel = "HIGH"
	RiskSevere   RiskLevel = "SEVERE"
)

// LevelForScore buckets a [0,100] score into a risk level. Boundaries are
// inclusive on the lower bound: 25 is MODERATE, 50 is HIGH, 75 is SEVERE.
func LevelForScore(score float64) RiskLevel {
	switch {
	case score < 25:
		return RiskLow
	case score < 50:
		return RiskModerate
	case score < 75:
		return RiskHigh
	default:
		return RiskSevere
	}
}

// TrendDirection labels a city's year-over-year movement.
type TrendDirection string

const (
	TrendUp     TrendDirection = "UP"
	TrendDown   TrendDirection = "DOWN"
	TrendStable TrendDirection = "STABLE"
)

// trendEpsilon is the percentage band treated as flat. Single-digit count
// jitter between years should not flip a city between UP and DOWN.
const trendEpsilon = 1.0

// Trend is the year-over-year movement between a city's two most recent
// recorded years.
type Trend struct {
	Direction  TrendDirection `json:"direction"`
	Percentage float64        `json:"percentage"`
}

// ComputeTrend compares the latest year's summed count against the previous
// year's. A zero previous year is guarded: no-data-to-no-data is STABLE/0,
// zero-to-something is reported as a 100% rise rather than a division error.
func ComputeTrend(latest, previous int) Trend {
	if previous == 0 {
		if latest == 0 {
			return Trend{Direction: TrendStable, Percentage: 0}
		}
		return Trend{Direction: TrendUp, Percentage: 100}
	}

	pct := float64(latest-previous) / float64(previous) * 100
	switch {
	case pct > trendEpsilon:
		return Trend{Direction: TrendUp, Percentage: pct}
	case pct < -trendEpsilon:
		return Trend{Direction: TrendDown, Percentage: pct}
	default:
		return Trend{Direction: TrendStable, Percentage: pct}
	}
}

// CrimeCount is one entry of a city's dominant-crime ranking.
type CrimeCount struct {
	Type  string `json:"type"`
	Count int    `json:"count"`
}

// CityRiskProfile is the derived per-city view: bounded score, categorical
// level, recent-window count, dominant crime types, and year-over-year
// trend. Profiles are recomputed per query from the current store snapshot,
// never cached across requests.
type CityRiskProfile struct {
	City         string       `json:"city"`
	Score        float64      `json:"score"`
	Level        RiskLevel    `json:"level"`
	RecentCrimes int          `json:"recentCrimes"`
	TopCrimes    []CrimeCount `json:"topCrimes"`
	Trend        Trend        `json:"trend"`
}
