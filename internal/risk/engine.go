// Package risk derives per-city risk profiles from the normalized store.
// Profiles are recomputed per query over the current snapshot; nothing is
// incrementally maintained or cached.
package risk

import (
	"errors"
	"sort"

	"github.com/couchcryptid/crime-zone-api/internal/domain"
	"github.com/couchcryptid/crime-zone-api/internal/store"
)

// ErrCityNotFound is returned when a city has no records in the store.
var ErrCityNotFound = errors.New("city not found")

const (
	// DefaultTopCrimes is the dominant-crime ranking length.
	DefaultTopCrimes = 5

	// DefaultRecentWindow is how many of the city's most recent recorded
	// years count as "recent". The dataset's own max year anchors the
	// window, not the calendar.
	DefaultRecentWindow = 2
)

// Engine computes city risk profiles.
type Engine struct {
	store        *store.Store
	topCrimes    int
	recentWindow int
}

// NewEngine creates an Engine over the given store. Non-positive limits fall
// back to the defaults.
func NewEngine(st *store.Store, topCrimes, recentWindow int) *Engine {
	if topCrimes <= 0 {
		topCrimes = DefaultTopCrimes
	}
	if recentWindow <= 0 {
		recentWindow = DefaultRecentWindow
	}
	return &Engine{store: st, topCrimes: topCrimes, recentWindow: recentWindow}
}

// ProfileFor computes the risk profile for one city, or ErrCityNotFound if
// the city has no records. The whole computation runs against one store
// view, so a pass swapping in a new snapshot mid-query cannot mix two
// tables into one profile.
func (e *Engine) ProfileFor(city string) (domain.CityRiskProfile, error) {
	return e.profileFrom(e.store.View(), city)
}

func (e *Engine) profileFrom(v store.View, city string) (domain.CityRiskProfile, error) {
	records := v.ByCity(city)
	if len(records) == 0 {
		return domain.CityRiskProfile{}, ErrCityNotFound
	}

	recent := e.recentCount(records)
	score := scaleScore(recent, e.maxRecentCount(v))

	return domain.CityRiskProfile{
		City:         domain.NormalizeCityName(city),
		Score:        score,
		Level:        domain.LevelForScore(score),
		RecentCrimes: recent,
		TopCrimes:    e.topCrimeTypes(records),
		Trend:        trendFor(records),
	}, nil
}

// AllProfiles computes profiles for every stored city, sorted descending by
// score with a lexical tie-break. All profiles come from the same view.
func (e *Engine) AllProfiles() []domain.CityRiskProfile {
	v := e.store.View()
	cities := v.Cities()
	profiles := make([]domain.CityRiskProfile, 0, len(cities))
	for _, city := range cities {
		p, err := e.profileFrom(v, city)
		if err != nil {
			continue
		}
		profiles = append(profiles, p)
	}

	sort.SliceStable(profiles, func(i, j int) bool {
		if profiles[i].Score != profiles[j].Score {
			return profiles[i].Score > profiles[j].Score
		}
		return profiles[i].City < profiles[j].City
	})
	return profiles
}

// recentCount sums counts across the city's most recent recorded years,
// bounded by the configured window.
func (e *Engine) recentCount(records []domain.CrimeRecord) int {
	recent := recentYears(records, e.recentWindow)
	total := 0
	for _, r := range records {
		if recent[r.Year] {
			total += r.Count
		}
	}
	return total
}

// maxRecentCount finds the largest recent-window count across all cities in
// the view. Cities with no records never appear in the store, so the scan is
// exactly the scoring population.
func (e *Engine) maxRecentCount(v store.View) int {
	maxRecent := 0
	for _, city := range v.Cities() {
		if c := e.recentCount(v.ByCity(city)); c > maxRecent {
			maxRecent = c
		}
	}
	return maxRecent
}

// topCrimeTypes ranks the city's crime types by total count across all
// years, descending, ties broken by lexical type order, truncated to the
// configured length.
func (e *Engine) topCrimeTypes(records []domain.CrimeRecord) []domain.CrimeCount {
	totals := make(map[string]int)
	for _, r := range records {
		totals[r.CrimeType] += r.Count
	}

	ranked := make([]domain.CrimeCount, 0, len(totals))
	for crimeType, count := range totals {
		ranked = append(ranked, domain.CrimeCount{Type: crimeType, Count: count})
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].Count != ranked[j].Count {
			return ranked[i].Count > ranked[j].Count
		}
		return ranked[i].Type < ranked[j].Type
	})

	if len(ranked) > e.topCrimes {
		ranked = ranked[:e.topCrimes]
	}
	return ranked
}

// trendFor compares the summed counts of the city's two most recent recorded
// years. A single-year city has an undefined trend and reports STABLE/0.
func trendFor(records []domain.CrimeRecord) domain.Trend {
	years := sortedYears(records)
	if len(years) < 2 {
		return domain.Trend{Direction: domain.TrendStable, Percentage: 0}
	}

	latestYear := years[len(years)-1]
	previousYear := years[len(years)-2]
	latest, previous := 0, 0
	for _, r := range records {
		switch r.Year {
		case latestYear:
			latest += r.Count
		case previousYear:
			previous += r.Count
		}
	}
	return domain.ComputeTrend(latest, previous)
}

// scaleScore min-max scales a recent count into [0,100] against the maximum
// observed across all cities. A zero maximum means the store holds only
// zero-count records; everything scores 0.
func scaleScore(recent, maxRecent int) float64 {
	if maxRecent <= 0 {
		return 0
	}
	score := float64(recent) / float64(maxRecent) * 100
	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}

// recentYears returns the set of the city's latest recorded years, up to
// window entries.
func recentYears(records []domain.CrimeRecord, window int) map[int]bool {
	years := sortedYears(records)
	if len(years) > window {
		years = years[len(years)-window:]
	}
	set := make(map[int]bool, len(years))
	for _, y := range years {
		set[y] = true
	}
	return set
}

func sortedYears(records []domain.CrimeRecord) []int {
	seen := make(map[int]bool)
	var years []int
	for _, r := range records {
		if !seen[r.Year] {
			seen[r.Year] = true
			years = append(years, r.Year)
		}
	}
	sort.Ints(years)
	return years
}
