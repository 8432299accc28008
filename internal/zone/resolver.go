package zone

import (
	"errors"
	"fmt"
	"math"

	"github.com/golang/geo/s2"

	"github.com/couchcryptid/crime-zone-api/internal/domain"
	"github.com/couchcryptid/crime-zone-api/internal/risk"
	"github.com/couchcryptid/crime-zone-api/internal/store"
)

var (
	// ErrRegistryEmpty is returned when no registry city is backed by store
	// data. Fatal to the single request, never to the process.
	ErrRegistryEmpty = errors.New("no coordinate data loaded for any stored city")

	// ErrOutOfRange is returned when the nearest candidate lies beyond the
	// configured matching radius.
	ErrOutOfRange = errors.New("no city within matching radius")

	// ErrInvalidCoordinate rejects NaN/Inf and out-of-range coordinates
	// before they reach the geometry layer.
	ErrInvalidCoordinate = errors.New("invalid coordinate")
)

// earthRadiusKm is the mean Earth radius, used to scale s2 angular distances
// to kilometres.
const earthRadiusKm = 6371.0

// Alert is the packaged result for a queried point: the nearest stored city,
// a human-readable alert line, the distance to that city, and its profile.
type Alert struct {
	City       string
	Address    string
	Alert      string
	DistanceKm float64
	Profile    domain.CityRiskProfile
}

// Resolver resolves coordinates against the static registry. Distance is
// great-circle: s2 angular distance on the unit sphere scaled by the mean
// Earth radius. At city-registry densities a planar approximation would
// also work, but the s2 form costs nothing extra and has no latitude bias.
type Resolver struct {
	registry    []domain.CityCoordinate
	store       *store.Store
	engine      *risk.Engine
	maxRadiusKm float64
}

// NewResolver creates a Resolver. maxRadiusKm bounds the nearest-match
// search; zero means unbounded.
func NewResolver(registry []domain.CityCoordinate, st *store.Store, engine *risk.Engine, maxRadiusKm float64) *Resolver {
	return &Resolver{
		registry:    registry,
		store:       st,
		engine:      engine,
		maxRadiusKm: maxRadiusKm,
	}
}

// Resolve finds the nearest registry city that the store has records for and
// returns its zone alert. The address, when given, is carried through for
// display only.
func (r *Resolver) Resolve(lat, lon float64, address string) (Alert, error) {
	if math.IsNaN(lat) || math.IsNaN(lon) ||
		math.IsInf(lat, 0) || math.IsInf(lon, 0) ||
		lat < -90 || lat > 90 || lon < -180 || lon > 180 {
		return Alert{}, ErrInvalidCoordinate
	}

	nearest, distKm, found := r.nearestStoredCity(lat, lon)
	if !found {
		return Alert{}, ErrRegistryEmpty
	}
	if r.maxRadiusKm > 0 && distKm > r.maxRadiusKm {
		return Alert{}, ErrOutOfRange
	}

	profile, err := r.engine.ProfileFor(nearest.City)
	if err != nil {
		// Candidates are pre-filtered to stored cities; a miss here means
		// the store was swapped between the scan and the profile read.
		return Alert{}, ErrRegistryEmpty
	}

	return Alert{
		City:       profile.City,
		Address:    address,
		Alert:      alertText(profile),
		DistanceKm: distKm,
		Profile:    profile,
	}, nil
}

// nearestStoredCity scans registry entries backed by store data and returns
// the closest. Exact distance ties break on lexical city order so resolution
// is deterministic under floating-point comparison.
func (r *Resolver) nearestStoredCity(lat, lon float64) (domain.CityCoordinate, float64, bool) {
	stored := make(map[string]bool)
	for _, city := range r.store.Cities() {
		stored[city] = true
	}

	query := s2.LatLngFromDegrees(lat, lon)
	var (
		best     domain.CityCoordinate
		bestDist float64
		found    bool
	)
	for _, entry := range r.registry {
		if !stored[entry.City] {
			continue
		}
		dist := float64(query.Distance(s2.LatLngFromDegrees(entry.Latitude, entry.Longitude))) * earthRadiusKm
		if !found || dist < bestDist || (dist == bestDist && entry.City < best.City) {
			best, bestDist, found = entry, dist, true
		}
	}
	return best, bestDist, found
}

// alertText composes the human-readable alert line from the level and
// recent-window count. The caller decides notification policy; this is
// display text only.
func alertText(p domain.CityRiskProfile) string {
	return fmt.Sprintf("%s is a %s risk zone with %d crimes reported in recent years", p.City, p.Level, p.RecentCrimes)
}
