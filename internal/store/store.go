// Package store holds the normalized crime-record table. Ingestion builds a
// new table and swaps it in atomically, so readers never observe a
// partially-rewritten table and never block beyond the swap instant.
package store

import (
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/couchcryptid/crime-zone-api/internal/domain"
)

// recordKey is the deduplication key: a later record with the same key
// overwrites an earlier one.
type recordKey struct {
	city      string
	crimeType string
	year      int
}

// Meta describes the pass that produced the current snapshot.
type Meta struct {
	IngestedAt   time.Time `json:"ingestedAt"`
	RecordCount  int       `json:"recordCount"`
	DroppedLines int       `json:"droppedLines"`
}

// snapshot is an immutable view of the table. All derived indexes are built
// once at swap time.
type snapshot struct {
	records map[recordKey]domain.CrimeRecord
	byCity  map[string][]domain.CrimeRecord
	cities  []string
	meta    Meta
}

// Store is the normalized record table. Writes are pure upserts applied to a
// copy of the current snapshot; reads are lock-free against whichever
// snapshot is current. The write lock serializes the load-merge-swap so
// overlapping passes cannot base their merge on the same parent snapshot.
type Store struct {
	mu   sync.Mutex
	snap atomic.Pointer[snapshot]
}

// New creates an empty store.
func New() *Store {
	s := &Store{}
	s.snap.Store(buildSnapshot(nil, Meta{}))
	return s
}

// Replace rebuilds the table from scratch with the given records and swaps
// it in. Used when loading a persisted snapshot or running a full one-shot
// ingestion.
func (s *Store) Replace(records []domain.CrimeRecord, meta Meta) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snap.Store(buildSnapshot(records, meta))
}

// Apply upserts a pass's records into a copy of the current table and swaps
// the copy in, last-write-wins per (city, crimeType, year). Applying the
// same records twice yields an identical table. Holds the write lock for the
// whole merge so a concurrent pass cannot swap in a sibling copy and drop
// this one's records.
func (s *Store) Apply(records []domain.CrimeRecord, meta Meta) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cur := s.snap.Load()
	merged := make([]domain.CrimeRecord, 0, len(cur.records)+len(records))
	for _, r := range cur.records {
		merged = append(merged, r)
	}
	merged = append(merged, records...)
	s.snap.Store(buildSnapshot(merged, meta))
}

// View is a read-only handle on one snapshot. All lookups through the same
// View observe the same table even if a pass swaps in a new snapshot
// mid-computation.
type View struct {
	snap *snapshot
}

// View captures the current snapshot. Multi-lookup reads (anything comparing
// cities against each other) should go through one View.
func (s *Store) View() View {
	return View{snap: s.snap.Load()}
}

// ByCity returns all records for a city, casing-insensitive. The returned
// slice is owned by the snapshot and must not be mutated.
func (v View) ByCity(city string) []domain.CrimeRecord {
	return v.snap.byCity[domain.NormalizeCityName(city)]
}

// Cities returns the distinct city names in the view, in lexical order.
func (v View) Cities() []string {
	return v.snap.cities
}

// ByCity returns all records for a city from the current snapshot,
// casing-insensitive.
func (s *Store) ByCity(city string) []domain.CrimeRecord {
	return s.View().ByCity(city)
}

// ByCityYearRange returns the city's records with from <= year <= to.
func (s *Store) ByCityYearRange(city string, from, to int) []domain.CrimeRecord {
	var out []domain.CrimeRecord
	for _, r := range s.ByCity(city) {
		if r.Year >= from && r.Year <= to {
			out = append(out, r)
		}
	}
	return out
}

// Cities returns the distinct stored city names in lexical order.
func (s *Store) Cities() []string {
	return s.View().Cities()
}

// Len returns the number of stored records.
func (s *Store) Len() int {
	return len(s.snap.Load().records)
}

// Meta returns the metadata of the current snapshot.
func (s *Store) Meta() Meta {
	return s.snap.Load().meta
}

// Records returns all stored records sorted by city, crime type, year.
// Used for persistence and the sink publisher.
func (s *Store) Records() []domain.CrimeRecord {
	snap := s.snap.Load()
	out := make([]domain.CrimeRecord, 0, len(snap.records))
	for _, city := range snap.cities {
		out = append(out, snap.byCity[city]...)
	}
	return out
}

// buildSnapshot deduplicates records (last write wins) and precomputes the
// per-city index and the distinct city list.
func buildSnapshot(records []domain.CrimeRecord, meta Meta) *snapshot {
	table := make(map[recordKey]domain.CrimeRecord, len(records))
	for _, r := range records {
		r.City = domain.NormalizeCityName(r.City)
		table[recordKey{city: r.City, crimeType: r.CrimeType, year: r.Year}] = r
	}

	byCity := make(map[string][]domain.CrimeRecord)
	for _, r := range table {
		byCity[r.City] = append(byCity[r.City], r)
	}

	cities := make([]string, 0, len(byCity))
	for city, recs := range byCity {
		sort.Slice(recs, func(i, j int) bool {
			if recs[i].CrimeType != recs[j].CrimeType {
				return recs[i].CrimeType < recs[j].CrimeType
			}
			return recs[i].Year < recs[j].Year
		})
		cities = append(cities, city)
	}
	sort.Strings(cities)

	meta.RecordCount = len(table)
	return &snapshot{
		records: table,
		byCity:  byCity,
		cities:  cities,
		meta:    meta,
	}
}
