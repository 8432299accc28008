package domain

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"
)

// CrimeRecord is one canonical (city, crime type, year, count) tuple
// extracted from a records-bureau export. City is always stored in
// normalized casing; Year is always a four-digit year; Count is never
// negative.
type CrimeRecord struct {
	City      string `json:"city"`
	CrimeType string `json:"crimeType"`
	Year      int    `json:"year"`
	Count     int    `json:"count"`
}

// ID returns the record's deterministic identity. Identical source rows map
// to identical IDs, which makes downstream upserts and replays idempotent.
func (r CrimeRecord) ID() string {
	return fmt.Sprintf("%s|%s|%d", r.City, r.CrimeType, r.Year)
}

// RawExport is one unprocessed export blob handed to the ingestion pipeline,
// either read from a file or consumed from the source topic.
type RawExport struct {
	Source    string
	Body      []byte
	Topic     string
	Partition int
	Offset    int64
	Timestamp time.Time
	Commit    func(ctx context.Context) error
}

// CityCoordinate is a static registry entry mapping a city to its WGS-84
// coordinates. Registry data is read-only to the pipeline.
type CityCoordinate struct {
	City      string  `json:"city"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// NormalizeCityName canonicalizes a city name to first-letter-capitalized,
// remainder-lowercase form, so "KOZHIKODE", "kozhikode", and "Kozhikode"
// all resolve to the same stored key.
func NormalizeCityName(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return ""
	}
	lower := strings.ToLower(name)
	first, size := utf8.DecodeRuneInString(lower)
	return string(unicode.ToUpper(first)) + lower[size:]
}
