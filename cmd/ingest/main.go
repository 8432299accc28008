// Command ingest runs a one-shot ingestion pass over a records-bureau
// export file, prints a data-quality report, and optionally writes the
// normalized store snapshot consumed by the server at startup.
//
// Usage:
//
//	go run ./cmd/ingest -input data/crime_export.txt -store data/store.json
package main

import (
	"flag"
	"fmt"
	"os"
	"sort"

	"github.com/couchcryptid/crime-zone-api/internal/domain"
	"github.com/couchcryptid/crime-zone-api/internal/store"
)

func main() {
	input := flag.String("input", "", "path to the raw export file")
	storePath := flag.String("store", "", "optional path to write the store snapshot")
	flag.Parse()

	if *input == "" {
		flag.Usage()
		os.Exit(1)
	}

	os.Exit(run(*input, *storePath))
}

func run(inputPath, storePath string) int {
	body, err := os.ReadFile(inputPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: read export: %v\n", err)
		return 1
	}

	result := domain.ParseExport(string(body))

	fmt.Println("=== Crime Export Ingestion Report ===")
	fmt.Println()
	fmt.Printf("Records parsed:  %d\n", len(result.Records))
	fmt.Printf("Cities found:    %d\n", len(result.Cities))
	fmt.Printf("Lines dropped:   %d\n", result.DroppedLines)
	fmt.Println()

	if len(result.Records) == 0 {
		fmt.Println("WARN: pass produced zero records; check the export format")
		return 1
	}

	printCityBreakdown(result.Records)

	if result.Degraded() {
		fmt.Printf("\nWARN: %d lines dropped as noise (expected for this format; investigate if the count jumps)\n", result.DroppedLines)
	}

	if storePath != "" {
		st := store.New()
		st.Replace(result.Records, store.Meta{
			IngestedAt:   domain.Now(),
			DroppedLines: result.DroppedLines,
		})
		if err := st.SaveFile(storePath); err != nil {
			fmt.Fprintf(os.Stderr, "FATAL: write snapshot: %v\n", err)
			return 1
		}
		fmt.Printf("\nSnapshot written: %s (%d records)\n", storePath, st.Len())
	}

	return 0
}

// printCityBreakdown summarizes record and year coverage per city.
func printCityBreakdown(records []domain.CrimeRecord) {
	type citySummary struct {
		records int
		minYear int
		maxYear int
		total   int
	}
	byCity := make(map[string]*citySummary)
	for _, r := range records {
		s, ok := byCity[r.City]
		if !ok {
			s = &citySummary{minYear: r.Year, maxYear: r.Year}
			byCity[r.City] = s
		}
		s.records++
		s.total += r.Count
		if r.Year < s.minYear {
			s.minYear = r.Year
		}
		if r.Year > s.maxYear {
			s.maxYear = r.Year
		}
	}

	cities := make([]string, 0, len(byCity))
	for city := range byCity {
		cities = append(cities, city)
	}
	sort.Strings(cities)

	fmt.Printf("%-22s %8s %12s %12s\n", "City", "Records", "Years", "Total count")
	for _, city := range cities {
		s := byCity[city]
		fmt.Printf("%-22s %8d %7d-%d %12d\n", city, s.records, s.minYear, s.maxYear, s.total)
	}
}
