package domain

import (
	"regexp"
	"strconv"
)

var (
	// yearRe admits only four-digit years into the store. Header columns not
	// matching (footnote markers, "% change" columns) are dropped, never
	// stored as zero.
	yearRe = regexp.MustCompile(`^\d{4}$`)

	// countRe admits only non-negative integer counts. Dashes, blanks, and
	// asterisks in count cells are expected source noise.
	countRe = regexp.MustCompile(`^\d+$`)
)

// parseState is the accumulator threaded through a single parse pass:
// the city owning subsequent rows and the active year header. Values are
// immutable; each transition produces a new state.
type parseState struct {
	currentCity    string
	currentHeaders []string
}

// ParseResult holds one pass's output. DroppedLines counts lines that
// contributed no records, surfaced for data-quality observability.
type ParseResult struct {
	Records      []CrimeRecord
	DroppedLines int
	Cities       []string
}

// Degraded reports whether the pass dropped any lines. A degraded pass is a
// data-quality signal, not an error.
func (r ParseResult) Degraded() bool {
	return r.DroppedLines > 0
}

// ParseExport folds a raw export block into canonical crime records.
// Malformed input degrades by omission: a pass never fails, it just emits
// fewer records. A pass with no city lines yields zero records, which the
// caller should log as a data-quality warning.
func ParseExport(block string) ParseResult {
	var result ParseResult
	state := parseState{}

	for _, line := range TokenizeBlock(block) {
		switch line.Kind {
		case LineCity:
			// A new city does not reset the header row: exports reuse one
			// header across consecutive city sections.
			state = parseState{currentCity: line.Value, currentHeaders: state.currentHeaders}
			result.Cities = appendDistinct(result.Cities, line.Value)

		case LineHeader:
			state = parseState{currentCity: state.currentCity, currentHeaders: line.Cells}

		case LineData:
			records := parseDataLine(state, line.Cells)
			if len(records) == 0 {
				result.DroppedLines++
				continue
			}
			result.Records = append(result.Records, records...)

		case LineBanner:
			// Section separator, no data.

		default:
			result.DroppedLines++
		}
	}

	return result
}

// parseDataLine pairs a data row's cells against the active year header and
// emits one record per well-formed (year, count) pair. Rows arriving before
// any city or header line, empty labels, and repeated in-table header rows
// all yield nothing.
func parseDataLine(state parseState, cells []string) []CrimeRecord {
	if state.currentCity == "" || len(state.currentHeaders) <= 1 || len(cells) == 0 {
		return nil
	}

	crimeType := cells[0]
	if crimeType == "" || crimeType == headerKeyword {
		return nil
	}

	limit := min(len(state.currentHeaders), len(cells))
	records := make([]CrimeRecord, 0, limit-1)
	for j := 1; j < limit; j++ {
		yearStr := state.currentHeaders[j]
		countStr := cells[j]
		if !yearRe.MatchString(yearStr) || !countRe.MatchString(countStr) {
			continue
		}
		year, _ := strconv.Atoi(yearStr)
		count, _ := strconv.Atoi(countStr)
		records = append(records, CrimeRecord{
			City:      state.currentCity,
			CrimeType: crimeType,
			Year:      year,
			Count:     count,
		})
	}
	return records
}

func appendDistinct(cities []string, city string) []string {
	for _, c := range cities {
		if c == city {
			return cities
		}
	}
	return append(cities, city)
}
