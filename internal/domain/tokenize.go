package domain

import (
	"strings"
	"unicode/utf8"
)

// LineKind classifies one trimmed export line by shape.
type LineKind int

const (
	// LineNoise carries no usable data and is dropped.
	LineNoise LineKind = iota
	// LineCity names the city for all rows until the next city line.
	LineCity
	// LineHeader lists the years covered by subsequent data rows.
	LineHeader
	// LineBanner is a section separator with no data.
	LineBanner
	// LineData is a tab-delimited crime-type count row.
	LineData
)

// String returns the classification name, used in logs and dropped-line
// diagnostics.
func (k LineKind) String() string {
	switch k {
	case LineCity:
		return "city"
	case LineHeader:
		return "header"
	case LineBanner:
		return "banner"
	case LineData:
		return "data"
	default:
		return "noise"
	}
}

// Line is one classified export line. Value is set for city lines (already
// normalized); Cells is set for header and data lines.
type Line struct {
	Kind  LineKind
	Value string
	Cells []string
}

const (
	// headerKeyword begins every column-header line and also appears as the
	// label cell of repeated in-table headers.
	headerKeyword = "Crime Head"

	// Section banners present in every export. Matched case-insensitively
	// because the conversion tooling is inconsistent about casing.
	bannerSpecialLaws   = "SPECIAL AND LOCAL LAWS"
	bannerPoliceStation = "POLICE STATION"

	// bannerDistrictTotal marks subtotal lines that would otherwise pass the
	// city-line shape test.
	bannerDistrictTotal = "DISTRICT TOTAL"

	// cityLineMaxLen is the shape threshold separating bare city names from
	// free-text noise. City names in the source never reach 30 characters;
	// sentence-like noise almost always does.
	cityLineMaxLen = 30
)

// Classify applies the shape heuristics to a single raw line, in priority
// order. The source format has no record delimiters, so classification is
// necessarily line-local: tab presence and line length are the only signals
// separating a city name from a stray footnote. Kept as one pure function so
// the heuristics can be tested exhaustively on their own.
func Classify(raw string) Line {
	line := strings.TrimSpace(raw)
	if line == "" {
		return Line{Kind: LineNoise}
	}

	if strings.HasPrefix(line, headerKeyword) {
		return Line{Kind: LineHeader, Cells: splitColumns(line, true)}
	}

	upper := strings.ToUpper(line)
	if strings.Contains(upper, bannerSpecialLaws) || strings.Contains(upper, bannerPoliceStation) {
		return Line{Kind: LineBanner}
	}

	if !strings.Contains(line, "\t") &&
		utf8.RuneCountInString(line) < cityLineMaxLen &&
		!strings.Contains(line, headerKeyword) &&
		!strings.Contains(upper, bannerDistrictTotal) {
		return Line{Kind: LineCity, Value: NormalizeCityName(line)}
	}

	if strings.Contains(line, "\t") {
		return Line{Kind: LineData, Cells: splitColumns(line, false)}
	}

	return Line{Kind: LineNoise}
}

// TokenizeBlock splits a raw export into classified lines. Blank lines are
// discarded; noise lines are kept so the parser can count them. Each call is
// a fresh pass from line zero.
func TokenizeBlock(block string) []Line {
	rawLines := strings.Split(block, "\n")
	lines := make([]Line, 0, len(rawLines))
	for _, raw := range rawLines {
		if strings.TrimSpace(raw) == "" {
			continue
		}
		lines = append(lines, Classify(raw))
	}
	return lines
}

// splitColumns splits a line on tabs and trims each cell. Header lines
// additionally drop empty cells so year iteration never pairs against a
// blank column; data lines keep them to preserve column alignment.
func splitColumns(line string, dropEmpty bool) []string {
	parts := strings.Split(line, "\t")
	cells := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if dropEmpty && p == "" {
			continue
		}
		cells = append(cells, p)
	}
	return cells
}
