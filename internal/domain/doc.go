// Package domain models state crime-records-bureau statistics exports.
//
// # Data Source
//
// Crime statistics are published by the state police's records bureau as
// tab-delimited text exports. The files are produced by a spreadsheet-to-text
// conversion and carry no explicit record delimiters: city names, column
// headers, section banners, and count rows are distinguishable only by their
// shape. A typical fragment:
//
//	Kozhikode
//	Crime Head	2021	2022
//	Theft	10	15
//	Robbery	4	2
//	CASES UNDER SPECIAL AND LOCAL LAWS
//	Abkari Act	31	27
//
// # Export Conventions
//
// City lines:
//
//	A bare line naming the city for all rows that follow, until the next
//	city line. Recognized by shape: no tab, shorter than 30 characters,
//	and not a header or district-total line. Casing in the source varies
//	("KOZHIKODE", "kozhikode"); names are normalized to first-letter
//	capitalization before storage so lookups are casing-insensitive.
//
// Header lines:
//
//	Begin with the literal "Crime Head" keyword and list the years covered
//	by subsequent rows, tab-separated. Column 0 is the crime-type label
//	column and never holds a year. Header columns that are not four-digit
//	years (footnote markers, percentage columns) are dropped at parse time.
//
// Section banners:
//
//	"CASES UNDER SPECIAL AND LOCAL LAWS" and police-station subtotal
//	banners separate sections of the export. They carry no data and a new
//	banner does not reset the active header row.
//
// Data lines:
//
//	Tab-delimited rows pairing a crime-type label with one count per header
//	year. Trailing columns beyond the header width, non-numeric counts, and
//	rows appearing before any city line are expected noise in the source
//	format and are dropped silently rather than treated as errors.
//
// # Record Identity
//
// A record is identified by (city, crime type, year). Re-parsing the same
// export overwrites rather than duplicates, which keeps ingestion idempotent
// without distributed coordination.
package domain
