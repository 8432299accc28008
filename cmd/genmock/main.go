// Command genmock generates a synthetic records-bureau export for local
// development and integration testing. The output reproduces the source
// format's quirks: interleaved city lines, repeated headers, section
// banners, subtotal rows, and trailing noise.
//
// Usage:
//
//	go run ./cmd/genmock -out data/mock_export.txt -seed 42
package main

import (
	"flag"
	"fmt"
	"math/rand"
	"os"
	"strings"
)

var crimeTypes = []string{
	"Theft", "Robbery", "Burglary", "Cheating", "Hurt",
	"Cruelty by Husband", "Kidnapping", "Dowry Deaths", "Riots",
	"Molestation", "Counterfeiting",
}

var specialLawTypes = []string{
	"Abkari Act", "NDPS Act", "Arms Act", "Gambling Act",
}

func main() {
	out := flag.String("out", "", "path to write the mock export (default stdout)")
	cities := flag.String("cities", "Kozhikode,Ernakulam,Thiruvananthapuram,Thrissur", "comma-separated city names")
	years := flag.String("years", "2021,2022", "comma-separated header years")
	seed := flag.Int64("seed", 1, "random seed, fixed for reproducible fixtures")
	flag.Parse()

	block := generate(strings.Split(*cities, ","), strings.Split(*years, ","), rand.New(rand.NewSource(*seed)))

	if *out == "" {
		fmt.Print(block)
		return
	}
	if err := os.WriteFile(*out, []byte(block), 0o644); err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: write export: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("mock export written: %s\n", *out)
}

func generate(cities, years []string, rng *rand.Rand) string {
	var b strings.Builder

	for _, city := range cities {
		b.WriteString(strings.TrimSpace(city))
		b.WriteString("\n")
		writeHeader(&b, years)

		for _, crimeType := range crimeTypes {
			writeRow(&b, crimeType, years, rng)
		}

		b.WriteString("CASES UNDER SPECIAL AND LOCAL LAWS\n")
		for _, crimeType := range specialLawTypes {
			writeRow(&b, crimeType, years, rng)
		}

		// Subtotal banner and a stray footnote, as real exports have.
		b.WriteString("DISTRICT TOTAL OF ALL POLICE STATION LIMITS\n")
		b.WriteString("* figures provisional pending verification by the records bureau\n")
		b.WriteString("\n")
	}

	return b.String()
}

func writeHeader(b *strings.Builder, years []string) {
	b.WriteString("Crime Head")
	for _, y := range years {
		b.WriteString("\t")
		b.WriteString(strings.TrimSpace(y))
	}
	b.WriteString("\n")
}

func writeRow(b *strings.Builder, crimeType string, years []string, rng *rand.Rand) {
	b.WriteString(crimeType)
	for range years {
		fmt.Fprintf(b, "\t%d", rng.Intn(200))
	}
	b.WriteString("\n")
}
