// Command genmock reads a CSV of places and writes the catalog JSON fixture
// served by cmd/placesd. Every row is validated with the domain package so the
// fixture matches what the picker's client accepts.
//
// Usage:
//
//	go run ./cmd/genmock \
//	  -csv data/places.csv \
//	  -out data/places.json \
//	  -origin-lat 40.7128 -origin-lon -74.0060
package main

import (
	"encoding/csv"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/couchcryptid/place-picker/internal/domain"
)

var requiredColumns = []string{"id", "title", "lat", "lon"}

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	csvPath := flag.String("csv", "", "input CSV with id,title,image_src,image_alt,description,lat,lon columns")
	out := flag.String("out", "", "output path for the catalog JSON fixture")
	originLat := flag.Float64("origin-lat", 0, "latitude used for the distance preview")
	originLon := flag.Float64("origin-lon", 0, "longitude used for the distance preview")
	flag.Parse()

	if *csvPath == "" || *out == "" {
		flag.Usage()
		return fmt.Errorf("missing required flags: -csv, -out")
	}

	f, err := os.Open(*csvPath)
	if err != nil {
		return fmt.Errorf("open: %w", err)
	}
	defer f.Close()

	places, err := readPlaces(f)
	if err != nil {
		return fmt.Errorf("processing %s: %w", *csvPath, err)
	}
	log.Printf("places: %d", len(places))

	if err := writeJSON(*out, map[string][]domain.Place{"places": places}); err != nil {
		return fmt.Errorf("writing catalog fixture: %w", err)
	}
	log.Printf("wrote catalog fixture: %s", *out)

	printPreview(os.Stdout, places, domain.GeoCoordinate{Lat: *originLat, Lon: *originLon})
	return nil
}

// readPlaces parses CSV rows into places. Columns are matched by header name.
// Rows that fail validation or repeat an ID abort the run.
func readPlaces(r io.Reader) ([]domain.Place, error) {
	rows, err := csv.NewReader(r).ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read csv: %w", err)
	}
	if len(rows) < 2 {
		return nil, fmt.Errorf("no data rows")
	}

	colIdx := map[string]int{}
	for i, h := range rows[0] {
		colIdx[strings.ToLower(strings.TrimSpace(h))] = i
	}
	for _, col := range requiredColumns {
		if _, ok := colIdx[col]; !ok {
			return nil, fmt.Errorf("missing column %q", col)
		}
	}

	places := make([]domain.Place, 0, len(rows)-1)
	seen := map[string]int{}
	for n, row := range rows[1:] {
		line := n + 2
		lat, err := strconv.ParseFloat(get(row, colIdx, "lat"), 64)
		if err != nil {
			return nil, fmt.Errorf("line %d: invalid lat: %w", line, err)
		}
		lon, err := strconv.ParseFloat(get(row, colIdx, "lon"), 64)
		if err != nil {
			return nil, fmt.Errorf("line %d: invalid lon: %w", line, err)
		}

		p := domain.Place{
			ID:    get(row, colIdx, "id"),
			Title: get(row, colIdx, "title"),
			Image: domain.Image{
				Src: get(row, colIdx, "image_src"),
				Alt: get(row, colIdx, "image_alt"),
			},
			Description: get(row, colIdx, "description"),
			Lat:         lat,
			Lon:         lon,
		}
		if err := p.Validate(); err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		if prev, dup := seen[p.ID]; dup {
			return nil, fmt.Errorf("line %d: duplicate id %q (first seen on line %d)", line, p.ID, prev)
		}
		seen[p.ID] = line
		places = append(places, p)
	}
	return places, nil
}

func get(row []string, idx map[string]int, col string) string {
	i, ok := idx[col]
	if !ok || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

func writeJSON(path string, v any) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	data = append(data, '\n')
	return os.WriteFile(path, data, 0o600)
}

// printPreview lists the catalog nearest first, the order the picker shows it in.
func printPreview(w io.Writer, places []domain.Place, origin domain.GeoCoordinate) {
	fmt.Fprintf(w, "\n=== Nearest first from (%g, %g) ===\n", origin.Lat, origin.Lon)
	for i, p := range domain.SortByDistance(places, origin) {
		fmt.Fprintf(w, "%2d. %-28s %8.0f km\n", i+1, p.Title, domain.Distance(origin, p.Coordinate()))
	}
}
