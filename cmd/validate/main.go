// Command validate checks the place fixtures for integrity: the source CSV,
// the catalog JSON generated from it, and optionally a running places service.
// It verifies row counts, field presence, coordinate bounds, ID uniqueness, and
// cross-source consistency.
//
// Usage:
//
//	go run ./cmd/validate \
//	  -csv data/places.csv \
//	  -catalog data/places.json \
//	  -url http://localhost:3000
package main

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"math"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/couchcryptid/place-picker/internal/adapter/placesapi"
	"github.com/couchcryptid/place-picker/internal/domain"
	"github.com/couchcryptid/place-picker/internal/observability"
)

// coordTolerance absorbs float formatting differences between CSV and JSON.
const coordTolerance = 1e-6

// phase tracks pass/fail for a validation phase.
type phase struct {
	name   string
	errors []string
}

func (p *phase) errorf(format string, args ...any) {
	p.errors = append(p.errors, fmt.Sprintf(format, args...))
}

func (p *phase) passed() bool { return len(p.errors) == 0 }

func main() {
	csvPath := flag.String("csv", "", "path to the source places CSV")
	catalogPath := flag.String("catalog", "", "path to the catalog JSON fixture")
	url := flag.String("url", "", "base URL of a running places service (optional)")
	timeout := flag.Duration("timeout", 10*time.Second, "timeout for requests to -url")
	flag.Parse()

	if *csvPath == "" || *catalogPath == "" {
		flag.Usage()
		os.Exit(1)
	}

	if code := run(*csvPath, *catalogPath, *url, *timeout); code != 0 {
		os.Exit(code)
	}
}

func run(csvPath, catalogPath, url string, timeout time.Duration) int {
	fmt.Println("=== Place Data Integrity Validation ===")
	fmt.Println()

	rows, err := loadCSV(csvPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: load CSV: %v\n", err)
		return 1
	}

	places, err := loadCatalog(catalogPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: load catalog JSON: %v\n", err)
		return 1
	}

	phases := []*phase{
		validateCatalogSchema(places),
		validateSourceParity(rows, places),
	}

	var remote []domain.Place
	if url != "" {
		client := placesapi.NewClient(url, timeout, slog.New(slog.NewTextHandler(io.Discard, nil)), observability.NewMetricsForTesting())
		remote, err = client.ListCatalogPlaces(context.Background())
		if err != nil {
			fmt.Fprintf(os.Stderr, "FATAL: fetch remote catalog: %v\n", err)
			return 1
		}
		phases = append(phases, validateRemoteParity(places, remote))
	}

	fmt.Println()
	allPassed := true
	for _, p := range phases {
		status := "\033[32mPASS\033[0m"
		if !p.passed() {
			status = fmt.Sprintf("\033[31mFAIL (%d errors)\033[0m", len(p.errors))
			allPassed = false
		}
		fmt.Printf("  %-42s %s\n", p.name, status)
	}

	fmt.Println()
	fmt.Printf("Records: %d CSV, %d catalog JSON", len(rows), len(places))
	if url != "" {
		fmt.Printf(", %d remote", len(remote))
	}
	fmt.Println()

	for _, p := range phases {
		if p.passed() {
			continue
		}
		fmt.Printf("\n--- %s ---\n", p.name)
		for i, e := range p.errors {
			fmt.Printf("  [%d] %s\n", i+1, e)
		}
	}

	if allPassed {
		fmt.Println("\nAll validations passed.")
		return 0
	}
	fmt.Println("\nValidation FAILED.")
	return 1
}

// ── Data loading ──

// csvRow is a parsed CSV row with field values keyed by lower-cased header name.
type csvRow struct {
	lineNum int
	fields  map[string]string
}

func loadCSV(path string) ([]csvRow, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return parseCSV(f)
}

func parseCSV(r io.Reader) ([]csvRow, error) {
	all, err := csv.NewReader(r).ReadAll()
	if err != nil {
		return nil, err
	}
	if len(all) < 2 {
		return nil, fmt.Errorf("no data rows")
	}

	header := all[0]
	rows := make([]csvRow, 0, len(all)-1)
	for i, row := range all[1:] {
		fields := make(map[string]string, len(header))
		for j, h := range header {
			if j < len(row) {
				fields[strings.ToLower(strings.TrimSpace(h))] = strings.TrimSpace(row[j])
			}
		}
		rows = append(rows, csvRow{lineNum: i + 2, fields: fields})
	}
	return rows, nil
}

func loadCatalog(path string) ([]domain.Place, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var body struct {
		Places *[]domain.Place `json:"places"`
	}
	if err := json.Unmarshal(data, &body); err != nil {
		return nil, err
	}
	if body.Places == nil {
		return nil, fmt.Errorf("missing \"places\" field")
	}
	return *body.Places, nil
}

// ── Phases ──

func validateCatalogSchema(places []domain.Place) *phase {
	p := &phase{name: "Catalog schema"}
	seen := map[string]int{}
	for i, pl := range places {
		if err := pl.Validate(); err != nil {
			p.errorf("place %d (%q): %v", i, pl.ID, err)
		}
		if pl.Title == "" {
			p.errorf("place %d (%q): empty title", i, pl.ID)
		}
		if pl.Image.Src != "" && pl.Image.Alt == "" {
			p.errorf("place %d (%q): image without alt text", i, pl.ID)
		}
		if prev, dup := seen[pl.ID]; dup && pl.ID != "" {
			p.errorf("place %d: duplicate id %q (first at %d)", i, pl.ID, prev)
		}
		seen[pl.ID] = i
	}
	return p
}

func validateSourceParity(rows []csvRow, places []domain.Place) *phase {
	p := &phase{name: "CSV ↔ catalog JSON parity"}
	if len(rows) != len(places) {
		p.errorf("row count mismatch: CSV=%d JSON=%d", len(rows), len(places))
	}

	byID := make(map[string]domain.Place, len(places))
	for _, pl := range places {
		byID[pl.ID] = pl
	}

	for _, row := range rows {
		id := row.fields["id"]
		pl, ok := byID[id]
		if !ok {
			p.errorf("line %d: id %q missing from JSON", row.lineNum, id)
			continue
		}
		checkField(p, row, "title", pl.Title)
		checkField(p, row, "image_src", pl.Image.Src)
		checkField(p, row, "image_alt", pl.Image.Alt)
		checkField(p, row, "description", pl.Description)
		checkCoord(p, row, "lat", pl.Lat)
		checkCoord(p, row, "lon", pl.Lon)
	}
	return p
}

func validateRemoteParity(local, remote []domain.Place) *phase {
	p := &phase{name: "Catalog JSON ↔ remote service parity"}
	if len(local) != len(remote) {
		p.errorf("count mismatch: JSON=%d remote=%d", len(local), len(remote))
	}
	for i := range min(len(local), len(remote)) {
		if local[i] != remote[i] {
			p.errorf("place %d: JSON=%+v remote=%+v", i, local[i], remote[i])
		}
	}
	return p
}

func checkField(p *phase, row csvRow, col, got string) {
	want, ok := row.fields[col]
	if !ok {
		return
	}
	if want != got {
		p.errorf("line %d %s: CSV=%q JSON=%q", row.lineNum, col, want, got)
	}
}

func checkCoord(p *phase, row csvRow, col string, got float64) {
	want, err := strconv.ParseFloat(row.fields[col], 64)
	if err != nil {
		p.errorf("line %d %s: %v", row.lineNum, col, err)
		return
	}
	if math.Abs(want-got) > coordTolerance {
		p.errorf("line %d %s: CSV=%g JSON=%g", row.lineNum, col, want, got)
	}
}
