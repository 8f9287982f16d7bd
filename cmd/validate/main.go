// Command validate checks a fatality dataset before it is published. It
// verifies the GeoJSON structure, the per-feature year schema, the numeric
// attributes and their consistency, that every feature can be placed on the
// map, and that a symbol layer can be built for every year.
//
// Usage:
//
//	go run ./cmd/validate -dataset data/Fatal_Data.geojson
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"math"
	"os"
	"slices"
	"time"

	"github.com/couchcryptid/fatality-map-service/internal/domain"
	"github.com/jonboulle/clockwork"
)

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
	path := flag.String("dataset", "", "path to the GeoJSON dataset")
	rateTolerance := flag.Float64("rate-tolerance", 0.5, "allowed difference between Rate_<year> and fatalities per 100k population")
	flag.Parse()

	if *path == "" {
		flag.Usage()
		os.Exit(1)
	}

	if code := run(*path, *rateTolerance); code != 0 {
		os.Exit(code)
	}
}

func run(path string, rateTolerance float64) int {
	// Fixed clock so repeated runs print identical layer IDs and times.
	domain.SetClock(clockwork.NewFakeClockAt(
		time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC),
	))
	defer domain.SetClock(nil)

	fmt.Println("=== Fatality Dataset Validation ===")
	fmt.Println()

	fc, err := loadCollection(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: load dataset: %v\n", err)
		return 1
	}

	years, err := domain.YearsFromCollection(fc)
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: %v\n", err)
		return 1
	}

	// ── Run validation phases ──
	phases := []*phase{
		validateStructure(fc),
		validateYearSchema(fc, years),
		validateValues(fc, years, rateTolerance),
		validateLocations(fc),
		validateLayers(fc, years),
	}

	// ── Report results ──
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
	fmt.Printf("Features: %d, years: %d (%v)\n", len(fc.Features), len(years), years)

	// Print detailed errors.
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

// loadCollection decodes the file without schema validation so every
// problem can be reported instead of only the first.
func loadCollection(path string) (*domain.FeatureCollection, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var fc domain.FeatureCollection
	if err := json.Unmarshal(data, &fc); err != nil {
		return nil, err
	}
	return &fc, nil
}

// ── Phase 1: Structure ──

func validateStructure(fc *domain.FeatureCollection) *phase {
	p := &phase{name: "Phase 1: Structure (GeoJSON)"}

	if fc.Type != "FeatureCollection" {
		p.errorf("top-level type is %q, want FeatureCollection", fc.Type)
	}
	seen := map[string]int{}
	for i, f := range fc.Features {
		if f.Type != "Feature" {
			p.errorf("feature %d: type is %q, want Feature", i, f.Type)
		}
		state := f.State()
		if state == "" {
			p.errorf("feature %d: missing State attribute", i)
			continue
		}
		if prev, ok := seen[state]; ok {
			p.errorf("feature %d: State %q already used by feature %d", i, state, prev)
			continue
		}
		seen[state] = i
	}
	return p
}

// ── Phase 2: Year schema ──
// Every feature must carry the same year keys as the first.

func validateYearSchema(fc *domain.FeatureCollection, years []domain.Year) *phase {
	p := &phase{name: "Phase 2: Year Schema"}

	if len(years) == 0 {
		p.errorf("first feature has no year attributes")
		return p
	}
	for i, f := range fc.Features[1:] {
		got := domain.ExtractYears(f.Properties)
		for _, y := range years {
			if !slices.Contains(got, y) {
				p.errorf("feature %d (%s): missing year %s", i+1, f.State(), y)
			}
		}
		for _, y := range got {
			if !slices.Contains(years, y) {
				p.errorf("feature %d (%s): extra year %s", i+1, f.State(), y)
			}
		}
	}
	return p
}

// ── Phase 3: Values ──
// Fatality counts, populations and rates must be numeric, and the rate must
// agree with count / population.

func validateValues(fc *domain.FeatureCollection, years []domain.Year, tolerance float64) *phase {
	p := &phase{name: "Phase 3: Values (numeric, rate consistency)"}

	for i, f := range fc.Features {
		for _, y := range years {
			value, ok := domain.NumericValue(f.Properties, string(y))
			if !ok {
				p.errorf("feature %d (%s): %s is %s, not a number", i, f.State(), y, domain.DisplayValue(f.Properties, string(y)))
				continue
			}
			pop, okPop := domain.NumericValue(f.Properties, y.PopulationKey())
			if !okPop {
				p.errorf("feature %d (%s): %s is %s, not a number", i, f.State(), y.PopulationKey(), domain.DisplayValue(f.Properties, y.PopulationKey()))
			} else if pop <= 0 {
				p.errorf("feature %d (%s): %s must be positive, got %g", i, f.State(), y.PopulationKey(), pop)
				okPop = false
			}
			rate, okRate := domain.NumericValue(f.Properties, y.RateKey())
			if !okRate {
				p.errorf("feature %d (%s): %s is %s, not a number", i, f.State(), y.RateKey(), domain.DisplayValue(f.Properties, y.RateKey()))
			}
			if okPop && okRate {
				want := value / pop * 100000
				if math.Abs(want-rate) > tolerance {
					p.errorf("feature %d (%s): %s is %g, expected %.2f from %g fatalities and %g population",
						i, f.State(), y.RateKey(), rate, want, value, pop)
				}
			}
		}
	}
	return p
}

// ── Phase 4: Locations ──

func validateLocations(fc *domain.FeatureCollection) *phase {
	p := &phase{name: "Phase 4: Locations (geometry)"}

	locator := domain.NewLocator(nil, discardLogger())
	for i, f := range fc.Features {
		pt, ok := locator.Locate(context.Background(), f)
		if !ok {
			p.errorf("feature %d (%s): no usable geometry", i, f.State())
			continue
		}
		if pt.Lat < -90 || pt.Lat > 90 || pt.Lon < -180 || pt.Lon > 180 {
			p.errorf("feature %d (%s): point %.4f,%.4f out of range", i, f.State(), pt.Lat, pt.Lon)
		}
	}
	return p
}

// ── Phase 5: Layers ──
// A layer must build for every year, unfiltered and with the default filter.

func validateLayers(fc *domain.FeatureCollection, years []domain.Year) *phase {
	p := &phase{name: "Phase 5: Symbol Layers"}

	builder := domain.NewLayerBuilder(fc, nil, discardLogger())
	for _, y := range years {
		for _, filter := range []domain.FilterRange{domain.Unbounded(), domain.DefaultFilter} {
			layer, err := builder.Build(context.Background(), y, filter)
			if err != nil {
				p.errorf("%s: %v", y, err)
				continue
			}
			for _, m := range layer.Markers {
				if math.IsNaN(m.Style.Radius) || math.IsInf(m.Style.Radius, 0) {
					p.errorf("%s: %s has radius %g", y, m.State, m.Style.Radius)
				}
			}
			fmt.Printf("  %s filter [%g, %g]: %d markers, excluded %v\n", y, filter.Min, filter.Max, len(layer.Markers), layer.Excluded)
		}
	}
	return p
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
