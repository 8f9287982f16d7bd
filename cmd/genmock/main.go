// Command genmock writes a deterministic synthetic fatality dataset in the
// same shape as the published one: one Point feature per state carrying
// "<year>", "Pop_<year>" and "Rate_<year>" attributes. With -layer-out it also
// writes the symbol layer built from the first year, using the real domain
// package and a fixed clock so the output is reproducible.
//
// Usage:
//
//	go run ./cmd/genmock \
//	  -out data/mock/fatal_mock.geojson \
//	  -from 2015 -to 2022 \
//	  -layer-out data/mock/fatal_mock_layer.json
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"log/slog"
	"math"
	"math/rand/v2"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/couchcryptid/fatality-map-service/internal/domain"
	"github.com/jonboulle/clockwork"
)

type state struct {
	name       string
	lat, lon   float64
	population float64 // baseline, first generated year
}

var states = []state{
	{"Alabama", 32.80, -86.79, 4.86e6},
	{"Alaska", 64.07, -152.27, 0.74e6},
	{"Arizona", 34.27, -111.66, 6.83e6},
	{"Arkansas", 34.89, -92.44, 2.98e6},
	{"California", 37.18, -119.47, 39.1e6},
	{"Colorado", 38.99, -105.55, 5.46e6},
	{"Connecticut", 41.62, -72.73, 3.59e6},
	{"Delaware", 38.99, -75.51, 0.94e6},
	{"Florida", 28.63, -82.45, 20.2e6},
	{"Georgia", 32.64, -83.44, 10.2e6},
	{"Hawaii", 20.29, -156.37, 1.43e6},
	{"Idaho", 44.35, -114.61, 1.65e6},
	{"Illinois", 40.04, -89.20, 12.9e6},
	{"Indiana", 39.89, -86.28, 6.61e6},
	{"Iowa", 42.08, -93.50, 3.12e6},
	{"Kansas", 38.49, -98.38, 2.91e6},
	{"Kentucky", 37.53, -85.30, 4.42e6},
	{"Louisiana", 31.07, -91.99, 4.67e6},
	{"Maine", 45.37, -69.24, 1.33e6},
	{"Maryland", 39.06, -76.80, 5.99e6},
	{"Massachusetts", 42.26, -71.81, 6.79e6},
	{"Michigan", 44.35, -85.41, 9.92e6},
	{"Minnesota", 46.28, -94.31, 5.49e6},
	{"Mississippi", 32.74, -89.67, 2.99e6},
	{"Missouri", 38.36, -92.46, 6.08e6},
	{"Montana", 47.05, -109.63, 1.03e6},
	{"Nebraska", 41.54, -99.80, 1.90e6},
	{"Nevada", 39.33, -116.63, 2.89e6},
	{"New Hampshire", 43.68, -71.58, 1.33e6},
	{"New Jersey", 40.19, -74.67, 8.96e6},
	{"New Mexico", 34.41, -106.11, 2.09e6},
	{"New York", 42.95, -75.53, 19.8e6},
	{"North Carolina", 35.56, -79.39, 10.0e6},
	{"North Dakota", 47.45, -100.47, 0.76e6},
	{"Ohio", 40.29, -82.79, 11.6e6},
	{"Oklahoma", 35.59, -97.49, 3.91e6},
	{"Oregon", 43.93, -120.56, 4.03e6},
	{"Pennsylvania", 40.88, -77.80, 12.8e6},
	{"Rhode Island", 41.68, -71.56, 1.06e6},
	{"South Carolina", 33.92, -80.90, 4.90e6},
	{"South Dakota", 44.44, -100.23, 0.86e6},
	{"Tennessee", 35.86, -86.35, 6.60e6},
	{"Texas", 31.48, -99.33, 27.5e6},
	{"Utah", 39.31, -111.67, 2.99e6},
	{"Vermont", 44.07, -72.67, 0.63e6},
	{"Virginia", 37.52, -78.85, 8.38e6},
	{"Washington", 47.38, -120.45, 7.17e6},
	{"West Virginia", 38.64, -80.62, 1.84e6},
	{"Wisconsin", 44.62, -89.99, 5.77e6},
	{"Wyoming", 43.00, -107.55, 0.59e6},
}

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	out := flag.String("out", "", "output path for the GeoJSON dataset")
	layerOut := flag.String("layer-out", "", "optional output path for the first year's symbol layer")
	from := flag.Int("from", 2015, "first year")
	to := flag.Int("to", 2022, "last year")
	seed := flag.Uint64("seed", 42, "random seed")
	flag.Parse()

	if *out == "" {
		flag.Usage()
		return fmt.Errorf("missing required flag: -out")
	}
	if *from < 1000 || *to > 9999 || *from > *to {
		return fmt.Errorf("invalid year range %d-%d: years must have four digits", *from, *to)
	}

	fc := generate(*from, *to, rand.New(rand.NewPCG(*seed, *seed))) //nolint:gosec // synthetic data
	if err := domain.ValidateSchema(fc); err != nil {
		return fmt.Errorf("generated dataset is invalid: %w", err)
	}

	if err := writeJSON(*out, fc); err != nil {
		return fmt.Errorf("writing dataset: %w", err)
	}
	log.Printf("wrote dataset: %s (%d states, %d years)", *out, len(fc.Features), *to-*from+1)

	if *layerOut == "" {
		return nil
	}

	// Set a fixed clock for a reproducible BuiltAt timestamp.
	domain.SetClock(clockwork.NewFakeClockAt(
		time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC),
	))
	defer domain.SetClock(nil)

	year := domain.Year(strconv.Itoa(*from))
	builder := domain.NewLayerBuilder(fc, nil, slog.New(slog.NewTextHandler(io.Discard, nil)))
	layer, err := builder.Build(context.Background(), year, domain.DefaultFilter)
	if err != nil {
		return fmt.Errorf("building layer: %w", err)
	}
	if err := writeJSON(*layerOut, layer); err != nil {
		return fmt.Errorf("writing layer: %w", err)
	}
	log.Printf("wrote layer: %s (%s, %d markers)", *layerOut, year, len(layer.Markers))
	return nil
}

// generate walks each state's population and fatality rate forward one year
// at a time with small random drifts.
func generate(from, to int, rng *rand.Rand) *domain.FeatureCollection {
	fc := &domain.FeatureCollection{Type: "FeatureCollection"}

	for _, s := range states {
		props := domain.NewProperties("State", s.name)
		pop := s.population
		rate := 6 + rng.Float64()*18 // per 100k

		for y := from; y <= to; y++ {
			key := strconv.Itoa(y)
			fatalities := math.Round(pop * rate / 100000)
			props.Set(key, int64(fatalities))
			props.Set("Pop_"+key, int64(math.Round(pop)))
			props.Set("Rate_"+key, math.Round(fatalities/pop*100000*10)/10)

			pop *= 1 + (rng.Float64()-0.4)*0.02
			rate *= 1 + (rng.Float64()-0.5)*0.12
		}

		coords, _ := json.Marshal([]float64{s.lon, s.lat})
		fc.Features = append(fc.Features, domain.Feature{
			Type:       "Feature",
			Properties: props,
			Geometry:   &domain.Geometry{Type: "Point", Coordinates: coords},
		})
	}
	return fc
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
