package domain

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"math"
	"sync/atomic"
	"time"
)

// Marker colours and outline.
const (
	PositiveFill    = "#ff0000"
	NonPositiveFill = "#0080f8"
	OutlineColor    = "#000"
)

// FilterRange bounds the fatality values drawn for the selected year. Both
// ends are inclusive. A NaN bound matches nothing.
type FilterRange struct {
	Min float64
	Max float64
}

// DefaultFilter is the range the filter inputs start with.
var DefaultFilter = FilterRange{Min: 111, Max: 4500}

// Unbounded is the range used while no filter inputs are mounted.
func Unbounded() FilterRange {
	return FilterRange{Min: 0, Max: math.Inf(1)}
}

// Contains reports whether min <= v <= max.
func (r FilterRange) Contains(v float64) bool {
	return v >= r.Min && v <= r.Max
}

type filterRangeJSON struct {
	Min *float64 `json:"min"`
	Max *float64 `json:"max"`
}

// MarshalJSON encodes non-finite bounds as null.
func (r FilterRange) MarshalJSON() ([]byte, error) {
	return json.Marshal(filterRangeJSON{Min: finiteOrNil(r.Min), Max: finiteOrNil(r.Max)})
}

func finiteOrNil(v float64) *float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}

// MarkerStyle uses the option names of the browser map library so the page can
// hand it over untouched.
type MarkerStyle struct {
	Radius      float64 `json:"radius"`
	FillColor   string  `json:"fillColor"`
	Color       string  `json:"color"`
	Weight      float64 `json:"weight"`
	Opacity     float64 `json:"opacity"`
	FillOpacity float64 `json:"fillOpacity"`
}

// StyleFor returns the circle style for a value and its scaled radius.
func StyleFor(value, radius float64) MarkerStyle {
	fill := NonPositiveFill
	if value > 0 {
		fill = PositiveFill
	}
	return MarkerStyle{
		Radius:      radius,
		FillColor:   fill,
		Color:       OutlineColor,
		Weight:      1,
		Opacity:     1,
		FillOpacity: 0.8,
	}
}

// PopupLine is one labelled line of a marker popup.
type PopupLine struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

// Popup is the content bound to a marker.
type Popup struct {
	Lines []PopupLine `json:"lines"`
}

// PopupFor describes a feature's figures for the selected year.
func PopupFor(f Feature, year Year) Popup {
	y := string(year)
	return Popup{Lines: []PopupLine{
		{Label: "State", Value: DisplayValue(f.Properties, "State")},
		{Label: "Fatalities in " + y, Value: DisplayValue(f.Properties, y)},
		{Label: "Population in " + y, Value: DisplayValue(f.Properties, year.PopulationKey())},
		{Label: "Rate of accident in " + y + " (per 100k people)", Value: DisplayValue(f.Properties, year.RateKey())},
	}}
}

// Marker is one proportional circle on a symbol layer.
type Marker struct {
	State string      `json:"state"`
	Year  Year        `json:"year"`
	Value float64     `json:"value"`
	Point Point       `json:"point"`
	Style MarkerStyle `json:"style"`
	Popup Popup       `json:"popup"`
}

// ExclusionReason explains why a feature was left off a layer.
type ExclusionReason string

const (
	ExcludedMissingValue ExclusionReason = "missing_value"
	ExcludedOutOfRange   ExclusionReason = "out_of_range"
	ExcludedNoLocation   ExclusionReason = "no_location"
)

// SymbolLayer is a fully built set of markers for one year and filter. Layers
// are replaced whole, never patched.
type SymbolLayer struct {
	ID       string                  `json:"id"`
	Year     Year                    `json:"year"`
	Filter   FilterRange             `json:"filter"`
	Markers  []Marker                `json:"markers"`
	Excluded map[ExclusionReason]int `json:"excluded,omitempty"`
	BuiltAt  time.Time               `json:"built_at"`
}

// LayerBuilder turns the collection into symbol layers.
type LayerBuilder struct {
	fc      *FeatureCollection
	scaler  *RadiusScaler
	locator *Locator
	seq     atomic.Uint64
}

// NewLayerBuilder creates a builder over a loaded collection.
func NewLayerBuilder(fc *FeatureCollection, geocoder Geocoder, logger *slog.Logger) *LayerBuilder {
	return &LayerBuilder{
		fc:      fc,
		scaler:  NewRadiusScaler(fc),
		locator: NewLocator(geocoder, logger),
	}
}

// Build selects the features whose value for year lies within filter and
// styles each as a marker. Features without a value are skipped silently; an
// empty result is a valid, empty layer. Build only fails if ctx is done.
func (b *LayerBuilder) Build(ctx context.Context, year Year, filter FilterRange) (SymbolLayer, error) {
	layer := SymbolLayer{
		ID:       fmt.Sprintf("layer-%s-%d", year, b.seq.Add(1)),
		Year:     year,
		Filter:   filter,
		Markers:  []Marker{},
		Excluded: make(map[ExclusionReason]int),
	}

	for _, f := range b.fc.Features {
		if err := ctx.Err(); err != nil {
			return SymbolLayer{}, fmt.Errorf("build layer %s: %w", year, err)
		}

		value, ok := NumericValue(f.Properties, string(year))
		if !ok {
			layer.Excluded[ExcludedMissingValue]++
			continue
		}
		if !filter.Contains(value) {
			layer.Excluded[ExcludedOutOfRange]++
			continue
		}
		point, ok := b.locator.Locate(ctx, f)
		if !ok {
			layer.Excluded[ExcludedNoLocation]++
			continue
		}
		radius, err := b.scaler.Radius(year, value)
		if err != nil {
			return SymbolLayer{}, fmt.Errorf("scale %s value for %s: %w", year, f.State(), err)
		}

		layer.Markers = append(layer.Markers, Marker{
			State: f.State(),
			Year:  year,
			Value: value,
			Point: point,
			Style: StyleFor(value, radius),
			Popup: PopupFor(f, year),
		})
	}

	layer.BuiltAt = clock.Now().UTC()
	return layer, nil
}
