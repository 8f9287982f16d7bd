package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/couchcryptid/fatality-map-service/internal/domain"
	"gopkg.in/yaml.v3"
)

// MapView describes the map surface: initial view, tiles and legend text.
type MapView struct {
	Center      [2]float64    `yaml:"center"` // lat, lon
	Zoom        float64       `yaml:"zoom"`
	TileURL     string        `yaml:"tile_url"`
	Attribution string        `yaml:"attribution"`
	Legend      domain.Legend `yaml:"legend"`
}

// DefaultMapView frames the contiguous United States.
func DefaultMapView() MapView {
	return MapView{
		Center:      [2]float64{33.220391788294395, -87.18503075340283},
		Zoom:        4.5,
		TileURL:     "https://tile.openstreetmap.org/{z}/{x}/{y}.png",
		Attribution: `&copy; <a href="https://www.openstreetmap.org/copyright" target="_blank">OpenStreetMap</a>&nbsp;contributors`,
		Legend:      domain.DefaultLegend(),
	}
}

// LoadMapView reads a YAML map view file. Fields absent from the file keep
// their defaults; an empty path returns the defaults.
func LoadMapView(path string) (MapView, error) {
	view := DefaultMapView()
	if path == "" {
		return view, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return MapView{}, fmt.Errorf("failed to read map view file %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &view); err != nil {
		return MapView{}, fmt.Errorf("failed to unmarshal map view YAML from %s: %w", path, err)
	}
	if err := view.validate(); err != nil {
		return MapView{}, fmt.Errorf("invalid map view %s: %w", path, err)
	}
	return view, nil
}

func (v MapView) validate() error {
	if v.Center[0] < -90 || v.Center[0] > 90 || v.Center[1] < -180 || v.Center[1] > 180 {
		return fmt.Errorf("center %v out of range", v.Center)
	}
	if v.Zoom < 0 {
		return errors.New("zoom must not be negative")
	}
	if v.TileURL == "" {
		return errors.New("tile_url is required")
	}
	switch v.Legend.Position {
	case domain.TopLeft, domain.TopRight, domain.BottomLeft, domain.BottomRight:
	default:
		return fmt.Errorf("unknown legend position %q", v.Legend.Position)
	}
	return nil
}
