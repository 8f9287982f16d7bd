// Package canvas defines the render targets a map session draws onto.
//
// A Canvas is the map surface (view, tiles, attribution, layers, controls).
// A Panel is the optional mount point for the year slider and filter inputs;
// sessions without one simply run without sequence controls.
package canvas

import (
	"io"

	"github.com/couchcryptid/fatality-map-service/internal/domain"
)

// View is the initial map centre and zoom.
type View struct {
	Center domain.Point
	Zoom   float64
}

// TileSource is a slippy-map tile URL template with its attribution.
type TileSource struct {
	URLTemplate string
	Attribution string
}

// Control is a custom overlay pinned to a map corner. Render writes its HTML.
type Control interface {
	Position() domain.Position
	Render(w io.Writer) error
}

// Canvas is the map surface.
type Canvas interface {
	SetView(v View)
	AddTileSource(ts TileSource)
	AddAttribution(html string)
	AddLayer(layer *domain.SymbolLayer)
	RemoveLayer(layer *domain.SymbolLayer)
	AddControl(c Control) error
}

// SequenceWidget describes the slider, year label, step buttons and filter
// inputs mounted on a Panel.
type SequenceWidget struct {
	Min       int
	Max       int
	Step      int
	Value     int
	Label     domain.Year
	FilterMin string
	FilterMax string
}

// Panel is the controls mount point.
type Panel interface {
	// Mount renders the sequence widget, replacing any previous content.
	Mount(w SequenceWidget)
	// ShowYear moves the slider to index and updates the year label.
	ShowYear(index int, year domain.Year)
	// FilterInputs returns the raw text of the min/max inputs, or false when
	// the inputs are not rendered.
	FilterInputs() (minText, maxText string, ok bool)
}
