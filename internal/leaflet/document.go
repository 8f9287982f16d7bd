// Package leaflet renders map sessions as standalone Leaflet HTML pages.
package leaflet

import (
	"bytes"
	"encoding/json"
	"fmt"
	"html/template"
	"io"
	"slices"
	"sync"

	"github.com/couchcryptid/fatality-map-service/internal/canvas"
	"github.com/couchcryptid/fatality-map-service/internal/domain"
)

// Mode selects how the page reacts to the sequence controls.
type Mode int

const (
	// Snapshot pages embed a single layer and have no working controls.
	Snapshot Mode = iota
	// Live pages fetch a new layer from the layer API on every interaction.
	Live
)

// Document is a Canvas and Panel that collects everything a session draws and
// writes it out as one HTML page.
type Document struct {
	mode     Mode
	layerAPI string
	title    string

	mu           sync.Mutex
	view         canvas.View
	tiles        []canvas.TileSource
	attributions []string
	layer        *domain.SymbolLayer
	controls     []control
	mounted      bool
	widget       canvas.SequenceWidget
}

type control struct {
	Position domain.Position `json:"position"`
	HTML     string          `json:"html"`
}

// Option configures a Document.
type Option func(*Document)

// WithLayerAPI sets the path live pages fetch layers from.
func WithLayerAPI(path string) Option {
	return func(d *Document) { d.layerAPI = path }
}

// WithTitle sets the page title.
func WithTitle(title string) Option {
	return func(d *Document) { d.title = title }
}

// NewDocument creates an empty page.
func NewDocument(mode Mode, opts ...Option) *Document {
	d := &Document{
		mode:     mode,
		layerAPI: "/api/layer",
		title:    "Traffic Fatalities by State",
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

func (d *Document) SetView(v canvas.View) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.view = v
}

func (d *Document) AddTileSource(ts canvas.TileSource) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.tiles = append(d.tiles, ts)
}

func (d *Document) AddAttribution(html string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.attributions = append(d.attributions, html)
}

// AddLayer replaces the embedded layer; a page shows one layer at a time.
func (d *Document) AddLayer(layer *domain.SymbolLayer) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.layer = layer
}

func (d *Document) RemoveLayer(layer *domain.SymbolLayer) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.layer == layer {
		d.layer = nil
	}
}

func (d *Document) AddControl(c canvas.Control) error {
	var buf bytes.Buffer
	if err := c.Render(&buf); err != nil {
		return fmt.Errorf("render control: %w", err)
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	d.controls = append(d.controls, control{Position: c.Position(), HTML: buf.String()})
	return nil
}

func (d *Document) Mount(w canvas.SequenceWidget) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.mounted = true
	d.widget = w
}

func (d *Document) ShowYear(index int, year domain.Year) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.widget.Value = index
	d.widget.Label = year
}

func (d *Document) FilterInputs() (string, string, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.mounted {
		return "", "", false
	}
	return d.widget.FilterMin, d.widget.FilterMax, true
}

// SetFilterInputs presets the filter input text. It has no effect before the
// widget is mounted.
func (d *Document) SetFilterInputs(minText, maxText string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.mounted {
		return
	}
	d.widget.FilterMin = minText
	d.widget.FilterMax = maxText
}

// Layer returns the embedded layer, or nil.
func (d *Document) Layer() *domain.SymbolLayer {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.layer
}

type pageView struct {
	Center domain.Point `json:"center"`
	Zoom   float64      `json:"zoom"`
}

type pageTiles struct {
	URL string `json:"url"`
}

// pageConfig is handed to the page script as a single JSON object.
type pageConfig struct {
	Live         bool                `json:"live"`
	LayerAPI     string              `json:"layerApi"`
	View         pageView            `json:"view"`
	Tiles        []pageTiles         `json:"tiles"`
	Attributions []string            `json:"attributions"`
	Controls     []control           `json:"controls"`
	Layer        *domain.SymbolLayer `json:"layer"`
}

type pageData struct {
	Title   string
	Mounted bool
	Widget  canvas.SequenceWidget
	Live    bool
	Config  pageConfig
}

// WriteHTML renders the page.
func (d *Document) WriteHTML(w io.Writer) error {
	d.mu.Lock()
	data := pageData{
		Title:   d.title,
		Mounted: d.mounted,
		Widget:  d.widget,
		Live:    d.mode == Live,
		Config: pageConfig{
			Live:         d.mode == Live,
			LayerAPI:     d.layerAPI,
			View:         pageView{Center: d.view.Center, Zoom: d.view.Zoom},
			Tiles:        make([]pageTiles, 0, len(d.tiles)),
			Attributions: slices.Clone(d.attributions),
			Controls:     slices.Clone(d.controls),
			Layer:        d.layer,
		},
	}
	for _, ts := range d.tiles {
		data.Config.Tiles = append(data.Config.Tiles, pageTiles{URL: ts.URLTemplate})
	}
	d.mu.Unlock()

	if err := pageTmpl.Execute(w, data); err != nil {
		return fmt.Errorf("render page: %w", err)
	}
	return nil
}

func toJSON(v any) (template.JS, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	return template.JS(b), nil
}
