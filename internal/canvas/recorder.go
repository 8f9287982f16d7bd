package canvas

import (
	"bytes"
	"fmt"
	"slices"
	"sync"

	"github.com/couchcryptid/fatality-map-service/internal/domain"
)

// RenderedControl is a control as the Recorder captured it.
type RenderedControl struct {
	Position domain.Position
	HTML     string
}

// Recorder is an in-memory Canvas and Panel. It backs headless sessions and
// tests.
type Recorder struct {
	mu           sync.Mutex
	view         View
	tiles        []TileSource
	attributions []string
	layers       []*domain.SymbolLayer
	removed      int
	controls     []RenderedControl

	mounted   bool
	widget    SequenceWidget
	filterMin string
	filterMax string
}

// NewRecorder creates an empty Recorder.
func NewRecorder() *Recorder {
	return &Recorder{}
}

func (r *Recorder) SetView(v View) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.view = v
}

func (r *Recorder) AddTileSource(ts TileSource) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.tiles = append(r.tiles, ts)
}

func (r *Recorder) AddAttribution(html string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.attributions = append(r.attributions, html)
}

func (r *Recorder) AddLayer(layer *domain.SymbolLayer) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.layers = append(r.layers, layer)
}

func (r *Recorder) RemoveLayer(layer *domain.SymbolLayer) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if i := slices.Index(r.layers, layer); i >= 0 {
		r.layers = slices.Delete(r.layers, i, i+1)
		r.removed++
	}
}

func (r *Recorder) AddControl(c Control) error {
	var buf bytes.Buffer
	if err := c.Render(&buf); err != nil {
		return fmt.Errorf("render control: %w", err)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.controls = append(r.controls, RenderedControl{Position: c.Position(), HTML: buf.String()})
	return nil
}

func (r *Recorder) Mount(w SequenceWidget) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.mounted = true
	r.widget = w
	r.filterMin = w.FilterMin
	r.filterMax = w.FilterMax
}

func (r *Recorder) ShowYear(index int, year domain.Year) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.widget.Value = index
	r.widget.Label = year
}

func (r *Recorder) FilterInputs() (string, string, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.mounted {
		return "", "", false
	}
	return r.filterMin, r.filterMax, true
}

// SetFilterInputs simulates typing into the mounted filter inputs. It is a
// no-op until the widget is mounted.
func (r *Recorder) SetFilterInputs(minText, maxText string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.mounted {
		return
	}
	r.filterMin = minText
	r.filterMax = maxText
}

// View returns the last view set.
func (r *Recorder) View() View {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.view
}

// TileSources returns the tile sources added so far.
func (r *Recorder) TileSources() []TileSource {
	r.mu.Lock()
	defer r.mu.Unlock()
	return slices.Clone(r.tiles)
}

// Attributions returns the attribution snippets added so far.
func (r *Recorder) Attributions() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return slices.Clone(r.attributions)
}

// Layers returns the currently attached layers.
func (r *Recorder) Layers() []*domain.SymbolLayer {
	r.mu.Lock()
	defer r.mu.Unlock()
	return slices.Clone(r.layers)
}

// RemovedLayers counts layers detached so far.
func (r *Recorder) RemovedLayers() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.removed
}

// Controls returns the rendered controls.
func (r *Recorder) Controls() []RenderedControl {
	r.mu.Lock()
	defer r.mu.Unlock()
	return slices.Clone(r.controls)
}

// Widget returns the mounted sequence widget, if any.
func (r *Recorder) Widget() (SequenceWidget, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.widget, r.mounted
}
