package mapview

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"strconv"

	"github.com/couchcryptid/fatality-map-service/internal/canvas"
	"github.com/couchcryptid/fatality-map-service/internal/domain"
)

// Session is one rendering of the map: the canvas it draws on, the selected
// year and the layer currently attached. Methods must not be called
// concurrently; a session has a single event source.
type Session struct {
	svc    *Service
	canvas canvas.Canvas
	panel  canvas.Panel
	logger *slog.Logger

	started bool
	seq     domain.Sequence
	index   int
	layer   *domain.SymbolLayer
}

// Start sets up the map surface and, once the dataset is loaded, draws the
// first year's layer, the sequence controls and the legend. If the dataset is
// not loaded the canvas is left tile-only and ErrNotReady is returned.
func (s *Session) Start(ctx context.Context) error {
	view := s.svc.View()
	s.canvas.SetView(canvas.View{
		Center: domain.Point{Lat: view.Center[0], Lon: view.Center[1]},
		Zoom:   view.Zoom,
	})
	s.canvas.AddTileSource(canvas.TileSource{URLTemplate: view.TileURL, Attribution: view.Attribution})
	if view.Attribution != "" {
		s.canvas.AddAttribution(view.Attribution)
	}

	seq, err := s.svc.Sequence()
	if err != nil {
		return err
	}
	s.seq = seq
	s.index = 0

	first, _ := seq.Year(0)
	if err := s.rebuild(ctx, first); err != nil {
		return err
	}
	s.addSequenceControls()
	if err := s.addLegend(); err != nil {
		return err
	}

	s.started = true
	return nil
}

// SelectYear handles slider input.
func (s *Session) SelectYear(ctx context.Context, index int) error {
	if err := s.requireStarted(); err != nil {
		return err
	}
	return s.updateMapForYear(ctx, index)
}

// StepForward handles the forward button, wrapping past the last year.
func (s *Session) StepForward(ctx context.Context) error {
	if err := s.requireStarted(); err != nil {
		return err
	}
	return s.updateMapForYear(ctx, s.seq.Forward(s.index))
}

// StepBackward handles the reverse button, wrapping before the first year.
func (s *Session) StepBackward(ctx context.Context) error {
	if err := s.requireStarted(); err != nil {
		return err
	}
	return s.updateMapForYear(ctx, s.seq.Backward(s.index))
}

// Refresh rebuilds the current year's layer, e.g. after the filter inputs
// changed.
func (s *Session) Refresh(ctx context.Context) error {
	if err := s.requireStarted(); err != nil {
		return err
	}
	return s.updateMapForYear(ctx, s.index)
}

// Index is the selected year's position in the sequence.
func (s *Session) Index() int { return s.index }

// Year is the selected year, or "" before Start.
func (s *Session) Year() domain.Year {
	y, err := s.seq.Year(s.index)
	if err != nil {
		return ""
	}
	return y
}

// Layer returns the attached layer, or nil.
func (s *Session) Layer() *domain.SymbolLayer { return s.layer }

func (s *Session) requireStarted() error {
	if !s.started {
		return fmt.Errorf("session not started: %w", ErrNotReady)
	}
	return nil
}

// updateMapForYear is where every sequence interaction ends up: label and
// slider follow the index, then the layer is rebuilt.
func (s *Session) updateMapForYear(ctx context.Context, index int) error {
	year, err := s.seq.Year(index)
	if err != nil {
		return err
	}
	s.index = index
	if s.panel != nil {
		s.panel.ShowYear(index, year)
	}
	return s.rebuild(ctx, year)
}

// rebuild detaches the current layer and attaches a freshly built one.
func (s *Session) rebuild(ctx context.Context, year domain.Year) error {
	if s.layer != nil {
		s.canvas.RemoveLayer(s.layer)
		s.layer = nil
	}

	layer, err := s.svc.BuildLayer(ctx, year, s.filter())
	if err != nil {
		return fmt.Errorf("rebuild layer: %w", err)
	}
	s.layer = &layer
	s.canvas.AddLayer(s.layer)
	return nil
}

// filter reads the live filter inputs. Without inputs the range is unbounded.
func (s *Session) filter() domain.FilterRange {
	if s.panel == nil {
		return domain.Unbounded()
	}
	minText, maxText, ok := s.panel.FilterInputs()
	if !ok {
		return domain.Unbounded()
	}
	r := domain.FilterRange{
		Min: domain.ParseIntegerInput(minText),
		Max: domain.ParseIntegerInput(maxText),
	}
	if math.IsNaN(r.Min) || math.IsNaN(r.Max) {
		s.logger.Warn("filter input is not a number", "min", minText, "max", maxText)
	}
	return r
}

// addSequenceControls mounts the slider and filter inputs. Sessions without a
// panel skip this silently.
func (s *Session) addSequenceControls() {
	if s.panel == nil {
		return
	}
	first, _ := s.seq.Year(0)
	s.panel.Mount(canvas.SequenceWidget{
		Min:       0,
		Max:       s.seq.Len() - 1,
		Step:      1,
		Value:     0,
		Label:     first,
		FilterMin: strconv.FormatFloat(domain.DefaultFilter.Min, 'f', -1, 64),
		FilterMax: strconv.FormatFloat(domain.DefaultFilter.Max, 'f', -1, 64),
	})
}

func (s *Session) addLegend() error {
	if err := s.canvas.AddControl(legendControl{legend: s.svc.Legend()}); err != nil {
		return fmt.Errorf("add legend: %w", err)
	}
	return nil
}
