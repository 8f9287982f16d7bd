package mapview

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/couchcryptid/fatality-map-service/internal/canvas"
	"github.com/couchcryptid/fatality-map-service/internal/config"
	"github.com/couchcryptid/fatality-map-service/internal/domain"
	"github.com/couchcryptid/fatality-map-service/internal/observability"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func startedSession(t *testing.T, fc *domain.FeatureCollection) (*Session, *canvas.Recorder) {
	t.Helper()
	svc, _ := loadedService(t, fc)
	rec := canvas.NewRecorder()
	s := svc.NewSession(rec, rec)
	require.NoError(t, s.Start(context.Background()))
	return s, rec
}

func attachedLayer(t *testing.T, rec *canvas.Recorder) *domain.SymbolLayer {
	t.Helper()
	layers := rec.Layers()
	require.Len(t, layers, 1, "exactly one layer must be attached")
	return layers[0]
}

func TestSession_StartDrawsMapSurface(t *testing.T) {
	s, rec := startedSession(t, threeYearCollection())

	view := rec.View()
	assert.InDelta(t, 33.220391788294395, view.Center.Lat, 1e-12)
	assert.InDelta(t, -87.18503075340283, view.Center.Lon, 1e-12)
	assert.InDelta(t, 4.5, view.Zoom, 0)
	require.Len(t, rec.TileSources(), 1)
	assert.Len(t, rec.Attributions(), 1)

	widget, mounted := rec.Widget()
	require.True(t, mounted)
	assert.Equal(t, canvas.SequenceWidget{
		Min: 0, Max: 2, Step: 1, Value: 0, Label: "2018",
		FilterMin: "111", FilterMax: "4500",
	}, widget)

	controls := rec.Controls()
	require.Len(t, controls, 1)
	assert.Equal(t, domain.BottomRight, controls[0].Position)
	assert.Contains(t, controls[0].HTML, "<h4>Accident Data Legend</h4>")
	assert.Contains(t, controls[0].HTML, "<h5>Number of fatalities from cars</h5>")
	assert.Contains(t, controls[0].HTML, `src="img/R.png"`)

	assert.Equal(t, 0, s.Index())
	assert.Equal(t, domain.Year("2018"), s.Year())
}

func TestSession_InitialLayerIsUnfiltered(t *testing.T) {
	_, rec := startedSession(t, threeYearCollection())

	// The initial layer is built before the filter inputs exist, so the
	// 2018 value of 50 is drawn even though it is below the default minimum.
	layer := attachedLayer(t, rec)
	assert.Equal(t, domain.Year("2018"), layer.Year)
	assert.Len(t, layer.Markers, 2)
	assert.True(t, math.IsInf(layer.Filter.Max, 1))
}

func TestSession_TwoStateScenario(t *testing.T) {
	ctx := context.Background()
	s, rec := startedSession(t, twoStateCollection())

	initial := attachedLayer(t, rec)
	require.Len(t, initial.Markers, 1)
	assert.Equal(t, "Alpha", initial.Markers[0].State)
	assert.InDelta(t, 1.3*math.Pow(10.0/3.0, 0.625), initial.Markers[0].Style.Radius, 1e-9)

	require.NoError(t, s.SelectYear(ctx, 0))
	assert.Empty(t, attachedLayer(t, rec).Markers)

	rec.SetFilterInputs("-10", "10")
	require.NoError(t, s.Refresh(ctx))

	layer := attachedLayer(t, rec)
	require.Len(t, layer.Markers, 2)
	assert.Equal(t, domain.PositiveFill, layer.Markers[0].Style.FillColor)
	assert.Equal(t, domain.NonPositiveFill, layer.Markers[1].Style.FillColor)
	assert.InDelta(t, 1.3, layer.Markers[1].Style.Radius, 1e-9)
	assert.Equal(t, 2, rec.RemovedLayers())
}

func TestSession_StepsWrap(t *testing.T) {
	ctx := context.Background()
	s, rec := startedSession(t, threeYearCollection())

	require.NoError(t, s.StepBackward(ctx))
	assert.Equal(t, 2, s.Index())
	assert.Equal(t, domain.Year("2020"), attachedLayer(t, rec).Year)

	widget, _ := rec.Widget()
	assert.Equal(t, 2, widget.Value)
	assert.Equal(t, domain.Year("2020"), widget.Label)

	require.NoError(t, s.StepForward(ctx))
	assert.Equal(t, 0, s.Index())
	assert.Equal(t, domain.Year("2018"), attachedLayer(t, rec).Year)

	require.NoError(t, s.StepForward(ctx))
	assert.Equal(t, domain.Year("2019"), s.Year())
}

func TestSession_SelectYearOutOfRange(t *testing.T) {
	s, rec := startedSession(t, threeYearCollection())

	err := s.SelectYear(context.Background(), 3)
	require.ErrorIs(t, err, domain.ErrIndexOutOfRange)
	assert.Equal(t, 0, s.Index())
	assert.Len(t, rec.Layers(), 1)
}

func TestSession_UnparsableFilterDrawsNothing(t *testing.T) {
	ctx := context.Background()
	s, rec := startedSession(t, threeYearCollection())

	rec.SetFilterInputs("abc", "4500")
	require.NoError(t, s.Refresh(ctx))
	assert.Empty(t, attachedLayer(t, rec).Markers)

	rec.SetFilterInputs("100.9", "1000abc")
	require.NoError(t, s.Refresh(ctx))
	layer := attachedLayer(t, rec)
	assert.InDelta(t, 100, layer.Filter.Min, 0)
	assert.InDelta(t, 1000, layer.Filter.Max, 0)
	assert.Len(t, layer.Markers, 1)
}

func TestSession_WithoutPanel(t *testing.T) {
	ctx := context.Background()
	svc, _ := loadedService(t, threeYearCollection())
	rec := canvas.NewRecorder()
	s := svc.NewSession(rec, nil)
	require.NoError(t, s.Start(ctx))

	_, mounted := rec.Widget()
	assert.False(t, mounted)

	require.NoError(t, s.StepForward(ctx))
	layer := attachedLayer(t, rec)
	assert.Equal(t, domain.Year("2019"), layer.Year)
	assert.Len(t, layer.Markers, 2)
}

func TestSession_TileOnlyWhenDatasetFailed(t *testing.T) {
	loader := &stubLoader{err: errors.New("404 Not Found")}
	svc := NewService(loader, config.DefaultMapView(), discardLogger(), observability.NewMetricsForTesting())
	require.Error(t, svc.Load(context.Background()))

	rec := canvas.NewRecorder()
	s := svc.NewSession(rec, rec)
	require.ErrorIs(t, s.Start(context.Background()), ErrNotReady)

	assert.Len(t, rec.TileSources(), 1)
	assert.Empty(t, rec.Layers())
	assert.Empty(t, rec.Controls())
	_, mounted := rec.Widget()
	assert.False(t, mounted)

	require.ErrorIs(t, s.StepForward(context.Background()), ErrNotReady)
}
