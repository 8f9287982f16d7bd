package domain

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubGeocoder struct {
	calls  int
	result GeocodingResult
	err    error
}

func (s *stubGeocoder) ForwardGeocode(_ context.Context, _, _ string) (GeocodingResult, error) {
	s.calls++
	return s.result, s.err
}

func geometry(t *testing.T, typ string, coords any) *Geometry {
	t.Helper()
	data, err := json.Marshal(coords)
	require.NoError(t, err)
	return &Geometry{Type: typ, Coordinates: data}
}

func TestLocator_Point(t *testing.T) {
	l := NewLocator(nil, discardLogger())
	p, ok := l.Locate(context.Background(), Feature{Geometry: geometry(t, "Point", []float64{-97.7, 30.3})})

	require.True(t, ok)
	assert.Equal(t, Point{Lat: 30.3, Lon: -97.7}, p)
}

func TestLocator_PolygonCentroid(t *testing.T) {
	square := [][][]float64{{{0, 0}, {4, 0}, {4, 2}, {0, 2}, {0, 0}}}
	l := NewLocator(nil, discardLogger())

	p, ok := l.Locate(context.Background(), Feature{Geometry: geometry(t, "Polygon", square)})
	require.True(t, ok)
	assert.InDelta(t, 1.0, p.Lat, 1e-9)
	assert.InDelta(t, 2.0, p.Lon, 1e-9)
}

func TestLocator_MultiPolygonWeightsByArea(t *testing.T) {
	// A 2x2 square at the origin and a 1x1 square centred on (10.5, 0.5).
	multi := [][][][]float64{
		{{{0, 0}, {2, 0}, {2, 2}, {0, 2}, {0, 0}}},
		{{{10, 0}, {11, 0}, {11, 1}, {10, 1}, {10, 0}}},
	}
	l := NewLocator(nil, discardLogger())

	p, ok := l.Locate(context.Background(), Feature{Geometry: geometry(t, "MultiPolygon", multi)})
	require.True(t, ok)
	assert.InDelta(t, (4*1.0+1*10.5)/5, p.Lon, 1e-9)
	assert.InDelta(t, (4*1.0+1*0.5)/5, p.Lat, 1e-9)
}

func TestLocator_DegenerateRingUsesVertexMean(t *testing.T) {
	line := [][][]float64{{{0, 0}, {2, 2}, {0, 0}}}
	l := NewLocator(nil, discardLogger())

	p, ok := l.Locate(context.Background(), Feature{Geometry: geometry(t, "Polygon", line)})
	require.True(t, ok)
	assert.InDelta(t, 2.0/3.0, p.Lat, 1e-9)
}

func TestLocator_GeocodeFallback(t *testing.T) {
	g := &stubGeocoder{result: GeocodingResult{Lat: 32.3, Lon: -86.9, PlaceName: "Alabama"}}
	l := NewLocator(g, discardLogger())

	p, ok := l.Locate(context.Background(), Feature{Properties: NewProperties("State", "Alabama")})
	require.True(t, ok)
	assert.Equal(t, Point{Lat: 32.3, Lon: -86.9}, p)
	assert.Equal(t, 1, g.calls)
}

func TestLocator_GeocodeFailureExcludes(t *testing.T) {
	l := NewLocator(&stubGeocoder{err: errors.New("boom")}, discardLogger())
	_, ok := l.Locate(context.Background(), Feature{Properties: NewProperties("State", "Alabama")})
	assert.False(t, ok)

	l = NewLocator(&stubGeocoder{}, discardLogger())
	_, ok = l.Locate(context.Background(), Feature{Properties: NewProperties("State", "Alabama")})
	assert.False(t, ok, "empty geocoding result")
}

func TestLocator_NoGeocoder(t *testing.T) {
	l := NewLocator(nil, discardLogger())
	_, ok := l.Locate(context.Background(), Feature{Properties: NewProperties("State", "Alabama")})
	assert.False(t, ok)

	_, ok = l.Locate(context.Background(), Feature{Geometry: &Geometry{Type: "LineString", Coordinates: json.RawMessage(`[[0,0],[1,1]]`)}})
	assert.False(t, ok)
}
