package domain

import (
	"context"
	"encoding/json"
	"log/slog"
	"math"
)

// geocodeRegion scopes forward geocoding of state names.
const geocodeRegion = "US"

// Locator resolves the point a feature's marker is drawn at.
//
// Point geometries are used directly. Polygons and multipolygons resolve to
// the area-weighted centroid of their outer rings. Features with no usable
// geometry fall back to forward geocoding of the State name when a geocoder
// is configured.
type Locator struct {
	geocoder Geocoder
	logger   *slog.Logger
}

// NewLocator creates a Locator. Pass a nil geocoder to disable the fallback.
func NewLocator(geocoder Geocoder, logger *slog.Logger) *Locator {
	return &Locator{geocoder: geocoder, logger: logger}
}

// Locate returns the feature's marker point, or false if none can be found.
func (l *Locator) Locate(ctx context.Context, f Feature) (Point, bool) {
	if p, ok := pointFromGeometry(f.Geometry); ok {
		return p, true
	}
	return l.geocode(ctx, f)
}

func (l *Locator) geocode(ctx context.Context, f Feature) (Point, bool) {
	state := f.State()
	if l.geocoder == nil || state == "" {
		return Point{}, false
	}
	result, err := l.geocoder.ForwardGeocode(ctx, state, geocodeRegion)
	if err != nil {
		l.logger.Warn("forward geocoding failed", "state", state, "error", err)
		return Point{}, false
	}
	if result.Lat == 0 && result.Lon == 0 {
		return Point{}, false
	}
	return Point{Lat: result.Lat, Lon: result.Lon}, true
}

func pointFromGeometry(g *Geometry) (Point, bool) {
	if g == nil || len(g.Coordinates) == 0 {
		return Point{}, false
	}
	switch g.Type {
	case "Point":
		var c []float64
		if err := json.Unmarshal(g.Coordinates, &c); err != nil || len(c) < 2 {
			return Point{}, false
		}
		return Point{Lat: c[1], Lon: c[0]}, true
	case "Polygon":
		var rings [][][]float64
		if err := json.Unmarshal(g.Coordinates, &rings); err != nil || len(rings) == 0 {
			return Point{}, false
		}
		return centroid([][][]float64{rings[0]})
	case "MultiPolygon":
		var polys [][][][]float64
		if err := json.Unmarshal(g.Coordinates, &polys); err != nil {
			return Point{}, false
		}
		outer := make([][][]float64, 0, len(polys))
		for _, rings := range polys {
			if len(rings) > 0 {
				outer = append(outer, rings[0])
			}
		}
		return centroid(outer)
	default:
		return Point{}, false
	}
}

// centroid combines the centroids of several rings weighted by their area.
// Rings with zero area fall back to the mean of all vertices.
func centroid(rings [][][]float64) (Point, bool) {
	var area, cx, cy float64
	var sumX, sumY float64
	var n int

	for _, ring := range rings {
		a, x, y := ringCentroid(ring)
		a = math.Abs(a)
		area += a
		cx += x * a
		cy += y * a
		for _, c := range ring {
			if len(c) < 2 {
				continue
			}
			sumX += c[0]
			sumY += c[1]
			n++
		}
	}

	if area > 1e-12 {
		return Point{Lat: cy / area, Lon: cx / area}, true
	}
	if n == 0 {
		return Point{}, false
	}
	return Point{Lat: sumY / float64(n), Lon: sumX / float64(n)}, true
}

// ringCentroid returns the signed area and centroid of one linear ring using
// the shoelace formula on lon/lat coordinates.
func ringCentroid(ring [][]float64) (area, x, y float64) {
	var a, cx, cy float64
	for i := range ring {
		j := (i + 1) % len(ring)
		if len(ring[i]) < 2 || len(ring[j]) < 2 {
			continue
		}
		x0, y0 := ring[i][0], ring[i][1]
		x1, y1 := ring[j][0], ring[j][1]
		cross := x0*y1 - x1*y0
		a += cross
		cx += (x0 + x1) * cross
		cy += (y0 + y1) * cross
	}
	a /= 2
	if a == 0 {
		return 0, 0, 0
	}
	return a, cx / (6 * a), cy / (6 * a)
}
