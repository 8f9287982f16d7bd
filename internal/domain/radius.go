package domain

import (
	"math"
	"sync"
)

const (
	minRadius   = 1.0
	scaleFactor = 1.3
	exponent    = 0.625
)

// Radius maps a fatality value to a marker radius given the dataset's smallest
// non-zero absolute value for the year. A non-positive minAbs is treated as 1.
func Radius(value, minAbs float64) (float64, error) {
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return 0, ErrNonNumeric
	}
	if !(minAbs > 0) || math.IsInf(minAbs, 0) {
		minAbs = 1
	}
	return scaleFactor * math.Pow(math.Abs(value)/minAbs, exponent) * minRadius, nil
}

// MinAbsValue returns the smallest non-zero |value| of year across all
// features, or 1 when no feature has a non-zero value.
func MinAbsValue(fc *FeatureCollection, year Year) float64 {
	minAbs := math.Inf(1)
	if fc != nil {
		for _, f := range fc.Features {
			v, ok := NumericValue(f.Properties, string(year))
			if !ok || v == 0 {
				continue
			}
			minAbs = math.Min(minAbs, math.Abs(v))
		}
	}
	if math.IsInf(minAbs, 1) {
		return 1
	}
	return minAbs
}

// RadiusScaler memoizes MinAbsValue per year. The collection is immutable, so
// a cached denominator always equals a fresh computation.
type RadiusScaler struct {
	fc *FeatureCollection

	mu     sync.Mutex
	minAbs map[Year]float64
}

// NewRadiusScaler creates a scaler bound to a loaded collection.
func NewRadiusScaler(fc *FeatureCollection) *RadiusScaler {
	return &RadiusScaler{
		fc:     fc,
		minAbs: make(map[Year]float64),
	}
}

// Radius scales value against the year's denominator.
func (s *RadiusScaler) Radius(year Year, value float64) (float64, error) {
	return Radius(value, s.MinAbs(year))
}

// MinAbs returns the (cached) denominator for year.
func (s *RadiusScaler) MinAbs(year Year) float64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	if v, ok := s.minAbs[year]; ok {
		return v
	}
	v := MinAbsValue(s.fc, year)
	s.minAbs[year] = v
	return v
}
