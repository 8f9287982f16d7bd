package domain

import (
	"fmt"
	"slices"
	"strconv"
)

// Year is a four-digit attribute key such as "2019".
type Year string

// PopulationKey returns the attribute key holding the year's population.
func (y Year) PopulationKey() string { return "Pop_" + string(y) }

// RateKey returns the attribute key holding the year's rate per 100k people.
func (y Year) RateKey() string { return "Rate_" + string(y) }

// IsYearKey reports whether key is exactly four ASCII digits.
func IsYearKey(key string) bool {
	if len(key) != 4 {
		return false
	}
	for i := 0; i < len(key); i++ {
		if key[i] < '0' || key[i] > '9' {
			return false
		}
	}
	return true
}

// ExtractYears returns the year keys of a single feature's attributes in
// natural enumeration order.
func ExtractYears(p Properties) []Year {
	var years []Year
	for _, key := range enumerationOrder(p.Keys()) {
		if IsYearKey(key) {
			years = append(years, Year(key))
		}
	}
	return years
}

// YearsFromCollection derives the year domain from the first feature.
func YearsFromCollection(fc *FeatureCollection) ([]Year, error) {
	if fc == nil || len(fc.Features) == 0 {
		return nil, ErrEmptyDataset
	}
	return ExtractYears(fc.Features[0].Properties), nil
}

// ValidateSchema checks that every feature carries the same year keys as the
// first one.
func ValidateSchema(fc *FeatureCollection) error {
	years, err := YearsFromCollection(fc)
	if err != nil {
		return err
	}
	want := make(map[Year]struct{}, len(years))
	for _, y := range years {
		want[y] = struct{}{}
	}

	for i, f := range fc.Features[1:] {
		idx := i + 1
		got := ExtractYears(f.Properties)
		for _, y := range got {
			if _, ok := want[y]; !ok {
				return fmt.Errorf("%w: feature %d (%s) has extra year %q", ErrInconsistentSchema, idx, f.State(), y)
			}
		}
		if len(got) != len(want) {
			for _, y := range years {
				if !slices.Contains(got, y) {
					return fmt.Errorf("%w: feature %d (%s) is missing year %q", ErrInconsistentSchema, idx, f.State(), y)
				}
			}
		}
	}
	return nil
}

// enumerationOrder orders object keys the way a JavaScript engine enumerates
// them: canonical array-index keys ascending, then the rest in insertion order.
func enumerationOrder(keys []string) []string {
	var indices, rest []string
	for _, k := range keys {
		if isCanonicalIndex(k) {
			indices = append(indices, k)
		} else {
			rest = append(rest, k)
		}
	}
	slices.SortStableFunc(indices, func(a, b string) int {
		if len(a) != len(b) {
			return len(a) - len(b)
		}
		switch {
		case a < b:
			return -1
		case a > b:
			return 1
		}
		return 0
	})
	return append(indices, rest...)
}

func isCanonicalIndex(key string) bool {
	if key == "" || len(key) > 10 {
		return false
	}
	if len(key) > 1 && key[0] == '0' {
		return false
	}
	n, err := strconv.ParseUint(key, 10, 32)
	if err != nil {
		return false
	}
	return n < 1<<32-1
}
