// Package domain models the traffic fatality dataset and the proportional
// symbol layers drawn from it.
//
// # Data Source
//
// The dataset is a single GeoJSON FeatureCollection (conventionally
// data/Fatal_Data.geojson) with one feature per U.S. state. It is loaded once
// and never mutated afterwards.
//
// # Attribute Conventions
//
// Every feature carries a "State" property plus, for each year Y present in
// the dataset, a triple of attributes:
//
//	"Y"       fatality count (signed; negative values denote a decrease)
//	"Pop_Y"   population in year Y
//	"Rate_Y"  fatalities per 100k people in year Y
//
// Year keys are exactly four ASCII digits. "Pop_2019" is eight characters long
// and is therefore never mistaken for a year. All features share the same set
// of year keys; [ValidateSchema] rejects a collection that does not.
//
// Values are "numeric-ish": JSON numbers are used as-is, strings holding a
// decimal number are accepted, and anything else (missing, null, booleans,
// free text) is treated as undefined. Features with an undefined value for the
// selected year are left off the layer without raising an error.
//
// # Year Ordering
//
// Years are enumerated in the order the dataset's key schema presents them.
// Keys in canonical integer form (no leading zero) come first in ascending
// numeric order, followed by the remaining keys in document order. For real
// year keys this is simply ascending chronological order.
//
// # Symbol Scaling
//
// Marker radius grows sub-linearly with the value:
//
//	radius = 1.3 * (|value| / minAbs)^0.625 * 1
//
// where minAbs is the smallest non-zero |value| of the selected year across
// the whole collection (1 when every value is zero). Positive values are drawn
// red, zero and negative values blue. See [Radius] and [StyleFor].
package domain
