package domain

import "errors"

var (
	// ErrEmptyDataset is returned when a collection has no features to derive
	// the year domain from.
	ErrEmptyDataset = errors.New("empty dataset: feature collection has no features")

	// ErrInconsistentSchema is returned when features disagree on the set of
	// year keys.
	ErrInconsistentSchema = errors.New("inconsistent dataset schema")

	// ErrNonNumeric is returned when a value handed to the radius scaler is
	// NaN or infinite.
	ErrNonNumeric = errors.New("value is not a finite number")

	// ErrIndexOutOfRange is returned when a sequence index falls outside the
	// year domain.
	ErrIndexOutOfRange = errors.New("year index out of range")
)
