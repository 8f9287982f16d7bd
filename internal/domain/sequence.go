package domain

import (
	"fmt"
	"slices"
)

// Step is a sequence control interaction.
type Step string

const (
	StepNone     Step = ""
	StepForward  Step = "forward"
	StepBackward Step = "backward"
)

// ParseStep validates a step name. The empty string means no step.
func ParseStep(s string) (Step, error) {
	switch Step(s) {
	case StepNone, StepForward, StepBackward:
		return Step(s), nil
	}
	return StepNone, fmt.Errorf("unknown step %q", s)
}

// Sequence is the ordered year domain the slider moves through. Stepping wraps
// around at both ends.
type Sequence struct {
	years []Year
}

// NewSequence creates a sequence over years.
func NewSequence(years []Year) (Sequence, error) {
	if len(years) == 0 {
		return Sequence{}, ErrEmptyDataset
	}
	return Sequence{years: slices.Clone(years)}, nil
}

// Len is the number of years.
func (s Sequence) Len() int { return len(s.years) }

// Years returns a copy of the year domain.
func (s Sequence) Years() []Year { return slices.Clone(s.years) }

// Year returns the year at index i.
func (s Sequence) Year(i int) (Year, error) {
	if i < 0 || i >= len(s.years) {
		return "", fmt.Errorf("%w: %d not in [0, %d]", ErrIndexOutOfRange, i, len(s.years)-1)
	}
	return s.years[i], nil
}

// Index returns the position of y.
func (s Sequence) Index(y Year) (int, bool) {
	i := slices.Index(s.years, y)
	return i, i >= 0
}

// Forward returns (i+1) mod n.
func (s Sequence) Forward(i int) int {
	return s.wrap(i + 1)
}

// Backward returns (i-1+n) mod n.
func (s Sequence) Backward(i int) int {
	return s.wrap(i - 1 + len(s.years))
}

// Apply moves from i by step.
func (s Sequence) Apply(i int, step Step) int {
	switch step {
	case StepForward:
		return s.Forward(i)
	case StepBackward:
		return s.Backward(i)
	}
	return i
}

func (s Sequence) wrap(i int) int {
	n := len(s.years)
	if n == 0 {
		return 0
	}
	return ((i % n) + n) % n
}
