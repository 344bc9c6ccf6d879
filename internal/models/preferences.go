package models

import (
	"encoding/json"
	"errors"
	"fmt"
)

var ErrInvalidWeights = errors.New("invalid category weights")

// CategoryWeights maps every wheel category to how many times it is entered
// into the weighted draw.
type CategoryWeights map[FoodCategory]int

func DefaultWeights(sections []WheelSection) CategoryWeights {
	w := make(CategoryWeights, len(sections))
	for _, s := range sections {
		w[s.Category] = MinWeight
	}
	return w
}

// Validate requires a weight in [MinWeight, MaxWeight] for every section's
// category and nothing else.
func (w CategoryWeights) Validate(sections []WheelSection) error {
	if len(w) != len(sections) {
		return fmt.Errorf("%w: want %d categories, got %d", ErrInvalidWeights, len(sections), len(w))
	}
	for _, s := range sections {
		weight, ok := w[s.Category]
		if !ok {
			return fmt.Errorf("%w: missing %q", ErrInvalidWeights, s.Category)
		}
		if weight < MinWeight || weight > MaxWeight {
			return fmt.Errorf("%w: %q has weight %d", ErrInvalidWeights, s.Category, weight)
		}
	}
	return nil
}

// Uniform reports whether every category carries the same weight, in which
// case a weighted draw is indistinguishable from a plain spin.
func (w CategoryWeights) Uniform() bool {
	first := -1
	for _, weight := range w {
		if first == -1 {
			first = weight
			continue
		}
		if weight != first {
			return false
		}
	}
	return true
}

// ParseWeights decodes stored weights and validates them against sections.
func ParseWeights(raw []byte, sections []WheelSection) (CategoryWeights, error) {
	var w CategoryWeights
	if err := json.Unmarshal(raw, &w); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidWeights, err)
	}
	if err := w.Validate(sections); err != nil {
		return nil, err
	}
	return w, nil
}
