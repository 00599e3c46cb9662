// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package wheel

import (
	"errors"
	"fmt"
)

var (
	ErrEmptyCandidateID   = errors.New("candidate id is empty")
	ErrDuplicateCandidate = errors.New("duplicate candidate id")
)

// Candidate is one selectable slice of the wheel.
type Candidate struct {
	ID    string `json:"id" yaml:"id"`
	Label string `json:"label" yaml:"name"`
}

// SpinState is the observable state of one wheel.
// CurrentRotation only ever grows; each spin starts where the last one stopped.
type SpinState struct {
	IsSpinning      bool    `json:"is_spinning"`
	CurrentRotation float64 `json:"current_rotation"`
	SelectedIndex   *int    `json:"selected_index,omitempty"`
}

// ValidateCandidates checks that every candidate has an id and that ids are unique.
func ValidateCandidates(candidates []Candidate) error {
	seen := make(map[string]struct{}, len(candidates))
	for i, c := range candidates {
		if c.ID == "" {
			return fmt.Errorf("candidate %d: %w", i, ErrEmptyCandidateID)
		}
		if _, dup := seen[c.ID]; dup {
			return fmt.Errorf("candidate %q: %w", c.ID, ErrDuplicateCandidate)
		}
		seen[c.ID] = struct{}{}
	}
	return nil
}

// snapshot copies the candidate slice so later caller mutations cannot
// change what a spin in flight resolves against.
func snapshot(candidates []Candidate) []Candidate {
	out := make([]Candidate, len(candidates))
	copy(out, candidates)
	return out
}
