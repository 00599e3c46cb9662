// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package tui

import (
	"fmt"
	"io"

	"github.com/charmbracelet/huh"

	"github.com/danielhkuo/quickly-spin/wheel"
)

// CandidatePrompter asks for restaurants when none were given on the
// command line.
type CandidatePrompter struct {
	input      io.Reader
	accessible bool
}

func NewCandidatePrompter() *CandidatePrompter {
	return &CandidatePrompter{}
}

func (p *CandidatePrompter) WithInput(r io.Reader) *CandidatePrompter {
	p.input = r
	p.accessible = true
	return p
}

func (p *CandidatePrompter) Prompt() ([]wheel.Candidate, error) {
	var value string

	input := huh.NewInput().
		Title("Which restaurants are on the wheel?").
		Description("Separate names with commas").
		Placeholder("Noodle Bar, Taqueria, Pho House").
		Value(&value)

	form := huh.NewForm(
		huh.NewGroup(input),
	).WithTheme(huh.ThemeCatppuccin())

	if p.input != nil {
		form = form.WithInput(p.input)
	}
	if p.accessible {
		form = form.WithAccessible(true)
	}

	if err := form.Run(); err != nil {
		return nil, fmt.Errorf("prompt cancelled: %w", err)
	}

	return ParseCandidates([]string{value})
}
