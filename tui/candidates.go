// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package tui

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/danielhkuo/quickly-spin/wheel"
)

// ParseCandidates turns plain labels into candidates. Labels may be comma
// separated; blanks are dropped and ids are derived from the label.
func ParseCandidates(labels []string) ([]wheel.Candidate, error) {
	var out []wheel.Candidate
	for _, arg := range labels {
		for _, label := range strings.Split(arg, ",") {
			label = strings.TrimSpace(label)
			if label == "" {
				continue
			}
			out = append(out, wheel.Candidate{ID: slug(label), Label: label})
		}
	}
	if err := wheel.ValidateCandidates(out); err != nil {
		return nil, err
	}
	return out, nil
}

// LoadCandidates reads a YAML list of restaurants:
//
//	- name: Noodle Bar
//	- id: ChIJ123
//	  name: Taqueria
//
// Entries without an id get one from their name.
func LoadCandidates(path string) ([]wheel.Candidate, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read candidates: %w", err)
	}

	var list []wheel.Candidate
	if err := yaml.Unmarshal(data, &list); err != nil {
		return nil, fmt.Errorf("parse candidates: %w", err)
	}

	out := list[:0]
	for _, c := range list {
		c.Label = strings.TrimSpace(c.Label)
		if c.Label == "" {
			continue
		}
		if c.ID == "" {
			c.ID = slug(c.Label)
		}
		out = append(out, c)
	}
	if err := wheel.ValidateCandidates(out); err != nil {
		return nil, fmt.Errorf("invalid candidates: %w", err)
	}
	return out, nil
}

func slug(label string) string {
	return strings.Join(strings.Fields(strings.ToLower(label)), "-")
}
