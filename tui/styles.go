// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package tui

import "github.com/charmbracelet/lipgloss"

var (
	cyan   = lipgloss.Color("#00FFFF")
	yellow = lipgloss.Color("#FFFF00")
	green  = lipgloss.Color("#00FF00")
	gray   = lipgloss.Color("#808080")

	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(cyan).
			MarginBottom(1)

	pointerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(yellow)

	flashStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("0")).
			Background(yellow)

	candidateStyle = lipgloss.NewStyle().
			Foreground(gray)

	rotationStyle = lipgloss.NewStyle().
			Foreground(cyan).
			Faint(true)

	winnerStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(green).
			Foreground(green).
			Bold(true).
			Padding(0, 2).
			MarginTop(1)

	emptyStyle = lipgloss.NewStyle().
			Foreground(gray).
			Italic(true)

	helpStyle = lipgloss.NewStyle().
			Foreground(gray).
			MarginTop(1)
)
