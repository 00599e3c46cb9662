// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package tui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Spin   key.Binding
	Cancel key.Binding
	Quit   key.Binding
}

func defaultKeys() keyMap {
	return keyMap{
		Spin: key.NewBinding(
			key.WithKeys(" ", "enter"),
			key.WithHelp("space", "spin"),
		),
		Cancel: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "cancel"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
	}
}

// ShortHelp implements help.KeyMap.
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Spin, k.Cancel, k.Quit}
}

// FullHelp implements help.KeyMap.
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{k.ShortHelp()}
}
