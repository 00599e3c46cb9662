// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

// Package tui is the terminal front end for the wheel: a Bubble Tea model
// that animates one spin, plus helpers that gather the restaurants to spin
// from arguments, a YAML file or an interactive prompt.
package tui
