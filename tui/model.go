// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/danielhkuo/quickly-spin/wheel"
)

// frameInterval paces the rotation animation, roughly 30 fps.
const frameInterval = 33 * time.Millisecond

// flashFrames is how many animation frames a tick stays highlighted.
const flashFrames = 3

type signalMsg struct {
	kind wheel.SignalKind
}

type selectedMsg struct {
	candidate wheel.Candidate
	index     int
}

type frameMsg struct{}

type spinRequestMsg struct{}

// Model animates one wheel. Wheel callbacks arrive on timer goroutines and
// are forwarded to the program through events.
type Model struct {
	selector   *wheel.Selector
	wheel      *wheel.Wheel
	clock      wheel.Clock
	candidates []wheel.Candidate
	events     chan tea.Msg

	plan      wheel.SpinPlan
	startedAt time.Time
	rotation  float64
	spinning  bool
	flash     int
	ticks     int

	selected    *wheel.Candidate
	selectedIdx int
	autoQuit    bool
	quitting    bool

	keys keyMap
	help help.Model
}

type Option func(*Model)

// WithClock drives the wheel and the animation from c.
func WithClock(c wheel.Clock) Option { return func(m *Model) { m.clock = c } }

// WithAutoQuit ends the program once a selection is made.
func WithAutoQuit() Option { return func(m *Model) { m.autoQuit = true } }

func New(selector *wheel.Selector, candidates []wheel.Candidate, opts ...Option) Model {
	m := Model{
		selector:   selector,
		clock:      wheel.SystemClock(),
		candidates: candidates,
		events:     make(chan tea.Msg, 32),
		keys:       defaultKeys(),
		help:       help.New(),
	}
	for _, opt := range opts {
		opt(&m)
	}

	events := m.events
	m.wheel = wheel.New(selector,
		wheel.WithClock(m.clock),
		wheel.WithFeedback(wheel.FeedbackFunc(func(kind wheel.SignalKind) {
			events <- signalMsg{kind: kind}
		})),
		wheel.WithConsumer(wheel.SelectionFunc(func(c wheel.Candidate, index int) {
			events <- selectedMsg{candidate: c, index: index}
		})),
	)
	return m
}

// Selected returns the chosen candidate, if any.
func (m Model) Selected() (wheel.Candidate, bool) {
	if m.selected == nil {
		return wheel.Candidate{}, false
	}
	return *m.selected, true
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(
		m.waitForEvent(),
		func() tea.Msg { return spinRequestMsg{} },
	)
}

func (m Model) waitForEvent() tea.Cmd {
	return func() tea.Msg {
		return <-m.events
	}
}

func nextFrame() tea.Cmd {
	return tea.Tick(frameInterval, func(time.Time) tea.Msg {
		return frameMsg{}
	})
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			m.wheel.Cancel()
			m.quitting = true
			return m, tea.Quit
		case key.Matches(msg, m.keys.Cancel):
			// A cancelled spin leaves the wheel where it started
			if m.wheel.Cancel() {
				m.spinning = false
				m.rotation = m.plan.StartRotation
			}
			return m, nil
		case key.Matches(msg, m.keys.Spin):
			return m.trigger()
		}

	case spinRequestMsg:
		return m.trigger()

	case frameMsg:
		if m.flash > 0 {
			m.flash--
		}
		if !m.spinning {
			return m, nil
		}
		m.rotation = m.plan.RotationAt(m.clock.Now().Sub(m.startedAt))
		return m, nextFrame()

	case signalMsg:
		if msg.kind == wheel.SignalTick {
			m.ticks++
			m.flash = flashFrames
		}
		return m, m.waitForEvent()

	case selectedMsg:
		c := msg.candidate
		m.selected = &c
		m.selectedIdx = msg.index
		m.spinning = false
		if m.plan.Duration > 0 {
			m.rotation = m.plan.FinalRotation
		}
		if m.autoQuit {
			m.quitting = true
			return m, tea.Quit
		}
		return m, m.waitForEvent()
	}

	return m, nil
}

// trigger starts a spin; the wheel handles the empty and single cases.
func (m Model) trigger() (tea.Model, tea.Cmd) {
	if m.spinning {
		return m, nil
	}
	plan, ok := m.wheel.Trigger(m.candidates)
	if !ok {
		// 0 or 1 candidates; a single one is reported through the consumer
		return m, nil
	}
	m.plan = plan
	m.startedAt = m.clock.Now()
	m.spinning = true
	m.selected = nil
	m.ticks = 0
	return m, nextFrame()
}

// pointerIndex is the candidate currently under the pointer.
func (m Model) pointerIndex() int {
	if len(m.candidates) == 0 {
		return -1
	}
	return m.selector.Resolve(len(m.candidates), m.rotation)
}

func (m Model) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("Where should we eat?"))
	b.WriteString("\n")

	if len(m.candidates) == 0 {
		b.WriteString(emptyStyle.Render("Nothing to spin. Add a few restaurants first."))
		b.WriteString("\n")
		return b.String()
	}

	under := m.pointerIndex()
	for i, c := range m.candidates {
		label := fmt.Sprintf("%2d. %s", i+1, c.Label)
		switch {
		case i == under && m.flash > 0:
			b.WriteString(flashStyle.Render("▶ " + label))
		case i == under:
			b.WriteString(pointerStyle.Render("▶ " + label))
		default:
			b.WriteString(candidateStyle.Render("  " + label))
		}
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(rotationStyle.Render(fmt.Sprintf("rotation %.1f°  ticks %d", m.rotation, m.ticks)))
	b.WriteString("\n")

	if m.selected != nil {
		b.WriteString(winnerStyle.Render("→ " + m.selected.Label))
		b.WriteString("\n")
	}

	if !m.quitting {
		b.WriteString(helpStyle.Render(m.help.View(m.keys)))
		b.WriteString("\n")
	}

	return b.String()
}
