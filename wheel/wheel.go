// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package wheel

import "sync"

// FeedbackSink observes the tick/done stream of a spin (haptics, sound, a
// flashing cursor). It must not block.
type FeedbackSink interface {
	Signal(kind SignalKind)
}

// FeedbackFunc adapts a function to FeedbackSink.
type FeedbackFunc func(kind SignalKind)

func (f FeedbackFunc) Signal(kind SignalKind) { f(kind) }

// SelectionConsumer receives the chosen candidate once a wheel settles.
type SelectionConsumer interface {
	Selected(c Candidate, index int)
}

// SelectionFunc adapts a function to SelectionConsumer.
type SelectionFunc func(c Candidate, index int)

func (f SelectionFunc) Selected(c Candidate, index int) { f(c, index) }

// Wheel drives one spin at a time: it draws a plan, replays the feedback
// signals through its Clock and resolves the winner when the done signal
// fires.
type Wheel struct {
	selector *Selector
	clock    Clock
	sink     FeedbackSink
	consumer SelectionConsumer

	mu         sync.Mutex
	state      SpinState
	candidates []Candidate
	plan       SpinPlan
	timers     []Timer
	generation uint64
}

// Option configures a Wheel.
type Option func(*Wheel)

func WithClock(c Clock) Option { return func(w *Wheel) { w.clock = c } }

func WithFeedback(s FeedbackSink) Option { return func(w *Wheel) { w.sink = s } }

func WithConsumer(c SelectionConsumer) Option { return func(w *Wheel) { w.consumer = c } }

// WithRotation restores a previously accumulated rotation.
func WithRotation(deg float64) Option {
	return func(w *Wheel) { w.state.CurrentRotation = deg }
}

// New returns an idle wheel.
func New(selector *Selector, opts ...Option) *Wheel {
	w := &Wheel{
		selector: selector,
		clock:    SystemClock(),
		sink:     FeedbackFunc(func(SignalKind) {}),
		consumer: SelectionFunc(func(Candidate, int) {}),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// State returns a copy of the current state.
func (w *Wheel) State() SpinState {
	w.mu.Lock()
	defer w.mu.Unlock()
	return copyState(w.state)
}

// Plan returns the plan of the current or most recent spin.
func (w *Wheel) Plan() SpinPlan {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.plan
}

// Candidates returns the snapshot the current or most recent spin uses.
func (w *Wheel) Candidates() []Candidate {
	w.mu.Lock()
	defer w.mu.Unlock()
	return snapshot(w.candidates)
}

// Trigger reacts to the spin button. With no candidates it clears the
// selection; with exactly one it selects it immediately without a draw;
// with two or more it starts a spin and returns its plan. The boolean
// reports whether a spin was started.
func (w *Wheel) Trigger(candidates []Candidate) (SpinPlan, bool) {
	w.mu.Lock()

	if w.state.IsSpinning {
		w.mu.Unlock()
		w.selector.violation("trigger while spinning")
		return SpinPlan{}, false
	}

	switch len(candidates) {
	case 0:
		w.candidates = nil
		w.state.SelectedIndex = nil
		w.mu.Unlock()
		return SpinPlan{}, false
	case 1:
		w.candidates = snapshot(candidates)
		idx := 0
		w.state.SelectedIndex = &idx
		chosen := w.candidates[0]
		w.mu.Unlock()
		w.consumer.Selected(chosen, 0)
		return SpinPlan{}, false
	}

	plan, ok := w.selector.Spin(candidates, w.state)
	if !ok {
		w.mu.Unlock()
		return SpinPlan{}, false
	}

	w.generation++
	gen := w.generation
	w.candidates = snapshot(candidates)
	w.plan = plan
	w.state.IsSpinning = true
	w.state.SelectedIndex = nil

	w.timers = w.timers[:0]
	for _, sig := range plan.Signals {
		w.timers = append(w.timers, w.clock.AfterFunc(sig.Offset, func() { w.fire(gen, sig) }))
	}
	w.mu.Unlock()

	return plan, true
}

// Cancel aborts the spin in flight. Pending signals are dropped, the
// rotation stays where it was and no candidate is selected.
func (w *Wheel) Cancel() bool {
	w.mu.Lock()
	defer w.mu.Unlock()

	if !w.state.IsSpinning {
		return false
	}
	w.generation++
	for _, t := range w.timers {
		t.Stop()
	}
	w.timers = w.timers[:0]
	w.state.IsSpinning = false
	w.state.SelectedIndex = nil
	return true
}

func (w *Wheel) fire(gen uint64, sig Signal) {
	w.mu.Lock()
	if gen != w.generation || !w.state.IsSpinning {
		w.mu.Unlock()
		return
	}

	if sig.Kind != SignalDone {
		w.mu.Unlock()
		w.sink.Signal(sig.Kind)
		return
	}

	idx := w.plan.Resolve(len(w.candidates))
	w.state.CurrentRotation = w.plan.FinalRotation
	w.state.IsSpinning = false
	w.state.SelectedIndex = &idx
	w.timers = w.timers[:0]
	chosen := w.candidates[idx]
	w.mu.Unlock()

	w.sink.Signal(SignalDone)
	w.consumer.Selected(chosen, idx)
}

func copyState(s SpinState) SpinState {
	if s.SelectedIndex != nil {
		idx := *s.SelectedIndex
		s.SelectedIndex = &idx
	}
	return s
}
