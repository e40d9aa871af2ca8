// Package element implements the graph's nodes: Element, the basic unit
// owning pads and actions, and Bin, a container element whose state
// changes and error reports aggregate those of its children.
package element

import (
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/flowgraph/core/action"
	"github.com/flowgraph/core/flowerrors"
	"github.com/flowgraph/core/message"
	"github.com/flowgraph/core/pad"
)

// State is one of the four lifecycle states every element passes through.
type State int

const (
	StateNull State = iota
	StateReady
	StatePaused
	StatePlaying
)

func (s State) String() string {
	switch s {
	case StateNull:
		return "null"
	case StateReady:
		return "ready"
	case StatePaused:
		return "paused"
	case StatePlaying:
		return "playing"
	default:
		return "unknown"
	}
}

// StateChangeReturn is the outcome of a requested state transition.
type StateChangeReturn int

const (
	StateChangeSuccess StateChangeReturn = iota
	StateChangeAsync
	StateChangeNoPreroll
	StateChangeFailure
)

func (r StateChangeReturn) String() string {
	switch r {
	case StateChangeSuccess:
		return "success"
	case StateChangeAsync:
		return "async"
	case StateChangeNoPreroll:
		return "no-preroll"
	case StateChangeFailure:
		return "failure"
	default:
		return "unknown"
	}
}

// worst returns whichever of a, b ranks worse under Failure > NoPreroll >
// Async > Success, the aggregation order a Bin applies across its
// children's individual state-change results.
func worst(a, b StateChangeReturn) StateChangeReturn {
	rank := func(r StateChangeReturn) int {
		switch r {
		case StateChangeFailure:
			return 3
		case StateChangeNoPreroll:
			return 2
		case StateChangeAsync:
			return 1
		default:
			return 0
		}
	}
	if rank(b) > rank(a) {
		return b
	}
	return a
}

// ChangeStateFunc performs element-specific work for a single state
// transition; it may return StateChangeAsync to signal the transition
// will complete later (e.g. once a buffer prerolls).
type ChangeStateFunc func(e *Element, oldState, newState State) StateChangeReturn

// Element is the basic schedulable graph node: a name, pads addressed by
// name, the actions it has registered with a scheduler, and a four-state
// lifecycle.
type Element struct {
	mu sync.Mutex

	name    string
	id      string
	state   State
	pending State

	pads    map[string]*pad.Pad
	actions []*action.Action

	ChangeState ChangeStateFunc
}

// New constructs an Element named name, starting in StateNull. Each
// Element gets a generated, globally unique id, the same
// name-prefixed-uuid shape the teacher's generateRunID uses for workflow
// execution ids, so that logs and bus messages can disambiguate two
// elements sharing a name (e.g. two instances of the same element type
// in one pipeline).
func New(name string) *Element {
	return &Element{
		name:    name,
		id:      generateID(name),
		state:   StateNull,
		pending: StateNull,
		pads:    make(map[string]*pad.Pad),
	}
}

func generateID(name string) string {
	prefix := strings.ReplaceAll(name, ".", "-")
	return fmt.Sprintf("%s-%s", prefix, uuid.NewString())
}

// Name returns the element's name.
func (e *Element) Name() string { return e.name }

// ID returns the element's generated unique id, stable for the life of
// the element and distinct even across two elements of the same name.
func (e *Element) ID() string { return e.id }

// State returns the element's current state.
func (e *Element) State() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}

// AddPad registers p under its own name, so later Pad(name) calls can
// find it. Panics on a duplicate name, the same invariant violation the
// caps/value packages panic on for shared-mutation (an internal bug, not
// a runtime condition to recover from).
func (e *Element) AddPad(p *pad.Pad) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if _, exists := e.pads[p.Name()]; exists {
		panic(fmt.Sprintf("element: pad %q already added to element %q", p.Name(), e.name))
	}
	p.SetParent(e)
	e.pads[p.Name()] = p
}

// RemovePad unregisters the pad named name.
func (e *Element) RemovePad(name string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	delete(e.pads, name)
}

// Pad returns the pad named name, or nil if no such pad is registered.
func (e *Element) Pad(name string) *pad.Pad {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.pads[name]
}

// Pads returns every registered pad in unspecified order.
func (e *Element) Pads() []*pad.Pad {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]*pad.Pad, 0, len(e.pads))
	for _, p := range e.pads {
		out = append(out, p)
	}
	return out
}

// AddAction registers a as belonging to this element.
func (e *Element) AddAction(a *action.Action) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.actions = append(e.actions, a)
}

// Actions returns every action registered on this element.
func (e *Element) Actions() []*action.Action {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]*action.Action, len(e.actions))
	copy(out, e.actions)
	return out
}

// SetState drives the element directly from its current state to target,
// one step at a time (NULL<->READY<->PAUSED<->PLAYING), invoking
// ChangeState (if set) for each step and stopping at the first Failure
// result; Async and NoPreroll steps do not stop it. READY->PAUSED activates every initially-active action;
// PAUSED->READY deactivates every coupled action, matching the activation
// bookkeeping spec.md assigns to those two transitions.
func (e *Element) SetState(target State) StateChangeReturn {
	e.mu.Lock()
	current := e.state
	e.mu.Unlock()

	step := 1
	if target < current {
		step = -1
	}

	result := StateChangeSuccess
	for current != target {
		next := State(int(current) + step)

		e.mu.Lock()
		e.pending = next
		e.mu.Unlock()

		var r StateChangeReturn
		if e.ChangeState != nil {
			r = e.ChangeState(e, current, next)
		} else {
			r = StateChangeSuccess
		}

		if next == StatePaused && current == StateReady {
			e.activateInitial()
		}
		if next == StateReady && current == StatePaused {
			e.deactivateCoupled()
		}

		e.mu.Lock()
		if r != StateChangeFailure {
			e.state = next
			e.pending = StateNull
		}
		e.mu.Unlock()

		result = worst(result, r)
		if r == StateChangeFailure {
			return result
		}
		current = next
	}
	return result
}

func (e *Element) activateInitial() {
	for _, a := range e.Actions() {
		if a.IsInitiallyActive() {
			a.SetActive(true)
		}
	}
}

func (e *Element) deactivateCoupled() {
	for _, a := range e.Actions() {
		if a.IsCoupled() {
			a.SetActive(false)
		}
	}
}

// ReportError constructs a flowerrors.Error-shaped ERROR message and
// returns it for the caller to post to whatever Bus reaches this
// element, keeping Element itself decoupled from any particular Bus
// instance (only Bin owns one directly).
func (e *Element) ReportError(domain flowerrors.Domain, code flowerrors.Code, text, debug string) *message.Message {
	return message.NewError(e, message.Domain(domain), int(code), text, debug)
}
