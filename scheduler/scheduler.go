// Package scheduler defines the abstract event loop that binds elements'
// registered actions to a run loop and drives data flow, matching
// spec.md §4.6: "the scheduler is abstract; concrete implementations
// include a cooperative single-threaded variant... " Grounded directly on
// the teacher's engine.Engine interface shape (RegisterWorkflow/
// RegisterActivity/StartWorkflow/WorkflowContext/Future/SignalChannel
// generalize to AddAction/RemoveAction/PadPush/Run/action release
// callbacks), because "a pluggable execution engine with in-memory and
// Temporal-backed implementations" is precisely the one-layer-up version
// of "a pluggable scheduler with cooperative and durable backends."
package scheduler

import (
	"context"

	"github.com/flowgraph/core/action"
	"github.com/flowgraph/core/pad"
)

// Scheduler is the contract every backend (cooperative, durable, or a
// future threaded/task-queue variant) implements. Elements and pads call
// into it; it never calls back into application code except through an
// action's own release callback.
type Scheduler interface {
	// AddAction registers a with the scheduler. If a is currently active,
	// its source is enrolled in the run loop immediately.
	AddAction(a *action.Action) error

	// RemoveAction deregisters a, tearing down any associated source.
	RemoveAction(a *action.Action)

	// ToggleActive re-reads a.IsActive() and enrolls or evicts its source
	// accordingly. Callers invoke this after calling a.SetActive.
	ToggleActive(a *action.Action)

	// UpdateValues re-evaluates a source's parameters (fd, condition,
	// start time, interval) after the action's fields change in place.
	UpdateValues(a *action.Action)

	// PadPush hands a buffer pushed from src's element into the
	// scheduler, which queues it on the peer sink pad's private queue for
	// delivery to that pad's SinkPad action. Returns NotLinked if src has
	// no peer.
	PadPush(src *pad.Pad, buf *pad.Buffer) pad.FlowReturn

	// Run drives the event loop until ctx is cancelled or Stop is called.
	Run(ctx context.Context) error

	// Stop requests the run loop to terminate: pending queues are
	// flushed, blocked waiters are woken, and Run returns.
	Stop()
}
