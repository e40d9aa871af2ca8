// Package cooperative implements scheduler.Scheduler as a single-goroutine,
// select-driven run loop, the idiomatic Go reading of spec.md §4.6's
// "cooperative single-threaded variant built on a poll-based main loop."
// Grounded on the teacher's engine/inmem.Engine (single-process,
// goroutine-per-unit execution over channels) for the overall shape of a
// lightweight, dependency-free scheduler backend, and resolved against
// original_source/gst/gstscheduler.c for the exact per-action-type
// readiness rules spec.md §4.6 describes only in prose:
//
//   - WAKEUP is ready only when no other action of the same element is
//     ready this tick (spec.md: "invoked whenever the scheduler has no
//     other work for the element").
//   - SINK_PAD is ready iff its bound pad's private queue is non-empty.
//   - SRC_PAD is ready whenever active (this scheduler does not bound
//     src-side production with its own queue).
//   - FD is ready when a registered watcher reports the requested
//     condition.
//   - WAIT fires at StartTime, then reschedules at StartTime+Interval.
package cooperative

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/flowgraph/core/action"
	"github.com/flowgraph/core/pad"
)

// padOwner is the subset of element.Element a SinkPad/SrcPad action's
// Element field must satisfy to resolve its bound PadName into a *pad.Pad.
type padOwner interface {
	Pad(name string) *pad.Pad
}

type entry struct {
	action *action.Action

	// SinkPad / SrcPad
	pad *pad.Pad

	// Wait
	nextFire time.Time
	limiter  *rate.Limiter

	// Fd
	watcher <-chan action.FdCondition
}

// Scheduler is a cooperative, single-goroutine scheduler backend. All
// mutation of its internal maps happens from the goroutine running Run,
// except for the public registration methods, which take mu and signal
// dirty so Run re-scans promptly.
type Scheduler struct {
	mu      sync.Mutex
	entries map[*action.Action]*entry

	sinkQueues map[*pad.Pad][]*pad.Buffer

	dirty  chan struct{}
	stopCh chan struct{}
	once   sync.Once
}

// New returns an idle cooperative Scheduler. Run must be called to start
// driving actions.
func New() *Scheduler {
	return &Scheduler{
		entries:    make(map[*action.Action]*entry),
		sinkQueues: make(map[*pad.Pad][]*pad.Buffer),
		dirty:      make(chan struct{}, 1),
		stopCh:     make(chan struct{}),
	}
}

func (s *Scheduler) markDirty() {
	select {
	case s.dirty <- struct{}{}:
	default:
	}
}

// resolvePad looks up the *pad.Pad a SinkPad/SrcPad action names, via the
// action's owning element (action.ElementHandle is an opaque `any` to
// avoid an action<->element import cycle; the scheduler, sitting above
// both, is free to type-assert it here).
func resolvePad(a *action.Action) *pad.Pad {
	owner, ok := a.Element.(padOwner)
	if !ok {
		return nil
	}
	return owner.Pad(a.PadName)
}

// AddAction registers a. For a SinkPad action, it also wraps the bound
// pad's UnlinkFn so that a queue still holding buffers at unlink time is
// flushed and, if the action is still active, an EOS event is delivered
// to the pad in place of the dropped buffers (spec.md §4.6's scheduler
// invariant: "the scheduler must not drop a buffer silently... the
// buffer is unreffed after posting an EOS event in its place").
func (s *Scheduler) AddAction(a *action.Action) error {
	e := &entry{action: a}
	switch a.Type {
	case action.TypeSinkPad:
		p := resolvePad(a)
		e.pad = p
		if p != nil {
			s.hookUnlink(p, a)
		}
	case action.TypeSrcPad:
		e.pad = resolvePad(a)
	case action.TypeWait:
		e.nextFire = time.Unix(0, a.StartTime)
		if a.Interval > 0 {
			e.limiter = rate.NewLimiter(rate.Every(time.Duration(a.Interval)), 1)
		}
	}
	s.mu.Lock()
	s.entries[a] = e
	s.mu.Unlock()
	s.markDirty()
	return nil
}

// hookUnlink chains onto p's existing UnlinkFn (preserving whatever the
// element already installed) so the scheduler observes unlink without
// pad needing to know schedulers exist.
func (s *Scheduler) hookUnlink(p *pad.Pad, a *action.Action) {
	prev := p.UnlinkFn
	p.UnlinkFn = func(pp *pad.Pad) {
		if prev != nil {
			prev(pp)
		}
		s.flushOnUnlink(pp, a)
	}
}

func (s *Scheduler) flushOnUnlink(p *pad.Pad, a *action.Action) {
	s.mu.Lock()
	dropped := s.sinkQueues[p]
	delete(s.sinkQueues, p)
	active := a.IsActive()
	s.mu.Unlock()
	if len(dropped) == 0 {
		return
	}
	if active && p.EventFn != nil {
		p.EventFn(p, pad.NewEvent(pad.EventEOS, nil))
	}
}

// RemoveAction deregisters a.
func (s *Scheduler) RemoveAction(a *action.Action) {
	s.mu.Lock()
	delete(s.entries, a)
	s.mu.Unlock()
	s.markDirty()
}

// ToggleActive wakes the run loop to re-evaluate a's readiness after its
// active flag changed.
func (s *Scheduler) ToggleActive(a *action.Action) { s.markDirty() }

// UpdateValues re-reads a's Fd/Condition/StartTime/Interval fields,
// useful after an element adjusts a Wait action's timing in place.
func (s *Scheduler) UpdateValues(a *action.Action) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entries[a]
	if !ok {
		return
	}
	if a.Type == action.TypeWait {
		e.nextFire = time.Unix(0, a.StartTime)
		if a.Interval > 0 {
			e.limiter = rate.NewLimiter(rate.Every(time.Duration(a.Interval)), 1)
		} else {
			e.limiter = nil
		}
	}
	s.markDirty()
}

// WatchFd registers ready as the readiness channel for fd, which Fd
// actions referencing fd will be released against.
func (s *Scheduler) WatchFd(fd int, ready <-chan action.FdCondition) {
	s.mu.Lock()
	for _, e := range s.entries {
		if e.action.Type == action.TypeFd && e.action.Fd == fd {
			e.watcher = ready
		}
	}
	s.mu.Unlock()
	go func() {
		for range ready {
			s.markDirty()
		}
	}()
}

// PadPush queues buf on src's peer sink pad's private queue.
func (s *Scheduler) PadPush(src *pad.Pad, buf *pad.Buffer) pad.FlowReturn {
	peer := src.Peer()
	if peer == nil {
		return pad.FlowNotLinked
	}
	s.mu.Lock()
	s.sinkQueues[peer] = append(s.sinkQueues[peer], buf)
	s.mu.Unlock()
	s.markDirty()
	return pad.FlowOK
}

// Stop requests Run to return, flushing all pad queues first.
func (s *Scheduler) Stop() {
	s.once.Do(func() { close(s.stopCh) })
}

// Run drives the event loop: each iteration picks at most one ready
// action and invokes its release callback, then loops. When nothing is
// ready it blocks on whichever of (dirty signal, next Wait deadline,
// ctx.Done, Stop) comes first. Because a single goroutine runs the
// entire loop, no element is ever re-entered while one of its own actions
// is executing — the cooperative invariant spec.md §4.6/§8 requires falls
// out of the implementation rather than needing explicit bookkeeping.
func (s *Scheduler) Run(ctx context.Context) error {
	for {
		if ready := s.pickReady(); ready != nil {
			s.fire(ready)
			continue
		}

		wait := s.nextTimeout()
		var timerC <-chan time.Time
		if wait >= 0 {
			t := time.NewTimer(wait)
			timerC = t.C
			defer t.Stop()
		}

		select {
		case <-ctx.Done():
			s.flushAll()
			return ctx.Err()
		case <-s.stopCh:
			s.flushAll()
			return nil
		case <-s.dirty:
		case <-timerC:
		}
	}
}

// nextTimeout returns how long until the earliest Wait action should
// fire, or -1 if no Wait action is registered.
func (s *Scheduler) nextTimeout() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	have := false
	var earliest time.Time
	for _, e := range s.entries {
		if e.action.Type != action.TypeWait || !e.action.IsActive() {
			continue
		}
		if !have || e.nextFire.Before(earliest) {
			earliest = e.nextFire
			have = true
		}
	}
	if !have {
		return -1
	}
	d := time.Until(earliest)
	if d < 0 {
		d = 0
	}
	return d
}

// pickReady scans active actions for the first one ready to fire, biasing
// toward SinkPad/SrcPad/Fd/Wait over Wakeup per spec.md's "wakeup is
// invoked whenever the scheduler has no other work for the element" rule.
func (s *Scheduler) pickReady() *entry {
	s.mu.Lock()
	defer s.mu.Unlock()

	busyElement := make(map[any]bool)
	var wakeups []*entry
	now := time.Now()

	for _, e := range s.entries {
		a := e.action
		if !a.IsActive() {
			continue
		}
		switch a.Type {
		case action.TypeSinkPad:
			if len(s.sinkQueues[e.pad]) > 0 {
				busyElement[a.Element] = true
				return e
			}
		case action.TypeSrcPad:
			busyElement[a.Element] = true
			return e
		case action.TypeFd:
			if e.watcher != nil {
				select {
				case cond := <-e.watcher:
					if cond&a.Condition != 0 {
						busyElement[a.Element] = true
						return e
					}
				default:
				}
			}
		case action.TypeWait:
			if !e.nextFire.After(now) {
				if e.limiter == nil || e.limiter.Allow() {
					busyElement[a.Element] = true
					return e
				}
			}
		case action.TypeWakeup:
			wakeups = append(wakeups, e)
		}
	}
	for _, e := range wakeups {
		if !busyElement[e.action.Element] {
			return e
		}
	}
	return nil
}

// fire invokes e's release callback, popping a queued buffer first for
// SinkPad actions and rescheduling the next fire time for Wait actions.
func (s *Scheduler) fire(e *entry) {
	a := e.action
	switch a.Type {
	case action.TypeSinkPad:
		s.mu.Lock()
		q := s.sinkQueues[e.pad]
		var buf *pad.Buffer
		if len(q) > 0 {
			buf = q[0]
			s.sinkQueues[e.pad] = q[1:]
		}
		s.mu.Unlock()
		a.Release(buf)
	case action.TypeWait:
		s.mu.Lock()
		if a.Interval > 0 {
			e.nextFire = e.nextFire.Add(time.Duration(a.Interval))
		}
		s.mu.Unlock()
		a.Release(nil)
	default:
		a.Release(nil)
	}
	s.markDirty()
}

// flushAll drops every queued buffer across every sink pad, matching the
// scheduler-cancellation contract in spec.md §4.6 ("the scheduler may be
// asked to abort; it flushes all pad queues").
func (s *Scheduler) flushAll() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for p := range s.sinkQueues {
		delete(s.sinkQueues, p)
	}
}

var _ interface {
	AddAction(*action.Action) error
	RemoveAction(*action.Action)
	ToggleActive(*action.Action)
	UpdateValues(*action.Action)
	PadPush(*pad.Pad, *pad.Buffer) pad.FlowReturn
	Run(context.Context) error
	Stop()
} = (*Scheduler)(nil)
