// Package action implements the scheduler's unit of schedulable work: a
// tagged union over the five kinds of event an element can register
// interest in (wakeup, sink-pad data ready, src-pad data wanted, file
// descriptor readiness, and a timed wait), each carrying its own release
// callback and an active/initially_active/coupled flag triple.
package action

// Type tags which concrete action variant a value holds.
type Type int

const (
	TypeInvalid Type = iota
	TypeWakeup
	TypeSinkPad
	TypeSrcPad
	TypeFd
	TypeWait
)

func (t Type) String() string {
	switch t {
	case TypeWakeup:
		return "wakeup"
	case TypeSinkPad:
		return "sink-pad"
	case TypeSrcPad:
		return "src-pad"
	case TypeFd:
		return "fd"
	case TypeWait:
		return "wait"
	default:
		return "invalid"
	}
}

// FdCondition mirrors the poll-set readiness bits an Fd action reacts to.
type FdCondition int

const (
	FdReadable FdCondition = 1 << iota
	FdWritable
	FdError
)

// WakeupFunc fires when a wakeup action is released.
type WakeupFunc func(a *Action)

// SinkPadFunc fires when data has arrived for a sink-pad action; data is
// the opaque buffer delivered to the element.
type SinkPadFunc func(a *Action, data any)

// SrcPadFunc fires to request the next buffer for a src-pad action.
type SrcPadFunc func(a *Action) any

// FdFunc fires when condition is satisfied for an fd action.
type FdFunc func(a *Action, condition FdCondition)

// WaitFunc fires when a timed wait action elapses.
type WaitFunc func(a *Action)

// ElementHandle identifies the owning element without this package
// importing the element package (which in turn owns actions), avoiding an
// import cycle.
type ElementHandle any

// Action is a tagged union of schedulable work, generalizing the
// original gstaction.h union of per-kind structs sharing a common head
// (type/active/initially_active/coupled/element) into a single Go struct
// with kind-specific fields populated according to Type.
type Action struct {
	Type    Type
	Element ElementHandle

	active           bool
	initiallyActive  bool
	coupled          bool

	// Wakeup
	WakeupRelease WakeupFunc
	UserData      any

	// SinkPad / SrcPad
	PadName     string
	SinkRelease SinkPadFunc
	SrcRelease  SrcPadFunc

	// Fd
	Fd          int
	Condition   FdCondition
	FdRelease   FdFunc

	// Wait: StartTime/Interval measured in nanoseconds since an
	// unspecified epoch private to the scheduler running this action.
	StartTime   int64
	Interval    int64
	WaitRelease WaitFunc
}

// NewWakeup builds a wakeup action.
func NewWakeup(element ElementHandle, active bool, release WakeupFunc, userData any) *Action {
	return &Action{Type: TypeWakeup, Element: element, active: active, initiallyActive: active,
		WakeupRelease: release, UserData: userData}
}

// NewSinkPad builds a sink-pad action bound to padName.
func NewSinkPad(element ElementHandle, padName string, active bool, release SinkPadFunc) *Action {
	return &Action{Type: TypeSinkPad, Element: element, PadName: padName, active: active,
		initiallyActive: active, SinkRelease: release}
}

// NewSrcPad builds a src-pad action bound to padName.
func NewSrcPad(element ElementHandle, padName string, active bool, release SrcPadFunc) *Action {
	return &Action{Type: TypeSrcPad, Element: element, PadName: padName, active: active,
		initiallyActive: active, SrcRelease: release}
}

// NewFd builds a file-descriptor readiness action.
func NewFd(element ElementHandle, active bool, fd int, condition FdCondition, release FdFunc) *Action {
	return &Action{Type: TypeFd, Element: element, active: active, initiallyActive: active,
		Fd: fd, Condition: condition, FdRelease: release}
}

// NewWait builds a timed-wait action.
func NewWait(element ElementHandle, active bool, startTime, interval int64, release WaitFunc) *Action {
	return &Action{Type: TypeWait, Element: element, active: active, initiallyActive: active,
		StartTime: startTime, Interval: interval, WaitRelease: release}
}

// IsActive reports the current active flag.
func (a *Action) IsActive() bool { return a.active }

// SetActive toggles whether the scheduler should currently consider this
// action runnable.
func (a *Action) SetActive(active bool) { a.active = active }

// IsInitiallyActive reports whether this action should be (re)activated
// whenever its owning element transitions READY→PAUSED.
func (a *Action) IsInitiallyActive() bool { return a.initiallyActive }

// SetInitiallyActive sets the flag IsInitiallyActive reports.
func (a *Action) SetInitiallyActive(v bool) { a.initiallyActive = v }

// IsCoupled reports whether this action should be deactivated whenever
// its owning element transitions PAUSED→READY.
func (a *Action) IsCoupled() bool { return a.coupled }

// SetCoupled sets the flag IsCoupled reports.
func (a *Action) SetCoupled(v bool) { a.coupled = v }

// Release invokes the action's kind-specific release callback, ignoring
// kinds it does not apply to. Callers dispatching Fd/Wait releases pass
// the relevant argument; other kinds ignore it.
func (a *Action) Release(data any) {
	switch a.Type {
	case TypeWakeup:
		if a.WakeupRelease != nil {
			a.WakeupRelease(a)
		}
	case TypeSinkPad:
		if a.SinkRelease != nil {
			a.SinkRelease(a, data)
		}
	case TypeSrcPad:
		if a.SrcRelease != nil {
			a.SrcRelease(a)
		}
	case TypeFd:
		if a.FdRelease != nil {
			cond, _ := data.(FdCondition)
			a.FdRelease(a, cond)
		}
	case TypeWait:
		if a.WaitRelease != nil {
			a.WaitRelease(a)
		}
	}
}
