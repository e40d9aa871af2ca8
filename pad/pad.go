// Package pad implements the typed connection points elements expose and
// link together to form a graph, the push/pull data-flow contract across
// a link, and the caps negotiation protocol that contract depends on.
package pad

import (
	"sync"

	"github.com/flowgraph/core/caps"
)

// Direction is whether a pad produces (Src) or consumes (Sink) data.
type Direction int

const (
	DirectionUnknown Direction = iota
	DirectionSrc
	DirectionSink
)

func (d Direction) String() string {
	switch d {
	case DirectionSrc:
		return "src"
	case DirectionSink:
		return "sink"
	default:
		return "unknown"
	}
}

// Presence describes when a pad exists relative to its element's lifetime.
type Presence int

const (
	PresenceAlways Presence = iota
	PresenceSometimes
	PresenceRequest
)

// ActivationMode is how a linked pad currently moves data.
type ActivationMode int

const (
	ModeNone ActivationMode = iota
	ModePush
	ModePull
)

// FlowReturn is the status a push/pull operation resolves to.
type FlowReturn int

const (
	FlowOK FlowReturn = iota
	FlowNotLinked
	FlowWrongState
	FlowEOS // GStreamer's UNEXPECTED
	FlowNotNegotiated
	FlowError
	FlowNotSupported
	FlowResend
)

func (f FlowReturn) String() string {
	switch f {
	case FlowOK:
		return "ok"
	case FlowNotLinked:
		return "not-linked"
	case FlowWrongState:
		return "wrong-state"
	case FlowEOS:
		return "eos"
	case FlowNotNegotiated:
		return "not-negotiated"
	case FlowError:
		return "error"
	case FlowNotSupported:
		return "not-supported"
	case FlowResend:
		return "resend"
	default:
		return "unknown"
	}
}

// IsSuccess reports whether f denotes forward progress (OK or RESEND).
func (f FlowReturn) IsSuccess() bool { return f == FlowOK || f == FlowResend }

// ChainFunc consumes a buffer delivered via push.
type ChainFunc func(pad *Pad, buf *Buffer) FlowReturn

// GetRangeFunc produces a buffer for a pull_range request.
type GetRangeFunc func(pad *Pad, offset int64, size int64) (*Buffer, FlowReturn)

// EventFunc handles an Event routed to this pad.
type EventFunc func(pad *Pad, ev *Event) bool

// QueryFunc answers a synchronous Query routed to this pad.
type QueryFunc func(pad *Pad, q *Query) bool

// LinkFunc validates (or rejects) a pending link on this pad.
type LinkFunc func(pad, peer *Pad) bool

// UnlinkFunc notifies this pad that it has just been unlinked.
type UnlinkFunc func(pad *Pad)

// AcceptCapsFunc decides whether this pad can operate with the given caps.
type AcceptCapsFunc func(pad *Pad, c *caps.Caps) bool

// ElementHandle identifies the owning element without importing the
// element package (which owns Pads), avoiding an import cycle.
type ElementHandle any

// Pad is a typed connection point on an element: a name, a Direction, a
// Presence, an allowed-caps template, and (once linked and activated) a
// negotiated Caps and a single peer.
type Pad struct {
	mu sync.Mutex

	name      string
	direction Direction
	presence  Presence
	parent    ElementHandle

	templateCaps *caps.Caps
	currentCaps  *caps.Caps
	peer         *Pad
	mode         ActivationMode

	Chain      ChainFunc
	GetRange   GetRangeFunc
	EventFn    EventFunc
	QueryFn    QueryFunc
	LinkFn     LinkFunc
	UnlinkFn   UnlinkFunc
	AcceptCaps AcceptCapsFunc
}

// New constructs an unlinked, unactivated Pad.
func New(name string, direction Direction, presence Presence, templateCaps *caps.Caps) *Pad {
	return &Pad{name: name, direction: direction, presence: presence, templateCaps: templateCaps, mode: ModeNone}
}

// Name returns the pad's name.
func (p *Pad) Name() string { return p.name }

// Direction returns the pad's direction.
func (p *Pad) Direction() Direction { return p.direction }

// Presence returns the pad's presence.
func (p *Pad) Presence() Presence { return p.presence }

// SetParent records the owning element.
func (p *Pad) SetParent(e ElementHandle) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.parent = e
}

// Parent returns the owning element, or nil if unparented.
func (p *Pad) Parent() ElementHandle {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.parent
}

// TemplateCaps returns the allowed-caps template.
func (p *Pad) TemplateCaps() *caps.Caps { return p.templateCaps }

// CurrentCaps returns the currently negotiated caps, or nil if none.
func (p *Pad) CurrentCaps() *caps.Caps {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.currentCaps
}

// Peer returns the linked peer pad, or nil if unlinked.
func (p *Pad) Peer() *Pad {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.peer
}

// IsLinked reports whether this pad currently has a peer.
func (p *Pad) IsLinked() bool { return p.Peer() != nil }

// ActivationMode returns the pad's current activation mode.
func (p *Pad) ActivationMode() ActivationMode {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.mode
}
