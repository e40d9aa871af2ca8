package pad

import (
	"github.com/flowgraph/core/miniobject"
	"github.com/flowgraph/core/value"
)

// EventType tags the kind of control signal an Event carries, with flag
// bits recording which directions it may travel (spec.md §3: "serialized
// or out-of-band relative to the data stream per their type flags").
type EventType int

const (
	EventFlushStart EventType = iota
	EventFlushStop
	EventEOS
	EventNewSegment
	EventTag
	EventQOS
	EventSeek
	EventCustom
)

// EventFlag records directionality and ordering properties of an event
// type.
type EventFlag int

const (
	FlagUpstream EventFlag = 1 << iota
	FlagDownstream
	FlagSerialized
)

var eventFlags = map[EventType]EventFlag{
	EventFlushStart: FlagDownstream | FlagUpstream,
	EventFlushStop:  FlagDownstream | FlagUpstream,
	EventEOS:        FlagDownstream | FlagSerialized,
	EventNewSegment: FlagDownstream | FlagSerialized,
	EventTag:        FlagDownstream | FlagSerialized,
	EventQOS:        FlagUpstream,
	EventSeek:       FlagUpstream,
	EventCustom:     FlagDownstream | FlagUpstream | FlagSerialized,
}

// Flags returns the directionality/ordering flags for t.
func (t EventType) Flags() EventFlag { return eventFlags[t] }

func (t EventType) String() string {
	switch t {
	case EventFlushStart:
		return "flush-start"
	case EventFlushStop:
		return "flush-stop"
	case EventEOS:
		return "eos"
	case EventNewSegment:
		return "new-segment"
	case EventTag:
		return "tag"
	case EventQOS:
		return "qos"
	case EventSeek:
		return "seek"
	default:
		return "custom"
	}
}

// Event is a refcounted control signal travelling alongside, or in lieu
// of, Buffers.
type Event struct {
	miniobject.MiniObject

	Type      EventType
	Structure *value.Structure
}

// NewEvent builds an Event of the given type carrying payload.
func NewEvent(t EventType, payload *value.Structure) *Event {
	e := &Event{Type: t, Structure: payload}
	e.MiniObject = miniobject.New(miniobject.TypeEvent, payload, nil, nil)
	return e
}

// IsUpstream reports whether this event travels from sink peer to src.
func (e *Event) IsUpstream() bool { return e.Type.Flags()&FlagUpstream != 0 }

// IsDownstream reports whether this event travels from src peer to sink.
func (e *Event) IsDownstream() bool { return e.Type.Flags()&FlagDownstream != 0 }

// IsSerialized reports whether this event must be delivered in buffer
// order rather than out-of-band.
func (e *Event) IsSerialized() bool { return e.Type.Flags()&FlagSerialized != 0 }
