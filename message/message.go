// Package message defines the payload Bus carries: a typed, sequenced
// notification originating from some object in the element graph, paired
// with a structure payload carrying type-specific fields.
package message

import (
	"fmt"
	"sync/atomic"

	"github.com/flowgraph/core/value"
)

// Type is a flag bit so a consumer can mask for the message kinds it
// cares about in one comparison, mirroring spec.md §4.7's "type (flag-bit
// so subscribers can mask)".
type Type uint32

const (
	TypeError Type = 1 << iota
	TypeWarning
	TypeInfo
	TypeTag
	TypeBuffering
	TypeStateChanged
	TypeEOS
	TypeStreamStatus
	TypeApplication
	TypeElement
	TypeDuration
)

// Mask ORs together a set of Types for use with Message.Matches.
func Mask(types ...Type) Type {
	var m Type
	for _, t := range types {
		m |= t
	}
	return m
}

func (t Type) String() string {
	names := map[Type]string{
		TypeError: "error", TypeWarning: "warning", TypeInfo: "info",
		TypeTag: "tag", TypeBuffering: "buffering", TypeStateChanged: "state-changed",
		TypeEOS: "eos", TypeStreamStatus: "stream-status", TypeApplication: "application",
		TypeElement: "element", TypeDuration: "duration",
	}
	if n, ok := names[t]; ok {
		return n
	}
	return fmt.Sprintf("type(%#x)", uint32(t))
}

var sequence int64

// nextSequence returns a process-wide monotonically increasing sequence
// number, used to order messages from possibly-different posting threads.
func nextSequence() int64 { return atomic.AddInt64(&sequence, 1) }

// Source identifies whatever object posted a message (typically an
// element or bin); kept as an opaque handle so this package does not
// import element and create a cycle.
type Source any

// Message is an immutable, sequenced notification posted to a Bus.
type Message struct {
	Type      Type
	Source    Source
	Sequence  int64
	Structure *value.Structure
}

// Matches reports whether m's Type has any bit in mask set.
func (m *Message) Matches(mask Type) bool { return m.Type&mask != 0 }

// Domain is the error-domain taxonomy for ERROR/WARNING/INFO messages.
type Domain int

const (
	DomainCore Domain = iota
	DomainLibrary
	DomainResource
	DomainStream
)

func (d Domain) String() string {
	switch d {
	case DomainCore:
		return "core"
	case DomainLibrary:
		return "library"
	case DomainResource:
		return "resource"
	case DomainStream:
		return "stream"
	default:
		return "unknown"
	}
}

func newStructure(name string, domain Domain, code int, text, debug string) *value.Structure {
	s := value.NewStructure(name)
	s.Set("domain", value.String(domain.String()))
	s.Set("code", value.Int(code))
	s.Set("text", value.String(text))
	s.Set("debug", value.String(debug))
	return s
}

// NewError builds an ERROR message: a domain/code/text/debug quadruple,
// matching spec.md §4.5's "domain (CORE/LIBRARY/RESOURCE/STREAM), a
// numeric code, a translated short message, and a debug string".
func NewError(source Source, domain Domain, code int, text, debug string) *Message {
	return &Message{Type: TypeError, Source: source, Sequence: nextSequence(),
		Structure: newStructure("error", domain, code, text, debug)}
}

// NewWarning builds a WARNING message with the same payload shape as ERROR.
func NewWarning(source Source, domain Domain, code int, text, debug string) *Message {
	return &Message{Type: TypeWarning, Source: source, Sequence: nextSequence(),
		Structure: newStructure("warning", domain, code, text, debug)}
}

// NewInfo builds an INFO message with the same payload shape as ERROR.
func NewInfo(source Source, domain Domain, code int, text, debug string) *Message {
	return &Message{Type: TypeInfo, Source: source, Sequence: nextSequence(),
		Structure: newStructure("info", domain, code, text, debug)}
}

// NewTag builds a TAG message carrying arbitrary metadata fields (codec
// name, artist, bitrate, ...) as a structure.
func NewTag(source Source, tags *value.Structure) *Message {
	return &Message{Type: TypeTag, Source: source, Sequence: nextSequence(), Structure: tags}
}

// NewBuffering builds a BUFFERING message reporting percent (0-100) of
// data ready to resume playback.
func NewBuffering(source Source, percent int) *Message {
	s := value.NewStructure("buffering")
	s.Set("percent", value.Int(int64(percent)))
	return &Message{Type: TypeBuffering, Source: source, Sequence: nextSequence(), Structure: s}
}

// NewStateChanged builds a STATE_CHANGED message reporting an element's
// old/new/pending state by name (avoids importing the element package).
func NewStateChanged(source Source, oldState, newState, pending string) *Message {
	s := value.NewStructure("state-changed")
	s.Set("old-state", value.String(oldState))
	s.Set("new-state", value.String(newState))
	s.Set("pending-state", value.String(pending))
	return &Message{Type: TypeStateChanged, Source: source, Sequence: nextSequence(), Structure: s}
}

// NewEOS builds an EOS (end-of-stream) message.
func NewEOS(source Source) *Message {
	return &Message{Type: TypeEOS, Source: source, Sequence: nextSequence(),
		Structure: value.NewStructure("eos")}
}

// NewStreamStatus builds a STREAM_STATUS message reporting a streaming
// thread's lifecycle transition (created/entered/left/destroyed).
func NewStreamStatus(source Source, statusType string) *Message {
	s := value.NewStructure("stream-status")
	s.Set("type", value.String(statusType))
	return &Message{Type: TypeStreamStatus, Source: source, Sequence: nextSequence(), Structure: s}
}

// NewApplication builds an APPLICATION message carrying an
// application-defined structure, for embedder-to-embedder communication
// through the bus without the library needing to know the payload shape.
func NewApplication(source Source, payload *value.Structure) *Message {
	return &Message{Type: TypeApplication, Source: source, Sequence: nextSequence(), Structure: payload}
}

// NewElement builds an ELEMENT message: a vendor/element-specific
// structure that does not fit any of the other kinds.
func NewElement(source Source, payload *value.Structure) *Message {
	return &Message{Type: TypeElement, Source: source, Sequence: nextSequence(), Structure: payload}
}

// NewDuration builds a DURATION message reporting a newly discovered or
// changed total stream duration, in nanoseconds; -1 means unknown.
func NewDuration(source Source, nanos int64) *Message {
	s := value.NewStructure("duration")
	s.Set("nanoseconds", value.Int(nanos))
	return &Message{Type: TypeDuration, Source: source, Sequence: nextSequence(), Structure: s}
}
