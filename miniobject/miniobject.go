// Package miniobject implements the shared refcount+copy+free base type
// that Buffer, Event and Message all embed, generalizing the teacher's
// value-with-identity record pattern into a single lifecycle primitive.
package miniobject

import "sync/atomic"

// Type tags which concrete kind a MiniObject belongs to, for logging and
// for Bus/Message dispatch that needs to distinguish object kinds without
// a type assertion at every call site.
type Type int

const (
	TypeInvalid Type = iota
	TypeBuffer
	TypeEvent
	TypeMessage
)

func (t Type) String() string {
	switch t {
	case TypeBuffer:
		return "buffer"
	case TypeEvent:
		return "event"
	case TypeMessage:
		return "message"
	default:
		return "invalid"
	}
}

// CopyFunc produces an independent duplicate of the owner's payload. The
// returned value replaces Data on the copy's MiniObject.
type CopyFunc func(data any) any

// FreeFunc releases any resources the owner's payload holds once the
// refcount reaches zero (e.g. returning a buffer to a pool).
type FreeFunc func(data any)

// MiniObject is an atomically refcounted, copy-on-write base. Owners embed
// it by value and set Data/Copy/Free once at construction.
type MiniObject struct {
	kind     Type
	refcount int32
	Data     any
	copyFn   CopyFunc
	freeFn   FreeFunc
}

// New constructs a MiniObject with an initial refcount of one.
func New(kind Type, data any, copyFn CopyFunc, freeFn FreeFunc) MiniObject {
	return MiniObject{kind: kind, refcount: 1, Data: data, copyFn: copyFn, freeFn: freeFn}
}

// Type returns the owner's declared kind.
func (m *MiniObject) Type() Type { return m.kind }

// Refcount returns the current reference count.
func (m *MiniObject) Refcount() int32 { return atomic.LoadInt32(&m.refcount) }

// Ref increments the refcount and returns the receiver, mirroring the
// teacher's fluent ref-then-pass idiom for shared handles.
func (m *MiniObject) Ref() *MiniObject {
	atomic.AddInt32(&m.refcount, 1)
	return m
}

// Unref decrements the refcount and invokes the free hook, if any, once it
// reaches zero. Returns true when this call triggered the free.
func (m *MiniObject) Unref() bool {
	if atomic.AddInt32(&m.refcount, -1) > 0 {
		return false
	}
	if m.freeFn != nil {
		m.freeFn(m.Data)
	}
	return true
}

// IsWritable reports whether the owner may mutate Data in place:
// refcount <= 1.
func (m *MiniObject) IsWritable() bool { return atomic.LoadInt32(&m.refcount) <= 1 }

// Copy returns a new MiniObject with its own refcount of one and a
// duplicated Data payload (via the registered Copy hook, or the same
// value if none was registered and the payload is safe to alias).
func (m *MiniObject) Copy() MiniObject {
	data := m.Data
	if m.copyFn != nil {
		data = m.copyFn(m.Data)
	}
	return MiniObject{kind: m.kind, refcount: 1, Data: data, copyFn: m.copyFn, freeFn: m.freeFn}
}

// MakeWritable returns m if it is already writable, or a fresh Copy
// otherwise — the standard copy-on-write gate used before any in-place
// mutation of shared buffer/event/message payloads.
func (m *MiniObject) MakeWritable() *MiniObject {
	if m.IsWritable() {
		return m
	}
	c := m.Copy()
	return &c
}
