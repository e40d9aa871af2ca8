package pad

import (
	"github.com/flowgraph/core/caps"
	"github.com/flowgraph/core/miniobject"
)

// Buffer is a refcounted byte-region payload with timing metadata,
// embedding miniobject.MiniObject for the shared refcount/copy/free
// lifecycle spec.md §3 describes ("subtype of MiniObject").
type Buffer struct {
	miniobject.MiniObject

	Timestamp int64 // nanoseconds; -1 means unset
	Duration  int64 // nanoseconds; -1 means unknown
	Offset    int64 // media-position offset; -1 means unset
	Caps      *caps.Caps
}

// NewBuffer wraps data in a Buffer with an initial refcount of one. Copying
// duplicates the byte slice so two buffers never alias the same backing
// array after a copy-on-write split.
func NewBuffer(data []byte) *Buffer {
	b := &Buffer{Timestamp: -1, Duration: -1, Offset: -1}
	copyFn := func(d any) any {
		src := d.([]byte)
		dup := make([]byte, len(src))
		copy(dup, src)
		return dup
	}
	b.MiniObject = miniobject.New(miniobject.TypeBuffer, data, copyFn, nil)
	return b
}

// Data returns the underlying byte slice. Callers must not mutate it
// unless IsWritable() (i.e. MakeWritable was called first).
func (b *Buffer) Data() []byte { return b.MiniObject.Data.([]byte) }

// MakeWritable returns b if it is exclusively owned, or a copy otherwise,
// matching the copy-on-write discipline spec.md §3 requires for shared
// buffers.
func (b *Buffer) MakeWritable() *Buffer {
	if b.IsWritable() {
		return b
	}
	cp := b.MiniObject.Copy()
	return &Buffer{MiniObject: cp, Timestamp: b.Timestamp, Duration: b.Duration, Offset: b.Offset, Caps: b.Caps}
}

// Copy returns an independent duplicate with its own refcount of one.
func (b *Buffer) Copy() *Buffer {
	cp := b.MiniObject.Copy()
	return &Buffer{MiniObject: cp, Timestamp: b.Timestamp, Duration: b.Duration, Offset: b.Offset, Caps: b.Caps}
}
