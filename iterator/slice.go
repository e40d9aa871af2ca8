package iterator

import "sync"

// FromSlice builds an Iterator over a snapshot of items, sharing lock and
// masterCookie with whatever collection items was read from, so
// concurrent mutation of that collection correctly resyncs this iterator.
func FromSlice[T any](lock *sync.Mutex, masterCookie *uint32, items []T) *Iterator[T] {
	pos := 0
	next := func() (T, Result) {
		if pos >= len(items) {
			var zero T
			return zero, Done
		}
		v := items[pos]
		pos++
		return v, OK
	}
	resync := func() { pos = 0 }
	return New(lock, masterCookie, next, resync, nil)
}
