package iterator

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestForeachVisitsAllElements(t *testing.T) {
	var lock sync.Mutex
	cookie := uint32(0)
	it := FromSlice(&lock, &cookie, []int{1, 2, 3})

	var seen []int
	res := it.Foreach(func(v int) { seen = append(seen, v) }, 3)
	assert.Equal(t, Done, res)
	assert.Equal(t, []int{1, 2, 3}, seen)
}

func TestNextReportsResyncAfterMutation(t *testing.T) {
	var lock sync.Mutex
	cookie := uint32(0)
	it := FromSlice(&lock, &cookie, []int{1, 2, 3})

	v, res := it.Next()
	assert.Equal(t, OK, res)
	assert.Equal(t, 1, v)

	cookie++ // simulate a mutation to the backing collection
	_, res = it.Next()
	assert.Equal(t, Resync, res)

	it.Resync()
	v, res = it.Next()
	assert.Equal(t, OK, res)
	assert.Equal(t, 1, v)
}

func TestFilterYieldsOnlyMatchingElements(t *testing.T) {
	var lock sync.Mutex
	cookie := uint32(0)
	it := FromSlice(&lock, &cookie, []int{1, 2, 3, 4, 5, 6})

	evens := Filter(it, func(v int) bool { return v%2 == 0 })

	var seen []int
	res := evens.Foreach(func(v int) { seen = append(seen, v) }, 3)
	assert.Equal(t, Done, res)
	assert.Equal(t, []int{2, 4, 6}, seen)
}

func TestFilterPropagatesResyncFromUnderlyingIterator(t *testing.T) {
	var lock sync.Mutex
	cookie := uint32(0)
	it := FromSlice(&lock, &cookie, []int{1, 2, 3, 4})
	evens := Filter(it, func(v int) bool { return v%2 == 0 })

	v, res := evens.Next()
	assert.Equal(t, OK, res)
	assert.Equal(t, 2, v)

	cookie++ // simulate a mutation to the backing collection
	_, res = evens.Next()
	assert.Equal(t, Resync, res)

	evens.Resync()
	v, res = evens.Next()
	assert.Equal(t, OK, res)
	assert.Equal(t, 2, v)
}

func TestFindCustomLocatesMatch(t *testing.T) {
	var lock sync.Mutex
	cookie := uint32(0)
	it := FromSlice(&lock, &cookie, []int{1, 2, 3, 4})

	v, ok := FindCustom(it, func(v int) bool { return v%2 == 0 }, 3)
	assert.True(t, ok)
	assert.Equal(t, 2, v)
}
