package bus

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flowgraph/core/message"
)

func TestPostThenPopFIFOOrder(t *testing.T) {
	b := New()
	b.Post(message.NewEOS("src1"))
	b.Post(message.NewEOS("src2"))

	m1, ok := b.PopNonBlocking()
	require.True(t, ok)
	m2, ok := b.PopNonBlocking()
	require.True(t, ok)
	assert.Equal(t, "src1", m1.Source)
	assert.Equal(t, "src2", m2.Source)
}

func TestSyncHandlerDrop(t *testing.T) {
	b := New()
	b.SetSyncHandler(func(m *message.Message) SyncAction { return Drop })
	posted := b.Post(message.NewEOS("src"))
	assert.False(t, posted)
	assert.Equal(t, 0, b.Len())
}

func TestSyncHandlerAsyncDoesNotQueue(t *testing.T) {
	b := New()
	b.SetSyncHandler(func(m *message.Message) SyncAction { return Async })
	b.Post(message.NewEOS("src"))
	assert.Equal(t, 0, b.Len())
}

func TestPopBlocksUntilPost(t *testing.T) {
	b := New()
	result := make(chan *message.Message, 1)
	go func() {
		m, _ := b.Pop(context.Background())
		result <- m
	}()
	time.Sleep(10 * time.Millisecond)
	b.Post(message.NewEOS("src"))

	select {
	case m := <-result:
		assert.Equal(t, "src", m.Source)
	case <-time.After(time.Second):
		t.Fatal("pop did not unblock on post")
	}
}

func TestPopFilteredSkipsNonMatching(t *testing.T) {
	b := New()
	b.Post(message.NewTag("src", nil))
	b.Post(message.NewEOS("src"))

	m, ok := b.PopFiltered(context.Background(), message.TypeEOS)
	require.True(t, ok)
	assert.Equal(t, message.TypeEOS, m.Type)
}

func TestSetFlushingDiscardsQueueAndUnblocksPop(t *testing.T) {
	b := New()
	b.Post(message.NewEOS("src"))
	b.SetFlushing(true)
	assert.Equal(t, 0, b.Len())

	_, ok := b.Pop(context.Background())
	assert.False(t, ok)
}
