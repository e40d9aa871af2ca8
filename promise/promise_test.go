package promise

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReplyDeliversValue(t *testing.T) {
	p := New[int]()
	go p.Reply(42)
	result, v := p.Wait(context.Background())
	assert.Equal(t, Replied, result)
	assert.Equal(t, 42, v)
}

func TestFirstSettleWins(t *testing.T) {
	p := New[int]()
	p.Reply(1)
	p.Interrupt()
	assert.Equal(t, Replied, p.Result())
	v, ok := p.Value()
	require.True(t, ok)
	assert.Equal(t, 1, v)
}

func TestWaitHonorsContextCancellation(t *testing.T) {
	p := New[int]()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	result, _ := p.Wait(ctx)
	assert.Equal(t, Pending, result)
}

func TestChangeFuncInvokedOnSettle(t *testing.T) {
	called := make(chan Result, 1)
	p := NewWithChangeFunc(func(p *Promise[string]) {
		called <- p.Result()
	})
	p.Expire()
	select {
	case r := <-called:
		assert.Equal(t, Expired, r)
	case <-time.After(time.Second):
		t.Fatal("change func not invoked")
	}
}
