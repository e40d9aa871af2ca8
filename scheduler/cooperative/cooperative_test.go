package cooperative

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flowgraph/core/action"
	"github.com/flowgraph/core/caps"
	"github.com/flowgraph/core/element"
	"github.com/flowgraph/core/pad"
)

// TestSchedulerFairness exercises spec.md §8 scenario 5: a source produces
// one buffer per wakeup, a sink consumes and counts; after N wakeups the
// sink has received exactly N buffers.
func TestSchedulerFairness(t *testing.T) {
	const n = 20

	src := element.New("src")
	sink := element.New("sink")

	srcPad := pad.New("out", pad.DirectionSrc, pad.PresenceAlways, caps.Any())
	sinkPad := pad.New("in", pad.DirectionSink, pad.PresenceAlways, caps.Any())
	src.AddPad(srcPad)
	sink.AddPad(sinkPad)
	require.Equal(t, pad.LinkOK, pad.Link(srcPad, sinkPad))

	sched := New()

	var produced int32
	var consumed int32
	done := make(chan struct{})

	wake := action.NewWakeup(src, true, func(a *action.Action) {
		count := atomic.AddInt32(&produced, 1)
		if count > n {
			a.SetActive(false)
			sched.ToggleActive(a)
			return
		}
		sched.PadPush(srcPad, pad.NewBuffer([]byte{byte(count)}))
	}, nil)
	require.NoError(t, sched.AddAction(wake))

	sinkAction := action.NewSinkPad(sink, "in", true, func(a *action.Action, data any) {
		if data == nil {
			return
		}
		c := atomic.AddInt32(&consumed, 1)
		if c == n {
			close(done)
		}
	})
	require.NoError(t, sched.AddAction(sinkAction))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go sched.Run(ctx)

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatalf("timed out: produced=%d consumed=%d", produced, consumed)
	}

	assert.Equal(t, int32(n), atomic.LoadInt32(&consumed))
	sched.Stop()
}

// TestUnlinkFlushesQueueAndPostsEOS exercises the scheduler invariant from
// spec.md §4.6: a buffer queued for a consumer that then gets unlinked is
// dropped and replaced with an EOS event, rather than silently lost.
func TestUnlinkFlushesQueueAndPostsEOS(t *testing.T) {
	src := element.New("src")
	sink := element.New("sink")

	srcPad := pad.New("out", pad.DirectionSrc, pad.PresenceAlways, caps.Any())
	sinkPad := pad.New("in", pad.DirectionSink, pad.PresenceAlways, caps.Any())
	src.AddPad(srcPad)
	sink.AddPad(sinkPad)
	require.Equal(t, pad.LinkOK, pad.Link(srcPad, sinkPad))

	var gotEOS bool
	sinkPad.EventFn = func(p *pad.Pad, ev *pad.Event) bool {
		if ev.Type == pad.EventEOS {
			gotEOS = true
		}
		return true
	}

	sched := New()
	sinkAction := action.NewSinkPad(sink, "in", true, func(a *action.Action, data any) {})
	require.NoError(t, sched.AddAction(sinkAction))

	require.Equal(t, pad.FlowOK, sched.PadPush(srcPad, pad.NewBuffer([]byte("queued"))))

	require.True(t, pad.Unlink(srcPad, sinkPad))
	assert.True(t, gotEOS)
}
