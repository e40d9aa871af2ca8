package pad

import (
	"testing"

	"github.com/flowgraph/core/caps"
	"github.com/flowgraph/core/value"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func rawCaps(fields ...value.Value) *caps.Caps {
	s := value.NewStructure("audio/raw")
	for i, f := range fields {
		s.Set(string(rune('a'+i)), f)
	}
	return caps.FromStructure(s)
}

func TestLinkAndUnlink(t *testing.T) {
	src := New("src", DirectionSrc, PresenceAlways, caps.Any())
	sink := New("sink", DirectionSink, PresenceAlways, caps.Any())

	require.Equal(t, LinkOK, Link(src, sink))
	assert.True(t, src.IsLinked())
	assert.Same(t, sink, src.Peer())
	assert.Same(t, src, sink.Peer())

	require.True(t, Unlink(src, sink))
	assert.False(t, src.IsLinked())
	assert.False(t, sink.IsLinked())
}

func TestLinkRejectsWrongDirection(t *testing.T) {
	a := New("a", DirectionSrc, PresenceAlways, caps.Any())
	b := New("b", DirectionSrc, PresenceAlways, caps.Any())
	assert.Equal(t, LinkWrongDirection, Link(a, b))
}

func TestLinkRejectsEmptyTemplateIntersection(t *testing.T) {
	src := New("src", DirectionSrc, PresenceAlways, rawCaps(value.Int(1)))
	sink := New("sink", DirectionSink, PresenceAlways, caps.New())
	assert.Equal(t, LinkNoFormat, Link(src, sink))
	assert.False(t, src.IsLinked())
}

func TestLinkHonorsLinkFnVeto(t *testing.T) {
	src := New("src", DirectionSrc, PresenceAlways, caps.Any())
	sink := New("sink", DirectionSink, PresenceAlways, caps.Any())
	sink.LinkFn = func(pad, peer *Pad) bool { return false }

	assert.Equal(t, LinkRefused, Link(src, sink))
	assert.False(t, src.IsLinked())
	assert.False(t, sink.IsLinked())
}

func TestPushDeliversToChainAndNegotiatesCaps(t *testing.T) {
	tmpl := rawCaps(value.Int(1))
	src := New("src", DirectionSrc, PresenceAlways, tmpl)
	sink := New("sink", DirectionSink, PresenceAlways, tmpl)
	require.Equal(t, LinkOK, Link(src, sink))

	var received *Buffer
	sink.Chain = func(pad *Pad, buf *Buffer) FlowReturn {
		received = buf
		return FlowOK
	}

	buf := NewBuffer([]byte("hello"))
	buf.Caps = rawCaps(value.Int(1))

	assert.Equal(t, FlowOK, Push(src, buf))
	assert.Same(t, buf, received)
	assert.NotNil(t, sink.CurrentCaps())
}

func TestPushFailsNegotiationWhenAcceptCapsRejects(t *testing.T) {
	tmpl := rawCaps(value.Int(1))
	src := New("src", DirectionSrc, PresenceAlways, tmpl)
	sink := New("sink", DirectionSink, PresenceAlways, tmpl)
	require.Equal(t, LinkOK, Link(src, sink))
	sink.AcceptCaps = func(pad *Pad, c *caps.Caps) bool { return false }

	buf := NewBuffer([]byte("x"))
	buf.Caps = rawCaps(value.Int(1))

	assert.Equal(t, FlowNotNegotiated, Push(src, buf))
}

func TestPushReturnsNotLinkedWithoutPeer(t *testing.T) {
	src := New("src", DirectionSrc, PresenceAlways, caps.Any())
	assert.Equal(t, FlowNotLinked, Push(src, NewBuffer(nil)))
}

func TestPullRangeDelegatesToPeerGetRange(t *testing.T) {
	src := New("src", DirectionSrc, PresenceAlways, caps.Any())
	sink := New("sink", DirectionSink, PresenceAlways, caps.Any())
	require.Equal(t, LinkOK, Link(src, sink))

	src.GetRange = func(pad *Pad, offset, size int64) (*Buffer, FlowReturn) {
		return NewBuffer([]byte("range")), FlowOK
	}

	buf, res := PullRange(sink, 0, 5)
	require.Equal(t, FlowOK, res)
	assert.Equal(t, []byte("range"), buf.Data())
}

func TestSendEventRoutesByDirectionality(t *testing.T) {
	src := New("src", DirectionSrc, PresenceAlways, caps.Any())
	sink := New("sink", DirectionSink, PresenceAlways, caps.Any())
	require.Equal(t, LinkOK, Link(src, sink))

	var gotOnSink bool
	sink.EventFn = func(pad *Pad, ev *Event) bool { gotOnSink = true; return true }

	eos := NewEvent(EventEOS, nil)
	assert.True(t, SendEvent(src, eos))
	assert.True(t, gotOnSink)

	var gotOnSrc bool
	src.EventFn = func(pad *Pad, ev *Event) bool { gotOnSrc = true; return true }
	seek := NewEvent(EventSeek, nil)
	assert.True(t, SendEvent(sink, seek))
	assert.True(t, gotOnSrc)

	assert.False(t, SendEvent(src, NewEvent(EventSeek, nil)))
}

func TestActivatePushAndPullAreMutuallyExclusive(t *testing.T) {
	p := New("p", DirectionSrc, PresenceAlways, caps.Any())
	p.GetRange = func(pad *Pad, offset, size int64) (*Buffer, FlowReturn) { return nil, FlowOK }

	require.True(t, ActivatePull(p, true))
	assert.Equal(t, ModePull, p.ActivationMode())

	require.True(t, ActivatePush(p, true))
	assert.Equal(t, ModePush, p.ActivationMode())
}

func TestActivatePullFailsWithoutGetRangeHook(t *testing.T) {
	p := New("p", DirectionSink, PresenceAlways, caps.Any())
	assert.False(t, ActivatePull(p, true))
}

func TestActivatePullRejectsSinkPadEvenWithGetRangeHook(t *testing.T) {
	p := New("p", DirectionSink, PresenceAlways, caps.Any())
	p.GetRange = func(pad *Pad, offset, size int64) (*Buffer, FlowReturn) { return nil, FlowOK }
	assert.False(t, ActivatePull(p, true))
	assert.Equal(t, ModeNone, p.ActivationMode())
}
