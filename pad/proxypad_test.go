package pad

import (
	"testing"

	"github.com/flowgraph/core/caps"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProxyPadForwardsToTarget(t *testing.T) {
	real := New("real", DirectionSrc, PresenceAlways, caps.Any())
	proxy := NewProxyPad("proxy", DirectionSrc, caps.Any())
	proxy.SetTarget(real)

	sink := New("sink", DirectionSink, PresenceAlways, caps.Any())
	require.Equal(t, LinkOK, Link(real, sink))

	var got *Buffer
	sink.Chain = func(pad *Pad, buf *Buffer) FlowReturn { got = buf; return FlowOK }

	buf := NewBuffer([]byte("proxied"))
	buf.Caps = caps.Any()
	assert.Equal(t, FlowOK, proxy.Forward(buf))
	assert.Same(t, buf, got)
}

func TestProxyPadWithoutTargetReturnsNotLinked(t *testing.T) {
	proxy := NewProxyPad("proxy", DirectionSrc, caps.Any())
	assert.Equal(t, FlowNotLinked, proxy.Forward(NewBuffer(nil)))
}
