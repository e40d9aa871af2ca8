package mlclassify

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flowgraph/core/bus"
	"github.com/flowgraph/core/caps"
	"github.com/flowgraph/core/message"
	"github.com/flowgraph/core/pad"
)

type fakeProvider struct {
	result Result
	err    error
}

func (f fakeProvider) Classify(context.Context, []byte) (Result, error) { return f.result, f.err }

func sinkCollector(pushed *[]*pad.Buffer) *pad.Pad {
	p := pad.New("in", pad.DirectionSink, pad.PresenceAlways, caps.Any())
	p.Chain = func(_ *pad.Pad, buf *pad.Buffer) pad.FlowReturn {
		*pushed = append(*pushed, buf)
		return pad.FlowOK
	}
	return p
}

func TestClassifyTagsAndForwardsBuffer(t *testing.T) {
	b := bus.New()
	f := New("classify0", fakeProvider{result: Result{Label: "speech", Score: 0.9}}, b)

	var pushed []*pad.Buffer
	downstream := sinkCollector(&pushed)
	require.Equal(t, pad.LinkOK, pad.Link(f.Pad("src"), downstream))

	buf := pad.NewBuffer([]byte("hello"))
	bufCaps, err := caps.Parse("application/octet-stream")
	require.NoError(t, err)
	buf.Caps = bufCaps
	ret := f.Pad("sink").Chain(f.Pad("sink"), buf)
	assert.Equal(t, pad.FlowOK, ret)
	require.Len(t, pushed, 1)
	assert.Same(t, buf, pushed[0])

	m, ok := b.PopNonBlocking()
	require.True(t, ok)
	assert.True(t, m.Matches(message.TypeElement))
}

func TestClassifyFailurePostsErrorButStillForwards(t *testing.T) {
	b := bus.New()
	f := New("classify1", fakeProvider{err: errors.New("provider down")}, b)

	var pushed []*pad.Buffer
	downstream := sinkCollector(&pushed)
	require.Equal(t, pad.LinkOK, pad.Link(f.Pad("src"), downstream))

	buf := pad.NewBuffer([]byte("hello"))
	bufCaps, err := caps.Parse("application/octet-stream")
	require.NoError(t, err)
	buf.Caps = bufCaps
	ret := f.Pad("sink").Chain(f.Pad("sink"), buf)
	assert.Equal(t, pad.FlowOK, ret)
	require.Len(t, pushed, 1)

	m, ok := b.PopNonBlocking()
	require.True(t, ok)
	assert.True(t, m.Matches(message.TypeError))
}
