package netqueue

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"goa.design/pulse/streaming"

	"github.com/flowgraph/core/caps"
	"github.com/flowgraph/core/pad"
)

type fakePublisher struct {
	published [][]byte
	err       error
}

func (f *fakePublisher) Add(_ context.Context, _ string, payload []byte) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	f.published = append(f.published, payload)
	return "1-0", nil
}

func TestSinkPublishesEncodedBuffer(t *testing.T) {
	pub := &fakePublisher{}
	s := NewSink("net0", pub, "")

	buf := pad.NewBuffer([]byte("payload"))
	c, err := caps.Parse("application/octet-stream")
	require.NoError(t, err)
	buf.Caps = c

	ret := s.Pad("sink").Chain(s.Pad("sink"), buf)
	assert.Equal(t, pad.FlowOK, ret)
	require.Len(t, pub.published, 1)

	decoded, err := decode(pub.published[0])
	require.NoError(t, err)
	assert.Equal(t, []byte("payload"), decoded.Data())
}

func TestSinkReportsPublishError(t *testing.T) {
	pub := &fakePublisher{err: errors.New("redis down")}
	var reported error
	s := NewSink("net1", pub, "")
	s.OnPublishError(func(err error) { reported = err })

	ret := s.Pad("sink").Chain(s.Pad("sink"), pad.NewBuffer([]byte("x")))
	assert.Equal(t, pad.FlowError, ret)
	assert.Error(t, reported)
}

type fakeSubscription struct {
	events chan *streaming.Event
	acked  []*streaming.Event
	closed bool
}

func newFakeSubscription(payloads ...[]byte) *fakeSubscription {
	ch := make(chan *streaming.Event, len(payloads))
	for _, p := range payloads {
		ch <- &streaming.Event{Payload: p}
	}
	close(ch)
	return &fakeSubscription{events: ch}
}

func (f *fakeSubscription) Subscribe() <-chan *streaming.Event { return f.events }
func (f *fakeSubscription) Ack(_ context.Context, evt *streaming.Event) error {
	f.acked = append(f.acked, evt)
	return nil
}
func (f *fakeSubscription) Close(context.Context) { f.closed = true }

func TestSrcPushesDecodedBuffersAndAcks(t *testing.T) {
	buf := pad.NewBuffer([]byte("hello"))
	bufCaps, err := caps.Parse("application/octet-stream")
	require.NoError(t, err)
	buf.Caps = bufCaps
	payload, err := encode(buf)
	require.NoError(t, err)
	sub := newFakeSubscription(payload)

	src := NewSrc("net2", sub)

	var pushed []*pad.Buffer
	downstream := pad.New("in", pad.DirectionSink, pad.PresenceAlways, caps.Any())
	downstream.Chain = func(_ *pad.Pad, buf *pad.Buffer) pad.FlowReturn {
		pushed = append(pushed, buf)
		return pad.FlowOK
	}
	require.Equal(t, pad.LinkOK, pad.Link(src.Pad("src"), downstream))

	require.NoError(t, src.Run(context.Background()))
	require.Len(t, pushed, 1)
	assert.Equal(t, []byte("hello"), pushed[0].Data())
	assert.Len(t, sub.acked, 1)
}
