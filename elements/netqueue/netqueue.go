// Package netqueue links two pipeline segments — possibly running in
// different processes — through a Redis-backed Pulse stream: Sink
// serializes and publishes every buffer pushed into it, and a Src on the
// consuming side subscribes and pushes each received buffer downstream,
// the closest Go analogue to an inter-process queue element. Grounded on
// the teacher's features/stream/pulse/{sink,subscriber}.go for the
// publish/NewSink/Subscribe/Ack shape; the wire envelope reuses
// bus/pulsebus's JSON-over-Redis convention, extended with a buffer's
// timing/caps metadata instead of a message's.
package netqueue

import (
	"context"
	"encoding/json"
	"fmt"

	"goa.design/pulse/streaming"

	"github.com/flowgraph/core/caps"
	"github.com/flowgraph/core/element"
	"github.com/flowgraph/core/pad"
)

// publisher narrows a Pulse stream to the one call Sink needs.
type publisher interface {
	Add(ctx context.Context, event string, payload []byte) (string, error)
}

// subscription narrows a Pulse sink (consumer group) to the calls Src
// needs, mirroring the teacher's clientspulse.Sink interface.
type subscription interface {
	Subscribe() <-chan *streaming.Event
	Ack(ctx context.Context, evt *streaming.Event) error
	Close(ctx context.Context)
}

// envelope is the wire form of a pad.Buffer.
type envelope struct {
	Data      []byte `json:"data"`
	Caps      string `json:"caps,omitempty"`
	Timestamp int64  `json:"timestamp"`
	Duration  int64  `json:"duration"`
	Offset    int64  `json:"offset"`
}

func encode(buf *pad.Buffer) ([]byte, error) {
	env := envelope{Data: buf.Data(), Timestamp: buf.Timestamp, Duration: buf.Duration, Offset: buf.Offset}
	if buf.Caps != nil {
		env.Caps = buf.Caps.String()
	}
	payload, err := json.Marshal(env)
	if err != nil {
		return nil, fmt.Errorf("netqueue: encode buffer: %w", err)
	}
	return payload, nil
}

func decode(payload []byte) (*pad.Buffer, error) {
	var env envelope
	if err := json.Unmarshal(payload, &env); err != nil {
		return nil, fmt.Errorf("netqueue: decode buffer: %w", err)
	}
	buf := pad.NewBuffer(env.Data)
	buf.Timestamp, buf.Duration, buf.Offset = env.Timestamp, env.Duration, env.Offset
	if env.Caps != "" {
		c, err := caps.Parse(env.Caps)
		if err != nil {
			return nil, fmt.Errorf("netqueue: decode caps: %w", err)
		}
		buf.Caps = c
	}
	return buf, nil
}

// Sink publishes every buffer pushed into it onto a Pulse stream under
// eventName; nothing flows further downstream locally, since the
// matching Src element on the consuming side is the buffer's real
// destination.
type Sink struct {
	*element.Element

	sink      *pad.Pad
	stream    publisher
	eventName string
	onError   func(error)
}

// NewSink builds a Sink publishing onto stream under eventName (defaults
// to "flowgraph.netqueue" when empty).
func NewSink(name string, stream publisher, eventName string) *Sink {
	if eventName == "" {
		eventName = "flowgraph.netqueue"
	}
	s := &Sink{Element: element.New(name), stream: stream, eventName: eventName}
	s.sink = pad.New("sink", pad.DirectionSink, pad.PresenceAlways, caps.Any())
	s.sink.Chain = s.chain
	s.AddPad(s.sink)
	return s
}

// OnPublishError installs a callback invoked whenever a publish fails; with
// or without it, a publish failure is reported back up the chain as
// FlowError.
func (s *Sink) OnPublishError(fn func(error)) { s.onError = fn }

func (s *Sink) chain(_ *pad.Pad, buf *pad.Buffer) pad.FlowReturn {
	payload, err := encode(buf)
	if err == nil {
		_, err = s.stream.Add(context.Background(), s.eventName, payload)
	}
	if err != nil {
		if s.onError != nil {
			s.onError(err)
		}
		return pad.FlowError
	}
	return pad.FlowOK
}

// Src reads buffers off a Pulse sink (consumer group) and pushes each one
// downstream, acking only after a successful push so a crashed
// downstream element leaves the buffer for redelivery.
type Src struct {
	*element.Element

	src *pad.Pad
	sub subscription
}

// NewSrc builds a Src consuming from sub.
func NewSrc(name string, sub subscription) *Src {
	s := &Src{Element: element.New(name), sub: sub}
	s.src = pad.New("src", pad.DirectionSrc, pad.PresenceAlways, caps.Any())
	s.AddPad(s.src)
	return s
}

// Run drains sub until ctx is done or the Pulse event channel closes,
// decoding and pushing each buffer downstream. Intended to run in its
// own goroutine; returns ctx.Err() on cancellation.
func (s *Src) Run(ctx context.Context) error {
	ch := s.sub.Subscribe()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case evt, ok := <-ch:
			if !ok {
				return nil
			}
			buf, err := decode(evt.Payload)
			if err != nil {
				continue
			}
			if ret := pad.Push(s.src, buf); !ret.IsSuccess() {
				continue
			}
			if err := s.sub.Ack(ctx, evt); err != nil {
				continue
			}
		}
	}
}

// Close releases the underlying Pulse sink.
func (s *Src) Close(ctx context.Context) { s.sub.Close(ctx) }
