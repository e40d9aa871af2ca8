// Package pulsebus is a bus.Bus-compatible transport that fans messages
// out across processes over a goa.design/pulse stream backed by Redis,
// the expansion's distributed Bus from SPEC_FULL.md §4.7/§9. Grounded on
// the teacher's features/stream/pulse/sink.go (Pulse stream publish
// pattern: build a Redis client, open a named stream, Add envelopes to
// it) and on registry/health_tracker.go's staleness threshold, exposed
// here as LivenessWindow for callers running their own ping/pong loop;
// pulsebus itself does not track whether remote peers are alive.
package pulsebus

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	streamopts "goa.design/pulse/streaming/options"

	"github.com/flowgraph/core/message"
	"github.com/flowgraph/core/value"
)

// Stream is the subset of a goa.design/pulse stream this package needs,
// narrowed the same way the teacher's pulse.Stream interface narrows the
// full Pulse streaming API to what one sink/subscriber pair requires.
type Stream interface {
	Add(ctx context.Context, event string, payload []byte) (string, error)
}

// envelope is the wire form of a message.Message: Structure is carried as
// its spec.md §6 textual-grammar serialization rather than inventing a
// parallel JSON codec for value.Structure.
type envelope struct {
	Type      uint32 `json:"type"`
	Source    string `json:"source"`
	Sequence  int64  `json:"sequence"`
	Structure string `json:"structure"`
}

// Bus publishes messages onto a Pulse stream instead of (or in addition
// to) an in-process FIFO, so application instances on different nodes can
// share one element graph's diagnostics stream. It does not itself
// consume messages back out of Pulse; the function Forward returns is
// what a local bus.Bus SyncHandler calls to publish each message.
type Bus struct {
	stream    Stream
	eventName string
	onError   func(error)
}

// New returns a Bus that publishes onto stream under eventName.
func New(stream Stream, eventName string) *Bus {
	if eventName == "" {
		eventName = "flowgraph.message"
	}
	return &Bus{stream: stream, eventName: eventName}
}

// OnPublishError installs a callback invoked whenever a publish fails;
// by default publish failures are silently dropped (a remote subscriber
// disappearing must never block the local graph).
func (b *Bus) OnPublishError(fn func(error)) { b.onError = fn }

// Publish serializes m and Adds it to the configured Pulse stream.
func (b *Bus) Publish(ctx context.Context, m *message.Message) error {
	env := envelope{
		Type:     uint32(m.Type),
		Source:   fmt.Sprintf("%v", m.Source),
		Sequence: m.Sequence,
	}
	if m.Structure != nil {
		env.Structure = value.Serialize(m.Structure)
	}
	payload, err := json.Marshal(env)
	if err != nil {
		return fmt.Errorf("pulsebus: marshal envelope: %w", err)
	}
	_, err = b.stream.Add(ctx, b.eventName, payload)
	return err
}

// Forward returns a bus.SyncHandler-shaped function (returning
// bus.SyncAction as a plain int, 0 being bus.Pass, so this package does
// not import bus) that publishes every message it sees and always passes it
// through to the local queue too, so a crashed remote subscriber never
// affects local delivery.
func (b *Bus) Forward(ctx context.Context) func(m *message.Message) int {
	return func(m *message.Message) int {
		if err := b.Publish(ctx, m); err != nil && b.onError != nil {
			b.onError(err)
		}
		return 0 // bus.Pass
	}
}

// Decode reverses Publish's envelope encoding, for a remote subscriber
// reading raw Pulse stream payloads back into a message.Message.
func Decode(payload []byte) (*message.Message, error) {
	var env envelope
	if err := json.Unmarshal(payload, &env); err != nil {
		return nil, fmt.Errorf("pulsebus: unmarshal envelope: %w", err)
	}
	m := &message.Message{
		Type:     message.Type(env.Type),
		Source:   env.Source,
		Sequence: env.Sequence,
	}
	if env.Structure != "" {
		s, err := value.Parse(env.Structure)
		if err != nil {
			return nil, fmt.Errorf("pulsebus: parse structure: %w", err)
		}
		m.Structure = s
	}
	return m, nil
}

// StreamOptionsFor returns reasonable default Pulse stream options for a
// Bus stream: bounded length so a quiet subscriber doesn't grow the
// stream unbounded, mirroring the teacher's StreamMaxLen option.
func StreamOptionsFor(maxLen int) []streamopts.Stream {
	if maxLen <= 0 {
		return nil
	}
	return []streamopts.Stream{streamopts.WithStreamMaxLen(maxLen)}
}

// livenessWindow is the default staleness threshold LivenessWindow
// returns, mirroring health_tracker.go's; pulsebus does not apply it to
// any peer itself.
const livenessWindow = 30 * time.Second

// LivenessWindow exposes the default staleness threshold used by
// callers implementing their own ping/pong loop on top of this Bus.
func LivenessWindow() time.Duration { return livenessWindow }
