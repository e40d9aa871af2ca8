// Package mlclassify is a filter element that hands each buffer it sees
// to a pluggable LLM-backed classifier and annotates the stream with the
// result: a TAG event sent downstream carrying the label/score, and an
// ELEMENT message posted to the bus for application-level consumption,
// before the buffer is pushed on unmodified. This is the expansion's one
// "do something with the data" element (spec.md's own elements are
// pass-through fakesrc/fakesink/identity style); Provider is grounded on
// the teacher's model.Client shape (features/model/anthropic/client.go,
// features/model/bedrock/client.go), and Anthropic/OpenAI/Bedrock are
// each a thin adapter around the teacher's respective SDK client per
// SPEC_FULL.md §9.
package mlclassify

import (
	"context"

	"github.com/flowgraph/core/bus"
	"github.com/flowgraph/core/caps"
	"github.com/flowgraph/core/element"
	"github.com/flowgraph/core/flowerrors"
	"github.com/flowgraph/core/message"
	"github.com/flowgraph/core/pad"
	"github.com/flowgraph/core/value"
)

// Result is one classification outcome.
type Result struct {
	Label string
	Score float64
}

// Provider classifies a buffer's raw bytes, narrowed to exactly the
// operation this element needs so each concrete SDK-backed
// implementation stays small, the same narrowing the teacher applies
// with its own MessagesClient/InvokeModelClient interfaces.
type Provider interface {
	Classify(ctx context.Context, data []byte) (Result, error)
}

// Filter classifies every buffer flowing through it and passes it on
// unchanged; it never drops or blocks the pipeline on a classification
// failure, only reports it.
type Filter struct {
	*element.Element

	sink *pad.Pad
	src  *pad.Pad

	provider Provider
	bus      *bus.Bus
}

// New constructs a named Filter backed by provider. If b is non-nil,
// classification results are also posted to it as ELEMENT messages.
func New(name string, provider Provider, b *bus.Bus) *Filter {
	f := &Filter{
		Element:  element.New(name),
		provider: provider,
		bus:      b,
	}
	f.sink = pad.New("sink", pad.DirectionSink, pad.PresenceAlways, caps.Any())
	f.src = pad.New("src", pad.DirectionSrc, pad.PresenceAlways, caps.Any())
	f.sink.Chain = f.chain
	f.sink.EventFn = func(_ *pad.Pad, ev *pad.Event) bool { return pad.SendEvent(f.src, ev) }
	f.AddPad(f.sink)
	f.AddPad(f.src)
	return f
}

func (f *Filter) chain(_ *pad.Pad, buf *pad.Buffer) pad.FlowReturn {
	ctx := context.Background()
	result, err := f.provider.Classify(ctx, buf.Data())
	if err != nil {
		if f.bus != nil {
			f.bus.Post(f.ReportError(flowerrors.DomainStream, flowerrors.CodeStreamFailed, "classification failed", err.Error()))
		}
	} else {
		tags := value.NewStructure("classification")
		tags.Set("label", value.String(result.Label))
		tags.Set("score", value.Double(result.Score))
		pad.SendEvent(f.src, pad.NewEvent(pad.EventTag, tags))
		if f.bus != nil {
			f.bus.Post(message.NewElement(f.Element, tags))
		}
	}
	return pad.Push(f.src, buf)
}
