package element

import (
	"fmt"
	"sync"

	"github.com/flowgraph/core/bus"
	"github.com/flowgraph/core/flowerrors"
	"github.com/flowgraph/core/message"
)

// Bin is a container Element: it owns child elements and a Bus, and
// implements the graph-wide state-change traversal (children changed
// leaf-first going up in state, root-first going down) with worst-case
// result aggregation across children.
type Bin struct {
	Element

	mu       sync.Mutex
	children []Stateful
	Bus      *bus.Bus
}

// Stateful is anything SetState can be called on: a plain Element or a
// nested Bin, so a Bin's children slice can mix both without Bin needing
// two different child-tracking fields.
type Stateful interface {
	SetState(target State) StateChangeReturn
	State() State
}

// NewBin constructs an empty Bin named name, with its own Bus.
func NewBin(name string) *Bin {
	return &Bin{Element: *New(name), Bus: bus.New()}
}

// Add registers child as a member of this bin.
func (b *Bin) Add(child Stateful) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.children = append(b.children, child)
}

// Remove unregisters child from this bin, if present.
func (b *Bin) Remove(child Stateful) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for i, c := range b.children {
		if c == child {
			b.children = append(b.children[:i], b.children[i+1:]...)
			return
		}
	}
}

// Children returns the bin's current members in registration order.
func (b *Bin) Children() []Stateful {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]Stateful, len(b.children))
	copy(out, b.children)
	return out
}

// SetState drives every child to target before (when raising state) or
// after (when lowering state) driving the bin's own Element state,
// matching the leaf-first-up / root-first-down traversal order, then
// aggregates every child's result with the bin's own under
// Failure > NoPreroll > Async > Success.
func (b *Bin) SetState(target State) StateChangeReturn {
	prior := b.State()
	raising := target > prior
	children := b.Children()

	result := StateChangeSuccess

	if raising {
		for _, c := range children {
			result = worst(result, c.SetState(target))
		}
		result = worst(result, b.Element.SetState(target))
	} else {
		result = worst(result, b.Element.SetState(target))
		for _, c := range children {
			result = worst(result, c.SetState(target))
		}
	}

	if result == StateChangeFailure {
		b.Bus.Post(b.Element.ReportError(flowerrors.DomainCore, flowerrors.CodeCoreStateChange,
			"state change failed", fmt.Sprintf("bin %q failed to reach state %s", b.Name(), target)))
	} else {
		b.Bus.Post(message.NewStateChanged(&b.Element, prior.String(), b.State().String(), ""))
	}
	return result
}
