package pad

import (
	"sync/atomic"

	"github.com/flowgraph/core/caps"
)

// ProxyPad is a Pad whose operations forward to a separately-owned target
// Pad, reacquired atomically on every call so the target can be swapped
// (or cleared) without synchronizing with in-flight forwards. It is the
// base GhostPad builds its composition-boundary crossing on.
type ProxyPad struct {
	Pad

	target atomic.Pointer[Pad]
}

// NewProxyPad builds a ProxyPad with the given direction, initially
// pointing at no target.
func NewProxyPad(name string, direction Direction, templateCaps *caps.Caps) *ProxyPad {
	return &ProxyPad{Pad: *New(name, direction, PresenceAlways, templateCaps)}
}

// SetTarget atomically repoints the proxy at target (nil clears it) and
// rewires this pad's Chain/GetRange/EventFn/QueryFn/AcceptCaps hooks to
// call straight through to target's corresponding hook, the same
// SETFUNC-on-set-target discipline as the ground truth's
// gst_proxy_pad_set_target_unlocked: a sink-direction proxy gets Chain
// wired, a src-direction proxy gets GetRange wired, and EventFn/QueryFn/
// AcceptCaps are wired regardless of direction. This makes the ordinary
// dispatch path (Push/PullRange/SendEvent/SendQuery/AcceptCaps) reach the
// target transparently, with no second call surface required.
func (p *ProxyPad) SetTarget(target *Pad) {
	p.target.Store(target)
	if target == nil {
		return
	}
	if p.Direction() == DirectionSink {
		p.Chain = func(_ *Pad, buf *Buffer) FlowReturn {
			t := p.Target()
			if t == nil {
				return FlowNotLinked
			}
			if t.Chain == nil {
				return FlowNotSupported
			}
			return t.Chain(t, buf)
		}
	} else {
		p.GetRange = func(_ *Pad, offset, size int64) (*Buffer, FlowReturn) {
			t := p.Target()
			if t == nil {
				return nil, FlowNotLinked
			}
			if t.GetRange == nil {
				return nil, FlowNotSupported
			}
			return t.GetRange(t, offset, size)
		}
	}
	p.EventFn = func(_ *Pad, ev *Event) bool {
		t := p.Target()
		return t != nil && t.EventFn != nil && t.EventFn(t, ev)
	}
	p.QueryFn = func(_ *Pad, q *Query) bool {
		t := p.Target()
		return t != nil && t.QueryFn != nil && t.QueryFn(t, q)
	}
	p.AcceptCaps = func(_ *Pad, c *caps.Caps) bool {
		t := p.Target()
		if t == nil {
			return false
		}
		if t.AcceptCaps != nil {
			return t.AcceptCaps(t, c)
		}
		return caps.IsSubsetOf(c, t.TemplateCaps())
	}
}

// Target returns the pad currently being proxied to, or nil.
func (p *ProxyPad) Target() *Pad { return p.target.Load() }

// Forward delivers buf to the target pad in place of this proxy,
// returning NotLinked if no target is currently set. A sink-direction
// target receives buf directly via its Chain hook, the same delegation
// SetTarget wires into this pad's own Chain; a src-direction target has
// no Chain to call into, so buf is pushed from it via its own real peer
// link instead (Pad.Push), letting a caller simulate that target itself
// produced buf without needing a pointer to the owning element.
func (p *ProxyPad) Forward(buf *Buffer) FlowReturn {
	t := p.Target()
	if t == nil {
		return FlowNotLinked
	}
	if t.Direction() == DirectionSink {
		if t.Chain == nil {
			return FlowNotSupported
		}
		return t.Chain(t, buf)
	}
	return Push(t, buf)
}

// ForwardEvent delivers ev to the target pad in place of this proxy.
func (p *ProxyPad) ForwardEvent(ev *Event) bool {
	t := p.Target()
	return t != nil && t.EventFn != nil && t.EventFn(t, ev)
}

// ForwardQuery delivers q to the target pad in place of this proxy.
func (p *ProxyPad) ForwardQuery(q *Query) bool {
	t := p.Target()
	return t != nil && t.QueryFn != nil && t.QueryFn(t, q)
}
