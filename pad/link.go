package pad

import "github.com/flowgraph/core/caps"

// LinkReturn is the outcome of a Link attempt.
type LinkReturn int

const (
	LinkOK LinkReturn = iota
	LinkWrongDirection
	LinkWasLinked
	LinkNoFormat
	LinkRefused
)

func (r LinkReturn) String() string {
	switch r {
	case LinkOK:
		return "ok"
	case LinkWrongDirection:
		return "wrong-direction"
	case LinkWasLinked:
		return "was-linked"
	case LinkNoFormat:
		return "no-format"
	case LinkRefused:
		return "refused"
	default:
		return "unknown"
	}
}

// Link connects src (a Direction Src pad) to sink (a Direction Sink pad).
// It requires both pads currently unlinked, opposite directions, and a
// non-empty intersection of their template caps; each side's LinkFn, if
// set, gets a final veto. On any rejection after the peer references are
// taken, the link is rolled back on both pads.
func Link(src, sink *Pad) LinkReturn {
	if src.Direction() != DirectionSrc || sink.Direction() != DirectionSink {
		return LinkWrongDirection
	}

	src.mu.Lock()
	sink.mu.Lock()
	if src.peer != nil || sink.peer != nil {
		sink.mu.Unlock()
		src.mu.Unlock()
		return LinkWasLinked
	}
	sink.mu.Unlock()
	src.mu.Unlock()

	intersection := caps.Intersect(src.TemplateCaps(), sink.TemplateCaps())
	if intersection.IsEmpty() {
		return LinkNoFormat
	}

	src.mu.Lock()
	src.peer = sink
	src.mu.Unlock()
	sink.mu.Lock()
	sink.peer = src
	sink.mu.Unlock()

	if src.LinkFn != nil && !src.LinkFn(src, sink) {
		unlinkPeers(src, sink)
		return LinkRefused
	}
	if sink.LinkFn != nil && !sink.LinkFn(sink, src) {
		unlinkPeers(src, sink)
		return LinkRefused
	}
	return LinkOK
}

// Unlink disconnects src from sink, invoking each pad's UnlinkFn if set.
// Returns false if the two pads were not linked to each other.
func Unlink(src, sink *Pad) bool {
	src.mu.Lock()
	linked := src.peer == sink
	src.mu.Unlock()
	if !linked {
		return false
	}
	unlinkPeers(src, sink)
	if src.UnlinkFn != nil {
		src.UnlinkFn(src)
	}
	if sink.UnlinkFn != nil {
		sink.UnlinkFn(sink)
	}
	return true
}

func unlinkPeers(src, sink *Pad) {
	src.mu.Lock()
	src.peer = nil
	src.currentCaps = nil
	src.mu.Unlock()
	sink.mu.Lock()
	sink.peer = nil
	sink.currentCaps = nil
	sink.mu.Unlock()
}

// negotiate runs the caps-negotiation protocol for proposed against sink's
// AcceptCaps hook (step 2: "downstream's accept_caps hook validates the
// proposal"), and on acceptance records proposed as the current caps on
// both ends of the link (step 1/4: upstream proposes, both sides settle on
// the agreed caps once accepted).
func negotiate(src, sink *Pad, proposed *caps.Caps) bool {
	if sink.AcceptCaps != nil && !sink.AcceptCaps(sink, proposed) {
		return false
	}
	if !caps.IsSubsetOf(proposed, sink.TemplateCaps()) {
		return false
	}
	src.mu.Lock()
	src.currentCaps = proposed
	src.mu.Unlock()
	sink.mu.Lock()
	sink.currentCaps = proposed
	sink.mu.Unlock()
	return true
}

// Push delivers buf from src to its linked sink peer, triggering caps
// (re)negotiation first whenever buf carries caps that differ from the
// link's currently agreed caps (step 3: "either side may trigger
// renegotiation by pushing a buffer whose caps differ from the
// currently-agreed caps"). Returns NotLinked if src has no peer.
func Push(src *Pad, buf *Buffer) FlowReturn {
	sink := src.Peer()
	if sink == nil {
		return FlowNotLinked
	}
	if buf.Caps != nil {
		current := src.CurrentCaps()
		if current == nil || !current.IsFixed() || current.String() != buf.Caps.String() {
			if !negotiate(src, sink, buf.Caps) {
				return FlowNotNegotiated
			}
		}
	} else if src.CurrentCaps() == nil {
		return FlowNotNegotiated
	}
	if sink.Chain == nil {
		return FlowNotSupported
	}
	return sink.Chain(sink, buf)
}

// PullRange requests size bytes at offset from sink's linked src peer via
// its GetRange hook. Returns NotLinked if sink has no peer, NotSupported
// if the peer exposes no GetRange hook.
func PullRange(sink *Pad, offset, size int64) (*Buffer, FlowReturn) {
	src := sink.Peer()
	if src == nil {
		return nil, FlowNotLinked
	}
	if src.GetRange == nil {
		return nil, FlowNotSupported
	}
	return src.GetRange(src, offset, size)
}

// SendEvent routes ev to pad's linked peer if its directionality flags
// permit travel across this link (an event pushed through Send must be
// upstream-flagged to travel from a sink back to its src peer, or
// downstream-flagged to travel from a src to its sink peer), then invokes
// the peer's EventFn. Returns false if unlinked, misdirected, or
// unhandled.
func SendEvent(pad *Pad, ev *Event) bool {
	peer := pad.Peer()
	if peer == nil {
		return false
	}
	switch pad.Direction() {
	case DirectionSrc:
		if !ev.IsDownstream() {
			return false
		}
	case DirectionSink:
		if !ev.IsUpstream() {
			return false
		}
	}
	if peer.EventFn == nil {
		return false
	}
	return peer.EventFn(peer, ev)
}

// SendQuery routes q to pad's linked peer via its QueryFn. Returns false
// if unlinked or unhandled.
func SendQuery(pad *Pad, q *Query) bool {
	peer := pad.Peer()
	if peer == nil {
		return false
	}
	if peer.QueryFn == nil {
		return false
	}
	return peer.QueryFn(peer, q)
}

// ActivatePush switches pad into (or out of) push-mode activation.
// Activating while pull-active first deactivates pull mode, mirroring the
// mutual exclusion of the two activation modes.
func ActivatePush(pad *Pad, active bool) bool {
	pad.mu.Lock()
	defer pad.mu.Unlock()
	if !active {
		if pad.mode == ModePush {
			pad.mode = ModeNone
		}
		return true
	}
	pad.mode = ModePush
	return true
}

// ActivatePull switches pad into (or out of) pull-mode activation,
// requiring a GetRange hook to succeed. Sink pads are push-only and
// always fail to activate pull mode, regardless of GetRange. On failure
// to activate pull mode, callers should fall back to ActivatePush.
func ActivatePull(pad *Pad, active bool) bool {
	pad.mu.Lock()
	defer pad.mu.Unlock()
	if !active {
		if pad.mode == ModePull {
			pad.mode = ModeNone
		}
		return true
	}
	if pad.direction == DirectionSink {
		return false
	}
	if pad.GetRange == nil {
		return false
	}
	pad.mode = ModePull
	return true
}
