package pad

// GhostPad exposes a pad belonging to an element nested inside a bin as if
// it were a pad of the bin itself, crossing the composition boundary by
// pairing an external-facing pad (same direction as the exposed pad, so
// it can be linked into the outer graph like any other pad) with an
// internal ProxyPad whose target is the real pad being exposed.
type GhostPad struct {
	ProxyPad

	internal *ProxyPad
}

// NewGhostPad builds a GhostPad exposing target (a pad belonging to an
// element nested in a bin) at the bin's boundary, taking on target's
// direction. External links made to the ghost pad transparently reach
// target through the internal proxy: SetTarget wires each pad's
// Chain/GetRange/EventFn/QueryFn/AcceptCaps to call straight through to
// its own target (the ghost's target is the internal proxy, the internal
// proxy's target is target itself), so ordinary Push/PullRange/SendEvent/
// SendQuery/AcceptCaps dispatch crosses the boundary in two direct hops
// with no bespoke call surface needed, mirroring
// gst_proxy_pad_set_target_unlocked's SETFUNC pattern.
//
// The internal proxy and target are deliberately not joined with a real
// Link(): ground truth only does that (gst_ghost_pad_do_link) when an
// outside peer is linked to the ghost, pairing a *new* internal pad of
// the peer's (opposite) direction against target — a dynamic, per-link
// pad this simplified model doesn't allocate. Giving internal a fixed
// opposite-of-target direction here instead would make a same-named
// direction pair ("sink pads are push-only") reject pull activation on
// exactly the src-target case ActivatePullGhost exists for, trading one
// correctness bug for another.
func NewGhostPad(name string, target *Pad) *GhostPad {
	tmpl := target.TemplateCaps()
	g := &GhostPad{ProxyPad: *NewProxyPad(name, target.Direction(), tmpl)}
	g.internal = NewProxyPad(name+":internal", target.Direction(), tmpl)
	g.internal.SetTarget(target)
	g.SetTarget(&g.internal.Pad)
	return g
}

// Internal returns the internal-facing proxy pad paired with this ghost.
func (g *GhostPad) Internal() *ProxyPad { return g.internal }

// LinkInternal re-points the ghost's internal proxy at a new target pad
// inside the bin, without affecting any external link already made to the
// ghost pad itself.
func (g *GhostPad) LinkInternal(target *Pad) {
	g.internal.SetTarget(target)
}

// ActivatePushGhost activates both the external ghost pad and its paired
// internal proxy in push mode, since a data-flow activation must cross
// the composition boundary atomically from the caller's point of view.
func ActivatePushGhost(g *GhostPad, active bool) bool {
	if !ActivatePush(&g.Pad, active) {
		return false
	}
	return ActivatePush(&g.internal.Pad, active)
}

// ActivatePullGhost activates both the external ghost pad and its paired
// internal proxy in pull mode.
func ActivatePullGhost(g *GhostPad, active bool) bool {
	if !ActivatePull(&g.Pad, active) {
		return false
	}
	return ActivatePull(&g.internal.Pad, active)
}
