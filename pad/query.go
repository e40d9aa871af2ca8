package pad

import "github.com/flowgraph/core/caps"

// QueryType tags what a Query is asking for.
type QueryType int

const (
	QueryCaps QueryType = iota
	QueryAcceptCaps
	QueryPosition
	QueryDuration
	QueryLatency
)

func (t QueryType) String() string {
	switch t {
	case QueryCaps:
		return "caps"
	case QueryAcceptCaps:
		return "accept-caps"
	case QueryPosition:
		return "position"
	case QueryDuration:
		return "duration"
	case QueryLatency:
		return "latency"
	default:
		return "unknown"
	}
}

// Query is a synchronous, two-way request/response travelling against the
// direction of data flow: a sink pad queries its upstream peer for caps,
// position, duration, or latency information.
type Query struct {
	Type QueryType

	// CapsFilter narrows a QueryCaps request to caps intersecting this
	// filter; nil means unfiltered.
	CapsFilter *caps.Caps

	// AcceptCapsCandidate is the caps a QueryAcceptCaps request is asking
	// about.
	AcceptCapsCandidate *caps.Caps

	// result fields, populated by whichever handler answers the query.
	ResultCaps     *caps.Caps
	ResultAccepted bool
	ResultPosition int64
	ResultDuration int64
	ResultLatency  int64
}

// NewCapsQuery builds a QueryCaps query optionally filtered by filter.
func NewCapsQuery(filter *caps.Caps) *Query {
	return &Query{Type: QueryCaps, CapsFilter: filter}
}

// NewAcceptCapsQuery builds a QueryAcceptCaps query asking about candidate.
func NewAcceptCapsQuery(candidate *caps.Caps) *Query {
	return &Query{Type: QueryAcceptCaps, AcceptCapsCandidate: candidate}
}

// NewPositionQuery builds a QueryPosition query.
func NewPositionQuery() *Query { return &Query{Type: QueryPosition} }

// NewDurationQuery builds a QueryDuration query.
func NewDurationQuery() *Query { return &Query{Type: QueryDuration} }

// NewLatencyQuery builds a QueryLatency query.
func NewLatencyQuery() *Query { return &Query{Type: QueryLatency} }
