// Package mongobus is a durable archive sink for Bus messages: every
// message posted to a local bus.Bus is also appended to a MongoDB
// collection, so a crashed pipeline can be debugged after the fact from
// its last N diagnostics instead of only from whatever made it to a
// live subscriber. Grounded on the teacher's features/run/mongo/store.go
// and features/run/mongo/clients/mongo/client.go (client-wrapping-a-
// narrow-interface, Options{Client}, ensureIndexes-on-New pattern),
// using go.mongodb.org/mongo-driver/v2 in place of the teacher's v1
// driver per SPEC_FULL.md §9's newer Mongo driver pairing.
package mongobus

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
	"go.mongodb.org/mongo-driver/v2/mongo/readpref"

	"github.com/flowgraph/core/message"
	"github.com/flowgraph/core/value"
)

const (
	defaultCollection = "flowgraph_messages"
	defaultOpTimeout   = 5 * time.Second
)

// record is the archived, on-disk form of a message.Message. Structure is
// stored as its spec.md §6 textual-grammar serialization, the same choice
// bus/pulsebus makes, rather than a second structured encoding of
// value.Structure.
type record struct {
	Type      uint32    `bson:"type"`
	Source    string    `bson:"source"`
	Sequence  int64     `bson:"sequence"`
	Structure string    `bson:"structure,omitempty"`
	ArchivedAt time.Time `bson:"archived_at"`
}

// collection is the subset of *mongo.Collection this package needs,
// narrowed so a test can swap in a fake the way the teacher's
// client_test.go does.
type collection interface {
	InsertOne(ctx context.Context, document any, opts ...options.Lister[options.InsertOneOptions]) (*mongo.InsertOneResult, error)
	Find(ctx context.Context, filter any, opts ...options.Lister[options.FindOptions]) (*mongo.Cursor, error)
	Indexes() mongo.IndexView
}

// Options configures a Sink.
type Options struct {
	Client     *mongo.Client
	Database   string
	Collection string
	Timeout    time.Duration
}

// Sink archives every message it sees into MongoDB. Install it as a
// bus.Bus SyncHandler via Forward to mirror local delivery into durable
// storage without affecting it.
type Sink struct {
	coll    collection
	timeout time.Duration
	onError func(error)
}

// New returns a Sink backed by MongoDB.
func New(opts Options) (*Sink, error) {
	if opts.Client == nil {
		return nil, errors.New("mongobus: client is required")
	}
	if opts.Database == "" {
		return nil, errors.New("mongobus: database name is required")
	}
	collName := opts.Collection
	if collName == "" {
		collName = defaultCollection
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = defaultOpTimeout
	}
	mcoll := opts.Client.Database(opts.Database).Collection(collName)
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	if err := ensureIndexes(ctx, mcoll); err != nil {
		return nil, err
	}
	return &Sink{coll: mcoll, timeout: timeout}, nil
}

// newWithCollection is used by tests to inject a fake collection.
func newWithCollection(coll collection, timeout time.Duration) *Sink {
	if timeout <= 0 {
		timeout = defaultOpTimeout
	}
	return &Sink{coll: coll, timeout: timeout}
}

func ensureIndexes(ctx context.Context, coll collection) error {
	_, err := coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "sequence", Value: 1}},
	})
	return err
}

// OnArchiveError installs a callback invoked whenever an archive insert
// fails; by default failures are silently dropped, since a broken
// archive sink must never block the local graph's live message delivery.
func (s *Sink) OnArchiveError(fn func(error)) { s.onError = fn }

// Archive inserts m into the backing collection.
func (s *Sink) Archive(ctx context.Context, m *message.Message) error {
	rec := record{
		Type:       uint32(m.Type),
		Sequence:   m.Sequence,
		ArchivedAt: time.Now(),
	}
	if src, ok := m.Source.(string); ok {
		rec.Source = src
	}
	if m.Structure != nil {
		rec.Structure = value.Serialize(m.Structure)
	}
	opCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	_, err := s.coll.InsertOne(opCtx, rec)
	return err
}

// Forward returns a bus.SyncHandler-shaped function (plain func returning
// an int, 0 being bus.Pass, like bus/pulsebus.Forward) that archives every message
// and always passes it through to the local queue too.
func (s *Sink) Forward(ctx context.Context) func(m *message.Message) int {
	return func(m *message.Message) int {
		if err := s.Archive(ctx, m); err != nil && s.onError != nil {
			s.onError(err)
		}
		return 0 // bus.Pass
	}
}

// Tail returns up to limit of the most recently archived messages,
// oldest first, for post-mortem inspection of a crashed pipeline.
func (s *Sink) Tail(ctx context.Context, limit int64) ([]*message.Message, error) {
	opCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	findOpts := options.Find().SetSort(bson.D{{Key: "sequence", Value: -1}}).SetLimit(limit)
	cur, err := s.coll.Find(opCtx, bson.D{}, findOpts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(opCtx)
	var recs []record
	if err := cur.All(opCtx, &recs); err != nil {
		return nil, err
	}
	out := make([]*message.Message, 0, len(recs))
	for i := len(recs) - 1; i >= 0; i-- {
		r := recs[i]
		m := &message.Message{Type: message.Type(r.Type), Source: r.Source, Sequence: r.Sequence}
		if r.Structure != "" {
			st, err := value.Parse(r.Structure)
			if err != nil {
				return nil, err
			}
			m.Structure = st
		}
		out = append(out, m)
	}
	return out, nil
}

// Ping reports whether client, the Mongo client passed in, is reachable
// (the Sink's own collection is not consulted), for
// wiring into a health.Pinger the way the teacher's client.Ping does.
func (s *Sink) Ping(ctx context.Context, client *mongo.Client) error {
	return client.Ping(ctx, readpref.Primary())
}
