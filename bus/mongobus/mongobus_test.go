package mongobus

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/flowgraph/core/message"
	"github.com/flowgraph/core/value"
)

var (
	testClient    *mongo.Client
	testContainer testcontainers.Container
	skipTests     bool
)

func setupMongo() {
	ctx := context.Background()

	var containerErr error
	func() {
		defer func() {
			if r := recover(); r != nil {
				containerErr = fmt.Errorf("docker not available: %v", r)
			}
		}()
		req := testcontainers.ContainerRequest{
			Image:        "mongo:7",
			ExposedPorts: []string{"27017/tcp"},
			WaitingFor:   wait.ForLog("Waiting for connections"),
			Tmpfs:        map[string]string{"/data/db": "rw"},
		}
		testContainer, containerErr = testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
			ContainerRequest: req,
			Started:          true,
		})
	}()
	if containerErr != nil {
		skipTests = true
		return
	}

	host, err := testContainer.Host(ctx)
	if err != nil {
		skipTests = true
		return
	}
	port, err := testContainer.MappedPort(ctx, "27017")
	if err != nil {
		skipTests = true
		return
	}
	uri := fmt.Sprintf("mongodb://%s:%s", host, port.Port())
	testClient, err = mongo.Connect(options.Client().ApplyURI(uri))
	if err != nil {
		skipTests = true
		return
	}
	if err := testClient.Ping(ctx, nil); err != nil {
		skipTests = true
	}
}

func getSink(t *testing.T) *Sink {
	t.Helper()
	if skipTests {
		t.Skip("docker not available, skipping MongoDB integration test")
	}
	sink, err := New(Options{Client: testClient, Database: "flowgraph_test", Collection: t.Name()})
	require.NoError(t, err)
	return sink
}

// TestArchiveAndTailRoundTrip verifies that a message archived through a
// real MongoDB container can be read back via Tail in posting order.
func TestArchiveAndTailRoundTrip(t *testing.T) {
	if testClient == nil && !skipTests {
		setupMongo()
	}
	sink := getSink(t)
	ctx := context.Background()

	s := value.NewStructure("demo")
	s.Set("n", value.Int(42))
	m := &message.Message{Type: message.TypeInfo, Source: "elt0", Sequence: 1, Structure: s}

	require.NoError(t, sink.Archive(ctx, m))

	out, err := sink.Tail(ctx, 10)
	require.NoError(t, err)
	require.Len(t, out, 1)
	require.Equal(t, m.Sequence, out[0].Sequence)
	require.Equal(t, m.Type, out[0].Type)
	require.Equal(t, "elt0", out[0].Source)
}

// fakeCollection is a minimal in-memory collection stand-in, used to
// exercise Sink.Archive/Forward without Docker, the same division the
// teacher draws between a unit-testable client wrapper and a container-
// backed integration test.
type fakeCollection struct {
	inserted []any
}

func (f *fakeCollection) InsertOne(ctx context.Context, document any, opts ...options.Lister[options.InsertOneOptions]) (*mongo.InsertOneResult, error) {
	f.inserted = append(f.inserted, document)
	return &mongo.InsertOneResult{}, nil
}

func (f *fakeCollection) Find(ctx context.Context, filter any, opts ...options.Lister[options.FindOptions]) (*mongo.Cursor, error) {
	return nil, fmt.Errorf("fakeCollection: Find not supported")
}

func (f *fakeCollection) Indexes() mongo.IndexView { return mongo.IndexView{} }

func TestForwardArchivesAndPassesThroughWithoutError(t *testing.T) {
	fc := &fakeCollection{}
	sink := newWithCollection(fc, time.Second)

	var gotErr error
	sink.OnArchiveError(func(err error) { gotErr = err })

	m := &message.Message{Type: message.TypeEOS, Source: "elt1", Sequence: 7}
	action := sink.Forward(context.Background())
	require.Equal(t, 0, action(m))
	require.Len(t, fc.inserted, 1)
	require.NoError(t, gotErr)
}
