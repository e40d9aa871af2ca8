package busrpc

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	"github.com/flowgraph/core/bus"
	"github.com/flowgraph/core/message"
)

func TestSubscribeStreamsPostedMessages(t *testing.T) {
	lis, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer lis.Close()

	b := bus.New()
	gs := grpc.NewServer()
	NewServer(b).Register(gs)
	go gs.Serve(lis)
	defer gs.Stop()

	conn, err := grpc.NewClient(lis.Addr().String(), grpc.WithTransportCredentials(insecure.NewCredentials()))
	require.NoError(t, err)
	defer conn.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	var streamErr error
	msgs, err := NewClient(conn).Subscribe(ctx, 0, func(err error) { streamErr = err })
	require.NoError(t, err)

	b.Post(message.NewWarning("elt0", message.DomainCore, 1, "slow", ""))

	select {
	case m := <-msgs:
		require.Equal(t, message.TypeWarning, m.Type)
		require.NotNil(t, m.Structure)
	case <-ctx.Done():
		t.Fatalf("timed out waiting for message, stream error: %v", streamErr)
	}
}
