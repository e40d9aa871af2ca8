package nexuspromise

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHandlerProducesReply(t *testing.T) {
	var h Handler = func(ctx context.Context, req Request) (Reply, error) {
		assert.Equal(t, "classify", req.Kind)
		return Reply{Value: []byte("ok")}, nil
	}

	reply, err := h(context.Background(), Request{Kind: "classify", Payload: []byte("in")})
	require.NoError(t, err)
	assert.Equal(t, []byte("ok"), reply.Value)
}

func TestNewOperationName(t *testing.T) {
	op := NewOperation(func(ctx context.Context, req Request) (Reply, error) {
		return Reply{}, nil
	})
	assert.Equal(t, OperationName, op.Name())
}
