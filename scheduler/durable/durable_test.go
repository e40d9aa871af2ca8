package durable

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// TestNewRejectsMissingTaskQueue exercises the one validation this
// constructor can check without actually dialing Temporal, mirroring
// engine.go's own "worker options must include a default task queue"
// guard.
func TestNewRejectsMissingTaskQueue(t *testing.T) {
	_, err := New(Options{})
	require.Error(t, err)
}

func TestNewRejectsMissingClientOptions(t *testing.T) {
	_, err := New(Options{TaskQueue: "flowgraph-default"})
	require.Error(t, err)
}
