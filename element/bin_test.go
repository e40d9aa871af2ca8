package element

import (
	"context"
	"testing"

	"github.com/flowgraph/core/message"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBinDrivesChildrenBeforeItselfWhenRaising(t *testing.T) {
	b := NewBin("pipeline")
	child := New("child")

	var order []string
	child.ChangeState = func(el *Element, o, n State) StateChangeReturn {
		order = append(order, "child")
		return StateChangeSuccess
	}
	b.ChangeState = func(el *Element, o, n State) StateChangeReturn {
		order = append(order, "bin")
		return StateChangeSuccess
	}
	b.Add(child)

	require.Equal(t, StateChangeSuccess, b.SetState(StateReady))
	assert.Equal(t, []string{"child", "bin"}, order)
}

func TestBinDrivesItselfBeforeChildrenWhenLowering(t *testing.T) {
	b := NewBin("pipeline")
	child := New("child")
	b.Add(child)
	b.SetState(StateReady)

	var order []string
	child.ChangeState = func(el *Element, o, n State) StateChangeReturn {
		order = append(order, "child")
		return StateChangeSuccess
	}
	b.ChangeState = func(el *Element, o, n State) StateChangeReturn {
		order = append(order, "bin")
		return StateChangeSuccess
	}

	require.Equal(t, StateChangeSuccess, b.SetState(StateNull))
	assert.Equal(t, []string{"bin", "child"}, order)
}

func TestBinAggregatesWorstChildResult(t *testing.T) {
	b := NewBin("pipeline")
	ok := New("ok")
	async := New("async")
	async.ChangeState = func(el *Element, o, n State) StateChangeReturn { return StateChangeAsync }
	b.Add(ok)
	b.Add(async)

	assert.Equal(t, StateChangeAsync, b.SetState(StateReady))
}

func TestBinPostsErrorMessageOnFailure(t *testing.T) {
	b := NewBin("pipeline")
	broken := New("broken")
	broken.ChangeState = func(el *Element, o, n State) StateChangeReturn { return StateChangeFailure }
	b.Add(broken)

	assert.Equal(t, StateChangeFailure, b.SetState(StateReady))

	m, ok := b.Bus.PopNonBlocking()
	require.True(t, ok)
	assert.Equal(t, message.TypeError, m.Type)
}

func TestBinPostsStateChangedMessageOnSuccess(t *testing.T) {
	b := NewBin("pipeline")
	require.Equal(t, StateChangeSuccess, b.SetState(StateReady))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	m, ok := b.Bus.Pop(ctx)
	require.True(t, ok)
	assert.Equal(t, message.TypeStateChanged, m.Type)
}
