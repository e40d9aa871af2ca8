package element

import (
	"strings"
	"testing"

	"github.com/flowgraph/core/action"
	"github.com/flowgraph/core/caps"
	"github.com/flowgraph/core/pad"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewGeneratesDistinctPrefixedIDs(t *testing.T) {
	a := New("decoder")
	b := New("decoder")

	assert.NotEqual(t, a.ID(), b.ID())
	assert.True(t, strings.HasPrefix(a.ID(), "decoder-"))
	assert.True(t, strings.HasPrefix(b.ID(), "decoder-"))
}

func TestSetStateStepsThroughEachTransition(t *testing.T) {
	e := New("identity")
	var seen []string
	e.ChangeState = func(el *Element, oldState, newState State) StateChangeReturn {
		seen = append(seen, oldState.String()+"->"+newState.String())
		return StateChangeSuccess
	}

	require.Equal(t, StateChangeSuccess, e.SetState(StatePlaying))
	assert.Equal(t, []string{"null->ready", "ready->paused", "paused->playing"}, seen)
	assert.Equal(t, StatePlaying, e.State())
}

func TestSetStateStopsAtFailure(t *testing.T) {
	e := New("broken")
	e.ChangeState = func(el *Element, oldState, newState State) StateChangeReturn {
		if newState == StatePaused {
			return StateChangeFailure
		}
		return StateChangeSuccess
	}

	assert.Equal(t, StateChangeFailure, e.SetState(StatePlaying))
	assert.Equal(t, StateReady, e.State())
}

func TestReadyToPausedActivatesInitiallyActiveActions(t *testing.T) {
	e := New("src")
	a := action.NewWakeup(e, false, nil, nil)
	a.SetInitiallyActive(true)
	e.AddAction(a)

	e.SetState(StateReady)
	assert.False(t, a.IsActive())
	e.SetState(StatePaused)
	assert.True(t, a.IsActive())
}

func TestPausedToReadyDeactivatesCoupledActions(t *testing.T) {
	e := New("src")
	a := action.NewWakeup(e, true, nil, nil)
	a.SetCoupled(true)
	e.AddAction(a)

	e.SetState(StatePaused)
	require.True(t, a.IsActive())
	e.SetState(StateReady)
	assert.False(t, a.IsActive())
}

func TestAddPadRegistersByName(t *testing.T) {
	e := New("e")
	p := pad.New("src", pad.DirectionSrc, pad.PresenceAlways, caps.Any())
	e.AddPad(p)
	assert.Same(t, p, e.Pad("src"))
	assert.Len(t, e.Pads(), 1)
}

func TestAddPadPanicsOnDuplicateName(t *testing.T) {
	e := New("e")
	e.AddPad(pad.New("src", pad.DirectionSrc, pad.PresenceAlways, caps.Any()))
	assert.Panics(t, func() {
		e.AddPad(pad.New("src", pad.DirectionSrc, pad.PresenceAlways, caps.Any()))
	})
}
