package agent

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mitchelldurbincs/NimReinforcementLearning/internal/game/core"
	"github.com/mitchelldurbincs/NimReinforcementLearning/internal/testutil"
)

func newTestAgent(seed int64) *Agent {
	return New(DefaultConfig(), testutil.NewTestRNG(seed))
}

func TestNew(t *testing.T) {
	a := New(DefaultConfig(), nil)
	assert.Equal(t, 0.5, a.Alpha())
	assert.Equal(t, 0.1, a.Epsilon())
	assert.Equal(t, 0, a.Table().Len())

	b := New(Config{Alpha: 0.2, Epsilon: 0}, testutil.NewTestRNG(1))
	assert.Equal(t, 0.2, b.Alpha())
	assert.Equal(t, 0.0, b.Epsilon())
}

func TestValueOf_DefaultsToZero(t *testing.T) {
	a := newTestAgent(1)
	assert.Equal(t, 0.0, a.ValueOf(testutil.StandardPiles(), core.Action{Pile: 3, Count: 7}))
	assert.Equal(t, 0.0, a.ValueOf(core.Piles{}, core.Action{}))
}

func TestValueOf_Idempotent(t *testing.T) {
	a := newTestAgent(1)
	piles := core.Piles{1, 2}
	action := core.Action{Pile: 1, Count: 2}
	a.Update(piles, action, core.Piles{1, 0}, 1)

	first := a.ValueOf(piles, action)
	second := a.ValueOf(piles, action)
	assert.Equal(t, first, second)
}

func TestBestValue(t *testing.T) {
	a := newTestAgent(1)

	assert.Equal(t, 0.0, a.BestValue(core.Piles{0, 0, 0, 0}), "no legal actions")
	assert.Equal(t, 0.0, a.BestValue(core.Piles{1, 3}), "empty table")

	piles := core.Piles{1, 3}
	a.Table().Set(piles, core.Action{Pile: 1, Count: 2}, 0.75)
	a.Table().Set(piles, core.Action{Pile: 0, Count: 1}, -0.5)
	assert.Equal(t, 0.75, a.BestValue(piles))

	// All known values negative: an unvisited action still counts as 0.
	neg := core.Piles{2}
	a.Table().Set(neg, core.Action{Pile: 0, Count: 1}, -0.3)
	assert.Equal(t, 0.0, a.BestValue(neg))
	a.Table().Set(neg, core.Action{Pile: 0, Count: 2}, -0.1)
	assert.Equal(t, -0.1, a.BestValue(neg))
}

func TestUpdate_FirstTerminalUpdate(t *testing.T) {
	tests := []struct {
		name   string
		reward float64
	}{
		{"loss", -1},
		{"win", 1},
		{"neutral", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := newTestAgent(1)
			old := testutil.EndgamePiles()
			action := core.Action{Pile: 3, Count: 1}

			a.Update(old, action, core.Piles{0, 0, 0, 0}, tt.reward)

			assert.InDelta(t, a.Alpha()*tt.reward, a.ValueOf(old, action), 1e-12)
			assert.Equal(t, 1, a.Table().Len())
		})
	}
}

func TestUpdate_BootstrapsFromSuccessor(t *testing.T) {
	a := New(Config{Alpha: 0.5, Epsilon: 0}, testutil.NewTestRNG(1))
	successor := core.Piles{1, 0}
	a.Table().Set(successor, core.Action{Pile: 0, Count: 1}, 0.8)

	old := core.Piles{1, 2}
	action := core.Action{Pile: 1, Count: 2}
	a.Table().Set(old, action, 0.2)

	a.Update(old, action, successor, 0)

	// 0.2 + 0.5 * ((0 + 0.8) - 0.2)
	assert.InDelta(t, 0.5, a.ValueOf(old, action), 1e-12)
}

func TestUpdate_RepeatedConvergesToTarget(t *testing.T) {
	a := newTestAgent(1)
	old := core.Piles{1}
	action := core.Action{Pile: 0, Count: 1}

	for i := 0; i < 60; i++ {
		a.Update(old, action, core.Piles{0}, -1)
	}
	assert.InDelta(t, -1.0, a.ValueOf(old, action), 1e-9)
}

func TestChooseAction_NoActions(t *testing.T) {
	a := newTestAgent(1)

	_, ok := a.ChooseAction(core.Piles{0, 0}, true)
	assert.False(t, ok)
	_, ok = a.ChooseAction(core.Piles{0, 0}, false)
	assert.False(t, ok)
}

func TestChooseAction_GreedyPicksMax(t *testing.T) {
	a := newTestAgent(7)
	piles := testutil.StandardPiles()
	best := core.Action{Pile: 2, Count: 4}
	a.Table().Set(piles, best, 0.9)
	a.Table().Set(piles, core.Action{Pile: 3, Count: 1}, 0.5)

	for i := 0; i < 50; i++ {
		action, ok := a.ChooseAction(piles, false)
		require.True(t, ok)
		assert.Equal(t, best, action)
	}
}

func TestChooseAction_GreedyAvoidsNegative(t *testing.T) {
	a := newTestAgent(3)
	piles := core.Piles{2}
	a.Table().Set(piles, core.Action{Pile: 0, Count: 2}, -1)

	for i := 0; i < 50; i++ {
		action, ok := a.ChooseAction(piles, false)
		require.True(t, ok)
		assert.Equal(t, core.Action{Pile: 0, Count: 1}, action)
	}
}

func TestChooseAction_RandomTieBreak(t *testing.T) {
	a := newTestAgent(42)
	piles := core.Piles{1, 3}
	first := core.Action{Pile: 0, Count: 1}
	second := core.Action{Pile: 1, Count: 3}
	a.Table().Set(piles, first, 1)
	a.Table().Set(piles, second, 1)

	seen := make(map[core.Action]int)
	for i := 0; i < 200; i++ {
		action, ok := a.ChooseAction(piles, false)
		require.True(t, ok)
		seen[action]++
	}

	assert.Len(t, seen, 2, "only the two tied actions may be chosen")
	assert.Greater(t, seen[first], 0)
	assert.Greater(t, seen[second], 0)
}

func TestChooseAction_TieBreakIsSeedDeterministic(t *testing.T) {
	run := func() []core.Action {
		a := newTestAgent(99)
		var picks []core.Action
		for i := 0; i < 20; i++ {
			action, _ := a.ChooseAction(testutil.StandardPiles(), false)
			picks = append(picks, action)
		}
		return picks
	}
	assert.Equal(t, run(), run())
}

func TestChooseAction_Exploration(t *testing.T) {
	piles := core.Piles{1, 3}
	best := core.Action{Pile: 1, Count: 2}

	t.Run("epsilon 1 always explores", func(t *testing.T) {
		a := New(Config{Alpha: 0.5, Epsilon: 1}, testutil.NewTestRNG(5))
		a.Table().Set(piles, best, 1)

		seen := make(map[core.Action]bool)
		for i := 0; i < 400; i++ {
			action, ok := a.ChooseAction(piles, true)
			require.True(t, ok)
			require.NoError(t, action.Validate(piles))
			seen[action] = true
		}
		assert.Len(t, seen, 4, "every legal action should eventually be drawn")
	})

	t.Run("epsilon 0 never explores", func(t *testing.T) {
		a := New(Config{Alpha: 0.5, Epsilon: 0}, testutil.NewTestRNG(5))
		a.Table().Set(piles, best, 1)
		for i := 0; i < 100; i++ {
			action, _ := a.ChooseAction(piles, true)
			assert.Equal(t, best, action)
		}
	})

	t.Run("explore false ignores epsilon", func(t *testing.T) {
		a := New(Config{Alpha: 0.5, Epsilon: 1}, testutil.NewTestRNG(5))
		a.Table().Set(piles, best, 1)
		for i := 0; i < 100; i++ {
			action, _ := a.ChooseAction(piles, false)
			assert.Equal(t, best, action)
		}
	})
}
