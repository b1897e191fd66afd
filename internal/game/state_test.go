package game

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mitchelldurbincs/NimReinforcementLearning/internal/game/core"
)

func TestOtherPlayer(t *testing.T) {
	assert.Equal(t, 1, OtherPlayer(0))
	assert.Equal(t, 0, OtherPlayer(1))
}

func TestNewGameState(t *testing.T) {
	piles := core.Piles{1, 3, 5, 7}
	gs := NewGameState(piles)

	assert.Equal(t, 0, gs.CurrentPlayer)
	assert.Equal(t, NoPlayer, gs.Winner)
	assert.Equal(t, PhaseInProgress, gs.Phase())

	gs.Piles[0] = 0
	assert.Equal(t, 1, piles[0], "state must own its piles")
}

func TestGameState_ApplyDecrementsOnePile(t *testing.T) {
	start := core.Piles{1, 3, 5, 7}
	for _, action := range core.AvailableActions(start) {
		gs := NewGameState(start)
		require.NoError(t, gs.Apply(action))

		for i := range start {
			if i == action.Pile {
				assert.Equal(t, start[i]-action.Count, gs.Piles[i], "action %v", action)
			} else {
				assert.Equal(t, start[i], gs.Piles[i], "action %v touched pile %d", action, i)
			}
		}
		assert.Equal(t, 1, gs.CurrentPlayer)
		assert.False(t, gs.IsTerminal())
	}
}

func TestGameState_LastMoveLoses(t *testing.T) {
	gs := NewGameState(core.Piles{0, 0, 0, 1})

	require.NoError(t, gs.Apply(core.Action{Pile: 3, Count: 1}))

	assert.Equal(t, 0, gs.Winner, "winner records the player who emptied the board")
	assert.Equal(t, 0, gs.Loser())
	assert.Equal(t, 1, gs.Victor())
	assert.Equal(t, PhaseTerminal, gs.Phase())
	assert.Equal(t, 0, gs.CurrentPlayer, "player does not toggle on the terminal move")
}

func TestGameState_SecondPlayerEmptiesBoard(t *testing.T) {
	gs := NewGameState(core.Piles{1, 1})

	require.NoError(t, gs.Apply(core.Action{Pile: 0, Count: 1}))
	require.NoError(t, gs.Apply(core.Action{Pile: 1, Count: 1}))

	assert.Equal(t, 1, gs.Winner)
	assert.Equal(t, 0, gs.Victor())
}

func TestGameState_TerminalIsAbsorbing(t *testing.T) {
	gs := NewGameState(core.Piles{1})
	require.NoError(t, gs.Apply(core.Action{Pile: 0, Count: 1}))

	err := gs.Apply(core.Action{Pile: 0, Count: 1})
	assert.ErrorIs(t, err, core.ErrIllegalState)
	assert.Equal(t, 0, gs.Winner)
	assert.Equal(t, core.Piles{0}, gs.Piles)
}

func TestGameState_IllegalMoves(t *testing.T) {
	tests := []struct {
		name   string
		action core.Action
	}{
		{"pile out of range", core.Action{Pile: 4, Count: 1}},
		{"negative pile", core.Action{Pile: -1, Count: 1}},
		{"zero count", core.Action{Pile: 1, Count: 0}},
		{"count exceeds pile", core.Action{Pile: 0, Count: 2}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gs := NewGameState(core.Piles{1, 3, 5, 7})
			err := gs.Apply(tt.action)

			assert.ErrorIs(t, err, core.ErrIllegalMove)
			assert.Equal(t, core.Piles{1, 3, 5, 7}, gs.Piles, "rejected move must not mutate piles")
			assert.Equal(t, 0, gs.CurrentPlayer)
			assert.Equal(t, NoPlayer, gs.Winner)
		})
	}
}

func TestPhaseString(t *testing.T) {
	assert.Equal(t, "InProgress", PhaseInProgress.String())
	assert.Equal(t, "Terminal", PhaseTerminal.String())
	assert.Equal(t, "Phase(7)", Phase(7).String())
}
