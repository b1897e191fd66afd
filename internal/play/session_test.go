package play

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mitchelldurbincs/NimReinforcementLearning/internal/agent"
	"github.com/mitchelldurbincs/NimReinforcementLearning/internal/game/core"
	"github.com/mitchelldurbincs/NimReinforcementLearning/internal/game/events"
	"github.com/mitchelldurbincs/NimReinforcementLearning/internal/testutil"
)

// takeFirst empties the first non-empty pile.
type takeFirst struct{}

func (takeFirst) Move(piles core.Piles) (core.Action, bool) {
	for i, n := range piles {
		if n > 0 {
			return core.Action{Pile: i, Count: n}, true
		}
	}
	return core.Action{}, false
}

func newSession(t *testing.T, input string, cfg Config) (*Session, *bytes.Buffer) {
	t.Helper()
	var out bytes.Buffer
	s, err := NewSession(takeFirst{}, strings.NewReader(input), &out, cfg)
	require.NoError(t, err)
	return s, &out
}

func TestRun_HumanWins(t *testing.T) {
	s, out := newSession(t, "1\n2\n", Config{Piles: core.Piles{1, 2}})

	res, err := s.Run(context.Background())
	require.NoError(t, err)

	assert.True(t, res.HumanWon)
	assert.Equal(t, 1, res.Loser, "AI took the last object")
	assert.Equal(t, 0, res.Victor)
	assert.Equal(t, 2, res.Moves)
	assert.NotEmpty(t, res.GameID)

	text := out.String()
	assert.Contains(t, text, "Pile 0: 1\nPile 1: 2\n")
	assert.Contains(t, text, "Your Turn")
	assert.Contains(t, text, "AI's Turn")
	assert.Contains(t, text, "AI chose to take 1 from pile 0.")
	assert.Contains(t, text, "GAME OVER\nWinner is Human")
}

func TestRun_HumanTakesLastAndLoses(t *testing.T) {
	s, out := newSession(t, "0\n1\n", Config{Piles: core.Piles{1}})

	res, err := s.Run(context.Background())
	require.NoError(t, err)

	assert.False(t, res.HumanWon)
	assert.Equal(t, 0, res.Loser)
	assert.Contains(t, out.String(), "Winner is AI")
}

func TestRun_HumanSecond(t *testing.T) {
	s, out := newSession(t, "", Config{Piles: core.Piles{3}, HumanPlayer: 1})

	res, err := s.Run(context.Background())
	require.NoError(t, err)

	assert.True(t, res.HumanWon)
	assert.Equal(t, 1, res.Moves)
	assert.NotContains(t, out.String(), "Choose Pile")
}

func TestRun_RepromptsOnBadInput(t *testing.T) {
	bus := events.NewEventBus(zerolog.Nop())
	rejected := 0
	bus.SubscribeFunc(events.TypeMoveRejected, func(events.Event) { rejected++ })

	input := strings.Join([]string{
		"abc",    // not a number
		"5", "1", // no such pile
		"1", "3", // more than the pile holds
		"1", "0", // zero count
		"1", "2",
	}, "\n") + "\n"
	s, out := newSession(t, input, Config{Piles: core.Piles{1, 2}, EventBus: bus, Logger: testutil.TestLogger(t)})

	res, err := s.Run(context.Background())
	require.NoError(t, err)
	assert.True(t, res.HumanWon)

	text := out.String()
	assert.Equal(t, 1, strings.Count(text, "Invalid input, try again."))
	assert.Equal(t, 3, strings.Count(text, "Invalid move, try again."))
	assert.Equal(t, 3, rejected)
}

func TestRun_InputClosed(t *testing.T) {
	s, _ := newSession(t, "0\n", Config{Piles: core.Piles{1, 2}})

	_, err := s.Run(context.Background())
	assert.ErrorIs(t, err, ErrInputClosed)
}

func TestRun_Cancelled(t *testing.T) {
	s, _ := newSession(t, "", Config{Piles: core.Piles{1, 2}})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := s.Run(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRun_WithAgentOpponent(t *testing.T) {
	a := agent.New(agent.DefaultConfig(), testutil.NewTestRNG(1))
	a.Table().Set(core.Piles{0, 2}, core.Action{Pile: 1, Count: 1}, 1)
	greedy := opponentFunc(func(p core.Piles) (core.Action, bool) { return a.ChooseAction(p, false) })

	var out bytes.Buffer
	s, err := NewSession(greedy, strings.NewReader("0\n1\n1\n1\n"), &out, Config{Piles: core.Piles{1, 2}})
	require.NoError(t, err)

	res, err := s.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, res.Moves)
	assert.False(t, res.HumanWon)
	assert.Contains(t, out.String(), "AI chose to take 1 from pile 1.")
}

type opponentFunc func(core.Piles) (core.Action, bool)

func (f opponentFunc) Move(p core.Piles) (core.Action, bool) { return f(p) }

func TestNewSession_InvalidHumanPlayer(t *testing.T) {
	_, err := NewSession(takeFirst{}, strings.NewReader(""), &bytes.Buffer{}, Config{Piles: core.Piles{1}, HumanPlayer: 2})
	assert.ErrorIs(t, err, core.ErrInvalidPlayer)
}
