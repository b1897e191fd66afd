package game

import (
	"fmt"

	"github.com/mitchelldurbincs/NimReinforcementLearning/internal/game/core"
)

// NoPlayer marks an unset Winner.
const NoPlayer = -1

// Phase is the lifecycle of a game: InProgress until the board is emptied, then Terminal.
type Phase int

const (
	PhaseInProgress Phase = iota
	PhaseTerminal
)

func (p Phase) String() string {
	switch p {
	case PhaseInProgress:
		return "InProgress"
	case PhaseTerminal:
		return "Terminal"
	default:
		return fmt.Sprintf("Phase(%d)", int(p))
	}
}

// OtherPlayer returns the opponent of player p (0 <-> 1).
func OtherPlayer(p int) int {
	return 1 - p
}

// GameState is the Nim state machine.
//
// Winner stays NoPlayer while the game runs. When a move empties the board it is set to
// the player who made that move, and under the last-move-loses convention that player
// has lost the game. Once set, every further Apply fails with core.ErrIllegalState.
type GameState struct {
	Piles         core.Piles
	CurrentPlayer int
	Winner        int
}

// NewGameState starts a game on a copy of piles with player 0 to move.
func NewGameState(piles core.Piles) *GameState {
	return &GameState{
		Piles:         piles.Clone(),
		CurrentPlayer: 0,
		Winner:        NoPlayer,
	}
}

func (gs *GameState) Phase() Phase {
	if gs.Winner != NoPlayer {
		return PhaseTerminal
	}
	return PhaseInProgress
}

func (gs *GameState) IsTerminal() bool { return gs.Winner != NoPlayer }

// Loser is the player who took the last object, or NoPlayer while in progress.
func (gs *GameState) Loser() int { return gs.Winner }

// Victor is the player who did not take the last object, or NoPlayer while in progress.
func (gs *GameState) Victor() int {
	if gs.Winner == NoPlayer {
		return NoPlayer
	}
	return OtherPlayer(gs.Winner)
}

// Apply validates action and mutates the state in place.
func (gs *GameState) Apply(action core.Action) error {
	if gs.IsTerminal() {
		return core.ErrIllegalState
	}
	if err := action.Validate(gs.Piles); err != nil {
		return err
	}

	gs.Piles[action.Pile] -= action.Count

	if gs.Piles.Empty() {
		gs.Winner = gs.CurrentPlayer
		return nil
	}
	gs.CurrentPlayer = OtherPlayer(gs.CurrentPlayer)
	return nil
}
