package events

import (
	"time"

	"github.com/mitchelldurbincs/NimReinforcementLearning/internal/game/core"
)

// Event type constants
const (
	TypeGameStarted  = "game.started"
	TypeGameEnded    = "game.ended"
	TypeMoveApplied  = "move.applied"
	TypeMoveRejected = "move.rejected"
)

// GameStartedEvent is published when a new game begins
type GameStartedEvent struct {
	BaseEvent
	Piles          core.Piles
	StartingPlayer int
}

func NewGameStartedEvent(gameID string, piles core.Piles, startingPlayer int) *GameStartedEvent {
	return &GameStartedEvent{
		BaseEvent: BaseEvent{
			EventType: TypeGameStarted,
			Time:      time.Now(),
			Game:      gameID,
		},
		Piles:          piles.Clone(),
		StartingPlayer: startingPlayer,
	}
}

// MoveAppliedEvent is published after a move changes the board
type MoveAppliedEvent struct {
	BaseEvent
	PlayerID int
	Action   core.Action
	Before   core.Piles
	After    core.Piles
	Move     int
}

func NewMoveAppliedEvent(gameID string, playerID int, action core.Action, before, after core.Piles, move int) *MoveAppliedEvent {
	return &MoveAppliedEvent{
		BaseEvent: BaseEvent{
			EventType: TypeMoveApplied,
			Time:      time.Now(),
			Game:      gameID,
		},
		PlayerID: playerID,
		Action:   action,
		Before:   before.Clone(),
		After:    after.Clone(),
		Move:     move,
	}
}

// MoveRejectedEvent is published when a move fails validation
type MoveRejectedEvent struct {
	BaseEvent
	PlayerID int
	Action   core.Action
	Reason   string
}

func NewMoveRejectedEvent(gameID string, playerID int, action core.Action, reason string) *MoveRejectedEvent {
	return &MoveRejectedEvent{
		BaseEvent: BaseEvent{
			EventType: TypeMoveRejected,
			Time:      time.Now(),
			Game:      gameID,
		},
		PlayerID: playerID,
		Action:   action,
		Reason:   reason,
	}
}

// GameEndedEvent is published when the last object is taken.
// Loser is the player who emptied the board.
type GameEndedEvent struct {
	BaseEvent
	Loser    int
	Winner   int
	Moves    int
	Duration time.Duration
}

func NewGameEndedEvent(gameID string, loser, winner, moves int, duration time.Duration) *GameEndedEvent {
	return &GameEndedEvent{
		BaseEvent: BaseEvent{
			EventType: TypeGameEnded,
			Time:      time.Now(),
			Game:      gameID,
		},
		Loser:    loser,
		Winner:   winner,
		Moves:    moves,
		Duration: duration,
	}
}
