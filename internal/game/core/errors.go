package core

import (
	"errors"
	"fmt"
)

var (
	ErrIllegalMove   = errors.New("illegal move")
	ErrIllegalState  = errors.New("game is over")
	ErrInvalidPlayer = errors.New("invalid player ID")
	ErrInvalidPiles  = errors.New("invalid pile configuration")
)

// MoveError records which player attempted which action when a move is rejected.
type MoveError struct {
	PlayerID int
	Action   Action
	Err      error
}

func (e *MoveError) Error() string {
	return fmt.Sprintf("player %d: take %d from pile %d: %v", e.PlayerID, e.Action.Count, e.Action.Pile, e.Err)
}

func (e *MoveError) Unwrap() error { return e.Err }

// WrapMoveError attaches player and action context to err. A nil err stays nil.
func WrapMoveError(playerID int, action Action, err error) error {
	if err == nil {
		return nil
	}
	return &MoveError{PlayerID: playerID, Action: action, Err: err}
}

// WrapEpisodeError prefixes err with the episode number and phase it happened in.
func WrapEpisodeError(episode int, phase string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("episode %d [%s]: %w", episode, phase, err)
}
