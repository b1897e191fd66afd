package game

import (
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/mitchelldurbincs/NimReinforcementLearning/internal/game/core"
	"github.com/mitchelldurbincs/NimReinforcementLearning/internal/game/events"
)

// GameConfig configures a new Engine.
type GameConfig struct {
	Piles core.Piles
	// GameID defaults to a fresh UUID.
	GameID string
	Logger zerolog.Logger
	// EventBus is optional; nil disables event publishing.
	EventBus events.Publisher
}

// Engine wraps a GameState with a game ID, a move counter, logging and events.
type Engine struct {
	gs       *GameState
	gameID   string
	moves    int
	started  time.Time
	eventBus events.Publisher
	logger   zerolog.Logger
}

// NewEngine validates the starting piles and returns a game with player 0 to move.
func NewEngine(cfg GameConfig) (*Engine, error) {
	piles, err := core.NewPiles(cfg.Piles)
	if err != nil {
		return nil, err
	}

	gameID := cfg.GameID
	if gameID == "" {
		gameID = uuid.New().String()
	}

	e := &Engine{
		gs:       NewGameState(piles),
		gameID:   gameID,
		started:  time.Now(),
		eventBus: cfg.EventBus,
		logger:   cfg.Logger.With().Str("component", "GameEngine").Str("game_id", gameID).Logger(),
	}

	e.publish(events.NewGameStartedEvent(gameID, piles, e.gs.CurrentPlayer))
	e.logger.Debug().Str("piles", piles.Key()).Msg("Game started")
	return e, nil
}

// Apply plays action for the player to move. Rejected moves leave the state unchanged and
// return an error wrapping core.ErrIllegalMove or core.ErrIllegalState.
func (e *Engine) Apply(action core.Action) error {
	player := e.gs.CurrentPlayer
	before := e.gs.Piles.Clone()

	if err := e.gs.Apply(action); err != nil {
		e.logger.Debug().Err(err).Int("player_id", player).Stringer("action", action).Msg("Move rejected")
		e.publish(events.NewMoveRejectedEvent(e.gameID, player, action, err.Error()))
		return core.WrapMoveError(player, action, err)
	}

	e.moves++
	e.publish(events.NewMoveAppliedEvent(e.gameID, player, action, before, e.gs.Piles, e.moves))

	if e.gs.IsTerminal() {
		e.logger.Debug().
			Int("loser", e.gs.Loser()).
			Int("moves", e.moves).
			Msg("Board emptied")
		e.publish(events.NewGameEndedEvent(e.gameID, e.gs.Loser(), e.gs.Victor(), e.moves, time.Since(e.started)))
	}
	return nil
}

func (e *Engine) publish(ev events.Event) {
	if e.eventBus != nil {
		e.eventBus.Publish(ev)
	}
}

// Public accessors
func (e *Engine) GameID() string       { return e.gameID }
func (e *Engine) Moves() int           { return e.moves }
func (e *Engine) Phase() Phase         { return e.gs.Phase() }
func (e *Engine) IsGameOver() bool     { return e.gs.IsTerminal() }
func (e *Engine) CurrentPlayer() int   { return e.gs.CurrentPlayer }
func (e *Engine) Piles() core.Piles    { return e.gs.Piles.Clone() }
func (e *Engine) Loser() int           { return e.gs.Loser() }
func (e *Engine) Victor() int          { return e.gs.Victor() }
func (e *Engine) Legal() []core.Action { return core.AvailableActions(e.gs.Piles) }

// GameState returns a copy of the current state.
func (e *Engine) GameState() GameState {
	return GameState{
		Piles:         e.gs.Piles.Clone(),
		CurrentPlayer: e.gs.CurrentPlayer,
		Winner:        e.gs.Winner,
	}
}
