// Package training drives self-play episodes that teach an agent.Agent to play Nim.
package training

import (
	"context"
	"fmt"
	"math/rand"

	"github.com/rs/zerolog"

	"github.com/mitchelldurbincs/NimReinforcementLearning/internal/agent"
	"github.com/mitchelldurbincs/NimReinforcementLearning/internal/experience"
	"github.com/mitchelldurbincs/NimReinforcementLearning/internal/game"
	"github.com/mitchelldurbincs/NimReinforcementLearning/internal/game/core"
	"github.com/mitchelldurbincs/NimReinforcementLearning/internal/game/events"
	"github.com/mitchelldurbincs/NimReinforcementLearning/internal/monitoring"
)

// Config describes a training run.
type Config struct {
	Piles    core.Piles
	Episodes int
	Agent    agent.Config
	Rewards  experience.RewardConfig
	// LogEvery controls the info-level progress line; 0 disables it.
	LogEvery int
}

// DefaultConfig trains on the 1-3-5-7 board.
func DefaultConfig() Config {
	return Config{
		Piles:    core.Piles{1, 3, 5, 7},
		Episodes: 10000,
		Agent:    agent.DefaultConfig(),
		Rewards:  experience.DefaultRewardConfig(),
		LogEvery: 1000,
	}
}

// Trainer runs self-play episodes in which one Agent chooses the moves of both players.
type Trainer struct {
	agent     *agent.Agent
	cfg       Config
	logger    zerolog.Logger
	eventBus  events.Publisher
	collector experience.Collector
	metrics   *monitoring.TrainingMetrics
}

type Option func(*Trainer)

func WithLogger(logger zerolog.Logger) Option {
	return func(t *Trainer) { t.logger = logger }
}

// WithEventBus publishes every training game's events to bus.
func WithEventBus(bus events.Publisher) Option {
	return func(t *Trainer) { t.eventBus = bus }
}

// WithCollector records every value update as a transition.
func WithCollector(c experience.Collector) Option {
	return func(t *Trainer) { t.collector = c }
}

func WithMetrics(m *monitoring.TrainingMetrics) Option {
	return func(t *Trainer) { t.metrics = m }
}

// NewTrainer validates cfg and binds it to a.
func NewTrainer(a *agent.Agent, cfg Config, opts ...Option) (*Trainer, error) {
	if _, err := core.NewPiles(cfg.Piles); err != nil {
		return nil, err
	}
	if cfg.Episodes < 0 {
		return nil, fmt.Errorf("episodes must be non-negative, got %d", cfg.Episodes)
	}

	t := &Trainer{
		agent:  a,
		cfg:    cfg,
		logger: zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(t)
	}
	t.logger = t.logger.With().Str("component", "Trainer").Logger()
	return t, nil
}

func (t *Trainer) Agent() *agent.Agent { return t.agent }

// Run plays cfg.Episodes episodes and returns the trained agent. It stops early, returning
// the partially trained agent and ctx.Err(), if ctx is cancelled between episodes.
func (t *Trainer) Run(ctx context.Context) (*agent.Agent, error) {
	t.logger.Info().
		Int("episodes", t.cfg.Episodes).
		Str("piles", t.cfg.Piles.Key()).
		Float64("alpha", t.agent.Alpha()).
		Float64("epsilon", t.agent.Epsilon()).
		Msg("Starting self-play training")

	for i := 1; i <= t.cfg.Episodes; i++ {
		if err := ctx.Err(); err != nil {
			t.logger.Warn().Int("completed", i-1).Msg("Training cancelled")
			return t.agent, err
		}

		t.logger.Debug().Int("episode", i).Msg("Playing training game")
		t.PlayEpisode(i)

		if t.cfg.LogEvery > 0 && i%t.cfg.LogEvery == 0 {
			t.logger.Info().
				Int("episode", i).
				Int("qtable_entries", t.agent.Table().Len()).
				Msg("Training progress")
		}
	}

	t.logger.Info().Int("qtable_entries", t.agent.Table().Len()).Msg("Done training")
	return t.agent, nil
}

type lastMove struct {
	state  core.Piles
	action core.Action
	ok     bool
}

// PlayEpisode plays one complete game against itself and returns the number of moves.
//
// Every non-terminal move is updated with the step reward against the post-move board.
// When the board is emptied, the mover's last move receives the losing reward and the
// opponent's last move the winning reward, both against the empty board. Earlier moves
// only learn the outcome through the bootstrapped value of later states.
//
// The agent only ever proposes legal actions, so an engine error here is a bug and panics.
func (t *Trainer) PlayEpisode(episode int) int {
	eng, err := game.NewEngine(game.GameConfig{
		Piles:    t.cfg.Piles,
		Logger:   t.logger,
		EventBus: t.eventBus,
	})
	if err != nil {
		panic(core.WrapEpisodeError(episode, "self-play", err))
	}

	var last [2]lastMove
	for !eng.IsGameOver() {
		player := eng.CurrentPlayer()
		state := eng.Piles()

		action, ok := t.agent.ChooseAction(state, true)
		if !ok {
			panic(core.WrapEpisodeError(episode, "self-play",
				fmt.Errorf("no action available on non-terminal board %v", state)))
		}
		last[player] = lastMove{state: state, action: action, ok: true}

		if err := eng.Apply(action); err != nil {
			panic(core.WrapEpisodeError(episode, "self-play", err))
		}
		next := eng.Piles()

		if !eng.IsGameOver() {
			t.update(eng.GameID(), player, last[player], next, t.cfg.Rewards.Step, false, "step")
			continue
		}

		loser := eng.Loser()
		winner := game.OtherPlayer(loser)
		t.update(eng.GameID(), loser, last[loser], next, t.cfg.Rewards.Terminal(loser, loser), true, "loss")
		if last[winner].ok {
			t.update(eng.GameID(), winner, last[winner], next, t.cfg.Rewards.Terminal(winner, loser), true, "win")
		}
	}

	if t.metrics != nil {
		t.metrics.ObserveEpisode(eng.Moves(), eng.Loser(), t.agent.Table().Len())
	}
	return eng.Moves()
}

func (t *Trainer) update(gameID string, player int, move lastMove, next core.Piles, reward float64, done bool, kind string) {
	t.agent.Update(move.state, move.action, next, reward)
	if t.collector != nil {
		t.collector.Record(gameID, player, move.state, move.action, next, reward, done)
	}
	if t.metrics != nil {
		t.metrics.ObserveUpdate(kind)
	}
}

// Train is the plain entry point: a fresh agent with default parameters trained for n
// self-play episodes from piles. A nil rng is replaced by a time-seeded one.
func Train(piles core.Piles, n int, rng *rand.Rand) (*agent.Agent, error) {
	cfg := DefaultConfig()
	cfg.Piles = piles
	cfg.Episodes = n

	tr, err := NewTrainer(agent.New(cfg.Agent, rng), cfg)
	if err != nil {
		return nil, err
	}
	return tr.Run(context.Background())
}
