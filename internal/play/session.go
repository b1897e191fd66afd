// Package play runs an interactive game of Nim between a person and a trained agent.
package play

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/rs/zerolog"

	"github.com/mitchelldurbincs/NimReinforcementLearning/internal/game"
	"github.com/mitchelldurbincs/NimReinforcementLearning/internal/game/core"
	"github.com/mitchelldurbincs/NimReinforcementLearning/internal/game/events"
	"github.com/mitchelldurbincs/NimReinforcementLearning/internal/ui/renderer"
)

// ErrInputClosed is returned when the human's input ends before the game does.
var ErrInputClosed = errors.New("input closed")

// Opponent picks the computer's moves. training.GreedyPlayer satisfies it.
type Opponent interface {
	Move(piles core.Piles) (core.Action, bool)
}

type Config struct {
	Piles core.Piles
	// HumanPlayer is the seat (0 moves first) the person plays.
	HumanPlayer int
	Renderer    *renderer.BoardRenderer
	EventBus    events.Publisher
	Logger      zerolog.Logger
}

// Result describes a finished game. Loser took the last object.
type Result struct {
	GameID   string
	Moves    int
	Loser    int
	Victor   int
	HumanWon bool
}

type Session struct {
	cfg      Config
	opponent Opponent
	in       *bufio.Scanner
	out      io.Writer
	logger   zerolog.Logger
}

func NewSession(opponent Opponent, in io.Reader, out io.Writer, cfg Config) (*Session, error) {
	if cfg.HumanPlayer != 0 && cfg.HumanPlayer != 1 {
		return nil, fmt.Errorf("human player %d: %w", cfg.HumanPlayer, core.ErrInvalidPlayer)
	}
	if cfg.Renderer == nil {
		cfg.Renderer = renderer.NewBoardRenderer(renderer.PlainStyles())
	}
	return &Session{
		cfg:      cfg,
		opponent: opponent,
		in:       bufio.NewScanner(in),
		out:      out,
		logger:   cfg.Logger.With().Str("component", "PlaySession").Logger(),
	}, nil
}

// Run plays one game to completion. Bad input and illegal moves are reported and
// re-prompted; the game only aborts if input ends, ctx is cancelled, or the opponent fails.
func (s *Session) Run(ctx context.Context) (Result, error) {
	eng, err := game.NewEngine(game.GameConfig{
		Piles:    s.cfg.Piles,
		Logger:   s.logger,
		EventBus: s.cfg.EventBus,
	})
	if err != nil {
		return Result{}, err
	}
	r := s.cfg.Renderer

	for !eng.IsGameOver() {
		if err := ctx.Err(); err != nil {
			return Result{}, err
		}

		s.println()
		s.print(r.Piles(eng.Piles()))
		s.println()

		if eng.CurrentPlayer() == s.cfg.HumanPlayer {
			s.println(r.Turn("Your"))
			if err := s.humanTurn(eng); err != nil {
				return Result{}, err
			}
			continue
		}

		s.println(r.Turn("AI's"))
		action, ok := s.opponent.Move(eng.Piles())
		if !ok {
			return Result{}, fmt.Errorf("opponent returned no move on %v", eng.Piles())
		}
		if err := eng.Apply(action); err != nil {
			return Result{}, fmt.Errorf("opponent move: %w", err)
		}
		s.println(r.AgentMove(action))
	}

	res := Result{
		GameID:   eng.GameID(),
		Moves:    eng.Moves(),
		Loser:    eng.Loser(),
		Victor:   eng.Victor(),
		HumanWon: eng.Victor() == s.cfg.HumanPlayer,
	}
	winner := "AI"
	if res.HumanWon {
		winner = "Human"
	}
	s.println()
	s.println(r.GameOver(winner))

	s.logger.Info().
		Str("game_id", res.GameID).
		Int("moves", res.Moves).
		Bool("human_won", res.HumanWon).
		Msg("Game finished")
	return res, nil
}

func (s *Session) humanTurn(eng *game.Engine) error {
	r := s.cfg.Renderer
	for {
		pile, err := s.readInt("Choose Pile: ")
		if err != nil {
			if errors.Is(err, ErrInputClosed) {
				return err
			}
			s.println(r.Error("Invalid input, try again."))
			continue
		}
		count, err := s.readInt("Choose Count: ")
		if err != nil {
			if errors.Is(err, ErrInputClosed) {
				return err
			}
			s.println(r.Error("Invalid input, try again."))
			continue
		}

		err = eng.Apply(core.Action{Pile: pile, Count: count})
		switch {
		case err == nil:
			return nil
		case errors.Is(err, core.ErrIllegalMove), errors.Is(err, core.ErrIllegalState):
			s.logger.Debug().Err(err).Msg("Rejected human move")
			s.println(r.Error("Invalid move, try again."))
		default:
			return err
		}
	}
}

func (s *Session) readInt(prompt string) (int, error) {
	s.print(prompt)
	if !s.in.Scan() {
		if err := s.in.Err(); err != nil {
			return 0, fmt.Errorf("%w: %v", ErrInputClosed, err)
		}
		return 0, ErrInputClosed
	}
	return strconv.Atoi(strings.TrimSpace(s.in.Text()))
}

func (s *Session) print(a ...any) {
	fmt.Fprint(s.out, a...)
}

func (s *Session) println(a ...any) {
	fmt.Fprintln(s.out, a...)
}
