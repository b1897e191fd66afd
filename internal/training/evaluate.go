package training

import (
	"fmt"
	"math/rand"

	"github.com/rs/zerolog"

	"github.com/mitchelldurbincs/NimReinforcementLearning/internal/agent"
	"github.com/mitchelldurbincs/NimReinforcementLearning/internal/game"
	"github.com/mitchelldurbincs/NimReinforcementLearning/internal/game/core"
)

// Player picks a move for the side to act. The boolean is false when no move exists.
type Player interface {
	Move(piles core.Piles) (core.Action, bool)
}

// GreedyPlayer plays an agent's best known move without exploring.
type GreedyPlayer struct {
	Agent *agent.Agent
}

func (p GreedyPlayer) Move(piles core.Piles) (core.Action, bool) {
	return p.Agent.ChooseAction(piles, false)
}

// RandomPlayer plays a uniformly random legal move.
type RandomPlayer struct {
	rng *rand.Rand
}

func NewRandomPlayer(rng *rand.Rand) *RandomPlayer {
	return &RandomPlayer{rng: rng}
}

func (p *RandomPlayer) Move(piles core.Piles) (core.Action, bool) {
	actions := core.AvailableActions(piles)
	if len(actions) == 0 {
		return core.Action{}, false
	}
	return actions[p.rng.Intn(len(actions))], true
}

// EvalResult summarizes an evaluation match from the candidate's point of view.
type EvalResult struct {
	Games  int
	Wins   int
	Losses int
}

func (r EvalResult) WinRate() float64 {
	if r.Games == 0 {
		return 0
	}
	return float64(r.Wins) / float64(r.Games)
}

// Evaluate plays games between candidate and opponent from piles, alternating which of
// them moves first, and counts the candidate's wins.
func Evaluate(candidate, opponent Player, piles core.Piles, games int, logger zerolog.Logger) (EvalResult, error) {
	logger = logger.With().Str("component", "Evaluator").Logger()

	var res EvalResult
	for i := 0; i < games; i++ {
		seats := [2]Player{candidate, opponent}
		candidateSeat := 0
		if i%2 == 1 {
			seats = [2]Player{opponent, candidate}
			candidateSeat = 1
		}

		loser, err := playMatch(seats, piles, logger)
		if err != nil {
			return res, core.WrapEpisodeError(i+1, "evaluation", err)
		}

		res.Games++
		if loser == candidateSeat {
			res.Losses++
		} else {
			res.Wins++
		}
	}

	logger.Info().
		Int("games", res.Games).
		Int("wins", res.Wins).
		Int("losses", res.Losses).
		Float64("win_rate", res.WinRate()).
		Msg("Evaluation finished")
	return res, nil
}

// playMatch returns the seat that emptied the board.
func playMatch(seats [2]Player, piles core.Piles, logger zerolog.Logger) (int, error) {
	eng, err := game.NewEngine(game.GameConfig{Piles: piles, Logger: logger})
	if err != nil {
		return game.NoPlayer, err
	}
	for !eng.IsGameOver() {
		seat := eng.CurrentPlayer()
		action, ok := seats[seat].Move(eng.Piles())
		if !ok {
			return game.NoPlayer, fmt.Errorf("player %d returned no move on %v", seat, eng.Piles())
		}
		if err := eng.Apply(action); err != nil {
			return game.NoPlayer, err
		}
	}
	return eng.Loser(), nil
}

// BestOf evaluates every agent greedily against a random opponent and returns the index of
// the one with the highest win rate, along with all results. Ties go to the lower index.
func BestOf(agents []*agent.Agent, piles core.Piles, games int, rng *rand.Rand, logger zerolog.Logger) (int, []EvalResult, error) {
	if len(agents) == 0 {
		return -1, nil, fmt.Errorf("no agents to evaluate")
	}

	best := 0
	results := make([]EvalResult, len(agents))
	for i, a := range agents {
		res, err := Evaluate(GreedyPlayer{Agent: a}, NewRandomPlayer(rng), piles, games, logger.With().Int("worker", i).Logger())
		if err != nil {
			return -1, nil, err
		}
		results[i] = res
		if res.WinRate() > results[best].WinRate() {
			best = i
		}
	}
	return best, results, nil
}
