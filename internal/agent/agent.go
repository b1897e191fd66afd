// Package agent implements a tabular Q-learning player for Nim.
package agent

import (
	"math/rand"
	"time"

	"github.com/mitchelldurbincs/NimReinforcementLearning/internal/game/core"
)

const (
	DefaultAlpha   = 0.5
	DefaultEpsilon = 0.1
)

// Config holds the fixed learning parameters of an Agent.
type Config struct {
	// Alpha is the learning rate of the temporal-difference update.
	Alpha float64
	// Epsilon is the probability of a uniformly random move when exploring.
	Epsilon float64
}

func DefaultConfig() Config {
	return Config{Alpha: DefaultAlpha, Epsilon: DefaultEpsilon}
}

// Agent learns action values over pile configurations. All random draws (exploration and
// tie-breaks) come from rng, so a seeded source makes an Agent fully reproducible.
type Agent struct {
	alpha   float64
	epsilon float64
	table   *QTable
	rng     *rand.Rand
}

// New creates an Agent with an empty table. A nil rng is replaced by a time-seeded one.
func New(cfg Config, rng *rand.Rand) *Agent {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Agent{
		alpha:   cfg.Alpha,
		epsilon: cfg.Epsilon,
		table:   NewQTable(),
		rng:     rng,
	}
}

func (a *Agent) Alpha() float64   { return a.alpha }
func (a *Agent) Epsilon() float64 { return a.epsilon }
func (a *Agent) Table() *QTable   { return a.table }

// ValueOf returns the current estimate for taking action from piles, 0 if never updated.
func (a *Agent) ValueOf(piles core.Piles, action core.Action) float64 {
	return a.table.Get(piles, action)
}

// BestValue is the highest estimate over the legal actions from piles, or 0 when there are none.
func (a *Agent) BestValue(piles core.Piles) float64 {
	actions := core.AvailableActions(piles)
	if len(actions) == 0 {
		return 0
	}
	best := a.ValueOf(piles, actions[0])
	for _, action := range actions[1:] {
		if v := a.ValueOf(piles, action); v > best {
			best = v
		}
	}
	return best
}

// ChooseAction picks a move from piles. The boolean is false when no legal move exists.
//
// With explore set, a uniformly random legal move is returned with probability epsilon.
// Otherwise the highest-valued move is returned, breaking exact ties uniformly at random.
func (a *Agent) ChooseAction(piles core.Piles, explore bool) (core.Action, bool) {
	actions := core.AvailableActions(piles)
	if len(actions) == 0 {
		return core.Action{}, false
	}

	if explore && a.rng.Float64() < a.epsilon {
		return actions[a.rng.Intn(len(actions))], true
	}

	best := make([]core.Action, 0, len(actions))
	var bestValue float64
	for i, action := range actions {
		v := a.ValueOf(piles, action)
		switch {
		case i == 0 || v > bestValue:
			bestValue = v
			best = append(best[:0], action)
		case v == bestValue:
			best = append(best, action)
		}
	}
	return best[a.rng.Intn(len(best))], true
}

// Update applies one undiscounted temporal-difference step for taking action in oldPiles
// and landing in newPiles with the given reward:
//
//	Q(s,a) <- Q(s,a) + alpha * ((reward + max_a' Q(s',a')) - Q(s,a))
func (a *Agent) Update(oldPiles core.Piles, action core.Action, newPiles core.Piles, reward float64) {
	oldValue := a.ValueOf(oldPiles, action)
	future := a.BestValue(newPiles)
	a.table.Set(oldPiles, action, oldValue+a.alpha*((reward+future)-oldValue))
}
