package agent

import (
	"sort"

	"github.com/mitchelldurbincs/NimReinforcementLearning/internal/game/core"
)

// Key identifies one table entry: a pile snapshot plus the action taken from it.
//
// The player to move is deliberately not part of the key. In Nim the legal actions and
// their worth depend only on the pile contents, so both seats share one set of
// estimates. That symmetry is specific to this game and does not carry over to games
// where the same board means different things for each side.
type Key struct {
	State  string
	Action core.Action
}

// Entry is a single (state, action, value) row, used for inspection and dumps.
type Entry struct {
	State  string
	Action core.Action
	Value  float64
}

// QTable maps (piles, action) to a value estimate. Missing entries read as 0.
// A QTable is owned by one Agent and is not safe for concurrent writers.
type QTable struct {
	values map[Key]float64
}

func NewQTable() *QTable {
	return &QTable{values: make(map[Key]float64)}
}

func (t *QTable) Get(piles core.Piles, action core.Action) float64 {
	return t.values[Key{State: piles.Key(), Action: action}]
}

func (t *QTable) Set(piles core.Piles, action core.Action, value float64) {
	t.values[Key{State: piles.Key(), Action: action}] = value
}

func (t *QTable) Len() int { return len(t.values) }

// Entries returns every stored row ordered by state, then pile, then count.
func (t *QTable) Entries() []Entry {
	entries := make([]Entry, 0, len(t.values))
	for k, v := range t.values {
		entries = append(entries, Entry{State: k.State, Action: k.Action, Value: v})
	}
	sort.Slice(entries, func(i, j int) bool {
		a, b := entries[i], entries[j]
		if a.State != b.State {
			return a.State < b.State
		}
		if a.Action.Pile != b.Action.Pile {
			return a.Action.Pile < b.Action.Pile
		}
		return a.Action.Count < b.Action.Count
	})
	return entries
}
