package agent

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/mitchelldurbincs/NimReinforcementLearning/internal/game/core"
)

func TestQTable_KeyIgnoresOrigin(t *testing.T) {
	table := NewQTable()
	action := core.Action{Pile: 1, Count: 1}

	table.Set(core.Piles{1, 3, 5, 7}, action, 0.4)

	// A different slice with the same contents is the same state.
	assert.Equal(t, 0.4, table.Get(core.Piles{1, 3, 5, 7}, action))
	assert.Equal(t, 0.0, table.Get(core.Piles{1, 3, 5, 6}, action))
	assert.Equal(t, 0.0, table.Get(core.Piles{1, 3, 5, 7}, core.Action{Pile: 1, Count: 2}))
}

func TestQTable_SetReplaces(t *testing.T) {
	table := NewQTable()
	p := core.Piles{2}
	a := core.Action{Pile: 0, Count: 1}

	table.Set(p, a, 1)
	table.Set(p, a, -1)
	assert.Equal(t, -1.0, table.Get(p, a))
	assert.Equal(t, 1, table.Len())
}

func TestQTable_SnapshotIsImmutable(t *testing.T) {
	table := NewQTable()
	p := core.Piles{2, 2}
	a := core.Action{Pile: 0, Count: 1}
	table.Set(p, a, 0.5)

	p[0] = 1
	assert.Equal(t, 0.0, table.Get(p, a))
	assert.Equal(t, 0.5, table.Get(core.Piles{2, 2}, a))
}

func TestQTable_EntriesSorted(t *testing.T) {
	table := NewQTable()
	table.Set(core.Piles{1, 2}, core.Action{Pile: 1, Count: 2}, 0.3)
	table.Set(core.Piles{1, 2}, core.Action{Pile: 0, Count: 1}, 0.1)
	table.Set(core.Piles{0, 2}, core.Action{Pile: 1, Count: 1}, 0.2)
	table.Set(core.Piles{1, 2}, core.Action{Pile: 1, Count: 1}, -0.2)

	entries := table.Entries()
	assert.Equal(t, []Entry{
		{State: "0,2", Action: core.Action{Pile: 1, Count: 1}, Value: 0.2},
		{State: "1,2", Action: core.Action{Pile: 0, Count: 1}, Value: 0.1},
		{State: "1,2", Action: core.Action{Pile: 1, Count: 1}, Value: -0.2},
		{State: "1,2", Action: core.Action{Pile: 1, Count: 2}, Value: 0.3},
	}, entries)
}
