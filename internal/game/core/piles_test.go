package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAvailableActions(t *testing.T) {
	actions := AvailableActions(Piles{1, 3, 5, 7})
	assert.Len(t, actions, 16)

	seen := make(map[Action]bool)
	for _, a := range actions {
		assert.False(t, seen[a], "duplicate action %v", a)
		seen[a] = true
		assert.NoError(t, a.Validate(Piles{1, 3, 5, 7}))
	}
}

func TestAvailableActionsEmptyBoard(t *testing.T) {
	assert.Empty(t, AvailableActions(Piles{0, 0, 0}))
	assert.Empty(t, AvailableActions(Piles{}))
}

func TestPilesKey(t *testing.T) {
	a := Piles{1, 3, 5, 7}
	b := Piles{1, 3, 5, 7}
	assert.Equal(t, a.Key(), b.Key())
	assert.Equal(t, "1,3,5,7", a.Key())

	// Order matters.
	assert.NotEqual(t, Piles{3, 1}.Key(), Piles{1, 3}.Key())
	// Multi-digit sizes stay distinguishable.
	assert.NotEqual(t, Piles{1, 11}.Key(), Piles{11, 1}.Key())
}

func TestPilesClone(t *testing.T) {
	p := Piles{2, 4}
	c := p.Clone()
	c[0] = 0
	assert.Equal(t, 2, p[0])
}

func TestPilesTotalAndEmpty(t *testing.T) {
	assert.Equal(t, 16, Piles{1, 3, 5, 7}.Total())
	assert.False(t, Piles{0, 0, 1}.Empty())
	assert.True(t, Piles{0, 0, 0}.Empty())
}

func TestNewPiles(t *testing.T) {
	src := []int{1, 3}
	p, err := NewPiles(src)
	require.NoError(t, err)
	src[0] = 9
	assert.Equal(t, Piles{1, 3}, p)

	_, err = NewPiles(nil)
	assert.ErrorIs(t, err, ErrInvalidPiles)
	_, err = NewPiles([]int{1, -1})
	assert.ErrorIs(t, err, ErrInvalidPiles)
	_, err = NewPiles([]int{0, 0})
	assert.ErrorIs(t, err, ErrInvalidPiles)
}

func TestParsePiles(t *testing.T) {
	p, err := ParsePiles("1, 3,5 ,7")
	require.NoError(t, err)
	assert.Equal(t, Piles{1, 3, 5, 7}, p)

	_, err = ParsePiles("1,x")
	assert.ErrorIs(t, err, ErrInvalidPiles)
	_, err = ParsePiles("")
	assert.ErrorIs(t, err, ErrInvalidPiles)
}
