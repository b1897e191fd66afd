package core

import (
	"fmt"
	"strconv"
	"strings"
)

// Piles is an ordered pile configuration. Index in the slice is the pile index.
type Piles []int

// NewPiles copies sizes into a new configuration after checking it is playable.
func NewPiles(sizes []int) (Piles, error) {
	if len(sizes) == 0 {
		return nil, fmt.Errorf("%w: no piles", ErrInvalidPiles)
	}
	total := 0
	for i, n := range sizes {
		if n < 0 {
			return nil, fmt.Errorf("%w: pile %d has negative size %d", ErrInvalidPiles, i, n)
		}
		total += n
	}
	if total == 0 {
		return nil, fmt.Errorf("%w: all piles are empty", ErrInvalidPiles)
	}
	p := make(Piles, len(sizes))
	copy(p, sizes)
	return p, nil
}

// Clone returns an independent copy.
func (p Piles) Clone() Piles {
	c := make(Piles, len(p))
	copy(c, p)
	return c
}

// Total is the number of objects left on the board.
func (p Piles) Total() int {
	sum := 0
	for _, n := range p {
		sum += n
	}
	return sum
}

// Empty reports whether every pile is zero.
func (p Piles) Empty() bool {
	for _, n := range p {
		if n != 0 {
			return false
		}
	}
	return true
}

// Key is an immutable, order-preserving snapshot usable as a map key.
// Equal pile contents always produce equal keys.
func (p Piles) Key() string {
	var sb strings.Builder
	for i, n := range p {
		if i > 0 {
			sb.WriteByte(',')
		}
		sb.WriteString(strconv.Itoa(n))
	}
	return sb.String()
}

func (p Piles) String() string {
	return "[" + p.Key() + "]"
}

// AvailableActions enumerates every legal action for p. Callers must not rely on the order.
func AvailableActions(p Piles) []Action {
	actions := make([]Action, 0, p.Total())
	for i, n := range p {
		for c := 1; c <= n; c++ {
			actions = append(actions, Action{Pile: i, Count: c})
		}
	}
	return actions
}

// ParsePiles parses a comma separated list such as "1,3,5,7".
func ParsePiles(s string) (Piles, error) {
	fields := strings.Split(s, ",")
	sizes := make([]int, 0, len(fields))
	for _, f := range fields {
		n, err := strconv.Atoi(strings.TrimSpace(f))
		if err != nil {
			return nil, fmt.Errorf("%w: %q is not an integer", ErrInvalidPiles, f)
		}
		sizes = append(sizes, n)
	}
	return NewPiles(sizes)
}
