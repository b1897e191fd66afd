package core

import "fmt"

// Action removes Count objects from the pile at index Pile.
type Action struct {
	Pile  int
	Count int
}

func (a Action) String() string {
	return fmt.Sprintf("(%d,%d)", a.Pile, a.Count)
}

// Validate checks the action against the given pile configuration.
func (a Action) Validate(p Piles) error {
	if a.Pile < 0 || a.Pile >= len(p) {
		return fmt.Errorf("%w: pile %d out of range [0,%d)", ErrIllegalMove, a.Pile, len(p))
	}
	if a.Count < 1 {
		return fmt.Errorf("%w: must remove at least 1 object, got %d", ErrIllegalMove, a.Count)
	}
	if a.Count > p[a.Pile] {
		return fmt.Errorf("%w: pile %d has %d objects, cannot remove %d", ErrIllegalMove, a.Pile, p[a.Pile], a.Count)
	}
	return nil
}
