package testutil

import "github.com/mitchelldurbincs/NimReinforcementLearning/internal/game/core"

// StandardPiles is the classic 1-3-5-7 starting board.
func StandardPiles() core.Piles {
	return core.Piles{1, 3, 5, 7}
}

// SmallPiles is a board small enough that self-play converges in a few hundred episodes.
// The first player wins by taking the whole 2-pile, leaving [1,0].
func SmallPiles() core.Piles {
	return core.Piles{1, 2}
}

// EndgamePiles leaves a single object, so the player to move is forced to lose.
func EndgamePiles() core.Piles {
	return core.Piles{0, 0, 0, 1}
}
