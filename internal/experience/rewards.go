package experience

// RewardConfig holds the rewards handed out during self-play.
type RewardConfig struct {
	// WinGame goes to the player who did not take the last object.
	WinGame float64
	// LoseGame goes to the player who emptied the board.
	LoseGame float64
	// Step is the reward for any non-terminal move.
	Step float64
}

// DefaultRewardConfig returns the default reward configuration
func DefaultRewardConfig() RewardConfig {
	return RewardConfig{
		WinGame:  1.0,
		LoseGame: -1.0,
		Step:     0.0,
	}
}

// Terminal returns the reward for playerID once the game has ended with the given loser.
func (rc RewardConfig) Terminal(playerID, loser int) float64 {
	if playerID == loser {
		return rc.LoseGame
	}
	return rc.WinGame
}
