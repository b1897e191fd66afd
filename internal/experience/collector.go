package experience

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/mitchelldurbincs/NimReinforcementLearning/internal/game/core"
)

// Transition is one value update observed during self-play: the player who acted, the
// board before and after, and the reward it was credited with.
type Transition struct {
	ID          string
	GameID      string
	PlayerID    int
	State       core.Piles
	Action      core.Action
	NextState   core.Piles
	Reward      float64
	Done        bool
	CollectedAt time.Time
}

// Collector receives transitions from the training loop.
type Collector interface {
	Record(gameID string, playerID int, state core.Piles, action core.Action, next core.Piles, reward float64, done bool)
}

// SimpleCollector keeps transitions in memory up to maxSize, dropping new ones once full.
type SimpleCollector struct {
	mu          sync.Mutex
	experiences []Transition
	maxSize     int
	dropped     int
	logger      zerolog.Logger
}

// NewSimpleCollector creates a new simple experience collector
func NewSimpleCollector(maxSize int, logger zerolog.Logger) *SimpleCollector {
	if maxSize <= 0 {
		maxSize = 100000
	}
	return &SimpleCollector{
		experiences: make([]Transition, 0, min(maxSize, 1024)),
		maxSize:     maxSize,
		logger:      logger.With().Str("component", "experience_collector").Logger(),
	}
}

func (c *SimpleCollector) Record(gameID string, playerID int, state core.Piles, action core.Action, next core.Piles, reward float64, done bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if len(c.experiences) >= c.maxSize {
		c.dropped++
		if c.dropped == 1 {
			c.logger.Warn().
				Int("buffer_size", len(c.experiences)).
				Int("max_size", c.maxSize).
				Msg("Experience buffer full, dropping experience")
		}
		return
	}

	t := Transition{
		ID:          uuid.New().String(),
		GameID:      gameID,
		PlayerID:    playerID,
		State:       state.Clone(),
		Action:      action,
		NextState:   next.Clone(),
		Reward:      reward,
		Done:        done,
		CollectedAt: time.Now(),
	}
	c.experiences = append(c.experiences, t)

	c.logger.Debug().
		Str("experience_id", t.ID).
		Int("player_id", playerID).
		Float64("reward", reward).
		Bool("done", done).
		Msg("Collected experience")
}

// Experiences returns a copy of all collected transitions
func (c *SimpleCollector) Experiences() []Transition {
	c.mu.Lock()
	defer c.mu.Unlock()

	result := make([]Transition, len(c.experiences))
	copy(result, c.experiences)
	return result
}

func (c *SimpleCollector) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.experiences)
}

// Dropped is the number of transitions rejected because the collector was full.
func (c *SimpleCollector) Dropped() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.dropped
}

func (c *SimpleCollector) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.experiences = c.experiences[:0]
	c.dropped = 0
}
