package monitoring

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
)

// TrainingMetrics counts what the self-play loop does. Each instance owns its registry so
// several trainers, or several tests, never collide on registration.
type TrainingMetrics struct {
	registry *prometheus.Registry

	Episodes      prometheus.Counter
	Moves         prometheus.Counter
	Updates       *prometheus.CounterVec
	Losses        *prometheus.CounterVec
	EpisodeLength prometheus.Histogram
	TableSize     prometheus.Gauge
}

// NewTrainingMetrics registers the training collectors under the given namespace.
// constLabels are attached to every series, e.g. a worker index in parallel training.
func NewTrainingMetrics(namespace string, constLabels prometheus.Labels) *TrainingMetrics {
	m := &TrainingMetrics{
		registry: prometheus.NewRegistry(),
		Episodes: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   namespace,
			Name:        "episodes_total",
			Help:        "Self-play episodes completed.",
			ConstLabels: constLabels,
		}),
		Moves: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   namespace,
			Name:        "moves_total",
			Help:        "Moves applied during self-play.",
			ConstLabels: constLabels,
		}),
		Updates: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace:   namespace,
			Name:        "value_updates_total",
			Help:        "Temporal-difference updates, by outcome of the update (step, win, loss).",
			ConstLabels: constLabels,
		}, []string{"kind"}),
		Losses: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace:   namespace,
			Name:        "losses_total",
			Help:        "Episodes lost, by the player who emptied the board.",
			ConstLabels: constLabels,
		}, []string{"player"}),
		EpisodeLength: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace:   namespace,
			Name:        "episode_moves",
			Help:        "Number of moves per self-play episode.",
			Buckets:     prometheus.LinearBuckets(1, 2, 10),
			ConstLabels: constLabels,
		}),
		TableSize: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace:   namespace,
			Name:        "qtable_entries",
			Help:        "Entries currently stored in the value table.",
			ConstLabels: constLabels,
		}),
	}

	m.registry.MustRegister(m.Episodes, m.Moves, m.Updates, m.Losses, m.EpisodeLength, m.TableSize)
	return m
}

// Registry exposes the private registry, e.g. for promhttp or for gathering in tests.
func (m *TrainingMetrics) Registry() *prometheus.Registry { return m.registry }

func (m *TrainingMetrics) ObserveUpdate(kind string) {
	m.Updates.WithLabelValues(kind).Inc()
}

// ObserveEpisode records a finished episode.
func (m *TrainingMetrics) ObserveEpisode(moves, loser, tableSize int) {
	m.Episodes.Inc()
	m.Moves.Add(float64(moves))
	m.EpisodeLength.Observe(float64(moves))
	m.Losses.WithLabelValues(strconv.Itoa(loser)).Inc()
	m.TableSize.Set(float64(tableSize))
}
