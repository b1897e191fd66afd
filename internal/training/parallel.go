package training

import (
	"context"
	"math/rand"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/mitchelldurbincs/NimReinforcementLearning/internal/agent"
	"github.com/mitchelldurbincs/NimReinforcementLearning/internal/monitoring"
)

// WorkerResult is what one parallel worker produced.
type WorkerResult struct {
	Worker  int
	Seed    int64
	Agent   *agent.Agent
	Metrics *monitoring.TrainingMetrics
}

// Parallel trains independent agents concurrently, worker i seeded with seed+i. Every
// worker owns its agent, table, RNG and metrics; nothing mutable is shared.
type Parallel struct {
	workers  []WorkerResult
	trainers []*Trainer
}

// NewParallel builds the workers without starting them, so their metrics can be
// exposed before Run.
func NewParallel(cfg Config, workers int, seed int64, logger zerolog.Logger) (*Parallel, error) {
	if workers < 1 {
		workers = 1
	}

	p := &Parallel{
		workers:  make([]WorkerResult, workers),
		trainers: make([]*Trainer, workers),
	}
	for i := 0; i < workers; i++ {
		workerSeed := seed + int64(i)
		a := agent.New(cfg.Agent, rand.New(rand.NewSource(workerSeed)))
		metrics := monitoring.NewTrainingMetrics("nim", prometheus.Labels{"worker": strconv.Itoa(i)})

		tr, err := NewTrainer(a, cfg,
			WithLogger(logger.With().Int("worker", i).Logger()),
			WithMetrics(metrics),
		)
		if err != nil {
			return nil, err
		}
		p.workers[i] = WorkerResult{Worker: i, Seed: workerSeed, Agent: a, Metrics: metrics}
		p.trainers[i] = tr
	}
	return p, nil
}

func (p *Parallel) Workers() []WorkerResult { return p.workers }

// Gatherers merges every worker's registry.
func (p *Parallel) Gatherers() prometheus.Gatherers {
	g := make(prometheus.Gatherers, len(p.workers))
	for i, w := range p.workers {
		g[i] = w.Metrics.Registry()
	}
	return g
}

// Run trains all workers. The first worker error cancels the others.
func (p *Parallel) Run(ctx context.Context) ([]WorkerResult, error) {
	g, ctx := errgroup.WithContext(ctx)
	for _, tr := range p.trainers {
		tr := tr
		g.Go(func() error {
			_, err := tr.Run(ctx)
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return p.workers, err
	}
	return p.workers, nil
}

// TrainParallel builds and runs workers independent agents.
func TrainParallel(ctx context.Context, cfg Config, workers int, seed int64, logger zerolog.Logger) ([]WorkerResult, error) {
	p, err := NewParallel(cfg, workers, seed, logger)
	if err != nil {
		return nil, err
	}
	return p.Run(ctx)
}
