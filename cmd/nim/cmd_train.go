package main

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/mitchelldurbincs/NimReinforcementLearning/internal/agent"
	"github.com/mitchelldurbincs/NimReinforcementLearning/internal/config"
	"github.com/mitchelldurbincs/NimReinforcementLearning/internal/experience"
	"github.com/mitchelldurbincs/NimReinforcementLearning/internal/game/core"
	"github.com/mitchelldurbincs/NimReinforcementLearning/internal/game/events"
	"github.com/mitchelldurbincs/NimReinforcementLearning/internal/game/events/subscribers"
	"github.com/mitchelldurbincs/NimReinforcementLearning/internal/monitoring"
	"github.com/mitchelldurbincs/NimReinforcementLearning/internal/training"
)

var (
	metricsAddr string

	trainCmd = &cobra.Command{
		Use:   "train",
		Short: "Train an agent through self-play and report its strength",
		RunE:  runTrain,
	}
)

func init() {
	addTrainingFlags(trainCmd)
	trainCmd.Flags().Bool("dump", false, "Write transitions and the learned table as JSON lines to experience.dir")
	trainCmd.Flags().StringVar(&metricsAddr, "metrics-addr", "", "Serve Prometheus metrics on this address while training (e.g. :9090)")
}

// addTrainingFlags registers the flags every command that trains an agent accepts.
func addTrainingFlags(cmd *cobra.Command) {
	cmd.Flags().String("piles", "", "Starting piles, comma separated (default 1,3,5,7)")
	cmd.Flags().Int("episodes", 0, "Self-play episodes")
	cmd.Flags().Int64("seed", 0, "Random seed (0 = time based)")
	cmd.Flags().Int("workers", 0, "Independent agents to train in parallel; the best is kept")
	cmd.Flags().Float64("alpha", 0, "Learning rate")
	cmd.Flags().Float64("epsilon", 0, "Exploration rate")
}

func parsePilesFlag(s string) ([]int, error) {
	piles, err := core.ParsePiles(s)
	if err != nil {
		return nil, fmt.Errorf("--piles: %w", err)
	}
	return []int(piles), nil
}

func runTrain(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	c := config.Get()
	a, err := trainAgent(ctx, c)
	if err != nil {
		return err
	}

	res, err := training.Evaluate(
		training.GreedyPlayer{Agent: a},
		training.NewRandomPlayer(rand.New(rand.NewSource(seedFor(c)+1))),
		core.Piles(c.Game.Piles), c.Evaluation.Games, log.Logger,
	)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Trained %d table entries; greedy agent won %d of %d games (%.1f%%) against a random player.\n",
		a.Table().Len(), res.Wins, res.Games, 100*res.WinRate())
	return nil
}

func seedFor(c *config.Config) int64 {
	if c.Training.Seed != 0 {
		return c.Training.Seed
	}
	return time.Now().UnixNano()
}

func trainingConfig(c *config.Config) training.Config {
	cfg := training.DefaultConfig()
	cfg.Piles = core.Piles(c.Game.Piles)
	cfg.Episodes = c.Training.Episodes
	cfg.Agent = agent.Config{Alpha: c.Agent.Alpha, Epsilon: c.Agent.Epsilon}
	cfg.LogEvery = c.Training.LogEvery
	return cfg
}

// trainAgent trains one agent, or several in parallel keeping the strongest, as configured.
func trainAgent(ctx context.Context, c *config.Config) (*agent.Agent, error) {
	seed := seedFor(c)
	cfg := trainingConfig(c)
	logger := log.Logger.With().Int64("seed", seed).Logger()

	if c.Training.Workers > 1 {
		return trainParallel(ctx, c, cfg, seed, logger)
	}

	bus := events.NewEventBus(logger)
	if zerolog.GlobalLevel() <= zerolog.DebugLevel {
		eventLogger := subscribers.NewLoggerSubscriber("training_events", logger, zerolog.DebugLevel)
		bus.Subscribe(eventLogger)
	}

	metrics := monitoring.NewTrainingMetrics("nim", nil)
	stopMetrics := serveMetrics(metrics.Registry(), logger)
	defer stopMetrics()

	opts := []training.Option{
		training.WithLogger(logger),
		training.WithEventBus(bus),
		training.WithMetrics(metrics),
	}
	var collector *experience.SimpleCollector
	if c.Experience.Enabled {
		collector = experience.NewSimpleCollector(c.Experience.MaxSize, logger)
		opts = append(opts, training.WithCollector(collector))
	}

	tr, err := training.NewTrainer(agent.New(cfg.Agent, rand.New(rand.NewSource(seed))), cfg, opts...)
	if err != nil {
		return nil, err
	}
	a, err := tr.Run(ctx)
	if err != nil {
		return nil, err
	}

	if collector != nil {
		if err := dumpExperience(ctx, c, a, collector.Experiences(), logger); err != nil {
			return nil, err
		}
	}
	return a, nil
}

func trainParallel(ctx context.Context, c *config.Config, cfg training.Config, seed int64, logger zerolog.Logger) (*agent.Agent, error) {
	parallel, err := training.NewParallel(cfg, c.Training.Workers, seed, logger)
	if err != nil {
		return nil, err
	}
	stopMetrics := serveMetrics(parallel.Gatherers(), logger)
	defer stopMetrics()

	results, err := parallel.Run(ctx)
	if err != nil {
		return nil, err
	}

	agents := make([]*agent.Agent, len(results))
	for i, r := range results {
		agents[i] = r.Agent
	}

	best, evals, err := training.BestOf(agents, cfg.Piles, c.Evaluation.Games, rand.New(rand.NewSource(seed-1)), logger)
	if err != nil {
		return nil, err
	}
	logger.Info().
		Int("best_worker", best).
		Int64("best_seed", results[best].Seed).
		Float64("win_rate", evals[best].WinRate()).
		Msg("Selected strongest agent")

	if c.Experience.Enabled {
		if err := dumpExperience(ctx, c, agents[best], nil, logger); err != nil {
			return nil, err
		}
	}
	return agents[best], nil
}

func dumpExperience(ctx context.Context, c *config.Config, a *agent.Agent, transitions []experience.Transition, logger zerolog.Logger) error {
	fp, err := experience.NewFilePersistence(c.Experience.Dir, logger)
	if err != nil {
		return err
	}
	stamp := time.Now().Format("20060102_150405")

	if len(transitions) > 0 {
		if _, err := fp.WriteTransitions(ctx, "transitions_"+stamp, transitions); err != nil {
			return err
		}
	}
	if _, err := fp.WriteQTable(ctx, "qtable_"+stamp, a.Table().Entries()); err != nil {
		return err
	}

	stats := fp.Stats()
	logger.Info().
		Int64("records", stats.RecordsWritten).
		Int64("bytes", stats.BytesWritten).
		Str("dir", c.Experience.Dir).
		Msg("Wrote experience dump")
	return nil
}

// serveMetrics exposes g over HTTP when --metrics-addr is set. The returned func shuts it down.
func serveMetrics(g prometheus.Gatherer, logger zerolog.Logger) func() {
	if metricsAddr == "" {
		return func() {}
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(g, promhttp.HandlerOpts{}))
	srv := &http.Server{Addr: metricsAddr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error().Err(err).Str("addr", metricsAddr).Msg("Metrics server failed")
		}
	}()
	logger.Info().Str("addr", metricsAddr).Msg("Serving metrics")

	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctx)
	}
}
