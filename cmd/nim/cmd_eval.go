package main

import (
	"fmt"
	"math/rand"
	"os"
	"os/signal"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/mitchelldurbincs/NimReinforcementLearning/internal/agent"
	"github.com/mitchelldurbincs/NimReinforcementLearning/internal/config"
	"github.com/mitchelldurbincs/NimReinforcementLearning/internal/game/core"
	"github.com/mitchelldurbincs/NimReinforcementLearning/internal/training"
)

var evalCmd = &cobra.Command{
	Use:   "eval",
	Short: "Measure how a trained agent fares against an untrained one and a random player",
	RunE:  runEval,
}

func init() {
	addTrainingFlags(evalCmd)
	evalCmd.Flags().Int("games", 0, "Evaluation games per opponent")
}

func runEval(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	c := config.Get()
	trained, err := trainAgent(ctx, c)
	if err != nil {
		return err
	}

	untrained := agent.New(trainingConfig(c).Agent, rand.New(rand.NewSource(seedFor(c)+2)))

	piles := core.Piles(c.Game.Piles)
	rng := rand.New(rand.NewSource(seedFor(c) + 3))
	opponents := []struct {
		name   string
		player training.Player
	}{
		{"random", training.NewRandomPlayer(rng)},
		{"untrained", training.GreedyPlayer{Agent: untrained}},
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Piles %v, %d games per opponent, seats alternate\n", piles, c.Evaluation.Games)
	for _, opp := range opponents {
		res, err := training.Evaluate(training.GreedyPlayer{Agent: trained}, opp.player, piles, c.Evaluation.Games,
			log.Logger.With().Str("opponent", opp.name).Logger())
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "  vs %-10s wins %5d  losses %5d  win rate %5.1f%%\n", opp.name, res.Wins, res.Losses, 100*res.WinRate())
	}
	return nil
}
