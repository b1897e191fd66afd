package main

import (
	"os"
	"os/signal"

	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/mitchelldurbincs/NimReinforcementLearning/internal/config"
	"github.com/mitchelldurbincs/NimReinforcementLearning/internal/game/core"
	"github.com/mitchelldurbincs/NimReinforcementLearning/internal/game/events"
	"github.com/mitchelldurbincs/NimReinforcementLearning/internal/game/events/subscribers"
	"github.com/mitchelldurbincs/NimReinforcementLearning/internal/play"
	"github.com/mitchelldurbincs/NimReinforcementLearning/internal/training"
	"github.com/mitchelldurbincs/NimReinforcementLearning/internal/ui/renderer"
)

var playCmd = &cobra.Command{
	Use:   "play",
	Short: "Train an agent, then play against it",
	RunE:  runPlay,
}

func init() {
	addTrainingFlags(playCmd)
	playCmd.Flags().Int("human", 0, "Your seat: 0 moves first, 1 moves second")
}

func runPlay(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	c := config.Get()
	a, err := trainAgent(ctx, c)
	if err != nil {
		return err
	}

	styles := renderer.PlainStyles()
	if isatty.IsTerminal(os.Stdout.Fd()) {
		styles = renderer.DefaultStyles()
	}

	bus := events.NewEventBus(log.Logger)
	bus.Subscribe(subscribers.NewLoggerSubscriber("play_events", log.Logger, zerolog.DebugLevel))

	session, err := play.NewSession(training.GreedyPlayer{Agent: a}, cmd.InOrStdin(), cmd.OutOrStdout(), play.Config{
		Piles:       core.Piles(c.Game.Piles),
		HumanPlayer: c.Play.HumanPlayer,
		Renderer:    renderer.NewBoardRenderer(styles),
		EventBus:    bus,
		Logger:      log.Logger,
	})
	if err != nil {
		return err
	}

	// Config edits made while the game is running only affect logging.
	config.WatchConfig(func(updated *config.Config, err error) {
		if err != nil {
			log.Warn().Err(err).Msg("Ignoring invalid config change")
			return
		}
		setupLogging(updated.Log.Level, updated.Log.Format)
	})

	_, err = session.Run(ctx)
	return err
}
