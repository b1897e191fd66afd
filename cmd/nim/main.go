package main

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/mitchelldurbincs/NimReinforcementLearning/internal/config"
)

var (
	configPath string
	configEnv  string
	logLevel   string

	rootCmd = &cobra.Command{
		Use:   "nim",
		Short: "Train and play a Q-learning agent for Nim",
		Long: `nim teaches a tabular Q-learning agent to play misère Nim (whoever takes the
last object loses) through self-play, then lets you play against it or measure it
against a random opponent.`,
		SilenceUsage:      true,
		PersistentPreRunE: loadConfig,
	}
)

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to config file (default: search ., ./config, /etc/nim-rl)")
	rootCmd.PersistentFlags().StringVar(&configEnv, "env", "", "Merge config.<env>.yaml over the base config")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level (debug, info, warn, error)")

	rootCmd.AddCommand(trainCmd, playCmd, evalCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// flagOverrides maps command-line flags onto config keys. Only flags the user set are applied.
var flagOverrides = map[string]string{
	"log-level": "log.level",
	"piles":     "game.piles",
	"episodes":  "training.episodes",
	"seed":      "training.seed",
	"workers":   "training.workers",
	"alpha":     "agent.alpha",
	"epsilon":   "agent.epsilon",
	"games":     "evaluation.games",
	"human":     "play.human_player",
	"dump":      "experience.enabled",
}

func loadConfig(cmd *cobra.Command, _ []string) error {
	if err := config.Init(configPath); err != nil {
		return err
	}
	if err := config.LoadEnvironmentConfig(configEnv); err != nil {
		return err
	}

	for flagName, key := range flagOverrides {
		f := cmd.Flags().Lookup(flagName)
		if f == nil || !f.Changed {
			continue
		}
		value := any(f.Value.String())
		if flagName == "piles" {
			piles, err := parsePilesFlag(f.Value.String())
			if err != nil {
				return err
			}
			value = piles
		}
		if err := config.Set(key, value); err != nil {
			return fmt.Errorf("--%s: %w", flagName, err)
		}
	}

	c := config.Get()
	setupLogging(c.Log.Level, c.Log.Format)
	if path := config.ConfigFilePath(); path != "" {
		log.Debug().Str("path", path).Msg("Loaded config file")
	}
	return nil
}

func setupLogging(level, format string) {
	logLevel, err := zerolog.ParseLevel(level)
	if err != nil || level == "" {
		logLevel = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(logLevel)

	log.Logger = newLogger(os.Stderr, format, isatty.IsTerminal(os.Stderr.Fd()))
}

// newLogger writes human-readable lines on a terminal or when format is "console",
// and JSON otherwise.
func newLogger(w io.Writer, format string, terminal bool) zerolog.Logger {
	if terminal || format == "console" {
		return zerolog.New(zerolog.ConsoleWriter{
			Out:        w,
			TimeFormat: time.RFC3339,
			NoColor:    !terminal,
		}).With().Timestamp().Logger()
	}
	return zerolog.New(w).With().Timestamp().Logger()
}
