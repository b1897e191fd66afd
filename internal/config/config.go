package config

import (
	"fmt"
	"strings"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

// Config holds all configuration for the application
type Config struct {
	Game       GameConfig       `mapstructure:"game"`
	Agent      AgentConfig      `mapstructure:"agent"`
	Training   TrainingConfig   `mapstructure:"training"`
	Evaluation EvaluationConfig `mapstructure:"evaluation"`
	Play       PlayConfig       `mapstructure:"play"`
	Experience ExperienceConfig `mapstructure:"experience"`
	Log        LogConfig        `mapstructure:"log"`
}

// GameConfig holds the starting board
type GameConfig struct {
	Piles []int `mapstructure:"piles"`
}

// AgentConfig holds learner hyperparameters
type AgentConfig struct {
	Alpha   float64 `mapstructure:"alpha"`
	Epsilon float64 `mapstructure:"epsilon"`
}

// TrainingConfig holds self-play settings
type TrainingConfig struct {
	Episodes int   `mapstructure:"episodes"`
	Seed     int64 `mapstructure:"seed"`
	Workers  int   `mapstructure:"workers"`
	LogEvery int   `mapstructure:"log_every"`
}

type EvaluationConfig struct {
	Games int `mapstructure:"games"`
}

type PlayConfig struct {
	HumanPlayer int `mapstructure:"human_player"`
}

// ExperienceConfig controls the JSON-lines dump of transitions and the value table
type ExperienceConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Dir     string `mapstructure:"dir"`
	MaxSize int    `mapstructure:"max_size"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

var (
	// Global config instance
	cfg *Config
	v   *viper.Viper
)

func setViperDefaults(v *viper.Viper) {
	v.SetDefault("game.piles", []int{1, 3, 5, 7})

	v.SetDefault("agent.alpha", 0.5)
	v.SetDefault("agent.epsilon", 0.1)

	// Seed 0 means time-based
	v.SetDefault("training.episodes", 10000)
	v.SetDefault("training.seed", 0)
	v.SetDefault("training.workers", 1)
	v.SetDefault("training.log_every", 1000)

	v.SetDefault("evaluation.games", 1000)

	v.SetDefault("play.human_player", 0)

	v.SetDefault("experience.enabled", false)
	v.SetDefault("experience.dir", "experiences")
	v.SetDefault("experience.max_size", 100000)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")
}

// Init initializes the configuration
func Init(configPath string) error {
	v = viper.New()
	setViperDefaults(v)

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
		v.AddConfigPath("/etc/nim-rl")
	}

	v.SetEnvPrefix("NIM")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		// A missing explicit file falls back to defaults; for the search paths only
		// "not found" is tolerated.
		if configPath == "" {
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
				return fmt.Errorf("error reading config file: %w", err)
			}
		}
	}

	c := &Config{}
	if err := v.Unmarshal(c); err != nil {
		return fmt.Errorf("unable to decode config into struct: %w", err)
	}
	if err := Validate(c); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}
	cfg = c
	return nil
}

// Get returns the global config instance
func Get() *Config {
	if cfg == nil {
		if err := Init(""); err != nil {
			panic("failed to initialize config with defaults: " + err.Error())
		}
	}
	return cfg
}

// LoadEnvironmentConfig merges config.<env>.yaml from the working directory over the loaded config.
func LoadEnvironmentConfig(env string) error {
	if env == "" {
		return nil
	}

	envFile := fmt.Sprintf("config.%s.yaml", env)
	v.SetConfigFile(envFile)
	if err := v.MergeInConfig(); err != nil {
		return fmt.Errorf("error merging environment config %s: %w", envFile, err)
	}
	return reload()
}

// Set allows runtime config updates, e.g. from command-line flags. A value that fails
// validation is rolled back, leaving both viper and the config as they were.
func Set(key string, value interface{}) error {
	prev := v.Get(key)
	v.Set(key, value)
	if err := reload(); err != nil {
		v.Set(key, prev)
		return err
	}
	return nil
}

func reload() error {
	c := &Config{}
	if err := v.Unmarshal(c); err != nil {
		return fmt.Errorf("unable to decode config into struct: %w", err)
	}
	if err := Validate(c); err != nil {
		return err
	}
	cfg = c
	return nil
}

// ConfigFilePath returns the path of the loaded config file
func ConfigFilePath() string {
	return v.ConfigFileUsed()
}

// WatchConfig re-reads the config file when it changes. Invalid edits are reported through
// onChange and leave the previous config in place.
func WatchConfig(onChange func(*Config, error)) {
	v.OnConfigChange(func(e fsnotify.Event) {
		err := reload()
		if onChange != nil {
			onChange(cfg, err)
		}
	})
	v.WatchConfig()
}

// Validate checks ranges the rest of the program relies on
func Validate(c *Config) error {
	if len(c.Game.Piles) == 0 {
		return fmt.Errorf("game.piles must not be empty")
	}
	total := 0
	for i, n := range c.Game.Piles {
		if n < 0 {
			return fmt.Errorf("game.piles[%d] must be non-negative", i)
		}
		total += n
	}
	if total == 0 {
		return fmt.Errorf("game.piles must contain at least one object")
	}

	if c.Agent.Alpha <= 0 || c.Agent.Alpha > 1 {
		return fmt.Errorf("agent.alpha must be in (0, 1]")
	}
	if c.Agent.Epsilon < 0 || c.Agent.Epsilon > 1 {
		return fmt.Errorf("agent.epsilon must be between 0 and 1")
	}

	if c.Training.Episodes < 0 {
		return fmt.Errorf("training.episodes must be non-negative")
	}
	if c.Training.Workers < 1 {
		return fmt.Errorf("training.workers must be at least 1")
	}
	if c.Training.LogEvery < 0 {
		return fmt.Errorf("training.log_every must be non-negative")
	}

	if c.Evaluation.Games < 0 {
		return fmt.Errorf("evaluation.games must be non-negative")
	}
	if c.Play.HumanPlayer != 0 && c.Play.HumanPlayer != 1 {
		return fmt.Errorf("play.human_player must be 0 or 1")
	}

	if c.Experience.Enabled && c.Experience.Dir == "" {
		return fmt.Errorf("experience.dir is required when experience.enabled is set")
	}

	switch c.Log.Format {
	case "console", "json":
	default:
		return fmt.Errorf("log.format must be console or json")
	}
	return nil
}
