package config

import (
	"errors"
	"fmt"
	"math"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// ErrInvalidConfig is wrapped by every validation failure.
var ErrInvalidConfig = errors.New("invalid configuration")

// Config is the root configuration.
type Config struct {
	Logging    LoggingConfig    `mapstructure:"logging"`
	AI         AIConfig         `mapstructure:"ai"`
	Simulation SimulationConfig `mapstructure:"simulation"`
	Spectator  SpectatorConfig  `mapstructure:"spectator"`
}

// LoggingConfig selects the zap level and encoder.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// AIConfig tunes the opponent.
type AIConfig struct {
	Seed     int64          `mapstructure:"seed"`
	Pacing   time.Duration  `mapstructure:"pacing"`
	Cards    CardConfig     `mapstructure:"cards"`
	Attacks  AttackConfig   `mapstructure:"attacks"`
	Trade    TradeConfig    `mapstructure:"trade"`
	Variance VarianceConfig `mapstructure:"variance"`
}

// CardConfig tunes card selection.
type CardConfig struct {
	LowHealthThreshold   int     `mapstructure:"low_health_threshold"`
	ExpensiveCost        int     `mapstructure:"expensive_cost"`
	EarlyGameTurn        int     `mapstructure:"early_game_turn"`
	HighValueCutoff      float64 `mapstructure:"high_value_cutoff"`
	LowValueCutoff       float64 `mapstructure:"low_value_cutoff"`
	FutureMultiplier     float64 `mapstructure:"future_multiplier"`
	EarlyGameMultiplier  float64 `mapstructure:"early_game_multiplier"`
	FutureDominance      float64 `mapstructure:"future_dominance"`
	StrongAdvantage      float64 `mapstructure:"strong_advantage"`
	HoldProbability      float64 `mapstructure:"hold_probability"`
	EarlyStopProbability float64 `mapstructure:"early_stop_probability"`
}

// AttackConfig tunes attack planning.
type AttackConfig struct {
	ProfitableScore      float64 `mapstructure:"profitable_score"`
	HighAttackThreshold  int     `mapstructure:"high_attack_threshold"`
	CriticalHealthRatio  float64 `mapstructure:"critical_health_ratio"`
	CriticalHealthFloor  int     `mapstructure:"critical_health_floor"`
	SafeFaceHealthFactor float64 `mapstructure:"safe_face_health_factor"`
	HighValueTarget      float64 `mapstructure:"high_value_target"`
}

// TradeConfig tunes trade acceptance.
type TradeConfig struct {
	HighThreatAttack int     `mapstructure:"high_threat_attack"`
	BaseRatio        float64 `mapstructure:"base_ratio"`
	MinRatio         float64 `mapstructure:"min_ratio"`
	MaxRatio         float64 `mapstructure:"max_ratio"`
}

// VarianceConfig holds the probabilities of deliberate imperfection.
type VarianceConfig struct {
	Enabled                     bool    `mapstructure:"enabled"`
	SecondBestProbability       float64 `mapstructure:"second_best_probability"`
	ThirdBestProbability        float64 `mapstructure:"third_best_probability"`
	ReconsiderProbability       float64 `mapstructure:"reconsider_probability"`
	OrderShuffleProbability     float64 `mapstructure:"order_shuffle_probability"`
	SkipAttackProbability       float64 `mapstructure:"skip_attack_probability"`
	IgnoreProtectionProbability float64 `mapstructure:"ignore_protection_probability"`
	FaceMistakeProbability      float64 `mapstructure:"face_mistake_probability"`
	SkipTurnProbability         float64 `mapstructure:"skip_turn_probability"`
	ScoreVariance               float64 `mapstructure:"score_variance"`
}

// SimulationConfig drives the headless match runner.
type SimulationConfig struct {
	Matches      int    `mapstructure:"matches"`
	Parallelism  int    `mapstructure:"parallelism"`
	MaxTurns     int    `mapstructure:"max_turns"`
	StartHealth  int    `mapstructure:"start_health"`
	StartingHand int    `mapstructure:"starting_hand"`
	MaxMana      int    `mapstructure:"max_mana"`
	DeckSize     int    `mapstructure:"deck_size"`
	CatalogPath  string `mapstructure:"catalog_path"`
	ScenarioPath string `mapstructure:"scenario_path"`
}

// SpectatorConfig configures the websocket spectator.
type SpectatorConfig struct {
	Address    string        `mapstructure:"address"`
	ActionGap  time.Duration `mapstructure:"action_gap"`
	SendBuffer int           `mapstructure:"send_buffer"`
}

// Load reads configuration from path (optional), environment variables
// prefixed DUELIST_ and defaults, then validates it.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix("DUELIST")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		if _, err := os.Stat(path); err == nil {
			v.SetConfigFile(path)
			if err := v.ReadInConfig(); err != nil {
				return nil, fmt.Errorf("failed to read config %s: %w", path, err)
			}
		} else if !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to stat config %s: %w", path, err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Default returns the built-in configuration without touching disk or env.
func Default() *Config {
	v := viper.New()
	setDefaults(v)
	cfg := &Config{}
	// Defaults always decode.
	_ = v.Unmarshal(cfg)
	return cfg
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")

	v.SetDefault("ai.seed", 0)
	v.SetDefault("ai.pacing", "0s")

	v.SetDefault("ai.cards.low_health_threshold", 5)
	v.SetDefault("ai.cards.expensive_cost", 5)
	v.SetDefault("ai.cards.early_game_turn", 4)
	v.SetDefault("ai.cards.high_value_cutoff", 60.0)
	v.SetDefault("ai.cards.low_value_cutoff", 15.0)
	v.SetDefault("ai.cards.future_multiplier", 1.5)
	v.SetDefault("ai.cards.early_game_multiplier", 1.5)
	v.SetDefault("ai.cards.future_dominance", 2.0)
	v.SetDefault("ai.cards.strong_advantage", 1.5)
	v.SetDefault("ai.cards.hold_probability", 0.6)
	v.SetDefault("ai.cards.early_stop_probability", 0.5)

	v.SetDefault("ai.attacks.profitable_score", 10.0)
	v.SetDefault("ai.attacks.high_attack_threshold", 4)
	v.SetDefault("ai.attacks.critical_health_ratio", 0.3)
	v.SetDefault("ai.attacks.critical_health_floor", 5)
	v.SetDefault("ai.attacks.safe_face_health_factor", 1.5)
	v.SetDefault("ai.attacks.high_value_target", 14.0)

	v.SetDefault("ai.trade.high_threat_attack", 5)
	v.SetDefault("ai.trade.base_ratio", 1.3)
	v.SetDefault("ai.trade.min_ratio", 1.0)
	v.SetDefault("ai.trade.max_ratio", 2.0)

	v.SetDefault("ai.variance.enabled", true)
	v.SetDefault("ai.variance.second_best_probability", 0.07)
	v.SetDefault("ai.variance.third_best_probability", 0.03)
	v.SetDefault("ai.variance.reconsider_probability", 0.05)
	v.SetDefault("ai.variance.order_shuffle_probability", 0.1)
	v.SetDefault("ai.variance.skip_attack_probability", 0.03)
	v.SetDefault("ai.variance.ignore_protection_probability", 0.05)
	v.SetDefault("ai.variance.face_mistake_probability", 0.03)
	v.SetDefault("ai.variance.skip_turn_probability", 0.05)
	v.SetDefault("ai.variance.score_variance", 0.05)

	v.SetDefault("simulation.matches", 100)
	v.SetDefault("simulation.parallelism", 4)
	v.SetDefault("simulation.max_turns", 60)
	v.SetDefault("simulation.start_health", 20)
	v.SetDefault("simulation.starting_hand", 4)
	v.SetDefault("simulation.max_mana", 10)
	v.SetDefault("simulation.deck_size", 30)
	v.SetDefault("simulation.catalog_path", "")
	v.SetDefault("simulation.scenario_path", "")

	v.SetDefault("spectator.address", ":8080")
	v.SetDefault("spectator.action_gap", "400ms")
	v.SetDefault("spectator.send_buffer", 256)
}

// Validate rejects out-of-range settings. It is the only error class the AI
// surfaces to its caller.
func (c *Config) Validate() error {
	if c == nil {
		return fmt.Errorf("%w: config is nil", ErrInvalidConfig)
	}
	if c.AI.Pacing < 0 {
		return fmt.Errorf("%w: ai.pacing must not be negative", ErrInvalidConfig)
	}
	if err := c.AI.Cards.Validate(); err != nil {
		return err
	}
	if err := c.AI.Attacks.Validate(); err != nil {
		return err
	}
	if err := c.AI.Trade.Validate(); err != nil {
		return err
	}
	if err := c.AI.Variance.Validate(); err != nil {
		return err
	}
	if err := c.Simulation.Validate(); err != nil {
		return err
	}
	return nil
}

// Validate checks card selection settings.
func (c CardConfig) Validate() error {
	if err := probability("ai.cards.hold_probability", c.HoldProbability); err != nil {
		return err
	}
	if err := probability("ai.cards.early_stop_probability", c.EarlyStopProbability); err != nil {
		return err
	}
	for name, value := range map[string]float64{
		"ai.cards.low_health_threshold":  float64(c.LowHealthThreshold),
		"ai.cards.expensive_cost":        float64(c.ExpensiveCost),
		"ai.cards.early_game_turn":       float64(c.EarlyGameTurn),
		"ai.cards.high_value_cutoff":     c.HighValueCutoff,
		"ai.cards.low_value_cutoff":      c.LowValueCutoff,
		"ai.cards.future_multiplier":     c.FutureMultiplier,
		"ai.cards.early_game_multiplier": c.EarlyGameMultiplier,
		"ai.cards.future_dominance":      c.FutureDominance,
		"ai.cards.strong_advantage":      c.StrongAdvantage,
	} {
		if err := nonNegative(name, value); err != nil {
			return err
		}
	}
	if c.LowValueCutoff > c.HighValueCutoff {
		return fmt.Errorf("%w: ai.cards.low_value_cutoff exceeds high_value_cutoff", ErrInvalidConfig)
	}
	return nil
}

// Validate checks attack planning settings.
func (c AttackConfig) Validate() error {
	if err := probability("ai.attacks.critical_health_ratio", c.CriticalHealthRatio); err != nil {
		return err
	}
	for name, value := range map[string]float64{
		"ai.attacks.high_attack_threshold":   float64(c.HighAttackThreshold),
		"ai.attacks.critical_health_floor":   float64(c.CriticalHealthFloor),
		"ai.attacks.safe_face_health_factor": c.SafeFaceHealthFactor,
		"ai.attacks.high_value_target":       c.HighValueTarget,
	} {
		if err := nonNegative(name, value); err != nil {
			return err
		}
	}
	return nil
}

// Validate checks trade settings.
func (c TradeConfig) Validate() error {
	if err := nonNegative("ai.trade.high_threat_attack", float64(c.HighThreatAttack)); err != nil {
		return err
	}
	if err := nonNegative("ai.trade.base_ratio", c.BaseRatio); err != nil {
		return err
	}
	if c.MinRatio <= 0 || c.MaxRatio < c.MinRatio {
		return fmt.Errorf("%w: ai.trade ratio bounds [%v, %v] are invalid", ErrInvalidConfig, c.MinRatio, c.MaxRatio)
	}
	return nil
}

// Validate checks every variance probability lies in [0,1].
func (c VarianceConfig) Validate() error {
	for name, value := range map[string]float64{
		"second_best_probability":       c.SecondBestProbability,
		"third_best_probability":        c.ThirdBestProbability,
		"reconsider_probability":        c.ReconsiderProbability,
		"order_shuffle_probability":     c.OrderShuffleProbability,
		"skip_attack_probability":       c.SkipAttackProbability,
		"ignore_protection_probability": c.IgnoreProtectionProbability,
		"face_mistake_probability":      c.FaceMistakeProbability,
		"skip_turn_probability":         c.SkipTurnProbability,
		"score_variance":                c.ScoreVariance,
	} {
		if err := probability("ai.variance."+name, value); err != nil {
			return err
		}
	}
	if c.SecondBestProbability+c.ThirdBestProbability > 1 {
		return fmt.Errorf("%w: ai.variance second+third best probabilities exceed 1", ErrInvalidConfig)
	}
	return nil
}

// Validate checks simulation settings.
func (c SimulationConfig) Validate() error {
	for name, value := range map[string]int{
		"simulation.matches":       c.Matches,
		"simulation.parallelism":   c.Parallelism,
		"simulation.max_turns":     c.MaxTurns,
		"simulation.start_health":  c.StartHealth,
		"simulation.starting_hand": c.StartingHand,
		"simulation.max_mana":      c.MaxMana,
		"simulation.deck_size":     c.DeckSize,
	} {
		if value < 0 {
			return fmt.Errorf("%w: %s must not be negative", ErrInvalidConfig, name)
		}
	}
	return nil
}

func probability(name string, value float64) error {
	if value < 0 || value > 1 || math.IsNaN(value) {
		return fmt.Errorf("%w: %s=%v must be within [0,1]", ErrInvalidConfig, name, value)
	}
	return nil
}

func nonNegative(name string, value float64) error {
	if value < 0 || math.IsNaN(value) {
		return fmt.Errorf("%w: %s=%v must not be negative", ErrInvalidConfig, name, value)
	}
	return nil
}
