// Package config loads, validates and persists the copilotmesh configuration.
//
// Configuration files may be YAML, TOML or JSON and are read with viper;
// every key can be overridden from the environment with the PALS_ prefix
// (PALS_LEDGER_THRESHOLD, PALS_MODEL_PROVIDER, ...). Save always writes TOML.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	toml "github.com/pelletier/go-toml/v2"
	"github.com/spf13/viper"

	"github.com/hupe1980/copilotmesh/core"
	"github.com/hupe1980/copilotmesh/deliberation"
	"github.com/hupe1980/copilotmesh/ledger"
	"github.com/hupe1980/copilotmesh/logging"
)

// ErrInvalidConfig is returned by Validate and Load for unusable settings.
var ErrInvalidConfig = errors.New("invalid configuration")

const (
	// EnvPrefix prefixes environment overrides.
	EnvPrefix = "PALS"

	configFileMode  = 0o600
	configDirMode   = 0o700
	tempFilePattern = ".config-*.toml.tmp"
)

// Provider names accepted in ModelConfig.Provider.
const (
	ProviderOpenAI    = "openai"
	ProviderAnthropic = "anthropic"
	ProviderMock      = "mock"
)

// Selector names accepted in DeliberationConfig.Selector.
const (
	SelectorRoundRobin = "round_robin"
	SelectorRandom     = "random"
)

// Config is the root configuration.
type Config struct {
	Agent        AgentConfig        `mapstructure:"agent" toml:"agent"`
	Ledger       LedgerConfig       `mapstructure:"ledger" toml:"ledger"`
	Deliberation DeliberationConfig `mapstructure:"deliberation" toml:"deliberation"`
	Model        ModelConfig        `mapstructure:"model" toml:"model"`
	Logging      LoggingConfig      `mapstructure:"logging" toml:"logging"`
	History      HistoryConfig      `mapstructure:"history" toml:"history"`
}

// AgentConfig configures the primary agent.
type AgentConfig struct {
	// Definition is the YAML agent definition (name and rules).
	Definition string `mapstructure:"definition" toml:"definition"`
	// PlanningMode starts the agent with deliberation enabled.
	PlanningMode bool `mapstructure:"planning_mode" toml:"planning_mode"`
}

// LedgerConfig holds the roster and scoring constants.
type LedgerConfig struct {
	Roster          []string `mapstructure:"roster" toml:"roster"`
	DevilsAdvocate  string   `mapstructure:"devils_advocate" toml:"devils_advocate"`
	Threshold       float64  `mapstructure:"threshold" toml:"threshold"`
	Keywords        []string `mapstructure:"keywords" toml:"keywords"`
	AgreementBoost  float64  `mapstructure:"agreement_boost" toml:"agreement_boost"`
	DepthMultiplier float64  `mapstructure:"depth_multiplier" toml:"depth_multiplier"`
}

// DeliberationConfig bounds deliberation sessions.
type DeliberationConfig struct {
	Rounds        int `mapstructure:"rounds" toml:"rounds"`
	StepsPerRound int `mapstructure:"steps_per_round" toml:"steps_per_round"`
	// StepTimeout is a Go duration string; "0s" disables the deadline.
	StepTimeout string `mapstructure:"step_timeout" toml:"step_timeout"`
	Selector    string `mapstructure:"selector" toml:"selector"`
	Seed        int64  `mapstructure:"seed" toml:"seed"`
}

// ModelConfig selects the language model backing the copilots. API keys are
// read by the provider SDKs from OPENAI_API_KEY / ANTHROPIC_API_KEY.
type ModelConfig struct {
	Provider    string  `mapstructure:"provider" toml:"provider"`
	Name        string  `mapstructure:"name" toml:"name,omitempty"`
	BaseURL     string  `mapstructure:"base_url" toml:"base_url,omitempty"`
	Temperature float64 `mapstructure:"temperature" toml:"temperature"`
	MaxTokens   int64   `mapstructure:"max_tokens" toml:"max_tokens"`
	Stream      bool    `mapstructure:"stream" toml:"stream"`
}

// LoggingConfig configures the structured logger.
type LoggingConfig struct {
	Level  string `mapstructure:"level" toml:"level"`
	Format string `mapstructure:"format" toml:"format"`
}

// HistoryConfig configures transcript persistence. An empty Dir keeps
// history in memory.
type HistoryConfig struct {
	Dir string `mapstructure:"dir" toml:"dir,omitempty"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Agent: AgentConfig{
			Definition: DefaultDefinition,
		},
		Ledger: LedgerConfig{
			Roster:          core.DefaultRoster.Clone(),
			DevilsAdvocate:  "Victor",
			Threshold:       ledger.DefaultThreshold,
			Keywords:        append([]string(nil), ledger.DefaultKeywords...),
			AgreementBoost:  ledger.DefaultAgreementBoost,
			DepthMultiplier: ledger.DefaultDepthMultiplier,
		},
		Deliberation: DeliberationConfig{
			Rounds:      deliberation.DefaultRounds,
			StepTimeout: deliberation.DefaultStepTimeout.String(),
			Selector:    SelectorRoundRobin,
		},
		Model: ModelConfig{
			Provider:    ProviderOpenAI,
			Temperature: 0.7,
			MaxTokens:   1024,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

func setDefaults(v *viper.Viper, d *Config) {
	v.SetDefault("agent.definition", d.Agent.Definition)
	v.SetDefault("agent.planning_mode", d.Agent.PlanningMode)

	v.SetDefault("ledger.roster", d.Ledger.Roster)
	v.SetDefault("ledger.devils_advocate", d.Ledger.DevilsAdvocate)
	v.SetDefault("ledger.threshold", d.Ledger.Threshold)
	v.SetDefault("ledger.keywords", d.Ledger.Keywords)
	v.SetDefault("ledger.agreement_boost", d.Ledger.AgreementBoost)
	v.SetDefault("ledger.depth_multiplier", d.Ledger.DepthMultiplier)

	v.SetDefault("deliberation.rounds", d.Deliberation.Rounds)
	v.SetDefault("deliberation.steps_per_round", d.Deliberation.StepsPerRound)
	v.SetDefault("deliberation.step_timeout", d.Deliberation.StepTimeout)
	v.SetDefault("deliberation.selector", d.Deliberation.Selector)
	v.SetDefault("deliberation.seed", d.Deliberation.Seed)

	v.SetDefault("model.provider", d.Model.Provider)
	v.SetDefault("model.name", d.Model.Name)
	v.SetDefault("model.base_url", d.Model.BaseURL)
	v.SetDefault("model.temperature", d.Model.Temperature)
	v.SetDefault("model.max_tokens", d.Model.MaxTokens)
	v.SetDefault("model.stream", d.Model.Stream)

	v.SetDefault("logging.level", d.Logging.Level)
	v.SetDefault("logging.format", d.Logging.Format)

	v.SetDefault("history.dir", d.History.Dir)
}

// Load reads the configuration. An empty path searches for config.{yaml,toml,json}
// in the working directory and Dir(); a missing file is not an error.
// Environment overrides apply in both cases.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v, Default())

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.AddConfigPath(".")
		v.AddConfigPath(Dir())
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks the configuration for unusable values.
func (c *Config) Validate() error {
	if err := core.Roster(c.Ledger.Roster).Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	if c.Ledger.DevilsAdvocate != "" && !core.Roster(c.Ledger.Roster).Contains(c.Ledger.DevilsAdvocate) {
		return fmt.Errorf("%w: devil's advocate %q is not in the roster", ErrInvalidConfig, c.Ledger.DevilsAdvocate)
	}
	if c.Deliberation.Rounds < 1 {
		return fmt.Errorf("%w: rounds must be >= 1, got %d", ErrInvalidConfig, c.Deliberation.Rounds)
	}
	if c.Deliberation.StepsPerRound < 0 {
		return fmt.Errorf("%w: steps_per_round must be >= 0, got %d", ErrInvalidConfig, c.Deliberation.StepsPerRound)
	}
	if _, err := c.StepTimeout(); err != nil {
		return err
	}

	switch c.Deliberation.Selector {
	case SelectorRoundRobin, SelectorRandom:
	default:
		return fmt.Errorf("%w: unknown selector %q", ErrInvalidConfig, c.Deliberation.Selector)
	}

	switch c.Model.Provider {
	case ProviderOpenAI, ProviderAnthropic, ProviderMock:
	default:
		return fmt.Errorf("%w: unknown model provider %q", ErrInvalidConfig, c.Model.Provider)
	}

	if _, err := logging.ParseLevel(c.Logging.Level); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	switch c.Logging.Format {
	case "text", "json":
	default:
		return fmt.Errorf("%w: unknown log format %q", ErrInvalidConfig, c.Logging.Format)
	}

	if _, err := ParseDefinition(c.Agent.Definition); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}

	if _, err := ledger.New(c.Ledger.Roster, c.LedgerOptions()); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}

	return nil
}

// StepTimeout parses Deliberation.StepTimeout.
func (c *Config) StepTimeout() (time.Duration, error) {
	if c.Deliberation.StepTimeout == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(c.Deliberation.StepTimeout)
	if err != nil {
		return 0, fmt.Errorf("%w: step_timeout: %v", ErrInvalidConfig, err)
	}
	if d < 0 {
		return 0, fmt.Errorf("%w: step_timeout must be >= 0, got %s", ErrInvalidConfig, d)
	}
	return d, nil
}

// Roster returns the configured roster.
func (c *Config) Roster() core.Roster { return core.Roster(c.Ledger.Roster).Clone() }

// LedgerOptions returns the scoring settings as a ledger option.
func (c *Config) LedgerOptions() func(o *ledger.Options) {
	lc := c.Ledger
	return func(o *ledger.Options) {
		o.Threshold = lc.Threshold
		if len(lc.Keywords) > 0 {
			o.Keywords = append([]string(nil), lc.Keywords...)
		}
		o.AgreementBoost = lc.AgreementBoost
		o.DepthMultiplier = lc.DepthMultiplier
		o.DevilsAdvocate = lc.DevilsAdvocate
	}
}

// DeliberationOptions returns the session bounds, selector and scoring
// settings as an orchestrator option.
func (c *Config) DeliberationOptions() (func(o *deliberation.Options), error) {
	timeout, err := c.StepTimeout()
	if err != nil {
		return nil, err
	}

	dc := c.Deliberation
	ledgerOpts := c.LedgerOptions()

	return func(o *deliberation.Options) {
		o.Rounds = dc.Rounds
		o.StepsPerRound = dc.StepsPerRound
		o.StepTimeout = timeout
		if dc.Selector == SelectorRandom {
			o.Selector = deliberation.NewRandom(dc.Seed)
		}
		o.LedgerOptions = append(o.LedgerOptions, ledgerOpts)
	}, nil
}

// LoggerConfig converts the logging section.
func (c *Config) LoggerConfig() (*logging.LoggerConfig, error) {
	level, err := logging.ParseLevel(c.Logging.Level)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	cfg := logging.DefaultLoggerConfig()
	cfg.Level = level
	cfg.Format = c.Logging.Format
	return cfg, nil
}

// Save writes c to path as TOML, replacing any existing file atomically.
func (c *Config) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), configDirMode); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}

	data, err := toml.Marshal(c)
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}

	tempFile, err := os.CreateTemp(filepath.Dir(path), tempFilePattern)
	if err != nil {
		return fmt.Errorf("create temp config file: %w", err)
	}

	tempName := tempFile.Name()
	cleanup := true
	defer func() {
		if cleanup {
			_ = os.Remove(tempName)
		}
	}()

	if _, err := tempFile.Write(data); err != nil {
		_ = tempFile.Close()
		return fmt.Errorf("write temp config file: %w", err)
	}

	if err := tempFile.Chmod(configFileMode); err != nil {
		_ = tempFile.Close()
		return fmt.Errorf("chmod temp config file: %w", err)
	}

	if err := tempFile.Close(); err != nil {
		return fmt.Errorf("close temp config file: %w", err)
	}

	if err := os.Rename(tempName, path); err != nil {
		return fmt.Errorf("replace config file: %w", err)
	}

	cleanup = false

	return nil
}

// Dir returns the user's configuration directory for copilotmesh.
func Dir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "copilotmesh")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ".copilotmesh"
	}
	return filepath.Join(home, ".config", "copilotmesh")
}

// File returns the default configuration file path.
func File() string {
	return filepath.Join(Dir(), "config.toml")
}
