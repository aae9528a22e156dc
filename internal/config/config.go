// Package config provides Viper-based configuration loading for the duel simulator.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// LoggingConfig holds structured logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: "debug", "info", "warn", "error".
	Level string `mapstructure:"level"`
	// Format is the log output format: "json" or "console".
	Format string `mapstructure:"format"`
	// Output is the log sink: a file path, "stdout" or "stderr".
	// The interactive client defaults to a file so log lines never interleave
	// with the rendered match.
	Output string `mapstructure:"output"`
}

// SideStats holds the base stats for one side before difficulty scaling.
type SideStats struct {
	Health int `mapstructure:"health"`
	Armor  int `mapstructure:"armor"`
}

// RandomRange holds the inclusive stat ranges used by the random difficulty mode.
type RandomRange struct {
	MinHealth int `mapstructure:"min_health"`
	MaxHealth int `mapstructure:"max_health"`
	MinArmor  int `mapstructure:"min_armor"`
	MaxArmor  int `mapstructure:"max_armor"`
}

// MatchConfig holds the numeric rules of a duel.
type MatchConfig struct {
	// StartEnergy is the energy both sides begin a match with.
	StartEnergy int `mapstructure:"start_energy"`
	// MaxEnergy is the energy ceiling.
	MaxEnergy int `mapstructure:"max_energy"`
	// EnergyIncrement is granted to both sides after every full round.
	EnergyIncrement int `mapstructure:"energy_increment"`
	// MaxArmor is the armor ceiling.
	MaxArmor int `mapstructure:"max_armor"`
	// Player and Enemy are the unscaled starting stats.
	Player SideStats `mapstructure:"player"`
	Enemy  SideStats `mapstructure:"enemy"`
	// HealthFactor and ArmorFactor are applied once per difficulty scale step:
	// subtracted from the player and added to the enemy.
	HealthFactor int `mapstructure:"health_factor"`
	ArmorFactor  int `mapstructure:"armor_factor"`
	// Random holds the ranges rolled by the random difficulty mode.
	Random RandomRange `mapstructure:"random"`
	// Seed seeds the random source; 0 selects the crypto-backed source.
	Seed int64 `mapstructure:"seed"`
}

// MoveDice holds the dice expressions rolled for one move category.
type MoveDice struct {
	Potency string `mapstructure:"potency"`
	Cost    string `mapstructure:"cost"`
}

// MovesConfig holds the per-category generation dice. The Status category
// rolls only its cost here; magnitude and duration come from the status definition.
type MovesConfig struct {
	Attack MoveDice `mapstructure:"attack"`
	Heal   MoveDice `mapstructure:"heal"`
	Armor  MoveDice `mapstructure:"armor"`
	Status MoveDice `mapstructure:"status"`
}

// DisplayConfig holds console presentation settings.
type DisplayConfig struct {
	// AIThinkDelay is how long the "AI is thinking" beat is shown.
	AIThinkDelay time.Duration `mapstructure:"ai_think_delay"`
	// ClearScreen clears the terminal at the start of every turn.
	ClearScreen bool `mapstructure:"clear_screen"`
}

// ContentConfig holds content directories.
type ContentConfig struct {
	// DatapacksDir is scanned recursively for datapack YAML files.
	DatapacksDir string `mapstructure:"datapacks_dir"`
	// StatusesDir holds status definition YAML files; empty uses built-in defaults.
	StatusesDir string `mapstructure:"statuses_dir"`
	// ScriptInstructionLimit caps the Lua opcodes run per datapack hook call.
	ScriptInstructionLimit int `mapstructure:"script_instruction_limit"`
}

// DatabaseConfig holds PostgreSQL connection settings for the match history.
type DatabaseConfig struct {
	// Enabled turns match history recording on.
	Enabled         bool          `mapstructure:"enabled"`
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	Name            string        `mapstructure:"name"`
	SSLMode         string        `mapstructure:"sslmode"`
	MaxConns        int32         `mapstructure:"max_conns"`
	MinConns        int32         `mapstructure:"min_conns"`
	MaxConnLifetime time.Duration `mapstructure:"max_conn_lifetime"`
}

// DSN returns the PostgreSQL connection string.
//
// Precondition: Host, Port, User, and Name must be non-empty.
// Postcondition: Returns a valid PostgreSQL DSN string.
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.Name, d.SSLMode,
	)
}

// Config is the top-level application configuration.
type Config struct {
	Logging  LoggingConfig  `mapstructure:"logging"`
	Match    MatchConfig    `mapstructure:"match"`
	Moves    MovesConfig    `mapstructure:"moves"`
	Display  DisplayConfig  `mapstructure:"display"`
	Content  ContentConfig  `mapstructure:"content"`
	Database DatabaseConfig `mapstructure:"database"`
}

// Validate checks all configuration invariants.
//
// Postcondition: Returns nil if configuration is valid, or an error describing all violations.
func (c Config) Validate() error {
	var errs []string

	if err := validateLogging(c.Logging); err != nil {
		errs = append(errs, err.Error())
	}
	if err := validateMatch(c.Match); err != nil {
		errs = append(errs, err.Error())
	}
	if err := validateMoves(c.Moves); err != nil {
		errs = append(errs, err.Error())
	}
	if c.Display.AIThinkDelay < 0 {
		errs = append(errs, "display.ai_think_delay must not be negative")
	}
	if c.Content.ScriptInstructionLimit < 0 {
		errs = append(errs, fmt.Sprintf("content.script_instruction_limit must be >= 0, got %d", c.Content.ScriptInstructionLimit))
	}
	if c.Database.Enabled {
		if err := validateDatabase(c.Database); err != nil {
			errs = append(errs, err.Error())
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration validation failed: %s", strings.Join(errs, "; "))
	}
	return nil
}

func validateLogging(l LoggingConfig) error {
	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[l.Level] {
		return fmt.Errorf("logging.level must be one of [debug, info, warn, error], got %q", l.Level)
	}
	validFormats := map[string]bool{"json": true, "console": true}
	if !validFormats[l.Format] {
		return fmt.Errorf("logging.format must be one of [json, console], got %q", l.Format)
	}
	if l.Output == "" {
		return errors.New("logging.output must not be empty")
	}
	return nil
}

func validateMatch(m MatchConfig) error {
	var errs []string
	if m.MaxEnergy < 1 {
		errs = append(errs, fmt.Sprintf("match.max_energy must be >= 1, got %d", m.MaxEnergy))
	}
	if m.StartEnergy < 0 || m.StartEnergy > m.MaxEnergy {
		errs = append(errs, fmt.Sprintf("match.start_energy must be within [0, max_energy], got %d", m.StartEnergy))
	}
	if m.EnergyIncrement < 0 {
		errs = append(errs, fmt.Sprintf("match.energy_increment must be >= 0, got %d", m.EnergyIncrement))
	}
	if m.MaxArmor < 0 {
		errs = append(errs, fmt.Sprintf("match.max_armor must be >= 0, got %d", m.MaxArmor))
	}
	if m.Player.Health < 1 || m.Enemy.Health < 1 {
		errs = append(errs, "match.player.health and match.enemy.health must be >= 1")
	}
	if m.HealthFactor < 0 || m.ArmorFactor < 0 {
		errs = append(errs, "match.health_factor and match.armor_factor must be >= 0")
	}
	if m.Random.MinHealth < 1 || m.Random.MaxHealth < m.Random.MinHealth {
		errs = append(errs, "match.random health range must satisfy 1 <= min_health <= max_health")
	}
	if m.Random.MinArmor < 0 || m.Random.MaxArmor < m.Random.MinArmor {
		errs = append(errs, "match.random armor range must satisfy 0 <= min_armor <= max_armor")
	}
	if len(errs) > 0 {
		return fmt.Errorf("%s", strings.Join(errs, "; "))
	}
	return nil
}

func validateMoves(m MovesConfig) error {
	var errs []string
	check := func(name, expr string) {
		if strings.TrimSpace(expr) == "" {
			errs = append(errs, fmt.Sprintf("moves.%s must not be empty", name))
		}
	}
	check("attack.potency", m.Attack.Potency)
	check("attack.cost", m.Attack.Cost)
	check("heal.potency", m.Heal.Potency)
	check("heal.cost", m.Heal.Cost)
	check("armor.potency", m.Armor.Potency)
	check("armor.cost", m.Armor.Cost)
	check("status.cost", m.Status.Cost)
	if len(errs) > 0 {
		return fmt.Errorf("%s", strings.Join(errs, "; "))
	}
	return nil
}

func validateDatabase(d DatabaseConfig) error {
	var errs []string
	if d.Host == "" {
		errs = append(errs, "database.host must not be empty")
	}
	if d.Port < 1 || d.Port > 65535 {
		errs = append(errs, fmt.Sprintf("database.port must be 1-65535, got %d", d.Port))
	}
	if d.User == "" {
		errs = append(errs, "database.user must not be empty")
	}
	if d.Name == "" {
		errs = append(errs, "database.name must not be empty")
	}
	validSSL := map[string]bool{"disable": true, "require": true, "verify-ca": true, "verify-full": true}
	if !validSSL[d.SSLMode] {
		errs = append(errs, fmt.Sprintf("database.sslmode must be one of [disable, require, verify-ca, verify-full], got %q", d.SSLMode))
	}
	if d.MaxConns < 1 {
		errs = append(errs, fmt.Sprintf("database.max_conns must be >= 1, got %d", d.MaxConns))
	}
	if d.MinConns < 0 || d.MinConns > d.MaxConns {
		errs = append(errs, "database.min_conns must be within [0, max_conns]")
	}
	if len(errs) > 0 {
		return fmt.Errorf("%s", strings.Join(errs, "; "))
	}
	return nil
}

// Load reads configuration from the given file path, applies environment variable
// overrides, and validates the result. An empty path skips the file and uses
// defaults plus environment overrides only.
//
// Postcondition: Returns a valid Config or a non-nil error.
func Load(path string) (Config, error) {
	v := viper.New()

	// Environment variable overrides with ENTITIES_ prefix
	v.SetEnvPrefix("ENTITIES")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("reading config file: %w", err)
		}
	}

	return LoadFromViper(v)
}

// LoadFromViper builds a Config from an already-configured Viper instance.
//
// Precondition: v must be non-nil and have configuration values set.
// Postcondition: Returns a valid Config or a non-nil error.
func LoadFromViper(v *viper.Viper) (Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshalling config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Default returns the built-in configuration with no file or environment input.
//
// Postcondition: Returns a Config that passes Validate.
func Default() Config {
	v := viper.New()
	setDefaults(v)
	cfg, err := LoadFromViper(v)
	if err != nil {
		panic("config: built-in defaults are invalid: " + err.Error())
	}
	return cfg
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
	v.SetDefault("logging.output", "entities.log")

	v.SetDefault("match.start_energy", 50)
	v.SetDefault("match.max_energy", 100)
	v.SetDefault("match.energy_increment", 10)
	v.SetDefault("match.max_armor", 20)
	v.SetDefault("match.player.health", 100)
	v.SetDefault("match.player.armor", 10)
	v.SetDefault("match.enemy.health", 100)
	v.SetDefault("match.enemy.armor", 10)
	v.SetDefault("match.health_factor", 5)
	v.SetDefault("match.armor_factor", 2)
	v.SetDefault("match.random.min_health", 10)
	v.SetDefault("match.random.max_health", 200)
	v.SetDefault("match.random.min_armor", 0)
	v.SetDefault("match.random.max_armor", 20)
	v.SetDefault("match.seed", 0)

	v.SetDefault("moves.attack.potency", "4d10+10")
	v.SetDefault("moves.attack.cost", "2d6+8")
	v.SetDefault("moves.heal.potency", "2d10+5")
	v.SetDefault("moves.heal.cost", "2d6+10")
	v.SetDefault("moves.armor.potency", "1d6+2")
	v.SetDefault("moves.armor.cost", "2d4+4")
	v.SetDefault("moves.status.cost", "2d6+10")

	v.SetDefault("display.ai_think_delay", "1500ms")
	v.SetDefault("display.clear_screen", true)

	v.SetDefault("content.datapacks_dir", "datapacks")
	v.SetDefault("content.statuses_dir", "")
	v.SetDefault("content.script_instruction_limit", 100000)

	v.SetDefault("database.enabled", false)
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "entities")
	v.SetDefault("database.password", "entities")
	v.SetDefault("database.name", "entities")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.max_conns", 4)
	v.SetDefault("database.min_conns", 1)
	v.SetDefault("database.max_conn_lifetime", "1h")
}
