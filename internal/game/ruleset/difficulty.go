// Package ruleset turns a difficulty selection into starting stats for both sides.
package ruleset

import (
	"errors"
	"fmt"

	"github.com/cory-johannsen/entities/internal/config"
	"github.com/cory-johannsen/entities/internal/game/ai"
	"github.com/cory-johannsen/entities/internal/game/dice"
	"github.com/cory-johannsen/entities/internal/game/entity"
)

// ErrUnknownMode is returned for a difficulty selection outside the menu.
var ErrUnknownMode = errors.New("unknown difficulty mode")

// Mode is a difficulty menu entry.
type Mode int

const (
	ModeEasy Mode = iota + 1
	ModeMedium
	ModeHard
	ModeRandom
)

// Modes lists the menu entries in display order.
var Modes = []Mode{ModeEasy, ModeMedium, ModeHard, ModeRandom}

// String returns the menu label.
func (m Mode) String() string {
	switch m {
	case ModeEasy:
		return "Easy"
	case ModeMedium:
		return "Medium"
	case ModeHard:
		return "Hard"
	case ModeRandom:
		return "Random"
	default:
		return fmt.Sprintf("Mode(%d)", int(m))
	}
}

// ParseMode maps a menu number to a Mode.
func ParseMode(n uint) (Mode, error) {
	m := Mode(n)
	if m < ModeEasy || m > ModeRandom {
		return 0, fmt.Errorf("selection %d: %w", n, ErrUnknownMode)
	}
	return m, nil
}

// Stats are one side's starting health and armor.
type Stats struct {
	Health int
	Armor  int
}

// Setup is everything a match needs from the difficulty selection.
type Setup struct {
	Mode   Mode
	Scale  int
	Player Stats
	Enemy  Stats
}

// NewSetup derives the scale and starting stats for mode.
//
// Fixed modes shift the configured base stats by scale*factor: the player
// loses, the enemy gains. ModeRandom rolls the scale and both sides' stats
// from the configured ranges.
//
// Precondition: src must not be nil.
// Postcondition: both sides have Health >= 1 and 0 <= Armor <= cfg.MaxArmor.
func NewSetup(mode Mode, cfg config.MatchConfig, src dice.Source) (Setup, error) {
	s := Setup{Mode: mode}
	switch mode {
	case ModeEasy:
		s.Scale = 0
	case ModeMedium:
		s.Scale = 2
	case ModeHard:
		s.Scale = ai.MaxScale
	case ModeRandom:
		s.Scale = dice.Between(src, 0, ai.MaxScale)
		s.Player = rollStats(cfg.Random, src)
		s.Enemy = rollStats(cfg.Random, src)
		s.clamp(cfg.MaxArmor)
		return s, nil
	default:
		return Setup{}, fmt.Errorf("mode %d: %w", int(mode), ErrUnknownMode)
	}
	s.Player = Stats{
		Health: cfg.Player.Health - s.Scale*cfg.HealthFactor,
		Armor:  cfg.Player.Armor - s.Scale*cfg.ArmorFactor,
	}
	s.Enemy = Stats{
		Health: cfg.Enemy.Health + s.Scale*cfg.HealthFactor,
		Armor:  cfg.Enemy.Armor + s.Scale*cfg.ArmorFactor,
	}
	s.clamp(cfg.MaxArmor)
	return s, nil
}

// Entities builds fresh player and enemy entities from s.
func (s Setup) Entities(cfg config.MatchConfig, playerName, enemyName string) (player, enemy *entity.Entity) {
	limits := entity.Limits{MaxEnergy: cfg.MaxEnergy, MaxArmor: cfg.MaxArmor}
	player = entity.New(playerName, s.Player.Health, s.Player.Armor, cfg.StartEnergy, limits)
	enemy = entity.New(enemyName, s.Enemy.Health, s.Enemy.Armor, cfg.StartEnergy, limits)
	return player, enemy
}

func rollStats(r config.RandomRange, src dice.Source) Stats {
	return Stats{
		Health: dice.Between(src, r.MinHealth, r.MaxHealth),
		Armor:  dice.Between(src, r.MinArmor, r.MaxArmor),
	}
}

func (s *Setup) clamp(maxArmor int) {
	for _, st := range []*Stats{&s.Player, &s.Enemy} {
		st.Health = max(st.Health, 1)
		st.Armor = min(max(st.Armor, 0), maxArmor)
	}
}
