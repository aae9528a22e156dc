package ruleset_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/entities/internal/config"
	"github.com/cory-johannsen/entities/internal/game/ai"
	"github.com/cory-johannsen/entities/internal/game/dice"
	"github.com/cory-johannsen/entities/internal/game/ruleset"
)

func TestParseMode(t *testing.T) {
	for n, want := range map[uint]ruleset.Mode{1: ruleset.ModeEasy, 2: ruleset.ModeMedium, 3: ruleset.ModeHard, 4: ruleset.ModeRandom} {
		got, err := ruleset.ParseMode(n)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
	for _, n := range []uint{0, 5, 99} {
		_, err := ruleset.ParseMode(n)
		assert.True(t, errors.Is(err, ruleset.ErrUnknownMode))
	}
}

func TestNewSetup_FixedModes(t *testing.T) {
	cfg := config.Default().Match
	src := dice.NewSeededSource(1)

	easy, err := ruleset.NewSetup(ruleset.ModeEasy, cfg, src)
	require.NoError(t, err)
	assert.Equal(t, 0, easy.Scale)
	assert.Equal(t, ruleset.Stats{Health: cfg.Player.Health, Armor: cfg.Player.Armor}, easy.Player)
	assert.Equal(t, ruleset.Stats{Health: cfg.Enemy.Health, Armor: cfg.Enemy.Armor}, easy.Enemy)

	hard, err := ruleset.NewSetup(ruleset.ModeHard, cfg, src)
	require.NoError(t, err)
	assert.Equal(t, ai.MaxScale, hard.Scale)
	assert.Equal(t, cfg.Player.Health-ai.MaxScale*cfg.HealthFactor, hard.Player.Health)
	assert.Equal(t, cfg.Enemy.Health+ai.MaxScale*cfg.HealthFactor, hard.Enemy.Health)
	assert.Equal(t, cfg.Player.Armor-ai.MaxScale*cfg.ArmorFactor, hard.Player.Armor)

	medium, err := ruleset.NewSetup(ruleset.ModeMedium, cfg, src)
	require.NoError(t, err)
	assert.Equal(t, 2, medium.Scale)
}

func TestNewSetup_FloorsStats(t *testing.T) {
	cfg := config.Default().Match
	cfg.Player = config.SideStats{Health: 5, Armor: 1}
	cfg.HealthFactor = 10
	cfg.ArmorFactor = 10
	s, err := ruleset.NewSetup(ruleset.ModeHard, cfg, dice.NewSeededSource(1))
	require.NoError(t, err)
	assert.Equal(t, 1, s.Player.Health)
	assert.Equal(t, 0, s.Player.Armor)
	assert.Equal(t, cfg.MaxArmor, s.Enemy.Armor)
}

func TestNewSetup_UnknownMode(t *testing.T) {
	_, err := ruleset.NewSetup(ruleset.Mode(9), config.Default().Match, dice.NewSeededSource(1))
	assert.True(t, errors.Is(err, ruleset.ErrUnknownMode))
}

func TestSetup_Entities(t *testing.T) {
	cfg := config.Default().Match
	s, err := ruleset.NewSetup(ruleset.ModeEasy, cfg, dice.NewSeededSource(1))
	require.NoError(t, err)
	p, e := s.Entities(cfg, "Player", "Enemy")
	assert.Equal(t, "Player", p.Name())
	assert.Equal(t, cfg.StartEnergy, p.Energy())
	assert.Equal(t, s.Enemy.Health, e.MaxHealth())
	assert.Equal(t, cfg.MaxArmor, e.Limits().MaxArmor)
}

func TestPropertyRandomModeWithinRanges(t *testing.T) {
	cfg := config.Default().Match
	rapid.Check(t, func(rt *rapid.T) {
		src := dice.NewSeededSource(rapid.Int64().Draw(rt, "seed"))
		s, err := ruleset.NewSetup(ruleset.ModeRandom, cfg, src)
		require.NoError(rt, err)
		assert.GreaterOrEqual(rt, s.Scale, 0)
		assert.LessOrEqual(rt, s.Scale, ai.MaxScale)
		for _, st := range []ruleset.Stats{s.Player, s.Enemy} {
			assert.GreaterOrEqual(rt, st.Health, cfg.Random.MinHealth)
			assert.LessOrEqual(rt, st.Health, cfg.Random.MaxHealth)
			assert.GreaterOrEqual(rt, st.Armor, cfg.Random.MinArmor)
			assert.LessOrEqual(rt, st.Armor, min(cfg.Random.MaxArmor, cfg.MaxArmor))
		}
	})
}
