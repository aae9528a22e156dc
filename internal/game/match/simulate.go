package match

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/cory-johannsen/entities/internal/config"
	"github.com/cory-johannsen/entities/internal/game/ai"
	"github.com/cory-johannsen/entities/internal/game/combat"
	"github.com/cory-johannsen/entities/internal/game/dice"
	"github.com/cory-johannsen/entities/internal/game/ruleset"
	"github.com/cory-johannsen/entities/internal/game/status"
)

// SimConfig describes a batch of AI-vs-AI matches.
type SimConfig struct {
	Match    config.MatchConfig
	Moves    config.MovesConfig
	Statuses *status.Registry
	Games    int
	// EnemyScale is the scale under test; PlayerScale is the baseline opponent.
	EnemyScale  int
	PlayerScale int
	// MaxRounds ends a match as a draw.
	MaxRounds int
	// Seed of game i is Seed+i.
	Seed int64
}

// SimReport aggregates a batch from the enemy's point of view.
type SimReport struct {
	Scale  int
	Games  int
	Wins   int
	Losses int
	Draws  int
	// HealthDiff is the mean of enemy health minus player health at the end.
	HealthDiff float64
}

// WinRate returns Wins/Games, or 0 for an empty batch.
func (r SimReport) WinRate() float64 {
	if r.Games == 0 {
		return 0
	}
	return float64(r.Wins) / float64(r.Games)
}

// Simulate plays cfg.Games matches with both sides automated and equal base stats.
//
// Precondition: logger must not be nil; cfg.Games >= 0; cfg.MaxRounds >= 1.
func Simulate(ctx context.Context, cfg SimConfig, logger *zap.Logger) (SimReport, error) {
	if cfg.MaxRounds < 1 {
		return SimReport{}, errors.New("match.Simulate: MaxRounds must be >= 1")
	}
	report := SimReport{Scale: cfg.EnemyScale}
	var diffSum int
	setup := ruleset.Setup{
		Mode:   ruleset.ModeEasy,
		Scale:  cfg.EnemyScale,
		Player: ruleset.Stats{Health: cfg.Match.Player.Health, Armor: cfg.Match.Player.Armor},
		Enemy:  ruleset.Stats{Health: cfg.Match.Player.Health, Armor: cfg.Match.Player.Armor},
	}
	for g := 0; g < cfg.Games; g++ {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		src := dice.NewSeededSource(cfg.Seed + int64(g))
		gen, err := combat.NewGenerator(cfg.Moves, cfg.Statuses, dice.NewLoggedRoller(src, logger))
		if err != nil {
			return report, fmt.Errorf("simulating: %w", err)
		}
		decider := ai.NewDecider(src)
		c, err := New(Deps{
			Config:    cfg.Match,
			Generator: gen,
			Setup:     func() (ruleset.Setup, error) { return setup, nil },
			Player:    NewFixedAIChooser(decider, Discard{}, cfg.PlayerScale),
			Enemy:     NewAIChooser(decider, Discard{}),
			Presenter: Discard{},
			Logger:    logger,
		})
		if err != nil {
			return report, err
		}
		for !c.State().Terminal() && c.Round() <= cfg.MaxRounds {
			if _, err := c.Step(ctx); err != nil {
				return report, err
			}
		}
		report.Games++
		switch c.State() {
		case StateVictory:
			report.Losses++
		case StateDefeat:
			report.Wins++
		default:
			report.Draws++
		}
		diffSum += c.enemy.Health() - c.player.Health()
	}
	if report.Games > 0 {
		report.HealthDiff = float64(diffSum) / float64(report.Games)
	}
	return report, nil
}
