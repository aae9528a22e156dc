package match

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/cory-johannsen/entities/internal/config"
	"github.com/cory-johannsen/entities/internal/game/combat"
	"github.com/cory-johannsen/entities/internal/game/entity"
	"github.com/cory-johannsen/entities/internal/game/ruleset"
)

// OpeningLine seeds the narration of every new match.
const OpeningLine = "The fight begins."

// Deps are the collaborators of a Controller.
type Deps struct {
	Config    config.MatchConfig
	Generator *combat.Generator
	// Setup is called at match start and on every rematch.
	Setup     func() (ruleset.Setup, error)
	Player    Chooser
	Enemy     Chooser
	Presenter Presenter
	// History is optional.
	History    History
	Logger     *zap.Logger
	PlayerName string
	EnemyName  string
}

// Controller is the turn state machine.
//
// It is single-threaded: Step, Run and Play must not be called concurrently.
type Controller struct {
	deps     Deps
	setup    ruleset.Setup
	player   *entity.Entity
	enemy    *entity.Entity
	state    State
	round    int
	id       uuid.UUID
	started  time.Time
	moves    combat.MoveSet
	narr     combat.Narration
	last     []combat.Event
	choosers [2]Chooser
}

// New constructs a Controller and starts the first match.
//
// Precondition: Generator, Setup, Player, Enemy, Presenter and Logger must be non-nil.
func New(d Deps) (*Controller, error) {
	if d.Generator == nil || d.Setup == nil || d.Player == nil || d.Enemy == nil || d.Presenter == nil || d.Logger == nil {
		panic("match.New: Generator, Setup, Player, Enemy, Presenter and Logger must not be nil")
	}
	if d.PlayerName == "" {
		d.PlayerName = "Player"
	}
	if d.EnemyName == "" {
		d.EnemyName = "Enemy"
	}
	c := &Controller{deps: d, choosers: [2]Chooser{d.Player, d.Enemy}}
	if err := c.reset(); err != nil {
		return nil, err
	}
	return c, nil
}

// Rematch discards both entities and starts a fresh match with a new Setup.
func (c *Controller) Rematch() error {
	return c.reset()
}

func (c *Controller) reset() error {
	setup, err := c.deps.Setup()
	if err != nil {
		return fmt.Errorf("preparing match: %w", err)
	}
	c.setup = setup
	c.player, c.enemy = setup.Entities(c.deps.Config, c.deps.PlayerName, c.deps.EnemyName)
	c.state = StatePlayerTurn
	c.round = 1
	c.id = uuid.New()
	c.started = time.Now()
	c.last = nil
	c.narr.Reset()
	c.narr.Add(combat.SidePlayer, combat.EventInfo, OpeningLine)
	c.deps.Logger.Info("match started",
		zap.String("match_id", c.id.String()),
		zap.Stringer("mode", setup.Mode),
		zap.Int("scale", setup.Scale),
		zap.Int("player_health", c.player.Health()),
		zap.Int("enemy_health", c.enemy.Health()),
	)
	return nil
}

// State returns the current state.
func (c *Controller) State() State { return c.state }

// Round returns the 1-based round counter.
func (c *Controller) Round() int { return c.round }

// ID returns the match ID.
func (c *Controller) ID() uuid.UUID { return c.id }

// Player returns a snapshot of the player entity.
func (c *Controller) Player() entity.Snapshot { return c.player.Snapshot() }

// Enemy returns a snapshot of the enemy entity.
func (c *Controller) Enemy() entity.Snapshot { return c.enemy.Snapshot() }

// Narration returns the events buffered since the last turn began.
func (c *Controller) Narration() []combat.Event { return c.narr.Events() }

// Run steps until a terminal state and returns the result. An input that
// reaches end of file ends the match as Aborted without an error.
func (c *Controller) Run(ctx context.Context) (Result, error) {
	for !c.state.Terminal() {
		if _, err := c.Step(ctx); err != nil {
			if errors.Is(err, io.EOF) {
				return c.result(), nil
			}
			return c.result(), err
		}
	}
	return c.result(), nil
}

// Step executes the current turn state and returns the state entered.
//
// Postcondition: on an input error the match is Aborted and the error is returned.
func (c *Controller) Step(ctx context.Context) (State, error) {
	var err error
	switch c.state {
	case StatePlayerTurn:
		err = c.takeTurn(ctx, combat.SidePlayer)
	case StateEnemyTurn:
		err = c.takeTurn(ctx, combat.SideEnemy)
	default:
		return c.state, ErrMatchOver
	}
	if err != nil {
		c.finish(StateAborted)
		return c.state, err
	}
	return c.state, nil
}

func (c *Controller) sides(side combat.Side) (actor, opponent *entity.Entity) {
	if side == combat.SidePlayer {
		return c.player, c.enemy
	}
	return c.enemy, c.player
}

func (c *Controller) takeTurn(ctx context.Context, side combat.Side) error {
	actor, opponent := c.sides(side)
	if actor.IsDefeated() {
		c.finish(defeatOf(side))
		return nil
	}

	c.last = c.narr.Events()
	c.narr.Reset()
	combat.ApplyStatuses(side, actor, &c.narr)
	if actor.IsDefeated() {
		c.narr.Add(side, combat.EventInfo, "%s succumbs.", actor.Name())
		c.finish(defeatOf(side))
		return nil
	}

	c.deps.Generator.Generate(&c.moves)
	c.deps.Presenter.Turn(TurnView{
		Side:      side,
		Round:     c.round,
		Player:    c.player.Snapshot(),
		Enemy:     c.enemy.Snapshot(),
		LastRound: c.last,
		ThisTurn:  c.narr.Events(),
		Moves:     c.moves,
	})

	dec, err := c.choosers[side].Choose(ctx, Turn{
		Side:     side,
		Self:     actor.Snapshot(),
		Opponent: opponent.Snapshot(),
		Moves:    &c.moves,
		Scale:    c.setup.Scale,
	})
	if err != nil {
		return fmt.Errorf("%s turn: %w", side, err)
	}
	if dec.Quit {
		c.narr.Add(side, combat.EventInfo, "%s leaves the fight.", actor.Name())
		c.finish(StateAborted)
		return nil
	}
	c.resolve(side, actor, opponent, dec.Index)

	if side == combat.SideEnemy {
		c.endRound()
	}
	c.state = turnState(side.Other())
	return nil
}

func (c *Controller) resolve(side combat.Side, actor, opponent *entity.Entity, index int) {
	if index == Skip {
		c.narr.Add(side, combat.EventSkip, "%s skips the round.", actor.Name())
		return
	}
	err := combat.Resolve(side, actor, opponent, &c.moves, index, &c.narr)
	if err == nil {
		c.deps.Logger.Debug("move resolved",
			zap.String("match_id", c.id.String()),
			zap.Stringer("side", side),
			zap.Stringer("category", c.moves[index].Category),
			zap.Int("potency", c.moves[index].Potency),
			zap.Int("cost", c.moves[index].Cost),
		)
		return
	}
	c.deps.Logger.Warn("move not resolved",
		zap.String("match_id", c.id.String()),
		zap.Stringer("side", side),
		zap.Int("index", index),
		zap.Error(err),
	)
	c.narr.Add(side, combat.EventSkip, "%s skips the round.", actor.Name())
}

func (c *Controller) endRound() {
	inc := c.deps.Config.EnergyIncrement
	c.player.GrantEnergy(inc)
	c.enemy.GrantEnergy(inc)
	c.round++
}

func (c *Controller) finish(s State) {
	c.state = s
	res := c.result()
	c.deps.Logger.Info("match over",
		zap.String("match_id", c.id.String()),
		zap.Stringer("outcome", s),
		zap.Int("rounds", res.Rounds),
		zap.Int("player_health", res.PlayerHealth),
		zap.Int("enemy_health", res.EnemyHealth),
	)
	c.deps.Presenter.Summary(res)
}

func (c *Controller) result() Result {
	return Result{
		ID:           c.id,
		Outcome:      c.state,
		Mode:         c.setup.Mode,
		Scale:        c.setup.Scale,
		Rounds:       c.round,
		PlayerHealth: c.player.Health(),
		EnemyHealth:  c.enemy.Health(),
		StartedAt:    c.started,
		EndedAt:      time.Now(),
		Narration:    c.narr.Events(),
	}
}

func defeatOf(side combat.Side) State {
	if side == combat.SidePlayer {
		return StateDefeat
	}
	return StateVictory
}

// Play runs matches until the player declines a rematch. Every finished
// match is recorded in History when one is configured. An aborted match
// skips the post-game menu.
func (c *Controller) Play(ctx context.Context, in Input) (Result, error) {
	for {
		res, err := c.Run(ctx)
		c.record(ctx, res)
		if err != nil || res.Outcome == StateAborted {
			return res, err
		}
		c.deps.Presenter.PostGameMenu()
		choice, err := in.ReadMenu()
		if err != nil || choice != MenuRematch {
			return res, nil
		}
		if err := c.Rematch(); err != nil {
			return res, err
		}
	}
}

func (c *Controller) record(ctx context.Context, res Result) {
	if c.deps.History == nil {
		return
	}
	if err := c.deps.History.Record(ctx, res); err != nil {
		c.deps.Logger.Warn("recording match", zap.String("match_id", res.ID.String()), zap.Error(err))
	}
}
