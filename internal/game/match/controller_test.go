package match_test

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/cory-johannsen/entities/internal/config"
	"github.com/cory-johannsen/entities/internal/game/ai"
	"github.com/cory-johannsen/entities/internal/game/combat"
	"github.com/cory-johannsen/entities/internal/game/dice"
	"github.com/cory-johannsen/entities/internal/game/match"
	"github.com/cory-johannsen/entities/internal/game/ruleset"
	"github.com/cory-johannsen/entities/internal/game/status"
)

type scriptedInput struct {
	moves    []uint
	confirms []bool
	menus    []uint
	reads    int
}

func (s *scriptedInput) ReadMove() (uint, error) {
	if len(s.moves) == 0 {
		return 0, io.EOF
	}
	s.reads++
	n := s.moves[0]
	s.moves = s.moves[1:]
	return n, nil
}

func (s *scriptedInput) Confirm(string) (bool, error) {
	if len(s.confirms) == 0 {
		return false, io.EOF
	}
	ok := s.confirms[0]
	s.confirms = s.confirms[1:]
	return ok, nil
}

func (s *scriptedInput) ReadMenu() (uint, error) {
	if len(s.menus) == 0 {
		return 0, io.EOF
	}
	n := s.menus[0]
	s.menus = s.menus[1:]
	return n, nil
}

type recorder struct {
	turns     []match.TurnView
	notices   []string
	summaries []match.Result
	thinking  int
	menus     int
}

func (r *recorder) Turn(v match.TurnView) { r.turns = append(r.turns, v) }
func (r *recorder) Thinking(combat.Side) { r.thinking++ }
func (r *recorder) Notice(msg string) { r.notices = append(r.notices, msg) }
func (r *recorder) Summary(res match.Result) { r.summaries = append(r.summaries, res) }
func (r *recorder) PostGameMenu() { r.menus++ }

// fixedChooser always returns index; with forbid set it fails the test when asked.
type fixedChooser struct {
	t      *testing.T
	index  int
	forbid bool
	calls  int
}

func (f *fixedChooser) Choose(context.Context, match.Turn) (match.Decision, error) {
	f.calls++
	if f.forbid {
		f.t.Errorf("chooser must not be consulted")
	}
	return match.Decision{Index: f.index}, nil
}

type memoryHistory struct{ results []match.Result }

func (m *memoryHistory) Record(_ context.Context, r match.Result) error {
	m.results = append(m.results, r)
	return nil
}

type fixture struct {
	cfg      config.MatchConfig
	statuses *status.Registry
	player   ruleset.Stats
	enemy    ruleset.Stats
	out      *recorder
	history  *memoryHistory
	setups   int
}

func newFixture(player, enemy ruleset.Stats) *fixture {
	return &fixture{
		cfg:      config.Default().Match,
		statuses: status.DefaultRegistry(),
		player:   player,
		enemy:    enemy,
		out:      &recorder{},
		history:  &memoryHistory{},
	}
}

func (f *fixture) build(t *testing.T, playerChooser, enemyChooser match.Chooser) *match.Controller {
	t.Helper()
	logger := zaptest.NewLogger(t)
	roller := dice.NewLoggedRoller(dice.NewSeededSource(11), logger)
	gen, err := combat.NewGenerator(config.Default().Moves, f.statuses, roller)
	require.NoError(t, err)
	c, err := match.New(match.Deps{
		Config:    f.cfg,
		Generator: gen,
		Setup: func() (ruleset.Setup, error) {
			f.setups++
			return ruleset.Setup{Mode: ruleset.ModeMedium, Scale: 2, Player: f.player, Enemy: f.enemy}, nil
		},
		Player:    playerChooser,
		Enemy:     enemyChooser,
		Presenter: f.out,
		History:   f.history,
		Logger:    logger,
	})
	require.NoError(t, err)
	return c
}

func TestNew_StartsAtPlayerTurn(t *testing.T) {
	f := newFixture(ruleset.Stats{Health: 80}, ruleset.Stats{Health: 90})
	c := f.build(t, &fixedChooser{t: t, index: match.Skip}, &fixedChooser{t: t, index: match.Skip})
	assert.Equal(t, match.StatePlayerTurn, c.State())
	assert.Equal(t, 1, c.Round())
	assert.Equal(t, 80, c.Player().Health)
	assert.Equal(t, f.cfg.StartEnergy, c.Enemy().Energy)
	require.Len(t, c.Narration(), 1)
	assert.Equal(t, match.OpeningLine, c.Narration()[0].Text)
}

func TestNew_NilDepsPanics(t *testing.T) {
	assert.Panics(t, func() { _, _ = match.New(match.Deps{}) })
}

func TestNew_SetupErrorPropagates(t *testing.T) {
	gen, err := combat.NewGenerator(config.Default().Moves, status.DefaultRegistry(),
		dice.NewLoggedRoller(dice.NewSeededSource(1), zaptest.NewLogger(t)))
	require.NoError(t, err)
	boom := errors.New("boom")
	_, err = match.New(match.Deps{
		Generator: gen,
		Setup:     func() (ruleset.Setup, error) { return ruleset.Setup{}, boom },
		Player:    &fixedChooser{t: t},
		Enemy:     &fixedChooser{t: t},
		Presenter: match.Discard{},
		Logger:    zaptest.NewLogger(t),
	})
	assert.True(t, errors.Is(err, boom))
}

func TestRun_PlayerLethalAttackWins(t *testing.T) {
	f := newFixture(ruleset.Stats{Health: 50}, ruleset.Stats{Health: 10})
	in := &scriptedInput{moves: []uint{1}}
	enemy := &fixedChooser{t: t, forbid: true}
	c := f.build(t, match.NewHumanChooser(in, f.out), enemy)

	res, err := c.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, match.StateVictory, res.Outcome)
	assert.LessOrEqual(t, res.EnemyHealth, 0)
	assert.Equal(t, 50, res.PlayerHealth)
	assert.Equal(t, 0, enemy.calls)
	require.Len(t, f.out.summaries, 1)
	require.Len(t, f.out.turns, 1)
	assert.Equal(t, match.OpeningLine, f.out.turns[0].LastRound[0].Text)
}

func TestRun_DefeatedPlayerIsNotPrompted(t *testing.T) {
	f := newFixture(ruleset.Stats{Health: 0}, ruleset.Stats{Health: 10})
	in := &scriptedInput{}
	c := f.build(t, match.NewHumanChooser(in, f.out), &fixedChooser{t: t, forbid: true})

	st, err := c.Step(context.Background())
	require.NoError(t, err)
	assert.Equal(t, match.StateDefeat, st)
	assert.Equal(t, 0, in.reads)
	assert.Empty(t, f.out.turns, "moves must not be generated or shown")

	_, err = c.Step(context.Background())
	assert.True(t, errors.Is(err, match.ErrMatchOver))
}

func TestRun_QuitConfirmedAborts(t *testing.T) {
	f := newFixture(ruleset.Stats{Health: 60}, ruleset.Stats{Health: 70})
	in := &scriptedInput{moves: []uint{0}, confirms: []bool{true}}
	c := f.build(t, match.NewHumanChooser(in, f.out), &fixedChooser{t: t, forbid: true})

	res, err := c.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, match.StateAborted, res.Outcome)
	assert.Equal(t, 60, res.PlayerHealth)
	assert.Equal(t, 70, res.EnemyHealth)
	assert.Equal(t, f.cfg.StartEnergy, c.Player().Energy)
}

func TestRun_QuitDeclinedReprompts(t *testing.T) {
	f := newFixture(ruleset.Stats{Health: 60}, ruleset.Stats{Health: 5})
	in := &scriptedInput{moves: []uint{0, 1}, confirms: []bool{false}}
	c := f.build(t, match.NewHumanChooser(in, f.out), &fixedChooser{t: t, forbid: true})

	res, err := c.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, match.StateVictory, res.Outcome)
	assert.Equal(t, 2, in.reads)
}

func TestRun_UnaffordableMoveReprompts(t *testing.T) {
	f := newFixture(ruleset.Stats{Health: 60}, ruleset.Stats{Health: 60})
	f.cfg.StartEnergy = 0
	f.cfg.EnergyIncrement = 0
	in := &scriptedInput{moves: []uint{1, 9}}
	c := f.build(t, match.NewHumanChooser(in, f.out), &fixedChooser{t: t, index: match.Skip})

	st, err := c.Step(context.Background())
	require.NoError(t, err)
	assert.Equal(t, match.StateEnemyTurn, st)
	assert.Equal(t, []string{"Not enough energy!"}, f.out.notices)
	events := c.Narration()
	require.NotEmpty(t, events)
	assert.Equal(t, combat.EventSkip, events[len(events)-1].Kind)
	assert.Equal(t, 60, c.Enemy().Health)
}

func TestRun_InputEOFAbortsCleanly(t *testing.T) {
	f := newFixture(ruleset.Stats{Health: 60}, ruleset.Stats{Health: 60})
	c := f.build(t, match.NewHumanChooser(&scriptedInput{}, f.out), &fixedChooser{t: t, forbid: true})

	res, err := c.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, match.StateAborted, res.Outcome)
}

func TestStep_FullRoundGrantsEnergy(t *testing.T) {
	f := newFixture(ruleset.Stats{Health: 60}, ruleset.Stats{Health: 60})
	f.cfg.StartEnergy = 95
	c := f.build(t, &fixedChooser{t: t, index: match.Skip}, &fixedChooser{t: t, index: match.Skip})

	_, err := c.Step(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 95, c.Player().Energy, "no grant after the player's half of the round")
	_, err = c.Step(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 100, c.Player().Energy)
	assert.Equal(t, 100, c.Enemy().Energy)
	assert.Equal(t, 2, c.Round())

	f2 := newFixture(ruleset.Stats{Health: 60}, ruleset.Stats{Health: 60})
	c2 := f2.build(t, &fixedChooser{t: t, index: match.Skip}, &fixedChooser{t: t, index: match.Skip})
	_, _ = c2.Step(context.Background())
	_, _ = c2.Step(context.Background())
	assert.Equal(t, f2.cfg.StartEnergy+f2.cfg.EnergyIncrement, c2.Player().Energy)
	assert.Equal(t, f2.cfg.StartEnergy+f2.cfg.EnergyIncrement, c2.Enemy().Energy)
}

func TestStep_LethalStatusEndsBeforeChoice(t *testing.T) {
	f := newFixture(ruleset.Stats{Health: 60}, ruleset.Stats{Health: 10})
	f.statuses = status.NewRegistry()
	f.statuses.Register(&status.Def{ID: "venom", Name: "Venom", Kind: status.KindDamage, Target: status.TargetOpponent,
		Magnitude: "50", Duration: "2"})
	enemy := &fixedChooser{t: t, forbid: true}
	c := f.build(t, &fixedChooser{t: t, index: int(combat.CategoryStatus)}, enemy)

	res, err := c.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, match.StateVictory, res.Outcome)
	assert.Equal(t, -40, res.EnemyHealth)
	assert.Equal(t, 0, enemy.calls)
}

func TestStep_AIChooserShowsThinking(t *testing.T) {
	f := newFixture(ruleset.Stats{Health: 60}, ruleset.Stats{Health: 60})
	decider := ai.NewDecider(dice.NewSeededSource(5))
	c := f.build(t, &fixedChooser{t: t, index: match.Skip}, match.NewAIChooser(decider, f.out))

	_, _ = c.Step(context.Background())
	_, err := c.Step(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, f.out.thinking)
	assert.Equal(t, match.StatePlayerTurn, c.State())
}

func TestPlay_UnknownMenuChoiceExits(t *testing.T) {
	f := newFixture(ruleset.Stats{Health: 50}, ruleset.Stats{Health: 10})
	in := &scriptedInput{moves: []uint{1}, menus: []uint{7}}
	c := f.build(t, match.NewHumanChooser(in, f.out), &fixedChooser{t: t, forbid: true})

	res, err := c.Play(context.Background(), in)
	require.NoError(t, err)
	assert.Equal(t, match.StateVictory, res.Outcome)
	assert.Equal(t, 1, f.setups)
	assert.Equal(t, 1, f.out.menus)
	require.Len(t, f.history.results, 1)
}

func TestPlay_RematchStartsFreshMatch(t *testing.T) {
	f := newFixture(ruleset.Stats{Health: 50}, ruleset.Stats{Health: 10})
	in := &scriptedInput{moves: []uint{1, 1}, menus: []uint{match.MenuRematch, match.MenuExit}}
	c := f.build(t, match.NewHumanChooser(in, f.out), &fixedChooser{t: t, forbid: true})
	firstID := c.ID()

	res, err := c.Play(context.Background(), in)
	require.NoError(t, err)
	assert.Equal(t, match.StateVictory, res.Outcome)
	assert.Equal(t, 2, f.setups)
	require.Len(t, f.history.results, 2)
	assert.NotEqual(t, firstID, f.history.results[1].ID)
	assert.Equal(t, 1, f.history.results[1].Rounds)
}

func TestPlay_AbortSkipsMenu(t *testing.T) {
	f := newFixture(ruleset.Stats{Health: 50}, ruleset.Stats{Health: 10})
	in := &scriptedInput{moves: []uint{0}, confirms: []bool{true}}
	c := f.build(t, match.NewHumanChooser(in, f.out), &fixedChooser{t: t, forbid: true})

	res, err := c.Play(context.Background(), in)
	require.NoError(t, err)
	assert.Equal(t, match.StateAborted, res.Outcome)
	assert.Equal(t, 0, f.out.menus)
	require.Len(t, f.history.results, 1)
}

func TestParseState_RoundTrip(t *testing.T) {
	for _, s := range []match.State{match.StatePlayerTurn, match.StateEnemyTurn, match.StateDefeat, match.StateVictory, match.StateAborted} {
		got, ok := match.ParseState(s.String())
		require.True(t, ok)
		assert.Equal(t, s, got)
	}
	_, ok := match.ParseState("draw")
	assert.False(t, ok)
}
