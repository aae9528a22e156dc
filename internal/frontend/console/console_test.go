package console_test

import (
	"bytes"
	"context"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/entities/internal/config"
	"github.com/cory-johannsen/entities/internal/content"
	"github.com/cory-johannsen/entities/internal/frontend/console"
	"github.com/cory-johannsen/entities/internal/game/combat"
	"github.com/cory-johannsen/entities/internal/game/entity"
	"github.com/cory-johannsen/entities/internal/game/match"
	"github.com/cory-johannsen/entities/internal/game/status"
)

type fixedNarrator struct{}

func (fixedNarrator) ExitMessage() content.Message { return content.Message{Text: "{red}bye", Formatted: true} }
func (fixedNarrator) VictoryMessage(content.Outcome) content.Message {
	return content.Message{Text: "gg {red}"}
}
func (fixedNarrator) DefeatMessage(content.Outcome) content.Message {
	return content.Message{Text: "oof"}
}

func TestColorize(t *testing.T) {
	assert.Equal(t, "\033[31mdanger\033[0m", console.Colorize(console.Red, "danger"))
	assert.Equal(t, "\033[32mhealth: 42\033[0m", console.Colorf(console.Green, "health: %d", 42))
}

func TestStripANSI(t *testing.T) {
	input := "\033[31mred\033[0m normal \033[1m\033[32mbold green\033[0m"
	assert.Equal(t, "red normal bold green", console.StripANSI(input))
	assert.Equal(t, "", console.StripANSI(""))
}

func TestMarkup(t *testing.T) {
	assert.Equal(t, console.Red+"hot"+console.Reset+" cold"+console.Reset, console.Markup("{red}hot{reset} cold"))
	assert.Equal(t, "plain {nope} text", console.Markup("plain {nope} text"))
	assert.Equal(t, "open { brace", console.Markup("open { brace"))
	assert.Equal(t, console.Gold+"x"+console.Reset, console.Markup("{gold}x"))
}

func TestBar(t *testing.T) {
	assert.Equal(t, "[#####-----]", console.Bar(50, 100, 10))
	assert.Equal(t, "[----------]", console.Bar(-5, 100, 10))
	assert.Equal(t, "[##########]", console.Bar(150, 100, 10))
	assert.Equal(t, "[----]", console.Bar(3, 0, 4))
}

func TestPropertyStripANSIInversesMarkup(t *testing.T) {
	tags := []string{"red", "green", "bold", "gold", "reset", "gray"}
	rapid.Check(t, func(rt *rapid.T) {
		text := rapid.StringMatching(`[a-zA-Z0-9 ]{0,40}`).Draw(rt, "text")
		tag := tags[rapid.IntRange(0, len(tags)-1).Draw(rt, "tag")]
		assert.Equal(rt, text, console.StripANSI(console.Markup("{"+tag+"}"+text)))
	})
}

func TestPropertyBarWidth(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		width := rapid.IntRange(1, 40).Draw(rt, "width")
		bar := console.Bar(rapid.IntRange(-10, 300).Draw(rt, "cur"), rapid.IntRange(0, 200).Draw(rt, "max"), width)
		assert.Len(rt, bar, width+2)
	})
}

func TestTerminal_ReadDigitStream(t *testing.T) {
	term := console.NewTerminal(strings.NewReader("1\n 4\r\nx9"), io.Discard)
	for _, want := range []uint{1, 4, console.InvalidKey, 9} {
		got, err := term.ReadDigit()
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
	_, err := term.ReadMenu()
	assert.ErrorIs(t, err, io.EOF)
}

func TestTerminal_ReadMoveSkipsNonDigits(t *testing.T) {
	term := console.NewTerminal(strings.NewReader("x\x1b[B3\x1b[D7q"), io.Discard)
	for _, want := range []uint{3, 7} {
		got, err := term.ReadMove()
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
	_, err := term.ReadMove()
	assert.ErrorIs(t, err, io.EOF, "trailing non-digits run into end of input")
}

func TestTerminal_ReadMenuInvalidKeyExits(t *testing.T) {
	term := console.NewTerminal(strings.NewReader("\x1b"), io.Discard)
	got, err := term.ReadMenu()
	require.NoError(t, err)
	assert.Equal(t, console.InvalidKey, got)
}

func TestHumanChooser_ArrowKeyDoesNotSkipTurn(t *testing.T) {
	term := console.NewTerminal(strings.NewReader("\x1b[A1"), io.Discard)
	chooser := match.NewHumanChooser(term, match.Discard{})
	limits := entity.Limits{MaxEnergy: 100, MaxArmor: 20}
	self := entity.New("Player", 100, 10, 50, limits)
	opp := entity.New("Enemy", 100, 10, 50, limits)
	moves := combat.MoveSet{
		{Category: combat.CategoryAttack, Potency: 30, Cost: 12},
		{Category: combat.CategoryHeal, Potency: 15, Cost: 10},
		{Category: combat.CategoryArmor, Potency: 4, Cost: 8},
		{Category: combat.CategoryStatus, Potency: 3, Cost: 14, Status: status.DefaultRegistry().All()[0], Duration: 2},
	}

	dec, err := chooser.Choose(context.Background(), match.Turn{
		Side:     combat.SidePlayer,
		Self:     self.Snapshot(),
		Opponent: opp.Snapshot(),
		Moves:    &moves,
	})
	require.NoError(t, err)
	assert.Equal(t, match.Decision{Index: 0}, dec)
}

func TestTerminal_CtrlCIsEOF(t *testing.T) {
	term := console.NewTerminal(strings.NewReader("\x03"), io.Discard)
	_, err := term.ReadKey()
	assert.ErrorIs(t, err, io.EOF)
}

func TestTerminal_Confirm(t *testing.T) {
	var out bytes.Buffer
	term := console.NewTerminal(strings.NewReader("yNY"), &out)
	for _, want := range []bool{true, false, true} {
		got, err := term.Confirm("Quit?")
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
	assert.Contains(t, console.StripANSI(out.String()), "Quit? [y/N]")
	term.Restore()
}

func snapshots() (entity.Snapshot, entity.Snapshot) {
	limits := entity.Limits{MaxEnergy: 100, MaxArmor: 30}
	p := entity.New("Player", 100, 5, 40, limits)
	e := entity.New("Enemy", 120, 10, 60, limits)
	e.AddStatus(&status.Effect{Def: &status.Def{ID: "poison", Name: "Poison", Kind: status.KindDamage}, Magnitude: 3, Remaining: 2})
	return p.Snapshot(), e.Snapshot()
}

func TestRenderer_PlayerTurn(t *testing.T) {
	var out bytes.Buffer
	r := console.NewRenderer(&out, config.DisplayConfig{ClearScreen: false}, fixedNarrator{})
	p, e := snapshots()
	r.Turn(match.TurnView{
		Side:      combat.SidePlayer,
		Round:     3,
		Player:    p,
		Enemy:     e,
		LastRound: []combat.Event{{Side: combat.SideEnemy, Kind: combat.EventMove, Text: "Enemy attacks Player for 7 damage."}},
		Moves: combat.MoveSet{
			{Category: combat.CategoryAttack, Potency: 20, Cost: 12},
			{Category: combat.CategoryHeal, Potency: 10, Cost: 50},
			{Category: combat.CategoryArmor, Potency: 3, Cost: 6},
			{Category: combat.CategoryStatus, Potency: 2, Cost: 15, Duration: 3, Status: &status.Def{Name: "Corrosion"}},
		},
	})
	text := console.StripANSI(out.String())
	assert.Contains(t, text, "Round 3")
	assert.Contains(t, text, "100/100")
	assert.Contains(t, text, "Poison (3, 2t)")
	assert.Contains(t, text, "What happened last round:")
	assert.Contains(t, text, "Enemy attacks Player for 7 damage.")
	assert.Contains(t, text, "[1] Attack")
	assert.Contains(t, text, "[4] Corrosion")
	assert.Contains(t, text, "2 for 3 turns")
	assert.Contains(t, text, "(0 to exit)")
	assert.NotContains(t, out.String(), console.ClearScreen)
}

func TestRenderer_EnemyTurnHidesMoves(t *testing.T) {
	var out bytes.Buffer
	r := console.NewRenderer(&out, config.DisplayConfig{ClearScreen: true}, fixedNarrator{})
	p, e := snapshots()
	r.Turn(match.TurnView{Side: combat.SideEnemy, Round: 1, Player: p, Enemy: e})
	text := out.String()
	assert.True(t, strings.HasPrefix(text, console.ClearScreen))
	assert.Contains(t, console.StripANSI(text), "Enemy's turn.")
	assert.NotContains(t, console.StripANSI(text), "Choose your move.")
}

func TestRenderer_ThinkingSleeps(t *testing.T) {
	var out bytes.Buffer
	r := console.NewRenderer(&out, config.DisplayConfig{AIThinkDelay: 250 * time.Millisecond}, fixedNarrator{})
	var slept time.Duration
	r.Sleep = func(d time.Duration) { slept += d }
	r.Thinking(combat.SideEnemy)
	assert.Equal(t, 250*time.Millisecond, slept)
	assert.Contains(t, console.StripANSI(out.String()), "The AI is thinking...")
}

func TestRenderer_Summary(t *testing.T) {
	var out bytes.Buffer
	r := console.NewRenderer(&out, config.DisplayConfig{}, fixedNarrator{})
	r.Summary(match.Result{Outcome: match.StateVictory})
	r.Summary(match.Result{Outcome: match.StateDefeat})
	r.Summary(match.Result{Outcome: match.StateAborted})
	r.PostGameMenu()
	r.Goodbye()

	text := out.String()
	plain := console.StripANSI(text)
	assert.Contains(t, plain, "Player wins!!!")
	assert.Contains(t, text, "gg {red}", "unformatted messages are printed verbatim")
	assert.Contains(t, plain, "Enemy wins!!!")
	assert.Contains(t, plain, "oof")
	assert.Contains(t, plain, "abandoned")
	assert.Contains(t, plain, "[2] Rematch!")
	assert.Contains(t, text, console.Red+"bye")
}

func TestRenderer_MainMenu(t *testing.T) {
	var out bytes.Buffer
	r := console.NewRenderer(&out, config.DisplayConfig{}, fixedNarrator{})
	packs := []*content.Pack{{Meta: content.Meta{Name: "Classic", Author: "norb", Description: "Old lines."}}}
	r.MainMenu(packs, &match.Tally{Wins: 3, Losses: 1, Aborts: 2})
	r.DifficultyMenu()
	plain := console.StripANSI(out.String())
	assert.Contains(t, plain, "Loaded datapacks (1):")
	assert.Contains(t, plain, "Classic by norb : Old lines.")
	assert.Contains(t, plain, "Record: 3 wins 1 losses 2 abandoned")
	assert.Contains(t, plain, "[4] Random")
}

func TestNewRenderer_NilPanics(t *testing.T) {
	assert.Panics(t, func() { console.NewRenderer(nil, config.DisplayConfig{}, fixedNarrator{}) })
}
