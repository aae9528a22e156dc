package console

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/cory-johannsen/entities/internal/config"
	"github.com/cory-johannsen/entities/internal/content"
	"github.com/cory-johannsen/entities/internal/game/combat"
	"github.com/cory-johannsen/entities/internal/game/entity"
	"github.com/cory-johannsen/entities/internal/game/match"
	"github.com/cory-johannsen/entities/internal/game/ruleset"
)

const (
	barWidth = 20
	divider  = "------------------------------------------------------------"
)

// Renderer implements match.Presenter on an ANSI terminal.
type Renderer struct {
	out      io.Writer
	display  config.DisplayConfig
	narrator content.Narrator
	// Sleep is called for the AI thinking beat; replaceable in tests.
	Sleep func(time.Duration)
}

// NewRenderer constructs a Renderer.
//
// Precondition: out and narrator must not be nil.
func NewRenderer(out io.Writer, display config.DisplayConfig, narrator content.Narrator) *Renderer {
	if out == nil || narrator == nil {
		panic("console.NewRenderer: out and narrator must not be nil")
	}
	return &Renderer{out: out, display: display, narrator: narrator, Sleep: time.Sleep}
}

func (r *Renderer) println(s string) {
	fmt.Fprint(r.out, s+"\n")
}

func sideColor(side combat.Side) string {
	if side == combat.SidePlayer {
		return BrightBlue
	}
	return BrightRed
}

// RenderStats formats one combatant's gauges and statuses.
func RenderStats(side combat.Side, s entity.Snapshot) string {
	var b strings.Builder
	b.WriteString(Colorize(Bold+sideColor(side), s.Name))
	b.WriteString("\n")
	fmt.Fprintf(&b, "  %s %s %s\n", Colorize(Green, "Health"), Bar(s.Health, s.MaxHealth, barWidth),
		Colorf(White, "%d/%d", s.Health, s.MaxHealth))
	fmt.Fprintf(&b, "  %s %s %s\n", Colorize(Gray, "Armor "), Bar(s.Armor, s.MaxArmor, barWidth),
		Colorf(White, "%d/%d", s.Armor, s.MaxArmor))
	fmt.Fprintf(&b, "  %s %s %s\n", Colorize(Gold, "Energy"), Bar(s.Energy, s.MaxEnergy, barWidth),
		Colorf(White, "%d/%d", s.Energy, s.MaxEnergy))
	if len(s.Statuses) > 0 {
		parts := make([]string, len(s.Statuses))
		for i, st := range s.Statuses {
			color := Green
			if st.Kind.Harmful() {
				color = Magenta
			}
			parts[i] = Colorf(color, "%s (%d, %dt)", st.Name, st.Magnitude, st.Remaining)
		}
		fmt.Fprintf(&b, "  %s %s\n", Colorize(Cyan, "Status"), strings.Join(parts, ", "))
	}
	return b.String()
}

// RenderEvent colors one narration line by side and kind.
func RenderEvent(e combat.Event) string {
	switch e.Kind {
	case combat.EventSkip:
		return Colorize(Gray, e.Text)
	case combat.EventStatus:
		return Colorize(Magenta, e.Text)
	case combat.EventInfo:
		return Colorize(White, e.Text)
	default:
		return Colorize(sideColor(e.Side), e.Text)
	}
}

// RenderMove formats one option as a numbered menu line.
func RenderMove(index int, opt combat.MoveOption, energy int) string {
	label := opt.Category.String()
	detail := fmt.Sprintf("%d", opt.Potency)
	switch opt.Category {
	case combat.CategoryAttack:
		detail = fmt.Sprintf("%d damage", opt.Potency)
	case combat.CategoryHeal:
		detail = fmt.Sprintf("+%d health", opt.Potency)
	case combat.CategoryArmor:
		detail = fmt.Sprintf("+%d armor", opt.Potency)
	case combat.CategoryStatus:
		if opt.Status != nil {
			label = opt.Status.Name
			detail = fmt.Sprintf("%d for %d turns", opt.Potency, opt.Duration)
		}
	}
	cost := Colorf(Gold, "%d energy", opt.Cost)
	if opt.Cost > energy {
		cost = Colorf(BrightBlack, "%d energy", opt.Cost)
	}
	return fmt.Sprintf("%s %s %s  %s",
		Colorf(BrightBlack, "[%s%d%s]", Gold+Bold, index+1, Reset+BrightBlack),
		Colorf(BrightWhite, "%-14s", label),
		Colorf(White, "%-18s", detail),
		cost)
}

// Turn implements match.Presenter.
func (r *Renderer) Turn(v match.TurnView) {
	if r.display.ClearScreen {
		fmt.Fprint(r.out, ClearScreen)
	}
	r.println(Colorize(BrightBlack, divider))
	r.println(Colorf(Bold+White, "Round %d", v.Round))
	r.println(RenderStats(combat.SidePlayer, v.Player))
	r.println(RenderStats(combat.SideEnemy, v.Enemy))
	r.println(Colorize(Bold+White, "What happened last round:"))
	for _, e := range v.LastRound {
		r.println("  " + RenderEvent(e))
	}
	for _, e := range v.ThisTurn {
		r.println("  " + RenderEvent(e))
	}
	r.println(Colorize(BrightBlack, divider))
	if v.Side != combat.SidePlayer {
		r.println(Colorf(BrightRed, "%s's turn.", v.Enemy.Name))
		return
	}
	for i, opt := range v.Moves {
		r.println(RenderMove(i, opt, v.Player.Energy))
	}
	r.println(Colorize(White, "Choose your move. ") + Colorize(Gray, "[0-4] (0 to exit)"))
}

// Thinking implements match.Presenter.
func (r *Renderer) Thinking(combat.Side) {
	r.println(Colorize(Italic+Gray, "The AI is thinking..."))
	if r.display.AIThinkDelay > 0 {
		r.Sleep(r.display.AIThinkDelay)
	}
}

// Notice implements match.Presenter.
func (r *Renderer) Notice(msg string) {
	r.println(Colorize(BrightYellow, msg))
}

// Summary implements match.Presenter.
func (r *Renderer) Summary(res match.Result) {
	r.println(Colorize(BrightBlack, divider))
	for _, e := range res.Narration {
		r.println("  " + RenderEvent(e))
	}
	outcome := content.Outcome{
		Rounds:       res.Rounds,
		Scale:        res.Scale,
		PlayerHealth: res.PlayerHealth,
		EnemyHealth:  res.EnemyHealth,
	}
	switch res.Outcome {
	case match.StateVictory:
		r.println(Colorize(Bold+BrightGreen, "---<<< Enemy dead. Player wins!!! >>>---"))
		r.println(RenderMessage(r.narrator.VictoryMessage(outcome)))
	case match.StateDefeat:
		r.println(Colorize(Bold+BrightRed, "---<<< Player dead. Enemy wins!!! >>>---"))
		r.println(RenderMessage(r.narrator.DefeatMessage(outcome)))
	case match.StateAborted:
		r.println(Colorize(Gray, "The match was abandoned."))
	}
}

// PostGameMenu implements match.Presenter.
func (r *Renderer) PostGameMenu() {
	r.println(menuLine(1, Red, "Exit"))
	r.println(menuLine(2, HotPink, "Rematch!"))
	r.println(Colorize(BrightBlack, divider))
}

// RenderMessage expands markup for formatted messages and prints the rest verbatim.
func RenderMessage(m content.Message) string {
	if m.Formatted {
		return Markup(m.Text)
	}
	return m.Text
}

func menuLine(n int, color, label string) string {
	return fmt.Sprintf("%s %s", Colorf(BrightBlack, "[%s%d%s]", Gold+Bold, n, Reset+BrightBlack), Colorize(color, label))
}

// MainMenu prints the title screen, loaded datapacks and, when available,
// the match history tally.
func (r *Renderer) MainMenu(packs []*content.Pack, tally *match.Tally) {
	if r.display.ClearScreen {
		fmt.Fprint(r.out, ClearScreen)
	}
	r.println(Colorize(BrightBlack, divider))
	r.println(Colorize(Bold+Gold, "entities") + Colorize(Gray, " : a turn-based duel"))
	r.println(Colorize(BrightBlack, divider))
	if len(packs) > 0 {
		r.println(Colorf(White, "Loaded datapacks (%d):", len(packs)))
		for _, p := range packs {
			line := "  " + Colorize(BrightCyan, p.Meta.Name)
			if p.Meta.Author != "" {
				line += Colorf(Gray, " by %s", p.Meta.Author)
			}
			if p.Meta.Description != "" {
				line += Colorf(BrightBlack, " : %s", p.Meta.Description)
			}
			r.println(line)
		}
		r.println("")
	}
	if tally != nil {
		r.println(Colorf(White, "Record: %s %s %s",
			Colorf(BrightGreen, "%d wins", tally.Wins),
			Colorf(BrightRed, "%d losses", tally.Losses),
			Colorf(Gray, "%d abandoned", tally.Aborts)))
		r.println("")
	}
	r.println(menuLine(1, BrightGreen, "Play"))
	r.println(menuLine(2, Red, "Exit"))
	r.println(Colorize(BrightBlack, divider))
}

// DifficultyMenu prints the difficulty picker.
func (r *Renderer) DifficultyMenu() {
	colors := map[ruleset.Mode]string{
		ruleset.ModeEasy:   BrightGreen,
		ruleset.ModeMedium: BrightYellow,
		ruleset.ModeHard:   BrightRed,
		ruleset.ModeRandom: HotPink,
	}
	r.println(Colorize(White, "Pick a difficulty:"))
	for _, m := range ruleset.Modes {
		r.println(menuLine(int(m), colors[m], m.String()))
	}
	r.println(Colorize(BrightBlack, divider))
}

// Goodbye prints an exit message.
func (r *Renderer) Goodbye() {
	r.println(RenderMessage(r.narrator.ExitMessage()))
}
