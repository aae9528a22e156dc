package match

import (
	"context"

	"github.com/cory-johannsen/entities/internal/game/combat"
	"github.com/cory-johannsen/entities/internal/game/entity"
)

// Menu entries of the post-game prompt. Anything else exits.
const (
	MenuExit    uint = 1
	MenuRematch uint = 2
)

// Input is the blocking keyboard boundary for the human side.
type Input interface {
	// ReadMove returns 0 for quit intent, 1-4 for a move; other values are
	// passed through and treated as a skipped round.
	ReadMove() (uint, error)
	// Confirm asks a yes/no question.
	Confirm(prompt string) (bool, error)
	// ReadMenu reads a post-game menu selection.
	ReadMenu() (uint, error)
}

// TurnView is what the presenter is shown at the start of a turn.
type TurnView struct {
	Side   combat.Side
	Round  int
	Player entity.Snapshot
	Enemy  entity.Snapshot
	// LastRound is the narration carried over from the previous turn.
	LastRound []combat.Event
	// ThisTurn holds the status ticks applied at the start of this turn.
	ThisTurn []combat.Event
	Moves    combat.MoveSet
}

// Presenter renders match progress. It never affects state.
type Presenter interface {
	Turn(v TurnView)
	Thinking(side combat.Side)
	Notice(msg string)
	Summary(r Result)
	PostGameMenu()
}

// History records completed matches.
type History interface {
	Record(ctx context.Context, r Result) error
}

// Discard is a Presenter that renders nothing.
type Discard struct{}

func (Discard) Turn(TurnView) {}
func (Discard) Thinking(combat.Side) {}
func (Discard) Notice(string) {}
func (Discard) Summary(Result) {}
func (Discard) PostGameMenu() {}
