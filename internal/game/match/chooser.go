package match

import (
	"context"
	"fmt"

	"github.com/cory-johannsen/entities/internal/game/ai"
	"github.com/cory-johannsen/entities/internal/game/combat"
	"github.com/cory-johannsen/entities/internal/game/entity"
)

// Skip is the Decision index for a turn in which no move is resolved.
const Skip = ai.Skip

// Turn is the read-only context handed to a Chooser.
type Turn struct {
	Side     combat.Side
	Self     entity.Snapshot
	Opponent entity.Snapshot
	Moves    *combat.MoveSet
	Scale    int
}

// Decision is a Chooser's answer. Index is 0-3 or Skip.
type Decision struct {
	Index int
	Quit  bool
}

// Chooser picks a move for one side.
type Chooser interface {
	Choose(ctx context.Context, t Turn) (Decision, error)
}

// HumanChooser reads moves from an Input.
//
// 0 asks for quit confirmation; a declined confirmation re-prompts. A move the
// side cannot afford is rejected with a notice and re-prompts. Any value
// outside 1-4 skips the round.
type HumanChooser struct {
	in  Input
	out Presenter
}

// NewHumanChooser constructs a HumanChooser.
//
// Precondition: in and out must not be nil.
func NewHumanChooser(in Input, out Presenter) *HumanChooser {
	if in == nil || out == nil {
		panic("match.NewHumanChooser: in and out must not be nil")
	}
	return &HumanChooser{in: in, out: out}
}

// Choose implements Chooser.
func (h *HumanChooser) Choose(ctx context.Context, t Turn) (Decision, error) {
	for {
		if err := ctx.Err(); err != nil {
			return Decision{}, err
		}
		n, err := h.in.ReadMove()
		if err != nil {
			return Decision{}, fmt.Errorf("reading move: %w", err)
		}
		if n == 0 {
			ok, err := h.in.Confirm("Are you sure you want to quit?")
			if err != nil {
				return Decision{}, fmt.Errorf("reading confirmation: %w", err)
			}
			if ok {
				return Decision{Index: Skip, Quit: true}, nil
			}
			continue
		}
		if n > combat.NumMoves {
			return Decision{Index: Skip}, nil
		}
		idx := int(n) - 1
		if t.Moves[idx].Cost > t.Self.Energy {
			h.out.Notice("Not enough energy!")
			continue
		}
		return Decision{Index: idx}, nil
	}
}

// AIChooser delegates to an ai.Decider.
type AIChooser struct {
	decider *ai.Decider
	out     Presenter
	fixed   bool
	scale   int
}

// NewAIChooser constructs an AIChooser that plays at the match's difficulty scale.
//
// Precondition: decider and out must not be nil.
func NewAIChooser(decider *ai.Decider, out Presenter) *AIChooser {
	if decider == nil || out == nil {
		panic("match.NewAIChooser: decider and out must not be nil")
	}
	return &AIChooser{decider: decider, out: out}
}

// NewFixedAIChooser constructs an AIChooser that ignores the match scale and
// always plays at scale.
func NewFixedAIChooser(decider *ai.Decider, out Presenter, scale int) *AIChooser {
	c := NewAIChooser(decider, out)
	c.fixed = true
	c.scale = scale
	return c
}

// Choose implements Chooser.
func (a *AIChooser) Choose(ctx context.Context, t Turn) (Decision, error) {
	if err := ctx.Err(); err != nil {
		return Decision{}, err
	}
	a.out.Thinking(t.Side)
	scale := t.Scale
	if a.fixed {
		scale = a.scale
	}
	v := ai.View{Self: t.Self, Opponent: t.Opponent}
	return Decision{Index: a.decider.Choose(v, t.Moves, scale)}, nil
}
