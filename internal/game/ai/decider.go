// Package ai chooses moves for the automated side.
//
// The Decider is epsilon-greedy over the four generated options: with
// probability scale/MaxScale it takes the best affordable option by Utility,
// otherwise a uniformly random affordable one. Expected utility is therefore
// non-decreasing in scale.
package ai

import (
	"github.com/cory-johannsen/entities/internal/game/combat"
	"github.com/cory-johannsen/entities/internal/game/dice"
)

// Skip is returned by Choose when no option is affordable.
const Skip = -1

// MaxScale is the highest difficulty scale; at MaxScale the Decider is fully greedy.
const MaxScale = 4

// Decider selects a move index for the deciding side.
//
// Invariant: src is non-nil.
type Decider struct {
	src dice.Source
}

// NewDecider constructs a Decider drawing randomness from src.
//
// Precondition: src must not be nil.
func NewDecider(src dice.Source) *Decider {
	if src == nil {
		panic("ai.NewDecider: src must not be nil")
	}
	return &Decider{src: src}
}

// Choose returns the index of the option to play, or Skip.
//
// Precondition: moves must not be nil.
// Postcondition: the returned index is Skip or addresses an option whose cost
// does not exceed v.Self.Energy.
func (d *Decider) Choose(v View, moves *combat.MoveSet, scale int) int {
	affordable := Affordable(v, moves)
	if len(affordable) == 0 {
		return Skip
	}
	scale = ClampScale(scale)
	if d.src.Intn(MaxScale) < scale {
		return best(v, moves, affordable)
	}
	return affordable[d.src.Intn(len(affordable))]
}

// Affordable returns the indices of options the deciding side can pay for, in order.
func Affordable(v View, moves *combat.MoveSet) []int {
	out := make([]int, 0, combat.NumMoves)
	for i, opt := range moves {
		if opt.Cost <= v.Self.Energy {
			out = append(out, i)
		}
	}
	return out
}

// Distribution returns the probability that Choose picks each index.
// All entries are zero when nothing is affordable.
func Distribution(v View, moves *combat.MoveSet, scale int) [combat.NumMoves]float64 {
	var p [combat.NumMoves]float64
	affordable := Affordable(v, moves)
	if len(affordable) == 0 {
		return p
	}
	greedy := float64(ClampScale(scale)) / MaxScale
	uniform := (1 - greedy) / float64(len(affordable))
	for _, i := range affordable {
		p[i] = uniform
	}
	p[best(v, moves, affordable)] += greedy
	return p
}

// ExpectedUtility is the Utility of each option weighted by Distribution.
func ExpectedUtility(v View, moves *combat.MoveSet, scale int) float64 {
	dist := Distribution(v, moves, scale)
	var total float64
	for i, p := range dist {
		if p > 0 {
			total += p * Utility(v, moves[i])
		}
	}
	return total
}

// ClampScale maps scale into [0, MaxScale].
func ClampScale(scale int) int {
	return min(max(scale, 0), MaxScale)
}

// best returns the highest-utility index among candidates; ties go to the lowest index.
func best(v View, moves *combat.MoveSet, candidates []int) int {
	bestIdx := candidates[0]
	bestU := Utility(v, moves[bestIdx])
	for _, i := range candidates[1:] {
		if u := Utility(v, moves[i]); u > bestU {
			bestIdx, bestU = i, u
		}
	}
	return bestIdx
}
