// Package combat implements the per-turn pipeline of a duel: move generation,
// status application and move resolution.
package combat

import (
	"errors"

	"github.com/cory-johannsen/entities/internal/game/status"
)

// ErrInvalidSelection is returned when a move index is outside the move set.
var ErrInvalidSelection = errors.New("invalid move selection")

// Side identifies which combatant is acting.
type Side int

const (
	SidePlayer Side = iota
	SideEnemy
)

// Other returns the opposing side.
func (s Side) Other() Side {
	if s == SidePlayer {
		return SideEnemy
	}
	return SidePlayer
}

// String returns "player" or "enemy".
func (s Side) String() string {
	if s == SidePlayer {
		return "player"
	}
	return "enemy"
}

// Category is the fixed kind of a move option. A MoveSet always holds the
// categories in this order.
type Category int

const (
	CategoryAttack Category = iota
	CategoryHeal
	CategoryArmor
	CategoryStatus
)

// NumMoves is the number of options generated every turn.
const NumMoves = 4

// String returns a human-readable category label.
func (c Category) String() string {
	switch c {
	case CategoryAttack:
		return "Attack"
	case CategoryHeal:
		return "Heal"
	case CategoryArmor:
		return "Regen armor"
	case CategoryStatus:
		return "Status"
	default:
		return "unknown"
	}
}

// MoveOption is one candidate move for the current turn.
type MoveOption struct {
	Category Category
	// Potency is damage for Attack, health for Heal, armor for Armor and the
	// per-turn magnitude for Status.
	Potency int
	// Cost is the energy spent when the option is resolved.
	Cost int
	// Status and Duration are set only for CategoryStatus.
	Status   *status.Def
	Duration int
}

// MoveSet is the caller-owned buffer a Generator fills each turn.
// Index i always holds Category(i).
type MoveSet [NumMoves]MoveOption

// Valid reports whether index addresses an option.
func Valid(index int) bool {
	return index >= 0 && index < NumMoves
}
