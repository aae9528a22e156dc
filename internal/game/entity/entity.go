// Package entity holds the mutable state of one combatant: health, armor,
// energy and the ordered list of active statuses.
package entity

import (
	"errors"
	"fmt"

	"github.com/cory-johannsen/entities/internal/game/status"
)

// ErrInsufficientEnergy is returned when a spend exceeds the available energy.
var ErrInsufficientEnergy = errors.New("insufficient energy")

// Limits are the ceilings an Entity clamps against.
type Limits struct {
	MaxEnergy int
	MaxArmor  int
}

// Entity is one combatant.
//
// Invariant: 0 <= armor <= limits.MaxArmor and 0 <= energy <= limits.MaxEnergy
// after every mutation. Health may go negative; <= 0 means defeated.
type Entity struct {
	name      string
	health    int
	maxHealth int
	armor     int
	energy    int
	limits    Limits
	statuses  status.List
}

// New creates an Entity at full health. Armor and energy are clamped into range.
//
// Precondition: health >= 1; limits.MaxEnergy >= 0; limits.MaxArmor >= 0.
// Postcondition: Health() == MaxHealth() == health.
func New(name string, health, armor, energy int, limits Limits) *Entity {
	e := &Entity{
		name:      name,
		health:    health,
		maxHealth: health,
		limits:    limits,
	}
	e.armor = clamp(armor, 0, limits.MaxArmor)
	e.energy = clamp(energy, 0, limits.MaxEnergy)
	return e
}

// Name returns the display name.
func (e *Entity) Name() string { return e.name }

// Health returns current health.
func (e *Entity) Health() int { return e.health }

// MaxHealth returns the heal ceiling.
func (e *Entity) MaxHealth() int { return e.maxHealth }

// Armor returns current armor.
func (e *Entity) Armor() int { return e.armor }

// Energy returns current energy.
func (e *Entity) Energy() int { return e.energy }

// Limits returns the clamping ceilings.
func (e *Entity) Limits() Limits { return e.limits }

// IsDefeated reports whether health has reached zero or below.
func (e *Entity) IsDefeated() bool { return e.health <= 0 }

// Statuses returns the active status list. The returned pointer is owned by e.
func (e *Entity) Statuses() *status.List { return &e.statuses }

// ApplyDamage reduces health by amount. There is no floor.
//
// Precondition: amount >= 0.
func (e *Entity) ApplyDamage(amount int) {
	e.health -= amount
}

// Heal raises health by amount, capped at MaxHealth, and returns the amount gained.
//
// Postcondition: Health() <= MaxHealth() unless health was already above it.
func (e *Entity) Heal(amount int) int {
	if amount <= 0 || e.health >= e.maxHealth {
		return 0
	}
	before := e.health
	e.health = min(e.health+amount, e.maxHealth)
	return e.health - before
}

// AdjustArmor adds delta to armor, clamped to [0, MaxArmor], and returns the
// delta actually applied.
func (e *Entity) AdjustArmor(delta int) int {
	before := e.armor
	e.armor = clamp(e.armor+delta, 0, e.limits.MaxArmor)
	return e.armor - before
}

// SpendEnergy deducts amount from energy.
//
// Postcondition: on error the entity is unchanged and the error wraps ErrInsufficientEnergy.
func (e *Entity) SpendEnergy(amount int) error {
	if amount < 0 {
		return fmt.Errorf("spending %d energy: amount must not be negative", amount)
	}
	if amount > e.energy {
		return fmt.Errorf("%s needs %d, has %d: %w", e.name, amount, e.energy, ErrInsufficientEnergy)
	}
	e.energy -= amount
	return nil
}

// CanAfford reports whether amount can be spent.
func (e *Entity) CanAfford(amount int) bool { return amount <= e.energy }

// GrantEnergy adds amount, clamped to MaxEnergy, and returns the amount gained.
func (e *Entity) GrantEnergy(amount int) int {
	before := e.energy
	e.energy = clamp(e.energy+amount, 0, e.limits.MaxEnergy)
	return e.energy - before
}

// DrainEnergy removes amount, flooring at zero, and returns the amount removed.
func (e *Entity) DrainEnergy(amount int) int {
	before := e.energy
	e.energy = clamp(e.energy-amount, 0, e.limits.MaxEnergy)
	return before - e.energy
}

// AddStatus appends eff to the ordered status list.
//
// Precondition: eff must not be nil.
func (e *Entity) AddStatus(eff *status.Effect) {
	e.statuses.Add(eff)
}

// SetHealth overwrites current health. Intended for scenario setup in tests.
func (e *Entity) SetHealth(health int) { e.health = health }

// Snapshot is a read-only copy of an Entity's state.
type Snapshot struct {
	Name      string
	Health    int
	MaxHealth int
	Armor     int
	MaxArmor  int
	Energy    int
	MaxEnergy int
	Statuses  []StatusView
}

// StatusView describes one active status in a Snapshot.
type StatusView struct {
	ID        string
	Name      string
	Kind      status.Kind
	Magnitude int
	Remaining int
}

// Snapshot returns a copy of e's state that is safe to hand to presenters.
func (e *Entity) Snapshot() Snapshot {
	s := Snapshot{
		Name:      e.name,
		Health:    e.health,
		MaxHealth: e.maxHealth,
		Armor:     e.armor,
		MaxArmor:  e.limits.MaxArmor,
		Energy:    e.energy,
		MaxEnergy: e.limits.MaxEnergy,
	}
	for _, eff := range e.statuses.All() {
		s.Statuses = append(s.Statuses, StatusView{
			ID:        eff.Def.ID,
			Name:      eff.Def.Name,
			Kind:      eff.Def.Kind,
			Magnitude: eff.Magnitude,
			Remaining: eff.Remaining,
		})
	}
	return s
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
