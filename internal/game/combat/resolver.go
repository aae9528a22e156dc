package combat

import (
	"fmt"

	"github.com/cory-johannsen/entities/internal/game/entity"
	"github.com/cory-johannsen/entities/internal/game/status"
)

// Resolve applies moves[index] from attacker against defender and narrates the result.
//
// Energy is deducted before any effect. An Attack deals max(0, Potency-armor)
// and then cracks half the absorbed amount, rounded up, off the defender's
// armor. Heal is capped at max health,
// Armor at the armor ceiling. A Status move attaches a new effect to the
// defender or to the attacker depending on the definition's target.
//
// Precondition: attacker, defender, moves and n must be non-nil.
// Postcondition: on error neither entity is modified; the error wraps
// ErrInvalidSelection or entity.ErrInsufficientEnergy.
func Resolve(side Side, attacker, defender *entity.Entity, moves *MoveSet, index int, n *Narration) error {
	if !Valid(index) {
		return fmt.Errorf("index %d: %w", index, ErrInvalidSelection)
	}
	opt := moves[index]
	if err := attacker.SpendEnergy(opt.Cost); err != nil {
		return fmt.Errorf("resolving %s: %w", opt.Category, err)
	}

	switch opt.Category {
	case CategoryAttack:
		dmg := max(0, opt.Potency-defender.Armor())
		defender.ApplyDamage(dmg)
		cracked := -defender.AdjustArmor(-ArmorWear(opt.Potency, defender.Armor()))
		if dmg == 0 {
			n.Add(side, EventMove, "%s attacks, but %s's armor absorbs the blow.", attacker.Name(), defender.Name())
		} else {
			n.Add(side, EventMove, "%s attacks %s for %d damage.", attacker.Name(), defender.Name(), dmg)
		}
		if cracked > 0 {
			n.Add(side, EventMove, "%s's armor loses %d.", defender.Name(), cracked)
		}
	case CategoryHeal:
		gained := attacker.Heal(opt.Potency)
		if gained == 0 {
			n.Add(side, EventMove, "%s tries to heal but is already at full health.", attacker.Name())
		} else {
			n.Add(side, EventMove, "%s heals %d health.", attacker.Name(), gained)
		}
	case CategoryArmor:
		gained := attacker.AdjustArmor(opt.Potency)
		if gained == 0 {
			n.Add(side, EventMove, "%s's armor is already at its limit.", attacker.Name())
		} else {
			n.Add(side, EventMove, "%s regenerates %d armor.", attacker.Name(), gained)
		}
	case CategoryStatus:
		holder := defender
		if opt.Status.Target == status.TargetSelf {
			holder = attacker
		}
		holder.AddStatus(&status.Effect{Def: opt.Status, Magnitude: opt.Potency, Remaining: opt.Duration})
		if holder == attacker {
			n.Add(side, EventMove, "%s gains %s for %d turns.", attacker.Name(), opt.Status.Name, opt.Duration)
		} else {
			n.Add(side, EventMove, "%s inflicts %s on %s for %d turns.", attacker.Name(), opt.Status.Name, defender.Name(), opt.Duration)
		}
	}
	return nil
}

// ArmorWear is the armor an attack of the given potency strips from a
// defender holding armor: half of the absorbed amount, rounded up.
func ArmorWear(potency, armor int) int {
	absorbed := min(max(potency, 0), max(armor, 0))
	return (absorbed + 1) / 2
}
