package combat

import (
	"github.com/cory-johannsen/entities/internal/game/entity"
	"github.com/cory-johannsen/entities/internal/game/status"
)

// ApplyStatuses ticks every active effect on e in insertion order, narrating
// each application, then narrates the effects that expired.
//
// Precondition: e and n must be non-nil.
// Postcondition: every effect's Remaining has been decremented by one and
// expired effects have been removed.
func ApplyStatuses(side Side, e *entity.Entity, n *Narration) {
	expired := e.Statuses().Tick(func(eff *status.Effect) {
		var amount int
		switch eff.Def.Kind {
		case status.KindDamage:
			e.ApplyDamage(eff.Magnitude)
			amount = eff.Magnitude
		case status.KindDrain:
			amount = e.DrainEnergy(eff.Magnitude)
		case status.KindErode:
			amount = -e.AdjustArmor(-eff.Magnitude)
		case status.KindRegen:
			amount = e.Heal(eff.Magnitude)
		case status.KindCharge:
			amount = e.GrantEnergy(eff.Magnitude)
		}
		n.Add(side, EventStatus, "%s", eff.Def.Narrate(e.Name(), amount))
	})
	for _, eff := range expired {
		n.Add(side, EventStatus, "%s's %s wears off.", e.Name(), eff.Def.Name)
	}
}
