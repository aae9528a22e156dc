package ai

import (
	"github.com/cory-johannsen/entities/internal/game/combat"
	"github.com/cory-johannsen/entities/internal/game/status"
)

const (
	lethalBonus = 1000.0
	armorWeight = 0.75
	costWeight  = 0.1
)

var kindWeight = map[status.Kind]float64{
	status.KindDamage: 1.0,
	status.KindDrain:  0.4,
	status.KindErode:  0.75,
	status.KindRegen:  1.0,
	status.KindCharge: 0.3,
}

// Utility estimates the benefit of opt to the deciding side.
// Larger is better; the value may be negative.
func Utility(v View, opt combat.MoveOption) float64 {
	var u float64
	switch opt.Category {
	case combat.CategoryAttack:
		dmg := max(0, opt.Potency-v.Opponent.Armor)
		if dmg >= v.Opponent.Health {
			u = lethalBonus + float64(dmg)
		} else {
			u = float64(dmg) * (2 - HealthFraction(v.Opponent))
		}
	case combat.CategoryHeal:
		gain := min(opt.Potency, max(0, v.Self.MaxHealth-v.Self.Health))
		u = float64(gain) * 2 * (1 - HealthFraction(v.Self))
	case combat.CategoryArmor:
		gain := min(opt.Potency, max(0, v.Self.MaxArmor-v.Self.Armor))
		u = float64(gain) * armorWeight
	case combat.CategoryStatus:
		u = statusUtility(v, opt)
	}
	return u - costWeight*float64(opt.Cost)
}

func statusUtility(v View, opt combat.MoveOption) float64 {
	def := opt.Status
	if def == nil {
		return 0
	}
	holder := v.Opponent
	if def.Target == status.TargetSelf {
		holder = v.Self
	}
	total := opt.Potency * opt.Duration
	switch def.Kind {
	case status.KindErode:
		total = min(total, holder.Armor)
	case status.KindRegen:
		total = min(total, holder.MaxHealth)
	case status.KindCharge, status.KindDrain:
		total = min(total, holder.MaxEnergy)
	}
	value := float64(total) * kindWeight[def.Kind]

	// A harmful effect helps when it lands on the opponent; a beneficial one
	// helps when it lands on self.
	helps := def.Kind.Harmful() == (def.Target == status.TargetOpponent)
	if !helps {
		return -value
	}
	return value
}
