package combat

import (
	"errors"
	"fmt"

	"github.com/cory-johannsen/entities/internal/config"
	"github.com/cory-johannsen/entities/internal/game/dice"
	"github.com/cory-johannsen/entities/internal/game/status"
)

type statusDice struct {
	def       *status.Def
	magnitude dice.Expression
	duration  dice.Expression
}

// Generator rolls a fresh MoveSet for the acting entity every turn.
//
// The same Generator serves both sides; it holds no per-entity state.
type Generator struct {
	roller      *dice.Roller
	attack      dice.Expression
	attackCost  dice.Expression
	heal        dice.Expression
	healCost    dice.Expression
	armor       dice.Expression
	armorCost   dice.Expression
	statusCost  dice.Expression
	statusTable []statusDice
}

// NewGenerator parses the configured dice and the status registry.
//
// Precondition: roller must be non-nil.
// Postcondition: Returns a Generator, or an error if any expression fails to
// parse or statuses is empty.
func NewGenerator(cfg config.MovesConfig, statuses *status.Registry, roller *dice.Roller) (*Generator, error) {
	if roller == nil {
		return nil, errors.New("combat.NewGenerator: roller must not be nil")
	}
	if statuses == nil || statuses.Len() == 0 {
		return nil, errors.New("combat.NewGenerator: at least one status definition is required")
	}
	g := &Generator{roller: roller}
	for _, p := range []struct {
		name string
		raw  string
		dst  *dice.Expression
	}{
		{"attack.potency", cfg.Attack.Potency, &g.attack},
		{"attack.cost", cfg.Attack.Cost, &g.attackCost},
		{"heal.potency", cfg.Heal.Potency, &g.heal},
		{"heal.cost", cfg.Heal.Cost, &g.healCost},
		{"armor.potency", cfg.Armor.Potency, &g.armor},
		{"armor.cost", cfg.Armor.Cost, &g.armorCost},
		{"status.cost", cfg.Status.Cost, &g.statusCost},
	} {
		expr, err := dice.Parse(p.raw)
		if err != nil {
			return nil, fmt.Errorf("moves.%s: %w", p.name, err)
		}
		*p.dst = expr
	}
	for _, def := range statuses.All() {
		mag, err := dice.Parse(def.Magnitude)
		if err != nil {
			return nil, fmt.Errorf("status %q magnitude: %w", def.ID, err)
		}
		dur, err := dice.Parse(def.Duration)
		if err != nil {
			return nil, fmt.Errorf("status %q duration: %w", def.ID, err)
		}
		g.statusTable = append(g.statusTable, statusDice{def: def, magnitude: mag, duration: dur})
	}
	return g, nil
}

// Generate overwrites dst with four freshly rolled options, one per category.
//
// Postcondition: dst[i].Category == Category(i); every Potency and Cost is >= 0;
// dst[CategoryStatus].Status is non-nil with Duration >= 1.
func (g *Generator) Generate(dst *MoveSet) {
	dst[CategoryAttack] = MoveOption{
		Category: CategoryAttack,
		Potency:  g.rollNonNegative(g.attack),
		Cost:     g.rollNonNegative(g.attackCost),
	}
	dst[CategoryHeal] = MoveOption{
		Category: CategoryHeal,
		Potency:  g.rollNonNegative(g.heal),
		Cost:     g.rollNonNegative(g.healCost),
	}
	dst[CategoryArmor] = MoveOption{
		Category: CategoryArmor,
		Potency:  g.rollNonNegative(g.armor),
		Cost:     g.rollNonNegative(g.armorCost),
	}

	pick := g.statusTable[g.roller.Intn(len(g.statusTable))]
	dst[CategoryStatus] = MoveOption{
		Category: CategoryStatus,
		Potency:  g.rollNonNegative(pick.magnitude),
		Cost:     g.rollNonNegative(g.statusCost),
		Status:   pick.def,
		Duration: max(1, g.roller.Roll(pick.duration).Total()),
	}
}

func (g *Generator) rollNonNegative(expr dice.Expression) int {
	return max(0, g.roller.Roll(expr).Total())
}
