package ai

import "github.com/cory-johannsen/entities/internal/game/entity"

// View captures both combatants' state at decision time from the deciding
// side's point of view.
type View struct {
	Self     entity.Snapshot
	Opponent entity.Snapshot
}

// BuildView constructs a View for self deciding against opponent.
//
// Precondition: self and opponent must not be nil.
func BuildView(self, opponent *entity.Entity) View {
	return View{Self: self.Snapshot(), Opponent: opponent.Snapshot()}
}

// HealthFraction returns health/maxHealth clamped to [0, 1]; 0 if maxHealth is 0.
func HealthFraction(s entity.Snapshot) float64 {
	if s.MaxHealth <= 0 {
		return 0
	}
	f := float64(s.Health) / float64(s.MaxHealth)
	return min(max(f, 0), 1)
}
