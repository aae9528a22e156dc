package status

// Effect is one status applied to an entity.
type Effect struct {
	Def       *Def
	Magnitude int
	Remaining int // turns left; the effect is removed when this reaches 0
}

// List is the ordered collection of effects active on one entity. Order is
// insertion order and determines application and narration order.
// It is not safe for concurrent use; the caller must serialise access.
type List struct {
	effects []*Effect
}

// Add appends e. The same Def may appear more than once; each entry ticks independently.
//
// Precondition: e must not be nil and e.Remaining >= 1.
func (l *List) Add(e *Effect) {
	l.effects = append(l.effects, e)
}

// Len returns the number of active effects.
func (l *List) Len() int { return len(l.effects) }

// All returns a copy of the active effects in insertion order. The pointed-to
// Effects are shared; callers must not modify them.
func (l *List) All() []*Effect {
	out := make([]*Effect, len(l.effects))
	copy(out, l.effects)
	return out
}

// Tick calls apply once for every effect in insertion order, then decrements
// its Remaining counter. Effects that reach zero are removed and returned in
// the order they expired.
//
// Postcondition: every remaining effect has Remaining >= 1; relative order of
// survivors is unchanged.
func (l *List) Tick(apply func(e *Effect)) []*Effect {
	var expired []*Effect
	kept := l.effects[:0]
	for _, e := range l.effects {
		apply(e)
		e.Remaining--
		if e.Remaining <= 0 {
			expired = append(expired, e)
			continue
		}
		kept = append(kept, e)
	}
	for i := len(kept); i < len(l.effects); i++ {
		l.effects[i] = nil
	}
	l.effects = kept
	return expired
}

// Clear removes every effect.
func (l *List) Clear() {
	l.effects = nil
}
