// Package status defines timed status effects: their static definitions,
// loaded from YAML, and the ordered list of effects active on one entity.
package status

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/cory-johannsen/entities/internal/game/dice"
)

// Kind is what a status does to its holder each turn.
type Kind string

const (
	KindDamage Kind = "damage" // health loss over time
	KindDrain  Kind = "drain"  // energy loss over time
	KindErode  Kind = "erode"  // armor loss over time
	KindRegen  Kind = "regen"  // health gain over time
	KindCharge Kind = "charge" // energy gain over time
)

// Valid reports whether k is a known kind.
func (k Kind) Valid() bool {
	switch k {
	case KindDamage, KindDrain, KindErode, KindRegen, KindCharge:
		return true
	}
	return false
}

// Harmful reports whether the kind hurts its holder.
func (k Kind) Harmful() bool {
	return k == KindDamage || k == KindDrain || k == KindErode
}

// Target names who a Status move attaches the effect to.
type Target string

const (
	TargetOpponent Target = "opponent"
	TargetSelf     Target = "self"
)

// Def is the static definition of a status, loaded from YAML.
type Def struct {
	ID          string `yaml:"id"`
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
	Kind        Kind   `yaml:"kind"`
	Target      Target `yaml:"target"`
	// Magnitude and Duration are dice expressions rolled when a Status move is generated.
	Magnitude string `yaml:"magnitude"`
	Duration  string `yaml:"duration"`
	// Narration is the per-turn text. {name} is replaced with the holder's
	// name and {amount} with the magnitude applied.
	Narration string `yaml:"narration"`
}

// Validate checks required fields and that both dice expressions parse.
//
// Postcondition: nil return guarantees non-empty ID and Name, a valid Kind and
// Target, a Magnitude rolling >= 0 and a Duration rolling >= 1.
func (d *Def) Validate() error {
	if d.ID == "" {
		return errors.New("status.Def: id must not be empty")
	}
	if d.Name == "" {
		return fmt.Errorf("status.Def %q: name must not be empty", d.ID)
	}
	if !d.Kind.Valid() {
		return fmt.Errorf("status.Def %q: unknown kind %q", d.ID, d.Kind)
	}
	if d.Target != TargetOpponent && d.Target != TargetSelf {
		return fmt.Errorf("status.Def %q: target must be opponent or self, got %q", d.ID, d.Target)
	}
	mag, err := dice.Parse(d.Magnitude)
	if err != nil {
		return fmt.Errorf("status.Def %q: magnitude: %w", d.ID, err)
	}
	if mag.Min() < 0 {
		return fmt.Errorf("status.Def %q: magnitude %q can roll below zero", d.ID, d.Magnitude)
	}
	dur, err := dice.Parse(d.Duration)
	if err != nil {
		return fmt.Errorf("status.Def %q: duration: %w", d.ID, err)
	}
	if dur.Min() < 1 {
		return fmt.Errorf("status.Def %q: duration %q can roll below one turn", d.ID, d.Duration)
	}
	return nil
}

// Narrate renders the per-turn narration for a holder named name.
func (d *Def) Narrate(name string, amount int) string {
	tmpl := d.Narration
	if tmpl == "" {
		tmpl = "{name} is affected by " + d.Name + " ({amount})."
	}
	return strings.NewReplacer("{name}", name, "{amount}", strconv.Itoa(amount)).Replace(tmpl)
}

// Registry holds all known Defs in registration order.
type Registry struct {
	defs  map[string]*Def
	order []string
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{defs: make(map[string]*Def)}
}

// Register adds def, overwriting any existing entry with the same ID in place.
//
// Precondition: def must not be nil and def.ID must not be empty.
func (r *Registry) Register(def *Def) {
	if _, exists := r.defs[def.ID]; !exists {
		r.order = append(r.order, def.ID)
	}
	r.defs[def.ID] = def
}

// Get returns the Def for id, or (nil, false) if not found.
func (r *Registry) Get(id string) (*Def, bool) {
	d, ok := r.defs[id]
	return d, ok
}

// Len returns the number of registered defs.
func (r *Registry) Len() int { return len(r.order) }

// At returns the i-th def in registration order.
//
// Precondition: 0 <= i < Len().
func (r *Registry) At(i int) *Def { return r.defs[r.order[i]] }

// All returns a snapshot slice of all Defs in registration order.
func (r *Registry) All() []*Def {
	out := make([]*Def, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.defs[id])
	}
	return out
}

// DefaultRegistry returns the built-in status set.
func DefaultRegistry() *Registry {
	reg := NewRegistry()
	for _, d := range []*Def{
		{ID: "poison", Name: "Poison", Kind: KindDamage, Target: TargetOpponent,
			Magnitude: "1d4+2", Duration: "1d3+1", Narration: "{name} takes {amount} poison damage."},
		{ID: "drain", Name: "Energy Drain", Kind: KindDrain, Target: TargetOpponent,
			Magnitude: "1d6+4", Duration: "1d2+1", Narration: "{name} loses {amount} energy to the drain."},
		{ID: "corrode", Name: "Corrosion", Kind: KindErode, Target: TargetOpponent,
			Magnitude: "1d3+1", Duration: "1d3+1", Narration: "{name}'s armor corrodes by {amount}."},
		{ID: "regen", Name: "Regeneration", Kind: KindRegen, Target: TargetSelf,
			Magnitude: "1d4+3", Duration: "1d3+1", Narration: "{name} regenerates {amount} health."},
		{ID: "overcharge", Name: "Overcharge", Kind: KindCharge, Target: TargetSelf,
			Magnitude: "1d4+4", Duration: "1d2+1", Narration: "{name} is overcharged for {amount} energy."},
	} {
		reg.Register(d)
	}
	return reg
}

// LoadDirectory reads every *.yaml file in dir, parses and validates each as a Def,
// and returns a populated Registry. Files are read in directory order, which
// os.ReadDir sorts by name.
//
// Precondition: dir must be a readable directory.
// Postcondition: Returns a non-nil Registry, or an error if any file fails to parse or validate.
func LoadDirectory(dir string) (*Registry, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading status dir %q: %w", dir, err)
	}
	reg := NewRegistry()
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".yaml") {
			continue
		}
		path := filepath.Join(dir, e.Name())
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading %q: %w", path, err)
		}
		var def Def
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(&def); err != nil {
			return nil, fmt.Errorf("parsing %q: %w", path, err)
		}
		if err := def.Validate(); err != nil {
			return nil, fmt.Errorf("validating %q: %w", path, err)
		}
		reg.Register(&def)
	}
	return reg, nil
}
