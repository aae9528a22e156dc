package content

import (
	"go.uber.org/zap"

	"github.com/cory-johannsen/entities/internal/game/dice"
	"github.com/cory-johannsen/entities/internal/scripting"
)

// Script hook names looked up in each pack's VM.
const (
	HookExit    = "exit_text"
	HookVictory = "victory_text"
	HookDefeat  = "defeat_text"
)

// Built-in messages used when no datapack supplies any.
var (
	DefaultExit    = []Message{{Text: "Goodbye!"}, {Text: "See you next time."}, {Text: "{gray}The arena falls silent.{reset}", Formatted: true}}
	DefaultVictory = []Message{{Text: "Enemy dead. Player wins!"}}
	DefaultDefeat  = []Message{{Text: "Player dead. Enemy wins!"}}
)

// Outcome is the match summary passed to victory and defeat hooks.
type Outcome struct {
	Rounds       int
	Scale        int
	PlayerHealth int
	EnemyHealth  int
}

func (o Outcome) fields() map[string]int {
	return map[string]int{
		"rounds":        o.Rounds,
		"scale":         o.Scale,
		"player_health": o.PlayerHealth,
		"enemy_health":  o.EnemyHealth,
	}
}

// Narrator supplies flavor text.
type Narrator interface {
	ExitMessage() Message
	VictoryMessage(o Outcome) Message
	DefeatMessage(o Outcome) Message
}

// Library is the loaded set of datapacks. It implements Narrator.
type Library struct {
	packs   []*Pack
	scripts *scripting.Manager
	src     dice.Source
	logger  *zap.Logger
}

// Open scans dir and loads each pack's script into scripts. A pack whose
// script fails to load keeps its static messages.
//
// Precondition: src and logger must be non-nil. scripts may be nil, in which
// case scripts are not loaded.
func Open(dir string, scripts *scripting.Manager, src dice.Source, logger *zap.Logger) (*Library, error) {
	packs, err := Scan(dir, logger)
	if err != nil {
		return nil, err
	}
	lib := NewLibrary(packs, scripts, src, logger)
	if scripts == nil {
		return lib, nil
	}
	for _, p := range packs {
		path := p.ScriptPath()
		if path == "" {
			continue
		}
		if err := scripts.LoadFile(p.Key, path); err != nil {
			logger.Warn("datapack script not loaded", zap.String("pack", p.Meta.Name), zap.Error(err))
		}
	}
	return lib, nil
}

// NewLibrary wraps already-parsed packs.
func NewLibrary(packs []*Pack, scripts *scripting.Manager, src dice.Source, logger *zap.Logger) *Library {
	if src == nil || logger == nil {
		panic("content.NewLibrary: src and logger must not be nil")
	}
	return &Library{packs: packs, scripts: scripts, src: src, logger: logger}
}

// Packs returns the loaded packs in scan order.
func (l *Library) Packs() []*Pack { return l.packs }

// ExitMessage implements Narrator.
func (l *Library) ExitMessage() Message {
	return l.pick(HookExit, nil, func(d Data) []Message { return d.Exit }, DefaultExit)
}

// VictoryMessage implements Narrator.
func (l *Library) VictoryMessage(o Outcome) Message {
	return l.pick(HookVictory, o.fields(), func(d Data) []Message { return d.Victory }, DefaultVictory)
}

// DefeatMessage implements Narrator.
func (l *Library) DefeatMessage(o Outcome) Message {
	return l.pick(HookDefeat, o.fields(), func(d Data) []Message { return d.Defeat }, DefaultDefeat)
}

// pick returns the first script hook result in pack order; otherwise a
// uniformly random message from all packs' lists; otherwise a default.
func (l *Library) pick(hook string, fields map[string]int, list func(Data) []Message, defaults []Message) Message {
	if l.scripts != nil {
		for _, p := range l.packs {
			if text, ok := l.scripts.CallStringHook(p.Key, hook, fields); ok {
				return Message{Text: text, Formatted: true}
			}
		}
	}
	var all []Message
	for _, p := range l.packs {
		all = append(all, list(p.Data)...)
	}
	if len(all) == 0 {
		all = defaults
	}
	return all[l.src.Intn(len(all))]
}
