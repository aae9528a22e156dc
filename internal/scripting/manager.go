package scripting

import (
	"context"
	"fmt"
	"sort"
	"sync"

	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"

	"github.com/cory-johannsen/entities/internal/game/dice"
)

// Manager owns one sandboxed LState per datapack and dispatches hooks to it.
//
// Manager is safe for concurrent use; calls into the same or different VMs
// are serialised by a single mutex.
type Manager struct {
	mu        sync.Mutex
	states    map[string]*lua.LState
	cancels   map[string]context.CancelFunc
	instLimit int
	roller    *dice.Roller
	logger    *zap.Logger
}

// NewManager creates a Manager.
//
// Precondition: roller and logger must be non-nil; instLimit >= 0.
// Postcondition: Returns a non-nil Manager with no VMs loaded.
func NewManager(roller *dice.Roller, logger *zap.Logger, instLimit int) *Manager {
	if roller == nil || logger == nil {
		panic("scripting.NewManager: roller and logger must not be nil")
	}
	return &Manager{
		states:    make(map[string]*lua.LState),
		cancels:   make(map[string]context.CancelFunc),
		instLimit: instLimit,
		roller:    roller,
		logger:    logger,
	}
}

// LoadFile creates a VM for key, registers the engine.* module and executes
// path. An existing VM for key is replaced.
//
// Precondition: key must be non-empty.
// Postcondition: on error no VM is registered for key.
func (m *Manager) LoadFile(key, path string) error {
	L, cancel := NewSandboxedState(m.instLimit)
	m.RegisterModules(L, key)
	if err := L.DoFile(path); err != nil {
		cancel()
		L.Close()
		return fmt.Errorf("scripting: loading %q for %q: %w", path, key, err)
	}
	m.install(key, L, cancel)
	return nil
}

// LoadString is LoadFile for inline source.
func (m *Manager) LoadString(key, src string) error {
	L, cancel := NewSandboxedState(m.instLimit)
	m.RegisterModules(L, key)
	if err := L.DoString(src); err != nil {
		cancel()
		L.Close()
		return fmt.Errorf("scripting: loading inline script for %q: %w", key, err)
	}
	m.install(key, L, cancel)
	return nil
}

func (m *Manager) install(key string, L *lua.LState, cancel context.CancelFunc) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if old, ok := m.states[key]; ok {
		m.cancels[key]()
		old.Close()
	}
	m.states[key] = L
	m.cancels[key] = cancel
}

// Keys returns the loaded VM keys in sorted order.
func (m *Manager) Keys() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	keys := make([]string, 0, len(m.states))
	for k := range m.states {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// HasHook reports whether key's VM defines a global function named hook.
func (m *Manager) HasHook(key, hook string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	L, ok := m.states[key]
	if !ok {
		return false
	}
	_, isFn := L.GetGlobal(hook).(*lua.LFunction)
	return isFn
}

// CallHook calls the global function hook in key's VM with a fresh opcode
// budget. Returns (LNil, nil) if no VM exists or the hook is not defined.
// Lua runtime errors, including an exhausted budget, are logged at Warn level
// and never propagated.
//
// Postcondition: Returns the first return value of the hook, or LNil.
func (m *Manager) CallHook(key, hook string, args ...lua.LValue) (lua.LValue, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	L, ok := m.states[key]
	if !ok {
		m.logger.Debug("scripting: no VM", zap.String("key", key), zap.String("hook", hook))
		return lua.LNil, nil
	}
	return m.call(L, key, hook, args...), nil
}

// CallStringHook calls hook with a table built from fields and returns its
// result when it is a non-empty string.
func (m *Manager) CallStringHook(key, hook string, fields map[string]int) (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	L, ok := m.states[key]
	if !ok {
		return "", false
	}
	tbl := L.NewTable()
	for k, v := range fields {
		tbl.RawSetString(k, lua.LNumber(v))
	}
	s, isStr := m.call(L, key, hook, tbl).(lua.LString)
	if !isStr || s == "" {
		return "", false
	}
	return string(s), true
}

// call runs hook under a fresh budget. The caller must hold m.mu.
func (m *Manager) call(L *lua.LState, key, hook string, args ...lua.LValue) lua.LValue {
	fn, isFn := L.GetGlobal(hook).(*lua.LFunction)
	if !isFn {
		return lua.LNil
	}
	m.cancels[key]()
	m.cancels[key] = Rebudget(L, m.instLimit)

	if err := L.CallByParam(lua.P{Fn: fn, NRet: 1, Protect: true}, args...); err != nil {
		m.logger.Warn("scripting: Lua runtime error",
			zap.String("key", key),
			zap.String("hook", hook),
			zap.Error(err),
		)
		return lua.LNil
	}
	ret := L.Get(-1)
	L.Pop(1)
	return ret
}

// Close releases every VM.
func (m *Manager) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	for key, L := range m.states {
		m.cancels[key]()
		L.Close()
	}
	m.states = make(map[string]*lua.LState)
	m.cancels = make(map[string]context.CancelFunc)
}
