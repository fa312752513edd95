package lua

import (
	"fmt"
	"sort"
	"sync"

	lua "github.com/yuin/gopher-lua"
)

// LuaModule defines the interface for built-in Lua modules
type LuaModule interface {
	// Name returns the module name (used in require() calls)
	Name() string

	// Loader builds the module table. It runs once per state, either from
	// OpenAll or from the first require().
	Loader(L *lua.LState) int
}

// ModuleManager manages built-in Lua modules
type ModuleManager struct {
	modules map[string]LuaModule
	mu      sync.RWMutex
}

// NewModuleManager creates a new ModuleManager
func NewModuleManager() *ModuleManager {
	return &ModuleManager{
		modules: make(map[string]LuaModule),
	}
}

// RegisterModule registers a built-in module
func (mm *ModuleManager) RegisterModule(module LuaModule) error {
	if module == nil {
		return fmt.Errorf("module cannot be nil")
	}

	name := module.Name()
	if name == "" {
		return fmt.Errorf("module name cannot be empty")
	}

	mm.mu.Lock()
	defer mm.mu.Unlock()

	if _, exists := mm.modules[name]; exists {
		return fmt.Errorf("module '%s' is already registered", name)
	}

	mm.modules[name] = module
	return nil
}

// GetModule returns a registered module by name
func (mm *ModuleManager) GetModule(name string) (LuaModule, bool) {
	mm.mu.RLock()
	defer mm.mu.RUnlock()

	module, exists := mm.modules[name]
	return module, exists
}

// ListModules returns the sorted names of all registered modules
func (mm *ModuleManager) ListModules() []string {
	mm.mu.RLock()
	defer mm.mu.RUnlock()

	names := make([]string, 0, len(mm.modules))
	for name := range mm.modules {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// OpenAll preloads every module for require() and also binds each one to a
// global of the same name.
func (mm *ModuleManager) OpenAll(L *lua.LState) error {
	for _, name := range mm.ListModules() {
		module, _ := mm.GetModule(name)
		L.PreloadModule(name, module.Loader)

		if err := L.CallByParam(lua.P{
			Fn:      L.GetGlobal("require"),
			NRet:    1,
			Protect: true,
		}, lua.LString(name)); err != nil {
			return fmt.Errorf("failed to load module '%s': %v", name, err)
		}
		table := L.Get(-1)
		L.Pop(1)
		if table.Type() != lua.LTTable {
			return fmt.Errorf("module '%s' did not create a table", name)
		}
		L.SetGlobal(name, table)
	}
	return nil
}
