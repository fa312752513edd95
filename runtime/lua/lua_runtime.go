// Package lua hosts a gopher-lua state with the intbridge module preloaded,
// so conversions can be scripted and the Lua value model (numbers, booleans,
// tables with __index__) exercises the converters' coercion rules.
package lua

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"intbridge/errors"
	"intbridge/logging"
	"intbridge/marshal"

	lua "github.com/yuin/gopher-lua"
)

// DefaultTimeout bounds a single Eval.
const DefaultTimeout = 10 * time.Second

// LuaRuntime owns one Lua state. Calls are serialized.
type LuaRuntime struct {
	state         *lua.LState
	ready         bool
	mu            sync.Mutex
	output        io.Writer
	moduleManager *ModuleManager
	conv          *marshal.Converter
	logger        logging.Logger
	timeout       time.Duration
}

// Option configures a LuaRuntime
type Option func(*LuaRuntime)

// WithConverter sets the converter backing the intbridge module.
func WithConverter(conv *marshal.Converter) Option {
	return func(lr *LuaRuntime) { lr.conv = conv }
}

// WithOutput redirects print().
func WithOutput(w io.Writer) Option {
	return func(lr *LuaRuntime) { lr.output = w }
}

// WithLogger sets the runtime logger.
func WithLogger(logger logging.Logger) Option {
	return func(lr *LuaRuntime) { lr.logger = logger }
}

// WithTimeout bounds every Eval; zero disables the bound.
func WithTimeout(d time.Duration) Option {
	return func(lr *LuaRuntime) { lr.timeout = d }
}

// NewLuaRuntime creates a new Lua runtime instance
func NewLuaRuntime(opts ...Option) *LuaRuntime {
	lr := &LuaRuntime{
		output:  os.Stdout,
		timeout: DefaultTimeout,
	}
	for _, opt := range opts {
		opt(lr)
	}
	if lr.conv == nil {
		lr.conv = marshal.Default()
	}
	if lr.logger == nil {
		lr.logger = logging.NewNopLogger()
	}
	lr.logger = lr.logger.WithComponent("lua")
	return lr
}

// Initialize sets up the Lua runtime
func (lr *LuaRuntime) Initialize() error {
	lr.mu.Lock()
	defer lr.mu.Unlock()

	if lr.ready {
		return nil
	}

	lr.state = lua.NewState()
	lr.state.SetGlobal("print", lr.state.NewFunction(lr.print))

	lr.moduleManager = NewModuleManager()
	if err := lr.moduleManager.RegisterModule(NewIntBridgeModule(lr.conv)); err != nil {
		lr.state.Close()
		return err
	}
	if err := lr.moduleManager.OpenAll(lr.state); err != nil {
		lr.state.Close()
		return errors.WrapError(err, errors.KindSystem, errors.CodeScriptError, "failed to register built-in modules")
	}

	lr.ready = true
	lr.logger.Debug("lua runtime initialized",
		logging.StringField("modules", strings.Join(lr.moduleManager.ListModules(), ",")))
	return nil
}

// print writes its arguments separated by tabs, like the stock print.
func (lr *LuaRuntime) print(L *lua.LState) int {
	top := L.GetTop()
	parts := make([]string, 0, top)
	for i := 1; i <= top; i++ {
		parts = append(parts, L.ToStringMeta(L.Get(i)).String())
	}
	fmt.Fprintln(lr.output, strings.Join(parts, "\t"))
	return 0
}

// Eval runs code and returns the values it returns, rendered as strings.
func (lr *LuaRuntime) Eval(code string) ([]string, error) {
	ctx := context.Background()
	if lr.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, lr.timeout)
		defer cancel()
	}
	return lr.EvalContext(ctx, code)
}

// EvalContext is Eval bounded by ctx.
func (lr *LuaRuntime) EvalContext(ctx context.Context, code string) ([]string, error) {
	lr.mu.Lock()
	defer lr.mu.Unlock()

	if !lr.ready {
		return nil, errors.NewSystemError(errors.CodeNotInitialized, "lua runtime is not initialized")
	}

	L := lr.state
	L.SetContext(ctx)
	defer L.RemoveContext()

	base := L.GetTop()
	fn, err := L.LoadString(code)
	if err != nil {
		return nil, errors.WrapError(err, errors.KindSystem, errors.CodeScriptSyntax, "lua syntax error")
	}
	L.Push(fn)
	if err := L.PCall(0, lua.MultRet, nil); err != nil {
		L.SetTop(base)
		return nil, lr.translate(ctx, err)
	}

	results := make([]string, 0, L.GetTop()-base)
	for i := base + 1; i <= L.GetTop(); i++ {
		results = append(results, L.ToStringMeta(L.Get(i)).String())
	}
	L.SetTop(base)
	return results, nil
}

func (lr *LuaRuntime) translate(ctx context.Context, err error) error {
	if convErr := conversionErrorOf(err); convErr != nil {
		lr.logger.Debug("lua conversion error", logging.StringField("error_code", convErr.Code))
		return convErr
	}
	if ctx.Err() != nil {
		return errors.WrapError(ctx.Err(), errors.KindSystem, errors.CodeScriptTimeout, "lua execution cancelled")
	}
	return errors.WrapError(err, errors.KindSystem, errors.CodeScriptError, "lua execution failed")
}

// Modules lists the built-in modules available to require().
func (lr *LuaRuntime) Modules() []string {
	lr.mu.Lock()
	defer lr.mu.Unlock()

	if lr.moduleManager == nil {
		return nil
	}
	return lr.moduleManager.ListModules()
}

// IsReady checks if the runtime is ready for execution
func (lr *LuaRuntime) IsReady() bool {
	lr.mu.Lock()
	defer lr.mu.Unlock()
	return lr.ready
}

// Cleanup releases resources used by the runtime
func (lr *LuaRuntime) Cleanup() error {
	lr.mu.Lock()
	defer lr.mu.Unlock()

	if lr.state != nil {
		lr.state.Close()
		lr.state = nil
	}
	lr.ready = false
	return nil
}
