package script

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/rs/zerolog"
	lua "github.com/yuin/gopher-lua"

	"github.com/dshills/rewind/internal/history"
)

// Runner executes Lua scripts against a history.
//
// gopher-lua's LState is not goroutine-safe. Every entry point takes mu, and
// effects invoked while an entry point runs reuse the same goroutine, so Lua
// is only ever entered by one goroutine at a time.
type Runner struct {
	mu     sync.Mutex
	L      *lua.LState
	hist   *history.History
	log    zerolog.Logger
	out    io.Writer
	closed bool

	// effectDepth counts Lua effects currently on the stack. Guarded by mu.
	effectDepth int
}

// Option configures a Runner.
type Option func(*Runner)

// WithOutput redirects print. The default is os.Stdout.
func WithOutput(w io.Writer) Option {
	return func(r *Runner) {
		if w != nil {
			r.out = w
		}
	}
}

// WithLogger sets the logger.
func WithLogger(log zerolog.Logger) Option {
	return func(r *Runner) {
		r.log = log
	}
}

// New creates a runner bound to h.
func New(h *history.History, opts ...Option) *Runner {
	r := &Runner{
		hist: h,
		log:  zerolog.Nop(),
		out:  os.Stdout,
	}
	for _, opt := range opts {
		opt(r)
	}

	r.L = lua.NewState(lua.Options{SkipOpenLibs: true})
	openSafeLibraries(r.L)
	r.installSandbox()
	r.L.SetGlobal("history", r.historyModule())
	return r
}

// openSafeLibraries opens only libraries without filesystem or process
// access.
func openSafeLibraries(L *lua.LState) {
	lua.OpenBase(L)
	lua.OpenTable(L)
	lua.OpenString(L)
	lua.OpenMath(L)
}

// installSandbox removes loaders that reach the filesystem and routes print
// through the runner.
func (r *Runner) installSandbox() {
	for _, name := range []string{"dofile", "loadfile", "load", "loadstring", "require", "module"} {
		r.L.SetGlobal(name, lua.LNil)
	}

	r.L.SetGlobal("print", r.L.NewFunction(func(L *lua.LState) int {
		parts := make([]string, 0, L.GetTop())
		for i := 1; i <= L.GetTop(); i++ {
			parts = append(parts, L.ToStringMeta(L.Get(i)).String())
		}
		line := strings.Join(parts, "\t")
		r.log.Debug().Str("line", line).Msg("script print")
		fmt.Fprintln(r.out, line)
		return 0
	}))
}

// RunFile executes the Lua file at path. Cancelling ctx interrupts the script.
func (r *Runner) RunFile(ctx context.Context, path string) error {
	return r.enter(ctx, func() error {
		r.log.Debug().Str("path", path).Msg("running script")
		return r.L.DoFile(path)
	})
}

// RunString executes code.
func (r *Runner) RunString(ctx context.Context, code string) error {
	return r.enter(ctx, func() error {
		return r.L.DoString(code)
	})
}

// Undo steps the history back, running Lua effects on the caller's goroutine.
func (r *Runner) Undo(ctx context.Context) (history.Result, error) {
	var res history.Result
	err := r.enter(ctx, func() error {
		var err error
		res, err = r.hist.Undo(ctx)
		return err
	})
	return res, err
}

// Redo steps the history forward, running Lua effects on the caller's
// goroutine.
func (r *Runner) Redo(ctx context.Context) (history.Result, error) {
	var res history.Result
	err := r.enter(ctx, func() error {
		var err error
		res, err = r.hist.Redo(ctx)
		return err
	})
	return res, err
}

// Global returns a global variable from the script state.
func (r *Runner) Global(name string) lua.LValue {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return lua.LNil
	}
	return r.L.GetGlobal(name)
}

// Close releases the Lua state. Effects recorded by scripts fail with
// ErrStateClosed afterwards.
func (r *Runner) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return nil
	}
	r.L.Close()
	r.closed = true
	return nil
}

// enter runs fn with the state locked and ctx installed for interruption.
func (r *Runner) enter(ctx context.Context, fn func() error) (err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return ErrStateClosed
	}

	r.L.SetContext(ctx)
	defer r.L.RemoveContext()

	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("lua panic: %v", rec)
		}
	}()
	return fn()
}

// context returns the context of the running entry point.
func (r *Runner) context() context.Context {
	if ctx := r.L.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

// effect wraps a Lua function as a history effect. It does not take mu: it
// is only invoked from inside an entry point.
func (r *Runner) effect(fn *lua.LFunction, args ...lua.LValue) history.Effect {
	return func(ctx context.Context) error {
		if r.closed {
			return ErrStateClosed
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		r.effectDepth++
		defer func() { r.effectDepth-- }()
		return r.L.CallByParam(lua.P{Fn: fn, NRet: 0, Protect: true}, args...)
	}
}

func (r *Runner) commonEffect(fn *lua.LFunction) history.CommonEffect {
	return func(ctx context.Context, dir history.Direction) error {
		return r.effect(fn, lua.LString(dir.String()))(ctx)
	}
}
