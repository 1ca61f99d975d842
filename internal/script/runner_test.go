package script

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	lua "github.com/yuin/gopher-lua"

	"github.com/dshills/rewind/internal/history"
)

const counterScript = `
n = 0
function add(k)
  return history.push{
    description = "add " .. k,
    tag = "math",
    forward = function() n = n + k end,
    backward = function() n = n - k end,
  }
end
`

func newRunner(t *testing.T, opts ...history.Option) (*Runner, *history.History, *bytes.Buffer) {
	t.Helper()
	h := history.New(opts...)
	var out bytes.Buffer
	r := New(h, WithOutput(&out))
	t.Cleanup(func() { _ = r.Close() })
	if err := r.RunString(context.Background(), counterScript); err != nil {
		t.Fatalf("loading counter script: %v", err)
	}
	return r, h, &out
}

func globalNumber(t *testing.T, r *Runner, name string) float64 {
	t.Helper()
	v, ok := r.Global(name).(lua.LNumber)
	if !ok {
		t.Fatalf("global %s = %v, want number", name, r.Global(name))
	}
	return float64(v)
}

func TestPushUndoRedoFromLua(t *testing.T) {
	r, h, _ := newRunner(t)
	ctx := context.Background()

	err := r.RunString(ctx, `
assert(add(2))
assert(add(3))
assert(history.len() == 2 and history.cursor() == 1)
assert(history.undo() == "applied")
assert(n == 2)
`)
	if err != nil {
		t.Fatalf("RunString() error = %v", err)
	}

	if got := globalNumber(t, r, "n"); got != 2 {
		t.Errorf("n = %v, want 2", got)
	}
	if h.Cursor() != 0 {
		t.Errorf("Cursor() = %d, want 0", h.Cursor())
	}

	res, err := r.Redo(ctx)
	if err != nil || res != history.Applied {
		t.Fatalf("Redo() = %v, %v", res, err)
	}
	if got := globalNumber(t, r, "n"); got != 5 {
		t.Errorf("n after redo = %v, want 5", got)
	}

	res, err = r.Redo(ctx)
	if err != nil || res != history.Boundary {
		t.Errorf("Redo() at top = %v, %v, want boundary", res, err)
	}
}

func TestUndoFromGoRunsLuaEffects(t *testing.T) {
	r, _, _ := newRunner(t)
	ctx := context.Background()

	if err := r.RunString(ctx, `add(10) add(1)`); err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 3; i++ {
		if _, err := r.Undo(ctx); err != nil {
			t.Fatalf("Undo() error = %v", err)
		}
	}
	if got := globalNumber(t, r, "n"); got != 0 {
		t.Errorf("n = %v, want 0", got)
	}
}

func TestCommonReceivesDirection(t *testing.T) {
	r, _, out := newRunner(t)
	err := r.RunString(context.Background(), `
history.push{
  forward = function() end,
  backward = function() end,
  common = function(dir) print("common", dir) end,
}
history.undo()
history.redo()
`)
	if err != nil {
		t.Fatal(err)
	}

	want := "common\tpush\ncommon\tundo\ncommon\tredo\n"
	if out.String() != want {
		t.Errorf("output = %q, want %q", out.String(), want)
	}
}

func TestPushValidation(t *testing.T) {
	r, h, _ := newRunner(t)
	err := r.RunString(context.Background(), `
ok, msg = history.push{ forward = function() end }
bad_ok, bad_msg = history.push{ forward = function() end, backward = 42 }
`)
	if err != nil {
		t.Fatal(err)
	}

	if r.Global("ok") != lua.LNil {
		t.Errorf("ok = %v, want nil", r.Global("ok"))
	}
	if msg := r.Global("msg").String(); !strings.Contains(msg, "backward is required") {
		t.Errorf("msg = %q", msg)
	}
	if msg := r.Global("bad_msg").String(); !strings.Contains(msg, "not a function") {
		t.Errorf("bad_msg = %q", msg)
	}
	if h.Len() != 0 {
		t.Errorf("Len() = %d, want 0", h.Len())
	}
}

func TestFailingEffectKeepsBookkeeping(t *testing.T) {
	r, h, _ := newRunner(t)
	err := r.RunString(context.Background(), `
ok, msg = history.push{
  forward = function() error("disk full") end,
  backward = function() end,
}
`)
	if err != nil {
		t.Fatal(err)
	}
	if msg := r.Global("msg").String(); !strings.Contains(msg, "disk full") {
		t.Errorf("msg = %q, want effect error", msg)
	}
	if h.Len() != 1 || h.Cursor() != 0 {
		t.Errorf("Len, Cursor = %d, %d, want 1, 0", h.Len(), h.Cursor())
	}
}

func TestClearAndEntries(t *testing.T) {
	r, h, _ := newRunner(t)
	err := r.RunString(context.Background(), `
add(1)
history.push{ tag = "other", forward = function() end, backward = function() end }
add(2)
removed = history.clear("math")
list = history.entries()
first_tag = list[1].tag
first_index = list[1].index
count = #list
`)
	if err != nil {
		t.Fatal(err)
	}

	if got := globalNumber(t, r, "removed"); got != 2 {
		t.Errorf("removed = %v, want 2", got)
	}
	if got := globalNumber(t, r, "count"); got != 1 {
		t.Errorf("count = %v, want 1", got)
	}
	if got := r.Global("first_tag").String(); got != "other" {
		t.Errorf("first_tag = %q", got)
	}
	if got := globalNumber(t, r, "first_index"); got != 0 {
		t.Errorf("first_index = %v, want 0", got)
	}
	if h.Cursor() != 0 {
		t.Errorf("Cursor() = %d, want 0", h.Cursor())
	}

	if err := r.RunString(context.Background(), `assert(history.clear() == 1)`); err != nil {
		t.Fatal(err)
	}
	if h.Len() != 0 || h.Cursor() != -1 {
		t.Errorf("after clear Len, Cursor = %d, %d", h.Len(), h.Cursor())
	}
}

func TestSandboxRemovesLoaders(t *testing.T) {
	r, _, _ := newRunner(t)
	for _, name := range []string{"dofile", "loadfile", "load", "loadstring", "require", "io", "os"} {
		if v := r.Global(name); v != lua.LNil {
			t.Errorf("global %s = %v, want nil", name, v)
		}
	}
}

func TestRunFile(t *testing.T) {
	r, h, _ := newRunner(t, history.WithCapacity(2))
	path := filepath.Join(t.TempDir(), "edits.lua")
	if err := os.WriteFile(path, []byte(`for i = 1, 5 do add(i) end`), 0o644); err != nil {
		t.Fatal(err)
	}

	if err := r.RunFile(context.Background(), path); err != nil {
		t.Fatalf("RunFile() error = %v", err)
	}
	if h.Len() != 2 || h.Cursor() != 1 {
		t.Errorf("Len, Cursor = %d, %d, want 2, 1", h.Len(), h.Cursor())
	}
	if got := globalNumber(t, r, "n"); got != 15 {
		t.Errorf("n = %v, want 15", got)
	}
}

func TestRunStringCancelled(t *testing.T) {
	r, _, _ := newRunner(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := r.RunString(ctx, `while true do end`); err == nil {
		t.Fatal("RunString() with cancelled context should fail")
	}
}

func TestClosedRunner(t *testing.T) {
	h := history.New()
	r := New(h)
	if err := r.RunString(context.Background(), `
history.push{ forward = function() end, backward = function() end }
`); err != nil {
		t.Fatal(err)
	}
	if err := r.Close(); err != nil {
		t.Fatal(err)
	}

	if err := r.RunString(context.Background(), `x = 1`); !errors.Is(err, ErrStateClosed) {
		t.Errorf("RunString() after Close = %v, want ErrStateClosed", err)
	}
	if _, err := r.Undo(context.Background()); !errors.Is(err, ErrStateClosed) {
		t.Errorf("Undo() after Close = %v, want ErrStateClosed", err)
	}
	// Driving the history directly reaches the closed effect.
	if _, err := h.Undo(context.Background()); !errors.Is(err, ErrStateClosed) {
		t.Errorf("history Undo() after Close = %v, want ErrStateClosed", err)
	}
}

func TestEffectCannotChangeHistory(t *testing.T) {
	r, h, _ := newRunner(t)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	err := r.RunString(ctx, `
ok = history.push{
  forward = function()
    inner_len = history.len()
    undo_ok, undo_msg = history.undo()
    push_ok, push_msg = history.push{ forward = function() end, backward = function() end }
    clear_ok, clear_msg = history.clear()
  end,
  backward = function() end,
}
after = history.undo()
`)
	if err != nil {
		t.Fatalf("RunString() error = %v", err)
	}

	if r.Global("ok") != lua.LTrue {
		t.Errorf("outer push ok = %v, want true", r.Global("ok"))
	}
	if got := globalNumber(t, r, "inner_len"); got != 1 {
		t.Errorf("inner_len = %v, want 1", got)
	}
	for _, name := range []string{"undo", "push", "clear"} {
		if v := r.Global(name + "_ok"); v != lua.LNil {
			t.Errorf("%s_ok = %v, want nil", name, v)
		}
		if msg := r.Global(name + "_msg").String(); msg != ErrNestedCall.Error() {
			t.Errorf("%s_msg = %q, want %q", name, msg, ErrNestedCall.Error())
		}
	}
	if got := r.Global("after").String(); got != "applied" {
		t.Errorf("undo after effect = %q, want applied", got)
	}
	if h.Len() != 1 || h.Cursor() != -1 {
		t.Errorf("Len, Cursor = %d, %d, want 1, -1", h.Len(), h.Cursor())
	}
}
