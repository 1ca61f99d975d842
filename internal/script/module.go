package script

import (
	"fmt"

	lua "github.com/yuin/gopher-lua"

	"github.com/dshills/rewind/internal/history"
)

func (r *Runner) historyModule() *lua.LTable {
	return r.L.SetFuncs(r.L.NewTable(), map[string]lua.LGFunction{
		"push":     r.luaPush,
		"undo":     r.luaUndo,
		"redo":     r.luaRedo,
		"clear":    r.luaClear,
		"len":      r.luaLen,
		"cursor":   r.luaCursor,
		"can_undo": r.luaCanUndo,
		"can_redo": r.luaCanRedo,
		"entries":  r.luaEntries,
		"capacity": r.luaCapacity,
	})
}

// pushFailure returns nil, message.
func pushFailure(L *lua.LState, err error) int {
	L.Push(lua.LNil)
	L.Push(lua.LString(err.Error()))
	return 2
}

// mutable reports whether the history may be changed from the current Lua
// call. Effects may only read it.
func (r *Runner) mutable() error {
	if r.effectDepth > 0 {
		return ErrNestedCall
	}
	return nil
}

// history.push{forward=, backward=, common=, tag=, description=}
func (r *Runner) luaPush(L *lua.LState) int {
	tbl := L.CheckTable(1)
	if err := r.mutable(); err != nil {
		return pushFailure(L, err)
	}

	action, err := r.actionFromTable(L, tbl)
	if err != nil {
		return pushFailure(L, err)
	}
	if err := r.hist.Push(r.context(), action); err != nil {
		return pushFailure(L, err)
	}
	L.Push(lua.LTrue)
	return 1
}

func (r *Runner) actionFromTable(L *lua.LState, tbl *lua.LTable) (history.Action, error) {
	var action history.Action

	fn := func(field string, required bool) (*lua.LFunction, error) {
		v := L.GetField(tbl, field)
		if v == lua.LNil {
			if required {
				return nil, fmt.Errorf("%w: %s is required", history.ErrInvalidAction, field)
			}
			return nil, nil
		}
		f, ok := v.(*lua.LFunction)
		if !ok {
			return nil, fmt.Errorf("%w: %s is a %s", ErrNotFunction, field, v.Type())
		}
		return f, nil
	}

	forward, err := fn("forward", true)
	if err != nil {
		return action, err
	}
	backward, err := fn("backward", true)
	if err != nil {
		return action, err
	}
	common, err := fn("common", false)
	if err != nil {
		return action, err
	}

	action.Forward = r.effect(forward)
	action.Backward = r.effect(backward)
	if common != nil {
		action.Common = r.commonEffect(common)
	}
	if v, ok := L.GetField(tbl, "tag").(lua.LString); ok {
		action.GroupTag = string(v)
	}
	if v, ok := L.GetField(tbl, "description").(lua.LString); ok {
		action.Description = string(v)
	}
	return action, nil
}

func (r *Runner) luaUndo(L *lua.LState) int {
	if err := r.mutable(); err != nil {
		return pushFailure(L, err)
	}
	return r.pushResult(L)(r.hist.Undo(r.context()))
}

func (r *Runner) luaRedo(L *lua.LState) int {
	if err := r.mutable(); err != nil {
		return pushFailure(L, err)
	}
	return r.pushResult(L)(r.hist.Redo(r.context()))
}

func (r *Runner) pushResult(L *lua.LState) func(history.Result, error) int {
	return func(res history.Result, err error) int {
		if err != nil {
			return pushFailure(L, err)
		}
		L.Push(lua.LString(res.String()))
		return 1
	}
}

// history.clear() clears everything; history.clear(tag) clears one group and
// returns the number of entries removed.
func (r *Runner) luaClear(L *lua.LState) int {
	if err := r.mutable(); err != nil {
		return pushFailure(L, err)
	}
	if L.GetTop() == 0 || L.Get(1) == lua.LNil {
		n := r.hist.Len()
		r.hist.Clear()
		L.Push(lua.LNumber(n))
		return 1
	}
	L.Push(lua.LNumber(r.hist.ClearGroup(L.CheckString(1))))
	return 1
}

func (r *Runner) luaLen(L *lua.LState) int {
	L.Push(lua.LNumber(r.hist.Len()))
	return 1
}

func (r *Runner) luaCursor(L *lua.LState) int {
	L.Push(lua.LNumber(r.hist.Cursor()))
	return 1
}

func (r *Runner) luaCapacity(L *lua.LState) int {
	L.Push(lua.LNumber(r.hist.Capacity()))
	return 1
}

func (r *Runner) luaCanUndo(L *lua.LState) int {
	L.Push(lua.LBool(r.hist.CanUndo()))
	return 1
}

func (r *Runner) luaCanRedo(L *lua.LState) int {
	L.Push(lua.LBool(r.hist.CanRedo()))
	return 1
}

// history.entries() returns an array of {id, index, description, tag, applied}.
// index is the zero-based position used by history.cursor().
func (r *Runner) luaEntries(L *lua.LState) int {
	list := L.NewTable()
	for _, info := range r.hist.Entries() {
		e := L.NewTable()
		e.RawSetString("id", lua.LString(info.ID.String()))
		e.RawSetString("index", lua.LNumber(info.Index))
		e.RawSetString("description", lua.LString(info.Description))
		e.RawSetString("tag", lua.LString(info.GroupTag))
		e.RawSetString("applied", lua.LBool(info.Applied))
		list.Append(e)
	}
	L.Push(list)
	return 1
}
