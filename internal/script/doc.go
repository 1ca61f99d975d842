// Package script drives a history from Lua.
//
// A Runner owns one sandboxed gopher-lua state with a global "history"
// table:
//
//	history.push{
//	    description = "insert hello",
//	    tag = "typing",
//	    forward = function() buf = buf .. "hello" end,
//	    backward = function() buf = buf:sub(1, -6) end,
//	    common = function(dir) print("redraw after " .. dir) end,
//	}
//	history.undo()       -- "applied" or "boundary"
//	history.redo()
//	history.clear("typing")
//	history.len(), history.cursor(), history.entries()
//
// Failures come back Lua style as nil plus a message. Effects may read the
// history but push, undo, redo and clear fail inside them. Effects are Lua
// functions and run on the goroutine that called into the Runner, so the
// history must only be driven through the Runner while a script is loaded.
package script
