package lua

import (
	lua "github.com/yuin/gopher-lua"
)

// strippedGlobals are base library functions removed from every state.
// Each either loads code from outside the script or exposes interpreter
// internals.
var strippedGlobals = []string{
	"dofile",
	"loadfile",
	"load",
	"loadstring",
	"require",
	"module",
	"getfenv",
	"setfenv",
	"collectgarbage",
	"newproxy",
	"_printregs",
}

// openSafeLibraries opens only safe Lua standard libraries.
func openSafeLibraries(L *lua.LState) {
	// Open base library (print, type, pairs, ipairs, etc.)
	lua.OpenBase(L)

	lua.OpenTable(L)
	lua.OpenString(L)
	lua.OpenMath(L)

	// Note: These are intentionally NOT opened:
	// - io (file system access)
	// - os (system calls, execute, getenv)
	// - debug (can bypass sandbox)
	// - package (can load arbitrary modules)
	// - channel, coroutine (not needed by event handlers)
}

// installSandbox removes the stripped globals from L, along with
// string.dump.
func installSandbox(L *lua.LState) {
	for _, name := range strippedGlobals {
		L.SetGlobal(name, lua.LNil)
	}
	if str, ok := L.GetGlobal(lua.StringLibName).(*lua.LTable); ok {
		str.RawSetString("dump", lua.LNil)
	}
}
