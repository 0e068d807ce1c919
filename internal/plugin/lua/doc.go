// Package lua provides the embedded Lua runtime used to run plugin scripts.
//
// This package wraps the gopher-lua library to provide:
//   - Fresh sandboxed states, one per script invocation
//   - Go to Lua value conversion for event payloads
//   - Context-based cancellation of running scripts
//
// # State
//
// A State is created for a single invocation and closed afterwards:
//
//	state := lua.NewState(lua.WithContext(ctx))
//	defer state.Close()
//
//	state.SetGlobal("event_data", state.Bridge().ToLuaValue(payload))
//	if err := state.DoString("my-plugin", source); err != nil {
//	    return err
//	}
//
// States are never pooled. A new state carries no globals other than the
// safe standard libraries and whatever the caller registers.
//
// # Sandbox
//
// The sandbox opens only the base, table, string and math libraries and
// removes every base function that can load code or reach the host:
// dofile, loadfile, load, loadstring, require, module, getfenv, setfenv,
// collectgarbage, newproxy. The io, os, debug and package libraries are
// never opened.
//
// # Bridge
//
//	luaVal := bridge.ToLuaValue(map[string]any{"command": "merge"})
//	goVal := bridge.ToGoValue(luaVal)
package lua
