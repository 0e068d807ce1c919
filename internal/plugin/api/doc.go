// Package api provides the host functions exposed to plugin scripts.
//
// This is the complete capability surface of a plugin. A script can reach
// the outside world only through the modules registered here:
//
//   - color: print, cprint(message, color) and print_<color>(message)
//   - http: outbound HTTP requests (get, post, put, patch, delete, request)
//   - json: gjson/sjson helpers for reading and editing JSON documents
//   - util: string helpers and has_arg/arg for command argument lists
//
// Nothing else is registered. There is no filesystem, process or
// environment access.
//
// # Architecture
//
// Each module implements the Module interface:
//
//	type Module interface {
//	    Name() string
//	    Register(L *lua.LState) error
//	}
//
// Modules are collected in a Registry and injected into every fresh Lua
// state before a script runs:
//
//	registry, err := api.DefaultRegistry(console, 30*time.Second)
//	if err != nil {
//	    return err
//	}
//	if err := registry.InjectAll(state.LuaState()); err != nil {
//	    return err
//	}
//
// Modules hold no per-script state. Anything shared between invocations
// (the Console, the HTTP client) is safe for concurrent use.
package api
