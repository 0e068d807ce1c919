// Package plugin provides the plugin system for backpack.
//
// A plugin is a directory under the plugin root holding a TOML manifest
// and a Lua script:
//
//	<user config dir>/github-bot/plugins/
//	└── notify/
//	    ├── manifest.toml   name, description, author (+ optional homepage, repo, license)
//	    └── run.lua         evaluated once per event
//
// The host drives plugins through lifecycle events. Each event is handed
// to every plugin concurrently by a Broadcaster; each plugin's script runs
// in a fresh sandboxed Lua state built by the Engine, with the event bound
// to the global event_data and the capability modules from package api
// installed as globals.
//
// # Event encoding
//
// Events without data arrive as a bare string holding their kind. Events
// with data arrive as a table with a single key, the kind:
//
//	"plugin-registration-init"
//	{["plugin-registered"] = "notify"}
//	{["cli-command-execution-run"] = {command = "wip", args = {"true", "false"}}}
//
// A script tells them apart with type(event_data) and next(event_data).
//
// # Failure isolation
//
// A script that raises an error, fails to compile or exceeds its deadline
// produces a failed Outcome. The Broadcaster logs it with the plugin name;
// other plugins and the host are unaffected.
//
// # Sandbox
//
// Only the base, table, string and math libraries are opened. Loading
// code from files or strings, the module system and environment
// manipulation are removed; see package lua.
package plugin
