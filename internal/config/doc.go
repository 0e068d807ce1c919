// Package config holds the host settings for backpack.
//
// Settings are resolved in three layers, later layers overriding earlier:
//
//  1. Built-in defaults (Default)
//  2. An optional TOML file (Load)
//  3. BACKPACK_* environment variables (ApplyEnv)
//
// Command line flags are applied by the caller on top of the result.
// The resolved Config is passed by value to the constructors that need it;
// there is no package-level state.
//
// Example file:
//
//	quiet = false
//	no_color = false
//	log_level = "info"
//	log_format = "text"
//	plugin_dir = "/home/me/.config/github-bot/plugins"
//	script_timeout = "30s"
//	http_timeout = "10s"
//	metrics_textfile = ""
package config
