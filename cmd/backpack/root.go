package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/dshills/backpack/internal/app"
	"github.com/dshills/backpack/internal/config"
	"github.com/dshills/backpack/internal/logging"
	"github.com/dshills/backpack/internal/plugin/api"
)

type rootOptions struct {
	configPath string
	quiet      bool
	verbose    int
	json       bool
	noColor    bool
	pluginDir  string
}

// cli holds what the commands share once the root has set up.
type cli struct {
	opts   rootOptions
	out    io.Writer
	errOut io.Writer
	lookup func(string) (string, bool)

	logger zerolog.Logger
	app    *app.App
}

func newCLI(out, errOut io.Writer, lookup func(string) (string, bool)) *cli {
	return &cli{
		out:    out,
		errOut: errOut,
		lookup: lookup,
		logger: zerolog.Nop(),
	}
}

// execute runs the command line and returns the process exit code.
func (c *cli) execute(ctx context.Context, args []string) int {
	root := c.rootCommand(version, commit, date)
	root.SetArgs(args)

	err := root.ExecuteContext(ctx)
	if c.app != nil {
		if cerr := c.app.Close(); cerr != nil {
			c.logger.Error().Err(cerr).Msg("shutdown")
		}
	}
	if err != nil {
		fmt.Fprintf(c.errOut, "Error: %v\n", err)
		return 1
	}
	return 0
}

func (c *cli) rootCommand(version, commit, date string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "backpack",
		Short: "Developer CLI with Lua plugin hooks",
		Long: `backpack runs developer commands and broadcasts lifecycle events to
Lua plugins found under the user config directory
(<config dir>/github-bot/plugins/<plugin>/{manifest.toml,run.lua}).

Every plugin script runs in a fresh sandbox for every event it receives.`,
		Version:           fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date),
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: c.setup,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
	}
	cmd.SetOut(c.out)
	cmd.SetErr(c.errOut)

	flags := cmd.PersistentFlags()
	flags.StringVar(&c.opts.configPath, "config", "", "path to config.toml")
	flags.BoolVarP(&c.opts.quiet, "quiet", "q", false, "only log warnings and errors")
	flags.CountVarP(&c.opts.verbose, "verbose", "v", "increase log verbosity (-v debug, -vv trace)")
	flags.BoolVar(&c.opts.json, "json", false, "emit logs as JSON")
	flags.BoolVar(&c.opts.noColor, "no-color", false, "disable colored output")
	flags.StringVar(&c.opts.pluginDir, "plugin-dir", "", "override the plugin discovery directory")

	cmd.AddCommand(c.helloCommand())
	cmd.AddCommand(c.pluginsCommand())

	return cmd
}

// setup resolves the configuration, builds the app and registers plugins.
func (c *cli) setup(cmd *cobra.Command, _ []string) error {
	cfg, err := c.resolveConfig(cmd)
	if err != nil {
		return err
	}

	c.logger = logging.New(cfg, c.errOut)
	c.logger.Debug().Msg("logger initialized")
	c.logger.Trace().Str("command", cmd.CommandPath()).Msg("tracing enabled")

	c.app, err = app.New(cfg,
		app.WithLogger(c.logger),
		app.WithConsole(api.NewConsole(c.out, c.errOut, cfg.NoColor)),
	)
	if err != nil {
		return err
	}

	return c.app.Register(cmd.Context())
}

// resolveConfig layers flags over the config file and environment.
func (c *cli) resolveConfig(cmd *cobra.Command) (config.Config, error) {
	path := c.opts.configPath
	if path == "" {
		path = defaultConfigPath()
	}

	cfg, err := config.Load(path)
	if err != nil {
		return config.Config{}, err
	}
	if err := cfg.ApplyEnv(c.lookup); err != nil {
		return config.Config{}, err
	}

	flags := cmd.Flags()
	if flags.Changed("quiet") {
		cfg.Quiet = c.opts.quiet
	}
	if flags.Changed("verbose") {
		cfg.LogLevel = logging.VerbosityLevel(c.opts.verbose)
	}
	if flags.Changed("json") && c.opts.json {
		cfg.LogFormat = config.FormatJSON
	}
	if flags.Changed("no-color") {
		cfg.NoColor = c.opts.noColor
	}
	if flags.Changed("plugin-dir") {
		cfg.PluginRoot = c.opts.pluginDir
	}
	if !isTerminal(c.out) {
		cfg.NoColor = true
	}

	return cfg, nil
}

// defaultConfigPath is <user config dir>/backpack/config.toml, or empty
// when the config directory is unknown.
func defaultConfigPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "backpack", "config.toml")
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return term.IsTerminal(int(f.Fd()))
}
