package main

import (
	"context"
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/dshills/backpack/internal/plugin"
)

func (c *cli) pluginsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "plugins",
		Short: "Inspect and exercise installed plugins",
	}
	cmd.AddCommand(c.pluginsListCommand())
	cmd.AddCommand(c.pluginsEmitCommand())
	return cmd
}

func (c *cli) pluginsListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List discovered plugins",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return c.app.Dispatch(cmd.Context(), "plugins", []string{"list"}, func(context.Context) error {
				plugins := c.app.Plugins()
				if len(plugins) == 0 {
					_, err := fmt.Fprintf(c.out, "No plugins found in %s\n", c.app.Root())
					return err
				}

				t := table.New().
					Border(lipgloss.NormalBorder()).
					Headers("NAME", "AUTHOR", "DESCRIPTION", "PATH")
				for _, p := range plugins {
					t.Row(p.Manifest.Name, p.Manifest.Author, p.Manifest.Description, p.Dir)
				}
				_, err := fmt.Fprintln(c.out, t.Render())
				return err
			})
		},
	}
}

func (c *cli) pluginsEmitCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "emit <kind> [args...]",
		Short: "Broadcast a single event to every plugin",
		Long: `Broadcast a single event to every plugin and wait for all of them.

Kinds taking arguments:
  plugin-registered <name>
  cli-command-execution-run <command> [args...]`,
		Args:      cobra.MinimumNArgs(1),
		ValidArgs: plugin.AllEventKinds,
		RunE: func(cmd *cobra.Command, args []string) error {
			event, err := plugin.NewEvent(args[0], args[1:])
			if err != nil {
				return err
			}
			return c.app.Emit(cmd.Context(), event)
		},
	}
}
