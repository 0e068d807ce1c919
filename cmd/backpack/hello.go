package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

func (c *cli) helloCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "hello",
		Short: "Check that the CLI and its plugins respond",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return c.app.Dispatch(cmd.Context(), "hello", []string{}, func(context.Context) error {
				c.logger.Info().Msg("ping pong")
				_, err := fmt.Fprintln(c.out, "Pong")
				return err
			})
		},
	}
}
