package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"google.golang.org/grpc/status"

	"go.klb.dev/keyclip/internal/colorkey"
	"go.klb.dev/keyclip/internal/control"
)

func newToggleCmd(name string, enabled bool) *cobra.Command {
	v := viper.New()
	short := "Resume converting clipboard images"
	if !enabled {
		short = "Pause conversion; the clipboard is left untouched"
	}

	cmd := &cobra.Command{
		Use:     name,
		Short:   short,
		Args:    cobra.NoArgs,
		PreRunE: func(cmd *cobra.Command, _ []string) error { return bindViper(cmd, v) },
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withControl(v, func(ctx context.Context, c *control.Client, _ string) error {
				if err := c.SetEnabled(ctx, enabled); err != nil {
					return fmt.Errorf("%s: %s", name, status.Convert(err).Message())
				}
				fmt.Fprintf(cmd.OutOrStdout(), "conversion %sd\n", name)
				return nil
			})
		},
	}
	addControlFlags(cmd)
	return cmd
}

func newColorCmd() *cobra.Command {
	v := viper.New()

	cmd := &cobra.Command{
		Use:   "color <value>",
		Short: "Set the target colour",
		Long: `Sets the colour that is made transparent. Accepted forms:

  #rrggbb   e.g. #e7feb6
  #rgb      e.g. #fff
  r,g,b     e.g. 231,254,182`,
		Args:    cobra.ExactArgs(1),
		PreRunE: func(cmd *cobra.Command, _ []string) error { return bindViper(cmd, v) },
		RunE: func(cmd *cobra.Command, args []string) error {
			// Validate locally first for a better error message.
			c, err := colorkey.ParseColor(args[0])
			if err != nil {
				return err
			}
			return withControl(v, func(ctx context.Context, cl *control.Client, _ string) error {
				if err := cl.SetColor(ctx, c.Hex()); err != nil {
					return fmt.Errorf("color: %s", status.Convert(err).Message())
				}
				fmt.Fprintf(cmd.OutOrStdout(), "target color set to %s (%s)\n", c.Hex(), c)
				return nil
			})
		},
	}
	addControlFlags(cmd)
	return cmd
}

func newRetryCmd() *cobra.Command {
	v := viper.New()

	cmd := &cobra.Command{
		Use:   "retry",
		Short: "Re-process the current clipboard image",
		Long: `Makes the daemon forget what it last saw on the clipboard, so the current
image is converted again. Use it after a failed conversion or after changing
the target colour.`,
		Args:    cobra.NoArgs,
		PreRunE: func(cmd *cobra.Command, _ []string) error { return bindViper(cmd, v) },
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withControl(v, func(ctx context.Context, c *control.Client, _ string) error {
				if err := c.Retry(ctx); err != nil {
					return fmt.Errorf("retry: %s", status.Convert(err).Message())
				}
				fmt.Fprintln(cmd.OutOrStdout(), "retry scheduled")
				return nil
			})
		},
	}
	addControlFlags(cmd)
	return cmd
}
