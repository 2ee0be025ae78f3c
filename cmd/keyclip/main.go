// keyclip: clipboard colour-key converter.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"go.klb.dev/keyclip/internal/logging"
)

// Version is set at build time via -ldflags "-X main.Version=x.y.z".
var Version = "dev"

func main() {
	root := &cobra.Command{
		Use:   "keyclip",
		Short: "Make one colour transparent in clipboard images",
		Long: `keyclip watches the system clipboard. Whenever an image is copied, every
pixel whose colour exactly matches the target colour is made fully
transparent and the result is put back on the clipboard.

Run "keyclip run" to start the daemon. The other sub-commands talk to a
running daemon over its local control socket.

Config file search order (first found wins):
  /etc/keyclip/keyclip.toml
  $HOME/.config/keyclip/keyclip.toml
  path supplied via --config

All flags can be set via KEYCLIP_<FLAG> env vars or config-file keys.
See "keyclip run --help" for the full flag reference.`,
		SilenceUsage: true,
	}

	root.AddCommand(
		newRunCmd(),
		newStatusCmd(),
		newToggleCmd("enable", true),
		newToggleCmd("disable", false),
		newColorCmd(),
		newRetryCmd(),
		newVersionCmd(),
	)

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		Run: func(_ *cobra.Command, _ []string) {
			fmt.Printf("keyclip %s\n", Version)
		},
	}
}

// resolveLogging sets up the global slog logger after flags are parsed.
func resolveLogging(interactive bool, formatStr, levelStr string) {
	logging.Setup(logging.ParseFormat(formatStr), logging.Resolve(interactive, levelStr))
}
