package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"go.klb.dev/keyclip/internal/clip"
	"go.klb.dev/keyclip/internal/control"
	"go.klb.dev/keyclip/internal/ipc"
	"go.klb.dev/keyclip/internal/orchestrator"
	"go.klb.dev/keyclip/internal/settings"
	"go.klb.dev/keyclip/internal/tlsconf"
)

func newRunCmd() *cobra.Command {
	v := viper.New()

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the clipboard converter daemon",
		Long: `Starts the keyclip daemon. It watches the clipboard and keys out the
target colour of every newly copied image.

When no config file exists, a default one is written to
$HOME/.config/keyclip/keyclip.toml. Edits to the config file are picked up
while running; invalid edits are logged and ignored.

The daemon serves a control API on a local socket (used by "keyclip status",
"enable", "disable", "color" and "retry"). Pass --control-addr to also serve
it, with HTTP/JSON routes, over TLS. The TLS key is derived from --token, so
clients that know the token can verify the daemon without a CA.

Precedence (lowest → highest): defaults → config file → KEYCLIP_* env vars → flags`,
		Args:    cobra.NoArgs,
		PreRunE: func(cmd *cobra.Command, _ []string) error { return bindViper(cmd, v) },
		RunE:    func(cmd *cobra.Command, _ []string) error { return runDaemon(cmd.Context(), v) },
	}

	f := cmd.Flags()
	f.String("color", "", "target colour, #rrggbb or r,g,b (overrides the config file)")
	f.Duration("poll-interval", orchestrator.DefaultInterval, "fallback clipboard poll interval")
	f.String("control-addr", "", "also serve the control API on this TCP address (gRPC + HTTP)")
	f.String("token", "", "bearer token required by the control API (empty = no auth)")
	f.Bool("persist", false, "write settings changed through the control API back to the config file")
	addLoggingFlags(cmd)
	addConfigFlag(cmd)

	return cmd
}

func runDaemon(parent context.Context, v *viper.Viper) error {
	setupLogging(v)

	if parent == nil {
		parent = context.Background()
	}
	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()

	if ipc.IsRunning() {
		return fmt.Errorf("another keyclip daemon is already listening on %s", ipc.SocketPath())
	}

	path, err := ensureConfig(v)
	if err != nil {
		return err
	}
	initial, err := settings.FromViper(v)
	if err != nil {
		return err
	}
	st := settings.NewStore(initial)
	if path != "" {
		settings.Watch(v, st)
		if v.GetBool("persist") {
			st.OnChange(func(s settings.Settings) {
				if err := settings.Save(path, s); err != nil {
					slog.Warn("failed to persist settings", "path", path, "err", err)
				}
			})
		}
	}

	slog.Info("keyclip starting",
		"version", Version,
		"config", path,
		"settings", initial.String(),
	)

	backend := clip.New()
	defer backend.Close()
	slog.Info("clipboard backend", "name", backend.Name())

	loop := orchestrator.New(backend, st, orchestrator.Options{
		Interval: v.GetDuration("poll-interval"),
		Notify:   backend.Watch(),
	})

	ep, err := control.NewEndpoint(control.NewService(st, loop), v.GetString("token"))
	if err != nil {
		return fmt.Errorf("control api: %w", err)
	}
	defer ep.Stop()

	// IPC socket for status/enable/disable/color/retry
	if ln, err := ipc.Listen(); err != nil {
		slog.Warn("IPC socket unavailable", "err", err)
	} else {
		slog.Info("IPC socket listening", "path", ipc.SocketPath())
		go func() { _ = ep.ServeGRPC(ln) }()
	}

	if addr := v.GetString("control-addr"); addr != "" {
		ln, err := tlsconf.Listen(addr, v.GetString("token"))
		if err != nil {
			return fmt.Errorf("listen %s: %w", addr, err)
		}
		slog.Info("control API listening", "addr", ln.Addr(), "auth", v.GetString("token") != "")
		go func() {
			if err := ep.ServeMux(ln); err != nil {
				slog.Error("control API stopped", "err", err)
			}
		}()
	}

	if err := loop.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	slog.Info("keyclip stopped")
	return nil
}
