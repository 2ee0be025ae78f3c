package main

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"go.klb.dev/keyclip/internal/logging"
	"go.klb.dev/keyclip/internal/settings"
)

// bindViper wires a command's flags into a viper instance with the standard
// config file search order and KEYCLIP_* env var prefix.
//
// Precedence (lowest → highest): defaults → config file → KEYCLIP_* env vars → flags
func bindViper(cmd *cobra.Command, v *viper.Viper) error {
	configFlag, _ := cmd.Flags().GetString("config")
	if configFlag != "" {
		v.SetConfigFile(configFlag)
	} else {
		v.SetConfigName("keyclip")
		v.SetConfigType("toml")
		v.AddConfigPath("/etc/keyclip/")
		if dir, err := userConfigDir(); err == nil {
			v.AddConfigPath(dir)
		}
	}

	// A missing file is not an error here: "run" creates it in ensureConfig.
	if err := v.ReadInConfig(); err != nil {
		var nf viper.ConfigFileNotFoundError
		if !errors.As(err, &nf) && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("config: %w", err)
		}
	}

	v.SetEnvPrefix("KEYCLIP")
	v.AutomaticEnv()

	if err := v.BindPFlags(cmd.Flags()); err != nil {
		return fmt.Errorf("binding flags: %w", err)
	}
	return nil
}

// userConfigDir is $HOME/.config/keyclip on every platform.
func userConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "keyclip"), nil
}

// ensureConfig returns the config file in use. When the file named by
// --config, or the default user config when there was none, does not exist,
// a default one is written and loaded. An empty path means there is no home
// directory to write to; the daemon then runs on defaults.
func ensureConfig(v *viper.Viper) (string, error) {
	path := v.ConfigFileUsed()
	if path == "" {
		dir, err := userConfigDir()
		if err != nil {
			slog.Warn("no config file and no home directory, using defaults", "err", err)
			return "", nil
		}
		path = filepath.Join(dir, "keyclip.toml")
	}
	created, err := settings.EnsureFile(path)
	if err != nil {
		return "", err
	}
	if !created {
		return path, nil
	}
	slog.Info("wrote default config", "path", path)
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return "", fmt.Errorf("config: %w", err)
	}
	return path, nil
}

// addLoggingFlags adds the standard logging flags to a command.
func addLoggingFlags(cmd *cobra.Command) {
	cmd.Flags().Bool("no-background", false, "run interactively: tinter logs + debug level")
	cmd.Flags().String("log-format", "auto", "log format: auto|text|json")
	cmd.Flags().String("log-level", "", "log level: debug|info|warn|error (default: info for service, debug for interactive)")
}

// addConfigFlag adds the --config flag to a command.
func addConfigFlag(cmd *cobra.Command) {
	cmd.Flags().String("config", "", "path to config file (overrides auto-discovery)")
}

// addControlFlags adds the flags used to reach a running daemon.
func addControlFlags(cmd *cobra.Command) {
	cmd.Flags().String("addr", "", "daemon control address host:port (default: local socket)")
	cmd.Flags().String("token", "", "control API bearer token")
	addConfigFlag(cmd)
}

// setupLogging reads logging flags from viper and configures slog.
func setupLogging(v *viper.Viper) {
	interactive := v.GetBool("no-background") || logging.IsTTY(os.Stderr)
	resolveLogging(interactive, v.GetString("log-format"), v.GetString("log-level"))
}
