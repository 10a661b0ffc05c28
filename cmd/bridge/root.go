package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/wippyai/wasm-bridge/binding"
	"github.com/wippyai/wasm-bridge/config"
	"github.com/wippyai/wasm-bridge/linker"
	"github.com/wippyai/wasm-bridge/runtime"
)

var rootCmd = &cobra.Command{
	Use:   "bridge",
	Short: "Link a guest wasm module to a host module through a staging ring.",
	Long: `bridge instantiates a host module, reads its staging ring region, binds the guest's
SDL2-style imports to the host's exports and drives the guest's boot and frame loop.

Settings come from BRIDGE_* environment variables, optional .env files and flags.
Flags win over the environment.`,
	SilenceUsage: true,
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringSlice("env", nil, "load settings from .env files")
	pf.String("host", "", "host module (space B) wasm file")
	pf.String("guest", "", "guest module (space A) wasm file")
	pf.String("manifest", "", "binding manifest YAML; defaults to the built-in SDL2 table")
	pf.String("log-level", "", "log level: debug, info, warn, error")
}

// loadConfig merges env files, the environment and flags.
func loadConfig(cmd *cobra.Command) (config.Config, error) {
	files, _ := cmd.Flags().GetStringSlice("env")
	cfg, err := config.Load(files...)
	if err != nil {
		return config.Config{}, err
	}
	if v, _ := cmd.Flags().GetString("host"); v != "" {
		cfg.HostWASM = v
	}
	if v, _ := cmd.Flags().GetString("guest"); v != "" {
		cfg.GuestWASM = v
	}
	if v, _ := cmd.Flags().GetString("manifest"); v != "" {
		cfg.Manifest = v
	}
	if v, _ := cmd.Flags().GetString("log-level"); v != "" {
		lvl, err := zapcore.ParseLevel(v)
		if err != nil {
			return config.Config{}, fmt.Errorf("log-level: %w", err)
		}
		cfg.LogLevel = lvl
	}
	return cfg, nil
}

// setupLogging routes the library loggers to one console logger.
func setupLogging(cfg config.Config) (*zap.Logger, error) {
	log, err := cfg.Logger()
	if err != nil {
		return nil, err
	}
	runtime.SetLogger(log.Named("runtime"))
	linker.SetLogger(log.Named("linker"))
	return log, nil
}

func loadTable(cfg config.Config) (*binding.Table, error) {
	if cfg.Manifest == "" {
		return binding.SDL2(), nil
	}
	return binding.LoadManifestFile(cfg.Manifest)
}

// openBridge loads the host, links the binding table and loads the guest.
func openBridge(ctx context.Context, cfg config.Config) (*runtime.Runtime, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	table, err := loadTable(cfg)
	if err != nil {
		return nil, err
	}
	hostWasm, err := os.ReadFile(cfg.HostWASM)
	if err != nil {
		return nil, fmt.Errorf("read host: %w", err)
	}
	guestWasm, err := os.ReadFile(cfg.GuestWASM)
	if err != nil {
		return nil, fmt.Errorf("read guest: %w", err)
	}

	rt, err := runtime.New(ctx, cfg)
	if err != nil {
		return nil, err
	}
	if err := rt.LoadHost(ctx, hostWasm); err != nil {
		rt.Close(ctx)
		return nil, err
	}
	if err := rt.Link(ctx, table); err != nil {
		rt.Close(ctx)
		return nil, err
	}
	if err := rt.LoadGuest(ctx, guestWasm); err != nil {
		rt.Close(ctx)
		return nil, err
	}
	return rt, nil
}
