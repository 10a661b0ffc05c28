package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/term"

	"github.com/wippyai/wasm-bridge/metrics"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Boot the guest and run its frame loop",
	Args:  cobra.NoArgs,
	RunE:  runBridge,
}

func init() {
	runCmd.Flags().BoolP("interactive", "i", false, "open an interactive view of the guest exports")
	runCmd.Flags().Duration("interval", 0, "frame interval; overrides BRIDGE_FRAME_INTERVAL")
	runCmd.Flags().String("metrics-addr", "", "serve Prometheus metrics on this address, e.g. :9090")
	rootCmd.AddCommand(runCmd)
}

func runBridge(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("interval") {
		cfg.FrameInterval, _ = cmd.Flags().GetDuration("interval")
	}
	log, err := setupLogging(cfg)
	if err != nil {
		return err
	}
	defer log.Sync()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	rt, err := openBridge(ctx, cfg)
	if err != nil {
		return err
	}
	defer rt.Close(context.Background())

	reg := prometheus.NewRegistry()
	rt.Instrument(metrics.NewMetrics(reg))
	if addr, _ := cmd.Flags().GetString("metrics-addr"); addr != "" {
		srv := serveMetrics(addr, reg, log)
		defer srv.Close()
	}

	if interactive, _ := cmd.Flags().GetBool("interactive"); interactive {
		if !term.IsTerminal(int(os.Stdout.Fd())) {
			return errors.New("interactive mode needs a terminal")
		}
		return runInteractive(ctx, rt)
	}

	start := time.Now()
	if err := rt.Run(ctx, cfg.FrameInterval); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}

	s := rt.Stats()
	log.Info("guest finished",
		zap.Uint64("frames", s.Frames),
		zap.Bool("booted", s.Booted),
		zap.Uint64("allocations", s.Ring.Allocations),
		zap.Uint64("wraps", s.Ring.Wraps),
		zap.Duration("elapsed", time.Since(start)))
	fmt.Fprintf(cmd.OutOrStdout(), "%d frames, %d ring allocations, %d wraps\n",
		s.Frames, s.Ring.Allocations, s.Ring.Wraps)
	return nil
}

func serveMetrics(addr string, reg *prometheus.Registry, log *zap.Logger) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Warn("metrics server stopped", zap.Error(err))
		}
	}()
	return srv
}
