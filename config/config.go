// Package config reads bridge settings from the environment and optional .env files.
package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/wippyai/wasm-bridge/errors"
)

// Environment variable names.
const (
	EnvHostWASM         = "BRIDGE_HOST_WASM"
	EnvGuestWASM        = "BRIDGE_GUEST_WASM"
	EnvManifest         = "BRIDGE_MANIFEST"
	EnvRingBaseExport   = "BRIDGE_RING_BASE_EXPORT"
	EnvRingSizeExport   = "BRIDGE_RING_SIZE_EXPORT"
	EnvHostInit         = "BRIDGE_HOST_INIT"
	EnvMemoryLimitPages = "BRIDGE_MEMORY_LIMIT_PAGES"
	EnvFrameInterval    = "BRIDGE_FRAME_INTERVAL"
	EnvWASI             = "BRIDGE_WASI"
	EnvLogLevel         = "BRIDGE_LOG_LEVEL"
)

// maxMemoryPages is the wasm32 limit of 4GiB.
const maxMemoryPages = 65536

// Entrypoints names the exports called while loading the host and booting the guest.
type Entrypoints struct {
	HostInit string // optional host export run once after the host loads
	Start    string // optional, called first
	Context  string // returns the context pointer passed to Init and Frame
	Init     string // zero result stops the boot
	Frame    string // zero result ends the frame loop
	End      string // optional, called after the loop
}

// Config holds bridge settings.
type Config struct {
	HostWASM       string
	GuestWASM      string
	Manifest       string // empty selects the built-in SDL2 table
	RingBaseExport string
	RingSizeExport string
	Entry          Entrypoints
	// MemoryLimitPages caps every module's memory. Zero keeps the wazero default.
	MemoryLimitPages uint32
	FrameInterval    time.Duration
	WASI             bool
	LogLevel         zapcore.Level
}

// Default returns the settings matching the SDL2 host build.
func Default() Config {
	return Config{
		RingBaseExport: "_get_copy_buffer",
		RingSizeExport: "_copy_buffer_size",
		Entry: Entrypoints{
			HostInit: "_initialize",
			Start:    "_start",
			Context:  "default_context_ptr",
			Init:     "_wasm_init",
			Frame:    "_animation_frame",
			End:      "_end",
		},
		FrameInterval: 16 * time.Millisecond,
		WASI:          true,
		LogLevel:      zapcore.InfoLevel,
	}
}

// Load reads settings from the process environment. Values in files fill in
// variables the environment does not set; later files lose to earlier ones.
func Load(files ...string) (Config, error) {
	fromFiles := make(map[string]string)
	for _, f := range files {
		values, err := godotenv.Read(f)
		if err != nil {
			return Config{}, errors.New(errors.PhaseConfig, errors.KindNotFound).
				Path(f).
				Cause(err).
				Detail("read env file").
				Build()
		}
		for k, v := range values {
			if _, ok := fromFiles[k]; !ok {
				fromFiles[k] = v
			}
		}
	}
	return Parse(func(key string) (string, bool) {
		if v, ok := os.LookupEnv(key); ok {
			return v, true
		}
		v, ok := fromFiles[key]
		return v, ok
	})
}

// Parse builds a Config from Default and the variables lookup reports.
func Parse(lookup func(string) (string, bool)) (Config, error) {
	cfg := Default()

	str := func(key string, dst *string) {
		if v, ok := lookup(key); ok && strings.TrimSpace(v) != "" {
			*dst = strings.TrimSpace(v)
		}
	}
	str(EnvHostWASM, &cfg.HostWASM)
	str(EnvGuestWASM, &cfg.GuestWASM)
	str(EnvManifest, &cfg.Manifest)
	str(EnvRingBaseExport, &cfg.RingBaseExport)
	str(EnvRingSizeExport, &cfg.RingSizeExport)
	str(EnvHostInit, &cfg.Entry.HostInit)

	if v, ok := lookup(EnvMemoryLimitPages); ok && v != "" {
		n, err := strconv.ParseUint(v, 10, 32)
		if err != nil || n > maxMemoryPages {
			return Config{}, invalid(EnvMemoryLimitPages, v, "want a page count up to %d", maxMemoryPages)
		}
		cfg.MemoryLimitPages = uint32(n)
	}
	if v, ok := lookup(EnvFrameInterval); ok && v != "" {
		d, err := time.ParseDuration(v)
		if err != nil || d < 0 {
			return Config{}, invalid(EnvFrameInterval, v, "want a non-negative duration such as 16ms")
		}
		cfg.FrameInterval = d
	}
	if v, ok := lookup(EnvWASI); ok && v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return Config{}, invalid(EnvWASI, v, "want a boolean")
		}
		cfg.WASI = b
	}
	if v, ok := lookup(EnvLogLevel); ok && v != "" {
		lvl, err := zapcore.ParseLevel(v)
		if err != nil {
			return Config{}, invalid(EnvLogLevel, v, "want debug, info, warn or error")
		}
		cfg.LogLevel = lvl
	}

	return cfg, nil
}

// Validate checks that the settings needed to run a guest are present.
func (c Config) Validate() error {
	if c.HostWASM == "" {
		return errors.InvalidInput(errors.PhaseConfig, EnvHostWASM+" is required")
	}
	if c.GuestWASM == "" {
		return errors.InvalidInput(errors.PhaseConfig, EnvGuestWASM+" is required")
	}
	if c.RingBaseExport == "" || c.RingSizeExport == "" {
		return errors.InvalidInput(errors.PhaseConfig, "ring accessor exports must be named")
	}
	if c.Entry.Context == "" || c.Entry.Init == "" || c.Entry.Frame == "" {
		return errors.InvalidInput(errors.PhaseConfig, "context, init and frame entry points must be named")
	}
	return nil
}

// Logger builds a console logger at the configured level.
func (c Config) Logger() (*zap.Logger, error) {
	zc := zap.NewDevelopmentConfig()
	zc.Level = zap.NewAtomicLevelAt(c.LogLevel)
	zc.DisableStacktrace = true
	return zc.Build()
}

func invalid(key, value, format string, args ...any) *errors.Error {
	return errors.New(errors.PhaseConfig, errors.KindInvalidInput).
		Path(key).
		Value(value).
		Detail(format, args...).
		Build()
}
