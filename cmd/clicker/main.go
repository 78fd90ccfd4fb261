package main

import (
	"bytes"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"
	"syscall"
	"time"

	"burstclicker/internal/core/autoclicker"
	"burstclicker/internal/keycode"
	"burstclicker/internal/settings"

	"github.com/joho/godotenv"
	"github.com/peterbourgon/ff/v3"
)

const envPrefix = "BURSTCLICKER"

type config struct {
	settingsPath string
	backend      string
	devicePath   string
	idleTick     time.Duration
	releasePoll  time.Duration
	listDevices  bool
	listKeys     bool
	captureKey   bool
	ui           bool
	logLevel     slog.Level
}

type lineSinkWriter struct {
	sink  func(line string)
	mu    sync.Mutex
	lines bytes.Buffer
}

func (w *lineSinkWriter) Write(p []byte) (int, error) {
	if w.sink == nil {
		return len(p), nil
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	total := len(p)
	for len(p) > 0 {
		idx := bytes.IndexByte(p, '\n')
		if idx == -1 {
			_, _ = w.lines.Write(p)
			break
		}
		_, _ = w.lines.Write(p[:idx])
		line := strings.TrimSpace(w.lines.String())
		w.lines.Reset()
		if line != "" {
			w.sink(line)
		}
		p = p[idx+1:]
	}
	return total, nil
}

func newSlogLogger(level slog.Level, sink func(line string)) *slog.Logger {
	if !debugLogsEnabled() {
		return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{
			Level: level,
		}))
	}

	out := io.Writer(os.Stderr)
	if sink != nil {
		out = io.MultiWriter(os.Stderr, &lineSinkWriter{sink: sink})
	}

	return slog.New(slog.NewTextHandler(out, &slog.HandlerOptions{
		Level: level,
	}))
}

func debugLogsEnabled() bool {
	return strings.TrimSpace(os.Getenv("DEBUG")) == "1"
}

func parseLogLevel(value string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warning", "warn":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("invalid --log-level %q (expected debug|info|warning|error)", value)
	}
}

// parseConfig reads flags, then BURSTCLICKER_* environment variables for any
// flag not given on the command line.
func parseConfig(args []string) (config, error) {
	cfg := config{}
	flags := flag.NewFlagSet("burstclicker", flag.ContinueOnError)
	flags.SetOutput(os.Stderr)

	var backendRaw string
	var logLevelRaw string
	var cliMode bool

	flags.StringVar(&cfg.settingsPath, "settings", settings.DefaultPath(), "Path of the key=value settings file.")
	flags.StringVar(&backendRaw, "backend", "auto", "Input backend. "+backendChoicesHelp())
	flags.StringVar(&cfg.devicePath, "device", "", "Mouse event device to poll, e.g. /dev/input/event4 (evdev backend only). Auto-detected if omitted.")
	flags.DurationVar(&cfg.idleTick, "idle-tick", autoclicker.DefaultIdleTick, "Automation loop tick while waiting for a press.")
	flags.DurationVar(&cfg.releasePoll, "release-poll", autoclicker.DefaultReleasePoll, "Poll interval while waiting for a button release after a burst.")
	flags.BoolVar(&cfg.listDevices, "list-devices", false, "Print available input devices and exit.")
	flags.BoolVar(&cfg.listKeys, "list-keys", false, "Print the virtual-key codes accepted in the settings file and exit.")
	flags.BoolVar(&cfg.captureKey, "capture-key", false, "Wait for a key or button press, print its virtual-key code and exit.")
	flags.BoolVar(&cfg.ui, "ui", true, "Start desktop GUI (Fyne) by default. Use --ui=false or --cli for terminal mode.")
	flags.BoolVar(&cliMode, "cli", false, "Force terminal mode (disables GUI).")
	flags.StringVar(&logLevelRaw, "log-level", "info", "Log verbosity (default: info). Allowed: debug, info, warning, error.")

	if err := ff.Parse(flags, args, ff.WithEnvVarPrefix(envPrefix)); err != nil {
		return cfg, err
	}
	if flags.NArg() > 0 {
		return cfg, fmt.Errorf("unexpected arguments: %s", strings.Join(flags.Args(), " "))
	}
	if strings.TrimSpace(cfg.settingsPath) == "" {
		return cfg, fmt.Errorf("--settings must not be empty")
	}
	if cfg.idleTick <= 0 {
		return cfg, fmt.Errorf("--idle-tick must be > 0")
	}
	if cfg.releasePoll <= 0 {
		return cfg, fmt.Errorf("--release-poll must be > 0")
	}
	if cliMode {
		cfg.ui = false
	}

	parsedLevel, err := parseLogLevel(logLevelRaw)
	if err != nil {
		return cfg, err
	}
	backendChoice, err := parseBackendChoice(backendRaw)
	if err != nil {
		return cfg, err
	}

	cfg.backend = backendChoice
	cfg.logLevel = parsedLevel
	return cfg, nil
}

func isPermissionError(err error) bool {
	return errors.Is(err, os.ErrPermission) || errors.Is(err, syscall.EPERM) || errors.Is(err, syscall.EACCES)
}

func printKeys(w io.Writer) {
	for _, vk := range keycode.Known() {
		fmt.Fprintf(w, "%3d  0x%02X  %s\n", vk, vk, keycode.Name(vk))
	}
}

func run(args []string, stdout, stderr io.Writer) int {
	// A missing .env is the normal case.
	_ = godotenv.Load()

	cfg, err := parseConfig(args)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		fmt.Fprintln(stderr, err)
		return 2
	}

	switch {
	case cfg.listKeys:
		printKeys(stdout)
		return 0
	case cfg.listDevices:
		if err := listInputDevices(cfg.backend, stdout); err != nil {
			fmt.Fprintln(stderr, err)
			return 1
		}
		return 0
	case cfg.captureKey:
		fmt.Fprintln(stderr, "Press a key or mouse button...")
		vk, err := captureNextKey(cfg.backend, cfg.devicePath, 10*time.Second)
		if err != nil {
			fmt.Fprintln(stderr, err)
			return 1
		}
		fmt.Fprintf(stdout, "%s = %d\n", keycode.Name(vk), vk)
		return 0
	}

	if cfg.ui {
		err = runUI(cfg)
	} else {
		err = runHeadless(cfg)
	}
	if err != nil {
		if isPermissionError(err) {
			fmt.Fprintln(stderr, permissionDeniedHint())
			return 1
		}
		fmt.Fprintln(stderr, err)
		return 1
	}
	return 0
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}
