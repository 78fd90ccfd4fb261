//go:build windows

package main

import (
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"burstclicker/internal/adapters/hotkeyreg"
	"burstclicker/internal/adapters/wininput"
)

func backendChoicesHelp() string {
	return "Allowed on windows: auto, windows."
}

func parseBackendChoice(value string) (string, error) {
	backend := strings.ToLower(strings.TrimSpace(value))
	if backend == "" {
		backend = "auto"
	}
	switch backend {
	case "auto", "windows":
		return backend, nil
	default:
		return "", fmt.Errorf("invalid --backend %q (windows supports auto|windows)", value)
	}
}

func captureNextKey(_ string, _ string, timeout time.Duration) (int, error) {
	return wininput.CaptureNextKey(timeout)
}

func listInputDevices(_ string, w io.Writer) error {
	fmt.Fprintln(w, "windows: system mouse and keyboard (GetAsyncKeyState/SendInput)")
	return nil
}

func permissionDeniedHint() string {
	return "Permission denied injecting input. Run as the same integrity level as the target window (Administrator for elevated apps)."
}

func openBackend(cfg config, logger *slog.Logger) (backend, error) {
	if cfg.devicePath != "" {
		logger.Warn("--device is ignored on Windows")
	}

	runtime, err := wininput.NewRuntime(logger)
	if err != nil {
		return nil, err
	}
	registrar, err := hotkeyreg.New(logger)
	if err != nil {
		_ = runtime.Close()
		return nil, err
	}

	logger.Info("Backend", "name", "windows")
	return &registrarBackend{inputRuntime: runtime, Registrar: registrar}, nil
}
