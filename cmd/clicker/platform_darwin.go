//go:build darwin

package main

import (
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"burstclicker/internal/adapters/hookinput"
	"burstclicker/internal/adapters/hotkeyreg"
)

func backendChoicesHelp() string {
	return "Allowed on darwin: auto, hook."
}

func parseBackendChoice(value string) (string, error) {
	backend := strings.ToLower(strings.TrimSpace(value))
	if backend == "" {
		backend = "auto"
	}
	switch backend {
	case "auto", "hook":
		return backend, nil
	default:
		return "", fmt.Errorf("invalid --backend %q (darwin supports auto|hook)", value)
	}
}

func captureNextKey(_ string, _ string, _ time.Duration) (int, error) {
	return 0, fmt.Errorf("key capture is not supported on macOS; use --list-keys")
}

func listInputDevices(_ string, w io.Writer) error {
	fmt.Fprintln(w, "hook: global event tap (mouse buttons) and Carbon hot keys")
	return nil
}

func permissionDeniedHint() string {
	return "Permission denied. Grant Accessibility and Input Monitoring access in System Settings > Privacy & Security."
}

func openBackend(cfg config, logger *slog.Logger) (backend, error) {
	if cfg.devicePath != "" {
		logger.Warn("--device is ignored on macOS")
	}

	runtime, err := hookinput.NewRuntime(logger)
	if err != nil {
		return nil, err
	}
	registrar, err := hotkeyreg.New(logger)
	if err != nil {
		return nil, err
	}
	if err := runtime.Start(); err != nil {
		_ = registrar.Close()
		return nil, err
	}

	logger.Info("Backend", "name", "hook")
	return &registrarBackend{inputRuntime: runtime, Registrar: registrar}, nil
}
