//go:build !linux && !windows && !darwin

package main

import (
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"
)

func backendChoicesHelp() string {
	return "No input backend is available on this platform."
}

func parseBackendChoice(value string) (string, error) {
	backend := strings.ToLower(strings.TrimSpace(value))
	if backend == "" || backend == "auto" {
		return "auto", nil
	}
	return "", fmt.Errorf("invalid --backend %q (unsupported platform)", value)
}

func captureNextKey(_ string, _ string, _ time.Duration) (int, error) {
	return 0, fmt.Errorf("unsupported platform")
}

func listInputDevices(_ string, _ io.Writer) error {
	return fmt.Errorf("input device listing is not supported on this platform")
}

func permissionDeniedHint() string {
	return "Permission denied opening input backend."
}

func openBackend(_ config, _ *slog.Logger) (backend, error) {
	return nil, fmt.Errorf("clicker runtime is not supported on this platform")
}
