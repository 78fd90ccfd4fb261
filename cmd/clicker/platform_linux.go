//go:build linux

package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"burstclicker/internal/adapters/linuxinput"
	"burstclicker/internal/adapters/x11input"
)

func backendChoicesHelp() string {
	return "Allowed on linux: auto, wayland (evdev + uinput), x11."
}

func parseBackendChoice(value string) (string, error) {
	backend := strings.ToLower(strings.TrimSpace(value))
	if backend == "" {
		backend = "auto"
	}
	switch backend {
	case "auto", "wayland", "x11", "evdev":
		return backend, nil
	default:
		return "", fmt.Errorf("invalid --backend %q (linux supports auto|wayland|x11)", value)
	}
}

func captureNextKey(backend, devicePath string, timeout time.Duration) (int, error) {
	switch resolveLinuxBackend(backend) {
	case "x11":
		return x11input.CaptureNextKey(timeout)
	default:
		return linuxinput.CaptureNextKey(devicePath, timeout)
	}
}

func listInputDevices(backend string, w io.Writer) error {
	if resolveLinuxBackend(backend) == "x11" {
		fmt.Fprintln(w, "x11: core pointer and keyboard (devices are not selected individually)")
		return nil
	}

	devices, err := linuxinput.ListInputDevices()
	if err != nil {
		return err
	}
	for _, dev := range devices {
		virtualTag := "physical"
		if dev.IsVirtual {
			virtualTag = "virtual"
		}
		kinds := make([]string, 0, 2)
		if dev.IsPointer {
			kinds = append(kinds, "pointer")
		}
		if dev.IsKeyboard {
			kinds = append(kinds, "keyboard")
		}
		if len(kinds) == 0 {
			kinds = append(kinds, "other")
		}
		fmt.Fprintf(w, "%s: %s [%s, %s]\n", dev.Path, dev.Name, virtualTag, strings.Join(kinds, "+"))
	}
	return nil
}

func permissionDeniedHint() string {
	return "Permission denied opening input backend. On Wayland use root/udev for /dev/input + /dev/uinput. On X11 ensure an active X11 session and DISPLAY is set."
}

func openBackend(cfg config, logger *slog.Logger) (backend, error) {
	switch resolveLinuxBackend(cfg.backend) {
	case "x11":
		return openX11Backend(cfg, logger)
	default:
		return openWaylandBackend(cfg, logger)
	}
}

func openWaylandBackend(cfg config, logger *slog.Logger) (backend, error) {
	selection, err := linuxinput.OpenSources(cfg.devicePath)
	if err != nil {
		return nil, err
	}

	runtime, err := linuxinput.NewRuntime(selection, logger)
	if err != nil {
		selection.Close()
		return nil, err
	}
	if err := runtime.Start(); err != nil {
		_ = runtime.Close()
		return nil, err
	}

	logger.Info("Backend", "name", "wayland")
	return runtime, nil
}

func openX11Backend(cfg config, logger *slog.Logger) (backend, error) {
	if cfg.devicePath != "" {
		logger.Warn("--device is ignored on X11 backend")
	}

	runtime, err := x11input.NewRuntime(logger)
	if err != nil {
		return nil, err
	}
	if err := runtime.Start(); err != nil {
		_ = runtime.Close()
		return nil, err
	}

	logger.Info("Backend", "name", "x11")
	return runtime, nil
}

func resolveLinuxBackend(configured string) string {
	choice := strings.ToLower(strings.TrimSpace(configured))
	if choice == "" {
		choice = "auto"
	}
	if choice == "evdev" {
		choice = "wayland"
	}
	if choice != "auto" {
		return choice
	}

	sessionType := strings.ToLower(strings.TrimSpace(os.Getenv("XDG_SESSION_TYPE")))
	switch sessionType {
	case "wayland":
		return "wayland"
	case "x11":
		return "x11"
	}

	if strings.TrimSpace(os.Getenv("WAYLAND_DISPLAY")) != "" {
		return "wayland"
	}
	if strings.TrimSpace(os.Getenv("DISPLAY")) != "" {
		return "x11"
	}
	return "wayland"
}
