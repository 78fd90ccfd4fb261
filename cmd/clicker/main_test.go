package main

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"
	"time"

	"burstclicker/internal/core/autoclicker"
	"burstclicker/internal/keycode"
)

func TestParseConfigDefaults(t *testing.T) {
	cfg, err := parseConfig(nil)
	if err != nil {
		t.Fatalf("parseConfig() error = %v", err)
	}
	if cfg.settingsPath == "" {
		t.Fatalf("settings path is empty")
	}
	if cfg.backend != "auto" {
		t.Fatalf("backend = %q, want auto", cfg.backend)
	}
	if !cfg.ui {
		t.Fatalf("ui should default to true")
	}
	if cfg.idleTick != autoclicker.DefaultIdleTick || cfg.releasePoll != autoclicker.DefaultReleasePoll {
		t.Fatalf("timing = %v/%v", cfg.idleTick, cfg.releasePoll)
	}
	if cfg.logLevel != slog.LevelInfo {
		t.Fatalf("log level = %v, want info", cfg.logLevel)
	}
}

func TestParseConfigFlags(t *testing.T) {
	cfg, err := parseConfig([]string{
		"--settings", "/tmp/x.ini",
		"--cli",
		"--idle-tick", "5ms",
		"--release-poll", "20ms",
		"--log-level", "warning",
		"--list-keys",
	})
	if err != nil {
		t.Fatalf("parseConfig() error = %v", err)
	}
	if cfg.settingsPath != "/tmp/x.ini" {
		t.Fatalf("settings = %q", cfg.settingsPath)
	}
	if cfg.ui {
		t.Fatalf("--cli should disable the UI")
	}
	if cfg.idleTick != 5*time.Millisecond || cfg.releasePoll != 20*time.Millisecond {
		t.Fatalf("timing = %v/%v", cfg.idleTick, cfg.releasePoll)
	}
	if cfg.logLevel != slog.LevelWarn {
		t.Fatalf("log level = %v, want warn", cfg.logLevel)
	}
	if !cfg.listKeys {
		t.Fatalf("--list-keys not set")
	}
}

func TestParseConfigReadsEnvironment(t *testing.T) {
	t.Setenv("BURSTCLICKER_LOG_LEVEL", "debug")
	t.Setenv("BURSTCLICKER_RELEASE_POLL", "30ms")

	cfg, err := parseConfig([]string{"--release-poll", "40ms"})
	if err != nil {
		t.Fatalf("parseConfig() error = %v", err)
	}
	if cfg.logLevel != slog.LevelDebug {
		t.Fatalf("log level = %v, want debug from env", cfg.logLevel)
	}
	if cfg.releasePoll != 40*time.Millisecond {
		t.Fatalf("release poll = %v, flag should win over env", cfg.releasePoll)
	}
}

func TestParseConfigRejectsInvalidValues(t *testing.T) {
	cases := [][]string{
		{"--idle-tick", "0s"},
		{"--release-poll", "-1ms"},
		{"--log-level", "verbose"},
		{"--settings", " "},
		{"--backend", "nonsense"},
		{"extra"},
	}
	for _, args := range cases {
		if _, err := parseConfig(args); err == nil {
			t.Fatalf("parseConfig(%v) expected error", args)
		}
	}
}

func TestParseLogLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		" INFO ":  slog.LevelInfo,
		"warn":    slog.LevelWarn,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
	}
	for raw, want := range tests {
		got, err := parseLogLevel(raw)
		if err != nil || got != want {
			t.Fatalf("parseLogLevel(%q) = %v,%v want %v", raw, got, err, want)
		}
	}
}

func TestLineSinkWriterSplitsLines(t *testing.T) {
	var lines []string
	w := &lineSinkWriter{sink: func(line string) { lines = append(lines, line) }}

	_, _ = w.Write([]byte("first\nsec"))
	_, _ = w.Write([]byte("ond\n\n  \nthird"))

	if strings.Join(lines, "|") != "first|second" {
		t.Fatalf("lines = %q", lines)
	}
}

func TestPrintKeysListsNames(t *testing.T) {
	var buf bytes.Buffer
	printKeys(&buf)
	out := buf.String()
	if !strings.Contains(out, keycode.Name(keycode.VKF6)) {
		t.Fatalf("output missing F6:\n%s", out)
	}
	if got := strings.Count(out, "\n"); got != len(keycode.Known()) {
		t.Fatalf("printed %d lines, want %d", got, len(keycode.Known()))
	}
}

func TestStatusLines(t *testing.T) {
	cfg := autoclicker.Defaults()
	lines := statusLines(autoclicker.ModeActive, cfg)

	if lines[0] != "Status: ACTIVE" {
		t.Fatalf("first line = %q", lines[0])
	}
	joined := strings.Join(lines, "\n")
	for _, want := range []string{
		"Left clicks: 3",
		"Right clicks: 3",
		"Delay: 50 ms",
		"Activate: " + keycode.Name(cfg.ActivationKey),
		"Save: " + keycode.Name(cfg.SaveConfigKey),
	} {
		if !strings.Contains(joined, want) {
			t.Fatalf("status missing %q:\n%s", want, joined)
		}
	}
}

func TestFieldLabelsCoverEveryField(t *testing.T) {
	keyFields := 0
	for _, f := range autoclicker.Fields() {
		if fieldLabel(f) == f.Key() {
			t.Fatalf("field %s has no label", f)
		}
		if isKeyField(f) {
			keyFields++
		}
	}
	if keyFields != 4 {
		t.Fatalf("key fields = %d, want 4", keyFields)
	}
}

func TestModeTone(t *testing.T) {
	activeFreq, _, ok := modeTone(autoclicker.ModeActive)
	if !ok {
		t.Fatalf("active should beep")
	}
	idleFreq, _, ok := modeTone(autoclicker.ModeIdle)
	if !ok {
		t.Fatalf("idle should beep")
	}
	if activeFreq <= idleFreq {
		t.Fatalf("active tone %v should be higher than idle %v", activeFreq, idleFreq)
	}
	if _, _, ok := modeTone(autoclicker.ModeConfiguring); ok {
		t.Fatalf("configuring should be silent")
	}
}
