package settings

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"burstclicker/internal/core/autoclicker"
)

type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := NewStore(filepath.Join(t.TempDir(), "nested", fileName), noopLogger{})
	if err != nil {
		t.Fatalf("NewStore() error = %v", err)
	}
	return store
}

func TestSaveLoadRoundTrip(t *testing.T) {
	store := newTestStore(t)
	want := autoclicker.Config{
		LeftClickCount:  7,
		RightClickCount: 2,
		DelayMs:         125,
		ActivationKey:   0x41,
		DeactivationKey: 0x42,
		ConfigModeKey:   0x43,
		SaveConfigKey:   0x44,
	}

	if err := store.Save(want); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	got, err := store.Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if got != want {
		t.Fatalf("Load() = %+v, want %+v", got, want)
	}
	if _, err := os.Stat(store.Path() + ".tmp"); !os.IsNotExist(err) {
		t.Fatalf("temp file left behind: %v", err)
	}
}

func TestLoadMissingFileWritesDefaults(t *testing.T) {
	store := newTestStore(t)

	got, err := store.Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if got != autoclicker.Defaults() {
		t.Fatalf("Load() = %+v, want defaults", got)
	}

	raw, err := os.ReadFile(store.Path())
	if err != nil {
		t.Fatalf("defaults were not written: %v", err)
	}
	for _, field := range autoclicker.Fields() {
		if !strings.Contains(string(raw), field.Key()+"=") {
			t.Fatalf("written file missing %s:\n%s", field.Key(), raw)
		}
	}
}

func TestParseMalformedInputKeepsInvariants(t *testing.T) {
	input := strings.Join([]string{
		"; comment",
		"",
		"leftClickCount=0",
		"rightClickCount = 4 ",
		"delayMs=2",
		"activationKey=12abc",
		"garbage line",
		"unknownKey=5",
		"saveConfigKey=0x41",
		"configModeKey=65",
		"deactivationKey=abc",
		"deactivationKey=99999999999",
	}, "\n")

	cfg, skipped, err := Parse(strings.NewReader(input))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	if cfg.LeftClickCount != autoclicker.MinClickCount {
		t.Fatalf("leftClickCount = %d, want clamp to %d", cfg.LeftClickCount, autoclicker.MinClickCount)
	}
	if cfg.RightClickCount != 4 {
		t.Fatalf("rightClickCount = %d, want 4", cfg.RightClickCount)
	}
	if cfg.DelayMs != autoclicker.MinDelayMs {
		t.Fatalf("delayMs = %d, want clamp to %d", cfg.DelayMs, autoclicker.MinDelayMs)
	}
	if cfg.ActivationKey != 12 {
		t.Fatalf("activationKey = %d, want leading digits 12", cfg.ActivationKey)
	}
	if cfg.SaveConfigKey != 0 {
		t.Fatalf("saveConfigKey = %d, want 0 from the digits before x", cfg.SaveConfigKey)
	}
	if cfg.ConfigModeKey != 65 {
		t.Fatalf("configModeKey = %d, want 65", cfg.ConfigModeKey)
	}
	if want := autoclicker.Defaults().DeactivationKey; cfg.DeactivationKey != want {
		t.Fatalf("deactivationKey = %d, want default %d", cfg.DeactivationKey, want)
	}

	wantSkipped := []int{7, 11, 12}
	if len(skipped) != len(wantSkipped) {
		t.Fatalf("skipped = %v, want %v", skipped, wantSkipped)
	}
	for i := range wantSkipped {
		if skipped[i] != wantSkipped[i] {
			t.Fatalf("skipped = %v, want %v", skipped, wantSkipped)
		}
	}
}

func TestParseNumericPrefix(t *testing.T) {
	tests := []struct {
		value    string
		expected int
		ok       bool
	}{
		{value: "7abc", expected: 7, ok: true},
		{value: "  -3", expected: -3, ok: true},
		{value: "+25 ms", expected: 25, ok: true},
		{value: "2147483647", expected: 1<<31 - 1, ok: true},
		{value: "2147483648", ok: false},
		{value: "", ok: false},
		{value: "-", ok: false},
		{value: "x1", ok: false},
	}
	for _, tc := range tests {
		got, err := parseValue(tc.value)
		if (err == nil) != tc.ok {
			t.Fatalf("parseValue(%q) error = %v, want ok=%v", tc.value, err, tc.ok)
		}
		if tc.ok && got != tc.expected {
			t.Fatalf("parseValue(%q) = %d, want %d", tc.value, got, tc.expected)
		}
	}
}

func TestParseSurvivesOverlongLine(t *testing.T) {
	input := "junk=" + strings.Repeat("x", 70000) + "\nleftClickCount=9\r\ndelayMs=40"

	cfg, skipped, err := Parse(strings.NewReader(input))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if cfg.LeftClickCount != 9 || cfg.DelayMs != 40 {
		t.Fatalf("lines after the long one were lost: %+v", cfg)
	}
	if len(skipped) != 1 || skipped[0] != 1 {
		t.Fatalf("skipped = %v, want [1]", skipped)
	}
}

func TestParseLaterLinesWin(t *testing.T) {
	cfg, _, err := Parse(strings.NewReader("delayMs=30\ndelayMs=70\n"))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if cfg.DelayMs != 70 {
		t.Fatalf("delayMs = %d, want 70", cfg.DelayMs)
	}
}

func TestEncodeClampsAndListsEveryField(t *testing.T) {
	var buf bytes.Buffer
	if err := Encode(&buf, autoclicker.Config{}); err != nil {
		t.Fatalf("Encode() error = %v", err)
	}

	cfg, skipped, err := Parse(&buf)
	if err != nil || len(skipped) != 0 {
		t.Fatalf("Parse(Encode()) skipped=%v err=%v", skipped, err)
	}
	if cfg.LeftClickCount != 1 || cfg.RightClickCount != 1 || cfg.DelayMs != 10 {
		t.Fatalf("encoded zero config not clamped: %+v", cfg)
	}
	if cfg.ActivationKey != 0 {
		t.Fatalf("activationKey = %d, want 0 as written", cfg.ActivationKey)
	}
}

func TestNewStoreValidates(t *testing.T) {
	if _, err := NewStore("  ", noopLogger{}); err == nil {
		t.Fatalf("expected error for empty path")
	}
	if _, err := NewStore("config.ini", nil); err == nil {
		t.Fatalf("expected error for nil logger")
	}
}
