package autoclicker

import (
	"sync/atomic"

	"burstclicker/internal/keycode"
)

const (
	MinClickCount = 1
	MinDelayMs    = 10
)

// Config holds the tunable parameters. Counts and delay are clamped on every write.
type Config struct {
	LeftClickCount  int
	RightClickCount int
	DelayMs         int
	ActivationKey   int
	DeactivationKey int
	ConfigModeKey   int
	SaveConfigKey   int
}

func Defaults() Config {
	return Config{
		LeftClickCount:  3,
		RightClickCount: 3,
		DelayMs:         50,
		ActivationKey:   keycode.VKF6,
		DeactivationKey: keycode.VKF7,
		ConfigModeKey:   keycode.VKF5,
		SaveConfigKey:   keycode.VKF8,
	}
}

// Clamped returns c with counts and delay raised to their minimums.
func (c Config) Clamped() Config {
	c.LeftClickCount = max(MinClickCount, c.LeftClickCount)
	c.RightClickCount = max(MinClickCount, c.RightClickCount)
	c.DelayMs = max(MinDelayMs, c.DelayMs)
	return c
}

// ClickCount returns the burst length for button.
func (c Config) ClickCount(button Button) int {
	if button == ButtonRight {
		return c.RightClickCount
	}
	return c.LeftClickCount
}

// Field identifies one recognized configuration entry.
type Field int

const (
	FieldLeftClickCount Field = iota
	FieldRightClickCount
	FieldDelayMs
	FieldActivationKey
	FieldDeactivationKey
	FieldConfigModeKey
	FieldSaveConfigKey
)

var fieldKeys = [...]string{
	FieldLeftClickCount:  "leftClickCount",
	FieldRightClickCount: "rightClickCount",
	FieldDelayMs:         "delayMs",
	FieldActivationKey:   "activationKey",
	FieldDeactivationKey: "deactivationKey",
	FieldConfigModeKey:   "configModeKey",
	FieldSaveConfigKey:   "saveConfigKey",
}

// Fields lists every field in persisted order.
func Fields() []Field {
	out := make([]Field, len(fieldKeys))
	for i := range fieldKeys {
		out[i] = Field(i)
	}
	return out
}

func (f Field) Key() string {
	if f < 0 || int(f) >= len(fieldKeys) {
		return ""
	}
	return fieldKeys[f]
}

func (f Field) String() string {
	return f.Key()
}

// FieldByKey resolves a persisted key. Keys are case-sensitive.
func FieldByKey(key string) (Field, bool) {
	for i, k := range fieldKeys {
		if k == key {
			return Field(i), true
		}
	}
	return 0, false
}

// Get returns the value of field f.
func (c Config) Get(f Field) int {
	switch f {
	case FieldLeftClickCount:
		return c.LeftClickCount
	case FieldRightClickCount:
		return c.RightClickCount
	case FieldDelayMs:
		return c.DelayMs
	case FieldActivationKey:
		return c.ActivationKey
	case FieldDeactivationKey:
		return c.DeactivationKey
	case FieldConfigModeKey:
		return c.ConfigModeKey
	case FieldSaveConfigKey:
		return c.SaveConfigKey
	default:
		return 0
	}
}

// With returns a copy of c with field f set to value, clamped per the field's rule.
func (c Config) With(f Field, value int) Config {
	switch f {
	case FieldLeftClickCount:
		c.LeftClickCount = max(MinClickCount, value)
	case FieldRightClickCount:
		c.RightClickCount = max(MinClickCount, value)
	case FieldDelayMs:
		c.DelayMs = max(MinDelayMs, value)
	case FieldActivationKey:
		c.ActivationKey = value
	case FieldDeactivationKey:
		c.DeactivationKey = value
	case FieldConfigModeKey:
		c.ConfigModeKey = value
	case FieldSaveConfigKey:
		c.SaveConfigKey = value
	}
	return c
}

// ParseFieldInput reads user-entered text the way C atoi does: optional leading
// whitespace and sign, then digits up to the first non-digit. No digits yields 0.
func ParseFieldInput(text string) int {
	i := 0
	for i < len(text) && (text[i] == ' ' || text[i] == '\t') {
		i++
	}
	neg := false
	if i < len(text) && (text[i] == '+' || text[i] == '-') {
		neg = text[i] == '-'
		i++
	}
	const limit = 1<<31 - 1
	n := 0
	for ; i < len(text) && text[i] >= '0' && text[i] <= '9'; i++ {
		n = n*10 + int(text[i]-'0')
		if n > limit {
			n = limit
		}
	}
	if neg {
		return -n
	}
	return n
}

// LiveConfig is the configuration shared between the state machine and the
// automation loop. Snapshot returns a consistent copy of all fields.
type LiveConfig struct {
	current atomic.Pointer[Config]
}

func NewLiveConfig(cfg Config) *LiveConfig {
	l := &LiveConfig{}
	l.Replace(cfg)
	return l
}

func (l *LiveConfig) Snapshot() Config {
	if cfg := l.current.Load(); cfg != nil {
		return *cfg
	}
	return Defaults()
}

func (l *LiveConfig) Replace(cfg Config) {
	clamped := cfg.Clamped()
	l.current.Store(&clamped)
}
