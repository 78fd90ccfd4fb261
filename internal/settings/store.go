// Package settings persists the clicker configuration as line-oriented
// key=value text. Lines starting with ';' are comments.
package settings

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"burstclicker/internal/core/autoclicker"
)

const fileName = "config.ini"

// DefaultPath returns the per-user settings location, falling back to the
// working directory when no config dir is available.
func DefaultPath() string {
	configDir, err := os.UserConfigDir()
	if err != nil || configDir == "" {
		return filepath.Join(".", fileName)
	}
	return filepath.Join(configDir, "burstclicker", fileName)
}

type Store struct {
	path   string
	logger autoclicker.Logger
}

func NewStore(path string, logger autoclicker.Logger) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("settings path is empty")
	}
	if logger == nil {
		return nil, fmt.Errorf("logger is nil")
	}
	return &Store{path: path, logger: logger}, nil
}

func (s *Store) Path() string {
	return s.path
}

// Load reads the settings file. A missing or unreadable file yields the
// defaults, which are written back immediately; the returned error only
// reports a failure of that write-back.
func (s *Store) Load() (autoclicker.Config, error) {
	f, err := os.Open(s.path)
	if err != nil {
		s.logger.Warn("Settings unavailable, writing defaults", "path", s.path, "err", err)
		cfg := autoclicker.Defaults()
		if saveErr := s.Save(cfg); saveErr != nil {
			return cfg, saveErr
		}
		return cfg, nil
	}
	defer f.Close()

	cfg, skipped, err := Parse(f)
	for _, line := range skipped {
		s.logger.Debug("Skipped settings line", "path", s.path, "line", line)
	}
	if err != nil {
		s.logger.Warn("Settings read stopped early", "path", s.path, "err", err)
	}
	return cfg, nil
}

// Save rewrites the whole file through a temp file and rename.
func (s *Store) Save(cfg autoclicker.Config) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return fmt.Errorf("failed to create settings dir: %w", err)
	}

	var buf bytes.Buffer
	if err := Encode(&buf, cfg); err != nil {
		return err
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, buf.Bytes(), 0o600); err != nil {
		return fmt.Errorf("failed to write settings: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("failed to persist settings: %w", err)
	}
	return nil
}

// Parse applies every recognized key=value line on top of the defaults.
// Unknown keys are ignored. Lines that are not key=value or whose value does not
// start with an integer are skipped and reported by 1-based line number. Values
// are read like stoi: leading blanks, an optional sign, then digits; anything
// after the digits is ignored. A non-nil error means reading stopped early; cfg
// still holds everything parsed before it.
func Parse(r io.Reader) (cfg autoclicker.Config, skipped []int, err error) {
	cfg = autoclicker.Defaults()
	br := bufio.NewReader(r)
	lineNo := 0
	for {
		raw, readErr := br.ReadString('\n')
		if raw == "" && readErr != nil {
			if readErr == io.EOF {
				readErr = nil
			}
			return cfg, skipped, readErr
		}
		lineNo++

		line := strings.TrimSpace(raw)
		if line != "" && !strings.HasPrefix(line, ";") {
			key, value, ok := strings.Cut(line, "=")
			n, numErr := parseValue(value)
			switch {
			case !ok || numErr != nil:
				skipped = append(skipped, lineNo)
			default:
				if field, known := autoclicker.FieldByKey(strings.TrimSpace(key)); known {
					cfg = cfg.With(field, n)
				}
			}
		}

		if readErr != nil {
			if readErr == io.EOF {
				readErr = nil
			}
			return cfg, skipped, readErr
		}
	}
}

// parseValue reads the leading integer of s. It fails when there are no digits
// or the number does not fit in 32 bits.
func parseValue(s string) (int, error) {
	s = strings.TrimLeft(s, " \t\v\f\r")
	end := 0
	if end < len(s) && (s[end] == '+' || s[end] == '-') {
		end++
	}
	digits := end
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	if end == digits {
		return 0, fmt.Errorf("no digits in %q", s)
	}
	n, err := strconv.ParseInt(s[:end], 10, 32)
	if err != nil {
		return 0, err
	}
	return int(n), nil
}

// Encode writes all fields with a comment header.
func Encode(w io.Writer, cfg autoclicker.Config) error {
	cfg = cfg.Clamped()
	bw := bufio.NewWriter(w)
	fmt.Fprintln(bw, "; burstclicker settings")
	fmt.Fprintln(bw, "; format: key=value")
	fmt.Fprintln(bw)
	for _, field := range autoclicker.Fields() {
		fmt.Fprintf(bw, "%s=%d\n", field.Key(), cfg.Get(field))
	}
	return bw.Flush()
}
