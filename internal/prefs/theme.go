// Path: internal/prefs/theme.go
package prefs

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"

	"go.uber.org/zap"

	"pokedex/internal/events"
	"pokedex/internal/storage"
)

// DarkModeKey is the KV slot holding the theme flag.
const DarkModeKey = "darkMode"

// Theme holds the display-theme preference.
type Theme struct {
	mu     sync.RWMutex
	kv     storage.KV
	broker *events.Broker
	log    *zap.Logger
	dark   bool
}

// NewTheme creates a light-theme preference. Call Load once before use.
func NewTheme(kv storage.KV, broker *events.Broker, logger *zap.Logger) *Theme {
	return &Theme{kv: kv, broker: broker, log: logger.Named("prefs")}
}

// Load reads the persisted flag. Missing or malformed values mean light mode.
func (t *Theme) Load(ctx context.Context) error {
	raw, ok, err := t.kv.Get(ctx, DarkModeKey)
	t.mu.Lock()
	defer t.mu.Unlock()
	t.dark = false
	if err != nil {
		return fmt.Errorf("read %s: %w", DarkModeKey, err)
	}
	if !ok {
		return nil
	}
	dark, perr := strconv.ParseBool(strings.TrimSpace(raw))
	if perr != nil {
		t.log.Warn("Ignoring malformed theme preference", zap.String("value", raw))
		return nil
	}
	t.dark = dark
	return nil
}

// DarkMode reports the current flag.
func (t *Theme) DarkMode() bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.dark
}

// SetDarkMode stores the flag and persists it.
func (t *Theme) SetDarkMode(ctx context.Context, dark bool) error {
	t.mu.Lock()
	t.dark = dark
	err := t.kv.Set(ctx, DarkModeKey, strconv.FormatBool(dark))
	t.mu.Unlock()
	if err != nil {
		return fmt.Errorf("write %s: %w", DarkModeKey, err)
	}
	t.broker.Publish(events.TopicThemeChanged, dark)
	return nil
}

// ToggleDarkMode flips the flag and returns the new value.
func (t *Theme) ToggleDarkMode(ctx context.Context) (bool, error) {
	t.mu.Lock()
	dark := !t.dark
	t.dark = dark
	err := t.kv.Set(ctx, DarkModeKey, strconv.FormatBool(dark))
	t.mu.Unlock()
	if err != nil {
		return dark, fmt.Errorf("write %s: %w", DarkModeKey, err)
	}
	t.broker.Publish(events.TopicThemeChanged, dark)
	return dark, nil
}
