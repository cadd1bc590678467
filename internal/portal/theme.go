package portal

import (
	"fmt"

	"github.com/yigit/svitlms/internal/pkg/localstore"
)

const (
	ThemeLight = "light"
	ThemeDark  = "dark"
)

// Theme is the persisted light/dark preference.
type Theme struct {
	store    localstore.Store
	fallback string
}

// NewTheme reads the preference from store. fallback applies until a theme
// is saved and is itself replaced by light when it is not a known theme.
func NewTheme(store localstore.Store, fallback string) *Theme {
	if !validTheme(fallback) {
		fallback = ThemeLight
	}
	return &Theme{store: store, fallback: fallback}
}

func validTheme(name string) bool {
	return name == ThemeLight || name == ThemeDark
}

// Current returns the saved theme or the fallback.
func (t *Theme) Current() string {
	if saved, ok := t.store.Get(localstore.KeyTheme); ok && validTheme(saved) {
		return saved
	}
	return t.fallback
}

func (t *Theme) IsDark() bool {
	return t.Current() == ThemeDark
}

// Set saves name, which must be light or dark.
func (t *Theme) Set(name string) error {
	if !validTheme(name) {
		return fmt.Errorf("unknown theme %q, use %s or %s", name, ThemeLight, ThemeDark)
	}
	return t.store.Set(localstore.KeyTheme, name)
}

// Toggle switches between light and dark and returns the new theme.
func (t *Theme) Toggle() (string, error) {
	next := ThemeDark
	if t.IsDark() {
		next = ThemeLight
	}
	if err := t.Set(next); err != nil {
		return "", err
	}
	return next, nil
}
