package portal

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yigit/svitlms/internal/pkg/localstore"
)

func TestTheme(t *testing.T) {
	store := localstore.NewMemory()

	theme := NewTheme(store, "")
	assert.Equal(t, ThemeLight, theme.Current())
	assert.False(t, theme.IsDark())

	next, err := theme.Toggle()
	require.NoError(t, err)
	assert.Equal(t, ThemeDark, next)
	saved, _ := store.Get(localstore.KeyTheme)
	assert.Equal(t, ThemeDark, saved)

	next, err = theme.Toggle()
	require.NoError(t, err)
	assert.Equal(t, ThemeLight, next)

	assert.Error(t, theme.Set("sepia"))
	assert.Equal(t, ThemeLight, theme.Current())

	require.NoError(t, store.Set(localstore.KeyTheme, "garbage"))
	assert.Equal(t, ThemeDark, NewTheme(store, ThemeDark).Current())
	assert.Equal(t, ThemeLight, NewTheme(store, "neon").Current())
}
