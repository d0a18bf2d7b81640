package layout

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIndexPlain(t *testing.T) {
	m := Matrix{W: 4, H: 2}
	assert.Equal(t, 0, m.Index(0, 0))
	assert.Equal(t, 3, m.Index(3, 0))
	assert.Equal(t, 4, m.Index(0, 1))
	assert.Equal(t, 8, m.Count())
}

func TestIndexSerpentine(t *testing.T) {
	m := Matrix{W: 4, H: 2, Panels: 2, Order: Serpentine{XFlipEveryRow: true, YFlipEveryPanel: true}}
	w, h := m.Bounds()
	assert.Equal(t, 4, w)
	assert.Equal(t, 4, h)

	// odd row runs backwards
	assert.Equal(t, 7, m.Index(0, 1))
	assert.Equal(t, 4, m.Index(3, 1))
	// second panel is flipped vertically: its top image row is wired last
	assert.Equal(t, 12, m.Index(3, 2))
	assert.Equal(t, 8, m.Index(0, 3))
}

func TestTableIsPermutation(t *testing.T) {
	m := Matrix{W: 5, H: 3, Panels: 3, Order: Serpentine{XFlipEveryRow: true, YFlipEveryPanel: true}}
	tab := m.Table()
	require.Len(t, tab, m.Count())
	seen := make(map[int]bool, len(tab))
	for _, i := range tab {
		require.False(t, seen[i], "index %d mapped twice", i)
		require.True(t, i >= 0 && i < m.Count())
		seen[i] = true
	}
}

func TestValidate(t *testing.T) {
	assert.Error(t, Matrix{}.Validate())
	assert.NoError(t, Matrix{W: 1, H: 1}.Validate())
}
