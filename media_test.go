package infinity

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGallery_At(t *testing.T) {
	g := NewGallery([]MediaItem{{URL: "a"}, {URL: ""}, {URL: "b"}, {URL: "c"}})
	require.Len(t, g.Items, 3, "entries without a URL are dropped")

	for index, want := range map[int]string{0: "a", 1: "b", 2: "c", 3: "a", 7: "b", -1: "c"} {
		m, ok := g.At(index)
		require.True(t, ok)
		assert.Equal(t, want, m.URL, "index %d", index)
	}
}

func TestGallery_Empty(t *testing.T) {
	var nilGallery *Gallery
	assert.True(t, nilGallery.Empty())
	_, ok := nilGallery.At(0)
	assert.False(t, ok)

	g := NewGallery(nil)
	assert.True(t, g.Empty())
	_, ok = g.At(3)
	assert.False(t, ok)
}

func TestLoadManifest(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "media.json")
	require.NoError(t, os.WriteFile(path, []byte(`[
		{"url": "photos/one.jpg", "width": 1200, "height": 800},
		{"url": ""},
		{"url": "https://example.com/two.png"}
	]`), 0o644))

	items, err := LoadManifest(path)
	require.NoError(t, err)
	assert.Equal(t, []MediaItem{
		{URL: "photos/one.jpg", Width: 1200, Height: 800},
		{URL: "https://example.com/two.png"},
	}, items)
	assert.InDelta(t, 1.5, items[0].Aspect(), 1e-6)

	_, err = LoadManifest(filepath.Join(dir, "missing.json"))
	assert.Error(t, err)

	bad := filepath.Join(dir, "bad.json")
	require.NoError(t, os.WriteFile(bad, []byte(`{"url": "x"}`), 0o644))
	_, err = LoadManifest(bad)
	assert.ErrorContains(t, err, "parse manifest")
}
