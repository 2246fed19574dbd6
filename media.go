package infinity

import (
	"encoding/json"
	"os"

	"github.com/pkg/errors"
	"github.com/samber/lo"

	"github.com/gekko3d/infinity/chunk"
	"github.com/gekko3d/infinity/texture"
)

type MediaItem = texture.Media

// Gallery is the ordered media list tiled across all chunks.
type Gallery struct {
	Items []MediaItem
}

func NewGallery(items []MediaItem) *Gallery {
	valid := lo.Filter(items, func(m MediaItem, _ int) bool { return m.URL != "" })
	return &Gallery{Items: valid}
}

func (g *Gallery) Empty() bool {
	return g == nil || len(g.Items) == 0
}

// At maps a generated media index onto the list by modulo.
func (g *Gallery) At(index int) (MediaItem, bool) {
	if g == nil {
		return MediaItem{}, false
	}
	i, ok := chunk.MediaFor(index, len(g.Items))
	if !ok {
		return MediaItem{}, false
	}
	return g.Items[i], true
}

// LoadManifest reads a JSON array of {url, width, height}. Entries without a
// URL are dropped.
func LoadManifest(path string) ([]MediaItem, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "read manifest %s", path)
	}
	var items []MediaItem
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, errors.Wrapf(err, "parse manifest %s", path)
	}
	return NewGallery(items).Items, nil
}
