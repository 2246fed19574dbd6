package chunk

import (
	"encoding/binary"
	"fmt"
	"hash/fnv"
	"math/rand/v2"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/google/uuid"
	"github.com/ojrac/opensimplex-go"
)

// PlaneData is one media plane placed inside a chunk.
type PlaneData struct {
	ID         string
	Position   mgl32.Vec3
	Scale      mgl32.Vec3
	MediaIndex int
}

// planeNamespace scopes the name-based plane UUIDs.
var planeNamespace = uuid.MustParse("6f1c2b9e-4d1a-4e7b-9a55-3c2f1d0e8b71")

// noiseFrequency controls how quickly plane sizes vary across the world.
const noiseFrequency = 1.0 / 240.0

// Generator lays out the planes of a chunk. Generate is a pure function of the
// coordinate and the generator's fields.
type Generator struct {
	Size           float32
	PlanesPerChunk int
	MinScale       float32
	MaxScale       float32
	// Margin keeps plane centres away from chunk faces, as a fraction of Size.
	Margin float32
	Seed   int64

	noise opensimplex.Noise32
}

func NewGenerator(size float32, planesPerChunk int, minScale, maxScale float32, seed int64) *Generator {
	if size <= 0 {
		size = 1
	}
	if maxScale < minScale {
		minScale, maxScale = maxScale, minScale
	}
	return &Generator{
		Size:           size,
		PlanesPerChunk: max(planesPerChunk, 0),
		MinScale:       minScale,
		MaxScale:       maxScale,
		Margin:         0.1,
		Seed:           seed,
		noise:          opensimplex.New32(seed),
	}
}

func (g *Generator) Generate(c Coord) []PlaneData {
	if g.PlanesPerChunk == 0 {
		return nil
	}
	noise := g.noise
	if noise == nil {
		noise = opensimplex.New32(g.Seed)
	}

	seed := coordSeed(c, g.Seed)
	rng := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))

	origin := c.Origin(g.Size)
	margin := g.Size * g.Margin
	span := g.Size - 2*margin
	key := c.Key()

	planes := make([]PlaneData, 0, g.PlanesPerChunk)
	for i := 0; i < g.PlanesPerChunk; i++ {
		pos := mgl32.Vec3{
			origin.X() + margin + rng.Float32()*span,
			origin.Y() + margin + rng.Float32()*span,
			origin.Z() + margin + rng.Float32()*span,
		}

		// Blend a per-plane random pick with a smooth world field so that
		// neighbouring chunks share a size "mood".
		n := (noise.Eval3(pos.X()*noiseFrequency, pos.Y()*noiseFrequency, pos.Z()*noiseFrequency) + 1) / 2
		t := mgl32.Clamp(0.6*rng.Float32()+0.4*n, 0, 1)
		s := g.MinScale + (g.MaxScale-g.MinScale)*t

		planes = append(planes, PlaneData{
			ID:         planeID(key, i),
			Position:   pos,
			Scale:      mgl32.Vec3{s, s, 1},
			MediaIndex: rng.IntN(1 << 20),
		})
	}
	return planes
}

// MediaFor maps a plane's media index onto a list of n items.
func MediaFor(index, n int) (int, bool) {
	if n <= 0 {
		return 0, false
	}
	i := index % n
	if i < 0 {
		i += n
	}
	return i, true
}

func coordSeed(c Coord, world int64) uint64 {
	h := fnv.New64a()
	var b [8]byte
	for _, v := range [4]int64{int64(c.X), int64(c.Y), int64(c.Z), world} {
		binary.LittleEndian.PutUint64(b[:], uint64(v))
		h.Write(b[:])
	}
	return h.Sum64()
}

func planeID(key Key, i int) string {
	return uuid.NewSHA1(planeNamespace, []byte(fmt.Sprintf("%s#%d", key, i))).String()
}
