package chunk

import (
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/pkg/errors"
)

// Coord identifies a cube of world space with edge length equal to the grid's chunk size.
type Coord struct {
	X, Y, Z int
}

// Key is the canonical "x,y,z" form of a Coord, used for caching and as a stable entity key.
type Key string

func (c Coord) Key() Key {
	return Key(fmt.Sprintf("%d,%d,%d", c.X, c.Y, c.Z))
}

func (c Coord) String() string {
	return string(c.Key())
}

func (c Coord) Add(o Coord) Coord {
	return Coord{c.X + o.X, c.Y + o.Y, c.Z + o.Z}
}

// Distance is the Chebyshev distance between two chunks.
func (c Coord) Distance(o Coord) int {
	return max(absInt(c.X-o.X), absInt(c.Y-o.Y), absInt(c.Z-o.Z))
}

func (c Coord) manhattan() int {
	return absInt(c.X) + absInt(c.Y) + absInt(c.Z)
}

// Origin returns the world-space minimum corner of the chunk.
func (c Coord) Origin(size float32) mgl32.Vec3 {
	return mgl32.Vec3{float32(c.X) * size, float32(c.Y) * size, float32(c.Z) * size}
}

func ParseKey(key string) (Coord, error) {
	parts := strings.Split(key, ",")
	if len(parts) != 3 {
		return Coord{}, errors.Errorf("chunk key %q: expected 3 components, got %d", key, len(parts))
	}
	var vals [3]int
	for i, p := range parts {
		v, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return Coord{}, errors.Wrapf(err, "chunk key %q", key)
		}
		vals[i] = v
	}
	return Coord{vals[0], vals[1], vals[2]}, nil
}

// FromPosition floors each axis of p by size. A non-positive size is treated as 1.
func FromPosition(p mgl32.Vec3, size float32) Coord {
	if size <= 0 {
		size = 1
	}
	return Coord{
		X: int(math32.Floor(p.X() / size)),
		Y: int(math32.Floor(p.Y() / size)),
		Z: int(math32.Floor(p.Z() / size)),
	}
}

// Offsets returns every offset in the cube [-r, r]^3, nearest first so the
// chunk under the camera is always populated before its neighbours.
func Offsets(renderDistance int) []Coord {
	r := max(renderDistance, 0)
	out := make([]Coord, 0, (2*r+1)*(2*r+1)*(2*r+1))
	for dx := -r; dx <= r; dx++ {
		for dy := -r; dy <= r; dy++ {
			for dz := -r; dz <= r; dz++ {
				out = append(out, Coord{dx, dy, dz})
			}
		}
	}

	var zero Coord
	slices.SortStableFunc(out, func(a, b Coord) int {
		if d := a.Distance(zero) - b.Distance(zero); d != 0 {
			return d
		}
		if d := a.manhattan() - b.manhattan(); d != 0 {
			return d
		}
		if a.X != b.X {
			return a.X - b.X
		}
		if a.Y != b.Y {
			return a.Y - b.Y
		}
		return a.Z - b.Z
	})
	return out
}

// Around translates offsets to absolute coordinates around center.
func Around(center Coord, offsets []Coord) []Coord {
	out := make([]Coord, len(offsets))
	for i, o := range offsets {
		out[i] = center.Add(o)
	}
	return out
}

func absInt(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
