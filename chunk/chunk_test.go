package chunk

import (
	"testing"
	"time"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"
)

func TestFromPosition(t *testing.T) {
	tests := []struct {
		name string
		pos  mgl32.Vec3
		size float32
		want Coord
	}{
		{"origin", mgl32.Vec3{0, 0, 0}, 10, Coord{0, 0, 0}},
		{"positive x", mgl32.Vec3{25, 0, 0}, 10, Coord{2, 0, 0}},
		{"negative floors down", mgl32.Vec3{-0.5, -10, -10.01}, 10, Coord{-1, -1, -2}},
		{"exact boundary", mgl32.Vec3{10, 20, 30}, 10, Coord{1, 2, 3}},
		{"default chunk size", mgl32.Vec3{0, 0, 50}, 110, Coord{0, 0, 0}},
		{"zero size treated as one", mgl32.Vec3{2.5, -1.5, 0}, 0, Coord{2, -2, 0}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, FromPosition(tc.pos, tc.size))
		})
	}
}

func TestKeyRoundTrip(t *testing.T) {
	c := Coord{-3, 0, 12}
	assert.Equal(t, Key("-3,0,12"), c.Key())

	parsed, err := ParseKey(string(c.Key()))
	require.NoError(t, err)
	assert.Equal(t, c, parsed)

	_, err = ParseKey("1,2")
	assert.Error(t, err)
	_, err = ParseKey("1,b,2")
	assert.Error(t, err)
}

func TestOffsets(t *testing.T) {
	offsets := Offsets(2)
	require.Len(t, offsets, 125)
	assert.Equal(t, Coord{0, 0, 0}, offsets[0], "centre chunk must come first")

	seen := make(map[Coord]bool)
	last := 0
	for _, o := range offsets {
		assert.False(t, seen[o], "duplicate offset %v", o)
		seen[o] = true

		d := o.Distance(Coord{})
		assert.LessOrEqual(t, d, 2)
		assert.GreaterOrEqual(t, d, last, "offsets must be ordered nearest first")
		last = d
	}

	assert.Equal(t, []Coord{{}}, Offsets(-1))
}

func TestAround(t *testing.T) {
	got := Around(Coord{2, 0, 0}, []Coord{{0, 0, 0}, {-1, 1, 0}})
	assert.Equal(t, []Coord{{2, 0, 0}, {1, 1, 0}}, got)
}

func TestGenerate_Deterministic(t *testing.T) {
	g1 := NewGenerator(110, 5, 12, 22, 7)
	g2 := NewGenerator(110, 5, 12, 22, 7)

	for _, c := range []Coord{{0, 0, 0}, {1, -2, 3}, {-40, 17, -9}} {
		a := g1.Generate(c)
		b := g1.Generate(c)
		other := g2.Generate(c)

		require.Len(t, a, 5)
		if diff := cmp.Diff(a, b); diff != "" {
			t.Errorf("same generator, chunk %v differs (-first +second):\n%s", c, diff)
		}
		if diff := cmp.Diff(a, other); diff != "" {
			t.Errorf("fresh generator, chunk %v differs (-first +second):\n%s", c, diff)
		}
	}
}

func TestGenerate_SharedLiteralGenerator(t *testing.T) {
	g := &Generator{Size: 110, PlanesPerChunk: 5, MinScale: 12, MaxScale: 22, Margin: 0.1, Seed: 7}
	want := NewGenerator(110, 5, 12, 22, 7).Generate(Coord{2, 0, -1})

	var eg errgroup.Group
	results := make([][]PlaneData, 8)
	for i := range results {
		eg.Go(func() error {
			results[i] = g.Generate(Coord{2, 0, -1})
			return nil
		})
	}
	require.NoError(t, eg.Wait())
	for _, got := range results {
		if diff := cmp.Diff(want, got); diff != "" {
			t.Errorf("literal generator differs (-want +got):\n%s", diff)
		}
	}
}

func TestGenerate_PlanesStayInsideChunk(t *testing.T) {
	g := NewGenerator(110, 5, 12, 22, 0)
	c := Coord{-1, 2, -3}
	origin := c.Origin(110)

	ids := make(map[string]bool)
	for _, p := range g.Generate(c) {
		for axis := 0; axis < 3; axis++ {
			assert.GreaterOrEqual(t, p.Position[axis], origin[axis])
			assert.Less(t, p.Position[axis], origin[axis]+110)
		}
		assert.GreaterOrEqual(t, p.Scale.Y(), float32(12))
		assert.LessOrEqual(t, p.Scale.Y(), float32(22))
		assert.Equal(t, p.Scale.X(), p.Scale.Y())
		assert.GreaterOrEqual(t, p.MediaIndex, 0)
		assert.Equal(t, c, FromPosition(p.Position, 110))

		assert.False(t, ids[p.ID], "duplicate plane id")
		ids[p.ID] = true
	}
}

func TestGenerate_DifferentChunksDiffer(t *testing.T) {
	g := NewGenerator(110, 5, 12, 22, 0)
	a := g.Generate(Coord{0, 0, 0})
	b := g.Generate(Coord{0, 0, 1})
	assert.NotEqual(t, a[0].ID, b[0].ID)
	assert.NotEqual(t, a[0].Position, b[0].Position.Sub(mgl32.Vec3{0, 0, 110}))
}

func TestMediaFor(t *testing.T) {
	i, ok := MediaFor(7, 3)
	assert.True(t, ok)
	assert.Equal(t, 1, i)

	i, ok = MediaFor(-1, 3)
	assert.True(t, ok)
	assert.Equal(t, 2, i)

	_, ok = MediaFor(4, 0)
	assert.False(t, ok)
}

func TestCache_Memoises(t *testing.T) {
	cache := NewCache(NewGenerator(10, 3, 1, 2, 0), 0)

	first := cache.Planes(Coord{1, 1, 1})
	second := cache.Planes(Coord{1, 1, 1})
	assert.Equal(t, first, second)

	hits, misses := cache.Stats()
	assert.Equal(t, 1, hits)
	assert.Equal(t, 1, misses)
	assert.Equal(t, 1, cache.Len())
}

func TestCache_LRULimit(t *testing.T) {
	cache := NewCache(NewGenerator(10, 3, 1, 2, 0), 2)

	a := cache.Planes(Coord{0, 0, 0})
	cache.Planes(Coord{1, 0, 0})
	cache.Planes(Coord{0, 0, 0}) // touch a, leaving {1,0,0} as oldest
	cache.Planes(Coord{2, 0, 0})

	assert.Equal(t, 2, cache.Len())
	assert.True(t, cache.Has(Coord{0, 0, 0}))
	assert.False(t, cache.Has(Coord{1, 0, 0}))
	assert.True(t, cache.Has(Coord{2, 0, 0}))

	// Evicted chunks regenerate identically.
	regenerated := cache.Planes(Coord{1, 0, 0})
	assert.Equal(t, NewGenerator(10, 3, 1, 2, 0).Generate(Coord{1, 0, 0}), regenerated)
	assert.Equal(t, a, cache.Planes(Coord{0, 0, 0}))
}

func TestThrottleInterval(t *testing.T) {
	cfg := ThrottleConfig{
		Idle:        100 * time.Millisecond,
		ZoomMin:     300 * time.Millisecond,
		ZoomMax:     600 * time.Millisecond,
		MaxVelocity: 3.2,
	}

	assert.Equal(t, 100*time.Millisecond, ThrottleInterval(false, 3, cfg))
	assert.Equal(t, 300*time.Millisecond, ThrottleInterval(true, 0, cfg))
	assert.Equal(t, 600*time.Millisecond, ThrottleInterval(true, 10, cfg))

	mid := ThrottleInterval(true, 1.6, cfg)
	assert.InDelta(t, float64(450*time.Millisecond), float64(mid), float64(time.Millisecond))
}

func TestThrottle_FirstCommitImmediate(t *testing.T) {
	var th Throttle
	now := time.Unix(1000, 0)

	th.Observe(Coord{0, 0, 0})
	c, ok := th.Ready(now, time.Hour)
	require.True(t, ok)
	assert.Equal(t, Coord{0, 0, 0}, c)

	// Same chunk again: nothing pending.
	th.Observe(Coord{0, 0, 0})
	_, ok = th.Ready(now.Add(2*time.Hour), time.Hour)
	assert.False(t, ok)
}

func TestThrottle_WaitsForInterval(t *testing.T) {
	var th Throttle
	start := time.Unix(1000, 0)
	interval := 100 * time.Millisecond

	th.Observe(FromPosition(mgl32.Vec3{0, 0, 0}, 10))
	_, ok := th.Ready(start, interval)
	require.True(t, ok)

	th.Observe(FromPosition(mgl32.Vec3{25, 0, 0}, 10))
	_, ok = th.Ready(start.Add(50*time.Millisecond), interval)
	assert.False(t, ok, "commit must wait for the throttle window")

	pending, ok := th.Pending()
	require.True(t, ok)
	assert.Equal(t, Coord{2, 0, 0}, pending)

	c, ok := th.Ready(start.Add(100*time.Millisecond), interval)
	require.True(t, ok)
	assert.Equal(t, Coord{2, 0, 0}, c)

	_, ok = th.Ready(start.Add(time.Second), interval)
	assert.False(t, ok, "exactly one rebuild per change")
}

func TestThrottle_LatestPendingWins(t *testing.T) {
	var th Throttle
	start := time.Unix(0, 0)
	th.Observe(Coord{})
	th.Ready(start, time.Second)

	th.Observe(Coord{1, 0, 0})
	th.Observe(Coord{2, 0, 0})

	c, ok := th.Ready(start.Add(time.Second), time.Second)
	require.True(t, ok)
	assert.Equal(t, Coord{2, 0, 0}, c)
}
