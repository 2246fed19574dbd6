package chunk

import (
	"time"

	"github.com/chewxy/math32"
)

// ThrottleConfig holds the commit intervals of the active chunk set.
type ThrottleConfig struct {
	Idle        time.Duration
	ZoomMin     time.Duration
	ZoomMax     time.Duration
	MaxVelocity float32
}

// ThrottleInterval picks how long to wait between chunk-set rebuilds. Fast
// zooming crosses chunks quickly, so rebuilds are spaced further apart.
func ThrottleInterval(zooming bool, zoomSpeed float32, cfg ThrottleConfig) time.Duration {
	if !zooming {
		return cfg.Idle
	}
	t := float32(1)
	if cfg.MaxVelocity > 0 {
		t = math32.Min(math32.Abs(zoomSpeed)/cfg.MaxVelocity, 1)
	}
	return cfg.ZoomMin + time.Duration(float32(cfg.ZoomMax-cfg.ZoomMin)*t)
}

// Throttle tracks the camera's chunk between commits of the active set.
type Throttle struct {
	seen       bool
	lastKey    Key
	pending    *Coord
	lastCommit time.Time
	committed  bool
}

// Observe records c as pending if it differs from the last observed chunk.
func (t *Throttle) Observe(c Coord) {
	key := c.Key()
	if t.seen && key == t.lastKey {
		return
	}
	t.seen = true
	t.lastKey = key
	t.pending = &c
}

// Ready commits the pending chunk if interval has elapsed since the last
// commit. The very first commit is never delayed.
func (t *Throttle) Ready(now time.Time, interval time.Duration) (Coord, bool) {
	if t.pending == nil {
		return Coord{}, false
	}
	if t.committed && now.Sub(t.lastCommit) < interval {
		return Coord{}, false
	}
	c := *t.pending
	t.pending = nil
	t.lastCommit = now
	t.committed = true
	return c, true
}

func (t *Throttle) Pending() (Coord, bool) {
	if t.pending == nil {
		return Coord{}, false
	}
	return *t.pending, true
}
