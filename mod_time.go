package infinity

import (
	"time"

	"github.com/benbjohnson/clock"
)

type Time struct {
	Now   time.Time
	Dt    time.Duration
	Frame uint64

	clock clock.Clock
}

// Seconds is Dt in seconds.
func (t *Time) Seconds() float32 {
	return float32(t.Dt.Seconds())
}

func (t *Time) Clock() clock.Clock {
	return t.clock
}

// TimeModule advances a Time resource at the start of every frame. Clock
// defaults to the wall clock; TargetFPS > 0 sleeps away the rest of each frame.
type TimeModule struct {
	Clock     clock.Clock
	TargetFPS int
}

func (mod TimeModule) Install(app *App, cmd *Commands) {
	c := mod.Clock
	if c == nil {
		c = clock.New()
	}
	cmd.AddResources(&Time{Now: c.Now(), clock: c})
	app.UseSystem(System(timeSystem).InStage(Prelude))

	if mod.TargetFPS > 0 {
		budget := time.Second / time.Duration(mod.TargetFPS)
		app.UseSystem(System(func(t *Time) {
			if spent := t.clock.Since(t.Now); spent < budget {
				t.clock.Sleep(budget - spent)
			}
		}).InStage(Finale))
	}
}

func timeSystem(t *Time) {
	now := t.clock.Now()
	if t.Frame > 0 {
		t.Dt = now.Sub(t.Now)
	}
	t.Now = now
	t.Frame++
}
