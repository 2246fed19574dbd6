package infinity

import (
	"github.com/gekko3d/infinity/camera"
)

// Input queues this frame's raw input events. Platform modules push, the
// camera consumes in Update, and the queue is cleared at the end of the frame.
type Input struct {
	Events []camera.Event

	// Viewport is the last reported window size in pixels.
	Width, Height float32
}

func (in *Input) Push(events ...camera.Event) {
	for _, ev := range events {
		if r, ok := ev.(camera.Resize); ok {
			in.Width, in.Height = r.Width, r.Height
		}
		in.Events = append(in.Events, ev)
	}
}

type InputModule struct{}

func (mod InputModule) Install(app *App, cmd *Commands) {
	cmd.AddResources(&Input{})
	app.UseSystem(
		System(inputClearSystem).
			InStage(Finale).
			RunAlways(),
	)
}

func inputClearSystem(input *Input) {
	clear(input.Events)
	input.Events = input.Events[:0]
}
