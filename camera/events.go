package camera

import "github.com/chewxy/math32"

// Event is one raw input event. The set of variants is closed; Controller.Handle
// switches over all of them.
type Event interface {
	event()
}

// Pointer coordinates are window pixels with the origin at the top left.
type (
	PointerDown struct{ X, Y float32 }
	PointerMove struct{ X, Y float32 }
	PointerUp   struct{ X, Y float32 }
	// PointerLeave is sent when the cursor leaves the window.
	PointerLeave struct{}

	// Wheel carries the vertical scroll delta in pixels; positive scrolls away from the scene.
	Wheel struct{ DeltaY float32 }

	// Touch events carry every touch still on the surface after the event.
	TouchStart struct{ Touches []Touch }
	TouchMove  struct{ Touches []Touch }
	TouchEnd   struct{ Touches []Touch }

	KeyDown struct{ Dir Direction }
	KeyUp   struct{ Dir Direction }

	// Resize reports the new viewport size in pixels.
	Resize struct{ Width, Height float32 }
)

func (PointerDown) event()  {}
func (PointerMove) event()  {}
func (PointerUp) event()    {}
func (PointerLeave) event() {}
func (Wheel) event()        {}
func (TouchStart) event()   {}
func (TouchMove) event()    {}
func (TouchEnd) event()     {}
func (KeyDown) event()      {}
func (KeyUp) event()        {}
func (Resize) event()       {}

type Touch struct {
	ID   int
	X, Y float32
}

// touchDistance is the pixel distance between the first two touches, 0 with fewer.
func touchDistance(touches []Touch) float32 {
	if len(touches) < 2 {
		return 0
	}
	dx := touches[0].X - touches[1].X
	dy := touches[0].Y - touches[1].Y
	return math32.Sqrt(dx*dx + dy*dy)
}

// Direction is a bit set of held movement keys.
type Direction uint8

const (
	Forward Direction = 1 << iota
	Backward
	Left
	Right
	Up
	Down

	NoDirection Direction = 0
)

func (d Direction) Has(o Direction) bool {
	return d&o != 0
}

func (d Direction) String() string {
	if d == NoDirection {
		return "none"
	}
	names := []string{"forward", "backward", "left", "right", "up", "down"}
	s := ""
	for i, name := range names {
		if d&(1<<i) == 0 {
			continue
		}
		if s != "" {
			s += "+"
		}
		s += name
	}
	return s
}
