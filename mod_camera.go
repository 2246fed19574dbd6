package infinity

import (
	"github.com/go-gl/mathgl/mgl32"

	"github.com/gekko3d/infinity/camera"
)

// CameraRig is the single owner of the camera controller. Grid and View are
// refreshed once per frame after integration; everything else reads them.
type CameraRig struct {
	Controller *camera.Controller
	ChunkSize  float32

	Grid camera.GridState
	View camera.View
}

func NewCameraRig(cfg Config) *CameraRig {
	c := camera.NewController(cfg.CameraConfig())
	c.SetTouchDevice(cfg.Window.TouchDevice)
	rig := &CameraRig{Controller: c, ChunkSize: cfg.Chunks.Size}
	rig.refresh()
	return rig
}

func (rig *CameraRig) refresh() {
	rig.Grid = rig.Controller.Grid(rig.ChunkSize)
	rig.View = rig.Controller.Camera()
}

type CameraModule struct {
	Config Config
}

func (m CameraModule) Install(app *App, cmd *Commands) {
	cmd.AddResources(NewCameraRig(m.Config))
	app.UseSystem(System(cameraInputSystem).InStage(Update))
	app.UseSystem(System(cameraMoveSystem).InStage(Update))
}

// cameraInputSystem feeds the frame's events to the controller. Presses and
// taps are picked against the planes first: a hit starts focusing, so the
// release of the same tap is not mistaken for a tap on the background.
func cameraInputSystem(input *Input, rig *CameraRig, t *Time, cmd *Commands) {
	c := rig.Controller
	focus := c.Config().Focus

	for _, ev := range input.Events {
		switch e := ev.(type) {
		case camera.PointerDown:
			rig.focusAt(cmd, e.X, e.Y, t)
		case camera.PointerUp:
			p := mgl32.Vec2{e.X, e.Y}
			if p.Sub(c.State().DragStart).Len() < focus.TapDistanceMouse {
				rig.focusAt(cmd, e.X, e.Y, t)
			}
		case camera.TouchStart:
			if len(e.Touches) == 1 {
				rig.focusAt(cmd, e.Touches[0].X, e.Touches[0].Y, t)
			}
		}
		c.Handle(ev, t.Now)
	}
}

func (rig *CameraRig) focusAt(cmd *Commands, x, y float32, t *Time) {
	c := rig.Controller
	hit, ok := PickPlane(cmd, c.Camera(), c.NDC(x, y))
	if !ok {
		return
	}
	target := c.FocusOn(hit.Plane.Position, hit.Plane.Scale, t.Now)
	cmd.Logger().Debugf("focus on plane %s, camera target %v", hit.Plane.ID, target)
}

func cameraMoveSystem(rig *CameraRig, t *Time) {
	rig.Controller.Step(t.Seconds())
	rig.refresh()
}
