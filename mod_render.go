package infinity

import (
	"fmt"
	"image"
	"slices"
	"time"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/lucasb-eyer/go-colorful"
	"golang.org/x/time/rate"

	"github.com/gekko3d/infinity/camera"
)

// PlaneView is one plane as the renderer sees it.
type PlaneView struct {
	ID         string
	Position   mgl32.Vec3
	Scale      mgl32.Vec3
	Opacity    float32
	DepthWrite bool
	Texture    *image.NRGBA
	Media      MediaItem
}

// FrameSnapshot is everything needed to draw one frame. Planes are ordered
// back to front.
type FrameSnapshot struct {
	Frame      uint64
	Camera     camera.View
	Near, Far  float32
	Background colorful.Color
	Fog        colorful.Color
	FogNear    float32
	FogFar     float32
	Planes     []PlaneView
}

// Renderer draws frame snapshots. Only one renderer is installed per app.
type Renderer interface {
	Render(frame FrameSnapshot) error
}

type NopRenderer struct{}

func (NopRenderer) Render(FrameSnapshot) error { return nil }

// RecordingRenderer keeps the last snapshot it was given.
type RecordingRenderer struct {
	Frames int
	Last   FrameSnapshot
}

func (r *RecordingRenderer) Render(frame FrameSnapshot) error {
	r.Frames++
	r.Last = frame
	return nil
}

// RenderTarget is the installed renderer and its counters.
type RenderTarget struct {
	Renderer Renderer
	Frames   int
	Drawn    int
	Errors   int

	scene   SceneConfig
	near    float32
	far     float32
	showFPS bool
	fps     rate.Sometimes
	frameDt time.Duration
}

type RenderModule struct {
	Config   Config
	Renderer Renderer
}

func (m RenderModule) Install(app *App, cmd *Commands) {
	if existing := Resource[RenderTarget](app); existing != nil {
		panic(fmt.Sprintf("Multiple renderers installed: %T and %T", existing.Renderer, m.Renderer))
	}
	r := m.Renderer
	if r == nil {
		r = NopRenderer{}
	}
	cmd.AddResources(&RenderTarget{
		Renderer: r,
		scene:    m.Config.Scene,
		near:     m.Config.Camera.Near,
		far:      m.Config.Camera.Far,
		showFPS:  m.Config.Scene.ShowFPS,
		fps:      rate.Sometimes{Interval: time.Second},
	})
	app.Logger().Infof("Renderer selected: %T", r)
	app.UseSystem(System(renderSystem).InStage(Render))
}

// Snapshot collects the visible, textured planes as seen from view.
func Snapshot(cmd *Commands, view camera.View) []PlaneView {
	var planes []PlaneView
	MakeQuery3[PlaneComponent, TextureComponent, FadeComponent](cmd).Map(
		func(_ EntityId, plane *PlaneComponent, tex *TextureComponent, f *FadeComponent) bool {
			if !tex.Ready() || !f.Visible {
				return true
			}
			var img *image.NRGBA
			if tex.Handle != nil {
				img = tex.Handle.Image()
			}
			planes = append(planes, PlaneView{
				ID:         plane.ID,
				Position:   plane.Position,
				Scale:      plane.Scale,
				Opacity:    f.RenderOpacity(),
				DepthWrite: f.DepthWrite,
				Texture:    img,
				Media:      plane.Media,
			})
			return true
		})

	eye := view.Position
	slices.SortFunc(planes, func(a, b PlaneView) int {
		da, db := a.Position.Sub(eye).LenSqr(), b.Position.Sub(eye).LenSqr()
		switch {
		case da > db:
			return -1
		case da < db:
			return 1
		case a.ID < b.ID:
			return -1
		case a.ID > b.ID:
			return 1
		}
		return 0
	})
	return planes
}

func renderSystem(target *RenderTarget, rig *CameraRig, t *Time, cmd *Commands) {
	background, fog := target.scene.Colors()
	frame := FrameSnapshot{
		Frame:      t.Frame,
		Camera:     rig.View,
		Near:       target.near,
		Far:        target.far,
		Background: background,
		Fog:        fog,
		FogNear:    target.scene.FogNear,
		FogFar:     target.scene.FogFar,
		Planes:     Snapshot(cmd, rig.View),
	}

	target.Frames++
	target.Drawn = len(frame.Planes)
	if err := target.Renderer.Render(frame); err != nil {
		target.Errors++
		cmd.Logger().Errorf("render frame %d: %v", frame.Frame, err)
	}

	if target.showFPS && t.Dt > 0 {
		target.frameDt = t.Dt
		target.fps.Do(func() {
			cmd.Logger().Infof("%.0f fps, %d planes", 1/target.frameDt.Seconds(), target.Drawn)
		})
	}
}
