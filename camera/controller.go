// Package camera turns raw pointer, touch, wheel and keyboard input into a
// smoothed camera trajectory and owns the focus-on-click behaviour.
package camera

import (
	"time"

	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"

	"github.com/gekko3d/infinity/chunk"
)

// Motion holds the per-frame movement factors, tuned at a 60 Hz frame rate.
type Motion struct {
	MaxVelocity   float32 `yaml:"max_velocity"`
	KeyboardSpeed float32 `yaml:"keyboard_speed"`
	VelocityLerp  float32 `yaml:"velocity_lerp"`
	VelocityDecay float32 `yaml:"velocity_decay"`
	ScrollFactor  float32 `yaml:"scroll_factor"`
	ScrollDecay   float32 `yaml:"scroll_decay"`
	DragMouse     float32 `yaml:"drag_mouse"`
	DragTouch     float32 `yaml:"drag_touch"`
	Pinch         float32 `yaml:"pinch"`
	// ZoomingAbove is the |velocity.z| from which the camera counts as zooming.
	ZoomingAbove     float32 `yaml:"zooming_above"`
	DriftAmount      float32 `yaml:"drift_amount"`
	DriftReferenceZ  float32 `yaml:"drift_reference_z"`
	DriftLerp        float32 `yaml:"drift_lerp"`
	DriftLerpZooming float32 `yaml:"drift_lerp_zooming"`
}

// Focus configures fly-to and the tap heuristics that start or cancel it.
type Focus struct {
	Lerp    float32 `yaml:"lerp"`
	Padding float32 `yaml:"padding"`
	// Arrival is the distance to the target at which focusing ends.
	Arrival float32 `yaml:"arrival"`

	TapDistanceMouse float32       `yaml:"tap_distance_mouse"`
	TapDistanceTouch float32       `yaml:"tap_distance_touch"`
	HitWindowMouse   time.Duration `yaml:"hit_window_mouse"`
	HitWindowTouch   time.Duration `yaml:"hit_window_touch"`
}

type Config struct {
	FOV      float32 // vertical, degrees
	InitialZ float32
	Motion   Motion
	Focus    Focus
}

func DefaultMotion() Motion {
	return Motion{
		MaxVelocity:      3.2,
		KeyboardSpeed:    0.18,
		VelocityLerp:     0.16,
		VelocityDecay:    0.9,
		ScrollFactor:     0.006,
		ScrollDecay:      0.8,
		DragMouse:        0.025,
		DragTouch:        0.02,
		Pinch:            0.006,
		ZoomingAbove:     0.05,
		DriftAmount:      8,
		DriftReferenceZ:  50,
		DriftLerp:        0.12,
		DriftLerpZooming: 0.2,
	}
}

func DefaultFocus() Focus {
	return Focus{
		Lerp:             0.08,
		Padding:          1.2,
		Arrival:          0.1,
		TapDistanceMouse: 5,
		TapDistanceTouch: 10,
		HitWindowMouse:   100 * time.Millisecond,
		HitWindowTouch:   200 * time.Millisecond,
	}
}

func DefaultConfig() Config {
	return Config{FOV: 60, InitialZ: 50, Motion: DefaultMotion(), Focus: DefaultFocus()}
}

type Mode uint8

const (
	Idle Mode = iota
	Dragging
	Focusing
)

func (m Mode) String() string {
	switch m {
	case Idle:
		return "idle"
	case Dragging:
		return "dragging"
	case Focusing:
		return "focusing"
	}
	return "unknown"
}

// State is everything the controller mutates. Only the owning Controller writes it.
type State struct {
	Velocity  mgl32.Vec3
	TargetVel mgl32.Vec3
	Base      mgl32.Vec3
	Drift     mgl32.Vec2

	// Pointer is the last cursor position in normalised device coordinates.
	Pointer     mgl32.Vec2
	LastPointer mgl32.Vec2
	DragStart   mgl32.Vec2
	Dragging    bool

	ScrollAccum float32

	Touches     []Touch
	TouchDist   float32
	TouchStart  mgl32.Vec2
	TouchDevice bool

	Held Direction

	FocusTarget *mgl32.Vec3
	LastHit     time.Time

	Viewport mgl32.Vec2
}

// View is the camera as handed to picking and rendering.
type View struct {
	Position mgl32.Vec3
	FOV      float32
	Aspect   float32
}

// GridState is the camera's chunk and depth, read by every plane's fade each frame.
type GridState struct {
	Chunk chunk.Coord
	CamZ  float32
}

type Controller struct {
	cfg   Config
	state State
}

func NewController(cfg Config) *Controller {
	c := &Controller{cfg: cfg}
	c.state.Base = mgl32.Vec3{0, 0, cfg.InitialZ}
	return c
}

func (c *Controller) Config() Config { return c.cfg }

// State returns a copy of the controller state.
func (c *Controller) State() State {
	s := c.state
	s.Touches = append([]Touch(nil), c.state.Touches...)
	if c.state.FocusTarget != nil {
		t := *c.state.FocusTarget
		s.FocusTarget = &t
	}
	return s
}

func (c *Controller) Mode() Mode {
	switch {
	case c.state.FocusTarget != nil:
		return Focusing
	case c.state.Dragging || len(c.state.Touches) > 0:
		return Dragging
	}
	return Idle
}

func (c *Controller) FocusTarget() (mgl32.Vec3, bool) {
	if c.state.FocusTarget == nil {
		return mgl32.Vec3{}, false
	}
	return *c.state.FocusTarget, true
}

// SetTouchDevice forces touch behaviour (no drift) before any touch arrives.
func (c *Controller) SetTouchDevice(v bool) {
	c.state.TouchDevice = v
}

// SetPosition moves the camera base without touching velocity.
func (c *Controller) SetPosition(p mgl32.Vec3) {
	c.state.Base = p
}

func (c *Controller) cancelFocus() {
	c.state.FocusTarget = nil
}

// Aspect is width/height of the viewport, or 1 while the viewport is degenerate.
func (c *Controller) Aspect() float32 {
	w, h := c.state.Viewport[0], c.state.Viewport[1]
	if w <= 0 || h <= 0 || math32.IsNaN(w) || math32.IsNaN(h) {
		return 1
	}
	return w / h
}

// NDC converts window pixels to normalised device coordinates.
func (c *Controller) NDC(x, y float32) mgl32.Vec2 {
	w, h := c.state.Viewport[0], c.state.Viewport[1]
	if w <= 0 || h <= 0 {
		return mgl32.Vec2{}
	}
	return mgl32.Vec2{x/w*2 - 1, -(y/h)*2 + 1}
}

// Handle applies one input event received at now.
func (c *Controller) Handle(ev Event, now time.Time) {
	s := &c.state
	m := c.cfg.Motion
	f := c.cfg.Focus

	switch e := ev.(type) {
	case PointerDown:
		// A press may be the start of a click on a plane, so focus survives it.
		s.Dragging = true
		s.LastPointer = mgl32.Vec2{e.X, e.Y}
		s.DragStart = s.LastPointer

	case PointerMove:
		s.Pointer = c.NDC(e.X, e.Y)
		if !s.Dragging {
			return
		}
		s.TargetVel[0] -= (e.X - s.LastPointer[0]) * m.DragMouse
		s.TargetVel[1] += (e.Y - s.LastPointer[1]) * m.DragMouse
		s.LastPointer = mgl32.Vec2{e.X, e.Y}
		if s.LastPointer.Sub(s.DragStart).Len() > f.TapDistanceMouse {
			c.cancelFocus()
		}

	case PointerUp:
		s.Dragging = false
		moved := mgl32.Vec2{e.X, e.Y}.Sub(s.DragStart).Len()
		if moved < f.TapDistanceMouse && now.Sub(s.LastHit) > f.HitWindowMouse {
			c.cancelFocus()
		}

	case PointerLeave:
		s.Pointer = mgl32.Vec2{}
		s.Dragging = false

	case Wheel:
		c.cancelFocus()
		s.ScrollAccum += e.DeltaY * m.ScrollFactor

	case TouchStart:
		s.TouchDevice = true
		s.Touches = append(s.Touches[:0], e.Touches...)
		s.TouchDist = touchDistance(s.Touches)
		if len(e.Touches) > 0 {
			s.TouchStart = mgl32.Vec2{e.Touches[0].X, e.Touches[0].Y}
		}

	case TouchMove:
		if len(e.Touches) > 0 {
			first := mgl32.Vec2{e.Touches[0].X, e.Touches[0].Y}
			if first.Sub(s.TouchStart).Len() > f.TapDistanceTouch {
				c.cancelFocus()
			}
		}
		switch {
		case len(e.Touches) == 1 && len(s.Touches) >= 1:
			s.TargetVel[0] -= (e.Touches[0].X - s.Touches[0].X) * m.DragTouch
			s.TargetVel[1] += (e.Touches[0].Y - s.Touches[0].Y) * m.DragTouch
		case len(e.Touches) == 2 && s.TouchDist > 0:
			d := touchDistance(e.Touches)
			s.ScrollAccum += (s.TouchDist - d) * m.Pinch
			s.TouchDist = d
		}
		s.Touches = append(s.Touches[:0], e.Touches...)

	case TouchEnd:
		s.Touches = append(s.Touches[:0], e.Touches...)
		s.TouchDist = touchDistance(s.Touches)
		// A tap that did not land on a plane recently is a tap on the background.
		if now.Sub(s.LastHit) > f.HitWindowTouch {
			c.cancelFocus()
		}

	case KeyDown:
		s.Held |= e.Dir

	case KeyUp:
		s.Held &^= e.Dir

	case Resize:
		s.Viewport = mgl32.Vec2{e.Width, e.Height}
	}
}

// FramingDistance is how far in front of a plane of the given world scale the
// camera has to sit so the padded plane fits both vertically and horizontally.
func FramingDistance(scale mgl32.Vec3, fovDeg, aspect, padding float32) float32 {
	if aspect <= 0 || math32.IsNaN(aspect) || math32.IsInf(aspect, 0) {
		aspect = 1
	}
	visibleHeight := 2 * math32.Tan(mgl32.DegToRad(fovDeg)/2)
	byHeight := scale.Y() * padding / visibleHeight
	byWidth := scale.X() * padding / (visibleHeight * aspect)
	return math32.Max(byHeight, byWidth)
}

// FocusOn starts flying towards a framing position in front of the plane at
// pos with display scale. It records now as the last plane hit so the release
// of the same tap does not count as a background tap.
func (c *Controller) FocusOn(pos, scale mgl32.Vec3, now time.Time) mgl32.Vec3 {
	d := FramingDistance(scale, c.cfg.FOV, c.Aspect(), c.cfg.Focus.Padding)
	target := mgl32.Vec3{pos.X(), pos.Y(), pos.Z() + d}
	c.state.LastHit = now
	c.state.FocusTarget = &target
	return target
}

// ReferenceDt is the frame time all per-frame factors are expressed for.
const ReferenceDt = float32(1.0 / 60.0)

const maxDt = 0.25

// Step integrates one frame of dt seconds. A non-positive dt counts as one reference frame.
func (c *Controller) Step(dt float32) {
	s := &c.state
	m := c.cfg.Motion
	if dt <= 0 || math32.IsNaN(dt) {
		dt = ReferenceDt
	}
	dt = math32.Min(dt, maxDt)
	k := dt / ReferenceDt

	if s.Held != NoDirection {
		c.cancelFocus()
	}
	speed := m.KeyboardSpeed * k
	if s.Held.Has(Forward) {
		s.TargetVel[2] -= speed
	}
	if s.Held.Has(Backward) {
		s.TargetVel[2] += speed
	}
	if s.Held.Has(Left) {
		s.TargetVel[0] -= speed
	}
	if s.Held.Has(Right) {
		s.TargetVel[0] += speed
	}
	if s.Held.Has(Down) {
		s.TargetVel[1] -= speed
	}
	if s.Held.Has(Up) {
		s.TargetVel[1] += speed
	}

	zooming := c.Zooming()
	driftLerp := m.DriftLerp
	if zooming {
		driftLerp = m.DriftLerpZooming
	}
	switch {
	case s.Dragging:
		// drift stays where it is
	case s.TouchDevice || s.FocusTarget != nil:
		s.Drift = dampVec2(s.Drift, mgl32.Vec2{}, driftLerp, k)
	default:
		amount := m.DriftAmount * mgl32.Clamp(s.Base.Z()/math32.Max(m.DriftReferenceZ, 1e-4), 0.3, 2)
		s.Drift = dampVec2(s.Drift, s.Pointer.Mul(amount), driftLerp, k)
	}

	s.TargetVel[2] += s.ScrollAccum * k
	s.ScrollAccum *= math32.Pow(m.ScrollDecay, k)

	for i := range s.TargetVel {
		s.TargetVel[i] = mgl32.Clamp(s.TargetVel[i], -m.MaxVelocity, m.MaxVelocity)
	}
	lerp := frameFactor(m.VelocityLerp, k)
	s.Velocity = s.Velocity.Add(s.TargetVel.Sub(s.Velocity).Mul(lerp))

	if s.FocusTarget != nil {
		target := *s.FocusTarget
		s.Base = s.Base.Add(target.Sub(s.Base).Mul(frameFactor(c.cfg.Focus.Lerp, k)))
		s.TargetVel = mgl32.Vec3{}
		s.Velocity = mgl32.Vec3{}
		arrival := c.cfg.Focus.Arrival
		if s.Base.Sub(target).LenSqr() < arrival*arrival {
			c.cancelFocus()
		}
	} else {
		s.Base = s.Base.Add(s.Velocity.Mul(k))
	}

	s.TargetVel = s.TargetVel.Mul(math32.Pow(m.VelocityDecay, k))
}

// Zooming reports whether the camera is moving fast enough along z to be zooming.
func (c *Controller) Zooming() bool {
	return math32.Abs(c.state.Velocity.Z()) > c.cfg.Motion.ZoomingAbove
}

func (c *Controller) ZoomSpeed() float32 {
	return math32.Abs(c.state.Velocity.Z())
}

// Camera returns the rendered camera: the integrated base plus the parallax drift.
func (c *Controller) Camera() View {
	s := c.state
	return View{
		Position: mgl32.Vec3{s.Base.X() + s.Drift.X(), s.Base.Y() + s.Drift.Y(), s.Base.Z()},
		FOV:      c.cfg.FOV,
		Aspect:   c.Aspect(),
	}
}

// Grid is the chunk grid snapshot; it follows the base position, not the drift.
func (c *Controller) Grid(size float32) GridState {
	return GridState{Chunk: chunk.FromPosition(c.state.Base, size), CamZ: c.state.Base.Z()}
}

// Ray returns a world-space ray through ndc. The camera looks down -Z.
func (v View) Ray(ndc mgl32.Vec2) (origin, dir mgl32.Vec3) {
	aspect := v.Aspect
	if aspect <= 0 {
		aspect = 1
	}
	h := math32.Tan(mgl32.DegToRad(v.FOV) / 2)
	dir = mgl32.Vec3{ndc.X() * h * aspect, ndc.Y() * h, -1}.Normalize()
	return v.Position, dir
}

func frameFactor(f, k float32) float32 {
	f = mgl32.Clamp(f, 0, 1)
	if k == 1 {
		return f
	}
	return 1 - math32.Pow(1-f, k)
}

func dampVec2(cur, target mgl32.Vec2, f, k float32) mgl32.Vec2 {
	return cur.Add(target.Sub(cur).Mul(frameFactor(f, k)))
}
