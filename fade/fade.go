// Package fade computes per-plane opacity from the plane's chunk distance and
// depth distance to the camera.
package fade

import (
	"github.com/chewxy/math32"
)

// Params configures both fades and the frame-to-frame smoothing.
type Params struct {
	// RenderDistance is the Chebyshev chunk radius that is always fully visible.
	RenderDistance int
	// FadeMargin is how many chunks beyond RenderDistance opacity ramps to 0 over.
	FadeMargin float32

	DepthStart float32
	DepthEnd   float32
	// HardCull is added to DepthEnd; planes deeper than that are not drawn at all.
	HardCull float32

	InvisibleBelow float32
	OpaqueAbove    float32
	// Lerp is the per-frame smoothing factor at the 60 Hz reference rate.
	Lerp float32
}

func DefaultParams() Params {
	return Params{
		RenderDistance: 2,
		FadeMargin:     1,
		DepthStart:     140,
		DepthEnd:       260,
		HardCull:       50,
		InvisibleBelow: 0.01,
		OpaqueAbove:    0.99,
		Lerp:           0.18,
	}
}

const minSpan = 0.0001

// GridFade is 1 inside the render distance and decays linearly to 0 over the margin.
func (p Params) GridFade(dist int) float32 {
	if dist <= p.RenderDistance {
		return 1
	}
	over := float32(dist - p.RenderDistance)
	return clamp01(1 - over/math32.Max(p.FadeMargin, minSpan))
}

// DepthFade is 1 up to DepthStart, then falls off quadratically to 0 at DepthEnd.
func (p Params) DepthFade(absDepth float32) float32 {
	absDepth = math32.Abs(absDepth)
	if absDepth <= p.DepthStart {
		return 1
	}
	f := clamp01(1 - (absDepth-p.DepthStart)/math32.Max(p.DepthEnd-p.DepthStart, minSpan))
	return f * f
}

// Target combines both fades multiplicatively.
func (p Params) Target(dist int, absDepth float32) float32 {
	return clamp01(p.GridFade(dist) * p.DepthFade(absDepth))
}

// Culled reports whether a plane is past the hard depth cutoff.
func (p Params) Culled(absDepth float32) bool {
	return math32.Abs(absDepth) > p.DepthEnd+p.HardCull
}

// State is the fade state of a single plane.
type State struct {
	Opacity    float32
	Visible    bool
	DepthWrite bool

	frame uint8
}

// Update advances the plane's opacity by one frame. dt is in seconds; a
// non-positive dt uses the reference frame time.
func (s *State) Update(p Params, dist int, absDepth float32, dt float32) {
	s.frame ^= 1

	// Invisible planes only need a look every other frame.
	if s.Opacity < p.InvisibleBelow && !s.Visible && s.frame == 0 {
		return
	}

	if math32.IsNaN(absDepth) || p.Culled(absDepth) {
		s.Opacity = 0
		s.Visible = false
		s.DepthWrite = false
		return
	}

	target := p.Target(dist, absDepth)
	if target < p.InvisibleBelow && s.Opacity < p.InvisibleBelow {
		s.Opacity = 0
	} else {
		s.Opacity = clamp01(Damp(s.Opacity, target, p.Lerp, dt))
	}

	if s.Opacity > p.OpaqueAbove {
		s.DepthWrite = true
	} else {
		s.DepthWrite = false
	}
	s.Visible = s.Opacity > p.InvisibleBelow
}

// RenderOpacity is the opacity handed to the renderer: fully opaque planes are drawn at exactly 1.
func (s State) RenderOpacity() float32 {
	if s.DepthWrite {
		return 1
	}
	return s.Opacity
}

// ReferenceDt is the frame time the per-frame factors were tuned at.
const ReferenceDt = float32(1.0 / 60.0)

// Damp moves current towards target by factor per reference frame, scaled to dt.
func Damp(current, target, factor, dt float32) float32 {
	return current + (target-current)*FrameFactor(factor, dt)
}

// FrameFactor converts a per-reference-frame factor to the equivalent for dt seconds.
func FrameFactor(factor, dt float32) float32 {
	factor = clamp01(factor)
	if dt <= 0 || dt == ReferenceDt {
		return factor
	}
	return 1 - math32.Pow(1-factor, dt/ReferenceDt)
}

func clamp01(v float32) float32 {
	if math32.IsNaN(v) {
		return 0
	}
	return math32.Max(0, math32.Min(1, v))
}
