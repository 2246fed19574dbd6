package infinity

import (
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"

	"github.com/gekko3d/infinity/camera"
)

type PlaneHit struct {
	Entity   EntityId
	Plane    PlaneComponent
	Distance float32
}

// IntersectPlane intersects a ray with an axis-aligned media plane facing +Z,
// centred at center with the given width and height. Only hits in front of
// the origin count.
func IntersectPlane(origin, dir, center, scale mgl32.Vec3) (float32, bool) {
	if math32.Abs(dir.Z()) < 1e-6 {
		return 0, false
	}
	t := (center.Z() - origin.Z()) / dir.Z()
	if t <= 0 || math32.IsNaN(t) {
		return 0, false
	}
	hit := origin.Add(dir.Mul(t))
	if math32.Abs(hit.X()-center.X()) > scale.X()/2 || math32.Abs(hit.Y()-center.Y()) > scale.Y()/2 {
		return 0, false
	}
	return t, true
}

// PickPlane returns the nearest plane under ndc that is textured and visible.
func PickPlane(cmd *Commands, view camera.View, ndc mgl32.Vec2) (PlaneHit, bool) {
	origin, dir := view.Ray(ndc)

	var best PlaneHit
	found := false
	MakeQuery3[PlaneComponent, TextureComponent, FadeComponent](cmd).Map(
		func(eid EntityId, plane *PlaneComponent, tex *TextureComponent, f *FadeComponent) bool {
			if !tex.Ready() || !f.Visible {
				return true
			}
			t, ok := IntersectPlane(origin, dir, plane.Position, plane.Scale)
			if !ok {
				return true
			}
			if !found || t < best.Distance || (t == best.Distance && eid < best.Entity) {
				best = PlaneHit{Entity: eid, Plane: *plane, Distance: t}
				found = true
			}
			return true
		})
	return best, found
}
