package infinity

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gekko3d/infinity/camera"
	"github.com/gekko3d/infinity/fade"
)

func visiblePlane(cmd *Commands, plane PlaneComponent) EntityId {
	return cmd.AddEntity(
		plane,
		TextureComponent{TextureSlot: &TextureSlot{ready: true}},
		FadeComponent{State: fade.State{Opacity: 1, Visible: true, DepthWrite: true}},
	)
}

func TestIntersectPlane(t *testing.T) {
	origin := mgl32.Vec3{0, 0, 10}
	forward := mgl32.Vec3{0, 0, -1}
	center := mgl32.Vec3{0, 0, 0}
	scale := mgl32.Vec3{4, 2, 1}

	d, ok := IntersectPlane(origin, forward, center, scale)
	require.True(t, ok)
	assert.InDelta(t, 10, d, 1e-6)

	_, ok = IntersectPlane(origin, mgl32.Vec3{0, 0, 1}, center, scale)
	assert.False(t, ok, "plane behind the ray")

	_, ok = IntersectPlane(origin, mgl32.Vec3{1, 0, 0}, center, scale)
	assert.False(t, ok, "ray parallel to the plane")

	_, ok = IntersectPlane(mgl32.Vec3{1.9, 0, 10}, forward, center, scale)
	assert.True(t, ok, "inside half width")
	_, ok = IntersectPlane(mgl32.Vec3{0, 1.1, 10}, forward, center, scale)
	assert.False(t, ok, "outside half height")
}

func TestPickPlane_NearestReadyVisible(t *testing.T) {
	app := NewApp()
	cmd := app.Commands()
	size := mgl32.Vec3{4, 4, 1}

	visiblePlane(cmd, PlaneComponent{ID: "far", Position: mgl32.Vec3{0, 0, 0}, Scale: size})
	near := visiblePlane(cmd, PlaneComponent{ID: "near", Position: mgl32.Vec3{0, 0, 5}, Scale: size})
	cmd.AddEntity(
		PlaneComponent{ID: "loading", Position: mgl32.Vec3{0, 0, 8}, Scale: size},
		TextureComponent{TextureSlot: &TextureSlot{}},
		FadeComponent{State: fade.State{Opacity: 1, Visible: true}},
	)
	cmd.AddEntity(
		PlaneComponent{ID: "faded", Position: mgl32.Vec3{0, 0, 7}, Scale: size},
		TextureComponent{TextureSlot: &TextureSlot{ready: true}},
		FadeComponent{},
	)
	app.FlushCommands()

	view := camera.View{Position: mgl32.Vec3{0, 0, 10}, FOV: 60, Aspect: 1}
	hit, ok := PickPlane(cmd, view, mgl32.Vec2{0, 0})
	require.True(t, ok)
	assert.Equal(t, near, hit.Entity)
	assert.Equal(t, "near", hit.Plane.ID)
	assert.InDelta(t, 5, hit.Distance, 1e-5)

	_, ok = PickPlane(cmd, view, mgl32.Vec2{1, 1})
	assert.False(t, ok, "corner ray misses every plane")
}

func TestTextureComponent_ReadyIsNilSafe(t *testing.T) {
	assert.False(t, TextureComponent{}.Ready())
	assert.False(t, TextureComponent{TextureSlot: &TextureSlot{}}.Ready())
	assert.True(t, TextureComponent{TextureSlot: &TextureSlot{ready: true}}.Ready())
}

func TestDisplayScale(t *testing.T) {
	generated := mgl32.Vec3{3, 3, 1}

	wide := DisplayScale(generated, MediaItem{URL: "w", Width: 1600, Height: 900})
	assert.InDelta(t, 3*16.0/9.0, wide.X(), 1e-5)
	assert.Equal(t, float32(3), wide.Y())
	assert.Equal(t, float32(1), wide.Z())

	assert.Equal(t, generated, DisplayScale(generated, MediaItem{URL: "unknown"}))
}
