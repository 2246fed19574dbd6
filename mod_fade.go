package infinity

import (
	"github.com/chewxy/math32"

	"github.com/gekko3d/infinity/fade"
)

type FadeModule struct {
	Params fade.Params
}

func (m FadeModule) Install(app *App, cmd *Commands) {
	params := m.Params
	cmd.AddResources(&params)
	app.UseSystem(System(fadeSystem).InStage(PreRender))
}

// fadeSystem eases every textured plane towards its target opacity. Planes
// still waiting for a texture are left untouched and stay hidden.
func fadeSystem(params *fade.Params, rig *CameraRig, t *Time, cmd *Commands) {
	center := rig.Grid.Chunk
	camZ := rig.Grid.CamZ
	dt := t.Seconds()

	MakeQuery3[PlaneComponent, TextureComponent, FadeComponent](cmd).Map(
		func(_ EntityId, plane *PlaneComponent, tex *TextureComponent, f *FadeComponent) bool {
			if !tex.Ready() {
				return true
			}
			f.Update(*params, plane.Chunk.Distance(center), math32.Abs(plane.Position.Z()-camZ), dt)
			return true
		})
}
