package infinity

import (
	"github.com/go-gl/mathgl/mgl32"
	"github.com/samber/lo"

	"github.com/gekko3d/infinity/chunk"
	"github.com/gekko3d/infinity/fade"
	"github.com/gekko3d/infinity/texture"
)

type ChunkComponent struct {
	Coord chunk.Coord
}

// PlaneComponent is a media plane. Scale is the display scale: the generated
// height with the width following the media's aspect ratio.
type PlaneComponent struct {
	ID       string
	Chunk    chunk.Coord
	Position mgl32.Vec3
	Scale    mgl32.Vec3
	Media    MediaItem
}

// TextureSlot is shared between a plane and its texture callback, which marks
// it ready on the frame the texture is delivered.
type TextureSlot struct {
	Handle *texture.Handle
	ready  bool
}

type TextureComponent struct {
	*TextureSlot
}

func (tc TextureComponent) Ready() bool {
	return tc.TextureSlot != nil && tc.ready
}

type FadeComponent struct {
	fade.State
}

// DisplayScale sizes a plane by the media aspect ratio when it is known.
func DisplayScale(generated mgl32.Vec3, media MediaItem) mgl32.Vec3 {
	if aspect := media.Aspect(); aspect > 0 {
		return mgl32.Vec3{generated.Y() * aspect, generated.Y(), 1}
	}
	return generated
}

type activeChunk struct {
	coord     chunk.Coord
	entity    EntityId
	planes    []EntityId
	populated bool
}

// ChunkGrid owns the active chunk set around the camera. The set is rebuilt
// through a throttle; planes of newly active chunks are generated a few
// chunks per frame, nearest first.
type ChunkGrid struct {
	Size     float32
	Offsets  []chunk.Coord
	Throttle chunk.Throttle
	Timing   chunk.ThrottleConfig
	Cache    *chunk.Cache
	Budget   int

	// Commits counts rebuilds of the active set.
	Commits int

	active      map[chunk.Key]*activeChunk
	order       []chunk.Key
	queue       []chunk.Key
	warnedEmpty bool
}

func NewChunkGrid(cfg Config) *ChunkGrid {
	return &ChunkGrid{
		Size:    cfg.Chunks.Size,
		Offsets: chunk.Offsets(cfg.Chunks.RenderDistance),
		Timing:  cfg.Throttle(),
		Cache:   chunk.NewCache(cfg.Generator(), cfg.Chunks.CacheLimit),
		Budget:  max(cfg.Chunks.PopulateBudget, 1),
		active:  make(map[chunk.Key]*activeChunk),
	}
}

// Active lists the active chunks, nearest to the commit centre first.
func (g *ChunkGrid) Active() []chunk.Coord {
	return lo.Map(g.order, func(k chunk.Key, _ int) chunk.Coord { return g.active[k].coord })
}

func (g *ChunkGrid) IsActive(c chunk.Coord) bool {
	_, ok := g.active[c.Key()]
	return ok
}

func (g *ChunkGrid) Populated(c chunk.Coord) bool {
	ac, ok := g.active[c.Key()]
	return ok && ac.populated
}

// Queued is the number of active chunks still waiting for their planes.
func (g *ChunkGrid) Queued() int {
	return len(g.queue)
}

// commit makes the chunks around center the active set: chunks that left are
// despawned with their planes, new ones are spawned empty and queued.
func (g *ChunkGrid) commit(center chunk.Coord, cmd *Commands) {
	next := chunk.Around(center, g.Offsets)
	nextKeys := lo.Map(next, func(c chunk.Coord, _ int) chunk.Key { return c.Key() })
	removed, added := lo.Difference(g.order, nextKeys)

	for _, k := range removed {
		ac := g.active[k]
		for _, eid := range ac.planes {
			cmd.RemoveEntity(eid)
		}
		cmd.RemoveEntity(ac.entity)
		delete(g.active, k)
	}
	for i, c := range next {
		if _, ok := g.active[nextKeys[i]]; ok {
			continue
		}
		g.active[nextKeys[i]] = &activeChunk{
			coord:  c,
			entity: cmd.AddEntity(ChunkComponent{Coord: c}),
		}
	}

	g.order = nextKeys
	g.queue = lo.Filter(nextKeys, func(k chunk.Key, _ int) bool { return !g.active[k].populated })
	g.Commits++
	cmd.Logger().Debugf("chunks around %s: +%d -%d, %d queued", center, len(added), len(removed), len(g.queue))
}

type ChunkModule struct {
	Config Config
}

func (m ChunkModule) Install(app *App, cmd *Commands) {
	cmd.AddResources(NewChunkGrid(m.Config))
	app.UseSystem(System(chunkCommitSystem).InStage(PostUpdate))
	app.UseSystem(System(chunkPopulateSystem).InStage(PostUpdate))
}

func chunkCommitSystem(grid *ChunkGrid, rig *CameraRig, gallery *Gallery, t *Time, cmd *Commands) {
	if gallery.Empty() {
		if !grid.warnedEmpty {
			grid.warnedEmpty = true
			cmd.Logger().Warnf("media list is empty, nothing to show")
		}
		return
	}

	grid.Throttle.Observe(rig.Grid.Chunk)
	c := rig.Controller
	interval := chunk.ThrottleInterval(c.Zooming(), c.ZoomSpeed(), grid.Timing)
	if center, ok := grid.Throttle.Ready(t.Now, interval); ok {
		grid.commit(center, cmd)
	}
}

func chunkPopulateSystem(grid *ChunkGrid, gallery *Gallery, textures *texture.Manager, cmd *Commands) {
	for done := 0; done < grid.Budget && len(grid.queue) > 0; {
		key := grid.queue[0]
		grid.queue = grid.queue[1:]
		ac, ok := grid.active[key]
		if !ok || ac.populated {
			continue
		}
		done++

		for _, p := range grid.Cache.Planes(ac.coord) {
			media, ok := gallery.At(p.MediaIndex)
			if !ok {
				continue
			}
			slot := &TextureSlot{}
			slot.Handle = textures.Get(media, func(*texture.Handle) { slot.ready = true })
			ac.planes = append(ac.planes, cmd.AddEntity(
				PlaneComponent{
					ID:       p.ID,
					Chunk:    ac.coord,
					Position: p.Position,
					Scale:    DisplayScale(p.Scale, media),
					Media:    media,
				},
				TextureComponent{TextureSlot: slot},
				FadeComponent{},
			))
		}
		ac.populated = true
	}
}
