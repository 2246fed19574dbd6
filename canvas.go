package infinity

import (
	"github.com/gekko3d/infinity/texture"
)

const (
	StateLoading State = iota
	StateGallery
	StateClosed
)

// CanvasModule is the infinite media canvas: the gallery plus camera,
// textures, chunk streaming, fading and rendering. The app starts in
// StateLoading and moves to StateGallery once there is media and every
// texture requested so far has arrived.
type CanvasModule struct {
	Config   Config
	Media    []MediaItem
	Loader   texture.Loader
	Renderer Renderer
	// OnProgress receives the texture load percentage as it grows.
	OnProgress func(percent int)
}

func (m CanvasModule) Install(app *App, cmd *Commands) {
	gallery := NewGallery(m.Media)
	cmd.AddResources(gallery)
	app.Logger().Infof("canvas with %d media items", len(gallery.Items))

	for _, mod := range []Module{
		CameraModule{Config: m.Config},
		TextureModule{Config: m.Config, Loader: m.Loader, OnProgress: m.OnProgress, CloseState: StateClosed},
		ChunkModule{Config: m.Config},
		FadeModule{Params: m.Config.FadeParams()},
		RenderModule{Config: m.Config, Renderer: m.Renderer},
	} {
		mod.Install(app, cmd)
	}

	if app.stateful {
		app.UseSystem(System(loadingSystem).InStage(PostUpdate).InState(OnExecute(StateLoading)))
		app.UseSystem(System(func(grid *ChunkGrid, cmd *Commands) {
			cmd.Logger().Infof("gallery ready, %d chunks active", len(grid.Active()))
		}).InStage(PostUpdate).InState(OnEnter(StateGallery)))
	}
}

func loadingSystem(gallery *Gallery, progress *LoadProgress, cmd *Commands) {
	if gallery.Empty() {
		return
	}
	if progress.Percent != progress.reported {
		progress.reported = progress.Percent
		cmd.Logger().Infof("loading %d%%", progress.Percent)
	}
	if progress.Percent >= 100 {
		cmd.ChangeState(StateGallery)
	}
}

// FrameLimitModule moves the app to CloseState after Frames frames.
type FrameLimitModule struct {
	Frames     uint64
	CloseState State
}

func (m FrameLimitModule) Install(app *App, cmd *Commands) {
	if m.Frames == 0 {
		return
	}
	limit, closeState := m.Frames, m.CloseState
	app.UseSystem(System(func(t *Time, cmd *Commands) {
		if t.Frame >= limit {
			cmd.ChangeState(closeState)
		}
	}).InStage(Finale))
}

// NewCanvasApp assembles a stateful canvas app. A nil loader uses the
// configured file/http loader; a nil renderer draws nothing.
func NewCanvasApp(cfg Config, media []MediaItem, loader texture.Loader, renderer Renderer, extra ...Module) *App {
	app := NewApp().UseStates(StateLoading, StateClosed)
	app.UseModules(
		LoggingModule{Prefix: "infinity", Debug: cfg.Log.Debug, File: cfg.Log.File, MaxSizeMB: cfg.Log.MaxSizeMB},
		TimeModule{TargetFPS: cfg.Window.TargetFPS},
		InputModule{},
	)
	app.UseModules(extra...)
	app.UseModules(CanvasModule{Config: cfg, Media: media, Loader: loader, Renderer: renderer})
	return app
}
