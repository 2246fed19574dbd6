package infinity

import (
	"net/http"

	"github.com/gekko3d/infinity/texture"
)

// LoadProgress mirrors the texture manager's percentage for the frame loop.
type LoadProgress struct {
	Percent int

	reported int
}

// TextureModule installs a texture.Manager. Completed loads are delivered in
// PreUpdate so planes see their textures on the frame loop only.
type TextureModule struct {
	Config     Config
	Loader     texture.Loader
	OnProgress func(percent int)
	// CloseState, when the app is stateful, shuts the manager down on exit.
	CloseState State
}

// DefaultLoader reads relative URLs under root and fetches http(s) URLs.
func DefaultLoader(cfg TextureConfig) texture.Loader {
	return texture.AutoLoader{
		Files: texture.FileLoader{Root: cfg.Root},
		HTTP:  texture.HTTPLoader{Client: &http.Client{Timeout: cfg.Timeout}},
	}
}

func (m TextureModule) Install(app *App, cmd *Commands) {
	loader := m.Loader
	if loader == nil {
		loader = DefaultLoader(m.Config.Textures)
	}

	progress := &LoadProgress{}
	onProgress := m.OnProgress
	opts := m.Config.TextureOptions()
	opts.Logger = app.Logger()
	opts.OnProgress = func(percent int) {
		progress.Percent = percent
		if onProgress != nil {
			onProgress(percent)
		}
	}
	manager := texture.NewManager(loader, opts)
	cmd.AddResources(manager, progress)

	app.UseSystem(System(textureDispatchSystem).InStage(PreUpdate).RunAlways())
	if app.stateful {
		app.UseSystem(System(func(tm *texture.Manager) { tm.Close() }).
			InStage(Finale).
			InState(OnExit(m.CloseState)))
	}
}

func textureDispatchSystem(m *texture.Manager) {
	m.Dispatch()
}
