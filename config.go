package infinity

import (
	"os"
	"time"

	"github.com/lucasb-eyer/go-colorful"
	"github.com/pkg/errors"
	"go.uber.org/multierr"
	"gopkg.in/yaml.v3"

	"github.com/gekko3d/infinity/camera"
	"github.com/gekko3d/infinity/chunk"
	"github.com/gekko3d/infinity/fade"
	"github.com/gekko3d/infinity/texture"
)

type Config struct {
	Camera   CameraConfig  `yaml:"camera"`
	Controls camera.Motion `yaml:"controls"`
	Focus    camera.Focus  `yaml:"focus"`
	Chunks   ChunkConfig   `yaml:"chunks"`
	Fade     FadeConfig    `yaml:"fade"`
	Textures TextureConfig `yaml:"textures"`
	Window   WindowConfig  `yaml:"window"`
	Scene    SceneConfig   `yaml:"scene"`
	Log      LogConfig     `yaml:"log"`
}

type CameraConfig struct {
	FOV      float32 `yaml:"fov"`
	Near     float32 `yaml:"near"`
	Far      float32 `yaml:"far"`
	InitialZ float32 `yaml:"initial_z"`
}

type ChunkConfig struct {
	Size           float32 `yaml:"size"`
	RenderDistance int     `yaml:"render_distance"`
	PlanesPerChunk int     `yaml:"planes_per_chunk"`
	MinScale       float32 `yaml:"min_scale"`
	MaxScale       float32 `yaml:"max_scale"`
	Seed           int64   `yaml:"seed"`
	// CacheLimit caps generated chunk layouts kept in memory; 0 keeps all.
	CacheLimit int `yaml:"cache_limit"`
	// PopulateBudget is how many committed chunks get their planes per frame.
	PopulateBudget int `yaml:"populate_budget"`

	ThrottleIdle    time.Duration `yaml:"throttle_idle"`
	ThrottleZoomMin time.Duration `yaml:"throttle_zoom_min"`
	ThrottleZoomMax time.Duration `yaml:"throttle_zoom_max"`
}

type FadeConfig struct {
	Margin         float32 `yaml:"margin"`
	DepthStart     float32 `yaml:"depth_start"`
	DepthEnd       float32 `yaml:"depth_end"`
	HardCull       float32 `yaml:"hard_cull"`
	InvisibleBelow float32 `yaml:"invisible_below"`
	OpaqueAbove    float32 `yaml:"opaque_above"`
	Lerp           float32 `yaml:"lerp"`
}

type TextureConfig struct {
	// Root resolves relative media URLs on disk.
	Root          string        `yaml:"root"`
	MaxConcurrent int           `yaml:"max_concurrent"`
	MaxSize       int           `yaml:"max_size"`
	Timeout       time.Duration `yaml:"timeout"`
}

type WindowConfig struct {
	Width     int    `yaml:"width"`
	Height    int    `yaml:"height"`
	Title     string `yaml:"title"`
	TargetFPS int    `yaml:"target_fps"`
	// TouchDevice disables pointer drift from the start.
	TouchDevice bool `yaml:"touch_device"`
}

type SceneConfig struct {
	Background string  `yaml:"background"`
	Fog        string  `yaml:"fog"`
	FogNear    float32 `yaml:"fog_near"`
	FogFar     float32 `yaml:"fog_far"`
	ShowFPS    bool    `yaml:"show_fps"`
}

type LogConfig struct {
	Debug     bool   `yaml:"debug"`
	File      string `yaml:"file"`
	MaxSizeMB int    `yaml:"max_size_mb"`
}

func DefaultConfig() Config {
	fp := fade.DefaultParams()
	return Config{
		Camera:   CameraConfig{FOV: 60, Near: 1, Far: 500, InitialZ: 50},
		Controls: camera.DefaultMotion(),
		Focus:    camera.DefaultFocus(),
		Chunks: ChunkConfig{
			Size:            110,
			RenderDistance:  fp.RenderDistance,
			PlanesPerChunk:  5,
			MinScale:        12,
			MaxScale:        22,
			PopulateBudget:  8,
			ThrottleIdle:    100 * time.Millisecond,
			ThrottleZoomMin: 300 * time.Millisecond,
			ThrottleZoomMax: 600 * time.Millisecond,
		},
		Fade: FadeConfig{
			Margin:         fp.FadeMargin,
			DepthStart:     fp.DepthStart,
			DepthEnd:       fp.DepthEnd,
			HardCull:       fp.HardCull,
			InvisibleBelow: fp.InvisibleBelow,
			OpaqueAbove:    fp.OpaqueAbove,
			Lerp:           fp.Lerp,
		},
		Textures: TextureConfig{MaxConcurrent: 6, MaxSize: 2048, Timeout: 30 * time.Second},
		Window:   WindowConfig{Width: 1280, Height: 720, Title: "Infinity"},
		Scene:    SceneConfig{Background: "#ffffff", Fog: "#ffffff", FogNear: 120, FogFar: 320},
		Log:      LogConfig{MaxSizeMB: 10},
	}
}

// LoadConfig reads path over the defaults. A missing file yields the defaults.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return cfg, errors.Wrapf(err, "read config %s", path)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, errors.Wrapf(err, "parse config %s", path)
	}
	return cfg, errors.Wrapf(cfg.Validate(), "config %s", path)
}

// Validate reports every invalid field at once.
func (c Config) Validate() error {
	var err error
	check := func(ok bool, format string, args ...any) {
		if !ok {
			err = multierr.Append(err, errors.Errorf(format, args...))
		}
	}

	check(c.Camera.FOV > 0 && c.Camera.FOV < 180, "camera.fov must be in (0, 180), got %v", c.Camera.FOV)
	check(c.Camera.Near > 0 && c.Camera.Near < c.Camera.Far, "camera.near must be positive and below camera.far")
	check(c.Controls.MaxVelocity > 0, "controls.max_velocity must be positive")
	check(c.Controls.VelocityDecay >= 0 && c.Controls.VelocityDecay <= 1, "controls.velocity_decay must be in [0, 1]")
	check(c.Controls.ScrollDecay >= 0 && c.Controls.ScrollDecay <= 1, "controls.scroll_decay must be in [0, 1]")
	check(c.Focus.Padding > 0, "focus.padding must be positive")
	check(c.Focus.Arrival > 0, "focus.arrival must be positive")
	check(c.Focus.HitWindowMouse >= 0 && c.Focus.HitWindowTouch >= 0, "focus hit windows must not be negative")
	check(c.Chunks.Size > 0, "chunks.size must be positive, got %v", c.Chunks.Size)
	check(c.Chunks.RenderDistance >= 0, "chunks.render_distance must not be negative")
	check(c.Chunks.PlanesPerChunk >= 0, "chunks.planes_per_chunk must not be negative")
	check(c.Chunks.MinScale > 0 && c.Chunks.MinScale <= c.Chunks.MaxScale, "chunks.min_scale must be positive and at most chunks.max_scale")
	check(c.Chunks.CacheLimit >= 0, "chunks.cache_limit must not be negative")
	check(c.Chunks.PopulateBudget > 0, "chunks.populate_budget must be positive")
	check(c.Chunks.ThrottleZoomMin <= c.Chunks.ThrottleZoomMax, "chunks.throttle_zoom_min must not exceed chunks.throttle_zoom_max")
	check(c.Fade.Margin >= 0, "fade.margin must not be negative")
	check(c.Fade.DepthStart < c.Fade.DepthEnd, "fade.depth_start must be below fade.depth_end")
	check(c.Fade.InvisibleBelow < c.Fade.OpaqueAbove, "fade.invisible_below must be below fade.opaque_above")
	check(c.Fade.Lerp > 0 && c.Fade.Lerp <= 1, "fade.lerp must be in (0, 1]")
	check(c.Textures.MaxConcurrent > 0, "textures.max_concurrent must be positive")
	check(c.Textures.MaxSize >= 0, "textures.max_size must not be negative")

	if _, e := colorful.Hex(c.Scene.Background); e != nil {
		err = multierr.Append(err, errors.Wrap(e, "scene.background"))
	}
	if _, e := colorful.Hex(c.Scene.Fog); e != nil {
		err = multierr.Append(err, errors.Wrap(e, "scene.fog"))
	}
	return err
}

func (c Config) CameraConfig() camera.Config {
	return camera.Config{FOV: c.Camera.FOV, InitialZ: c.Camera.InitialZ, Motion: c.Controls, Focus: c.Focus}
}

func (c Config) FadeParams() fade.Params {
	return fade.Params{
		RenderDistance: c.Chunks.RenderDistance,
		FadeMargin:     c.Fade.Margin,
		DepthStart:     c.Fade.DepthStart,
		DepthEnd:       c.Fade.DepthEnd,
		HardCull:       c.Fade.HardCull,
		InvisibleBelow: c.Fade.InvisibleBelow,
		OpaqueAbove:    c.Fade.OpaqueAbove,
		Lerp:           c.Fade.Lerp,
	}
}

func (c Config) Generator() *chunk.Generator {
	return chunk.NewGenerator(c.Chunks.Size, c.Chunks.PlanesPerChunk, c.Chunks.MinScale, c.Chunks.MaxScale, c.Chunks.Seed)
}

func (c Config) Throttle() chunk.ThrottleConfig {
	return chunk.ThrottleConfig{
		Idle:        c.Chunks.ThrottleIdle,
		ZoomMin:     c.Chunks.ThrottleZoomMin,
		ZoomMax:     c.Chunks.ThrottleZoomMax,
		MaxVelocity: c.Controls.MaxVelocity,
	}
}

func (c Config) TextureOptions() texture.Options {
	return texture.Options{MaxConcurrent: c.Textures.MaxConcurrent, MaxTextureSize: c.Textures.MaxSize}
}

// Colors parses the scene colours; invalid values fall back to white.
func (c SceneConfig) Colors() (background, fog colorful.Color) {
	white := colorful.Color{R: 1, G: 1, B: 1}
	background, err := colorful.Hex(c.Background)
	if err != nil {
		background = white
	}
	fog, err = colorful.Hex(c.Fog)
	if err != nil {
		fog = white
	}
	return background, fog
}
