package infinity

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/multierr"

	"github.com/gekko3d/infinity/fade"
)

func TestDefaultConfig_IsValid(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, cfg.Validate())

	assert.Equal(t, float32(110), cfg.Chunks.Size)
	assert.Equal(t, 2, cfg.Chunks.RenderDistance)
	assert.Equal(t, 5, cfg.Chunks.PlanesPerChunk)
	assert.Equal(t, float32(60), cfg.Camera.FOV)
	assert.Equal(t, float32(50), cfg.Camera.InitialZ)
	assert.Equal(t, 100*time.Millisecond, cfg.Chunks.ThrottleIdle)

	if diff := cmp.Diff(fade.DefaultParams(), cfg.FadeParams()); diff != "" {
		t.Errorf("fade params differ from the fade defaults (-want +got):\n%s", diff)
	}
}

func TestConfig_ValidateReportsEveryProblem(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Camera.FOV = 0
	cfg.Chunks.Size = -1
	cfg.Fade.Lerp = 2
	cfg.Scene.Background = "not a colour"

	err := cfg.Validate()
	require.Error(t, err)
	errs := multierr.Errors(err)
	assert.Len(t, errs, 4)
	assert.Contains(t, err.Error(), "camera.fov")
	assert.Contains(t, err.Error(), "chunks.size")
	assert.Contains(t, err.Error(), "fade.lerp")
	assert.Contains(t, err.Error(), "scene.background")
}

func TestLoadConfig_OverlaysDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "infinity.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
chunks:
  size: 20
  seed: 42
  throttle_idle: 150ms
controls:
  max_velocity: 5
scene:
  background: "#000000"
`), 0o644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, float32(20), cfg.Chunks.Size)
	assert.Equal(t, int64(42), cfg.Chunks.Seed)
	assert.Equal(t, 150*time.Millisecond, cfg.Chunks.ThrottleIdle)
	assert.Equal(t, float32(5), cfg.Controls.MaxVelocity)
	assert.Equal(t, float32(5), cfg.Throttle().MaxVelocity)
	assert.Equal(t, 2, cfg.Chunks.RenderDistance, "unset values keep their defaults")
	assert.Equal(t, DefaultConfig().Focus, cfg.Focus)

	background, fog := cfg.Scene.Colors()
	assert.Equal(t, 0.0, background.R)
	assert.Equal(t, 1.0, fog.R)
}

func TestLoadConfig_MissingFileGivesDefaults(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)

	cfg, err = LoadConfig("")
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestLoadConfig_Invalid(t *testing.T) {
	dir := t.TempDir()

	broken := filepath.Join(dir, "broken.yaml")
	require.NoError(t, os.WriteFile(broken, []byte("chunks: [1, 2"), 0o644))
	_, err := LoadConfig(broken)
	assert.Error(t, err)

	invalid := filepath.Join(dir, "invalid.yaml")
	require.NoError(t, os.WriteFile(invalid, []byte("chunks:\n  min_scale: 30\n"), 0o644))
	_, err = LoadConfig(invalid)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "chunks.min_scale")
}

func TestSceneColors_FallBackToWhite(t *testing.T) {
	background, fog := SceneConfig{Background: "bogus", Fog: "#ff0000"}.Colors()
	assert.Equal(t, 1.0, background.R)
	assert.Equal(t, 1.0, background.B)
	assert.Equal(t, 1.0, fog.R)
	assert.Equal(t, 0.0, fog.G)
}
