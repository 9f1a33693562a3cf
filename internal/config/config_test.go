package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, 100, cfg.Render.IntervalMs)
	assert.True(t, cfg.Logging.Development)
	require.Len(t, cfg.Bundles, 2)
	assert.Equal(t, "client", cfg.Bundles[0].Name)
	assert.True(t, cfg.Bundles[0].CompiledIn)
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "buildbar.yaml")
	body := `
render:
  interval_ms: 50
bundles:
  - name: web
    color: "#ff8800"
    profile: true
`
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 50, cfg.Render.IntervalMs)
	require.Len(t, cfg.Bundles, 1)
	assert.Equal(t, "web", cfg.Bundles[0].Name)
	assert.Equal(t, "#ff8800", cfg.Bundles[0].Color)
	assert.True(t, cfg.Bundles[0].Profile)
}

func TestValidateRejections(t *testing.T) {
	base := func() Config {
		return Config{
			Render:  RenderConfig{IntervalMs: 100},
			Demo:    DemoConfig{Steps: 10},
			Bundles: []BundleConfig{{Name: "client"}},
		}
	}

	cfg := base()
	cfg.Render.IntervalMs = 0
	require.Error(t, cfg.Validate())

	cfg = base()
	cfg.Bundles = nil
	require.Error(t, cfg.Validate())

	cfg = base()
	cfg.Bundles = []BundleConfig{{Name: "a"}, {Name: "a"}}
	require.Error(t, cfg.Validate())

	cfg = base()
	cfg.Bundles[0].Name = ""
	require.Error(t, cfg.Validate())

	require.NoError(t, base().Validate())
}
