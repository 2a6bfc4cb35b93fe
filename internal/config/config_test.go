package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultIsValid(t *testing.T) {
	c := Default()
	require.NoError(t, c.Validate())
	assert.Equal(t, 60.0, c.FPS())
	assert.Len(t, c.Boards, 3)
	assert.Len(t, c.Palette, 7)
	assert.Equal(t, 22050.0, c.Analysis.SampleRate.Hz())
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "beatfall.yaml")
	doc := `
width: 1280
height: 720
frame_rate: 30Hz
spawn: floor
glow:
  duration: 500ms
analysis:
  sample_rate: 44.1kHz
`
	require.NoError(t, os.WriteFile(path, []byte(doc), 0644))

	c, err := Load(path)
	require.NoError(t, err)
	require.NoError(t, c.Validate())

	assert.Equal(t, 1280, c.Width)
	assert.Equal(t, 720, c.Height)
	assert.Equal(t, 30.0, c.FPS())
	assert.Equal(t, SpawnFloor, c.Spawn)
	assert.Equal(t, 500*time.Millisecond, c.Glow.Duration)
	assert.Equal(t, 44100.0, c.Analysis.SampleRate.Hz())
	// untouched keys keep their defaults
	assert.Equal(t, 10.0, c.Ball.Radius)
	assert.Equal(t, "libx264", c.Video.Codec)
}

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.yaml")
	c := Default()
	c.FrameRate = NewRate(24)
	c.Seed = 42
	require.NoError(t, Save(path, c))

	got, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 24.0, got.FPS())
	assert.Equal(t, int64(42), got.Seed)
	assert.Equal(t, c.Boards, got.Boards)
}

func TestRateFlagValue(t *testing.T) {
	var r Rate
	require.NoError(t, r.Set("25Hz"))
	assert.Equal(t, 25.0, r.Hz())
	assert.Error(t, r.Set("fast"))
}

func TestValidateRejects(t *testing.T) {
	cases := map[string]func(c *Config){
		"zero width":     func(c *Config) { c.Width = 0 },
		"zero fps":       func(c *Config) { c.FrameRate = Rate{} },
		"empty palette":  func(c *Config) { c.Palette = nil },
		"bad color":      func(c *Config) { c.Palette = []string{"red"} },
		"unknown policy": func(c *Config) { c.Spawn = "nearest" },
		"no fade":        func(c *Config) { c.Light.Fade = 0 },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			c := Default()
			mutate(c)
			assert.Error(t, c.Validate())
		})
	}
}
