package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	colorful "github.com/lucasb-eyer/go-colorful"
	"gopkg.in/yaml.v3"
	"periph.io/x/conn/v3/physic"
)

// Spawn policies for matching beat timestamps to frames.
const (
	SpawnWindow = "window" // |frame - beat*fps| < 1, may double-fire or skip
	SpawnFloor  = "floor"  // each beat fires once at floor(beat*fps)
)

// Rate is a frequency written as "60Hz" or "22.05kHz" in YAML and on the command line.
type Rate struct{ physic.Frequency }

// Hz returns the rate as a float in Hertz.
func (r Rate) Hz() float64 { return float64(r.Frequency) / float64(physic.Hertz) }

func (r *Rate) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	return r.Set(s)
}

func (r Rate) MarshalYAML() (interface{}, error) { return r.String(), nil }

// NewRate builds a Rate from whole Hertz.
func NewRate(hz int) Rate { return Rate{physic.Frequency(hz) * physic.Hertz} }

type Ball struct {
	Radius      float64 `yaml:"radius"`
	Mass        float64 `yaml:"mass"`
	Restitution float64 `yaml:"restitution"`
	Friction    float64 `yaml:"friction"`
	Color       string  `yaml:"color"`
}

type Board struct {
	HalfLength    float64 `yaml:"half_length"`
	HalfThickness float64 `yaml:"half_thickness"`
	Restitution   float64 `yaml:"restitution"`
	Friction      float64 `yaml:"friction"`
	LineWidth     float64 `yaml:"line_width"`
}

// Placement positions a board as fractions of the frame size.
type Placement struct {
	X     float64 `yaml:"x"`
	Y     float64 `yaml:"y"`
	Angle float64 `yaml:"angle"` // radians
}

type Light struct {
	MaxRadius float64 `yaml:"max_radius"`
	Growth    float64 `yaml:"growth"` // radius units per frame
	Fade      int     `yaml:"fade"`   // opacity units per frame
}

type Glow struct {
	Duration time.Duration `yaml:"duration"`
	Ease     string        `yaml:"ease"`
	Max      float64       `yaml:"max"` // max blend toward white, 0..1
}

type Analysis struct {
	SampleRate Rate    `yaml:"sample_rate"`
	NFFT       int     `yaml:"n_fft"`
	HopLength  int     `yaml:"hop_length"`
	StartBPM   float64 `yaml:"start_bpm"`
	Tightness  float64 `yaml:"tightness"`
}

type Video struct {
	Codec       string `yaml:"codec"`
	AudioCodec  string `yaml:"audio_codec"`
	FFmpeg      string `yaml:"ffmpeg"`
	FFprobe     string `yaml:"ffprobe"`
	PixelFormat string `yaml:"pixel_format"`
}

type Config struct {
	Width      int     `yaml:"width"`
	Height     int     `yaml:"height"`
	FrameRate  Rate    `yaml:"frame_rate"`
	Seed       int64   `yaml:"seed"`
	Spawn      string  `yaml:"spawn"`
	Gravity    float64 `yaml:"gravity"`
	Background string  `yaml:"background"`

	Ball    Ball        `yaml:"ball"`
	Board   Board       `yaml:"board"`
	Boards  []Placement `yaml:"boards"`
	Palette []string    `yaml:"palette"`
	Light   Light       `yaml:"light"`
	Glow    Glow        `yaml:"glow"`

	Analysis Analysis `yaml:"analysis"`
	Video    Video    `yaml:"video"`

	Monitor string `yaml:"monitor,omitempty"` // progress monitor listen address
}

// Default returns the stock scene: three ramps on a 1080p canvas at 60 fps.
func Default() *Config {
	return &Config{
		Width:      1920,
		Height:     1080,
		FrameRate:  NewRate(60),
		Seed:       1,
		Spawn:      SpawnWindow,
		Gravity:    900,
		Background: "#1a1a1a",
		Ball: Ball{
			Radius:      10,
			Mass:        1,
			Restitution: 0.95,
			Friction:    0.5,
			Color:       "#ffffff",
		},
		Board: Board{
			HalfLength:    100,
			HalfThickness: 10,
			Restitution:   0.8,
			Friction:      0.5,
			LineWidth:     10,
		},
		Boards: []Placement{
			{X: 0.25, Y: 1.0 / 3, Angle: -0.2},
			{X: 0.5, Y: 0.5, Angle: 0.1},
			{X: 0.75, Y: 2.0 / 3, Angle: 0.3},
		},
		Palette: []string{
			"#ff3b30", // red
			"#ff9500", // orange
			"#ffcc00", // yellow
			"#4cd964", // green
			"#5856d6", // indigo
			"#007aff", // blue
			"#ff69b4", // pink
		},
		Light: Light{MaxRadius: 100, Growth: 2, Fade: 5},
		Glow:  Glow{Duration: 250 * time.Millisecond, Ease: "outQuad", Max: 0.5},
		Analysis: Analysis{
			SampleRate: Rate{22050 * physic.Hertz},
			NFFT:       2048,
			HopLength:  512,
			StartBPM:   120,
			Tightness:  100,
		},
		Video: Video{
			Codec:       "libx264",
			AudioCodec:  "aac",
			FFmpeg:      "ffmpeg",
			FFprobe:     "ffprobe",
			PixelFormat: "yuv420p",
		},
	}
}

// FPS returns the frame rate in frames per second.
func (c *Config) FPS() float64 { return c.FrameRate.Hz() }

// Validate reports the first setting that cannot drive a render.
func (c *Config) Validate() error {
	switch {
	case c.Width <= 0 || c.Height <= 0:
		return fmt.Errorf("invalid frame size %dx%d", c.Width, c.Height)
	case c.FrameRate.Frequency <= 0:
		return fmt.Errorf("invalid frame rate %s", c.FrameRate)
	case c.Ball.Radius <= 0 || c.Ball.Mass <= 0:
		return errors.New("ball radius and mass must be positive")
	case c.Board.HalfLength <= 0 || c.Board.HalfThickness < 0:
		return errors.New("invalid board dimensions")
	case len(c.Palette) == 0:
		return errors.New("palette is empty")
	case c.Light.Fade <= 0:
		return errors.New("light fade must be positive")
	case c.Spawn != SpawnWindow && c.Spawn != SpawnFloor:
		return fmt.Errorf("unknown spawn policy %q", c.Spawn)
	case c.Analysis.SampleRate.Frequency <= 0 || c.Analysis.NFFT <= 0 || c.Analysis.HopLength <= 0:
		return errors.New("invalid analysis settings")
	}
	for _, s := range append([]string{c.Background, c.Ball.Color}, c.Palette...) {
		if _, err := colorful.Hex(s); err != nil {
			return fmt.Errorf("color %q: %w", s, err)
		}
	}
	return nil
}

// Load reads a YAML file over the defaults.
func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	c := Default()
	if err := yaml.Unmarshal(b, c); err != nil {
		return nil, err
	}
	return c, nil
}

func Save(path string, c *Config) error {
	b, err := yaml.Marshal(c)
	if err != nil {
		return err
	}
	return os.WriteFile(path, b, 0644)
}
