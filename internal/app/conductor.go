package app

import (
	"math/rand"

	"github.com/rs/zerolog"

	"github.com/coreman2200/beatfall/internal/render"
	"github.com/coreman2200/beatfall/internal/scene"
	"github.com/coreman2200/beatfall/internal/sequence"
	"github.com/coreman2200/beatfall/internal/video"
	"github.com/coreman2200/beatfall/internal/ws"
)

// Observer receives a progress report after each emitted frame.
type Observer interface {
	Publish(p ws.Progress)
}

// Conductor runs the frame loop: beats spawn balls, physics steps, contacts
// light boards, fallen balls are culled, effects age, then the frame is
// drawn and emitted.
type Conductor struct {
	Eng   *render.Engine
	Scene *scene.Scene
	Seq   *sequence.Player
	Out   video.Writer
	Obs   Observer
	Log   zerolog.Logger

	rng   *rand.Rand
	width float64
	fps   float64
	beats int
}

func NewConductor(eng *render.Engine, sc *scene.Scene, out video.Writer, rng *rand.Rand, width int) *Conductor {
	c := &Conductor{Eng: eng, Scene: sc, Out: out, rng: rng, width: float64(width), Log: zerolog.Nop()}
	hooks := sequence.Hooks{
		Beat: func(t float64) {
			c.beats++
			h := sc.SpawnBall(c.rng.Float64() * c.width)
			c.Log.Debug().Float64("beat", t).Int("ball", int(h)).Msg("spawn")
		},
	}
	c.Seq = sequence.NewPlayer(hooks)
	return c
}

// Load installs the beat timeline and returns the number of frames to run.
func (c *Conductor) Load(tl sequence.Timeline) (int, error) {
	if err := c.Seq.Load(tl); err != nil {
		return 0, err
	}
	c.fps = tl.FPS
	return c.Seq.Frames(), nil
}

// Frame advances the scene by one frame and emits it.
func (c *Conductor) Frame(i int) error {
	dt := 1 / c.fps
	c.Scene.SetFrame(i)

	c.Seq.Tick(i)
	if err := c.Scene.Step(dt); err != nil {
		return fail(ErrSimulation, "physics step", err)
	}
	c.Scene.Contact()
	c.Scene.Cleanup()
	c.Scene.Advance(dt)

	img := c.Eng.RenderOnce(c.Scene.Snapshot())
	if err := c.Out.Append(img); err != nil {
		return fail(ErrEncoding, "append frame", err)
	}
	return nil
}

// Run emits frames [0, total) then closes the writer.
func (c *Conductor) Run(total int) error {
	c.Seq.Start()
	defer c.Seq.Stop()

	every := int(c.fps)
	if every < 1 {
		every = 1
	}
	for i := 0; i < total; i++ {
		if err := c.Frame(i); err != nil {
			if cerr := c.Out.Close(); cerr != nil {
				c.Log.Debug().Err(cerr).Int("frame", i).Msg("close after frame error")
			}
			return err
		}
		if c.Obs != nil {
			c.Obs.Publish(c.progress(i, total))
		}
		if i%every == 0 {
			c.Log.Info().
				Int("frame", i).
				Int("total", total).
				Int("balls", len(c.Scene.World.Balls())).
				Int("effects", c.Scene.Lights.Len()).
				Msg("progress")
		}
	}
	if err := c.Out.Close(); err != nil {
		return fail(ErrEncoding, "close writer", err)
	}
	return nil
}

// Beats returns how many beats spawned a ball.
func (c *Conductor) Beats() int { return c.beats }

func (c *Conductor) progress(i, total int) ws.Progress {
	return ws.Progress{
		Frame:    i,
		Total:    total,
		Balls:    len(c.Scene.World.Balls()),
		Effects:  c.Scene.Lights.Len(),
		Beats:    c.beats,
		RenderMS: c.Eng.Last.RenderMS,
	}
}
