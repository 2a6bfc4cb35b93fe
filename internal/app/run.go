package app

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"os"
	"time"

	"github.com/rs/zerolog"

	"github.com/coreman2200/beatfall/internal/analysis"
	"github.com/coreman2200/beatfall/internal/config"
	"github.com/coreman2200/beatfall/internal/diagnostics"
	"github.com/coreman2200/beatfall/internal/physics"
	"github.com/coreman2200/beatfall/internal/render"
	"github.com/coreman2200/beatfall/internal/scene"
	"github.com/coreman2200/beatfall/internal/sequence"
	"github.com/coreman2200/beatfall/internal/video"
)

// DiagSink is implemented by observers that also collect diagnostics.
type DiagSink interface {
	PushDiag(d diagnostics.Diagnostic)
}

type Options struct {
	AudioPath  string
	OutputPath string
	Config     *config.Config
	Provider   analysis.Provider
	Open       video.Opener
	Muxer      video.Muxer // nil skips muxing
	// World builds the physics backend; nil uses a Chipmunk space.
	World    func(c *config.Config) physics.World
	Observer Observer
	Log      zerolog.Logger
}

type Result struct {
	Frames         int
	VideoPath      string
	OutputPath     string
	Tempo          float64
	Beats          int
	BallsSpawned   int
	EffectsSpawned int
	Elapsed        time.Duration
}

// NewWorld builds the Chipmunk-backed world for c.
func NewWorld(c *config.Config) physics.World {
	return physics.NewSpace(c.Gravity, physics.BallSpec{
		Radius:      c.Ball.Radius,
		Mass:        c.Ball.Mass,
		Restitution: c.Ball.Restitution,
		Friction:    c.Ball.Friction,
	})
}

// Run renders the audio at opts.AudioPath into opts.OutputPath and muxes the
// soundtrack back in. ctx reaches the encoder and muxer subprocesses only.
func Run(ctx context.Context, opts Options) (Result, error) {
	start := time.Now()
	log := opts.Log
	var res Result

	if _, err := os.Stat(opts.AudioPath); err != nil {
		return res, fail(ErrMissingInput, "stat audio", err)
	}
	cfg := opts.Config
	if cfg == nil {
		cfg = config.Default()
	}
	if err := cfg.Validate(); err != nil {
		return res, fmt.Errorf("config: %w", err)
	}
	if opts.Provider == nil || opts.Open == nil {
		return res, errors.New("provider and writer are required")
	}

	feats, err := opts.Provider.Analyze(ctx, opts.AudioPath)
	if err != nil {
		return res, fail(ErrFeatureExtraction, "analyze", err)
	}
	if feats == nil {
		return res, fail(ErrFeatureExtraction, "analyze", errors.New("no features"))
	}
	feats.Normalize()
	if err := feats.Validate(); err != nil {
		return res, fail(ErrFeatureExtraction, "validate features", err)
	}
	res.Tempo = feats.Tempo

	newWorld := opts.World
	if newWorld == nil {
		newWorld = NewWorld
	}
	rng := rand.New(rand.NewSource(cfg.Seed))
	sc, err := scene.New(cfg, newWorld(cfg), rng)
	if err != nil {
		return res, fmt.Errorf("scene: %w", err)
	}
	eng, err := render.NewEngine(cfg.Width, cfg.Height)
	if err != nil {
		return res, fmt.Errorf("renderer: %w", err)
	}

	out, err := opts.Open(ctx, opts.OutputPath, cfg.Width, cfg.Height, cfg.FPS())
	if err != nil {
		return res, fail(ErrEncoding, "open writer", err)
	}
	cond := NewConductor(eng, sc, out, rng, cfg.Width)
	cond.Obs = opts.Observer
	cond.Log = log
	total, err := cond.Load(sequence.Timeline{
		Beats:    feats.BeatTimes,
		Duration: feats.Duration,
		FPS:      cfg.FPS(),
		Policy:   sequence.Policy(cfg.Spawn),
	})
	if err != nil {
		if cerr := out.Close(); cerr != nil {
			log.Debug().Err(cerr).Msg("close after timeline error")
		}
		return res, fmt.Errorf("timeline: %w", err)
	}
	log.Info().
		Int("frames", total).
		Float64("fps", cfg.FPS()).
		Float64("duration_s", feats.Duration).
		Int("beats", len(feats.BeatTimes)).
		Float64("tempo", feats.Tempo).
		Msg("rendering")

	err = cond.Run(total)
	res.Frames = total
	res.VideoPath = opts.OutputPath
	res.Beats = cond.Beats()
	res.BallsSpawned = sc.BallsSpawned()
	res.EffectsSpawned = sc.EffectsSpawned()
	if err != nil {
		return res, err
	}

	if opts.Muxer != nil {
		muxed, err := opts.Muxer.Mux(ctx, opts.OutputPath, opts.AudioPath)
		if err != nil {
			var me *video.MuxError
			if errors.As(err, &me) {
				d := me.Diagnostic()
				d.Log(log)
				if sink, ok := opts.Observer.(DiagSink); ok {
					sink.PushDiag(d)
				}
			}
			return res, fail(ErrMuxing, "mux", err)
		}
		res.OutputPath = muxed
	}
	res.Elapsed = time.Since(start)
	return res, nil
}
