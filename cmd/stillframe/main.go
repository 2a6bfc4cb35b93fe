// Command stillframe simulates a features file up to one frame and saves that
// frame as a PNG, without touching ffmpeg.
package main

import (
	"context"
	"flag"
	"image/png"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/coreman2200/beatfall/internal/analysis"
	"github.com/coreman2200/beatfall/internal/app"
	"github.com/coreman2200/beatfall/internal/config"
	"github.com/coreman2200/beatfall/internal/driver/fake"
)

func main() {
	var (
		featuresPath = flag.String("features", "", "path to a features file (YAML/JSON)")
		configPath   = flag.String("config", "", "optional beatfall.yaml")
		frame        = flag.Int("frame", 0, "frame index to capture")
		pngPath      = flag.String("png", "frame.png", "output PNG path")
	)
	flag.Parse()

	zerolog.TimeFieldFormat = time.RFC3339
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.Kitchen})
	if *featuresPath == "" {
		log.Fatal().Msg("provide -features path to a features file")
	}

	cfg := config.Default()
	if *configPath != "" {
		c, err := config.Load(*configPath)
		if err != nil {
			log.Fatal().Err(err).Str("path", *configPath).Msg("config load failed")
		}
		cfg = c
	}

	w := fake.New(log.Logger)
	w.Capture = *frame
	res, err := app.Run(context.Background(), app.Options{
		// the features file doubles as the input that must exist
		AudioPath:  *featuresPath,
		OutputPath: *pngPath,
		Config:     cfg,
		Provider: clipped{
			Provider: analysis.FileProvider{Path: *featuresPath},
			duration: float64(*frame+1) / cfg.FPS(),
		},
		Open: w.Opener(),
		Log:  log.Logger,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("simulate")
	}
	if w.Captured == nil {
		log.Fatal().Int("frame", *frame).Int("frames", res.Frames).Msg("frame is past the end of the timeline")
	}

	f, err := os.Create(*pngPath)
	if err != nil {
		log.Fatal().Err(err).Msg("create png")
	}
	defer f.Close()
	if err := png.Encode(f, w.Captured); err != nil {
		log.Fatal().Err(err).Msg("encode png")
	}
	log.Info().Int("frame", *frame).Int("balls", res.BallsSpawned).Int("lights", res.EffectsSpawned).Str("png", *pngPath).Msg("saved")
}

// clipped shortens the timeline so the loop stops at the captured frame.
type clipped struct {
	analysis.Provider
	duration float64
}

func (c clipped) Analyze(ctx context.Context, path string) (*analysis.Features, error) {
	f, err := c.Provider.Analyze(ctx, path)
	if err != nil {
		return nil, err
	}
	f.Truncate(c.duration)
	return f, nil
}
