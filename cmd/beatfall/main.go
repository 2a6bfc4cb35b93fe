package main

import (
	"context"
	"errors"
	"flag"
	"io/fs"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/coreman2200/beatfall/internal/analysis"
	"github.com/coreman2200/beatfall/internal/app"
	"github.com/coreman2200/beatfall/internal/config"
	"github.com/coreman2200/beatfall/internal/driver/fake"
	"github.com/coreman2200/beatfall/internal/video"
	"github.com/coreman2200/beatfall/internal/ws"
)

const defaultConfig = "beatfall.yaml"

func main() {
	// ---- Flags (explicit flags win over beatfall.yaml) ----
	var (
		audioPath    = flag.String("audio", "", "input audio file")
		outPath      = flag.String("out", "video.mp4", "intermediate video path; the muxed file gets _with_audio")
		configPath   = flag.String("config", defaultConfig, "path to beatfall.yaml")
		featuresPath = flag.String("features", "", "precomputed features (YAML/JSON) instead of analysing the audio")
		seed         = flag.Int64("seed", 1, "random seed for board colours and spawn positions")
		spawn        = flag.String("spawn", config.SpawnWindow, "beat matching: window | floor")
		dryRun       = flag.Bool("dry-run", false, "simulate and render without ffmpeg")
		monitorAddr  = flag.String("monitor", "", "serve progress on this address (e.g. :8080)")
		verbose      = flag.Bool("v", false, "per-frame debug logging")
		fps          config.Rate
	)
	flag.Var(&fps, "fps", "frame rate, e.g. 60Hz")
	flag.Parse()

	// ---- Logging ----
	zerolog.TimeFieldFormat = time.RFC3339
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.Kitchen})
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	if *verbose {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}
	run := uuid.NewString()
	logger := log.Logger.With().Str("run", run).Logger()

	if *audioPath == "" {
		logger.Fatal().Msg("provide -audio path to a music file")
	}

	// ---- Load beatfall.yaml (optional unless named explicitly) ----
	cfg, err := config.Load(*configPath)
	switch {
	case err == nil:
	case errors.Is(err, fs.ErrNotExist) && !isSet("config"):
		logger.Debug().Str("path", *configPath).Msg("no config file; using defaults")
		cfg = config.Default()
	default:
		logger.Fatal().Err(err).Str("path", *configPath).Msg("config load failed")
	}

	// ---- Effective params (flags passed on the command line override config) ----
	if isSet("fps") {
		cfg.FrameRate = fps
	}
	if isSet("seed") {
		cfg.Seed = *seed
	}
	if isSet("spawn") {
		cfg.Spawn = *spawn
	}
	if isSet("monitor") {
		cfg.Monitor = *monitorAddr
	}
	if err := cfg.Validate(); err != nil {
		logger.Fatal().Err(err).Msg("invalid configuration")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	ff := video.FromConfig(cfg.Video, logger)
	opts := app.Options{
		AudioPath:  *audioPath,
		OutputPath: *outPath,
		Config:     cfg,
		Provider:   analysis.NewAnalyzer(cfg.Analysis, cfg.Video.FFmpeg, logger),
		Open:       ff.Open,
		Muxer:      ff,
		Log:        logger,
	}
	if *featuresPath != "" {
		opts.Provider = analysis.FileProvider{Path: *featuresPath}
	}
	if *dryRun {
		opts.Open = fake.New(logger).Opener()
		opts.Muxer = nil
	}

	// ---- Progress monitor ----
	if cfg.Monitor != "" {
		mon := ws.NewMonitor(run, logger)
		opts.Observer = mon
		srv := &http.Server{
			Addr:         cfg.Monitor,
			Handler:      withCORS(mon.Handler()),
			ReadTimeout:  5 * time.Second,
			WriteTimeout: 10 * time.Second,
			IdleTimeout:  60 * time.Second,
		}
		go func() {
			logger.Info().Str("addr", cfg.Monitor).Msg("monitor starting")
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				logger.Error().Err(err).Msg("monitor server crashed")
			}
		}()
		defer srv.Close()
	}

	res, err := app.Run(ctx, opts)
	if err != nil {
		logger.Fatal().Err(err).Int("frames", res.Frames).Msg("render failed")
	}
	logger.Info().
		Int("frames", res.Frames).
		Int("balls", res.BallsSpawned).
		Int("lights", res.EffectsSpawned).
		Float64("tempo", res.Tempo).
		Str("video", res.VideoPath).
		Str("output", res.OutputPath).
		Dur("took", res.Elapsed).
		Msg("done")
}

func isSet(name string) bool {
	set := false
	flag.Visit(func(f *flag.Flag) {
		if f.Name == name {
			set = true
		}
	})
	return set
}

func withCORS(h http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == "OPTIONS" {
			w.WriteHeader(200)
			return
		}
		h.ServeHTTP(w, r)
	})
}
