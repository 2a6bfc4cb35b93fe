// Command beatsim prints which frame every beat of a features file spawns on.
package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/coreman2200/beatfall/internal/analysis"
	"github.com/coreman2200/beatfall/internal/config"
	"github.com/coreman2200/beatfall/internal/sequence"
)

func main() {
	var (
		featuresPath string
		spawn        string
		fps          = config.NewRate(60)
	)
	flag.StringVar(&featuresPath, "features", "", "path to a features file (YAML/JSON)")
	flag.StringVar(&spawn, "spawn", config.SpawnWindow, "beat matching: window | floor")
	flag.Var(&fps, "fps", "frame rate, e.g. 60Hz")
	flag.Parse()

	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})
	if featuresPath == "" {
		log.Fatal().Msg("provide -features path to a features file")
	}

	f, err := analysis.LoadFeatures(featuresPath)
	if err != nil {
		log.Fatal().Err(err).Msg("load features")
	}

	fired := map[float64]int{}
	frame := 0
	h := sequence.Hooks{
		Beat: func(t float64) {
			fired[t]++
			fmt.Printf("[frame %05d] t=%.3fs beat=%.4fs\n", frame, float64(frame)/fps.Hz(), t)
		},
	}
	player := sequence.NewPlayer(h)
	if err := player.Load(sequence.Timeline{
		Beats:    f.BeatTimes,
		Duration: f.Duration,
		FPS:      fps.Hz(),
		Policy:   sequence.Policy(spawn),
	}); err != nil {
		log.Fatal().Err(err).Msg("load timeline")
	}
	player.Start()

	total := player.Frames()
	for frame = 0; frame < total; frame++ {
		player.Tick(frame)
	}

	var doubled, missed int
	for _, b := range f.BeatTimes {
		switch fired[b] {
		case 0:
			missed++
		case 1:
		default:
			doubled++
		}
	}
	fmt.Printf("frames=%d beats=%d spawns=%d doubled=%d missed=%d\n",
		total, len(f.BeatTimes), player.Fired(), doubled, missed)
}
