package sequence

import (
	"errors"
	"fmt"
	"math"
	"sort"
)

// NewPlayer constructs a Player with provided hooks.
func NewPlayer(h Hooks) *Player {
	return &Player{
		State: Idle,
		hooks: h,
	}
}

// Load replaces the current timeline. Beats are copied and sorted; the
// player returns to Idle.
func (p *Player) Load(tl Timeline) error {
	if tl.FPS <= 0 || math.IsNaN(tl.FPS) || math.IsInf(tl.FPS, 0) {
		return fmt.Errorf("invalid frame rate %v", tl.FPS)
	}
	if tl.Duration < 0 {
		return errors.New("negative duration")
	}
	switch tl.Policy {
	case "":
		tl.Policy = Window
	case Window, Floor:
	default:
		return fmt.Errorf("unknown policy %q", tl.Policy)
	}
	beats := make([]float64, len(tl.Beats))
	copy(beats, tl.Beats)
	sort.Float64s(beats)
	tl.Beats = beats

	p.tl = tl
	p.State = Idle
	p.fired = 0
	return nil
}

// Start moves to Running.
func (p *Player) Start() {
	if p.State == Running {
		return
	}
	p.State = Running
}

// Stop halts dispatch and resets counters.
func (p *Player) Stop() {
	p.State = Idle
	p.fired = 0
}

// Fired returns how many beats were dispatched since Start.
func (p *Player) Fired() int { return p.fired }

// Timeline returns the loaded timeline.
func (p *Player) Timeline() Timeline { return p.tl }

// Tick dispatches the beats matched by frame and returns how many fired.
// Frames are expected in increasing order but are matched independently.
func (p *Player) Tick(frame int) int {
	if p.State != Running {
		return 0
	}
	matched := p.Matches(frame)
	for _, t := range matched {
		if p.hooks.Beat != nil {
			p.hooks.Beat(t)
		}
	}
	p.fired += len(matched)
	return len(matched)
}

// Matches returns the beats frame would dispatch, without side effects.
func (p *Player) Matches(frame int) []float64 {
	beats := p.tl.Beats
	if len(beats) == 0 {
		return nil
	}
	f := float64(frame)
	fps := p.tl.FPS

	var out []float64
	switch p.tl.Policy {
	case Floor:
		i := sort.Search(len(beats), func(i int) bool { return beats[i]*fps >= f })
		for ; i < len(beats) && math.Floor(beats[i]*fps) == f; i++ {
			out = append(out, beats[i])
		}
	default:
		// Matching in frame units keeps |f - t*fps| < 1 exact at the
		// window edges, where f/fps - t would round either way.
		i := sort.Search(len(beats), func(i int) bool { return beats[i]*fps > f-1 })
		for ; i < len(beats) && beats[i]*fps < f+1; i++ {
			if math.Abs(f-beats[i]*fps) < 1 {
				out = append(out, beats[i])
			}
		}
	}
	return out
}

// Frames returns the total frame count of the loaded timeline.
func (p *Player) Frames() int {
	return FrameCount(p.tl.Duration, p.tl.FPS)
}

// FrameCount is ceil(duration*fps), tolerant of products such as 0.1*30
// that land a hair above an integer.
func FrameCount(duration, fps float64) int {
	if duration <= 0 || fps <= 0 {
		return 0
	}
	return int(math.Ceil(duration*fps - 1e-9))
}
