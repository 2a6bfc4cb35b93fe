package sequence

import "testing"

func collect(t *testing.T, tl Timeline, frames int) map[int][]float64 {
	t.Helper()
	got := map[int][]float64{}
	var frame int
	p := NewPlayer(Hooks{Beat: func(b float64) { got[frame] = append(got[frame], b) }})
	if err := p.Load(tl); err != nil {
		t.Fatalf("load: %v", err)
	}
	p.Start()
	for frame = 0; frame < frames; frame++ {
		p.Tick(frame)
	}
	return got
}

func TestWindowFiresOnExactFrame(t *testing.T) {
	got := collect(t, Timeline{Beats: []float64{0.5}, Duration: 1, FPS: 60}, 60)
	if len(got) != 1 || len(got[30]) != 1 {
		t.Fatalf("expected one beat at frame 30, got %v", got)
	}
}

func TestWindowCanDoubleFire(t *testing.T) {
	// 0.1s at 25fps is frame 2.5: both frame 2 and 3 are within one period
	got := collect(t, Timeline{Beats: []float64{0.1}, Duration: 1, FPS: 25}, 25)
	if len(got[2]) != 1 || len(got[3]) != 1 || len(got) != 2 {
		t.Fatalf("expected frames 2 and 3, got %v", got)
	}
}

func TestFloorFiresOnce(t *testing.T) {
	beats := []float64{0.1, 0.5, 0.51, 0.99}
	got := collect(t, Timeline{Beats: beats, Duration: 1, FPS: 25, Policy: Floor}, 25)
	total := 0
	for _, b := range got {
		total += len(b)
	}
	if total != len(beats) {
		t.Fatalf("expected %d dispatches, got %d (%v)", len(beats), total, got)
	}
	if len(got[2]) != 1 || len(got[12]) != 2 || len(got[24]) != 1 {
		t.Fatalf("unexpected frames %v", got)
	}
}

func TestIdlePlayerDoesNothing(t *testing.T) {
	calls := 0
	p := NewPlayer(Hooks{Beat: func(float64) { calls++ }})
	if err := p.Load(Timeline{Beats: []float64{0}, Duration: 1, FPS: 60}); err != nil {
		t.Fatalf("load: %v", err)
	}
	if n := p.Tick(0); n != 0 || calls != 0 {
		t.Fatalf("idle player fired %d", calls)
	}
	if m := p.Matches(0); len(m) != 1 {
		t.Fatalf("matches should not depend on state, got %v", m)
	}
	p.Start()
	p.Tick(0)
	p.Stop()
	p.Tick(0)
	if calls != 1 {
		t.Fatalf("expected 1 call, got %d", calls)
	}
}

func TestLoadRejects(t *testing.T) {
	p := NewPlayer(Hooks{})
	if err := p.Load(Timeline{FPS: 0}); err == nil {
		t.Fatalf("expected error for zero fps")
	}
	if err := p.Load(Timeline{FPS: 60, Policy: "nearest"}); err == nil {
		t.Fatalf("expected error for unknown policy")
	}
}

func TestFrameCount(t *testing.T) {
	cases := []struct {
		d, fps float64
		want   int
	}{
		{1, 60, 60},
		{0.1, 30, 3},
		{1.01, 60, 61},
		{0, 60, 0},
	}
	for _, c := range cases {
		if got := FrameCount(c.d, c.fps); got != c.want {
			t.Fatalf("FrameCount(%v, %v) = %d, want %d", c.d, c.fps, got, c.want)
		}
	}
}
