package sequence

// Policy selects how beat timestamps map onto frames.
type Policy string

const (
	// Window fires a beat on every frame within one frame period of it.
	// A beat that falls between two frames fires on both.
	Window Policy = "window"
	// Floor fires each beat exactly once, at floor(t*fps).
	Floor Policy = "floor"
)

// Timeline is the beat program a Player dispatches: sorted beat times in
// seconds, the frame rate they are matched against, and the run length.
type Timeline struct {
	Beats    []float64 `json:"beats" yaml:"beats"`
	Duration float64   `json:"duration" yaml:"duration"`
	FPS      float64   `json:"fps" yaml:"fps"`
	Policy   Policy    `json:"policy,omitempty" yaml:"policy,omitempty"`
}

// PlayerState enumerates player states.
type PlayerState string

const (
	Idle    PlayerState = "idle"
	Running PlayerState = "running"
)

// Hooks are dependency-injected callbacks into the scene.
type Hooks struct {
	// Beat is called once per beat matched on the ticked frame.
	Beat func(t float64)
}

// Player owns the current Timeline and uses Hooks to drive the scene.
type Player struct {
	State PlayerState

	tl    Timeline
	fired int // total Beat calls since Start

	hooks Hooks
}
