package scene

import (
	"fmt"
	"time"

	"github.com/tanema/gween"
	"github.com/tanema/gween/ease"
)

var easings = map[string]ease.TweenFunc{
	"linear":    ease.Linear,
	"inQuad":    ease.InQuad,
	"outQuad":   ease.OutQuad,
	"inOutQuad": ease.InOutQuad,
	"outCubic":  ease.OutCubic,
	"outSine":   ease.OutSine,
	"outExpo":   ease.OutExpo,
	"outBounce": ease.OutBounce,
}

// Easing looks up a named easing curve.
func Easing(name string) (ease.TweenFunc, error) {
	fn, ok := easings[name]
	if !ok {
		return nil, fmt.Errorf("unknown easing %q", name)
	}
	return fn, nil
}

// glow fades a board highlight from 1 to 0 after each hit.
type glow struct {
	tween  *gween.Tween
	level  float64
	active bool
}

func newGlow(d time.Duration, fn ease.TweenFunc) *glow {
	return &glow{tween: gween.New(1, 0, float32(d.Seconds()), fn)}
}

func (g *glow) hit() {
	g.tween.Reset()
	g.level = 1
	g.active = true
}

func (g *glow) update(dt float64) {
	if !g.active {
		return
	}
	v, done := g.tween.Update(float32(dt))
	g.level = float64(v)
	if done {
		g.level = 0
		g.active = false
	}
}
