package effects

import (
	"testing"

	colorful "github.com/lucasb-eyer/go-colorful"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var defaults = Params{MaxRadius: 100, Growth: 2, Fade: 5}

func TestLightLifetime(t *testing.T) {
	p := NewPool(defaults)
	p.Spawn(Point{X: 500, Y: 500}, colorful.Color{R: 1})

	prev := MaxOpacity
	for i := 1; i <= 50; i++ {
		p.AdvanceAll()
		require.Equal(t, 1, p.Len(), "advance %d", i)
		l := p.Effects()[0]
		assert.Equal(t, MaxOpacity-5*i, l.Opacity)
		assert.Less(t, l.Opacity, prev)
		prev = l.Opacity
	}
	l := p.Effects()[0]
	assert.Equal(t, 5, l.Opacity)
	assert.Equal(t, 100.0, l.Radius)

	p.AdvanceAll()
	assert.Equal(t, 0, p.Len())
}

func TestRadiusClampsAtMax(t *testing.T) {
	p := NewPool(Params{MaxRadius: 7, Growth: 2, Fade: 1})
	p.Spawn(Point{}, colorful.Color{})
	for i := 0; i < 10; i++ {
		p.AdvanceAll()
	}
	assert.Equal(t, 7.0, p.Effects()[0].Radius)
}

func TestSurvivorsKeepSpawnOrder(t *testing.T) {
	p := NewPool(defaults)
	p.Spawn(Point{X: 1}, colorful.Color{})
	for i := 0; i < 25; i++ {
		p.AdvanceAll()
	}
	p.Spawn(Point{X: 2}, colorful.Color{})
	p.Spawn(Point{X: 3}, colorful.Color{})
	for i := 0; i < 26; i++ {
		p.AdvanceAll()
	}

	got := p.Effects()
	require.Len(t, got, 2)
	assert.Equal(t, 2.0, got[0].Origin.X)
	assert.Equal(t, 3.0, got[1].Origin.X)
	assert.InDelta(t, 255.0-26*5, got[0].Alpha()*255, 1e-9)
}

func TestEffectsIsACopy(t *testing.T) {
	p := NewPool(defaults)
	p.Spawn(Point{}, colorful.Color{})
	p.Effects()[0].Opacity = 1
	assert.Equal(t, MaxOpacity, p.Effects()[0].Opacity)
}
