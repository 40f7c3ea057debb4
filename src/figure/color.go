package figure

import (
	"image/color"
	"math"

	"github.com/jinjor/lissa-juice/src/smooth"
)

// fast next to the audio decays: it only has to look smooth at frame rate
const colorDecay = 0.92

// Color is the smoothed drawing colour, ticked once per frame.
type Color struct {
	r, g, b *smooth.Value
}

// NewColor returns a colour fading in from black towards (r, g, b).
func NewColor(r, g, b uint8) *Color {
	return &Color{
		r: smooth.New(float64(r), colorDecay),
		g: smooth.New(float64(g), colorDecay),
		b: smooth.New(float64(b), colorDecay),
	}
}

// Set changes the target colour. Safe to call from any goroutine.
func (c *Color) Set(r, g, b uint8) {
	c.r.Set(float64(r))
	c.g.Set(float64(g))
	c.b.Set(float64(b))
}

// Target returns the colour being faded to.
func (c *Color) Target() color.RGBA {
	return color.RGBA{R: toByte(c.r.Get()), G: toByte(c.g.Get()), B: toByte(c.b.Get()), A: 0xff}
}

// Tick advances all three channels one frame and returns the colour to draw with.
func (c *Color) Tick() color.RGBA {
	return color.RGBA{R: toByte(c.r.Tick()), G: toByte(c.g.Tick()), B: toByte(c.b.Tick()), A: 0xff}
}

func toByte(v float64) uint8 {
	v = math.Floor(v)
	if v <= 0 {
		return 0
	}
	if v >= 255 {
		return 255
	}
	return uint8(v)
}
