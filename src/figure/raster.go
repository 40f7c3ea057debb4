package figure

import (
	"image"
	"image/color"
)

// Border keeps the figure off the canvas edges, in pixels.
const Border = 10

// fadeAlpha is how much of the previous frame each fade removes.
const fadeAlpha = 0.1

// Project maps a point onto a w x h canvas: L grows rightwards, R grows upwards.
func Project(p Point, w, h int, border int) (x, y float64) {
	halfW := float64(w) / 2
	halfH := float64(h) / 2
	x = halfW + p.L*(halfW-float64(border))
	y = halfH - p.R*(halfH-float64(border))
	return x, y
}

// Raster draws frames of points onto an RGBA image, fading older frames towards black.
type Raster struct {
	Image *image.RGBA
}

// NewRaster returns a black w x h raster.
func NewRaster(w, h int) *Raster {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for i := 3; i < len(img.Pix); i += 4 {
		img.Pix[i] = 0xff
	}
	return &Raster{Image: img}
}

// Fade darkens every pixel the way one translucent black fill would.
func (r *Raster) Fade() {
	pix := r.Image.Pix
	for i := 0; i < len(pix); i += 4 {
		pix[i] = uint8(float64(pix[i]) * (1 - fadeAlpha))
		pix[i+1] = uint8(float64(pix[i+1]) * (1 - fadeAlpha))
		pix[i+2] = uint8(float64(pix[i+2]) * (1 - fadeAlpha))
	}
}

// Plot draws each point as one pixel in c. Points off the canvas are skipped.
func (r *Raster) Plot(points []Point, c color.RGBA) {
	b := r.Image.Bounds()
	for _, p := range points {
		x, y := Project(p, b.Dx(), b.Dy(), Border)
		px, py := int(x), int(y)
		if !(image.Point{X: px, Y: py}).In(b) {
			continue
		}
		r.Image.SetRGBA(px, py, c)
	}
}

// Frame fades, then plots: one renderer frame.
func (r *Raster) Frame(points []Point, c color.RGBA) {
	r.Fade()
	r.Plot(points, c)
}
