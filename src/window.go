package main

import (
	"context"
	"fmt"
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/hajimehoshi/ebiten/v2/text"
	"github.com/jinjor/lissa-juice/src/audio"
	"github.com/jinjor/lissa-juice/src/figure"
	"golang.org/x/image/font/basicfont"
)

const (
	windowWidth  = 500
	windowHeight = 500
)

var fadeColor = color.RGBA{0, 0, 0, 25} // ~10% black over the previous frame

// figureWindow plots the Lissajous figure once per display frame.
type figureWindow struct {
	ctx           context.Context
	audio         *audio.Audio
	muteUnfocused bool
	userActive    bool
	lastWant      bool
	trail         *ebiten.Image
	fade          *ebiten.Image
	points        []figure.Point // reused every frame
	showStatus    bool
}

func runWindow(ctx context.Context, a *audio.Audio, muteUnfocused bool) error {
	w := &figureWindow{
		ctx:           ctx,
		audio:         a,
		muteUnfocused: muteUnfocused,
		userActive:    true,
		lastWant:      true,
		trail:         ebiten.NewImage(windowWidth, windowHeight),
		fade:          ebiten.NewImage(windowWidth, windowHeight),
		points:        make([]figure.Point, 0, a.Points.Cap()),
		showStatus:    true,
	}
	w.trail.Fill(color.Black)
	w.fade.Fill(fadeColor)
	ebiten.SetWindowSize(windowWidth, windowHeight)
	ebiten.SetWindowTitle("Lissa Juice")
	ebiten.SetWindowResizable(true)
	ebiten.SetRunnableOnUnfocused(true)
	return ebiten.RunGame(w)
}

func (w *figureWindow) Update() error {
	if w.ctx.Err() != nil || ebiten.IsWindowBeingClosed() {
		return ebiten.Termination
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyEscape) {
		return ebiten.Termination
	}
	if inpututil.IsKeyJustPressed(ebiten.KeySpace) {
		w.userActive = !w.userActive
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyR) {
		w.audio.Randomize()
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyP) {
		w.audio.ToggleSong(w.ctx)
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyF12) {
		w.showStatus = !w.showStatus
	}
	want := w.userActive
	if w.muteUnfocused && !ebiten.IsFocused() {
		want = false
	}
	// only edges, so "active" commands from the socket are not overridden every frame
	if want != w.lastWant {
		w.audio.SetActive(want)
		w.lastWant = want
	}
	return nil
}

func (w *figureWindow) Draw(screen *ebiten.Image) {
	w.trail.DrawImage(w.fade, nil)

	c := w.audio.Color.Tick()
	w.points = w.audio.Points.Drain(w.points[:0])
	for _, p := range w.points {
		x, y := figure.Project(p, windowWidth, windowHeight, figure.Border)
		w.trail.Set(int(x), int(y), c)
	}
	screen.DrawImage(w.trail, nil)

	if w.showStatus {
		w.drawStatus(screen)
	}
}

func (w *figureWindow) drawStatus(screen *ebiten.Image) {
	face := basicfont.Face7x13
	statusColor := color.RGBA{160, 160, 160, 255}
	state := "playing"
	if !w.audio.Synth.Active() {
		state = "paused"
	}
	line := fmt.Sprintf("%s  %.0f Hz  dropped %d", state, w.audio.Synth.SampleRate(), w.audio.Points.Dropped())
	text.Draw(screen, line, face, 6, 16, statusColor)
	text.Draw(screen, "Space Pause  R Randomize  P Song  F12 Status", face, 6, windowHeight-8, statusColor)
}

func (w *figureWindow) Layout(outsideWidth, outsideHeight int) (int, int) {
	return windowWidth, windowHeight
}
