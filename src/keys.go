package main

import (
	"context"
	"errors"
	"log"
	"os"

	"github.com/jinjor/lissa-juice/src/audio"
	"golang.org/x/term"
)

// listenToKeys reads single key presses from a raw terminal while running without a window.
// The returned func restores the terminal and is always safe to call.
func listenToKeys(ctx context.Context, a *audio.Audio, quit func()) (func(), error) {
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return func() {}, errors.New("stdin is not a terminal")
	}
	oldState, err := term.MakeRaw(fd)
	if err != nil {
		return func() {}, err
	}
	restore := func() {
		if err := term.Restore(fd, oldState); err != nil {
			log.Printf("failed to restore terminal: %v\n", err)
		}
	}
	log.Print("keys: space pause, r randomize, p song, q quit\r\n")
	go func() {
		buf := make([]byte, 1)
		for {
			n, err := os.Stdin.Read(buf)
			if err != nil || ctx.Err() != nil {
				return
			}
			if n == 0 {
				continue
			}
			switch buf[0] {
			case ' ':
				a.SetActive(!a.Synth.Active())
			case 'r':
				a.Randomize()
			case 'p':
				a.ToggleSong(ctx)
			case 'q', 3: // 3: ctrl-c never becomes SIGINT in raw mode
				quit()
				return
			}
		}
	}()
	return restore, nil
}
