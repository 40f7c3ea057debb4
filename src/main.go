package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"runtime"
	"syscall"

	"github.com/jinjor/lissa-juice/src/audio"
	"golang.org/x/sync/errgroup"
)

const sockFileName = "/tmp/lissa-juice.sock"

func main() {
	config := audio.DefaultConfig()
	flag.StringVar(&config.Backend, "audio", config.Backend, "audio backend: oto or none")
	flag.IntVar(&config.SampleRate, "rate", config.SampleRate, "output sample rate in Hz")
	flag.IntVar(&config.BlockSize, "block", config.BlockSize, "samples per channel rendered per block")
	flag.IntVar(&config.Points, "points", config.Points, "figure points kept between two frames")
	flag.Int64Var(&config.Seed, "seed", config.Seed, "random seed for randomize")
	view := flag.String("view", "window", "figure view: window or none")
	sock := flag.String("sock", sockFileName, "unix socket for control commands")
	ipc := flag.Bool("ipc", false, "accept control commands on -sock")
	muteUnfocused := flag.Bool("mute-unfocused", true, "go silent while the window is not focused")
	flag.Parse()
	log.SetFlags(log.Lshortfile)
	log.Printf("NumCPU: %v\n", runtime.NumCPU())

	ctx := context.Background()
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	a, err := audio.NewAudio(config)
	if err != nil {
		log.Fatalf("error: %v\n", err)
	}
	defer a.Close()

	signalCh := make(chan os.Signal, 1)
	signal.Notify(signalCh, os.Interrupt, syscall.SIGTERM)
	defer func() {
		signal.Stop(signalCh)
		cancel()
	}()
	go func() {
		select {
		case sig := <-signalCh:
			log.Printf("Caught signal %s: shutting down...\n", sig)
			cancel()
		case <-ctx.Done():
		}
	}()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return a.Start(ctx)
	})
	if *ipc {
		g.Go(func() error {
			return serveIPC(ctx, *sock, a)
		})
	}

	switch *view {
	case "window":
		// ebiten owns the main goroutine until the window closes
		if err := runWindow(ctx, a, *muteUnfocused); err != nil {
			log.Printf("error: %v\n", err)
		}
		cancel()
	case "none":
		restore, err := listenToKeys(ctx, a, cancel)
		if err != nil {
			log.Printf("[WARN] keyboard disabled: %v\n", err)
		}
		<-ctx.Done()
		restore()
	default:
		cancel()
		log.Printf("unknown view %q\n", *view)
	}

	if err := g.Wait(); err != nil {
		log.Fatalf("error: %v\n", err)
	}
	log.Println("main() ended.")
}
