package main

import (
	"context"
	"flag"
	"fmt"
	"image"
	"image/png"
	"log"
	"math/rand"
	"os"
	"path/filepath"

	"github.com/jinjor/lissa-juice/src/audio"
	"github.com/jinjor/lissa-juice/src/figure"
	"golang.org/x/image/bmp"
	"golang.org/x/sync/errgroup"
)

const (
	sampleRate = 44100
	frameRate  = 60
)

func main() {
	numPresets := flag.Int("n", 4, "number of random presets to render")
	seed := flag.Int64("seed", 1, "seed of the first preset")
	seconds := flag.Float64("seconds", 4, "audio rendered before the snapshot is taken")
	size := flag.Int("size", 500, "image width and height in pixels")
	format := flag.String("format", "png", "png or bmp")
	flag.Parse()
	dir := flag.Arg(0)
	if dir == "" {
		log.Fatal("output dir is not passed")
	}
	log.SetFlags(log.Lshortfile)
	if *format != "png" && *format != "bmp" {
		log.Fatalf("unknown format %q", *format)
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		log.Fatalf("error: %v\n", err)
	}

	g, _ := errgroup.WithContext(context.Background())
	for i := 0; i < *numPresets; i++ {
		presetSeed := *seed + int64(i)
		g.Go(func() error {
			img := render(presetSeed, *seconds, *size)
			path := filepath.Join(dir, fmt.Sprintf("preset-%d.%s", presetSeed, *format))
			if err := save(path, img, *format); err != nil {
				return err
			}
			log.Printf("saved %s\n", path)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		log.Fatalf("error: %v\n", err)
	}
	log.Println("Successfully rendered snapshots.")
}

// render plays one randomized preset frame by frame, exactly as the window would see it.
func render(seed int64, seconds float64, size int) image.Image {
	points := figure.NewBuffer(figure.DefaultCapacity)
	synth := audio.NewSynth(points)
	if err := synth.SetSampleRate(sampleRate); err != nil {
		panic(err)
	}
	knobs := audio.NewKnobs()
	knobs.Apply(synth)
	r, g, b := knobs.Randomize(synth, rand.New(rand.NewSource(seed)))
	color := figure.NewColor(r, g, b)

	raster := figure.NewRaster(size, size)
	samplesPerFrame := sampleRate / frameRate
	left := make([]float64, samplesPerFrame)
	right := make([]float64, samplesPerFrame)
	drained := make([]figure.Point, 0, figure.DefaultCapacity)
	frames := int(seconds * frameRate)
	for f := 0; f < frames; f++ {
		synth.Process(left, right)
		drained = points.Drain(drained[:0])
		raster.Frame(drained, color.Tick())
	}
	return raster.Image
}

func save(path string, img image.Image, format string) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()
	switch format {
	case "bmp":
		err = bmp.Encode(file, img)
	default:
		err = png.Encode(file, img)
	}
	if err != nil {
		return err
	}
	return file.Close()
}
