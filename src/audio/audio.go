package audio

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"math/rand"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/hajimehoshi/oto"
	"github.com/jinjor/lissa-juice/src/figure"
)

const (
	channelNum      = 2
	bitDepthInBytes = 2
	bytesPerSample  = bitDepthInBytes * channelNum
)

// Backends
const (
	BackendOto  = "oto"
	BackendNone = "none"
)

// ErrUnknownCommand is returned by Update for commands it cannot parse.
var ErrUnknownCommand = errors.New("unknown command")

// ----- Utility ----- //

func toRawMessage(v interface{}) json.RawMessage {
	bytes, err := json.Marshal(v)
	if err != nil {
		panic(err)
	}
	return json.RawMessage(bytes)
}

// ----- Config ----- //

// Config ...
type Config struct {
	Backend    string // BackendOto or BackendNone
	SampleRate int
	BlockSize  int // samples per channel handed to the synth at once
	Points     int // visualization buffer capacity
	Seed       int64
}

// DefaultConfig ...
func DefaultConfig() Config {
	return Config{
		Backend:    BackendOto,
		SampleRate: 44100,
		BlockSize:  512,
		Points:     figure.DefaultCapacity,
		Seed:       time.Now().UnixNano(),
	}
}

func (c Config) bufferSizeInBytes() int {
	return c.BlockSize * bytesPerSample
}

func (c Config) blockDuration() time.Duration {
	return time.Duration(float64(time.Second) * float64(c.BlockSize) / float64(c.SampleRate))
}

// ----- Changes ----- //

// Changes ...
type Changes struct {
	sync.Mutex
	dict map[string]struct{}
}

// Add ...
func (c *Changes) Add(key string) {
	c.Lock()
	c.dict[key] = struct{}{}
	c.Unlock()
}

// Has ...
func (c *Changes) Has(key string) bool {
	c.Lock()
	_, ok := c.dict[key]
	c.Unlock()
	return ok
}

// Delete ...
func (c *Changes) Delete(key string) {
	c.Lock()
	delete(c.dict, key)
	c.Unlock()
}

// ----- Audio ----- //

// Audio owns the synth, the figure it feeds and the output device.
type Audio struct {
	ctx        atomic.Pointer[context.Context]
	config     Config
	otoContext *oto.Context
	CommandCh  chan []string
	Changes    *Changes
	Synth      *Synth
	Points     *figure.Buffer
	Color      *figure.Color
	song       *Song

	mu    sync.Mutex // guards knobs and rng
	knobs *Knobs
	rng   *rand.Rand

	left  []float64 // length: BlockSize
	right []float64 // length: BlockSize
}

var _ io.Reader = (*Audio)(nil)

// NewAudio ...
func NewAudio(config Config) (*Audio, error) {
	if config.BlockSize <= 0 {
		return nil, fmt.Errorf("invalid block size %d", config.BlockSize)
	}
	if config.Points <= 0 {
		config.Points = figure.DefaultCapacity
	}
	if config.Points < config.BlockSize {
		// a block never fits otherwise and the figure stays blank
		log.Printf("[WARN] raising points from %d to the block size %d\n", config.Points, config.BlockSize)
		config.Points = config.BlockSize
	}
	points := figure.NewBuffer(config.Points)
	synth := NewSynth(points)
	if err := synth.SetSampleRate(float64(config.SampleRate)); err != nil {
		return nil, err
	}
	var otoContext *oto.Context
	switch config.Backend {
	case BackendOto:
		var err error
		otoContext, err = oto.NewContext(config.SampleRate, channelNum, bitDepthInBytes, config.bufferSizeInBytes())
		if err != nil {
			return nil, err
		}
	case BackendNone:
	default:
		return nil, fmt.Errorf("unknown audio backend %q", config.Backend)
	}
	commandCh := make(chan []string, 256)
	audio := &Audio{
		config:     config,
		otoContext: otoContext,
		CommandCh:  commandCh,
		Changes: &Changes{
			dict: make(map[string]struct{}),
		},
		Synth:  synth,
		Points: points,
		Color:  figure.NewColor(255, 255, 0),
		knobs:  NewKnobs(),
		rng:    rand.New(rand.NewSource(config.Seed)),
		left:   make([]float64, config.BlockSize),
		right:  make([]float64, config.BlockSize),
	}
	background := context.Background()
	audio.ctx.Store(&background)
	audio.song = newSong(audio.randomize, audio.chance)
	go processCommands(audio, commandCh)
	return audio, nil
}

func processCommands(audio *Audio, commandCh <-chan []string) {
	for command := range commandCh {
		if err := audio.Update(command); err != nil {
			log.Printf("[WARN] %v\n", err)
		}
	}
	log.Println("processCommands() ended.")
}

// Read renders len(buf)/4 stereo frames of 16-bit little-endian PCM.
func (a *Audio) Read(buf []byte) (int, error) {
	select {
	case <-a.context().Done():
		log.Println("Read() interrupted.")
		return 0, io.EOF
	default:
	}
	samples := len(buf) / bytesPerSample
	for offset := 0; offset < samples; offset += len(a.left) {
		n := samples - offset
		if n > len(a.left) {
			n = len(a.left)
		}
		left, right := a.left[:n], a.right[:n]
		a.Synth.Process(left, right)
		block := buf[offset*bytesPerSample : (offset+n)*bytesPerSample]
		writeBuffer(left, block, 0)
		writeBuffer(right, block, 1)
	}
	return samples * bytesPerSample, nil
}

func writeBuffer(out []float64, buf []byte, ch int) {
	sampleLength := len(buf) / bytesPerSample
	for i := 0; i < sampleLength; i++ {
		const max = 32767
		b := int16(out[i] * max)
		buf[bytesPerSample*i+2*ch] = byte(b)
		buf[bytesPerSample*i+2*ch+1] = byte(b >> 8)
	}
}

// Close ...
func (a *Audio) Close() error {
	log.Println("Closing Audio...")
	a.song.Stop()
	close(a.CommandCh)
	if a.otoContext == nil {
		return nil
	}
	return a.otoContext.Close()
}

// Start blocks, feeding the output device until ctx is cancelled.
func (a *Audio) Start(ctx context.Context) error {
	a.ctx.Store(&ctx)
	a.Knobs(func(k *Knobs) { k.Apply(a.Synth) })
	if a.otoContext == nil {
		return a.startHeadless(ctx)
	}
	p := a.otoContext.NewPlayer()
	defer func() {
		if err := p.Close(); err != nil {
			log.Printf("error: %v", err)
		}
	}()

	// block until cancel() called
	if _, err := io.CopyBuffer(p, a, make([]byte, a.config.bufferSizeInBytes())); err != nil {
		return err
	}
	log.Println("Start() ended.")
	return nil
}

// startHeadless pulls blocks at the pace a device would, discarding the PCM.
func (a *Audio) startHeadless(ctx context.Context) error {
	t := time.NewTicker(a.config.blockDuration())
	defer t.Stop()
	buf := make([]byte, a.config.bufferSizeInBytes())
	for {
		select {
		case <-ctx.Done():
			log.Println("Start() ended.")
			return nil
		case <-t.C:
			if _, err := a.Read(buf); err != nil && err != io.EOF {
				return err
			}
		}
	}
}

func (a *Audio) context() context.Context {
	return *a.ctx.Load()
}

// Knobs runs f with exclusive access to the knob state.
func (a *Audio) Knobs(f func(k *Knobs)) {
	a.mu.Lock()
	defer a.mu.Unlock()
	f(a.knobs)
}

// Randomize re-rolls the knobs and the figure colour.
func (a *Audio) Randomize() {
	a.randomize()
}

func (a *Audio) randomize() {
	a.mu.Lock()
	r, g, b := a.knobs.Randomize(a.Synth, a.rng)
	a.mu.Unlock()
	a.Color.Set(r, g, b)
	a.Changes.Add("data")
}

func (a *Audio) chance() float64 {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.rng.Float64()
}

// ToggleSong starts or stops the self-playing randomizer and reports whether it now plays.
func (a *Audio) ToggleSong(ctx context.Context) bool {
	playing := a.song.Toggle(ctx)
	a.Changes.Add("data")
	return playing
}

// SetActive ...
func (a *Audio) SetActive(active bool) {
	if a.Synth.Active() == active {
		return
	}
	a.Synth.SetActive(active)
	a.Changes.Add("data")
}

// ----- JSON ----- //

type audioJSON struct {
	Knobs      json.RawMessage `json:"knobs"`
	Active     bool            `json:"active"`
	Playing    bool            `json:"playing"`
	Color      [3]uint8        `json:"color"`
	SampleRate float64         `json:"sampleRate"`
	Dropped    uint64          `json:"dropped"`
}

// ToJSON ...
func (a *Audio) ToJSON() []byte {
	c := a.Color.Target()
	j := &audioJSON{
		Active:     a.Synth.Active(),
		Playing:    a.song.Playing(),
		Color:      [3]uint8{c.R, c.G, c.B},
		SampleRate: a.Synth.SampleRate(),
		Dropped:    a.Points.Dropped(),
	}
	a.mu.Lock()
	j.Knobs = a.knobs.toJSON()
	a.mu.Unlock()
	bytes, err := json.Marshal(j)
	if err != nil {
		panic(err)
	}
	return bytes
}

// ApplyJSON restores knobs, colour and the active flag from ToJSON output.
func (a *Audio) ApplyJSON(data []byte) {
	var j audioJSON
	err := json.Unmarshal(data, &j)
	if err != nil {
		log.Println("failed to apply JSON to Audio", err)
		return
	}
	a.mu.Lock()
	a.knobs.applyJSON(j.Knobs)
	a.knobs.Apply(a.Synth)
	a.mu.Unlock()
	a.Color.Set(j.Color[0], j.Color[1], j.Color[2])
	a.Synth.SetActive(j.Active)
	a.Changes.Add("data")
}

// ----- Commands ----- //

// Update applies one control command such as ["set", "left", "freq", "300"].
func (a *Audio) Update(command []string) error {
	if len(command) == 0 {
		return fmt.Errorf("%w: empty", ErrUnknownCommand)
	}
	switch command[0] {
	case "set":
		if err := a.updateOsc(command[1:]); err != nil {
			return err
		}
	case "knob":
		if err := a.updateKnob(command[1:]); err != nil {
			return err
		}
	case "color":
		r, g, b, err := parseColor(command[1:])
		if err != nil {
			return err
		}
		a.Color.Set(r, g, b)
	case "randomize":
		a.randomize()
	case "play":
		a.song.Play(a.context())
	case "stop":
		a.song.Stop()
	case "active":
		if len(command) != 2 {
			return fmt.Errorf("invalid active command %v", command)
		}
		active, err := strconv.ParseBool(command[1])
		if err != nil {
			return err
		}
		a.Synth.SetActive(active)
	case "rate":
		if len(command) != 2 {
			return fmt.Errorf("invalid rate command %v", command)
		}
		rate, err := strconv.ParseFloat(command[1], 64)
		if err != nil {
			return err
		}
		if err := a.Synth.SetSampleRate(rate); err != nil {
			return err
		}
	case "init":
		a.Synth.Init()
		a.Knobs(func(k *Knobs) { k.Apply(a.Synth) })
	default:
		return fmt.Errorf("%w: %v", ErrUnknownCommand, command[0])
	}
	a.Changes.Add("data")
	return nil
}

// set <left|right> freq <hz> | phase <cycles> | amp <kind> <amount>
func (a *Audio) updateOsc(command []string) error {
	if len(command) < 3 {
		return fmt.Errorf("invalid set command %v", command)
	}
	ch, err := ParseChannel(command[0])
	if err != nil {
		return err
	}
	osc := a.Synth.osc(ch)
	switch command[1] {
	case "freq", "phase":
		if len(command) != 3 {
			return fmt.Errorf("invalid key-value pair %v", command[1:])
		}
		value, err := strconv.ParseFloat(command[2], 64)
		if err != nil {
			return err
		}
		if command[1] == "freq" {
			return osc.SetFreq(value)
		}
		return osc.SetPhase(value)
	case "amp":
		if len(command) != 4 {
			return fmt.Errorf("invalid amp command %v", command[1:])
		}
		kind, err := ParseWaveKind(command[2])
		if err != nil {
			return err
		}
		value, err := strconv.ParseFloat(command[3], 64)
		if err != nil {
			return err
		}
		return osc.SetAmp(kind, value)
	default:
		return fmt.Errorf("%w: set %v", ErrUnknownCommand, command[1])
	}
}

// knob base_freq <hz> | knob <left|right> <name> <value>
func (a *Audio) updateKnob(command []string) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if len(command) == 2 && command[0] == "base_freq" {
		hz, err := strconv.ParseFloat(command[1], 64)
		if err != nil {
			return err
		}
		return a.knobs.SetBaseFreq(a.Synth, hz)
	}
	if len(command) != 3 {
		return fmt.Errorf("invalid knob command %v", command)
	}
	ch, err := ParseChannel(command[0])
	if err != nil {
		return err
	}
	return a.knobs.SetKnob(a.Synth, ch, command[1], command[2])
}

// color <r> <g> <b> | color #rrggbb
func parseColor(args []string) (r, g, b uint8, err error) {
	switch len(args) {
	case 1:
		hex := strings.TrimPrefix(args[0], "#")
		if len(hex) != 6 {
			return 0, 0, 0, fmt.Errorf("invalid colour %q", args[0])
		}
		v, err := strconv.ParseUint(hex, 16, 32)
		if err != nil {
			return 0, 0, 0, err
		}
		return uint8(v >> 16), uint8(v >> 8), uint8(v), nil
	case 3:
		var rgb [3]uint8
		for i, s := range args {
			v, err := strconv.ParseUint(s, 10, 8)
			if err != nil {
				return 0, 0, 0, err
			}
			rgb[i] = uint8(v)
		}
		return rgb[0], rgb[1], rgb[2], nil
	}
	return 0, 0, 0, fmt.Errorf("invalid colour %v", args)
}
