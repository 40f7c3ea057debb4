package audio

import (
	"encoding/json"
	"fmt"
	"log"
	"math"
	"math/rand"
	"strconv"
)

// ----- Channel ----- //

// Channel selects one side of the stereo pair.
type Channel int

// Channels
const (
	Left Channel = iota
	Right
)

func (c Channel) String() string {
	if c == Right {
		return "right"
	}
	return "left"
}

// ParseChannel ...
func ParseChannel(s string) (Channel, error) {
	switch s {
	case "left", "l":
		return Left, nil
	case "right", "r":
		return Right, nil
	}
	return 0, fmt.Errorf("unknown channel %q", s)
}

func (s *Synth) osc(ch Channel) *Oscillator {
	if ch == Right {
		return s.Right()
	}
	return s.Left()
}

// ComputeFreq returns base * num/den detuned by milli thousandths of a semitone.
func ComputeFreq(base float64, num int, den int, milli int) float64 {
	return base * (float64(num) / float64(den)) * math.Pow(2, float64(milli)/12000.0)
}

// ----- Knob Params ----- //

type oscKnobs struct {
	num     int     // 1 ~
	den     int     // 1 ~
	milli   int     // thousandths of a semitone
	phase   float64 // degrees
	amounts [numWaveKinds]float64 // percent
}

type oscKnobsJSON struct {
	Num     int                `json:"num"`
	Den     int                `json:"den"`
	Milli   int                `json:"milli"`
	Phase   float64            `json:"phase"`
	Amounts map[string]float64 `json:"amounts"`
}

func (o *oscKnobs) applyJSON(data json.RawMessage) {
	var j oscKnobsJSON
	err := json.Unmarshal(data, &j)
	if err != nil {
		log.Println("failed to apply JSON to oscKnobs")
		return
	}
	if j.Num > 0 {
		o.num = j.Num
	}
	if j.Den > 0 {
		o.den = j.Den
	}
	o.milli = j.Milli
	o.phase = j.Phase
	for name, amount := range j.Amounts {
		kind, err := ParseWaveKind(name)
		if err != nil {
			log.Printf("[WARN] %v\n", err)
			continue
		}
		o.amounts[kind] = amount
	}
}
func (o *oscKnobs) toJSON() json.RawMessage {
	amounts := make(map[string]float64, numWaveKinds)
	for _, kind := range WaveKinds() {
		amounts[kind.String()] = o.amounts[kind]
	}
	return toRawMessage(&oscKnobsJSON{
		Num:     o.num,
		Den:     o.den,
		Milli:   o.milli,
		Phase:   o.phase,
		Amounts: amounts,
	})
}

// Knobs holds the user-facing control values and translates them into oscillator targets.
type Knobs struct {
	baseFreq float64
	oscs     [2]oscKnobs
}

type knobsJSON struct {
	BaseFreq float64         `json:"baseFreq"`
	Left     json.RawMessage `json:"left"`
	Right    json.RawMessage `json:"right"`
}

// NewKnobs returns knobs matching the synth defaults.
func NewKnobs() *Knobs {
	k := &Knobs{baseFreq: defaultFreq}
	for i := range k.oscs {
		k.oscs[i] = oscKnobs{num: 1, den: 1}
		k.oscs[i].amounts[WaveSine] = defaultSineAmp * 100
	}
	k.oscs[Right].phase = defaultRightPhase * 360
	return k
}

func (k *Knobs) applyJSON(data json.RawMessage) {
	var j knobsJSON
	err := json.Unmarshal(data, &j)
	if err != nil {
		log.Println("failed to apply JSON to knobs")
		return
	}
	if j.BaseFreq > 0 {
		k.baseFreq = j.BaseFreq
	}
	k.oscs[Left].applyJSON(j.Left)
	k.oscs[Right].applyJSON(j.Right)
}
func (k *Knobs) toJSON() json.RawMessage {
	return toRawMessage(&knobsJSON{
		BaseFreq: k.baseFreq,
		Left:     k.oscs[Left].toJSON(),
		Right:    k.oscs[Right].toJSON(),
	})
}

// Freq returns the frequency the knobs of ch ask for.
func (k *Knobs) Freq(ch Channel) float64 {
	o := &k.oscs[ch]
	return ComputeFreq(k.baseFreq, o.num, o.den, o.milli)
}

// Apply pushes every knob value into the synth.
func (k *Knobs) Apply(s *Synth) {
	for _, ch := range []Channel{Left, Right} {
		k.applyFreq(s, ch)
		osc := s.osc(ch)
		osc.SetPhase(k.oscs[ch].phase / 360.0)
		for _, kind := range WaveKinds() {
			osc.SetAmp(kind, k.oscs[ch].amounts[kind]/100.0)
		}
	}
}

func (k *Knobs) applyFreq(s *Synth, ch Channel) error {
	return s.osc(ch).SetFreq(k.Freq(ch))
}

// SetBaseFreq moves the shared base frequency; both channels retune.
func (k *Knobs) SetBaseFreq(s *Synth, hz float64) error {
	if !(hz > 0) {
		return fmt.Errorf("invalid base frequency %v", hz)
	}
	if err := checkFinite("base frequency", hz); err != nil {
		return err
	}
	old := k.baseFreq
	k.baseFreq = hz
	if err := k.checkFreqs(); err != nil {
		k.baseFreq = old
		return err
	}
	k.applyFreq(s, Left)
	k.applyFreq(s, Right)
	return nil
}

// checkFreqs fails if a knob combination overflows to an infinite frequency.
func (k *Knobs) checkFreqs() error {
	for _, ch := range []Channel{Left, Right} {
		if err := checkFinite(ch.String()+" freq", k.Freq(ch)); err != nil {
			return err
		}
	}
	return nil
}

// SetKnob turns one knob of ch and pushes only the affected target.
func (k *Knobs) SetKnob(s *Synth, ch Channel, name string, value string) error {
	o := &k.oscs[ch]
	switch name {
	case "num", "den", "milli":
		v, err := strconv.ParseInt(value, 10, 64)
		if err != nil {
			return err
		}
		old := *o
		switch name {
		case "num":
			if v < 1 {
				return fmt.Errorf("num must be positive, got %d", v)
			}
			o.num = int(v)
		case "den":
			if v < 1 {
				return fmt.Errorf("den must be positive, got %d", v)
			}
			o.den = int(v)
		case "milli":
			o.milli = int(v)
		}
		if err := k.applyFreq(s, ch); err != nil {
			*o = old
			return err
		}
	case "phase":
		v, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return err
		}
		if err := s.osc(ch).SetPhase(v / 360.0); err != nil {
			return err
		}
		o.phase = v
	default:
		kind, err := ParseWaveKind(name)
		if err != nil {
			return err
		}
		v, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return err
		}
		if err := s.osc(ch).SetAmp(kind, v/100.0); err != nil {
			return err
		}
		o.amounts[kind] = v
	}
	return nil
}

// Randomize picks a pleasant ratio, detune and sine/triangle blend for both channels
// and pushes them into the synth. It returns a random colour for the figure.
func (k *Knobs) Randomize(s *Synth, rng *rand.Rand) (r, g, b uint8) {
	randomInt := func(low, high int) int {
		return low + rng.Intn(high-low+1)
	}
	for _, ch := range []Channel{Left, Right} {
		o := &k.oscs[ch]
		o.num = randomInt(1, 5)
		o.den = randomInt(1, 5)
		o.milli = randomInt(-7, 7)
		sine := randomInt(0, 100)
		o.amounts[WaveSine] = float64(sine)
		o.amounts[WaveTriangle] = float64(100 - sine)

		osc := s.osc(ch)
		k.applyFreq(s, ch)
		osc.SetAmp(WaveSine, o.amounts[WaveSine]/100.0)
		osc.SetAmp(WaveTriangle, o.amounts[WaveTriangle]/100.0)
	}
	return uint8(rng.Intn(256)), uint8(rng.Intn(256)), uint8(rng.Intn(256))
}
