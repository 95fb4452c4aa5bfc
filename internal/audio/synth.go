package audio

import (
	"math"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/effects"
)

// Cue names a short sound effect.
type Cue int

const (
	CuePop   Cue = iota // a point dissolves
	CueBurst            // explosion
	CueChime            // new points arrive
	cueCount
)

func (c Cue) String() string {
	switch c {
	case CuePop:
		return "pop"
	case CueBurst:
		return "burst"
	case CueChime:
		return "chime"
	default:
		return "unknown"
	}
}

type wave int

const (
	waveSine wave = iota
	waveTriangle
	waveNoise
)

// oscillator streams one waveform. slide multiplies the frequency once per
// sample, so values below 1 fall in pitch.
type oscillator struct {
	freq   float64
	slide  float64
	phase  float64
	length int
	pos    int
	wave   wave
	rate   beep.SampleRate
	noise  uint64
}

func newOscillator(freq, slide float64, d time.Duration, w wave, rate beep.SampleRate) beep.Streamer {
	if slide <= 0 {
		slide = 1
	}
	return &oscillator{freq: freq, slide: slide, length: rate.N(d), wave: w, rate: rate, noise: 0x9E3779B97F4A7C15}
}

func (o *oscillator) Stream(samples [][2]float64) (int, bool) {
	for i := range samples {
		if o.pos >= o.length {
			return i, i > 0
		}
		var v float64
		switch o.wave {
		case waveSine:
			v = math.Sin(2 * math.Pi * o.phase)
		case waveTriangle:
			v = 4*math.Abs(o.phase-0.5) - 1
		case waveNoise:
			o.noise ^= o.noise << 13
			o.noise ^= o.noise >> 7
			o.noise ^= o.noise << 17
			v = float64(o.noise>>11)/(1<<53)*2 - 1
		}
		samples[i][0] = v
		samples[i][1] = v
		o.phase += o.freq / float64(o.rate)
		o.phase -= math.Floor(o.phase)
		o.freq *= o.slide
		o.pos++
	}
	return len(samples), true
}

func (o *oscillator) Err() error { return nil }

// envelope applies a linear attack and an exponential-ish release.
type envelope struct {
	s       beep.Streamer
	pos     int
	attack  int
	total   int
	release int
}

func newEnvelope(s beep.Streamer, d, attack, release time.Duration, rate beep.SampleRate) beep.Streamer {
	return &envelope{s: s, attack: rate.N(attack), total: rate.N(d), release: rate.N(release)}
}

func (e *envelope) Stream(samples [][2]float64) (int, bool) {
	n, ok := e.s.Stream(samples)
	for i := 0; i < n; i++ {
		if e.pos >= e.total {
			return i, i > 0
		}
		vol := 1.0
		if e.attack > 0 && e.pos < e.attack {
			vol = float64(e.pos) / float64(e.attack)
		}
		if start := e.total - e.release; e.release > 0 && e.pos >= start {
			k := float64(e.total-e.pos) / float64(e.release)
			vol *= k * k
		}
		samples[i][0] *= vol
		samples[i][1] *= vol
		e.pos++
	}
	return n, ok
}

func (e *envelope) Err() error { return e.s.Err() }

// gain wraps s in effects.Volume; zero or less is silence.
func gain(s beep.Streamer, v float64) beep.Streamer {
	if v <= 0 {
		return &effects.Volume{Streamer: s, Base: 2, Silent: true}
	}
	return &effects.Volume{Streamer: s, Base: 2, Volume: math.Log2(v)}
}

func tone(freq, slide float64, d, attack, release time.Duration, w wave, rate beep.SampleRate) beep.Streamer {
	return newEnvelope(newOscillator(freq, slide, d, w, rate), d, attack, release, rate)
}

// cueStreamer builds the streamer for c at the given rate.
func cueStreamer(c Cue, rate beep.SampleRate) beep.Streamer {
	switch c {
	case CuePop:
		d := 90 * time.Millisecond
		return gain(tone(720, 0.99992, d, 3*time.Millisecond, 70*time.Millisecond, waveSine, rate), 0.6)
	case CueBurst:
		d := 420 * time.Millisecond
		return beep.Mix(
			gain(tone(0, 1, d, 2*time.Millisecond, 380*time.Millisecond, waveNoise, rate), 0.45),
			gain(tone(110, 0.99997, d, 4*time.Millisecond, 360*time.Millisecond, waveSine, rate), 0.55),
		)
	case CueChime:
		d := 140 * time.Millisecond
		return beep.Seq(
			gain(tone(1318.5, 1, d, 4*time.Millisecond, 110*time.Millisecond, waveTriangle, rate), 0.4),
			gain(tone(1760, 1, 2*d, 4*time.Millisecond, 240*time.Millisecond, waveTriangle, rate), 0.4),
		)
	default:
		return nil
	}
}

// Render synthesises c into interleaved stereo float32LE PCM.
func Render(c Cue, sampleRate int) []byte {
	s := cueStreamer(c, beep.SampleRate(sampleRate))
	if s == nil {
		return nil
	}
	var out []byte
	buf := make([][2]float64, 512)
	for {
		n, ok := s.Stream(buf)
		for i := 0; i < n; i++ {
			out = appendStereoF32(out, clamp1(buf[i][0]), clamp1(buf[i][1]))
		}
		if !ok || n == 0 {
			break
		}
	}
	return out
}

func clamp1(v float64) float64 {
	if v < -1 {
		return -1
	}
	if v > 1 {
		return 1
	}
	return v
}

// appendStereoF32 appends one frame of float32 LE samples.
func appendStereoF32(buf []byte, left, right float64) []byte {
	l := math.Float32bits(float32(left))
	r := math.Float32bits(float32(right))
	return append(buf,
		byte(l), byte(l>>8), byte(l>>16), byte(l>>24),
		byte(r), byte(r>>8), byte(r>>16), byte(r>>24),
	)
}
