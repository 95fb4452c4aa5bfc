// Package audio owns the sound output. A Device is created once by the app
// runner and handed to whoever plays cues; its lifetime follows the loop.
package audio

import (
	"bytes"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/hajimehoshi/oto/v2"
)

const (
	DefaultSampleRate = 44100
	channelCount      = 2

	// More simultaneous bursts than this clip the speaker.
	maxBursts = 2
)

var ErrClosed = errors.New("audio: device closed")

type Config struct {
	SampleRate int
	Volume     float64 // 0..1
}

func DefaultConfig() Config {
	return Config{SampleRate: DefaultSampleRate, Volume: 0.6}
}

// Device plays pre-rendered cues on one oto context. A nil *Device is valid
// and silent.
type Device struct {
	ctx    *oto.Context
	volume float64
	cues   [cueCount][]byte

	suspended atomic.Bool
	closed    atomic.Bool
	bursts    atomic.Int32
	players   sync.WaitGroup
}

// Open creates the output context, waits for it to become ready and renders
// every cue up front.
func Open(cfg Config) (*Device, error) {
	if cfg.SampleRate <= 0 {
		cfg.SampleRate = DefaultSampleRate
	}
	ctx, ready, err := oto.NewContext(cfg.SampleRate, channelCount, oto.FormatFloat32LE)
	if err != nil {
		return nil, fmt.Errorf("audio: new context: %w", err)
	}
	select {
	case <-ready:
	case <-time.After(3 * time.Second):
		return nil, errors.New("audio: context not ready")
	}
	d := &Device{ctx: ctx, volume: clampVolume(cfg.Volume)}
	for c := Cue(0); c < cueCount; c++ {
		d.cues[c] = Render(c, cfg.SampleRate)
	}
	return d, nil
}

func clampVolume(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// Play starts c in the background. It does nothing while suspended or
// after Close.
func (d *Device) Play(c Cue) {
	if d == nil || d.closed.Load() || d.suspended.Load() {
		return
	}
	if c < 0 || c >= cueCount || len(d.cues[c]) == 0 {
		return
	}
	if c == CueBurst {
		if d.bursts.Add(1) > maxBursts {
			d.bursts.Add(-1)
			return
		}
	}
	d.players.Add(1)
	go func() {
		defer d.players.Done()
		if c == CueBurst {
			defer d.bursts.Add(-1)
		}
		p := d.ctx.NewPlayer(bytes.NewReader(d.cues[c]))
		p.SetVolume(d.volume)
		p.Play()
		for p.IsPlaying() && !d.closed.Load() {
			time.Sleep(10 * time.Millisecond)
		}
		p.Close()
	}()
}

func (d *Device) Suspend() error {
	if d == nil || d.closed.Load() {
		return nil
	}
	if d.suspended.Swap(true) {
		return nil
	}
	if err := d.ctx.Suspend(); err != nil {
		return fmt.Errorf("audio: suspend: %w", err)
	}
	return nil
}

func (d *Device) Resume() error {
	if d == nil {
		return nil
	}
	if d.closed.Load() {
		return ErrClosed
	}
	if !d.suspended.Swap(false) {
		return nil
	}
	if err := d.ctx.Resume(); err != nil {
		return fmt.Errorf("audio: resume: %w", err)
	}
	return nil
}

// Close stops accepting cues and waits for playing ones to finish. oto
// contexts cannot be released, so the context is left suspended.
func (d *Device) Close() error {
	if d == nil || d.closed.Swap(true) {
		return nil
	}
	d.players.Wait()
	if err := d.ctx.Suspend(); err != nil {
		return fmt.Errorf("audio: close: %w", err)
	}
	return nil
}
