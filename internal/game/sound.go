package game

import (
	"time"

	"pointfall/internal/audio"
)

// CuePlayer plays sound cues; *audio.Device implements it.
type CuePlayer interface {
	Play(c audio.Cue)
}

// A pile dissolving 40 points at once should not fire 40 pops.
const minPopGap = 40 * time.Millisecond

// BindSounds plays cues for scene events.
func BindSounds(bus *EventBus, p CuePlayer) {
	if bus == nil || p == nil {
		return
	}
	var lastPop time.Time
	bus.Subscribe(EventParticleRemoved, func(Event) {
		now := time.Now()
		if now.Sub(lastPop) < minPopGap {
			return
		}
		lastPop = now
		p.Play(audio.CuePop)
	})
	bus.Subscribe(EventExplosion, func(Event) { p.Play(audio.CueBurst) })
	bus.Subscribe(EventSpawned, func(Event) { p.Play(audio.CueChime) })
}
