package game

import (
	"pointfall/internal/audio"
	"pointfall/internal/config"
	"pointfall/internal/logger"
	"pointfall/internal/loop"
	"pointfall/internal/physics"
)

// App is what every runner shares: the scene, its balance source and the
// audio device. Runners add a surface, a renderer and a frame source.
type App struct {
	Scene *Scene
	Audio *audio.Device
	Log   *logger.Logger

	cfg    config.Config
	source balanceCloser
}

type balanceCloser interface {
	BalanceSource
	Close() error
}

// NewApp opens the balance store and audio. Neither is fatal: without a
// store the scene shows a zero balance, without audio it is silent.
func NewApp(cfg config.Config, log *logger.Logger) *App {
	a := &App{Log: log, cfg: cfg}

	src, err := openSource(cfg)
	if err != nil {
		log.Warnf("balance store unavailable (continuing without it): %v", err)
	} else {
		a.source = src
	}

	if cfg.Audio.Enabled {
		dev, err := audio.Open(audio.Config{SampleRate: cfg.Audio.SampleRate, Volume: cfg.Audio.Volume})
		if err != nil {
			log.Warnf("audio init failed (continuing without sound): %v", err)
		} else {
			a.Audio = dev
		}
	}

	opts := SceneOptions{
		Physics:           cfg.Physics,
		Model:             cfg.Model(),
		PointsPerParticle: cfg.Economy.PointsPerParticle,
		ExplosionPower:    physics.DefaultExplosionPower,
		User:              cfg.App.User,
		RefreshInterval:   cfg.App.SyncInterval,
		Logger:            log,
	}
	if a.source != nil {
		opts.Source = a.source
	}
	a.Scene = NewScene(opts)
	if a.Audio != nil {
		BindSounds(a.Scene.Bus(), a.Audio)
	}
	return a
}

// LoopOptions are the configured loop options with audio following the
// scheduler's lifecycle.
func (a *App) LoopOptions() loop.Options {
	opts := a.cfg.LoopOptions()
	opts.Logger = a.Log
	if a.Audio != nil {
		opts.Lifecycle = a.Audio
	}
	return opts
}

// Close releases the store. The scheduler owns the scene and audio.
func (a *App) Close() error {
	if a.source == nil {
		return nil
	}
	return a.source.Close()
}
