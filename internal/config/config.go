// Package config collects the app's tunables. Defaults live here; a .env
// file and POINTFALL_* environment variables override them.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"pointfall/internal/economy"
	"pointfall/internal/loop"
	"pointfall/internal/physics"
	"pointfall/internal/surface"
)

const envPrefix = "POINTFALL_"

// Audio defaults mirror audio.DefaultConfig.
const (
	defaultSampleRate = 44100
	defaultVolume     = 0.6
)

type LoopConfig struct {
	StepHz           float64
	MaxFrameDelta    float64
	MaxStepsPerFrame int
}

type EconomyConfig struct {
	MaxPoints         float64
	DaysToCap         float64
	PointsPerParticle float64
}

type DisplayConfig struct {
	Width, Height int
	Title         string
	DensityCap    float64
}

type AudioConfig struct {
	Enabled    bool
	Volume     float64
	SampleRate int
}

type StoreConfig struct {
	Path string
}

type AppConfig struct {
	User         string
	SyncInterval time.Duration
}

type Config struct {
	Physics physics.Config
	Loop    LoopConfig
	Economy EconomyConfig
	Display DisplayConfig
	Audio   AudioConfig
	Store   StoreConfig
	App     AppConfig
}

func Default() Config {
	return Config{
		Physics: physics.DefaultConfig(),
		Loop: LoopConfig{
			StepHz:           60,
			MaxFrameDelta:    loop.DefaultMaxFrameDelta,
			MaxStepsPerFrame: loop.DefaultMaxStepsPerFrame,
		},
		Economy: EconomyConfig{
			MaxPoints:         economy.DefaultMaxPoints,
			DaysToCap:         economy.DefaultDaysToCap,
			PointsPerParticle: 1,
		},
		Display: DisplayConfig{
			Width:      480,
			Height:     800,
			Title:      "pointfall",
			DensityCap: surface.DefaultDensityCap,
		},
		Audio: AudioConfig{
			Enabled:    true,
			Volume:     defaultVolume,
			SampleRate: defaultSampleRate,
		},
		Store: StoreConfig{Path: "pointfall.db"},
		App: AppConfig{
			User:         "local",
			SyncInterval: 5 * time.Second,
		},
	}
}

// Load returns Default with the given env files and the process environment
// applied. Missing files are skipped; with no files, ".env" is tried.
func Load(envFiles ...string) (Config, error) {
	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}
	for _, f := range envFiles {
		if f == "" {
			continue
		}
		if err := godotenv.Load(f); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return Config{}, fmt.Errorf("config: load %s: %w", f, err)
		}
	}
	cfg := Default()
	if err := cfg.applyEnv(os.LookupEnv); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	e := envReader{lookup: lookup}

	e.u64("SEED", &c.Physics.Seed)
	e.integer("MAX_PARTICLES", &c.Physics.MaxParticles)
	e.integer("SOLVER_PASSES", &c.Physics.SolverPasses)
	e.integer("DEPTH_LEVELS", &c.Physics.DepthLevels)
	e.float("GRAVITY", &c.Physics.Gravity)

	e.float("STEP_HZ", &c.Loop.StepHz)
	e.float("MAX_FRAME_DELTA", &c.Loop.MaxFrameDelta)
	e.integer("MAX_STEPS_PER_FRAME", &c.Loop.MaxStepsPerFrame)

	e.float("P_MAX", &c.Economy.MaxPoints)
	e.float("DAYS_TO_CAP", &c.Economy.DaysToCap)
	e.float("POINTS_PER_PARTICLE", &c.Economy.PointsPerParticle)

	e.float("DENSITY_CAP", &c.Display.DensityCap)
	e.integer("WIDTH", &c.Display.Width)
	e.integer("HEIGHT", &c.Display.Height)

	e.boolean("AUDIO", &c.Audio.Enabled)
	e.float("VOLUME", &c.Audio.Volume)

	e.str("DB", &c.Store.Path)
	e.str("USER", &c.App.User)
	e.seconds("SYNC_SECONDS", &c.App.SyncInterval)

	if len(e.errs) > 0 {
		return fmt.Errorf("config: %w", errors.Join(e.errs...))
	}
	return c.validate()
}

func (c *Config) validate() error {
	switch {
	case c.Loop.StepHz <= 0:
		return fmt.Errorf("config: %sSTEP_HZ must be positive", envPrefix)
	case c.Economy.MaxPoints <= 0 || c.Economy.DaysToCap <= 0:
		return fmt.Errorf("config: %sP_MAX and %sDAYS_TO_CAP must be positive", envPrefix, envPrefix)
	case c.Physics.MaxParticles <= 0:
		return fmt.Errorf("config: %sMAX_PARTICLES must be positive", envPrefix)
	case c.Physics.DepthLevels > 255:
		return fmt.Errorf("config: %sDEPTH_LEVELS must be at most 255", envPrefix)
	}
	return nil
}

// LoopOptions converts the loop section; the caller adds Lifecycle and
// Logger.
func (c Config) LoopOptions() loop.Options {
	return loop.Options{
		Step:             1 / c.Loop.StepHz,
		MaxFrameDelta:    c.Loop.MaxFrameDelta,
		MaxStepsPerFrame: c.Loop.MaxStepsPerFrame,
	}
}

func (c Config) Model() economy.Model {
	return economy.NewModel(c.Economy.MaxPoints, c.Economy.DaysToCap)
}

type envReader struct {
	lookup func(string) (string, bool)
	errs   []error
}

func (e *envReader) get(key string) (string, bool) {
	v, ok := e.lookup(envPrefix + key)
	if !ok {
		return "", false
	}
	v = strings.TrimSpace(v)
	return v, v != ""
}

func (e *envReader) fail(key, v string, err error) {
	e.errs = append(e.errs, fmt.Errorf("%s%s=%q: %w", envPrefix, key, v, err))
}

func (e *envReader) str(key string, dst *string) {
	if v, ok := e.get(key); ok {
		*dst = v
	}
}

func (e *envReader) integer(key string, dst *int) {
	if v, ok := e.get(key); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			e.fail(key, v, err)
			return
		}
		*dst = n
	}
}

func (e *envReader) u64(key string, dst *uint64) {
	if v, ok := e.get(key); ok {
		n, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			e.fail(key, v, err)
			return
		}
		*dst = n
	}
}

func (e *envReader) float(key string, dst *float64) {
	if v, ok := e.get(key); ok {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			e.fail(key, v, err)
			return
		}
		*dst = f
	}
}

func (e *envReader) boolean(key string, dst *bool) {
	if v, ok := e.get(key); ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			e.fail(key, v, err)
			return
		}
		*dst = b
	}
}

func (e *envReader) seconds(key string, dst *time.Duration) {
	var f float64 = -1
	e.float(key, &f)
	if f > 0 {
		*dst = time.Duration(f * float64(time.Second))
	}
}
