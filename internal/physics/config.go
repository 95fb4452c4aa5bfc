package physics

// Defaults for the point pile. Units are logical pixels and seconds unless
// noted; impulses are pixels of displacement per step.
const (
	DefaultMaxParticles = 1500

	DefaultRadiusMin = 6.0
	DefaultRadiusMax = 11.0

	DefaultDepthLevels  = 4
	DefaultDepthEpsilon = 0.01

	DefaultGravity       = 900.0 // px/s^2, +y is down
	DefaultDamping       = 0.99  // velocity kept per step
	DefaultBounce        = 0.3
	DefaultFloorFriction = 0.92
	DefaultSolverPasses  = 3

	DefaultRepulsionRadius   = 90.0
	DefaultRepulsionStrength = 4.0

	DefaultExplosionPower       = 1800.0
	DefaultExplosionMinDistance = 12.0
	DefaultExplosionMaxImpulse  = 60.0

	DefaultDeathDuration   = 0.9 // seconds from Dying to PendingRemoval
	DefaultDeathFloatPhase = 0.4 // first part of the death timer floats, the rest dissolves
	DefaultDeathRiseSpeed  = 40.0
	DefaultDeathSpinBoost  = 3.0
	DefaultSpinMax         = 2.5 // rad/s

	DefaultSpawnBand     = 80.0
	DefaultCeilingMargin = 2000.0
)

// Config tunes an Engine. Fields left at zero are filled from the defaults by
// New, except Seed which falls back to 1.
type Config struct {
	MaxParticles int

	RadiusMin float64
	RadiusMax float64

	DepthLevels  int
	DepthEpsilon float64

	Gravity       float64
	Damping       float64
	Bounce        float64
	FloorFriction float64
	SolverPasses  int

	RepulsionRadius   float64
	RepulsionStrength float64

	ExplosionMinDistance float64
	ExplosionMaxImpulse  float64

	DeathDuration   float64
	DeathFloatPhase float64
	DeathRiseSpeed  float64
	DeathSpinBoost  float64
	SpinMax         float64

	SpawnBand     float64
	CeilingMargin float64

	// Palette is indexed by depth layer, back to front. Missing entries reuse
	// the last colour.
	Palette []RGB

	Seed uint64

	// ZeroGravity disables gravity even though Gravity is zero-filled.
	ZeroGravity bool
}

// DefaultConfig returns the tuning used by the app.
func DefaultConfig() Config {
	return Config{
		MaxParticles:         DefaultMaxParticles,
		RadiusMin:            DefaultRadiusMin,
		RadiusMax:            DefaultRadiusMax,
		DepthLevels:          DefaultDepthLevels,
		DepthEpsilon:         DefaultDepthEpsilon,
		Gravity:              DefaultGravity,
		Damping:              DefaultDamping,
		Bounce:               DefaultBounce,
		FloorFriction:        DefaultFloorFriction,
		SolverPasses:         DefaultSolverPasses,
		RepulsionRadius:      DefaultRepulsionRadius,
		RepulsionStrength:    DefaultRepulsionStrength,
		ExplosionMinDistance: DefaultExplosionMinDistance,
		ExplosionMaxImpulse:  DefaultExplosionMaxImpulse,
		DeathDuration:        DefaultDeathDuration,
		DeathFloatPhase:      DefaultDeathFloatPhase,
		DeathRiseSpeed:       DefaultDeathRiseSpeed,
		DeathSpinBoost:       DefaultDeathSpinBoost,
		SpinMax:              DefaultSpinMax,
		SpawnBand:            DefaultSpawnBand,
		CeilingMargin:        DefaultCeilingMargin,
		Palette:              append([]RGB(nil), DefaultPalette...),
		Seed:                 1,
	}
}

func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.MaxParticles <= 0 {
		c.MaxParticles = d.MaxParticles
	}
	if c.RadiusMin <= 0 {
		c.RadiusMin = d.RadiusMin
	}
	if c.RadiusMax < c.RadiusMin {
		c.RadiusMax = c.RadiusMin
	}
	if c.DepthLevels <= 0 {
		c.DepthLevels = d.DepthLevels
	}
	if c.DepthEpsilon <= 0 {
		c.DepthEpsilon = d.DepthEpsilon
	}
	if c.Gravity == 0 && !c.ZeroGravity {
		c.Gravity = d.Gravity
	}
	if c.ZeroGravity {
		c.Gravity = 0
	}
	if c.Damping <= 0 || c.Damping > 1 {
		c.Damping = d.Damping
	}
	if c.Bounce < 0 || c.Bounce > 1 {
		c.Bounce = d.Bounce
	}
	if c.FloorFriction <= 0 || c.FloorFriction > 1 {
		c.FloorFriction = d.FloorFriction
	}
	if c.SolverPasses <= 0 {
		c.SolverPasses = d.SolverPasses
	}
	if c.RepulsionRadius <= 0 {
		c.RepulsionRadius = d.RepulsionRadius
	}
	if c.RepulsionStrength <= 0 {
		c.RepulsionStrength = d.RepulsionStrength
	}
	if c.ExplosionMinDistance <= 0 {
		c.ExplosionMinDistance = d.ExplosionMinDistance
	}
	if c.ExplosionMaxImpulse <= 0 {
		c.ExplosionMaxImpulse = d.ExplosionMaxImpulse
	}
	if c.DeathDuration <= 0 {
		c.DeathDuration = d.DeathDuration
	}
	if c.DeathFloatPhase <= 0 || c.DeathFloatPhase >= 1 {
		c.DeathFloatPhase = d.DeathFloatPhase
	}
	if c.DeathRiseSpeed < 0 {
		c.DeathRiseSpeed = d.DeathRiseSpeed
	}
	if c.DeathSpinBoost <= 0 {
		c.DeathSpinBoost = d.DeathSpinBoost
	}
	if c.SpinMax < 0 {
		c.SpinMax = d.SpinMax
	}
	if c.SpawnBand <= 0 {
		c.SpawnBand = d.SpawnBand
	}
	if c.CeilingMargin <= 0 {
		c.CeilingMargin = d.CeilingMargin
	}
	if len(c.Palette) == 0 {
		c.Palette = d.Palette
	}
	if c.Seed == 0 {
		c.Seed = 1
	}
	return c
}
