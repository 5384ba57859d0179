// Package path generates smooth per-axis motion trajectories. A
// critically-damped second-order model tracks a rate-limited reference,
// which in turn chases the user target. The result is an expressive,
// fluid profile suitable for driving a constant-rate step generator.
package path

import "math"

// Default limits, a typical physical range for 4x microstepping.
const (
	DefaultVelMax = 2400.0
	DefaultAccMax = 24000.0
)

// Speed is the ramp rate for the reference trajectory. Unlimited means the
// reference snaps to the target in a single update instead of ramping.
type Speed struct {
	Rate      float64
	Unlimited bool
}

// Limited returns a finite ramp rate in units/sec.
func Limited(rate float64) Speed { return Speed{Rate: rate} }

// Unlimited returns the snap-to-target ramp rate.
func Unlimited() Speed { return Speed{Unlimited: true} }

// Generator integrates one axis's motion model. All methods must be called
// from a single goroutine; the generator owns no shared state.
//
// The model runs in dimensionless units (steps): pos/vel/acc are the
// integrated state, ref/refVel the ramp-limited intermediate setpoint, and
// target the user's commanded position. k and b are the stiffness
// (1/sec^2) and damping (1/sec) gains of the spring-damper that pulls the
// model toward the reference.
type Generator struct {
	pos, vel, acc float64
	ref, refVel   float64
	target        float64
	speed         Speed

	t    float64
	k, b float64

	velMax, accMax float64
}

// New returns a generator at rest at the origin with an unlimited ramp,
// default limits, and gains for a 2 Hz critically damped response.
func New() *Generator {
	g := &Generator{
		speed:  Unlimited(),
		velMax: DefaultVelMax,
		accMax: DefaultAccMax,
	}
	g.SetFreqDamping(2.0, 1.0)
	return g
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// PollForInterval advances the model by interval microseconds. Call it once
// per main-loop iteration with the measured elapsed time.
func (g *Generator) PollForInterval(interval uint32) {
	dt := 1e-6 * float64(interval)

	// Spring-damper drive toward the reference, acceleration-clamped.
	acc := g.k*(g.ref-g.pos) + g.b*(g.refVel-g.vel)
	acc = clamp(acc, -g.accMax, g.accMax)

	// Semi-implicit Euler step.
	g.pos += g.vel * dt
	g.vel += acc * dt
	g.t += dt
	g.acc = acc

	g.vel = clamp(g.vel, -g.velMax, g.velMax)

	// Ramp the reference toward the target.
	err := g.target - g.ref
	switch {
	case err == 0:
		g.refVel = 0
	case g.speed.Unlimited:
		g.ref = g.target
		g.refVel = 0
	case err > 0:
		g.ref += math.Min(g.speed.Rate*dt, err)
		g.refVel = g.speed.Rate
	default:
		g.ref -= math.Min(g.speed.Rate*dt, -err)
		g.refVel = -g.speed.Rate
	}
}

// SetTarget sets the absolute target position in steps.
func (g *Generator) SetTarget(pos float64) { g.target = pos }

// IncrementTarget adds a signed offset to the target position.
func (g *Generator) IncrementTarget(offset float64) { g.target += offset }

// IncrementReference adds a signed offset directly to the reference,
// bypassing the ramp. The effect is a triangular impulse: the reference
// steps, then ramps back toward the target.
func (g *Generator) IncrementReference(offset float64) { g.ref += offset }

// SetSpeed sets the ramp rate in steps/sec. Values less than or equal to
// zero select an unlimited ramp, so the reference moves in steps instead.
func (g *Generator) SetSpeed(v float64) {
	if v <= 0 {
		g.speed = Unlimited()
	} else {
		g.speed = Limited(v)
	}
}

// SetVelocity commands open-ended motion: the target moves to positive or
// negative infinity matching the sign of v, and the ramp rate becomes |v|,
// so the axis drifts indefinitely at that rate.
func (g *Generator) SetVelocity(v float64) {
	g.speed = Limited(math.Abs(v))
	if v >= 0 {
		g.target = math.Inf(1)
	} else {
		g.target = math.Inf(-1)
	}
}

// SetPDGains sets the model stiffness and damping directly.
func (g *Generator) SetPDGains(k, b float64) { g.k, g.b = k, b }

// SetFreqDamping derives the gains from a natural frequency in Hz and a
// damping ratio (1.0 is critical damping): k = (2*pi*freq)^2,
// b = 2*sqrt(k)*damping.
func (g *Generator) SetFreqDamping(freq, damping float64) {
	g.k = freq * freq * 4 * math.Pi * math.Pi
	g.b = 2 * math.Sqrt(g.k) * damping
}

// SetLimits sets the hard velocity and acceleration bounds.
func (g *Generator) SetLimits(velMax, accMax float64) {
	g.velMax, g.accMax = velMax, accMax
}

// CurrentPosition returns the model position truncated to steps.
func (g *Generator) CurrentPosition() int64 { return int64(g.pos) }

// CurrentVelocity returns the model velocity truncated to steps/sec.
func (g *Generator) CurrentVelocity() int64 { return int64(g.vel) }

// Speed reports the current ramp rate setting.
func (g *Generator) Speed() Speed { return g.speed }

// Target reports the user target position.
func (g *Generator) Target() float64 { return g.target }

// Reference reports the ramp-limited reference position.
func (g *Generator) Reference() float64 { return g.ref }

// Gains reports the stiffness and damping gains.
func (g *Generator) Gains() (k, b float64) { return g.k, g.b }

// Limits reports the velocity and acceleration bounds.
func (g *Generator) Limits() (velMax, accMax float64) { return g.velMax, g.accMax }
