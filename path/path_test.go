package path

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

const tickUS = 1000 // 1 ms model tick for tests

func run(g *Generator, ticks int) {
	for i := 0; i < ticks; i++ {
		g.PollForInterval(tickUS)
	}
}

func TestGenerator_Defaults(t *testing.T) {
	g := New()

	assert.Equal(t, int64(0), g.CurrentPosition())
	assert.Equal(t, int64(0), g.CurrentVelocity())
	assert.True(t, g.Speed().Unlimited)
	// 2 Hz natural frequency, critical damping.
	assert.InEpsilon(t, 4*math.Pi*math.Pi*4, g.k, 1e-9)
	assert.InEpsilon(t, 2*math.Sqrt(g.k), g.b, 1e-9)
	assert.Equal(t, DefaultVelMax, g.velMax)
	assert.Equal(t, DefaultAccMax, g.accMax)
}

func TestGenerator_ConvergesToTarget(t *testing.T) {
	g := New()
	g.SetTarget(100)

	// Unlimited ramp: the reference snaps to the target on the first
	// update and the model settles onto it.
	g.PollForInterval(tickUS)
	assert.Equal(t, 100.0, g.ref)

	run(g, 20000)
	// The model approaches the target from below; the truncated reading
	// settles within one count of it.
	assert.InDelta(t, 100.0, g.pos, 1e-9)
	assert.InDelta(t, 100, g.CurrentPosition(), 1)
	assert.Equal(t, int64(0), g.CurrentVelocity())
}

func TestGenerator_RampRate(t *testing.T) {
	g := New()
	g.SetSpeed(500)
	g.SetTarget(100)

	g.PollForInterval(tickUS)
	assert.InDelta(t, 0.5, g.ref, 1e-9, "reference moves speed*dt per tick")
	assert.Equal(t, 500.0, g.refVel)

	// The reference never overshoots the target and the ramp velocity
	// reads zero once it arrives.
	run(g, 1000)
	assert.Equal(t, 100.0, g.ref)
	assert.Equal(t, 0.0, g.refVel)
}

func TestGenerator_RampNegative(t *testing.T) {
	g := New()
	g.SetSpeed(500)
	g.SetTarget(-100)

	g.PollForInterval(tickUS)
	assert.InDelta(t, -0.5, g.ref, 1e-9)
	assert.Equal(t, -500.0, g.refVel)
}

func TestGenerator_VelocityClamp(t *testing.T) {
	g := New()
	g.SetLimits(100, 24000)
	g.SetVelocity(500)

	for i := 0; i < 5000; i++ {
		g.PollForInterval(tickUS)
		assert.True(t, math.Abs(g.vel) <= 100.0, "|vel| exceeded limit: %v", g.vel)
	}
	// The axis keeps drifting toward the open-ended target.
	assert.True(t, g.CurrentPosition() > 0)
}

func TestGenerator_AccelerationClamp(t *testing.T) {
	g := New()
	g.SetPDGains(1e9, 0) // absurd stiffness, drive saturates immediately
	g.SetTarget(1000)

	prev := g.vel
	for i := 0; i < 2000; i++ {
		g.PollForInterval(tickUS)
		assert.True(t, math.Abs(g.acc) <= g.accMax, "|acc| exceeded limit: %v", g.acc)
		dv := math.Abs(g.vel - prev)
		assert.True(t, dv <= g.accMax*1e-6*tickUS+1e-9, "vel step too large: %v", dv)
		prev = g.vel
	}
}

func TestGenerator_SetVelocity(t *testing.T) {
	g := New()
	g.SetVelocity(500)
	assert.Equal(t, Limited(500), g.Speed())
	assert.True(t, math.IsInf(g.target, 1))

	g.SetVelocity(-250)
	assert.Equal(t, Limited(250), g.Speed())
	assert.True(t, math.IsInf(g.target, -1))

	// Zero keeps the positive-infinity target but freezes the ramp.
	g.SetVelocity(0)
	assert.Equal(t, Limited(0), g.Speed())
	assert.True(t, math.IsInf(g.target, 1))
	ref := g.ref
	run(g, 10)
	assert.Equal(t, ref, g.ref)
}

func TestGenerator_SetSpeedIdempotent(t *testing.T) {
	g := New()
	g.SetSpeed(500)
	before := *g
	g.SetSpeed(500)
	assert.Equal(t, before, *g)
}

func TestGenerator_SetSpeedUnlimited(t *testing.T) {
	g := New()
	g.SetSpeed(500)
	assert.Equal(t, Limited(500), g.Speed())
	g.SetSpeed(0)
	assert.True(t, g.Speed().Unlimited)
	g.SetSpeed(-5)
	assert.True(t, g.Speed().Unlimited)
}

func TestGenerator_ReferenceImpulse(t *testing.T) {
	g := New()
	g.SetSpeed(1000)
	g.IncrementReference(50)
	assert.Equal(t, 50.0, g.ref)

	// The reference ramps back toward the (unchanged) zero target.
	g.PollForInterval(tickUS)
	assert.InDelta(t, 49.0, g.ref, 1e-9)
	assert.Equal(t, -1000.0, g.refVel)
}

func TestGenerator_IncrementTarget(t *testing.T) {
	g := New()
	g.SetTarget(100)
	g.IncrementTarget(-30)
	assert.Equal(t, 70.0, g.target)
}

func TestGenerator_SetFreqDamping(t *testing.T) {
	g := New()
	g.SetFreqDamping(1.0, 0.5)
	assert.InEpsilon(t, 4*math.Pi*math.Pi, g.k, 1e-9)
	assert.InEpsilon(t, math.Sqrt(4*math.Pi*math.Pi), g.b, 1e-9)
}
