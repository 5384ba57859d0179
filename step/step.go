// Package step converts a (target, speed) setpoint into timed step and
// direction pulses for one stepper motor driver.
package step

import "sync/atomic"

// Output sets the level of a single digital output line. The Gpio type
// from github.com/aamcrae/gpio satisfies it.
type Output interface {
	Set(int) error
}

// 200 microseconds between steps = 5000 steps/sec.
const defaultStepInterval = 200

// Generator emits at most one step per tick, moving position toward target
// at a constant rate.
//
// PollForInterval runs only on the fixed-period tick goroutine; every other
// method runs only on the coordinator's polling loop. The fields that cross
// that boundary (target, stepInterval, position) do so through sync/atomic;
// elapsed is private to the tick side. Each field has exactly one writer.
type Generator struct {
	target       int64 // written by the poll side, read by the tick side
	stepInterval int64 // microseconds between steps, same discipline
	position     int64 // written by the tick side, read by the poll side

	elapsed uint32 // tick side only

	stepPin, dirPin Output
}

// New returns a generator at position zero driving the given pins.
func New(stepPin, dirPin Output) *Generator {
	return &Generator{
		stepInterval: defaultStepInterval,
		stepPin:      stepPin,
		dirPin:       dirPin,
	}
}

// PollForInterval advances the step timer by interval microseconds and
// emits a single step pulse if one is due. It is bounded-time and performs
// no I/O beyond the pin writes; pin errors are dropped, there is nothing
// useful to do with them at this rate.
func (g *Generator) PollForInterval(interval uint32) {
	g.elapsed += interval
	si := uint32(atomic.LoadInt64(&g.stepInterval))
	if g.elapsed < si {
		return
	}
	// Keep the remainder rather than resetting, so the long-run average
	// rate holds up under tick jitter.
	g.elapsed -= si

	pos := atomic.LoadInt64(&g.position)
	target := atomic.LoadInt64(&g.target)
	if pos == target {
		return
	}

	// Direction always matches the sign of the remaining motion.
	if pos < target {
		g.dirPin.Set(1)
		pos++
	} else {
		g.dirPin.Set(0)
		pos--
	}
	g.stepPin.Set(1)
	atomic.StoreInt64(&g.position, pos)
	g.stepPin.Set(0)
}

// SetTarget sets the absolute target position in steps.
func (g *Generator) SetTarget(pos int64) { atomic.StoreInt64(&g.target, pos) }

// IncrementTarget adds a signed offset to the target position.
func (g *Generator) IncrementTarget(offset int64) { atomic.AddInt64(&g.target, offset) }

// SetSpeed sets the constant stepping rate in steps/sec. Zero and negative
// rates are ignored and the previous rate stays in effect. The shortest
// interval is one microsecond; the usable maximum is bounded by the tick
// period.
func (g *Generator) SetSpeed(stepsPerSec int64) {
	if stepsPerSec <= 0 {
		return
	}
	interval := int64(1000000) / stepsPerSec
	if interval == 0 {
		interval = 1
	}
	atomic.StoreInt64(&g.stepInterval, interval)
}

// CurrentPosition returns the current position in steps.
func (g *Generator) CurrentPosition() int64 { return atomic.LoadInt64(&g.position) }
