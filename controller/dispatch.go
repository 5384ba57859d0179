package controller

import (
	"strconv"

	"github.com/mastercactapus/stepwinch/path"
	"github.com/mastercactapus/stepwinch/wire"
)

// number parses a numeric token leniently: garbage applies as zero rather
// than raising an error, keeping the dispatcher silent on bad values.
func number(tok string) float64 {
	v, err := strconv.ParseFloat(tok, 64)
	if err != nil {
		return 0
	}
	return v
}

// dispatch interprets one tokenized line. Unknown command symbols and
// wrong argument counts are ignored without complaint so that newer peers
// can keep talking to older controllers.
func (c *Controller) dispatch(msg wire.Message) {
	switch msg[0] {
	case "ping":
		c.write(wire.Awake())

	case "version":
		c.write(wire.Ident(c.cfg.Ident...))

	case "enable":
		if len(msg) > 1 {
			c.setEnabled(number(msg[1]) != 0)
		}

	case "srate":
		if len(msg) > 1 {
			ms, err := strconv.ParseInt(msg[1], 10, 32)
			if err != nil || ms <= 0 {
				c.debug("invalid srate value %q", msg[1])
				return
			}
			c.statusInterval = uint32(ms) * 1000
		}

	case "a": // absolute target position
		c.eachAxisValue(msg, (*path.Generator).SetTarget)

	case "d": // relative target offset
		c.eachAxisValue(msg, (*path.Generator).IncrementTarget)

	case "r": // reference offset: a deliberate impulse past the ramp
		c.eachAxisValue(msg, (*path.Generator).IncrementReference)

	case "v": // signed open-ended velocity
		c.eachAxisValue(msg, (*path.Generator).SetVelocity)

	case "s": // ramp speed magnitude, non-positive means unlimited
		c.eachAxisValue(msg, (*path.Generator).SetSpeed)

	case "g": // gains from natural frequency and damping ratio
		c.eachAxisPair(msg, (*path.Generator).SetFreqDamping)

	case "l": // velocity and acceleration limits
		c.eachAxisPair(msg, (*path.Generator).SetLimits)
	}
}

// eachAxisValue handles the positional commands (a, d, r, v, s): walk the
// flagset left to right, and for every letter that resolves to an axis
// apply the next unconsumed value token. The value index advances only on
// a successful resolve, so unknown letters consume nothing; axes beyond the
// supplied values are left unmodified. Accepting any of these commands
// also wakes the motor drivers.
func (c *Controller) eachAxisValue(msg wire.Message, apply func(*path.Generator, float64)) {
	if len(msg) < 3 {
		return
	}
	c.setEnabled(true)

	flags, values := msg[1], msg[2:]
	vi := 0
	for i := 0; i < len(flags) && vi < len(values); i++ {
		ax, ok := AxisByLetter(flags[i])
		if !ok {
			continue
		}
		apply(c.paths[ax], number(values[vi]))
		vi++
	}
}

// eachAxisPair handles g and l: the same two trailing values apply to
// every axis named in the flagset. These commands configure the model and
// do not enable the outputs.
func (c *Controller) eachAxisPair(msg wire.Message, apply func(*path.Generator, float64, float64)) {
	if len(msg) < 4 {
		return
	}
	v1, v2 := number(msg[2]), number(msg[3])
	flags := msg[1]
	for i := 0; i < len(flags); i++ {
		if ax, ok := AxisByLetter(flags[i]); ok {
			apply(c.paths[ax], v1, v2)
		}
	}
}
