// Package controller couples the wire protocol to the per-axis motion
// generators. A Controller owns the four (path, step) generator pairs,
// services the step generators from a fixed-period tick goroutine, and
// services the tokenizer, dispatcher, path generators, and status
// reporting from a single polling loop.
package controller

import (
	"context"
	"fmt"
	"io"
	"log"
	"time"

	"github.com/mastercactapus/stepwinch/path"
	"github.com/mastercactapus/stepwinch/step"
	"github.com/mastercactapus/stepwinch/wire"
)

// Pins is the digital-output surface the controller drives: one step and
// one direction line per axis plus a shared driver-enable line.
type Pins interface {
	Step(Axis) step.Output
	Dir(Axis) step.Output
	SetEnabled(bool) error
}

// Config carries the timing and identity settings for a Controller.
type Config struct {
	// Tick is the step-generator service period. Default 250us.
	Tick time.Duration
	// Poll is the main-loop period. Default 1ms.
	Poll time.Duration
	// StatusEvery is the initial status-report period. Default 200ms
	// (5 Hz). Adjustable at runtime with the srate command.
	StatusEvery time.Duration
	// Ident are the tokens reported in reply to the version command.
	Ident []string
}

func (c *Config) fillDefaults() {
	if c.Tick <= 0 {
		c.Tick = 250 * time.Microsecond
	}
	if c.Poll <= 0 {
		c.Poll = time.Millisecond
	}
	if c.StatusEvery <= 0 {
		c.StatusEvery = 200 * time.Millisecond
	}
	if len(c.Ident) == 0 {
		c.Ident = []string{"stepwinch", "1.0", "4-axis"}
	}
}

// Controller runs four independent winch axes behind one command stream.
type Controller struct {
	rw  io.ReadWriter
	cfg Config

	tok  *wire.Tokenizer
	pins Pins

	paths [NumAxes]*path.Generator
	steps [NumAxes]*step.Generator

	// statusInterval and lastStatus are microseconds on the wraparound
	// clock; poll-loop context only.
	statusInterval uint32
	lastStatus     uint32

	enabled bool

	in   chan []byte
	errs chan error

	epoch time.Time
}

// New builds a controller on the given byte stream and output pins. All
// per-axis state is allocated here, once; nothing is created or destroyed
// afterward.
func New(rw io.ReadWriter, pins Pins, cfg Config) *Controller {
	cfg.fillDefaults()
	c := &Controller{
		rw:             rw,
		cfg:            cfg,
		tok:            wire.NewTokenizer(),
		pins:           pins,
		statusInterval: uint32(cfg.StatusEvery.Microseconds()),
		in:             make(chan []byte, 64),
		errs:           make(chan error, 1),
		epoch:          time.Now(),
	}
	for i := 0; i < NumAxes; i++ {
		c.paths[i] = path.New()
		c.steps[i] = step.New(pins.Step(Axis(i)), pins.Dir(Axis(i)))
	}
	return c
}

// Path returns the path generator for an axis.
func (c *Controller) Path(a Axis) *path.Generator { return c.paths[a] }

// Stepper returns the step generator for an axis.
func (c *Controller) Stepper(a Axis) *step.Generator { return c.steps[a] }

// micros returns the monotonic clock truncated to 32 bits of microseconds.
// Intervals are taken as now-last; the subtraction is wraparound-safe by
// unsigned arithmetic.
func (c *Controller) micros() uint32 {
	return uint32(time.Since(c.epoch).Microseconds())
}

// Run announces itself on the stream and services it until the context is
// canceled or the stream fails. It returns nil on a clean EOF.
func (c *Controller) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	go c.readLoop(ctx)
	go c.tickLoop(ctx)

	if _, err := c.rw.Write(wire.Awake()); err != nil {
		return err
	}
	return c.pollLoop(ctx)
}

// readLoop moves bytes from the stream onto the input channel so the poll
// loop can consume them without blocking.
func (c *Controller) readLoop(ctx context.Context) {
	buf := make([]byte, 256)
	for {
		n, err := c.rw.Read(buf)
		if n > 0 {
			data := make([]byte, n)
			copy(data, buf[:n])
			select {
			case c.in <- data:
			case <-ctx.Done():
				return
			}
		}
		if err != nil {
			select {
			case c.errs <- err:
			case <-ctx.Done():
			}
			return
		}
	}
}

// tickLoop stands in for the timer interrupt: a fixed-period ticker that
// services only the step generators with the measured elapsed interval.
// It never touches the byte stream or the log.
func (c *Controller) tickLoop(ctx context.Context) {
	ticker := time.NewTicker(c.cfg.Tick)
	defer ticker.Stop()
	last := c.micros()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			now := c.micros()
			interval := now - last
			last = now
			for _, s := range c.steps {
				s.PollForInterval(interval)
			}
		}
	}
}

// pollLoop is the cooperative main loop: drain input, advance the path
// generators with one shared measured interval, publish the setpoints,
// report status.
func (c *Controller) pollLoop(ctx context.Context) error {
	ticker := time.NewTicker(c.cfg.Poll)
	defer ticker.Stop()
	last := c.micros()
	c.lastStatus = last
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case err := <-c.errs:
			if err == io.EOF {
				return nil
			}
			return err
		case data := <-c.in:
			c.feed(data)
		case <-ticker.C:
			c.drainInput()
			now := c.micros()
			c.advance(now - last)
			last = now
			c.maybeStatus(now)
		}
	}
}

func (c *Controller) drainInput() {
	for {
		select {
		case data := <-c.in:
			c.feed(data)
		default:
			return
		}
	}
}

// feed runs available bytes through the tokenizer and dispatches any
// completed messages. Oversized lines cost one diagnostic each and are
// otherwise ignored.
func (c *Controller) feed(data []byte) {
	for _, b := range data {
		msg, err := c.tok.Feed(b)
		if err != nil {
			c.debug(err.Error())
			continue
		}
		if msg != nil {
			c.dispatch(msg)
		}
	}
}

// advance integrates every axis with the same measured interval, then
// republishes each path's position and speed as its stepper's setpoint.
func (c *Controller) advance(interval uint32) {
	for i, p := range c.paths {
		p.PollForInterval(interval)
		s := c.steps[i]
		s.SetTarget(p.CurrentPosition())
		v := p.CurrentVelocity()
		if v < 0 {
			v = -v
		}
		s.SetSpeed(v) // zero is ignored, keeping the last rate
	}
}

func (c *Controller) maybeStatus(now uint32) {
	if now-c.lastStatus < c.statusInterval {
		return
	}
	c.lastStatus = now
	c.write(wire.Status(now,
		c.steps[X].CurrentPosition(),
		c.steps[Y].CurrentPosition(),
		c.steps[Z].CurrentPosition(),
		c.steps[A].CurrentPosition()))
}

// setEnabled drives the shared enable line, deduplicating repeats.
func (c *Controller) setEnabled(on bool) {
	if c.enabled == on {
		return
	}
	c.enabled = on
	if err := c.pins.SetEnabled(on); err != nil {
		log.Println("ERROR: set enable:", err)
	}
}

func (c *Controller) write(p []byte) {
	if _, err := c.rw.Write(p); err != nil {
		log.Println("ERROR: write:", err)
	}
}

func (c *Controller) debug(format string, args ...interface{}) {
	text := fmt.Sprintf(format, args...)
	log.Println("dbg:", text)
	c.write(wire.Debug(text))
}
