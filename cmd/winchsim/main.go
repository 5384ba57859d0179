// Command winchsim runs the full controller against stdin/stdout with
// simulated pins, for exercising the wire protocol without hardware.
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"sync/atomic"
	"time"

	"github.com/mastercactapus/stepwinch/controller"
	"github.com/mastercactapus/stepwinch/step"
)

// simPin counts rising edges on a fake output line.
type simPin struct {
	level int64
	rises int64
}

func (p *simPin) Set(v int) error {
	if v != 0 && atomic.LoadInt64(&p.level) == 0 {
		atomic.AddInt64(&p.rises, 1)
	}
	atomic.StoreInt64(&p.level, int64(v))
	return nil
}

func (p *simPin) Rises() int64 { return atomic.LoadInt64(&p.rises) }

type simPins struct {
	steps, dirs [controller.NumAxes]*simPin
	enabled     int64
}

func newSimPins() *simPins {
	f := &simPins{}
	for i := range f.steps {
		f.steps[i] = &simPin{}
		f.dirs[i] = &simPin{}
	}
	return f
}

func (f *simPins) Step(a controller.Axis) step.Output { return f.steps[a] }
func (f *simPins) Dir(a controller.Axis) step.Output  { return f.dirs[a] }
func (f *simPins) SetEnabled(on bool) error {
	var v int64
	if on {
		v = 1
	}
	atomic.StoreInt64(&f.enabled, v)
	return nil
}

var _ controller.Pins = &simPins{}

// stdio joins stdin and stdout into one byte stream.
type stdio struct{}

func (stdio) Read(p []byte) (int, error)  { return os.Stdin.Read(p) }
func (stdio) Write(p []byte) (int, error) { return os.Stdout.Write(p) }

func main() {
	log.SetFlags(log.Lshortfile)

	tick := flag.Duration("tick", time.Millisecond, "Step tick period.")
	srate := flag.Duration("srate", time.Second, "Initial status period.")
	pulses := flag.Bool("pulses", false, "Log pulse counts once a second.")
	flag.Parse()

	pins := newSimPins()
	if *pulses {
		go func() {
			for range time.NewTicker(time.Second).C {
				log.Printf("pulses x=%d y=%d z=%d a=%d enabled=%d",
					pins.steps[controller.X].Rises(),
					pins.steps[controller.Y].Rises(),
					pins.steps[controller.Z].Rises(),
					pins.steps[controller.A].Rises(),
					atomic.LoadInt64(&pins.enabled))
			}
		}()
	}

	c := controller.New(stdio{}, pins, controller.Config{
		Tick:        *tick,
		StatusEvery: *srate,
	})
	if err := c.Run(context.Background()); err != nil {
		log.Fatal(err)
	}
}
