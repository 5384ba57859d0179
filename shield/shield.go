package shield

import (
	"fmt"

	gpio "github.com/aamcrae/gpio"

	"github.com/mastercactapus/stepwinch/controller"
	"github.com/mastercactapus/stepwinch/step"
)

// Pins drives the shield outputs through sysfs GPIO.
type Pins struct {
	step      [4]*gpio.Gpio
	dir       [4]*gpio.Gpio
	enable    *gpio.Gpio
	activeLow bool
}

var _ controller.Pins = &Pins{}

// Open exports and configures every shield output. On success the drivers
// start out disabled; the returned Pins hold the pin files open until
// Close.
func Open(c Config) (*Pins, error) {
	p := &Pins{activeLow: c.ActiveLow}
	var err error
	for i := 0; i < 4; i++ {
		if p.step[i], err = gpio.OutputPin(c.StepPins[i]); err != nil {
			p.Close()
			return nil, fmt.Errorf("step pin %d: %v", c.StepPins[i], err)
		}
		if p.dir[i], err = gpio.OutputPin(c.DirPins[i]); err != nil {
			p.Close()
			return nil, fmt.Errorf("dir pin %d: %v", c.DirPins[i], err)
		}
	}
	if p.enable, err = gpio.OutputPin(c.EnablePin); err != nil {
		p.Close()
		return nil, fmt.Errorf("enable pin %d: %v", c.EnablePin, err)
	}
	if err = p.SetEnabled(false); err != nil {
		p.Close()
		return nil, err
	}
	return p, nil
}

// Step returns the step line for an axis.
func (p *Pins) Step(a controller.Axis) step.Output { return p.step[a] }

// Dir returns the direction line for an axis.
func (p *Pins) Dir(a controller.Axis) step.Output { return p.dir[a] }

// SetEnabled drives the shared driver-enable line, honoring its polarity.
func (p *Pins) SetEnabled(on bool) error {
	v := 0
	if on {
		v = 1
	}
	if p.activeLow {
		v = 1 - v
	}
	return p.enable.Set(v)
}

// Close releases every exported pin. Safe to call on a partially opened
// set.
func (p *Pins) Close() {
	for i := 0; i < 4; i++ {
		if p.step[i] != nil {
			p.step[i].Close()
		}
		if p.dir[i] != nil {
			p.dir[i].Close()
		}
	}
	if p.enable != nil {
		p.enable.Close()
	}
}
