// Package shield wires the controller to an Arduino-CNC-shield-style
// stepper driver stage on Linux GPIO: four step/dir pin pairs plus a
// shared active-low enable line.
package shield

import (
	"fmt"
	"time"

	"github.com/aamcrae/config"
)

// Config holds the hardware wiring and timing for the driver stage.
type Config struct {
	StepPins  [4]int // GPIO numbers, x y z a order
	DirPins   [4]int
	EnablePin int
	ActiveLow bool // enable line polarity; the reference shield is active low

	Tick   time.Duration // step-generator tick period
	Status time.Duration // initial status-report period
	Baud   int
}

// DefaultConfig matches the reference shield jumpered for the fourth A
// axis: step 2,3,4,12, dir 5,6,7,13, enable 8 (active low).
func DefaultConfig() Config {
	return Config{
		StepPins:  [4]int{2, 3, 4, 12},
		DirPins:   [4]int{5, 6, 7, 13},
		EnablePin: 8,
		ActiveLow: true,
		Tick:      250 * time.Microsecond,
		Status:    200 * time.Millisecond,
		Baud:      115200,
	}
}

// Parse overlays settings from the [winch] section of a configuration
// file onto the defaults. Every key is optional. Sample:
//
//  [winch]
//  xaxis=2,5        # step,dir GPIO numbers
//  yaxis=3,6
//  zaxis=4,7
//  aaxis=12,13
//  enable=8
//  activehigh=0
//  tick=250us
//  srate=200ms
//  baud=115200
func Parse(conf *config.Config) (Config, error) {
	c := DefaultConfig()
	s := conf.GetSection("winch")
	if s == nil {
		return c, nil
	}

	axes := []string{"xaxis", "yaxis", "zaxis", "aaxis"}
	for i, name := range axes {
		n, err := s.Parse(name, "%d,%d", &c.StepPins[i], &c.DirPins[i])
		if err != nil {
			continue // absent, keep default
		}
		if n != 2 {
			return c, fmt.Errorf("%s: expected step,dir pin pair", name)
		}
	}
	if n, err := s.Parse("enable", "%d", &c.EnablePin); err == nil && n != 1 {
		return c, fmt.Errorf("enable: invalid pin")
	}
	var high int
	if n, err := s.Parse("activehigh", "%d", &high); err == nil {
		if n != 1 {
			return c, fmt.Errorf("activehigh: argument count")
		}
		c.ActiveLow = high == 0
	}
	if v, err := s.GetArg("tick"); err == nil {
		d, err := time.ParseDuration(v)
		if err != nil {
			return c, fmt.Errorf("tick: %v", err)
		}
		c.Tick = d
	}
	if v, err := s.GetArg("srate"); err == nil {
		d, err := time.ParseDuration(v)
		if err != nil {
			return c, fmt.Errorf("srate: %v", err)
		}
		c.Status = d
	}
	if n, err := s.Parse("baud", "%d", &c.Baud); err == nil && n != 1 {
		return c, fmt.Errorf("baud: invalid value")
	}
	return c, nil
}
