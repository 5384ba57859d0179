// Command stepwinch drives up to four stepper winch axes from a
// line-oriented command stream, over a serial port or a websocket.
package main

import (
	"context"
	"flag"
	"io"
	"log"
	"net/http"

	"github.com/aamcrae/config"
	"github.com/tarm/serial"

	"github.com/mastercactapus/stepwinch/controller"
	"github.com/mastercactapus/stepwinch/shield"
	"github.com/mastercactapus/stepwinch/wsio"
)

func main() {
	log.SetFlags(log.Lshortfile)

	port := flag.String("port", "/dev/ttyUSB0", "Serial port carrying the command stream.")
	baud := flag.Int("baud", 0, "Serial baud rate (overrides config; default 115200).")
	configFile := flag.String("config", "", "Optional pin/timing configuration file.")
	wsAddr := flag.String("ws", "", "Listen address for a websocket command stream instead of serial.")
	flag.Parse()

	cfg := shield.DefaultConfig()
	if *configFile != "" {
		conf, err := config.ParseFile(*configFile)
		if err != nil {
			log.Fatalf("%s: %v", *configFile, err)
		}
		cfg, err = shield.Parse(conf)
		if err != nil {
			log.Fatalf("%s: %v", *configFile, err)
		}
	}
	if *baud != 0 {
		cfg.Baud = *baud
	}

	pins, err := shield.Open(cfg)
	if err != nil {
		log.Fatal(err)
	}
	defer pins.Close()

	ctrlCfg := controller.Config{
		Tick:        cfg.Tick,
		StatusEvery: cfg.Status,
	}

	if *wsAddr != "" {
		// Axis positions reset with each connection, the same as a
		// serial power cycle.
		log.Println("listening on", *wsAddr)
		err := http.ListenAndServe(*wsAddr, wsio.Handler(func(rw io.ReadWriter) error {
			return controller.New(rw, pins, ctrlCfg).Run(context.Background())
		}))
		log.Fatal(err)
	}

	s, err := serial.OpenPort(&serial.Config{Name: *port, Baud: cfg.Baud})
	if err != nil {
		log.Fatal(err)
	}
	defer s.Close()

	if err := controller.New(s, pins, ctrlCfg).Run(context.Background()); err != nil {
		log.Fatal(err)
	}
}
