// Command loragwd runs the host-side bridge daemon for the LoRa/GFSK
// transceiver firmware: it owns the serial link to the device and the SPI
// link to the radio chip used in loopback/bench setups where the "device"
// core runs on the same host as the test harness, following the
// flag+TOML-config, host.Init-then-wire shape of
// _examples/tve-devices/cmd/mqttradio/main.go.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/tve/lplora/device"
	"github.com/tve/lplora/gpio"
	"github.com/tve/lplora/logging"
	"github.com/tve/lplora/queue"
	"github.com/tve/lplora/radio"
	"github.com/tve/lplora/serial"
)

func main() {
	configFile := flag.String("config", "loragwd.toml", "path to config file")
	debug := flag.Bool("debug", false, "enable verbose logging")
	flag.Parse()

	cfg := &Config{}
	rawConfig, err := os.ReadFile(*configFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "loragwd: cannot access config file: %s\n", err)
		os.Exit(1)
	}
	if err := toml.Unmarshal(rawConfig, cfg); err != nil {
		fmt.Fprintf(os.Stderr, "loragwd: cannot parse config file: %s\n", err)
		os.Exit(1)
	}
	if *debug {
		cfg.Debug = true
	}

	log := logging.Std{Verbose: cfg.Debug}

	if err := run(cfg, log); err != nil {
		log.Errorf("loragwd: %v", err)
		os.Exit(1)
	}
}

func run(cfg *Config, log logging.Logger) error {
	port, err := serial.Open(cfg.Serial.Port)
	if err != nil {
		return fmt.Errorf("open serial port: %w", err)
	}
	defer port.Close()

	if cfg.SPI.ResetPin != "" {
		resetPin, err := gpio.OpenPin(cfg.SPI.ResetPin)
		if err != nil {
			return fmt.Errorf("open radio reset pin: %w", err)
		}
		if err := resetPin.Out(gpio.Low); err != nil {
			return fmt.Errorf("assert radio reset: %w", err)
		}
		time.Sleep(10 * time.Millisecond)
		if err := resetPin.Out(gpio.High); err != nil {
			return fmt.Errorf("release radio reset: %w", err)
		}
		time.Sleep(10 * time.Millisecond)
	}

	hw, err := radio.OpenHardware(cfg.SPI.Bus)
	if err != nil {
		return fmt.Errorf("open radio SPI bus: %w", err)
	}

	pin1, err := gpio.OpenPin(cfg.SPI.SwitchPin1)
	if err != nil {
		return fmt.Errorf("open RF switch pin 1: %w", err)
	}
	pin2, err := gpio.OpenPin(cfg.SPI.SwitchPin2)
	if err != nil {
		return fmt.Errorf("open RF switch pin 2: %w", err)
	}
	sw := gpio.Switch{Pin1: pin1, Pin2: pin2}

	rxQueue := queue.New()
	txQueue := queue.New()

	ctrl := radio.New(hw, sw, txQueue, nil, log)
	if err := ctrl.Setup(); err != nil {
		return fmt.Errorf("radio setup: %w", err)
	}

	dev := device.New(port, ctrl, rxQueue, txQueue, log)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	dev.SetRestartHandler(cancel)

	if cfg.SPI.IntrPin != "" {
		irqPin, err := gpio.OpenIRQPin(cfg.SPI.IntrPin)
		if err != nil {
			return fmt.Errorf("open radio interrupt pin: %w", err)
		}
		go watchRadioIRQ(ctx, irqPin, dev, log)
	}

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sig
		cancel()
	}()

	log.Infof("loragwd: ready")
	err = dev.Run(ctx)
	if err != nil && ctx.Err() != nil {
		return nil
	}
	return err
}

// watchRadioIRQ blocks on the radio's interrupt pin and forwards each edge
// as a software pend, the real-hardware counterpart to the RadioSend-driven
// software pends device.Device already issues.
func watchRadioIRQ(ctx context.Context, pin *gpio.PeriphIRQPin, dev *device.Device, log logging.Logger) {
	for {
		if ctx.Err() != nil {
			return
		}
		if err := pin.Wait(); err != nil {
			log.Errorf("radio: interrupt pin wait: %v", err)
			return
		}
		dev.NotifyRadioIRQ()
	}
}
