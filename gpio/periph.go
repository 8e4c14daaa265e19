package gpio

import (
	"fmt"

	pgpio "periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/host/v3"
)

// PeriphPin adapts a periph.io gpio.PinIO to the Pin interface, the same
// wrapping _examples/michcald-nrf24/adapter-periph.go does for nrf24's own
// Pin interface.
type PeriphPin struct {
	pin pgpio.PinIO
}

// OpenPin initializes the periph.io host (idempotent) and resolves name
// (e.g. "GPIO23") to a PeriphPin, the same lookup
// _examples/tve-devices/cmd/mqttradio/raw.go performs via gpioreg.ByName for
// its radio interrupt pin.
func OpenPin(name string) (*PeriphPin, error) {
	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("gpio: periph.io host init: %w", err)
	}
	p := gpioreg.ByName(name)
	if p == nil {
		return nil, fmt.Errorf("gpio: no such pin %q", name)
	}
	if err := p.Out(pgpio.Low); err != nil {
		return nil, fmt.Errorf("gpio: configure %q as output: %w", name, err)
	}
	return &PeriphPin{pin: p}, nil
}

// Out implements Pin.
func (p *PeriphPin) Out(l Level) error {
	if l == High {
		return p.pin.Out(pgpio.High)
	}
	return p.pin.Out(pgpio.Low)
}

var _ Pin = (*PeriphPin)(nil)

// IRQPin is the radio's interrupt line: Wait blocks until the next rising
// edge, the capability device.Device's radio IRQ loop needs to be driven by
// real hardware instead of only software pends.
type IRQPin interface {
	Wait() error
}

// PeriphIRQPin adapts a periph.io input pin with edge detection to IRQPin,
// the same WaitForEdge polling loop
// _examples/michcald-nrf24/adapter-periph.go's realPin.Watch runs, collapsed
// here into a single blocking call per edge instead of a persistent watcher
// goroutine with its own handler callback.
type PeriphIRQPin struct {
	pin pgpio.PinIO
}

// OpenIRQPin resolves name and configures it as a pulled-down input armed
// for rising-edge detection.
func OpenIRQPin(name string) (*PeriphIRQPin, error) {
	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("gpio: periph.io host init: %w", err)
	}
	p := gpioreg.ByName(name)
	if p == nil {
		return nil, fmt.Errorf("gpio: no such pin %q", name)
	}
	if err := p.In(pgpio.PullDown, pgpio.RisingEdge); err != nil {
		return nil, fmt.Errorf("gpio: configure %q as interrupt input: %w", name, err)
	}
	return &PeriphIRQPin{pin: p}, nil
}

// Wait blocks until the pin reports a rising edge.
func (p *PeriphIRQPin) Wait() error {
	if !p.pin.WaitForEdge(-1) {
		return fmt.Errorf("gpio: WaitForEdge on %v failed", p.pin)
	}
	return nil
}

var _ IRQPin = (*PeriphIRQPin)(nil)
