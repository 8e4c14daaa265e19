package radio

import (
	"fmt"

	"periph.io/x/conn/v3/physic"
	"periph.io/x/conn/v3/spi"
	"periph.io/x/conn/v3/spi/spireg"
	"periph.io/x/host/v3"
)

// OpenHardware opens busPath (e.g. "/dev/spidev0.0") at 4MHz/Mode0/8-bit —
// the same parameters sx1276.New applies — and wraps the resulting
// connection as a Radio, following the host.Init/spireg.Open/Connect
// sequence in _examples/michcald-nrf24/adapter-periph.go.
func OpenHardware(busPath string) (Radio, error) {
	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("radio: periph.io host init: %w", err)
	}
	port, err := spireg.Open(busPath)
	if err != nil {
		return nil, fmt.Errorf("radio: open SPI port %q: %w", busPath, err)
	}
	conn, err := port.Connect(4*physic.MegaHertz, spi.Mode0, 8)
	if err != nil {
		port.Close()
		return nil, fmt.Errorf("radio: configure SPI connection: %w", err)
	}
	return NewHardware(conn), nil
}
