package serial

import (
	"fmt"

	"github.com/tarm/serial"
)

// Open dials a tarm/serial port at the link parameters from spec §6: 9600
// baud, 8N1, no flow control.
func Open(name string) (Port, error) {
	cfg := &serial.Config{
		Name:        name,
		Baud:        9600,
		Parity:      serial.ParityNone,
		StopBits:    serial.Stop1,
		ReadTimeout: 0,
	}
	p, err := serial.OpenPort(cfg)
	if err != nil {
		return nil, fmt.Errorf("serial: open %q: %w", name, err)
	}
	return p, nil
}
