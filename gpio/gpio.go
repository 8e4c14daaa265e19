// Package gpio provides the minimal output-pin capability the radio
// controller needs to drive the antenna RF switch, generalized from the
// Pin interface in _examples/michcald-nrf24/interfaces.go down to the
// output-only subset this module actually exercises.
package gpio

// Level is the logical level driven onto a pin.
type Level bool

const (
	Low  Level = false
	High Level = true
)

// Pin is an output-only GPIO pin.
type Pin interface {
	Out(l Level) error
}

// Switch is the two-pin antenna RF switch described in spec §4.4: (Low,
// High) selects the transmit path, (High, Low) selects receive, and (Low,
// Low) is the isolated pre-state used while draining the Rx buffer.
type Switch struct {
	Pin1, Pin2 Pin
}

// ToTx drives the switch to the transmit path.
func (s Switch) ToTx() error {
	if err := s.Pin1.Out(Low); err != nil {
		return err
	}
	return s.Pin2.Out(High)
}

// ToRx drives the switch to the receive path.
func (s Switch) ToRx() error {
	if err := s.Pin1.Out(High); err != nil {
		return err
	}
	return s.Pin2.Out(Low)
}

// ToIsolated drives both switch pins low, isolating the antenna while the
// radio's Rx buffer is read (spec §4.4).
func (s Switch) ToIsolated() error {
	if err := s.Pin1.Out(Low); err != nil {
		return err
	}
	return s.Pin2.Out(Low)
}
