// Package serial defines the UART capability the device layer consumes, and
// a tarm/serial-backed adapter, generalized from the port-wrapping style of
// github.com/tarm/serial usage seen across the example pack (e.g.
// usock.go's serial.Config/OpenPort pairing).
package serial

import "io"

// Port is the minimal capability the device layer needs: a readable,
// writable byte stream. The Serial-IRQ goroutines (serialRxLoop,
// serialTxLoop) are built on top of this, not on raw os/exec-style polling.
type Port interface {
	io.Reader
	io.Writer
	io.Closer
}
