// Package device wires the framing, packet, radio, and queue packages into
// the running system: three goroutines standing in for the firmware's three
// interrupt vectors (serial Rx, serial Tx, radio IRQ), the way
// _examples/tve-devices/sx1276/sx1276.go's worker() goroutine stands in for
// its DIO0 interrupt. Go has no interrupt vectors, so each handler here
// blocks (serial Tx and radio IRQ on a channel, serial Rx on the port's
// Read) instead of being invoked by the runtime directly; the
// handler bodies otherwise follow spec §4.5/§4.4/§4.6 exactly.
package device

import (
	"context"
	"errors"
	"io"
	"runtime"
	"syscall"
	"unsafe"

	"github.com/tve/lplora/framing"
	"github.com/tve/lplora/logging"
	"github.com/tve/lplora/packet"
	"github.com/tve/lplora/queue"
	"github.com/tve/lplora/radio"
	"github.com/tve/lplora/serial"
)

// Realtime scheduling priorities for the two goroutines standing in for
// hardware interrupt vectors (spec §5). The radio IRQ line carries the
// higher-priority events: spec §4.4's dispatch order puts Timeout/RxDone/
// TxDone above everything the Serial-IRQ side does, and a late radio IRQ
// handler risks missing the next RxDone entirely at 9600 baud's slow byte
// rate, so it runs above the serial loop rather than at the same level.
const (
	schedRR = 2 // SCHED_RR

	serialRxPriority = 8
	radioIRQPriority = 10
)

type schedParam struct {
	Priority int
}

// lockRealtime pins the calling goroutine to its own kernel thread and
// raises that thread to round-robin realtime scheduling at priority, so the
// Go scheduler doesn't delay an ISR-simulating loop behind unrelated work
// the way a real low-priority task would never preempt an ISR.
func lockRealtime(priority int) error {
	runtime.LockOSThread()
	tid := syscall.Gettid()
	res, _, err := syscall.RawSyscall(syscall.SYS_SCHED_SETSCHEDULER, uintptr(tid),
		uintptr(schedRR), uintptr(unsafe.Pointer(&schedParam{Priority: priority})))
	if res == 0 {
		return nil
	}
	return err
}

// Device owns the host link, the two byte queues, and the radio controller,
// and runs the three ISR-simulating loops for its lifetime.
type Device struct {
	port serial.Port
	ctrl *radio.Controller
	log  logging.Logger

	rxQueue *queue.Ring // host -> device
	txQueue *queue.Ring // device -> host

	hostTxPend chan struct{} // pends the serial Tx "interrupt"
	radioIRQ   chan struct{} // real radio GPIO edge, or software-pend

	onRestart func() // invoked on a Restart command; nil is a no-op
}

// SetRestartHandler installs the action run when a Restart frame arrives
// (spec §4.6: "perform system reset, no reply"). cmd/loragwd wires this to
// process exit; package device has no process-exit authority of its own.
func (d *Device) SetRestartHandler(fn func()) { d.onRestart = fn }

// New builds a Device. ctrl must already be wired with txQueue as its
// device->host reply queue (see radio.New) so RxDone can enqueue replies
// directly.
func New(port serial.Port, ctrl *radio.Controller, rxQueue, txQueue *queue.Ring, log logging.Logger) *Device {
	if log == nil {
		log = logging.Nop{}
	}
	return &Device{
		port: port, ctrl: ctrl, log: log,
		rxQueue: rxQueue, txQueue: txQueue,
		hostTxPend: make(chan struct{}, 1),
		radioIRQ:   make(chan struct{}, 1),
	}
}

// PendRadioIRQ software-pends the radio IRQ vector, the signal spec §4.4
// point 4 and §9 call for after a RadioSend queues a payload.
func (d *Device) PendRadioIRQ() {
	select {
	case d.radioIRQ <- struct{}{}:
	default:
	}
}

// pendHostTx software-pends the serial Tx vector so a freshly queued reply
// starts draining (spec §4.5 Tx byte, §4.6).
func (d *Device) pendHostTx() {
	select {
	case d.hostTxPend <- struct{}{}:
	default:
	}
}

// NotifyRadioIRQ is wired to a real GPIO edge-detect channel in cmd/loragwd;
// it is functionally identical to PendRadioIRQ since HandleIRQ always
// re-reads the IRQ register regardless of what woke it.
func (d *Device) NotifyRadioIRQ() { d.PendRadioIRQ() }

// Run starts the three ISR-simulating loops and blocks until ctx is
// canceled.
func (d *Device) Run(ctx context.Context) error {
	d.ctrl.SetNotifyHostTx(d.pendHostTx)

	errCh := make(chan error, 1)
	go d.serialRxLoop(ctx, errCh)
	go d.serialTxLoop(ctx)
	go d.radioIRQLoop(ctx)

	select {
	case <-ctx.Done():
		return ctx.Err()
	case err := <-errCh:
		return err
	}
}

// serialRxLoop is the Serial-IRQ Rx vector (spec §4.5): one byte per
// iteration, mirroring the original per-interrupt granularity even though a
// hosted io.Reader could read more at once.
func (d *Device) serialRxLoop(ctx context.Context, errCh chan<- error) {
	if err := lockRealtime(serialRxPriority); err != nil {
		d.log.Warnf("device: serialRxLoop: realtime scheduling unavailable: %v", err)
	}
	var b [1]byte
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		n, err := d.port.Read(b[:])
		if err != nil {
			if err == io.EOF {
				errCh <- err
				return
			}
			d.log.Warnf("serial: rx error: %v", err)
			continue
		}
		if n == 0 {
			continue
		}

		switch b[0] {
		case framing.Start:
			d.rxQueue.Reset()
			d.rxQueue.PushEvict(framing.Start)
		case framing.End:
			d.rxQueue.PushEvict(framing.End)
			d.handleFrame()
		default:
			d.rxQueue.PushEvict(b[0])
		}
	}
}

// serialTxLoop is the Serial-IRQ Tx vector (spec §4.5): wakes on a pend
// signal, drains the Tx queue byte by byte until empty.
func (d *Device) serialTxLoop(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-d.hostTxPend:
		}

		for {
			b, ok := d.txQueue.Pop()
			if !ok {
				break
			}
			if _, err := d.port.Write([]byte{b}); err != nil {
				d.log.Errorf("serial: tx error: %v", err)
				break
			}
		}
	}
}

// radioIRQLoop is the Radio-IRQ vector: wakes on a real GPIO edge or a
// software pend and always re-reads the IRQ register (spec §4.4), so no
// separate code path distinguishes the two triggers.
func (d *Device) radioIRQLoop(ctx context.Context) {
	if err := lockRealtime(radioIRQPriority); err != nil {
		d.log.Warnf("device: radioIRQLoop: realtime scheduling unavailable: %v", err)
	}
	for {
		select {
		case <-ctx.Done():
			return
		case <-d.radioIRQ:
		}
		d.ctrl.HandleIRQ()
	}
}

// handleFrame runs the §4.2 decode and §4.6 dispatch once a complete frame
// has been observed in the Rx queue.
func (d *Device) handleFrame() {
	frame, err := packet.Decode(d.rxQueue)
	if err != nil {
		d.log.Warnf("packet: decode failed: %v", err)
		if errors.Is(err, packet.ErrUnknownPacket) {
			packet.MakeNack(d.txQueue)
			d.pendHostTx()
		}
		return
	}
	d.dispatch(frame)
	d.pendHostTx()
}
