package device

import (
	"bytes"
	"context"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/tve/lplora/framing"
	"github.com/tve/lplora/gpio"
	"github.com/tve/lplora/packet"
	"github.com/tve/lplora/queue"
	"github.com/tve/lplora/radio"
)

// pipePort adapts an io.Reader+io.Writer pair into a serial.Port for tests.
type pipePort struct {
	io.Reader
	io.Writer
}

func (pipePort) Close() error { return nil }

// syncBuffer is a mutex-guarded bytes.Buffer, needed because serialTxLoop
// writes from its own goroutine while the test concurrently inspects the
// buffer.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (s *syncBuffer) Write(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.buf.Write(p)
}

func (s *syncBuffer) Bytes() []byte {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]byte(nil), s.buf.Bytes()...)
}

type fakePin struct{}

func (fakePin) Out(gpio.Level) error { return nil }

// stubRadio answers every configuration call successfully and reports no
// IRQ activity; sufficient to exercise the dispatcher without a real chip.
type stubRadio struct{}

func (stubRadio) SetStandby(radio.StandbyClock) error          { return nil }
func (stubRadio) SetSleep() error                              { return nil }
func (stubRadio) SetPacketType(radio.PacketType) error         { return nil }
func (stubRadio) SetFallbackMode(radio.FallbackMode) error     { return nil }
func (stubRadio) SetRegulatorMode(radio.RegulatorMode) error   { return nil }
func (stubRadio) SetBufferBaseAddress(byte, byte) error        { return nil }
func (stubRadio) SetPAOCP(radio.OCP) error                     { return nil }
func (stubRadio) SetPAConfig(radio.PAConfig) error              { return nil }
func (stubRadio) SetTxParams(radio.TxParams) error              { return nil }
func (stubRadio) SetRxGain(bool) error                          { return nil }
func (stubRadio) SetIRQMask(radio.IRQ) error                    { return nil }
func (stubRadio) SetLoRaSyncWord([2]byte) error                 { return nil }
func (stubRadio) SetLoRaModParams(radio.LoRaModParams) error    { return nil }
func (stubRadio) SetLoRaPacketParams(radio.LoRaPacketParams) error { return nil }
func (stubRadio) SetSyncWord([]byte) error                      { return nil }
func (stubRadio) SetGfskModParams(radio.GfskModParams) error    { return nil }
func (stubRadio) SetGfskPacketParams(radio.GfskPacketParams) error { return nil }
func (stubRadio) SetRFFrequency(uint32) error                   { return nil }
func (stubRadio) CalibrateImage(uint16, uint16) error            { return nil }
func (stubRadio) SetRx(radio.Timeout) error                      { return nil }
func (stubRadio) SetTx(radio.Timeout) error                      { return nil }
func (stubRadio) WriteBuffer(byte, []byte) error                 { return nil }
func (stubRadio) ReadBuffer(byte, int) ([]byte, error)            { return nil, nil }
func (stubRadio) RxBufferStatus() (byte, byte, error)             { return 0, 0, nil }
func (stubRadio) LoRaPacketStatus() (radio.PacketStatus, error)   { return radio.PacketStatus{}, nil }
func (stubRadio) IRQStatus() (radio.IRQ, error)                   { return 0, nil }
func (stubRadio) ClearIRQStatus(radio.IRQ) error                  { return nil }
func (stubRadio) DeviceID() ([20]byte, error)                     { return [20]byte{}, nil }

var _ radio.Radio = stubRadio{}

func TestDevicePingPong(t *testing.T) {
	toDevice, toDeviceW := io.Pipe()
	fromDevice := &syncBuffer{}

	txQueue := queue.New()
	rxQueue := queue.New()
	sw := gpio.Switch{Pin1: fakePin{}, Pin2: fakePin{}}
	ctrl := radio.New(stubRadio{}, sw, txQueue, nil, nil)
	port := pipePort{Reader: toDevice, Writer: fromDevice}
	dev := New(port, ctrl, rxQueue, txQueue, nil)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go dev.Run(ctx)

	// Write a Ping frame byte by byte into the device's Rx side.
	pingQ := queue.New()
	packet.MakePing(pingQ)
	var wireBytes []byte
	for {
		b, ok := pingQ.Pop()
		if !ok {
			break
		}
		wireBytes = append(wireBytes, b)
	}
	go func() {
		toDeviceW.Write(wireBytes)
	}()

	deadline := time.After(2 * time.Second)
	for {
		if got := fromDevice.Bytes(); bytes.Contains(got, []byte{framing.Start}) && len(got) >= 7 {
			break
		}
		select {
		case <-deadline:
			t.Fatalf("timed out waiting for Pong, got %x", fromDevice.Bytes())
		case <-time.After(5 * time.Millisecond):
		}
	}

	replyQ := queue.New()
	for _, b := range fromDevice.Bytes() {
		replyQ.PushEvict(b)
	}
	frame, err := packet.Decode(replyQ)
	if err != nil {
		t.Fatalf("decode reply: %v", err)
	}
	if frame.Type != packet.Pong {
		t.Fatalf("reply type = %v, want Pong", frame.Type)
	}
}

func TestDispatchUnknownHostFrameNacks(t *testing.T) {
	txQueue := queue.New()
	rxQueue := queue.New()
	sw := gpio.Switch{Pin1: fakePin{}, Pin2: fakePin{}}
	ctrl := radio.New(stubRadio{}, sw, txQueue, nil, nil)
	dev := New(pipePort{}, ctrl, rxQueue, txQueue, nil)

	dev.dispatch(packet.Frame{Type: packet.Pong}) // a dev->host type arriving from a host is invalid

	frame, err := packet.Decode(txQueue)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if frame.Type != packet.Nack {
		t.Fatalf("type = %v, want Nack", frame.Type)
	}
}

func TestDispatchFreqOutOfRangeNacks(t *testing.T) {
	txQueue := queue.New()
	rxQueue := queue.New()
	sw := gpio.Switch{Pin1: fakePin{}, Pin2: fakePin{}}
	ctrl := radio.New(stubRadio{}, sw, txQueue, nil, nil)
	dev := New(pipePort{}, ctrl, rxQueue, txQueue, nil)

	dev.dispatch(packet.Frame{Type: packet.RadioFreqConfig, Payload: []byte{0, 0, 0, 0}})

	frame, err := packet.Decode(txQueue)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if frame.Type != packet.Nack {
		t.Fatalf("type = %v, want Nack", frame.Type)
	}
}
