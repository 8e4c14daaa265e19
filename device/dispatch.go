package device

import (
	"github.com/tve/lplora/config"
	"github.com/tve/lplora/packet"
)

// dispatch implements spec §4.6: route a decoded frame to its action, reply
// Ack/Nack/Pong, and for RadioSend additionally queue the payload for
// transmission.
func (d *Device) dispatch(frame packet.Frame) {
	switch frame.Type {
	case packet.Ping:
		packet.MakePong(d.txQueue)

	case packet.RadioPhyConfig:
		pa, tx, ocp, rxBoost, err := config.ParsePhy(frame.Payload)
		d.applyOrNack(err, func() error { return d.ctrl.ApplyPhy(pa, tx, ocp, rxBoost) })

	case packet.RadioFreqConfig:
		hz, err := config.ParseFreq(frame.Payload)
		d.applyOrNack(err, func() error { return d.ctrl.ApplyFreq(hz) })

	case packet.RadioLoraConfig:
		sync, mod, pkt, err := config.ParseLoRa(frame.Payload)
		d.applyOrNack(err, func() error { return d.ctrl.ApplyLoRa(sync, mod, pkt) })

	case packet.RadioGfskConfig:
		sync, mod, pkt, err := config.ParseGfsk(frame.Payload)
		d.applyOrNack(err, func() error { return d.ctrl.ApplyGfsk(sync, mod, pkt) })

	case packet.RadioGoSleep:
		d.applyOrNack(nil, d.ctrl.GoSleep)

	case packet.RadioGoIdle:
		d.applyOrNack(nil, d.ctrl.GoIdle)

	case packet.RadioSend:
		d.ctrl.QueueSend(frame.Payload)
		d.PendRadioIRQ()
		packet.MakeAck(d.txQueue)

	case packet.RadioRecvStart:
		ms, err := config.ParseRecvStart(frame.Payload)
		d.applyOrNack(err, func() error { return d.ctrl.StartRx(ms) })

	case packet.Restart:
		d.log.Warnf("device: restart requested, no reply per spec")
		// A hosted process can't perform an MCU system reset; the real
		// action belongs to cmd/loragwd, which exits on this signal.
		d.restart()

	default:
		d.log.Warnf("device: unsupported type %v", frame.Type)
		packet.MakeNack(d.txQueue)
	}
}

// applyOrNack runs action (unless parseErr is already set) and replies
// Ack or Nack based on the outcome, per every §4.4 command's "reply
// Ack/Nack" clause.
func (d *Device) applyOrNack(parseErr error, action func() error) {
	if parseErr != nil {
		d.log.Warnf("device: config rejected: %v", parseErr)
		packet.MakeNack(d.txQueue)
		return
	}
	if err := action(); err != nil {
		d.log.Errorf("device: radio action failed: %v", err)
		packet.MakeNack(d.txQueue)
		return
	}
	packet.MakeAck(d.txQueue)
}

// restart is overridable by cmd/loragwd wiring; the default is a no-op
// warning since package device has no process-exit authority of its own.
func (d *Device) restart() {
	if d.onRestart != nil {
		d.onRestart()
	}
}
