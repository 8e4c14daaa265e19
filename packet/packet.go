// Package packet implements the typed frame layer on top of framing: decode
// of host-originated command frames and encode of device-originated reply
// frames, per spec §3/§4.2/§4.3.
package packet

import "fmt"

// Type identifies the kind of a frame's payload.
type Type byte

// Packet type codes, fixed by the wire protocol (spec §3).
const (
	Ping             Type = 0x00
	RadioPhyConfig   Type = 0x10
	RadioFreqConfig  Type = 0x11
	RadioLoraConfig  Type = 0x12
	RadioGfskConfig  Type = 0x13
	RadioGoSleep     Type = 0x40
	RadioGoIdle      Type = 0x41
	RadioSend        Type = 0x42
	RadioRecvStart   Type = 0x43
	Restart          Type = 0x7F
	Pong             Type = 0x80
	Ack              Type = 0x83
	Nack             Type = 0x84
	RadioReceivedPkt Type = 0xC1

	// EnterSleepStop2 is reserved: present in the original firmware
	// (src/packet/mod.rs) as unimplemented scope, never wired to a
	// handler. Decoding it must still fail with ErrUnknownPacket rather
	// than silently matching some other type.
	EnterSleepStop2 Type = 0x20
)

func (t Type) String() string {
	switch t {
	case Ping:
		return "Ping"
	case RadioPhyConfig:
		return "RadioPhyConfig"
	case RadioFreqConfig:
		return "RadioFreqConfig"
	case RadioLoraConfig:
		return "RadioLoraConfig"
	case RadioGfskConfig:
		return "RadioGfskConfig"
	case RadioGoSleep:
		return "RadioGoSleep"
	case RadioGoIdle:
		return "RadioGoIdle"
	case RadioSend:
		return "RadioSend"
	case RadioRecvStart:
		return "RadioRecvStart"
	case Restart:
		return "Restart"
	case Pong:
		return "Pong"
	case Ack:
		return "Ack"
	case Nack:
		return "Nack"
	case RadioReceivedPkt:
		return "RadioReceivedPacket"
	default:
		return fmt.Sprintf("Type(0x%02x)", byte(t))
	}
}

// knownTypes is the set of type codes the decoder accepts; anything else is
// ErrUnknownPacket.
var knownTypes = map[Type]bool{
	Ping: true, RadioPhyConfig: true, RadioFreqConfig: true,
	RadioLoraConfig: true, RadioGfskConfig: true, RadioGoSleep: true,
	RadioGoIdle: true, RadioSend: true, RadioRecvStart: true, Restart: true,
	Pong: true, Ack: true, Nack: true, RadioReceivedPkt: true,
}

// Error is the taxonomy of packet decode/config failures, shared with
// framing.Error so dispatch can test error kind without string matching.
type Error string

func (e Error) Error() string { return string(e) }

const (
	ErrUnknownPacket Error = "packet: unknown packet type"
	ErrCorrupted     Error = "packet: corrupted payload or CRC mismatch"
	ErrBufferFull    Error = "packet: payload exceeds scratch buffer"
)

// scratchSize is the fixed-size decode buffer from spec §4.2 step 1.
const scratchSize = 300

// maxSendPayload is the largest RadioSend payload per spec §3.
const maxSendPayload = 256

// lengthOverhead is the number of non-payload bytes counted in the on-wire
// length field: the 2-byte length field itself plus the 2-byte CRC. Per
// SPEC_FULL.md §9, encoder and decoder both use
// length = len(payload) + lengthOverhead, resolving the inconsistency the
// original firmware had between the two.
const lengthOverhead = 4
