// Package radio implements the radio state machine described in spec §4.4:
// it drives an external Radio capability (standby/sleep, configure, start
// Rx/Tx, read buffer/status, read & clear IRQ) through Tx/Rx/standby/sleep
// transitions, controls a two-pin RF switch, and applies the fallback
// discipline the spec calls for on timeout.
package radio

import "errors"

// StandbyClock selects the clock source used while in standby.
type StandbyClock byte

const (
	StandbyRC  StandbyClock = iota // internal RC oscillator
	StandbyHSE                     // external crystal
)

// PacketType selects the active modem.
type PacketType byte

const (
	PacketLoRa PacketType = iota
	PacketGFSK
)

// FallbackMode is the mode entered automatically after Tx/Rx completes.
type FallbackMode byte

const (
	FallbackStandbyHSE FallbackMode = iota
	FallbackStandbyRC
)

// RegulatorMode selects the radio's internal regulator topology.
type RegulatorMode byte

const (
	RegulatorLDO RegulatorMode = iota
	RegulatorSMPS
)

// OCP is the PA over-current-protection limit.
type OCP byte

const (
	OCP60mA  OCP = 60
	OCP140mA OCP = 140
)

// PASelect chooses between the low-power and high-power amplifier.
type PASelect byte

const (
	PALowPower PASelect = iota
	PAHighPower
)

// RampTime is the Tx ramp time, one of 8 discrete codes (spec §4.4).
type RampTime byte

const (
	Ramp10us RampTime = iota
	Ramp20us
	Ramp40us
	Ramp80us
	Ramp200us
	Ramp800us
	Ramp1700us
	Ramp3400us
)

// IRQ is a bitmask of radio IRQ sources, read-and-cleared as a single word
// per spec §4.4.
type IRQ uint16

const (
	IRQTxDone    IRQ = 1 << 0
	IRQRxDone    IRQ = 1 << 1
	IRQTimeout   IRQ = 1 << 2
	IRQHeaderErr IRQ = 1 << 3
	IRQErr       IRQ = 1 << 4
)

// DefaultIRQMask is the mask set up during initial setup (spec §4.4).
const DefaultIRQMask = IRQTxDone | IRQRxDone | IRQTimeout | IRQHeaderErr | IRQErr

// Timeout encodes a radio timer value. Disabled selects "disabled /
// continuous" per spec §4.4, saturating conversion otherwise.
type Timeout struct {
	Disabled bool
	Millis   uint32
}

// TimeoutFromMillis applies the "0 or u32::MAX means disabled" rule from
// spec §4.4.
func TimeoutFromMillis(ms uint32) Timeout {
	if ms == 0 || ms == 0xFFFFFFFF {
		return Timeout{Disabled: true}
	}
	return Timeout{Millis: ms}
}

// DefaultRxTimeoutMillis is the timeout used to restart Rx after TxDone,
// RxDone, and a Rx-mode Timeout IRQ (spec §4.4 point 1 and 2).
const DefaultRxTimeoutMillis = 5000

// LoRaModParams configures the LoRa modem.
type LoRaModParams struct {
	SF   byte // spreading factor, 5..12
	BW   byte // one of 9 discrete bandwidth codes
	CR   byte // coding rate, 44..48, taken unchanged from the RadioLoraConfig payload
	LDRO bool
}

// DefaultLoRaModParams matches the firmware's boot-time configuration
// (spec §4.4): SF10, BW125, CR4/5, LDRO off.
var DefaultLoRaModParams = LoRaModParams{SF: 10, BW: bwCode125, CR: 45, LDRO: false}

// Bandwidth codes for LoRa, one of 9 discrete values (spec §4.4/§6).
const (
	bwCode7   = 0x00
	bwCode10  = 0x08
	bwCode15  = 0x01
	bwCode20  = 0x09
	bwCode31  = 0x02
	bwCode41  = 0x0A
	bwCode62  = 0x03
	bwCode125 = 0x04
	bwCode250 = 0x05
	bwCode500 = 0x06
)

// LoRaBandwidthCodes is the full set of valid LoRa bandwidth codes.
var LoRaBandwidthCodes = map[byte]bool{
	bwCode7: true, bwCode10: true, bwCode15: true, bwCode20: true,
	bwCode31: true, bwCode41: true, bwCode62: true, bwCode125: true,
	bwCode250: true, bwCode500: true,
}

// RampTimeCodes is the full set of valid Tx ramp time codes.
var RampTimeCodes = map[byte]bool{
	byte(Ramp10us): true, byte(Ramp20us): true, byte(Ramp40us): true, byte(Ramp80us): true,
	byte(Ramp200us): true, byte(Ramp800us): true, byte(Ramp1700us): true, byte(Ramp3400us): true,
}

// PreambleDetectionCodes is the full set of valid GFSK preamble detection
// codes.
var PreambleDetectionCodes = map[byte]bool{
	byte(PreambleDetectOff): true, byte(PreambleDetect8): true, byte(PreambleDetect16): true,
	byte(PreambleDetect24): true, byte(PreambleDetect32): true,
}

// AddrCompCodes is the full set of valid GFSK address comparison codes.
var AddrCompCodes = map[byte]bool{
	byte(AddrCompDisabled): true, byte(AddrCompNode): true, byte(AddrCompBroadcast): true,
}

// CRCTypeCodes is the full set of valid GFSK CRC type codes.
var CRCTypeCodes = map[byte]bool{
	byte(CRC1Byte): true, byte(CRCDisabled): true, byte(CRC2Byte): true,
	byte(CRC1ByteInvert): true, byte(CRC2ByteInvert): true,
}

// PulseShapeCodes is the full set of valid GFSK Gaussian filter BT codes.
var PulseShapeCodes = map[byte]bool{
	byte(PulseNone): true, byte(PulseBT03): true, byte(PulseBT05): true,
	byte(PulseBT07): true, byte(PulseBT10): true,
}

// GfskBandwidthCodes is the full set of valid GFSK double-sideband receiver
// bandwidth codes for this chip family.
var GfskBandwidthCodes = map[byte]bool{
	0x1F: true, 0x17: true, 0x0F: true, 0x1E: true, 0x16: true, 0x0E: true,
	0x1D: true, 0x15: true, 0x0D: true, 0x1C: true, 0x14: true, 0x0C: true,
	0x1B: true, 0x13: true, 0x0B: true, 0x1A: true, 0x12: true, 0x0A: true,
	0x19: true, 0x11: true, 0x09: true,
}

// LoRaPacketParams configures the LoRa packet format.
type LoRaPacketParams struct {
	PreambleLen uint16
	HeaderFixed bool // false = variable header (the default)
	PayloadLen  byte
	CRCEnabled  bool
	InvertIQ    bool
}

// DefaultLoRaPacketParams matches the firmware's boot-time configuration
// (spec §4.4): preamble 16, variable header, payload 24, CRC on, IQ normal.
var DefaultLoRaPacketParams = LoRaPacketParams{
	PreambleLen: 16, HeaderFixed: false, PayloadLen: 24, CRCEnabled: true, InvertIQ: false,
}

// DefaultLoRaSyncWord is the custom sync word applied on boot (spec §4.4).
var DefaultLoRaSyncWord = [2]byte{0x24, 0x34}

// PreambleDetection selects how many bits of preamble GFSK requires before
// locking (spec §6 offset 2).
type PreambleDetection byte

const (
	PreambleDetectOff  PreambleDetection = 0
	PreambleDetect8    PreambleDetection = 4
	PreambleDetect16   PreambleDetection = 5
	PreambleDetect24   PreambleDetection = 6
	PreambleDetect32   PreambleDetection = 7
)

// AddrComp selects GFSK address comparison mode (spec §6 offset 4).
type AddrComp byte

const (
	AddrCompDisabled AddrComp = 0
	AddrCompNode     AddrComp = 1
	AddrCompBroadcast AddrComp = 2
)

// CRCType enumerates the GFSK CRC variants (spec §6 offset 7).
type CRCType byte

const (
	CRC1Byte        CRCType = 0
	CRCDisabled     CRCType = 1
	CRC2Byte        CRCType = 2
	CRC1ByteInvert  CRCType = 4
	CRC2ByteInvert  CRCType = 6
)

// PulseShape enumerates the GFSK Gaussian filter BT products (spec §6
// offset 13).
type PulseShape byte

const (
	PulseNone PulseShape = 0x00
	PulseBT03 PulseShape = 0x08
	PulseBT05 PulseShape = 0x09
	PulseBT07 PulseShape = 0x0A
	PulseBT10 PulseShape = 0x0B
)

// GfskPacketParams configures the GFSK packet format.
type GfskPacketParams struct {
	PreambleLen       uint16
	PreambleDetection PreambleDetection
	SyncWordLen       byte
	AddrComp          AddrComp
	HeaderFixed       bool
	PayloadLen        byte
	CRCType           CRCType
	WhiteningEnable   bool
}

// GfskModParams configures the GFSK modem.
type GfskModParams struct {
	BitrateBps uint32
	PulseShape PulseShape
	Bandwidth  byte // raw bandwidth code, hardware-specific (spec §6 offset 14)
	FdevHz     uint32
}

// PAConfig configures the power amplifier (spec §6 RadioPhyConfig payload).
type PAConfig struct {
	DutyCycle byte
	HPMax     byte
	Select    PASelect
}

// TxParams configures ramp time and output power.
type TxParams struct {
	Ramp  RampTime
	Power byte
}

// PacketStatus reports link quality for the most recently received packet.
type PacketStatus struct {
	RSSI int16 // dB
	SNR  int16 // dB
}

// ErrRadio is the sentinel for the spec's RadioError taxonomy entry. The
// Controller returns Radio capability errors unwrapped, so they do not
// match ErrRadio under errors.Is.
var ErrRadio = errors.New("radio: capability error")
