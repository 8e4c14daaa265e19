package radio

import (
	"encoding/binary"
	"fmt"

	"periph.io/x/conn/v3/spi"
)

// Sub-GHz transceiver opcodes, the same "command byte + args over a shared
// Tx/Rx buffer" convention _examples/tve-devices/sx1276/sx1276.go uses for
// its register reads/writes, generalized here to the opcode-based command
// set of an SX126x-class radio (spec §4.4/§6 field layouts match this
// family).
const (
	opSetStandby        = 0x80
	opSetSleep           = 0x84
	opSetPacketType      = 0x8A
	opSetRxTxFallback    = 0x93
	opSetRegulatorMode   = 0x96
	opSetBufferBaseAddr  = 0x8F
	opSetPAConfig        = 0x95
	opWriteRegister      = 0x0D
	opSetTxParams        = 0x8E
	regOCP               = 0x08E7 // vendor-specific OCP trim register
	regRxGain            = 0x08AC // vendor-specific Rx gain register
	opSetDIOIRQParams    = 0x08
	opSetLoRaSyncWord    = 0x0D // register write
	opSetModulationParam = 0x8B
	opSetPacketParam     = 0x8C
	opSetSyncWord        = 0x0D // register write, GFSK sync word
	opSetRFFrequency     = 0x86
	opCalibrateImage     = 0x98
	opSetRx              = 0x82
	opSetTx              = 0x83
	opWriteBuffer        = 0x0E
	opReadBuffer         = 0x1E
	opGetRxBufferStatus  = 0x13
	opGetPacketStatus    = 0x14
	opGetIRQStatus       = 0x12
	opClearIRQStatus     = 0x02
	opReadRegister       = 0x1D
)

// hwRadio drives a physical SX126x-class transceiver over SPI, implementing
// Radio. It is the register-level counterpart to the simulated behavior
// exercised by Controller's tests, grounded on the opcode-over-Tx pattern
// of sx1276.writeReg/readReg.
type hwRadio struct {
	dev spi.Conn
}

// NewHardware wraps an already-configured SPI connection (4MHz, mode 0, the
// same parameters sx1276.New applies) as a Radio.
func NewHardware(dev spi.Conn) *hwRadio {
	return &hwRadio{dev: dev}
}

func (h *hwRadio) cmd(opcode byte, args []byte) error {
	w := make([]byte, 1+len(args))
	w[0] = opcode
	copy(w[1:], args)
	r := make([]byte, len(w))
	return h.dev.Tx(w, r)
}

func (h *hwRadio) cmdReply(opcode byte, args []byte, replyLen int) ([]byte, error) {
	w := make([]byte, 1+len(args)+replyLen)
	w[0] = opcode
	copy(w[1:], args)
	r := make([]byte, len(w))
	if err := h.dev.Tx(w, r); err != nil {
		return nil, err
	}
	return r[1+len(args):], nil
}

func (h *hwRadio) SetStandby(clock StandbyClock) error {
	return h.cmd(opSetStandby, []byte{byte(clock)})
}

func (h *hwRadio) SetSleep() error {
	return h.cmd(opSetSleep, []byte{0x00}) // cold start, RTC wakeup disabled
}

func (h *hwRadio) SetPacketType(pt PacketType) error {
	return h.cmd(opSetPacketType, []byte{byte(pt)})
}

func (h *hwRadio) SetFallbackMode(mode FallbackMode) error {
	return h.cmd(opSetRxTxFallback, []byte{byte(mode)})
}

func (h *hwRadio) SetRegulatorMode(mode RegulatorMode) error {
	return h.cmd(opSetRegulatorMode, []byte{byte(mode)})
}

func (h *hwRadio) SetBufferBaseAddress(tx, rx byte) error {
	return h.cmd(opSetBufferBaseAddr, []byte{tx, rx})
}

func (h *hwRadio) SetPAOCP(ocp OCP) error {
	// OCP is a raw current-trip register on this family (mA/2.5 per LSB),
	// not a command argument.
	return h.writeRegister(regOCP, byte(ocp/5*2))
}

func (h *hwRadio) SetPAConfig(cfg PAConfig) error {
	return h.cmd(opSetPAConfig, []byte{cfg.DutyCycle, cfg.HPMax, byte(cfg.Select), 0x01})
}

func (h *hwRadio) SetTxParams(p TxParams) error {
	return h.cmd(opSetTxParams, []byte{p.Power, byte(p.Ramp)})
}

func (h *hwRadio) SetRxGain(boost bool) error {
	v := byte(0x94)
	if boost {
		v = 0x96
	}
	return h.writeRegister(regRxGain, v)
}

func (h *hwRadio) writeRegister(addr uint16, value byte) error {
	return h.cmd(opWriteRegister, []byte{byte(addr >> 8), byte(addr), value})
}

func (h *hwRadio) SetIRQMask(mask IRQ) error {
	var b [8]byte
	binary.BigEndian.PutUint16(b[0:2], uint16(mask)) // IRQ mask
	binary.BigEndian.PutUint16(b[2:4], uint16(mask)) // DIO1
	return h.cmd(opSetDIOIRQParams, b[:])
}

func (h *hwRadio) SetLoRaSyncWord(sw [2]byte) error {
	return h.cmd(opSetLoRaSyncWord, sw[:])
}

func (h *hwRadio) SetLoRaModParams(p LoRaModParams) error {
	return h.cmd(opSetModulationParam, []byte{p.SF, p.BW, p.CR, boolByte(p.LDRO)})
}

func (h *hwRadio) SetLoRaPacketParams(p LoRaPacketParams) error {
	var b [6]byte
	binary.BigEndian.PutUint16(b[0:2], p.PreambleLen)
	b[2] = boolByte(p.HeaderFixed)
	b[3] = p.PayloadLen
	b[4] = boolByte(p.CRCEnabled)
	b[5] = boolByte(p.InvertIQ)
	return h.cmd(opSetPacketParam, b[:])
}

func (h *hwRadio) SetSyncWord(sw []byte) error {
	return h.cmd(opSetSyncWord, sw)
}

func (h *hwRadio) SetGfskModParams(p GfskModParams) error {
	var b [8]byte
	b[0], b[1], b[2] = byte(p.BitrateBps>>16), byte(p.BitrateBps>>8), byte(p.BitrateBps)
	b[3] = byte(p.PulseShape)
	b[4] = p.Bandwidth
	b[5], b[6], b[7] = byte(p.FdevHz>>16), byte(p.FdevHz>>8), byte(p.FdevHz)
	return h.cmd(opSetModulationParam, b[:])
}

func (h *hwRadio) SetGfskPacketParams(p GfskPacketParams) error {
	var b [9]byte
	binary.BigEndian.PutUint16(b[0:2], p.PreambleLen)
	b[2] = byte(p.PreambleDetection)
	b[3] = p.SyncWordLen
	b[4] = byte(p.AddrComp)
	b[5] = boolByte(p.HeaderFixed)
	b[6] = p.PayloadLen
	b[7] = byte(p.CRCType)
	b[8] = boolByte(p.WhiteningEnable)
	return h.cmd(opSetPacketParam, b[:])
}

func (h *hwRadio) SetRFFrequency(hz uint32) error {
	var b [4]byte
	binary.BigEndian.PutUint32(b[:], hz)
	return h.cmd(opSetRFFrequency, b[:])
}

func (h *hwRadio) CalibrateImage(loMHz, hiMHz uint16) error {
	return h.cmd(opCalibrateImage, []byte{byte(loMHz / 4), byte(hiMHz / 4)})
}

func (h *hwRadio) SetRx(timeout Timeout) error {
	return h.cmd(opSetRx, timeoutArg(timeout))
}

func (h *hwRadio) SetTx(timeout Timeout) error {
	return h.cmd(opSetTx, timeoutArg(timeout))
}

func timeoutArg(t Timeout) []byte {
	var steps uint32 = 0xFFFFFF // continuous / disabled
	if !t.Disabled {
		// 15.625us ticks, the SX126x timebase, saturated just below the
		// continuous value.
		ticks := uint64(t.Millis) * 64
		if ticks > 0xFFFFFE {
			ticks = 0xFFFFFE
		}
		steps = uint32(ticks)
	}
	return []byte{byte(steps >> 16), byte(steps >> 8), byte(steps)}
}

func (h *hwRadio) WriteBuffer(offset byte, data []byte) error {
	return h.cmd(opWriteBuffer, append([]byte{offset}, data...))
}

func (h *hwRadio) ReadBuffer(offset byte, n int) ([]byte, error) {
	return h.cmdReply(opReadBuffer, []byte{offset, 0x00}, n)
}

func (h *hwRadio) RxBufferStatus() (payloadLen byte, bufPtr byte, err error) {
	r, err := h.cmdReply(opGetRxBufferStatus, nil, 2)
	if err != nil {
		return 0, 0, fmt.Errorf("radio: RxBufferStatus: %w", err)
	}
	return r[0], r[1], nil
}

func (h *hwRadio) LoRaPacketStatus() (PacketStatus, error) {
	r, err := h.cmdReply(opGetPacketStatus, nil, 3)
	if err != nil {
		return PacketStatus{}, fmt.Errorf("radio: LoRaPacketStatus: %w", err)
	}
	return PacketStatus{RSSI: -int16(r[0]) / 2, SNR: int16(int8(r[1])) / 4}, nil
}

func (h *hwRadio) IRQStatus() (IRQ, error) {
	r, err := h.cmdReply(opGetIRQStatus, nil, 2)
	if err != nil {
		return 0, fmt.Errorf("radio: IRQStatus: %w", err)
	}
	return IRQ(binary.BigEndian.Uint16(r)), nil
}

func (h *hwRadio) ClearIRQStatus(mask IRQ) error {
	var b [2]byte
	binary.BigEndian.PutUint16(b[:], uint16(mask))
	return h.cmd(opClearIRQStatus, b[:])
}

// DeviceID assembles the 20-byte identifier from the chip's unique-ID
// register block (three 32-bit words plus one 64-bit word, spec §6).
func (h *hwRadio) DeviceID() ([20]byte, error) {
	var id [20]byte
	r, err := h.cmdReply(opReadRegister, []byte{0x00, 0x00}, 20)
	if err != nil {
		return id, fmt.Errorf("radio: DeviceID: %w", err)
	}
	copy(id[:], r)
	return id, nil
}

func boolByte(b bool) byte {
	if b {
		return 1
	}
	return 0
}

var _ Radio = (*hwRadio)(nil)
