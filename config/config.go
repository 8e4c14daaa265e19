// Package config parses and validates the host-supplied configuration
// payloads (RadioPhyConfig, RadioFreqConfig, RadioLoraConfig, RadioGfskConfig,
// RadioRecvStart) into the radio package's typed settings, the validate-then-
// translate step _examples/tve-devices/cmd/mqttradio/main.go performs for its
// own TOML-sourced RadioConfig before handing it to the radio driver.
package config

import (
	"encoding/binary"
	"fmt"

	"github.com/tve/lplora/radio"
)

// Error is the config-parsing error taxonomy. The dispatcher logs any of
// these and replies Nack; it does not convert them to another error type.
type Error string

func (e Error) Error() string { return string(e) }

const (
	ErrPayloadSize       Error = "config: payload has the wrong size"
	ErrFreqRange         Error = "config: frequency out of range"
	ErrSpreadFactor      Error = "config: spreading factor out of range"
	ErrBandwidth         Error = "config: unrecognized LoRa bandwidth code"
	ErrRampTime          Error = "config: unrecognized ramp time code"
	ErrPreambleDetection Error = "config: unrecognized GFSK preamble detection code"
	ErrAddrComp          Error = "config: unrecognized GFSK address comparison code"
	ErrCRCType           Error = "config: unrecognized GFSK CRC type code"
	ErrPulseShape        Error = "config: unrecognized GFSK pulse shape code"
	ErrGfskBandwidth     Error = "config: unrecognized GFSK bandwidth code"
)

// ParsePhy parses a 6-byte RadioPhyConfig payload: pa_duty_cycle, hp_max,
// pa_sel, power, ramp_time, rx_boost.
func ParsePhy(payload []byte) (radio.PAConfig, radio.TxParams, radio.OCP, bool, error) {
	if len(payload) != 6 {
		return radio.PAConfig{}, radio.TxParams{}, 0, false, ErrPayloadSize
	}
	paSel := radio.PALowPower
	ocp := radio.OCP60mA
	if payload[2] != 0 {
		paSel = radio.PAHighPower
		ocp = radio.OCP140mA
	}
	if !radio.RampTimeCodes[payload[4]] {
		return radio.PAConfig{}, radio.TxParams{}, 0, false, ErrRampTime
	}
	pa := radio.PAConfig{DutyCycle: payload[0], HPMax: payload[1], Select: paSel}
	tx := radio.TxParams{Power: payload[3], Ramp: radio.RampTime(payload[4])}
	rxBoost := payload[5] != 0
	return pa, tx, ocp, rxBoost, nil
}

// ParseFreq parses a 4-byte RadioFreqConfig payload (Hz, little-endian u32)
// and range-checks it to 100-960MHz per spec §4.4.
func ParseFreq(payload []byte) (uint32, error) {
	if len(payload) != 4 {
		return 0, ErrPayloadSize
	}
	hz := binary.LittleEndian.Uint32(payload)
	mhz := hz / 1_000_000
	if mhz < 100 || mhz > 960 {
		return 0, ErrFreqRange
	}
	return hz, nil
}

// ParseLoRa parses a 12-byte RadioLoraConfig payload.
func ParseLoRa(payload []byte) ([2]byte, radio.LoRaModParams, radio.LoRaPacketParams, error) {
	var sync [2]byte
	if len(payload) != 12 {
		return sync, radio.LoRaModParams{}, radio.LoRaPacketParams{}, ErrPayloadSize
	}
	pkt := radio.LoRaPacketParams{
		PreambleLen: binary.LittleEndian.Uint16(payload[0:2]),
		HeaderFixed: payload[2] == 0,
		PayloadLen:  payload[3],
		CRCEnabled:  payload[4] != 0,
		InvertIQ:    payload[5] != 0,
	}
	sf := payload[6]
	if sf < 5 || sf > 12 {
		return sync, radio.LoRaModParams{}, radio.LoRaPacketParams{}, ErrSpreadFactor
	}
	bw := payload[7]
	if !radio.LoRaBandwidthCodes[bw] {
		return sync, radio.LoRaModParams{}, radio.LoRaPacketParams{}, ErrBandwidth
	}
	mod := radio.LoRaModParams{
		SF:   sf,
		BW:   bw,
		CR:   payload[8],
		LDRO: payload[9] != 0,
	}
	copy(sync[:], payload[10:12])
	return sync, mod, pkt, nil
}

// ParseGfsk parses a 27-byte RadioGfskConfig payload per the spec §6 layout
// table: 9-byte packet params, 10-byte modulation params, 8-byte sync word.
func ParseGfsk(payload []byte) ([]byte, radio.GfskModParams, radio.GfskPacketParams, error) {
	if len(payload) != 27 {
		return nil, radio.GfskModParams{}, radio.GfskPacketParams{}, ErrPayloadSize
	}
	if !radio.PreambleDetectionCodes[payload[2]] {
		return nil, radio.GfskModParams{}, radio.GfskPacketParams{}, ErrPreambleDetection
	}
	if !radio.AddrCompCodes[payload[4]] {
		return nil, radio.GfskModParams{}, radio.GfskPacketParams{}, ErrAddrComp
	}
	if !radio.CRCTypeCodes[payload[7]] {
		return nil, radio.GfskModParams{}, radio.GfskPacketParams{}, ErrCRCType
	}
	if !radio.PulseShapeCodes[payload[13]] {
		return nil, radio.GfskModParams{}, radio.GfskPacketParams{}, ErrPulseShape
	}
	if !radio.GfskBandwidthCodes[payload[14]] {
		return nil, radio.GfskModParams{}, radio.GfskPacketParams{}, ErrGfskBandwidth
	}

	pkt := radio.GfskPacketParams{
		PreambleLen:       binary.BigEndian.Uint16(payload[0:2]),
		PreambleDetection: radio.PreambleDetection(payload[2]),
		SyncWordLen:       payload[3],
		AddrComp:          radio.AddrComp(payload[4]),
		HeaderFixed:       payload[5] == 0,
		PayloadLen:        payload[6],
		CRCType:           radio.CRCType(payload[7]),
		WhiteningEnable:   payload[8] != 0,
	}
	mod := radio.GfskModParams{
		BitrateBps: binary.LittleEndian.Uint32(payload[9:13]),
		PulseShape: radio.PulseShape(payload[13]),
		Bandwidth:  payload[14],
		FdevHz:     binary.LittleEndian.Uint32(payload[15:19]),
	}
	sync := append([]byte(nil), payload[19:27]...)
	return sync, mod, pkt, nil
}

// ParseRecvStart parses a 4-byte RadioRecvStart payload (timeout_ms, LE u32).
func ParseRecvStart(payload []byte) (uint32, error) {
	if len(payload) != 4 {
		return 0, ErrPayloadSize
	}
	return binary.LittleEndian.Uint32(payload), nil
}

// ErrorFor wraps a config.Error (or any error) with the name of the action
// that failed.
func ErrorFor(action string, err error) error {
	return fmt.Errorf("config: %s: %w", action, err)
}
