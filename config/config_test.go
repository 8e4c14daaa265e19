package config

import (
	"errors"
	"testing"

	"github.com/tve/lplora/radio"
)

func TestParseFreqRange(t *testing.T) {
	valid := []byte{0xC0, 0xCA, 0x89, 0x36} // 915,000,000 Hz LE
	hz, err := ParseFreq(valid)
	if err != nil {
		t.Fatalf("ParseFreq(valid): %v", err)
	}
	if hz != 915_000_000 {
		t.Fatalf("hz = %d, want 915000000", hz)
	}

	outOfRange := []byte{0x00, 0x00, 0x00, 0x00}
	if _, err := ParseFreq(outOfRange); !errors.Is(err, ErrFreqRange) {
		t.Fatalf("ParseFreq(0): err = %v, want ErrFreqRange", err)
	}
}

func TestParseFreqWrongSize(t *testing.T) {
	if _, err := ParseFreq([]byte{0x01, 0x02, 0x03}); !errors.Is(err, ErrPayloadSize) {
		t.Fatalf("err = %v, want ErrPayloadSize", err)
	}
}

func TestParsePhyPASelectPicksOCP(t *testing.T) {
	lp := []byte{1, 2, 0, 20, 3, 1}
	_, _, ocp, rxBoost, err := ParsePhy(lp)
	if err != nil {
		t.Fatalf("ParsePhy(lp): %v", err)
	}
	if ocp != radio.OCP60mA {
		t.Fatalf("ocp = %v, want OCP60mA for Lp", ocp)
	}
	if !rxBoost {
		t.Fatalf("rxBoost = false, want true")
	}

	hp := []byte{1, 2, 1, 20, 3, 0}
	_, _, ocp, rxBoost, err = ParsePhy(hp)
	if err != nil {
		t.Fatalf("ParsePhy(hp): %v", err)
	}
	if ocp != radio.OCP140mA {
		t.Fatalf("ocp = %v, want OCP140mA for Hp", ocp)
	}
	if rxBoost {
		t.Fatalf("rxBoost = true, want false")
	}
}

func TestParseLoRaDefaults(t *testing.T) {
	payload := []byte{
		16, 0, // preamble_len LE
		1,    // header_type: variable
		24,   // payload_len
		1,    // crc_en
		0,    // invert_iq
		10,   // sf
		0x04, // bw125
		45,   // cr
		0,    // ldro
		0x24, 0x34, // sync word
	}
	sync, mod, pkt, err := ParseLoRa(payload)
	if err != nil {
		t.Fatalf("ParseLoRa: %v", err)
	}
	if mod.SF != 10 || mod.BW != 0x04 || mod.CR != 45 {
		t.Fatalf("mod = %+v, want SF10/BW125/CR45", mod)
	}
	if pkt.PreambleLen != 16 || !pkt.CRCEnabled || pkt.HeaderFixed {
		t.Fatalf("pkt = %+v", pkt)
	}
	if sync != [2]byte{0x24, 0x34} {
		t.Fatalf("sync = %v, want 0x2434", sync)
	}
}

func TestParseLoRaRejectsBadSF(t *testing.T) {
	payload := make([]byte, 12)
	payload[6] = 20 // out of 5..12 range
	payload[7] = 0x04
	if _, _, _, err := ParseLoRa(payload); !errors.Is(err, ErrSpreadFactor) {
		t.Fatalf("err = %v, want ErrSpreadFactor", err)
	}
}

func TestParseLoRaRejectsBadBandwidth(t *testing.T) {
	payload := make([]byte, 12)
	payload[6] = 10
	payload[7] = 0xFF // not a valid bandwidth code
	if _, _, _, err := ParseLoRa(payload); !errors.Is(err, ErrBandwidth) {
		t.Fatalf("err = %v, want ErrBandwidth", err)
	}
}

func TestParsePhyRejectsBadRampTime(t *testing.T) {
	payload := []byte{1, 2, 0, 20, 0xFF, 1} // ramp_time out of the 8 discrete codes
	if _, _, _, _, err := ParsePhy(payload); !errors.Is(err, ErrRampTime) {
		t.Fatalf("err = %v, want ErrRampTime", err)
	}
}

func TestParseGfskLayout(t *testing.T) {
	payload := make([]byte, 27)
	payload[0], payload[1] = 0x00, 0x08 // preamble_len BE = 8
	payload[2] = 5                      // preamble detection 16 bits
	payload[3] = 3                      // sync_word_len
	payload[4] = 1                      // addr comp node
	payload[5] = 0                      // fixed header
	payload[6] = 64                     // payload_len
	payload[7] = 2                      // crc 2B
	payload[8] = 1                      // whitening
	payload[9], payload[10], payload[11], payload[12] = 0x40, 0x3E, 0x01, 0x00 // bitrate LE
	payload[13] = 0x09                  // pulse shape BT05
	payload[14] = 0x1F                  // bandwidth code (4.8kHz DSB)
	payload[15], payload[16], payload[17], payload[18] = 0x00, 0x20, 0x00, 0x00 // fdev LE
	for i := 0; i < 8; i++ {
		payload[19+i] = byte(0xA0 + i)
	}

	sync, mod, pkt, err := ParseGfsk(payload)
	if err != nil {
		t.Fatalf("ParseGfsk: %v", err)
	}
	if pkt.PreambleLen != 8 {
		t.Fatalf("PreambleLen = %d, want 8", pkt.PreambleLen)
	}
	if pkt.PreambleDetection != radio.PreambleDetect16 {
		t.Fatalf("PreambleDetection = %v, want Detect16", pkt.PreambleDetection)
	}
	if mod.BitrateBps != 0x00013E40 {
		t.Fatalf("BitrateBps = %#x, want 0x13e40", mod.BitrateBps)
	}
	if len(sync) != 8 || sync[0] != 0xA0 {
		t.Fatalf("sync = %v", sync)
	}
}

func TestParseGfskWrongSize(t *testing.T) {
	if _, _, _, err := ParseGfsk(make([]byte, 10)); !errors.Is(err, ErrPayloadSize) {
		t.Fatalf("err = %v, want ErrPayloadSize", err)
	}
}

// validGfskPayload returns a 27-byte payload that passes every field check,
// for tests that flip exactly one byte to an invalid code.
func validGfskPayload() []byte {
	payload := make([]byte, 27)
	payload[0], payload[1] = 0x00, 0x08
	payload[2] = 5 // preamble detection 16 bits
	payload[3] = 3
	payload[4] = 1 // addr comp node
	payload[5] = 0
	payload[6] = 64
	payload[7] = 2 // crc 2B
	payload[8] = 1
	payload[9], payload[10], payload[11], payload[12] = 0x40, 0x3E, 0x01, 0x00
	payload[13] = 0x09 // pulse shape BT05
	payload[14] = 0x1F // bandwidth
	payload[15], payload[16], payload[17], payload[18] = 0x00, 0x20, 0x00, 0x00
	for i := 0; i < 8; i++ {
		payload[19+i] = byte(0xA0 + i)
	}
	return payload
}

func TestParseGfskRejectsBadPreambleDetection(t *testing.T) {
	payload := validGfskPayload()
	payload[2] = 0xFF
	if _, _, _, err := ParseGfsk(payload); !errors.Is(err, ErrPreambleDetection) {
		t.Fatalf("err = %v, want ErrPreambleDetection", err)
	}
}

func TestParseGfskRejectsBadAddrComp(t *testing.T) {
	payload := validGfskPayload()
	payload[4] = 0xFF
	if _, _, _, err := ParseGfsk(payload); !errors.Is(err, ErrAddrComp) {
		t.Fatalf("err = %v, want ErrAddrComp", err)
	}
}

func TestParseGfskRejectsBadCRCType(t *testing.T) {
	payload := validGfskPayload()
	payload[7] = 0xFF
	if _, _, _, err := ParseGfsk(payload); !errors.Is(err, ErrCRCType) {
		t.Fatalf("err = %v, want ErrCRCType", err)
	}
}

func TestParseGfskRejectsBadPulseShape(t *testing.T) {
	payload := validGfskPayload()
	payload[13] = 0xFF
	if _, _, _, err := ParseGfsk(payload); !errors.Is(err, ErrPulseShape) {
		t.Fatalf("err = %v, want ErrPulseShape", err)
	}
}

func TestParseGfskRejectsBadBandwidth(t *testing.T) {
	payload := validGfskPayload()
	payload[14] = 0xFF
	if _, _, _, err := ParseGfsk(payload); !errors.Is(err, ErrGfskBandwidth) {
		t.Fatalf("err = %v, want ErrGfskBandwidth", err)
	}
}

func TestParseRecvStart(t *testing.T) {
	ms, err := ParseRecvStart([]byte{0xE8, 0x03, 0x00, 0x00}) // 1000ms LE
	if err != nil {
		t.Fatalf("ParseRecvStart: %v", err)
	}
	if ms != 1000 {
		t.Fatalf("ms = %d, want 1000", ms)
	}
}
