package packet

import (
	"encoding/binary"

	"github.com/tve/lplora/framing"
	"github.com/tve/lplora/queue"
)

// Encoder builds one reply frame into a Tx queue, streaming SLIP-encoded
// bytes as fields are appended and maintaining a rolling CRC digest over
// type||length||payload, per spec §4.3.
type Encoder struct {
	q      *queue.Ring
	digest *framing.Digest
}

// NewEncoder starts a new frame of the given type: pushes Start (with
// drop-oldest on overflow, same as every other byte) and SLIP-encodes the
// type byte.
func NewEncoder(q *queue.Ring, typ Type) *Encoder {
	q.PushEvict(framing.Start)
	d := framing.NewDigest()
	d.Update([]byte{byte(typ)})
	framing.Encode(q, byte(typ))
	return &Encoder{q: q, digest: d}
}

// WriteLength appends the on-wire length field for a payload of payloadLen
// bytes, i.e. payloadLen+4 per the lengthOverhead convention.
func (e *Encoder) WriteLength(payloadLen int) {
	var b [2]byte
	binary.LittleEndian.PutUint16(b[:], uint16(payloadLen+lengthOverhead))
	e.digest.Update(b[:])
	framing.Encode(e.q, b[0])
	framing.Encode(e.q, b[1])
}

// WritePayload appends payload bytes, folding them into the CRC digest.
func (e *Encoder) WritePayload(payload []byte) {
	e.digest.Update(payload)
	for _, b := range payload {
		framing.Encode(e.q, b)
	}
}

// Finalize appends the CRC and the End sentinel, completing the frame.
func (e *Encoder) Finalize() {
	var crc [2]byte
	binary.LittleEndian.PutUint16(crc[:], e.digest.Sum())
	framing.Encode(e.q, crc[0])
	framing.Encode(e.q, crc[1])
	e.q.PushEvict(framing.End)
}

// EncodeFrame is the common case: a single-shot frame with a fixed payload.
func EncodeFrame(q *queue.Ring, typ Type, payload []byte) {
	e := NewEncoder(q, typ)
	e.WriteLength(len(payload))
	e.WritePayload(payload)
	e.Finalize()
}

// MakePing emits a zero-payload Ping frame.
func MakePing(q *queue.Ring) { EncodeFrame(q, Ping, nil) }

// MakePong emits a zero-payload Pong frame.
func MakePong(q *queue.Ring) { EncodeFrame(q, Pong, nil) }

// MakeAck emits a zero-payload Ack frame.
func MakeAck(q *queue.Ring) { EncodeFrame(q, Ack, nil) }

// MakeNack emits a zero-payload Nack frame.
func MakeNack(q *queue.Ring) { EncodeFrame(q, Nack, nil) }

// MakeReceivedPacket emits a RadioReceivedPacket frame: RSSI and SNR as
// little-endian signed 16-bit integers followed by the received data.
func MakeReceivedPacket(q *queue.Ring, rssi, snr int16, data []byte) {
	payload := make([]byte, 4+len(data))
	binary.LittleEndian.PutUint16(payload[0:2], uint16(rssi))
	binary.LittleEndian.PutUint16(payload[2:4], uint16(snr))
	copy(payload[4:], data)
	EncodeFrame(q, RadioReceivedPkt, payload)
}
