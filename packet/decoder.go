package packet

import (
	"encoding/binary"

	"github.com/tve/lplora/framing"
	"github.com/tve/lplora/queue"
)

// Frame is a decoded host-originated frame.
type Frame struct {
	Type    Type
	Payload []byte
}

// Decode pulls one complete SLIP frame out of q (the caller must already
// know one is present, signaled by observing an End sentinel) and parses it
// per spec §4.2: SLIP-dequeue into a scratch buffer, read the type byte,
// read the little-endian length, verify the CRC, and return the payload.
func Decode(q *queue.Ring) (Frame, error) {
	var scratch [scratchSize]byte
	n, err := framing.Decode(q, scratch[:])
	if err != nil {
		return Frame{}, err
	}
	if n < 5 {
		// Too short to even hold type+length+CRC.
		return Frame{}, ErrCorrupted
	}

	typ := Type(scratch[0])
	if !knownTypes[typ] {
		return Frame{}, ErrUnknownPacket
	}

	length := binary.LittleEndian.Uint16(scratch[1:3])
	if int(length) > scratchSize {
		return Frame{}, ErrBufferFull
	}
	if int(length) < lengthOverhead {
		return Frame{}, ErrCorrupted
	}
	payloadLen := int(length) - lengthOverhead
	if 3+payloadLen+2 > n {
		return Frame{}, ErrCorrupted
	}

	payload := scratch[3 : 3+payloadLen]
	wantCRC := binary.LittleEndian.Uint16(scratch[3+payloadLen : 3+payloadLen+2])
	gotCRC := framing.Checksum(scratch[0 : 3+payloadLen])
	if wantCRC != gotCRC {
		return Frame{}, ErrCorrupted
	}

	out := make([]byte, payloadLen)
	copy(out, payload)
	return Frame{Type: typ, Payload: out}, nil
}
