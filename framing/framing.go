// Package framing implements the SLIP-style byte-stuffed framing used on the
// host serial link: a start/end sentinel delimits a frame and any occurrence
// of a sentinel byte inside the frame is escaped by a two-byte sequence.
package framing

import "github.com/tve/lplora/queue"

// Sentinel and escape bytes, fixed by the wire protocol.
const (
	Start    byte = 0xA5
	End      byte = 0xC0
	Esc      byte = 0xDB
	EscEnd   byte = 0xDC
	EscEsc   byte = 0xDD
	EscStart byte = 0xDE
)

// Error is the taxonomy of framing/decode failures, shared with the packet
// package so the dispatcher can reply Ack/Nack based on error kind.
type Error string

func (e Error) Error() string { return string(e) }

const (
	// ErrEncoding means an ESC byte was followed by something other than
	// one of the three recognized escape codes.
	ErrEncoding Error = "framing: invalid escape sequence"
	// ErrBufferFull means the output buffer filled before an End sentinel
	// was observed.
	ErrBufferFull Error = "framing: decode buffer full"
)

// Encode appends the SLIP-stuffed encoding of b into queue q, using q's
// drop-oldest overflow policy for every byte it emits.
func Encode(q *queue.Ring, b byte) {
	switch b {
	case Start:
		q.PushEvict(Esc)
		q.PushEvict(EscStart)
	case Esc:
		q.PushEvict(Esc)
		q.PushEvict(EscEsc)
	case End:
		q.PushEvict(Esc)
		q.PushEvict(EscEnd)
	default:
		q.PushEvict(b)
	}
}

// EncodeAll is a convenience wrapper that encodes every byte of buf into q.
func EncodeAll(q *queue.Ring, buf []byte) {
	for _, b := range buf {
		Encode(q, b)
	}
}

// Decode pulls one SLIP frame out of q into out, starting its search at the
// next Start byte (bytes preceding it, including a truncated earlier frame,
// are discarded) and running until End is seen. It returns the number of
// decoded bytes written to out.
//
// Decode returns ErrEncoding if an Esc byte is followed by anything other
// than EscStart, EscEsc, or EscEnd, and ErrBufferFull if out fills before End
// is observed. On any error the queue has already been drained up to the
// point of failure; the caller resumes scanning for the next Start on its
// next call.
func Decode(q *queue.Ring, out []byte) (int, error) {
	started := false
	n := 0

	for {
		b, ok := q.Pop()
		if !ok {
			break
		}

		switch b {
		case Start:
			// A fresh Start mid-frame means the previous, now-abandoned
			// frame gets discarded, mirroring the Rx byte handler's
			// reset-on-Start behavior (spec §4.5) at the queue level.
			started = true
			n = 0
			continue
		case End:
			if started {
				return n, nil
			}
			continue
		}

		if !started {
			// Not inside a frame yet: every byte, Esc included, is
			// pre-Start garbage to discard while resyncing.
			continue
		}

		if b == Esc {
			esc, ok := q.Pop()
			if !ok {
				return n, ErrEncoding
			}
			switch esc {
			case EscEnd:
				b = End
			case EscStart:
				b = Start
			case EscEsc:
				b = Esc
			default:
				return n, ErrEncoding
			}
		}
		if n >= len(out) {
			return n, ErrBufferFull
		}
		out[n] = b
		n++
	}

	if started {
		// Ran out of bytes mid-frame: the partial frame has already been
		// popped from q and is dropped; report zero decoded bytes.
		return 0, nil
	}
	return 0, nil
}
