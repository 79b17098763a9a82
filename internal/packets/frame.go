package packets

import (
	"errors"

	"github.com/kisaten/bancho/internal/wire"
)

// HeaderSize is the fixed envelope header: a 2-byte packet id, 1 reserved
// byte, and a 4-byte payload length.
const HeaderSize = 7

var (
	// ErrShortHeader indicates fewer than HeaderSize bytes remained.
	ErrShortHeader = errors.New("packets: truncated envelope header")

	// ErrPayloadLength indicates the declared payload length exceeds the
	// bytes remaining in the buffer. Input is attacker-controlled; a frame
	// must never read past the buffer it was handed.
	ErrPayloadLength = errors.New("packets: declared payload length exceeds buffer")
)

// ParseFrame reads one envelope from the front of buf, returning the packet
// id, the payload sub-slice, and the total number of bytes consumed. An
// unrecognized id parses successfully; routing it is the dispatcher's
// problem, and consuming its payload here keeps the framing synchronized.
func ParseFrame(buf []byte) (ID, []byte, int, error) {
	if len(buf) < HeaderSize {
		return 0, nil, 0, ErrShortHeader
	}
	id, _, _ := wire.DecodeUint16(buf)
	// buf[2] is reserved padding, ignored on read.
	length, _, _ := wire.DecodeUint32(buf[3:])

	if uint32(len(buf)-HeaderSize) < length {
		return 0, nil, 0, ErrPayloadLength
	}
	end := HeaderSize + int(length)
	return ID(id), buf[HeaderSize:end], end, nil
}

// Write wraps payload in an envelope for the given id. The reserved byte is
// written as zero.
func Write(id ID, payload []byte) []byte {
	out := make([]byte, 0, HeaderSize+len(payload))
	out = wire.AppendUint16(out, uint16(id))
	out = wire.AppendUint8(out, 0)
	out = wire.AppendUint32(out, uint32(len(payload)))
	return append(out, payload...)
}
