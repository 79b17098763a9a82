// Package wire implements the binary encoding primitives shared by every
// packet in the protocol: little-endian fixed-width integers, single-byte
// booleans, length-prefixed strings, and counted int32 lists.
//
// The string format is asymmetric and must be preserved exactly for client
// compatibility: an empty string is the single byte 0x00, while a non-empty
// string is 0x0b followed by a ULEB128 byte length and the raw UTF-8 bytes.
package wire

import (
	"encoding/binary"
	"errors"
	"math"
	"strings"
	"unicode/utf8"
)

var (
	// ErrTruncated indicates that fewer bytes remain in the buffer than the
	// value being decoded requires.
	ErrTruncated = errors.New("wire: truncated value")

	// ErrStringPrefix indicates a string whose leading byte is neither 0x00
	// nor 0x0b.
	ErrStringPrefix = errors.New("wire: unknown string prefix")
)

const (
	emptyStringPrefix = 0x00
	stringPrefix      = 0x0b
)

// Append* functions encode a value onto the end of dst and return the
// extended slice, following the append convention from the standard library.

func AppendUint8(dst []byte, v uint8) []byte {
	return append(dst, v)
}

func AppendBool(dst []byte, v bool) []byte {
	if v {
		return append(dst, 1)
	}
	return append(dst, 0)
}

func AppendUint16(dst []byte, v uint16) []byte {
	return binary.LittleEndian.AppendUint16(dst, v)
}

func AppendInt16(dst []byte, v int16) []byte {
	return binary.LittleEndian.AppendUint16(dst, uint16(v))
}

func AppendUint32(dst []byte, v uint32) []byte {
	return binary.LittleEndian.AppendUint32(dst, v)
}

func AppendInt32(dst []byte, v int32) []byte {
	return binary.LittleEndian.AppendUint32(dst, uint32(v))
}

func AppendUint64(dst []byte, v uint64) []byte {
	return binary.LittleEndian.AppendUint64(dst, v)
}

func AppendFloat32(dst []byte, v float32) []byte {
	return binary.LittleEndian.AppendUint32(dst, math.Float32bits(v))
}

// AppendString encodes s in the two-case string format: a lone 0x00 byte for
// the empty string, otherwise 0x0b + ULEB128 length + raw bytes.
func AppendString(dst []byte, s string) []byte {
	if s == "" {
		return append(dst, emptyStringPrefix)
	}
	dst = append(dst, stringPrefix)
	dst = appendULEB128(dst, uint32(len(s)))
	return append(dst, s...)
}

// AppendInt32List encodes vs as a 2-byte little-endian element count followed
// by the 4-byte elements.
func AppendInt32List(dst []byte, vs []int32) []byte {
	dst = AppendUint16(dst, uint16(len(vs)))
	for _, v := range vs {
		dst = AppendInt32(dst, v)
	}
	return dst
}

// SizeString returns the number of bytes AppendString will write for s.
func SizeString(s string) int {
	if s == "" {
		return 1
	}
	n := 1 + len(s)
	for v := uint32(len(s)); v != 0; v >>= 7 {
		n++
	}
	return n
}

// SizeInt32List returns the number of bytes AppendInt32List will write for vs.
func SizeInt32List(vs []int32) int {
	return 2 + 4*len(vs)
}

// Decode* functions read a value from the front of buf, returning the value
// and the number of bytes consumed. They bounds-check every read; malformed
// input yields an error, never a panic.

func DecodeUint8(buf []byte) (uint8, int, error) {
	if len(buf) < 1 {
		return 0, 0, ErrTruncated
	}
	return buf[0], 1, nil
}

func DecodeBool(buf []byte) (bool, int, error) {
	v, n, err := DecodeUint8(buf)
	return v != 0, n, err
}

func DecodeUint16(buf []byte) (uint16, int, error) {
	if len(buf) < 2 {
		return 0, 0, ErrTruncated
	}
	return binary.LittleEndian.Uint16(buf), 2, nil
}

func DecodeInt16(buf []byte) (int16, int, error) {
	v, n, err := DecodeUint16(buf)
	return int16(v), n, err
}

func DecodeUint32(buf []byte) (uint32, int, error) {
	if len(buf) < 4 {
		return 0, 0, ErrTruncated
	}
	return binary.LittleEndian.Uint32(buf), 4, nil
}

func DecodeInt32(buf []byte) (int32, int, error) {
	v, n, err := DecodeUint32(buf)
	return int32(v), n, err
}

func DecodeUint64(buf []byte) (uint64, int, error) {
	if len(buf) < 8 {
		return 0, 0, ErrTruncated
	}
	return binary.LittleEndian.Uint64(buf), 8, nil
}

func DecodeFloat32(buf []byte) (float32, int, error) {
	v, n, err := DecodeUint32(buf)
	return math.Float32frombits(v), n, err
}

// DecodeString decodes a string in the two-case format. Invalid UTF-8 is
// replaced rather than rejected; the client is not trusted to send well-formed
// text.
func DecodeString(buf []byte) (string, int, error) {
	prefix, n, err := DecodeUint8(buf)
	if err != nil {
		return "", 0, err
	}
	switch prefix {
	case emptyStringPrefix:
		return "", n, nil
	case stringPrefix:
		length, m, err := decodeULEB128(buf[n:])
		if err != nil {
			return "", 0, err
		}
		n += m
		if uint32(len(buf)-n) < length {
			return "", 0, ErrTruncated
		}
		raw := buf[n : n+int(length)]
		return toValidUTF8(raw), n + int(length), nil
	default:
		return "", 0, ErrStringPrefix
	}
}

// DecodeInt32List decodes a 2-byte count followed by that many 4-byte
// elements. The declared count is validated against the remaining buffer
// before any element is read.
func DecodeInt32List(buf []byte) ([]int32, int, error) {
	count, n, err := DecodeUint16(buf)
	if err != nil {
		return nil, 0, err
	}
	if len(buf)-n < int(count)*4 {
		return nil, 0, ErrTruncated
	}
	vs := make([]int32, count)
	for i := range vs {
		vs[i] = int32(binary.LittleEndian.Uint32(buf[n:]))
		n += 4
	}
	return vs, n, nil
}

func appendULEB128(dst []byte, v uint32) []byte {
	for v >= 0x80 {
		dst = append(dst, byte(v)|0x80)
		v >>= 7
	}
	return append(dst, byte(v))
}

func decodeULEB128(buf []byte) (uint32, int, error) {
	var v uint32
	var shift uint
	for i, b := range buf {
		v |= uint32(b&0x7f) << shift
		if b&0x80 == 0 {
			return v, i + 1, nil
		}
		shift += 7
		if shift >= 32 {
			return 0, 0, ErrTruncated
		}
	}
	return 0, 0, ErrTruncated
}

func toValidUTF8(raw []byte) string {
	if utf8.Valid(raw) {
		return string(raw)
	}
	return strings.ToValidUTF8(string(raw), string(utf8.RuneError))
}
