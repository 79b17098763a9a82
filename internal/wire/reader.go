package wire

// Reader is a forward-only cursor over a byte slice. Every read is
// bounds-checked; a read past the end returns ErrTruncated and leaves the
// cursor where it was. Payload decoders thread one Reader field by field,
// which lets the shape of a later field depend on an earlier field's value.
type Reader struct {
	buf []byte
	off int
}

func NewReader(buf []byte) *Reader {
	return &Reader{buf: buf}
}

// Remaining reports the number of unread bytes.
func (r *Reader) Remaining() int {
	return len(r.buf) - r.off
}

func (r *Reader) Uint8() (uint8, error) {
	v, n, err := DecodeUint8(r.buf[r.off:])
	r.off += n
	return v, err
}

func (r *Reader) Bool() (bool, error) {
	v, n, err := DecodeBool(r.buf[r.off:])
	r.off += n
	return v, err
}

func (r *Reader) Uint16() (uint16, error) {
	v, n, err := DecodeUint16(r.buf[r.off:])
	r.off += n
	return v, err
}

func (r *Reader) Int16() (int16, error) {
	v, n, err := DecodeInt16(r.buf[r.off:])
	r.off += n
	return v, err
}

func (r *Reader) Uint32() (uint32, error) {
	v, n, err := DecodeUint32(r.buf[r.off:])
	r.off += n
	return v, err
}

func (r *Reader) Int32() (int32, error) {
	v, n, err := DecodeInt32(r.buf[r.off:])
	r.off += n
	return v, err
}

func (r *Reader) Uint64() (uint64, error) {
	v, n, err := DecodeUint64(r.buf[r.off:])
	r.off += n
	return v, err
}

func (r *Reader) Float32() (float32, error) {
	v, n, err := DecodeFloat32(r.buf[r.off:])
	r.off += n
	return v, err
}

func (r *Reader) String() (string, error) {
	v, n, err := DecodeString(r.buf[r.off:])
	r.off += n
	return v, err
}

func (r *Reader) Int32List() ([]int32, error) {
	v, n, err := DecodeInt32List(r.buf[r.off:])
	r.off += n
	return v, err
}

// Bytes consumes and returns the next n raw bytes.
func (r *Reader) Bytes(n int) ([]byte, error) {
	if r.Remaining() < n {
		return nil, ErrTruncated
	}
	v := r.buf[r.off : r.off+n]
	r.off += n
	return v, nil
}
