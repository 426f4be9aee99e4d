package protocol

import (
	"encoding/binary"
	"fmt"
)

// MessageReader decodes one message payload. The dispatcher obtains the root
// reader from a received frame and descends into nested messages with
// ReadMessage.
type MessageReader struct {
	Tag byte
	buf []byte
	pos int
}

// NewMessageReader wraps a message payload that has already been stripped of
// its frame and message headers.
func NewMessageReader(tag byte, payload []byte) *MessageReader {
	return &MessageReader{Tag: tag, buf: payload}
}

// ParseFrame splits a raw frame into its send option and the body holding
// the root messages. Reliable and hello frames carry a 2-byte nonce, which
// is consumed here.
func ParseFrame(frame []byte) (SendOption, *MessageReader, error) {
	if len(frame) == 0 {
		return 0, nil, fmt.Errorf("empty frame")
	}
	opt := SendOption(frame[0])
	body := frame[1:]
	if opt == SendOptionReliable || opt == SendOptionHello {
		if len(body) < 2 {
			return 0, nil, fmt.Errorf("%v frame too short: %d bytes", opt, len(frame))
		}
		body = body[2:]
	}
	return opt, &MessageReader{buf: body}, nil
}

// Remaining reports how many unread bytes are left.
func (r *MessageReader) Remaining() int {
	return len(r.buf) - r.pos
}

func (r *MessageReader) take(n int) ([]byte, error) {
	if r.Remaining() < n {
		return nil, fmt.Errorf("message truncated: need %d bytes, have %d", n, r.Remaining())
	}
	b := r.buf[r.pos : r.pos+n]
	r.pos += n
	return b, nil
}

func (r *MessageReader) ReadUint8() (byte, error) {
	b, err := r.take(1)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

func (r *MessageReader) ReadBool() (bool, error) {
	b, err := r.ReadUint8()
	return b != 0, err
}

func (r *MessageReader) ReadUint16() (uint16, error) {
	b, err := r.take(2)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint16(b), nil
}

func (r *MessageReader) ReadInt32() (int32, error) {
	b, err := r.take(4)
	if err != nil {
		return 0, err
	}
	return int32(binary.LittleEndian.Uint32(b)), nil
}

// ReadPackedUint32 reads a 7-bit little-endian varint.
func (r *MessageReader) ReadPackedUint32() (uint32, error) {
	var v uint32
	for shift := 0; shift < 35; shift += 7 {
		b, err := r.ReadUint8()
		if err != nil {
			return 0, err
		}
		v |= uint32(b&0x7F) << shift
		if b&0x80 == 0 {
			return v, nil
		}
	}
	return 0, fmt.Errorf("packed integer too long")
}

func (r *MessageReader) ReadPackedInt32() (int32, error) {
	v, err := r.ReadPackedUint32()
	return int32(v), err
}

// ReadString reads a packed length followed by that many bytes.
func (r *MessageReader) ReadString() (string, error) {
	n, err := r.ReadPackedUint32()
	if err != nil {
		return "", err
	}
	b, err := r.take(int(n))
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// ReadMessage reads one nested message header and returns a reader scoped to
// its payload.
func (r *MessageReader) ReadMessage() (*MessageReader, error) {
	length, err := r.ReadUint16()
	if err != nil {
		return nil, err
	}
	tag, err := r.ReadUint8()
	if err != nil {
		return nil, err
	}
	payload, err := r.take(int(length))
	if err != nil {
		return nil, err
	}
	return &MessageReader{Tag: tag, buf: payload}, nil
}

// ReadRemaining returns all unread bytes without copying.
func (r *MessageReader) ReadRemaining() []byte {
	b := r.buf[r.pos:]
	r.pos = len(r.buf)
	return b
}
