package protocol

import "encoding/binary"

// MessageWriter builds outbound frames.
// Wire format: a frame starts with one send-option byte (plus a 2-byte
// big-endian nonce slot for reliable frames, filled in by the connection at
// send time), followed by one or more messages. Each message is
// [2 bytes LE payload length][1 byte tag][payload] and messages may nest.
//
// Writers never fail: all methods append to an in-memory buffer. Malformed
// input (negative lengths, ids out of range) is the caller's bug.
type MessageWriter struct {
	buf    []byte
	starts []int // open message header offsets, innermost last
}

// NewMessageWriter returns a writer primed as a fresh frame with the given
// send option.
func NewMessageWriter(opt SendOption) *MessageWriter {
	w := &MessageWriter{}
	w.Clear(opt)
	return w
}

// Clear resets the writer to a fresh frame with the given send option,
// discarding any buffered content. Reliable frames reserve the nonce slot.
func (w *MessageWriter) Clear(opt SendOption) {
	w.buf = w.buf[:0]
	w.starts = w.starts[:0]
	w.buf = append(w.buf, byte(opt))
	if opt == SendOptionReliable {
		w.buf = append(w.buf, 0, 0)
	}
}

// StartMessage opens a message with the given tag. The length header is
// backfilled by EndMessage.
func (w *MessageWriter) StartMessage(tag byte) {
	w.starts = append(w.starts, len(w.buf))
	w.buf = append(w.buf, 0, 0, tag)
}

// EndMessage closes the innermost open message, backfilling its length.
func (w *MessageWriter) EndMessage() {
	start := w.starts[len(w.starts)-1]
	w.starts = w.starts[:len(w.starts)-1]
	binary.LittleEndian.PutUint16(w.buf[start:], uint16(len(w.buf)-start-3))
}

// WriteUint8 writes a single byte. Not named WriteByte to keep the
// io.ByteWriter vet check out of a method that cannot fail.
func (w *MessageWriter) WriteUint8(v byte) {
	w.buf = append(w.buf, v)
}

func (w *MessageWriter) WriteBool(v bool) {
	if v {
		w.buf = append(w.buf, 1)
	} else {
		w.buf = append(w.buf, 0)
	}
}

func (w *MessageWriter) WriteUint16(v uint16) {
	w.buf = binary.LittleEndian.AppendUint16(w.buf, v)
}

func (w *MessageWriter) WriteInt32(v int32) {
	w.buf = binary.LittleEndian.AppendUint32(w.buf, uint32(v))
}

func (w *MessageWriter) WriteUint32(v uint32) {
	w.buf = binary.LittleEndian.AppendUint32(w.buf, v)
}

// WritePackedUint32 writes v as a 7-bit little-endian varint.
func (w *MessageWriter) WritePackedUint32(v uint32) {
	for v >= 0x80 {
		w.buf = append(w.buf, byte(v)|0x80)
		v >>= 7
	}
	w.buf = append(w.buf, byte(v))
}

// WritePackedInt32 writes v with the same bit pattern as WritePackedUint32.
func (w *MessageWriter) WritePackedInt32(v int32) {
	w.WritePackedUint32(uint32(v))
}

// WriteString writes a packed byte length followed by the raw bytes.
func (w *MessageWriter) WriteString(s string) {
	w.WritePackedUint32(uint32(len(s)))
	w.buf = append(w.buf, s...)
}

func (w *MessageWriter) WriteBytes(b []byte) {
	w.buf = append(w.buf, b...)
}

// SetNonce fills the reliable nonce slot. Panics if the frame is not reliable.
func (w *MessageWriter) SetNonce(nonce uint16) {
	if SendOption(w.buf[0]) != SendOptionReliable {
		panic("protocol: SetNonce on non-reliable frame")
	}
	binary.BigEndian.PutUint16(w.buf[1:], nonce)
}

// Bytes returns the built frame. The slice aliases the writer's buffer and is
// invalidated by the next Clear.
func (w *MessageWriter) Bytes() []byte {
	return w.buf
}

// Len reports the current frame length in bytes.
func (w *MessageWriter) Len() int {
	return len(w.buf)
}
