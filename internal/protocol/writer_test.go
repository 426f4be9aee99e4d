package protocol

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriterReliableFrameLayout(t *testing.T) {
	w := NewMessageWriter(SendOptionReliable)
	w.StartMessage(byte(MessageTypeJoinedGame))
	w.WriteInt32(0x12345678)
	w.EndMessage()

	// [opt][nonce hi][nonce lo][len lo][len hi][tag][payload...]
	assert.Equal(t, []byte{1, 0, 0, 4, 0, 7, 0x78, 0x56, 0x34, 0x12}, w.Bytes())
}

func TestWriterNoneFrameHasNoNonceSlot(t *testing.T) {
	w := NewMessageWriter(SendOptionNone)
	w.StartMessage(2)
	w.EndMessage()

	assert.Equal(t, []byte{0, 0, 0, 2}, w.Bytes())
}

func TestWriterNestedMessages(t *testing.T) {
	w := NewMessageWriter(SendOptionNone)
	w.StartMessage(5)
	w.WriteUint8(0xAA)
	w.StartMessage(1)
	w.WriteUint8(0xBB)
	w.EndMessage()
	w.EndMessage()

	// Inner message: len=1, tag=1, payload BB. Outer: len=5.
	assert.Equal(t, []byte{0, 5, 0, 5, 0xAA, 1, 0, 1, 0xBB}, w.Bytes())
}

func TestWriterPackedEncoding(t *testing.T) {
	cases := []struct {
		value uint32
		want  []byte
	}{
		{0, []byte{0x00}},
		{127, []byte{0x7F}},
		{128, []byte{0x80, 0x01}},
		{300, []byte{0xAC, 0x02}},
		{0xFFFFFFFF, []byte{0xFF, 0xFF, 0xFF, 0xFF, 0x0F}},
	}
	for _, tc := range cases {
		w := NewMessageWriter(SendOptionNone)
		w.WritePackedUint32(tc.value)
		assert.Equal(t, tc.want, w.Bytes()[1:], "value %d", tc.value)
	}
}

func TestWriterPackedInt32NegativeMatchesUnsigned(t *testing.T) {
	w := NewMessageWriter(SendOptionNone)
	w.WritePackedInt32(-1)
	assert.Equal(t, []byte{0xFF, 0xFF, 0xFF, 0xFF, 0x0F}, w.Bytes()[1:])
}

func TestWriterString(t *testing.T) {
	w := NewMessageWriter(SendOptionNone)
	w.WriteString("ABC")
	assert.Equal(t, []byte{3, 'A', 'B', 'C'}, w.Bytes()[1:])
}

func TestWriterClearResetsFrame(t *testing.T) {
	w := NewMessageWriter(SendOptionReliable)
	w.StartMessage(1)
	w.WriteInt32(42)
	w.EndMessage()

	w.Clear(SendOptionReliable)
	assert.Equal(t, []byte{1, 0, 0}, w.Bytes())
}

func TestWriterSetNonce(t *testing.T) {
	w := NewMessageWriter(SendOptionReliable)
	w.SetNonce(0x0102)
	assert.Equal(t, []byte{1, 0x01, 0x02}, w.Bytes())

	require.Panics(t, func() {
		n := NewMessageWriter(SendOptionNone)
		n.SetNonce(1)
	})
}
