package net

import (
	"bytes"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFrameRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	payload := []byte{1, 0, 0, 4, 0, 7, 0x78, 0x56, 0x34, 0x12}

	require.NoError(t, WriteFrame(&buf, payload))
	// [total length LE][payload], length includes the 2-byte header.
	assert.Equal(t, byte(12), buf.Bytes()[0])
	assert.Equal(t, byte(0), buf.Bytes()[1])

	got, err := ReadFrame(&buf)
	require.NoError(t, err)
	assert.Equal(t, payload, got)
	assert.Zero(t, buf.Len())
}

func TestFrameSequence(t *testing.T) {
	var buf bytes.Buffer
	first := []byte{0xAA}
	second := []byte{0xBB, 0xCC}
	require.NoError(t, WriteFrame(&buf, first))
	require.NoError(t, WriteFrame(&buf, second))

	got, err := ReadFrame(&buf)
	require.NoError(t, err)
	assert.Equal(t, first, got)

	got, err = ReadFrame(&buf)
	require.NoError(t, err)
	assert.Equal(t, second, got)
}

func TestReadFrameInvalidLength(t *testing.T) {
	// Total length 2 means an empty payload, which no valid frame has.
	_, err := ReadFrame(bytes.NewReader([]byte{2, 0}))
	assert.ErrorContains(t, err, "invalid frame length")

	_, err = ReadFrame(bytes.NewReader([]byte{0, 0}))
	assert.ErrorContains(t, err, "invalid frame length")
}

func TestReadFrameTruncated(t *testing.T) {
	_, err := ReadFrame(bytes.NewReader(nil))
	assert.ErrorIs(t, err, io.EOF)

	// Header promises 8 bytes of payload, stream ends early.
	_, err = ReadFrame(bytes.NewReader([]byte{10, 0, 1, 2}))
	assert.ErrorIs(t, err, io.ErrUnexpectedEOF)
}
