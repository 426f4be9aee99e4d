package net

import (
	stdnet "net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/thelostgroup/Impostor/internal/protocol"
)

// chanDispatcher hands received frames and disconnects to the test over
// channels.
type chanDispatcher struct {
	frames      chan receivedFrame
	disconnects chan Connection
}

type receivedFrame struct {
	conn  Connection
	frame []byte
}

func newChanDispatcher() *chanDispatcher {
	return &chanDispatcher{
		frames:      make(chan receivedFrame, 16),
		disconnects: make(chan Connection, 16),
	}
}

func (d *chanDispatcher) HandleFrame(conn Connection, frame []byte) {
	d.frames <- receivedFrame{conn: conn, frame: append([]byte(nil), frame...)}
}

func (d *chanDispatcher) HandleDisconnect(conn Connection) {
	d.disconnects <- conn
}

func startTestServer(t *testing.T) (*Server, *chanDispatcher) {
	t.Helper()
	dispatch := newChanDispatcher()
	srv := NewServer(Config{
		BindAddress:  "127.0.0.1:0",
		OutQueueSize: 16,
	}, zaptest.NewLogger(t), dispatch)
	require.NoError(t, srv.Listen())
	go func() { _ = srv.Serve() }()
	t.Cleanup(func() { _ = srv.Close() })
	return srv, dispatch
}

func dialTestServer(t *testing.T, srv *Server) stdnet.Conn {
	t.Helper()
	raw, err := stdnet.Dial("tcp", srv.Addr().String())
	require.NoError(t, err)
	t.Cleanup(func() { _ = raw.Close() })
	return raw
}

func waitFrame(t *testing.T, d *chanDispatcher) receivedFrame {
	t.Helper()
	select {
	case f := <-d.frames:
		return f
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for frame")
		return receivedFrame{}
	}
}

func helloTestFrame() []byte {
	w := protocol.NewMessageWriter(protocol.SendOptionReliable)
	w.WriteUint8(0)
	frame := append([]byte(nil), w.Bytes()...)
	frame[0] = byte(protocol.SendOptionHello)
	return frame
}

func TestServerDeliversFramesAndTracksState(t *testing.T) {
	srv, dispatch := startTestServer(t)
	raw := dialTestServer(t, srv)

	require.NoError(t, WriteFrame(raw, helloTestFrame()))
	got := waitFrame(t, dispatch)
	assert.Equal(t, helloTestFrame(), got.frame)
	assert.Equal(t, StateConnected, got.conn.State())
	assert.True(t, got.conn.RemoteAddr().IsLoopback())

	// A second frame arrives on the same connection.
	require.NoError(t, WriteFrame(raw, []byte{0, 0x42}))
	second := waitFrame(t, dispatch)
	assert.Same(t, got.conn, second.conn)
	assert.Equal(t, []byte{0, 0x42}, second.frame)
}

func TestServerStampsReliableNonce(t *testing.T) {
	srv, dispatch := startTestServer(t)
	raw := dialTestServer(t, srv)

	require.NoError(t, WriteFrame(raw, helloTestFrame()))
	conn := waitFrame(t, dispatch).conn

	w := protocol.NewMessageWriter(protocol.SendOptionReliable)
	w.StartMessage(byte(protocol.MessageTypeHostGame))
	w.EndMessage()
	conn.Send(w.Bytes())
	conn.Send(w.Bytes())

	first, err := ReadFrame(raw)
	require.NoError(t, err)
	assert.Equal(t, []byte{1, 0, 1}, first[:3])

	second, err := ReadFrame(raw)
	require.NoError(t, err)
	assert.Equal(t, []byte{1, 0, 2}, second[:3])
}

func TestServerReportsClientDisconnect(t *testing.T) {
	srv, dispatch := startTestServer(t)
	raw := dialTestServer(t, srv)

	require.NoError(t, WriteFrame(raw, helloTestFrame()))
	conn := waitFrame(t, dispatch).conn

	require.NoError(t, raw.Close())

	select {
	case gone := <-dispatch.disconnects:
		assert.Same(t, conn, gone)
		assert.Equal(t, StateDisconnected, gone.State())
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for disconnect")
	}
}

func TestServerDisconnectSendsNotice(t *testing.T) {
	srv, dispatch := startTestServer(t)
	raw := dialTestServer(t, srv)

	require.NoError(t, WriteFrame(raw, helloTestFrame()))
	conn := waitFrame(t, dispatch).conn

	conn.Disconnect(protocol.DisconnectReasonCustom, "bye")

	notice, err := ReadFrame(raw)
	require.NoError(t, err)
	assert.Equal(t, byte(protocol.SendOptionDisconnect), notice[0])
	assert.Equal(t, byte(protocol.DisconnectReasonCustom), notice[1])
	assert.Equal(t, byte(3), notice[2])
	assert.Equal(t, "bye", string(notice[3:]))

	// The socket closes after the notice is flushed.
	_, err = ReadFrame(raw)
	assert.Error(t, err)
}
