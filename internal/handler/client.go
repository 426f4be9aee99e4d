package handler

import (
	"sync"

	"go.uber.org/zap"

	"github.com/thelostgroup/Impostor/internal/game"
	"github.com/thelostgroup/Impostor/internal/net"
	"github.com/thelostgroup/Impostor/internal/protocol"
)

// maxNameLength bounds the display name a client may announce.
const maxNameLength = 10

// Client is one connected client after its hello handshake: the connection
// plus the identity it announced. Player is set while the client is a member
// of a game.
type Client struct {
	Conn    net.Connection
	Name    string
	Version int32
	Player  *game.Player
}

// Dispatch owns the connection → client table and feeds decoded root
// messages into the registry. It is the net.Dispatcher for the server.
type Dispatch struct {
	reg  *Registry
	deps *Deps

	mu      sync.Mutex
	clients map[int32]*Client
}

func NewDispatch(reg *Registry, deps *Deps) *Dispatch {
	return &Dispatch{
		reg:     reg,
		deps:    deps,
		clients: make(map[int32]*Client),
	}
}

// ClientCount reports the number of handshaken clients.
func (d *Dispatch) ClientCount() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.clients)
}

// HandleFrame decodes one inbound frame and routes its messages.
func (d *Dispatch) HandleFrame(conn net.Connection, frame []byte) {
	opt, r, err := protocol.ParseFrame(frame)
	if err != nil {
		d.deps.Log.Warn("malformed frame",
			zap.Int32("connID", conn.ID()), zap.Error(err))
		conn.Disconnect(protocol.DisconnectReasonError, "")
		return
	}

	switch opt {
	case protocol.SendOptionHello:
		d.handleHello(conn, r)
	case protocol.SendOptionReliable, protocol.SendOptionNone:
		d.handleMessages(conn, r)
	case protocol.SendOptionDisconnect, protocol.SendOptionPing:
		// Disconnects surface through the read loop; pings need no reply
		// on a stream transport.
	default:
		d.deps.Log.Debug("unhandled send option",
			zap.Int32("connID", conn.ID()), zap.Uint8("option", uint8(opt)))
	}
}

func (d *Dispatch) handleHello(conn net.Connection, r *protocol.MessageReader) {
	if _, err := r.ReadUint8(); err != nil { // wire protocol version
		d.dropBadHello(conn, err)
		return
	}
	version, err := r.ReadInt32()
	if err != nil {
		d.dropBadHello(conn, err)
		return
	}
	name, err := r.ReadString()
	if err != nil {
		d.dropBadHello(conn, err)
		return
	}
	if name == "" || len(name) > maxNameLength {
		conn.Disconnect(protocol.DisconnectReasonCustom, "Invalid display name.")
		return
	}

	d.mu.Lock()
	d.clients[conn.ID()] = &Client{Conn: conn, Name: name, Version: version}
	d.mu.Unlock()

	d.deps.Log.Info("client connected",
		zap.Int32("connID", conn.ID()),
		zap.String("name", name),
		zap.Int32("version", version))
}

func (d *Dispatch) dropBadHello(conn net.Connection, err error) {
	d.deps.Log.Warn("malformed hello",
		zap.Int32("connID", conn.ID()), zap.Error(err))
	conn.Disconnect(protocol.DisconnectReasonError, "")
}

func (d *Dispatch) handleMessages(conn net.Connection, r *protocol.MessageReader) {
	d.mu.Lock()
	c := d.clients[conn.ID()]
	d.mu.Unlock()
	if c == nil {
		d.deps.Log.Warn("message before hello", zap.Int32("connID", conn.ID()))
		conn.Disconnect(protocol.DisconnectReasonError, "")
		return
	}

	for r.Remaining() > 0 {
		msg, err := r.ReadMessage()
		if err != nil {
			d.deps.Log.Warn("malformed message",
				zap.Int32("connID", conn.ID()), zap.Error(err))
			conn.Disconnect(protocol.DisconnectReasonError, "")
			return
		}
		fn := d.reg.Lookup(protocol.MessageType(msg.Tag))
		if fn == nil {
			d.deps.Log.Debug("unknown root message",
				zap.Int32("connID", conn.ID()), zap.Uint8("tag", msg.Tag))
			continue
		}
		fn(c, msg)
	}
}

// HandleDisconnect tears the client down and delivers its leave to the game
// it was in, if any.
func (d *Dispatch) HandleDisconnect(conn net.Connection) {
	d.mu.Lock()
	c := d.clients[conn.ID()]
	delete(d.clients, conn.ID())
	d.mu.Unlock()
	if c == nil {
		return
	}

	if c.Player != nil {
		if g := c.Player.CurrentGame(); g != nil {
			g.HandleRemovePlayer(c.Player.ID, protocol.DisconnectReasonExitGame)
		}
	}
	d.deps.Log.Info("client disconnected",
		zap.Int32("connID", conn.ID()), zap.String("name", c.Name))
}
