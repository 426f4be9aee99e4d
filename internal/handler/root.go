package handler

import (
	"go.uber.org/zap"

	"github.com/thelostgroup/Impostor/internal/game"
	"github.com/thelostgroup/Impostor/internal/protocol"
)

// HandleHostGame creates a new game from the client's opaque options blob
// and replies with its code. The client joins with a follow-up JoinGame.
func HandleHostGame(c *Client, r *protocol.MessageReader, deps *Deps) {
	options := append([]byte(nil), r.ReadRemaining()...)

	g, err := deps.Manager.Create(options)
	if err != nil {
		deps.Log.Warn("host rejected",
			zap.Int32("connID", c.Conn.ID()), zap.Error(err))
		c.Conn.Disconnect(protocol.DisconnectReasonCustom, deps.Msgs.ServerFull)
		return
	}

	w := protocol.NewMessageWriter(protocol.SendOptionReliable)
	w.StartMessage(byte(protocol.MessageTypeHostGame))
	w.WriteInt32(g.Code())
	w.EndMessage()
	c.Conn.Send(w.Bytes())
}

// HandleJoinGame resolves the code and runs the join protocol. A duplicate
// player id is a connection-layer bug and kills the connection.
func HandleJoinGame(c *Client, r *protocol.MessageReader, deps *Deps) {
	code, err := r.ReadInt32()
	if err != nil {
		c.Conn.Disconnect(protocol.DisconnectReasonError, "")
		return
	}
	g := deps.Manager.Find(code)
	if g == nil {
		c.Conn.Disconnect(protocol.DisconnectReasonGameNotFound, "")
		return
	}

	// A client switching games leaves its old one first.
	if c.Player != nil {
		if old := c.Player.CurrentGame(); old != nil && old != g {
			old.HandleRemovePlayer(c.Player.ID, protocol.DisconnectReasonExitGame)
		}
	}

	p := game.NewPlayer(c.Conn.ID(), c.Name, c.Conn)
	if err := g.HandleJoinGame(p); err != nil {
		deps.Log.Error("join failed",
			zap.Int32("connID", c.Conn.ID()),
			zap.String("code", g.CodeString()),
			zap.Error(err))
		c.Conn.Disconnect(protocol.DisconnectReasonError, "")
		return
	}
	if p.CurrentGame() == g {
		c.Player = p
	}
}

// memberGame returns the game the client is a member of, but only if it
// matches the code the message names; otherwise nil.
func memberGame(c *Client, r *protocol.MessageReader, deps *Deps) *game.Game {
	code, err := r.ReadInt32()
	if err != nil {
		return nil
	}
	if c.Player == nil {
		return nil
	}
	g := c.Player.CurrentGame()
	if g == nil || g.Code() != code {
		deps.Log.Warn("message for game the client is not in",
			zap.Int32("connID", c.Conn.ID()),
			zap.String("code", game.CodeToString(code)))
		return nil
	}
	return g
}

// HandleRemovePlayer is a voluntary leave: the client exits its game while
// keeping the connection open.
func HandleRemovePlayer(c *Client, r *protocol.MessageReader, deps *Deps) {
	g := memberGame(c, r, deps)
	if g == nil {
		return
	}
	g.HandleRemovePlayer(c.Player.ID, protocol.DisconnectReasonExitGame)
	c.Player = nil
}

func HandleStartGame(c *Client, r *protocol.MessageReader, deps *Deps) {
	g := memberGame(c, r, deps)
	if g == nil {
		return
	}
	g.HandleStartGame(c.Player, r.ReadRemaining())
}

func HandleEndGame(c *Client, r *protocol.MessageReader, deps *Deps) {
	g := memberGame(c, r, deps)
	if g == nil {
		return
	}
	g.HandleEndGame(r.ReadRemaining())
}

func HandleAlterGame(c *Client, r *protocol.MessageReader, deps *Deps) {
	g := memberGame(c, r, deps)
	if g == nil {
		return
	}
	tag, err := r.ReadUint8()
	if err != nil || protocol.AlterGameTag(tag) != protocol.AlterGameTagChangePrivacy {
		return
	}
	isPublic, err := r.ReadBool()
	if err != nil {
		return
	}
	g.HandleAlterGame(c.Player, isPublic)
}

func HandleKickPlayer(c *Client, r *protocol.MessageReader, deps *Deps) {
	g := memberGame(c, r, deps)
	if g == nil {
		return
	}
	targetID, err := r.ReadPackedInt32()
	if err != nil {
		return
	}
	isBan, err := r.ReadBool()
	if err != nil {
		return
	}
	g.HandleKickPlayer(targetID, isBan)
}

func HandleGameData(c *Client, r *protocol.MessageReader, deps *Deps) {
	g := memberGame(c, r, deps)
	if g == nil {
		return
	}
	g.HandleGameData(c.Player, r.ReadRemaining())
}

func HandleGameDataTo(c *Client, r *protocol.MessageReader, deps *Deps) {
	g := memberGame(c, r, deps)
	if g == nil {
		return
	}
	targetID, err := r.ReadPackedInt32()
	if err != nil {
		return
	}
	g.HandleGameDataTo(targetID, r.ReadRemaining())
}
