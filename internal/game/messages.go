package game

import "github.com/thelostgroup/Impostor/internal/protocol"

// Wire message builders for the session control messages. Each builder
// appends one complete message to w; when clear is set, w is first reset to
// a fresh reliable frame. Passing clear=false chains several logical
// messages into one physical frame (the joined-game + privacy pair relies
// on this). Builders only serialize; they never send or touch game state.

// WriteJoinedGameMessage tells the joining player which game it is now in:
// its own id, the current host, and every other member.
func WriteJoinedGameMessage(w *protocol.MessageWriter, clear bool, code, playerID, hostID int32, otherIDs []int32) {
	if clear {
		w.Clear(protocol.SendOptionReliable)
	}
	w.StartMessage(byte(protocol.MessageTypeJoinedGame))
	w.WriteInt32(code)
	w.WriteInt32(playerID)
	w.WriteInt32(hostID)
	w.WritePackedInt32(int32(len(otherIDs)))
	for _, id := range otherIDs {
		w.WritePackedInt32(id)
	}
	w.EndMessage()
}

// WriteAlterGameMessage announces the game's current privacy.
func WriteAlterGameMessage(w *protocol.MessageWriter, clear bool, code int32, isPublic bool) {
	if clear {
		w.Clear(protocol.SendOptionReliable)
	}
	w.StartMessage(byte(protocol.MessageTypeAlterGame))
	w.WriteInt32(code)
	w.WriteUint8(byte(protocol.AlterGameTagChangePrivacy))
	w.WriteBool(isPublic)
	w.EndMessage()
}

// WriteJoinGameMessage is the lightweight join notice broadcast to players
// already in the game.
func WriteJoinGameMessage(w *protocol.MessageWriter, clear bool, code, playerID, hostID int32) {
	if clear {
		w.Clear(protocol.SendOptionReliable)
	}
	w.StartMessage(byte(protocol.MessageTypeJoinGame))
	w.WriteInt32(code)
	w.WriteInt32(playerID)
	w.WriteInt32(hostID)
	w.EndMessage()
}

// WriteRemovePlayerMessage announces a departure. hostID is the post-removal
// host, which is how host migration reaches the remaining clients.
func WriteRemovePlayerMessage(w *protocol.MessageWriter, clear bool, code, playerID, hostID int32, reason protocol.DisconnectReason) {
	if clear {
		w.Clear(protocol.SendOptionReliable)
	}
	w.StartMessage(byte(protocol.MessageTypeRemovePlayer))
	w.WriteInt32(code)
	w.WriteInt32(playerID)
	w.WriteInt32(hostID)
	w.WriteUint8(byte(reason))
	w.EndMessage()
}

// WriteKickPlayerMessage is the kick notice, sent to everyone including the
// kicked player so its client can show the right screen.
func WriteKickPlayerMessage(w *protocol.MessageWriter, clear bool, code, playerID int32, isBan bool) {
	if clear {
		w.Clear(protocol.SendOptionReliable)
	}
	w.StartMessage(byte(protocol.MessageTypeKickPlayer))
	w.WriteInt32(code)
	w.WritePackedInt32(playerID)
	w.WriteBool(isBan)
	w.EndMessage()
}

// WriteWaitForHostMessage parks a late rejoiner in limbo until the host
// admits it.
func WriteWaitForHostMessage(w *protocol.MessageWriter, clear bool, code, playerID int32) {
	if clear {
		w.Clear(protocol.SendOptionReliable)
	}
	w.StartMessage(byte(protocol.MessageTypeWaitForHost))
	w.WriteInt32(code)
	w.WriteInt32(playerID)
	w.EndMessage()
}
