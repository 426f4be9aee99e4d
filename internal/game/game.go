package game

import (
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/thelostgroup/Impostor/internal/net"
	"github.com/thelostgroup/Impostor/internal/protocol"
)

// MaxPlayers is the hard capacity ceiling per game, host included.
const MaxPlayers = 9

// noHost is the hostID sentinel before the first player ever joins.
const noHost int32 = -1

// sessionRemover is the hook back into the registry that owns this game.
// removeGame is called exactly once, from the destroy transition.
type sessionRemover interface {
	removeGame(code int32)
}

// Game is one lobby/match instance. All handler methods are safe to call
// concurrently from different connection goroutines; one mutex per game
// covers the lifecycle scalars, and membership changes happen under it so a
// hostID read can never race a migration.
type Game struct {
	mu sync.Mutex

	code       int32
	codeString string
	isPublic   bool
	hostID     int32
	state      protocol.GameState
	options    []byte

	players *playerRegistry
	bans    *banList

	manager       sessionRemover
	log           *zap.Logger
	destroyedText string
}

func newGame(code int32, options []byte, manager sessionRemover, log *zap.Logger, destroyedText string) *Game {
	return &Game{
		code:          code,
		codeString:    CodeToString(code),
		hostID:        noHost,
		state:         protocol.GameStateNotStarted,
		options:       options,
		players:       newPlayerRegistry(),
		bans:          newBanList(),
		manager:       manager,
		log:           log,
		destroyedText: destroyedText,
	}
}

func (g *Game) Code() int32        { return g.code }
func (g *Game) CodeString() string { return g.codeString }

// Options returns the opaque configuration blob set at creation.
func (g *Game) Options() []byte { return g.options }

func (g *Game) State() protocol.GameState {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.state
}

func (g *Game) HostID() int32 {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.hostID
}

func (g *Game) IsPublic() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.isPublic
}

func (g *Game) PlayerCount() int {
	return g.players.Count()
}

// GetPlayer looks up a member by id.
func (g *Game) GetPlayer(id int32) *Player {
	return g.players.Get(id)
}

// Players returns a snapshot of the current members, sorted by id.
func (g *Game) Players() []*Player {
	return g.players.Snapshot()
}

// HandleJoinGame admits p into the game, or sends it the appropriate
// rejection notice. The only error it returns is a duplicate player id,
// which indicates a connection-layer bug and must kill the offending
// connection upstream.
func (g *Game) HandleJoinGame(p *Player) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.bans.Contains(p.Conn.RemoteAddr()) {
		g.log.Info("banned address rejected",
			zap.String("code", g.codeString),
			zap.Int32("playerID", p.ID),
			zap.Stringer("addr", p.Conn.RemoteAddr()))
		p.Conn.Disconnect(protocol.DisconnectReasonBanned, "")
		return nil
	}

	switch g.state {
	case protocol.GameStateNotStarted:
		return g.joinNewLocked(p)
	case protocol.GameStateEnded:
		return g.joinNextLocked(p)
	case protocol.GameStateStarted:
		g.log.Info("join rejected, game in progress",
			zap.String("code", g.codeString),
			zap.Int32("playerID", p.ID))
		p.Conn.Disconnect(protocol.DisconnectReasonGameStarted, "")
		return nil
	case protocol.GameStateDestroyed:
		p.Conn.Disconnect(protocol.DisconnectReasonCustom, g.destroyedText)
		return nil
	}
	panic(fmt.Sprintf("game %s: join in unknown state %d", g.codeString, g.state))
}

// joinNewLocked is the fresh-join path (state NotStarted).
func (g *Game) joinNewLocked(p *Player) error {
	p.setGame(g)
	if !g.players.Add(p.ID, p) {
		p.setGame(nil)
		return fmt.Errorf("player %d already in game %s", p.ID, g.codeString)
	}

	if g.hostID == noHost {
		g.hostID = p.ID
	}
	if g.hostID == p.ID {
		p.Limbo = protocol.LimboStateNotLimbo
	}

	w := protocol.NewMessageWriter(protocol.SendOptionReliable)
	WriteJoinedGameMessage(w, true, g.code, p.ID, g.hostID, g.otherIDsLocked(p))
	WriteAlterGameMessage(w, false, g.code, g.isPublic)
	g.deliverLocked(p, w.Bytes())

	notice := protocol.NewMessageWriter(protocol.SendOptionReliable)
	WriteJoinGameMessage(notice, true, g.code, p.ID, g.hostID)
	g.sendToAllExceptLocked(notice.Bytes(), p)

	g.log.Info("player joined",
		zap.String("code", g.codeString),
		zap.Int32("playerID", p.ID),
		zap.String("name", p.Name),
		zap.Bool("isHost", g.hostID == p.ID))
	return nil
}

// joinNextLocked is the rejoin-after-end path (state Ended). Only the former
// host restarts the lobby; everyone else waits on the host.
func (g *Game) joinNextLocked(p *Player) error {
	if p.ID == g.hostID {
		g.state = protocol.GameStateNotStarted
		if err := g.joinNewLocked(p); err != nil {
			return err
		}
		// Resynchronize everyone who rejoined before the host.
		for _, other := range g.players.Snapshot() {
			if other == p {
				continue
			}
			w := protocol.NewMessageWriter(protocol.SendOptionReliable)
			WriteJoinedGameMessage(w, true, g.code, other.ID, g.hostID, g.otherIDsLocked(other))
			WriteAlterGameMessage(w, false, g.code, g.isPublic)
			g.deliverLocked(other, w.Bytes())
		}
		return nil
	}

	if g.players.Count() >= MaxPlayers {
		g.log.Info("join rejected, game full",
			zap.String("code", g.codeString),
			zap.Int32("playerID", p.ID))
		p.Conn.Disconnect(protocol.DisconnectReasonGameFull, "")
		return nil
	}

	p.setGame(g)
	if !g.players.Add(p.ID, p) {
		p.setGame(nil)
		return fmt.Errorf("player %d already in game %s", p.ID, g.codeString)
	}
	p.Limbo = protocol.LimboStateWaitingForHost

	w := protocol.NewMessageWriter(protocol.SendOptionReliable)
	WriteWaitForHostMessage(w, true, g.code, p.ID)
	g.deliverLocked(p, w.Bytes())

	notice := protocol.NewMessageWriter(protocol.SendOptionReliable)
	WriteJoinGameMessage(notice, true, g.code, p.ID, g.hostID)
	g.sendToAllExceptLocked(notice.Bytes(), p)

	g.log.Info("player waiting for host",
		zap.String("code", g.codeString),
		zap.Int32("playerID", p.ID),
		zap.String("name", p.Name))
	return nil
}

// HandleStartGame moves the game to Started and rebroadcasts the start
// message verbatim to all other players.
func (g *Game) HandleStartGame(sender *Player, body []byte) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.state != protocol.GameStateNotStarted {
		g.log.Warn("start ignored in current state",
			zap.String("code", g.codeString),
			zap.Stringer("state", g.state))
		return
	}
	g.state = protocol.GameStateStarted

	w := protocol.NewMessageWriter(protocol.SendOptionReliable)
	w.StartMessage(byte(protocol.MessageTypeStartGame))
	w.WriteInt32(g.code)
	w.WriteBytes(body)
	w.EndMessage()
	g.sendToAllExceptLocked(w.Bytes(), sender)

	g.log.Info("game started", zap.String("code", g.codeString))
}

// HandleEndGame moves the game to Ended, broadcasts the end message, and
// detaches every player. The session itself stays registered so the former
// host can restart it.
func (g *Game) HandleEndGame(body []byte) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.state != protocol.GameStateStarted {
		g.log.Warn("end ignored in current state",
			zap.String("code", g.codeString),
			zap.Stringer("state", g.state))
		return
	}
	g.state = protocol.GameStateEnded

	w := protocol.NewMessageWriter(protocol.SendOptionReliable)
	w.StartMessage(byte(protocol.MessageTypeEndGame))
	w.WriteInt32(g.code)
	w.WriteBytes(body)
	w.EndMessage()
	g.sendToAllExceptLocked(w.Bytes(), nil)

	for _, p := range g.players.Snapshot() {
		g.players.Remove(p.ID)
		p.setGame(nil)
	}

	g.log.Info("game ended", zap.String("code", g.codeString))
}

// HandleAlterGame changes the game's privacy and tells everyone but the
// sender.
func (g *Game) HandleAlterGame(sender *Player, isPublic bool) {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.isPublic = isPublic

	w := protocol.NewMessageWriter(protocol.SendOptionReliable)
	WriteAlterGameMessage(w, true, g.code, isPublic)
	g.sendToAllExceptLocked(w.Bytes(), sender)
}

// HandleKickPlayer kicks (or bans) a member: the kick notice goes to
// everyone including the target, then the regular removal path runs.
func (g *Game) HandleKickPlayer(targetID int32, isBan bool) {
	g.mu.Lock()
	defer g.mu.Unlock()

	target := g.players.Get(targetID)
	if target == nil {
		g.log.Warn("kick of unknown player",
			zap.String("code", g.codeString),
			zap.Int32("playerID", targetID))
		return
	}
	g.log.Info("kicking player",
		zap.String("code", g.codeString),
		zap.Int32("playerID", targetID),
		zap.String("name", target.Name),
		zap.Bool("ban", isBan))

	w := protocol.NewMessageWriter(protocol.SendOptionReliable)
	WriteKickPlayerMessage(w, true, g.code, targetID, isBan)
	g.sendToAllExceptLocked(w.Bytes(), nil)

	reason := protocol.DisconnectReasonKicked
	if isBan {
		g.bans.Add(target.Conn.RemoteAddr())
		reason = protocol.DisconnectReasonBanned
	}
	g.removePlayerLocked(targetID, reason)
}

// HandleRemovePlayer is the plain leave path. Removing an id that is no
// longer present is a no-op: the transport layer may report the same
// disconnect more than once.
func (g *Game) HandleRemovePlayer(id int32, reason protocol.DisconnectReason) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.removePlayerLocked(id, reason)
}

func (g *Game) removePlayerLocked(id int32, reason protocol.DisconnectReason) {
	p := g.players.Remove(id)
	if p == nil {
		g.log.Debug("remove of absent player",
			zap.String("code", g.codeString),
			zap.Int32("playerID", id))
		return
	}
	p.setGame(nil)

	if g.players.Count() == 0 {
		g.state = protocol.GameStateDestroyed
		g.manager.removeGame(g.code)
	} else if g.hostID == id {
		newHost := g.players.Snapshot()[0]
		g.hostID = newHost.ID
		g.log.Info("host migrated",
			zap.String("code", g.codeString),
			zap.Int32("oldHostID", id),
			zap.Int32("newHostID", newHost.ID))
	}

	// With the registry empty this loop has zero recipients; no special
	// case for the destroy transition.
	w := protocol.NewMessageWriter(protocol.SendOptionReliable)
	WriteRemovePlayerMessage(w, true, g.code, id, g.hostID, reason)
	g.sendToAllExceptLocked(w.Bytes(), p)

	g.log.Info("player left",
		zap.String("code", g.codeString),
		zap.Int32("playerID", id),
		zap.Uint8("reason", uint8(reason)),
		zap.Int("remaining", g.players.Count()))
}

// HandleGameData rebroadcasts a gameplay payload to everyone but the sender.
// The session does not interpret it.
func (g *Game) HandleGameData(sender *Player, body []byte) {
	g.mu.Lock()
	defer g.mu.Unlock()

	w := protocol.NewMessageWriter(protocol.SendOptionReliable)
	w.StartMessage(byte(protocol.MessageTypeGameData))
	w.WriteInt32(g.code)
	w.WriteBytes(body)
	w.EndMessage()
	g.sendToAllExceptLocked(w.Bytes(), sender)
}

// HandleGameDataTo forwards a gameplay payload to a single member.
func (g *Game) HandleGameDataTo(targetID int32, body []byte) {
	g.mu.Lock()
	defer g.mu.Unlock()

	w := protocol.NewMessageWriter(protocol.SendOptionReliable)
	w.StartMessage(byte(protocol.MessageTypeGameData))
	w.WriteInt32(g.code)
	w.WriteBytes(body)
	w.EndMessage()
	g.sendToLocked(targetID, w.Bytes())
}

// SendToAllExcept delivers frame to every connected member except excluded
// (identity comparison; nil excludes nobody). Best effort per recipient.
func (g *Game) SendToAllExcept(frame []byte, excluded *Player) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.sendToAllExceptLocked(frame, excluded)
}

// SendTo delivers frame to one member by id; logs and no-ops if the id is
// unknown or the connection is stale.
func (g *Game) SendTo(frame []byte, id int32) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.sendToLocked(id, frame)
}

func (g *Game) sendToAllExceptLocked(frame []byte, excluded *Player) {
	for _, p := range g.players.Snapshot() {
		if p == excluded {
			continue
		}
		g.deliverLocked(p, frame)
	}
}

func (g *Game) sendToLocked(id int32, frame []byte) {
	p := g.players.Get(id)
	if p == nil {
		g.log.Warn("send to unknown player",
			zap.String("code", g.codeString),
			zap.Int32("playerID", id))
		return
	}
	g.deliverLocked(p, frame)
}

func (g *Game) deliverLocked(p *Player, frame []byte) {
	if p.Conn.State() != net.StateConnected {
		g.log.Warn("skipping stale connection",
			zap.String("code", g.codeString),
			zap.Int32("playerID", p.ID),
			zap.Stringer("connState", p.Conn.State()))
		return
	}
	p.Conn.Send(frame)
}

// otherIDsLocked lists every member id except p, in ascending order.
func (g *Game) otherIDsLocked(p *Player) []int32 {
	snapshot := g.players.Snapshot()
	ids := make([]int32, 0, len(snapshot))
	for _, other := range snapshot {
		if other == p {
			continue
		}
		ids = append(ids, other.ID)
	}
	return ids
}
