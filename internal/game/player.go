package game

import (
	"sync/atomic"

	"github.com/thelostgroup/Impostor/internal/net"
	"github.com/thelostgroup/Impostor/internal/protocol"
)

// Player is one client's membership handle inside a game. The connection and
// identity belong to the transport layer; the game only references them.
// Limbo is written under the owning game's lock.
type Player struct {
	ID   int32
	Name string
	Conn net.Connection

	Limbo protocol.LimboState

	// game is the back-reference used to route inbound packets. It is the
	// single cross-owned field: set on join, cleared on every removal
	// path, and read by connection goroutines, hence the atomic.
	game atomic.Pointer[Game]
}

// NewPlayer returns a handle for a client about to join a game.
func NewPlayer(id int32, name string, conn net.Connection) *Player {
	return &Player{
		ID:    id,
		Name:  name,
		Conn:  conn,
		Limbo: protocol.LimboStatePreSpawn,
	}
}

// CurrentGame returns the game this player belongs to, or nil once it has
// left by any path.
func (p *Player) CurrentGame() *Game {
	return p.game.Load()
}

func (p *Player) setGame(g *Game) {
	p.game.Store(g)
}
