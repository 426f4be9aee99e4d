package game

import (
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/thelostgroup/Impostor/internal/data"
)

// Manager is the top-level registry of active games, keyed by code. Games
// remove themselves on the destroy transition; nothing else deletes entries.
type Manager struct {
	mu    sync.RWMutex
	games map[int32]*Game

	log      *zap.Logger
	msgs     *data.Messages
	maxGames int
}

// NewManager builds a registry. maxGames <= 0 means unlimited.
func NewManager(log *zap.Logger, msgs *data.Messages, maxGames int) *Manager {
	return &Manager{
		games:    make(map[int32]*Game),
		log:      log,
		msgs:     msgs,
		maxGames: maxGames,
	}
}

// Create allocates a game under a fresh code. options is the opaque
// game-options blob from the hosting client, passed through unmodified.
func (m *Manager) Create(options []byte) (*Game, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.maxGames > 0 && len(m.games) >= m.maxGames {
		return nil, fmt.Errorf("game limit reached (%d)", m.maxGames)
	}

	var code int32
	for {
		code = GenerateCode()
		if _, taken := m.games[code]; !taken {
			break
		}
	}

	g := newGame(code, options, m, m.log, m.msgs.GameDestroyed)
	m.games[code] = g
	m.log.Info("game created",
		zap.String("code", g.codeString),
		zap.Int("activeGames", len(m.games)))
	return g, nil
}

// Find returns the game for code, or nil.
func (m *Manager) Find(code int32) *Game {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.games[code]
}

// Count reports the number of active games.
func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.games)
}

// Games returns a snapshot of all active games, for shutdown sweeps.
func (m *Manager) Games() []*Game {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*Game, 0, len(m.games))
	for _, g := range m.games {
		out = append(out, g)
	}
	return out
}

func (m *Manager) removeGame(code int32) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.games, code)
	m.log.Info("game removed",
		zap.String("code", CodeToString(code)),
		zap.Int("activeGames", len(m.games)))
}
