package game

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/thelostgroup/Impostor/internal/data"
	"github.com/thelostgroup/Impostor/internal/protocol"
)

func newTestManager(t *testing.T, maxGames int) *Manager {
	return NewManager(zaptest.NewLogger(t), data.DefaultMessages(), maxGames)
}

func TestManagerCreateAndFind(t *testing.T) {
	m := newTestManager(t, 0)

	opts := []byte{0x2A}
	g, err := m.Create(opts)
	require.NoError(t, err)
	require.NotNil(t, g)

	assert.Equal(t, opts, g.Options())
	assert.Equal(t, protocol.GameStateNotStarted, g.State())
	assert.Less(t, g.Code(), int32(-1000))
	assert.Same(t, g, m.Find(g.Code()))
	assert.Equal(t, 1, m.Count())
}

func TestManagerFindUnknownCode(t *testing.T) {
	m := newTestManager(t, 0)
	assert.Nil(t, m.Find(-1234567))
}

func TestManagerGameLimit(t *testing.T) {
	m := newTestManager(t, 2)

	_, err := m.Create(nil)
	require.NoError(t, err)
	_, err = m.Create(nil)
	require.NoError(t, err)

	_, err = m.Create(nil)
	assert.ErrorContains(t, err, "game limit reached")
	assert.Equal(t, 2, m.Count())
}

func TestManagerCodesAreUnique(t *testing.T) {
	m := newTestManager(t, 0)

	seen := make(map[int32]bool)
	for i := 0; i < 50; i++ {
		g, err := m.Create(nil)
		require.NoError(t, err)
		assert.False(t, seen[g.Code()])
		seen[g.Code()] = true
	}
}

func TestManagerRemovesDestroyedGame(t *testing.T) {
	m := newTestManager(t, 0)

	g, err := m.Create(nil)
	require.NoError(t, err)

	p := NewPlayer(1, "solo", newFakeConn(1))
	require.NoError(t, g.HandleJoinGame(p))
	g.HandleRemovePlayer(1, protocol.DisconnectReasonExitGame)

	assert.Nil(t, m.Find(g.Code()))
	assert.Zero(t, m.Count())
	assert.Empty(t, m.Games())
}

func TestManagerEndedGameStaysRegistered(t *testing.T) {
	m := newTestManager(t, 0)

	g, err := m.Create(nil)
	require.NoError(t, err)

	host := NewPlayer(1, "host", newFakeConn(1))
	require.NoError(t, g.HandleJoinGame(host))
	g.HandleStartGame(host, nil)
	g.HandleEndGame(nil)

	assert.Equal(t, protocol.GameStateEnded, g.State())
	assert.Same(t, g, m.Find(g.Code()))
}
