package game

import (
	"net/netip"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistryAddRemove(t *testing.T) {
	r := newPlayerRegistry()
	p := NewPlayer(1, "one", newFakeConn(1))

	assert.True(t, r.Add(1, p))
	assert.False(t, r.Add(1, p))
	assert.Equal(t, 1, r.Count())
	assert.Same(t, p, r.Get(1))

	assert.Same(t, p, r.Remove(1))
	assert.Nil(t, r.Remove(1))
	assert.Zero(t, r.Count())
	assert.Nil(t, r.Get(1))
}

func TestRegistrySnapshotSorted(t *testing.T) {
	r := newPlayerRegistry()
	for _, id := range []int32{30, 10, 20} {
		require.True(t, r.Add(id, NewPlayer(id, "p", newFakeConn(id))))
	}

	snapshot := r.Snapshot()
	require.Len(t, snapshot, 3)
	assert.Equal(t, int32(10), snapshot[0].ID)
	assert.Equal(t, int32(20), snapshot[1].ID)
	assert.Equal(t, int32(30), snapshot[2].ID)
}

func TestRegistryConcurrentAccess(t *testing.T) {
	r := newPlayerRegistry()

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func(id int32) {
			defer wg.Done()
			r.Add(id, NewPlayer(id, "p", newFakeConn(id)))
			r.Snapshot()
			r.Get(id)
			r.Remove(id)
		}(int32(i))
	}
	wg.Wait()

	assert.Zero(t, r.Count())
}

func TestBanList(t *testing.T) {
	b := newBanList()
	a1 := netip.AddrFrom4([4]byte{192, 168, 1, 5})
	a2 := netip.AddrFrom4([4]byte{192, 168, 1, 6})

	assert.False(t, b.Contains(a1))
	b.Add(a1)
	assert.True(t, b.Contains(a1))
	assert.False(t, b.Contains(a2))
}
