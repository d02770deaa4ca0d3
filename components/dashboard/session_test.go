package dashboard

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionStoreIsolatesEngines(t *testing.T) {
	store := NewSessionStore(time.Minute)
	h, c := testHierarchy(t), testCatalog(t)
	repo := NewInMemoryRepository(testRecords())

	a := store.Open(ViewerContext{UserID: "a"}, h, c, repo)
	b := store.Open(ViewerContext{UserID: "b"}, h, c, repo)
	require.NotEqual(t, a.ID, b.ID)

	a.Engine.SetRegion("ภาค 1")
	assert.True(t, b.Engine.State().IsDefault())
	assert.Equal(t, 2, store.Len())

	got, ok := store.Get(a.ID)
	require.True(t, ok)
	assert.Same(t, a, got)

	assert.True(t, store.Close(a.ID))
	assert.False(t, store.Close(a.ID))
	_, ok = store.Get(a.ID)
	assert.False(t, ok)
}

func TestSessionStoreSweepDropsIdleSessions(t *testing.T) {
	store := NewSessionStore(10 * time.Minute)
	now := time.Date(2025, 1, 1, 9, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return now }
	h, c := testHierarchy(t), testCatalog(t)
	repo := NewInMemoryRepository(nil)

	idle := store.Open(ViewerContext{}, h, c, repo)
	active := store.Open(ViewerContext{}, h, c, repo)

	now = now.Add(8 * time.Minute)
	_, ok := store.Get(active.ID)
	require.True(t, ok)
	assert.Equal(t, now, active.LastSeen())

	now = now.Add(5 * time.Minute)
	assert.Equal(t, 1, store.Sweep())
	_, ok = store.Get(idle.ID)
	assert.False(t, ok)
	_, ok = store.Get(active.ID)
	assert.True(t, ok)
}

func TestSessionStoreWithoutTTLNeverSweeps(t *testing.T) {
	store := NewSessionStore(0)
	store.Open(ViewerContext{}, testHierarchy(t), testCatalog(t), NewInMemoryRepository(nil))
	assert.Zero(t, store.Sweep())
	assert.Equal(t, 1, store.Len())
}
