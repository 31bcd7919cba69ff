package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/copilot-mcp/internal/core/domain"
)

// fakeClock is a manually advanced clock for store tests.
type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time          { return c.now }
func (c *fakeClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

func newTestStore() (*ConversationStore, *fakeClock) {
	clock := &fakeClock{now: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)}
	return NewConversationStoreWithClock(clock.Now), clock
}

func TestConversationStore_CreateAndGet(t *testing.T) {
	store, _ := newTestStore()

	conv := store.Create("api-1", "what is our pto policy")
	require.NotEmpty(t, conv.ID)
	assert.Equal(t, "api-1", conv.APIConversationID)
	assert.Equal(t, 0, conv.TurnCount)

	got, err := store.Get(conv.ID)
	require.NoError(t, err)
	assert.Same(t, conv, got)
}

func TestConversationStore_GetUnknownID(t *testing.T) {
	store, _ := newTestStore()

	_, err := store.Get("no-such-id")
	assert.ErrorIs(t, err, domain.ErrConversationNotFound)
}

func TestConversationStore_UniqueIDs(t *testing.T) {
	store, _ := newTestStore()

	seen := make(map[string]bool)
	for i := 0; i < 10000; i++ {
		conv := store.Create("api", "")
		require.False(t, seen[conv.ID], "duplicate conversation ID %s", conv.ID)
		seen[conv.ID] = true
	}
}

func TestConversationStore_ExpiryBoundary(t *testing.T) {
	store, clock := newTestStore()
	conv := store.Create("api-1", "")

	// Exactly at the TTL the session is still alive.
	clock.Advance(domain.ConversationTTL)
	_, err := store.Get(conv.ID)
	require.NoError(t, err)

	// One second past, it is gone.
	clock.Advance(time.Second)
	_, err = store.Get(conv.ID)
	assert.ErrorIs(t, err, domain.ErrConversationNotFound)
	assert.Equal(t, 0, store.Count())
}

func TestConversationStore_TouchExtendsLife(t *testing.T) {
	store, clock := newTestStore()
	conv := store.Create("api-1", "")

	clock.Advance(40 * time.Minute)
	assert.True(t, store.Touch(conv.ID))
	clock.Advance(40 * time.Minute)

	// 80 minutes after creation but only 40 since the touch.
	_, err := store.Get(conv.ID)
	assert.NoError(t, err)
}

func TestConversationStore_TouchAfterCreate(t *testing.T) {
	store, _ := newTestStore()
	conv := store.Create("api-1", "test")

	assert.True(t, store.Touch(conv.ID))
}

func TestConversationStore_TouchExpiredOrUnknown(t *testing.T) {
	store, clock := newTestStore()
	conv := store.Create("api-1", "")

	clock.Advance(domain.ConversationTTL + time.Second)
	assert.False(t, store.Touch(conv.ID), "expired session must not be revived")
	assert.False(t, store.Touch("no-such-id"))
}

func TestConversationStore_IncrementTurn(t *testing.T) {
	store, _ := newTestStore()
	conv := store.Create("api-1", "")

	assert.Equal(t, 1, store.IncrementTurn(conv.ID))
	assert.Equal(t, 2, store.IncrementTurn(conv.ID))
	assert.Equal(t, 3, store.IncrementTurn(conv.ID))
	assert.Equal(t, 3, conv.TurnCount)
}

func TestConversationStore_IncrementTurnRefreshesActivity(t *testing.T) {
	store, clock := newTestStore()
	conv := store.Create("api-1", "")

	clock.Advance(50 * time.Minute)
	store.IncrementTurn(conv.ID)
	clock.Advance(50 * time.Minute)

	_, err := store.Get(conv.ID)
	assert.NoError(t, err)
}

func TestConversationStore_IncrementTurnUnknownID(t *testing.T) {
	store, _ := newTestStore()
	assert.Equal(t, 0, store.IncrementTurn("gone"))
}

func TestConversationStore_Delete(t *testing.T) {
	store, _ := newTestStore()
	conv := store.Create("api-1", "")

	assert.True(t, store.Delete(conv.ID))
	_, err := store.Get(conv.ID)
	assert.ErrorIs(t, err, domain.ErrConversationNotFound)

	// Deleting again is a no-op.
	assert.False(t, store.Delete(conv.ID))
}

func TestConversationStore_Sweep(t *testing.T) {
	store, clock := newTestStore()

	old1 := store.Create("api-1", "")
	old2 := store.Create("api-2", "")
	clock.Advance(domain.ConversationTTL + time.Minute)
	fresh := store.Create("api-3", "")

	assert.Equal(t, 2, store.Sweep())
	assert.Equal(t, 1, store.Count())

	_, err := store.Get(fresh.ID)
	assert.NoError(t, err)
	_, err = store.Get(old1.ID)
	assert.ErrorIs(t, err, domain.ErrConversationNotFound)
	_, err = store.Get(old2.ID)
	assert.ErrorIs(t, err, domain.ErrConversationNotFound)
}

func TestConversationStore_ListActive(t *testing.T) {
	store, clock := newTestStore()

	store.Create("api-1", "")
	clock.Advance(domain.ConversationTTL + time.Minute)
	fresh := store.Create("api-2", "")

	active := store.ListActive()
	require.Len(t, active, 1)
	assert.Equal(t, fresh.ID, active[0].ID)

	// ListActive does not evict; Count still sees the expired session.
	assert.Equal(t, 2, store.Count())
}
