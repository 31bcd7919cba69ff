package services

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/custodia-labs/copilot-mcp/internal/core/domain"
	"github.com/custodia-labs/copilot-mcp/internal/logger"
)

// ConversationStore keeps active conversation sessions in memory. Sessions
// expire one hour after their last activity; expired sessions are evicted
// lazily on lookup and eagerly by Sweep. State is lost on restart, callers
// recover by starting a fresh conversation.
type ConversationStore struct {
	mu            sync.Mutex
	conversations map[string]*domain.Conversation
	now           func() time.Time
}

// NewConversationStore creates an empty store using the wall clock.
func NewConversationStore() *ConversationStore {
	return NewConversationStoreWithClock(time.Now)
}

// NewConversationStoreWithClock creates a store with an injected clock.
func NewConversationStoreWithClock(now func() time.Time) *ConversationStore {
	return &ConversationStore{
		conversations: make(map[string]*domain.Conversation),
		now:           now,
	}
}

// Create registers a new session around the given upstream conversation ID
// and returns it. The local ID is a fresh UUID.
func (s *ConversationStore) Create(apiConversationID, displayName string) *domain.Conversation {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	conv := &domain.Conversation{
		ID:                uuid.NewString(),
		APIConversationID: apiConversationID,
		CreatedAt:         now,
		LastActivity:      now,
		DisplayName:       displayName,
	}
	s.conversations[conv.ID] = conv

	logger.Debug("store: created conversation %s", conv.ID)
	return conv
}

// Get returns the session with the given ID, or ErrConversationNotFound if
// it does not exist or has expired. Expired sessions are removed on the
// spot.
func (s *ConversationStore) Get(id string) (*domain.Conversation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	conv, ok := s.conversations[id]
	if !ok {
		return nil, domain.ErrConversationNotFound
	}
	if conv.Expired(s.now()) {
		delete(s.conversations, id)
		logger.Debug("store: evicted expired conversation %s", id)
		return nil, domain.ErrConversationNotFound
	}

	return conv, nil
}

// Touch refreshes the session's last-activity time, extending its life.
// Returns whether it did so; expired or unknown sessions are not revived.
func (s *ConversationStore) Touch(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	conv, ok := s.conversations[id]
	if !ok || conv.Expired(s.now()) {
		return false
	}
	conv.LastActivity = s.now()
	return true
}

// IncrementTurn bumps the session's turn counter and refreshes its
// last-activity time. Returns the new turn count, or 0 if the session is
// gone.
func (s *ConversationStore) IncrementTurn(id string) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	conv, ok := s.conversations[id]
	if !ok {
		return 0
	}
	conv.TurnCount++
	conv.LastActivity = s.now()
	return conv.TurnCount
}

// Delete removes a session unconditionally. Returns whether anything was
// removed.
func (s *ConversationStore) Delete(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, ok := s.conversations[id]
	delete(s.conversations, id)
	return ok
}

// Sweep evicts every expired session and returns how many were removed.
func (s *ConversationStore) Sweep() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	removed := 0
	for id, conv := range s.conversations {
		if conv.Expired(now) {
			delete(s.conversations, id)
			removed++
		}
	}

	if removed > 0 {
		logger.Debug("store: swept %d expired conversations", removed)
	}
	return removed
}

// Count returns the number of sessions currently held, expired or not.
func (s *ConversationStore) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.conversations)
}

// ListActive returns all unexpired sessions.
func (s *ConversationStore) ListActive() []*domain.Conversation {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	active := make([]*domain.Conversation, 0, len(s.conversations))
	for _, conv := range s.conversations {
		if !conv.Expired(now) {
			active = append(active, conv)
		}
	}
	return active
}
