package domain

import "time"

// ConversationTTL is how long a conversation stays resumable after its last
// activity. Aligned with the server-side lifetime of Copilot conversations.
const ConversationTTL = time.Hour

// Conversation tracks a multi-turn exchange with M365 Copilot.
// All state lives in memory and is lost on restart.
type Conversation struct {
	// ID is the locally generated conversation identifier handed to callers.
	ID string
	// APIConversationID is the identifier issued by the Copilot Chat API.
	APIConversationID string
	// CreatedAt is when the conversation was created.
	CreatedAt time.Time
	// LastActivity is when the conversation was last used. Only moves forward.
	LastActivity time.Time
	// TurnCount is the number of completed turns.
	TurnCount int
	// DisplayName is a free-form label, set once at creation.
	DisplayName string
}

// Expired reports whether the conversation has exceeded its TTL at the
// given instant.
func (c *Conversation) Expired(now time.Time) bool {
	return now.Sub(c.LastActivity) > ConversationTTL
}
