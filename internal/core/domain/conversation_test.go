package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestConversation_Expired(t *testing.T) {
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	conv := &Conversation{LastActivity: base}

	assert.False(t, conv.Expired(base))
	assert.False(t, conv.Expired(base.Add(ConversationTTL)))
	assert.True(t, conv.Expired(base.Add(ConversationTTL+time.Second)))
}
