package socket_io

import (
	"testing"
	"time"

	"Mesa/services/presence"

	"github.com/stretchr/testify/assert"
)

func TestClassifyHandshakeDropsDuplicate(t *testing.T) {
	tracker := presence.NewTracker(50*time.Millisecond, 50*time.Millisecond, func(string) {})

	decision, attach := classifyHandshake(tracker, "token-1", "alice")
	assert.Equal(t, presence.ConnectCommitted, decision)
	assert.True(t, attach)

	// A second handshake with the same token inside the connect window
	// never attaches: no connection map entry, no event handlers.
	decision, attach = classifyHandshake(tracker, "token-1", "alice")
	assert.Equal(t, presence.ConnectIgnoredDuplicate, decision)
	assert.False(t, attach)
}

func TestClassifyHandshakeAnonymousBypassesTracker(t *testing.T) {
	tracker := presence.NewTracker(50*time.Millisecond, 50*time.Millisecond, func(string) {})

	decision, attach := classifyHandshake(tracker, "", "")
	assert.Equal(t, presence.ConnectCommitted, decision)
	assert.True(t, attach)

	// The anonymous handshake armed no connect guard.
	assert.Equal(t, presence.ConnectCommitted, tracker.TrackConnect("token-2", "alice"))
}
