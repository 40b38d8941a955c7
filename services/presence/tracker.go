package presence

/**
 * Debounces connect/disconnect flicker. Two independent timer families:
 * connect guards keyed by the raw handshake token (absorb double
 * handshakes from client retries) and disconnect grace timers keyed by
 * username (absorb page reloads and transient drops). Entries live in
 * tracker-owned maps with an explicit lifecycle: inserted on schedule,
 * removed on fire or cancellation.
 */

import (
	"log"
	"sync"
	"time"
)

// ConnectDecision tells the connection layer what a new transport open
// actually means.
type ConnectDecision int

const (
	// A genuine connect: record it, join the opened game's room, broadcast.
	ConnectCommitted ConnectDecision = iota
	// Same token re-handshaked inside the guard window: ignore entirely.
	ConnectIgnoredDuplicate
	// Arrived before a pending disconnect elapsed: silent reconnect,
	// no log entry and no broadcast.
	ConnectCancelledDisconnect
)

type pendingDisconnect struct {
	timer *time.Timer
	gen   uint64
}

type Tracker struct {
	mu            sync.Mutex
	connectGuards map[string]uint64
	disconnects   map[string]*pendingDisconnect
	gen           uint64

	connectWindow   time.Duration
	disconnectGrace time.Duration

	// Invoked outside the tracker lock when a disconnect grace window
	// elapses unchallenged. Failures inside are the callee's to log; the
	// tracker never retries.
	onDisconnect func(username string)
}

func NewTracker(connectWindow, disconnectGrace time.Duration, onDisconnect func(username string)) *Tracker {
	return &Tracker{
		connectGuards:   make(map[string]uint64),
		disconnects:     make(map[string]*pendingDisconnect),
		connectWindow:   connectWindow,
		disconnectGrace: disconnectGrace,
		onDisconnect:    onDisconnect,
	}
}

// TrackConnect classifies a fresh transport open for (token, username).
func (t *Tracker) TrackConnect(token, username string) ConnectDecision {
	t.mu.Lock()
	defer t.mu.Unlock()

	if _, guarded := t.connectGuards[token]; guarded {
		log.Printf("[PRESENCE] Duplicate handshake for token ignored (user %s)", username)
		return ConnectIgnoredDuplicate
	}

	t.gen++
	gen := t.gen
	t.connectGuards[token] = gen
	time.AfterFunc(t.connectWindow, func() {
		t.expireConnectGuard(token, gen)
	})

	if pending, ok := t.disconnects[username]; ok {
		pending.timer.Stop()
		delete(t.disconnects, username)
		log.Printf("[PRESENCE] Reconnect within grace window for %s, disconnect cancelled", username)
		return ConnectCancelledDisconnect
	}

	return ConnectCommitted
}

// TrackDisconnect schedules the disconnect commit for username after the
// grace window. A second transport close before the first commits simply
// rearms the window.
func (t *Tracker) TrackDisconnect(username string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if pending, ok := t.disconnects[username]; ok {
		pending.timer.Stop()
	}

	t.gen++
	entry := &pendingDisconnect{gen: t.gen}
	entry.timer = time.AfterFunc(t.disconnectGrace, func() {
		t.fireDisconnect(username, entry.gen)
	})
	t.disconnects[username] = entry
	log.Printf("[PRESENCE] Disconnect grace window started for %s", username)
}

// PendingDisconnect reports whether username has an uncommitted disconnect.
func (t *Tracker) PendingDisconnect(username string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	_, ok := t.disconnects[username]
	return ok
}

func (t *Tracker) expireConnectGuard(token string, gen uint64) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if current, ok := t.connectGuards[token]; ok && current == gen {
		delete(t.connectGuards, token)
	}
}

func (t *Tracker) fireDisconnect(username string, gen uint64) {
	t.mu.Lock()
	entry, ok := t.disconnects[username]
	if !ok || entry.gen != gen {
		// Cancelled (or replaced) after this timer already fired; a commit
		// here would be a commit-after-cancel.
		t.mu.Unlock()
		return
	}
	delete(t.disconnects, username)
	t.mu.Unlock()

	log.Printf("[PRESENCE] Disconnect grace elapsed for %s, committing", username)
	t.onDisconnect(username)
}
