package game_constants

import "time"

// Presence debounce windows. Both are deliberately identical: the connect
// guard absorbs double-handshakes from client retries, the disconnect grace
// absorbs page reloads and transient network drops.
const ConnectDebounceWindow = 4 * time.Second
const DisconnectGraceWindow = 4 * time.Second

// Game states
const (
	StateOpen     = "open"
	StateStarted  = "started"
	StateFinished = "finished"
)

// Log entry types
const (
	LogConnect    = "connect"
	LogDisconnect = "disconnect"
	LogJoin       = "join"
	LogOpen       = "open"
	LogWatch      = "watch"
	LogClose      = "close"
	LogLeave      = "leave"
	LogReady      = "ready"
	LogOption     = "option"
	LogStart      = "start"
	LogMove       = "move"
	LogFinish     = "finish"
	LogRemove     = "remove"
	LogRepeat     = "repeat"
)

// Default seat bounds for a new game when the client sends none.
const DefaultPlayersMin = 2
const DefaultPlayersMax = 4

// Hard cap regardless of what the client asks for.
const AbsolutePlayersMax = 8

// How many log entries a projection carries.
const ProjectedLogLimit = 50
