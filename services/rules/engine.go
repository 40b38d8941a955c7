package rules

/**
 * Pluggable game-type rules. The coordinator treats game state as an
 * opaque blob; an Engine is the only code that interprets it. Engines are
 * pure: they never mutate the input blob and the same inputs always
 * produce the same outputs.
 */

import (
	"encoding/json"
	"fmt"
	"sync"
)

// RuleError marks a move rejected by the game rules (wrong turn, illegal
// card, ...). The coordinator reports it to the caller as a state conflict.
type RuleError struct {
	Message string
}

func (e *RuleError) Error() string {
	return e.Message
}

func NewRuleError(format string, args ...interface{}) *RuleError {
	return &RuleError{Message: fmt.Sprintf(format, args...)}
}

// MoveResult is the outcome of a successfully applied move.
type MoveResult struct {
	Data     json.RawMessage
	Finished bool
	Winner   string
}

type Engine interface {
	// InitialData deals the opening state for the seated players.
	InitialData(players []string, options json.RawMessage) (json.RawMessage, error)
	// ApplyMove validates and applies one move for player.
	ApplyMove(data json.RawMessage, player string, move json.RawMessage) (*MoveResult, error)
	// ProjectForViewer strips information the viewer may not see. An empty
	// viewer produces the audience projection (all hands hidden).
	ProjectForViewer(data json.RawMessage, viewer string) (json.RawMessage, error)
}

// Registry maps game-type tags to their engines.
type Registry struct {
	mu      sync.RWMutex
	engines map[string]Engine
}

func NewRegistry() *Registry {
	return &Registry{engines: make(map[string]Engine)}
}

func (r *Registry) Register(gameType string, engine Engine) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.engines[gameType] = engine
}

func (r *Registry) Get(gameType string) (Engine, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	engine, ok := r.engines[gameType]
	return engine, ok
}

// DefaultRegistry returns a registry with every built-in game type.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	r.Register(GameTypeBriscola, NewBriscolaEngine())
	return r
}
