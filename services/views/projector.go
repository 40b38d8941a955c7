package views

/**
 * Turns authoritative game state into per-recipient payloads. Projection
 * is a pure function of (game, viewer): it never mutates the game and the
 * same inputs always produce the same view. Privacy filtering of the
 * opaque game data is delegated to the rules engine.
 */

import (
	"encoding/json"
	"fmt"
	"time"

	game_constants "Mesa/constants/game"
	models "Mesa/models/postgres"
	"Mesa/services/rules"
)

type SeatView struct {
	Username string `json:"username"`
	Position int    `json:"position"`
	Ready    bool   `json:"ready"`
	IsWinner bool   `json:"is_winner"`
}

type LogView struct {
	Type      string    `json:"type"`
	Text      string    `json:"text"`
	Username  string    `json:"username,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// GameView is one recipient's snapshot of a game. GameData already went
// through the rules engine's viewer filter.
type GameView struct {
	Number     int             `json:"number"`
	GameType   string          `json:"game_type"`
	State      string          `json:"state"`
	Owner      string          `json:"owner"`
	PlayersMin int             `json:"players_min"`
	PlayersMax int             `json:"players_max"`
	Players    []SeatView      `json:"players"`
	Watchers   []string        `json:"watchers"`
	Options    json.RawMessage `json:"options,omitempty"`
	GameData   json.RawMessage `json:"game_data,omitempty"`
	// Most recent entries first
	Logs []LogView `json:"logs"`
}

type Projector struct {
	engines *rules.Registry
}

func NewProjector(engines *rules.Registry) *Projector {
	return &Projector{engines: engines}
}

// ForPlayer projects the game for a specific viewer, revealing only that
// viewer's private information.
func (p *Projector) ForPlayer(game *models.Game, viewer string) (*GameView, error) {
	return p.project(game, viewer)
}

// ForAudience projects the game for watchers and the lobby: all private
// information stripped.
func (p *Projector) ForAudience(game *models.Game) (*GameView, error) {
	return p.project(game, "")
}

func (p *Projector) project(game *models.Game, viewer string) (*GameView, error) {
	view := &GameView{
		Number:     game.Number,
		GameType:   game.GameType,
		State:      game.State,
		Owner:      game.OwnerUsername,
		PlayersMin: game.PlayersMin,
		PlayersMax: game.PlayersMax,
		Players:    make([]SeatView, 0, len(game.Players)),
		Watchers:   []string{},
		Options:    json.RawMessage(game.Options),
	}

	for _, player := range game.Players {
		view.Players = append(view.Players, SeatView{
			Username: player.Username,
			Position: player.Position,
			Ready:    player.Ready,
			IsWinner: player.IsWinner,
		})
	}
	if len(game.Watchers) > 0 {
		var watchers []string
		if err := json.Unmarshal(game.Watchers, &watchers); err == nil && watchers != nil {
			view.Watchers = watchers
		}
	}

	if game.State != game_constants.StateOpen && len(game.GameData) > 0 {
		engine, ok := p.engines.Get(game.GameType)
		if !ok {
			return nil, fmt.Errorf("no rules engine for game type %q", game.GameType)
		}
		projected, err := engine.ProjectForViewer(json.RawMessage(game.GameData), viewer)
		if err != nil {
			return nil, fmt.Errorf("error projecting game %d: %v", game.Number, err)
		}
		view.GameData = projected
	}

	limit := len(game.Logs)
	if limit > game_constants.ProjectedLogLimit {
		limit = game_constants.ProjectedLogLimit
	}
	view.Logs = make([]LogView, 0, limit)
	for _, entry := range game.Logs[:limit] {
		view.Logs = append(view.Logs, LogView{
			Type:      entry.Type,
			Text:      entry.Text,
			Username:  entry.Username,
			CreatedAt: entry.CreatedAt,
		})
	}

	return view, nil
}
