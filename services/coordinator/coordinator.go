package coordinator

/**
 * The coordinator owns every state-mutating command against a game. Each
 * command validates, mutates (rules engine or direct field update),
 * persists and appends its log entry inside the per-number critical
 * section; callers broadcast afterwards using the returned, committed
 * state.
 */

import (
	"encoding/json"
	"errors"
	"fmt"

	models "Mesa/models/postgres"
	"Mesa/services/gamelock"
	"Mesa/services/persistence"
	"Mesa/services/rules"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Coordinator struct {
	store   persistence.Store
	locks   *gamelock.Manager
	engines *rules.Registry
}

func New(store persistence.Store, engines *rules.Registry) *Coordinator {
	return &Coordinator{
		store:   store,
		locks:   gamelock.NewManager(),
		engines: engines,
	}
}

// GetAllGames lists games for the lobby, no lock needed (read-only).
func (c *Coordinator) GetAllGames(filter persistence.GameFilter) ([]*models.Game, error) {
	games, err := c.store.Games().GetAllGames(filter)
	if err != nil {
		return nil, NewPersistenceError(err)
	}
	return games, nil
}

// GetGame returns the hydrated game for projection, no mutation.
func (c *Coordinator) GetGame(number int) (*models.Game, error) {
	game, err := c.store.Games().FindByNumber(number)
	if err != nil {
		return nil, wrapGameLookup(number, err)
	}
	return game, nil
}

// GetUser returns the user row (for update-current-user payloads).
func (c *Coordinator) GetUser(username string) (*models.User, error) {
	user, err := c.store.Users().FindByUsername(username)
	if err != nil {
		return nil, NewPersistenceError(err)
	}
	return user, nil
}

// GetOpenedGame resolves the caller's current opened game, if any.
func (c *Coordinator) GetOpenedGame(username string) (*models.Game, error) {
	user, err := c.store.Users().FindByUsername(username)
	if err != nil {
		return nil, NewPersistenceError(err)
	}
	if user.OpenedGame == nil {
		return nil, nil
	}
	return c.GetGame(*user.OpenedGame)
}

// wrapGameLookup separates a missing game from a storage failure, so an
// outage never masquerades as a state conflict.
func wrapGameLookup(number int, err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return NewStateConflictError("game %d not found", number)
	}
	return NewPersistenceError(err)
}

func appendLog(logs persistence.LogService, game *models.Game, username, logType, format string, args ...interface{}) error {
	_, err := logs.Create(&models.GameLog{
		GameID:   game.ID,
		Username: username,
		Type:     logType,
		Text:     fmt.Sprintf(format, args...),
	})
	if err != nil {
		return NewPersistenceError(err)
	}
	return nil
}

func seatOf(game *models.Game, username string) *models.GamePlayer {
	for _, player := range game.Players {
		if player.Username == username {
			return player
		}
	}
	return nil
}

func watcherIndex(watchers []string, username string) int {
	for i, w := range watchers {
		if w == username {
			return i
		}
	}
	return -1
}

func decodeStrings(blob datatypes.JSON) []string {
	var out []string
	if len(blob) > 0 {
		json.Unmarshal(blob, &out)
	}
	return out
}

func encodeStrings(values []string) datatypes.JSON {
	if values == nil {
		values = []string{}
	}
	data, _ := json.Marshal(values)
	return datatypes.JSON(data)
}

func decodeNumbers(blob datatypes.JSON) []int {
	var out []int
	if len(blob) > 0 {
		json.Unmarshal(blob, &out)
	}
	return out
}

func encodeNumbers(values []int) datatypes.JSON {
	if values == nil {
		values = []int{}
	}
	data, _ := json.Marshal(values)
	return datatypes.JSON(data)
}

func addNumber(blob datatypes.JSON, number int) datatypes.JSON {
	numbers := decodeNumbers(blob)
	for _, n := range numbers {
		if n == number {
			return encodeNumbers(numbers)
		}
	}
	return encodeNumbers(append(numbers, number))
}

func removeNumber(blob datatypes.JSON, number int) datatypes.JSON {
	numbers := decodeNumbers(blob)
	out := numbers[:0]
	for _, n := range numbers {
		if n != number {
			out = append(out, n)
		}
	}
	return encodeNumbers(out)
}
