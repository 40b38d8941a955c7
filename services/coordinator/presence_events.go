package coordinator

import (
	game_constants "Mesa/constants/game"
	models "Mesa/models/postgres"
)

// CommitConnect records a genuine (debounced) connect for username against
// their opened game. Returns the game so the caller can room-join and
// broadcast, or nil when the user has no opened game: then there is no
// room to join and no log to write.
func (c *Coordinator) CommitConnect(username string) (*models.Game, error) {
	return c.commitPresence(username, game_constants.LogConnect, "%s connected")
}

// CommitDisconnect records an elapsed, unchallenged disconnect.
func (c *Coordinator) CommitDisconnect(username string) (*models.Game, error) {
	return c.commitPresence(username, game_constants.LogDisconnect, "%s disconnected")
}

func (c *Coordinator) commitPresence(username, logType, format string) (*models.Game, error) {
	user, err := c.store.Users().FindByUsername(username)
	if err != nil {
		return nil, NewPersistenceError(err)
	}
	if user.OpenedGame == nil {
		return nil, nil
	}

	number := *user.OpenedGame
	var game *models.Game
	err = c.locks.WithGame(number, func() error {
		g, err := c.store.Games().FindByNumber(number)
		if err != nil {
			return wrapGameLookup(number, err)
		}
		if err := appendLog(c.store.Logs(), g, username, logType, format, username); err != nil {
			return err
		}
		game = g
		return nil
	})
	if err != nil {
		return nil, err
	}
	return game, nil
}
