package coordinator

import (
	"encoding/json"
	"log"

	game_constants "Mesa/constants/game"
	models "Mesa/models/postgres"
	"Mesa/services/persistence"

	"gorm.io/datatypes"
)

// NewGame creates an open game owned by username and seats them first.
func (c *Coordinator) NewGame(username, gameType string, playersMin, playersMax int,
	options json.RawMessage) (*models.Game, error) {

	if username == "" {
		return nil, NewAuthorizationError("you must be signed in to create a game")
	}
	if _, ok := c.engines.Get(gameType); !ok {
		return nil, NewValidationError("unknown game type %q", gameType)
	}
	if playersMin == 0 {
		playersMin = game_constants.DefaultPlayersMin
	}
	if playersMax == 0 {
		playersMax = game_constants.DefaultPlayersMax
	}
	if playersMin < 2 || playersMax > game_constants.AbsolutePlayersMax || playersMin > playersMax {
		return nil, NewValidationError("invalid seat bounds %d..%d", playersMin, playersMax)
	}
	if len(options) == 0 {
		options = json.RawMessage(`{}`)
	}

	game := &models.Game{
		GameType:      gameType,
		OwnerUsername: username,
		PlayersMin:    playersMin,
		PlayersMax:    playersMax,
		Options:       datatypes.JSON(options),
		State:         game_constants.StateOpen,
	}
	err := c.store.Atomically(func(tx persistence.Store) error {
		if err := tx.Games().Create(game); err != nil {
			return NewPersistenceError(err)
		}
		if err := tx.Games().AddPlayer(&models.GamePlayer{
			GameID:   game.ID,
			Username: username,
			Position: 0,
		}); err != nil {
			return NewPersistenceError(err)
		}
		user, err := tx.Users().FindByUsername(username)
		if err != nil {
			return NewPersistenceError(err)
		}
		if err := tx.Users().Update(username, map[string]interface{}{
			"current_games": addNumber(user.CurrentGames, game.Number),
			"opened_game":   game.Number,
		}); err != nil {
			return NewPersistenceError(err)
		}
		return appendLog(tx.Logs(), game, username, game_constants.LogJoin, "%s created the game", username)
	})
	if err != nil {
		return nil, err
	}
	return c.GetGame(game.Number)
}

// JoinGame seats username in an open game with a free seat.
func (c *Coordinator) JoinGame(number int, username string) (*models.Game, error) {
	if username == "" {
		return nil, NewAuthorizationError("you must be signed in to join a game")
	}

	var joined *models.Game
	err := c.locks.WithGame(number, func() error {
		game, err := c.store.Games().FindByNumber(number)
		if err != nil {
			return wrapGameLookup(number, err)
		}
		if game.State != game_constants.StateOpen {
			return NewStateConflictError("game %d is not open for joining", number)
		}
		if seatOf(game, username) != nil {
			return NewStateConflictError("you are already seated in game %d", number)
		}
		if len(game.Players) >= game.PlayersMax {
			return NewStateConflictError("game %d is full", number)
		}

		if err := c.store.Atomically(func(tx persistence.Store) error {
			if err := tx.Games().AddPlayer(&models.GamePlayer{
				GameID:   game.ID,
				Username: username,
				Position: len(game.Players),
			}); err != nil {
				return NewPersistenceError(err)
			}
			user, err := tx.Users().FindByUsername(username)
			if err != nil {
				return NewPersistenceError(err)
			}
			if err := tx.Users().Update(username, map[string]interface{}{
				"current_games": addNumber(user.CurrentGames, number),
			}); err != nil {
				return NewPersistenceError(err)
			}
			return appendLog(tx.Logs(), game, username, game_constants.LogJoin, "%s joined the game", username)
		}); err != nil {
			return err
		}
		joined, err = c.GetGame(number)
		return err
	})
	if err != nil {
		return nil, err
	}
	return joined, nil
}

// OpenGame points the caller's room-join target at this game.
func (c *Coordinator) OpenGame(number int, username string) (*models.Game, error) {
	if username == "" {
		return nil, NewAuthorizationError("you must be signed in to open a game")
	}

	var opened *models.Game
	err := c.locks.WithGame(number, func() error {
		game, err := c.store.Games().FindByNumber(number)
		if err != nil {
			return wrapGameLookup(number, err)
		}
		if seatOf(game, username) == nil {
			return NewAuthorizationError("you are not a player of game %d", number)
		}
		if err := c.store.Atomically(func(tx persistence.Store) error {
			if err := tx.Users().Update(username, map[string]interface{}{
				"opened_game": number,
			}); err != nil {
				return NewPersistenceError(err)
			}
			return appendLog(tx.Logs(), game, username, game_constants.LogOpen, "%s opened the game", username)
		}); err != nil {
			return err
		}
		opened = game
		return nil
	})
	if err != nil {
		return nil, err
	}
	return opened, nil
}

// WatchGame registers username as an observer of the game.
func (c *Coordinator) WatchGame(number int, username string) (*models.Game, error) {
	if username == "" {
		return nil, NewAuthorizationError("you must be signed in to watch a game")
	}

	var watched *models.Game
	err := c.locks.WithGame(number, func() error {
		game, err := c.store.Games().FindByNumber(number)
		if err != nil {
			return wrapGameLookup(number, err)
		}

		if err := c.store.Atomically(func(tx persistence.Store) error {
			watchers := decodeStrings(game.Watchers)
			if watcherIndex(watchers, username) < 0 {
				game.Watchers = encodeStrings(append(watchers, username))
				if err := tx.Games().Save(game); err != nil {
					return NewPersistenceError(err)
				}
			}
			if err := tx.Users().Update(username, map[string]interface{}{
				"opened_game_watcher": number,
			}); err != nil {
				return NewPersistenceError(err)
			}
			return appendLog(tx.Logs(), game, username, game_constants.LogWatch, "%s is watching", username)
		}); err != nil {
			return err
		}
		watched = game
		return nil
	})
	if err != nil {
		return nil, err
	}
	return watched, nil
}

// CloseGame clears the caller's opened-game/watcher targets for number.
// The caller stays seated; this only stops the room targeting.
func (c *Coordinator) CloseGame(number int, username string) (*models.Game, error) {
	if username == "" {
		return nil, NewAuthorizationError("you must be signed in")
	}

	var closed *models.Game
	err := c.locks.WithGame(number, func() error {
		game, err := c.store.Games().FindByNumber(number)
		if err != nil {
			return wrapGameLookup(number, err)
		}

		if err := c.store.Atomically(func(tx persistence.Store) error {
			watchers := decodeStrings(game.Watchers)
			if idx := watcherIndex(watchers, username); idx >= 0 {
				game.Watchers = encodeStrings(append(watchers[:idx], watchers[idx+1:]...))
				if err := tx.Games().Save(game); err != nil {
					return NewPersistenceError(err)
				}
			}

			user, err := tx.Users().FindByUsername(username)
			if err != nil {
				return NewPersistenceError(err)
			}
			fields := map[string]interface{}{}
			if user.OpenedGame != nil && *user.OpenedGame == number {
				fields["opened_game"] = nil
			}
			if user.OpenedGameWatcher != nil && *user.OpenedGameWatcher == number {
				fields["opened_game_watcher"] = nil
			}
			if len(fields) > 0 {
				if err := tx.Users().Update(username, fields); err != nil {
					return NewPersistenceError(err)
				}
			}
			return appendLog(tx.Logs(), game, username, game_constants.LogClose, "%s closed the game", username)
		}); err != nil {
			return err
		}
		closed = game
		return nil
	})
	if err != nil {
		return nil, err
	}
	return closed, nil
}

// LeaveGame removes username's seat from an open game. The roster of a
// started game is fixed; leaving it is a conflict.
func (c *Coordinator) LeaveGame(number int, username string) (*models.Game, error) {
	if username == "" {
		return nil, NewAuthorizationError("you must be signed in")
	}

	var left *models.Game
	err := c.locks.WithGame(number, func() error {
		game, err := c.store.Games().FindByNumber(number)
		if err != nil {
			return wrapGameLookup(number, err)
		}
		if game.State == game_constants.StateStarted {
			return NewStateConflictError("cannot leave a started game")
		}
		if seatOf(game, username) == nil {
			return NewAuthorizationError("you are not a player of game %d", number)
		}

		var deleted bool
		if err := c.store.Atomically(func(tx persistence.Store) error {
			if err := tx.Games().RemovePlayer(game.ID, username); err != nil {
				return NewPersistenceError(err)
			}
			// Compact the remaining positions so join order stays dense.
			position := 0
			for _, player := range game.Players {
				if player.Username == username {
					continue
				}
				if player.Position != position {
					player.Position = position
					if err := tx.Games().SavePlayer(player); err != nil {
						return NewPersistenceError(err)
					}
				}
				position++
			}

			if err := detachUser(tx, username, number); err != nil {
				return err
			}

			if position == 0 {
				// Last player gone: the game has no reason to live on.
				if err := tx.Invites().CloseAllForGame(game.ID); err != nil {
					return NewPersistenceError(err)
				}
				if err := tx.Games().DeleteByNumber(number); err != nil {
					return NewPersistenceError(err)
				}
				deleted = true
				return nil
			}

			if game.OwnerUsername == username {
				// Hand the game to the oldest remaining seat.
				for _, player := range game.Players {
					if player.Username != username {
						game.OwnerUsername = player.Username
						break
					}
				}
				if err := tx.Games().Save(game); err != nil {
					return NewPersistenceError(err)
				}
			}
			return appendLog(tx.Logs(), game, username, game_constants.LogLeave, "%s left the game", username)
		}); err != nil {
			return err
		}
		if deleted {
			left = game
			return nil
		}
		left, err = c.GetGame(number)
		return err
	})
	if err != nil {
		return nil, err
	}
	return left, nil
}

// RemoveGame deletes a game entirely. Owner only; a game in play cannot be
// removed underneath its players.
func (c *Coordinator) RemoveGame(number int, username string) (*models.Game, error) {
	if username == "" {
		return nil, NewAuthorizationError("you must be signed in")
	}

	var removed *models.Game
	err := c.locks.WithGame(number, func() error {
		game, err := c.store.Games().FindByNumber(number)
		if err != nil {
			return wrapGameLookup(number, err)
		}
		if game.OwnerUsername != username {
			return NewAuthorizationError("only the owner may remove game %d", number)
		}
		if game.State == game_constants.StateStarted {
			return NewStateConflictError("cannot remove a game in play")
		}

		if err := c.store.Atomically(func(tx persistence.Store) error {
			if err := tx.Invites().CloseAllForGame(game.ID); err != nil {
				return NewPersistenceError(err)
			}
			for _, player := range game.Players {
				if err := detachUser(tx, player.Username, number); err != nil {
					return err
				}
			}
			for _, watcher := range decodeStrings(game.Watchers) {
				if err := detachUser(tx, watcher, number); err != nil {
					return err
				}
			}
			if err := tx.Games().DeleteByNumber(number); err != nil {
				return NewPersistenceError(err)
			}
			return nil
		}); err != nil {
			return err
		}
		removed = game
		return nil
	})
	if err != nil {
		return nil, err
	}
	return removed, nil
}

// ToggleReady flips the caller's ready flag while the game is open.
func (c *Coordinator) ToggleReady(number int, username string) (*models.Game, error) {
	if username == "" {
		return nil, NewAuthorizationError("you must be signed in")
	}

	var toggled *models.Game
	err := c.locks.WithGame(number, func() error {
		game, err := c.store.Games().FindByNumber(number)
		if err != nil {
			return wrapGameLookup(number, err)
		}
		if game.State != game_constants.StateOpen {
			return NewStateConflictError("game %d already started", number)
		}
		seat := seatOf(game, username)
		if seat == nil {
			return NewAuthorizationError("you are not a player of game %d", number)
		}

		if err := c.store.Atomically(func(tx persistence.Store) error {
			seat.Ready = !seat.Ready
			if err := tx.Games().SavePlayer(seat); err != nil {
				return NewPersistenceError(err)
			}
			text := "%s is ready"
			if !seat.Ready {
				text = "%s is not ready"
			}
			return appendLog(tx.Logs(), game, username, game_constants.LogReady, text, username)
		}); err != nil {
			return err
		}
		toggled, err = c.GetGame(number)
		return err
	})
	if err != nil {
		return nil, err
	}
	return toggled, nil
}

// UpdateOption changes a pre-start option. Owner only, open games only.
// "players_max"/"players_min" adjust the seat bounds; anything else lands
// in the options blob handed to the rules engine on start.
func (c *Coordinator) UpdateOption(number int, username, name string, value json.RawMessage) (*models.Game, error) {
	if username == "" {
		return nil, NewAuthorizationError("you must be signed in")
	}
	if name == "" {
		return nil, NewValidationError("option name is required")
	}

	var updated *models.Game
	err := c.locks.WithGame(number, func() error {
		game, err := c.store.Games().FindByNumber(number)
		if err != nil {
			return wrapGameLookup(number, err)
		}
		if game.OwnerUsername != username {
			return NewAuthorizationError("only the owner may change options")
		}
		if game.State != game_constants.StateOpen {
			return NewStateConflictError("options are frozen once the game starts")
		}

		switch name {
		case "players_max":
			var max int
			if err := json.Unmarshal(value, &max); err != nil {
				return NewValidationError("players_max must be a number")
			}
			if max < game.PlayersMin || max > game_constants.AbsolutePlayersMax || max < len(game.Players) {
				return NewValidationError("players_max %d out of range", max)
			}
			game.PlayersMax = max
		case "players_min":
			var min int
			if err := json.Unmarshal(value, &min); err != nil {
				return NewValidationError("players_min must be a number")
			}
			if min < 2 || min > game.PlayersMax {
				return NewValidationError("players_min %d out of range", min)
			}
			game.PlayersMin = min
		default:
			options := map[string]json.RawMessage{}
			if len(game.Options) > 0 {
				if err := json.Unmarshal(game.Options, &options); err != nil {
					return NewPersistenceError(err)
				}
			}
			options[name] = value
			encoded, err := json.Marshal(options)
			if err != nil {
				return NewPersistenceError(err)
			}
			game.Options = encoded
		}

		if err := c.store.Atomically(func(tx persistence.Store) error {
			if err := tx.Games().Save(game); err != nil {
				return NewPersistenceError(err)
			}
			return appendLog(tx.Logs(), game, username, game_constants.LogOption, "%s changed option %s", username, name)
		}); err != nil {
			return err
		}
		updated, err = c.GetGame(number)
		return err
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// StartGame deals the opening state and moves the game to started. Every
// open invite is swept; the seated players become the fixed roster.
func (c *Coordinator) StartGame(number int, username string) (*models.Game, error) {
	if username == "" {
		return nil, NewAuthorizationError("you must be signed in")
	}

	var started *models.Game
	err := c.locks.WithGame(number, func() error {
		game, err := c.store.Games().FindByNumber(number)
		if err != nil {
			return wrapGameLookup(number, err)
		}
		if game.State != game_constants.StateOpen {
			return NewStateConflictError("game %d cannot start from state %s", number, game.State)
		}
		if game.OwnerUsername != username {
			return NewAuthorizationError("only the owner may start the game")
		}
		if len(game.Players) < game.PlayersMin {
			return NewStateConflictError("game %d needs at least %d players", number, game.PlayersMin)
		}
		for _, player := range game.Players {
			// Starting implies the owner is ready
			if player.Username != username && !player.Ready {
				return NewStateConflictError("%s is not ready", player.Username)
			}
		}

		engine, ok := c.engines.Get(game.GameType)
		if !ok {
			return NewValidationError("unknown game type %q", game.GameType)
		}
		usernames := make([]string, 0, len(game.Players))
		for _, player := range game.Players {
			usernames = append(usernames, player.Username)
		}
		data, err := engine.InitialData(usernames, json.RawMessage(game.Options))
		if err != nil {
			return NewStateConflictError("cannot start game %d: %v", number, err)
		}

		game.GameData = datatypes.JSON(data)
		game.State = game_constants.StateStarted
		if err := c.store.Atomically(func(tx persistence.Store) error {
			if err := tx.Games().Save(game); err != nil {
				return NewPersistenceError(err)
			}
			if err := tx.Invites().CloseAllForGame(game.ID); err != nil {
				return NewPersistenceError(err)
			}
			for _, player := range game.Players {
				user, err := tx.Users().FindByUsername(player.Username)
				if err != nil {
					log.Printf("[GAME-START] Could not load user %s: %v", player.Username, err)
					continue
				}
				if err := tx.Users().Update(player.Username, map[string]interface{}{
					"opened_game":   number,
					"current_moves": addNumber(user.CurrentMoves, number),
				}); err != nil {
					log.Printf("[GAME-START] Could not update user %s: %v", player.Username, err)
				}
			}
			return appendLog(tx.Logs(), game, username, game_constants.LogStart, "the game started")
		}); err != nil {
			return err
		}
		started, err = c.GetGame(number)
		return err
	})
	if err != nil {
		return nil, err
	}
	return started, nil
}

// RepeatGame spins up a fresh open game with the same type and options,
// seats the caller and invites every other player of the finished game.
func (c *Coordinator) RepeatGame(number int, username string) (*models.Game, []*models.GameInvite, error) {
	if username == "" {
		return nil, nil, NewAuthorizationError("you must be signed in")
	}

	original, err := c.store.Games().FindByNumber(number)
	if err != nil {
		return nil, nil, wrapGameLookup(number, err)
	}
	if original.State != game_constants.StateFinished {
		return nil, nil, NewStateConflictError("game %d is not finished yet", number)
	}
	if seatOf(original, username) == nil {
		return nil, nil, NewAuthorizationError("you did not play game %d", number)
	}

	repeated, err := c.NewGame(username, original.GameType, original.PlayersMin,
		original.PlayersMax, json.RawMessage(original.Options))
	if err != nil {
		return nil, nil, err
	}

	var created []*models.GameInvite
	for _, player := range original.Players {
		if player.Username == username {
			continue
		}
		invite := &models.GameInvite{
			GameID:          repeated.ID,
			GameNumber:      repeated.Number,
			SenderUsername:  username,
			InvitedUsername: player.Username,
		}
		if err := c.store.Invites().Create(invite); err != nil {
			log.Printf("[GAME-REPEAT] Could not invite %s: %v", player.Username, err)
			continue
		}
		created = append(created, invite)
	}
	return repeated, created, nil
}

// detachUser strips every session reference a user holds on number.
func detachUser(tx persistence.Store, username string, number int) error {
	user, err := tx.Users().FindByUsername(username)
	if err != nil {
		return NewPersistenceError(err)
	}
	fields := map[string]interface{}{
		"current_games": removeNumber(user.CurrentGames, number),
		"current_moves": removeNumber(user.CurrentMoves, number),
	}
	if user.OpenedGame != nil && *user.OpenedGame == number {
		fields["opened_game"] = nil
	}
	if user.OpenedGameWatcher != nil && *user.OpenedGameWatcher == number {
		fields["opened_game_watcher"] = nil
	}
	if err := tx.Users().Update(username, fields); err != nil {
		return NewPersistenceError(err)
	}
	return nil
}
