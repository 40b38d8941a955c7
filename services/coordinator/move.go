package coordinator

import (
	"encoding/json"
	"errors"
	"log"

	game_constants "Mesa/constants/game"
	models "Mesa/models/postgres"
	"Mesa/services/persistence"
	"Mesa/services/rules"

	"gorm.io/datatypes"
)

// MakeMove applies one move through the rules engine. The whole
// read-apply-persist-log sequence runs inside the game's critical section,
// so two racing moves commit exactly one mutation each, in order. The
// persistence steps share one transaction: a failed write leaves the game
// exactly as the previous move left it.
func (c *Coordinator) MakeMove(number int, username string, move json.RawMessage) (*models.Game, error) {
	if username == "" {
		return nil, NewAuthorizationError("you must be signed in to play")
	}
	if len(move) == 0 {
		return nil, NewValidationError("a move payload is required")
	}

	var played *models.Game
	err := c.locks.WithGame(number, func() error {
		game, err := c.store.Games().FindByNumber(number)
		if err != nil {
			return wrapGameLookup(number, err)
		}
		if game.State != game_constants.StateStarted {
			return NewStateConflictError("game %d is not in play", number)
		}
		if seatOf(game, username) == nil {
			return NewAuthorizationError("you are not a player of game %d", number)
		}

		engine, ok := c.engines.Get(game.GameType)
		if !ok {
			return NewValidationError("unknown game type %q", game.GameType)
		}
		result, err := engine.ApplyMove(json.RawMessage(game.GameData), username, move)
		if err != nil {
			var ruleErr *rules.RuleError
			if errors.As(err, &ruleErr) {
				return NewStateConflictError("%s", ruleErr.Message)
			}
			return NewPersistenceError(err)
		}

		game.GameData = datatypes.JSON(result.Data)
		if result.Finished {
			game.State = game_constants.StateFinished
		}
		if err := c.store.Atomically(func(tx persistence.Store) error {
			if err := tx.Games().Save(game); err != nil {
				return NewPersistenceError(err)
			}
			if err := appendLog(tx.Logs(), game, username, game_constants.LogMove, "%s made a move", username); err != nil {
				return err
			}

			if result.Finished {
				settleFinishedGame(tx, game, result.Winner)
				text := "the game finished in a draw"
				if result.Winner != "" {
					text = result.Winner + " won the game"
				}
				if err := appendLog(tx.Logs(), game, result.Winner, game_constants.LogFinish, "%s", text); err != nil {
					return err
				}
			}
			return nil
		}); err != nil {
			return err
		}

		played, err = c.GetGame(number)
		return err
	})
	if err != nil {
		return nil, err
	}
	return played, nil
}

// settleFinishedGame marks the winner's seat and releases every player's
// authorization entries for the game. Failures here don't undo the move:
// the finished state commits with whatever settling succeeded.
func settleFinishedGame(tx persistence.Store, game *models.Game, winner string) {
	for _, player := range game.Players {
		if player.Username == winner && !player.IsWinner {
			player.IsWinner = true
			if err := tx.Games().SavePlayer(player); err != nil {
				log.Printf("[GAME-FINISH] Could not mark winner %s: %v", winner, err)
			}
		}
		user, err := tx.Users().FindByUsername(player.Username)
		if err != nil {
			log.Printf("[GAME-FINISH] Could not load user %s: %v", player.Username, err)
			continue
		}
		if err := tx.Users().Update(player.Username, map[string]interface{}{
			"current_games": removeNumber(user.CurrentGames, game.Number),
			"current_moves": removeNumber(user.CurrentMoves, game.Number),
		}); err != nil {
			log.Printf("[GAME-FINISH] Could not update user %s: %v", player.Username, err)
		}
	}
}
