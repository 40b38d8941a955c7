package handlers

import (
	"log"

	models "Mesa/models/postgres"
	"Mesa/services/coordinator"
	"Mesa/services/rules"
	socketio_utils "Mesa/services/socket_io/utils"

	"github.com/gin-gonic/gin"
	"github.com/zishang520/socket.io/v2/socket"
)

// HandleGetAllGames serves the lobby listing. Anonymous connections may
// ask for it too.
func HandleGetAllGames(sv *Services, client *socket.Socket) func(args ...interface{}) {
	return func(args ...interface{}) {
		summaries, err := sv.Sync.ListSummaries()
		if err != nil {
			log.Printf("[GAMES] Could not list games: %v", err)
			client.Emit("error-message", gin.H{"error": "Could not list games"})
			return
		}
		client.Emit("all-games", gin.H{"games": summaries})
	}
}

// HandleGetOpenedGame resends the caller's opened-game projection, used by
// clients to restore their view after a page reload.
func HandleGetOpenedGame(sv *Services, client *socket.Socket, username string) func(args ...interface{}) {
	return func(args ...interface{}) {
		if username == "" {
			return
		}
		game, err := sv.Coordinator.GetOpenedGame(username)
		if err != nil {
			emitCommandError(client, err)
			return
		}
		if game == nil {
			client.Emit("update-opened-game", gin.H{"game": nil})
			return
		}
		view, err := sv.Projector.ForPlayer(game, username)
		if err != nil {
			log.Printf("[GAMES] Projection of game %d for %s failed: %v", game.Number, username, err)
			return
		}
		sv.Sio.JoinRoom(game.Number, client, username)
		client.Emit("update-opened-game", gin.H{"game": view})
	}
}

func HandleNewGame(sv *Services, client *socket.Socket, username string) func(args ...interface{}) {
	return func(args ...interface{}) {
		if username == "" {
			return
		}
		payload := eventPayload(args)
		gameType, ok := payloadString(payload, "game_type")
		if !ok {
			gameType = rules.GameTypeBriscola
		}
		playersMin, _ := payloadInt(payload, "players_min")
		playersMax, _ := payloadInt(payload, "players_max")

		game, err := sv.Coordinator.NewGame(username, gameType, playersMin, playersMax,
			payloadRaw(payload, "options"))
		if err != nil {
			emitCommandError(client, err)
			return
		}

		sv.Sio.JoinRoom(game.Number, client, username)
		if err := sv.Sync.SyncGameSummary(game); err != nil {
			log.Printf("[GAMES] %v", err)
		}
		socketio_utils.EmitOpenedGame(sv.Sio, sv.Projector, game, username)
		emitCurrentUser(sv, username)
		announceNewGame(sv, game)
		socketio_utils.BroadcastAllGames(sv.Sio, sv.Sync)
	}
}

func HandleJoinGame(sv *Services, client *socket.Socket, username string) func(args ...interface{}) {
	return func(args ...interface{}) {
		if username == "" {
			return
		}
		number, ok := payloadInt(eventPayload(args), "number")
		if !ok {
			client.Emit("error-message", gin.H{"error": "A game number is required"})
			return
		}

		game, err := sv.Coordinator.JoinGame(number, username)
		if err != nil {
			emitCommandError(client, err)
			return
		}

		if err := sv.Sync.SyncGameSummary(game); err != nil {
			log.Printf("[GAMES] %v", err)
		}
		emitCurrentUser(sv, username)
		socketio_utils.BroadcastGame(sv.Sio, sv.Projector, game)
		socketio_utils.BroadcastAllGames(sv.Sio, sv.Sync)
	}
}

func HandleOpenGame(sv *Services, client *socket.Socket, username string) func(args ...interface{}) {
	return func(args ...interface{}) {
		if username == "" {
			return
		}
		number, ok := payloadInt(eventPayload(args), "number")
		if !ok {
			client.Emit("error-message", gin.H{"error": "A game number is required"})
			return
		}

		game, err := sv.Coordinator.OpenGame(number, username)
		if err != nil {
			emitCommandError(client, err)
			return
		}

		sv.Sio.JoinRoom(game.Number, client, username)
		socketio_utils.EmitOpenedGame(sv.Sio, sv.Projector, game, username)
		emitCurrentUser(sv, username)
		socketio_utils.BroadcastGame(sv.Sio, sv.Projector, game)
	}
}

func HandleWatchGame(sv *Services, client *socket.Socket, username string) func(args ...interface{}) {
	return func(args ...interface{}) {
		if username == "" {
			return
		}
		number, ok := payloadInt(eventPayload(args), "number")
		if !ok {
			client.Emit("error-message", gin.H{"error": "A game number is required"})
			return
		}

		game, err := sv.Coordinator.WatchGame(number, username)
		if err != nil {
			emitCommandError(client, err)
			return
		}

		sv.Sio.JoinRoom(game.Number, client, username)
		view, err := sv.Projector.ForAudience(game)
		if err != nil {
			log.Printf("[GAMES] Audience projection of game %d failed: %v", game.Number, err)
			return
		}
		client.Emit("update-opened-game", gin.H{"game": view})
		emitCurrentUser(sv, username)
		socketio_utils.BroadcastGame(sv.Sio, sv.Projector, game)
	}
}

func HandleCloseGame(sv *Services, client *socket.Socket, username string) func(args ...interface{}) {
	return func(args ...interface{}) {
		if username == "" {
			return
		}
		number, ok := payloadInt(eventPayload(args), "number")
		if !ok {
			client.Emit("error-message", gin.H{"error": "A game number is required"})
			return
		}

		game, err := sv.Coordinator.CloseGame(number, username)
		if err != nil {
			emitCommandError(client, err)
			return
		}

		// Closing is a user-level action: every tab leaves the room.
		for _, conn := range sv.Sio.GetConnections(username) {
			sv.Sio.LeaveRoom(number, conn)
		}
		emitCurrentUser(sv, username)
		socketio_utils.BroadcastGame(sv.Sio, sv.Projector, game)
	}
}

func HandleLeaveGame(sv *Services, client *socket.Socket, username string) func(args ...interface{}) {
	return func(args ...interface{}) {
		if username == "" {
			return
		}
		number, ok := payloadInt(eventPayload(args), "number")
		if !ok {
			client.Emit("error-message", gin.H{"error": "A game number is required"})
			return
		}

		if _, err := sv.Coordinator.LeaveGame(number, username); err != nil {
			emitCommandError(client, err)
			return
		}
		for _, conn := range sv.Sio.GetConnections(username) {
			sv.Sio.LeaveRoom(number, conn)
		}
		emitCurrentUser(sv, username)

		// The last seat leaving deletes the game outright. Only a genuine
		// not-found means deletion; a storage failure closes nothing.
		game, err := sv.Coordinator.GetGame(number)
		if err != nil {
			if coordinator.KindOf(err) != coordinator.KindStateConflict {
				log.Printf("[GAMES] %v", err)
				return
			}
			socketio_utils.CloseRoom(sv.Sio, number)
			if err := sv.Sync.RemoveGameSummary(number); err != nil {
				log.Printf("[GAMES] %v", err)
			}
			socketio_utils.BroadcastAllGames(sv.Sio, sv.Sync)
			return
		}
		if err := sv.Sync.SyncGameSummary(game); err != nil {
			log.Printf("[GAMES] %v", err)
		}
		socketio_utils.BroadcastGame(sv.Sio, sv.Projector, game)
		socketio_utils.BroadcastAllGames(sv.Sio, sv.Sync)
	}
}

func HandleRemoveGame(sv *Services, client *socket.Socket, username string) func(args ...interface{}) {
	return func(args ...interface{}) {
		if username == "" {
			return
		}
		number, ok := payloadInt(eventPayload(args), "number")
		if !ok {
			client.Emit("error-message", gin.H{"error": "A game number is required"})
			return
		}

		removed, err := sv.Coordinator.RemoveGame(number, username)
		if err != nil {
			emitCommandError(client, err)
			return
		}

		socketio_utils.CloseRoom(sv.Sio, number)
		if err := sv.Sync.RemoveGameSummary(number); err != nil {
			log.Printf("[GAMES] %v", err)
		}
		for _, player := range removed.Players {
			emitCurrentUser(sv, player.Username)
		}
		socketio_utils.BroadcastAllGames(sv.Sio, sv.Sync)
	}
}

func HandleRepeatGame(sv *Services, client *socket.Socket, username string) func(args ...interface{}) {
	return func(args ...interface{}) {
		if username == "" {
			return
		}
		number, ok := payloadInt(eventPayload(args), "number")
		if !ok {
			client.Emit("error-message", gin.H{"error": "A game number is required"})
			return
		}

		game, invites, err := sv.Coordinator.RepeatGame(number, username)
		if err != nil {
			emitCommandError(client, err)
			return
		}

		sv.Sio.JoinRoom(game.Number, client, username)
		if err := sv.Sync.SyncGameSummary(game); err != nil {
			log.Printf("[GAMES] %v", err)
		}
		socketio_utils.EmitOpenedGame(sv.Sio, sv.Projector, game, username)
		emitCurrentUser(sv, username)
		for _, invite := range invites {
			socketio_utils.EmitToUser(sv.Sio, invite.InvitedUsername, "new-invite", inviteFields(invite))
		}
		announceNewGame(sv, game)
		socketio_utils.BroadcastAllGames(sv.Sio, sv.Sync)
	}
}

func HandleToggleReady(sv *Services, client *socket.Socket, username string) func(args ...interface{}) {
	return func(args ...interface{}) {
		if username == "" {
			return
		}
		number, ok := payloadInt(eventPayload(args), "number")
		if !ok {
			client.Emit("error-message", gin.H{"error": "A game number is required"})
			return
		}

		game, err := sv.Coordinator.ToggleReady(number, username)
		if err != nil {
			emitCommandError(client, err)
			return
		}
		socketio_utils.BroadcastGame(sv.Sio, sv.Projector, game)
	}
}

func HandleUpdateOption(sv *Services, client *socket.Socket, username string) func(args ...interface{}) {
	return func(args ...interface{}) {
		if username == "" {
			return
		}
		payload := eventPayload(args)
		number, ok := payloadInt(payload, "number")
		if !ok {
			client.Emit("error-message", gin.H{"error": "A game number is required"})
			return
		}
		name, ok := payloadString(payload, "name")
		if !ok {
			client.Emit("error-message", gin.H{"error": "An option name is required"})
			return
		}

		game, err := sv.Coordinator.UpdateOption(number, username, name, payloadRaw(payload, "value"))
		if err != nil {
			emitCommandError(client, err)
			return
		}

		// Seat bounds show up in the lobby listing.
		if err := sv.Sync.SyncGameSummary(game); err != nil {
			log.Printf("[GAMES] %v", err)
		}
		socketio_utils.BroadcastGame(sv.Sio, sv.Projector, game)
		socketio_utils.BroadcastAllGames(sv.Sio, sv.Sync)
	}
}

func HandleStartGame(sv *Services, client *socket.Socket, username string) func(args ...interface{}) {
	return func(args ...interface{}) {
		if username == "" {
			return
		}
		number, ok := payloadInt(eventPayload(args), "number")
		if !ok {
			client.Emit("error-message", gin.H{"error": "A game number is required"})
			return
		}

		game, err := sv.Coordinator.StartGame(number, username)
		if err != nil {
			emitCommandError(client, err)
			return
		}

		if err := sv.Sync.SyncGameSummary(game); err != nil {
			log.Printf("[GAMES] %v", err)
		}
		for _, player := range game.Players {
			emitCurrentUser(sv, player.Username)
		}
		socketio_utils.BroadcastGame(sv.Sio, sv.Projector, game)
		socketio_utils.BroadcastAllGames(sv.Sio, sv.Sync)
	}
}

// announceNewGame tells every live connection a game appeared in the lobby.
func announceNewGame(sv *Services, game *models.Game) {
	view, err := sv.Projector.ForAudience(game)
	if err != nil {
		log.Printf("[GAMES] Audience projection of game %d failed: %v", game.Number, err)
		return
	}
	payload := gin.H{"game": view}
	sv.Sio.ForEachConnection(func(conn *socket.Socket, _ string) {
		conn.Emit("new-game", payload)
	})
}

func inviteFields(invite *models.GameInvite) gin.H {
	return gin.H{
		"id":          invite.ID,
		"game_number": invite.GameNumber,
		"sender":      invite.SenderUsername,
		"created_at":  invite.CreatedAt,
	}
}
