package socketio_utils

/**
 * Broadcast fan-out. Delivery is best-effort and fire-and-forget: a send
 * failure on one connection is logged and never blocks the rest. Room
 * broadcasts carry a per-viewer projection, never one shared state
 * payload; the only shared emit is the state-free room-kick signal.
 */

import (
	"log"

	models "Mesa/models/postgres"
	socketio_types "Mesa/services/socket_io/types"
	"Mesa/services/sync"
	"Mesa/services/views"

	"github.com/gin-gonic/gin"
	"github.com/zishang520/socket.io/v2/socket"
)

// BroadcastGame sends every room subscriber its own projection of the
// committed game state. Players get their private view, everyone else the
// audience view.
func BroadcastGame(sio *socketio_types.SocketServer, projector *views.Projector, game *models.Game) {
	players := make(map[string]bool, len(game.Players))
	for _, player := range game.Players {
		players[player.Username] = true
	}

	audience, err := projector.ForAudience(game)
	if err != nil {
		log.Printf("[BROADCAST-ERROR] Audience projection of game %d failed: %v", game.Number, err)
		return
	}

	for _, member := range sio.RoomMembers(game.Number) {
		view := audience
		if member.Username != "" && players[member.Username] {
			playerView, err := projector.ForPlayer(game, member.Username)
			if err != nil {
				log.Printf("[BROADCAST-ERROR] Projection of game %d for %s failed: %v",
					game.Number, member.Username, err)
				continue
			}
			view = playerView
		}
		if err := member.Client.Emit("update-game", gin.H{"game": view}); err != nil {
			log.Printf("[BROADCAST-ERROR] Emit to %s failed: %v", member.Username, err)
		}
	}
}

// EmitToUser delivers an event to every live connection of one user.
func EmitToUser(sio *socketio_types.SocketServer, username, event string, payload gin.H) {
	for _, client := range sio.GetConnections(username) {
		if err := client.Emit(event, payload); err != nil {
			log.Printf("[BROADCAST-ERROR] Emit %s to %s failed: %v", event, username, err)
		}
	}
}

// EmitOpenedGame sends a user their private projection of the game they
// currently target.
func EmitOpenedGame(sio *socketio_types.SocketServer, projector *views.Projector,
	game *models.Game, username string) {
	view, err := projector.ForPlayer(game, username)
	if err != nil {
		log.Printf("[BROADCAST-ERROR] Projection of game %d for %s failed: %v",
			game.Number, username, err)
		return
	}
	EmitToUser(sio, username, "update-opened-game", gin.H{"game": view})
}

// EmitCurrentUser pushes a user's refreshed session fields to all their
// connections.
func EmitCurrentUser(sio *socketio_types.SocketServer, user *models.User) {
	EmitToUser(sio, user.ProfileUsername, "update-current-user", gin.H{
		"username":            user.ProfileUsername,
		"opened_game":         user.OpenedGame,
		"opened_game_watcher": user.OpenedGameWatcher,
		"current_games":       user.CurrentGames,
		"current_moves":       user.CurrentMoves,
	})
}

// BroadcastAllGames pushes the lobby listing to every live connection,
// authenticated or not.
func BroadcastAllGames(sio *socketio_types.SocketServer, syncManager *sync.SyncManager) {
	summaries, err := syncManager.ListSummaries()
	if err != nil {
		log.Printf("[BROADCAST-ERROR] Could not list games: %v", err)
		return
	}
	payload := gin.H{"games": summaries}
	sio.ForEachConnection(func(client *socket.Socket, username string) {
		if err := client.Emit("all-games", payload); err != nil {
			log.Printf("[BROADCAST-ERROR] all-games emit failed: %v", err)
		}
	})
}

// CloseRoom tells every subscriber the game is gone and clears the room
// index. This is the one shared payload: the kick signal carries no state.
func CloseRoom(sio *socketio_types.SocketServer, number int) {
	for _, member := range sio.ClearRoom(number) {
		if err := member.Client.Emit("remove-game", gin.H{"number": number}); err != nil {
			log.Printf("[BROADCAST-ERROR] remove-game emit failed: %v", err)
		}
	}
}
