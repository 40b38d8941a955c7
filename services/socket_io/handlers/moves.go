package handlers

import (
	"log"

	game_constants "Mesa/constants/game"
	socketio_utils "Mesa/services/socket_io/utils"

	"github.com/gin-gonic/gin"
	"github.com/zishang520/socket.io/v2/socket"
)

func HandleMakeMove(sv *Services, client *socket.Socket, username string) func(args ...interface{}) {
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

		game, err := sv.Coordinator.MakeMove(number, username, payloadRaw(payload, "move"))
		if err != nil {
			emitCommandError(client, err)
			return
		}

		socketio_utils.BroadcastGame(sv.Sio, sv.Projector, game)

		if game.State == game_constants.StateFinished {
			if err := sv.Sync.RemoveGameSummary(number); err != nil {
				log.Printf("[MOVES] %v", err)
			}
			for _, player := range game.Players {
				emitCurrentUser(sv, player.Username)
			}
			socketio_utils.BroadcastAllGames(sv.Sio, sv.Sync)
		}
	}
}
