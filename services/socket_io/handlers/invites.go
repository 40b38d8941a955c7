package handlers

import (
	"log"

	socketio_utils "Mesa/services/socket_io/utils"

	"github.com/gin-gonic/gin"
	"github.com/zishang520/socket.io/v2/socket"
)

func HandleNewInvite(sv *Services, client *socket.Socket, username string) func(args ...interface{}) {
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
		invitee, ok := payloadString(payload, "username")
		if !ok {
			client.Emit("error-message", gin.H{"error": "An invitee username is required"})
			return
		}

		invite, err := sv.Coordinator.CreateInvite(number, username, invitee)
		if err != nil {
			emitCommandError(client, err)
			return
		}
		socketio_utils.EmitToUser(sv.Sio, invite.InvitedUsername, "new-invite", inviteFields(invite))
	}
}

func HandleAcceptInvite(sv *Services, client *socket.Socket, username string) func(args ...interface{}) {
	return func(args ...interface{}) {
		if username == "" {
			return
		}
		inviteID, ok := payloadInt(eventPayload(args), "invite_id")
		if !ok {
			client.Emit("error-message", gin.H{"error": "An invite id is required"})
			return
		}

		game, err := sv.Coordinator.AcceptInvite(uint(inviteID), username)
		if err != nil {
			emitCommandError(client, err)
			return
		}

		if err := sv.Sync.SyncGameSummary(game); err != nil {
			log.Printf("[INVITES] %v", err)
		}
		emitCurrentUser(sv, username)
		socketio_utils.BroadcastGame(sv.Sio, sv.Projector, game)
		socketio_utils.BroadcastAllGames(sv.Sio, sv.Sync)
	}
}

func HandleDeclineInvite(sv *Services, client *socket.Socket, username string) func(args ...interface{}) {
	return func(args ...interface{}) {
		if username == "" {
			return
		}
		inviteID, ok := payloadInt(eventPayload(args), "invite_id")
		if !ok {
			client.Emit("error-message", gin.H{"error": "An invite id is required"})
			return
		}
		if err := sv.Coordinator.DeclineInvite(uint(inviteID), username); err != nil {
			emitCommandError(client, err)
		}
	}
}
