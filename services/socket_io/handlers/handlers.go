package handlers

import (
	"encoding/json"

	"Mesa/services/coordinator"
	"Mesa/services/presence"
	socketio_types "Mesa/services/socket_io/types"
	socketio_utils "Mesa/services/socket_io/utils"
	"Mesa/services/sync"
	"Mesa/services/views"

	"github.com/gin-gonic/gin"
	"github.com/zishang520/socket.io/v2/socket"
)

// Services bundles everything an event handler needs. One instance is
// shared by all connections.
type Services struct {
	Coordinator *coordinator.Coordinator
	Projector   *views.Projector
	Sync        *sync.SyncManager
	Sio         *socketio_types.SocketServer
	Presence    *presence.Tracker
}

// emitCommandError reports a rejected command to the initiating connection
// only. Command errors are never broadcast to the room.
func emitCommandError(client *socket.Socket, err error) {
	message := err.Error()
	if cmdErr, ok := err.(*coordinator.CommandError); ok {
		message = cmdErr.Message
	}
	client.Emit("error-message", gin.H{
		"error": message,
		"kind":  string(coordinator.KindOf(err)),
	})
}

// eventPayload extracts the JSON object clients send as first argument.
func eventPayload(args []interface{}) map[string]interface{} {
	if len(args) == 0 {
		return nil
	}
	payload, _ := args[0].(map[string]interface{})
	return payload
}

func payloadInt(payload map[string]interface{}, key string) (int, bool) {
	switch v := payload[key].(type) {
	case float64:
		return int(v), true
	case int:
		return v, true
	default:
		return 0, false
	}
}

func payloadString(payload map[string]interface{}, key string) (string, bool) {
	v, ok := payload[key].(string)
	return v, ok
}

// payloadRaw re-encodes an arbitrary payload field for the opaque
// rules-engine and options contracts.
func payloadRaw(payload map[string]interface{}, key string) json.RawMessage {
	v, ok := payload[key]
	if !ok || v == nil {
		return nil
	}
	data, err := json.Marshal(v)
	if err != nil {
		return nil
	}
	return data
}

// emitCurrentUser refreshes the caller's session fields on every tab.
func emitCurrentUser(sv *Services, username string) {
	user, err := sv.Coordinator.GetUser(username)
	if err != nil {
		return
	}
	socketio_utils.EmitCurrentUser(sv.Sio, user)
}
