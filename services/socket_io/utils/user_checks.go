package socketio_utils

import (
	"fmt"

	"Mesa/middleware"
	"Mesa/services/persistence"

	"github.com/gin-gonic/gin"
	"github.com/zishang520/socket.io/v2/socket"
)

// VerifyUserConnection authenticates a socket.io handshake. It decodes the
// JWT from the auth data and resolves the account behind it. An invalid or
// missing token is NOT a hard failure: the connection stays up anonymous
// and privileged events silently no-op downstream.
//
// The raw token is returned too; the presence tracker keys its connect
// guard on it.
func VerifyUserConnection(client *socket.Socket, users persistence.UserService) (username, token string) {
	authData, ok := client.Handshake().Auth.(map[string]interface{})
	if !ok {
		fmt.Println("No auth data provided in handshake!")
		return "", ""
	}

	token, _ = authData["authorization"].(string)

	email, err := middleware.Socketio_JWT_decoder(authData)
	if err != nil {
		fmt.Println("Error decoding JWT:", err)
		client.Emit("error-message", gin.H{
			"error": "Authentication failed: invalid JWT. Remember to set it on the 'authorization' field with the 'Bearer ' prefix.",
		})
		return "", token
	}

	user, err := users.FindByEmail(email)
	if err != nil {
		fmt.Println("Error fetching user from database:", err)
		client.Emit("error-message", gin.H{"error": "Authentication failed: could not find user"})
		return "", token
	}

	return user.ProfileUsername, token
}
