package handlers

import (
	"github.com/zishang520/socket.io/v2/socket"
)

// HandleDisconnecting runs when a socket drops. The dead socket leaves the
// connection map and room index right away (it cannot receive anything),
// but the user-visible absence is only committed by the presence tracker
// after the grace window passes unchallenged.
func HandleDisconnecting(sv *Services, client *socket.Socket, username string) func(args ...interface{}) {
	return func(args ...interface{}) {
		sv.Sio.RemoveConnection(username, client)
		if username == "" {
			return
		}
		sv.Presence.TrackDisconnect(username)
	}
}
