package socket_io

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	game_constants "Mesa/constants/game"
	"Mesa/services/coordinator"
	"Mesa/services/persistence"
	"Mesa/services/presence"
	"Mesa/services/redis"
	"Mesa/services/rules"
	"Mesa/services/socket_io/handlers"
	socketio_types "Mesa/services/socket_io/types"
	socketio_utils "Mesa/services/socket_io/utils"
	syncmanager "Mesa/services/sync"
	"Mesa/services/views"

	"gorm.io/gorm"

	"github.com/gin-gonic/gin"
	"github.com/zishang520/engine.io/v2/log"
	"github.com/zishang520/engine.io/v2/types"
	"github.com/zishang520/socket.io/v2/socket"
)

type MySocketServer socketio_types.SocketServer

func (sio *MySocketServer) Start(router *gin.Engine, db *gorm.DB, redisClient *redis.RedisClient) {
	log.DEBUG = true
	c := socket.DefaultServerOptions()
	c.SetServeClient(true)
	// NOTE: higher ping interval and timeout to 1) reduce network load and 2) support slower networks
	c.SetPingInterval(5 * time.Second)
	c.SetPingTimeout(3 * time.Second)
	c.SetMaxHttpBufferSize(1000000)
	c.SetConnectTimeout(10 * time.Second)
	c.SetTransports(types.NewSet("polling", "websocket"))
	c.SetCors(&types.Cors{
		Origin:      "*",
		Credentials: true,
	})

	server := (*socketio_types.SocketServer)(sio)
	// KEY: inicializar los maps, sino panikea
	server.Init()

	store := persistence.NewGormStore(db)

	engines := rules.DefaultRegistry()
	coord := coordinator.New(store, engines)
	projector := views.NewProjector(engines)
	syncManager := syncmanager.NewSyncManager(store.Games(), redisClient)

	sv := &handlers.Services{
		Coordinator: coord,
		Projector:   projector,
		Sync:        syncManager,
		Sio:         server,
	}
	sv.Presence = presence.NewTracker(
		game_constants.ConnectDebounceWindow,
		game_constants.DisconnectGraceWindow,
		func(username string) {
			commitDisconnect(sv, username)
		},
	)

	sio.Sio_server = socket.NewServer(nil, nil)
	sio.Sio_server.On("connection", func(clients ...interface{}) {
		client := clients[0].(*socket.Socket)

		// An invalid token keeps the connection alive but anonymous:
		// lobby reads work, privileged events silently no-op.
		username, token := socketio_utils.VerifyUserConnection(client, store.Users())

		decision, attach := classifyHandshake(sv.Presence, token, username)
		if !attach {
			// Double handshake from a client retry, drop on the floor:
			// no connection map entry, no event handlers.
			return
		}

		server.AddConnection(username, client)
		fmt.Println("An individual just connected!: ", username)

		switch decision {
		case presence.ConnectCommitted:
			if username != "" {
				commitConnect(sv, client, username)
			}
		case presence.ConnectCancelledDisconnect:
			// Silent reconnect: rejoin the room, no log, no broadcast.
			rejoinOpenedGame(sv, client, username)
		}

		client.On("get-all-games", handlers.HandleGetAllGames(sv, client))
		client.On("get-opened-game", handlers.HandleGetOpenedGame(sv, client, username))
		client.On("new-game", handlers.HandleNewGame(sv, client, username))
		client.On("join-game", handlers.HandleJoinGame(sv, client, username))
		client.On("open-game", handlers.HandleOpenGame(sv, client, username))
		client.On("watch-game", handlers.HandleWatchGame(sv, client, username))
		client.On("leave-game", handlers.HandleLeaveGame(sv, client, username))
		client.On("close-game", handlers.HandleCloseGame(sv, client, username))
		client.On("remove-game", handlers.HandleRemoveGame(sv, client, username))
		client.On("repeat-game", handlers.HandleRepeatGame(sv, client, username))
		client.On("toggle-ready", handlers.HandleToggleReady(sv, client, username))
		client.On("update-option", handlers.HandleUpdateOption(sv, client, username))
		client.On("start-game", handlers.HandleStartGame(sv, client, username))
		client.On("make-move", handlers.HandleMakeMove(sv, client, username))
		client.On("send-invite", handlers.HandleNewInvite(sv, client, username))
		client.On("accept-invite", handlers.HandleAcceptInvite(sv, client, username))
		client.On("decline-invite", handlers.HandleDeclineInvite(sv, client, username))

		client.On("disconnecting", handlers.HandleDisconnecting(sv, client, username))
	})

	router.POST("/socket.io/*f", gin.WrapH(sio.Sio_server.ServeHandler(c)))
	router.GET("/socket.io/*f", gin.WrapH(sio.Sio_server.ServeHandler(c)))

	SignalC := make(chan os.Signal, 1)

	signal.Notify(SignalC, syscall.SIGHUP, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)
	go func() {
		for s := range SignalC {
			switch s {
			case syscall.SIGHUP, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT:
				sio.Sio_server.Close(nil)
				os.Exit(0)
			}
		}
	}()

	fmt.Println("Socket server started")
}

// classifyHandshake decides what a fresh handshake means before the
// connection is registered anywhere. A duplicate handshake for a token
// already inside the connect window is not attached at all. Anonymous
// connections bypass the tracker and always attach.
func classifyHandshake(tracker *presence.Tracker, token, username string) (presence.ConnectDecision, bool) {
	if username == "" {
		return presence.ConnectCommitted, true
	}
	decision := tracker.TrackConnect(token, username)
	return decision, decision != presence.ConnectIgnoredDuplicate
}

// commitConnect runs a debounced, genuine connect: presence goes online,
// the user rejoins their opened game's room and the room learns about it.
func commitConnect(sv *handlers.Services, client *socket.Socket, username string) {
	sv.Sync.SyncPresence(username, true)

	game, err := sv.Coordinator.CommitConnect(username)
	if err != nil {
		fmt.Println("Error committing connect:", err)
		return
	}
	if game != nil {
		sv.Sio.JoinRoom(game.Number, client, username)
		socketio_utils.BroadcastGame(sv.Sio, sv.Projector, game)
	}

	invites, err := sv.Coordinator.GetOpenInvites(username)
	if err != nil {
		fmt.Println("Error listing invites:", err)
		return
	}
	for _, invite := range invites {
		client.Emit("new-invite", gin.H{
			"id":          invite.ID,
			"game_number": invite.GameNumber,
			"sender":      invite.SenderUsername,
			"created_at":  invite.CreatedAt,
		})
	}
}

// rejoinOpenedGame restores room membership for a reconnect that landed
// inside the disconnect grace window. Nothing is logged or broadcast, so a
// page reload is invisible to the other players.
func rejoinOpenedGame(sv *handlers.Services, client *socket.Socket, username string) {
	game, err := sv.Coordinator.GetOpenedGame(username)
	if err != nil || game == nil {
		return
	}
	sv.Sio.JoinRoom(game.Number, client, username)
}

// commitDisconnect fires when a disconnect grace window elapses. A user
// with another tab still open never goes absent.
func commitDisconnect(sv *handlers.Services, username string) {
	if len(sv.Sio.GetConnections(username)) > 0 {
		return
	}
	sv.Sync.SyncPresence(username, false)

	game, err := sv.Coordinator.CommitDisconnect(username)
	if err != nil {
		fmt.Println("Error committing disconnect:", err)
		return
	}
	if game != nil {
		socketio_utils.BroadcastGame(sv.Sio, sv.Projector, game)
	}
}
