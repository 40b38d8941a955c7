package socketio_types

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/zishang520/socket.io/v2/socket"
)

func TestConnectionsPerUser(t *testing.T) {
	server := NewSocketServer()
	tab1 := &socket.Socket{}
	tab2 := &socket.Socket{}

	server.AddConnection("alice", tab1)
	server.AddConnection("alice", tab2)
	server.AddConnection("", &socket.Socket{})

	assert.Len(t, server.GetConnections("alice"), 2)
	assert.Equal(t, 3, server.ConnectionCount())

	server.RemoveConnection("alice", tab1)
	assert.Len(t, server.GetConnections("alice"), 1)
	assert.Equal(t, tab2, server.GetConnections("alice")[0])
}

func TestRoomMembership(t *testing.T) {
	server := NewSocketServer()
	alice := &socket.Socket{}
	bob := &socket.Socket{}

	server.JoinRoom(123456, alice, "alice")
	server.JoinRoom(123456, bob, "bob")
	server.JoinRoom(654321, alice, "alice")

	members := server.RoomMembers(123456)
	assert.Len(t, members, 2)
	usernames := map[string]bool{}
	for _, m := range members {
		usernames[m.Username] = true
	}
	assert.True(t, usernames["alice"])
	assert.True(t, usernames["bob"])

	server.LeaveRoom(123456, bob)
	assert.Len(t, server.RoomMembers(123456), 1)
	assert.Len(t, server.RoomMembers(654321), 1)
}

// A dropped socket must vanish from every room it subscribed to.
func TestRemoveConnectionClearsRooms(t *testing.T) {
	server := NewSocketServer()
	client := &socket.Socket{}

	server.AddConnection("alice", client)
	server.JoinRoom(123456, client, "alice")
	server.JoinRoom(654321, client, "alice")

	server.RemoveConnection("alice", client)
	assert.Empty(t, server.RoomMembers(123456))
	assert.Empty(t, server.RoomMembers(654321))
	assert.Empty(t, server.GetConnections("alice"))
}

func TestClearRoomReturnsKicked(t *testing.T) {
	server := NewSocketServer()
	server.JoinRoom(123456, &socket.Socket{}, "alice")
	server.JoinRoom(123456, &socket.Socket{}, "eve")

	kicked := server.ClearRoom(123456)
	assert.Len(t, kicked, 2)
	assert.Empty(t, server.RoomMembers(123456))

	// Clearing an unknown room is a no-op.
	assert.Empty(t, server.ClearRoom(999999))
}

func TestForEachConnectionVisitsAll(t *testing.T) {
	server := NewSocketServer()
	server.AddConnection("alice", &socket.Socket{})
	server.AddConnection("alice", &socket.Socket{})
	server.AddConnection("bob", &socket.Socket{})

	visited := 0
	server.ForEachConnection(func(client *socket.Socket, username string) {
		visited++
	})
	assert.Equal(t, 3, visited)
}
