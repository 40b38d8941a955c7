package socketio_types

import (
	"sync"

	"github.com/zishang520/socket.io/v2/socket"
)

// RoomMember is one live connection subscribed to a game's room, together
// with the identity it authenticated as ("" for anonymous).
type RoomMember struct {
	Client   *socket.Socket
	Username string
}

// SocketServer contains the socket.io server, the username -> connections
// map (a user may have several tabs open) and the room index: game number
// -> subscribed connections. The index is maintained incrementally on
// join/leave so broadcasts never scan all sockets, and it lives under its
// own lock, independent of any game lock.
type SocketServer struct {
	Sio_server      *socket.Server
	UserConnections map[string][]*socket.Socket
	rooms           map[int]map[*socket.Socket]string
	mutex           sync.RWMutex
}

func NewSocketServer() *SocketServer {
	s := &SocketServer{}
	s.Init()
	return s
}

// Init allocates the maps. Required before first use, they panic otherwise.
func (s *SocketServer) Init() {
	s.UserConnections = make(map[string][]*socket.Socket)
	s.rooms = make(map[int]map[*socket.Socket]string)
}

// AddConnection registers a live socket under username ("" = anonymous).
func (s *SocketServer) AddConnection(username string, client *socket.Socket) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.UserConnections[username] = append(s.UserConnections[username], client)
}

// RemoveConnection drops the socket from the connection map and from every
// room it was subscribed to.
func (s *SocketServer) RemoveConnection(username string, client *socket.Socket) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	conns := s.UserConnections[username]
	for i, c := range conns {
		if c == client {
			s.UserConnections[username] = append(conns[:i], conns[i+1:]...)
			break
		}
	}
	if len(s.UserConnections[username]) == 0 {
		delete(s.UserConnections, username)
	}
	for number, members := range s.rooms {
		delete(members, client)
		if len(members) == 0 {
			delete(s.rooms, number)
		}
	}
}

// GetConnections returns every live socket of a user.
func (s *SocketServer) GetConnections(username string) []*socket.Socket {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	return append([]*socket.Socket(nil), s.UserConnections[username]...)
}

// ConnectionCount reports the number of live sockets, all users included.
func (s *SocketServer) ConnectionCount() int {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	total := 0
	for _, conns := range s.UserConnections {
		total += len(conns)
	}
	return total
}

// ForEachConnection visits every live socket (global broadcasts).
func (s *SocketServer) ForEachConnection(fn func(client *socket.Socket, username string)) {
	s.mutex.RLock()
	members := make([]RoomMember, 0, len(s.UserConnections))
	for username, conns := range s.UserConnections {
		for _, client := range conns {
			members = append(members, RoomMember{Client: client, Username: username})
		}
	}
	s.mutex.RUnlock()

	for _, m := range members {
		fn(m.Client, m.Username)
	}
}

// JoinRoom subscribes a socket to a game's room.
func (s *SocketServer) JoinRoom(number int, client *socket.Socket, username string) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	members, ok := s.rooms[number]
	if !ok {
		members = make(map[*socket.Socket]string)
		s.rooms[number] = members
	}
	members[client] = username
}

// LeaveRoom unsubscribes a socket from a game's room.
func (s *SocketServer) LeaveRoom(number int, client *socket.Socket) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	if members, ok := s.rooms[number]; ok {
		delete(members, client)
		if len(members) == 0 {
			delete(s.rooms, number)
		}
	}
}

// RoomMembers snapshots a room's current subscribers.
func (s *SocketServer) RoomMembers(number int) []RoomMember {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	members := make([]RoomMember, 0, len(s.rooms[number]))
	for client, username := range s.rooms[number] {
		members = append(members, RoomMember{Client: client, Username: username})
	}
	return members
}

// ClearRoom empties a room's index and returns who was kicked.
func (s *SocketServer) ClearRoom(number int) []RoomMember {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	members := make([]RoomMember, 0, len(s.rooms[number]))
	for client, username := range s.rooms[number] {
		members = append(members, RoomMember{Client: client, Username: username})
	}
	delete(s.rooms, number)
	return members
}
