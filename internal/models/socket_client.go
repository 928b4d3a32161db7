package models

import (
	"sync"
)

// SocketConn is the minimal surface the server needs from one live client
// connection. *websocket.Conn satisfies it; tests substitute fakes.
type SocketConn interface {
	WriteJSON(v interface{}) error
	Close() error
}

// SocketClient is the connection handle for one online user. Writes are
// serialized through mu because gorilla connections do not allow concurrent
// writers and both the session read loop and the registry broadcast path
// push frames to the same connection.
type SocketClient struct {
	Conn   SocketConn
	UserId uint

	mu sync.Mutex
}

func NewSocketClient(userId uint, conn SocketConn) *SocketClient {
	return &SocketClient{
		Conn:   conn,
		UserId: userId,
	}
}

func (sc *SocketClient) WriteEvent(event interface{}) error {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	return sc.Conn.WriteJSON(event)
}
