package presence

import (
	"encoding/json"
	"sort"
	"sync"

	"github.com/Qarib2004/reddit-sub000/internal/enums"
	"github.com/Qarib2004/reddit-sub000/internal/metrics"
	"github.com/Qarib2004/reddit-sub000/internal/models"
	"github.com/Qarib2004/reddit-sub000/internal/models/socket"

	"go.uber.org/zap"
)

// Registry is the process-wide map of online user ids to their live
// connection handle. It is constructed at server start and injected into
// every component that needs it; nothing here is persisted, the map is
// rebuilt as clients reconnect after a restart.
//
// At most one connection per user: a second connection for the same user
// overwrites the first (last connection wins).
type Registry struct {
	mu      sync.Mutex
	clients map[uint]*models.SocketClient
	logger  *zap.Logger
}

func NewRegistry(logger *zap.Logger) *Registry {
	return &Registry{
		clients: make(map[uint]*models.SocketClient),
		logger:  logger,
	}
}

// Register stores the client as the user's current handle, replacing any
// prior one, and broadcasts the refreshed presence set to every session.
func (r *Registry) Register(userId uint, client *models.SocketClient) {
	r.mu.Lock()
	if prev, ok := r.clients[userId]; ok && prev.Conn == client.Conn {
		// Same connection re-announcing itself (come_online after join_chat).
		r.mu.Unlock()
		return
	}
	r.clients[userId] = client
	size := len(r.clients)
	r.mu.Unlock()

	metrics.OnlineConns.Set(float64(size))
	r.logger.Info("presence registered", zap.Uint("user_id", userId), zap.Int("online", size))
	r.broadcastPresenceSet()
}

// Unregister removes the user's entry only if it still points at conn. A
// stale disconnect from an older connection must not clear a newer
// registration for the same user. Unregistering an absent user is a no-op.
// The return value reports whether an entry was actually removed, so
// callers mirroring presence elsewhere can skip stale teardowns too.
func (r *Registry) Unregister(userId uint, conn models.SocketConn) bool {
	r.mu.Lock()
	client, ok := r.clients[userId]
	if !ok || client.Conn != conn {
		r.mu.Unlock()
		return false
	}
	delete(r.clients, userId)
	size := len(r.clients)
	r.mu.Unlock()

	metrics.OnlineConns.Set(float64(size))
	r.logger.Info("presence unregistered", zap.Uint("user_id", userId), zap.Int("online", size))
	r.broadcastPresenceSet()
	return true
}

// Lookup returns the user's current connection handle, if any.
func (r *Registry) Lookup(userId uint) (*models.SocketClient, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	client, ok := r.clients[userId]
	return client, ok
}

// SnapshotIds returns the sorted set of currently online user ids.
func (r *Registry) SnapshotIds() []uint {
	r.mu.Lock()
	ids := make([]uint, 0, len(r.clients))
	for id := range r.clients {
		ids = append(ids, id)
	}
	r.mu.Unlock()

	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// Broadcast pushes an event to every registered connection. Connections
// that fail to take the write are dropped from the registry.
func (r *Registry) Broadcast(event socket.SocketEvent) {
	r.mu.Lock()
	targets := make([]*models.SocketClient, 0, len(r.clients))
	for _, client := range r.clients {
		targets = append(targets, client)
	}
	r.mu.Unlock()

	for _, client := range targets {
		if err := client.WriteEvent(event); err != nil {
			r.logger.Warn("broadcast write failed, dropping client",
				zap.Uint("user_id", client.UserId), zap.Error(err))
			_ = client.Conn.Close()
			r.Unregister(client.UserId, client.Conn)
		}
	}
}

func (r *Registry) broadcastPresenceSet() {
	payload, err := json.Marshal(socket.PresenceSetPayload{UserIds: r.SnapshotIds()})
	if err != nil {
		r.logger.Error("failed to marshal presence set", zap.Error(err))
		return
	}
	r.Broadcast(socket.SocketEvent{
		Event:   enums.SOCKET_EVENT_PRESENCE_SET,
		Payload: payload,
	})
}

// CloseAll closes every connection and clears the registry. Used on server
// shutdown.
func (r *Registry) CloseAll() {
	r.mu.Lock()
	for id, client := range r.clients {
		_ = client.Conn.Close()
		delete(r.clients, id)
	}
	r.mu.Unlock()
	metrics.OnlineConns.Set(0)
}
