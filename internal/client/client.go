package client

import (
	"encoding/json"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/Qarib2004/reddit-sub000/internal/enums"
	"github.com/Qarib2004/reddit-sub000/internal/errs"
	"github.com/Qarib2004/reddit-sub000/internal/models"
	"github.com/Qarib2004/reddit-sub000/internal/models/socket"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	initialBackoff = time.Second
	maxBackoff     = 30 * time.Second
)

// Handlers are the application callbacks for server events. Nil callbacks
// are skipped. OnMessage is only invoked for messages not seen before; the
// client deduplicates by server-assigned id because a message the app just
// sent may come back both through the history echo and the live push.
type Handlers struct {
	OnMessage     func(models.Message)
	OnHistory     func([]models.Message)
	OnPresenceSet func([]uint)
	OnSendFailed  func(socket.SendFailedPayload)
	OnReconnect   func()
}

// Client maintains one logical connection to the chat endpoint. Across
// reconnects it re-announces presence and re-requests the active
// conversation, so a dropped transport never means lost messages.
type Client struct {
	serverURL string
	token     string
	peerId    uint
	handlers  Handlers
	logger    *zap.Logger

	mu     sync.Mutex
	conn   *websocket.Conn
	seen   map[uint]struct{}
	closed chan struct{}
	once   sync.Once
}

func New(serverURL, token string, peerId uint, handlers Handlers, logger *zap.Logger) *Client {
	return &Client{
		serverURL: serverURL,
		token:     token,
		peerId:    peerId,
		handlers:  handlers,
		logger:    logger,
		seen:      make(map[uint]struct{}),
		closed:    make(chan struct{}),
	}
}

// Run dials and serves the connection, reconnecting with exponential
// backoff until Close is called. It blocks; run it on its own goroutine.
func (c *Client) Run() {
	backoff := initialBackoff
	for {
		select {
		case <-c.closed:
			return
		default:
		}

		conn, err := c.dial()
		if err != nil {
			c.logger.Warn("dial failed, retrying", zap.Duration("backoff", backoff), zap.Error(err))
			if !c.wait(backoff) {
				return
			}
			backoff = nextBackoff(backoff)
			continue
		}

		c.setConn(conn)

		// Every (re)connect starts the same way: announce presence, then
		// replay the active conversation from the store. A session that
		// fails to announce counts as a failed attempt, so the backoff
		// keeps growing instead of redialing in a tight loop.
		if err := c.announce(); err != nil {
			c.logger.Warn("announce failed, retrying", zap.Duration("backoff", backoff), zap.Error(err))
			c.dropConn()
			if !c.wait(backoff) {
				return
			}
			backoff = nextBackoff(backoff)
			continue
		}

		backoff = initialBackoff
		if c.handlers.OnReconnect != nil {
			c.handlers.OnReconnect()
		}

		c.readLoop(conn)
		c.dropConn()
	}
}

// wait sleeps for d, returning false when the client is closed meanwhile.
func (c *Client) wait(d time.Duration) bool {
	select {
	case <-c.closed:
		return false
	case <-time.After(d):
		return true
	}
}

// nextBackoff doubles the delay up to maxBackoff.
func nextBackoff(d time.Duration) time.Duration {
	if d *= 2; d > maxBackoff {
		d = maxBackoff
	}
	return d
}

// SendMessage submits a send intent over the live connection.
func (c *Client) SendMessage(recipientId uint, body string) error {
	payload, err := json.Marshal(socket.SendMessagePayload{
		RecipientId: recipientId,
		Body:        body,
	})
	if err != nil {
		return err
	}
	return c.writeEvent(socket.SocketEvent{
		Event:   enums.SOCKET_EVENT_SEND_MESSAGE,
		Payload: payload,
	})
}

// RequestHistory asks the server to replay the conversation with peerId.
func (c *Client) RequestHistory(peerId uint) error {
	payload, err := json.Marshal(socket.RequestHistoryPayload{RecipientId: peerId})
	if err != nil {
		return err
	}
	return c.writeEvent(socket.SocketEvent{
		Event:   enums.SOCKET_EVENT_REQUEST_HISTORY,
		Payload: payload,
	})
}

// Close tears the connection down and stops the reconnect loop. The server
// unregisters presence when it observes the close.
func (c *Client) Close() {
	c.once.Do(func() {
		close(c.closed)
		c.dropConn()
	})
}

func (c *Client) dial() (*websocket.Conn, error) {
	u, err := url.Parse(c.serverURL)
	if err != nil {
		return nil, err
	}

	header := http.Header{}
	header.Set("Authorization", "Bearer "+c.token)

	conn, _, err := websocket.DefaultDialer.Dial(u.String(), header)
	return conn, err
}

func (c *Client) announce() error {
	payload, err := json.Marshal(socket.PresencePayload{})
	if err != nil {
		return err
	}
	if err := c.writeEvent(socket.SocketEvent{
		Event:   enums.SOCKET_EVENT_COME_ONLINE,
		Payload: payload,
	}); err != nil {
		return err
	}
	return c.RequestHistory(c.peerId)
}

func (c *Client) readLoop(conn *websocket.Conn) {
	for {
		var event socket.SocketEvent
		if err := conn.ReadJSON(&event); err != nil {
			select {
			case <-c.closed:
			default:
				c.logger.Warn("connection lost", zap.Error(err))
			}
			return
		}
		c.dispatch(event)
	}
}

func (c *Client) dispatch(event socket.SocketEvent) {
	switch event.Event {
	case enums.SOCKET_EVENT_MESSAGE:
		var message models.Message
		if err := json.Unmarshal(event.Payload, &message); err != nil {
			c.logger.Warn("bad message payload", zap.Error(err))
			return
		}
		if c.markSeen(message.ID) && c.handlers.OnMessage != nil {
			c.handlers.OnMessage(message)
		}
	case enums.SOCKET_EVENT_HISTORY:
		var history models.MessageListResponse
		if err := json.Unmarshal(event.Payload, &history); err != nil {
			c.logger.Warn("bad history payload", zap.Error(err))
			return
		}
		for _, message := range history.Messages {
			c.markSeen(message.ID)
		}
		if c.handlers.OnHistory != nil {
			c.handlers.OnHistory(history.Messages)
		}
	case enums.SOCKET_EVENT_PRESENCE_SET:
		var presenceSet socket.PresenceSetPayload
		if err := json.Unmarshal(event.Payload, &presenceSet); err != nil {
			c.logger.Warn("bad presence payload", zap.Error(err))
			return
		}
		if c.handlers.OnPresenceSet != nil {
			c.handlers.OnPresenceSet(presenceSet.UserIds)
		}
	case enums.SOCKET_EVENT_SEND_FAILED:
		var failure socket.SendFailedPayload
		if err := json.Unmarshal(event.Payload, &failure); err != nil {
			c.logger.Warn("bad send_failed payload", zap.Error(err))
			return
		}
		if c.handlers.OnSendFailed != nil {
			c.handlers.OnSendFailed(failure)
		}
	default:
		c.logger.Debug("unknown event", zap.String("event", event.Event))
	}
}

// markSeen records the id and reports whether it was new.
func (c *Client) markSeen(id uint) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, dup := c.seen[id]; dup {
		return false
	}
	c.seen[id] = struct{}{}
	return true
}

func (c *Client) setConn(conn *websocket.Conn) {
	c.mu.Lock()
	c.conn = conn
	c.mu.Unlock()
}

func (c *Client) dropConn() {
	c.mu.Lock()
	if c.conn != nil {
		_ = c.conn.Close()
		c.conn = nil
	}
	c.mu.Unlock()
}

func (c *Client) writeEvent(event socket.SocketEvent) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.conn == nil {
		return errs.ErrNotConnected
	}
	return c.conn.WriteJSON(event)
}
