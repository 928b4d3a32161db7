package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/Qarib2004/reddit-sub000/internal/enums"
	"github.com/Qarib2004/reddit-sub000/internal/models"
	"github.com/Qarib2004/reddit-sub000/internal/models/socket"
	"github.com/Qarib2004/reddit-sub000/internal/presence"
	"github.com/Qarib2004/reddit-sub000/internal/services"

	"go.uber.org/zap"
)

type fakeAuth struct {
	mu          sync.Mutex
	transitions []bool
}

func (f *fakeAuth) VerifyToken(token string) (*models.Claims, error) {
	return &models.Claims{ID: 1}, nil
}

func (f *fakeAuth) SetUserOnlineStatus(userId uint, online bool) (bool, *time.Time, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.transitions = append(f.transitions, online)
	now := time.Now()
	return online, &now, nil
}

func (f *fakeAuth) recorded() []bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]bool(nil), f.transitions...)
}

type fakeMirror struct {
	mu          sync.Mutex
	transitions []bool
}

func (f *fakeMirror) SetOnline(userId uint, online bool, lastSeen time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.transitions = append(f.transitions, online)
	return nil
}

type fakeConn struct {
	mu     sync.Mutex
	events []socket.SocketEvent
	closed bool
}

func (f *fakeConn) WriteJSON(v interface{}) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, v.(socket.SocketEvent))
	return nil
}

func (f *fakeConn) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
	return nil
}

func (f *fakeConn) eventsNamed(name string) []socket.SocketEvent {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []socket.SocketEvent
	for _, e := range f.events {
		if e.Event == name {
			out = append(out, e)
		}
	}
	return out
}

type stubStore struct {
	failSave bool
}

func (s *stubStore) SaveMessage(message *models.Message) (*models.Message, []error) {
	if s.failSave {
		return nil, []error{errors.New("store unavailable")}
	}
	message.ID = 1
	return message, nil
}

func (s *stubStore) GetConversation(userId, peerId uint) ([]models.Message, []error) {
	return nil, nil
}

func (s *stubStore) UnreadCounts(recipientId uint) (map[uint]int64, error) {
	return map[uint]int64{}, nil
}

func (s *stubStore) MarkRead(senderId, recipientId uint) (int64, error) {
	return 0, nil
}

type stubResolver struct{}

func (s *stubResolver) UserExists(userId uint) (bool, error) { return true, nil }

func newTestHandler(store services.MessageStore) (*SocketChatHandler, *presence.Registry, *fakeAuth) {
	logger := zap.NewNop()
	registry := presence.NewRegistry(logger)
	chat := services.NewChatService(store, &stubResolver{}, registry, logger)
	auth := &fakeAuth{}
	return NewSocketChatHandler(context.Background(), registry, chat, auth, &fakeMirror{}, logger), registry, auth
}

func TestTeardown_StaleHandleKeepsNewerSessionOnline(t *testing.T) {
	handler, registry, auth := newTestHandler(&stubStore{})

	oldConn := &fakeConn{}
	handler.handlePresenceEvent(1, models.NewSocketClient(1, oldConn))

	// The user reconnects before the old read loop unwinds.
	newConn := &fakeConn{}
	handler.handlePresenceEvent(1, models.NewSocketClient(1, newConn))

	handler.teardownConnection(1, oldConn)

	if _, online := registry.Lookup(1); !online {
		t.Fatalf("newer session must stay registered after the stale teardown")
	}
	// Two announcements, and no offline flip from the stale handle.
	if got := auth.recorded(); len(got) != 2 || !got[0] || !got[1] {
		t.Fatalf("stale teardown must not mirror offline, recorded %v", got)
	}
	if !oldConn.closed {
		t.Fatalf("the stale connection itself must still be closed")
	}

	handler.teardownConnection(1, newConn)

	if _, online := registry.Lookup(1); online {
		t.Fatalf("expected the user offline after the live handle tears down")
	}
	got := auth.recorded()
	if len(got) != 3 || got[2] {
		t.Fatalf("live teardown must mirror offline exactly once, recorded %v", got)
	}
}

func TestSendMessageEvent_MalformedPayloadReportsFailure(t *testing.T) {
	handler, _, _ := newTestHandler(&stubStore{})
	conn := &fakeConn{}
	client := models.NewSocketClient(1, conn)

	handler.handleSendMessageEvent(json.RawMessage(`{"recipient_id":"nope"}`), 1, client)

	failures := conn.eventsNamed(enums.SOCKET_EVENT_SEND_FAILED)
	if len(failures) != 1 {
		t.Fatalf("expected exactly one failure frame, got %d", len(failures))
	}
	var payload socket.SendFailedPayload
	if err := json.Unmarshal(failures[0].Payload, &payload); err != nil {
		t.Fatalf("bad failure payload: %v", err)
	}
	if len(payload.Reasons) == 0 {
		t.Fatalf("the failure frame must carry a reason")
	}
	if conn.closed {
		t.Fatalf("a rejected send must not tear the connection down")
	}
}

func TestSendMessageEvent_StoreFailureReportsFailure(t *testing.T) {
	handler, _, _ := newTestHandler(&stubStore{failSave: true})
	conn := &fakeConn{}
	client := models.NewSocketClient(1, conn)

	raw, _ := json.Marshal(socket.SendMessagePayload{RecipientId: 2, Body: "hello"})
	handler.handleSendMessageEvent(raw, 1, client)

	failures := conn.eventsNamed(enums.SOCKET_EVENT_SEND_FAILED)
	if len(failures) != 1 {
		t.Fatalf("expected exactly one failure frame, got %d", len(failures))
	}
	var payload socket.SendFailedPayload
	if err := json.Unmarshal(failures[0].Payload, &payload); err != nil {
		t.Fatalf("bad failure payload: %v", err)
	}
	if payload.RecipientId != 2 || len(payload.Reasons) == 0 {
		t.Fatalf("failure frame should name the recipient and reason, got %+v", payload)
	}
	if conn.closed {
		t.Fatalf("a failed persist must not tear the connection down")
	}

	// The same client can keep sending afterwards.
	handler.handleSendMessageEvent(raw, 1, client)
	if got := conn.eventsNamed(enums.SOCKET_EVENT_SEND_FAILED); len(got) != 2 {
		t.Fatalf("expected a second failure frame on retry, got %d", len(got))
	}
}
