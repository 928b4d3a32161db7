package client

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/Qarib2004/reddit-sub000/internal/enums"
	"github.com/Qarib2004/reddit-sub000/internal/models"
	"github.com/Qarib2004/reddit-sub000/internal/models/socket"

	"go.uber.org/zap"
)

func messageEvent(t *testing.T, id uint, body string) socket.SocketEvent {
	t.Helper()
	message := models.Message{SenderID: 1, RecipientID: 2, Body: body}
	message.ID = id
	payload, err := json.Marshal(message)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	return socket.SocketEvent{Event: enums.SOCKET_EVENT_MESSAGE, Payload: payload}
}

func historyEvent(t *testing.T, messages ...models.Message) socket.SocketEvent {
	t.Helper()
	payload, err := json.Marshal(models.MessageListResponse{Messages: messages, Total: int64(len(messages))})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	return socket.SocketEvent{Event: enums.SOCKET_EVENT_HISTORY, Payload: payload}
}

func TestDispatch_DeduplicatesPushedMessagesById(t *testing.T) {
	var delivered []models.Message
	c := New("ws://example/ws/chat", "token", 2, Handlers{
		OnMessage: func(m models.Message) { delivered = append(delivered, m) },
	}, zap.NewNop())

	event := messageEvent(t, 10, "hello")
	c.dispatch(event)
	c.dispatch(event)

	if len(delivered) != 1 {
		t.Fatalf("expected one delivery for a duplicated push, got %d", len(delivered))
	}
	if delivered[0].ID != 10 || delivered[0].Body != "hello" {
		t.Fatalf("unexpected delivered message: %+v", delivered[0])
	}
}

func TestDispatch_HistoryReplaySuppressesLaterDuplicatePush(t *testing.T) {
	var pushed []models.Message
	var replayed [][]models.Message
	c := New("ws://example/ws/chat", "token", 2, Handlers{
		OnMessage: func(m models.Message) { pushed = append(pushed, m) },
		OnHistory: func(ms []models.Message) { replayed = append(replayed, ms) },
	}, zap.NewNop())

	known := models.Message{SenderID: 1, RecipientID: 2, Body: "hi"}
	known.ID = 4

	c.dispatch(historyEvent(t, known))
	// The same message also arrives through the live push path.
	c.dispatch(messageEvent(t, 4, "hi"))
	// A genuinely new message still comes through.
	c.dispatch(messageEvent(t, 5, "again"))

	if len(replayed) != 1 || len(replayed[0]) != 1 {
		t.Fatalf("expected one history replay with one message")
	}
	if len(pushed) != 1 || pushed[0].ID != 5 {
		t.Fatalf("expected only the new message to be delivered, got %+v", pushed)
	}
}

func TestDispatch_PresenceSetAndSendFailedReachHandlers(t *testing.T) {
	var presence []uint
	var failures []socket.SendFailedPayload
	c := New("ws://example/ws/chat", "token", 2, Handlers{
		OnPresenceSet: func(ids []uint) { presence = ids },
		OnSendFailed:  func(f socket.SendFailedPayload) { failures = append(failures, f) },
	}, zap.NewNop())

	presencePayload, _ := json.Marshal(socket.PresenceSetPayload{UserIds: []uint{1, 2, 3}})
	c.dispatch(socket.SocketEvent{Event: enums.SOCKET_EVENT_PRESENCE_SET, Payload: presencePayload})

	failurePayload, _ := json.Marshal(socket.SendFailedPayload{RecipientId: 9, Reasons: []string{"recipient not found"}})
	c.dispatch(socket.SocketEvent{Event: enums.SOCKET_EVENT_SEND_FAILED, Payload: failurePayload})

	if len(presence) != 3 {
		t.Fatalf("expected presence set of 3, got %v", presence)
	}
	if len(failures) != 1 || failures[0].RecipientId != 9 {
		t.Fatalf("expected one send failure for recipient 9, got %+v", failures)
	}
}

func TestSendMessage_WithoutConnectionReturnsError(t *testing.T) {
	c := New("ws://example/ws/chat", "token", 2, Handlers{}, zap.NewNop())
	if err := c.SendMessage(2, "hello"); err == nil {
		t.Fatalf("expected an error when not connected")
	}
}

func TestNextBackoff_DoublesUntilCapped(t *testing.T) {
	d := initialBackoff
	for _, want := range []time.Duration{
		2 * time.Second, 4 * time.Second, 8 * time.Second, 16 * time.Second,
		30 * time.Second, 30 * time.Second,
	} {
		if d = nextBackoff(d); d != want {
			t.Fatalf("expected backoff %v, got %v", want, d)
		}
	}
}

func TestWait_ReturnsImmediatelyOnceClosed(t *testing.T) {
	c := New("ws://localhost/chat", "token", 2, Handlers{}, zap.NewNop())
	c.Close()

	done := make(chan bool, 1)
	go func() { done <- c.wait(time.Hour) }()

	select {
	case proceeded := <-done:
		if proceeded {
			t.Fatalf("wait must report closed, not elapse")
		}
	case <-time.After(time.Second):
		t.Fatalf("wait did not observe the closed client")
	}
}
