package services

import (
	"encoding/json"

	"github.com/Qarib2004/reddit-sub000/internal/enums"
	"github.com/Qarib2004/reddit-sub000/internal/errs"
	"github.com/Qarib2004/reddit-sub000/internal/metrics"
	"github.com/Qarib2004/reddit-sub000/internal/models"
	"github.com/Qarib2004/reddit-sub000/internal/models/socket"

	"go.uber.org/zap"
)

// MessageStore is the durable message log the orchestrator writes to.
type MessageStore interface {
	SaveMessage(message *models.Message) (*models.Message, []error)
	GetConversation(userId, peerId uint) ([]models.Message, []error)
	UnreadCounts(recipientId uint) (map[uint]int64, error)
	MarkRead(senderId, recipientId uint) (int64, error)
}

// UserResolver answers whether a user id maps to an existing account. The
// websocket path and the REST path share this single capability so their
// validation semantics cannot drift apart.
type UserResolver interface {
	UserExists(userId uint) (bool, error)
}

// PresenceLookup is the read-only view of the presence registry the
// orchestrator is allowed; only the session handler mutates the registry.
type PresenceLookup interface {
	Lookup(userId uint) (*models.SocketClient, bool)
}

// ChatService persists direct messages and attempts immediate live
// delivery. Durability always precedes delivery: a message that reaches the
// log is never lost even when the recipient is offline.
type ChatService struct {
	store    MessageStore
	users    UserResolver
	presence PresenceLookup
	logger   *zap.Logger
}

func NewChatService(store MessageStore, users UserResolver, presence PresenceLookup, logger *zap.Logger) *ChatService {
	return &ChatService{
		store:    store,
		users:    users,
		presence: presence,
		logger:   logger,
	}
}

// SendMessage validates, persists and then delivers a message. The presence
// lookup happens after the store call on purpose: the recipient may connect
// or disconnect while the write is in flight, and a handle cached from
// before the write could be stale.
func (cs *ChatService) SendMessage(senderId, recipientId uint, body string) (*models.Message, []error) {
	if validationErrs := cs.validateSend(senderId, recipientId, body); len(validationErrs) > 0 {
		metrics.SendFailed.Inc()
		return nil, validationErrs
	}

	message := &models.Message{
		SenderID:    senderId,
		RecipientID: recipientId,
		Body:        body,
	}
	saved, saveErrs := cs.store.SaveMessage(message)
	if len(saveErrs) > 0 {
		metrics.SendFailed.Inc()
		cs.logger.Error("failed to persist message",
			zap.Uint("sender_id", senderId), zap.Uint("recipient_id", recipientId),
			zap.Errors("errors", saveErrs))
		return nil, saveErrs
	}
	metrics.MessagesPersisted.Inc()

	cs.deliver(saved)
	cs.echoHistory(saved.SenderID, saved.RecipientID)

	return saved, nil
}

func (cs *ChatService) validateSend(senderId, recipientId uint, body string) []error {
	var errors []error
	if body == "" {
		errors = append(errors, errs.ErrEmptyMessageBody)
	}
	if senderId == recipientId {
		errors = append(errors, errs.ErrSelfMessage)
	}
	if len(errors) > 0 {
		return errors
	}

	if exists, err := cs.users.UserExists(senderId); err != nil {
		errors = append(errors, err)
	} else if !exists {
		errors = append(errors, errs.ErrSenderNotFound)
	}
	if exists, err := cs.users.UserExists(recipientId); err != nil {
		errors = append(errors, err)
	} else if !exists {
		errors = append(errors, errs.ErrRecipientNotFound)
	}
	return errors
}

// deliver pushes the persisted message to the recipient's live connection,
// if there is one. An offline recipient is not an error; the message waits
// in the store for the next history fetch.
func (cs *ChatService) deliver(message *models.Message) {
	client, online := cs.presence.Lookup(message.RecipientID)
	if !online {
		metrics.PushOffline.Inc()
		return
	}

	event, err := marshalEvent(enums.SOCKET_EVENT_MESSAGE, message)
	if err != nil {
		cs.logger.Error("failed to marshal message event", zap.Error(err))
		return
	}
	if err := client.WriteEvent(event); err != nil {
		// The connection died between lookup and write; the message is safe
		// in the store and the session teardown will clean up presence.
		cs.logger.Warn("live push failed",
			zap.Uint("recipient_id", message.RecipientID), zap.Error(err))
		return
	}
	metrics.PushDelivered.Inc()
}

// echoHistory pushes the refreshed conversation back to the sender's own
// connection so the sender's view converges with the store even when the
// same user is sending from several tabs.
func (cs *ChatService) echoHistory(senderId, recipientId uint) {
	client, online := cs.presence.Lookup(senderId)
	if !online {
		return
	}

	messages, getErrs := cs.store.GetConversation(senderId, recipientId)
	if len(getErrs) > 0 {
		cs.logger.Error("failed to load conversation for echo", zap.Errors("errors", getErrs))
		return
	}

	event, err := marshalEvent(enums.SOCKET_EVENT_HISTORY, models.MessageListResponse{
		Messages: messages,
		Total:    int64(len(messages)),
	})
	if err != nil {
		cs.logger.Error("failed to marshal history event", zap.Error(err))
		return
	}
	if err := client.WriteEvent(event); err != nil {
		cs.logger.Warn("history echo failed", zap.Uint("sender_id", senderId), zap.Error(err))
	}
}

func (cs *ChatService) GetConversation(userId, peerId uint) ([]models.Message, []error) {
	return cs.store.GetConversation(userId, peerId)
}

// UnreadCounts returns, per sender, how many unread messages that sender
// has addressed to the recipient.
func (cs *ChatService) UnreadCounts(recipientId uint) (map[uint]int64, []error) {
	counts, err := cs.store.UnreadCounts(recipientId)
	if err != nil {
		return nil, []error{err}
	}
	return counts, nil
}

// MarkRead flips every unread message in the sender->recipient direction.
// Re-invoking it when nothing is unread is a no-op, not an error.
func (cs *ChatService) MarkRead(senderId, recipientId uint) []error {
	if _, err := cs.store.MarkRead(senderId, recipientId); err != nil {
		return []error{err}
	}
	return nil
}

func marshalEvent(eventName string, payload interface{}) (socket.SocketEvent, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return socket.SocketEvent{}, err
	}
	return socket.SocketEvent{
		Event:   eventName,
		Payload: raw,
	}, nil
}
