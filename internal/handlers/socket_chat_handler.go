package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/Qarib2004/reddit-sub000/internal/enums"
	"github.com/Qarib2004/reddit-sub000/internal/errs"
	"github.com/Qarib2004/reddit-sub000/internal/models"
	"github.com/Qarib2004/reddit-sub000/internal/models/socket"
	"github.com/Qarib2004/reddit-sub000/internal/msgs"
	"github.com/Qarib2004/reddit-sub000/internal/presence"
	"github.com/Qarib2004/reddit-sub000/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// SessionAuthenticator is the slice of the authentication service the
// session handler needs: token verification plus the durable online flag.
type SessionAuthenticator interface {
	VerifyToken(token string) (*models.Claims, error)
	SetUserOnlineStatus(userId uint, online bool) (bool, *time.Time, error)
}

// StatusMirror mirrors presence transitions into the cache layer.
type StatusMirror interface {
	SetOnline(userId uint, online bool, lastSeen time.Time) error
}

// SocketChatHandler runs the lifecycle of one chat connection: authenticate,
// upgrade, register presence on the client's announcement, serve history and
// send requests, and unregister on teardown.
type SocketChatHandler struct {
	ctx         context.Context
	upgrader    websocket.Upgrader
	registry    *presence.Registry
	chatService *services.ChatService
	authService SessionAuthenticator
	statusCache StatusMirror
	logger      *zap.Logger
}

func NewSocketChatHandler(
	ctx context.Context,
	registry *presence.Registry,
	chatService *services.ChatService,
	authService SessionAuthenticator,
	statusCache StatusMirror,
	logger *zap.Logger,
) *SocketChatHandler {
	return &SocketChatHandler{
		ctx:         ctx,
		registry:    registry,
		chatService: chatService,
		authService: authService,
		statusCache: statusCache,
		logger:      logger,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
	}
}

func (sch *SocketChatHandler) HandleSocketChatRoute(ctx *gin.Context) {
	jwtToken := ctx.Request.Header.Get("Authorization")
	if jwtToken == "" {
		// Browsers cannot set headers on websocket dials.
		jwtToken = ctx.Query("token")
	}
	if jwtToken == "" {
		ctx.AbortWithStatusJSON(http.StatusUnauthorized, models.Response{
			Success: false,
			Message: msgs.MsgOperationFailed,
			Errors:  models.ErrorsToStrings([]error{errs.ErrUnauthorized}),
		})
		return
	}

	userInfo, err := sch.authService.VerifyToken(jwtToken)
	if err != nil || userInfo.ID == 0 {
		ctx.AbortWithStatusJSON(http.StatusUnauthorized, models.Response{
			Success: false,
			Message: msgs.MsgOperationFailed,
			Errors:  models.ErrorsToStrings([]error{errs.ErrUnauthorized}),
		})
		return
	}

	sch.handleConnection(ctx, userInfo)
}

func (sch *SocketChatHandler) handleConnection(ctx *gin.Context, userInfo *models.Claims) {
	ws, err := sch.upgrader.Upgrade(ctx.Writer, ctx.Request, nil)
	if err != nil {
		sch.logger.Warn("failed to upgrade connection", zap.Error(err))
		return
	}

	client := models.NewSocketClient(userInfo.ID, ws)
	defer sch.teardownConnection(userInfo.ID, ws)

	sch.readLoop(ws, client, userInfo)
}

// teardownConnection unwinds one connection. Unregister matches on the
// handle, so when the user has already reconnected on a newer connection
// this is a no-op: the registry keeps the new entry and the offline flag
// must not be mirrored either, or the db and cache would contradict the
// live presence set.
func (sch *SocketChatHandler) teardownConnection(userId uint, conn models.SocketConn) {
	if removed := sch.registry.Unregister(userId, conn); removed {
		sch.setOnlineStatus(userId, false)
	}
	if err := conn.Close(); err != nil {
		sch.logger.Debug("error closing connection", zap.Error(err))
	}
}

func (sch *SocketChatHandler) readLoop(ws *websocket.Conn, client *models.SocketClient, userInfo *models.Claims) {
	for {
		var event socket.SocketEvent
		if err := ws.ReadJSON(&event); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				sch.logger.Warn("connection dropped", zap.Uint("user_id", userInfo.ID), zap.Error(err))
			}
			return
		}

		switch event.Event {
		case enums.SOCKET_EVENT_COME_ONLINE, enums.SOCKET_EVENT_JOIN_CHAT:
			// Two wire names, one effect: both converge on the same
			// registry state.
			sch.handlePresenceEvent(userInfo.ID, client)
		case enums.SOCKET_EVENT_REQUEST_HISTORY:
			sch.handleRequestHistoryEvent(event.Payload, userInfo.ID, client)
		case enums.SOCKET_EVENT_SEND_MESSAGE:
			sch.handleSendMessageEvent(event.Payload, userInfo.ID, client)
		default:
			sch.logger.Debug("unknown event", zap.String("event", event.Event))
		}
	}
}

func (sch *SocketChatHandler) handlePresenceEvent(userId uint, client *models.SocketClient) {
	// The payload's user id is advisory only; presence is keyed on the
	// authenticated identity.
	sch.registry.Register(userId, client)
	sch.setOnlineStatus(userId, true)
}

func (sch *SocketChatHandler) handleRequestHistoryEvent(payload json.RawMessage, userId uint, client *models.SocketClient) {
	var request socket.RequestHistoryPayload
	if err := json.Unmarshal(payload, &request); err != nil {
		sch.logger.Warn("invalid history request", zap.Error(err))
		return
	}

	// The authenticated id wins over whatever the payload claims.
	messages, getErrs := sch.chatService.GetConversation(userId, request.RecipientId)
	if len(getErrs) > 0 {
		sch.logger.Error("failed to load history",
			zap.Uint("user_id", userId), zap.Uint("recipient_id", request.RecipientId),
			zap.Errors("errors", getErrs))
		return
	}

	// History goes only to the requesting connection, never broadcast.
	sch.writeEvent(client, enums.SOCKET_EVENT_HISTORY, models.MessageListResponse{
		Messages: messages,
		Total:    int64(len(messages)),
	})
}

func (sch *SocketChatHandler) handleSendMessageEvent(payload json.RawMessage, userId uint, client *models.SocketClient) {
	var request socket.SendMessagePayload
	if err := json.Unmarshal(payload, &request); err != nil {
		sch.writeSendFailed(client, 0, []error{errs.ErrInvalidRequest})
		return
	}

	// A failed send never tears down the session; the sender gets an
	// explicit failure event instead.
	if _, sendErrs := sch.chatService.SendMessage(userId, request.RecipientId, request.Body); len(sendErrs) > 0 {
		sch.logger.Warn("send rejected",
			zap.Uint("sender_id", userId), zap.Uint("recipient_id", request.RecipientId),
			zap.Errors("errors", sendErrs))
		sch.writeSendFailed(client, request.RecipientId, sendErrs)
	}
}

func (sch *SocketChatHandler) writeSendFailed(client *models.SocketClient, recipientId uint, reasons []error) {
	sch.writeEvent(client, enums.SOCKET_EVENT_SEND_FAILED, socket.SendFailedPayload{
		RecipientId: recipientId,
		Reasons:     models.ErrorsToStrings(reasons),
	})
}

func (sch *SocketChatHandler) writeEvent(client *models.SocketClient, eventName string, payload interface{}) {
	raw, err := json.Marshal(payload)
	if err != nil {
		sch.logger.Error("failed to marshal event payload", zap.String("event", eventName), zap.Error(err))
		return
	}
	if err := client.WriteEvent(socket.SocketEvent{Event: eventName, Payload: raw}); err != nil {
		sch.logger.Warn("write to client failed", zap.Uint("user_id", client.UserId), zap.Error(err))
	}
}

func (sch *SocketChatHandler) setOnlineStatus(userId uint, online bool) {
	_, lastSeen, err := sch.authService.SetUserOnlineStatus(userId, online)
	if err != nil {
		sch.logger.Error("failed to update online status", zap.Uint("user_id", userId), zap.Error(err))
		return
	}
	if err := sch.statusCache.SetOnline(userId, online, *lastSeen); err != nil {
		sch.logger.Warn("failed to mirror online status to cache", zap.Uint("user_id", userId), zap.Error(err))
	}
}
