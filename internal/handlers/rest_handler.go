package handlers

import (
	"net/http"
	"strconv"

	"github.com/Qarib2004/reddit-sub000/internal/cache"
	"github.com/Qarib2004/reddit-sub000/internal/errs"
	"github.com/Qarib2004/reddit-sub000/internal/models"
	"github.com/Qarib2004/reddit-sub000/internal/msgs"
	"github.com/Qarib2004/reddit-sub000/internal/services"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// RestHandler serves the HTTP surface of the messaging core. Every message
// route shares the store and ordering rule with the websocket path, so both
// views of a conversation always agree.
type RestHandler struct {
	authService *services.AuthenticationService
	chatService *services.ChatService
	statusCache *cache.OnlineStatusCache
	logger      *zap.Logger
}

func NewRestHandler(
	authService *services.AuthenticationService,
	chatService *services.ChatService,
	statusCache *cache.OnlineStatusCache,
	logger *zap.Logger,
) *RestHandler {
	return &RestHandler{
		authService: authService,
		chatService: chatService,
		statusCache: statusCache,
		logger:      logger,
	}
}

// Register godoc
// @Summary      Create a new account
// @Accept       json
// @Produce      json
// @Success      200  {object}  models.Response
// @Failure      400  {object}  models.Response
// @Router       /register [post]
func (rh *RestHandler) Register(ctx *gin.Context) {
	var user models.User
	if err := ctx.BindJSON(&user); err != nil {
		rh.fail(ctx, http.StatusBadRequest, errs.ErrInvalidRequestBody)
		return
	}

	if _, registerErrs := rh.authService.Register(&user); len(registerErrs) > 0 {
		rh.failAll(ctx, http.StatusBadRequest, registerErrs)
		return
	}

	ctx.JSON(http.StatusOK, models.Response{
		Success: true,
		Message: msgs.MsgUserCreatedSuccessfully,
	})
}

// Login godoc
// @Summary      Login and receive a token
// @Accept       json
// @Produce      json
// @Success      200  {object}  models.Response
// @Failure      400  {object}  models.Response
// @Router       /login [post]
func (rh *RestHandler) Login(ctx *gin.Context) {
	var loginData models.LoginRequestBody
	if err := ctx.BindJSON(&loginData); err != nil {
		rh.logger.Debug("error binding login body", zap.Error(err))
		rh.fail(ctx, http.StatusBadRequest, errs.ErrInvalidRequestBody)
		return
	}

	loginResponse, loginErrs := rh.authService.Login(&loginData)
	if len(loginErrs) > 0 {
		rh.failAll(ctx, http.StatusBadRequest, loginErrs)
		return
	}

	ctx.JSON(http.StatusOK, models.Response{
		Success: true,
		Message: msgs.MsgOperationSuccessful,
		Data:    loginResponse,
	})
}

// GetUsers godoc
// @Summary      List users with their online flags
// @Produce      json
// @Success      200  {object}  models.Response
// @Router       /users [get]
func (rh *RestHandler) GetUsers(ctx *gin.Context) {
	page, size := rh.pagination(ctx)
	users, getErrs := rh.authService.GetAllUsersWithPagination(page, size)
	if len(getErrs) > 0 {
		rh.failAll(ctx, http.StatusBadRequest, getErrs)
		return
	}

	ctx.JSON(http.StatusOK, models.Response{
		Success: true,
		Message: msgs.MsgOperationSuccessful,
		Data:    users,
	})
}

// GetUserOnlineStatus godoc
// @Summary      Online flag and last-seen for one user
// @Produce      json
// @Success      200  {object}  models.Response
// @Router       /users/{userId}/status [get]
func (rh *RestHandler) GetUserOnlineStatus(ctx *gin.Context) {
	userId, ok := rh.uintParam(ctx, "userId", errs.ErrInvalidParams)
	if !ok {
		return
	}

	online, lastSeen, err := rh.statusCache.GetOnline(userId)
	if err != nil {
		// Cache miss or redis down; the db column is the fallback.
		rh.logger.Debug("online status cache miss", zap.Uint("user_id", userId), zap.Error(err))
		ctx.JSON(http.StatusOK, models.Response{
			Success: true,
			Message: msgs.MsgOperationSuccessful,
			Data:    gin.H{"user_id": userId, "is_online": false, "cached": false},
		})
		return
	}

	ctx.JSON(http.StatusOK, models.Response{
		Success: true,
		Message: msgs.MsgOperationSuccessful,
		Data:    gin.H{"user_id": userId, "is_online": online, "last_seen": lastSeen, "cached": true},
	})
}

// GetHistory godoc
// @Summary      Conversation history between the caller and a peer
// @Produce      json
// @Success      200  {object}  models.Response
// @Router       /messages/history/{userId}/{recipientId} [get]
func (rh *RestHandler) GetHistory(ctx *gin.Context) {
	userId, ok := rh.uintParam(ctx, "userId", errs.ErrInvalidSenderId)
	if !ok {
		return
	}
	recipientId, ok := rh.uintParam(ctx, "recipientId", errs.ErrInvalidRecipientId)
	if !ok {
		return
	}

	// Callers can only read conversations they are part of.
	if userId != ctx.GetUint("user_id") {
		rh.fail(ctx, http.StatusForbidden, errs.ErrUnauthorized)
		return
	}

	messages, getErrs := rh.chatService.GetConversation(userId, recipientId)
	if len(getErrs) > 0 {
		rh.failAll(ctx, http.StatusInternalServerError, getErrs)
		return
	}

	ctx.JSON(http.StatusOK, models.Response{
		Success: true,
		Message: msgs.MsgOperationSuccessful,
		Data: models.MessageListResponse{
			Messages: messages,
			Total:    int64(len(messages)),
		},
	})
}

// SendMessage godoc
// @Summary      Send a direct message
// @Accept       json
// @Produce      json
// @Success      200  {object}  models.Response
// @Failure      400  {object}  models.Response
// @Router       /messages/send [post]
func (rh *RestHandler) SendMessage(ctx *gin.Context) {
	var body models.SendMessageRequestBody
	if err := ctx.BindJSON(&body); err != nil {
		rh.fail(ctx, http.StatusBadRequest, errs.ErrInvalidRequestBody)
		return
	}

	// Sender identity comes from the verified token, never the body.
	senderId := ctx.GetUint("user_id")
	message, sendErrs := rh.chatService.SendMessage(senderId, body.RecipientID, body.Body)
	if len(sendErrs) > 0 {
		rh.failAll(ctx, http.StatusBadRequest, sendErrs)
		return
	}

	ctx.JSON(http.StatusOK, models.Response{
		Success: true,
		Message: msgs.MsgMessageSent,
		Data:    message,
	})
}

// GetUnreadCounts godoc
// @Summary      Unread message counts grouped by sender
// @Produce      json
// @Success      200  {object}  models.Response
// @Router       /messages/unread [get]
func (rh *RestHandler) GetUnreadCounts(ctx *gin.Context) {
	recipientId := ctx.GetUint("user_id")
	counts, countErrs := rh.chatService.UnreadCounts(recipientId)
	if len(countErrs) > 0 {
		rh.failAll(ctx, http.StatusInternalServerError, countErrs)
		return
	}

	ctx.JSON(http.StatusOK, models.Response{
		Success: true,
		Message: msgs.MsgOperationSuccessful,
		Data:    models.UnreadCountsResponse{Counts: counts},
	})
}

// MarkRead godoc
// @Summary      Mark all messages from a sender as read
// @Produce      json
// @Success      200  {object}  models.Response
// @Router       /messages/read/{senderId} [post]
func (rh *RestHandler) MarkRead(ctx *gin.Context) {
	senderId, ok := rh.uintParam(ctx, "senderId", errs.ErrInvalidSenderId)
	if !ok {
		return
	}

	recipientId := ctx.GetUint("user_id")
	if markErrs := rh.chatService.MarkRead(senderId, recipientId); len(markErrs) > 0 {
		rh.failAll(ctx, http.StatusInternalServerError, markErrs)
		return
	}

	ctx.JSON(http.StatusOK, models.Response{
		Success: true,
		Message: msgs.MsgMessagesMarkedAsRead,
	})
}

func (rh *RestHandler) pagination(ctx *gin.Context) (int, int) {
	page, err := strconv.Atoi(ctx.DefaultQuery("page", "1"))
	if err != nil {
		page = 1
	}
	size, err := strconv.Atoi(ctx.DefaultQuery("size", "20"))
	if err != nil {
		size = 20
	}
	return page, size
}

func (rh *RestHandler) uintParam(ctx *gin.Context, name string, invalid error) (uint, bool) {
	value, err := strconv.ParseUint(ctx.Param(name), 10, 32)
	if err != nil || value == 0 {
		rh.fail(ctx, http.StatusBadRequest, invalid)
		return 0, false
	}
	return uint(value), true
}

func (rh *RestHandler) fail(ctx *gin.Context, status int, err error) {
	rh.failAll(ctx, status, []error{err})
}

func (rh *RestHandler) failAll(ctx *gin.Context, status int, errors []error) {
	ctx.AbortWithStatusJSON(status, models.Response{
		Success: false,
		Message: msgs.MsgOperationFailed,
		Errors:  models.ErrorsToStrings(errors),
	})
}
