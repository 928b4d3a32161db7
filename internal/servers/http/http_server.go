package http

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/Qarib2004/reddit-sub000/configs"
	"github.com/Qarib2004/reddit-sub000/internal/handlers"
	"github.com/Qarib2004/reddit-sub000/internal/presence"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

type HttpServer struct {
	ctx           context.Context
	config        *configs.Config
	registry      *presence.Registry
	restHandler   *handlers.RestHandler
	socketHandler *handlers.SocketChatHandler
	router        *gin.Engine
	logger        *zap.Logger
}

func NewHttpServer(
	ctx context.Context,
	config *configs.Config,
	registry *presence.Registry,
	restHandler *handlers.RestHandler,
	socketHandler *handlers.SocketChatHandler,
	logger *zap.Logger,
) *HttpServer {
	return &HttpServer{
		ctx:           ctx,
		config:        config,
		registry:      registry,
		restHandler:   restHandler,
		socketHandler: socketHandler,
		logger:        logger,
	}
}

func (hs *HttpServer) Run() {
	hs.initializeGin()
	hs.setupRestfulRoutes()
	hs.setupWebSocketRoutes()

	server := hs.startServer()
	hs.waitForShutdown(server)
}

func (hs *HttpServer) initializeGin() {
	hs.router = gin.Default()
}

func (hs *HttpServer) setupRestfulRoutes() {
	hs.router.POST("/register", hs.restHandler.Register)
	hs.router.POST("/login", hs.restHandler.Login)
	hs.router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	authorized := hs.router.Group("/", hs.restHandler.MustAuthenticateMiddleware())
	authorized.GET("/users", hs.restHandler.GetUsers)
	authorized.GET("/users/:userId/status", hs.restHandler.GetUserOnlineStatus)
	authorized.GET("/messages/history/:userId/:recipientId", hs.restHandler.GetHistory)
	authorized.POST("/messages/send", hs.restHandler.SendMessage)
	authorized.GET("/messages/unread", hs.restHandler.GetUnreadCounts)
	authorized.POST("/messages/read/:senderId", hs.restHandler.MarkRead)
}

func (hs *HttpServer) setupWebSocketRoutes() {
	hs.router.GET("/ws/chat", hs.socketHandler.HandleSocketChatRoute)
}

func (hs *HttpServer) startServer() *http.Server {
	addr := hs.config.Viper.GetString("server.address")
	server := &http.Server{
		Addr:    addr,
		Handler: hs.router,
	}

	go func() {
		hs.logger.Info("HTTP server started", zap.String("addr", addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			hs.logger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	return server
}

func (hs *HttpServer) waitForShutdown(server *http.Server) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	hs.logger.Info("Shutting down server...")

	if err := server.Shutdown(hs.ctx); err != nil {
		hs.logger.Fatal("Server forced to shutdown", zap.Error(err))
	}

	// Presence is not durable; dropping every connection here is enough,
	// clients re-register on reconnect.
	hs.registry.CloseAll()

	hs.logger.Info("Server exiting")
}
