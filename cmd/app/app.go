package app

import (
	"context"
	"sync"

	"github.com/Qarib2004/reddit-sub000/configs"
	"github.com/Qarib2004/reddit-sub000/internal/cache"
	"github.com/Qarib2004/reddit-sub000/internal/handlers"
	"github.com/Qarib2004/reddit-sub000/internal/metrics"
	"github.com/Qarib2004/reddit-sub000/internal/presence"
	"github.com/Qarib2004/reddit-sub000/internal/repositories"
	"github.com/Qarib2004/reddit-sub000/internal/servers/database"
	"github.com/Qarib2004/reddit-sub000/internal/servers/http"
	"github.com/Qarib2004/reddit-sub000/internal/services"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

var (
	app  *App
	once sync.Once
)

type App struct {
	ctx     context.Context
	redis   *redis.Client
	configs *configs.Config
	logger  *zap.Logger
}

func GetApp() *App {
	once.Do(func() {
		app = &App{}
	})
	return app
}

func (app *App) LetsGo() {
	app.ctx = context.Background()
	app.logger, _ = zap.NewProduction()
	defer app.logger.Sync()

	app.configs = configs.GetConfig()
	app.initializeRedis()
	metrics.Register()

	db := database.GetDB(app.configs)

	authRepo := repositories.NewAuthenticationRepository(db)
	authService := services.NewAuthenticationService(authRepo, app.configs)

	messageRepo := repositories.NewMessageRepository(db)
	registry := presence.NewRegistry(app.logger)
	chatService := services.NewChatService(messageRepo, authService, registry, app.logger)

	statusCache := cache.NewOnlineStatusCache(app.redis, app.ctx)

	restHandler := handlers.NewRestHandler(authService, chatService, statusCache, app.logger)
	socketChatHandler := handlers.NewSocketChatHandler(
		app.ctx,
		registry,
		chatService,
		authService,
		statusCache,
		app.logger,
	)

	http.NewHttpServer(
		app.ctx,
		app.configs,
		registry,
		restHandler,
		socketChatHandler,
		app.logger,
	).Run()
}

func (app *App) initializeRedis() {
	app.redis = redis.NewClient(&redis.Options{
		Addr: app.configs.Viper.GetString("redis.address"),
	})
}
