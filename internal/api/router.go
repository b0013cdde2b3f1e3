package api

import (
	"time"

	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/chatgrid/chat-service/internal/api/handler"
	"github.com/chatgrid/chat-service/internal/api/middleware"
	"github.com/chatgrid/chat-service/internal/core/service"
	"github.com/chatgrid/chat-service/internal/core/token"
	mongodb "github.com/chatgrid/chat-service/internal/infrastructure/db/mongo"
	redisdb "github.com/chatgrid/chat-service/internal/infrastructure/db/redis"
	"github.com/chatgrid/chat-service/internal/infrastructure/queue"
)

// RouterConfig carries the settings the router needs beyond its connections.
type RouterConfig struct {
	// SessionKey is the raw 32-byte session encryption key.
	SessionKey []byte
	// TokenTTL bounds session lifetime; zero selects the service default.
	TokenTTL time.Duration
	// ActivityWorkers sizes the activity dispatcher pool.
	ActivityWorkers int
}

// NewRouter builds the Echo instance with all routes registered, plus the
// activity dispatcher, which the caller must Start.
func NewRouter(db *mongo.Database, rdb *redis.Client, cfg RouterConfig, log zerolog.Logger) (*echo.Echo, *queue.Dispatcher, error) {
	e := echo.New()
	e.HideBanner = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(log)

	// --- Repositories ---
	users := mongodb.NewUserRepository(db)
	chats := mongodb.NewChatRepository(db)
	messages := mongodb.NewMessageRepository(db)

	// --- Core services ---
	codec, err := token.NewCodec(cfg.SessionKey)
	if err != nil {
		return nil, nil, err
	}
	tokens := service.NewTokenService(codec, cfg.TokenTTL)
	resolver := service.NewPrincipalResolver(users)
	authService := service.NewAuthService(users)
	chatService := service.NewChatService(chats, users, messages, log)

	activityService := service.NewActivityService(chats, log)
	dispatcher := queue.NewDispatcher(cfg.ActivityWorkers, activityService, log)
	dedup := redisdb.NewDedupChecker(rdb)
	messageService := service.NewMessageService(messages, chats, dedup, dispatcher, log)

	// --- Handlers ---
	authHandler := handler.NewAuthHandler(authService, tokens)
	chatHandler := handler.NewChatHandler(chatService)
	messageHandler := handler.NewMessageHandler(messageService)
	healthHandler := handler.NewHealthHandler(db, rdb)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(echomiddleware.Logger())
	e.Use(echoprometheus.NewMiddleware("chat"))
	e.Use(middleware.Session(tokens, resolver, log))

	// --- Probes and metrics (no auth required) ---
	e.GET("/health", healthHandler.Liveness)
	e.GET("/health/ready", healthHandler.Readiness)
	e.GET("/metrics", echoprometheus.NewHandler())

	// --- User routes ---
	user := e.Group("/api/user")
	user.POST("/registration", authHandler.Register)
	user.POST("/login", authHandler.Login)
	user.POST("/logout", authHandler.Logout)
	user.GET("/:id", authHandler.GetUser, middleware.RequireAuth())

	// --- Chat routes ---
	chat := e.Group("/api/chat", middleware.RequireAuth())
	chat.POST("", chatHandler.Create)
	chat.GET("/:id", chatHandler.Get)
	chat.PUT("/edit", chatHandler.Rename)
	chat.DELETE("", chatHandler.Delete)
	chat.PUT("", chatHandler.AddMember)
	chat.DELETE("/user", chatHandler.RemoveMember)
	chat.PUT("/role", chatHandler.ReassignRole)

	// --- Message routes ---
	message := e.Group("/api/message", middleware.RequireAuth())
	message.POST("", messageHandler.Post)
	message.GET("/:id", messageHandler.Get)
	message.PUT("", messageHandler.Edit)
	message.DELETE("", messageHandler.Delete)

	return e, dispatcher, nil
}
