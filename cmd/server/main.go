package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/sessions"
	redisStore "github.com/gin-contrib/sessions/redis"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"

	"github.com/yukikurage/tracker-api/internal/cache"
	"github.com/yukikurage/tracker-api/internal/config"
	"github.com/yukikurage/tracker-api/internal/constants"
	"github.com/yukikurage/tracker-api/internal/database"
	"github.com/yukikurage/tracker-api/internal/handlers"
	"github.com/yukikurage/tracker-api/internal/logging"
	"github.com/yukikurage/tracker-api/internal/repository"
	"github.com/yukikurage/tracker-api/internal/services"
)

func main() {
	// Load configuration
	cfg := config.Load()
	logging.Setup(cfg.LogLevel, cfg.IsProduction())

	// Set Gin mode
	gin.SetMode(cfg.GinMode)

	// Connect to database
	db, err := database.Connect(cfg)
	if err != nil {
		log.WithError(err).Fatal("failed to connect to database")
	}

	// Run migrations
	if err := database.Migrate(db); err != nil {
		log.WithError(err).Fatal("failed to run migrations")
	}

	// Redis backs the board list cache
	redisClient := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr()})
	defer redisClient.Close()
	if err := redisClient.Ping(context.Background()).Err(); err != nil {
		log.WithError(err).Warn("redis unreachable, board cache falls back to the database")
	}

	// Repositories
	userRepo := repository.NewUserRepository(db)
	connRepo := repository.NewConnectionRepository(db)
	boardRepo := cache.NewBoardCache(repository.NewBoardRepository(db), redisClient, cfg.BoardCacheTTL)
	sectionRepo := repository.NewSectionRepository(db)
	taskRepo := repository.NewTaskRepository(db)
	memberRepo := repository.NewBoardMemberRepository(db)

	// Services
	authService := services.NewAuthService(userRepo)
	boardService := services.NewBoardService(boardRepo, sectionRepo)
	taskService := services.NewTaskService(taskRepo, boardRepo, sectionRepo)
	timerService := services.NewTimerService(taskRepo)
	sharingService := services.NewSharingService(boardRepo, memberRepo, connRepo)
	connectionService := services.NewConnectionService(userRepo, connRepo)

	var suggestionService *services.SuggestionService
	if client := services.NewOpenAIClient(cfg.OpenAIAPIKey); client != nil {
		suggestionService = services.NewSuggestionService(client, boardRepo)
	}

	// Initialize Gin router
	r := gin.New()
	r.Use(gin.Recovery(), logging.RequestLogger())

	// Setup session middleware with Redis
	store, err := redisStore.NewStore(
		10,                        // Redis pool size
		"tcp",                     // network type
		cfg.RedisAddr(),           // Redis address from config
		"",                        // username (empty for default user)
		"",                        // password (empty = no password)
		[]byte(cfg.SessionSecret), // authentication key
	)
	if err != nil {
		log.WithError(err).Fatal("failed to create redis session store")
	}
	store.Options(sessions.Options{
		Path:     "/",
		MaxAge:   constants.SessionMaxAge,
		HttpOnly: true,
		Secure:   cfg.IsProduction(),
		SameSite: http.SameSiteLaxMode,
	})
	r.Use(sessions.Sessions(constants.SessionCookieName, store))

	handlers.RegisterRoutes(r, handlers.Handlers{
		Auth:       handlers.NewAuthHandler(authService),
		Boards:     handlers.NewBoardHandler(boardService),
		Tasks:      handlers.NewTaskHandler(taskService, suggestionService),
		Timers:     handlers.NewTimerHandler(timerService, cfg.TimerPollInterval),
		Sharing:    handlers.NewSharingHandler(sharingService),
		Connection: handlers.NewConnectionHandler(connectionService),
	})

	server := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: r,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			log.WithError(err).Warn("graceful shutdown failed")
		}
	}()

	// Start server
	log.WithField("port", cfg.Port).Info("server starting")
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.WithError(err).Fatal("failed to start server")
	}
	log.Info("server stopped")
}
