package main

import (
	"database/sql"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill-redisstream/pkg/redisstream"
	"github.com/redis/go-redis/v9"

	"github.com/signet-labs/signet/adapters/events"
	"github.com/signet-labs/signet/adapters/store"
	"github.com/signet-labs/signet/adapters/tokenizer"
	"github.com/signet-labs/signet/internal/config"
	"github.com/signet-labs/signet/internal/logging"
	"github.com/signet-labs/signet/ports"
	"github.com/signet-labs/signet/service"
	"github.com/signet-labs/signet/transport/http"
)

func main() {
	logger := logging.New("signet")
	cfg := config.Load(logger)

	if cfg.AccessSecret == "" || cfg.RefreshSecret == "" {
		logger.Fatal("ACCESS_TOKEN_SECRET and REFRESH_TOKEN_SECRET are required")
	}
	if cfg.AccessSecret == cfg.RefreshSecret {
		logger.Fatal("Access and refresh secrets must differ")
	}

	var users ports.UserStore
	if cfg.DatabaseURL != "" {
		db, err := sql.Open("postgres", cfg.DatabaseURL)
		if err != nil {
			logger.WithError(err).Fatal("Failed to open database")
		}
		if err := db.Ping(); err != nil {
			logger.WithError(err).Fatal("Failed to ping database")
		}
		users = store.NewPostgresUserStore(db)
		logger.Info("Using Postgres user store")
	} else {
		users = store.NewMemoryUserStore()
		logger.Warn("DATABASE_URL not set; using in-memory user store")
	}

	var tokens ports.TokenStore
	var eventPub ports.EventPublisher
	if cfg.RedisURL != "" {
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			logger.WithError(err).Fatal("Failed to parse Redis URL")
		}
		redisClient := redis.NewClient(opts)
		tokens = store.NewRedisTokenStore(redisClient)

		publisher, err := redisstream.NewPublisher(
			redisstream.PublisherConfig{Client: redisClient},
			watermill.NewStdLogger(false, false),
		)
		if err != nil {
			logger.WithError(err).Fatal("Failed to create Redis publisher")
		}
		eventPub = events.NewWatermillPublisher(publisher)
		logger.Info("Using Redis token store and event stream")
	} else {
		tokens = store.NewMemoryTokenStore()
		logger.Warn("REDIS_URL not set; using in-memory token store, events disabled")
	}

	jwtTokenizer := tokenizer.NewJWTTokenizer([]byte(cfg.AccessSecret), []byte(cfg.RefreshSecret))

	authService := service.NewAuthService(jwtTokenizer, users, tokens, eventPub, logger)
	authService.SetTTLs(cfg.ChallengeWindow, cfg.AccessTTL, cfg.RefreshTTL)

	router := http.SetupRouter(authService, logger)

	logger.WithField("port", cfg.Port).Info("Starting server")
	if err := router.Run(":" + cfg.Port); err != nil {
		logger.WithError(err).Fatal("Server exited")
	}
}
