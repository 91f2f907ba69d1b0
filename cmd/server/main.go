package main

import (
	"log"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"

	"github.com/telvora/customer-portal/internal/auth"
	"github.com/telvora/customer-portal/internal/config"
	"github.com/telvora/customer-portal/internal/database"
	"github.com/telvora/customer-portal/internal/handler"
	"github.com/telvora/customer-portal/internal/middleware"
	"github.com/telvora/customer-portal/internal/queue"
	"github.com/telvora/customer-portal/internal/repository"
	"github.com/telvora/customer-portal/internal/router"
	"github.com/telvora/customer-portal/internal/utils"
)

func main() {
	// Load .env when present; real deployments set the environment directly.
	_ = godotenv.Load()
	cfg := config.Load()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	// Redis is optional: a nil client disables rate limiting and the
	// profile cache but the service keeps working.
	rdb := config.NewRedisClient()
	if rdb == nil {
		log.Printf("redis unavailable; rate limiting and profile cache disabled")
	}

	accounts := repository.NewAccountRepo(db)
	sessions := repository.NewSessionRepo(db)
	codec := utils.NewTokenCodec(cfg.JWTSecret, cfg.AccessTTLMin, cfg.RefreshTTLDays)
	svc := auth.NewService(accounts, sessions, codec, cfg.BcryptCost)

	authH := handler.NewAuthHandler(svc)
	profileH := handler.NewProfileHandler(accounts, handler.NewRedisProfileCache(rdb))

	// Audit/notification consumer for auth.events; reconnects forever.
	go func() {
		if err := queue.StartAuthEventsConsumer(); err != nil {
			log.Printf("auth-consumer stopped: %v", err)
		}
	}()

	e := echo.New()
	router.RegisterRoutes(e)
	limiter := middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb)
	router.RegisterAuth(e, authH, profileH, cfg.JWTSecret, limiter)

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)

	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
