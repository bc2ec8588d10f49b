package main

import (
	"context"
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"

	"github.com/trappazoid/booking-backend/internal/config"
	"github.com/trappazoid/booking-backend/internal/database"
	"github.com/trappazoid/booking-backend/internal/handler"
	"github.com/trappazoid/booking-backend/internal/middleware"
	"github.com/trappazoid/booking-backend/internal/model"
	"github.com/trappazoid/booking-backend/internal/payment"
	"github.com/trappazoid/booking-backend/internal/queue"
	"github.com/trappazoid/booking-backend/internal/repository"
	"github.com/trappazoid/booking-backend/internal/reservation"
	"github.com/trappazoid/booking-backend/internal/router"
	queue_publisher "github.com/trappazoid/booking-backend/internal/service"
)

func main() {
	// .env is optional; in deployment everything comes from the real env.
	_ = godotenv.Load()
	cfg := config.Load()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	users := repository.NewUserRepo(db)
	tokens := repository.NewTokenRepo(db)
	events := repository.NewEventRepo(db)
	seats := repository.NewSeatRepo(db)
	bookings := repository.NewBookingRepo(db)

	bootstrapAdmin(cfg, users)

	engine := reservation.NewCoordinator(seats, payment.NewFixedCode(cfg.SettlementCode))

	authH := handler.NewAuthHandler(users, tokens, cfg)
	eventH := handler.NewEventHandler(events)
	seatH := handler.NewSeatHandler(engine, bookings, events, queue_publisher.PublishBookingConfirmed)

	// Redis backs the rate limiter and the catalog cache. Both degrade
	// gracefully when it is unreachable: limits fail open, reads go uncached.
	rdb := config.NewRedisClient()
	var rateMW, cacheMW echo.MiddlewareFunc
	if rdb != nil {
		if rl := config.LoadRateLimitConfig(); rl.Enabled {
			rateMW = middleware.NewTokenBucket(rl, rdb)
		}
		if cc := config.LoadCacheConfig(); cc.Enabled {
			cacheMW = middleware.NewRedisCache(cc, rdb)
		}
	}

	go func() {
		if err := queue.StartBookingConsumer(); err != nil {
			log.Printf("booking consumer stopped: %v", err)
		}
	}()

	e := echo.New()
	e.HideBanner = true
	router.RegisterRoutes(e)
	router.RegisterAuth(e, authH, cfg.JWTSecret)
	router.RegisterCatalog(e, eventH, cacheMW)
	router.RegisterSeats(e, seatH, cfg.JWTSecret, rateMW)
	router.RegisterAdmin(e, eventH, cfg.JWTSecret)

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)
	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}

// bootstrapAdmin creates the admin account named by ADMIN_EMAIL and
// ADMIN_PASSWORD when both are set and the account does not exist yet.
func bootstrapAdmin(cfg config.Config, users *repository.UserRepo) {
	if cfg.AdminEmail == "" || cfg.AdminPassword == "" {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if _, err := users.GetByEmail(ctx, cfg.AdminEmail); err == nil {
		return
	}
	if _, err := users.Create(ctx, "admin", cfg.AdminEmail, cfg.AdminPassword, model.RoleAdmin, cfg.BcryptCost); err != nil {
		log.Printf("admin bootstrap failed: %v", err)
		return
	}
	log.Printf("admin account created for %s", cfg.AdminEmail)
}
