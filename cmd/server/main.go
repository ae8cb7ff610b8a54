package main // Entry point package

import (
	"log" // Logging library

	"github.com/labstack/echo/v4" // Echo web framework

	"github.com/adsloty/adsloty/internal/config"     // Internal config loader
	"github.com/adsloty/adsloty/internal/database"   // MySQL pool
	"github.com/adsloty/adsloty/internal/handler"    // HTTP handlers
	"github.com/adsloty/adsloty/internal/middleware" // Cache and rate-limit middleware
	"github.com/adsloty/adsloty/internal/notify"     // In-process notification center
	"github.com/adsloty/adsloty/internal/payment"    // Payment provider client
	"github.com/adsloty/adsloty/internal/queue"      // AMQP event consumer
	"github.com/adsloty/adsloty/internal/repository" // Data access layer
	"github.com/adsloty/adsloty/internal/router"     // Route registration
)

func main() {
	cfg := config.Load() // Load environment config

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	// Repositories share the one pool.
	users := repository.NewUserRepo(db)
	tokens := repository.NewTokenRepo(db)
	writers := repository.NewWriterRepo(db)
	sponsors := repository.NewSponsorRepo(db)
	bookings := repository.NewBookingRepo(db)
	blackouts := repository.NewBlackoutRepo(db)
	payouts := repository.NewPayoutRepo(db)

	// Payment client runs configured-off without credentials, which
	// keeps local development working end to end minus checkout.
	payments := payment.NewClient(payment.Config{
		APIKey:        cfg.PaymentAPIKey,
		StoreID:       cfg.PaymentStoreID,
		VariantID:     cfg.PaymentVariantID,
		SigningSecret: cfg.PaymentSigningSecret,
	})
	if !payments.Configured() {
		log.Println("payment provider not configured, checkout disabled")
	}

	// Notification center fed by the AMQP consumer; the consumer
	// reconnects on broker failure and the center is purely in-process.
	center := notify.NewCenter(notify.DefaultTTL)
	defer center.Close()
	go func() {
		if err := queue.StartConsumer(center); err != nil {
			log.Printf("event consumer stopped: %v", err)
		}
	}()

	wizards := handler.NewWizardStore()

	e := echo.New()
	router.RegisterRoutes(e)

	auth := handler.NewAuthHandler(cfg, users, tokens)
	notices := handler.NewNotificationHandler(center)
	router.RegisterAuth(e, auth, notices, cfg.JWTSecret)

	// Public surface gets the Redis response cache and rate limiter
	// when Redis is reachable; both middlewares no-op on a nil client.
	rdb := config.NewRedisClient()
	browse := handler.NewBrowseHandler(cfg, writers, bookings)
	widget := handler.NewWidgetHandler(&cfg, writers, bookings)
	router.RegisterPublic(e, browse, widget,
		middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb),
		middleware.NewRedisCache(config.LoadCacheConfig(), rdb),
	)

	writer := handler.NewWriterHandler(writers, sponsors, bookings, blackouts, payouts, users, payments)
	router.RegisterWriter(e, writer, cfg.JWTSecret)

	sponsor := handler.NewSponsorHandler(cfg, sponsors, writers, bookings, payments, wizards)
	router.RegisterSponsor(e, sponsor, cfg.JWTSecret)

	admin := handler.NewAdminHandler(&cfg, payouts, bookings, tokens, payments)
	router.RegisterAdmin(e, admin, handler.NewWebhookHandler(payments, bookings, writers, sponsors), cfg.JWTSecret)

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)
	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
