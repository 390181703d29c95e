package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-redis/redis/v8"
	"github.com/joho/godotenv"
	"github.com/uptrace/bun"

	"ms-seating/internal/analytics"
	analytics_api "ms-seating/internal/analytics/api"
	"ms-seating/internal/auth"
	"ms-seating/internal/backup"
	"ms-seating/internal/backup/backup_api"
	"ms-seating/internal/booking"
	"ms-seating/internal/booking/booking_api"
	booking_db "ms-seating/internal/booking/db"
	"ms-seating/internal/booking/lock"
	"ms-seating/internal/config"
	"ms-seating/internal/database"
	"ms-seating/internal/kafka"
	"ms-seating/internal/logger"
	"ms-seating/internal/members"
	member_db "ms-seating/internal/members/db"
	"ms-seating/internal/members/member_api"
	"ms-seating/internal/models"
	"ms-seating/internal/pass"
	"ms-seating/internal/settings"
	settings_db "ms-seating/internal/settings/db"
	"ms-seating/internal/settings/settings_api"
	"ms-seating/internal/sse"
	"ms-seating/internal/utils"
)

type publisher interface {
	Publish(ctx context.Context, event models.ChangeEvent) error
	Close() error
}

// newLocker uses Redis when an address is configured so several instances
// share seat locks; a single instance falls back to in-process locks.
func newLocker(ctx context.Context, cfg config.RedisConfig, log *logger.Logger) (lock.Locker, func()) {
	if cfg.Addr == "" {
		log.Info("REDIS", "REDIS_ADDR not set, using in-process seat locks")
		return lock.NewLocal(), func() {}
	}

	client := redis.NewClient(&redis.Options{Addr: cfg.Addr})
	if err := client.Ping(ctx).Err(); err != nil {
		log.Fatal("REDIS", fmt.Sprintf("Redis connection error: %v", err))
	}
	log.Info("REDIS", fmt.Sprintf("✅ Redis connection successful to %s (DB: %d)", cfg.Addr, client.Options().DB))
	return lock.NewRedis(client, cfg.LockTTL, log), func() { client.Close() }
}

func newPublisher(ctx context.Context, cfg config.KafkaConfig, log *logger.Logger) publisher {
	if !cfg.Enabled {
		log.Info("KAFKA", "Kafka disabled, change events stay local")
		return kafka.Noop{}
	}

	log.Info("KAFKA", fmt.Sprintf("Using Kafka brokers %v", cfg.Brokers))
	if err := kafka.EnsureTopicsExist(ctx, cfg.Brokers, kafka.Topics(), log); err != nil {
		log.Warn("KAFKA", fmt.Sprintf("Topic creation might have failed: %v", err))
	} else {
		log.Info("KAFKA", "Required topics ensured successfully")
	}
	return kafka.NewProducer(cfg.Brokers, log)
}

func healthHandler(bunDB *bun.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := bunDB.PingContext(r.Context()); err != nil {
			utils.WriteJSON(w, http.StatusServiceUnavailable, utils.ErrorResponse("Database unavailable", err.Error()))
			return
		}
		utils.WriteSuccess(w, http.StatusOK, "ok", nil)
	}
}

func main() {
	if err := godotenv.Load(); err != nil {
		fmt.Println("⚠️ .env file not found, using environment variables")
	}
	cfg := config.Load()

	logger := logger.NewLogger(cfg.LogDir)
	defer logger.Close()

	logger.Info("APP", "Starting Seating Service initialization")
	ctx := context.Background()
	loc := cfg.Facility.Location()

	bunDB, err := database.Open(ctx, cfg.Database, logger)
	if err != nil {
		logger.Fatal("DATABASE", err.Error())
	}
	defer bunDB.Close()
	logger.Info("DATABASE", "✅ Database connection successful")

	if err := prepareSchema(ctx, bunDB, cfg.Database, logger); err != nil {
		logger.Fatal("MIGRATE", err.Error())
	}

	locker, closeLocker := newLocker(ctx, cfg.Redis, logger)
	defer closeLocker()

	producer := newPublisher(ctx, cfg.Kafka, logger)
	defer producer.Close()

	emitter := sse.NewChangeEmitter()

	bookingDB := &booking_db.DB{Bun: bunDB}

	settingsService := settings.NewSettingsService(&settings_db.DB{Bun: bunDB}, logger)
	settingsService.Publisher = producer
	settingsService.Notifier = emitter
	if _, err := settingsService.GetSettings(ctx); err != nil {
		logger.Fatal("SETTINGS", fmt.Sprintf("Failed to load settings: %v", err))
	}

	memberService := members.NewMemberService(&member_db.DB{Bun: bunDB}, bookingDB, logger)
	memberService.Publisher = producer
	memberService.Notifier = emitter

	bookingService := booking.NewBookingService(bookingDB, memberService, settingsService, locker, logger)
	bookingService.LockOptions = lock.Options{Retries: cfg.Redis.LockRetries, RetryDelay: cfg.Redis.RetryDelay}
	bookingService.Publisher = producer
	bookingService.Notifier = emitter
	bookingService.Location = loc
	bookingService.HourlyRate = cfg.Facility.DefaultHourlyRate

	analyticsService := analytics.NewService(analytics.NewDB(bunDB), settingsService, logger)
	analyticsService.Location = loc
	analyticsService.FirstHour = cfg.Facility.TimelineStartHour
	analyticsService.LastHour = cfg.Facility.TimelineEndHour

	backupService := backup.NewService(bunDB, logger)
	backupService.Publisher = producer
	backupService.Notifier = emitter

	verifier, err := auth.NewVerifier(ctx, cfg.Auth)
	if err != nil {
		logger.Fatal("AUTH", err.Error())
	}
	if verifier == nil {
		logger.Warn("AUTH", "No issuer or secret configured, API is open")
	}

	logger.Info("HTTP", "Setting up router and middleware")
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	// --- Public Routes ---
	r.Get("/health", healthHandler(bunDB))

	// --- Protected Routes ---
	r.Group(func(r chi.Router) {
		r.Use(auth.Middleware(verifier, logger))

		r.Route("/api", func(r chi.Router) {
			booking_api.NewHandler(bookingService, pass.NewGenerator(cfg.Pass.Secret), logger).RegisterRoutes(r)
			logger.Info("ROUTER", "Booking routes registered under /api/bookings")

			member_api.NewHandler(memberService, logger).RegisterRoutes(r)
			logger.Info("ROUTER", "Member routes registered under /api/members")

			settings_api.NewHandler(settingsService, logger).RegisterRoutes(r)
			analytics_api.NewHandler(analyticsService, logger).RegisterRoutes(r)
			backup_api.NewHandler(backupService, logger).RegisterRoutes(r)
			logger.Info("ROUTER", "Settings, analytics and backup routes registered under /api")

			r.Handle("/stream", sse.NewStreamHandler(emitter, logger))
		})
	})

	server := &http.Server{
		Addr:         cfg.Server.Port,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: 0, // the change stream is long-lived
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		logger.Info("HTTP", fmt.Sprintf("🚀 Seating Service running on %s", cfg.Server.Port))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("HTTP", fmt.Sprintf("HTTP server error: %v", err))
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	logger.Info("APP", "Service started successfully, waiting for shutdown signal")
	<-stop

	logger.Info("APP", "Shutdown signal received, initiating graceful shutdown")
	ctxShutdown, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := server.Shutdown(ctxShutdown); err != nil {
		logger.Error("HTTP", fmt.Sprintf("Server Shutdown Failed: %v", err))
	} else {
		logger.Info("HTTP", "✅ Seating Service shutdown complete")
	}
}
