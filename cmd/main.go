package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	"github.com/reckon/reckon-api/internal/api"
	"github.com/reckon/reckon-api/internal/app"
	"github.com/reckon/reckon-api/internal/config"
	"github.com/reckon/reckon-api/internal/store"
	"github.com/reckon/reckon-api/pkg/mailer"
	"github.com/reckon/reckon-api/pkg/rabbitmq"
	"github.com/reckon/reckon-api/pkg/transcriber"
)

func main() {
	// Load .env file for local development. In production, env vars are set directly.
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("cannot load config: %v", err)
	}

	// Establish database connection pool.
	dbConfig, err := pgxpool.ParseConfig(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Unable to parse database URL: %v\n", err)
	}
	dbConfig.MaxConns = 10
	dbConfig.MinConns = 2
	dbConfig.MaxConnLifetime = 30 * time.Minute
	dbConfig.MaxConnIdleTime = 5 * time.Minute
	dbConfig.ConnConfig.DefaultQueryExecMode = pgx.QueryExecModeSimpleProtocol

	dbpool, err := pgxpool.NewWithConfig(context.Background(), dbConfig)
	if err != nil {
		log.Fatalf("Unable to connect to database: %v\n", err)
	}
	defer dbpool.Close()
	log.Println("Database connection established")

	if err := store.EnsureSchema(context.Background(), dbpool); err != nil {
		log.Printf("Warning: failed ensuring tables (may already exist): %v", err)
	}

	// Redis backs the OTP issuance rate limiter; the service runs without it.
	var limiter app.RateLimiter
	if cfg.RedisURL != "" {
		redisOpts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			log.Printf("WARNING: Invalid REDIS_URL: %v. Continuing without rate limiting.", err)
		} else {
			limiter = app.NewRedisRateLimiter(redis.NewClient(redisOpts), "reckon:rate_limit")
			log.Println("Redis rate limiter connected")
		}
	}

	// RabbitMQ producer is best-effort; allow nil on failure.
	var producer app.EventPublisher
	if cfg.RabbitMQURL != "" {
		if p, err := rabbitmq.NewEventProducer(cfg.RabbitMQURL); err != nil {
			log.Printf("WARNING: Failed to connect to RabbitMQ at startup: %v. Continuing without MQ.", err)
		} else {
			producer = p
			defer p.Close()
			log.Println("RabbitMQ producer connected")
		}
	}

	userRepo := store.NewPostgresUserRepository(dbpool)
	codeRepo := store.NewPostgresCodeRepository(dbpool)
	entryRepo := store.NewPostgresEntryRepository(dbpool)

	// Sweep codes that aged out before this boot, then keep sweeping on a
	// schedule so a long-lived process doesn't accumulate dead rows.
	if removed, err := codeRepo.DeleteExpired(context.Background(), cfg.OTPTTL()); err != nil {
		log.Printf("level=warn component=main msg=\"expired-code sweep failed\" err=%v", err)
	} else if removed > 0 {
		log.Printf("removed %d expired verification codes", removed)
	}
	sweeper := app.NewCodeSweeper(codeRepo, cfg.OTPTTL(), cfg.OTPSweepSchedule)
	sweeper.Start()

	var sender app.Sender
	if mg := mailer.NewMailgunClient(cfg.MailgunAPIKey, cfg.MailgunDomain); mg != nil {
		sender = mg
	} else {
		log.Println("WARNING: Mailgun not configured; verification codes will not be emailed")
	}

	var speech app.Transcriber
	if tc := transcriber.NewClient(cfg.TranscriberURL); tc != nil {
		speech = tc
	}

	tokens := app.NewTokenIssuer(cfg.JWTSecret)
	otpService := app.NewOTPService(codeRepo, userRepo, sender, limiter,
		cfg.OTPTTL(), cfg.OTPRateLimitPerHour, cfg.IsDevelopment())
	accountService := app.NewAccountService(userRepo, codeRepo, tokens, producer, cfg.OTPTTL())
	entryService := app.NewEntryService(entryRepo, userRepo, speech, producer)

	authHandler := api.NewAuthHandler(otpService, accountService)
	entryHandler := api.NewEntryHandler(entryService)
	router := api.NewRouter(authHandler, entryHandler, tokens, cfg.CORSAllowedOrigins)

	server := &http.Server{
		Addr:    ":" + cfg.ServerPort,
		Handler: router,
	}

	go func() {
		log.Printf("Server starting on port %s", cfg.ServerPort)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Could not start server: %s\n", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	<-sweeper.Stop().Done()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Fatalf("Server shutdown failed: %v", err)
	}

	log.Println("Server gracefully stopped")
}
