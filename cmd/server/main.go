package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	"github.com/tfia/ywt-server/internal/activation"
	"github.com/tfia/ywt-server/internal/config"
	"github.com/tfia/ywt-server/internal/db"
	"github.com/tfia/ywt-server/internal/email"
	internalhttp "github.com/tfia/ywt-server/internal/http"
	"github.com/tfia/ywt-server/internal/jobs"
	"github.com/tfia/ywt-server/internal/qbank"
	"github.com/tfia/ywt-server/internal/repository"
)

func main() {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("dotenv load error: %v", err)
	}
	cfg := config.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := db.Migrate(ctx, cfg.DatabaseURL); err != nil {
		log.Fatalf("migration failed: %v", err)
	}

	pool, err := db.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("db connection failed: %v", err)
	}
	defer pool.Close()
	store := repository.NewPostgres(pool)

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
	})
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	if err := redisClient.Ping(pingCtx).Err(); err != nil {
		cancel()
		log.Fatalf("redis ping failed: %v", err)
	}
	cancel()
	defer func() {
		if err := redisClient.Close(); err != nil {
			log.Printf("redis close error: %v", err)
		}
	}()
	codes := activation.NewRedisStore(redisClient)

	var mailer email.Mailer
	if cfg.SMTPHost != "" {
		mailer = email.NewSMTPMailer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUsername, cfg.SMTPPassword, cfg.MailFromName)
	} else {
		log.Printf("SMTP_HOST not set: outbound email disabled")
	}

	entries, err := qbank.Load(cfg.QBankPath)
	if err != nil {
		log.Printf("question bank load failed (%v): serving an empty index", err)
	}

	if err := internalhttp.EnsureAdminAccount(ctx, store, cfg); err != nil {
		log.Fatalf("admin bootstrap failed: %v", err)
	}

	server := internalhttp.NewServer(cfg, store, codes, mailer, entries)
	httpServer := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           server.Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	jobs.StartPendingCleanupJob(ctx, cfg, store)

	go func() {
		log.Printf("ywt-server listening on %s", cfg.HTTPAddr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("http server error: %v", err)
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Printf("shutdown error: %v", err)
	}
}
