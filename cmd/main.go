package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"complaintdesk/backend/internal/api/handler"
	"complaintdesk/backend/internal/audit"
	"complaintdesk/backend/internal/community"
	"complaintdesk/backend/internal/complaint"
	"complaintdesk/backend/internal/config"
	"complaintdesk/backend/internal/logging"
	"complaintdesk/backend/internal/realtime"
	"complaintdesk/backend/internal/seed"
	"complaintdesk/backend/internal/session"
	"complaintdesk/backend/internal/storage"

	"github.com/apex/log"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Warn("No .env file loaded")
	}
	cfg := config.Load()
	logging.Setup(cfg.LogFormat, cfg.LogLevel, nil)
	log.Info("Starting complaint desk backend...")
	if err := cfg.Validate(); err != nil {
		log.WithError(err).Fatal("Refusing to start")
	}
	if cfg.DefaultSecret() {
		log.Warn("JWT_SECRET is unset; session tokens are signed with a placeholder key")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// 1. Persistence
	kv, err := storage.Open(ctx, cfg)
	if err != nil {
		log.WithError(err).Fatal("Failed to open storage")
	}

	// 2. Identity
	dir := session.NewDirectory(kv)
	issuer := session.NewIssuer(cfg.JWTSecret, cfg.TokenTTL)
	ids := session.New(kv, dir, issuer)

	if cfg.SeedDemoData {
		if _, err := seed.Demo(kv, dir, time.Now()); err != nil {
			log.WithError(err).Fatal("Failed to seed demo data")
		}
	}

	// 3. Domain services
	auditLog := audit.NewLog(kv, ids)
	complaints := complaint.NewService(kv, ids, auditLog)
	communities := community.NewService(kv, ids, auditLog)
	complaints.SetCommunityCounter(communities)

	// 4. Realtime
	bus := realtime.NewBus()
	center := realtime.NewCenter(bus, cfg.NotificationTimeout)
	notifier := realtime.NewNotifier(realtime.NewStorageFeed(kv), bus, center)
	notifier.SetAnalyticsSource(complaints)
	go notifier.Run(ctx, cfg.PollInterval)

	// 5. HTTP
	r := gin.Default()
	h := handler.NewHandler(dir, issuer, complaints, communities, auditLog, center, bus)
	h.Routes(r)

	server := &http.Server{
		Addr:           cfg.HTTPAddr,
		Handler:        r,
		ReadTimeout:    10 * time.Second,
		WriteTimeout:   10 * time.Second,
		MaxHeaderBytes: 1 << 20,
	}

	go func() {
		<-ctx.Done()
		shutdown, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdown); err != nil {
			log.WithError(err).Error("Graceful shutdown failed")
		}
	}()

	log.Infof("Listening on %s (storage: %s)", cfg.HTTPAddr, cfg.StorageBackend)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.WithError(err).Fatal("HTTP server stopped")
	}
	log.Info("Bye")
}
