package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"familycal/internal/config"
	"familycal/internal/database"
	"familycal/internal/handlers"
	"familycal/internal/repository"
	"familycal/internal/security"
	"familycal/internal/service"
	"familycal/pkg/logging"
)

func main() {
	logging.Setup()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	loc := cfg.Location()

	db, err := database.InitializeWithConfig(cfg)
	if err != nil {
		slog.Error("Failed to initialize database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	slog.Info("Database connection established", "type", cfg.DatabaseType)

	if err := db.RunMigrations(cfg.MigrationsPath); err != nil {
		slog.Error("Failed to run migrations", "error", err)
		os.Exit(1)
	}

	// Repositories
	userRepo := repository.NewUserRepository(db)
	familyRepo := repository.NewFamilyRepository(db)
	eventRepo := repository.NewEventRepository(db)
	notificationRepo := repository.NewNotificationRepository(db)

	// Services
	apple := security.NewAppleVerifier(cfg.AppleClientID, cfg.AppleClientSecret, cfg.AppleRedirectURL)
	authService := service.NewAuthService(userRepo, apple, cfg.SessionDuration)
	familyService := service.NewFamilyService(familyRepo, userRepo)
	notificationService := service.NewNotificationService(notificationRepo, familyRepo, userRepo)
	eventService := service.NewEventService(eventRepo, familyRepo, notificationService, loc)
	reminderService := service.NewReminderService(eventRepo, notificationService)

	emailService, err := service.NewEmailService(cfg.AWSRegion, cfg.SESFromEmail, cfg.SESFromName, cfg.AppBaseURL)
	if err != nil {
		slog.Error("Failed to initialize email service", "error", err)
		os.Exit(1)
	}

	// Handlers
	middleware := handlers.NewMiddleware(authService, familyService)
	authHandler := handlers.NewAuthHandler(authService)
	familyHandler := handlers.NewFamilyHandler(familyService, emailService)
	eventHandler := handlers.NewEventHandler(eventService, loc)
	notificationHandler := handlers.NewNotificationHandler(notificationService)
	icsHandler := handlers.NewICSHandler(eventService, familyService, loc)

	mux := http.NewServeMux()

	// Account
	mux.HandleFunc("POST /api/auth/register", middleware.RateLimit(authHandler.Register))
	mux.HandleFunc("POST /api/auth/login", middleware.RateLimit(authHandler.Login))
	mux.HandleFunc("POST /api/auth/apple", middleware.RateLimit(authHandler.AppleLogin))
	mux.HandleFunc("POST /api/auth/logout", authHandler.Logout)
	mux.HandleFunc("GET /api/me", middleware.RequireAuth(authHandler.Me))
	mux.HandleFunc("PUT /api/me", middleware.RequireAuth(authHandler.UpdateMe))

	// Families
	mux.HandleFunc("POST /api/families", middleware.RequireAuth(familyHandler.Create))
	mux.HandleFunc("GET /api/families", middleware.RequireAuth(familyHandler.List))
	mux.HandleFunc("POST /api/families/join", middleware.RequireAuth(middleware.RateLimit(familyHandler.Join)))
	mux.HandleFunc("POST /api/families/{id}/repair-admin", middleware.RequireAuth(familyHandler.RepairAdmin))
	mux.HandleFunc("GET /api/family", middleware.RequireScope(familyHandler.Get))
	mux.HandleFunc("POST /api/family/leave", middleware.RequireScope(familyHandler.Leave))
	mux.HandleFunc("GET /api/family/members", middleware.RequireScope(familyHandler.Members))
	mux.HandleFunc("PUT /api/family/notifications", middleware.RequireScope(familyHandler.SetNotifications))
	mux.HandleFunc("POST /api/family/invite", middleware.RequireScope(familyHandler.SendInvite))

	// Events and calendar views
	mux.HandleFunc("POST /api/events", middleware.RequireScope(eventHandler.Create))
	mux.HandleFunc("GET /api/events/month", middleware.RequireScope(eventHandler.Month))
	mux.HandleFunc("GET /api/events/day", middleware.RequireScope(eventHandler.Day))
	mux.HandleFunc("GET /api/events/grid", middleware.RequireScope(eventHandler.Grid))
	mux.HandleFunc("GET /api/events/{id}", middleware.RequireScope(eventHandler.Get))
	mux.HandleFunc("PUT /api/events/{id}", middleware.RequireScope(eventHandler.Update))
	mux.HandleFunc("DELETE /api/events/{id}", middleware.RequireScope(eventHandler.Delete))
	mux.HandleFunc("POST /api/events/{id}/participants", middleware.RequireScope(eventHandler.AddParticipants))
	mux.HandleFunc("GET /api/events/{id}/participants", middleware.RequireScope(eventHandler.Participants))
	mux.HandleFunc("POST /api/events/{id}/respond", middleware.RequireScope(eventHandler.Respond))
	mux.HandleFunc("GET /api/events/{id}/tally", middleware.RequireScope(eventHandler.Tally))
	mux.HandleFunc("GET /api/calendar.ics", middleware.RequireScope(icsHandler.ExportMonth))

	// Notifications
	mux.HandleFunc("GET /api/notifications", middleware.RequireAuth(notificationHandler.List))
	mux.HandleFunc("GET /api/notifications/unread", middleware.RequireAuth(notificationHandler.UnreadCount))
	mux.HandleFunc("POST /api/notifications/{id}/read", middleware.RequireAuth(notificationHandler.MarkRead))
	mux.HandleFunc("POST /api/notifications/read-all", middleware.RequireAuth(notificationHandler.MarkAllRead))

	// Operations
	mux.Handle("GET /metrics", handlers.MetricsEndpoint())
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	handler := handlers.Logging(handlers.Metrics(mux))

	addr := ":" + cfg.ServerPort
	server := &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	if err := reminderService.Start(); err != nil {
		slog.Error("Failed to start reminder scheduler", "error", err)
		os.Exit(1)
	}
	go cleanupExpiredSessions(authService)

	go func() {
		slog.Info("Server starting", "addr", addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("Server failed", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("Server shutting down")
	reminderService.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		slog.Error("Shutdown failed", "error", err)
	}
}

func cleanupExpiredSessions(authService *service.AuthService) {
	ticker := time.NewTicker(1 * time.Hour)
	defer ticker.Stop()

	for range ticker.C {
		if err := authService.CleanupExpiredSessions(); err != nil {
			slog.Error("Failed to clean up expired sessions", "error", err)
		}
	}
}
