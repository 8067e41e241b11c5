package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
	"github.com/workbridg/workbridg-web/internal/backend"
	"github.com/workbridg/workbridg-web/internal/config"
	"github.com/workbridg/workbridg-web/internal/constants"
	"github.com/workbridg/workbridg-web/internal/database"
	"github.com/workbridg/workbridg-web/internal/handlers"
	"github.com/workbridg/workbridg-web/internal/logging"
	"github.com/workbridg/workbridg-web/internal/metrics"
	"github.com/workbridg/workbridg-web/internal/middleware"
	"github.com/workbridg/workbridg-web/internal/repository"
	"github.com/workbridg/workbridg-web/internal/services"
	"github.com/workbridg/workbridg-web/internal/web"
	"gorm.io/gorm"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logrus.WithError(err).Fatal("Failed to load configuration")
	}

	log := logging.New(cfg.LogLevel, cfg.LogFile)
	gin.SetMode(cfg.GinMode)

	// The database only backs the session store
	var db *gorm.DB
	if cfg.SessionStore == "database" {
		db, err = database.Connect(cfg, log)
		if err != nil {
			log.WithError(err).Fatal("Failed to connect to database")
		}
		defer database.Close(db)
	}

	store, err := database.NewSessionStore(cfg, db, log)
	if err != nil {
		log.WithError(err).Fatal("Failed to create session store")
	}

	templates, err := web.Templates()
	if err != nil {
		log.WithError(err).Fatal("Failed to load templates")
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(logging.Middleware(log))
	r.Use(metrics.Middleware())
	r.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", middleware.RequestIDHeader},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
	r.Use(sessions.Sessions(constants.SessionCookieName, store))
	r.Use(middleware.LoadSession())
	r.SetHTMLTemplate(templates)
	r.StaticFS("/static", web.Static())
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Backend access
	client := backend.NewClient(cfg.ServerURL, cfg.BackendTimeout, log.WithField("component", "backend"))
	userRepo := repository.NewUserRepository(client)
	profileRepo := repository.NewProfileRepository(client)
	projectRepo := repository.NewProjectRepository(client)
	chatRepo := repository.NewChatRepository(client)

	// Initialize services
	authService := services.NewAuthService(userRepo, profileRepo)
	projectService := services.NewProjectService(projectRepo)
	chatService := services.NewChatService(chatRepo, cfg.PollInterval, log.WithField("component", "chat"))

	var draftService *services.DraftService
	if cfg.OpenAIAPIKey != "" {
		draftService = services.NewDraftService(cfg.OpenAIAPIKey)
	}

	checks := map[string]handlers.Check{
		"backend": client.Ping,
	}
	if db != nil {
		checks["database"] = func(ctx context.Context) error {
			return database.Ping(ctx, db)
		}
	}

	handlers.Handlers{
		Auth:    handlers.NewAuthHandler(authService, log),
		Pages:   handlers.NewPageHandler(authService, projectService, chatService, log),
		Project: handlers.NewProjectHandler(projectService, draftService, log),
		Chat:    handlers.NewChatHandler(chatService, log),
		Health:  handlers.NewHealthHandler(checks),
	}.Register(r)

	// Cancelling the base context on shutdown ends open chat streams
	baseCtx, stopStreams := context.WithCancel(context.Background())
	srv := &http.Server{
		Addr:        ":" + cfg.Port,
		Handler:     r,
		BaseContext: func(net.Listener) context.Context { return baseCtx },
	}
	srv.RegisterOnShutdown(stopStreams)

	go func() {
		log.WithFields(logrus.Fields{
			"addr":    srv.Addr,
			"backend": cfg.ServerURL,
			"store":   cfg.SessionStore,
		}).Info("Server starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Fatal("Server failed")
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server")
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.WithError(err).Error("Server shutdown error")
	}
}
