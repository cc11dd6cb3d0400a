package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/wbaguley/GTM-Systems-AI-Planner-sub000/internal/application/services"
	"github.com/wbaguley/GTM-Systems-AI-Planner-sub000/internal/bootstrap"
	"github.com/wbaguley/GTM-Systems-AI-Planner-sub000/internal/config"
	"github.com/wbaguley/GTM-Systems-AI-Planner-sub000/internal/infrastructure/database"
	"github.com/wbaguley/GTM-Systems-AI-Planner-sub000/internal/interfaces/rest"
	"github.com/wbaguley/GTM-Systems-AI-Planner-sub000/pkg/auth"
	"github.com/wbaguley/GTM-Systems-AI-Planner-sub000/pkg/logging"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logrus.Fatalf("Failed to load configuration: %v", err)
	}

	closer, err := logging.Init(cfg.Log.Logging())
	if err != nil {
		logrus.Fatalf("Failed to initialise logging: %v", err)
	}
	defer closer.Close()
	log := logging.Component("server")

	if cfg.JWTSecret == "" {
		log.Warn("⚠️  DEV_MODE: JWT_SECRET is not set, using the built-in development secret")
	}
	auth.SetSecret(cfg.JWTSecret)

	// The server does not start without its database
	startupCtx, cancelStartup := context.WithTimeout(context.Background(), 30*time.Second)
	conn, err := database.Open(startupCtx, cfg.Database)
	if err != nil {
		cancelStartup()
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer conn.Close()
	log.WithField("driver", cfg.Database.Driver).Info("✅ Database connection established")

	if err := bootstrap.InitializeSchema(startupCtx, conn); err != nil {
		cancelStartup()
		log.Fatalf("Failed to initialize schema: %v", err)
	}
	cancelStartup()

	svcMgr := services.NewServiceManager(conn)
	log.Info("🔧 Service manager initialized")

	if logrus.IsLevelEnabled(logrus.DebugLevel) {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}
	router := rest.NewRouter(svcMgr, cfg.CORSOrigins)

	log.Info("═══════════════════════════════════════════════════════════════")
	log.Info("🚀 Module Store Backend Started Successfully")
	log.Info("═══════════════════════════════════════════════════════════════")
	log.Infof("📍 Server:         http://localhost:%s", cfg.Port)
	log.Infof("🧩 Modules API:    http://localhost:%s/api/modules", cfg.Port)
	log.Infof("💚 Health check:   http://localhost:%s/health", cfg.Port)

	srv := &http.Server{
		Addr:              "0.0.0.0:" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server with a timeout of 5 seconds.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	svcMgr.EventBus.Clear()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.WithError(err).Error("Server forced to shutdown")
	}

	log.Info("Server exiting")
}
