package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/dealgrid/dealgrid-api/apps/api/server"
	"github.com/dealgrid/dealgrid-api/libs/go/constants"
	"github.com/dealgrid/dealgrid-api/libs/go/logger"
)

func main() {
	// Load environment variables from .env file for local development
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		// A missing .env is fine; anything else is not
		panic("failed to load .env: " + err.Error())
	}

	stage := os.Getenv("STAGE")
	if stage == "" {
		stage = "local"
	}
	logger.InitLogger(stage)
	defer logger.Sync()

	if stage == constants.ProdEnvironment {
		gin.SetMode(gin.ReleaseMode)
	}

	if err := server.InitializeHandlers(); err != nil {
		logger.Fatal("failed to initialize handlers", zap.Error(err))
	}

	router := gin.Default()
	server.InitializeRoutes(router)

	port := os.Getenv("PORT")
	if port == "" {
		port = constants.DefaultPort
	}

	srv := &http.Server{
		Addr:    ":" + port,
		Handler: router,
	}

	go func() {
		logger.Info("starting server", zap.String("port", port), zap.String("stage", stage))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server error", zap.Error(err))
		}
	}()

	// Graceful shutdown on SIGINT/SIGTERM
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("forced shutdown", zap.Error(err))
	}
}
