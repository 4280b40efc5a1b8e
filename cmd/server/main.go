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

	"codeberg.org/promptfotos/server/internal/auth"
	"codeberg.org/promptfotos/server/internal/config"
	"codeberg.org/promptfotos/server/internal/logger"
)

// set at build time with -ldflags "-X main.version=..."
var version = "dev"

// @title Prompt Gemini Fotos API
// @version 1.0
// @description AI photo generation from text prompts, localized for pt-BR and en
// @description
// @description Features:
// @description - Prompt-to-photo generation through an image gateway
// @description - Free allowance with pro subscriptions billed through Creem
// @description - Google sign-in with JWT sessions

// @host www.promptgeminifotos.com

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description JWT token for authenticated requests. Format: Bearer {token}

func main() {
	logger.Info("starting promptfotos server", "version", version)

	cfg, err := config.LoadEnvironmentVariables()
	if err != nil {
		logger.FatalErr(err, "failed to load configuration")
	}

	if err := auth.InitializeProviders(auth.ProviderConfig{
		BaseURL:            cfg.AppURL,
		SessionSecret:      cfg.SessionSecret,
		GoogleClientID:     cfg.Google.ClientID,
		GoogleClientSecret: cfg.Google.ClientSecret,
	}); err != nil {
		logger.FatalErr(err, "failed to initialize OAuth providers")
	}

	srv, err := NewServer(cfg)
	if err != nil {
		logger.FatalErr(err, "failed to create server")
	}

	httpServer := &http.Server{
		Addr:        fmt.Sprintf(":%s", cfg.Port),
		Handler:     srv.router,
		ReadTimeout: 15 * time.Second,
		// generation waits on the image gateway
		WriteTimeout: 150 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("server listening", "port", cfg.Port, "environment", cfg.Environment)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("server failed to start", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(ctx); err != nil {
		logger.ErrorErr(err, "server forced to shutdown")
	}

	srv.Close()

	logger.Info("server stopped")
}
