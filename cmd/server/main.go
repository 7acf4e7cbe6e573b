package main

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"fichesynthese/internal/api"
	"fichesynthese/internal/api/handlers"
	"fichesynthese/internal/config"
	"fichesynthese/internal/export"
	"fichesynthese/internal/gemini"
	"fichesynthese/internal/imagegen"
	"fichesynthese/internal/logger"
	"fichesynthese/internal/models"
	"fichesynthese/internal/notify"
	"fichesynthese/internal/store"

	"github.com/gin-gonic/gin"
)

func main() {
	cfg, err := config.Load(".env")
	if err != nil {
		panic(err)
	}

	log, err := logger.New(cfg.Mode)
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	if err := cfg.Validate(); err != nil {
		log.Fatal("invalid configuration", "error", err)
	}
	if cfg.GeminiAPIKey == "" {
		log.Fatal("FICHE_GEMINI_API_KEY (or GEMINI_API_KEY) must be set")
	}
	if strings.EqualFold(cfg.Mode, "prod") || strings.EqualFold(cfg.Mode, "production") {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize Gemini client
	geminiClient, err := gemini.NewClient(ctx, cfg.GeminiAPIKey, cfg.GeminiModel, cfg.GenerationTimeout(), log)
	if err != nil {
		log.Fatal("failed to initialize Gemini client", "error", err)
	}
	defer geminiClient.Close()

	notifier := notify.NewDiscord(cfg.DiscordWebhookURL, log)
	if !notifier.Enabled() {
		log.Info("discord webhook not configured, notifications disabled")
	}

	handler := handlers.NewHandler(
		geminiClient,
		store.NewMemoryStore(cfg.StoreCapacity),
		export.NewCooldown(cfg.ExportCooldown()),
		notifier,
		log,
	)
	handler.GenerationTimeout = cfg.GenerationTimeout()
	handler.Defaults = models.ExportContext{
		LogoURL:            cfg.LogoURL,
		BackgroundImageURL: cfg.BackgroundURL,
	}

	if cfg.ImagesEnabled {
		images, err := imagegen.NewClient(ctx, cfg.GeminiAPIKey, cfg.ImageModel, log)
		if err != nil {
			log.Warn("image generation disabled", "error", err)
		} else {
			handler.Images = images
			// Warm the welcome illustration so the first visitor does not wait.
			go func() {
				if _, err := images.Welcome(ctx); err != nil {
					log.Warn("welcome image warm-up failed", "error", err)
				}
			}()
		}
	}

	secret := cfg.SessionSecret
	if secret == "" {
		secret = randomSecret()
		log.Warn("FICHE_SESSION_SECRET is not set, sessions will not survive a restart")
	}

	router := api.NewRouter(handler, api.RouterOptions{
		AllowedOrigins: cfg.AllowedOrigins,
		SessionSecret:  secret,
		SecureCookies:  gin.Mode() == gin.ReleaseMode,
		Log:            log,
	})

	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info("server listening", "port", cfg.Port, "model", cfg.GeminiModel, "images", handler.Images != nil)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("failed to start server", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("shutting down server")

	shutdownCtx, shutdownCancel := context.WithTimeout(ctx, 5*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("server forced to shutdown", "error", err)
	}
	notifier.Wait()

	log.Info("server exited properly")
}

func randomSecret() string {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		panic(err)
	}
	return hex.EncodeToString(b)
}
