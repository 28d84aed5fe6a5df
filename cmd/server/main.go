package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"slidechat-backend/internal/config"
	"slidechat-backend/internal/database"
	"slidechat-backend/internal/handlers"
	"slidechat-backend/internal/limiter"
	"slidechat-backend/internal/router"
	"slidechat-backend/internal/services"
)

func main() {
	log.Println("🚀 Starting SlideChat Backend...")

	// ──── Step 1: Load Environment Variables ────
	cfg := config.Load()
	log.Println("✓ Environment variables loaded")

	// ──── Step 2: Initialize Redis Image Cache (optional) ────
	var cache *redis.Client
	if cfg.RedisURL != "" {
		c, err := database.NewRedisClient(cfg.RedisURL)
		if err != nil {
			log.Printf("⚠ Redis unavailable, image cache disabled: %v", err)
		} else {
			cache = c
			defer cache.Close()
			log.Println("✓ Redis image cache connected")
		}
	} else {
		log.Println("⚠ REDIS_URL not set, image cache disabled")
	}

	// ──── Step 3: Initialize Gemini Client ────
	// A missing key is not fatal here: the generate endpoint reports it
	// as a 500 per request, matching the configuration error contract.
	var geminiService *services.GeminiService
	if cfg.GoogleAPIKey == "" {
		log.Println("⚠ GOOGLE_API_KEY not set, slide generation will fail until configured")
	} else {
		lim := limiter.New(cfg.GeminiConcurrentReqs, cfg.GeminiRequestsPerMin)
		svc, err := services.NewGeminiService(cfg.GoogleAPIKey, cfg.GeminiModel, lim)
		if err != nil {
			log.Fatalf("✗ Gemini client initialization failed: %v", err)
		}
		geminiService = svc
		defer geminiService.Close()
		log.Println("✓ Gemini client initialized")
	}

	if cfg.UnsplashAccessKey == "" {
		log.Println("⚠ UNSPLASH_ACCESS_KEY not found. Images may fail to load due to rate limiting on the public endpoint.")
	}

	// ──── Step 4: Initialize Services ────
	httpClient := &http.Client{Timeout: time.Duration(cfg.HTTPTimeoutSeconds) * time.Second}
	unsplashService := services.NewUnsplashService(cfg.UnsplashAccessKey, httpClient, cache, cfg.ImageMaxConcurrent)
	exportService := services.NewExportService(httpClient, cfg.ImageMaxConcurrent)

	// ──── Step 5: Initialize Handlers & Router ────
	var slidesHandler *handlers.SlidesHandler
	if geminiService != nil {
		slidesHandler = handlers.NewSlidesHandler(geminiService, unsplashService, exportService)
	} else {
		slidesHandler = handlers.NewSlidesHandler(nil, unsplashService, exportService)
	}

	r := router.New(slidesHandler, cfg.FrontendURL)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Port),
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 150 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan

		log.Println("Shutting down...")
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		server.Shutdown(ctx)
	}()

	log.Printf("✓ SlideChat Backend ready on http://localhost:%s", cfg.Port)
	log.Printf("  API: http://localhost:%s/api/v1/slides", cfg.Port)

	if err := server.ListenAndServe(); err != http.ErrServerClosed {
		log.Fatalf("Server error: %v", err)
	}
}
