package router

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"slidechat-backend/internal/handlers"
	"slidechat-backend/internal/middleware"
)

func New(slidesHandler *handlers.SlidesHandler, frontendURL string) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.RequestID)
	r.Use(middleware.CORS(frontendURL))

	// Slides rate limiter (30 req/min per IP): generation burns model
	// quota, export burns image bandwidth.
	slidesLimiter := middleware.NewRateLimiter(30, time.Minute)

	// Health check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok"}`))
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/slides", func(r chi.Router) {
			r.Use(slidesLimiter.Middleware)
			r.Post("/generate", slidesHandler.Generate)
			r.Post("/export", slidesHandler.Export)
		})
	})

	return r
}
