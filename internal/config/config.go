package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	// Server
	Port string
	Env  string

	// Gemini AI. The key is optional at startup: a missing key is reported
	// as a configuration error on the first generate request, not a crash.
	GoogleAPIKey         string
	GeminiModel          string
	GeminiConcurrentReqs int
	GeminiRequestsPerMin int

	// Unsplash. Optional: without a key image lookup degrades to the
	// public source URL, which is unreliable under load.
	UnsplashAccessKey string

	// Redis cache for resolved image URLs. Optional.
	RedisURL string

	// Outbound HTTP
	HTTPTimeoutSeconds int
	ImageMaxConcurrent int

	// Frontend
	FrontendURL string
}

func Load() *Config {
	// Load .env file if it exists
	godotenv.Load()

	cfg := &Config{
		Port:                 getEnvOrDefault("PORT", "8080"),
		Env:                  getEnvOrDefault("ENV", "development"),
		GoogleAPIKey:         getEnvOrDefault("GOOGLE_API_KEY", ""),
		GeminiModel:          getEnvOrDefault("GEMINI_MODEL", "gemini-2.5-pro"),
		GeminiConcurrentReqs: getEnvAsIntOrDefault("GEMINI_CONCURRENT_REQUESTS", 5),
		GeminiRequestsPerMin: getEnvAsIntOrDefault("GEMINI_REQUESTS_PER_MINUTE", 60),
		UnsplashAccessKey:    getEnvOrDefault("UNSPLASH_ACCESS_KEY", ""),
		RedisURL:             getEnvOrDefault("REDIS_URL", ""),
		HTTPTimeoutSeconds:   getEnvAsIntOrDefault("HTTP_TIMEOUT_SECONDS", 30),
		ImageMaxConcurrent:   getEnvAsIntOrDefault("IMAGE_MAX_CONCURRENT", 8),
		FrontendURL:          getEnvOrDefault("FRONTEND_URL", "http://localhost:3000"),
	}

	return cfg
}

func getEnvOrDefault(key, defaultVal string) string {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	return val
}

func getEnvAsIntOrDefault(key string, defaultVal int) int {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	n, err := strconv.Atoi(val)
	if err != nil {
		return defaultVal
	}
	return n
}
