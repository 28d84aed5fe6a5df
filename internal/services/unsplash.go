package services

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"slidechat-backend/internal/models"
)

const (
	defaultUnsplashAPIURL = "https://api.unsplash.com"
	publicSourceURL       = "https://source.unsplash.com/1600x900/?"

	imageCacheKeyPrefix = "imgurl:"
	imageCacheTTL       = time.Hour
)

// UnsplashService resolves image keywords into fetchable photo URLs.
// Every failure is soft: the caller gets "" and the request carries on.
type UnsplashService struct {
	accessKey     string
	apiBaseURL    string
	httpClient    *http.Client
	cache         *redis.Client // nil disables caching
	maxConcurrent int
}

func NewUnsplashService(accessKey string, httpClient *http.Client, cache *redis.Client, maxConcurrent int) *UnsplashService {
	if maxConcurrent <= 0 {
		maxConcurrent = 1
	}
	return &UnsplashService{
		accessKey:     accessKey,
		apiBaseURL:    defaultUnsplashAPIURL,
		httpClient:    httpClient,
		cache:         cache,
		maxConcurrent: maxConcurrent,
	}
}

// ResolveImage turns a keyword into a photo URL. An empty keyword is the
// explicit "no image" signal and short-circuits without any network call.
func (s *UnsplashService) ResolveImage(ctx context.Context, keyword string) string {
	keyword = strings.TrimSpace(keyword)
	if keyword == "" {
		return ""
	}

	if cached := s.cacheGet(ctx, keyword); cached != "" {
		return cached
	}

	if s.accessKey == "" {
		// Degraded mode: the public source endpoint needs no credential
		// but rate-limits aggressively under load.
		return publicSourceURL + url.QueryEscape(keyword)
	}

	resolved := s.fetchRandomPhoto(ctx, keyword)
	if resolved != "" {
		s.cacheSet(ctx, keyword, resolved)
	}
	return resolved
}

// fetchRandomPhoto asks the authenticated random-photo endpoint for one
// landscape image matching the keyword and returns its regular-size URL.
func (s *UnsplashService) fetchRandomPhoto(ctx context.Context, keyword string) string {
	endpoint := fmt.Sprintf("%s/photos/random?query=%s&orientation=landscape&count=1",
		s.apiBaseURL, url.QueryEscape(keyword))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return ""
	}
	req.Header.Set("Authorization", "Client-ID "+s.accessKey)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		log.Printf("Error fetching image from Unsplash API: %v", err)
		return ""
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		log.Printf("Unsplash API failed with status %d for keyword: %s", resp.StatusCode, keyword)
		return ""
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return ""
	}

	type photo struct {
		URLs struct {
			Regular string `json:"regular"`
		} `json:"urls"`
	}

	// With count=1 the endpoint yields an array, without it a single
	// object; accept both.
	var photos []photo
	if err := json.Unmarshal(body, &photos); err == nil && len(photos) > 0 {
		return photos[0].URLs.Regular
	}

	var single photo
	if err := json.Unmarshal(body, &single); err != nil {
		return ""
	}
	return single.URLs.Regular
}

// ResolveAll fills in every slide's Image from its keyword, fanning out the
// lookups and joining before return. Results are correlated by position, so
// output order always matches slide order no matter which lookup finishes
// first. One keyword's failure never affects another slide.
func (s *UnsplashService) ResolveAll(ctx context.Context, pres *models.Presentation, keywords []string) {
	sem := make(chan struct{}, s.maxConcurrent)
	var wg sync.WaitGroup

	for i := range pres.Slides {
		keyword := ""
		if i < len(keywords) {
			keyword = keywords[i]
		}

		wg.Add(1)
		go func(idx int, kw string) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			pres.Slides[idx].Image = s.ResolveImage(ctx, kw)
		}(i, keyword)
	}

	wg.Wait()
}

func (s *UnsplashService) cacheGet(ctx context.Context, keyword string) string {
	if s.cache == nil {
		return ""
	}
	val, err := s.cache.Get(ctx, imageCacheKeyPrefix+keyword).Result()
	if err != nil {
		return ""
	}
	return val
}

func (s *UnsplashService) cacheSet(ctx context.Context, keyword, resolved string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Set(ctx, imageCacheKeyPrefix+keyword, resolved, imageCacheTTL).Err(); err != nil {
		log.Printf("failed to cache image URL for %q: %v", keyword, err)
	}
}
