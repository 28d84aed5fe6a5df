package services

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync/atomic"
	"testing"

	"slidechat-backend/internal/models"
)

func TestResolveImage_EmptyKeywordNoNetworkCall(t *testing.T) {
	var calls int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
	}))
	defer ts.Close()

	svc := NewUnsplashService("test-key", ts.Client(), nil, 4)
	svc.apiBaseURL = ts.URL

	for _, keyword := range []string{"", "   "} {
		if got := svc.ResolveImage(context.Background(), keyword); got != "" {
			t.Errorf("expected empty URL for keyword %q, got %q", keyword, got)
		}
	}
	if atomic.LoadInt32(&calls) != 0 {
		t.Errorf("expected no network calls, got %d", calls)
	}
}

func TestResolveImage_DegradedModeWithoutKey(t *testing.T) {
	svc := NewUnsplashService("", http.DefaultClient, nil, 4)

	got := svc.ResolveImage(context.Background(), "mountain lake")
	want := "https://source.unsplash.com/1600x900/?" + url.QueryEscape("mountain lake")
	if got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
}

func TestResolveImage_AuthenticatedLookup(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if auth := r.Header.Get("Authorization"); auth != "Client-ID test-key" {
			t.Errorf("unexpected Authorization header %q", auth)
		}
		if q := r.URL.Query().Get("query"); q != "nebula" {
			t.Errorf("unexpected query %q", q)
		}
		fmt.Fprint(w, `[{"urls":{"regular":"https://images.example/nebula-regular"}}]`)
	}))
	defer ts.Close()

	svc := NewUnsplashService("test-key", ts.Client(), nil, 4)
	svc.apiBaseURL = ts.URL

	got := svc.ResolveImage(context.Background(), "nebula")
	if got != "https://images.example/nebula-regular" {
		t.Errorf("expected regular URL, got %q", got)
	}
}

func TestResolveImage_SingleObjectResponse(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"urls":{"regular":"https://images.example/single"}}`)
	}))
	defer ts.Close()

	svc := NewUnsplashService("test-key", ts.Client(), nil, 4)
	svc.apiBaseURL = ts.URL

	if got := svc.ResolveImage(context.Background(), "city"); got != "https://images.example/single" {
		t.Errorf("expected single-object URL, got %q", got)
	}
}

func TestResolveImage_SoftFailures(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{"api error status", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusForbidden)
		}},
		{"garbage body", func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprint(w, "not json")
		}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			ts := httptest.NewServer(tc.handler)
			defer ts.Close()

			svc := NewUnsplashService("test-key", ts.Client(), nil, 4)
			svc.apiBaseURL = ts.URL

			if got := svc.ResolveImage(context.Background(), "anything"); got != "" {
				t.Errorf("expected soft failure to yield empty string, got %q", got)
			}
		})
	}
}

func TestResolveAll_PositionalOrder(t *testing.T) {
	// Echo the keyword back so each slide's result is identifiable.
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query().Get("query")
		if q == "broken" {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		fmt.Fprintf(w, `[{"urls":{"regular":"https://images.example/%s"}}]`, q)
	}))
	defer ts.Close()

	svc := NewUnsplashService("test-key", ts.Client(), nil, 2)
	svc.apiBaseURL = ts.URL

	pres := &models.Presentation{Slides: []models.Slide{
		{Title: "one"}, {Title: "two"}, {Title: "three"}, {Title: "four"},
	}}
	keywords := []string{"alpha", "", "broken", "delta"}

	svc.ResolveAll(context.Background(), pres, keywords)

	expected := []string{
		"https://images.example/alpha",
		"",
		"", // one slide's failure must not affect the others
		"https://images.example/delta",
	}
	for i, want := range expected {
		if pres.Slides[i].Image != want {
			t.Errorf("slide %d: expected %q, got %q", i, want, pres.Slides[i].Image)
		}
	}

	for i, img := range []string{pres.Slides[0].Image, pres.Slides[3].Image} {
		if img != "" && !strings.HasPrefix(img, "https://images.example/") {
			t.Errorf("resolved image %d is not a fetchable URL: %q", i, img)
		}
	}
}

func TestResolveAll_FewerKeywordsThanSlides(t *testing.T) {
	svc := NewUnsplashService("", http.DefaultClient, nil, 2)

	pres := &models.Presentation{Slides: []models.Slide{{Title: "a"}, {Title: "b"}}}
	svc.ResolveAll(context.Background(), pres, []string{"only-one"})

	if pres.Slides[1].Image != "" {
		t.Errorf("slide without keyword should resolve to empty, got %q", pres.Slides[1].Image)
	}
}
