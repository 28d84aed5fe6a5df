package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"slidechat-backend/internal/models"
	"slidechat-backend/internal/services"
)

// Fakes for the handler-level interfaces.

type fakeGenerator struct {
	pres     *models.Presentation
	keywords []string
	err      error

	gotPrompt  string
	gotCurrent *models.Presentation
}

func (f *fakeGenerator) GenerateSlides(ctx context.Context, prompt string, current *models.Presentation, history []models.ChatMessage) (*models.Presentation, []string, error) {
	f.gotPrompt = prompt
	f.gotCurrent = current
	return f.pres, f.keywords, f.err
}

type fakeResolver struct{}

func (f *fakeResolver) ResolveAll(ctx context.Context, pres *models.Presentation, keywords []string) {
	for i := range pres.Slides {
		if i < len(keywords) && keywords[i] != "" {
			pres.Slides[i].Image = "https://images.example/" + keywords[i]
		}
	}
}

type fakeExporter struct {
	data []byte
	err  error
}

func (f *fakeExporter) Export(ctx context.Context, slides []models.Slide, title string) ([]byte, error) {
	return f.data, f.err
}

func postJSON(t *testing.T, handler http.HandlerFunc, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	jsonBody, _ := json.Marshal(body)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/slides/generate", bytes.NewReader(jsonBody))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	handler(rr, req)
	return rr
}

func TestGenerate_MissingPrompt(t *testing.T) {
	h := NewSlidesHandler(&fakeGenerator{}, &fakeResolver{}, &fakeExporter{})

	tests := []struct {
		name string
		body map[string]interface{}
	}{
		{"empty body", map[string]interface{}{}},
		{"blank prompt", map[string]interface{}{"prompt": "   "}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			rr := postJSON(t, h.Generate, tc.body)
			if rr.Code != http.StatusBadRequest {
				t.Fatalf("expected 400, got %d", rr.Code)
			}

			var resp models.ErrorResponse
			json.NewDecoder(rr.Body).Decode(&resp)
			if resp.Error != "Prompt is required" {
				t.Errorf("unexpected error message %q", resp.Error)
			}
		})
	}
}

func TestGenerate_InvalidBody(t *testing.T) {
	h := NewSlidesHandler(&fakeGenerator{}, &fakeResolver{}, &fakeExporter{})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/slides/generate", strings.NewReader("{not json"))
	rr := httptest.NewRecorder()
	h.Generate(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rr.Code)
	}
}

func TestGenerate_MissingModelCredential(t *testing.T) {
	h := NewSlidesHandler(nil, &fakeResolver{}, &fakeExporter{})

	rr := postJSON(t, h.Generate, map[string]interface{}{"prompt": "Create slides"})
	if rr.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rr.Code)
	}

	var resp models.ErrorResponse
	json.NewDecoder(rr.Body).Decode(&resp)
	if resp.Error != "Gemini API key not found" {
		t.Errorf("unexpected error message %q", resp.Error)
	}
}

func TestGenerate_Success(t *testing.T) {
	gen := &fakeGenerator{
		pres: &models.Presentation{Slides: []models.Slide{
			{Title: "SpaceX Origins", Content: []string{"Founded 2002"}},
			{Title: "Falcon 9", Content: []string{"Reusable booster"}},
			{Title: "Starship", Content: []string{}},
		}},
		keywords: []string{"rocket", "", "spacecraft"},
	}
	h := NewSlidesHandler(gen, &fakeResolver{}, &fakeExporter{})

	rr := postJSON(t, h.Generate, map[string]interface{}{
		"prompt":        "Create 3 slides about SpaceX",
		"currentSlides": nil,
	})

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rr.Code, rr.Body.String())
	}
	if gen.gotCurrent != nil {
		t.Error("expected nil current slides on a first-turn request")
	}

	var pres models.Presentation
	if err := json.NewDecoder(rr.Body).Decode(&pres); err != nil {
		t.Fatalf("response is not a presentation: %v", err)
	}
	if len(pres.Slides) != 3 {
		t.Fatalf("expected 3 slides, got %d", len(pres.Slides))
	}
	for i, slide := range pres.Slides {
		if slide.Title == "" {
			t.Errorf("slide %d has empty title", i)
		}
	}

	// Image invariant: a fetchable URL or exactly "".
	if pres.Slides[0].Image != "https://images.example/rocket" {
		t.Errorf("expected resolved image, got %q", pres.Slides[0].Image)
	}
	if pres.Slides[1].Image != "" {
		t.Errorf("expected empty image for empty keyword, got %q", pres.Slides[1].Image)
	}
}

func TestGenerate_UpstreamFailure(t *testing.T) {
	gen := &fakeGenerator{err: &services.MalformedResponseError{RawText: "oops", Cause: errors.New("bad json")}}
	h := NewSlidesHandler(gen, &fakeResolver{}, &fakeExporter{})

	rr := postJSON(t, h.Generate, map[string]interface{}{"prompt": "Create slides"})
	if rr.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rr.Code)
	}

	var resp models.ErrorResponse
	json.NewDecoder(rr.Body).Decode(&resp)
	if resp.Error != "Failed to generate slides" {
		t.Errorf("unexpected error message %q", resp.Error)
	}
	if resp.Details == "" {
		t.Error("expected details for diagnosis")
	}
}

func TestExport_MissingSlides(t *testing.T) {
	h := NewSlidesHandler(&fakeGenerator{}, &fakeResolver{}, &fakeExporter{})

	tests := []struct {
		name string
		body map[string]interface{}
	}{
		{"no slides field", map[string]interface{}{"presentationTitle": "Deck"}},
		{"empty slides", map[string]interface{}{"slides": []models.Slide{}}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			rr := postJSON(t, h.Export, tc.body)
			if rr.Code != http.StatusBadRequest {
				t.Fatalf("expected 400, got %d", rr.Code)
			}

			var resp models.ErrorResponse
			json.NewDecoder(rr.Body).Decode(&resp)
			if resp.Error != "No slide data provided" {
				t.Errorf("unexpected error message %q", resp.Error)
			}
		})
	}
}

func TestExport_Success(t *testing.T) {
	exp := &fakeExporter{data: []byte("PK\x03\x04fake")}
	h := NewSlidesHandler(&fakeGenerator{}, &fakeResolver{}, exp)

	rr := postJSON(t, h.Export, map[string]interface{}{
		"slides":            []models.Slide{{Title: "S", Content: []string{"x"}}},
		"presentationTitle": "My Great Deck",
	})

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rr.Code, rr.Body.String())
	}
	if ct := rr.Header().Get("Content-Type"); ct != services.PptxMIMEType {
		t.Errorf("unexpected content type %q", ct)
	}
	if cd := rr.Header().Get("Content-Disposition"); cd != `attachment; filename="My_Great_Deck.pptx"` {
		t.Errorf("unexpected content disposition %q", cd)
	}
	if !bytes.Equal(rr.Body.Bytes(), exp.data) {
		t.Error("body does not match assembled document")
	}
}

func TestExport_DefaultTitle(t *testing.T) {
	exp := &fakeExporter{data: []byte("x")}
	h := NewSlidesHandler(&fakeGenerator{}, &fakeResolver{}, exp)

	rr := postJSON(t, h.Export, map[string]interface{}{
		"slides": []models.Slide{{Title: "S"}},
	})

	if cd := rr.Header().Get("Content-Disposition"); !strings.Contains(cd, "AI_Generated_Presentation.pptx") {
		t.Errorf("expected default title filename, got %q", cd)
	}
}

func TestExport_AssemblyFailure(t *testing.T) {
	exp := &fakeExporter{err: errors.New("zip exploded")}
	h := NewSlidesHandler(&fakeGenerator{}, &fakeResolver{}, exp)

	rr := postJSON(t, h.Export, map[string]interface{}{
		"slides": []models.Slide{{Title: "S"}},
	})

	if rr.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rr.Code)
	}

	var resp models.ErrorResponse
	json.NewDecoder(rr.Body).Decode(&resp)
	if resp.Error != "Failed to generate presentation" {
		t.Errorf("unexpected error message %q", resp.Error)
	}
	if resp.Details != "zip exploded" {
		t.Errorf("unexpected details %q", resp.Details)
	}
}
