package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"slidechat-backend/internal/models"
	"slidechat-backend/internal/services"
)

// Whole-pipeline deadlines. The generate path makes one model call plus a
// fan-out of image lookups; export re-fetches every image.
const (
	generateTimeout = 120 * time.Second
	exportTimeout   = 120 * time.Second
)

const defaultPresentationTitle = "AI Generated Presentation"

type slideGenerator interface {
	GenerateSlides(ctx context.Context, prompt string, current *models.Presentation, history []models.ChatMessage) (*models.Presentation, []string, error)
}

type imageResolver interface {
	ResolveAll(ctx context.Context, pres *models.Presentation, keywords []string)
}

type deckExporter interface {
	Export(ctx context.Context, slides []models.Slide, title string) ([]byte, error)
}

type SlidesHandler struct {
	// generator is nil when no model credential is configured; the
	// failure surfaces per request, not at startup.
	generator slideGenerator
	resolver  imageResolver
	exporter  deckExporter
}

func NewSlidesHandler(generator slideGenerator, resolver imageResolver, exporter deckExporter) *SlidesHandler {
	return &SlidesHandler{
		generator: generator,
		resolver:  resolver,
		exporter:  exporter,
	}
}

// Generate runs one generate/edit turn: prompt in, fully resolved
// presentation out. Every image field in the response is a fetchable URL
// or "".
func (h *SlidesHandler) Generate(w http.ResponseWriter, r *http.Request) {
	var req models.GenerateSlidesRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "Invalid request body"})
		return
	}

	if strings.TrimSpace(req.Prompt) == "" {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "Prompt is required"})
		return
	}

	if h.generator == nil {
		writeJSON(w, http.StatusInternalServerError, models.ErrorResponse{Error: "Gemini API key not found"})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), generateTimeout)
	defer cancel()

	pres, keywords, err := h.generator.GenerateSlides(ctx, req.Prompt, req.CurrentSlides, req.History)
	if err != nil {
		log.Printf("Error generating slides: %v", err)
		writeJSON(w, http.StatusInternalServerError, models.ErrorResponse{
			Error:   "Failed to generate slides",
			Details: err.Error(),
		})
		return
	}

	h.resolver.ResolveAll(ctx, pres, keywords)

	writeJSON(w, http.StatusOK, pres)
}

// Export assembles the finalized slide schema into a downloadable pptx.
func (h *SlidesHandler) Export(w http.ResponseWriter, r *http.Request) {
	var req models.ExportRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "Invalid request body"})
		return
	}

	if len(req.Slides) == 0 {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "No slide data provided"})
		return
	}

	title := req.PresentationTitle
	if title == "" {
		title = defaultPresentationTitle
	}

	ctx, cancel := context.WithTimeout(r.Context(), exportTimeout)
	defer cancel()

	data, err := h.exporter.Export(ctx, req.Slides, title)
	if err != nil {
		var emptyInput *services.EmptyInputError
		if errors.As(err, &emptyInput) {
			writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: emptyInput.Message})
			return
		}
		// Export failures are logged only; the client just sees the
		// download not happen.
		log.Printf("Server-side PPTX generation error: %v", err)
		writeJSON(w, http.StatusInternalServerError, models.ErrorResponse{
			Error:   "Failed to generate presentation",
			Details: err.Error(),
		})
		return
	}

	w.Header().Set("Content-Type", services.PptxMIMEType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", services.SanitizeFilename(title)))
	w.Header().Set("Content-Length", fmt.Sprintf("%d", len(data)))
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}

// Shared helpers

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}
