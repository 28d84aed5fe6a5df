package services

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"slidechat-backend/internal/limiter"
	"slidechat-backend/internal/models"
)

type GeminiService struct {
	client *genai.Client
	model  *genai.GenerativeModel
	lim    *limiter.Limiter
}

func NewGeminiService(apiKey, modelName string, lim *limiter.Limiter) (*GeminiService, error) {
	if apiKey == "" {
		return nil, &ConfigurationError{Message: "Gemini API key not found"}
	}

	ctx := context.Background()
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	model := client.GenerativeModel(modelName)
	model.SetTemperature(0.9)
	model.SetTopK(1)
	model.SetTopP(1)
	model.SetMaxOutputTokens(8192)
	model.ResponseMIMEType = "application/json"
	model.SafetySettings = []*genai.SafetySetting{
		{
			Category:  genai.HarmCategoryHarassment,
			Threshold: genai.HarmBlockMediumAndAbove,
		},
	}

	return &GeminiService{
		client: client,
		model:  model,
		lim:    lim,
	}, nil
}

func (s *GeminiService) Close() {
	s.client.Close()
}

// GenerateSlides runs one generate/edit turn: compose the prompt, call the
// model, and normalize the reply into the slide schema. Image keywords are
// returned positionally; the caller resolves them into URLs.
func (s *GeminiService) GenerateSlides(ctx context.Context, userPrompt string, current *models.Presentation, history []models.ChatMessage) (*models.Presentation, []string, error) {
	release, err := s.lim.Acquire(ctx)
	if err != nil {
		return nil, nil, err
	}
	defer release()

	prompt := BuildSlidesPrompt(userPrompt, current, history)

	resp, err := s.model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return nil, nil, fmt.Errorf("Gemini API error: %w", err)
	}

	for i, cand := range resp.Candidates {
		if cand.FinishReason != genai.FinishReasonStop {
			log.Printf("WARNING: Gemini candidate %d stopped due to %s", i, cand.FinishReason)
		}
	}

	rawText := extractText(resp)
	pres, keywords, err := ParsePresentation(rawText)
	if err != nil {
		// Raw text is logged here for diagnosis; the user only sees a
		// generic generation failure.
		log.Printf("Failed to parse Gemini response: %v. Raw text was: %s", err, rawText)
		return nil, nil, err
	}

	return pres, keywords, nil
}

func extractText(resp *genai.GenerateContentResponse) string {
	var text strings.Builder
	for _, cand := range resp.Candidates {
		if cand.Content != nil {
			for _, part := range cand.Content.Parts {
				if t, ok := part.(genai.Text); ok {
					text.WriteString(string(t))
				}
			}
		}
	}
	return text.String()
}
