package services

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"slidechat-backend/internal/models"
)

// jsonStructure is the schema the model must return, verbatim in the prompt.
const jsonStructure = `
{
  "slides": [
    {
      "title": "Slide 1 Title",
      "content": [
        "Bullet point 1",
        "Bullet point 2"
      ],
      "image_keyword": "<keyword>"
    },
    {
      "title": "Slide 2 Title",
      "content": [
        "Content for slide 2..."
      ],
      "image_keyword": "<another-keyword>"
    }
  ]
}
`

// promptSlide is the model-facing slide shape. It exists only inside the
// prompt/response cycle: the model works with keywords, never with URLs.
type promptSlide struct {
	Title        string   `json:"title"`
	Content      []string `json:"content"`
	ImageKeyword string   `json:"image_keyword"`
}

type promptPresentation struct {
	Slides []promptSlide `json:"slides"`
}

// legacyKeywordSuffix matches the trailing "/?<keyword>" of the old public
// source.unsplash.com URL shape, from which the keyword is recoverable.
var legacyKeywordSuffix = regexp.MustCompile(`/\?([^/]+)$`)

// deriveImageKeyword recovers the model-facing keyword from a resolved image
// URL. URLs from the authenticated API are opaque and cannot be reversed, so
// the slide title supplies a best-effort fallback. An empty image means the
// slide explicitly has no image and the keyword stays empty.
func deriveImageKeyword(image, title string) string {
	if image == "" {
		return ""
	}

	if m := legacyKeywordSuffix.FindStringSubmatch(image); m != nil && m[1] != "" {
		return m[1]
	}

	words := strings.Fields(title)
	if len(words) > 2 {
		words = words[:2]
	}
	return strings.Join(words, "-")
}

// prepareSlidesForModel maps the client's resolved slides back into the
// keyword form the model is instructed to edit. Returns nil for a nil or
// empty presentation.
func prepareSlidesForModel(current *models.Presentation) *promptPresentation {
	if current == nil || len(current.Slides) == 0 {
		return nil
	}

	out := &promptPresentation{Slides: make([]promptSlide, len(current.Slides))}
	for i, slide := range current.Slides {
		content := slide.Content
		if content == nil {
			content = []string{}
		}
		out.Slides[i] = promptSlide{
			Title:        slide.Title,
			Content:      content,
			ImageKeyword: deriveImageKeyword(slide.Image, slide.Title),
		}
	}
	return out
}

// maxHistoryTurns caps how much prior conversation is folded into a prompt.
const maxHistoryTurns = 6

// BuildSlidesPrompt composes the full model input for a generate/edit turn.
// Pure transformation, no side effects.
func BuildSlidesPrompt(userPrompt string, current *models.Presentation, history []models.ChatMessage) string {
	slidesForPrompt := prepareSlidesForModel(current)

	var b strings.Builder

	b.WriteString("You are an assistant that helps create PowerPoint presentations.\n")
	b.WriteString("Your **ONLY** output must be a single, valid JSON object. Do not include any text before or after the JSON, and do not use markdown (e.g., ```json).\n")
	b.WriteString("The JSON object must follow this exact structure:\n")
	b.WriteString(jsonStructure)
	b.WriteString("\n**IMAGE RULE:** You **must** populate the \"image_keyword\" field for every slide.\n")
	b.WriteString("- The value **must** be a single, relevant, URL-safe keyword for the slide's content (e.g., \"technology\", \"nature\", \"business\").\n")
	b.WriteString("- If no image is relevant, you **must** set the image_keyword field to an empty string: `\"image_keyword\": \"\"`\n")

	if len(history) > 0 {
		turns := history
		if len(turns) > maxHistoryTurns {
			turns = turns[len(turns)-maxHistoryTurns:]
		}
		b.WriteString("\n**Recent Conversation (context only):**\n")
		for _, msg := range turns {
			b.WriteString(fmt.Sprintf("%s: %s\n", msg.Role, msg.Text))
		}
	}

	b.WriteString(fmt.Sprintf("\n**User's Request:** %s\n", userPrompt))

	if slidesForPrompt != nil {
		slideData, _ := json.MarshalIndent(slidesForPrompt, "", "  ")
		b.WriteString("\n**Current Slide Data (to be edited):**\n")
		b.Write(slideData)
		b.WriteString("\n\nBased on the user's request, modify the \"Current Slide Data\". Do not just generate new slides unless the user asks to \"add\" new ones.\n")
	} else {
		b.WriteString("\nGenerate a new presentation based on the user's request.\n")
	}

	return b.String()
}
