package services

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"slidechat-backend/internal/models"
)

// fencedJSONBlock captures the body of a ```json fenced block. A fenced
// block always wins over any other {...} span in the surrounding text.
var fencedJSONBlock = regexp.MustCompile("(?s)```json\\s*(.*?)\\s*```")

// extractJSON pulls the JSON object out of raw model text that may be
// wrapped in markdown or chatter. Returns the candidate string; validity is
// the caller's problem.
func extractJSON(text string) string {
	if m := fencedJSONBlock.FindStringSubmatch(text); m != nil && strings.TrimSpace(m[1]) != "" {
		return strings.TrimSpace(m[1])
	}

	first := strings.Index(text, "{")
	last := strings.LastIndex(text, "}")
	if first != -1 && last > first {
		return text[first : last+1]
	}

	return text
}

// ParsePresentation validates raw model output into the slide schema. The
// model is untrusted input: every field gets an explicit default, and
// anything without a slides array is a MalformedResponseError.
//
// The returned keywords align positionally with the slides; resolving them
// into URLs is the Image Resolver's job, so every Slide.Image starts out "".
func ParsePresentation(rawText string) (*models.Presentation, []string, error) {
	jsonText := extractJSON(rawText)

	var payload struct {
		Slides []json.RawMessage `json:"slides"`
	}
	if err := json.Unmarshal([]byte(jsonText), &payload); err != nil {
		return nil, nil, &MalformedResponseError{RawText: rawText, Cause: err}
	}
	if payload.Slides == nil {
		return nil, nil, &MalformedResponseError{
			RawText: rawText,
			Cause:   fmt.Errorf("response has no slides array"),
		}
	}

	pres := &models.Presentation{Slides: make([]models.Slide, 0, len(payload.Slides))}
	keywords := make([]string, 0, len(payload.Slides))
	for _, raw := range payload.Slides {
		var entry struct {
			Title        string        `json:"title"`
			Content      []interface{} `json:"content"`
			ImageKeyword string        `json:"image_keyword"`
		}
		if err := json.Unmarshal(raw, &entry); err != nil {
			return nil, nil, &MalformedResponseError{RawText: rawText, Cause: err}
		}

		content := make([]string, 0, len(entry.Content))
		for _, item := range entry.Content {
			switch v := item.(type) {
			case nil:
				// dropped
			case string:
				content = append(content, v)
			default:
				// The model occasionally emits bare numbers or booleans
				// as bullets; coerce rather than fail the whole deck.
				content = append(content, fmt.Sprint(v))
			}
		}

		pres.Slides = append(pres.Slides, models.Slide{
			Title:   entry.Title,
			Content: content,
		})
		keywords = append(keywords, entry.ImageKeyword)
	}

	return pres, keywords, nil
}
