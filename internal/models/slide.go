package models

// Slide is one slide's finalized content. Image holds a directly fetchable
// absolute URL once resolved, or "" meaning "no image", never a raw keyword.
type Slide struct {
	Title   string   `json:"title"`
	Content []string `json:"content"`
	Image   string   `json:"image"`
}

// Presentation is the unit of editable state: an ordered slide sequence.
// Slides have no identity beyond position; an edit replaces the whole set.
type Presentation struct {
	Slides []Slide `json:"slides"`
}

// GenerateSlidesRequest is the payload for the generate/edit endpoint.
// CurrentSlides is nil on a first-turn request. History is optional recent
// chat context the client chooses to send along.
type GenerateSlidesRequest struct {
	Prompt        string        `json:"prompt"`
	CurrentSlides *Presentation `json:"currentSlides"`
	History       []ChatMessage `json:"history,omitempty"`
}

// ExportRequest is the payload for the pptx export endpoint.
type ExportRequest struct {
	Slides            []Slide `json:"slides"`
	PresentationTitle string  `json:"presentationTitle"`
}

// ErrorResponse is the error envelope for both endpoints.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}
