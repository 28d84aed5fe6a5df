package models

// ChatMessage represents a single message in the conversation the client
// keeps in local storage. Role is "user" or "model".
type ChatMessage struct {
	Role string `json:"role"`
	Text string `json:"text"`
}

// SessionState documents the client-local persisted state shape. The server
// never stores it; pieces of it show up inside request payloads (see
// GenerateSlidesRequest.History and CurrentSlides).
type SessionState struct {
	UserName    string        `json:"userName"`
	ChatHistory []ChatMessage `json:"chatHistory"`
	SlideData   *Presentation `json:"slideData"`
}
