package services

import "fmt"

// ConfigurationError means a required credential is missing. It is fatal to
// the request and never retried.
type ConfigurationError struct {
	Message string
}

func (e *ConfigurationError) Error() string {
	return e.Message
}

// MalformedResponseError means the model's output could not be parsed into
// the slide schema. RawText keeps the offending output for diagnosis.
type MalformedResponseError struct {
	RawText string
	Cause   error
}

func (e *MalformedResponseError) Error() string {
	return fmt.Sprintf("failed to parse AI response as JSON: %v", e.Cause)
}

func (e *MalformedResponseError) Unwrap() error {
	return e.Cause
}

// EmptyInputError means a request arrived without the data it needs. It is
// rejected before any external call is made.
type EmptyInputError struct {
	Message string
}

func (e *EmptyInputError) Error() string {
	return e.Message
}
