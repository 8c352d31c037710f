package core

import (
	"errors"
	"fmt"
)

var (
	// ErrEmptyImage is returned when a request carries no image payload.
	ErrEmptyImage = errors.New("missing image data")
	// ErrInvalidImage is returned when the image payload is not valid base64.
	ErrInvalidImage = errors.New("invalid base64 image data")
	// ErrEmptyDescription is returned when a recommendation request carries no item description.
	ErrEmptyDescription = errors.New("missing item description")
	// ErrNoItems is returned when an outfit request names no wardrobe items.
	ErrNoItems = errors.New("no wardrobe items provided")
	// ErrSecretUnavailable is returned when the API key cannot be retrieved
	// from the secret store.
	ErrSecretUnavailable = errors.New("secret store unavailable")
)

// ImageTooLargeError reports a decoded image exceeding the size ceiling.
type ImageTooLargeError struct {
	Size  int
	Limit int
}

func (e *ImageTooLargeError) Error() string {
	return fmt.Sprintf("image too large: %.1f MB exceeds the %.0f MB limit",
		float64(e.Size)/(1024*1024), float64(e.Limit)/(1024*1024))
}

// MalformedOutputError reports model output that could not be parsed.
// Raw holds a bounded excerpt of the model's text for diagnostics, never
// the full response.
type MalformedOutputError struct {
	Raw string
}

func (e *MalformedOutputError) Error() string {
	return "failed to parse model output as JSON"
}
