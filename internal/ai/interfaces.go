package ai

import (
	"context"
)

// Generator submits prompts to a text-generation model. Initialize must be
// called with a credential before GenerateContent.
type Generator interface {
	// Initialize prepares the client with the caller's credential.
	Initialize(ctx context.Context, credential string) error
	// GenerateContent submits the full prompt and returns the generated text.
	GenerateContent(ctx context.Context, prompt string) (string, error)
}
