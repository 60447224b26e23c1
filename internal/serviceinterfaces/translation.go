// Package serviceinterfaces defines service interfaces for dependency injection and testing.
package serviceinterfaces

import (
	"context"

	"gabaychat/internal/models"
)

// TranslationClient defines the interface for the upstream translation and
// message backend.
type TranslationClient interface {
	// Translate translates text into the target language. Equal source and
	// target codes (after alias normalization) return the text unchanged
	// without a network call.
	Translate(ctx context.Context, text, fromLang, toLang string) (string, error)

	// SupportedLanguages returns the backend's supported language codes.
	SupportedLanguages(ctx context.Context) ([]string, error)

	// IsAvailable probes the backend root and reports reachability. It never
	// returns an error; every failure reads as false.
	IsAvailable(ctx context.Context) bool

	// TestConnection probes the backend root and returns a structured result
	// for display instead of an error.
	TestConnection(ctx context.Context) *models.ConnectionStatus

	// SaveMessage persists a message with the backend and returns its record.
	SaveMessage(ctx context.Context, text string) (*models.SavedMessage, error)

	// Messages lists stored messages filtered by language.
	Messages(ctx context.Context, lang string) ([]models.Message, error)
}
