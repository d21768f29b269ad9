package stt

import (
	"context"
	"errors"
)

// ErrNoSpeech reports that audio was captured but nothing confidently
// transcribable was found. Callers collapse it into the same outcome as a
// service error but log the two differently.
var ErrNoSpeech = errors.New("no speech detected in audio")

// Provider defines the interface for speech-to-text providers
type Provider interface {
	// Transcribe transcribes an audio file and returns the result.
	// language is a BCP-47 tag such as "en-US".
	Transcribe(ctx context.Context, audioPath, language string) (*Result, error)

	// Name returns the name of the provider (e.g., "fpt", "google")
	Name() string
}
