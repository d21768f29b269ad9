// Package tts converts reply text into audio files in the output directory.
//
// Output files outlive the request that created them: they must stay
// retrievable through the download URL returned to the caller. They are
// reclaimed only by Sweep.
package tts

import "context"

// Options controls synthesis behavior.
type Options struct {
	// Language is the language code for the voice (e.g. "en"). Empty means
	// the synthesizer default.
	Language string

	// Slow selects a slower speaking rate where the backend supports it.
	Slow bool

	// Filename overrides the timestamp-derived output filename.
	Filename string
}

// Synthesizer converts text to an audio file and returns its path.
type Synthesizer interface {
	Synthesize(ctx context.Context, text string, opts Options) (string, error)

	// Name returns the backend name (e.g., "google", "piper")
	Name() string
}
