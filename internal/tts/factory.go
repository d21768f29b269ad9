package tts

import (
	"fmt"
	"log"
	"strings"
)

// CreateSynthesizer creates a TTS backend by name. Supported backends are
// "google" (Translate TTS over HTTP, writes MP3) and "piper" (local Wyoming
// server, writes WAV).
func CreateSynthesizer(backend, outputDir, language, piperEndpoint, piperVoice string) (Synthesizer, error) {
	switch strings.ToLower(backend) {
	case "", "google":
		log.Printf("[TTS Factory] Creating Google TTS backend")
		return NewGoogleSynthesizer(outputDir, language), nil
	case "piper":
		if piperEndpoint == "" {
			piperEndpoint = "localhost:10200"
			log.Printf("[TTS Factory] PIPER_ENDPOINT not set, using default: %s", piperEndpoint)
		}
		log.Printf("[TTS Factory] Creating Piper TTS backend at %s", piperEndpoint)
		return NewPiperSynthesizer(outputDir, piperEndpoint, piperVoice), nil
	default:
		return nil, fmt.Errorf("unsupported TTS backend: %s. Supported: google, piper", backend)
	}
}
