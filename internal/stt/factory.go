package stt

import (
	"fmt"
	"log"
	"os"
	"strings"
)

// CreateProvider creates an STT provider based on environment configuration
func CreateProvider() (Provider, error) {
	providerName := strings.ToLower(os.Getenv("STT_PROVIDER"))

	// Default to Google if not specified
	if providerName == "" {
		providerName = "google"
		log.Printf("[STT Factory] STT_PROVIDER not set, defaulting to 'google'")
	}

	switch providerName {
	case "google":
		return createGoogleProvider()
	case "fpt":
		return createFPTProvider()
	default:
		return nil, fmt.Errorf("unsupported STT provider: %s. Supported: google, fpt", providerName)
	}
}

// createGoogleProvider creates a Google STT provider.
// GOOGLE_STT_KEY_FILE can be an API key, a path to a JSON key file, or a
// JSON string with service-account credentials.
func createGoogleProvider() (Provider, error) {
	projectID := os.Getenv("GOOGLE_STT_PROJECT_ID")
	keyData := os.Getenv("GOOGLE_STT_KEY_FILE")

	if keyData == "" {
		return nil, fmt.Errorf("GOOGLE_STT_KEY_FILE environment variable is not set. It can be:\n  - An API key (39 characters)\n  - A file path to a JSON key file\n  - A JSON string containing service account credentials")
	}

	log.Printf("[STT Factory] Creating Google STT provider")
	return NewGoogleProvider(projectID, keyData)
}

// createFPTProvider creates an FPT STT provider
func createFPTProvider() (Provider, error) {
	apiKey := os.Getenv("FPT_AI_API_KEY")
	url := os.Getenv("FPT_AI_STT_URL")

	if apiKey == "" {
		return nil, fmt.Errorf("FPT_AI_API_KEY environment variable is not set")
	}

	if url == "" {
		url = "https://api.fpt.ai/hmi/asr/v1"
		log.Printf("[STT Factory] FPT_AI_STT_URL not set, using default: %s", url)
	}

	log.Printf("[STT Factory] Creating FPT STT provider")
	return NewFPTProvider(apiKey, url), nil
}
