package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"
)

type Config struct {
	Port        string
	OpenAIKey   string
	OpenAIModel string

	STTLanguage string

	TTSBackend    string
	TTSLanguage   string
	PiperEndpoint string
	PiperVoice    string

	UploadDir      string
	AudioDir       string
	MaxUploadBytes int64

	SweepMaxAge   time.Duration
	SweepInterval time.Duration
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	cfg := &Config{
		Port:        getEnv("PORT", "8080"),
		OpenAIKey:   os.Getenv("OPENAI_API_KEY"),
		OpenAIModel: os.Getenv("OPENAI_MODEL"),

		STTLanguage: getEnv("STT_LANGUAGE", "en-US"),

		TTSBackend:    getEnv("TTS_BACKEND", "google"),
		TTSLanguage:   getEnv("TTS_LANGUAGE", "en"),
		PiperEndpoint: os.Getenv("PIPER_ENDPOINT"),
		PiperVoice:    os.Getenv("PIPER_VOICE"),

		UploadDir:      getEnv("UPLOAD_DIR", "uploads"),
		AudioDir:       getEnv("AUDIO_OUTPUT_DIR", filepath.Join("static", "audio")),
		MaxUploadBytes: getEnvInt64("MAX_UPLOAD_BYTES", 16<<20),

		SweepMaxAge:   getEnvHours("AUDIO_MAX_AGE_HOURS", 24),
		SweepInterval: getEnvMinutes("SWEEP_INTERVAL_MINUTES", 60),
	}

	// The language-model credential is the one startup-fatal setting;
	// everything else has a usable default.
	if cfg.OpenAIKey == "" {
		return nil, fmt.Errorf("OPENAI_API_KEY is required. Please set it as an environment variable or in .env")
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt64(key string, fallback int64) int64 {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil && n > 0 {
			return n
		}
	}
	return fallback
}

func getEnvHours(key string, fallback int) time.Duration {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return time.Duration(n) * time.Hour
		}
	}
	return time.Duration(fallback) * time.Hour
}

func getEnvMinutes(key string, fallback int) time.Duration {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return time.Duration(n) * time.Minute
		}
	}
	return time.Duration(fallback) * time.Minute
}
