package main

import (
	"log"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"voicecmd/internal/api"
	"voicecmd/internal/audio"
	"voicecmd/internal/config"
	"voicecmd/internal/llm"
	"voicecmd/internal/pipeline"
	"voicecmd/internal/storage"
	"voicecmd/internal/stt"
	"voicecmd/internal/tts"
)

func main() {
	// Load .env file if it exists (ignore error if file doesn't exist)
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Set Gin mode (default to release mode)
	if os.Getenv("GIN_MODE") == "" {
		gin.SetMode(gin.ReleaseMode)
	}

	for _, dir := range []string{cfg.UploadDir, cfg.AudioDir} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			log.Fatalf("Failed to create directory %s: %v", dir, err)
		}
	}

	// Services are constructed once and shared across requests; none of
	// them holds per-request state.
	recognizer, err := stt.CreateProvider()
	if err != nil {
		log.Fatalf("Failed to create STT provider: %v", err)
	}
	log.Printf("STT provider initialized: %s", recognizer.Name())

	synthesizer, err := tts.CreateSynthesizer(cfg.TTSBackend, cfg.AudioDir, cfg.TTSLanguage, cfg.PiperEndpoint, cfg.PiperVoice)
	if err != nil {
		log.Fatalf("Failed to create TTS backend: %v", err)
	}
	log.Printf("TTS backend initialized: %s", synthesizer.Name())

	generator := llm.NewGenerator(cfg.OpenAIKey, cfg.OpenAIModel)
	store := storage.New(cfg.UploadDir)

	pipe := pipeline.New(store, audio.NewNormalizer(), recognizer, generator, synthesizer, cfg.STTLanguage)

	go sweepLoop(cfg.AudioDir, cfg.SweepMaxAge, cfg.SweepInterval)

	r := gin.Default()
	r.Use(corsMiddleware())
	api.NewHandler(pipe, cfg.AudioDir, cfg.MaxUploadBytes).Register(r)

	log.Printf("Voice command API running on :%s", cfg.Port)
	if err := r.Run(":" + cfg.Port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}

// sweepLoop periodically removes synthesized audio files older than maxAge.
func sweepLoop(dir string, maxAge, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for range ticker.C {
		removed, err := tts.Sweep(dir, maxAge)
		if err != nil {
			log.Printf("Audio sweep failed: %v", err)
			continue
		}
		if removed > 0 {
			log.Printf("Audio sweep removed %d old files", removed)
		}
	}
}

// corsMiddleware adds CORS headers for browser clients
func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	}
}
