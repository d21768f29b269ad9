package api

import (
	"errors"
	"log"
	"net/http"
	"os"
	"path/filepath"

	"github.com/gin-gonic/gin"

	"voicecmd/internal/llm"
	"voicecmd/internal/pipeline"
	"voicecmd/internal/storage"
	"voicecmd/internal/tts"
	"voicecmd/internal/utils"
)

// Handler serves the voice-command HTTP surface.
type Handler struct {
	pipe           *pipeline.Orchestrator
	audioDir       string
	maxUploadBytes int64
}

func NewHandler(pipe *pipeline.Orchestrator, audioDir string, maxUploadBytes int64) *Handler {
	return &Handler{
		pipe:           pipe,
		audioDir:       audioDir,
		maxUploadBytes: maxUploadBytes,
	}
}

// Register attaches all routes to the engine.
func (h *Handler) Register(r *gin.Engine) {
	r.GET("/", h.index)
	r.GET("/api", h.home)
	r.GET("/health", h.healthCheck)
	r.POST("/voice-command", h.voiceCommand)
	r.POST("/text-command", h.textCommand)
	r.GET("/download-audio/:filename", h.downloadAudio)
}

// index serves the bundled demo page when present.
func (h *Handler) index(c *gin.Context) {
	demo := filepath.Join("static", "demo.html")
	if _, err := os.Stat(demo); err == nil {
		c.File(demo)
		return
	}
	c.Redirect(http.StatusFound, "/api")
}

// home returns service metadata
func (h *Handler) home(c *gin.Context) {
	utils.Success(c, gin.H{
		"message": "Voice Recognition API is running!",
		"endpoints": gin.H{
			"/voice-command": "POST - Upload audio file for voice recognition and response",
			"/text-command":  "POST - Send text command and get voice response",
			"/health":        "GET - Health check",
		},
	})
}

// healthCheck returns server health status
func (h *Handler) healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "voice-recognition-api",
	})
}

// voiceCommand accepts a multipart audio upload, runs it through the
// pipeline, and returns reply text plus the synthesized audio URL.
func (h *Handler) voiceCommand(c *gin.Context) {
	if c.Request.ContentLength > h.maxUploadBytes {
		utils.Error(c, http.StatusRequestEntityTooLarge, "File too large. Maximum size is 16MB.")
		return
	}
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxUploadBytes)

	file, err := c.FormFile("audio")
	if err != nil {
		// Chunked uploads carry no Content-Length; the limit then trips
		// inside the multipart parse instead of the check above.
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			utils.Error(c, http.StatusRequestEntityTooLarge, "File too large. Maximum size is 16MB.")
			return
		}
		utils.Error(c, http.StatusBadRequest, "No audio file provided")
		return
	}
	if file.Filename == "" {
		utils.Error(c, http.StatusBadRequest, "No file selected")
		return
	}
	if file.Size > h.maxUploadBytes {
		utils.Error(c, http.StatusRequestEntityTooLarge, "File too large. Maximum size is 16MB.")
		return
	}

	res, fail := h.pipe.VoiceCommand(c.Request.Context(), file, llm.Options{}, tts.Options{})
	if fail != nil {
		utils.Error(c, fail.HTTPStatus(), fail.Message)
		return
	}

	utils.Success(c, gin.H{
		"recognized_text":    res.RecognizedText,
		"response_text":      res.ReplyText,
		"audio_response_url": "/download-audio/" + res.AudioFile,
	})
}

// TextCommandRequest is the JSON body of POST /text-command. History and
// context are optional conversation state resupplied by the caller.
type TextCommandRequest struct {
	Text     string     `json:"text"`
	Language string     `json:"language"`
	Slow     bool       `json:"slow"`
	Context  string     `json:"context"`
	History  []llm.Turn `json:"history"`
}

// textCommand accepts text input and returns reply text plus the
// synthesized audio URL.
func (h *Handler) textCommand(c *gin.Context) {
	var req TextCommandRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Text == "" {
		utils.Error(c, http.StatusBadRequest, "No text provided")
		return
	}

	genOpts := llm.Options{History: req.History, Context: req.Context}
	ttsOpts := tts.Options{Language: req.Language, Slow: req.Slow}

	res, fail := h.pipe.TextCommand(c.Request.Context(), req.Text, genOpts, ttsOpts)
	if fail != nil {
		utils.Error(c, fail.HTTPStatus(), fail.Message)
		return
	}

	utils.Success(c, gin.H{
		"input_text":         res.RecognizedText,
		"response_text":      res.ReplyText,
		"audio_response_url": "/download-audio/" + res.AudioFile,
	})
}

// downloadAudio serves a generated audio file as an attachment.
func (h *Handler) downloadAudio(c *gin.Context) {
	name, err := storage.SanitizeFilename(c.Param("filename"))
	if err != nil {
		utils.Error(c, http.StatusNotFound, "Audio file not found")
		return
	}

	path := filepath.Join(h.audioDir, name)
	if info, err := os.Stat(path); err != nil || info.IsDir() {
		utils.Error(c, http.StatusNotFound, "Audio file not found")
		return
	}

	log.Printf("[API] Serving audio file: %s", path)
	c.FileAttachment(path, name)
}
