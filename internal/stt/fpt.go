package stt

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"voicecmd/internal/audio"
)

// FPTProvider implements STT using FPT.AI Speech-to-Text API
type FPTProvider struct {
	apiKey string
	url    string
	client *http.Client
}

// NewFPTProvider creates a new FPT STT provider
func NewFPTProvider(apiKey, url string) *FPTProvider {
	return &FPTProvider{
		apiKey: apiKey,
		url:    url,
		client: &http.Client{Timeout: 90 * time.Second},
	}
}

// Name returns the provider name
func (p *FPTProvider) Name() string {
	return "fpt"
}

// FPTSTTResponse represents FPT.AI STT API response
type FPTSTTResponse struct {
	Hypotheses []struct {
		Utterance  string  `json:"utterance"`
		Confidence float64 `json:"confidence"`
	} `json:"hypotheses"`
	ErrorCode int    `json:"errorCode,omitempty"`
	Message   string `json:"message,omitempty"`
}

// Transcribe sends the audio file to FPT.AI and returns the transcript.
// WAV input goes through ambient-noise calibration first, the same as the
// Google provider. The language tag is not configurable on this endpoint
// and is ignored.
func (p *FPTProvider) Transcribe(ctx context.Context, audioPath, language string) (*Result, error) {
	startTime := time.Now()

	audioBytes, err := os.ReadFile(audioPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read audio file: %w", err)
	}

	log.Printf("[FPT STT] Processing audio file: %s, size: %d bytes, extension: %s",
		audioPath, len(audioBytes), filepath.Ext(audioPath))

	if len(audioBytes) < 1000 {
		return nil, fmt.Errorf("audio file too small (%d bytes), may be empty or corrupted", len(audioBytes))
	}

	if info, err := audio.ParseWAV(audioBytes); err == nil && info.BitsPerSample == 16 && info.Channels == 1 {
		trimmed := CalibratePCM(info.PCM, info.SampleRate)
		if len(trimmed) < len(info.PCM) {
			log.Printf("[FPT STT] Calibration trimmed %d leading bytes", len(info.PCM)-len(trimmed))
			audioBytes = audio.PCMToWAV(trimmed, info.SampleRate, info.Channels, 2)
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.url, bytes.NewReader(audioBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("api-key", p.apiKey)
	req.Header.Set("Content-Type", "text/plain")

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request to FPT.AI: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		log.Printf("[FPT STT] API error: Status %d, Body: %s", resp.StatusCode, preview(body))
		return nil, fmt.Errorf("FPT.AI API returned status %d", resp.StatusCode)
	}

	var sttResp FPTSTTResponse
	if err := json.Unmarshal(body, &sttResp); err != nil {
		return nil, fmt.Errorf("failed to parse FPT.AI response: %w", err)
	}

	if sttResp.ErrorCode != 0 {
		return nil, fmt.Errorf("FPT.AI API error %d: %s", sttResp.ErrorCode, sttResp.Message)
	}

	if len(sttResp.Hypotheses) == 0 {
		log.Printf("[FPT STT] No hypotheses returned")
		return nil, ErrNoSpeech
	}

	hyp := sttResp.Hypotheses[0]
	transcript := strings.TrimSpace(hyp.Utterance)
	if transcript == "" {
		log.Printf("[FPT STT] Empty transcript returned")
		return nil, ErrNoSpeech
	}

	log.Printf("[FPT STT] Transcription successful: confidence=%.2f, length=%d, duration=%v",
		hyp.Confidence, len(transcript), time.Since(startTime))

	return &Result{
		Transcript:  transcript,
		Confidence:  hyp.Confidence,
		Provider:    p.Name(),
		RawResponse: string(body),
	}, nil
}

func preview(body []byte) string {
	s := string(body)
	if len(s) > 500 {
		s = s[:500] + "..."
	}
	return s
}
