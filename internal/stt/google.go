package stt

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"

	"voicecmd/internal/audio"
)

// GoogleProvider implements STT using Google Cloud Speech-to-Text REST API
type GoogleProvider struct {
	projectID  string
	apiKey     string
	httpClient *http.Client
	useAPIKey  bool
}

// NewGoogleProvider creates a new Google STT provider.
// keyData can be either:
//   - An API key (39 characters, typically starts with "AIzaSy")
//   - A file path to a JSON service-account key file
//   - A JSON string containing the service account credentials
func NewGoogleProvider(projectID, keyData string) (*GoogleProvider, error) {
	keyData = strings.TrimSpace(keyData)

	if len(keyData) == 39 && strings.HasPrefix(keyData, "AIzaSy") {
		log.Printf("[Google STT] Using API key authentication")
		return &GoogleProvider{
			projectID:  projectID,
			apiKey:     keyData,
			httpClient: &http.Client{Timeout: 90 * time.Second},
			useAPIKey:  true,
		}, nil
	}

	ctx := context.Background()
	var client *http.Client

	if keyData == "" {
		creds, err := google.FindDefaultCredentials(ctx, "https://www.googleapis.com/auth/cloud-platform")
		if err != nil {
			return nil, fmt.Errorf("failed to find default credentials: %w. Please set GOOGLE_STT_KEY_FILE", err)
		}
		client = oauth2.NewClient(ctx, creds.TokenSource)
	} else {
		var jsonData []byte
		if strings.HasPrefix(keyData, "{") {
			jsonData = []byte(keyData)
		} else {
			log.Printf("[Google STT] Reading key file: %s", keyData)
			var err error
			jsonData, err = os.ReadFile(keyData)
			if err != nil {
				return nil, fmt.Errorf("failed to read key file %q: %w", keyData, err)
			}
		}

		creds, err := google.CredentialsFromJSON(ctx, jsonData, "https://www.googleapis.com/auth/cloud-platform")
		if err != nil {
			return nil, fmt.Errorf("failed to create credentials from JSON: %w", err)
		}
		client = oauth2.NewClient(ctx, creds.TokenSource)
		client.Timeout = 90 * time.Second
	}

	return &GoogleProvider{
		projectID:  projectID,
		httpClient: client,
	}, nil
}

// Name returns the provider name
func (p *GoogleProvider) Name() string {
	return "google"
}

// GoogleSTTRequest represents a Speech-to-Text API request
type GoogleSTTRequest struct {
	Config GoogleSTTConfig `json:"config"`
	Audio  GoogleSTTAudio  `json:"audio"`
}

type GoogleSTTConfig struct {
	Encoding                   string `json:"encoding"`
	SampleRateHertz            int    `json:"sampleRateHertz"`
	LanguageCode               string `json:"languageCode"`
	EnableAutomaticPunctuation bool   `json:"enableAutomaticPunctuation"`
	Model                      string `json:"model,omitempty"`
}

type GoogleSTTAudio struct {
	Content string `json:"content"` // Base64 encoded
}

type GoogleSTTResponse struct {
	Results []struct {
		Alternatives []struct {
			Transcript string  `json:"transcript"`
			Confidence float64 `json:"confidence"`
		} `json:"alternatives"`
	} `json:"results"`
	Error *GoogleSTTError `json:"error,omitempty"`
}

type GoogleSTTError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Status  string `json:"status"`
}

// Transcribe transcribes an audio file using the Speech-to-Text REST API.
// WAV input goes through ambient-noise calibration first; the leading
// below-threshold window is trimmed before upload.
func (p *GoogleProvider) Transcribe(ctx context.Context, audioPath, language string) (*Result, error) {
	startTime := time.Now()

	audioBytes, err := os.ReadFile(audioPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read audio file: %w", err)
	}

	fileExt := filepath.Ext(audioPath)
	log.Printf("[Google STT] Processing audio file: %s, size: %d bytes, extension: %s",
		audioPath, len(audioBytes), fileExt)

	if len(audioBytes) < 1000 {
		return nil, fmt.Errorf("audio file too small (%d bytes), may be empty or corrupted", len(audioBytes))
	}

	encoding, sampleRate := googleAudioConfig(fileExt)
	if info, err := audio.ParseWAV(audioBytes); err == nil && info.BitsPerSample == 16 && info.Channels == 1 {
		trimmed := CalibratePCM(info.PCM, info.SampleRate)
		if len(trimmed) < len(info.PCM) {
			log.Printf("[Google STT] Calibration trimmed %d leading bytes", len(info.PCM)-len(trimmed))
			audioBytes = audio.PCMToWAV(trimmed, info.SampleRate, info.Channels, 2)
		}
		encoding, sampleRate = "LINEAR16", info.SampleRate
	}

	if language == "" {
		language = "en-US"
	}

	reqBody := GoogleSTTRequest{
		Config: GoogleSTTConfig{
			Encoding:                   encoding,
			SampleRateHertz:            sampleRate,
			LanguageCode:               language,
			EnableAutomaticPunctuation: true,
			Model:                      "latest_long",
		},
		Audio: GoogleSTTAudio{
			Content: base64.StdEncoding.EncodeToString(audioBytes),
		},
	}

	reqJSON, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	apiURL := "https://speech.googleapis.com/v1/speech:recognize"
	if p.useAPIKey {
		apiURL += "?key=" + p.apiKey
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, apiURL, bytes.NewReader(reqJSON))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request to Google Speech-to-Text: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		var apiErr struct {
			Error GoogleSTTError `json:"error"`
		}
		if err := json.Unmarshal(body, &apiErr); err == nil && apiErr.Error.Message != "" {
			return nil, fmt.Errorf("Google Speech-to-Text API error: %s", apiErr.Error.Message)
		}
		return nil, fmt.Errorf("Google Speech-to-Text API returned status %d", resp.StatusCode)
	}

	var sttResp GoogleSTTResponse
	if err := json.Unmarshal(body, &sttResp); err != nil {
		return nil, fmt.Errorf("failed to parse Google Speech-to-Text response: %w", err)
	}
	if sttResp.Error != nil {
		return nil, fmt.Errorf("Google Speech-to-Text API error: %s", sttResp.Error.Message)
	}

	// An OK response with no results means the audio was accepted but
	// nothing transcribable was found.
	if len(sttResp.Results) == 0 || len(sttResp.Results[0].Alternatives) == 0 {
		log.Printf("[Google STT] No results returned")
		return nil, ErrNoSpeech
	}

	alt := sttResp.Results[0].Alternatives[0]
	transcript := strings.TrimSpace(alt.Transcript)
	if transcript == "" {
		log.Printf("[Google STT] Empty transcript returned")
		return nil, ErrNoSpeech
	}

	log.Printf("[Google STT] Transcription successful: confidence=%.2f, length=%d, duration=%v",
		alt.Confidence, len(transcript), time.Since(startTime))

	return &Result{
		Transcript:  transcript,
		Confidence:  alt.Confidence,
		Provider:    p.Name(),
		RawResponse: string(body),
	}, nil
}

// googleAudioConfig determines encoding and sample rate from the file
// extension, used when the payload is not a parseable PCM WAV.
func googleAudioConfig(fileExt string) (string, int) {
	switch strings.ToLower(fileExt) {
	case ".wav":
		return "LINEAR16", 16000
	case ".mp3":
		return "MP3", 44100
	case ".ogg", ".webm":
		return "OGG_OPUS", 48000
	case ".flac":
		return "FLAC", 44100
	default:
		return "LINEAR16", 16000
	}
}
