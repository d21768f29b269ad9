package tts

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"
	"unicode/utf8"
)

const (
	translateTTSEndpoint = "https://translate.google.com/translate_tts"

	// The endpoint rejects long q parameters; text is split into chunks
	// of at most this many characters, preferring sentence boundaries.
	maxChunkChars = 200
)

// GoogleSynthesizer writes MP3 files using the Google Translate TTS
// endpoint. One output file may be assembled from several chunk requests.
type GoogleSynthesizer struct {
	outputDir string
	language  string
	endpoint  string
	client    *http.Client
}

func NewGoogleSynthesizer(outputDir, language string) *GoogleSynthesizer {
	if language == "" {
		language = "en"
	}
	return &GoogleSynthesizer{
		outputDir: outputDir,
		language:  language,
		endpoint:  translateTTSEndpoint,
		client:    &http.Client{Timeout: 30 * time.Second},
	}
}

// Name returns the backend name
func (s *GoogleSynthesizer) Name() string {
	return "google"
}

// Synthesize converts text to speech and writes it under the output
// directory, returning the file path.
func (s *GoogleSynthesizer) Synthesize(ctx context.Context, text string, opts Options) (string, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return "", fmt.Errorf("empty text provided for TTS")
	}

	lang := opts.Language
	if lang == "" {
		lang = s.language
	}

	filename := opts.Filename
	if filename == "" {
		filename = fmt.Sprintf("response_%d.mp3", time.Now().UnixNano())
	}

	if err := os.MkdirAll(s.outputDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}

	outPath := filepath.Join(s.outputDir, filename)
	out, err := os.Create(outPath)
	if err != nil {
		return "", fmt.Errorf("failed to create output file: %w", err)
	}

	for _, chunk := range splitText(text, maxChunkChars) {
		if err := s.fetchChunk(ctx, chunk, lang, opts.Slow, out); err != nil {
			out.Close()
			_ = os.Remove(outPath)
			return "", err
		}
	}

	if err := out.Close(); err != nil {
		_ = os.Remove(outPath)
		return "", fmt.Errorf("failed to finish output file: %w", err)
	}

	log.Printf("[Google TTS] Audio saved to: %s", outPath)
	return outPath, nil
}

func (s *GoogleSynthesizer) fetchChunk(ctx context.Context, chunk, lang string, slow bool, out io.Writer) error {
	speed := "1"
	if slow {
		speed = "0.24"
	}

	q := url.Values{
		"ie":       {"UTF-8"},
		"client":   {"tw-ob"},
		"tl":       {lang},
		"ttsspeed": {speed},
		"q":        {chunk},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.endpoint+"?"+q.Encode(), nil)
	if err != nil {
		return fmt.Errorf("failed to create TTS request: %w", err)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to reach Google TTS: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("Google TTS returned status %d", resp.StatusCode)
	}

	if _, err := io.Copy(out, resp.Body); err != nil {
		return fmt.Errorf("failed to write TTS audio: %w", err)
	}
	return nil
}

// splitText breaks text into chunks no longer than max bytes, cutting at
// sentence ends where possible, then word boundaries, then the nearest rune
// boundary so no chunk ever carries a split rune.
func splitText(text string, max int) []string {
	var chunks []string
	for len(text) > max {
		cut := -1
		for _, sep := range []string{". ", "! ", "? ", ", ", " "} {
			if i := strings.LastIndex(text[:max], sep); i > cut {
				cut = i + len(sep) - 1
			}
		}
		if cut <= 0 {
			cut = max
			for cut > 0 && !utf8.RuneStart(text[cut]) {
				cut--
			}
			if cut == 0 {
				cut = max
			}
		}
		chunks = append(chunks, strings.TrimSpace(text[:cut]))
		text = strings.TrimSpace(text[cut:])
	}
	if text != "" {
		chunks = append(chunks, text)
	}
	return chunks
}
