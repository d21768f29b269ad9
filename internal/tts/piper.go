package tts

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"voicecmd/internal/audio"
)

// PiperSynthesizer writes WAV files using a local Piper server speaking the
// Wyoming protocol (TCP, one event per exchange):
//
//	<json_length> <payload_length>\n
//	<json_bytes>\n
//	<payload_bytes>   (if payload_length > 0)
type PiperSynthesizer struct {
	endpoint  string
	voice     string
	outputDir string
}

func NewPiperSynthesizer(outputDir, endpoint, voice string) *PiperSynthesizer {
	endpoint = strings.TrimPrefix(endpoint, "tcp://")
	if voice == "" {
		voice = "en_US-lessac-medium"
	}
	return &PiperSynthesizer{
		endpoint:  endpoint,
		voice:     voice,
		outputDir: outputDir,
	}
}

// Name returns the backend name
func (s *PiperSynthesizer) Name() string {
	return "piper"
}

// Synthesize sends text to the Piper server, collects the PCM chunks, and
// writes the result as a WAV file under the output directory.
func (s *PiperSynthesizer) Synthesize(ctx context.Context, text string, opts Options) (string, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return "", fmt.Errorf("empty text provided for TTS")
	}

	dialer := net.Dialer{Timeout: 10 * time.Second}
	conn, err := dialer.DialContext(ctx, "tcp", s.endpoint)
	if err != nil {
		return "", fmt.Errorf("failed to connect to piper at %s: %w", s.endpoint, err)
	}
	defer conn.Close()

	if deadline, ok := ctx.Deadline(); ok {
		_ = conn.SetDeadline(deadline)
	} else {
		_ = conn.SetDeadline(time.Now().Add(60 * time.Second))
	}

	synth := wyomingEvent{
		Type: "synthesize",
		Data: map[string]any{
			"text":  text,
			"voice": map[string]any{"name": s.voice},
		},
	}
	if err := writeWyomingEvent(conn, synth, nil); err != nil {
		return "", fmt.Errorf("failed to send synthesize event: %w", err)
	}

	var (
		pcm        bytes.Buffer
		sampleRate = 22050
		channels   = 1
		width      = 2
	)

	for {
		evt, payload, err := readWyomingEvent(conn)
		if err != nil {
			return "", fmt.Errorf("failed to read piper event: %w", err)
		}

		switch evt.Type {
		case "audio-start":
			if v, ok := evt.Data["rate"].(float64); ok {
				sampleRate = int(v)
			}
			if v, ok := evt.Data["channels"].(float64); ok {
				channels = int(v)
			}
			if v, ok := evt.Data["width"].(float64); ok {
				width = int(v)
			}
		case "audio-chunk":
			pcm.Write(payload)
		case "audio-stop":
			return s.writeWAV(pcm.Bytes(), sampleRate, channels, width, opts.Filename)
		case "error":
			msg := "unknown error"
			if v, ok := evt.Data["text"].(string); ok {
				msg = v
			}
			return "", fmt.Errorf("piper error: %s", msg)
		}
	}
}

func (s *PiperSynthesizer) writeWAV(pcm []byte, sampleRate, channels, width int, filename string) (string, error) {
	if len(pcm) == 0 {
		return "", fmt.Errorf("piper returned no audio")
	}

	if filename == "" {
		filename = fmt.Sprintf("response_%d.wav", time.Now().UnixNano())
	}
	if err := os.MkdirAll(s.outputDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}

	outPath := filepath.Join(s.outputDir, filename)
	wav := audio.PCMToWAV(pcm, sampleRate, channels, width)
	if err := os.WriteFile(outPath, wav, 0644); err != nil {
		return "", fmt.Errorf("failed to write output file: %w", err)
	}

	log.Printf("[Piper TTS] Audio saved to: %s (%d PCM bytes)", outPath, len(pcm))
	return outPath, nil
}

type wyomingEvent struct {
	Type string         `json:"type"`
	Data map[string]any `json:"data,omitempty"`
}

func writeWyomingEvent(w io.Writer, evt wyomingEvent, payload []byte) error {
	jsonBytes, err := json.Marshal(evt)
	if err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "%d %d\n", len(jsonBytes), len(payload)); err != nil {
		return err
	}
	if _, err := w.Write(append(jsonBytes, '\n')); err != nil {
		return err
	}
	if len(payload) > 0 {
		if _, err := w.Write(payload); err != nil {
			return err
		}
	}
	return nil
}

func readWyomingEvent(r io.Reader) (*wyomingEvent, []byte, error) {
	header, err := readLine(r)
	if err != nil {
		return nil, nil, err
	}

	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 {
		return nil, nil, fmt.Errorf("invalid wyoming header: %q", header)
	}
	jsonLen, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil {
		return nil, nil, fmt.Errorf("invalid json length: %w", err)
	}
	payloadLen, err := strconv.Atoi(strings.TrimSpace(parts[1]))
	if err != nil {
		return nil, nil, fmt.Errorf("invalid payload length: %w", err)
	}

	jsonBuf := make([]byte, jsonLen+1) // +1 for the trailing newline
	if _, err := io.ReadFull(r, jsonBuf); err != nil {
		return nil, nil, err
	}

	var evt wyomingEvent
	if err := json.Unmarshal(jsonBuf[:jsonLen], &evt); err != nil {
		return nil, nil, err
	}

	var payload []byte
	if payloadLen > 0 {
		payload = make([]byte, payloadLen)
		if _, err := io.ReadFull(r, payload); err != nil {
			return nil, nil, err
		}
	}
	return &evt, payload, nil
}

func readLine(r io.Reader) (string, error) {
	var buf []byte
	one := make([]byte, 1)
	for {
		if _, err := io.ReadFull(r, one); err != nil {
			return "", err
		}
		if one[0] == '\n' {
			return string(buf), nil
		}
		buf = append(buf, one[0])
	}
}
