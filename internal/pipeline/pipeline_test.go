package pipeline

import (
	"bytes"
	"context"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"voicecmd/internal/llm"
	"voicecmd/internal/storage"
	"voicecmd/internal/stt"
	"voicecmd/internal/tts"
)

// --- stubs ---

type stubNormalizer struct {
	convert func(path string) string
}

func (s stubNormalizer) ToWAV(ctx context.Context, path string) string {
	if s.convert != nil {
		return s.convert(path)
	}
	return path
}

type stubRecognizer struct {
	text string
	err  error
}

func (s stubRecognizer) Transcribe(ctx context.Context, path, lang string) (*stt.Result, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &stt.Result{Transcript: s.text, Confidence: 0.9, Provider: "stub"}, nil
}

type stubGenerator struct {
	reply string
	err   error
}

func (s stubGenerator) Generate(ctx context.Context, input string, opts llm.Options) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	return s.reply, nil
}

type spySynthesizer struct {
	dir     string
	err     error
	gotText string
}

func (s *spySynthesizer) Synthesize(ctx context.Context, text string, opts tts.Options) (string, error) {
	s.gotText = text
	if s.err != nil {
		return "", s.err
	}
	path := filepath.Join(s.dir, "response_test.mp3")
	if err := os.WriteFile(path, []byte("mp3"), 0644); err != nil {
		return "", err
	}
	return path, nil
}

// --- helpers ---

func fileHeader(t *testing.T, filename string, content []byte) *multipart.FileHeader {
	t.Helper()

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	fw, err := w.CreateFormFile("audio", filename)
	require.NoError(t, err)
	_, err = fw.Write(content)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, "/", &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())
	_, header, err := req.FormFile("audio")
	require.NoError(t, err)
	return header
}

func entryCount(t *testing.T, dir string) int {
	t.Helper()
	entries, err := os.ReadDir(dir)
	if os.IsNotExist(err) {
		return 0
	}
	require.NoError(t, err)
	return len(entries)
}

type fixture struct {
	orch      *Orchestrator
	uploadDir string
	synth     *spySynthesizer
}

func newFixture(t *testing.T, r Recognizer, g Generator, synthErr error) *fixture {
	t.Helper()
	uploadDir := filepath.Join(t.TempDir(), "uploads")
	synth := &spySynthesizer{dir: t.TempDir(), err: synthErr}
	orch := New(storage.New(uploadDir), stubNormalizer{}, r, g, synth, "en-US")
	return &fixture{orch: orch, uploadDir: uploadDir, synth: synth}
}

// --- voice path ---

func TestVoiceCommandSuccess(t *testing.T) {
	f := newFixture(t, stubRecognizer{text: "turn on the lights"}, stubGenerator{reply: "Done, lights are on."}, nil)

	res, fail := f.orch.VoiceCommand(context.Background(), fileHeader(t, "clip.wav", []byte("RIFF")), llm.Options{}, tts.Options{})
	require.Nil(t, fail)

	assert.Equal(t, "turn on the lights", res.RecognizedText)
	assert.Equal(t, "Done, lights are on.", res.ReplyText)
	assert.Equal(t, "response_test.mp3", res.AudioFile)

	assert.Equal(t, 0, entryCount(t, f.uploadDir), "temp upload must be removed on success")
}

func TestVoiceCommandPassesReplyVerbatimToSynthesizer(t *testing.T) {
	f := newFixture(t, stubRecognizer{text: "hi"}, stubGenerator{reply: "Hello there"}, nil)

	_, fail := f.orch.VoiceCommand(context.Background(), fileHeader(t, "clip.wav", []byte("RIFF")), llm.Options{}, tts.Options{})
	require.Nil(t, fail)
	assert.Equal(t, "Hello there", f.synth.gotText)
}

func TestVoiceCommandInvalidExtension(t *testing.T) {
	f := newFixture(t, stubRecognizer{text: "hi"}, stubGenerator{reply: "ok"}, nil)

	_, fail := f.orch.VoiceCommand(context.Background(), fileHeader(t, "notes.txt", []byte("text")), llm.Options{}, tts.Options{})
	require.NotNil(t, fail)
	assert.Equal(t, KindInvalidFileType, fail.Kind)
	assert.Equal(t, http.StatusBadRequest, fail.HTTPStatus())
	assert.Contains(t, fail.Message, "Invalid file type")

	assert.Equal(t, 0, entryCount(t, f.uploadDir), "rejected uploads must never reach storage")
}

func TestVoiceCommandRecognitionNoMatch(t *testing.T) {
	f := newFixture(t, stubRecognizer{err: stt.ErrNoSpeech}, stubGenerator{reply: "ok"}, nil)

	_, fail := f.orch.VoiceCommand(context.Background(), fileHeader(t, "clip.wav", []byte("RIFF")), llm.Options{}, tts.Options{})
	require.NotNil(t, fail)
	assert.Equal(t, KindRecognitionFailed, fail.Kind)
	assert.Equal(t, http.StatusBadRequest, fail.HTTPStatus())

	assert.Equal(t, 0, entryCount(t, f.uploadDir), "temp upload must be removed on recognition failure")
}

func TestVoiceCommandRecognitionServiceError(t *testing.T) {
	f := newFixture(t, stubRecognizer{err: fmt.Errorf("connection refused")}, stubGenerator{reply: "ok"}, nil)

	_, fail := f.orch.VoiceCommand(context.Background(), fileHeader(t, "clip.wav", []byte("RIFF")), llm.Options{}, tts.Options{})
	require.NotNil(t, fail)
	assert.Equal(t, KindRecognitionFailed, fail.Kind, "service errors collapse into the same outcome as no-match")

	assert.Equal(t, 0, entryCount(t, f.uploadDir))
}

func TestVoiceCommandGenerationFailure(t *testing.T) {
	f := newFixture(t, stubRecognizer{text: "hi"}, stubGenerator{err: fmt.Errorf("llm down")}, nil)

	_, fail := f.orch.VoiceCommand(context.Background(), fileHeader(t, "clip.wav", []byte("RIFF")), llm.Options{}, tts.Options{})
	require.NotNil(t, fail)
	assert.Equal(t, KindGenerationFailed, fail.Kind)
	assert.Equal(t, http.StatusInternalServerError, fail.HTTPStatus())

	assert.Equal(t, 0, entryCount(t, f.uploadDir), "temp upload must be removed on generation failure")
}

func TestVoiceCommandSynthesisFailure(t *testing.T) {
	f := newFixture(t, stubRecognizer{text: "hi"}, stubGenerator{reply: "ok"}, fmt.Errorf("tts down"))

	_, fail := f.orch.VoiceCommand(context.Background(), fileHeader(t, "clip.wav", []byte("RIFF")), llm.Options{}, tts.Options{})
	require.NotNil(t, fail)
	assert.Equal(t, KindSynthesisFailed, fail.Kind)
	assert.Equal(t, http.StatusInternalServerError, fail.HTTPStatus())

	assert.Equal(t, 0, entryCount(t, f.uploadDir), "temp upload must be removed on synthesis failure")
}

func TestVoiceCommandRemovesConvertedFile(t *testing.T) {
	uploadDir := filepath.Join(t.TempDir(), "uploads")
	synth := &spySynthesizer{dir: t.TempDir()}

	// The normalizer derives a sibling file, as the real one does for
	// non-WAV uploads.
	normalizer := stubNormalizer{convert: func(path string) string {
		converted := path + "_converted.wav"
		if err := os.WriteFile(converted, []byte("wav"), 0644); err != nil {
			panic(err)
		}
		return converted
	}}

	orch := New(storage.New(uploadDir), normalizer, stubRecognizer{text: "hi"}, stubGenerator{reply: "ok"}, synth, "en-US")

	_, fail := orch.VoiceCommand(context.Background(), fileHeader(t, "clip.mp3", []byte("mp3")), llm.Options{}, tts.Options{})
	require.Nil(t, fail)

	assert.Equal(t, 0, entryCount(t, uploadDir), "both the upload and the derived converted file must be removed")
}

// --- text path ---

func TestTextCommandSuccess(t *testing.T) {
	f := newFixture(t, stubRecognizer{}, stubGenerator{reply: "It is sunny."}, nil)

	res, fail := f.orch.TextCommand(context.Background(), "  what is the weather  ", llm.Options{}, tts.Options{})
	require.Nil(t, fail)
	assert.Equal(t, "what is the weather", res.RecognizedText)
	assert.Equal(t, "It is sunny.", res.ReplyText)
	assert.Equal(t, "response_test.mp3", res.AudioFile)
}

func TestTextCommandWhitespaceOnly(t *testing.T) {
	f := newFixture(t, stubRecognizer{}, stubGenerator{reply: "ok"}, nil)

	_, fail := f.orch.TextCommand(context.Background(), "  ", llm.Options{}, tts.Options{})
	require.NotNil(t, fail)
	assert.Equal(t, KindEmptyInput, fail.Kind)
	assert.Equal(t, http.StatusBadRequest, fail.HTTPStatus())
}

func TestTextCommandSynthesisFailure(t *testing.T) {
	f := newFixture(t, stubRecognizer{}, stubGenerator{reply: "ok"}, fmt.Errorf("tts down"))

	_, fail := f.orch.TextCommand(context.Background(), "hello", llm.Options{}, tts.Options{})
	require.NotNil(t, fail)
	assert.Equal(t, KindSynthesisFailed, fail.Kind)
}
