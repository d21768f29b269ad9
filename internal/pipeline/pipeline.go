// Package pipeline sequences normalization, recognition, generation and
// synthesis for one command and owns the temporary-file lifecycle.
package pipeline

import (
	"context"
	"errors"
	"log"
	"mime/multipart"
	"path/filepath"
	"strings"

	"voicecmd/internal/llm"
	"voicecmd/internal/storage"
	"voicecmd/internal/stt"
	"voicecmd/internal/tts"
)

// allowedExtensions is the upload allow-list.
var allowedExtensions = map[string]bool{
	".wav":  true,
	".mp3":  true,
	".ogg":  true,
	".m4a":  true,
	".flac": true,
	".webm": true,
}

// AllowedTypes lists the accepted extensions for error messages.
const AllowedTypes = "wav, mp3, ogg, m4a, flac, webm"

// Normalizer converts an upload to canonical audio, falling back to the
// original path on failure.
type Normalizer interface {
	ToWAV(ctx context.Context, path string) string
}

// Recognizer converts canonical audio into text.
type Recognizer interface {
	Transcribe(ctx context.Context, audioPath, language string) (*stt.Result, error)
}

// Generator converts input text into reply text.
type Generator interface {
	Generate(ctx context.Context, input string, opts llm.Options) (string, error)
}

// Synthesizer converts reply text into an audio file.
type Synthesizer interface {
	Synthesize(ctx context.Context, text string, opts tts.Options) (string, error)
}

// Result is the successful outcome of a command. AudioFile is the base name
// of the synthesized file under the output directory.
type Result struct {
	RecognizedText string
	ReplyText      string
	AudioFile      string
}

// Orchestrator wires the stages together. The injected services are
// stateless singletons constructed at process start.
type Orchestrator struct {
	store       *storage.Store
	normalizer  Normalizer
	recognizer  Recognizer
	generator   Generator
	synthesizer Synthesizer
	language    string // default recognition locale
}

func New(store *storage.Store, n Normalizer, r Recognizer, g Generator, s Synthesizer, language string) *Orchestrator {
	if language == "" {
		language = "en-US"
	}
	return &Orchestrator{
		store:       store,
		normalizer:  n,
		recognizer:  r,
		generator:   g,
		synthesizer: s,
		language:    language,
	}
}

// VoiceCommand runs the full voice path: validate → persist upload →
// normalize → recognize → generate → synthesize. The temporary upload and
// any derived converted file are removed on every exit path, success or
// failure.
func (o *Orchestrator) VoiceCommand(ctx context.Context, file *multipart.FileHeader, genOpts llm.Options, ttsOpts tts.Options) (res *Result, fail *Failure) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("[Pipeline] panic in voice command: %v", r)
			res, fail = nil, failf(KindInternal, "Internal server error: %v", r)
		}
	}()

	ext := strings.ToLower(filepath.Ext(file.Filename))
	if !allowedExtensions[ext] {
		return nil, failf(KindInvalidFileType, "Invalid file type. Allowed types: %s", AllowedTypes)
	}

	path, err := o.store.SaveUpload(file)
	if err != nil {
		return nil, failf(KindInternal, "Internal server error: %v", err)
	}
	defer o.store.Remove(path)

	log.Printf("[Pipeline] Audio file saved: %s", path)

	wavPath := o.normalizer.ToWAV(ctx, path)
	if wavPath != path {
		defer o.store.Remove(wavPath)
	}

	sttRes, err := o.recognizer.Transcribe(ctx, wavPath, o.language)
	if err != nil {
		// No-match and service errors collapse to the same caller-visible
		// outcome; the distinction only matters in the logs.
		if errors.Is(err, stt.ErrNoSpeech) {
			log.Printf("[Pipeline] Recognition found no speech in %s", wavPath)
		} else {
			log.Printf("[Pipeline] Recognition service error: %v", err)
		}
		return nil, failf(KindRecognitionFailed, "Could not recognize speech from audio")
	}

	log.Printf("[Pipeline] Recognized text: %s", sttRes.Transcript)

	reply, audioFile, fail := o.respond(ctx, sttRes.Transcript, genOpts, ttsOpts)
	if fail != nil {
		return nil, fail
	}

	return &Result{
		RecognizedText: sttRes.Transcript,
		ReplyText:      reply,
		AudioFile:      audioFile,
	}, nil
}

// TextCommand runs the text path: validate → generate → synthesize. No
// upload exists, so there is nothing to clean up.
func (o *Orchestrator) TextCommand(ctx context.Context, text string, genOpts llm.Options, ttsOpts tts.Options) (res *Result, fail *Failure) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("[Pipeline] panic in text command: %v", r)
			res, fail = nil, failf(KindInternal, "Internal server error: %v", r)
		}
	}()

	text = strings.TrimSpace(text)
	if text == "" {
		return nil, failf(KindEmptyInput, "Empty text provided")
	}

	reply, audioFile, fail := o.respond(ctx, text, genOpts, ttsOpts)
	if fail != nil {
		return nil, fail
	}

	return &Result{
		RecognizedText: text,
		ReplyText:      reply,
		AudioFile:      audioFile,
	}, nil
}

// respond runs the shared tail of both paths: generation then synthesis.
func (o *Orchestrator) respond(ctx context.Context, input string, genOpts llm.Options, ttsOpts tts.Options) (string, string, *Failure) {
	reply, err := o.generator.Generate(ctx, input, genOpts)
	if err != nil {
		log.Printf("[Pipeline] Generation failed: %v", err)
		return "", "", failf(KindGenerationFailed, "Could not generate a response")
	}

	log.Printf("[Pipeline] Reply text: %s", reply)

	audioPath, err := o.synthesizer.Synthesize(ctx, reply, ttsOpts)
	if err != nil {
		log.Printf("[Pipeline] Synthesis failed: %v", err)
		return "", "", failf(KindSynthesisFailed, "Could not generate audio response")
	}

	return reply, filepath.Base(audioPath), nil
}
