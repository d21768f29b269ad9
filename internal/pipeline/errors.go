package pipeline

import (
	"fmt"
	"net/http"
)

// Kind classifies a failed command.
type Kind int

const (
	KindInternal Kind = iota
	KindInvalidFileType
	KindEmptyInput
	KindRecognitionFailed
	KindGenerationFailed
	KindSynthesisFailed
)

// Failure is the typed outcome of a failed command. Every stage error is
// converted into one of these at the orchestrator boundary; nothing
// propagates to the transport layer as an unhandled fault.
type Failure struct {
	Kind    Kind
	Message string
}

func (f *Failure) Error() string {
	return f.Message
}

// HTTPStatus maps caller input problems to 400 and downstream service
// problems to 500.
func (f *Failure) HTTPStatus() int {
	switch f.Kind {
	case KindInvalidFileType, KindEmptyInput, KindRecognitionFailed:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func failf(kind Kind, format string, args ...any) *Failure {
	return &Failure{Kind: kind, Message: fmt.Sprintf(format, args...)}
}
