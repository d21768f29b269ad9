package stt

// Result is one transcription outcome. RawResponse keeps the provider's
// unparsed reply for log correlation; nothing downstream depends on it.
type Result struct {
	Transcript  string
	Confidence  float64 // 0 when the provider does not report one
	Provider    string
	RawResponse string
}
