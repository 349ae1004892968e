// Package providers defines the speech-to-text service abstraction and
// the error taxonomy the pipeline schedules around.
package providers

import "context"

// Request describes one chunk transcription call.
type Request struct {
	// FilePath is the audio file to submit.
	FilePath string

	// Language is an ISO 639-1 hint for the recognizer. Empty lets the
	// service detect it.
	Language string

	// Prompt biases the recognizer toward domain vocabulary.
	Prompt string

	// ResponseFormat selects the transport representation, e.g. "text".
	ResponseFormat string
}

// Provider is a transcription backend.
type Provider interface {
	// Name returns the provider name (e.g., "openai")
	Name() string

	// Transcribe submits the request and returns the recognized text.
	// Errors are classified: *TransientError after retries were
	// exhausted, *PermanentError for rejections that retrying cannot
	// fix, *QuotaError when the account is out of credit.
	Transcribe(ctx context.Context, req *Request) (string, error)
}
