package voice

import (
	"errors"
	"fmt"
)

// Capture error codes reported by recognizers.
const (
	CodeNotAllowed   = "not-allowed"
	CodeNoSpeech     = "no-speech"
	CodeAudioCapture = "audio-capture"
	CodeNetwork      = "network"
)

// CaptureError is a recoverable recognizer failure.
type CaptureError struct {
	Code string
}

func (e *CaptureError) Error() string {
	return fmt.Sprintf("voice capture error: %s", e.Code)
}

// StatusFor returns the user-facing status line for a capture failure.
func StatusFor(err error) string {
	var ce *CaptureError
	if !errors.As(err, &ce) {
		return "⚠️ " + err.Error()
	}
	switch ce.Code {
	case CodeNotAllowed:
		return "⚠️ Microphone access denied."
	case CodeNoSpeech:
		return "⚠️ No speech detected."
	case CodeAudioCapture:
		return "⚠️ No microphone found."
	case CodeNetwork:
		return "⚠️ Network error."
	default:
		return "⚠️ " + ce.Code
	}
}
