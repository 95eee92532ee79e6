package domain

import (
	"errors"
	"fmt"
)

// ErrDeviceUnavailable reports that the audio input device could not be
// opened (missing, busy, or permission denied).
var ErrDeviceUnavailable = errors.New("audio input device unavailable")

// ErrPlaybackUnsupported reports that no speech output capability exists.
// It degrades silently and never becomes a conversation error.
var ErrPlaybackUnsupported = errors.New("speech playback unsupported")

// TranscriptionError wraps a failed exchange with the speech-to-text
// endpoint. Timeouts are reported the same way as transport failures.
type TranscriptionError struct {
	Detail string
	Err    error
}

func (e *TranscriptionError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("transcription: %s: %v", e.Detail, e.Err)
	}
	return "transcription: " + e.Detail
}

func (e *TranscriptionError) Unwrap() error { return e.Err }

// GenerationError wraps a failed exchange with the reply service.
type GenerationError struct {
	Detail string
	Err    error
}

func (e *GenerationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("generation: %s: %v", e.Detail, e.Err)
	}
	return "generation: " + e.Detail
}

func (e *GenerationError) Unwrap() error { return e.Err }
