package ports

import (
	"context"
	"io"

	"talkback/internal/domain"
)

// AudioConfig describes how the microphone should be captured.
type AudioConfig struct {
	SampleRate  int
	Channels    int
	InputFormat string
	InputDevice string
}

// CaptureSession is a live microphone capture. Reads yield encoded audio
// until the session ends; Stop releases the device and is safe to call
// more than once.
type CaptureSession interface {
	io.ReadCloser
	Stop() error
}

// AudioCapture opens exclusive microphone capture sessions.
type AudioCapture interface {
	Start(ctx context.Context, cfg AudioConfig) (CaptureSession, error)
}

// Transcriber converts a finished recording into text. Implementations do
// not retry and do not mutate the input buffer.
type Transcriber interface {
	Transcribe(ctx context.Context, audio []byte) (string, error)
}

// TranscriptFilter post-processes raw transcripts deterministically.
type TranscriptFilter interface {
	Apply(text string) (string, error)
}

// ReplyGenerator produces the bot reply for one user utterance. An empty
// credential selects the local fallback path.
type ReplyGenerator interface {
	Generate(ctx context.Context, text string, credential string) (string, error)
}

// Synthesizer plays text as speech. At most one utterance is active at a
// time; starting a new one cancels the previous.
type Synthesizer interface {
	Speak(ctx context.Context, text string) error
	CancelAll()
	Available() bool
}

// SettingsStore persists user settings across restarts.
type SettingsStore interface {
	Load() (domain.Settings, error)
	Save(settings domain.Settings) error
}

// PreviewConfig describes the live transcript preview stream.
type PreviewConfig struct {
	SampleRate int
	Channels   int
	Encoding   string
}

// PreviewSession is an active live-preview stream. Partial transcripts
// are advisory and never enter the conversation log.
type PreviewSession interface {
	SendAudio(chunk []byte) error
	Partials() <-chan string
	Close() error
}

// PreviewProvider starts live transcript preview sessions.
type PreviewProvider interface {
	Start(ctx context.Context, cfg PreviewConfig) (PreviewSession, error)
}

// EventSink emits conversation state and messages to the UI.
type EventSink interface {
	ConversationStateChanged(state domain.ConversationState, reason domain.StateReason)
	MessageAppended(msg domain.Message)
	PartialTranscript(text string)
	SettingsChanged(settings domain.Settings)
	ConversationError(code domain.ErrorCode, detail string)
}
