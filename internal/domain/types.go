package domain

import "time"

// Sender identifies who authored a conversation message.
type Sender string

const (
	SenderUser Sender = "user"
	SenderBot  Sender = "bot"
)

// Message is one immutable entry in the conversation log.
type Message struct {
	ID        string    `json:"id"`
	Sender    Sender    `json:"sender"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"createdAt"`
}

// ConversationState models the turn pipeline lifecycle.
type ConversationState string

const (
	StateIdle                ConversationState = "idle"
	StateRecording           ConversationState = "recording"
	StatePendingConfirmation ConversationState = "pending_confirmation"
	StateTranscribing        ConversationState = "transcribing"
	StateGenerating          ConversationState = "generating"
	StateSpeaking            ConversationState = "speaking"
)

// StateReason provides a structured reason for state transitions.
type StateReason string

const (
	ReasonReady                StateReason = "ready"
	ReasonRecordingStarted     StateReason = "recording_started"
	ReasonPendingDiscarded     StateReason = "pending_discarded"
	ReasonAwaitingConfirmation StateReason = "awaiting_confirmation"
	ReasonPendingCancelled     StateReason = "pending_cancelled"
	ReasonTranscribing         StateReason = "transcribing"
	ReasonGenerating           StateReason = "generating"
	ReasonSpeakingReply        StateReason = "speaking_reply"
	ReasonReplyReady           StateReason = "reply_ready"
	ReasonCaptureFailed        StateReason = "capture_failed"
	ReasonTranscriptionFailed  StateReason = "transcription_failed"
	ReasonGenerationFailed     StateReason = "generation_failed"
)

// ErrorCode identifies non-fatal and fatal backend errors.
type ErrorCode string

const (
	ErrorCodeStartup       ErrorCode = "startup"
	ErrorCodeCapture       ErrorCode = "capture"
	ErrorCodeTranscription ErrorCode = "transcription"
	ErrorCodeGeneration    ErrorCode = "generation"
	ErrorCodePlayback      ErrorCode = "playback"
	ErrorCodePreview       ErrorCode = "preview"
	ErrorCodeSettings      ErrorCode = "settings"
)

// Settings is the process-wide user configuration. It survives restarts
// through the settings store.
type Settings struct {
	Credential   string `json:"credential"`
	AutoSend     bool   `json:"autoSend"`
	SpeakReplies bool   `json:"speakReplies"`
}

// DefaultSettings is the value used when nothing has been persisted yet.
func DefaultSettings() Settings {
	return Settings{Credential: "", AutoSend: true, SpeakReplies: true}
}

// SettingsPatch is a partial settings update; nil fields are left untouched.
type SettingsPatch struct {
	Credential   *string `json:"credential,omitempty"`
	AutoSend     *bool   `json:"autoSend,omitempty"`
	SpeakReplies *bool   `json:"speakReplies,omitempty"`
}

// Apply overlays the patch onto base and returns the result.
func (p SettingsPatch) Apply(base Settings) Settings {
	if p.Credential != nil {
		base.Credential = *p.Credential
	}
	if p.AutoSend != nil {
		base.AutoSend = *p.AutoSend
	}
	if p.SpeakReplies != nil {
		base.SpeakReplies = *p.SpeakReplies
	}
	return base
}

// Status summarizes the current conversation state for the UI.
type Status struct {
	State   ConversationState `json:"state"`
	Active  bool              `json:"active"`
	TurnID  uint64            `json:"turnId"`
	Message string            `json:"message,omitempty"`
}
