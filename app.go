package main

import (
	"context"
	"fmt"

	"github.com/wailsapp/wails/v2/pkg/runtime"

	"talkback/internal/bootstrap"
	"talkback/internal/config"
	"talkback/internal/domain"
	"talkback/internal/usecase"
)

const (
	eventState    = "talkback:state"
	eventMessage  = "talkback:message"
	eventPartial  = "talkback:partial"
	eventSettings = "talkback:settings"
	eventError    = "talkback:error"
)

// App is the Wails application root.
type App struct {
	ctx context.Context

	conversation *usecase.Conversation
	cfg          config.Config
	bootErr      error
}

func NewApp() *App {
	return &App{}
}

func (a *App) startup(ctx context.Context) {
	a.ctx = ctx

	services, err := bootstrap.Build(a)
	if err != nil {
		a.bootErr = err
		a.ConversationError(domain.ErrorCodeStartup, err.Error())
		return
	}

	a.cfg = services.Config
	a.conversation = services.Conversation
	a.ConversationStateChanged(domain.StateIdle, domain.ReasonReady)
	a.SettingsChanged(a.conversation.Settings())
}

// StartRecording opens the microphone for a new utterance.
func (a *App) StartRecording() (domain.Status, error) {
	if err := a.requireReady(); err != nil {
		return domain.Status{}, err
	}
	if err := a.conversation.StartRecording(a.ctx); err != nil {
		return a.conversation.Status(), err
	}
	return a.conversation.Status(), nil
}

// StopRecording closes the microphone and routes the recording.
func (a *App) StopRecording() (domain.Status, error) {
	if err := a.requireReady(); err != nil {
		return domain.Status{}, err
	}
	if err := a.conversation.StopRecording(); err != nil {
		return a.conversation.Status(), err
	}
	return a.conversation.Status(), nil
}

// ConfirmSend submits a recording held for confirmation.
func (a *App) ConfirmSend() error {
	if err := a.requireReady(); err != nil {
		return err
	}
	return a.conversation.ConfirmSend()
}

// CancelPending discards a recording held for confirmation.
func (a *App) CancelPending() error {
	if err := a.requireReady(); err != nil {
		return err
	}
	return a.conversation.CancelPending()
}

// SendTypedText submits a typed utterance.
func (a *App) SendTypedText(text string) error {
	if err := a.requireReady(); err != nil {
		return err
	}
	return a.conversation.SendTypedText(text)
}

// GetStatus returns the current conversation status.
func (a *App) GetStatus() domain.Status {
	if a.conversation == nil {
		if a.bootErr != nil {
			return domain.Status{State: domain.StateIdle, Active: false, Message: a.bootErr.Error()}
		}
		return domain.Status{State: domain.StateIdle, Active: false}
	}
	return a.conversation.Status()
}

// GetLog returns the conversation log in append order.
func (a *App) GetLog() []domain.Message {
	if a.conversation == nil {
		return nil
	}
	return a.conversation.Log()
}

// GetSettings returns the current settings.
func (a *App) GetSettings() domain.Settings {
	if a.conversation == nil {
		return domain.DefaultSettings()
	}
	return a.conversation.Settings()
}

// UpdateSettings applies a partial settings update and persists it.
func (a *App) UpdateSettings(patch domain.SettingsPatch) (domain.Settings, error) {
	if err := a.requireReady(); err != nil {
		return domain.DefaultSettings(), err
	}
	return a.conversation.UpdateSettings(patch)
}

// GetRuntimeInfo returns non-sensitive config for the UI.
func (a *App) GetRuntimeInfo() map[string]string {
	if a.bootErr != nil {
		return map[string]string{"error": a.bootErr.Error()}
	}

	return map[string]string{
		"transcribeEndpoint": a.cfg.Transcribe.Endpoint,
		"previewEndpoint":    a.cfg.Preview.URL,
		"replyModel":         a.cfg.Reply.Model,
		"speechCommand":      a.cfg.Speech.Command,
		"rulesFile":          a.cfg.Rules.Path,
		"audioInput":         a.cfg.Audio.InputDevice,
		"audioInputFormat":   a.cfg.Audio.InputFormat,
	}
}

func (a *App) requireReady() error {
	if a.bootErr != nil {
		return a.bootErr
	}
	if a.conversation == nil {
		return fmt.Errorf("application is not initialized")
	}
	return nil
}

// ConversationStateChanged emits pipeline state updates to the frontend.
func (a *App) ConversationStateChanged(state domain.ConversationState, reason domain.StateReason) {
	if a.ctx == nil {
		return
	}
	runtime.EventsEmit(a.ctx, eventState, map[string]string{
		"state":   string(state),
		"reason":  string(reason),
		"message": stateReasonMessage(reason),
	})
}

// MessageAppended emits a new conversation log entry.
func (a *App) MessageAppended(msg domain.Message) {
	if a.ctx == nil {
		return
	}
	runtime.EventsEmit(a.ctx, eventMessage, msg)
}

// PartialTranscript emits live preview transcript text.
func (a *App) PartialTranscript(text string) {
	if a.ctx == nil {
		return
	}
	runtime.EventsEmit(a.ctx, eventPartial, map[string]string{"text": text})
}

// SettingsChanged emits the updated settings snapshot.
func (a *App) SettingsChanged(settings domain.Settings) {
	if a.ctx == nil {
		return
	}
	runtime.EventsEmit(a.ctx, eventSettings, settings)
}

// ConversationError emits backend errors to the UI.
func (a *App) ConversationError(code domain.ErrorCode, detail string) {
	if a.ctx == nil {
		return
	}
	runtime.EventsEmit(a.ctx, eventError, map[string]string{
		"code":    string(code),
		"message": errorMessage(code, detail),
		"detail":  detail,
	})
}

func stateReasonMessage(reason domain.StateReason) string {
	switch reason {
	case domain.ReasonReady:
		return "Ready"
	case domain.ReasonRecordingStarted:
		return "Recording..."
	case domain.ReasonPendingDiscarded:
		return "Previous recording discarded"
	case domain.ReasonAwaitingConfirmation:
		return "Recording ready. Send it?"
	case domain.ReasonPendingCancelled:
		return "Recording discarded"
	case domain.ReasonTranscribing:
		return "Transcribing..."
	case domain.ReasonGenerating:
		return "Thinking..."
	case domain.ReasonSpeakingReply:
		return "Speaking..."
	case domain.ReasonReplyReady:
		return "Reply ready"
	case domain.ReasonCaptureFailed:
		return "Microphone unavailable"
	case domain.ReasonTranscriptionFailed:
		return "Transcription failed"
	case domain.ReasonGenerationFailed:
		return "Reply generation failed"
	default:
		return ""
	}
}

func errorMessage(code domain.ErrorCode, detail string) string {
	switch code {
	case domain.ErrorCodeStartup:
		return "Startup failed"
	case domain.ErrorCodeCapture:
		return "Microphone issue"
	case domain.ErrorCodeTranscription:
		return "Transcription error"
	case domain.ErrorCodeGeneration:
		return "Reply generation error"
	case domain.ErrorCodePlayback:
		return "Speech playback unavailable"
	case domain.ErrorCodePreview:
		return "Live preview issue"
	case domain.ErrorCodeSettings:
		return "Settings could not be saved"
	default:
		if detail == "" {
			return "Unknown error"
		}
		return detail
	}
}
