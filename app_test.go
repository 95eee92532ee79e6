package main

import (
	"errors"
	"testing"

	"talkback/internal/domain"
)

func TestStateReasonMessage(t *testing.T) {
	t.Parallel()

	cases := map[domain.StateReason]string{
		domain.ReasonReady:                "Ready",
		domain.ReasonRecordingStarted:     "Recording...",
		domain.ReasonPendingDiscarded:     "Previous recording discarded",
		domain.ReasonAwaitingConfirmation: "Recording ready. Send it?",
		domain.ReasonPendingCancelled:     "Recording discarded",
		domain.ReasonTranscribing:         "Transcribing...",
		domain.ReasonGenerating:           "Thinking...",
		domain.ReasonSpeakingReply:        "Speaking...",
		domain.ReasonReplyReady:           "Reply ready",
		domain.ReasonCaptureFailed:        "Microphone unavailable",
		domain.ReasonTranscriptionFailed:  "Transcription failed",
		domain.ReasonGenerationFailed:     "Reply generation failed",
	}

	for reason, want := range cases {
		reason := reason
		want := want
		t.Run(string(reason), func(t *testing.T) {
			t.Parallel()
			if got := stateReasonMessage(reason); got != want {
				t.Fatalf("unexpected message: %q", got)
			}
		})
	}

	if got := stateReasonMessage("unknown"); got != "" {
		t.Fatalf("expected empty unknown reason message, got %q", got)
	}
}

func TestErrorMessage(t *testing.T) {
	t.Parallel()

	cases := map[domain.ErrorCode]string{
		domain.ErrorCodeStartup:       "Startup failed",
		domain.ErrorCodeCapture:       "Microphone issue",
		domain.ErrorCodeTranscription: "Transcription error",
		domain.ErrorCodeGeneration:    "Reply generation error",
		domain.ErrorCodePlayback:      "Speech playback unavailable",
		domain.ErrorCodePreview:       "Live preview issue",
		domain.ErrorCodeSettings:      "Settings could not be saved",
	}
	for code, want := range cases {
		code := code
		want := want
		t.Run(string(code), func(t *testing.T) {
			t.Parallel()
			if got := errorMessage(code, "ignored"); got != want {
				t.Fatalf("unexpected message: %q", got)
			}
		})
	}

	if got := errorMessage("unknown", "detail"); got != "detail" {
		t.Fatalf("expected detail fallback, got %q", got)
	}
	if got := errorMessage("unknown", ""); got != "Unknown error" {
		t.Fatalf("expected unknown fallback, got %q", got)
	}
}

func TestRequireReady(t *testing.T) {
	t.Parallel()

	app := &App{}
	if err := app.requireReady(); err == nil {
		t.Fatalf("expected uninitialized error")
	}

	bootErr := errors.New("boot")
	app.bootErr = bootErr
	if err := app.requireReady(); !errors.Is(err, bootErr) {
		t.Fatalf("expected boot error, got %v", err)
	}
}

func TestGetStatusWhenNotInitialized(t *testing.T) {
	t.Parallel()

	app := &App{}
	status := app.GetStatus()
	if status.State != domain.StateIdle || status.Active {
		t.Fatalf("unexpected status: %+v", status)
	}

	app.bootErr = errors.New("boot")
	status = app.GetStatus()
	if status.State != domain.StateIdle || status.Active || status.Message != "boot" {
		t.Fatalf("unexpected boot status: %+v", status)
	}
}

func TestGetSettingsWhenNotInitialized(t *testing.T) {
	t.Parallel()

	app := &App{}
	if got := app.GetSettings(); got != domain.DefaultSettings() {
		t.Fatalf("expected defaults, got %+v", got)
	}
	if got := app.GetLog(); got != nil {
		t.Fatalf("expected nil log, got %+v", got)
	}
}
