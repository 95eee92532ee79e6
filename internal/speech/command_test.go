package speech

import (
	"context"
	"errors"
	"testing"
	"time"

	"talkback/internal/domain"
)

func TestCommandSynthesizerUnavailableCommand(t *testing.T) {
	t.Parallel()

	synth := NewCommandSynthesizer("definitely-not-a-real-tts-command")
	if synth.Available() {
		t.Fatalf("expected unavailable")
	}
	if err := synth.Speak(context.Background(), "hello"); !errors.Is(err, domain.ErrPlaybackUnsupported) {
		t.Fatalf("expected ErrPlaybackUnsupported, got %v", err)
	}
}

func TestCommandSynthesizerEmptyCommandUnavailable(t *testing.T) {
	t.Parallel()

	synth := NewCommandSynthesizer("")
	if synth.Available() {
		t.Fatalf("expected unavailable for empty command")
	}
}

func TestCommandSynthesizerSpeakRuns(t *testing.T) {
	t.Parallel()

	synth := NewCommandSynthesizer("true")
	if !synth.Available() {
		t.Skip("true not on PATH")
	}
	if err := synth.Speak(context.Background(), "hello"); err != nil {
		t.Fatalf("speak failed: %v", err)
	}
}

func TestCommandSynthesizerEmptyTextIsNoop(t *testing.T) {
	t.Parallel()

	synth := NewCommandSynthesizer("false")
	if !synth.Available() {
		t.Skip("false not on PATH")
	}
	if err := synth.Speak(context.Background(), "   "); err != nil {
		t.Fatalf("expected no-op for empty text, got %v", err)
	}
}

func TestCommandSynthesizerLastCallWins(t *testing.T) {
	t.Parallel()

	synth := NewCommandSynthesizer("sleep")
	if !synth.Available() {
		t.Skip("sleep not on PATH")
	}

	firstDone := make(chan error, 1)
	go func() {
		firstDone <- synth.Speak(context.Background(), "5")
	}()

	// Give the first utterance time to start before superseding it.
	time.Sleep(100 * time.Millisecond)
	if err := synth.Speak(context.Background(), "0"); err != nil {
		t.Fatalf("second speak failed: %v", err)
	}

	select {
	case err := <-firstDone:
		if err != nil {
			t.Fatalf("superseded utterance should return nil, got %v", err)
		}
	case <-time.After(3 * time.Second):
		t.Fatalf("first utterance was not cancelled")
	}
}

func TestCommandSynthesizerCancelAll(t *testing.T) {
	t.Parallel()

	synth := NewCommandSynthesizer("sleep")
	if !synth.Available() {
		t.Skip("sleep not on PATH")
	}

	done := make(chan error, 1)
	go func() {
		done <- synth.Speak(context.Background(), "5")
	}()

	time.Sleep(100 * time.Millisecond)
	synth.CancelAll()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("cancelled utterance should return nil, got %v", err)
		}
	case <-time.After(3 * time.Second):
		t.Fatalf("utterance was not cancelled")
	}
}
