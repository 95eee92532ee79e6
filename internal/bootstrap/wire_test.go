package bootstrap

import (
	"os"
	"path/filepath"
	"testing"

	"talkback/internal/domain"
)

func TestBuildSuccess(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("TALKBACK_SETTINGS_FILE", filepath.Join(home, "settings.json"))

	services, err := Build(noopEventSink{})
	if err != nil {
		t.Fatalf("build failed: %v", err)
	}
	if services.Conversation == nil {
		t.Fatalf("expected conversation")
	}
	if services.Config.Transcribe.Endpoint == "" {
		t.Fatalf("expected transcribe endpoint in config")
	}
}

func TestBuildFailsOnInvalidRules(t *testing.T) {
	home := t.TempDir()
	rules := filepath.Join(home, "bad.rules")
	if err := os.WriteFile(rules, []byte("not a valid rule\n"), 0o600); err != nil {
		t.Fatalf("write failed: %v", err)
	}

	t.Setenv("HOME", home)
	t.Setenv("TALKBACK_SETTINGS_FILE", filepath.Join(home, "settings.json"))
	t.Setenv("TALKBACK_RULES_FILE", rules)

	_, err := Build(noopEventSink{})
	if err == nil {
		t.Fatalf("expected build error due to invalid rules")
	}
}

type noopEventSink struct{}

func (noopEventSink) ConversationStateChanged(_ domain.ConversationState, _ domain.StateReason) {}
func (noopEventSink) MessageAppended(_ domain.Message)                                         {}
func (noopEventSink) PartialTranscript(_ string)                                               {}
func (noopEventSink) SettingsChanged(_ domain.Settings)                                        {}
func (noopEventSink) ConversationError(_ domain.ErrorCode, _ string)                           {}
