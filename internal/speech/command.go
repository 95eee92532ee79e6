package speech

import (
	"context"
	"fmt"
	"os/exec"
	"strings"
	"sync"

	"talkback/internal/domain"
)

// CommandSynthesizer plays text as speech through a local TTS command
// such as espeak-ng, festival, or macOS say. The text is passed as the
// final argument. At most one utterance runs at a time; starting a new
// one cancels the previous (last call wins).
type CommandSynthesizer struct {
	command string
	args    []string

	mu      sync.Mutex
	current *utterance
}

type utterance struct {
	cancel context.CancelFunc
}

func NewCommandSynthesizer(command string, args ...string) *CommandSynthesizer {
	return &CommandSynthesizer{command: command, args: args}
}

// Available probes for the configured command on PATH.
func (s *CommandSynthesizer) Available() bool {
	if strings.TrimSpace(s.command) == "" {
		return false
	}
	_, err := exec.LookPath(s.command)
	return err == nil
}

// CancelAll stops any utterance currently playing.
func (s *CommandSynthesizer) CancelAll() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current != nil {
		s.current.cancel()
		s.current = nil
	}
}

// Speak blocks until playback finishes or is superseded. Superseded
// utterances return nil; callers treat playback as fire-and-forget.
func (s *CommandSynthesizer) Speak(ctx context.Context, text string) error {
	if !s.Available() {
		return domain.ErrPlaybackUnsupported
	}
	if strings.TrimSpace(text) == "" {
		return nil
	}

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	u := &utterance{cancel: cancel}

	s.mu.Lock()
	if s.current != nil {
		s.current.cancel()
	}
	s.current = u
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		if s.current == u {
			s.current = nil
		}
		s.mu.Unlock()
	}()

	args := append(append([]string(nil), s.args...), text)
	cmd := exec.CommandContext(runCtx, s.command, args...)
	if err := cmd.Run(); err != nil {
		if runCtx.Err() != nil {
			return nil
		}
		return fmt.Errorf("speech command failed: %w", err)
	}
	return nil
}
