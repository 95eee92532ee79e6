package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"talkback/internal/domain"
	"talkback/internal/ports"
)

var (
	ErrNothingPending = errors.New("no recording awaiting confirmation")
	ErrBusy           = errors.New("a turn is already in progress")
)

// User-facing failure texts appended to the log as bot messages.
const (
	captureFailureText       = "Could not access the microphone. Check that an input device is available and not in use."
	emptyRecordingText       = "No audio was captured. Try recording again."
	transcriptionFailureText = "Transcription failed. Check that the speech-to-text backend is running."
	generationFailureText    = "Reply generation failed. Check your credential and that the reply service is reachable."
)

// Config controls capture, preview and per-stage timeouts.
type Config struct {
	Audio             ports.AudioConfig
	Preview           ports.PreviewConfig
	ChunkSize         int
	TranscribeTimeout time.Duration
	GenerateTimeout   time.Duration
}

// Conversation orchestrates the record, transcribe, reply and speak
// pipeline behind the UI bindings. The message log is append-only and
// every pipeline failure resolves to a single bot message plus a return
// to idle.
type Conversation struct {
	capture     ports.AudioCapture
	transcriber ports.Transcriber
	filter      ports.TranscriptFilter
	generator   ports.ReplyGenerator
	synth       ports.Synthesizer
	store       ports.SettingsStore
	preview     ports.PreviewProvider
	events      ports.EventSink
	cfg         Config

	mu        sync.Mutex
	state     domain.ConversationState
	settings  domain.Settings
	log       []domain.Message
	recording *recordingSession
	pending   []byte
	starting  bool
	lastTurn  uint64
}

func NewConversation(
	capture ports.AudioCapture,
	transcriber ports.Transcriber,
	filter ports.TranscriptFilter,
	generator ports.ReplyGenerator,
	synth ports.Synthesizer,
	store ports.SettingsStore,
	preview ports.PreviewProvider,
	events ports.EventSink,
	cfg Config,
) *Conversation {
	if cfg.ChunkSize < 256 {
		cfg.ChunkSize = 4096
	}
	if cfg.TranscribeTimeout <= 0 {
		cfg.TranscribeTimeout = 30 * time.Second
	}
	if cfg.GenerateTimeout <= 0 {
		cfg.GenerateTimeout = 30 * time.Second
	}

	settings, err := store.Load()
	if err != nil {
		settings = domain.DefaultSettings()
	}

	return &Conversation{
		capture:     capture,
		transcriber: transcriber,
		filter:      filter,
		generator:   generator,
		synth:       synth,
		store:       store,
		preview:     preview,
		events:      events,
		cfg:         cfg,
		state:       domain.StateIdle,
		settings:    settings,
	}
}

// StartRecording opens the microphone. Calling it while already
// recording is a no-op; calling it while a recording awaits confirmation
// discards the held buffer first.
func (c *Conversation) StartRecording(ctx context.Context) error {
	discarded := false

	c.mu.Lock()
	if c.starting || c.state == domain.StateRecording {
		c.mu.Unlock()
		return nil
	}
	switch c.state {
	case domain.StateIdle:
	case domain.StatePendingConfirmation:
		c.pending = nil
		discarded = true
	default:
		state := c.state
		c.mu.Unlock()
		return fmt.Errorf("%w: cannot record while %s", ErrBusy, state)
	}
	c.starting = true
	c.mu.Unlock()

	if discarded {
		c.events.ConversationStateChanged(domain.StateIdle, domain.ReasonPendingDiscarded)
	}

	rec, err := beginCapture(ctx, c.capture, c.preview, c.cfg, c.events)
	if err != nil {
		c.mu.Lock()
		c.starting = false
		c.state = domain.StateIdle
		failure := c.appendLocked(domain.SenderBot, captureFailureText)
		c.mu.Unlock()

		c.events.MessageAppended(failure)
		c.events.ConversationError(domain.ErrorCodeCapture, err.Error())
		c.events.ConversationStateChanged(domain.StateIdle, domain.ReasonCaptureFailed)
		return err
	}

	c.mu.Lock()
	c.starting = false
	c.state = domain.StateRecording
	c.recording = rec
	c.mu.Unlock()

	c.events.ConversationStateChanged(domain.StateRecording, domain.ReasonRecordingStarted)
	return nil
}

// StopRecording releases the microphone and routes the buffered
// recording: straight into a turn when auto-send is on, otherwise into
// the pending-confirmation hold. Stopping without a recording is a
// no-op.
func (c *Conversation) StopRecording() error {
	c.mu.Lock()
	rec := c.recording
	if c.state != domain.StateRecording || rec == nil {
		c.mu.Unlock()
		return nil
	}
	c.recording = nil
	autoSend := c.settings.AutoSend
	c.mu.Unlock()

	buffer, err := rec.stop()
	if err != nil {
		c.resetWithFailure(domain.ErrorCodeCapture, domain.ReasonCaptureFailed, captureFailureText, err)
		return err
	}
	if len(buffer) == 0 {
		err := errors.New("capture produced no audio")
		c.resetWithFailure(domain.ErrorCodeCapture, domain.ReasonCaptureFailed, emptyRecordingText, err)
		return err
	}

	if autoSend {
		c.beginAudioTurn(buffer)
		return nil
	}

	c.mu.Lock()
	c.pending = buffer
	c.state = domain.StatePendingConfirmation
	c.mu.Unlock()

	c.events.ConversationStateChanged(domain.StatePendingConfirmation, domain.ReasonAwaitingConfirmation)
	return nil
}

// ConfirmSend submits the recording held for confirmation.
func (c *Conversation) ConfirmSend() error {
	c.mu.Lock()
	if c.state != domain.StatePendingConfirmation || c.pending == nil {
		c.mu.Unlock()
		return ErrNothingPending
	}
	buffer := c.pending
	c.pending = nil
	c.mu.Unlock()

	c.beginAudioTurn(buffer)
	return nil
}

// CancelPending discards the recording held for confirmation. The
// message log is untouched.
func (c *Conversation) CancelPending() error {
	c.mu.Lock()
	if c.state != domain.StatePendingConfirmation {
		c.mu.Unlock()
		return ErrNothingPending
	}
	c.pending = nil
	c.state = domain.StateIdle
	c.mu.Unlock()

	c.events.ConversationStateChanged(domain.StateIdle, domain.ReasonPendingCancelled)
	return nil
}

// SendTypedText submits a typed utterance, skipping capture and
// transcription.
func (c *Conversation) SendTypedText(text string) error {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return errors.New("cannot send empty text")
	}

	c.mu.Lock()
	if c.state != domain.StateIdle || c.starting {
		state := c.state
		c.mu.Unlock()
		return fmt.Errorf("%w: cannot send while %s", ErrBusy, state)
	}
	turn := c.nextTurnLocked()
	msg := c.appendLocked(domain.SenderUser, trimmed)
	c.state = domain.StateGenerating
	c.mu.Unlock()

	c.events.MessageAppended(msg)
	c.events.ConversationStateChanged(domain.StateGenerating, domain.ReasonGenerating)

	go c.runGenerate(turn, trimmed)
	return nil
}

// Status reports the current pipeline state.
func (c *Conversation) Status() domain.Status {
	c.mu.Lock()
	defer c.mu.Unlock()
	return domain.Status{
		State:  c.state,
		Active: c.state != domain.StateIdle,
		TurnID: c.lastTurn,
	}
}

// Log returns a copy of the conversation log in append order.
func (c *Conversation) Log() []domain.Message {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]domain.Message, len(c.log))
	copy(out, c.log)
	return out
}

// Settings returns the current settings snapshot.
func (c *Conversation) Settings() domain.Settings {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.settings
}

// UpdateSettings overlays the patch, persists the result, and notifies
// the UI. The in-memory settings change even when persistence fails.
func (c *Conversation) UpdateSettings(patch domain.SettingsPatch) (domain.Settings, error) {
	c.mu.Lock()
	updated := patch.Apply(c.settings)
	c.settings = updated
	c.mu.Unlock()

	var saveErr error
	if err := c.store.Save(updated); err != nil {
		saveErr = err
		c.events.ConversationError(domain.ErrorCodeSettings, "failed to persist settings: "+err.Error())
	}

	c.events.SettingsChanged(updated)
	return updated, saveErr
}

func (c *Conversation) beginAudioTurn(buffer []byte) {
	c.mu.Lock()
	turn := c.nextTurnLocked()
	c.state = domain.StateTranscribing
	c.mu.Unlock()

	c.events.ConversationStateChanged(domain.StateTranscribing, domain.ReasonTranscribing)

	go c.runTranscribe(turn, buffer)
}

func (c *Conversation) runTranscribe(turn uint64, buffer []byte) {
	ctx, cancel := context.WithTimeout(context.Background(), c.cfg.TranscribeTimeout)
	defer cancel()

	text, err := c.transcriber.Transcribe(ctx, buffer)
	if err != nil {
		c.failTurn(turn, domain.StateTranscribing, domain.ErrorCodeTranscription, domain.ReasonTranscriptionFailed, transcriptionFailureText, err)
		return
	}

	if c.filter != nil {
		if cleaned, filterErr := c.filter.Apply(text); filterErr == nil {
			text = cleaned
		}
	}
	text = strings.TrimSpace(text)
	if text == "" {
		err := errors.New("transcription produced no text")
		c.failTurn(turn, domain.StateTranscribing, domain.ErrorCodeTranscription, domain.ReasonTranscriptionFailed, transcriptionFailureText, err)
		return
	}

	c.mu.Lock()
	if !c.turnLiveLocked(turn, domain.StateTranscribing) {
		c.mu.Unlock()
		return
	}
	msg := c.appendLocked(domain.SenderUser, text)
	c.state = domain.StateGenerating
	c.mu.Unlock()

	c.events.MessageAppended(msg)
	c.events.ConversationStateChanged(domain.StateGenerating, domain.ReasonGenerating)

	c.runGenerate(turn, text)
}

func (c *Conversation) runGenerate(turn uint64, text string) {
	c.mu.Lock()
	credential := c.settings.Credential
	c.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), c.cfg.GenerateTimeout)
	defer cancel()

	reply, err := c.generator.Generate(ctx, text, credential)
	if err != nil {
		c.failTurn(turn, domain.StateGenerating, domain.ErrorCodeGeneration, domain.ReasonGenerationFailed, generationFailureText, err)
		return
	}
	reply = strings.TrimSpace(reply)
	if reply == "" {
		err := errors.New("generator produced an empty reply")
		c.failTurn(turn, domain.StateGenerating, domain.ErrorCodeGeneration, domain.ReasonGenerationFailed, generationFailureText, err)
		return
	}

	c.mu.Lock()
	if !c.turnLiveLocked(turn, domain.StateGenerating) {
		c.mu.Unlock()
		return
	}
	msg := c.appendLocked(domain.SenderBot, reply)
	speak := c.settings.SpeakReplies
	c.state = domain.StateIdle
	c.mu.Unlock()

	c.events.MessageAppended(msg)

	if speak {
		if !c.synth.Available() {
			c.events.ConversationError(domain.ErrorCodePlayback, "speech playback unavailable; replies will be text only")
		} else {
			c.events.ConversationStateChanged(domain.StateSpeaking, domain.ReasonSpeakingReply)
			c.synth.CancelAll()
			go func() {
				_ = c.synth.Speak(context.Background(), reply)
			}()
		}
	}

	c.events.ConversationStateChanged(domain.StateIdle, domain.ReasonReplyReady)
}

// failTurn converts one pipeline failure into a single bot message and a
// return to idle. Stale turns are dropped without touching the log.
func (c *Conversation) failTurn(
	turn uint64,
	expected domain.ConversationState,
	code domain.ErrorCode,
	reason domain.StateReason,
	userText string,
	err error,
) {
	c.mu.Lock()
	if !c.turnLiveLocked(turn, expected) {
		c.mu.Unlock()
		return
	}
	msg := c.appendLocked(domain.SenderBot, userText)
	c.state = domain.StateIdle
	c.mu.Unlock()

	c.events.MessageAppended(msg)
	c.events.ConversationError(code, err.Error())
	c.events.ConversationStateChanged(domain.StateIdle, reason)
}

func (c *Conversation) resetWithFailure(code domain.ErrorCode, reason domain.StateReason, userText string, err error) {
	c.mu.Lock()
	msg := c.appendLocked(domain.SenderBot, userText)
	c.state = domain.StateIdle
	c.mu.Unlock()

	c.events.MessageAppended(msg)
	c.events.ConversationError(code, err.Error())
	c.events.ConversationStateChanged(domain.StateIdle, reason)
}

// turnLiveLocked guards asynchronous stage results: a result applies
// only when its turn is still the latest and the pipeline is still in
// the stage that produced it.
func (c *Conversation) turnLiveLocked(turn uint64, expected domain.ConversationState) bool {
	return c.lastTurn == turn && c.state == expected
}

func (c *Conversation) nextTurnLocked() uint64 {
	c.lastTurn++
	return c.lastTurn
}

func (c *Conversation) appendLocked(sender domain.Sender, text string) domain.Message {
	msg := domain.Message{
		ID:        uuid.NewString(),
		Sender:    sender,
		Text:      text,
		CreatedAt: time.Now().UTC(),
	}
	c.log = append(c.log, msg)
	return msg
}
